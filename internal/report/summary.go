package report

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
)

type TopEarner struct {
	UserID int          `json:"user_id"`
	Name   string       `json:"name"`
	Billed HoursMinutes `json:"billed"`
}

type TopProject struct {
	ProjectID int             `json:"project_id"`
	Name      string          `json:"name"`
	Payment   decimal.Decimal `json:"payment"`
}

// SummaryReport is the org-wide rollup: total revenue and minute counts
// plus the single best-performing user and project.
type SummaryReport struct {
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	TotalBilled   HoursMinutes    `json:"total_billed"`
	TotalLogged   HoursMinutes    `json:"total_logged"`
	TotalUnbilled HoursMinutes    `json:"total_unbilled"`
	ProjectCount  int             `json:"project_count"`
	TopEarner     *TopEarner      `json:"top_earner,omitempty"`
	TopProject    *TopProject     `json:"top_project,omitempty"`
}

func (s *Service) buildSummary(ctx context.Context, snap *snapshot, p Params) (*SummaryReport, error) {
	rollups := s.rollupAll(ctx, snap, p.Range)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc := &SummaryReport{
		TotalRevenue: decimal.Zero,
		ProjectCount: len(snap.projects),
	}

	var billedTotal, loggedTotal, unbilledTotal int
	perUser := UserLedger{}
	var top *TopProject

	for _, proj := range snap.projects {
		rollup := rollups[proj.ID]
		payment := ComputePayment(proj, rollup.BilledMinutes)

		doc.TotalRevenue = doc.TotalRevenue.Add(payment)
		billedTotal += rollup.BilledMinutes
		loggedTotal += rollup.LoggedMinutes
		if rollup.LoggedMinutes > rollup.BilledMinutes {
			unbilledTotal += rollup.LoggedMinutes - rollup.BilledMinutes
		}

		for userID, m := range rollup.PerUser {
			perUser.Get(userID).Billed += m.Billed
		}

		// Projects arrive sorted by id, so a strict comparison keeps
		// the lowest id on ties.
		if payment.IsPositive() && (top == nil || payment.GreaterThan(top.Payment)) {
			top = &TopProject{ProjectID: proj.ID, Name: proj.Name, Payment: payment}
		}
	}

	doc.TotalBilled = SplitMinutes(billedTotal)
	doc.TotalLogged = SplitMinutes(loggedTotal)
	doc.TotalUnbilled = SplitMinutes(unbilledTotal)
	doc.TopProject = top
	doc.TopEarner = topEarner(perUser, snap.names)

	return doc, nil
}

// topEarner picks the user with the highest billed minutes; ties break on
// the lowest user id so the result never depends on map iteration order.
func topEarner(perUser UserLedger, names Names) *TopEarner {
	ids := make([]int, 0, len(perUser))
	for id := range perUser {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	var best *TopEarner
	bestMinutes := 0
	for _, id := range ids {
		if m := perUser[id].Billed; m > bestMinutes {
			bestMinutes = m
			best = &TopEarner{UserID: id, Name: names.Get(id), Billed: SplitMinutes(m)}
		}
	}
	return best
}
