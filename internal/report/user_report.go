package report

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
)

// UserProjectShare is one user's contribution to one project, with the
// payment share their billed minutes earn. Fixed-billing projects never
// apportion the flat fee, so their share is 0.
type UserProjectShare struct {
	ProjectID   int             `json:"project_id"`
	ProjectName string          `json:"project_name"`
	Billed      HoursMinutes    `json:"billed"`
	Logged      HoursMinutes    `json:"logged"`
	Payment     decimal.Decimal `json:"payment"`
}

type UserReportEntry struct {
	UserID       int                `json:"user_id"`
	Name         string             `json:"name"`
	TotalBilled  HoursMinutes       `json:"total_billed"`
	TotalLogged  HoursMinutes       `json:"total_logged"`
	TotalPayment decimal.Decimal    `json:"total_payment"`
	Projects     []UserProjectShare `json:"projects"`
}

type UserReport struct {
	Users []UserReportEntry `json:"users"`
}

func (s *Service) buildUserReport(ctx context.Context, snap *snapshot, p Params) (*UserReport, error) {
	rollups := s.rollupAll(ctx, snap, p.Range)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	shares := map[int][]UserProjectShare{}

	// Projects are sorted by id, so each user's share list comes out
	// sorted without an extra pass.
	for _, proj := range snap.projects {
		rollup := rollups[proj.ID]
		for userID, m := range rollup.PerUser {
			if p.UserID != nil && userID != *p.UserID {
				continue
			}
			if m.Billed == 0 && m.Logged == 0 {
				continue
			}
			shares[userID] = append(shares[userID], UserProjectShare{
				ProjectID:   proj.ID,
				ProjectName: proj.Name,
				Billed:      SplitMinutes(m.Billed),
				Logged:      SplitMinutes(m.Logged),
				Payment:     UserPaymentShare(proj, m.Billed),
			})
		}
	}

	userIDs := make([]int, 0, len(shares))
	for id := range shares {
		userIDs = append(userIDs, id)
	}
	sort.Ints(userIDs)

	doc := &UserReport{Users: []UserReportEntry{}}
	for _, id := range userIDs {
		entry := UserReportEntry{
			UserID:       id,
			Name:         snap.names.Get(id),
			TotalPayment: decimal.Zero,
			Projects:     shares[id],
		}
		var billed, logged int
		for _, share := range shares[id] {
			billed += share.Billed.Hours*60 + share.Billed.Minutes
			logged += share.Logged.Hours*60 + share.Logged.Minutes
			entry.TotalPayment = entry.TotalPayment.Add(share.Payment)
		}
		entry.TotalBilled = SplitMinutes(billed)
		entry.TotalLogged = SplitMinutes(logged)
		doc.Users = append(doc.Users, entry)
	}

	return doc, nil
}
