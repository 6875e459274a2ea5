package report

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"taskboard/internal/model"
)

// WeekCell is one row of a week bucket: a user or a project (per the view)
// with its billed minutes and payment for that window.
type WeekCell struct {
	ID      int             `json:"id"`
	Name    string          `json:"name"`
	Billed  HoursMinutes    `json:"billed"`
	Payment decimal.Decimal `json:"payment"`
}

type WeekBucket struct {
	Week  int        `json:"week"`
	Label string     `json:"label"`
	Start time.Time  `json:"start"`
	End   time.Time  `json:"end"`
	Rows  []WeekCell `json:"rows"`
}

type MonthBuckets struct {
	Month int          `json:"month"` // 0-indexed
	Weeks []WeekBucket `json:"weeks"`
}

// WeeklyReport is the user×week or project×week payment matrix for a year,
// optionally narrowed to one month. Weeks and months with no contributing
// data are omitted.
type WeeklyReport struct {
	Year   int            `json:"year"`
	View   ViewType       `json:"view"`
	Months []MonthBuckets `json:"months"`
}

// billedPoint is one dated billed entry flattened out of the hierarchy:
// everything the weekly matrices need from a traversal.
type billedPoint struct {
	projectID int
	userID    *int
	date      time.Time
	minutes   int
}

func (s *Service) buildWeeklyReport(ctx context.Context, snap *snapshot, p Params) (*WeeklyReport, error) {
	year := *p.Year

	// One traversal per project; months are bucketed from the collected
	// points afterwards.
	points := []billedPoint{}
	for _, proj := range snap.projects {
		projID := proj.ID
		walkProject(projID, snap.idx, func(item itemVisit) {
			for _, e := range item.Billed {
				if minutes, ok := entryMinutes(projID, e, nil, s.logger); ok && e.Date != nil && e.Date.Year() == year {
					points = append(points, billedPoint{
						projectID: projID,
						userID:    e.UserID,
						date:      *e.Date,
						minutes:   minutes,
					})
				}
			}
		})
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	projByID := make(map[int]model.Project, len(snap.projects))
	for _, proj := range snap.projects {
		projByID[proj.ID] = proj
	}

	months := make([]int, 0, 12)
	if p.Month != nil {
		months = append(months, *p.Month)
	} else {
		for m := 0; m < 12; m++ {
			months = append(months, m)
		}
	}

	doc := &WeeklyReport{Year: year, View: p.View, Months: []MonthBuckets{}}
	for _, m := range months {
		bucket := s.bucketMonth(points, projByID, snap.names, year, m, p.View)
		if len(bucket.Weeks) > 0 {
			doc.Months = append(doc.Months, bucket)
		}
	}

	return doc, nil
}

// bucketMonth assigns every point dated in the month to its calendar week
// and folds minutes and payment per row.
func (s *Service) bucketMonth(points []billedPoint, projByID map[int]model.Project, names Names, year, month int, view ViewType) MonthBuckets {
	weeks := WeeksOfMonth(year, month)

	// minutes per (project, row, week); payment needs each project's
	// billing model, so the project dimension is kept until the fold.
	perProject := map[int]CellLedger{}
	for _, pt := range points {
		if int(pt.date.Month())-1 != month {
			continue
		}
		week, ok := WeekOf(weeks, pt.date)
		if !ok {
			continue
		}

		rowID := pt.projectID
		if view == ViewUsers {
			if pt.userID == nil {
				continue
			}
			rowID = *pt.userID
		}

		ledger, exists := perProject[pt.projectID]
		if !exists {
			ledger = CellLedger{}
			perProject[pt.projectID] = ledger
		}
		ledger.Add(rowID, week.Number, pt.minutes)
	}

	type cellAgg struct {
		minutes int
		payment decimal.Decimal
	}
	cells := map[int]map[int]*cellAgg{} // week → row → agg

	projectIDs := make([]int, 0, len(perProject))
	for id := range perProject {
		projectIDs = append(projectIDs, id)
	}
	sort.Ints(projectIDs)

	for _, projID := range projectIDs {
		proj := projByID[projID]
		for rowID, byWeek := range perProject[projID] {
			for week, minutes := range byWeek {
				row, ok := cells[week]
				if !ok {
					row = map[int]*cellAgg{}
					cells[week] = row
				}
				agg, ok := row[rowID]
				if !ok {
					agg = &cellAgg{payment: decimal.Zero}
					row[rowID] = agg
				}
				agg.minutes += minutes
				if view == ViewUsers {
					agg.payment = agg.payment.Add(UserPaymentShare(proj, minutes))
				} else {
					agg.payment = agg.payment.Add(ComputePayment(proj, minutes))
				}
			}
		}
	}

	bucket := MonthBuckets{Month: month, Weeks: []WeekBucket{}}
	for _, w := range weeks {
		rows, ok := cells[w.Number]
		if !ok {
			continue // empty weeks are omitted
		}

		rowIDs := make([]int, 0, len(rows))
		for id := range rows {
			rowIDs = append(rowIDs, id)
		}
		sort.Ints(rowIDs)

		wb := WeekBucket{Week: w.Number, Label: w.Label, Start: w.Start, End: w.End}
		for _, id := range rowIDs {
			agg := rows[id]
			name := names.Get(id)
			if view == ViewProjects {
				name = projByID[id].Name
			}
			wb.Rows = append(wb.Rows, WeekCell{
				ID:      id,
				Name:    name,
				Billed:  SplitMinutes(agg.minutes),
				Payment: agg.payment,
			})
		}
		bucket.Weeks = append(bucket.Weeks, wb)
	}

	return bucket
}
