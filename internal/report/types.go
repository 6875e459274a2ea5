package report

import (
	"strconv"
	"time"
)

type ViewType string

const (
	ViewUsers    ViewType = "users"
	ViewProjects ViewType = "projects"
)

const dateLayout = "2006-01-02"

// DateRange is an inclusive calendar-date window. A nil *DateRange means no
// filter is active: every entry contributes, including entries without a
// date. With an active range, entries without a date are excluded.
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

// Contains reports whether an entry dated d falls inside the range. Both
// bounds are inclusive; the end bound covers the whole end day.
func (r *DateRange) Contains(d *time.Time) bool {
	if r == nil {
		return true
	}
	if d == nil {
		return false
	}
	if r.Start != nil && d.Before(*r.Start) {
		return false
	}
	if r.End != nil && !d.Before(r.End.AddDate(0, 0, 1)) {
		return false
	}
	return true
}

// RawParams carries the report query parameters as received on the wire.
type RawParams struct {
	StartDate    string
	EndDate      string
	DepartmentID string
	ProjectID    string
	UserID       string
	View         string
	Year         string
	Month        string
}

// Params is the validated form of RawParams.
type Params struct {
	Range        *DateRange
	DepartmentID *int
	ProjectID    *int
	UserID       *int
	View         ViewType
	Year         *int
	Month        *int // 0-indexed
}

// ParseParams validates raw query parameters. It fails with a
// ValidationError before any fetch is issued.
func ParseParams(raw RawParams) (Params, error) {
	var p Params

	start, err := parseDate("start_date", raw.StartDate)
	if err != nil {
		return p, err
	}
	end, err := parseDate("end_date", raw.EndDate)
	if err != nil {
		return p, err
	}
	if start != nil && end != nil && end.Before(*start) {
		return p, &ValidationError{Field: "end_date", Reason: "before start_date"}
	}
	if start != nil || end != nil {
		p.Range = &DateRange{Start: start, End: end}
	}

	if p.DepartmentID, err = parseID("department_id", raw.DepartmentID); err != nil {
		return p, err
	}
	if p.ProjectID, err = parseID("project_id", raw.ProjectID); err != nil {
		return p, err
	}
	if p.UserID, err = parseID("user_id", raw.UserID); err != nil {
		return p, err
	}

	switch raw.View {
	case "", string(ViewUsers):
		p.View = ViewUsers
	case string(ViewProjects):
		p.View = ViewProjects
	default:
		return p, &ValidationError{Field: "view", Reason: "must be users or projects"}
	}

	if raw.Year != "" {
		year, err := strconv.Atoi(raw.Year)
		if err != nil || year < 1970 || year > 9999 {
			return p, &ValidationError{Field: "year", Reason: "must be a four-digit year"}
		}
		p.Year = &year
	}

	if raw.Month != "" {
		month, err := strconv.Atoi(raw.Month)
		if err != nil || month < 0 || month > 11 {
			return p, &ValidationError{Field: "month", Reason: "must be 0-11"}
		}
		p.Month = &month
	}

	return p, nil
}

func parseDate(field, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	d, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, &ValidationError{Field: field, Reason: "must be an ISO-8601 date"}
	}
	return &d, nil
}

func parseID(field, value string) (*int, error) {
	if value == "" {
		return nil, nil
	}
	id, err := strconv.Atoi(value)
	if err != nil || id <= 0 {
		return nil, &ValidationError{Field: field, Reason: "must be a positive integer"}
	}
	return &id, nil
}

// HoursMinutes is how minute counts serialize on the wire.
type HoursMinutes struct {
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
}

// SplitMinutes converts a raw minute count into an {hours, minutes} pair.
func SplitMinutes(total int) HoursMinutes {
	return HoursMinutes{Hours: total / 60, Minutes: total % 60}
}
