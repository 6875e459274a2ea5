package model

import "time"

// TimeEntry is a single billed or logged duration recorded against a work
// item. UserID and Date are optional: an entry without a user still counts
// toward totals, and an entry without a date is only visible to unfiltered
// reports.
type TimeEntry struct {
	UserID  *int       `json:"user_id,omitempty"`
	Date    *time.Time `json:"date,omitempty"`
	Hours   int        `json:"hours"`
	Minutes int        `json:"minutes"`
}

// TotalMinutes returns the entry duration in minutes.
func (e TimeEntry) TotalMinutes() int {
	return e.Hours*60 + e.Minutes
}

// Valid reports whether the entry is well-formed. Malformed entries are
// skipped by the aggregator rather than failing the whole report.
func (e TimeEntry) Valid() bool {
	return e.Hours >= 0 && e.Minutes >= 0 && e.Minutes <= 59
}

type Task struct {
	ID        int         `json:"id"`
	ProjectID int         `json:"project_id"`
	Title     string      `json:"title"`
	Billed    []TimeEntry `json:"billed"`
	Logged    []TimeEntry `json:"logged"`
	Archived  bool        `json:"archived"`
	UpdatedAt *time.Time  `json:"updated_at,omitempty"`
}

type Subtask struct {
	ID        int         `json:"id"`
	TaskID    int         `json:"task_id"`
	Title     string      `json:"title"`
	Billed    []TimeEntry `json:"billed"`
	Logged    []TimeEntry `json:"logged"`
	Archived  bool        `json:"archived"`
	UpdatedAt *time.Time  `json:"updated_at,omitempty"`
}

type NanoSubtask struct {
	ID        int         `json:"id"`
	SubtaskID int         `json:"subtask_id"`
	Title     string      `json:"title"`
	Billed    []TimeEntry `json:"billed"`
	Logged    []TimeEntry `json:"logged"`
	Archived  bool        `json:"archived"`
	UpdatedAt *time.Time  `json:"updated_at,omitempty"`
}
