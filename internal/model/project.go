package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Billing models supported by the payment calculator. A project with any
// other value is treated as unbillable.
const (
	BillingHourly = "hourly"
	BillingFixed  = "fixed"
)

type Project struct {
	ID             int             `json:"id"`
	Name           string          `json:"name"`
	DepartmentID   *int            `json:"department_id,omitempty"`
	DepartmentName string          `json:"department_name,omitempty"`
	Billing        string          `json:"billing"` // hourly / fixed
	HourlyRate     decimal.Decimal `json:"hourly_rate"`
	FixedPrice     decimal.Decimal `json:"fixed_price"`
	Coordinators   []int           `json:"coordinators,omitempty"`
	Archived       bool            `json:"archived"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}
