package report

import (
	"github.com/shopspring/decimal"

	"taskboard/internal/model"
)

var sixty = decimal.NewFromInt(60)

// ComputePayment converts billed minutes into money under the project's
// billing model. Fixed-price projects pay the flat fee regardless of
// minutes; an unknown or missing billing model is unbillable and pays 0.
func ComputePayment(p model.Project, billedMinutes int) decimal.Decimal {
	switch p.Billing {
	case model.BillingFixed:
		return p.FixedPrice
	case model.BillingHourly:
		return hourlyPayment(p.HourlyRate, billedMinutes)
	default:
		return decimal.Zero
	}
}

// UserPaymentShare is one user's payment for their billed minutes on a
// project. Only hourly projects apportion payment by contribution; a fixed
// flat fee is never split per user.
func UserPaymentShare(p model.Project, userBilledMinutes int) decimal.Decimal {
	if p.Billing != model.BillingHourly {
		return decimal.Zero
	}
	return hourlyPayment(p.HourlyRate, userBilledMinutes)
}

func hourlyPayment(rate decimal.Decimal, minutes int) decimal.Decimal {
	return decimal.NewFromInt(int64(minutes)).Div(sixty).Mul(rate).Round(2)
}
