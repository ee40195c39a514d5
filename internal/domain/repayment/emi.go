package repayment

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

var monthsPerYearPct = decimal.NewFromInt(1200)

// CalculateEMI returns the fixed monthly installment for a flat-rate loan,
// rounded half-up to 2 decimals:
//
//	r   = annualRatePercent / 12 / 100
//	EMI = P * r * (1+r)^n / ((1+r)^n - 1)    (P / n when r == 0)
func CalculateEMI(principal decimal.Decimal, tenureMonths int, annualRatePercent decimal.Decimal) (decimal.Decimal, error) {
	switch {
	case !principal.IsPositive():
		return decimal.Zero, fmt.Errorf("%w: principal must be positive", ErrInvalidTerms)
	case tenureMonths <= 0:
		return decimal.Zero, fmt.Errorf("%w: tenure must be positive", ErrInvalidTerms)
	case annualRatePercent.IsNegative():
		return decimal.Zero, fmt.Errorf("%w: rate must not be negative", ErrInvalidTerms)
	}

	n := decimal.NewFromInt(int64(tenureMonths))
	if annualRatePercent.IsZero() {
		return principal.DivRound(n, 2), nil
	}

	// (1+r)^n is computed in float64, money stays decimal.
	r := annualRatePercent.Div(monthsPerYearPct).InexactFloat64()
	factor := math.Pow(1+r, float64(tenureMonths))
	ratio := decimal.NewFromFloat(r * factor / (factor - 1))
	return principal.Mul(ratio).Round(2), nil
}

// BuildSchedule lays out tenureMonths equal installments due one calendar
// month apart, the first one month after start.
func BuildSchedule(applicationID uint64, principal decimal.Decimal, tenureMonths int, annualRatePercent decimal.Decimal, start time.Time) ([]Installment, error) {
	emi, err := CalculateEMI(principal, tenureMonths, annualRatePercent)
	if err != nil {
		return nil, err
	}
	start = Day(start)
	out := make([]Installment, 0, tenureMonths)
	for seq := 1; seq <= tenureMonths; seq++ {
		out = append(out, Installment{
			ApplicationID: applicationID,
			Sequence:      seq,
			EMIAmount:     emi,
			DueDate:       AddMonths(start, seq),
			Status:        StatusPending,
		})
	}
	return out, nil
}

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AddMonths adds n calendar months, clamping to the last day of the target
// month (Jan 31 + 1 month = Feb 28/29) instead of overflowing like AddDate.
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	last := first.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}
