// Package credit derives billing-cycle and utilization figures for a credit
// card account from its static terms and current balance.
package credit

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tally-dev/tally/internal/model"
)

var hundred = decimal.NewFromInt(100)

// DefaultMinimumPaymentRate is applied when the config does not override it.
var DefaultMinimumPaymentRate = decimal.NewFromFloat(0.05)

// Status is the derived state of a credit card at a point in time.
type Status struct {
	Available      decimal.Decimal
	Utilization    decimal.Decimal // percent
	CycleLabel     string
	StatementOpen  bool
	DaysToDue      int // <= 0 means overdue
	MinimumPayment decimal.Decimal
}

// Compute derives the current billing cycle, utilization, and minimum payment.
// The cycle starts at the most recent occurrence of the statement day on or
// before today; the due date is the next occurrence of the due day at or after
// that statement close.
func Compute(balance decimal.Decimal, d model.CreditCardDetail, minRate decimal.Decimal, today time.Time) Status {
	today = midnight(today)

	utilization := decimal.Zero
	if d.Limit.Sign() > 0 {
		utilization = balance.Div(d.Limit).Mul(hundred)
	}
	if minRate.IsZero() {
		minRate = DefaultMinimumPaymentRate
	}

	cycleStart := recentOccurrence(today, d.StatementDay)
	cycleEnd := cycleStart.AddDate(0, 1, -1)
	due := nextOccurrence(cycleStart, d.DueDay)

	return Status{
		Available:      d.Limit.Sub(balance),
		Utilization:    utilization,
		CycleLabel:     fmt.Sprintf("%s – %s", cycleStart.Format("Jan 2"), cycleEnd.Format("Jan 2")),
		StatementOpen:  today.After(cycleStart),
		DaysToDue:      int(due.Sub(today).Hours() / 24),
		MinimumPayment: balance.Mul(minRate),
	}
}

// recentOccurrence returns the latest date with the given day of month that
// falls on or before t, clamping short months.
func recentOccurrence(t time.Time, day int) time.Time {
	d := onDay(t.Year(), t.Month(), day, t.Location())
	if d.After(t) {
		d = onDay(t.Year(), t.Month()-1, day, t.Location())
	}
	return d
}

// nextOccurrence returns the earliest date with the given day of month at or
// after t.
func nextOccurrence(t time.Time, day int) time.Time {
	d := onDay(t.Year(), t.Month(), day, t.Location())
	if d.Before(t) {
		d = onDay(t.Year(), t.Month()+1, day, t.Location())
	}
	return d
}

// onDay builds a date at the given day of month, clamped to the month's end.
func onDay(year int, month time.Month, day int, loc *time.Location) time.Time {
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
	if day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, loc)
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
