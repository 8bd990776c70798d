// Package schedule generates projected future cash-flow events (interest and
// maturity) from a principal, rate, term, and payment cycle.
package schedule

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tally-dev/tally/internal/model"
)

var (
	hundred      = decimal.NewFromInt(100)
	monthsOfYear = decimal.NewFromInt(12)
)

// Params holds the inputs for one schedule generation.
type Params struct {
	Principal  decimal.Decimal
	AnnualRate decimal.Decimal // percent, e.g. 12 for 12%/year
	StartDate  time.Time
	TermMonths int
	Cycle      model.Cycle
	Direction  model.Direction
	Label      string
	// FixedPaymentDay overrides each event's day of month when >= 0.
	// 0 means last day of month; -1 follows the start date's day.
	FixedPaymentDay int
}

// Generate produces the cash-flow events for the given terms, in strictly
// increasing date order, the last falling on the maturity date. END_OF_TERM
// yields a single event at maturity. Interest per period is simple pro-rata:
// principal x rate/100 x periodMonths/12.
func Generate(p Params) ([]model.ScheduledEvent, error) {
	if p.Principal.Sign() <= 0 {
		return nil, fmt.Errorf("principal must be positive, got %s", p.Principal)
	}
	if p.TermMonths <= 0 {
		return nil, fmt.Errorf("term must be positive, got %d months", p.TermMonths)
	}

	if p.Cycle == model.CycleEndOfTerm {
		ev := model.ScheduledEvent{
			Date:      p.eventDate(p.TermMonths),
			Amount:    p.interest(p.TermMonths),
			Direction: p.Direction,
			Label:     fmt.Sprintf("%s maturity", p.Label),
		}
		return []model.ScheduledEvent{ev}, nil
	}

	step := p.Cycle.Months()
	if step == 0 {
		return nil, fmt.Errorf("unknown cycle %q", p.Cycle)
	}

	var events []model.ScheduledEvent
	count := p.TermMonths / step
	for i := 1; i <= count; i++ {
		events = append(events, model.ScheduledEvent{
			Date:      p.eventDate(i * step),
			Amount:    p.interest(step),
			Direction: p.Direction,
			Label:     fmt.Sprintf("%s %d/%d", p.Label, i, count),
		})
	}

	// A term that is not a whole number of cycles ends with a short period
	// at maturity.
	if rem := p.TermMonths % step; rem != 0 {
		events = append(events, model.ScheduledEvent{
			Date:      p.eventDate(p.TermMonths),
			Amount:    p.interest(rem),
			Direction: p.Direction,
			Label:     fmt.Sprintf("%s maturity", p.Label),
		})
	}
	return events, nil
}

// interest returns the simple pro-rata interest for a period of n months.
func (p Params) interest(n int) decimal.Decimal {
	return p.Principal.
		Mul(p.AnnualRate).Div(hundred).
		Mul(decimal.NewFromInt(int64(n))).Div(monthsOfYear)
}

// eventDate returns the start date shifted by n calendar months, with the
// fixed-payment-day override applied.
func (p Params) eventDate(n int) time.Time {
	d := AddMonths(p.StartDate, n)
	if p.FixedPaymentDay < 0 {
		return d
	}
	last := lastDayOfMonth(d)
	day := p.FixedPaymentDay
	if day == 0 || day > last {
		day = last
	}
	return time.Date(d.Year(), d.Month(), day, 0, 0, 0, 0, d.Location())
}

// AddMonths shifts a date by n calendar months, clamping to the last day of
// the target month when the source day does not exist there (Jan 31 + 1 month
// = Feb 28/29).
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	if last := lastDayOfMonth(first); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, t.Location())
}

func lastDayOfMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}
