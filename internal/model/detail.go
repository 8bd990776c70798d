package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DetailKind tags the detail variant an account carries.
type DetailKind string

const (
	DetailInvestment DetailKind = "investment"
	DetailLiability  DetailKind = "liability"
	DetailSavings    DetailKind = "savings"
	DetailCreditCard DetailKind = "credit-card"
	DetailRealEstate DetailKind = "real-estate"
)

// Detail is the category-specific variant attached to an account. Exactly one
// concrete type is valid per account category; the poster and reconciler
// switch on the concrete type instead of probing optional fields.
type Detail interface {
	Kind() DetailKind
}

// LogType tags one entry in an account's append-only detail log.
type LogType string

const (
	LogBuy       LogType = "buy"
	LogSell      LogType = "sell"
	LogOpen      LogType = "open"
	LogExtend    LogType = "extend"
	LogDeposit   LogType = "deposit"
	LogWithdraw  LogType = "withdraw"
	LogInjection LogType = "injection"
)

// DetailLog is one sub-ledger event: a buy/sell lot, a liability extension, a
// capital injection. ID is the reversal key a transaction's RelatedDetailID
// points at.
type DetailLog struct {
	ID     string          `json:"id"`
	Date   time.Time       `json:"date"`
	Type   LogType         `json:"type"`
	Amount decimal.Decimal `json:"amount"`
	Units  decimal.Decimal `json:"units,omitempty"`
	// Pnl is the realized gain or loss a sell booked into the equity fund;
	// reverting the sell needs it because the average cost may have moved
	// since.
	Pnl  decimal.Decimal `json:"pnl,omitempty"`
	Note string          `json:"note,omitempty"`
}

// Cycle is the repetition period of a scheduled cash flow.
type Cycle string

const (
	CycleMonthly    Cycle = "monthly"
	CycleQuarterly  Cycle = "quarterly"
	CycleSemiAnnual Cycle = "semi-annual"
	CycleYearly     Cycle = "yearly"
	CycleEndOfTerm  Cycle = "end-of-term"
)

// Months returns the cycle length in months, 0 for end-of-term.
func (c Cycle) Months() int {
	switch c {
	case CycleMonthly:
		return 1
	case CycleQuarterly:
		return 3
	case CycleSemiAnnual:
		return 6
	case CycleYearly:
		return 12
	default:
		return 0
	}
}

// Direction tags a scheduled event as money received or money owed.
type Direction string

const (
	Inflow  Direction = "inflow"
	Outflow Direction = "outflow"
)

// ScheduledEvent is one projected future cash flow (interest or maturity).
// It carries no ledger effect until a real transaction posts it.
type ScheduledEvent struct {
	Date      time.Time       `json:"date"`
	Amount    decimal.Decimal `json:"amount"`
	Direction Direction       `json:"direction"`
	Label     string          `json:"label"`
}

// InvestmentDetail is the sub-ledger of a stocks (or similar unitized)
// account: position, weighted-average cost, and the lot log.
type InvestmentDetail struct {
	TotalUnits  decimal.Decimal `json:"total_units"`
	AvgPrice    decimal.Decimal `json:"avg_price"`
	MarketPrice decimal.Decimal `json:"market_price,omitempty"`
	RealizedPnL decimal.Decimal `json:"realized_pnl"`
	Logs        []DetailLog     `json:"logs,omitempty"`
}

func (*InvestmentDetail) Kind() DetailKind { return DetailInvestment }

// LiabilityDetail is the sub-ledger of a loan: outstanding principal plus the
// static terms the schedule generator works from. Principal and balance move
// together on every posting.
type LiabilityDetail struct {
	Principal    decimal.Decimal  `json:"principal"`
	InterestRate decimal.Decimal  `json:"interest_rate"` // annual, percent
	InterestType string           `json:"interest_type,omitempty"`
	Cycle        Cycle            `json:"cycle"`
	TermMonths   int              `json:"term_months"`
	StartDate    time.Time        `json:"start_date"`
	EndDate      time.Time        `json:"end_date"`
	Extensions   []DetailLog      `json:"extensions,omitempty"`
	Schedule     []ScheduledEvent `json:"schedule,omitempty"`
}

func (*LiabilityDetail) Kind() DetailKind { return DetailLiability }

// Deposit is one term deposit inside a savings account.
type Deposit struct {
	ID         string           `json:"id"`
	Principal  decimal.Decimal  `json:"principal"`
	Rate       decimal.Decimal  `json:"rate"` // annual, percent
	Cycle      Cycle            `json:"cycle"`
	TermMonths int              `json:"term_months"`
	StartDate  time.Time        `json:"start_date"`
	EndDate    time.Time        `json:"end_date"`
	Schedule   []ScheduledEvent `json:"schedule,omitempty"`
}

// SavingsDetail is the sub-ledger of a savings account: its open deposits.
type SavingsDetail struct {
	Deposits []Deposit `json:"deposits,omitempty"`
}

func (*SavingsDetail) Kind() DetailKind { return DetailSavings }

// CreditCardDetail holds the static terms the credit status calculator needs.
type CreditCardDetail struct {
	Limit        decimal.Decimal `json:"limit"`
	StatementDay int             `json:"statement_day"`
	DueDay       int             `json:"due_day"`
}

func (*CreditCardDetail) Kind() DetailKind { return DetailCreditCard }

// RealEstateDetail tracks cumulative capital injected into a property.
type RealEstateDetail struct {
	TotalInvestment decimal.Decimal `json:"total_investment"`
	Logs            []DetailLog     `json:"logs,omitempty"`
}

func (*RealEstateDetail) Kind() DetailKind { return DetailRealEstate }

// detailEnvelope wraps a Detail with its kind tag for JSON round-tripping.
type detailEnvelope struct {
	Kind DetailKind      `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// accountAlias breaks the MarshalJSON recursion on Account.
type accountAlias Account

type accountJSON struct {
	accountAlias
	Detail *detailEnvelope `json:"detail,omitempty"`
}

// MarshalJSON writes the account with its detail variant in a tagged envelope.
func (a Account) MarshalJSON() ([]byte, error) {
	out := accountJSON{accountAlias: accountAlias(a)}
	if a.Detail != nil {
		data, err := json.Marshal(a.Detail)
		if err != nil {
			return nil, fmt.Errorf("marshaling %s detail: %w", a.Detail.Kind(), err)
		}
		out.Detail = &detailEnvelope{Kind: a.Detail.Kind(), Data: data}
	}
	return json.Marshal(out)
}

// UnmarshalJSON restores the detail variant from its kind tag.
func (a *Account) UnmarshalJSON(data []byte) error {
	var in accountJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*a = Account(in.accountAlias)
	if in.Detail == nil {
		return nil
	}

	var detail Detail
	switch in.Detail.Kind {
	case DetailInvestment:
		detail = &InvestmentDetail{}
	case DetailLiability:
		detail = &LiabilityDetail{}
	case DetailSavings:
		detail = &SavingsDetail{}
	case DetailCreditCard:
		detail = &CreditCardDetail{}
	case DetailRealEstate:
		detail = &RealEstateDetail{}
	default:
		return fmt.Errorf("unknown detail kind %q", in.Detail.Kind)
	}
	if err := json.Unmarshal(in.Detail.Data, detail); err != nil {
		return fmt.Errorf("unmarshaling %s detail: %w", in.Detail.Kind, err)
	}
	a.Detail = detail
	return nil
}

// CloneDetail returns a deep copy of a detail variant, nil-safe. The
// reconciler mutates copies so a failed commit leaves the snapshot untouched.
func CloneDetail(d Detail) Detail {
	switch v := d.(type) {
	case nil:
		return nil
	case *InvestmentDetail:
		c := *v
		c.Logs = append([]DetailLog(nil), v.Logs...)
		return &c
	case *LiabilityDetail:
		c := *v
		c.Extensions = append([]DetailLog(nil), v.Extensions...)
		c.Schedule = append([]ScheduledEvent(nil), v.Schedule...)
		return &c
	case *SavingsDetail:
		c := *v
		c.Deposits = make([]Deposit, len(v.Deposits))
		for i, dep := range v.Deposits {
			dep.Schedule = append([]ScheduledEvent(nil), dep.Schedule...)
			c.Deposits[i] = dep
		}
		return &c
	case *CreditCardDetail:
		c := *v
		return &c
	case *RealEstateDetail:
		c := *v
		c.Logs = append([]DetailLog(nil), v.Logs...)
		return &c
	default:
		return d
	}
}
