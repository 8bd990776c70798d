package model

import "github.com/shopspring/decimal"

// AccountGroup classifies accounts for the double-entry sign rule.
type AccountGroup string

const (
	GroupAssets   AccountGroup = "assets"
	GroupCapital  AccountGroup = "capital"
	GroupIncome   AccountGroup = "income"
	GroupExpenses AccountGroup = "expenses"
)

// DebitIncreases reports whether a debit raises the balance of an account in
// this group. Assets and expenses grow on debit; capital and income grow on
// credit.
func (g AccountGroup) DebitIncreases() bool {
	return g == GroupAssets || g == GroupExpenses
}

// AccountCategory narrows an account within its group and selects which
// detail variant (if any) the account carries.
type AccountCategory string

const (
	CategoryCash        AccountCategory = "cash"
	CategoryStocks      AccountCategory = "stocks"
	CategorySavings     AccountCategory = "savings"
	CategoryLiability   AccountCategory = "liability"
	CategoryCreditCard  AccountCategory = "credit-card"
	CategoryEquityFund  AccountCategory = "equity-fund"
	CategoryRealEstate  AccountCategory = "real-estate"
	CategoryReceivables AccountCategory = "receivables"
	CategoryGeneral     AccountCategory = "general"
)

// AccountStatus is the lifecycle state of an account. Accounts are closed,
// never deleted, when their economic life ends.
type AccountStatus string

const (
	StatusActive     AccountStatus = "active"
	StatusClosed     AccountStatus = "closed"
	StatusLiquidated AccountStatus = "liquidated"
)

// Account is a named ledger node. Balance is signed; its meaning depends on
// the group (an asset balance is what you hold, a liability balance is what
// you owe).
type Account struct {
	ID       int             `json:"id"`
	Name     string          `json:"name"`
	Group    AccountGroup    `json:"group"`
	Category AccountCategory `json:"category"`
	Status   AccountStatus   `json:"status"`
	Balance  decimal.Decimal `json:"balance"`
	FundID   int             `json:"fund_id,omitempty"` // linked equity fund, 0 = unset
	Detail   Detail          `json:"-"`
}

// Active reports whether the account can take new postings.
func (a Account) Active() bool {
	return a.Status == StatusActive
}
