package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TxType is the economic meaning of a transaction.
type TxType string

const (
	TxOpeningBalance    TxType = "opening-balance"
	TxIncome            TxType = "income"
	TxExpense           TxType = "expense"
	TxTransfer          TxType = "transfer"
	TxAssetBuy          TxType = "asset-buy"
	TxAssetSell         TxType = "asset-sell"
	TxBorrowing         TxType = "borrowing"
	TxDebtRepayment     TxType = "debt-repayment"
	TxSavingsDeposit    TxType = "savings-deposit"
	TxSavingsWithdrawal TxType = "savings-withdrawal"
	TxCapitalInjection  TxType = "capital-injection"
	TxCardPayment       TxType = "card-payment"
	TxSettlement        TxType = "settlement"
)

// Transaction is an immutable record of one balanced financial event. Amount
// is always non-negative; the debit/credit account ids plus each account's
// group determine the signed balance effects. Edits never mutate a
// transaction in place; the reconciler reverts and reposts.
type Transaction struct {
	ID              string          `json:"id"`
	Type            TxType          `json:"type"`
	Date            time.Time       `json:"date"`
	DebitAccountID  int             `json:"debit_account_id"`
	CreditAccountID int             `json:"credit_account_id"`
	Amount          decimal.Decimal `json:"amount"`
	Units           decimal.Decimal `json:"units,omitempty"`
	Price           decimal.Decimal `json:"price,omitempty"`
	Fees            decimal.Decimal `json:"fees,omitempty"`
	Note            string          `json:"note,omitempty"`
	// RelatedDetailID points at the detail log or deposit entry this
	// transaction created; it is the exact-match key for reversal.
	RelatedDetailID string `json:"related_detail_id,omitempty"`
}

// Accounts returns the two account ids touched by the transaction.
func (t Transaction) Accounts() (debit, credit int) {
	return t.DebitAccountID, t.CreditAccountID
}
