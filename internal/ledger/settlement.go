package ledger

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tally-dev/tally/internal/model"
)

// SettlementTotal returns the full payoff for closing a liability:
// outstanding principal plus accrued interest plus any manual fee.
func SettlementTotal(principal, accruedInterest, fee decimal.Decimal) decimal.Decimal {
	return principal.Add(accruedInterest).Add(fee)
}

// SettleParams describes the payoff of one liability account.
type SettleParams struct {
	LiabilityAccountID int
	CashAccountID      int
	// InterestAccountID is the expense account for accrued interest;
	// required when AccruedInterest is non-zero.
	InterestAccountID int
	// FeeAccountID is the expense account for the manual fee; required when
	// Fee is non-zero. The fee is booked against the liability's linked
	// equity fund.
	FeeAccountID    int
	AccruedInterest decimal.Decimal
	Fee             decimal.Decimal
	Date            time.Time
	Note            string
}

// Settle pays off a liability in full: principal to zero, status to closed,
// accrued interest as an expense from cash, and any manual fee as an expense
// against the linked equity fund. All postings commit as one atomic unit.
// Returns the payoff transaction's id.
func (s *Service) Settle(p SettleParams) (string, error) {
	if p.Date.IsZero() {
		return "", ValidationError{Field: "date", Reason: "required"}
	}
	if p.AccruedInterest.Sign() < 0 || p.Fee.Sign() < 0 {
		return "", ValidationError{Field: "amount", Reason: "interest and fee must not be negative"}
	}
	if p.AccruedInterest.Sign() > 0 && p.InterestAccountID == 0 {
		return "", ValidationError{Field: "accounts", Reason: "interest expense account required"}
	}
	if p.Fee.Sign() > 0 && p.FeeAccountID == 0 {
		return "", ValidationError{Field: "accounts", Reason: "fee expense account required"}
	}

	var txID string
	err := s.commit(func(w *workspace) error {
		acct, ok := w.account(p.LiabilityAccountID)
		if !ok {
			return ValidationError{Field: "accounts", Reason: fmt.Sprintf("unknown account %d", p.LiabilityAccountID)}
		}
		detail, ok := acct.Detail.(*model.LiabilityDetail)
		if !ok {
			return ValidationError{Field: "accounts", Reason: fmt.Sprintf("account %d is not a liability", p.LiabilityAccountID)}
		}
		if detail.Principal.Sign() <= 0 {
			return ValidationError{Field: "amount", Reason: "nothing outstanding to settle"}
		}

		// Resolve the fund first so an adopted link lands in the same
		// commit as the payoff.
		fundID := 0
		if p.Fee.Sign() > 0 {
			var err error
			fundID, err = s.resolveFund(w, &acct, "")
			if err != nil {
				return err
			}
			w.put(acct)
		}

		var err error
		txID, err = s.post(w, Action{
			Type:            model.TxSettlement,
			Date:            p.Date,
			Amount:          detail.Principal,
			DebitAccountID:  p.LiabilityAccountID,
			CreditAccountID: p.CashAccountID,
			Note:            p.Note,
		})
		if err != nil {
			return err
		}

		if p.AccruedInterest.Sign() > 0 {
			if _, err := s.post(w, Action{
				Type:            model.TxExpense,
				Date:            p.Date,
				Amount:          p.AccruedInterest,
				DebitAccountID:  p.InterestAccountID,
				CreditAccountID: p.CashAccountID,
				Note:            "settlement interest",
			}); err != nil {
				return err
			}
		}

		if p.Fee.Sign() > 0 {
			if _, err := s.post(w, Action{
				Type:            model.TxExpense,
				Date:            p.Date,
				Amount:          p.Fee,
				DebitAccountID:  p.FeeAccountID,
				CreditAccountID: fundID,
				Note:            "settlement fee",
			}); err != nil {
				return err
			}
		}
		return nil
	})
	return txID, err
}
