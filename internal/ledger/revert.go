package ledger

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tally-dev/tally/internal/auditlog"
	"github.com/tally-dev/tally/internal/model"
)

// Delete exactly undoes a transaction's effect (balances, sub-ledger fields,
// and the detail log entry it created) and removes the record. Warnings
// report recoverable inconsistencies (a detail log that could not be matched);
// they never abort the revert.
func (s *Service) Delete(txID string) ([]string, error) {
	var warnings []string
	err := s.commit(func(w *workspace) error {
		warnings = warnings[:0]
		ws, err := s.revert(w, txID)
		warnings = append(warnings, ws...)
		return err
	})
	if err != nil {
		return nil, err
	}
	return warnings, nil
}

// Edit replaces a transaction: the old posting is reverted and the new action
// posted in one atomic commit, never as an in-place diff.
func (s *Service) Edit(txID string, a Action) (string, []string, error) {
	if err := a.validate(); err != nil {
		return "", nil, err
	}

	var (
		newID    string
		warnings []string
	)
	err := s.commit(func(w *workspace) error {
		warnings = warnings[:0]
		ws, err := s.revert(w, txID)
		if err != nil {
			return err
		}
		warnings = append(warnings, ws...)

		newID, err = s.post(w, a)
		return err
	})
	if err != nil {
		return "", nil, err
	}
	return newID, warnings, nil
}

// revert computes the inverse deltas of a transaction into the workspace and
// deletes the record.
func (s *Service) revert(w *workspace, txID string) ([]string, error) {
	tx, ok := w.transaction(txID)
	if !ok {
		return nil, fmt.Errorf("unknown transaction %q", txID)
	}

	var warnings []string
	for _, leg := range []struct {
		acctID int
		sd     side
	}{
		{tx.DebitAccountID, debit},
		{tx.CreditAccountID, credit},
	} {
		acct, ok := w.account(leg.acctID)
		if !ok {
			return nil, fmt.Errorf("transaction %s references unknown account %d", txID, leg.acctID)
		}

		// Re-derive the original signed amount under the same sign rule,
		// then negate it.
		delta := balanceDelta(acct.Group, leg.sd, tx.Amount).Neg()

		ws, err := s.revertLeg(w, tx, acct, leg.sd, delta)
		if err != nil {
			return nil, err
		}
		warnings = append(warnings, ws...)
	}

	w.delTxs = append(w.delTxs, txID)
	for _, warn := range warnings {
		s.record(auditlog.LevelWarning, "revert-log-miss", warn, txID)
	}
	return warnings, nil
}

// revertLeg undoes one side's balance delta and sub-ledger side effects.
func (s *Service) revertLeg(w *workspace, tx model.Transaction, acct model.Account, sd side, delta decimal.Decimal) ([]string, error) {
	switch d := acct.Detail.(type) {
	case *model.LiabilityDetail:
		// Principal and balance move together for liability accounts.
		next := d.Principal.Add(delta)
		if next.Sign() < 0 {
			return nil, fmt.Errorf("reverting %s would drive principal of account %d negative", tx.ID, acct.ID)
		}
		acct.Balance = acct.Balance.Add(delta)
		d.Principal = next

		var warnings []string
		if tx.Type == model.TxBorrowing {
			removed, warn, log := removeLogValue(&d.Extensions, tx, s.tolerance())
			if !removed {
				warnings = append(warnings, warn)
			} else if log.Type == model.LogOpen {
				// The opening borrow wrote the terms and the projected
				// interest schedule; reverting it clears them too, or a
				// deleted loan would keep reporting phantom cash flows.
				d.InterestRate = decimal.Zero
				d.InterestType = ""
				d.Cycle = ""
				d.TermMonths = 0
				d.StartDate = time.Time{}
				d.EndDate = time.Time{}
				d.Schedule = nil
			}
		}

		if acct.Status == model.StatusClosed && d.Principal.Sign() > 0 {
			acct.Status = model.StatusActive
		}
		acct.Detail = d
		w.put(acct)
		return warnings, nil

	case *model.InvestmentDetail:
		if !investmentLeg(tx.Type, sd) {
			break
		}
		acct.Balance = acct.Balance.Add(delta)

		switch tx.Type {
		case model.TxAssetBuy:
			next := d.TotalUnits.Sub(tx.Units)
			if next.Sign() < 0 {
				return nil, fmt.Errorf("%w: reverting buy %s would drive units of account %d negative", ErrOversell, tx.ID, acct.ID)
			}
			d.TotalUnits = next

		case model.TxAssetSell:
			d.TotalUnits = d.TotalUnits.Add(tx.Units)
			if acct.Status == model.StatusLiquidated {
				acct.Status = model.StatusActive
			}
		}

		var warnings []string
		removed, warn, log := removeLogValue(&d.Logs, tx, s.tolerance())
		if !removed {
			warnings = append(warnings, warn)
		} else if tx.Type == model.TxAssetSell {
			// Undo the balanced P/L pair using the pnl recorded at sell
			// time; today's average cost may differ.
			d.RealizedPnL = d.RealizedPnL.Sub(log.Pnl)
			acct.Balance = acct.Balance.Sub(log.Pnl)
			if acct.FundID != 0 {
				w.bump(acct.FundID, log.Pnl.Neg())
			} else {
				warnings = append(warnings, fmt.Sprintf("account %d has no linked fund; realized P/L %s not reverted", acct.ID, log.Pnl))
			}
		}

		acct.Detail = d
		w.put(acct)
		return warnings, nil

	case *model.SavingsDetail:
		if tx.Type != model.TxSavingsDeposit && tx.Type != model.TxSavingsWithdrawal {
			break
		}
		acct.Balance = acct.Balance.Add(delta)

		var warnings []string
		switch tx.Type {
		case model.TxSavingsDeposit:
			if !removeDeposit(&d.Deposits, tx, s.tolerance()) {
				warnings = append(warnings, fmt.Sprintf("no deposit matched transaction %s on account %d", tx.ID, acct.ID))
			}
		case model.TxSavingsWithdrawal:
			// Reverting a withdrawal restores principal to the deposit it
			// came from, or recreates it when fully withdrawn.
			restored := false
			for i, dep := range d.Deposits {
				if dep.ID == tx.RelatedDetailID {
					dep.Principal = dep.Principal.Add(tx.Amount)
					d.Deposits[i] = dep
					restored = true
					break
				}
			}
			if !restored {
				d.Deposits = append(d.Deposits, model.Deposit{
					ID:        tx.RelatedDetailID,
					Principal: tx.Amount,
					StartDate: tx.Date,
				})
			}
		}

		acct.Detail = d
		w.put(acct)
		return warnings, nil

	case *model.RealEstateDetail:
		if tx.Type != model.TxCapitalInjection || sd != debit {
			break
		}
		acct.Balance = acct.Balance.Add(delta)
		d.TotalInvestment = d.TotalInvestment.Sub(tx.Amount)

		var warnings []string
		removed, warn := removeLog(&d.Logs, tx, s.tolerance())
		if !removed {
			warnings = append(warnings, warn)
		}
		acct.Detail = d
		w.put(acct)
		return warnings, nil
	}

	w.bump(acct.ID, delta)
	return nil, nil
}

// removeLog removes the detail log entry a transaction created: by exact id
// when the transaction carries one, else the first same-day entry whose value
// is within the configured tolerance. It reports whether an entry was removed
// and a warning when not.
func removeLog(logs *[]model.DetailLog, tx model.Transaction, tol decimal.Decimal) (bool, string) {
	ok, warn, _ := removeLogValue(logs, tx, tol)
	return ok, warn
}

func removeLogValue(logs *[]model.DetailLog, tx model.Transaction, tol decimal.Decimal) (bool, string, model.DetailLog) {
	if tx.RelatedDetailID != "" {
		for i, log := range *logs {
			if log.ID == tx.RelatedDetailID {
				removed := log
				*logs = append((*logs)[:i], (*logs)[i+1:]...)
				return true, "", removed
			}
		}
		return false, fmt.Sprintf("detail log %q not found for transaction %s", tx.RelatedDetailID, tx.ID), model.DetailLog{}
	}

	// Heuristic fallback: same date, value within tolerance, first match
	// wins.
	for i, log := range *logs {
		if !sameDay(log.Date, tx.Date) {
			continue
		}
		value := log.Amount
		if !log.Units.IsZero() && !tx.Price.IsZero() {
			value = tx.Price.Mul(log.Units)
		}
		if value.Sub(tx.Amount).Abs().LessThanOrEqual(tol) {
			removed := log
			*logs = append((*logs)[:i], (*logs)[i+1:]...)
			return true, "", removed
		}
	}
	return false, fmt.Sprintf("no detail log within tolerance %s of transaction %s", tol, tx.ID), model.DetailLog{}
}

// removeDeposit is the deposit-list analogue of removeLog.
func removeDeposit(deposits *[]model.Deposit, tx model.Transaction, tol decimal.Decimal) bool {
	if tx.RelatedDetailID != "" {
		for i, dep := range *deposits {
			if dep.ID == tx.RelatedDetailID {
				*deposits = append((*deposits)[:i], (*deposits)[i+1:]...)
				return true
			}
		}
		return false
	}
	for i, dep := range *deposits {
		if sameDay(dep.StartDate, tx.Date) && dep.Principal.Sub(tx.Amount).Abs().LessThanOrEqual(tol) {
			*deposits = append((*deposits)[:i], (*deposits)[i+1:]...)
			return true
		}
	}
	return false
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
