package ledger

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tally-dev/tally/internal/accounts"
	"github.com/tally-dev/tally/internal/auditlog"
	"github.com/tally-dev/tally/internal/id"
	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/schedule"
	"github.com/tally-dev/tally/internal/wac"
)

// OpenTerms carries the cycle terms for actions that open a liability or a
// term deposit.
type OpenTerms struct {
	Rate            decimal.Decimal // annual, percent
	TermMonths      int
	Cycle           model.Cycle
	InterestType    string
	FixedPaymentDay int // -1 follows the start date's day, 0 = last of month
}

// Action is a fully-formed request to post one financial event. External
// producers (CLI, importers) only ever hand the poster one of these.
type Action struct {
	Type            model.TxType
	Date            time.Time
	Amount          decimal.Decimal
	DebitAccountID  int
	CreditAccountID int

	// Investment actions.
	Units decimal.Decimal
	Price decimal.Decimal
	Fees  decimal.Decimal

	// Withdrawal of a specific term deposit.
	DepositID string

	Note  string
	Terms *OpenTerms
}

// validate rejects malformed input at the boundary, before any write is
// prepared.
func (a Action) validate() error {
	if a.Type == "" {
		return ValidationError{Field: "type", Reason: "required"}
	}
	if a.Date.IsZero() {
		return ValidationError{Field: "date", Reason: "required"}
	}
	if a.DebitAccountID == 0 || a.CreditAccountID == 0 {
		return ValidationError{Field: "accounts", Reason: "debit and credit accounts required"}
	}
	if a.DebitAccountID == a.CreditAccountID {
		return ValidationError{Field: "accounts", Reason: "debit and credit accounts must differ"}
	}
	if a.Units.Sign() < 0 || a.Price.Sign() < 0 || a.Fees.Sign() < 0 {
		return ValidationError{Field: "units", Reason: "units, price, and fees must not be negative"}
	}
	switch a.Type {
	case model.TxAssetBuy, model.TxAssetSell:
		if a.Units.Sign() <= 0 || a.Price.Sign() <= 0 {
			return ValidationError{Field: "units", Reason: "buy/sell requires positive units and price"}
		}
	}
	if a.amount().Sign() <= 0 {
		return ValidationError{Field: "amount", Reason: "must be positive"}
	}
	return nil
}

// amount returns the transaction amount, derived from units, price, and fees
// for investment actions when not given explicitly.
func (a Action) amount() decimal.Decimal {
	if !a.Amount.IsZero() {
		return a.Amount
	}
	switch a.Type {
	case model.TxAssetBuy:
		return a.Units.Mul(a.Price).Add(a.Fees)
	case model.TxAssetSell:
		return a.Units.Mul(a.Price).Sub(a.Fees)
	default:
		return a.Amount
	}
}

// Post turns an action into balanced account deltas plus a transaction record
// and commits them atomically. It returns the new transaction's id.
func (s *Service) Post(a Action) (string, error) {
	if err := a.validate(); err != nil {
		return "", err
	}

	var txID string
	err := s.commit(func(w *workspace) error {
		var err error
		txID, err = s.post(w, a)
		return err
	})
	return txID, err
}

// post builds the writes for one action into the workspace. It is also the
// repost half of an edit.
func (s *Service) post(w *workspace, a Action) (string, error) {
	amount := a.amount()
	year, month := a.Date.Year(), int(a.Date.Month())
	txID := id.FormatTxID(year, month, id.NextSeq(w.txIDs(), year, month))

	tx := model.Transaction{
		ID:              txID,
		Type:            a.Type,
		Date:            a.Date,
		DebitAccountID:  a.DebitAccountID,
		CreditAccountID: a.CreditAccountID,
		Amount:          amount,
		Units:           a.Units,
		Price:           a.Price,
		Fees:            a.Fees,
		Note:            a.Note,
	}

	// The sign of each leg depends on the account's group, never on the
	// caller's context.
	for _, leg := range []struct {
		acctID int
		sd     side
	}{
		{a.DebitAccountID, debit},
		{a.CreditAccountID, credit},
	} {
		acct, ok := w.account(leg.acctID)
		if !ok {
			return "", ValidationError{Field: "accounts", Reason: fmt.Sprintf("unknown account %d", leg.acctID)}
		}
		if !acct.Active() {
			return "", ValidationError{Field: "accounts", Reason: fmt.Sprintf("account %d is %s", acct.ID, acct.Status)}
		}

		delta := balanceDelta(acct.Group, leg.sd, amount)
		if err := s.postLeg(w, &tx, a, acct, leg.sd, delta); err != nil {
			return "", err
		}
	}

	w.newTxs = append(w.newTxs, tx)
	return txID, nil
}

// postLeg applies one side's balance delta and its sub-ledger side effects.
func (s *Service) postLeg(w *workspace, tx *model.Transaction, a Action, acct model.Account, sd side, delta decimal.Decimal) error {
	switch d := acct.Detail.(type) {
	case *model.InvestmentDetail:
		if investmentLeg(a.Type, sd) {
			return s.postInvestment(w, tx, a, acct, d, delta)
		}

	case *model.LiabilityDetail:
		return s.postLiability(w, tx, a, acct, d, delta)

	case *model.SavingsDetail:
		if a.Type == model.TxSavingsDeposit || a.Type == model.TxSavingsWithdrawal {
			return s.postSavings(w, tx, a, acct, d, delta)
		}

	case *model.RealEstateDetail:
		if a.Type == model.TxCapitalInjection && sd == debit {
			d.TotalInvestment = d.TotalInvestment.Add(tx.Amount)
			d.Logs = append(d.Logs, model.DetailLog{
				ID: tx.ID, Date: a.Date, Type: model.LogInjection, Amount: tx.Amount, Note: a.Note,
			})
			tx.RelatedDetailID = tx.ID
			acct.Balance = acct.Balance.Add(delta)
			acct.Detail = d
			w.put(acct)
			return nil
		}

	case *model.CreditCardDetail:
		// Card balance is what is owed; no sub-ledger beyond the balance.
		if a.Type == model.TxCardPayment && sd == debit && acct.Balance.Add(delta).Sign() < 0 {
			return fmt.Errorf("%w: balance %s, payment %s", ErrOverRepay, acct.Balance, tx.Amount)
		}
	}

	w.bump(acct.ID, delta)
	return nil
}

// investmentLeg reports whether this side of a buy/sell is the position
// account (the other side is plain cash).
func investmentLeg(t model.TxType, sd side) bool {
	return (t == model.TxAssetBuy && sd == debit) || (t == model.TxAssetSell && sd == credit)
}

// postInvestment updates units, weighted-average cost, and the lot log. On a
// sell it also books realized P/L into the linked equity fund as a balanced
// pair of deltas, so the position's balance always equals units x avg cost.
func (s *Service) postInvestment(w *workspace, tx *model.Transaction, a Action, acct model.Account, d *model.InvestmentDetail, delta decimal.Decimal) error {
	acct.Balance = acct.Balance.Add(delta)

	switch a.Type {
	case model.TxAssetBuy:
		d.AvgPrice = wac.Average(d.TotalUnits, d.AvgPrice, a.Units, a.Price, a.Fees)
		d.TotalUnits = d.TotalUnits.Add(a.Units)
		d.Logs = append(d.Logs, model.DetailLog{
			ID: tx.ID, Date: a.Date, Type: model.LogBuy, Amount: tx.Amount, Units: a.Units, Note: a.Note,
		})
		if acct.Status == model.StatusLiquidated {
			acct.Status = model.StatusActive
		}

	case model.TxAssetSell:
		if a.Units.GreaterThan(d.TotalUnits) {
			return fmt.Errorf("%w: held %s, selling %s", ErrOversell, d.TotalUnits, a.Units)
		}

		fund, err := s.resolveFund(w, &acct, tx.ID)
		if err != nil {
			return err
		}

		pnl := wac.RealizedPnL(d.AvgPrice, a.Units, a.Price, a.Fees)
		d.TotalUnits = d.TotalUnits.Sub(a.Units)
		d.RealizedPnL = d.RealizedPnL.Add(pnl)
		d.Logs = append(d.Logs, model.DetailLog{
			ID: tx.ID, Date: a.Date, Type: model.LogSell, Amount: tx.Amount, Units: a.Units, Pnl: pnl, Note: a.Note,
		})

		// Balanced P/L pair: the position sheds its cost basis, the fund
		// absorbs the gain or loss.
		acct.Balance = acct.Balance.Add(pnl)
		w.bump(fund, pnl)

		if d.TotalUnits.IsZero() {
			acct.Status = model.StatusLiquidated
		}
	}

	tx.RelatedDetailID = tx.ID
	acct.Detail = d
	w.put(acct)
	return nil
}

// resolveFund returns the equity fund to book gains/losses against. When the
// account has no linked fund it adopts the default one and persists the link
// as an audited repair.
func (s *Service) resolveFund(w *workspace, acct *model.Account, txID string) (int, error) {
	if acct.FundID != 0 {
		if fund, ok := w.account(acct.FundID); ok && fund.Active() {
			return acct.FundID, nil
		}
	}

	fund, ok := defaultEquityFund(w)
	if !ok {
		return 0, ErrNoEquityFund
	}
	if acct.FundID != fund.ID {
		acct.FundID = fund.ID
		s.record(auditlog.LevelRepair, "fund-link-adopted",
			fmt.Sprintf("account %d now linked to equity fund %d", acct.ID, fund.ID), txID)
	}
	return fund.ID, nil
}

// defaultEquityFund applies the chart's fund selection rule to the
// workspace's current view of the accounts.
func defaultEquityFund(w *workspace) (model.Account, bool) {
	accts := make([]model.Account, 0, len(w.snap.Accounts))
	for _, a := range w.snap.Accounts {
		if cur, ok := w.account(a.ID); ok {
			accts = append(accts, cur)
		}
	}
	return accounts.NewIndex(accts).DefaultEquityFund()
}

// postLiability moves principal together with balance, guards over-repayment,
// and on an opening borrow generates the projected interest schedule.
func (s *Service) postLiability(w *workspace, tx *model.Transaction, a Action, acct model.Account, d *model.LiabilityDetail, delta decimal.Decimal) error {
	next := d.Principal.Add(delta)
	if next.Sign() < 0 {
		return fmt.Errorf("%w: principal %s, repaying %s", ErrOverRepay, d.Principal, tx.Amount)
	}

	acct.Balance = acct.Balance.Add(delta)
	d.Principal = next

	if a.Type == model.TxBorrowing {
		logType := model.LogExtend
		if a.Terms != nil {
			logType = model.LogOpen
			d.InterestRate = a.Terms.Rate
			d.InterestType = a.Terms.InterestType
			d.Cycle = a.Terms.Cycle
			d.TermMonths = a.Terms.TermMonths
			d.StartDate = a.Date
			d.EndDate = schedule.AddMonths(a.Date, a.Terms.TermMonths)

			events, err := schedule.Generate(schedule.Params{
				Principal:       d.Principal,
				AnnualRate:      d.InterestRate,
				StartDate:       a.Date,
				TermMonths:      d.TermMonths,
				Cycle:           d.Cycle,
				Direction:       model.Outflow,
				Label:           acct.Name + " interest",
				FixedPaymentDay: a.Terms.FixedPaymentDay,
			})
			if err != nil {
				return fmt.Errorf("generating liability schedule: %w", err)
			}
			d.Schedule = events
		}
		d.Extensions = append(d.Extensions, model.DetailLog{
			ID: tx.ID, Date: a.Date, Type: logType, Amount: tx.Amount, Note: a.Note,
		})
		tx.RelatedDetailID = tx.ID
	}

	// Full repayment closes the account's economic life.
	if d.Principal.IsZero() && a.Type != model.TxBorrowing {
		acct.Status = model.StatusClosed
	} else if acct.Status == model.StatusClosed && d.Principal.Sign() > 0 {
		acct.Status = model.StatusActive
	}

	acct.Detail = d
	w.put(acct)
	return nil
}

// postSavings opens a term deposit (with its projected interest schedule) or
// withdraws a specific one.
func (s *Service) postSavings(w *workspace, tx *model.Transaction, a Action, acct model.Account, d *model.SavingsDetail, delta decimal.Decimal) error {
	acct.Balance = acct.Balance.Add(delta)

	switch a.Type {
	case model.TxSavingsDeposit:
		dep := model.Deposit{
			ID:        tx.ID,
			Principal: tx.Amount,
			StartDate: a.Date,
		}
		if a.Terms != nil {
			dep.Rate = a.Terms.Rate
			dep.Cycle = a.Terms.Cycle
			dep.TermMonths = a.Terms.TermMonths
			dep.EndDate = schedule.AddMonths(a.Date, a.Terms.TermMonths)

			events, err := schedule.Generate(schedule.Params{
				Principal:       dep.Principal,
				AnnualRate:      dep.Rate,
				StartDate:       a.Date,
				TermMonths:      dep.TermMonths,
				Cycle:           dep.Cycle,
				Direction:       model.Inflow,
				Label:           acct.Name + " interest",
				FixedPaymentDay: a.Terms.FixedPaymentDay,
			})
			if err != nil {
				return fmt.Errorf("generating deposit schedule: %w", err)
			}
			dep.Schedule = events
		}
		d.Deposits = append(d.Deposits, dep)
		tx.RelatedDetailID = tx.ID

	case model.TxSavingsWithdrawal:
		idx := -1
		for i, dep := range d.Deposits {
			if dep.ID == a.DepositID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return ValidationError{Field: "deposit", Reason: fmt.Sprintf("unknown deposit %q", a.DepositID)}
		}
		dep := d.Deposits[idx]
		if tx.Amount.GreaterThan(dep.Principal) {
			return fmt.Errorf("%w: deposit principal %s, withdrawing %s", ErrOverRepay, dep.Principal, tx.Amount)
		}
		if tx.Amount.Equal(dep.Principal) {
			d.Deposits = append(d.Deposits[:idx], d.Deposits[idx+1:]...)
		} else {
			dep.Principal = dep.Principal.Sub(tx.Amount)
			d.Deposits[idx] = dep
		}
		tx.RelatedDetailID = a.DepositID
	}

	acct.Detail = d
	w.put(acct)
	return nil
}
