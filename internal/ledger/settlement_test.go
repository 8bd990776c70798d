package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tally-dev/tally/internal/model"
)

func TestSettlementTotal(t *testing.T) {
	equalDec(t, "5150000", SettlementTotal(dec("5000000"), dec("120000"), dec("30000")))
	equalDec(t, "5000000", SettlementTotal(dec("5000000"), dec("0"), dec("0")))
}

func TestSettle_Full(t *testing.T) {
	svc, st, _ := newTestService(t)

	_, err := svc.Post(Action{
		Type: model.TxBorrowing, Date: date(2025, time.January, 1),
		Amount: dec("5000000"), DebitAccountID: 1010, CreditAccountID: 2010,
		Terms: &OpenTerms{Rate: dec("6"), TermMonths: 24, Cycle: model.CycleMonthly, FixedPaymentDay: -1},
	})
	require.NoError(t, err)

	txID, err := svc.Settle(SettleParams{
		LiabilityAccountID: 2010,
		CashAccountID:      1010,
		InterestAccountID:  5020,
		FeeAccountID:       5030,
		AccruedInterest:    dec("120000"),
		Fee:                dec("30000"),
		Date:               date(2025, time.July, 1),
	})
	require.NoError(t, err)
	require.NotEmpty(t, txID)

	loan := account(t, st, 2010)
	assert.Equal(t, model.StatusClosed, loan.Status)
	equalDec(t, "0", loan.Balance)
	equalDec(t, "0", liabilityDetail(t, st, 2010).Principal)

	// Cash: +5,000,000 borrow, -5,000,000 payoff, -120,000 interest. The fee
	// is booked against the equity fund, not cash.
	equalDec(t, "9880000", balance(t, st, 1010))
	equalDec(t, "120000", balance(t, st, 5020))
	equalDec(t, "30000", balance(t, st, 5030))
	equalDec(t, "-30000", balance(t, st, 3010))
}

func TestSettle_PrincipalOnly(t *testing.T) {
	svc, st, _ := newTestService(t)

	_, err := svc.Post(Action{
		Type: model.TxBorrowing, Date: date(2025, time.January, 1),
		Amount: dec("1000000"), DebitAccountID: 1010, CreditAccountID: 2010,
	})
	require.NoError(t, err)

	_, err = svc.Settle(SettleParams{
		LiabilityAccountID: 2010,
		CashAccountID:      1010,
		Date:               date(2025, time.March, 1),
	})
	require.NoError(t, err)

	equalDec(t, "10000000", balance(t, st, 1010))
	assert.Equal(t, model.StatusClosed, account(t, st, 2010).Status)
}

func TestSettle_AdoptsFundForFee(t *testing.T) {
	svc, st, sink := newTestService(t)

	_, err := svc.Post(Action{
		Type: model.TxBorrowing, Date: date(2025, time.January, 1),
		Amount: dec("1000000"), DebitAccountID: 1010, CreditAccountID: 2010,
	})
	require.NoError(t, err)
	require.Zero(t, account(t, st, 2010).FundID)

	_, err = svc.Settle(SettleParams{
		LiabilityAccountID: 2010,
		CashAccountID:      1010,
		FeeAccountID:       5030,
		Fee:                dec("10000"),
		Date:               date(2025, time.March, 1),
	})
	require.NoError(t, err)

	assert.Equal(t, 3010, account(t, st, 2010).FundID, "adopted link survives the commit")
	require.NotEmpty(t, sink.byAction("fund-link-adopted"))
}

func TestSettle_Validation(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Settle(SettleParams{LiabilityAccountID: 2010, CashAccountID: 1010})
	require.Error(t, err, "date required")

	_, err = svc.Settle(SettleParams{
		LiabilityAccountID: 2010, CashAccountID: 1010,
		AccruedInterest: dec("100"), Date: date(2025, time.March, 1),
	})
	require.Error(t, err, "interest account required when interest given")

	_, err = svc.Settle(SettleParams{
		LiabilityAccountID: 2010, CashAccountID: 1010,
		Fee: dec("100"), Date: date(2025, time.March, 1),
	})
	require.Error(t, err, "fee account required when fee given")

	// Nothing borrowed yet, nothing to settle.
	_, err = svc.Settle(SettleParams{
		LiabilityAccountID: 2010, CashAccountID: 1010,
		Date: date(2025, time.March, 1),
	})
	require.Error(t, err)

	_, err = svc.Settle(SettleParams{
		LiabilityAccountID: 1010, CashAccountID: 1020,
		Date: date(2025, time.March, 1),
	})
	require.Error(t, err, "not a liability account")
}
