package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/store"
)

func TestDelete_Expense_RoundTrip(t *testing.T) {
	svc, st, _ := newTestService(t)

	txID, err := svc.Post(Action{
		Type: model.TxExpense, Date: date(2025, time.January, 15),
		Amount: dec("50000"), DebitAccountID: 5010, CreditAccountID: 1010,
	})
	require.NoError(t, err)

	warnings, err := svc.Delete(txID)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	equalDec(t, "0", balance(t, st, 5010))
	equalDec(t, "10000000", balance(t, st, 1010))

	snap, _ := st.ReadSnapshot()
	_, ok := snap.Transaction(txID)
	assert.False(t, ok, "transaction record must be gone")
}

func TestDelete_DebtRepayment(t *testing.T) {
	svc, st, _ := newTestService(t)

	_, err := svc.Post(Action{
		Type: model.TxBorrowing, Date: date(2025, time.February, 1),
		Amount: dec("5000000"), DebitAccountID: 1010, CreditAccountID: 2010,
	})
	require.NoError(t, err)

	repayID, err := svc.Post(Action{
		Type: model.TxDebtRepayment, Date: date(2025, time.March, 1),
		Amount: dec("500000"), DebitAccountID: 2010, CreditAccountID: 1010,
	})
	require.NoError(t, err)
	equalDec(t, "4500000", liabilityDetail(t, st, 2010).Principal)
	cashAfterRepay := balance(t, st, 1010)

	warnings, err := svc.Delete(repayID)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	equalDec(t, "5000000", liabilityDetail(t, st, 2010).Principal)
	equalDec(t, "5000000", balance(t, st, 2010))
	equalDec(t, cashAfterRepay.Add(dec("500000")).String(), balance(t, st, 1010))
}

func TestDelete_FullRepayment_Reopens(t *testing.T) {
	svc, st, _ := newTestService(t)

	_, err := svc.Post(Action{
		Type: model.TxBorrowing, Date: date(2025, time.February, 1),
		Amount: dec("1000000"), DebitAccountID: 1010, CreditAccountID: 2010,
	})
	require.NoError(t, err)

	repayID, err := svc.Post(Action{
		Type: model.TxDebtRepayment, Date: date(2025, time.June, 1),
		Amount: dec("1000000"), DebitAccountID: 2010, CreditAccountID: 1010,
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusClosed, account(t, st, 2010).Status)

	_, err = svc.Delete(repayID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusActive, account(t, st, 2010).Status)
	equalDec(t, "1000000", liabilityDetail(t, st, 2010).Principal)
}

func TestDelete_Buy_RoundTrip(t *testing.T) {
	svc, st, _ := newTestService(t)

	txID, err := svc.Post(Action{
		Type: model.TxAssetBuy, Date: date(2025, time.April, 1),
		DebitAccountID: 1030, CreditAccountID: 1010,
		Units: dec("10"), Price: dec("100"), Fees: dec("5"),
	})
	require.NoError(t, err)

	warnings, err := svc.Delete(txID)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	d := investmentDetail(t, st, 1030)
	equalDec(t, "0", d.TotalUnits)
	assert.Empty(t, d.Logs, "the buy's lot log entry must be removed")
	equalDec(t, "0", balance(t, st, 1030))
	equalDec(t, "10000000", balance(t, st, 1010))
}

func TestDelete_Sell_RoundTrip(t *testing.T) {
	svc, st, _ := newTestService(t)

	_, err := svc.Post(Action{
		Type: model.TxAssetBuy, Date: date(2025, time.April, 1),
		DebitAccountID: 1030, CreditAccountID: 1010,
		Units: dec("10"), Price: dec("100"), Fees: dec("5"),
	})
	require.NoError(t, err)

	cashBefore := balance(t, st, 1010)
	sellID, err := svc.Post(Action{
		Type: model.TxAssetSell, Date: date(2025, time.May, 10),
		DebitAccountID: 1010, CreditAccountID: 1030,
		Units: dec("4"), Price: dec("150"), Fees: dec("2"),
	})
	require.NoError(t, err)

	warnings, err := svc.Delete(sellID)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	d := investmentDetail(t, st, 1030)
	equalDec(t, "10", d.TotalUnits)
	equalDec(t, "100.5", d.AvgPrice)
	equalDec(t, "0", d.RealizedPnL, "realized P/L must be unwound")
	require.Len(t, d.Logs, 1, "only the buy log remains")

	equalDec(t, "1005", balance(t, st, 1030))
	equalDec(t, "0", balance(t, st, 3010), "fund gain must be unwound")
	equalDec(t, cashBefore.String(), balance(t, st, 1010))
}

func TestDelete_Sell_ReopensLiquidated(t *testing.T) {
	svc, st, _ := newTestService(t)

	_, err := svc.Post(Action{
		Type: model.TxAssetBuy, Date: date(2025, time.April, 1),
		DebitAccountID: 1030, CreditAccountID: 1010,
		Units: dec("10"), Price: dec("100"),
	})
	require.NoError(t, err)

	sellID, err := svc.Post(Action{
		Type: model.TxAssetSell, Date: date(2025, time.May, 10),
		DebitAccountID: 1010, CreditAccountID: 1030,
		Units: dec("10"), Price: dec("120"),
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusLiquidated, account(t, st, 1030).Status)

	_, err = svc.Delete(sellID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusActive, account(t, st, 1030).Status)
	equalDec(t, "10", investmentDetail(t, st, 1030).TotalUnits)
}

func TestDelete_SavingsDeposit_RoundTrip(t *testing.T) {
	svc, st, _ := newTestService(t)

	depID, err := svc.Post(Action{
		Type: model.TxSavingsDeposit, Date: date(2025, time.June, 1),
		Amount: dec("2000000"), DebitAccountID: 1040, CreditAccountID: 1010,
		Terms: &OpenTerms{Rate: dec("4"), TermMonths: 12, Cycle: model.CycleEndOfTerm, FixedPaymentDay: -1},
	})
	require.NoError(t, err)

	warnings, err := svc.Delete(depID)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	assert.Empty(t, savingsDetail(t, st, 1040).Deposits)
	equalDec(t, "0", balance(t, st, 1040))
	equalDec(t, "10000000", balance(t, st, 1010))
}

func TestDelete_SavingsWithdrawal_RestoresDeposit(t *testing.T) {
	svc, st, _ := newTestService(t)

	depID, err := svc.Post(Action{
		Type: model.TxSavingsDeposit, Date: date(2025, time.June, 1),
		Amount: dec("2000000"), DebitAccountID: 1040, CreditAccountID: 1010,
	})
	require.NoError(t, err)

	wdID, err := svc.Post(Action{
		Type: model.TxSavingsWithdrawal, Date: date(2025, time.September, 1),
		Amount: dec("2000000"), DebitAccountID: 1010, CreditAccountID: 1040,
		DepositID: depID,
	})
	require.NoError(t, err)
	assert.Empty(t, savingsDetail(t, st, 1040).Deposits)

	_, err = svc.Delete(wdID)
	require.NoError(t, err)

	d := savingsDetail(t, st, 1040)
	require.Len(t, d.Deposits, 1)
	equalDec(t, "2000000", d.Deposits[0].Principal)
	equalDec(t, "2000000", balance(t, st, 1040))
}

// seedLegacy builds a snapshot with a transaction that carries no
// related-detail id, the way imported history looks.
func seedLegacy(t *testing.T, st *store.JSONStore, logs []model.DetailLog, tx model.Transaction) {
	t.Helper()
	base, err := st.ReadSnapshot()
	require.NoError(t, err)

	inv := account(t, st, 1030)
	d := inv.Detail.(*model.InvestmentDetail)
	d.TotalUnits = dec("10")
	d.AvgPrice = dec("100000")
	d.Logs = logs
	inv.Detail = d
	inv.Balance = dec("1000000")

	require.NoError(t, st.CommitAtomic(base, []store.Write{
		store.SetAccount(inv),
		store.SetTransaction(tx),
	}))
}

func TestDelete_HeuristicMatch(t *testing.T) {
	svc, st, _ := newTestService(t)

	buyDate := date(2025, time.April, 1)
	seedLegacy(t, st,
		[]model.DetailLog{
			{ID: "legacy-1", Date: buyDate, Type: model.LogBuy, Amount: dec("999500"), Units: dec("10")},
		},
		model.Transaction{
			ID: "2025-04-001", Type: model.TxAssetBuy, Date: buyDate,
			DebitAccountID: 1030, CreditAccountID: 1010,
			Amount: dec("1000000"), Units: dec("10"),
		})

	// 999,500 is within the 1,000 tolerance of the 1,000,000 amount.
	warnings, err := svc.Delete("2025-04-001")
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Empty(t, investmentDetail(t, st, 1030).Logs)
}

func TestDelete_HeuristicMiss_WarnsAndRevertsBalances(t *testing.T) {
	svc, st, sink := newTestService(t)

	buyDate := date(2025, time.April, 1)
	seedLegacy(t, st,
		[]model.DetailLog{
			{ID: "legacy-1", Date: buyDate, Type: model.LogBuy, Amount: dec("500000"), Units: dec("5")},
		},
		model.Transaction{
			ID: "2025-04-001", Type: model.TxAssetBuy, Date: buyDate,
			DebitAccountID: 1030, CreditAccountID: 1010,
			Amount: dec("1000000"), Units: dec("10"),
		})

	cashBefore := balance(t, st, 1010)
	warnings, err := svc.Delete("2025-04-001")
	require.NoError(t, err, "a log miss is recoverable, not fatal")
	require.Len(t, warnings, 1)

	// Balance and units are still reverted; the log list is untouched.
	d := investmentDetail(t, st, 1030)
	equalDec(t, "0", d.TotalUnits)
	require.Len(t, d.Logs, 1)
	equalDec(t, "0", balance(t, st, 1030))
	equalDec(t, cashBefore.Add(dec("1000000")).String(), balance(t, st, 1010))

	require.NotEmpty(t, sink.byAction("revert-log-miss"))
}

func TestDelete_HeuristicAmbiguous_FirstMatchWins(t *testing.T) {
	svc, st, _ := newTestService(t)

	buyDate := date(2025, time.April, 1)
	seedLegacy(t, st,
		[]model.DetailLog{
			{ID: "legacy-1", Date: buyDate, Type: model.LogBuy, Amount: dec("1000000"), Units: dec("10")},
			{ID: "legacy-2", Date: buyDate, Type: model.LogBuy, Amount: dec("1000000"), Units: dec("10")},
		},
		model.Transaction{
			ID: "2025-04-001", Type: model.TxAssetBuy, Date: buyDate,
			DebitAccountID: 1030, CreditAccountID: 1010,
			Amount: dec("1000000"), Units: dec("10"),
		})

	warnings, err := svc.Delete("2025-04-001")
	require.NoError(t, err)
	assert.Empty(t, warnings)

	d := investmentDetail(t, st, 1030)
	require.Len(t, d.Logs, 1, "only the first matching entry is removed")
	assert.Equal(t, "legacy-2", d.Logs[0].ID)
}

func TestDelete_UnknownTransaction(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.Delete("2025-01-999")
	require.Error(t, err)
}

func TestEdit_RevertsThenReposts(t *testing.T) {
	svc, st, _ := newTestService(t)

	oldID, err := svc.Post(Action{
		Type: model.TxExpense, Date: date(2025, time.January, 15),
		Amount: dec("50000"), DebitAccountID: 5010, CreditAccountID: 1010,
	})
	require.NoError(t, err)

	newID, warnings, err := svc.Edit(oldID, Action{
		Type: model.TxExpense, Date: date(2025, time.January, 15),
		Amount: dec("75000"), DebitAccountID: 5010, CreditAccountID: 1010,
	})
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.NotEqual(t, oldID, newID)

	equalDec(t, "75000", balance(t, st, 5010), "no double counting")
	equalDec(t, "9925000", balance(t, st, 1010))

	snap, _ := st.ReadSnapshot()
	_, ok := snap.Transaction(oldID)
	assert.False(t, ok)
	_, ok = snap.Transaction(newID)
	assert.True(t, ok)
}

func TestEdit_Buy_RecomputesPosition(t *testing.T) {
	svc, st, _ := newTestService(t)

	buyID, err := svc.Post(Action{
		Type: model.TxAssetBuy, Date: date(2025, time.April, 1),
		DebitAccountID: 1030, CreditAccountID: 1010,
		Units: dec("10"), Price: dec("100"), Fees: dec("5"),
	})
	require.NoError(t, err)

	_, _, err = svc.Edit(buyID, Action{
		Type: model.TxAssetBuy, Date: date(2025, time.April, 1),
		DebitAccountID: 1030, CreditAccountID: 1010,
		Units: dec("20"), Price: dec("90"), Fees: dec("0"),
	})
	require.NoError(t, err)

	d := investmentDetail(t, st, 1030)
	equalDec(t, "20", d.TotalUnits)
	equalDec(t, "90", d.AvgPrice)
	require.Len(t, d.Logs, 1)
	equalDec(t, "1800", balance(t, st, 1030))
	equalDec(t, "9998200", balance(t, st, 1010))
}

func TestDelete_Borrowing_RoundTrip(t *testing.T) {
	svc, st, _ := newTestService(t)

	txID, err := svc.Post(Action{
		Type: model.TxBorrowing, Date: date(2025, time.February, 1),
		Amount: dec("12000000"), DebitAccountID: 1010, CreditAccountID: 2010,
		Terms: &OpenTerms{Rate: dec("12"), TermMonths: 12, Cycle: model.CycleMonthly, FixedPaymentDay: -1},
	})
	require.NoError(t, err)

	warnings, err := svc.Delete(txID)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	d := liabilityDetail(t, st, 2010)
	equalDec(t, "0", d.Principal)
	assert.Empty(t, d.Extensions, "the opening extension log must be removed")
	assert.Empty(t, d.Schedule, "projected interest events go with the loan")
	assert.Zero(t, d.TermMonths)
	equalDec(t, "0", d.InterestRate)
	assert.True(t, d.EndDate.IsZero())
	equalDec(t, "0", balance(t, st, 2010))
	equalDec(t, "10000000", balance(t, st, 1010))
}

func TestDelete_Extension_KeepsTerms(t *testing.T) {
	svc, st, _ := newTestService(t)

	_, err := svc.Post(Action{
		Type: model.TxBorrowing, Date: date(2025, time.February, 1),
		Amount: dec("12000000"), DebitAccountID: 1010, CreditAccountID: 2010,
		Terms: &OpenTerms{Rate: dec("12"), TermMonths: 12, Cycle: model.CycleMonthly, FixedPaymentDay: -1},
	})
	require.NoError(t, err)

	// A follow-up borrow without terms extends the existing loan.
	extID, err := svc.Post(Action{
		Type: model.TxBorrowing, Date: date(2025, time.April, 1),
		Amount: dec("1000000"), DebitAccountID: 1010, CreditAccountID: 2010,
	})
	require.NoError(t, err)

	_, err = svc.Delete(extID)
	require.NoError(t, err)

	// Only the extension is undone; the opening terms and schedule stay.
	d := liabilityDetail(t, st, 2010)
	equalDec(t, "12000000", d.Principal)
	assert.Equal(t, 12, d.TermMonths)
	assert.Len(t, d.Schedule, 12)
	require.Len(t, d.Extensions, 1)
	assert.Equal(t, model.LogOpen, d.Extensions[0].Type)
}
