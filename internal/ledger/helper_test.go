package ledger

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/tally-dev/tally/internal/accounts"
	"github.com/tally-dev/tally/internal/auditlog"
	"github.com/tally-dev/tally/internal/config"
	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/store"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// memSink collects audit entries in memory.
type memSink struct {
	entries []auditlog.Entry
}

func (m *memSink) Record(entries ...auditlog.Entry) error {
	m.entries = append(m.entries, entries...)
	return nil
}

func (m *memSink) byAction(action string) []auditlog.Entry {
	var out []auditlog.Entry
	for _, e := range m.entries {
		if e.Action == action {
			out = append(out, e)
		}
	}
	return out
}

// newTestService seeds a temp store with the default chart (cash funded with
// 10,000,000) and returns a Service over it.
func newTestService(t *testing.T, accts ...model.Account) (*Service, *store.JSONStore, *memSink) {
	t.Helper()

	st := store.NewJSONStore(filepath.Join(t.TempDir(), "ledger.json"))
	if accts == nil {
		accts = accounts.DefaultChart()
		for i := range accts {
			if accts[i].ID == 1010 {
				accts[i].Balance = dec("10000000")
			}
		}
	}

	base, err := st.ReadSnapshot()
	require.NoError(t, err)
	writes := make([]store.Write, 0, len(accts))
	for _, a := range accts {
		writes = append(writes, store.SetAccount(a))
	}
	require.NoError(t, st.CommitAtomic(base, writes))

	sink := &memSink{}
	svc := NewService(st, config.Default().Ledger, sink)
	return svc, st, sink
}

// balance reads an account's current balance.
func balance(t *testing.T, st *store.JSONStore, acctID int) decimal.Decimal {
	t.Helper()
	a := account(t, st, acctID)
	return a.Balance
}

// account reads an account's current state.
func account(t *testing.T, st *store.JSONStore, acctID int) model.Account {
	t.Helper()
	snap, err := st.ReadSnapshot()
	require.NoError(t, err)
	a, ok := snap.Account(acctID)
	require.True(t, ok, "account %d must exist", acctID)
	return a
}

func investmentDetail(t *testing.T, st *store.JSONStore, acctID int) *model.InvestmentDetail {
	t.Helper()
	d, ok := account(t, st, acctID).Detail.(*model.InvestmentDetail)
	require.True(t, ok, "account %d must carry investment detail", acctID)
	return d
}

func liabilityDetail(t *testing.T, st *store.JSONStore, acctID int) *model.LiabilityDetail {
	t.Helper()
	d, ok := account(t, st, acctID).Detail.(*model.LiabilityDetail)
	require.True(t, ok, "account %d must carry liability detail", acctID)
	return d
}

func savingsDetail(t *testing.T, st *store.JSONStore, acctID int) *model.SavingsDetail {
	t.Helper()
	d, ok := account(t, st, acctID).Detail.(*model.SavingsDetail)
	require.True(t, ok, "account %d must carry savings detail", acctID)
	return d
}

// equalDec fails unless got equals want.
func equalDec(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	require.True(t, got.Equal(dec(want)), "want %s, got %s: %v", want, got, msgAndArgs)
}
