// Package ledger turns financial actions into balanced double-entry postings
// and can exactly undo them. It is the only writer of account balances,
// sub-ledger details, and transaction records.
package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tally-dev/tally/internal/auditlog"
	"github.com/tally-dev/tally/internal/config"
	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/store"
)

var (
	// ErrOversell means a sell asked for more units than the position holds.
	ErrOversell = errors.New("ledger: sell exceeds held units")
	// ErrOverRepay means a repayment exceeds the outstanding principal.
	ErrOverRepay = errors.New("ledger: repayment exceeds outstanding principal")
	// ErrNoEquityFund means a gain, loss, or fee had to be booked and no
	// active equity fund account exists. This is a configuration error, not
	// a reason to drop the leg.
	ErrNoEquityFund = errors.New("ledger: no active equity fund account")
)

// ValidationError rejects a malformed action before any write is prepared.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// AuditSink receives non-fatal warnings and repair events.
type AuditSink interface {
	Record(entries ...auditlog.Entry) error
}

// Service is the ledger posting and reconciliation engine. Every user action
// is one synchronous compute-then-commit sequence against the store.
type Service struct {
	store store.Store
	cfg   config.LedgerConfig
	audit AuditSink
	now   func() time.Time
}

// NewService creates a ledger Service. audit may be nil.
func NewService(st store.Store, cfg config.LedgerConfig, audit AuditSink) *Service {
	if cfg.ConflictRetries <= 0 {
		cfg.ConflictRetries = 1
	}
	return &Service{store: st, cfg: cfg, audit: audit, now: time.Now}
}

// tolerance returns the heuristic revert match tolerance as a decimal.
func (s *Service) tolerance() decimal.Decimal {
	return decimal.NewFromFloat(s.cfg.RevertTolerance)
}

func (s *Service) record(level auditlog.Level, action, details, txID string) {
	if s.audit == nil {
		return
	}
	// Audit failures must not fail the ledger operation itself.
	_ = s.audit.Record(auditlog.Entry{
		Timestamp: s.now(),
		Level:     level,
		Action:    action,
		Details:   details,
		TxID:      txID,
	})
}

// side distinguishes the two legs of a posting.
type side int

const (
	debit side = iota
	credit
)

// balanceDelta applies the double-entry sign rule: the signed effect of
// posting amount on the given side of an account in the given group.
func balanceDelta(group model.AccountGroup, sd side, amount decimal.Decimal) decimal.Decimal {
	if group.DebitIncreases() == (sd == debit) {
		return amount
	}
	return amount.Neg()
}

// workspace accumulates the mutations of one action against a snapshot and
// emits them as a single atomic write list. Accounts whose detail or status
// changed are replaced wholesale; balance-only changes become increments.
type workspace struct {
	snap     *store.Snapshot
	replaced map[int]model.Account
	deltas   map[int]decimal.Decimal
	newTxs   []model.Transaction
	delTxs   []string
}

func newWorkspace(snap *store.Snapshot) *workspace {
	return &workspace{
		snap:     snap,
		replaced: make(map[int]model.Account),
		deltas:   make(map[int]decimal.Decimal),
	}
}

// account returns the current view of an account, including pending changes.
func (w *workspace) account(id int) (model.Account, bool) {
	a, ok := w.replaced[id]
	if !ok {
		a, ok = w.snap.Account(id)
		if !ok {
			return model.Account{}, false
		}
	}
	if d, pending := w.deltas[id]; pending {
		a.Balance = a.Balance.Add(d)
	}
	return a, true
}

// put replaces an account's state. The caller passes the view it got from
// account(), so any pending balance delta is already folded in.
func (w *workspace) put(a model.Account) {
	w.replaced[a.ID] = a
	delete(w.deltas, a.ID)
}

// bump adds a balance delta without touching detail or status.
func (w *workspace) bump(id int, delta decimal.Decimal) {
	if a, ok := w.replaced[id]; ok {
		a.Balance = a.Balance.Add(delta)
		w.replaced[id] = a
		return
	}
	w.deltas[id] = w.deltas[id].Add(delta)
}

// transaction resolves a transaction id against the snapshot and pending
// deletes/inserts.
func (w *workspace) transaction(txID string) (model.Transaction, bool) {
	for _, del := range w.delTxs {
		if del == txID {
			return model.Transaction{}, false
		}
	}
	for _, t := range w.newTxs {
		if t.ID == txID {
			return t, true
		}
	}
	return w.snap.Transaction(txID)
}

// txIDs returns all transaction ids visible in the workspace.
func (w *workspace) txIDs() []string {
	ids := make([]string, 0, len(w.snap.Transactions)+len(w.newTxs))
	for _, t := range w.snap.Transactions {
		ids = append(ids, t.ID)
	}
	for _, t := range w.newTxs {
		ids = append(ids, t.ID)
	}
	return ids
}

// writes emits the accumulated mutations as one atomic commit.
func (w *workspace) writes() []store.Write {
	var out []store.Write
	// Deterministic order: follow snapshot order for replaced accounts, then
	// any new ones.
	emitted := make(map[int]bool)
	for _, a := range w.snap.Accounts {
		if repl, ok := w.replaced[a.ID]; ok {
			out = append(out, store.SetAccount(repl))
			emitted[a.ID] = true
		} else if d, ok := w.deltas[a.ID]; ok {
			out = append(out, store.IncrementBalance(a.ID, d))
			emitted[a.ID] = true
		}
	}
	for id, a := range w.replaced {
		if !emitted[id] {
			out = append(out, store.SetAccount(a))
		}
	}
	for _, txID := range w.delTxs {
		out = append(out, store.DeleteTransaction(txID))
	}
	for _, t := range w.newTxs {
		out = append(out, store.SetTransaction(t))
	}
	return out
}

// commit runs compute against a fresh snapshot and commits its writes,
// retrying the whole sequence when a concurrent writer moved the snapshot.
func (s *Service) commit(compute func(w *workspace) error) error {
	var lastErr error
	for attempt := 0; attempt < s.cfg.ConflictRetries; attempt++ {
		snap, err := s.store.ReadSnapshot()
		if err != nil {
			return err
		}

		w := newWorkspace(snap)
		if err := compute(w); err != nil {
			return err
		}

		err = s.store.CommitAtomic(snap, w.writes())
		if err == nil {
			return nil
		}
		if !errors.Is(err, store.ErrConflict) {
			return err
		}
		lastErr = err
	}
	return fmt.Errorf("commit retries exhausted: %w", lastErr)
}
