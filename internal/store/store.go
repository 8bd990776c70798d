// Package store holds the persistence contract the ledger engine needs: a
// point-in-time snapshot read and an all-or-nothing commit of a write list,
// rejected when the underlying state moved since the snapshot was taken.
package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tally-dev/tally/internal/model"
)

// ErrConflict is returned by CommitAtomic when the stored version no longer
// matches the snapshot the writes were computed from. Callers re-read and
// recompute.
var ErrConflict = errors.New("store: snapshot version conflict")

// Store is the contract the ledger engine consumes. Implementations must make
// CommitAtomic all-or-nothing: a failure leaves no write applied.
type Store interface {
	ReadSnapshot() (*Snapshot, error)
	CommitAtomic(base *Snapshot, writes []Write) error
}

// Meta records provenance of a snapshot file.
type Meta struct {
	Storage   string    `json:"storage"`
	Timestamp time.Time `json:"timestamp"`
}

// Snapshot is a consistent point-in-time copy of the whole ledger. Version
// increases by one per successful commit and keys the conflict check.
type Snapshot struct {
	Meta         Meta                `json:"meta"`
	Version      int64               `json:"version"`
	Accounts     []model.Account     `json:"accounts"`
	Transactions []model.Transaction `json:"transactions"`
}

// Account returns a copy of the account with the given id.
func (s *Snapshot) Account(id int) (model.Account, bool) {
	for _, a := range s.Accounts {
		if a.ID == id {
			a.Detail = model.CloneDetail(a.Detail)
			return a, true
		}
	}
	return model.Account{}, false
}

// Transaction returns the transaction with the given id.
func (s *Snapshot) Transaction(id string) (model.Transaction, bool) {
	for _, t := range s.Transactions {
		if t.ID == id {
			return t, true
		}
	}
	return model.Transaction{}, false
}

// Op is the kind of mutation a Write performs.
type Op string

const (
	OpSet       Op = "set"
	OpIncrement Op = "increment"
	OpDelete    Op = "delete"
)

// Write is one mutation in an atomic commit.
type Write struct {
	Op Op

	// Set: the full new state of the target.
	Account     *model.Account
	Transaction *model.Transaction

	// Increment: balance delta for an account.
	AccountID int
	Delta     decimal.Decimal

	// Delete: transaction id.
	TransactionID string
}

// SetAccount returns a write replacing (or inserting) an account's state.
func SetAccount(a model.Account) Write {
	return Write{Op: OpSet, Account: &a}
}

// IncrementBalance returns a write adding delta to an account's balance.
func IncrementBalance(accountID int, delta decimal.Decimal) Write {
	return Write{Op: OpIncrement, AccountID: accountID, Delta: delta}
}

// SetTransaction returns a write replacing (or inserting) a transaction.
func SetTransaction(t model.Transaction) Write {
	return Write{Op: OpSet, Transaction: &t}
}

// DeleteTransaction returns a write removing a transaction.
func DeleteTransaction(id string) Write {
	return Write{Op: OpDelete, TransactionID: id}
}

// apply mutates snap with the writes, or fails without partial effect having
// any meaning (callers discard snap on error).
func apply(snap *Snapshot, writes []Write) error {
	for i, w := range writes {
		if err := applyOne(snap, w); err != nil {
			return fmt.Errorf("write %d: %w", i, err)
		}
	}
	return nil
}

func applyOne(snap *Snapshot, w Write) error {
	switch w.Op {
	case OpSet:
		switch {
		case w.Account != nil:
			for i, a := range snap.Accounts {
				if a.ID == w.Account.ID {
					snap.Accounts[i] = *w.Account
					return nil
				}
			}
			snap.Accounts = append(snap.Accounts, *w.Account)
			return nil
		case w.Transaction != nil:
			for i, t := range snap.Transactions {
				if t.ID == w.Transaction.ID {
					snap.Transactions[i] = *w.Transaction
					return nil
				}
			}
			snap.Transactions = append(snap.Transactions, *w.Transaction)
			return nil
		default:
			return errors.New("set write has no payload")
		}

	case OpIncrement:
		for i := range snap.Accounts {
			if snap.Accounts[i].ID == w.AccountID {
				snap.Accounts[i].Balance = snap.Accounts[i].Balance.Add(w.Delta)
				return nil
			}
		}
		return fmt.Errorf("increment: unknown account %d", w.AccountID)

	case OpDelete:
		if w.TransactionID == "" {
			return errors.New("delete write has no transaction id")
		}
		for i, t := range snap.Transactions {
			if t.ID == w.TransactionID {
				snap.Transactions = append(snap.Transactions[:i], snap.Transactions[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("delete: unknown transaction %q", w.TransactionID)

	default:
		return fmt.Errorf("unknown op %q", w.Op)
	}
}
