// Package accounts provides in-memory lookup over the chart of accounts in a
// ledger snapshot.
package accounts

import "github.com/tally-dev/tally/internal/model"

// Index provides lookups over a snapshot's accounts. It does not own the
// accounts; build a fresh Index from each snapshot read.
type Index struct {
	accounts []model.Account
	byID     map[int]model.Account
}

// NewIndex creates an Index from a slice of accounts.
func NewIndex(accts []model.Account) *Index {
	byID := make(map[int]model.Account, len(accts))
	for _, a := range accts {
		byID[a.ID] = a
	}
	return &Index{accounts: accts, byID: byID}
}

// All returns all accounts.
func (ix *Index) All() []model.Account {
	return ix.accounts
}

// Get returns an account by ID.
func (ix *Index) Get(id int) (model.Account, bool) {
	a, ok := ix.byID[id]
	return a, ok
}

// ByGroup returns all accounts in the given group.
func (ix *Index) ByGroup(group model.AccountGroup) []model.Account {
	var result []model.Account
	for _, a := range ix.accounts {
		if a.Group == group {
			result = append(result, a)
		}
	}
	return result
}

// ByCategory returns all accounts of the given category.
func (ix *Index) ByCategory(category model.AccountCategory) []model.Account {
	var result []model.Account
	for _, a := range ix.accounts {
		if a.Category == category {
			result = append(result, a)
		}
	}
	return result
}

// DefaultEquityFund returns the first active equity-fund account. It is the
// single implementation of the fallback used when a gain, loss, or fee must
// be booked and no fund is linked.
func (ix *Index) DefaultEquityFund() (model.Account, bool) {
	for _, a := range ix.accounts {
		if a.Category == model.CategoryEquityFund && a.Active() {
			return a, true
		}
	}
	return model.Account{}, false
}
