package accounts

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tally-dev/tally/internal/model"
)

// Header is the CSV header for chart-of-accounts exports and imports.
const Header = "id,name,group,category,status,balance"

const (
	numFields   = 6
	colID       = 0
	colName     = 1
	colGroup    = 2
	colCategory = 3
	colStatus   = 4
	colBalance  = 5
)

// WriteAccounts writes the chart of accounts with balances as CSV.
func WriteAccounts(w io.Writer, accts []model.Account) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, a := range accts {
		row := make([]string, numFields)
		row[colID] = strconv.Itoa(a.ID)
		row[colName] = a.Name
		row[colGroup] = string(a.Group)
		row[colCategory] = string(a.Category)
		row[colStatus] = string(a.Status)
		row[colBalance] = a.Balance.StringFixed(2)
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// ReadAccounts parses a chart-of-accounts CSV. Status defaults to active and
// balance to zero when the fields are empty, so hand-written charts stay
// minimal.
func ReadAccounts(r io.Reader) ([]model.Account, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading chart CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var accts []model.Account
	for i, rec := range records[1:] {
		a, err := unmarshalAccount(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		accts = append(accts, a)
	}
	return accts, nil
}

func unmarshalAccount(rec []string) (model.Account, error) {
	id, err := strconv.Atoi(rec[colID])
	if err != nil {
		return model.Account{}, fmt.Errorf("parsing id %q: %w", rec[colID], err)
	}

	balance := decimal.Zero
	if rec[colBalance] != "" {
		balance, err = decimal.NewFromString(rec[colBalance])
		if err != nil {
			return model.Account{}, fmt.Errorf("parsing balance %q: %w", rec[colBalance], err)
		}
	}

	status := model.AccountStatus(rec[colStatus])
	if status == "" {
		status = model.StatusActive
	}

	return model.Account{
		ID:       id,
		Name:     rec[colName],
		Group:    model.AccountGroup(rec[colGroup]),
		Category: model.AccountCategory(rec[colCategory]),
		Status:   status,
		Balance:  balance,
	}, nil
}
