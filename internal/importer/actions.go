package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tally-dev/tally/internal/ledger"
	"github.com/tally-dev/tally/internal/model"
)

// ActionsParser parses the native action CSV layout:
//
//	date,type,debit,credit,amount,units,price,fees,deposit_id,note
//
// Amount may be blank for buys and sells; it is derived from units and price.
type ActionsParser struct{}

const (
	actionsDateFormat = "2006-01-02"
	actionsNumFields  = 10
	colDate           = 0
	colType           = 1
	colDebit          = 2
	colCredit         = 3
	colAmount         = 4
	colUnits          = 5
	colPrice          = 6
	colFees           = 7
	colDepositID      = 8
	colNote           = 9
)

// Format returns the parser name.
func (p *ActionsParser) Format() string { return "actions" }

// Parse reads an action CSV and returns posting actions.
func (p *ActionsParser) Parse(r io.Reader) ([]ledger.Action, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = actionsNumFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading actions CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var actions []ledger.Action
	for i, rec := range records[1:] {
		a, err := parseActionRow(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		actions = append(actions, a)
	}
	return actions, nil
}

func parseActionRow(rec []string) (ledger.Action, error) {
	date, err := time.Parse(actionsDateFormat, rec[colDate])
	if err != nil {
		return ledger.Action{}, fmt.Errorf("parsing date %q: %w", rec[colDate], err)
	}

	debit, err := strconv.Atoi(rec[colDebit])
	if err != nil {
		return ledger.Action{}, fmt.Errorf("parsing debit account %q: %w", rec[colDebit], err)
	}
	credit, err := strconv.Atoi(rec[colCredit])
	if err != nil {
		return ledger.Action{}, fmt.Errorf("parsing credit account %q: %w", rec[colCredit], err)
	}

	a := ledger.Action{
		Type:            model.TxType(rec[colType]),
		Date:            date,
		DebitAccountID:  debit,
		CreditAccountID: credit,
		DepositID:       rec[colDepositID],
		Note:            rec[colNote],
	}

	for _, f := range []struct {
		col  int
		name string
		dst  *decimal.Decimal
	}{
		{colAmount, "amount", &a.Amount},
		{colUnits, "units", &a.Units},
		{colPrice, "price", &a.Price},
		{colFees, "fees", &a.Fees},
	} {
		if rec[f.col] == "" {
			continue
		}
		d, err := decimal.NewFromString(rec[f.col])
		if err != nil {
			return ledger.Action{}, fmt.Errorf("parsing %s %q: %w", f.name, rec[f.col], err)
		}
		*f.dst = d
	}

	return a, nil
}
