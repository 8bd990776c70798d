package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tally-dev/tally/internal/ledger"
	"github.com/tally-dev/tally/internal/model"
)

// actionFlags collects the posting fields shared by post and edit.
type actionFlags struct {
	txType  string
	date    string
	amount  string
	debit   int
	credit  int
	units   string
	price   string
	fees    string
	deposit string
	note    string

	// Opening terms for borrowings and term deposits.
	rate   string
	term   int
	cycle  string
	payDay int
}

func (f *actionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.txType, "type", "", "transaction type (expense, income, asset-buy, ...)")
	cmd.Flags().StringVar(&f.date, "date", "", "transaction date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&f.amount, "amount", "", "amount (derived from units and price for trades)")
	cmd.Flags().IntVar(&f.debit, "debit", 0, "debit account id")
	cmd.Flags().IntVar(&f.credit, "credit", 0, "credit account id")
	cmd.Flags().StringVar(&f.units, "units", "", "units bought or sold")
	cmd.Flags().StringVar(&f.price, "price", "", "price per unit")
	cmd.Flags().StringVar(&f.fees, "fees", "", "transaction fees")
	cmd.Flags().StringVar(&f.deposit, "deposit", "", "term deposit id for withdrawals")
	cmd.Flags().StringVar(&f.note, "note", "", "free-form note")
	cmd.Flags().StringVar(&f.rate, "rate", "", "annual interest rate percent (opens terms)")
	cmd.Flags().IntVar(&f.term, "term", 0, "term length in months (opens terms)")
	cmd.Flags().StringVar(&f.cycle, "cycle", string(model.CycleMonthly), "interest cycle (monthly, quarterly, semi-annual, yearly, end-of-term)")
	cmd.Flags().IntVar(&f.payDay, "pay-day", -1, "fixed payment day of month (0 = last day, -1 = follow start date)")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("debit")
	_ = cmd.MarkFlagRequired("credit")
}

// action converts the flags into a posting action.
func (f *actionFlags) action() (ledger.Action, error) {
	date, err := parseDate(f.date)
	if err != nil {
		return ledger.Action{}, err
	}

	a := ledger.Action{
		Type:            model.TxType(f.txType),
		Date:            date,
		DebitAccountID:  f.debit,
		CreditAccountID: f.credit,
		DepositID:       f.deposit,
		Note:            f.note,
	}

	if a.Amount, err = parseAmount(f.amount, "amount"); err != nil {
		return ledger.Action{}, err
	}
	if a.Units, err = parseAmount(f.units, "units"); err != nil {
		return ledger.Action{}, err
	}
	if a.Price, err = parseAmount(f.price, "price"); err != nil {
		return ledger.Action{}, err
	}
	if a.Fees, err = parseAmount(f.fees, "fees"); err != nil {
		return ledger.Action{}, err
	}

	if f.term > 0 {
		rate, err := parseAmount(f.rate, "rate")
		if err != nil {
			return ledger.Action{}, err
		}
		a.Terms = &ledger.OpenTerms{
			Rate:            rate,
			TermMonths:      f.term,
			Cycle:           model.Cycle(f.cycle),
			FixedPaymentDay: f.payDay,
		}
	}

	return a, nil
}

func newPostCommand() *cobra.Command {
	var flags actionFlags

	cmd := &cobra.Command{
		Use:   "post",
		Short: "Post one transaction to the ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			e, err := openLedger(dir)
			if err != nil {
				return err
			}

			a, err := flags.action()
			if err != nil {
				return err
			}

			txID, err := e.svc.Post(a)
			if err != nil {
				return err
			}

			fmt.Printf("posted %s\n", txID)
			e.autoCommit("post " + txID)
			return nil
		},
	}

	dirFlag(cmd)
	flags.register(cmd)
	return cmd
}
