package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tally-dev/tally/internal/ledger"
)

func newSettleCommand() *cobra.Command {
	var (
		liability       int
		cash            int
		interestAccount int
		feeAccount      int
		interest        string
		fee             string
		date            string
		note            string
	)

	cmd := &cobra.Command{
		Use:   "settle",
		Short: "Pay off a liability in full and close it",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			e, err := openLedger(dir)
			if err != nil {
				return err
			}

			d, err := parseDate(date)
			if err != nil {
				return err
			}
			interestAmt, err := parseAmount(interest, "interest")
			if err != nil {
				return err
			}
			feeAmt, err := parseAmount(fee, "fee")
			if err != nil {
				return err
			}

			txID, err := e.svc.Settle(ledger.SettleParams{
				LiabilityAccountID: liability,
				CashAccountID:      cash,
				InterestAccountID:  interestAccount,
				FeeAccountID:       feeAccount,
				AccruedInterest:    interestAmt,
				Fee:                feeAmt,
				Date:               d,
				Note:               note,
			})
			if err != nil {
				return err
			}

			fmt.Printf("settled with %s\n", txID)
			e.autoCommit("settle " + txID)
			return nil
		},
	}

	dirFlag(cmd)
	cmd.Flags().IntVar(&liability, "liability", 0, "liability account id")
	cmd.Flags().IntVar(&cash, "cash", 0, "cash account id the payoff comes from")
	cmd.Flags().IntVar(&interestAccount, "interest-account", 0, "expense account for accrued interest")
	cmd.Flags().IntVar(&feeAccount, "fee-account", 0, "expense account for the settlement fee")
	cmd.Flags().StringVar(&interest, "interest", "", "accrued interest amount")
	cmd.Flags().StringVar(&fee, "fee", "", "settlement fee amount")
	cmd.Flags().StringVar(&date, "date", "", "settlement date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&note, "note", "", "free-form note")
	_ = cmd.MarkFlagRequired("liability")
	_ = cmd.MarkFlagRequired("cash")

	return cmd
}
