package commands

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/tally-dev/tally/internal/accounts"
	"github.com/tally-dev/tally/internal/credit"
	"github.com/tally-dev/tally/internal/model"
)

func newStatusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show billing-cycle status for every credit card",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			e, err := openLedger(dir)
			if err != nil {
				return err
			}

			snap, err := e.st.ReadSnapshot()
			if err != nil {
				return err
			}

			minRate := decimal.NewFromFloat(e.cfg.Ledger.MinimumPaymentRate)
			found := false
			ix := accounts.NewIndex(snap.Accounts)
			for _, a := range ix.ByCategory(model.CategoryCreditCard) {
				d, ok := a.Detail.(*model.CreditCardDetail)
				if !ok || !a.Active() {
					continue
				}
				found = true

				st := credit.Compute(a.Balance, *d, minRate, time.Now())
				fmt.Printf("%d %s\n", a.ID, a.Name)
				fmt.Printf("  cycle %s, due in %d days\n", st.CycleLabel, st.DaysToDue)
				fmt.Printf("  balance %s of %s (%s%% used, %s available)\n",
					a.Balance.StringFixed(2), d.Limit.StringFixed(2),
					st.Utilization.StringFixed(1), st.Available.StringFixed(2))
				fmt.Printf("  minimum payment %s\n", st.MinimumPayment.StringFixed(2))
			}
			if !found {
				fmt.Println("no active credit card accounts")
			}
			return nil
		},
	}

	dirFlag(cmd)
	return cmd
}
