package commands

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tally-dev/tally/internal/accounts"
	"github.com/tally-dev/tally/internal/model"
)

func newAccountsCommand() *cobra.Command {
	var group string
	var category string
	var out string

	cmd := &cobra.Command{
		Use:   "accounts [id]",
		Short: "List the chart of accounts with balances as CSV",
		Args:  cobra.MaximumNArgs(1),
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

			ix := accounts.NewIndex(snap.Accounts)
			accts := ix.All()
			switch {
			case len(args) > 0:
				id, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("parsing account id %q: %w", args[0], err)
				}
				a, ok := ix.Get(id)
				if !ok {
					return fmt.Errorf("unknown account %d", id)
				}
				accts = []model.Account{a}
			case group != "":
				accts = ix.ByGroup(model.AccountGroup(group))
			case category != "":
				accts = ix.ByCategory(model.AccountCategory(category))
			}

			w := os.Stdout
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			return accounts.WriteAccounts(w, accts)
		},
	}

	dirFlag(cmd)
	cmd.Flags().StringVar(&group, "group", "", "only accounts in this group (assets, capital, income, expenses)")
	cmd.Flags().StringVar(&category, "category", "", "only accounts of this category (cash, stocks, liability, ...)")
	cmd.Flags().StringVar(&out, "out", "", "write to a file instead of stdout")

	return cmd
}
