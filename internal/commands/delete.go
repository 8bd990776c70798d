package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDeleteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <tx-id>",
		Short: "Revert a transaction and remove its record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			e, err := openLedger(dir)
			if err != nil {
				return err
			}

			warnings, err := e.svc.Delete(args[0])
			if err != nil {
				return err
			}
			for _, w := range warnings {
				fmt.Printf("warning: %s\n", w)
			}

			fmt.Printf("deleted %s\n", args[0])
			e.autoCommit("delete " + args[0])
			return nil
		},
	}

	dirFlag(cmd)
	return cmd
}

func newEditCommand() *cobra.Command {
	var flags actionFlags

	cmd := &cobra.Command{
		Use:   "edit <tx-id>",
		Short: "Replace a transaction with a corrected one",
		Long: `Edit reverts the named transaction and posts the corrected action in its
place. Both halves commit as one atomic unit, so balances are never counted
twice and never half-updated.`,
		Args: cobra.ExactArgs(1),
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

			newID, warnings, err := e.svc.Edit(args[0], a)
			if err != nil {
				return err
			}
			for _, w := range warnings {
				fmt.Printf("warning: %s\n", w)
			}

			fmt.Printf("replaced %s with %s\n", args[0], newID)
			e.autoCommit(fmt.Sprintf("edit %s -> %s", args[0], newID))
			return nil
		},
	}

	dirFlag(cmd)
	flags.register(cmd)
	return cmd
}
