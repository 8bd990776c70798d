package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tally-dev/tally/internal/accounts"
	"github.com/tally-dev/tally/internal/config"
	"github.com/tally-dev/tally/internal/gitops"
	"github.com/tally-dev/tally/internal/store"
)

func newInitCommand() *cobra.Command {
	var noGit bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new ledger directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(absDir, noGit)
		},
	}

	cmd.Flags().BoolVar(&noGit, "no-git", false, "skip git repository setup")

	return cmd
}

func runInit(dir string, noGit bool) error {
	if _, err := os.Stat(filepath.Join(dir, configFile)); err == nil {
		return fmt.Errorf("%s already exists in %s", configFile, dir)
	}

	dirs := []string{
		"logs",
		"import",
		filepath.Join("import", "processed"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	cfg := config.Default()
	if err := config.Save(filepath.Join(dir, configFile), cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	// Create the empty snapshot, then seed it with the starter chart.
	st := store.NewJSONStore(filepath.Join(dir, cfg.Store.Snapshot))
	if err := st.Init(); err != nil {
		return fmt.Errorf("creating snapshot: %w", err)
	}
	base, err := st.ReadSnapshot()
	if err != nil {
		return fmt.Errorf("reading snapshot: %w", err)
	}
	var writes []store.Write
	for _, a := range accounts.DefaultChart() {
		writes = append(writes, store.SetAccount(a))
	}
	if err := st.CommitAtomic(base, writes); err != nil {
		return fmt.Errorf("seeding chart of accounts: %w", err)
	}

	gitignore := "exports/\n.tally-cache/\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "import", ".gitkeep"), []byte{}, 0o644); err != nil {
		return fmt.Errorf("writing .gitkeep: %w", err)
	}

	if noGit {
		fmt.Printf("Initialized ledger at %s\n", dir)
		return nil
	}

	if err := gitops.Init(dir); err != nil {
		return fmt.Errorf("git init: %w", err)
	}

	hash, err := gitops.CommitAll(dir, "init: new ledger", cfg.Git.AuthorName, cfg.Git.AuthorEmail)
	if err != nil {
		return fmt.Errorf("initial commit: %w", err)
	}

	fmt.Printf("Initialized ledger at %s (%s)\n", dir, hash)
	return nil
}
