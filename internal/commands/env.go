package commands

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/tally-dev/tally/internal/auditlog"
	"github.com/tally-dev/tally/internal/config"
	"github.com/tally-dev/tally/internal/gitops"
	"github.com/tally-dev/tally/internal/ledger"
	"github.com/tally-dev/tally/internal/store"
)

// configFile is the ledger's configuration file name at its root.
const configFile = "tally.yaml"

const dateFormat = "2006-01-02"

// env is one opened ledger directory: its config, store, and engine.
type env struct {
	dir string
	cfg *config.Config
	st  *store.JSONStore
	svc *ledger.Service
}

// openLedger loads the config at dir and wires up the posting engine.
func openLedger(dir string) (*env, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	cfg, err := config.Load(filepath.Join(absDir, configFile))
	if err != nil {
		return nil, fmt.Errorf("not a ledger directory (run tally init first): %w", err)
	}
	st := store.NewJSONStore(filepath.Join(absDir, cfg.Store.Snapshot))
	svc := ledger.NewService(st, cfg.Ledger, auditlog.CSVSink{Root: absDir})
	return &env{dir: absDir, cfg: cfg, st: st, svc: svc}, nil
}

// autoCommit snapshots the ledger directory in git when enabled.
func (e *env) autoCommit(message string) {
	hash, err := gitops.AutoCommit(e.dir, e.cfg.Git, message)
	if err != nil {
		fmt.Printf("warning: git auto-commit failed: %v\n", err)
		return
	}
	if hash != "" {
		fmt.Printf("committed %s\n", hash)
	}
}

// dirFlag adds the shared --dir flag.
func dirFlag(cmd *cobra.Command) {
	cmd.Flags().String("dir", ".", "ledger directory")
}

// parseDate parses a YYYY-MM-DD flag, defaulting to today when empty.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	d, err := time.Parse(dateFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date %q (want YYYY-MM-DD): %w", s, err)
	}
	return d, nil
}

// parseAmount parses a decimal flag, treating empty as zero.
func parseAmount(s, name string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parsing %s %q: %w", name, s, err)
	}
	return d, nil
}
