package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the top-level tally.yaml configuration.
type Config struct {
	Ledger LedgerConfig `yaml:"ledger"`
	Store  StoreConfig  `yaml:"store"`
	Git    GitConfig    `yaml:"git"`
}

// LedgerConfig tunes the posting and reconciliation engine.
type LedgerConfig struct {
	// RevertTolerance is the absolute amount tolerance used when a revert
	// has to match a detail log by date and value instead of an exact id.
	RevertTolerance float64 `yaml:"revert_tolerance"`
	// MinimumPaymentRate is the fraction of a credit card balance due as
	// minimum payment.
	MinimumPaymentRate float64 `yaml:"minimum_payment_rate"`
	// ConflictRetries is how many times a commit is recomputed after a
	// snapshot version conflict.
	ConflictRetries int `yaml:"conflict_retries"`
}

// StoreConfig locates the snapshot file, relative to the ledger root.
type StoreConfig struct {
	Snapshot string `yaml:"snapshot"`
}

// GitConfig controls git integration.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Load reads a tally.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new ledger.
func Default() *Config {
	return &Config{
		Ledger: LedgerConfig{
			RevertTolerance:    1000,
			MinimumPaymentRate: 0.05,
			ConflictRetries:    3,
		},
		Store: StoreConfig{
			Snapshot: "ledger.json",
		},
		Git: GitConfig{
			AutoCommit:  false,
			AuthorName:  "Tally",
			AuthorEmail: "ledger@tally.dev",
		},
	}
}
