package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/pla-ledger/pla/internal/accounts"
	"github.com/pla-ledger/pla/internal/cardpay"
	"github.com/pla-ledger/pla/internal/classify"
	"github.com/pla-ledger/pla/internal/journal"
	"github.com/pla-ledger/pla/internal/model"
	"github.com/pla-ledger/pla/internal/ofxmap"
	"github.com/pla-ledger/pla/internal/pipeline"
	"github.com/pla-ledger/pla/internal/transfer"
)

// FileName is the project configuration file at the repository root.
const FileName = "pla.yaml"

// EnvFileName is the optional dotenv file at the repository root.
const EnvFileName = ".env"

// Config represents the top-level pla.yaml configuration.
type Config struct {
	Ledger         LedgerConfig    `yaml:"ledger"`
	Classification classify.Config `yaml:"classification"`
	Transfers      transfer.Config `yaml:"transfers"`
	CardPayments   cardpay.Config  `yaml:"card_payments"`
	Routing        journal.Routing `yaml:"routing"`
	Statements     ofxmap.Config   `yaml:"statements"`
	Log            LogConfig       `yaml:"log"`
	Git            GitConfig       `yaml:"git"`
}

// LedgerConfig locates the generated files. Paths are relative to the
// repository root.
type LedgerConfig struct {
	Currency string `yaml:"currency"`
	History  string `yaml:"history"`  // replaced by each Organizze run
	Imports  string `yaml:"imports"`  // appended by each OFX run
	Accounts string `yaml:"accounts"` // open directives
	Mapping  string `yaml:"mapping"`  // OFX pattern table
}

// LogConfig controls diagnostic output.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // console, json
}

// GitConfig controls git integration.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// overrides are the PLA_* variables honored on top of pla.yaml. Empty values
// leave the file setting untouched.
type overrides struct {
	OwnerName string `env:"PLA_OWNER_NAME"`
	Currency  string `env:"PLA_CURRENCY"`
	LogLevel  string `env:"PLA_LOG_LEVEL"`
	LogFormat string `env:"PLA_LOG_FORMAT"`
}

// Load reads a pla.yaml file from disk. Keys missing from the file keep
// their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := Default("")
	fixed := cfg.CardPayments.Fixed
	cfg.CardPayments.Fixed = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.CardPayments.Fixed == nil {
		cfg.CardPayments.Fixed = fixed
	}
	return cfg, nil
}

// LoadProject loads <root>/pla.yaml, then <root>/.env if present, then the
// PLA_* environment overrides, and validates the result.
func LoadProject(root string) (*Config, error) {
	cfg, err := Load(filepath.Join(root, FileName))
	if err != nil {
		return nil, err
	}
	if err := ApplyEnv(cfg, filepath.Join(root, EnvFileName)); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv loads envFile (a missing file is not an error) and applies the
// PLA_* overrides. Variables already set in the process win over the file.
func ApplyEnv(cfg *Config, envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	var o overrides
	if err := env.Parse(&o); err != nil {
		return fmt.Errorf("parsing environment: %w", err)
	}
	if o.OwnerName != "" {
		cfg.Statements.Holder = o.OwnerName
	}
	if o.Currency != "" {
		cfg.Ledger.Currency = o.Currency
	}
	if o.LogLevel != "" {
		cfg.Log.Level = o.LogLevel
	}
	if o.LogFormat != "" {
		cfg.Log.Format = o.LogFormat
	}
	return nil
}

// Validate checks the settings that would otherwise fail deep in a run.
func (c *Config) Validate() error {
	if c.Ledger.Currency == "" {
		return fmt.Errorf("ledger.currency is required")
	}
	if c.Ledger.History == "" || c.Ledger.Imports == "" {
		return fmt.Errorf("ledger.history and ledger.imports are required")
	}
	if c.Transfers.ToleranceDays < 0 {
		return fmt.Errorf("transfers.tolerance_days must not be negative, got %d", c.Transfers.ToleranceDays)
	}
	switch c.Log.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("log.format must be console or json, got %q", c.Log.Format)
	}
	return nil
}

// CheckAccounts verifies that every card named in card_payments is a
// liability in the registry. Unknown ids would otherwise post as assets.
func (c *Config) CheckAccounts(registry *accounts.Registry) error {
	seen := make(map[string]bool)
	for _, card := range c.CardPayments.Fixed {
		seen[card] = true
	}
	for _, s := range c.CardPayments.Shared {
		seen[s.LegacyCard] = true
		seen[s.LoyaltyCard] = true
	}
	cards := make([]string, 0, len(seen))
	for card := range seen {
		cards = append(cards, card)
	}
	sort.Strings(cards)

	for _, card := range cards {
		acct, ok := registry.Get(card)
		if !ok {
			return fmt.Errorf("card_payments: card %q is not in %s", card, accounts.File)
		}
		if acct.Kind != model.AccountKindLiability {
			return fmt.Errorf("card_payments: card %q is registered as %s, not liability", card, acct.Kind)
		}
	}
	return nil
}

// Pipeline returns the engine settings.
func (c *Config) Pipeline() pipeline.Config {
	return pipeline.Config{
		Classification: c.Classification,
		Transfers:      c.Transfers,
		CardPayments:   c.CardPayments,
		Routing:        c.Routing,
	}
}

// OFX returns the statement classifier settings. Fallback accounts come from
// the routing table so both import paths post to the same places.
func (c *Config) OFX() ofxmap.Config {
	out := c.Statements
	out.PendingTransfer = c.Routing.PendingTransfer
	out.NeedsReview = c.Routing.NeedsReview
	return out
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

// Default returns a Config with sensible defaults for a new project. An empty
// owner keeps the default statement holder.
func Default(owner string) *Config {
	statements := ofxmap.DefaultConfig()
	if owner != "" {
		statements.Holder = owner
	}
	return &Config{
		Ledger: LedgerConfig{
			Currency: journal.DefaultCurrency,
			History:  "ledger/historico.beancount",
			Imports:  "ledger/importado.beancount",
			Accounts: "ledger/accounts.beancount",
			Mapping:  "mapping.csv",
		},
		Classification: classify.DefaultConfig(),
		Transfers:      transfer.DefaultConfig(),
		CardPayments:   cardpay.DefaultConfig(),
		Routing:        journal.DefaultRouting(),
		Statements:     statements,
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Git: GitConfig{
			AutoCommit:  false,
			AuthorName:  "pla",
			AuthorEmail: "pla@localhost",
		},
	}
}
