package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the top-level mono2ledger config.yaml.
type Config struct {
	Settings   Settings          `yaml:"settings"`
	Accounts   map[string]string `yaml:"accounts,omitempty"`
	Categories map[string]Values `yaml:"categories,omitempty"`
	Match      []Matcher         `yaml:"match,omitempty"`
}

// Settings holds run-wide options.
type Settings struct {
	LedgerFile            string   `yaml:"ledger_file,omitempty"`
	BackupDir             string   `yaml:"backup_dir,omitempty"`
	LedgerDateFormat      string   `yaml:"ledger_date_format,omitempty"` // Go time layout
	Currency              string   `yaml:"currency,omitempty"`
	TrimLeadingZeros      bool     `yaml:"trim_leading_zeros"`
	TransferPayee         string   `yaml:"transfer_payee,omitempty"`
	TransferTolerance     Duration `yaml:"transfer_tolerance,omitempty"`
	RecordCashback        *bool    `yaml:"record_cashback,omitempty"`
	CashbackPayee         string   `yaml:"cashback_payee,omitempty"`
	CashbackAssetAccount  string   `yaml:"cashback_asset_account,omitempty"`
	CashbackIncomeAccount string   `yaml:"cashback_income_account,omitempty"`
	IgnoredAccounts       []string `yaml:"ignored_accounts"`
	APIToken              string   `yaml:"api_token,omitempty"`
}

// Values is the overridable attribute fragment shared by categories and
// matchers. A nil field means "inherit"; a set field always overrides.
type Values struct {
	Payee         *string `yaml:"payee,omitempty"`
	LedgerAccount *string `yaml:"ledger_account,omitempty"`
	SourceSuffix  *string `yaml:"source_suffix,omitempty"`
	Ignore        *bool   `yaml:"ignore,omitempty"`
}

// Matcher is one node of the ordered classification rule tree.
type Matcher struct {
	Values      `yaml:",inline"`
	Category    string     `yaml:"category,omitempty"`
	MCC         IntList    `yaml:"mcc,omitempty"`
	Description StringList `yaml:"description,omitempty"`
	Match       []Matcher  `yaml:"match,omitempty"` // nested submatchers
}

// Load reads a config.yaml from disk and applies defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.applyDefaults()
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

// DefaultPath returns the conventional config location,
// <user config dir>/mono2ledger/config.yaml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolving config dir: %w", err)
	}
	return filepath.Join(dir, "mono2ledger", "config.yaml"), nil
}

// Default returns a starter Config for a new setup.
func Default() *Config {
	cfg := &Config{
		Settings: Settings{
			LedgerFile:      "~/ledger/journal.ledger",
			IgnoredAccounts: []string{},
		},
		Accounts: map[string]string{
			"example-account-id": "Assets:Mono:Black",
		},
		Categories: map[string]Values{
			"groceries": {LedgerAccount: strptr("Expenses:Food:Groceries")},
		},
		Match: []Matcher{
			{
				Category: "groceries",
				MCC:      IntList{5411, 5499},
				Match: []Matcher{
					{Description: StringList{"(?i)atb"}, Values: Values{Payee: strptr("ATB")}},
				},
			},
		},
	}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	s := &c.Settings
	if s.LedgerDateFormat == "" {
		s.LedgerDateFormat = "2006/01/02"
	}
	if s.Currency == "" {
		s.Currency = "UAH"
	}
	if s.TransferPayee == "" {
		s.TransferPayee = "Transfer"
	}
	if s.RecordCashback == nil {
		t := true
		s.RecordCashback = &t
	}
	if s.CashbackPayee == "" {
		s.CashbackPayee = "Cashback"
	}
	if s.CashbackAssetAccount == "" {
		s.CashbackAssetAccount = "Assets:Mono2ledger:Cashback"
	}
	if s.CashbackIncomeAccount == "" {
		s.CashbackIncomeAccount = "Income:Mono2ledger:Cashback"
	}
}

func strptr(s string) *string { return &s }

// Duration wraps time.Duration for YAML scalars like "36h".
type Duration time.Duration

// UnmarshalYAML decodes a duration string.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	dur, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", raw, err)
	}
	*d = Duration(dur)
	return nil
}

// MarshalYAML encodes the duration as a string.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// IntList accepts either a single integer or a list of integers.
type IntList []int

// UnmarshalYAML decodes a scalar or sequence node.
func (l *IntList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.SequenceNode {
		var vals []int
		if err := node.Decode(&vals); err != nil {
			return err
		}
		*l = vals
		return nil
	}
	var val int
	if err := node.Decode(&val); err != nil {
		return err
	}
	*l = IntList{val}
	return nil
}

// StringList accepts either a single string or a list of strings.
type StringList []string

// UnmarshalYAML decodes a scalar or sequence node.
func (l *StringList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.SequenceNode {
		var vals []string
		if err := node.Decode(&vals); err != nil {
			return err
		}
		*l = vals
		return nil
	}
	var val string
	if err := node.Decode(&val); err != nil {
		return err
	}
	*l = StringList{val}
	return nil
}
