package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/trustvest/trustvest/journal"
	"github.com/trustvest/trustvest/risk"
	"github.com/trustvest/trustvest/sim"
)

// Config is the complete trustvest configuration.
type Config struct {
	Session    SessionConfig    `json:"session" yaml:"session"`
	Advisor    AdvisorConfig    `json:"advisor" yaml:"advisor"`
	Risk       RiskConfig       `json:"risk" yaml:"risk"`
	Simulation SimulationConfig `json:"simulation" yaml:"simulation"`
	Journal    JournalConfig    `json:"journal" yaml:"journal"`
	Log        LogConfig        `json:"log" yaml:"log"`
}

// SessionConfig holds the collaborator timeouts used by a session.
type SessionConfig struct {
	CatalogTimeout string `json:"catalog_timeout" yaml:"catalog_timeout"` // e.g. "2s"
}

type AdvisorConfig struct {
	URL     string `json:"url,omitempty" yaml:"url,omitempty"` // empty means offline
	Timeout string `json:"timeout" yaml:"timeout"`
}

// RiskConfig mirrors risk.Policy with file-friendly types.
type RiskConfig struct {
	HighValueThreshold        string `json:"high_value_threshold" yaml:"high_value_threshold"`
	HighValueMaxPriorInvests  int    `json:"high_value_max_prior_invests" yaml:"high_value_max_prior_invests"`
	HighValueScoreDelta       int    `json:"high_value_score_delta" yaml:"high_value_score_delta"`
	RapidWithdrawalWindow     string `json:"rapid_withdrawal_window" yaml:"rapid_withdrawal_window"`
	RapidWithdrawalScoreDelta int    `json:"rapid_withdrawal_score_delta" yaml:"rapid_withdrawal_score_delta"`
	OddHourScoreDelta         int    `json:"odd_hour_score_delta" yaml:"odd_hour_score_delta"`
}

type SimulationConfig struct {
	Seed           int64   `json:"seed" yaml:"seed"`
	Days           int     `json:"days" yaml:"days"`
	Jitter         float64 `json:"jitter" yaml:"jitter"`
	InitialBalance float64 `json:"initial_balance" yaml:"initial_balance"`
	LotSize        int     `json:"lot_size" yaml:"lot_size"`
	Baseline       float64 `json:"baseline" yaml:"baseline"`
	CrashDrop      float64 `json:"crash_drop" yaml:"crash_drop"`
	TickPeriod     string  `json:"tick_period" yaml:"tick_period"` // "0s" steps manually
}

// JournalConfig selects where records go.
type JournalConfig struct {
	Type            string `json:"type" yaml:"type"` // "none", "csv" or "sqlite"
	SignalsFile     string `json:"signals_file,omitempty" yaml:"signals_file,omitempty"`
	InvestmentsFile string `json:"investments_file,omitempty" yaml:"investments_file,omitempty"`
	TradesFile      string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	DBPath          string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

type LogConfig struct {
	Level       string `json:"level" yaml:"level"` // debug, info, warn, error
	Development bool   `json:"development" yaml:"development"`
}

// LoadFromFile loads configuration from a YAML or JSON file and validates it.
// Missing fields keep their defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	if err := yaml.Unmarshal(data, cfg); err != nil {
		cfg = Default()
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", errors.Join(err, jerr))
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile writes YAML for .yaml/.yml paths and indented JSON otherwise.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if _, err := parseDuration("session.catalog_timeout", c.Session.CatalogTimeout); err != nil {
		return err
	}
	if _, err := parseDuration("advisor.timeout", c.Advisor.Timeout); err != nil {
		return err
	}
	if _, err := c.Risk.Policy(); err != nil {
		return err
	}
	if _, err := c.Simulation.Params(); err != nil {
		return err
	}
	switch c.Journal.Type {
	case "", "none":
	case "csv":
		if c.Journal.SignalsFile == "" || c.Journal.InvestmentsFile == "" || c.Journal.TradesFile == "" {
			return fmt.Errorf("journal signals_file, investments_file and trades_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'none', 'csv' or 'sqlite'")
	}
	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level)
	}
	return nil
}

func (s SessionConfig) CatalogTimeoutDuration() time.Duration {
	d, _ := parseDuration("session.catalog_timeout", s.CatalogTimeout)
	return d
}

func (a AdvisorConfig) TimeoutDuration() time.Duration {
	d, _ := parseDuration("advisor.timeout", a.Timeout)
	return d
}

// Policy converts the section into fraud rule thresholds.
func (r RiskConfig) Policy() (risk.Policy, error) {
	threshold, err := decimal.NewFromString(r.HighValueThreshold)
	if err != nil {
		return risk.Policy{}, fmt.Errorf("risk.high_value_threshold: %w", err)
	}
	if !threshold.IsPositive() {
		return risk.Policy{}, fmt.Errorf("risk.high_value_threshold must be positive")
	}
	window, err := parseDuration("risk.rapid_withdrawal_window", r.RapidWithdrawalWindow)
	if err != nil {
		return risk.Policy{}, err
	}
	if window <= 0 {
		return risk.Policy{}, fmt.Errorf("risk.rapid_withdrawal_window must be positive")
	}
	if r.HighValueMaxPriorInvests < 0 {
		return risk.Policy{}, fmt.Errorf("risk.high_value_max_prior_invests must not be negative")
	}
	if r.HighValueScoreDelta < 0 || r.RapidWithdrawalScoreDelta < 0 || r.OddHourScoreDelta < 0 {
		return risk.Policy{}, fmt.Errorf("risk score deltas must not be negative")
	}
	return risk.Policy{
		HighValueThreshold:        threshold,
		HighValueMaxPriorInvests:  r.HighValueMaxPriorInvests,
		HighValueScoreDelta:       r.HighValueScoreDelta,
		RapidWithdrawalWindow:     window,
		RapidWithdrawalScoreDelta: r.RapidWithdrawalScoreDelta,
		OddHourScoreDelta:         r.OddHourScoreDelta,
	}, nil
}

// Params converts the section into simulator parameters with the scripted
// news storyline.
func (s SimulationConfig) Params() (sim.Params, error) {
	period, err := parseDuration("simulation.tick_period", s.TickPeriod)
	if err != nil {
		return sim.Params{}, err
	}
	switch {
	case s.Days < 2:
		return sim.Params{}, fmt.Errorf("simulation.days must be at least 2")
	case s.Jitter < 0:
		return sim.Params{}, fmt.Errorf("simulation.jitter must not be negative")
	case s.InitialBalance <= 0:
		return sim.Params{}, fmt.Errorf("simulation.initial_balance must be positive")
	case s.LotSize <= 0:
		return sim.Params{}, fmt.Errorf("simulation.lot_size must be positive")
	case s.Baseline <= 0:
		return sim.Params{}, fmt.Errorf("simulation.baseline must be positive")
	case s.CrashDrop <= 0 || s.CrashDrop >= 1:
		return sim.Params{}, fmt.Errorf("simulation.crash_drop must be between 0 and 1")
	case period < 0:
		return sim.Params{}, fmt.Errorf("simulation.tick_period must not be negative")
	}
	return sim.Params{
		Seed:           s.Seed,
		Days:           s.Days,
		Jitter:         s.Jitter,
		InitialBalance: s.InitialBalance,
		LotSize:        s.LotSize,
		Baseline:       s.Baseline,
		CrashDrop:      s.CrashDrop,
		TickPeriod:     period,
		News:           sim.DefaultNews(),
	}, nil
}

// Open builds the configured journal. "none" yields journal.Nop.
func (j JournalConfig) Open() (journal.Journal, error) {
	switch j.Type {
	case "", "none":
		return journal.Nop{}, nil
	case "csv":
		cj, err := journal.NewCSV(j.SignalsFile, j.InvestmentsFile, j.TradesFile)
		if err != nil {
			return nil, err
		}
		return cj, nil
	case "sqlite":
		sj, err := journal.NewSQLite(j.DBPath)
		if err != nil {
			return nil, err
		}
		return sj, nil
	default:
		return nil, fmt.Errorf("unknown journal type %q", j.Type)
	}
}

func parseDuration(field, s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	return d, nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	p := risk.DefaultPolicy()
	sp := sim.DefaultParams()
	return &Config{
		Session: SessionConfig{
			CatalogTimeout: "2s",
		},
		Advisor: AdvisorConfig{
			Timeout: "20s",
		},
		Risk: RiskConfig{
			HighValueThreshold:        p.HighValueThreshold.String(),
			HighValueMaxPriorInvests:  p.HighValueMaxPriorInvests,
			HighValueScoreDelta:       p.HighValueScoreDelta,
			RapidWithdrawalWindow:     p.RapidWithdrawalWindow.String(),
			RapidWithdrawalScoreDelta: p.RapidWithdrawalScoreDelta,
			OddHourScoreDelta:         p.OddHourScoreDelta,
		},
		Simulation: SimulationConfig{
			Seed:           sp.Seed,
			Days:           sp.Days,
			Jitter:         sp.Jitter,
			InitialBalance: sp.InitialBalance,
			LotSize:        sp.LotSize,
			Baseline:       sp.Baseline,
			CrashDrop:      sp.CrashDrop,
			TickPeriod:     sp.TickPeriod.String(),
		},
		Journal: JournalConfig{
			Type: "none",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
