package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trustvest/trustvest/journal"
	"github.com/trustvest/trustvest/risk"
	"github.com/trustvest/trustvest/sim"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.NotNil(t, cfg)
	assert.NoError(t, cfg.Validate())

	p, err := cfg.Risk.Policy()
	require.NoError(t, err)
	want := risk.DefaultPolicy()
	assert.True(t, want.HighValueThreshold.Equal(p.HighValueThreshold))
	assert.Equal(t, want.RapidWithdrawalWindow, p.RapidWithdrawalWindow)
	assert.Equal(t, want.RapidWithdrawalScoreDelta, p.RapidWithdrawalScoreDelta)

	sp, err := cfg.Simulation.Params()
	require.NoError(t, err)
	assert.Equal(t, sim.DefaultParams(), sp)

	assert.Equal(t, 2*time.Second, cfg.Session.CatalogTimeoutDuration())
	assert.Equal(t, 20*time.Second, cfg.Advisor.TimeoutDuration())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
		errMsg  string
	}{
		{
			name:   "valid config",
			mutate: func(*Config) {},
		},
		{
			name:    "bad threshold",
			mutate:  func(c *Config) { c.Risk.HighValueThreshold = "lots" },
			wantErr: true,
			errMsg:  "risk.high_value_threshold",
		},
		{
			name:    "zero threshold",
			mutate:  func(c *Config) { c.Risk.HighValueThreshold = "0" },
			wantErr: true,
			errMsg:  "must be positive",
		},
		{
			name:    "bad window",
			mutate:  func(c *Config) { c.Risk.RapidWithdrawalWindow = "soon" },
			wantErr: true,
			errMsg:  "risk.rapid_withdrawal_window",
		},
		{
			name:    "negative delta",
			mutate:  func(c *Config) { c.Risk.HighValueScoreDelta = -1 },
			wantErr: true,
			errMsg:  "deltas must not be negative",
		},
		{
			name:    "too few days",
			mutate:  func(c *Config) { c.Simulation.Days = 1 },
			wantErr: true,
			errMsg:  "simulation.days",
		},
		{
			name:    "crash drop out of range",
			mutate:  func(c *Config) { c.Simulation.CrashDrop = 1.5 },
			wantErr: true,
			errMsg:  "simulation.crash_drop",
		},
		{
			name:   "manual stepping",
			mutate: func(c *Config) { c.Simulation.TickPeriod = "0s" },
		},
		{
			name:    "negative period",
			mutate:  func(c *Config) { c.Simulation.TickPeriod = "-1s" },
			wantErr: true,
			errMsg:  "simulation.tick_period",
		},
		{
			name:    "csv without files",
			mutate:  func(c *Config) { c.Journal.Type = "csv" },
			wantErr: true,
			errMsg:  "required for CSV type",
		},
		{
			name:    "sqlite without path",
			mutate:  func(c *Config) { c.Journal.Type = "sqlite" },
			wantErr: true,
			errMsg:  "db_path required",
		},
		{
			name:    "unknown journal",
			mutate:  func(c *Config) { c.Journal.Type = "kafka" },
			wantErr: true,
			errMsg:  "journal.type",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Log.Level = "loud" },
			wantErr: true,
			errMsg:  "log.level",
		},
		{
			name:    "bad catalog timeout",
			mutate:  func(c *Config) { c.Session.CatalogTimeout = "2 seconds" },
			wantErr: true,
			errMsg:  "session.catalog_timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				if tt.errMsg != "" {
					assert.Contains(t, err.Error(), tt.errMsg)
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name string
		ext  string
	}{
		{"json format", ".json"},
		{"yaml format", ".yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Simulation.Seed = 7
			cfg.Advisor.URL = "http://127.0.0.1:8000"
			path := filepath.Join(tmpDir, "test"+tt.ext)

			require.NoError(t, cfg.SaveToFile(path))
			_, err := os.Stat(path)
			require.NoError(t, err)

			loaded, err := LoadFromFile(path)
			require.NoError(t, err)
			assert.Equal(t, cfg, loaded)
		})
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	require.NoError(t, os.WriteFile(path, []byte("simulation:\n  seed: 9\n  tick_period: 250ms\n"), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, int64(9), cfg.Simulation.Seed)
	assert.Equal(t, "250ms", cfg.Simulation.TickPeriod)
	assert.Equal(t, 45, cfg.Simulation.Days)
	assert.Equal(t, "5000", cfg.Risk.HighValueThreshold)
}

func TestLoadInvalidFile(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path.yaml")
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("simulation: [unclosed"), 0644))
	_, err = LoadFromFile(path)
	assert.Error(t, err)
}

func TestJournalOpen(t *testing.T) {
	dir := t.TempDir()

	j, err := JournalConfig{Type: "none"}.Open()
	require.NoError(t, err)
	assert.IsType(t, journal.Nop{}, j)

	j, err = JournalConfig{Type: "sqlite", DBPath: filepath.Join(dir, "j.db")}.Open()
	require.NoError(t, err)
	assert.IsType(t, &journal.SQLite{}, j)
	require.NoError(t, j.Close())

	j, err = JournalConfig{
		Type:            "csv",
		SignalsFile:     filepath.Join(dir, "s.csv"),
		InvestmentsFile: filepath.Join(dir, "i.csv"),
		TradesFile:      filepath.Join(dir, "t.csv"),
	}.Open()
	require.NoError(t, err)
	assert.IsType(t, &journal.CSVJournal{}, j)
	require.NoError(t, j.Close())

	_, err = JournalConfig{Type: "bogus"}.Open()
	assert.Error(t, err)
}
