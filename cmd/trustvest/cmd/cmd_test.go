package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trustvest/trustvest/config"
	"github.com/trustvest/trustvest/sim"
)

// resetFlags puts every flag back to its default between executions.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func writeConfig(t *testing.T, mutate func(*config.Config)) string {
	t.Helper()
	c := config.Default()
	c.Log.Level = "error"
	mutate(c)
	path := filepath.Join(t.TempDir(), "trustvest.yaml")
	require.NoError(t, c.SaveToFile(path))
	return path
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "trustvest version "+version)
}

func TestConfigInitAndShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	out, err := execute(t, "config", "init", "-o", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)

	out, err = execute(t, "config", "show", "-c", path)
	require.NoError(t, err)
	assert.Contains(t, out, "seed: 42")
	assert.Contains(t, out, "high_value_threshold:")
}

func TestFraudDemo(t *testing.T) {
	out, err := execute(t, "fraud-demo", "--log-level", "error")
	require.NoError(t, err)

	assert.Contains(t, out, "HIGH_VALUE_TRANSFER")
	assert.Contains(t, out, "BLOCKED")
	assert.Contains(t, out, "RAPID_WITHDRAWAL")
	assert.Contains(t, out, "-> balance 4500.00")
	assert.Contains(t, out, "risk score 70, 2 signal(s), 1 investment(s)")
}

func TestFraudDemoJournaled(t *testing.T) {
	db := filepath.Join(t.TempDir(), "j.sqlite")
	cfgPath := writeConfig(t, func(c *config.Config) {
		c.Journal.Type = "sqlite"
		c.Journal.DBPath = db
	})

	out, err := execute(t, "fraud-demo", "-c", cfgPath)
	require.NoError(t, err)
	m := regexp.MustCompile(`user (\S+)`).FindStringSubmatch(out)
	require.Len(t, m, 2)

	out, err = execute(t, "journal", "signals", m[1], "-c", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, ":TYPE: HIGH_VALUE_TRANSFER")
	assert.Contains(t, out, ":TYPE: RAPID_WITHDRAWAL")
	assert.Contains(t, out, ":VERDICT: BLOCK")

	out, err = execute(t, "journal", "investments", m[1], "-c", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "index-fund-500")
}

func TestSimHold(t *testing.T) {
	out, err := execute(t, "sim", "--period", "0", "--jitter", "0", "-q", "--log-level", "error")
	require.NoError(t, err)

	assert.GreaterOrEqual(t, strings.Count(out, sim.InterventionMessage), 2)
	assert.Contains(t, out, "market closed on day 44")
	assert.Contains(t, out, "CRASH SIMULATOR RUN")
	assert.NotContains(t, out, sim.PanicSellNotice)
}

func TestSimPanicSellsOnce(t *testing.T) {
	orgPath := filepath.Join(t.TempDir(), "run.org")
	out, err := execute(t, "sim", "--period", "0", "--jitter", "0", "-q", "--react", "panic", "--org", orgPath, "--log-level", "error")
	require.NoError(t, err)

	// everything is sold at the first crash, so no further interventions
	assert.Equal(t, 1, strings.Count(out, sim.InterventionMessage))
	assert.FileExists(t, orgPath)
}

func TestSimWithClock(t *testing.T) {
	out, err := execute(t, "sim", "--period", "1ms", "--jitter", "0", "-q", "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "market closed on day 44")
}

func TestSimRejectsUnknownReaction(t *testing.T) {
	_, err := execute(t, "sim", "--react", "shrug")
	assert.Error(t, err)
}

func TestAdviseOffline(t *testing.T) {
	out, err := execute(t, "advise", "tech-startup-fund", "2500", "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "Emerging Tech Crypto Fund")
	assert.Contains(t, out, "verdict: CAUTION")

	_, err = execute(t, "advise", "nope", "10")
	assert.Error(t, err)

	out, err = execute(t, "chat", "should", "I", "sell?")
	require.NoError(t, err)
	assert.Contains(t, out, "AI Assistant")
}

func TestAssets(t *testing.T) {
	out, err := execute(t, "assets")
	require.NoError(t, err)
	assert.Contains(t, out, "gov-bond-001")
	assert.Contains(t, out, "tech-startup-fund")
}
