package journal

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()

	fh, err := os.Open(path)
	require.NoError(t, err)
	defer fh.Close()

	rows, err := csv.NewReader(fh).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestCSVJournal(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	sp := filepath.Join(dir, "signals.csv")
	ip := filepath.Join(dir, "investments.csv")
	tp := filepath.Join(dir, "trades.csv")

	j, err := NewCSV(sp, ip, tp)
	require.NoError(t, err)

	ts := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, j.RecordSignal(SignalRecord{SignalID: "S1", UserID: "u1", Type: "RAPID_WITHDRAWAL", Severity: "CRITICAL", Verdict: "BLOCK", ScoreDelta: 40, RiskScore: 60, Time: ts, Description: "rapid, withdrawal"}))
	require.NoError(t, j.RecordInvestment(InvestmentRecord{InvestmentID: "I1", UserID: "u1", AssetID: "gov-bond-001", Amount: decimal.NewFromInt(6000), Balance: decimal.NewFromInt(4000), Time: ts}))
	require.NoError(t, j.RecordTrade(TradeRecord{TradeID: "T1", RunID: "R1", Day: 2, Side: "BUY", Units: 10, Price: 101.25, Balance: 8987.5, Holdings: 10, Time: ts}))
	require.NoError(t, j.Close())

	signals := readCSV(t, sp)
	require.Len(t, signals, 2)
	assert.Equal(t, signalHeader, signals[0])
	assert.Equal(t, "rapid, withdrawal", signals[1][8])
	assert.Equal(t, "40", signals[1][5])

	invs := readCSV(t, ip)
	require.Len(t, invs, 2)
	assert.Equal(t, investmentHeader, invs[0])
	assert.Equal(t, "6000", invs[1][3])
	assert.Equal(t, "4000", invs[1][5])

	trades := readCSV(t, tp)
	require.Len(t, trades, 2)
	assert.Equal(t, tradeHeader, trades[0])
	assert.Equal(t, "101.250000", trades[1][6])
}

func TestNewCSVBadPath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, err := NewCSV(filepath.Join(dir, "ok.csv"), filepath.Join(dir, "missing", "x.csv"), filepath.Join(dir, "t.csv"))
	assert.ErrorContains(t, err, "investments csv")
}
