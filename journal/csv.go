package journal

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"
)

var (
	signalHeader     = []string{"signal_id", "user_id", "type", "severity", "verdict", "score_delta", "risk_score", "time", "description"}
	investmentHeader = []string{"investment_id", "user_id", "asset_id", "amount", "recurring", "balance", "time"}
	tradeHeader      = []string{"trade_id", "run_id", "user_id", "day", "side", "units", "price", "balance", "holdings", "panic", "time"}
)

type CSVJournal struct {
	signals     *csv.Writer
	investments *csv.Writer
	trades      *csv.Writer
	files       []*os.File
}

func NewCSV(signalsPath, investmentsPath, tradesPath string) (*CSVJournal, error) {
	j := &CSVJournal{}

	open := func(path string, header []string) (*csv.Writer, error) {
		f, err := os.Create(path)
		if err != nil {
			return nil, err
		}
		j.files = append(j.files, f)

		w := csv.NewWriter(f)
		if err := w.Write(header); err != nil {
			return nil, err
		}
		w.Flush()
		return w, w.Error()
	}

	var err error
	if j.signals, err = open(signalsPath, signalHeader); err != nil {
		j.closeFiles()
		return nil, fmt.Errorf("signals csv: %w", err)
	}
	if j.investments, err = open(investmentsPath, investmentHeader); err != nil {
		j.closeFiles()
		return nil, fmt.Errorf("investments csv: %w", err)
	}
	if j.trades, err = open(tradesPath, tradeHeader); err != nil {
		j.closeFiles()
		return nil, fmt.Errorf("trades csv: %w", err)
	}
	return j, nil
}

func (j *CSVJournal) RecordSignal(s SignalRecord) error {
	return writeRow(j.signals, []string{
		s.SignalID,
		s.UserID,
		s.Type,
		s.Severity,
		s.Verdict,
		strconv.Itoa(s.ScoreDelta),
		strconv.Itoa(s.RiskScore),
		s.Time.Format(time.RFC3339Nano),
		s.Description,
	})
}

func (j *CSVJournal) RecordInvestment(i InvestmentRecord) error {
	return writeRow(j.investments, []string{
		i.InvestmentID,
		i.UserID,
		i.AssetID,
		i.Amount.String(),
		strconv.FormatBool(i.Recurring),
		i.Balance.String(),
		i.Time.Format(time.RFC3339Nano),
	})
}

func (j *CSVJournal) RecordTrade(t TradeRecord) error {
	return writeRow(j.trades, []string{
		t.TradeID,
		t.RunID,
		t.UserID,
		strconv.Itoa(t.Day),
		t.Side,
		strconv.Itoa(t.Units),
		f(t.Price),
		f(t.Balance),
		strconv.Itoa(t.Holdings),
		strconv.FormatBool(t.Panic),
		t.Time.Format(time.RFC3339Nano),
	})
}

func (j *CSVJournal) Close() error {
	for _, w := range []*csv.Writer{j.signals, j.investments, j.trades} {
		w.Flush()
		if err := w.Error(); err != nil {
			j.closeFiles()
			return err
		}
	}
	return j.closeFiles()
}

func (j *CSVJournal) closeFiles() error {
	var first error
	for _, fh := range j.files {
		if err := fh.Close(); err != nil && first == nil {
			first = err
		}
	}
	j.files = nil
	return first
}

func writeRow(w *csv.Writer, row []string) error {
	if err := w.Write(row); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
