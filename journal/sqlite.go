package journal

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	// One writer keeps the autoincrement sequence equal to append order.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordSignal(s SignalRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO signals
		(signal_id, user_id, type, severity, verdict, score_delta, risk_score, time, description)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.SignalID, s.UserID, s.Type, s.Severity, s.Verdict,
		s.ScoreDelta, s.RiskScore, s.Time, s.Description,
	)
	return err
}

func (j *SQLite) RecordInvestment(i InvestmentRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO investments
		(investment_id, user_id, asset_id, amount, recurring, balance, time)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		i.InvestmentID, i.UserID, i.AssetID, i.Amount.String(),
		i.Recurring, i.Balance.String(), i.Time,
	)
	return err
}

func (j *SQLite) RecordTrade(t TradeRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO trades
		(trade_id, run_id, user_id, day, side, units, price, balance, holdings, panic, time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.TradeID, t.RunID, t.UserID, t.Day, t.Side, t.Units,
		t.Price, t.Balance, t.Holdings, t.Panic, t.Time,
	)
	return err
}

func (j *SQLite) RecordRun(r RunSummary) error {
	_, err := j.db.Exec(`
		INSERT OR REPLACE INTO runs
		(run_id, user_id, seed, started, finished, days, start_balance, end_balance,
		 holdings, final_price, buys, sells, panic_sells, interventions, emotional_score)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.UserID, r.Seed, r.Started, r.Finished, r.Days, r.StartBalance,
		r.EndBalance, r.Holdings, r.FinalPrice, r.Buys, r.Sells, r.PanicSells,
		r.Interventions, r.EmotionalScore,
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
