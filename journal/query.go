package journal

import (
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"
)

// ListSignals returns a user's signals in the order they were appended.
func (j *SQLite) ListSignals(userID string) ([]SignalRecord, error) {
	rows, err := j.db.Query(`
		SELECT signal_id, user_id, type, severity, verdict, score_delta, risk_score, time, description
		FROM signals
		WHERE user_id = ?
		ORDER BY seq ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SignalRecord
	for rows.Next() {
		var rec SignalRecord
		if err := rows.Scan(
			&rec.SignalID,
			&rec.UserID,
			&rec.Type,
			&rec.Severity,
			&rec.Verdict,
			&rec.ScoreDelta,
			&rec.RiskScore,
			&rec.Time,
			&rec.Description,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListInvestments returns a user's investments in ledger order.
func (j *SQLite) ListInvestments(userID string) ([]InvestmentRecord, error) {
	rows, err := j.db.Query(`
		SELECT investment_id, user_id, asset_id, amount, recurring, balance, time
		FROM investments
		WHERE user_id = ?
		ORDER BY seq ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []InvestmentRecord
	for rows.Next() {
		var (
			rec     InvestmentRecord
			amount  string
			balance string
		)
		if err := rows.Scan(
			&rec.InvestmentID,
			&rec.UserID,
			&rec.AssetID,
			&amount,
			&rec.Recurring,
			&balance,
			&rec.Time,
		); err != nil {
			return nil, err
		}
		if rec.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("investment %q amount: %w", rec.InvestmentID, err)
		}
		if rec.Balance, err = decimal.NewFromString(balance); err != nil {
			return nil, fmt.Errorf("investment %q balance: %w", rec.InvestmentID, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListTrades returns the trades of one simulator run in execution order.
func (j *SQLite) ListTrades(runID string) ([]TradeRecord, error) {
	rows, err := j.db.Query(`
		SELECT trade_id, run_id, user_id, day, side, units, price, balance, holdings, panic, time
		FROM trades
		WHERE run_id = ?
		ORDER BY seq ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		var rec TradeRecord
		if err := rows.Scan(
			&rec.TradeID,
			&rec.RunID,
			&rec.UserID,
			&rec.Day,
			&rec.Side,
			&rec.Units,
			&rec.Price,
			&rec.Balance,
			&rec.Holdings,
			&rec.Panic,
			&rec.Time,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetRun returns a single run summary by id.
func (j *SQLite) GetRun(runID string) (RunSummary, error) {
	var r RunSummary

	row := j.db.QueryRow(`
		SELECT run_id, user_id, seed, started, finished, days, start_balance, end_balance,
		       holdings, final_price, buys, sells, panic_sells, interventions, emotional_score
		FROM runs
		WHERE run_id = ?`, runID)

	err := row.Scan(
		&r.RunID,
		&r.UserID,
		&r.Seed,
		&r.Started,
		&r.Finished,
		&r.Days,
		&r.StartBalance,
		&r.EndBalance,
		&r.Holdings,
		&r.FinalPrice,
		&r.Buys,
		&r.Sells,
		&r.PanicSells,
		&r.Interventions,
		&r.EmotionalScore,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return RunSummary{}, fmt.Errorf("run %q not found", runID)
		}
		return RunSummary{}, err
	}
	return r, nil
}
