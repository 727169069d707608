// journal/schema.go
package journal

const Schema = `
CREATE TABLE IF NOT EXISTS signals (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	signal_id TEXT NOT NULL UNIQUE,
	user_id TEXT NOT NULL,
	type TEXT NOT NULL,
	severity TEXT NOT NULL,
	verdict TEXT NOT NULL,
	score_delta INTEGER NOT NULL,
	risk_score INTEGER NOT NULL,
	time DATETIME NOT NULL,
	description TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS investments (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	investment_id TEXT NOT NULL UNIQUE,
	user_id TEXT NOT NULL,
	asset_id TEXT NOT NULL,
	amount TEXT NOT NULL,
	recurring BOOLEAN NOT NULL,
	balance TEXT NOT NULL,
	time DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS trades (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	trade_id TEXT NOT NULL UNIQUE,
	run_id TEXT NOT NULL,
	user_id TEXT NOT NULL,
	day INTEGER NOT NULL,
	side TEXT NOT NULL,
	units INTEGER NOT NULL,
	price REAL NOT NULL,
	balance REAL NOT NULL,
	holdings INTEGER NOT NULL,
	panic BOOLEAN NOT NULL,
	time DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	seed INTEGER NOT NULL,
	started DATETIME NOT NULL,
	finished DATETIME NOT NULL,
	days INTEGER NOT NULL,
	start_balance REAL NOT NULL,
	end_balance REAL NOT NULL,
	holdings INTEGER NOT NULL,
	final_price REAL NOT NULL,
	buys INTEGER NOT NULL,
	sells INTEGER NOT NULL,
	panic_sells INTEGER NOT NULL,
	interventions INTEGER NOT NULL,
	emotional_score INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_signals_user ON signals(user_id, seq);
CREATE INDEX IF NOT EXISTS idx_investments_user ON investments(user_id, seq);
CREATE INDEX IF NOT EXISTS idx_trades_run ON trades(run_id, seq);
`
