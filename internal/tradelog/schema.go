package tradelog

const schemaDDL = `
CREATE TABLE IF NOT EXISTS accounts (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	account_id  INTEGER UNIQUE NOT NULL,
	name        TEXT NOT NULL DEFAULT '',
	balance     REAL NOT NULL DEFAULT 0,
	is_live     BOOLEAN NOT NULL DEFAULT 0,
	created_at  DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at  DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS trades (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	account_id       INTEGER NOT NULL,
	symbol           TEXT NOT NULL,
	side             TEXT NOT NULL,
	entry_time       DATETIME NOT NULL,
	exit_time        DATETIME NOT NULL,
	entry_price      REAL NOT NULL,
	exit_price       REAL NOT NULL DEFAULT 0,
	quantity         INTEGER NOT NULL,
	pnl              REAL NOT NULL DEFAULT 0,
	fees             REAL NOT NULL DEFAULT 0,
	duration_seconds INTEGER NOT NULL DEFAULT 0,
	created_at       DATETIME DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(account_id, symbol, entry_time, exit_time)
);

CREATE INDEX IF NOT EXISTS idx_trades_account_date ON trades(account_id, entry_time);

CREATE TABLE IF NOT EXISTS daily_stats (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	account_id   INTEGER NOT NULL,
	date         TEXT NOT NULL,
	total_pnl    REAL NOT NULL DEFAULT 0,
	trade_count  INTEGER NOT NULL DEFAULT 0,
	win_count    INTEGER NOT NULL DEFAULT 0,
	loss_count   INTEGER NOT NULL DEFAULT 0,
	gross_profit REAL NOT NULL DEFAULT 0,
	gross_loss   REAL NOT NULL DEFAULT 0,
	created_at   DATETIME DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(account_id, date)
);

CREATE INDEX IF NOT EXISTS idx_daily_stats_account_date ON daily_stats(account_id, date);
`
