// journal/schema.go
package journal

const Schema = `
CREATE TABLE IF NOT EXISTS trades (
	trade_id TEXT PRIMARY KEY,
	position INTEGER NOT NULL,
	symbol TEXT NOT NULL,
	trade_type TEXT NOT NULL,
	entry_price REAL NOT NULL,
	exit_price REAL NOT NULL,
	entry_time DATETIME NOT NULL,
	exit_time DATETIME NOT NULL,
	quantity INTEGER NOT NULL,
	account TEXT NOT NULL,
	pnl REAL NOT NULL,
	exits INTEGER NOT NULL DEFAULT 0,
	playbook TEXT NOT NULL DEFAULT '',
	entry_rating INTEGER NOT NULL DEFAULT 0,
	exit_rating INTEGER NOT NULL DEFAULT 0,
	discipline_rating INTEGER NOT NULL DEFAULT 0,
	tags TEXT NOT NULL DEFAULT '[]',
	mistakes TEXT NOT NULL DEFAULT '[]',
	notes TEXT NOT NULL DEFAULT '',
	screenshot TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_trades_exit_time ON trades(exit_time);
CREATE INDEX IF NOT EXISTS idx_trades_account ON trades(account);
`

const PostgresSchema = `
CREATE TABLE IF NOT EXISTS trades (
	trade_id TEXT PRIMARY KEY,
	position INTEGER NOT NULL,
	symbol TEXT NOT NULL,
	trade_type TEXT NOT NULL,
	entry_price DOUBLE PRECISION NOT NULL,
	exit_price DOUBLE PRECISION NOT NULL,
	entry_time TIMESTAMPTZ NOT NULL,
	exit_time TIMESTAMPTZ NOT NULL,
	quantity INTEGER NOT NULL,
	account TEXT NOT NULL,
	pnl DOUBLE PRECISION NOT NULL,
	exits INTEGER NOT NULL DEFAULT 0,
	playbook TEXT NOT NULL DEFAULT '',
	entry_rating INTEGER NOT NULL DEFAULT 0,
	exit_rating INTEGER NOT NULL DEFAULT 0,
	discipline_rating INTEGER NOT NULL DEFAULT 0,
	tags TEXT[] NOT NULL DEFAULT '{}',
	mistakes TEXT[] NOT NULL DEFAULT '{}',
	notes TEXT NOT NULL DEFAULT '',
	screenshot TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_trades_exit_time ON trades(exit_time);
CREATE INDEX IF NOT EXISTS idx_trades_account ON trades(account);
`

const tradeColumns = `trade_id, symbol, trade_type, entry_price, exit_price, entry_time, exit_time,
	quantity, account, pnl, exits, playbook, entry_rating, exit_rating, discipline_rating,
	tags, mistakes, notes, screenshot`
