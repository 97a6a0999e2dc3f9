// journal/schema.go
package journal

const Schema = `
CREATE TABLE IF NOT EXISTS trades (
	trade_id TEXT PRIMARY KEY,
	broker_trade_id TEXT NOT NULL,
	entry_time DATETIME NOT NULL,
	account_id TEXT NOT NULL,
	strategy_name TEXT NOT NULL,
	instrument TEXT NOT NULL,
	units INTEGER NOT NULL,
	entry_price REAL NOT NULL,
	stop_loss REAL NOT NULL,
	take_profit REAL NOT NULL,
	confidence REAL NOT NULL,
	status TEXT NOT NULL,
	realized_pl REAL NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_trades_entry_time ON trades(entry_time);
CREATE INDEX IF NOT EXISTS idx_trades_account ON trades(account_id, instrument);
`
