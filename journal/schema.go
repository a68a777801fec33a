package journal

const Schema = `
CREATE TABLE IF NOT EXISTS trades (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	date TEXT NOT NULL,
	day_of_week TEXT,
	ticker TEXT NOT NULL,
	sector TEXT,
	industry TEXT,
	news_type TEXT,
	entry_price REAL NOT NULL,
	entry_time TEXT NOT NULL,
	exit_price REAL NOT NULL,
	exit_time TEXT NOT NULL,
	shares INTEGER NOT NULL,
	position_size REAL,
	hold_duration INTEGER,
	profit_loss REAL,
	profit_loss_percent REAL,
	is_win INTEGER,
	notes TEXT,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS capital_transactions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	date TEXT NOT NULL,
	type TEXT NOT NULL CHECK (type IN ('deposit', 'withdrawal')),
	amount REAL NOT NULL,
	notes TEXT,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS logs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	action_type TEXT NOT NULL,
	action_category TEXT NOT NULL,
	description TEXT NOT NULL,
	details TEXT,
	is_read INTEGER DEFAULT 0,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_trades_date ON trades(date);
CREATE INDEX IF NOT EXISTS idx_logs_timestamp ON logs(timestamp);
`

// stockColumns are added to trades tables created before enrichment
// existed. Order matters only for readability of PRAGMA output.
var stockColumns = []struct {
	Name string
	Type string
}{
	{"float", "REAL DEFAULT NULL"},
	{"avg_volume", "REAL DEFAULT NULL"},
	{"day_volume", "REAL DEFAULT NULL"},
	{"market_cap", "REAL DEFAULT NULL"},
	{"stock_type", "TEXT DEFAULT NULL"},
	{"exchange", "TEXT DEFAULT NULL"},
	{"auto_sector", "TEXT DEFAULT NULL"},
	{"data_fetched", "INTEGER DEFAULT 0"},
}
