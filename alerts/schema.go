package alerts

const Schema = `
CREATE TABLE IF NOT EXISTS alerts (
	id TEXT PRIMARY KEY,
	symbol TEXT NOT NULL,
	price REAL NOT NULL,
	condition TEXT NOT NULL,
	channels TEXT NOT NULL,
	status TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	triggered_at DATETIME
);

CREATE INDEX IF NOT EXISTS idx_alerts_symbol_status ON alerts(symbol, status);
`
