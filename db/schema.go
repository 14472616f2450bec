// ABOUTME: Database schema definitions and migrations
// ABOUTME: Handles SQLite table creation for leads, payments, opportunities and automation runs
package db

import (
	"database/sql"
)

const schema = `
CREATE TABLE IF NOT EXISTS leads (
	id TEXT PRIMARY KEY,
	first_name TEXT NOT NULL,
	last_name TEXT,
	email TEXT,
	phone TEXT,
	service_type TEXT NOT NULL DEFAULT '',
	source TEXT,
	is_qualified INTEGER NOT NULL DEFAULT 0,
	qualification_score INTEGER NOT NULL DEFAULT 0,
	status TEXT NOT NULL DEFAULT 'new',
	notes TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_leads_status ON leads(status);
CREATE INDEX IF NOT EXISTS idx_leads_created_at ON leads(created_at);

CREATE TABLE IF NOT EXISTS opportunities (
	id TEXT PRIMARY KEY,
	lead_id TEXT NOT NULL,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	estimated_value INTEGER NOT NULL DEFAULT 0 CHECK(estimated_value >= 0),
	stage TEXT NOT NULL DEFAULT 'new',
	probability INTEGER NOT NULL DEFAULT 0 CHECK(probability BETWEEN 0 AND 100),
	service_date DATETIME,
	service_address TEXT,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	FOREIGN KEY (lead_id) REFERENCES leads(id)
);

CREATE INDEX IF NOT EXISTS idx_opportunities_stage ON opportunities(stage);
CREATE INDEX IF NOT EXISTS idx_opportunities_lead_id ON opportunities(lead_id);

CREATE TABLE IF NOT EXISTS payments (
	id TEXT PRIMARY KEY,
	lead_id TEXT NOT NULL,
	opportunity_id TEXT,
	amount INTEGER NOT NULL CHECK(amount >= 0),
	currency TEXT NOT NULL DEFAULT 'USD',
	status TEXT NOT NULL DEFAULT 'pending',
	payment_method TEXT,
	transaction_id TEXT,
	payment_date DATETIME,
	notes TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	FOREIGN KEY (lead_id) REFERENCES leads(id),
	FOREIGN KEY (opportunity_id) REFERENCES opportunities(id)
);

CREATE INDEX IF NOT EXISTS idx_payments_status ON payments(status);
CREATE INDEX IF NOT EXISTS idx_payments_lead_id ON payments(lead_id);

CREATE TABLE IF NOT EXISTS automation_runs (
	run_id TEXT PRIMARY KEY,
	kind TEXT NOT NULL,
	attempted INTEGER NOT NULL,
	failed INTEGER NOT NULL,
	success INTEGER NOT NULL,
	executed_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_automation_runs_executed_at ON automation_runs(executed_at DESC);
`

func InitSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
