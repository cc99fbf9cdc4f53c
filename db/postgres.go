package db

import (
	"database/sql"
	"fmt"
	"os"
	"time"

	_ "github.com/lib/pq"
)

var DB *sql.DB

func Connect() error {
	connStr := os.Getenv("DATABASE_URL")
	if connStr == "" {
		fmt.Println("DATABASE_URL environment variable is not set")
	}

	var err error
	DB, err = sql.Open("postgres", connStr)
	if err != nil {
		return err
	}

	DB.SetMaxOpenConns(25)
	DB.SetMaxIdleConns(25)
	DB.SetConnMaxLifetime(5 * time.Minute)

	return DB.Ping()
}

func Close() {
	if DB != nil {
		DB.Close()
	}
}

// Migrate creates the report tables if they do not exist. Reports left in
// "running" after a crash are untouched; there is no reaper.
func Migrate() error {
	_, err := DB.Exec(schema)
	return err
}

const schema = `
CREATE EXTENSION IF NOT EXISTS pgcrypto;

CREATE TABLE IF NOT EXISTS monitor_report (
	id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	run_kind TEXT NOT NULL DEFAULT 'scheduled',
	status TEXT NOT NULL DEFAULT 'pending',
	summary TEXT,
	full_report JSONB,
	error_message TEXT
);

CREATE TABLE IF NOT EXISTS report_section (
	id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	report_id UUID NOT NULL REFERENCES monitor_report(id) ON DELETE CASCADE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	topic TEXT NOT NULL,
	title TEXT,
	summary TEXT,
	items JSONB NOT NULL DEFAULT '[]',
	sources_count INT NOT NULL DEFAULT 0,
	UNIQUE (report_id, topic)
);

CREATE TABLE IF NOT EXISTS monitor_item (
	id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	section_id UUID NOT NULL REFERENCES report_section(id) ON DELETE CASCADE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	source TEXT NOT NULL,
	source_url TEXT,
	title TEXT,
	content TEXT,
	sentiment TEXT,
	tags TEXT[],
	raw_data JSONB
);

CREATE INDEX IF NOT EXISTS idx_monitor_report_created_at ON monitor_report (created_at DESC);
CREATE INDEX IF NOT EXISTS idx_monitor_report_status ON monitor_report (status);
CREATE INDEX IF NOT EXISTS idx_report_section_report_id ON report_section (report_id);
CREATE INDEX IF NOT EXISTS idx_monitor_item_section_id ON monitor_item (section_id);
`
