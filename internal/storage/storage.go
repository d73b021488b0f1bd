// Package storage provides the pricing-rule repository (Postgres) and the
// search-history store (SQLite).
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	// Drivers are registered for the two stores this package owns.
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Common errors
var (
	ErrNotFound        = errors.New("record not found")
	ErrGlobalRuleExists = errors.New("shop already has a global rule")
)

// DB represents a database connection interface.
type DB interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// OpenRulesDB opens the Postgres connection backing the rule repository.
func OpenRulesDB(dsn string, maxOpen, maxIdle int, maxLifetime time.Duration) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open rules db: %w", err)
	}

	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(maxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping rules db: %w", err)
	}

	return db, nil
}

// OpenHistoryDB opens the SQLite database backing the search-history store
// and ensures its schema exists.
func OpenHistoryDB(path, journalMode string) (*sql.DB, error) {
	if journalMode == "" {
		journalMode = "WAL"
	}

	dsn := fmt.Sprintf("file:%s?_journal_mode=%s", path, journalMode)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}

	// SQLite handles one writer at a time.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(historySchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create history schema: %w", err)
	}

	return db, nil
}

const historySchema = `
CREATE TABLE IF NOT EXISTS search_history (
	id             TEXT PRIMARY KEY,
	queries        TEXT NOT NULL,
	vehicle_year   INTEGER,
	vehicle_make   TEXT,
	vehicle_model  TEXT,
	vehicle_vin    TEXT,
	total_results  INTEGER NOT NULL,
	failed_queries INTEGER NOT NULL,
	searched_at    TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_search_history_searched_at
	ON search_history (searched_at);
`

// RulesSchema is the DDL for the pricing-rule store, applied by deploy
// tooling or tests.
const RulesSchema = `
CREATE TABLE IF NOT EXISTS pricing_rules (
	id           UUID PRIMARY KEY,
	shop_id      TEXT NOT NULL,
	rule_type    TEXT NOT NULL,
	brand        TEXT NOT NULL DEFAULT '',
	category     TEXT NOT NULL DEFAULT '',
	markup_type  TEXT NOT NULL,
	markup_value DOUBLE PRECISION NOT NULL,
	matrix_tiers JSONB,
	priority     INTEGER NOT NULL DEFAULT 0,
	created_at   TIMESTAMPTZ NOT NULL,
	updated_at   TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_pricing_rules_shop ON pricing_rules (shop_id, priority DESC);
CREATE UNIQUE INDEX IF NOT EXISTS idx_pricing_rules_one_global
	ON pricing_rules (shop_id) WHERE rule_type = 'global';
`
