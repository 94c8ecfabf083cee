// Package sqlite keeps the alert journal: every delivered notification
// is recorded so a signal that stays qualified across cycles does not
// re-alert until its cooldown expires.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"hybrid-screener/internal/model"

	_ "github.com/mattn/go-sqlite3"
)

// Config configures the alert journal.
type Config struct {
	DBPath string // path to SQLite database file, e.g. "data/alerts.db"
}

// Journal is a single-writer SQLite store of delivered alerts.
type Journal struct {
	db *sql.DB
}

// DB returns the underlying sql.DB for health checks.
func (j *Journal) DB() *sql.DB { return j.db }

// New opens the journal, initializes WAL mode and the schema.
func New(cfg Config) (*Journal, error) {
	db, err := sql.Open("sqlite3", cfg.DBPath+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}

	// Set connection pool for single-writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := createSchema(db); err != nil {
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}

	log.Printf("[sqlite] opened alert journal at %s", cfg.DBPath)
	return &Journal{db: db}, nil
}

func createSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS alerts (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			symbol     TEXT    NOT NULL,
			side       TEXT    NOT NULL,
			strength   INTEGER NOT NULL,
			confirmed  INTEGER NOT NULL,
			ts         INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_alerts_symbol_side_ts
			ON alerts (symbol, side, ts);
	`)
	return err
}

// Record appends one delivered alert.
func (j *Journal) Record(ctx context.Context, symbol string, side model.SignalType, strength int, confirmed bool, ts time.Time) error {
	conf := 0
	if confirmed {
		conf = 1
	}
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO alerts (symbol, side, strength, confirmed, ts)
		VALUES (?, ?, ?, ?, ?)
	`, symbol, string(side), strength, conf, ts.UTC().Unix())
	if err != nil {
		return fmt.Errorf("sqlite insert alert: %w", err)
	}
	return nil
}

// RecentlyAlerted reports whether an alert for symbol/side was delivered
// within the cooldown window ending at now.
func (j *Journal) RecentlyAlerted(ctx context.Context, symbol string, side model.SignalType, within time.Duration, now time.Time) (bool, error) {
	cutoff := now.UTC().Add(-within).Unix()
	var n int
	err := j.db.QueryRowContext(ctx, `
		SELECT COUNT(1) FROM alerts
		WHERE symbol = ? AND side = ? AND ts > ?
	`, symbol, string(side), cutoff).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("sqlite query alerts: %w", err)
	}
	return n > 0, nil
}

// Prune deletes journal rows older than the retention window.
func (j *Journal) Prune(ctx context.Context, olderThan time.Duration, now time.Time) (int64, error) {
	cutoff := now.UTC().Add(-olderThan).Unix()
	res, err := j.db.ExecContext(ctx, `DELETE FROM alerts WHERE ts <= ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("sqlite prune alerts: %w", err)
	}
	return res.RowsAffected()
}

// Close closes the journal.
func (j *Journal) Close() error {
	return j.db.Close()
}
