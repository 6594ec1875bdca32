// Package database is the SQLite-backed document store for schedules,
// bookings, policies and the booking history.
package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
	"github.com/rs/zerolog"

	"github.com/isden7409-pixel/beautyfind-1-sub001/internal/models"
)

// DB wraps the SQLite connection pool.
type DB struct {
	*sql.DB
	defaultPolicy models.BookingPolicy
	logger        *zerolog.Logger
}

// NewDB opens the database at path, runs migrations and configures the pool.
// defaultPolicy covers providers that never customized their policy.
func NewDB(path string, defaultPolicy models.BookingPolicy, logger *zerolog.Logger) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// WAL for concurrent readers, immediate tx lock so the booking-commit
	// transaction takes its write lock up front instead of failing midway.
	dsn := path + "?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000&_txlock=immediate"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	instance := &DB{DB: db, defaultPolicy: defaultPolicy, logger: logger}
	if err := instance.createTables(); err != nil {
		return nil, fmt.Errorf("create tables: %w", err)
	}

	if logger != nil {
		logger.Info().Str("path", path).Msg("database initialized")
	}
	return instance, nil
}

func (db *DB) createTables() error {
	queries := []string{
		// One row per (provider, resource, date); replaced wholesale on edit.
		`CREATE TABLE IF NOT EXISTS working_days (
			provider_id TEXT NOT NULL,
			resource_id TEXT NOT NULL DEFAULT '',
			date TEXT NOT NULL,
			is_working BOOLEAN NOT NULL DEFAULT 0,
			work_start INTEGER NOT NULL DEFAULT 0,
			work_end INTEGER NOT NULL DEFAULT 0,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (provider_id, resource_id, date)
		)`,

		`CREATE TABLE IF NOT EXISTS working_day_breaks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			provider_id TEXT NOT NULL,
			resource_id TEXT NOT NULL DEFAULT '',
			date TEXT NOT NULL,
			start_minute INTEGER NOT NULL,
			end_minute INTEGER NOT NULL,
			label TEXT
		)`,

		`CREATE TABLE IF NOT EXISTS blocked_intervals (
			id TEXT PRIMARY KEY,
			provider_id TEXT NOT NULL,
			resource_id TEXT NOT NULL DEFAULT '',
			date TEXT NOT NULL,
			start_minute INTEGER NOT NULL,
			end_minute INTEGER NOT NULL,
			reason TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS bookings (
			id TEXT PRIMARY KEY,
			client_id TEXT NOT NULL,
			provider_id TEXT NOT NULL,
			resource_id TEXT NOT NULL DEFAULT '',
			service_id TEXT NOT NULL,
			service_name TEXT NOT NULL DEFAULT '',
			date TEXT NOT NULL,
			start_minute INTEGER NOT NULL,
			end_minute INTEGER NOT NULL,
			price INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'confirmed',
			client_note TEXT,
			provider_note TEXT,
			cancelled_by TEXT,
			cancel_reason TEXT,
			cancelled_at DATETIME,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS booking_policies (
			provider_id TEXT PRIMARY KEY,
			min_advance_minutes INTEGER NOT NULL DEFAULT 0,
			cancellation_deadline_minutes INTEGER NOT NULL DEFAULT 0,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS booking_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			booking_id TEXT NOT NULL,
			action TEXT NOT NULL,
			performed_by TEXT NOT NULL,
			performed_by_name TEXT,
			timestamp DATETIME NOT NULL
		)`,

		// Indexes
		`CREATE INDEX IF NOT EXISTS idx_breaks_day ON working_day_breaks(provider_id, resource_id, date)`,
		`CREATE INDEX IF NOT EXISTS idx_blocked_day ON blocked_intervals(provider_id, resource_id, date)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_day ON bookings(provider_id, resource_id, date, status)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_client ON bookings(client_id)`,
		`CREATE INDEX IF NOT EXISTS idx_history_booking ON booking_history(booking_id)`,
	}

	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			return fmt.Errorf("exec migration %s: %w", trimSQL(q), err)
		}
	}
	return nil
}

func trimSQL(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 60 {
		return s[:60] + "..."
	}
	return s
}

// dateKey renders a civil date the way it is stored.
func dateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

func parseDateKey(s string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", s, time.UTC)
}
