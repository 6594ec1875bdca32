package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/isden7409-pixel/beautyfind-1-sub001/internal/models"
)

// UpsertWorkingDay replaces a day's schedule and its breaks in one
// transaction, keyed by (provider, resource, date).
func (db *DB) UpsertWorkingDay(ctx context.Context, day *models.WorkingDay) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	key := dateKey(day.Date)
	_, err = tx.ExecContext(ctx, `
		INSERT INTO working_days (provider_id, resource_id, date, is_working, work_start, work_end, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(provider_id, resource_id, date) DO UPDATE SET
			is_working = excluded.is_working,
			work_start = excluded.work_start,
			work_end = excluded.work_end,
			updated_at = excluded.updated_at`,
		day.ProviderID, day.ResourceID, key, day.IsWorking, day.WorkStart, day.WorkEnd, day.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert working day: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"DELETE FROM working_day_breaks WHERE provider_id = ? AND resource_id = ? AND date = ?",
		day.ProviderID, day.ResourceID, key,
	)
	if err != nil {
		return fmt.Errorf("clear breaks: %w", err)
	}

	for _, br := range day.Breaks {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO working_day_breaks (provider_id, resource_id, date, start_minute, end_minute, label)
			VALUES (?, ?, ?, ?, ?, ?)`,
			day.ProviderID, day.ResourceID, key, br.Start, br.End, br.Label,
		)
		if err != nil {
			return fmt.Errorf("insert break: %w", err)
		}
	}

	return tx.Commit()
}

// GetWorkingDay returns the schedule for a date, or nil if none exists.
func (db *DB) GetWorkingDay(ctx context.Context, providerID, resourceID string, date time.Time) (*models.WorkingDay, error) {
	key := dateKey(date)

	var day models.WorkingDay
	var storedDate string
	err := db.QueryRowContext(ctx, `
		SELECT provider_id, resource_id, date, is_working, work_start, work_end, updated_at
		FROM working_days
		WHERE provider_id = ? AND resource_id = ? AND date = ?`,
		providerID, resourceID, key,
	).Scan(&day.ProviderID, &day.ResourceID, &storedDate, &day.IsWorking, &day.WorkStart, &day.WorkEnd, &day.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get working day: %w", err)
	}
	if day.Date, err = parseDateKey(storedDate); err != nil {
		return nil, fmt.Errorf("parse stored date: %w", err)
	}

	rows, err := db.QueryContext(ctx, `
		SELECT start_minute, end_minute, label
		FROM working_day_breaks
		WHERE provider_id = ? AND resource_id = ? AND date = ?
		ORDER BY start_minute`,
		providerID, resourceID, key,
	)
	if err != nil {
		return nil, fmt.Errorf("list breaks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var br models.Break
		var label sql.NullString
		if err := rows.Scan(&br.Start, &br.End, &label); err != nil {
			return nil, fmt.Errorf("scan break: %w", err)
		}
		br.Label = label.String
		day.Breaks = append(day.Breaks, br)
	}
	return &day, rows.Err()
}
