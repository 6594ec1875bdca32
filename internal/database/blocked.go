package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/isden7409-pixel/beautyfind-1-sub001/internal/models"
)

// CreateBlockedInterval records an administrative exclusion.
func (db *DB) CreateBlockedInterval(ctx context.Context, block *models.BlockedInterval) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO blocked_intervals (id, provider_id, resource_id, date, start_minute, end_minute, reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		block.ID, block.ProviderID, block.ResourceID, dateKey(block.Date),
		block.Start, block.End, block.Reason, block.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert blocked interval: %w", err)
	}
	return nil
}

// GetBlockedInterval returns a block by ID.
func (db *DB) GetBlockedInterval(ctx context.Context, id string) (*models.BlockedInterval, error) {
	var block models.BlockedInterval
	var storedDate string
	var reason sql.NullString
	err := db.QueryRowContext(ctx, `
		SELECT id, provider_id, resource_id, date, start_minute, end_minute, reason, created_at
		FROM blocked_intervals WHERE id = ?`, id,
	).Scan(&block.ID, &block.ProviderID, &block.ResourceID, &storedDate,
		&block.Start, &block.End, &reason, &block.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("blocked interval %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get blocked interval: %w", err)
	}
	block.Reason = reason.String
	if block.Date, err = parseDateKey(storedDate); err != nil {
		return nil, fmt.Errorf("parse stored date: %w", err)
	}
	return &block, nil
}

// DeleteBlockedInterval removes a block.
func (db *DB) DeleteBlockedInterval(ctx context.Context, id string) error {
	res, err := db.ExecContext(ctx, "DELETE FROM blocked_intervals WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete blocked interval: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("blocked interval %s: %w", id, models.ErrNotFound)
	}
	return nil
}

// ListBlockedIntervals returns blocks for a (provider, resource, date),
// ordered by start time.
func (db *DB) ListBlockedIntervals(ctx context.Context, providerID, resourceID string, date time.Time) ([]models.BlockedInterval, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, provider_id, resource_id, date, start_minute, end_minute, reason, created_at
		FROM blocked_intervals
		WHERE provider_id = ? AND resource_id = ? AND date = ?
		ORDER BY start_minute`,
		providerID, resourceID, dateKey(date),
	)
	if err != nil {
		return nil, fmt.Errorf("list blocked intervals: %w", err)
	}
	defer rows.Close()

	var blocks []models.BlockedInterval
	for rows.Next() {
		var block models.BlockedInterval
		var storedDate string
		var reason sql.NullString
		if err := rows.Scan(&block.ID, &block.ProviderID, &block.ResourceID, &storedDate,
			&block.Start, &block.End, &reason, &block.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan blocked interval: %w", err)
		}
		block.Reason = reason.String
		if block.Date, err = parseDateKey(storedDate); err != nil {
			return nil, fmt.Errorf("parse stored date: %w", err)
		}
		blocks = append(blocks, block)
	}
	return blocks, rows.Err()
}
