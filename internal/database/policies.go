package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/isden7409-pixel/beautyfind-1-sub001/internal/models"
)

// GetPolicy returns the provider's booking policy, falling back to the
// configured default when no row exists.
func (db *DB) GetPolicy(ctx context.Context, providerID string) (*models.BookingPolicy, error) {
	var p models.BookingPolicy
	err := db.QueryRowContext(ctx, `
		SELECT provider_id, min_advance_minutes, cancellation_deadline_minutes
		FROM booking_policies WHERE provider_id = ?`, providerID,
	).Scan(&p.ProviderID, &p.MinAdvanceMinutes, &p.CancellationDeadlineMinutes)
	if err == sql.ErrNoRows {
		p = db.defaultPolicy
		p.ProviderID = providerID
		return &p, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get policy: %w", err)
	}
	return &p, nil
}

// UpsertPolicy creates or replaces a provider's booking policy.
func (db *DB) UpsertPolicy(ctx context.Context, p *models.BookingPolicy) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO booking_policies (provider_id, min_advance_minutes, cancellation_deadline_minutes, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(provider_id) DO UPDATE SET
			min_advance_minutes = excluded.min_advance_minutes,
			cancellation_deadline_minutes = excluded.cancellation_deadline_minutes,
			updated_at = excluded.updated_at`,
		p.ProviderID, p.MinAdvanceMinutes, p.CancellationDeadlineMinutes, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert policy: %w", err)
	}
	return nil
}
