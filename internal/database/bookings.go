package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/isden7409-pixel/beautyfind-1-sub001/internal/models"
)

// CommitBooking atomically re-checks interval overlap and inserts the
// booking with its history entry. The transaction takes the write lock up
// front (immediate tx lock, see NewDB), so two concurrent commits for
// overlapping intervals serialize here and the loser sees the winner's row.
func (db *DB) CommitBooking(ctx context.Context, b *models.Booking, entry *models.BookingHistoryEntry) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var count int
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM bookings
		WHERE provider_id = ? AND resource_id = ? AND date = ?
		AND status IN ('confirmed', 'completed')
		AND start_minute < ? AND end_minute > ?`,
		b.ProviderID, b.ResourceID, dateKey(b.Date), b.End, b.Start,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("check overlap: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("interval %s-%s on %s: %w",
			models.FormatMinute(b.Start), models.FormatMinute(b.End), dateKey(b.Date), models.ErrConflict)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO bookings (
			id, client_id, provider_id, resource_id, service_id, service_name,
			date, start_minute, end_minute, price, status, client_note, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.ClientID, b.ProviderID, b.ResourceID, b.ServiceID, b.ServiceName,
		dateKey(b.Date), b.Start, b.End, b.Price, string(b.Status), b.ClientNote, b.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO booking_history (booking_id, action, performed_by, performed_by_name, timestamp)
		VALUES (?, ?, ?, ?, ?)`,
		entry.BookingID, string(entry.Action), entry.PerformedBy, entry.PerformedByName, entry.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert history: %w", err)
	}

	return tx.Commit()
}

// GetBooking returns a booking by ID or models.ErrNotFound.
func (db *DB) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	row := db.QueryRowContext(ctx, selectBookingSQL+" WHERE id = ?", id)
	b, err := scanBooking(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("booking %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	return b, nil
}

// ListBookings returns bookings for a (provider, resource, date) filtered by
// status, ordered by start time.
func (db *DB) ListBookings(ctx context.Context, providerID, resourceID string, date time.Time, statuses []models.BookingStatus) ([]models.Booking, error) {
	if len(statuses) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(statuses))
	placeholders = placeholders[:len(placeholders)-1]
	args := []interface{}{providerID, resourceID, dateKey(date)}
	for _, s := range statuses {
		args = append(args, string(s))
	}

	rows, err := db.QueryContext(ctx, selectBookingSQL+`
		WHERE provider_id = ? AND resource_id = ? AND date = ?
		AND status IN (`+placeholders+`)
		ORDER BY start_minute`, args...)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	var bookings []models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

// ListClientBookings returns all bookings for a client, newest first.
func (db *DB) ListClientBookings(ctx context.Context, clientID string) ([]models.Booking, error) {
	rows, err := db.QueryContext(ctx, selectBookingSQL+`
		WHERE client_id = ? ORDER BY date DESC, start_minute DESC`, clientID)
	if err != nil {
		return nil, fmt.Errorf("list client bookings: %w", err)
	}
	defer rows.Close()

	var bookings []models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

// CancelBooking transitions confirmed -> cancelled with a status-guarded
// update; the guard makes concurrent double-cancels lose cleanly.
func (db *DB) CancelBooking(ctx context.Context, id string, by models.ActorRole, reason string, at time.Time) error {
	res, err := db.ExecContext(ctx, `
		UPDATE bookings
		SET status = 'cancelled', cancelled_by = ?, cancel_reason = ?, cancelled_at = ?
		WHERE id = ? AND status = 'confirmed'`,
		string(by), reason, at, id,
	)
	if err != nil {
		return fmt.Errorf("cancel booking: %w", err)
	}
	return db.checkTransition(ctx, res, id)
}

// CompleteBooking transitions confirmed -> completed.
func (db *DB) CompleteBooking(ctx context.Context, id string, at time.Time) error {
	res, err := db.ExecContext(ctx,
		"UPDATE bookings SET status = 'completed' WHERE id = ? AND status = 'confirmed'", id,
	)
	if err != nil {
		return fmt.Errorf("complete booking: %w", err)
	}
	return db.checkTransition(ctx, res, id)
}

// checkTransition distinguishes a missing booking from a disallowed
// transition when a guarded update touched no rows.
func (db *DB) checkTransition(ctx context.Context, res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n > 0 {
		return nil
	}

	var status string
	err = db.QueryRowContext(ctx, "SELECT status FROM bookings WHERE id = ?", id).Scan(&status)
	if err == sql.ErrNoRows {
		return fmt.Errorf("booking %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("get booking status: %w", err)
	}
	return fmt.Errorf("booking %s is %s: %w", id, status, models.ErrInvalidState)
}

// AppendHistory appends an audit record for a booking.
func (db *DB) AppendHistory(ctx context.Context, entry *models.BookingHistoryEntry) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO booking_history (booking_id, action, performed_by, performed_by_name, timestamp)
		VALUES (?, ?, ?, ?, ?)`,
		entry.BookingID, string(entry.Action), entry.PerformedBy, entry.PerformedByName, entry.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert history: %w", err)
	}
	return nil
}

// ListHistory returns the audit trail for a booking in append order.
func (db *DB) ListHistory(ctx context.Context, bookingID string) ([]models.BookingHistoryEntry, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, booking_id, action, performed_by, performed_by_name, timestamp
		FROM booking_history WHERE booking_id = ? ORDER BY id`, bookingID)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	var entries []models.BookingHistoryEntry
	for rows.Next() {
		var e models.BookingHistoryEntry
		var name sql.NullString
		if err := rows.Scan(&e.ID, &e.BookingID, (*string)(&e.Action), &e.PerformedBy, &name, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		e.PerformedByName = name.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// DeleteOldBookings removes bookings whose date is past the retention
// window, along with their history. Returns the number of bookings removed.
func (db *DB) DeleteOldBookings(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := dateKey(time.Now().UTC().Add(-olderThan))

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		DELETE FROM booking_history
		WHERE booking_id IN (SELECT id FROM bookings WHERE date < ?)`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete old history: %w", err)
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM bookings WHERE date < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete old bookings: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}

	return deleted, tx.Commit()
}

const selectBookingSQL = `
	SELECT id, client_id, provider_id, resource_id, service_id, service_name,
	       date, start_minute, end_minute, price, status, client_note, provider_note,
	       cancelled_by, cancel_reason, cancelled_at, created_at
	FROM bookings`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (*models.Booking, error) {
	var b models.Booking
	var storedDate string
	var clientNote, providerNote, cancelledBy, cancelReason sql.NullString
	var cancelledAt sql.NullTime

	err := row.Scan(
		&b.ID, &b.ClientID, &b.ProviderID, &b.ResourceID, &b.ServiceID, &b.ServiceName,
		&storedDate, &b.Start, &b.End, &b.Price, (*string)(&b.Status), &clientNote, &providerNote,
		&cancelledBy, &cancelReason, &cancelledAt, &b.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	b.ClientNote = clientNote.String
	b.ProviderNote = providerNote.String
	b.CancelledBy = models.ActorRole(cancelledBy.String)
	b.CancelReason = cancelReason.String
	if cancelledAt.Valid {
		t := cancelledAt.Time
		b.CancelledAt = &t
	}
	if b.Date, err = parseDateKey(storedDate); err != nil {
		return nil, fmt.Errorf("parse stored date: %w", err)
	}
	return &b, nil
}
