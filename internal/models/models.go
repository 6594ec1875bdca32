package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MinutesPerDay bounds every minute-of-day value: valid times lie in [0, 1440).
const MinutesPerDay = 24 * 60

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	StatusConfirmed BookingStatus = "confirmed"
	StatusCompleted BookingStatus = "completed"
	StatusCancelled BookingStatus = "cancelled"
)

// OccupyingStatuses are the statuses that make a booking occupy its interval.
// Cancelled bookings free their slot implicitly by not being listed here.
var OccupyingStatuses = []BookingStatus{StatusConfirmed, StatusCompleted}

// SlotReason explains why a time slot is unavailable.
type SlotReason string

const (
	ReasonNone    SlotReason = ""
	ReasonBooked  SlotReason = "booked"
	ReasonBlocked SlotReason = "blocked"
	ReasonBreak   SlotReason = "break"
	ReasonTooSoon SlotReason = "too_soon"
)

// ActorRole identifies who performs a booking action.
type ActorRole string

const (
	RoleClient   ActorRole = "client"
	RoleProvider ActorRole = "provider"
)

// HistoryAction is the kind of change recorded in the booking history.
type HistoryAction string

const (
	ActionCreated     HistoryAction = "created"
	ActionConfirmed   HistoryAction = "confirmed"
	ActionTimeChanged HistoryAction = "time_changed"
	ActionCompleted   HistoryAction = "completed"
	ActionCancelled   HistoryAction = "cancelled"
)

// Break is a recurring pause inside a working day, e.g. lunch.
// Start and End are minute-of-day values.
type Break struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Label string `json:"label,omitempty"`
}

// WorkingDay is one date's schedule for a provider or a specific staff member.
// Replaced wholesale on edit (upsert by date key), never deleted.
type WorkingDay struct {
	ProviderID string    `json:"provider_id"`
	ResourceID string    `json:"resource_id,omitempty"`
	Date       time.Time `json:"date"`
	IsWorking  bool      `json:"is_working"`
	WorkStart  int       `json:"work_start"`
	WorkEnd    int       `json:"work_end"`
	Breaks     []Break   `json:"breaks,omitempty"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// BlockedInterval is an administrative exclusion (training, vacation, etc.).
type BlockedInterval struct {
	ID         string    `json:"id"`
	ProviderID string    `json:"provider_id"`
	ResourceID string    `json:"resource_id,omitempty"`
	Date       time.Time `json:"date"`
	Start      int       `json:"start"`
	End        int       `json:"end"`
	Reason     string    `json:"reason,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Booking is a committed reservation. Service name and price are snapshotted
// at booking time so later service edits do not alter historical bookings.
type Booking struct {
	ID           string        `json:"id"`
	ClientID     string        `json:"client_id"`
	ProviderID   string        `json:"provider_id"`
	ResourceID   string        `json:"resource_id,omitempty"`
	ServiceID    string        `json:"service_id"`
	ServiceName  string        `json:"service_name"`
	Date         time.Time     `json:"date"`
	Start        int           `json:"start"`
	End          int           `json:"end"`
	Price        int64         `json:"price"`
	Status       BookingStatus `json:"status"`
	ClientNote   string        `json:"client_note,omitempty"`
	ProviderNote string        `json:"provider_note,omitempty"`
	CancelledBy  ActorRole     `json:"cancelled_by,omitempty"`
	CancelReason string        `json:"cancel_reason,omitempty"`
	CancelledAt  *time.Time    `json:"cancelled_at,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
}

// Overlaps reports whether two half-open [start,end) intervals intersect.
func (b *Booking) Overlaps(start, end int) bool {
	return b.Start < end && start < b.End
}

// StartTimestamp combines the booking date with its start minute.
func (b *Booking) StartTimestamp() time.Time {
	return b.Date.Add(time.Duration(b.Start) * time.Minute)
}

// BookingPolicy is per-provider booking configuration.
type BookingPolicy struct {
	ProviderID                  string    `json:"provider_id"`
	MinAdvanceMinutes           int       `json:"min_advance_minutes"`
	CancellationDeadlineMinutes int       `json:"cancellation_deadline_minutes"`
	UpdatedAt                   time.Time `json:"updated_at"`
}

// TimeSlot is a derived candidate start time on the booking grid.
// Never persisted; recomputed on every availability query.
type TimeSlot struct {
	Start     int        `json:"start"`
	End       int        `json:"end"`
	Available bool       `json:"available"`
	Reason    SlotReason `json:"reason,omitempty"`
}

// BookingHistoryEntry is an append-only audit record for a booking.
type BookingHistoryEntry struct {
	ID              int64         `json:"id"`
	BookingID       string        `json:"booking_id"`
	Action          HistoryAction `json:"action"`
	PerformedBy     string        `json:"performed_by"`
	PerformedByName string        `json:"performed_by_name,omitempty"`
	Timestamp       time.Time     `json:"timestamp"`
}

// FormatMinute renders a minute-of-day value as "HH:MM".
// String formatting lives at the boundary; all internal math is on integers.
func FormatMinute(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// ParseMinute parses "HH:MM" into a minute-of-day value.
func ParseMinute(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time format: %s", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid hour in %q: %w", s, err)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid minute in %q: %w", s, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("time out of range: %s", s)
	}
	return hour*60 + minute, nil
}
