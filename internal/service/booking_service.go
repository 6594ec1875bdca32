// Package service implements the booking-commitment engine: availability
// queries, conflict-free booking creation, cancellation policy and the
// provider-facing schedule management operations.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/isden7409-pixel/beautyfind-1-sub001/internal/events"
	"github.com/isden7409-pixel/beautyfind-1-sub001/internal/metrics"
	"github.com/isden7409-pixel/beautyfind-1-sub001/internal/models"
	"github.com/isden7409-pixel/beautyfind-1-sub001/internal/schedule"
	"github.com/isden7409-pixel/beautyfind-1-sub001/internal/timegrid"
)

// Store is the document-store surface the booking engine writes through.
type Store interface {
	schedule.Store

	// GetBooking returns a booking by ID or models.ErrNotFound.
	GetBooking(ctx context.Context, id string) (*models.Booking, error)

	// CommitBooking atomically re-checks interval overlap and persists the
	// booking together with its history entry. Returns models.ErrConflict
	// without writes if an overlapping confirmed/completed booking exists.
	CommitBooking(ctx context.Context, b *models.Booking, entry *models.BookingHistoryEntry) error

	// CancelBooking transitions confirmed -> cancelled and records the
	// cancellation metadata. Returns models.ErrInvalidState if the booking
	// is not confirmed, models.ErrNotFound if it does not exist.
	CancelBooking(ctx context.Context, id string, by models.ActorRole, reason string, at time.Time) error

	// CompleteBooking transitions confirmed -> completed.
	CompleteBooking(ctx context.Context, id string, at time.Time) error

	// AppendHistory appends an audit record for a booking.
	AppendHistory(ctx context.Context, entry *models.BookingHistoryEntry) error
}

// PolicyStore reads per-provider booking policies. In production this is
// the Redis-cached repository; tests plug in the store directly.
type PolicyStore interface {
	GetPolicy(ctx context.Context, providerID string) (*models.BookingPolicy, error)
}

// EventPublisher publishes fire-and-forget domain events.
type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// CreateBookingRequest carries a client's booking submission. Service name
// and price are snapshotted here so later edits to the service catalogue do
// not alter the booking.
type CreateBookingRequest struct {
	ClientID        string
	ClientName      string
	ProviderID      string
	ResourceID      string
	ServiceID       string
	ServiceName     string
	DurationMinutes int
	Price           int64
	Date            time.Time
	Start           int
	ClientNote      string
}

// BookingService validates and commits bookings against freshly recomputed
// availability.
type BookingService struct {
	store       Store
	policies    PolicyStore
	resolver    *schedule.Resolver
	bus         EventPublisher
	granularity int
	locks       *slotLocks
	now         func() time.Time
	logger      *zerolog.Logger
}

// NewBookingService creates the booking engine. slotGranularity is the
// booking grid step in minutes.
func NewBookingService(store Store, policies PolicyStore, bus EventPublisher, slotGranularity int, logger *zerolog.Logger) *BookingService {
	if slotGranularity <= 0 {
		slotGranularity = 15
	}
	return &BookingService{
		store:       store,
		policies:    policies,
		resolver:    schedule.NewResolver(store),
		bus:         bus,
		granularity: slotGranularity,
		locks:       newSlotLocks(),
		now:         time.Now,
		logger:      logger,
	}
}

// ListAvailableSlots returns the full slot grid for a provider/resource on a
// date, each slot marked available or unavailable with a reason. Closed days
// yield an empty sequence. No locks are taken; the result is a snapshot and
// the commit path re-validates.
func (s *BookingService) ListAvailableSlots(ctx context.Context, providerID, resourceID string, date time.Time, durationMinutes int) ([]models.TimeSlot, error) {
	if providerID == "" {
		return nil, fmt.Errorf("%w: provider id is required", models.ErrValidation)
	}
	if date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", models.ErrValidation)
	}
	if durationMinutes <= 0 {
		return nil, fmt.Errorf("%w: duration must be positive", models.ErrValidation)
	}

	started := time.Now()
	defer func() { metrics.ObserveSlotQuery(time.Since(started)) }()

	policy, err := s.policies.GetPolicy(ctx, providerID)
	if err != nil {
		return nil, fmt.Errorf("get policy: %w", err)
	}

	day, err := s.resolver.Resolve(ctx, providerID, resourceID, date)
	if err != nil {
		return nil, fmt.Errorf("resolve schedule: %w", err)
	}

	return schedule.GenerateSlots(day, date, durationMinutes, s.granularity, s.now(), policy.MinAdvanceMinutes), nil
}

// DayAvailability summarizes one calendar date for the booking calendar view.
type DayAvailability struct {
	Date      time.Time         `json:"date"`
	Working   bool              `json:"working"`
	Available int               `json:"available"`
	Slots     []models.TimeSlot `json:"slots"`
}

// ListAvailability computes the slot grid for each of days consecutive dates
// starting at from. Used by calendar views to mark bookable days up front.
func (s *BookingService) ListAvailability(ctx context.Context, providerID, resourceID string, from time.Time, days, durationMinutes int) ([]DayAvailability, error) {
	if providerID == "" {
		return nil, fmt.Errorf("%w: provider id is required", models.ErrValidation)
	}
	if from.IsZero() {
		return nil, fmt.Errorf("%w: date is required", models.ErrValidation)
	}
	if durationMinutes <= 0 {
		return nil, fmt.Errorf("%w: duration must be positive", models.ErrValidation)
	}
	if days <= 0 || days > 62 {
		return nil, fmt.Errorf("%w: days must be between 1 and 62", models.ErrValidation)
	}

	policy, err := s.policies.GetPolicy(ctx, providerID)
	if err != nil {
		return nil, fmt.Errorf("get policy: %w", err)
	}

	now := s.now()
	result := make([]DayAvailability, 0, days)
	for _, date := range timegrid.EnumerateDates(from, days) {
		day, err := s.resolver.Resolve(ctx, providerID, resourceID, date)
		if err != nil {
			return nil, fmt.Errorf("resolve schedule for %s: %w", date.Format("2006-01-02"), err)
		}

		entry := DayAvailability{Date: date, Working: day != nil && day.Working}
		entry.Slots = schedule.GenerateSlots(day, date, durationMinutes, s.granularity, now, policy.MinAdvanceMinutes)
		for _, slot := range entry.Slots {
			if slot.Available {
				entry.Available++
			}
		}
		result = append(result, entry)
	}
	return result, nil
}

// CreateBooking re-validates the requested slot under the per-day lock and
// commits the booking. Losing the race yields models.ErrConflict and no
// writes; the caller re-queries slots and retries with the user involved.
func (s *BookingService) CreateBooking(ctx context.Context, req CreateBookingRequest) (*models.Booking, error) {
	if err := validateCreateRequest(&req); err != nil {
		return nil, err
	}
	date := req.Date

	key := lockKey(req.ProviderID, req.ResourceID, date)
	s.locks.lock(key)
	defer s.locks.unlock(key)

	policy, err := s.policies.GetPolicy(ctx, req.ProviderID)
	if err != nil {
		return nil, fmt.Errorf("get policy: %w", err)
	}
	day, err := s.resolver.Resolve(ctx, req.ProviderID, req.ResourceID, date)
	if err != nil {
		return nil, fmt.Errorf("resolve schedule: %w", err)
	}

	slots := schedule.GenerateSlots(day, date, req.DurationMinutes, s.granularity, s.now(), policy.MinAdvanceMinutes)
	if err := checkRequestedSlot(slots, req.Start); err != nil {
		if errors.Is(err, models.ErrConflict) {
			metrics.IncBookingConflict()
		}
		return nil, err
	}

	now := s.now()
	booking := &models.Booking{
		ID:          uuid.NewString(),
		ClientID:    req.ClientID,
		ProviderID:  req.ProviderID,
		ResourceID:  req.ResourceID,
		ServiceID:   req.ServiceID,
		ServiceName: req.ServiceName,
		Date:        date,
		Start:       req.Start,
		End:         req.Start + req.DurationMinutes,
		Price:       req.Price,
		Status:      models.StatusConfirmed,
		ClientNote:  req.ClientNote,
		CreatedAt:   now,
	}
	entry := &models.BookingHistoryEntry{
		BookingID:       booking.ID,
		Action:          models.ActionCreated,
		PerformedBy:     req.ClientID,
		PerformedByName: req.ClientName,
		Timestamp:       now,
	}

	if err := s.store.CommitBooking(ctx, booking, entry); err != nil {
		if errors.Is(err, models.ErrConflict) {
			metrics.IncBookingConflict()
		}
		if s.logger != nil {
			s.logger.Warn().Err(err).
				Str("provider_id", req.ProviderID).
				Str("date", date.Format("2006-01-02")).
				Str("start", models.FormatMinute(req.Start)).
				Msg("booking commit rejected")
		}
		return nil, err
	}

	metrics.IncBookingCreated(string(booking.Status))
	s.publish(events.TypeBookingCreated, booking)

	if s.logger != nil {
		s.logger.Info().
			Str("booking_id", booking.ID).
			Str("provider_id", booking.ProviderID).
			Str("date", date.Format("2006-01-02")).
			Str("start", models.FormatMinute(booking.Start)).
			Msg("booking created")
	}
	return booking, nil
}

// CancelBooking cancels a confirmed booking. Client-initiated cancellations
// go through the cancellation policy; providers may always cancel.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID string, role models.ActorRole, actorID, actorName, reason string) error {
	b, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		return fmt.Errorf("get booking: %w", err)
	}

	now := s.now()
	if role == models.RoleClient {
		policy, err := s.policies.GetPolicy(ctx, b.ProviderID)
		if err != nil {
			return fmt.Errorf("get policy: %w", err)
		}
		decision := CanCancel(b, now, role, policy.CancellationDeadlineMinutes)
		if !decision.Permitted {
			if b.Status != models.StatusConfirmed {
				return fmt.Errorf("%w: %s", models.ErrInvalidState, decision.Reason)
			}
			return fmt.Errorf("%w: %s", models.ErrPolicyDenied, decision.Reason)
		}
	} else if b.Status != models.StatusConfirmed {
		return fmt.Errorf("%w: booking is %s", models.ErrInvalidState, b.Status)
	}

	if err := s.store.CancelBooking(ctx, bookingID, role, reason, now); err != nil {
		return err
	}

	s.appendHistory(ctx, &models.BookingHistoryEntry{
		BookingID:       bookingID,
		Action:          models.ActionCancelled,
		PerformedBy:     actorID,
		PerformedByName: actorName,
		Timestamp:       now,
	})

	b.Status = models.StatusCancelled
	b.CancelledBy = role
	b.CancelReason = reason
	b.CancelledAt = &now

	metrics.IncBookingCancelled(string(role))
	s.publish(events.TypeBookingCancelled, b)

	if s.logger != nil {
		s.logger.Info().
			Str("booking_id", bookingID).
			Str("cancelled_by", string(role)).
			Msg("booking cancelled")
	}
	return nil
}

// CompleteBooking marks a confirmed booking as completed. Completed bookings
// keep occupying their interval.
func (s *BookingService) CompleteBooking(ctx context.Context, bookingID, actorID, actorName string) error {
	b, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		return fmt.Errorf("get booking: %w", err)
	}
	if b.Status != models.StatusConfirmed {
		return fmt.Errorf("%w: booking is %s", models.ErrInvalidState, b.Status)
	}

	now := s.now()
	if err := s.store.CompleteBooking(ctx, bookingID, now); err != nil {
		return err
	}

	s.appendHistory(ctx, &models.BookingHistoryEntry{
		BookingID:       bookingID,
		Action:          models.ActionCompleted,
		PerformedBy:     actorID,
		PerformedByName: actorName,
		Timestamp:       now,
	})

	b.Status = models.StatusCompleted
	s.publish(events.TypeBookingCompleted, b)
	return nil
}

// appendHistory writes an audit record. A failure after a successful primary
// write is a non-fatal inconsistency reconciled out-of-band, never a reason
// to fail the user-visible operation.
func (s *BookingService) appendHistory(ctx context.Context, entry *models.BookingHistoryEntry) {
	if err := s.store.AppendHistory(ctx, entry); err != nil && s.logger != nil {
		s.logger.Error().Err(err).
			Str("booking_id", entry.BookingID).
			Str("action", string(entry.Action)).
			Msg("history write failed after primary write")
	}
}

func (s *BookingService) publish(eventType string, payload interface{}) {
	if s.bus == nil {
		return
	}
	if err := s.bus.PublishJSON(eventType, payload); err != nil && s.logger != nil {
		s.logger.Error().Err(err).Str("event", eventType).Msg("publish event failed")
	}
}

func validateCreateRequest(req *CreateBookingRequest) error {
	switch {
	case req.ClientID == "":
		return fmt.Errorf("%w: client id is required", models.ErrValidation)
	case req.ProviderID == "":
		return fmt.Errorf("%w: provider id is required", models.ErrValidation)
	case req.ServiceID == "":
		return fmt.Errorf("%w: service id is required", models.ErrValidation)
	case req.Date.IsZero():
		return fmt.Errorf("%w: date is required", models.ErrValidation)
	case req.DurationMinutes <= 0:
		return fmt.Errorf("%w: duration must be positive", models.ErrValidation)
	case req.Start < 0 || req.Start >= models.MinutesPerDay:
		return fmt.Errorf("%w: start time out of range", models.ErrValidation)
	}
	return nil
}

// checkRequestedSlot maps the freshly generated grid onto the request:
// off-grid starts are validation errors, too_soon is a policy denial and
// every other unavailable reason is a conflict.
func checkRequestedSlot(slots []models.TimeSlot, start int) error {
	for _, slot := range slots {
		if slot.Start != start {
			continue
		}
		if slot.Available {
			return nil
		}
		if slot.Reason == models.ReasonTooSoon {
			return fmt.Errorf("%w: start %s violates the advance-notice policy", models.ErrPolicyDenied, models.FormatMinute(start))
		}
		return fmt.Errorf("%w: slot %s is %s", models.ErrConflict, models.FormatMinute(start), slot.Reason)
	}
	return fmt.Errorf("%w: start %s is not a bookable slot", models.ErrValidation, models.FormatMinute(start))
}
