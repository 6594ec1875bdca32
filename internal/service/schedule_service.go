package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/isden7409-pixel/beautyfind-1-sub001/internal/models"
	"github.com/isden7409-pixel/beautyfind-1-sub001/internal/timegrid"
)

// ScheduleStore is the write side of schedule management.
type ScheduleStore interface {
	// UpsertWorkingDay creates or replaces a day's schedule (keyed by
	// provider, resource and date).
	UpsertWorkingDay(ctx context.Context, day *models.WorkingDay) error

	// CreateBlockedInterval records an administrative exclusion.
	CreateBlockedInterval(ctx context.Context, block *models.BlockedInterval) error

	// GetBlockedInterval returns a block by ID or models.ErrNotFound.
	GetBlockedInterval(ctx context.Context, id string) (*models.BlockedInterval, error)

	// DeleteBlockedInterval removes a block.
	DeleteBlockedInterval(ctx context.Context, id string) error
}

// PolicyRepository reads and writes booking policies. The Redis-cached
// repository implements it with write-through invalidation.
type PolicyRepository interface {
	PolicyStore
	UpsertPolicy(ctx context.Context, policy *models.BookingPolicy) error
}

// ScheduleService is the provider-facing schedule management surface the
// Constraint Resolver reads from.
type ScheduleService struct {
	store       ScheduleStore
	policies    PolicyRepository
	granularity int // schedule-editing grid, minutes
	now         func() time.Time
	logger      *zerolog.Logger
}

// NewScheduleService creates the schedule manager. editGranularity is the
// grid step schedule times must align to (coarser than the booking grid).
func NewScheduleService(store ScheduleStore, policies PolicyRepository, editGranularity int, logger *zerolog.Logger) *ScheduleService {
	if editGranularity <= 0 {
		editGranularity = 30
	}
	return &ScheduleService{
		store:       store,
		policies:    policies,
		granularity: editGranularity,
		now:         time.Now,
		logger:      logger,
	}
}

// UpsertWorkingDay validates and saves one date's schedule, replacing any
// previous record for that date.
func (s *ScheduleService) UpsertWorkingDay(ctx context.Context, day *models.WorkingDay) error {
	if day.ProviderID == "" {
		return fmt.Errorf("%w: provider id is required", models.ErrValidation)
	}
	if day.Date.IsZero() {
		return fmt.Errorf("%w: date is required", models.ErrValidation)
	}
	day.Date = timegrid.DateOf(day.Date)

	if day.IsWorking {
		if err := s.validateWorkingHours(day); err != nil {
			return err
		}
	} else {
		day.WorkStart, day.WorkEnd, day.Breaks = 0, 0, nil
	}

	day.UpdatedAt = s.now()
	if err := s.store.UpsertWorkingDay(ctx, day); err != nil {
		return fmt.Errorf("upsert working day: %w", err)
	}

	if s.logger != nil {
		s.logger.Info().
			Str("provider_id", day.ProviderID).
			Str("date", day.Date.Format("2006-01-02")).
			Bool("is_working", day.IsWorking).
			Msg("working day saved")
	}
	return nil
}

func (s *ScheduleService) validateWorkingHours(day *models.WorkingDay) error {
	if day.WorkStart < 0 || day.WorkEnd > models.MinutesPerDay || day.WorkStart >= day.WorkEnd {
		return fmt.Errorf("%w: working hours %s-%s are invalid",
			models.ErrValidation, models.FormatMinute(day.WorkStart), models.FormatMinute(day.WorkEnd))
	}
	if day.WorkStart%s.granularity != 0 || day.WorkEnd%s.granularity != 0 {
		return fmt.Errorf("%w: working hours must align to the %d-minute grid", models.ErrValidation, s.granularity)
	}

	breaks := append([]models.Break(nil), day.Breaks...)
	sort.Slice(breaks, func(i, j int) bool { return breaks[i].Start < breaks[j].Start })
	for i, br := range breaks {
		if br.Start >= br.End {
			return fmt.Errorf("%w: break %s-%s is empty",
				models.ErrValidation, models.FormatMinute(br.Start), models.FormatMinute(br.End))
		}
		if br.Start < day.WorkStart || br.End > day.WorkEnd {
			return fmt.Errorf("%w: break %s-%s lies outside working hours",
				models.ErrValidation, models.FormatMinute(br.Start), models.FormatMinute(br.End))
		}
		if br.Start%s.granularity != 0 || br.End%s.granularity != 0 {
			return fmt.Errorf("%w: breaks must align to the %d-minute grid", models.ErrValidation, s.granularity)
		}
		if i > 0 && br.Start < breaks[i-1].End {
			return fmt.Errorf("%w: breaks %s-%s and %s-%s overlap", models.ErrValidation,
				models.FormatMinute(breaks[i-1].Start), models.FormatMinute(breaks[i-1].End),
				models.FormatMinute(br.Start), models.FormatMinute(br.End))
		}
	}
	day.Breaks = breaks
	return nil
}

// BlockInterval records an ad-hoc exclusion (training, vacation) for a
// provider or staff member.
func (s *ScheduleService) BlockInterval(ctx context.Context, block *models.BlockedInterval) (*models.BlockedInterval, error) {
	if block.ProviderID == "" {
		return nil, fmt.Errorf("%w: provider id is required", models.ErrValidation)
	}
	if block.Date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", models.ErrValidation)
	}
	if block.Start < 0 || block.End > models.MinutesPerDay || block.Start >= block.End {
		return nil, fmt.Errorf("%w: interval %s-%s is invalid",
			models.ErrValidation, models.FormatMinute(block.Start), models.FormatMinute(block.End))
	}

	block.ID = uuid.NewString()
	block.Date = timegrid.DateOf(block.Date)
	block.CreatedAt = s.now()

	if err := s.store.CreateBlockedInterval(ctx, block); err != nil {
		return nil, fmt.Errorf("create blocked interval: %w", err)
	}
	return block, nil
}

// UnblockInterval removes a block. Intervals that already ended are
// immutable and stay on record.
func (s *ScheduleService) UnblockInterval(ctx context.Context, id string) error {
	block, err := s.store.GetBlockedInterval(ctx, id)
	if err != nil {
		return fmt.Errorf("get blocked interval: %w", err)
	}
	if timegrid.MinuteOn(block.Date, block.End).Before(s.now()) {
		return fmt.Errorf("%w: past blocked intervals are immutable", models.ErrInvalidState)
	}
	if err := s.store.DeleteBlockedInterval(ctx, id); err != nil {
		return fmt.Errorf("delete blocked interval: %w", err)
	}
	return nil
}

// UpdatePolicy saves per-provider booking configuration.
func (s *ScheduleService) UpdatePolicy(ctx context.Context, policy *models.BookingPolicy) error {
	if policy.ProviderID == "" {
		return fmt.Errorf("%w: provider id is required", models.ErrValidation)
	}
	if policy.MinAdvanceMinutes < 0 || policy.CancellationDeadlineMinutes < 0 {
		return fmt.Errorf("%w: policy minutes must not be negative", models.ErrValidation)
	}

	policy.UpdatedAt = s.now()
	if err := s.policies.UpsertPolicy(ctx, policy); err != nil {
		return fmt.Errorf("upsert policy: %w", err)
	}

	if s.logger != nil {
		s.logger.Info().
			Str("provider_id", policy.ProviderID).
			Int("min_advance_minutes", policy.MinAdvanceMinutes).
			Int("cancellation_deadline_minutes", policy.CancellationDeadlineMinutes).
			Msg("booking policy updated")
	}
	return nil
}
