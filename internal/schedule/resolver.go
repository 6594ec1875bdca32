// Package schedule derives bookable time slots from layered constraints:
// working hours, breaks, administrative blocks, committed bookings and the
// minimum-advance-notice policy.
package schedule

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/isden7409-pixel/beautyfind-1-sub001/internal/models"
)

// Store is the read side of the document store the resolver consumes.
type Store interface {
	// GetWorkingDay returns the schedule for a date, or nil if none exists.
	GetWorkingDay(ctx context.Context, providerID, resourceID string, date time.Time) (*models.WorkingDay, error)

	// ListBlockedIntervals returns administrative blocks for a date.
	ListBlockedIntervals(ctx context.Context, providerID, resourceID string, date time.Time) ([]models.BlockedInterval, error)

	// ListBookings returns bookings for a date filtered by status.
	ListBookings(ctx context.Context, providerID, resourceID string, date time.Time, statuses []models.BookingStatus) ([]models.Booking, error)
}

// OccupiedInterval is a merged [Start,End) range rendered unavailable,
// tagged with the dominant cause.
type OccupiedInterval struct {
	Start  int
	End    int
	Reason models.SlotReason
}

// DaySchedule is the resolved view of one (provider, resource, date):
// the working window plus the sorted, coalesced occupied intervals.
type DaySchedule struct {
	Working   bool
	WorkStart int
	WorkEnd   int
	Occupied  []OccupiedInterval
}

// Resolver merges a day's constraints into a DaySchedule.
type Resolver struct {
	store Store
}

// NewResolver creates a resolver over the given store.
func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

// Resolve builds the DaySchedule for a (provider, resource, date).
// A missing WorkingDay record means closed.
func (r *Resolver) Resolve(ctx context.Context, providerID, resourceID string, date time.Time) (*DaySchedule, error) {
	day, err := r.store.GetWorkingDay(ctx, providerID, resourceID, date)
	if err != nil {
		return nil, fmt.Errorf("get working day: %w", err)
	}
	if day == nil || !day.IsWorking {
		return &DaySchedule{Working: false}, nil
	}

	var raw []OccupiedInterval
	for _, br := range day.Breaks {
		raw = append(raw, OccupiedInterval{Start: br.Start, End: br.End, Reason: models.ReasonBreak})
	}

	blocks, err := r.store.ListBlockedIntervals(ctx, providerID, resourceID, date)
	if err != nil {
		return nil, fmt.Errorf("list blocked intervals: %w", err)
	}
	for _, bl := range blocks {
		raw = append(raw, OccupiedInterval{Start: bl.Start, End: bl.End, Reason: models.ReasonBlocked})
	}

	bookings, err := r.store.ListBookings(ctx, providerID, resourceID, date, models.OccupyingStatuses)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	for _, b := range bookings {
		raw = append(raw, OccupiedInterval{Start: b.Start, End: b.End, Reason: models.ReasonBooked})
	}

	return &DaySchedule{
		Working:   true,
		WorkStart: day.WorkStart,
		WorkEnd:   day.WorkEnd,
		Occupied:  mergeIntervals(raw),
	}, nil
}

// reasonRank orders causes for tagging merged intervals: bookings are the
// more specific cause and win over blocks, blocks win over breaks.
func reasonRank(r models.SlotReason) int {
	switch r {
	case models.ReasonBooked:
		return 3
	case models.ReasonBlocked:
		return 2
	case models.ReasonBreak:
		return 1
	}
	return 0
}

// mergeIntervals sorts intervals and coalesces overlapping or adjacent ones.
// The merged interval takes the highest-ranked reason of its parts.
func mergeIntervals(intervals []OccupiedInterval) []OccupiedInterval {
	if len(intervals) == 0 {
		return nil
	}

	sort.Slice(intervals, func(i, j int) bool {
		if intervals[i].Start != intervals[j].Start {
			return intervals[i].Start < intervals[j].Start
		}
		return reasonRank(intervals[i].Reason) > reasonRank(intervals[j].Reason)
	})

	merged := []OccupiedInterval{intervals[0]}
	for _, iv := range intervals[1:] {
		last := &merged[len(merged)-1]
		if iv.Start > last.End {
			merged = append(merged, iv)
			continue
		}
		if iv.End > last.End {
			last.End = iv.End
		}
		if reasonRank(iv.Reason) > reasonRank(last.Reason) {
			last.Reason = iv.Reason
		}
	}
	return merged
}
