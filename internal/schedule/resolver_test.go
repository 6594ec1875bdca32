package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/isden7409-pixel/beautyfind-1-sub001/internal/models"
)

// fakeStore implements Store with fixed data.
type fakeStore struct {
	workingDay *models.WorkingDay
	blocked    []models.BlockedInterval
	bookings   []models.Booking
}

func (f *fakeStore) GetWorkingDay(_ context.Context, _, _ string, _ time.Time) (*models.WorkingDay, error) {
	return f.workingDay, nil
}

func (f *fakeStore) ListBlockedIntervals(_ context.Context, _, _ string, _ time.Time) ([]models.BlockedInterval, error) {
	return f.blocked, nil
}

func (f *fakeStore) ListBookings(_ context.Context, _, _ string, _ time.Time, statuses []models.BookingStatus) ([]models.Booking, error) {
	var out []models.Booking
	for _, b := range f.bookings {
		for _, s := range statuses {
			if b.Status == s {
				out = append(out, b)
				break
			}
		}
	}
	return out, nil
}

var testDate = time.Date(2026, 4, 20, 0, 0, 0, 0, time.UTC)

func TestResolve_ClosedDays(t *testing.T) {
	ctx := context.Background()

	t.Run("no working day record", func(t *testing.T) {
		r := NewResolver(&fakeStore{})
		day, err := r.Resolve(ctx, "p1", "", testDate)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if day.Working {
			t.Error("missing record should resolve as closed")
		}
	})

	t.Run("explicit day off", func(t *testing.T) {
		r := NewResolver(&fakeStore{
			workingDay: &models.WorkingDay{ProviderID: "p1", Date: testDate, IsWorking: false},
		})
		day, err := r.Resolve(ctx, "p1", "", testDate)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if day.Working {
			t.Error("is_working=false should resolve as closed")
		}
	})
}

func TestResolve_MergesAllSources(t *testing.T) {
	store := &fakeStore{
		workingDay: &models.WorkingDay{
			ProviderID: "p1",
			Date:       testDate,
			IsWorking:  true,
			WorkStart:  9 * 60,
			WorkEnd:    18 * 60,
			Breaks:     []models.Break{{Start: 12 * 60, End: 13 * 60, Label: "lunch"}},
		},
		blocked: []models.BlockedInterval{
			{Start: 16 * 60, End: 17 * 60, Reason: "training"},
		},
		bookings: []models.Booking{
			{Start: 14 * 60, End: 14*60 + 30, Status: models.StatusConfirmed},
			{Start: 10 * 60, End: 10*60 + 30, Status: models.StatusCancelled}, // must not occupy
			{Start: 9 * 60, End: 9*60 + 30, Status: models.StatusCompleted},
		},
	}

	day, err := NewResolver(store).Resolve(context.Background(), "p1", "", testDate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !day.Working || day.WorkStart != 540 || day.WorkEnd != 1080 {
		t.Fatalf("unexpected working window: %+v", day)
	}

	want := []OccupiedInterval{
		{Start: 540, End: 570, Reason: models.ReasonBooked},
		{Start: 720, End: 780, Reason: models.ReasonBreak},
		{Start: 840, End: 870, Reason: models.ReasonBooked},
		{Start: 960, End: 1020, Reason: models.ReasonBlocked},
	}
	if len(day.Occupied) != len(want) {
		t.Fatalf("expected %d occupied intervals, got %d: %+v", len(want), len(day.Occupied), day.Occupied)
	}
	for i, iv := range day.Occupied {
		if iv != want[i] {
			t.Errorf("interval %d: expected %+v, got %+v", i, want[i], iv)
		}
	}
}

func TestMergeIntervals(t *testing.T) {
	tests := []struct {
		name string
		in   []OccupiedInterval
		want []OccupiedInterval
	}{
		{
			name: "overlapping coalesced with dominant reason",
			in: []OccupiedInterval{
				{Start: 720, End: 780, Reason: models.ReasonBreak},
				{Start: 750, End: 810, Reason: models.ReasonBooked},
			},
			want: []OccupiedInterval{{Start: 720, End: 810, Reason: models.ReasonBooked}},
		},
		{
			name: "adjacent coalesced",
			in: []OccupiedInterval{
				{Start: 540, End: 570, Reason: models.ReasonBlocked},
				{Start: 570, End: 600, Reason: models.ReasonBlocked},
			},
			want: []OccupiedInterval{{Start: 540, End: 600, Reason: models.ReasonBlocked}},
		},
		{
			name: "coinciding intervals keep booked tag",
			in: []OccupiedInterval{
				{Start: 600, End: 660, Reason: models.ReasonBlocked},
				{Start: 600, End: 660, Reason: models.ReasonBooked},
			},
			want: []OccupiedInterval{{Start: 600, End: 660, Reason: models.ReasonBooked}},
		},
		{
			name: "contained interval does not shrink",
			in: []OccupiedInterval{
				{Start: 540, End: 720, Reason: models.ReasonBlocked},
				{Start: 600, End: 630, Reason: models.ReasonBreak},
			},
			want: []OccupiedInterval{{Start: 540, End: 720, Reason: models.ReasonBlocked}},
		},
		{
			name: "unsorted input",
			in: []OccupiedInterval{
				{Start: 840, End: 870, Reason: models.ReasonBooked},
				{Start: 540, End: 570, Reason: models.ReasonBreak},
			},
			want: []OccupiedInterval{
				{Start: 540, End: 570, Reason: models.ReasonBreak},
				{Start: 840, End: 870, Reason: models.ReasonBooked},
			},
		},
		{
			name: "empty",
			in:   nil,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mergeIntervals(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %+v, got %+v", tt.want, got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("interval %d: expected %+v, got %+v", i, tt.want[i], got[i])
				}
			}
		})
	}
}
