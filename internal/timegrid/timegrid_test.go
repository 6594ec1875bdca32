package timegrid

import (
	"testing"
	"time"
)

func TestEnumerateDates(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		count int
		want  int
	}{
		{
			name:  "seven days",
			start: time.Date(2026, 3, 1, 15, 30, 0, 0, time.UTC),
			count: 7,
			want:  7,
		},
		{
			name:  "across month boundary",
			start: time.Date(2026, 1, 30, 0, 0, 0, 0, time.UTC),
			count: 4,
			want:  4,
		},
		{
			name:  "zero count",
			start: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			count: 0,
			want:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dates := EnumerateDates(tt.start, tt.count)
			if len(dates) != tt.want {
				t.Fatalf("expected %d dates, got %d", tt.want, len(dates))
			}
			for i, d := range dates {
				if d.Hour() != 0 || d.Minute() != 0 {
					t.Errorf("date %d not normalized to midnight: %v", i, d)
				}
				if i > 0 {
					if got := int(d.Sub(dates[i-1]).Hours()); got != 24 {
						t.Errorf("dates %d and %d are %d hours apart", i-1, i, got)
					}
				}
			}
		})
	}

	// Restartable: same inputs, same output.
	a := EnumerateDates(time.Date(2026, 2, 27, 0, 0, 0, 0, time.UTC), 5)
	b := EnumerateDates(time.Date(2026, 2, 27, 0, 0, 0, 0, time.UTC), 5)
	for i := range a {
		if !a[i].Equal(b[i]) {
			t.Errorf("enumeration is not stable at index %d", i)
		}
	}
}

func TestSlotGrid(t *testing.T) {
	tests := []struct {
		name        string
		start, end  int
		granularity int
		want        []int
	}{
		{
			name:  "30 minute grid",
			start: 9 * 60, end: 11 * 60, granularity: 30,
			want: []int{540, 570, 600, 630},
		},
		{
			name:  "15 minute grid",
			start: 10 * 60, end: 10*60 + 45, granularity: 15,
			want: []int{600, 615, 630},
		},
		{
			name:  "end not on grid",
			start: 9 * 60, end: 9*60 + 50, granularity: 30,
			want: []int{540, 570},
		},
		{
			name:  "empty window",
			start: 600, end: 600, granularity: 30,
			want: nil,
		},
		{
			name:  "invalid granularity",
			start: 540, end: 600, granularity: 0,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SlotGrid(tt.start, tt.end, tt.granularity)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("offset %d: expected %d, got %d", i, tt.want[i], got[i])
				}
			}
		})
	}
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name                   string
		s1, e1, s2, e2         int
		want                   bool
	}{
		{"disjoint", 540, 570, 600, 630, false},
		{"adjacent half-open", 540, 570, 570, 600, false},
		{"partial", 540, 600, 570, 630, true},
		{"contained", 540, 660, 570, 600, true},
		{"identical", 540, 570, 540, 570, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overlaps(tt.s1, tt.e1, tt.s2, tt.e2); got != tt.want {
				t.Errorf("Overlaps(%d,%d,%d,%d): expected %v, got %v",
					tt.s1, tt.e1, tt.s2, tt.e2, tt.want, got)
			}
		})
	}
}

func TestMinuteOn(t *testing.T) {
	date := time.Date(2026, 3, 10, 18, 45, 0, 0, time.UTC)
	got := MinuteOn(date, 9*60+30)
	want := time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}
