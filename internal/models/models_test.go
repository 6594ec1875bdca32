package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatMinute(t *testing.T) {
	tests := []struct {
		minute int
		want   string
	}{
		{0, "00:00"},
		{540, "09:00"},
		{545, "09:05"},
		{750, "12:30"},
		{1439, "23:59"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatMinute(tt.minute))
	}
}

func TestParseMinute(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		tests := []struct {
			value string
			want  int
		}{
			{"00:00", 0},
			{"09:00", 540},
			{"12:30", 750},
			{"23:59", 1439},
		}
		for _, tt := range tests {
			got, err := ParseMinute(tt.value)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		for _, value := range []string{"", "9:00:00", "24:00", "12:60", "ab:cd", "12-30", "-1:00"} {
			_, err := ParseMinute(value)
			assert.Error(t, err, "value %q", value)
		}
	})
}

func TestParseMinuteRoundTrip(t *testing.T) {
	for _, minute := range []int{0, 1, 59, 60, 540, 1439} {
		got, err := ParseMinute(FormatMinute(minute))
		assert.NoError(t, err)
		assert.Equal(t, minute, got)
	}
}

func TestBookingOverlaps(t *testing.T) {
	b := &Booking{Start: 600, End: 660}

	tests := []struct {
		name       string
		start, end int
		want       bool
	}{
		{"identical", 600, 660, true},
		{"overlap head", 570, 630, true},
		{"overlap tail", 630, 690, true},
		{"contained", 615, 645, true},
		{"containing", 540, 720, true},
		{"adjacent before", 540, 600, false},
		{"adjacent after", 660, 720, false},
		{"disjoint", 720, 780, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, b.Overlaps(tt.start, tt.end))
		})
	}
}

func TestStartTimestamp(t *testing.T) {
	b := &Booking{
		Date:  time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		Start: 630,
	}
	assert.Equal(t, time.Date(2025, 6, 2, 10, 30, 0, 0, time.UTC), b.StartTimestamp())
}
