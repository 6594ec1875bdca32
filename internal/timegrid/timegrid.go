// Package timegrid provides pure calendar and slot-grid arithmetic.
// All times of day are minute-of-day integers in the provider's local
// civil calendar; no timezone conversion happens here.
package timegrid

import "time"

// DateOf truncates a timestamp to its civil date (midnight UTC).
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// EnumerateDates returns count consecutive calendar dates starting at start.
func EnumerateDates(start time.Time, count int) []time.Time {
	if count <= 0 {
		return nil
	}
	dates := make([]time.Time, 0, count)
	day := DateOf(start)
	for i := 0; i < count; i++ {
		dates = append(dates, day.AddDate(0, 0, i))
	}
	return dates
}

// SlotGrid enumerates every offset windowStart + k*granularity strictly less
// than windowEnd. Granularity is a parameter because booking slots and
// schedule editing use different grids.
func SlotGrid(windowStart, windowEnd, granularity int) []int {
	if granularity <= 0 || windowStart >= windowEnd {
		return nil
	}
	var grid []int
	for t := windowStart; t < windowEnd; t += granularity {
		grid = append(grid, t)
	}
	return grid
}

// Overlaps reports whether half-open intervals [start1,end1) and
// [start2,end2) intersect.
func Overlaps(start1, end1, start2, end2 int) bool {
	return start1 < end2 && start2 < end1
}

// MinuteOn combines a civil date with a minute-of-day offset.
func MinuteOn(date time.Time, minute int) time.Time {
	return DateOf(date).Add(time.Duration(minute) * time.Minute)
}
