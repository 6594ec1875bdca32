package schedule

import (
	"time"

	"github.com/isden7409-pixel/beautyfind-1-sub001/internal/models"
	"github.com/isden7409-pixel/beautyfind-1-sub001/internal/timegrid"
)

// GenerateSlots walks the slot grid across the working window and marks each
// candidate start as available or unavailable with a reason code.
//
// The function is pure: identical inputs always yield identical output. It is
// invoked twice per booking attempt, once for display and once for commit
// validation, so determinism is a correctness requirement, not a nicety.
//
// Candidates whose [t, t+duration) would run past the working window are
// excluded from the grid entirely rather than marked unavailable.
func GenerateSlots(day *DaySchedule, date time.Time, duration, granularity int, now time.Time, minAdvanceMinutes int) []models.TimeSlot {
	if day == nil || !day.Working || duration <= 0 {
		return nil
	}

	earliest := now.Add(time.Duration(minAdvanceMinutes) * time.Minute)

	var slots []models.TimeSlot
	for _, t := range timegrid.SlotGrid(day.WorkStart, day.WorkEnd, granularity) {
		end := t + duration
		if end > day.WorkEnd {
			continue
		}

		slot := models.TimeSlot{Start: t, End: end, Available: true}

		if timegrid.MinuteOn(date, t).Before(earliest) {
			slot.Available = false
			slot.Reason = models.ReasonTooSoon
		} else if iv, ok := firstOverlap(day.Occupied, t, end); ok {
			slot.Available = false
			slot.Reason = iv.Reason
		}

		slots = append(slots, slot)
	}
	return slots
}

// firstOverlap returns the first occupied interval intersecting [start,end).
// Occupied intervals are sorted, so scanning stops once past the candidate.
func firstOverlap(occupied []OccupiedInterval, start, end int) (OccupiedInterval, bool) {
	for _, iv := range occupied {
		if iv.Start >= end {
			break
		}
		if timegrid.Overlaps(start, end, iv.Start, iv.End) {
			return iv, true
		}
	}
	return OccupiedInterval{}, false
}
