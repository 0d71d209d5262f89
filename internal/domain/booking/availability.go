package booking

import (
	"time"

	"github.com/Zdenek156/bereifung24-scheduling/internal/models"
)

// SlotStep is the quantization of candidate appointment starts.
const SlotStep = 15 * time.Minute

type Interval struct {
	Start time.Time
	End   time.Time
}

type TimeSlot struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// FreeSlots walks each open window in SlotStep increments and returns the
// starts where a booking of the given duration fits before the window
// closes and touches no busy interval. Results are chronological.
func FreeSlots(windows []Window, busy []Interval, duration, step time.Duration) []time.Time {
	if duration <= 0 || step <= 0 {
		return nil
	}

	var slots []time.Time
	for _, w := range windows {
		for cur := w.Start; !cur.Add(duration).After(w.End); cur = cur.Add(step) {
			if !overlapsAny(cur, cur.Add(duration), busy) {
				slots = append(slots, cur)
			}
		}
	}
	return slots
}

// IsFree re-validates a single candidate at commit time: the interval must
// sit inside an open window and clear of every busy interval.
func IsFree(windows []Window, busy []Interval, start time.Time, duration time.Duration) bool {
	end := start.Add(duration)
	if !WithinWindows(windows, start, end) {
		return false
	}
	return !overlapsAny(start, end, busy)
}

func overlapsAny(start, end time.Time, busy []Interval) bool {
	for _, b := range busy {
		// half-open intervals: [start,end) meets [b.Start,b.End)
		if start.Before(b.End) && b.Start.Before(end) {
			return true
		}
	}
	return false
}

// BusyIntervals maps slot-occupying bookings to intervals, skipping the
// booking with the excluded ID (used when rescheduling: the booking being
// moved does not block its own replacement).
func BusyIntervals(bookings []models.Booking, exclude uint) []Interval {
	var busy []Interval
	for _, b := range bookings {
		if b.ID == exclude {
			continue
		}
		if !Occupies(Status(b.Status)) {
			continue
		}
		busy = append(busy, Interval{Start: b.AppointmentStart, End: b.AppointmentEnd})
	}
	return busy
}
