package booking

import (
	"time"

	"github.com/Zdenek156/bereifung24-scheduling/internal/httperr"
	"github.com/Zdenek156/bereifung24-scheduling/internal/models"
)

// Window is a half-open [Start, End) span of an owner's working day.
type Window struct {
	Start time.Time
	End   time.Time
}

func parseHM(date time.Time, hm string) (time.Time, bool) {
	t, err := time.Parse("15:04", hm)
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(
		date.Year(), date.Month(), date.Day(),
		t.Hour(), t.Minute(), 0, 0,
		date.Location(),
	), true
}

// OpenWindows returns the open spans for the given date: the working
// window minus the break. A closed day, an unparseable schedule or a
// break covering the whole window all yield no spans.
func OpenWindows(wh *models.WorkingHours, date time.Time) []Window {
	if wh == nil || !wh.Open {
		return nil
	}

	start, ok1 := parseHM(date, wh.StartTime)
	end, ok2 := parseHM(date, wh.EndTime)
	if !ok1 || !ok2 || !end.After(start) {
		return nil
	}

	if wh.BreakStart == "" || wh.BreakEnd == "" {
		return []Window{{Start: start, End: end}}
	}

	bs, ok3 := parseHM(date, wh.BreakStart)
	be, ok4 := parseHM(date, wh.BreakEnd)
	if !ok3 || !ok4 || !be.After(bs) {
		return []Window{{Start: start, End: end}}
	}

	if bs.Before(start) {
		bs = start
	}
	if be.After(end) {
		be = end
	}

	var windows []Window
	if bs.After(start) {
		windows = append(windows, Window{Start: start, End: bs})
	}
	if end.After(be) {
		windows = append(windows, Window{Start: be, End: end})
	}
	return windows
}

// IsWithinWorkingHours reports whether [start, end) fits entirely inside
// one open span of the day (never across the break).
func IsWithinWorkingHours(wh *models.WorkingHours, start, end time.Time) bool {
	return WithinWindows(OpenWindows(wh, start), start, end)
}

func WithinWindows(windows []Window, start, end time.Time) bool {
	for _, w := range windows {
		if !start.Before(w.Start) && !end.After(w.End) {
			return true
		}
	}
	return false
}

// ValidateWorkingDay enforces the schedule invariants before persisting:
// weekday in 0..6, parseable times, end after start, break inside the
// working window.
func ValidateWorkingDay(wh *models.WorkingHours) error {
	if wh.Weekday < 0 || wh.Weekday > 6 {
		return httperr.ErrBusiness("invalid_weekday")
	}
	if !wh.Open {
		return nil
	}

	ref := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	start, ok1 := parseHM(ref, wh.StartTime)
	end, ok2 := parseHM(ref, wh.EndTime)
	if !ok1 || !ok2 || !end.After(start) {
		return httperr.ErrBusiness("invalid_working_window")
	}

	if wh.BreakStart == "" && wh.BreakEnd == "" {
		return nil
	}

	bs, ok3 := parseHM(ref, wh.BreakStart)
	be, ok4 := parseHM(ref, wh.BreakEnd)
	if !ok3 || !ok4 || !be.After(bs) || bs.Before(start) || be.After(end) {
		return httperr.ErrBusiness("invalid_break")
	}
	return nil
}
