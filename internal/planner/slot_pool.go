package planner

import (
	"fmt"
	"strings"
	"time"
)

const (
	// SlotLayout is the fixed-width textual form of an exam start.
	SlotLayout = "2006-01-02 15:04"
	// DateLayout is the calendar date form used for windows.
	DateLayout = "2006-01-02"

	defaultWindowDays = 10
)

// TimeOfDay is a wall clock offset within a day.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// DailyTimes are the exam start offsets offered on every window day.
var DailyTimes = []TimeOfDay{
	{Hour: 9, Minute: 0},
	{Hour: 11, Minute: 0},
	{Hour: 13, Minute: 30},
	{Hour: 15, Minute: 30},
	{Hour: 17, Minute: 0},
	{Hour: 19, Minute: 0},
}

// SlotPoolConfig describes the window exams may be placed in. DateStart and
// DateEnd are inclusive calendar dates; only their date part is used. When
// both are nil the window is WindowDays days starting today and
// ExcludedWeekdays is ignored.
type SlotPoolConfig struct {
	DateStart        *time.Time
	DateEnd          *time.Time
	ExcludedWeekdays []time.Weekday
	WindowDays       int
}

// FormatSlot renders t in SlotLayout.
func FormatSlot(t time.Time) string {
	return t.Format(SlotLayout)
}

// ParseSlot parses a SlotLayout timestamp. Anything not in that exact shape
// is rejected.
func ParseSlot(raw string) (time.Time, error) {
	t, err := time.ParseInLocation(SlotLayout, raw, time.Local)
	if err != nil || FormatSlot(t) != raw {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidSlot, raw)
	}
	return t, nil
}

// ParseDate parses a DateLayout calendar date.
func ParseDate(raw string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(raw), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q must be YYYY-MM-DD", ErrInvalidWindow, raw)
	}
	return t, nil
}

// ParseWeekday accepts English weekday names, full or three letter.
func ParseWeekday(raw string) (time.Weekday, error) {
	name := strings.ToLower(strings.TrimSpace(raw))
	for d := time.Sunday; d <= time.Saturday; d++ {
		full := strings.ToLower(d.String())
		if name == full || name == full[:3] {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", raw)
}

// GenerateSlotPool returns every (day, daily time) combination of the window
// in chronological order. Excluded weekdays only apply to an explicit window;
// the default window always covers every day. now anchors the default window
// and supplies the location for all slots.
func GenerateSlotPool(cfg SlotPoolConfig, now time.Time) ([]time.Time, error) {
	loc := now.Location()

	var first, last time.Time
	excluded := map[time.Weekday]struct{}{}
	switch {
	case cfg.DateStart == nil && cfg.DateEnd == nil:
		days := cfg.WindowDays
		if days <= 0 {
			days = defaultWindowDays
		}
		first = dateOnly(now, loc)
		last = first.AddDate(0, 0, days-1)
	case cfg.DateStart == nil || cfg.DateEnd == nil:
		return nil, fmt.Errorf("%w: both start and end dates are required", ErrInvalidWindow)
	default:
		first = dateOnly(*cfg.DateStart, loc)
		last = dateOnly(*cfg.DateEnd, loc)
		if last.Before(first) {
			return nil, fmt.Errorf("%w: end date %s is before start date %s", ErrInvalidWindow, last.Format(DateLayout), first.Format(DateLayout))
		}
		for _, d := range cfg.ExcludedWeekdays {
			excluded[d] = struct{}{}
		}
	}

	var slots []time.Time
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		if _, skip := excluded[day.Weekday()]; skip {
			continue
		}
		for _, tod := range DailyTimes {
			slots = append(slots, time.Date(day.Year(), day.Month(), day.Day(), tod.Hour, tod.Minute, 0, 0, loc))
		}
	}

	if len(slots) == 0 {
		return nil, ErrEmptySlotPool
	}
	return slots, nil
}

func dateOnly(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
