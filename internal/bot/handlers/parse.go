package handlers

import (
	"errors"
	"strconv"
	"time"
)

var (
	errBadDate    = errors.New("bad date")
	errBadClock   = errors.New("bad clock time")
	errBadWeekday = errors.New("bad weekday")
)

// parseDate parses YYYY-MM-DD in local time.
func parseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return time.Time{}, errBadDate
	}
	return t, nil
}

// parseClock parses HH:MM into hour and minute.
func parseClock(s string) (hour, min int, err error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, errBadClock
	}
	return t.Hour(), t.Minute(), nil
}

// parseWeekday maps the command syntax (0 = Monday .. 6 = Sunday) to
// time.Weekday (0 = Sunday).
func parseWeekday(s string) (time.Weekday, error) {
	d, err := strconv.Atoi(s)
	if err != nil || d < 0 || d > 6 {
		return 0, errBadWeekday
	}
	return time.Weekday((d + 1) % 7), nil
}
