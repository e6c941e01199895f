package utils

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrUnrecognizedDateFormat is returned when a travel date matches none of the accepted layouts
var ErrUnrecognizedDateFormat = errors.New("unrecognized date format")

// Accepted travel date layouts, tried in order
const (
	LayoutWeekdayDate = "Mon, Jan 2, 2006"
	LayoutMonthDate   = "Jan 2, 2006"
	LayoutISODate     = "2006-01-02"
)

var travelDateLayouts = []string{
	LayoutWeekdayDate,
	LayoutMonthDate,
	LayoutISODate,
}

// ParseTravelDate parses a human readable travel date. The whole string must match
// one of the accepted layouts. The result carries no zone; use AtClock to place it.
func ParseTravelDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range travelDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrUnrecognizedDateFormat, value)
}

// ParseTravelDateExact parses value with a single layout only
func ParseTravelDateExact(value, layout string) (time.Time, error) {
	t, err := time.Parse(layout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrUnrecognizedDateFormat, value)
	}
	return t, nil
}

// AtClock returns the calendar date of day at hour:minute in loc
func AtClock(day time.Time, hour, minute int, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, loc)
}
