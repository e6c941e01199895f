package entity

import "time"

// CalendarEvent is an event owned by the external calendar
type CalendarEvent struct {
	ID          string
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
	TimeZone    string
	HTMLLink    string
}
