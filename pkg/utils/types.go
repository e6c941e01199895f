package utils

// Sentinels written into booking fields
const (
	NotFound    = "Not Found"
	NotProvided = "Not Provided"
	NewBooking  = "New Booking"
)

// Constants
const (
	DefaultMailSender  = "Linda Tours Mumbai"
	DefaultFetchLimit  = 10
	DefaultCalendarID  = "primary"
	DefaultTimezone    = "Asia/Kolkata"
	CancelledPrefix    = "Canceled - "
	EventStartHour     = 9
	EventEndHour       = 10
	RegexWindowHours   = 4
	FallbackWindowHour = 1
)
