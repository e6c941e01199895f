package entity

import (
	"fmt"
	"strings"
	"time"

	"booking-sync-service/pkg/utils"
)

// BookingStatus drives the reconciliation branch of a booking
type BookingStatus string

// Booking statuses
const (
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
	BookingAmended   BookingStatus = "amended"
	BookingUnknown   BookingStatus = "unknown"
)

// ParseStatus normalizes a free-text status. Both spellings of cancelled are accepted.
func ParseStatus(raw string) BookingStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "confirmed":
		return BookingConfirmed
	case "cancelled", "canceled":
		return BookingCancelled
	case "amended":
		return BookingAmended
	default:
		return BookingUnknown
	}
}

// BookingRecord is the structured booking extracted from one confirmation email.
// JSON keys match the extraction prompt and are posted as-is to the notification sink.
type BookingRecord struct {
	BookingReference string     `json:"Booking Reference" bson:"bookingReference"`
	Title            string     `json:"Title" bson:"title"`
	Location         string     `json:"Location" bson:"location"`
	TravelDate       string     `json:"Travel Date" bson:"travelDate"`
	LeadTravelerName string     `json:"Lead Traveler Name" bson:"leadTravelerName"`
	HotelPickup      string     `json:"Hotel Pickup" bson:"hotelPickup"`
	Status           string     `json:"Status" bson:"status"`
	StartAt          *time.Time `json:"start_datetime" bson:"startAt,omitempty"`
	EndAt            *time.Time `json:"end_datetime" bson:"endAt,omitempty"`
}

// NormalizedStatus returns the enumerated status of the record
func (b *BookingRecord) NormalizedStatus() BookingStatus {
	return ParseStatus(b.Status)
}

// Reference returns the booking reference, or the Not Provided sentinel when absent
func (b *BookingRecord) Reference() string {
	if isMissing(b.BookingReference) {
		return utils.NotProvided
	}
	return strings.TrimSpace(b.BookingReference)
}

// Summary returns the calendar summary for the booking
func (b *BookingRecord) Summary() string {
	if isMissing(b.Title) {
		return utils.NewBooking
	}
	return strings.TrimSpace(b.Title)
}

// EnsureWindow fills missing start/end instants with now and now+1h
func (b *BookingRecord) EnsureWindow(now time.Time) {
	if b.StartAt == nil {
		start := now
		b.StartAt = &start
	}
	if b.EndAt == nil {
		end := b.StartAt.Add(utils.FallbackWindowHour * time.Hour)
		b.EndAt = &end
	}
}

// Describe renders every booking field, one per line, in a fixed order.
// The output is stored as the calendar event description and searched later.
func (b *BookingRecord) Describe() string {
	lines := []string{
		fmt.Sprintf("Booking Reference: %s", b.Reference()),
		fmt.Sprintf("Title: %s", b.Summary()),
		fmt.Sprintf("Location: %s", orNotProvided(b.Location)),
		fmt.Sprintf("Travel Date: %s", orNotProvided(b.TravelDate)),
		fmt.Sprintf("Lead Traveler Name: %s", orNotProvided(b.LeadTravelerName)),
		fmt.Sprintf("Hotel Pickup: %s", orNotProvided(b.HotelPickup)),
		fmt.Sprintf("Status: %s", b.NormalizedStatus()),
	}
	return strings.Join(lines, "\n")
}

// ToMap flattens the record for audit storage
func (b *BookingRecord) ToMap() map[string]interface{} {
	data := map[string]interface{}{
		"bookingReference": b.BookingReference,
		"title":            b.Title,
		"location":         b.Location,
		"travelDate":       b.TravelDate,
		"leadTravelerName": b.LeadTravelerName,
		"hotelPickup":      b.HotelPickup,
		"status":           b.Status,
	}
	if b.StartAt != nil {
		data["startAt"] = *b.StartAt
	}
	if b.EndAt != nil {
		data["endAt"] = *b.EndAt
	}
	return data
}

func isMissing(value string) bool {
	v := strings.TrimSpace(value)
	return v == "" || v == utils.NotFound || v == utils.NotProvided
}

func orNotProvided(value string) string {
	if isMissing(value) {
		return utils.NotProvided
	}
	return strings.TrimSpace(value)
}
