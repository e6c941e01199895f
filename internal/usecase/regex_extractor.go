package usecase

import (
	"context"
	"regexp"
	"time"

	"booking-sync-service/internal/domain/entity"
	"booking-sync-service/pkg/logger"
	"booking-sync-service/pkg/utils"
)

// ExtractorRegex is the stage name of the deterministic extractor
const ExtractorRegex = "regex"

var (
	bookingReferenceRe = regexp.MustCompile(`Booking Reference:\s*(#\S+)`)
	amendedTitleRe     = regexp.MustCompile(`Amended\s*(.*)`)
	locationRe         = regexp.MustCompile(`Location:\s*(.*)`)
	travelDateRe       = regexp.MustCompile(`Travel Date:\s*(.*)`)
	leadTravelerRe     = regexp.MustCompile(`Lead traveler name:\s*(.*)`)
	hotelPickupRe      = regexp.MustCompile(`Hotel Pickup:\s*(.*)`)
	statusRe           = regexp.MustCompile(`Status:\s*(.*)`)
)

// RegexExtractor reads labeled lines out of the email text. It never fails:
// unmatched fields carry the Not Found sentinel.
type RegexExtractor struct {
	location *time.Location
	logger   logger.Logger
}

// NewRegexExtractor creates a regex extractor placing instants in location
func NewRegexExtractor(location *time.Location, logger logger.Logger) *RegexExtractor {
	if location == nil {
		location = time.UTC
	}
	return &RegexExtractor{
		location: location,
		logger:   logger,
	}
}

// Name implements Extractor
func (e *RegexExtractor) Name() string {
	return ExtractorRegex
}

// Extract implements Extractor
func (e *RegexExtractor) Extract(_ context.Context, text string) (*entity.BookingRecord, error) {
	record := &entity.BookingRecord{
		BookingReference: matchOrNotFound(bookingReferenceRe, text),
		Title:            matchOrNotFound(amendedTitleRe, text),
		Location:         matchOrNotFound(locationRe, text),
		TravelDate:       matchOrNotFound(travelDateRe, text),
		LeadTravelerName: matchOrNotFound(leadTravelerRe, text),
		HotelPickup:      matchOrNotFound(hotelPickupRe, text),
		Status:           matchOrNotFound(statusRe, text),
	}

	travelDate, err := utils.ParseTravelDateExact(record.TravelDate, utils.LayoutWeekdayDate)
	if err != nil {
		e.logger.Debug("Travel date not parseable, leaving window empty",
			"travelDate", record.TravelDate,
			"error", err)
		return record, nil
	}

	start := utils.AtClock(travelDate, 0, 0, e.location)
	end := start.Add(utils.RegexWindowHours * time.Hour)
	record.StartAt = &start
	record.EndAt = &end

	return record, nil
}

func matchOrNotFound(re *regexp.Regexp, text string) string {
	if value, ok := utils.FirstSubmatch(re, text); ok && value != "" {
		return value
	}
	return utils.NotFound
}
