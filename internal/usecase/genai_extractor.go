package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"booking-sync-service/internal/domain/entity"
	"booking-sync-service/internal/domain/repository"
	"booking-sync-service/pkg/logger"
	"booking-sync-service/pkg/utils"
	"booking-sync-service/templates"
)

// ExtractorGenAI is the stage name of the generative extractor
const ExtractorGenAI = "genai"

var jsonSpanRe = regexp.MustCompile(`(?s)\{.*\}`)

// GenAIExtractor asks a generative model for the booking fields as JSON.
// It is best effort: every failure is reported as ErrExtractionFailed so the chain falls through.
type GenAIExtractor struct {
	generator repository.TextGenerator
	logger    logger.Logger
}

// NewGenAIExtractor creates a generative extractor. A nil generator disables the stage.
func NewGenAIExtractor(generator repository.TextGenerator, logger logger.Logger) *GenAIExtractor {
	return &GenAIExtractor{
		generator: generator,
		logger:    logger,
	}
}

// Name implements Extractor
func (e *GenAIExtractor) Name() string {
	return ExtractorGenAI
}

// Extract implements Extractor
func (e *GenAIExtractor) Extract(ctx context.Context, text string) (*entity.BookingRecord, error) {
	if e.generator == nil {
		return nil, fmt.Errorf("%w: generator disabled", ErrExtractionFailed)
	}

	response, err := e.generator.Generate(ctx, templates.ExtractionPrompt(text))
	if err != nil {
		e.logger.Error("Generative extraction request failed", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrExtractionFailed, err)
	}

	record, err := parseGeneratedRecord(response)
	if err != nil {
		e.logger.Warn("Generative response not usable",
			"error", err,
			"response", utils.Truncate(response, 200))
		return nil, fmt.Errorf("%w: %w", ErrExtractionFailed, err)
	}

	e.logger.Debug("Generative extraction succeeded", "bookingReference", record.BookingReference)
	return record, nil
}

// parseGeneratedRecord finds the outermost {...} span in text and decodes it
func parseGeneratedRecord(text string) (*entity.BookingRecord, error) {
	span := jsonSpanRe.FindString(strings.TrimSpace(text))
	if span == "" {
		return nil, fmt.Errorf("%w: no JSON object found", ErrMalformedResponse)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(span), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	found := 0
	field := func(key string) string {
		value, ok := raw[key]
		if !ok {
			return ""
		}
		found++
		switch v := value.(type) {
		case nil:
			return ""
		case string:
			return strings.TrimSpace(v)
		default:
			return fmt.Sprint(v)
		}
	}

	record := &entity.BookingRecord{
		BookingReference: field(templates.KeyBookingReference),
		Title:            field(templates.KeyTitle),
		Location:         field(templates.KeyLocation),
		TravelDate:       field(templates.KeyTravelDate),
		LeadTravelerName: field(templates.KeyLeadTravelerName),
		HotelPickup:      field(templates.KeyHotelPickup),
		Status:           field(templates.KeyStatus),
	}
	if found == 0 {
		return nil, fmt.Errorf("%w: no booking keys in object", ErrMalformedResponse)
	}

	return record, nil
}
