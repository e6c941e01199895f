package usecase

import (
	"context"
	"errors"
	"fmt"

	"booking-sync-service/internal/domain/entity"
	"booking-sync-service/pkg/logger"
)

var (
	// ErrExtractionFailed is returned when an extractor cannot produce a record
	ErrExtractionFailed = errors.New("extraction failed")
	// ErrMalformedResponse is returned when generated text holds no usable JSON object
	ErrMalformedResponse = errors.New("malformed generated response")
)

// Extractor turns raw email text into a booking record
type Extractor interface {
	// Name identifies the extractor stage in logs, metrics and the audit log
	Name() string

	// Extract returns a record or an error wrapping ErrExtractionFailed
	Extract(ctx context.Context, text string) (*entity.BookingRecord, error)
}

// ExtractorChain tries extractors in registration order, first success wins
type ExtractorChain struct {
	extractors []Extractor
	logger     logger.Logger
}

// NewExtractorChain creates a chain with the given extractors
func NewExtractorChain(logger logger.Logger, extractors ...Extractor) *ExtractorChain {
	chain := &ExtractorChain{
		extractors: make([]Extractor, 0, len(extractors)),
		logger:     logger,
	}
	for _, e := range extractors {
		chain.Register(e)
	}
	return chain
}

// Register appends an extractor to the end of the chain
func (c *ExtractorChain) Register(extractor Extractor) {
	c.extractors = append(c.extractors, extractor)
	c.logger.Debug("Registered extractor", "extractor", extractor.Name(), "position", len(c.extractors))
}

// Extract runs the chain and returns the record with the name of the stage that produced it
func (c *ExtractorChain) Extract(ctx context.Context, text string) (*entity.BookingRecord, string, error) {
	for _, extractor := range c.extractors {
		record, err := extractor.Extract(ctx, text)
		if err != nil {
			c.logger.Warn("Extractor failed, falling back",
				"extractor", extractor.Name(),
				"error", err)
			continue
		}
		if record == nil {
			c.logger.Warn("Extractor returned no record, falling back", "extractor", extractor.Name())
			continue
		}
		return record, extractor.Name(), nil
	}
	return nil, "", fmt.Errorf("%w: all %d extractors failed", ErrExtractionFailed, len(c.extractors))
}
