package repository

import (
	"context"

	"booking-sync-service/internal/domain/entity"
)

// NoopEmailRepository discards the email audit trail
type NoopEmailRepository struct{}

func (NoopEmailRepository) Save(ctx context.Context, email *entity.Email) error {
	return nil
}

func (NoopEmailRepository) MarkAsProcessedByEmailID(ctx context.Context, emailID, status, processorType, errorDetail string, extractedData map[string]interface{}) error {
	return nil
}

// NoopRunRepository discards run summaries
type NoopRunRepository struct{}

func (NoopRunRepository) Create(ctx context.Context, run *entity.RunSummary) error {
	return nil
}
