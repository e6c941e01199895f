package repository

import (
	"context"

	"booking-sync-service/internal/domain/entity"
)

// EmailRepository stores the extraction audit trail of fetched emails.
// It is write-only from the pipeline's point of view.
type EmailRepository interface {
	Save(ctx context.Context, email *entity.Email) error
	MarkAsProcessedByEmailID(ctx context.Context, emailID, status, processorType, errorDetail string, extractedData map[string]interface{}) error
}
