package repository

import (
	"context"

	"booking-sync-service/internal/domain/entity"
)

// RunRepository persists pipeline cycle summaries
type RunRepository interface {
	Create(ctx context.Context, run *entity.RunSummary) error
}
