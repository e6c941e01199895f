package repository

import (
	"context"

	"booking-sync-service/internal/domain/entity"
)

// NotificationRepository forwards booking records to the downstream sink
type NotificationRepository interface {
	Send(ctx context.Context, record *entity.BookingRecord) error
}
