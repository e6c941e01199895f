package usecase

import (
	"context"

	"booking-sync-service/internal/domain/entity"
	"booking-sync-service/internal/domain/repository"
	"booking-sync-service/pkg/logger"
)

// BookingNotifier forwards records to the downstream sink. Failures are logged and swallowed.
type BookingNotifier struct {
	notificationRepo repository.NotificationRepository
	logger           logger.Logger
}

// NewBookingNotifier creates a new booking notifier
func NewBookingNotifier(notificationRepo repository.NotificationRepository, logger logger.Logger) *BookingNotifier {
	return &BookingNotifier{
		notificationRepo: notificationRepo,
		logger:           logger,
	}
}

// Notify sends one record and reports whether the sink accepted it. It is never retried.
func (n *BookingNotifier) Notify(ctx context.Context, record *entity.BookingRecord) bool {
	if record == nil {
		return false
	}
	if err := n.notificationRepo.Send(ctx, record); err != nil {
		n.logger.Error("Failed to send booking notification",
			"bookingReference", record.Reference(),
			"error", err)
		return false
	}
	n.logger.Info("Booking notification sent", "bookingReference", record.Reference())
	return true
}
