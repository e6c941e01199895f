package repository

import (
	"context"

	"booking-sync-service/internal/domain/entity"
)

// CalendarRepository defines the calendar operations the reconciler needs
type CalendarRepository interface {
	// ListEvents returns events matching a free-text query
	ListEvents(ctx context.Context, calendarID, query string) ([]*entity.CalendarEvent, error)
	InsertEvent(ctx context.Context, calendarID string, event *entity.CalendarEvent) (*entity.CalendarEvent, error)
	// UpdateEvent changes only the summary and description of an existing event
	UpdateEvent(ctx context.Context, calendarID, eventID string, event *entity.CalendarEvent) (*entity.CalendarEvent, error)
	DeleteEvent(ctx context.Context, calendarID, eventID string) error
}
