package calendar

import (
	"context"
	"fmt"
	"time"

	"booking-sync-service/internal/domain/entity"
	"booking-sync-service/pkg/logger"

	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

const listPageSize = 250

// GoogleCalendar implements the calendar repository on the Google Calendar API
type GoogleCalendar struct {
	service *gcal.Service
	logger  logger.Logger
}

// NewGoogleCalendar creates a calendar client. Pass option.WithTokenSource in production.
func NewGoogleCalendar(ctx context.Context, logger logger.Logger, opts ...option.ClientOption) (*GoogleCalendar, error) {
	service, err := gcal.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}
	return &GoogleCalendar{
		service: service,
		logger:  logger,
	}, nil
}

// ListEvents runs a free-text search over the calendar, following every result page
func (c *GoogleCalendar) ListEvents(ctx context.Context, calendarID, query string) ([]*entity.CalendarEvent, error) {
	var events []*entity.CalendarEvent
	pageToken := ""

	for {
		call := c.service.Events.List(calendarID).
			Q(query).
			SingleEvents(true).
			MaxResults(listPageSize).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		resp, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("failed to list events: %w", err)
		}
		for _, item := range resp.Items {
			events = append(events, fromGoogleEvent(item))
		}

		if resp.NextPageToken == "" {
			break
		}
		pageToken = resp.NextPageToken
	}

	c.logger.Debug("Calendar search completed", "query", query, "matches", len(events))
	return events, nil
}

// InsertEvent creates a new timed event
func (c *GoogleCalendar) InsertEvent(ctx context.Context, calendarID string, event *entity.CalendarEvent) (*entity.CalendarEvent, error) {
	created, err := c.service.Events.Insert(calendarID, toGoogleEvent(event)).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to insert event: %w", err)
	}
	return fromGoogleEvent(created), nil
}

// UpdateEvent patches an event's summary and description. Every other field of the
// stored event, including times, location and attendees, is left untouched.
func (c *GoogleCalendar) UpdateEvent(ctx context.Context, calendarID, eventID string, event *entity.CalendarEvent) (*entity.CalendarEvent, error) {
	patch := &gcal.Event{
		Summary:     event.Summary,
		Description: event.Description,
	}
	updated, err := c.service.Events.Patch(calendarID, eventID, patch).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to update event %s: %w", eventID, err)
	}
	return fromGoogleEvent(updated), nil
}

// DeleteEvent removes an event
func (c *GoogleCalendar) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	if err := c.service.Events.Delete(calendarID, eventID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to delete event %s: %w", eventID, err)
	}
	return nil
}

func toGoogleEvent(event *entity.CalendarEvent) *gcal.Event {
	return &gcal.Event{
		Id:          event.ID,
		Summary:     event.Summary,
		Description: event.Description,
		Start: &gcal.EventDateTime{
			DateTime: event.Start.Format(time.RFC3339),
			TimeZone: event.TimeZone,
		},
		End: &gcal.EventDateTime{
			DateTime: event.End.Format(time.RFC3339),
			TimeZone: event.TimeZone,
		},
	}
}

func fromGoogleEvent(item *gcal.Event) *entity.CalendarEvent {
	event := &entity.CalendarEvent{
		ID:          item.Id,
		Summary:     item.Summary,
		Description: item.Description,
		HTMLLink:    item.HtmlLink,
	}
	if item.Start != nil {
		event.Start = parseEventTime(item.Start)
		event.TimeZone = item.Start.TimeZone
	}
	if item.End != nil {
		event.End = parseEventTime(item.End)
	}
	return event
}

// parseEventTime reads a timed or all-day value, zero when neither parses
func parseEventTime(value *gcal.EventDateTime) time.Time {
	if value.DateTime != "" {
		if t, err := time.Parse(time.RFC3339, value.DateTime); err == nil {
			return t
		}
	}
	if value.Date != "" {
		if t, err := time.Parse("2006-01-02", value.Date); err == nil {
			return t
		}
	}
	return time.Time{}
}
