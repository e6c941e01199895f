package calendar

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"booking-sync-service/internal/domain/entity"
	"booking-sync-service/pkg/logger"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"
)

const icsProductID = "-//booking-sync-service//EN"

// ErrEventNotFound is returned when an event id is not present in the calendar file
var ErrEventNotFound = errors.New("calendar event not found")

// ICSCalendar is a calendar repository stored in a single iCalendar file.
// The calendar id is ignored; the file is the calendar.
type ICSCalendar struct {
	mu     sync.Mutex
	path   string
	logger logger.Logger
	now    func() time.Time
}

// NewICSCalendar creates a calendar backed by the file at path, created on first write
func NewICSCalendar(path string, logger logger.Logger) *ICSCalendar {
	return &ICSCalendar{
		path:   path,
		logger: logger,
		now:    time.Now,
	}
}

// ListEvents returns events whose summary or description contains query, case-insensitively
func (c *ICSCalendar) ListEvents(ctx context.Context, calendarID, query string) ([]*entity.CalendarEvent, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	events, err := c.load()
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(strings.TrimSpace(query))
	var matches []*entity.CalendarEvent
	for _, event := range events {
		haystack := strings.ToLower(event.Summary + "\n" + event.Description)
		if needle == "" || strings.Contains(haystack, needle) {
			matches = append(matches, event)
		}
	}
	return matches, nil
}

// InsertEvent appends an event with a fresh UID
func (c *ICSCalendar) InsertEvent(ctx context.Context, calendarID string, event *entity.CalendarEvent) (*entity.CalendarEvent, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	events, err := c.load()
	if err != nil {
		return nil, err
	}

	created := *event
	created.ID = uuid.NewString()
	created.HTMLLink = "file://" + c.path + "#" + created.ID
	events = append(events, &created)

	if err := c.save(events); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateEvent sets the summary and description of the stored event with the same id
func (c *ICSCalendar) UpdateEvent(ctx context.Context, calendarID, eventID string, event *entity.CalendarEvent) (*entity.CalendarEvent, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	events, err := c.load()
	if err != nil {
		return nil, err
	}

	for i, existing := range events {
		if existing.ID != eventID {
			continue
		}
		updated := *existing
		updated.Summary = event.Summary
		updated.Description = event.Description
		events[i] = &updated
		if err := c.save(events); err != nil {
			return nil, err
		}
		return &updated, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrEventNotFound, eventID)
}

// DeleteEvent removes the event with the given id
func (c *ICSCalendar) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	events, err := c.load()
	if err != nil {
		return err
	}

	kept := events[:0]
	found := false
	for _, event := range events {
		if event.ID == eventID {
			found = true
			continue
		}
		kept = append(kept, event)
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrEventNotFound, eventID)
	}
	return c.save(kept)
}

func (c *ICSCalendar) load() ([]*entity.CalendarEvent, error) {
	file, err := os.Open(c.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open calendar file: %w", err)
	}
	defer file.Close()

	var events []*entity.CalendarEvent
	decoder := ical.NewDecoder(file)
	for {
		cal, err := decoder.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decode calendar: %w", err)
		}

		for _, comp := range cal.Children {
			if comp.Name != ical.CompEvent {
				continue
			}
			event, err := parseComponent(comp)
			if err != nil {
				c.logger.Warn("Skipping unreadable calendar event", "error", err)
				continue
			}
			events = append(events, event)
		}
	}
	return events, nil
}

// save rewrites the whole file through a temp file and rename
func (c *ICSCalendar) save(events []*entity.CalendarEvent) error {
	dir := filepath.Dir(c.path)
	tmp, err := os.CreateTemp(dir, ".calendar-*.ics")
	if err != nil {
		return fmt.Errorf("failed to create temp calendar file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if len(events) > 0 {
		cal := ical.NewCalendar()
		cal.Props.SetText(ical.PropVersion, "2.0")
		cal.Props.SetText(ical.PropProductID, icsProductID)
		for _, event := range events {
			cal.Children = append(cal.Children, c.buildComponent(event))
		}
		if err := ical.NewEncoder(tmp).Encode(cal); err != nil {
			tmp.Close()
			return fmt.Errorf("failed to encode calendar: %w", err)
		}
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write calendar file: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.path); err != nil {
		return fmt.Errorf("failed to replace calendar file: %w", err)
	}
	return nil
}

func (c *ICSCalendar) buildComponent(event *entity.CalendarEvent) *ical.Component {
	vevent := ical.NewEvent()
	vevent.Props.SetText(ical.PropUID, event.ID)
	vevent.Props.SetDateTime(ical.PropDateTimeStamp, c.now().UTC())
	vevent.Props.SetText(ical.PropSummary, event.Summary)
	vevent.Props.SetText(ical.PropDescription, event.Description)
	vevent.Props.SetDateTime(ical.PropDateTimeStart, event.Start)
	vevent.Props.SetDateTime(ical.PropDateTimeEnd, event.End)
	if event.HTMLLink != "" {
		vevent.Props.SetText(ical.PropURL, event.HTMLLink)
	}
	return vevent.Component
}

func parseComponent(comp *ical.Component) (*entity.CalendarEvent, error) {
	event := &entity.CalendarEvent{}

	if prop := comp.Props.Get(ical.PropUID); prop != nil {
		event.ID = prop.Value
	}
	if event.ID == "" {
		return nil, errors.New("event has no UID")
	}
	if summary, err := comp.Props.Text(ical.PropSummary); err == nil {
		event.Summary = summary
	}
	if description, err := comp.Props.Text(ical.PropDescription); err == nil {
		event.Description = description
	}
	if prop := comp.Props.Get(ical.PropURL); prop != nil {
		event.HTMLLink = prop.Value
	}

	if prop := comp.Props.Get(ical.PropDateTimeStart); prop != nil {
		start, err := prop.DateTime(time.UTC)
		if err != nil {
			return nil, fmt.Errorf("event %s: %w", event.ID, err)
		}
		event.Start = start
		event.TimeZone = start.Location().String()
	}
	if prop := comp.Props.Get(ical.PropDateTimeEnd); prop != nil {
		end, err := prop.DateTime(time.UTC)
		if err != nil {
			return nil, fmt.Errorf("event %s: %w", event.ID, err)
		}
		event.End = end
	}

	return event, nil
}
