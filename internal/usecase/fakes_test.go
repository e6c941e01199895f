package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"booking-sync-service/internal/domain/entity"
)

// fakeCalendar is an in-memory calendar recording every mutation
type fakeCalendar struct {
	mu      sync.Mutex
	events  []*entity.CalendarEvent
	nextID  int
	inserts []*entity.CalendarEvent
	updates []*entity.CalendarEvent
	deletes []string

	listErr   error
	insertErr error
	// panicOn makes ListEvents panic for a query
	panicOn string
}

func (c *fakeCalendar) ListEvents(ctx context.Context, calendarID, query string) ([]*entity.CalendarEvent, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.panicOn != "" && query == c.panicOn {
		panic("calendar exploded")
	}
	if c.listErr != nil {
		return nil, c.listErr
	}
	var out []*entity.CalendarEvent
	for _, e := range c.events {
		if strings.Contains(e.Summary+"\n"+e.Description, query) {
			copied := *e
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (c *fakeCalendar) InsertEvent(ctx context.Context, calendarID string, event *entity.CalendarEvent) (*entity.CalendarEvent, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.insertErr != nil {
		return nil, c.insertErr
	}
	c.nextID++
	created := *event
	created.ID = fmt.Sprintf("evt-%d", c.nextID)
	c.events = append(c.events, &created)
	c.inserts = append(c.inserts, &created)
	return &created, nil
}

func (c *fakeCalendar) UpdateEvent(ctx context.Context, calendarID, eventID string, event *entity.CalendarEvent) (*entity.CalendarEvent, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, e := range c.events {
		if e.ID == eventID {
			updated := *e
			updated.Summary = event.Summary
			updated.Description = event.Description
			c.events[i] = &updated
			c.updates = append(c.updates, &updated)
			return &updated, nil
		}
	}
	return nil, errors.New("not found")
}

func (c *fakeCalendar) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, e := range c.events {
		if e.ID == eventID {
			c.events = append(c.events[:i], c.events[i+1:]...)
			c.deletes = append(c.deletes, eventID)
			return nil
		}
	}
	return errors.New("not found")
}

func (c *fakeCalendar) seed(events ...*entity.CalendarEvent) {
	for _, e := range events {
		c.nextID++
		if e.ID == "" {
			e.ID = fmt.Sprintf("seed-%d", c.nextID)
		}
		c.events = append(c.events, e)
	}
}

type fakeGenerator struct {
	response string
	err      error
	prompts  []string
}

func (g *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	return g.response, g.err
}

type fakeMail struct {
	emails    []*entity.Email
	err       error
	gotSender string
	gotLimit  int
}

func (m *fakeMail) FetchMessages(ctx context.Context, sender string, limit int) ([]*entity.Email, error) {
	m.gotSender = sender
	m.gotLimit = limit
	return m.emails, m.err
}

type fakeSink struct {
	sent []*entity.BookingRecord
	err  error
}

func (s *fakeSink) Send(ctx context.Context, record *entity.BookingRecord) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, record)
	return nil
}

type fakeEmailRepo struct {
	saved  []string
	marked map[string]string
}

func (r *fakeEmailRepo) Save(ctx context.Context, email *entity.Email) error {
	r.saved = append(r.saved, email.EmailID)
	return nil
}

func (r *fakeEmailRepo) MarkAsProcessedByEmailID(ctx context.Context, emailID, status, processorType, errorDetail string, extractedData map[string]interface{}) error {
	if r.marked == nil {
		r.marked = make(map[string]string)
	}
	r.marked[emailID] = status + "/" + processorType
	return nil
}

type fakeRunRepo struct {
	runs []*entity.RunSummary
}

func (r *fakeRunRepo) Create(ctx context.Context, run *entity.RunSummary) error {
	r.runs = append(r.runs, run)
	return nil
}

type fakeLocker struct {
	err      error
	released int
}

func (l *fakeLocker) Acquire(ctx context.Context) (func(), error) {
	if l.err != nil {
		return nil, l.err
	}
	return func() { l.released++ }, nil
}
