package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"booking-sync-service/internal/domain/entity"
	"booking-sync-service/pkg/logger"

	"github.com/nalgeon/be"
)

func kolkata(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Kolkata")
	be.Err(t, err, nil)
	return loc
}

func newTestReconciler(t *testing.T, prune bool) *BookingReconciler {
	return NewBookingReconciler("primary", kolkata(t), prune, logger.NewNopLogger())
}

func confirmedRecord(ref string) *entity.BookingRecord {
	return &entity.BookingRecord{
		BookingReference: ref,
		Title:            "Harbour Cruise",
		TravelDate:       "Tue, Feb 18, 2025",
		LeadTravelerName: "Jane Doe",
		Status:           "confirmed",
	}
}

func TestReconcileCreatesEvent(t *testing.T) {
	cal := &fakeCalendar{}
	r := newTestReconciler(t, false)

	summary := r.Reconcile(context.Background(), cal, []*entity.BookingRecord{confirmedRecord("#AB123")})

	be.Equal(t, summary.Count(entity.OutcomeCreated), 1)
	be.Equal(t, len(cal.inserts), 1)

	event := cal.inserts[0]
	loc := kolkata(t)
	be.True(t, event.Start.Equal(time.Date(2025, 2, 18, 9, 0, 0, 0, loc)))
	be.True(t, event.End.Equal(time.Date(2025, 2, 18, 10, 0, 0, 0, loc)))
	be.Equal(t, event.Summary, "Harbour Cruise")
	be.Equal(t, event.TimeZone, "Asia/Kolkata")
	be.True(t, strings.Contains(event.Description, "Booking Reference: #AB123"))
	be.True(t, strings.Contains(event.Description, "Status: confirmed"))
}

func TestReconcileIsIdempotent(t *testing.T) {
	cal := &fakeCalendar{}
	r := newTestReconciler(t, false)
	records := []*entity.BookingRecord{confirmedRecord("#AB123")}

	r.Reconcile(context.Background(), cal, records)
	second := r.Reconcile(context.Background(), cal, records)

	be.Equal(t, len(cal.inserts), 1)
	be.Equal(t, second.Count(entity.OutcomeDuplicate), 1)
	be.Equal(t, second.Count(entity.OutcomeCreated), 0)
}

func TestReconcileSameReferenceTwiceInBatch(t *testing.T) {
	cal := &fakeCalendar{}
	r := newTestReconciler(t, false)

	summary := r.Reconcile(context.Background(), cal, []*entity.BookingRecord{
		confirmedRecord("#AB123"),
		confirmedRecord("#AB123"),
	})

	be.Equal(t, len(cal.inserts), 1)
	be.Equal(t, summary.Count(entity.OutcomeDuplicate), 1)
}

func TestReconcileDefaultsTitle(t *testing.T) {
	cal := &fakeCalendar{}
	r := newTestReconciler(t, false)
	record := confirmedRecord("#AB123")
	record.Title = "Not Found"
	record.Status = "whatever"

	summary := r.Reconcile(context.Background(), cal, []*entity.BookingRecord{record})

	be.Equal(t, summary.Count(entity.OutcomeCreated), 1)
	be.Equal(t, cal.inserts[0].Summary, "New Booking")
	be.True(t, strings.Contains(cal.inserts[0].Description, "Status: unknown"))
}

func TestReconcileInvalidDate(t *testing.T) {
	cal := &fakeCalendar{}
	r := newTestReconciler(t, false)
	record := confirmedRecord("#AB123")
	record.TravelDate = "next Tuesday"

	summary := r.Reconcile(context.Background(), cal, []*entity.BookingRecord{record})

	be.Equal(t, summary.Count(entity.OutcomeInvalidDate), 1)
	be.Equal(t, len(cal.inserts), 0)
}

func TestReconcileCancelUpdatesConfirmedEvent(t *testing.T) {
	cal := &fakeCalendar{}
	cal.seed(&entity.CalendarEvent{
		Summary:     "Harbour Cruise",
		Description: "Booking Reference: #AB123\nStatus: confirmed",
	})
	r := newTestReconciler(t, false)
	record := confirmedRecord("#AB123")
	record.Status = "Canceled"

	summary := r.Reconcile(context.Background(), cal, []*entity.BookingRecord{record})

	be.Equal(t, summary.Count(entity.OutcomeCancelled), 1)
	be.Equal(t, len(cal.inserts), 0)
	be.Equal(t, len(cal.updates), 1)
	be.Equal(t, cal.updates[0].Summary, "Canceled - Harbour Cruise")
	be.True(t, strings.HasSuffix(cal.updates[0].Description, "\nStatus: cancelled"))
}

func TestReconcileCancelIsIdempotent(t *testing.T) {
	cal := &fakeCalendar{}
	cal.seed(&entity.CalendarEvent{
		Summary:     "Harbour Cruise",
		Description: "Booking Reference: #AB123\nStatus: confirmed",
	})
	r := newTestReconciler(t, false)
	record := confirmedRecord("#AB123")
	record.Status = "cancelled"

	r.Reconcile(context.Background(), cal, []*entity.BookingRecord{record})
	second := r.Reconcile(context.Background(), cal, []*entity.BookingRecord{record})

	be.Equal(t, len(cal.updates), 1)
	be.Equal(t, second.Count(entity.OutcomeNoMatch), 1)
}

func TestReconcileCancelWithoutMatch(t *testing.T) {
	cal := &fakeCalendar{}
	cal.seed(&entity.CalendarEvent{
		Summary:     "Harbour Cruise",
		Description: "Booking Reference: #AB123\nStatus: amended",
	})
	r := newTestReconciler(t, false)

	for _, ref := range []string{"#AB123", "#ZZ999"} {
		record := confirmedRecord(ref)
		record.Status = "cancelled"
		summary := r.Reconcile(context.Background(), cal, []*entity.BookingRecord{record})
		be.Equal(t, summary.Count(entity.OutcomeNoMatch), 1)
	}
	be.Equal(t, len(cal.inserts), 0)
	be.Equal(t, len(cal.updates), 0)
}

func TestReconcileAmendedTouchesNothing(t *testing.T) {
	cal := &fakeCalendar{}
	cal.seed(&entity.CalendarEvent{
		Summary:     "Harbour Cruise",
		Description: "Booking Reference: #AB123\nStatus: confirmed",
	})
	r := newTestReconciler(t, true)
	record := confirmedRecord("#AB123")
	record.Status = "AMENDED"

	summary := r.Reconcile(context.Background(), cal, []*entity.BookingRecord{record})

	be.Equal(t, summary.Count(entity.OutcomeAmended), 1)
	be.Equal(t, len(cal.inserts), 0)
	be.Equal(t, len(cal.updates), 0)
	be.Equal(t, len(cal.deletes), 0)
}

func TestReconcileBadRecordDoesNotStopBatch(t *testing.T) {
	cal := &fakeCalendar{panicOn: "#BOOM"}
	r := newTestReconciler(t, false)

	summary := r.Reconcile(context.Background(), cal, []*entity.BookingRecord{
		confirmedRecord("#A1"),
		nil,
		confirmedRecord("#BOOM"),
		confirmedRecord("#A2"),
	})

	be.Equal(t, summary.Count(entity.OutcomeCreated), 2)
	be.Equal(t, summary.Count(entity.OutcomeFailed), 2)
	be.Equal(t, len(cal.inserts), 2)
}

func TestReconcileCalendarErrorIsPerRecord(t *testing.T) {
	cal := &fakeCalendar{insertErr: errors.New("quota exceeded")}
	r := newTestReconciler(t, false)

	summary := r.Reconcile(context.Background(), cal, []*entity.BookingRecord{
		confirmedRecord("#A1"),
		confirmedRecord("#A2"),
	})

	be.Equal(t, summary.Count(entity.OutcomeFailed), 2)
}

func TestReconcilePrunesExactDuplicates(t *testing.T) {
	loc := kolkata(t)
	start := time.Date(2025, 2, 18, 9, 0, 0, 0, loc)
	description := confirmedRecord("#AB123").Describe()

	cal := &fakeCalendar{}
	cal.seed(
		&entity.CalendarEvent{ID: "keep", Summary: "Harbour Cruise", Description: description, Start: start},
		&entity.CalendarEvent{ID: "dup", Summary: "Harbour Cruise", Description: description, Start: start},
		&entity.CalendarEvent{ID: "other-day", Summary: "Harbour Cruise", Description: description, Start: start.AddDate(0, 0, 1)},
		&entity.CalendarEvent{ID: "loose", Summary: "Notes about #AB123", Start: start},
	)
	r := newTestReconciler(t, true)

	summary := r.Reconcile(context.Background(), cal, []*entity.BookingRecord{confirmedRecord("#AB123")})

	be.Equal(t, summary.Count(entity.OutcomeDuplicate), 1)
	be.Equal(t, summary.Count(entity.OutcomePruned), 1)
	be.Equal(t, cal.deletes, []string{"dup"})
}

func TestReconcileEndToEndFromRegex(t *testing.T) {
	text := strings.Join([]string{
		"Booking Reference: #AB123",
		"Travel Date: Tue, Feb 18, 2025",
		"Lead traveler name: Jane Doe",
		"Status: confirmed",
	}, "\n")

	loc := kolkata(t)
	chain := NewExtractorChain(logger.NewNopLogger(),
		NewGenAIExtractor(&fakeGenerator{err: errors.New("unavailable")}, logger.NewNopLogger()),
		NewRegexExtractor(loc, logger.NewNopLogger()),
	)

	record, stage, err := chain.Extract(context.Background(), text)
	be.Err(t, err, nil)
	be.Equal(t, stage, ExtractorRegex)
	be.Equal(t, record.BookingReference, "#AB123")
	be.Equal(t, record.TravelDate, "Tue, Feb 18, 2025")
	be.Equal(t, record.LeadTravelerName, "Jane Doe")
	be.Equal(t, record.Status, "confirmed")

	cal := &fakeCalendar{}
	r := NewBookingReconciler("primary", loc, false, logger.NewNopLogger())
	r.Reconcile(context.Background(), cal, []*entity.BookingRecord{record})

	be.Equal(t, len(cal.inserts), 1)
	be.True(t, cal.inserts[0].Start.Equal(time.Date(2025, 2, 18, 9, 0, 0, 0, loc)))
	be.True(t, cal.inserts[0].End.Equal(time.Date(2025, 2, 18, 10, 0, 0, 0, loc)))

	record.Status = "cancelled"
	r.Reconcile(context.Background(), cal, []*entity.BookingRecord{record})

	be.Equal(t, len(cal.inserts), 1)
	be.Equal(t, len(cal.updates), 1)
	be.True(t, strings.HasPrefix(cal.updates[0].Summary, "Canceled - "))
}
