package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"booking-sync-service/internal/domain/entity"
	"booking-sync-service/internal/domain/repository"
	"booking-sync-service/pkg/logger"
	"booking-sync-service/pkg/utils"
)

// ReconcileSummary counts reconcile outcomes of one batch
type ReconcileSummary struct {
	Outcomes map[string]int
}

// Count returns how many records ended with outcome
func (s ReconcileSummary) Count(outcome string) int {
	return s.Outcomes[outcome]
}

// BookingReconciler applies booking records to a calendar, keyed by booking reference.
// The calendar is the only source of truth; nothing is remembered across batches.
type BookingReconciler struct {
	calendarID      string
	location        *time.Location
	pruneDuplicates bool
	logger          logger.Logger
}

// NewBookingReconciler creates a reconciler writing to calendarID with event times in location
func NewBookingReconciler(calendarID string, location *time.Location, pruneDuplicates bool, logger logger.Logger) *BookingReconciler {
	if location == nil {
		location = time.UTC
	}
	return &BookingReconciler{
		calendarID:      calendarID,
		location:        location,
		pruneDuplicates: pruneDuplicates,
		logger:          logger,
	}
}

type batchState struct {
	created map[string]bool
	pruned  int
}

// Reconcile processes records strictly in order. A failing record is logged and counted,
// it never stops the rest of the batch.
func (r *BookingReconciler) Reconcile(ctx context.Context, calendar repository.CalendarRepository, records []*entity.BookingRecord) ReconcileSummary {
	summary := ReconcileSummary{Outcomes: make(map[string]int)}
	state := &batchState{created: make(map[string]bool)}

	for i, record := range records {
		outcome, err := r.reconcileOne(ctx, calendar, record, state)
		if err != nil {
			r.logger.Error("Failed to reconcile booking",
				"index", i,
				"error", err)
			outcome = entity.OutcomeFailed
		}
		summary.Outcomes[outcome]++
	}
	if state.pruned > 0 {
		summary.Outcomes[entity.OutcomePruned] += state.pruned
	}

	r.logger.Info("Reconciliation completed",
		"records", len(records),
		"outcomes", summary.Outcomes)

	return summary
}

func (r *BookingReconciler) reconcileOne(ctx context.Context, calendar repository.CalendarRepository, record *entity.BookingRecord, state *batchState) (outcome string, err error) {
	defer func() {
		if p := recover(); p != nil {
			outcome = entity.OutcomeFailed
			err = fmt.Errorf("panic while reconciling: %v", p)
		}
	}()

	if record == nil {
		return entity.OutcomeFailed, errors.New("nil booking record")
	}

	switch record.NormalizedStatus() {
	case entity.BookingCancelled:
		return r.cancel(ctx, calendar, record)
	case entity.BookingAmended:
		r.logger.Info("Amended booking acknowledged, calendar left unchanged",
			"bookingReference", record.Reference())
		return entity.OutcomeAmended, nil
	default:
		return r.create(ctx, calendar, record, state)
	}
}

// cancel marks previously confirmed events of the booking as canceled
func (r *BookingReconciler) cancel(ctx context.Context, calendar repository.CalendarRepository, record *entity.BookingRecord) (string, error) {
	ref := record.Reference()

	events, err := calendar.ListEvents(ctx, r.calendarID, ref)
	if err != nil {
		return entity.OutcomeFailed, fmt.Errorf("failed to list events for %s: %w", ref, err)
	}
	if len(events) == 0 {
		r.logger.Info("No calendar event to cancel", "bookingReference", ref)
		return entity.OutcomeNoMatch, nil
	}

	updated := 0
	for _, event := range events {
		if !strings.Contains(strings.ToLower(event.Description), string(entity.BookingConfirmed)) {
			continue
		}
		if strings.HasPrefix(event.Summary, utils.CancelledPrefix) {
			r.logger.Debug("Event already canceled", "bookingReference", ref, "eventID", event.ID)
			continue
		}

		changed := *event
		changed.Summary = utils.CancelledPrefix + event.Summary
		changed.Description = event.Description + "\nStatus: " + string(entity.BookingCancelled)

		if _, err := calendar.UpdateEvent(ctx, r.calendarID, event.ID, &changed); err != nil {
			return entity.OutcomeFailed, fmt.Errorf("failed to update event %s: %w", event.ID, err)
		}
		updated++
		r.logger.Info("Calendar event canceled",
			"bookingReference", ref,
			"eventID", event.ID,
			"summary", changed.Summary)
	}

	if updated == 0 {
		r.logger.Info("No confirmed calendar event to cancel", "bookingReference", ref, "matches", len(events))
		return entity.OutcomeNoMatch, nil
	}
	return entity.OutcomeCancelled, nil
}

// create inserts an event unless one already exists for the booking reference
func (r *BookingReconciler) create(ctx context.Context, calendar repository.CalendarRepository, record *entity.BookingRecord, state *batchState) (string, error) {
	ref := record.Reference()

	if state.created[ref] {
		r.logger.Info("Booking already created in this batch, skipping", "bookingReference", ref)
		return entity.OutcomeDuplicate, nil
	}

	existing, err := calendar.ListEvents(ctx, r.calendarID, ref)
	if err != nil {
		return entity.OutcomeFailed, fmt.Errorf("failed to list events for %s: %w", ref, err)
	}
	if len(existing) > 0 {
		r.logger.Info("Event with booking reference already exists, skipping creation",
			"bookingReference", ref,
			"matches", len(existing))
		if r.pruneDuplicates {
			state.pruned += r.prune(ctx, calendar, ref, existing)
		}
		return entity.OutcomeDuplicate, nil
	}

	day, err := utils.ParseTravelDate(record.TravelDate)
	if err != nil {
		r.logger.Warn("Skipping booking with unparseable travel date",
			"bookingReference", ref,
			"travelDate", record.TravelDate,
			"error", err)
		return entity.OutcomeInvalidDate, nil
	}

	event := &entity.CalendarEvent{
		Summary:     record.Summary(),
		Description: record.Describe(),
		Start:       utils.AtClock(day, utils.EventStartHour, 0, r.location),
		End:         utils.AtClock(day, utils.EventEndHour, 0, r.location),
		TimeZone:    r.location.String(),
	}

	created, err := calendar.InsertEvent(ctx, r.calendarID, event)
	if err != nil {
		return entity.OutcomeFailed, fmt.Errorf("failed to insert event for %s: %w", ref, err)
	}
	state.created[ref] = true

	r.logger.Info("Calendar event created",
		"bookingReference", ref,
		"eventID", created.ID,
		"start", event.Start.Format(time.RFC3339),
		"link", created.HTMLLink)

	return entity.OutcomeCreated, nil
}

// prune deletes extra events carrying the exact reference line and the same start
// as the first such event. Loose search hits are never deleted.
func (r *BookingReconciler) prune(ctx context.Context, calendar repository.CalendarRepository, ref string, events []*entity.CalendarEvent) int {
	refLine := "Booking Reference: " + ref
	var keep *entity.CalendarEvent
	pruned := 0

	for _, event := range events {
		if !hasLine(event.Description, refLine) {
			continue
		}
		if keep == nil {
			keep = event
			continue
		}
		if !event.Start.Equal(keep.Start) {
			continue
		}
		if err := calendar.DeleteEvent(ctx, r.calendarID, event.ID); err != nil {
			r.logger.Error("Failed to delete duplicate event",
				"bookingReference", ref,
				"eventID", event.ID,
				"error", err)
			continue
		}
		pruned++
		r.logger.Info("Deleted duplicate event", "bookingReference", ref, "eventID", event.ID, "kept", keep.ID)
	}
	return pruned
}

func hasLine(text, line string) bool {
	for _, l := range strings.Split(text, "\n") {
		if strings.TrimSpace(l) == line {
			return true
		}
	}
	return false
}
