package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"booking-sync-service/internal/domain/entity"
	"booking-sync-service/internal/domain/repository"
	"booking-sync-service/pkg/logger"
	"booking-sync-service/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
)

// ErrCycleLocked is returned by a CycleLocker when another process is running a cycle
var ErrCycleLocked = errors.New("reconcile cycle is locked by another process")

// CycleLocker guards a cycle so a single writer touches the calendar at a time
type CycleLocker interface {
	Acquire(ctx context.Context) (release func(), err error)
}

// CalendarProvider builds an authorized calendar client for one cycle
type CalendarProvider func(ctx context.Context) (repository.CalendarRepository, error)

// PipelineDeps groups the collaborators of a BookingPipeline.
// EmailRepo, RunRepo and Locker are optional.
type PipelineDeps struct {
	MailRepo         repository.MailRepository
	EmailRepo        repository.EmailRepository
	RunRepo          repository.RunRepository
	CalendarProvider CalendarProvider
	Extractor        *ExtractorChain
	Reconciler       *BookingReconciler
	Notifier         *BookingNotifier
	Locker           CycleLocker
	Metrics          *metrics.Metrics
	Logger           logger.Logger
}

// BookingPipeline runs fetch, extract, reconcile and notify cycles
type BookingPipeline struct {
	deps   PipelineDeps
	sender string
	limit  int
	now    func() time.Time
}

// NewBookingPipeline creates a new pipeline reading up to limit messages from sender
func NewBookingPipeline(deps PipelineDeps, sender string, limit int) *BookingPipeline {
	return &BookingPipeline{
		deps:   deps,
		sender: sender,
		limit:  limit,
		now:    time.Now,
	}
}

// SetClock overrides the clock used for fallback windows and run timestamps
func (p *BookingPipeline) SetClock(now func() time.Time) {
	p.now = now
}

// Start runs a cycle immediately and then on every interval until ctx is done
func (p *BookingPipeline) Start(ctx context.Context, interval time.Duration) {
	p.deps.Logger.Info("Starting booking pipeline", "interval", interval.String(), "sender", p.sender)

	p.runCycle(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.deps.Logger.Info("Stopping booking pipeline")
			return
		case <-ticker.C:
			p.runCycle(ctx)
		}
	}
}

func (p *BookingPipeline) runCycle(ctx context.Context) {
	summary, err := p.RunOnce(ctx)
	if err != nil {
		p.deps.Logger.Error("Booking cycle did not complete", "status", summary.Status, "error", err)
		return
	}
	p.deps.Logger.Info("Booking cycle completed",
		"fetched", summary.EmailsFetched,
		"extracted", summary.RecordsExtracted,
		"extractionFailed", summary.ExtractionFailed,
		"outcomes", summary.Outcomes,
		"notified", summary.NotificationsSent,
		"notifyFailed", summary.NotificationsFail)
}

// RunOnce executes one cycle. The returned summary is never nil.
// An error means the cycle was skipped or aborted before reconciliation.
func (p *BookingPipeline) RunOnce(ctx context.Context) (*entity.RunSummary, error) {
	summary := entity.NewRunSummary(p.now())

	if p.deps.Metrics != nil {
		timer := prometheus.NewTimer(p.deps.Metrics.CycleDuration)
		defer timer.ObserveDuration()
	}

	if p.deps.Locker != nil {
		release, err := p.deps.Locker.Acquire(ctx)
		switch {
		case errors.Is(err, ErrCycleLocked):
			summary.Status = entity.RunSkipped
			p.finish(ctx, summary, err)
			return summary, err
		case err != nil:
			p.deps.Logger.Warn("Could not acquire cycle lock, continuing without it", "error", err)
		default:
			defer release()
		}
	}

	emails, err := p.deps.MailRepo.FetchMessages(ctx, p.sender, p.limit)
	if err != nil {
		err = fmt.Errorf("failed to fetch messages: %w", err)
		p.abort(ctx, summary, "fetch", err)
		return summary, err
	}
	if p.limit > 0 && len(emails) > p.limit {
		emails = emails[:p.limit]
	}
	summary.EmailsFetched = len(emails)
	if p.deps.Metrics != nil {
		p.deps.Metrics.EmailsFetched.Add(float64(len(emails)))
	}

	if len(emails) == 0 {
		p.deps.Logger.Info("No messages found", "sender", p.sender)
		p.finish(ctx, summary, nil)
		return summary, nil
	}

	records := make([]*entity.BookingRecord, 0, len(emails))
	for _, email := range emails {
		if record := p.extract(ctx, email, summary); record != nil {
			records = append(records, record)
		}
	}

	calendar, err := p.deps.CalendarProvider(ctx)
	if err != nil {
		err = fmt.Errorf("failed to build calendar client: %w", err)
		p.abort(ctx, summary, "calendar", err)
		return summary, err
	}

	result := p.deps.Reconciler.Reconcile(ctx, calendar, records)
	for outcome, count := range result.Outcomes {
		summary.Outcomes[outcome] += count
		if p.deps.Metrics != nil {
			p.deps.Metrics.ReconcileOutcomes.WithLabelValues(outcome).Add(float64(count))
		}
	}

	for _, record := range records {
		if p.deps.Notifier.Notify(ctx, record) {
			summary.NotificationsSent++
			p.countNotification("success")
		} else {
			summary.NotificationsFail++
			p.countNotification("failure")
		}
	}

	p.finish(ctx, summary, nil)
	return summary, nil
}

// extract turns one email into a record, auditing the attempt either way
func (p *BookingPipeline) extract(ctx context.Context, email *entity.Email, summary *entity.RunSummary) *entity.BookingRecord {
	email.ProcessStatus = entity.StatusPending
	if p.deps.EmailRepo != nil {
		if err := p.deps.EmailRepo.Save(ctx, email); err != nil {
			p.deps.Logger.Warn("Failed to save email audit record", "emailID", email.EmailID, "error", err)
		}
	}

	record, stage, err := p.deps.Extractor.Extract(ctx, email.PlainText())
	if err != nil {
		summary.ExtractionFailed++
		p.countError("extract")
		p.deps.Logger.Error("Failed to extract booking from email",
			"emailID", email.EmailID,
			"subject", email.Subject,
			"error", err)
		p.markProcessed(ctx, email.EmailID, entity.StatusFailed, "", err.Error(), nil)
		return nil
	}

	record.EnsureWindow(p.now())
	summary.RecordsExtracted++
	if p.deps.Metrics != nil {
		p.deps.Metrics.RecordsExtracted.WithLabelValues(stage).Inc()
	}

	p.deps.Logger.Debug("Booking extracted",
		"emailID", email.EmailID,
		"stage", stage,
		"bookingReference", record.Reference())
	p.markProcessed(ctx, email.EmailID, entity.StatusExtracted, stage, "", record.ToMap())
	return record
}

func (p *BookingPipeline) markProcessed(ctx context.Context, emailID, status, stage, detail string, data map[string]interface{}) {
	if p.deps.EmailRepo == nil {
		return
	}
	if err := p.deps.EmailRepo.MarkAsProcessedByEmailID(ctx, emailID, status, stage, detail, data); err != nil {
		p.deps.Logger.Warn("Failed to update email audit record", "emailID", emailID, "error", err)
	}
}

func (p *BookingPipeline) abort(ctx context.Context, summary *entity.RunSummary, operation string, err error) {
	summary.Status = entity.RunAborted
	p.countError(operation)
	p.finish(ctx, summary, err)
}

func (p *BookingPipeline) finish(ctx context.Context, summary *entity.RunSummary, err error) {
	summary.FinishedAt = p.now()
	if err != nil {
		summary.ErrorDetail = err.Error()
	}
	if p.deps.RunRepo == nil {
		return
	}
	if err := p.deps.RunRepo.Create(ctx, summary); err != nil {
		p.deps.Logger.Warn("Failed to record run summary", "error", err)
	}
}

func (p *BookingPipeline) countError(operation string) {
	if p.deps.Metrics != nil {
		p.deps.Metrics.ErrorsCount.WithLabelValues(operation).Inc()
	}
}

func (p *BookingPipeline) countNotification(result string) {
	if p.deps.Metrics != nil {
		p.deps.Metrics.Notifications.WithLabelValues(result).Inc()
	}
}
