package repository

import (
	"testing"
	"time"

	"booking-sync-service/internal/domain/entity"

	"github.com/nalgeon/be"
)

func TestToRunModel(t *testing.T) {
	started := time.Date(2025, 2, 18, 10, 0, 0, 0, time.UTC)
	run := entity.NewRunSummary(started)
	run.FinishedAt = started.Add(3 * time.Second)
	run.EmailsFetched = 4
	run.RecordsExtracted = 3
	run.ExtractionFailed = 1
	run.Outcomes[entity.OutcomeCreated] = 2
	run.Outcomes[entity.OutcomeDuplicate] = 1
	run.NotificationsSent = 2
	run.NotificationsFail = 1

	model, err := toRunModel(run)
	be.Err(t, err, nil)
	be.Equal(t, model.Status, entity.RunCompleted)
	be.Equal(t, model.EmailsFetched, 4)
	be.Equal(t, model.ExtractionFailed, 1)
	be.Equal(t, model.Outcomes, `{"created":2,"duplicate":1}`)
	be.Equal(t, model.NotificationsFailed, 1)
	be.Equal(t, model.TableName(), "reconcile_runs")
}
