package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"booking-sync-service/internal/domain/entity"
	"booking-sync-service/internal/domain/repository"

	"gorm.io/gorm"
)

// GormRunRepository implements the RunRepository interface
type GormRunRepository struct {
	db *gorm.DB
}

// NewGormRunRepository creates a new GORM run repository and migrates its table
func NewGormRunRepository(db *gorm.DB) (repository.RunRepository, error) {
	if err := db.AutoMigrate(&ReconcileRuns{}); err != nil {
		return nil, fmt.Errorf("failed to migrate reconcile_runs: %w", err)
	}
	return &GormRunRepository{
		db: db,
	}, nil
}

// ReconcileRuns GORM model for database mapping
type ReconcileRuns struct {
	gorm.Model
	StartedAt           time.Time `gorm:"column:started_at"`
	FinishedAt          time.Time `gorm:"column:finished_at"`
	Status              string    `gorm:"column:status;size:16;index"`
	ErrorDetail         string    `gorm:"column:error_detail"`
	EmailsFetched       int       `gorm:"column:emails_fetched"`
	RecordsExtracted    int       `gorm:"column:records_extracted"`
	ExtractionFailed    int       `gorm:"column:extraction_failed"`
	Outcomes            string    `gorm:"column:outcomes"`
	NotificationsSent   int       `gorm:"column:notifications_sent"`
	NotificationsFailed int       `gorm:"column:notifications_failed"`
}

// TableName overrides the default table name
func (ReconcileRuns) TableName() string {
	return "reconcile_runs"
}

// Create inserts a run summary into the database
func (r *GormRunRepository) Create(ctx context.Context, run *entity.RunSummary) error {
	model, err := toRunModel(run)
	if err != nil {
		return err
	}

	result := r.db.WithContext(ctx).Create(&model)
	if result.Error != nil {
		return result.Error
	}

	run.ID = model.ID
	return nil
}

func toRunModel(run *entity.RunSummary) (ReconcileRuns, error) {
	outcomes, err := json.Marshal(run.Outcomes)
	if err != nil {
		return ReconcileRuns{}, fmt.Errorf("failed to encode outcomes: %w", err)
	}

	return ReconcileRuns{
		StartedAt:           run.StartedAt,
		FinishedAt:          run.FinishedAt,
		Status:              run.Status,
		ErrorDetail:         run.ErrorDetail,
		EmailsFetched:       run.EmailsFetched,
		RecordsExtracted:    run.RecordsExtracted,
		ExtractionFailed:    run.ExtractionFailed,
		Outcomes:            string(outcomes),
		NotificationsSent:   run.NotificationsSent,
		NotificationsFailed: run.NotificationsFail,
	}, nil
}
