package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"booking-sync-service/internal/domain/entity"
	"booking-sync-service/internal/domain/repository"
	"booking-sync-service/pkg/logger"
	"booking-sync-service/pkg/utils"
)

// WebhookRepository posts booking records to a downstream HTTP endpoint
type WebhookRepository struct {
	logger logger.Logger
	url    string
	client *http.Client
}

// NewWebhookRepository creates a new notification repository for url
func NewWebhookRepository(url string, timeout time.Duration, logger logger.Logger) repository.NotificationRepository {
	return &WebhookRepository{
		logger: logger,
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// Send posts the record as JSON. Only HTTP 200 counts as delivered.
func (r *WebhookRepository) Send(ctx context.Context, record *entity.BookingRecord) error {
	jsonData, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal booking record: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("notification endpoint returned status %d: %s", resp.StatusCode, utils.Truncate(string(body), 200))
	}

	r.logger.Debug("Booking record delivered",
		"url", r.url,
		"bookingReference", record.Reference())

	return nil
}
