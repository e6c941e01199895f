package repository

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"booking-sync-service/internal/domain/entity"
	"booking-sync-service/pkg/logger"

	"github.com/nalgeon/be"
)

func TestWebhookRepositorySend(t *testing.T) {
	var (
		method      string
		contentType string
		payload     map[string]interface{}
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		contentType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &payload)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	start := time.Date(2025, 2, 18, 0, 0, 0, 0, time.UTC)
	end := start.Add(4 * time.Hour)
	record := &entity.BookingRecord{
		BookingReference: "#AB123",
		Title:            "Harbour Cruise",
		Status:           "confirmed",
		StartAt:          &start,
		EndAt:            &end,
	}

	repo := NewWebhookRepository(srv.URL, 5*time.Second, logger.NewNopLogger())
	err := repo.Send(context.Background(), record)
	be.Err(t, err, nil)
	be.Equal(t, method, http.MethodPost)
	be.Equal(t, contentType, "application/json")
	be.Equal(t, payload["Booking Reference"], interface{}("#AB123"))
	be.Equal(t, payload["Status"], interface{}("confirmed"))
	be.Equal(t, payload["start_datetime"], interface{}("2025-02-18T00:00:00Z"))
}

func TestWebhookRepositoryNonOKStatus(t *testing.T) {
	for _, status := range []int{http.StatusCreated, http.StatusBadRequest, http.StatusInternalServerError} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			w.Write([]byte("nope"))
		}))

		repo := NewWebhookRepository(srv.URL, 5*time.Second, logger.NewNopLogger())
		err := repo.Send(context.Background(), &entity.BookingRecord{BookingReference: "#AB123"})
		be.Err(t, err, "returned status")
		srv.Close()
	}
}

func TestWebhookRepositoryUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	repo := NewWebhookRepository(url, time.Second, logger.NewNopLogger())
	err := repo.Send(context.Background(), &entity.BookingRecord{})
	be.Err(t, err, "failed to send request")
}
