package repository

import (
	"context"

	"booking-sync-service/internal/domain/entity"
)

// MailRepository retrieves booking emails from a mailbox
type MailRepository interface {
	// FetchMessages returns at most limit messages sent by sender, newest first
	FetchMessages(ctx context.Context, sender string, limit int) ([]*entity.Email, error)
}
