package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"booking-sync-service/internal/domain/entity"
	"booking-sync-service/pkg/logger"

	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// GmailService reads booking emails through the Gmail API
type GmailService struct {
	gmailService *gmail.Service
	logger       logger.Logger
}

// NewGmailService creates a new Gmail service. Pass option.WithTokenSource in production.
func NewGmailService(ctx context.Context, logger logger.Logger, opts ...option.ClientOption) (*GmailService, error) {
	service, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, err
	}

	return &GmailService{
		gmailService: service,
		logger:       logger,
	}, nil
}

// FetchMessages lists at most limit messages from sender, newest first, and loads each one
func (s *GmailService) FetchMessages(ctx context.Context, sender string, limit int) ([]*entity.Email, error) {
	query := fmt.Sprintf("from:%q", sender)
	s.logger.Info("Querying Gmail", "query", query, "limit", limit)

	resp, err := s.gmailService.Users.Messages.List("me").
		Q(query).
		MaxResults(int64(limit)).
		Context(ctx).
		Do()
	if err != nil {
		s.logger.Error("Failed to list messages", "error", err)
		return nil, err
	}

	if len(resp.Messages) == 0 {
		return nil, nil
	}

	emails := make([]*entity.Email, 0, len(resp.Messages))
	for _, msg := range resp.Messages {
		fullMsg, err := s.gmailService.Users.Messages.Get("me", msg.Id).
			Format("full").
			Context(ctx).
			Do()
		if err != nil {
			s.logger.Error("Failed to get message", "emailID", msg.Id, "error", err)
			continue
		}

		email, err := convertToEmail(fullMsg)
		if err != nil {
			s.logger.Error("Failed to convert message", "emailID", msg.Id, "error", err)
			continue
		}
		emails = append(emails, email)
	}

	s.logger.Info("Email fetch completed",
		"totalFromGmail", len(resp.Messages),
		"loaded", len(emails))

	return emails, nil
}

// convertToEmail converts a Gmail message to our domain entity
func convertToEmail(msg *gmail.Message) (*entity.Email, error) {
	if msg.Payload == nil {
		return nil, fmt.Errorf("message %s has no payload", msg.Id)
	}

	email := &entity.Email{
		EmailID:    msg.Id,
		Labels:     msg.LabelIds,
		ReceivedAt: time.UnixMilli(msg.InternalDate).UTC(),
	}

	for _, header := range msg.Payload.Headers {
		switch strings.ToLower(header.Name) {
		case "from":
			email.From = header.Value
		case "to":
			email.To = header.Value
		case "subject":
			email.Subject = header.Value
		}
	}

	collectBodies(msg.Payload, email)

	if email.Body == "" && email.HTMLBody == "" {
		email.Body = msg.Snippet
	}

	return email, nil
}

// collectBodies walks nested parts keeping the first plain and html body found
func collectBodies(part *gmail.MessagePart, email *entity.Email) {
	if part == nil {
		return
	}

	if part.Filename == "" && part.Body != nil && part.Body.Data != "" {
		data, err := decodeBody(part.Body.Data)
		if err == nil {
			switch {
			case strings.HasPrefix(part.MimeType, "text/html"):
				if email.HTMLBody == "" {
					email.HTMLBody = data
				}
			case strings.HasPrefix(part.MimeType, "text/plain"), part.MimeType == "":
				if email.Body == "" {
					email.Body = data
				}
			}
		}
	}

	for _, child := range part.Parts {
		collectBodies(child, email)
	}
}

// Gmail encodes bodies as URL-safe base64, padding is not guaranteed
func decodeBody(data string) (string, error) {
	decoded, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		decoded, err = base64.RawURLEncoding.DecodeString(strings.TrimRight(data, "="))
		if err != nil {
			return "", err
		}
	}
	return string(decoded), nil
}
