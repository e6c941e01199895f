package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"booking-sync-service/pkg/logger"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/gmail/v1"
)

// Scopes requested for mailbox read and calendar write access
var Scopes = []string{
	gmail.GmailReadonlyScope,
	calendar.CalendarScope,
}

// GoogleOAuth handles OAuth authentication with Gmail and Calendar
type GoogleOAuth struct {
	config       *oauth2.Config
	refreshToken string
	logger       logger.Logger
}

// NewGoogleOAuth creates a new Google OAuth handler
func NewGoogleOAuth(clientID, clientSecret, refreshToken string, logger logger.Logger) *GoogleOAuth {
	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       Scopes,
	}

	return &GoogleOAuth{
		config:       config,
		refreshToken: refreshToken,
		logger:       logger,
	}
}

// GetTokenSource returns a token source refreshed from the stored refresh token
func (o *GoogleOAuth) GetTokenSource(ctx context.Context) oauth2.TokenSource {
	token := &oauth2.Token{
		RefreshToken: o.refreshToken,
		Expiry:       time.Now(), // Force refresh
	}

	return o.config.TokenSource(ctx, token)
}

// SetRedirectURL sets the callback used by the consent flow
func (o *GoogleOAuth) SetRedirectURL(url string) {
	o.config.RedirectURL = url
}

// GenerateAuthURL generates a URL for the user to authorize the application
func (o *GoogleOAuth) GenerateAuthURL(state string) string {
	return o.config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// ExchangeCode exchanges an authorization code for a token
func (o *GoogleOAuth) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := o.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}

	o.logger.Info("Refresh token obtained", "hasRefreshToken", token.RefreshToken != "")

	return token, nil
}

// TokenToJSON converts a token to JSON
func (o *GoogleOAuth) TokenToJSON(token *oauth2.Token) (string, error) {
	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
