package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"booking-sync-service/pkg/logger"

	"google.golang.org/genai"
)

// ErrEmptyResponse is returned when the model produced no text
var ErrEmptyResponse = errors.New("model returned no text")

// GeminiService generates text with a Gemini model
type GeminiService struct {
	client *genai.Client
	model  string
	logger logger.Logger
}

// NewGeminiService creates a Gemini client for the given model.
// baseURL overrides the API endpoint and is empty in production.
func NewGeminiService(ctx context.Context, apiKey, model, baseURL string, logger logger.Logger) (*GeminiService, error) {
	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &GeminiService{
		client: client,
		model:  model,
		logger: logger,
	}, nil
}

// Generate sends prompt as a single user turn and returns the concatenated text parts
func (s *GeminiService) Generate(ctx context.Context, prompt string) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](0),
		ResponseMIMEType: "application/json",
	}

	resp, err := s.client.Models.GenerateContent(ctx, s.model, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("generate content with %s: %w", s.model, err)
	}

	text := responseText(resp)
	if text == "" {
		return "", ErrEmptyResponse
	}

	s.logger.Debug("Model response received", "model", s.model, "length", len(text))
	return text, nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	candidate := resp.Candidates[0]
	if candidate == nil || candidate.Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		sb.WriteString(part.Text)
	}
	return strings.TrimSpace(sb.String())
}
