package repository

import "context"

// TextGenerator is a generative text model
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
