// Package inference turns images into descriptive prompts using a remote
// vision model.
package inference

import (
	"context"
	"errors"
)

var (
	ErrNotConfigured = errors.New("inference client is not configured")
	ErrEmptyResponse = errors.New("model returned no text")
)

// PromptGenerator describes an image as a text prompt.
type PromptGenerator interface {
	GeneratePromptFromImage(ctx context.Context, image []byte, mimeType string) (string, error)
}

// Unavailable is used when no API key is configured; every call fails.
type Unavailable struct{}

func (Unavailable) GeneratePromptFromImage(context.Context, []byte, string) (string, error) {
	return "", ErrNotConfigured
}
