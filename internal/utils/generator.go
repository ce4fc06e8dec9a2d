package utils

import (
	"context"
	"daily-rep/internal/reperr"
	"errors"
	"net/http"
)

// GenerationRequest is a single prompt sent to a text-generation backend.
type GenerationRequest struct {
	SystemPrompt string
	UserPrompt   string
	Temperature  float32
}

// TextGenerator returns the raw text produced for a prompt. Implementations classify transport
// failures into reperr kinds.
type TextGenerator interface {
	Generate(ctx context.Context, req GenerationRequest) (string, error)
}

// classifyGenerationError maps an HTTP status or context failure from a backend call onto the
// generation error kinds. Other errors are returned unchanged.
func classifyGenerationError(ctx context.Context, statusCode int, err error) error {
	switch {
	case statusCode == http.StatusTooManyRequests:
		return reperr.Wrap(reperr.KindGenerationRateLimited, err, "rate limits exceeded, please try again later")
	case statusCode == http.StatusPaymentRequired:
		return reperr.Wrap(reperr.KindGenerationPaymentRequired, err, "payment required, please add credits")
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return reperr.Wrap(reperr.KindGenerationTimeout, err, "text generation timed out")
	}
	return err
}
