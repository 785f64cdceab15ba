package providers

import (
	"context"
	"fmt"
)

// Image is an inline image sent alongside the prompt
type Image struct {
	MIMEType string
	Data     []byte
}

// Generation holds sampling parameters. Zero fields keep the provider default.
type Generation struct {
	Temperature     float32
	TopP            float32
	TopK            int32
	MaxOutputTokens int32
}

// Config represents a single request to an LLM provider
type Config struct {
	Model      string
	Prompt     string
	Image      *Image
	Generation *Generation
}

// Provider defines the interface for an LLM provider
type Provider interface {
	Name() string
	Generate(ctx context.Context, config Config) (string, error)
}

// StatusError carries the HTTP-like status a provider failed with
type StatusError struct {
	Provider string
	Code     int
	Message  string
	Err      error
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s returned status %d: %s", e.Provider, e.Code, e.Message)
	}
	return fmt.Sprintf("%s returned status %d", e.Provider, e.Code)
}

func (e *StatusError) Unwrap() error {
	return e.Err
}
