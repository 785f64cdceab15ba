package ocr

import (
	"context"
	"encoding/base64"
	"log/slog"

	"github.com/lehigh-university-libraries/imagetranslator/internal/apperr"
	"github.com/lehigh-university-libraries/imagetranslator/internal/images"
	"github.com/lehigh-university-libraries/imagetranslator/internal/providers"
	"github.com/lehigh-university-libraries/imagetranslator/internal/retry"
)

const extractPrompt = "Extract all text from this image and return it as plain text. " +
	"Please maintain the original text structure and layout as much as possible. " +
	"If there are multiple languages in the image, please identify and preserve them all."

// Service handles OCR extraction from images
type Service struct {
	provider providers.Provider
	model    string
	policy   retry.Policy
}

// NewService creates a new OCR service
func NewService(provider providers.Provider, model string, policy retry.Policy) *Service {
	policy.ShouldRetry = providers.IsRateLimit
	return &Service{
		provider: provider,
		model:    model,
		policy:   policy,
	}
}

// Extract returns the text found in the image encoded by dataURI.
// Only the base64 payload after the encoding prefix is sent to the model.
func (s *Service) Extract(ctx context.Context, dataURI string) (string, error) {
	mimeType, payload, err := images.SplitDataURI(dataURI)
	if err != nil {
		return "", apperr.Invalid("error.invalidFile")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", apperr.Invalid("error.invalidFile")
	}

	config := providers.Config{
		Model:  s.model,
		Prompt: extractPrompt,
		Image:  &providers.Image{MIMEType: mimeType, Data: data},
	}

	text, err := retry.Do(ctx, s.policy, func(ctx context.Context) (string, error) {
		return s.provider.Generate(ctx, config)
	})
	if err != nil {
		switch {
		case providers.IsRateLimit(err):
			slog.Error("API quota exceeded. Please try again later.", "provider", s.provider.Name(), "err", err)
			return "", apperr.New(apperr.RateLimitExceeded, apperr.OpExtract, err)
		case providers.IsModelUnavailable(err):
			slog.Error("Model not available", "provider", s.provider.Name(), "model", s.model, "err", err)
			return "", apperr.New(apperr.ModelUnavailable, apperr.OpExtract, err)
		default:
			slog.Error("Error extracting text", "provider", s.provider.Name(), "err", err)
			return "", apperr.New(apperr.OperationFailed, apperr.OpExtract, err)
		}
	}

	slog.Info("Extracted OCR text", "provider", s.provider.Name(), "model", s.model, "length", len(text))
	return text, nil
}
