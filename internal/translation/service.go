package translation

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lehigh-university-libraries/imagetranslator/internal/apperr"
	"github.com/lehigh-university-libraries/imagetranslator/internal/providers"
	"github.com/lehigh-university-libraries/imagetranslator/internal/retry"
)

var (
	// translateGeneration favours faithfulness over creativity
	translateGeneration = providers.Generation{
		Temperature:     0.3,
		TopK:            40,
		TopP:            0.95,
		MaxOutputTokens: 2048,
	}
	improveGeneration = providers.Generation{
		Temperature:     0.4,
		TopK:            40,
		TopP:            0.95,
		MaxOutputTokens: 2048,
	}
)

// Service translates text and polishes translations with a text model.
type Service struct {
	provider providers.Provider
	model    string
	policy   retry.Policy
}

func NewService(provider providers.Provider, model string, policy retry.Policy) *Service {
	policy.ShouldRetry = providers.IsRateLimit
	return &Service{
		provider: provider,
		model:    model,
		policy:   policy,
	}
}

// Translate renders text in targetLang. targetLang is a language name such
// as "French" and is passed to the model as is. text must not be empty;
// callers check that before invoking.
func (s *Service) Translate(ctx context.Context, text, targetLang string) (string, error) {
	out, err := s.generate(ctx, buildTranslatePrompt(text, targetLang), translateGeneration)
	if err != nil {
		return "", s.fail(apperr.OpTranslate, err)
	}
	slog.Info("Translated text", "provider", s.provider.Name(), "language", targetLang, "length", len(out))
	return out, nil
}

// Improve returns a corrected, more idiomatic rewrite of text written in lang.
func (s *Service) Improve(ctx context.Context, text, lang string) (string, error) {
	out, err := s.generate(ctx, buildImprovePrompt(text, lang), improveGeneration)
	if err != nil {
		return "", s.fail(apperr.OpImprove, err)
	}
	slog.Info("Improved text", "provider", s.provider.Name(), "language", lang, "length", len(out))
	return out, nil
}

func (s *Service) generate(ctx context.Context, prompt string, gen providers.Generation) (string, error) {
	config := providers.Config{
		Model:      s.model,
		Prompt:     prompt,
		Generation: &gen,
	}
	return retry.Do(ctx, s.policy, func(ctx context.Context) (string, error) {
		return s.provider.Generate(ctx, config)
	})
}

func (s *Service) fail(op apperr.Op, err error) error {
	if providers.IsRateLimit(err) {
		slog.Error("API quota exceeded. Please try again later.", "op", op, "provider", s.provider.Name(), "err", err)
		return apperr.New(apperr.RateLimitExceeded, op, err)
	}
	slog.Error(fmt.Sprintf("Error during %s", op), "provider", s.provider.Name(), "err", err)
	return apperr.New(apperr.OperationFailed, op, err)
}
