package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/lehigh-university-libraries/imagetranslator/internal/apperr"
	"github.com/lehigh-university-libraries/imagetranslator/internal/config"
	"github.com/lehigh-university-libraries/imagetranslator/internal/gemini"
	"github.com/lehigh-university-libraries/imagetranslator/internal/i18n"
	"github.com/lehigh-university-libraries/imagetranslator/internal/ocr"
	"github.com/lehigh-university-libraries/imagetranslator/internal/ollama"
	"github.com/lehigh-university-libraries/imagetranslator/internal/openai"
	"github.com/lehigh-university-libraries/imagetranslator/internal/prefs"
	"github.com/lehigh-university-libraries/imagetranslator/internal/providers"
	"github.com/lehigh-university-libraries/imagetranslator/internal/retry"
	"github.com/lehigh-university-libraries/imagetranslator/internal/translation"
	"github.com/lehigh-university-libraries/imagetranslator/internal/vertex"
)

type services struct {
	ocr         *ocr.Service
	translation *translation.Service
	close       func()
}

// buildProvider creates the configured model provider.
func buildProvider(ctx context.Context, cfg *config.Config) (providers.Provider, func(), error) {
	var (
		p       providers.Provider
		closeFn = func() {}
	)

	switch cfg.Provider {
	case config.ProviderGemini:
		g, err := gemini.New(ctx, cfg.Gemini.APIKey)
		if err != nil {
			return nil, nil, err
		}
		p = g
		closeFn = func() {
			if err := g.Close(); err != nil {
				slog.Warn("Failed to close Gemini client", "err", err)
			}
		}
	case config.ProviderVertex:
		v, err := vertex.New(ctx, vertex.Config{
			APIKey:   firstNonEmpty(cfg.Vertex.APIKey, cfg.Gemini.APIKey),
			Project:  cfg.Vertex.Project,
			Location: cfg.Vertex.Location,
		})
		if err != nil {
			return nil, nil, err
		}
		p = v
	case config.ProviderOpenAI:
		if cfg.OpenAI.APIKey == "" && cfg.OpenAI.BaseURL == "" {
			return nil, nil, errors.New("OPENAI_API_KEY environment variable not set")
		}
		p = openai.New(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL)
	case config.ProviderOllama:
		p = ollama.New(cfg.Ollama.URL)
	default:
		return nil, nil, fmt.Errorf("unknown provider: %s", cfg.Provider)
	}

	if cfg.Breaker.Enabled {
		p = providers.WithBreaker(p, providers.BreakerSettings{
			Failures: cfg.Breaker.Failures,
			Timeout:  cfg.Breaker.Timeout,
		})
	}

	slog.Debug("Provider ready", "provider", p.Name(), "vision_model", cfg.Models.Vision, "text_model", cfg.Models.Text)
	return p, closeFn, nil
}

func retryPolicy(cfg *config.Config) retry.Policy {
	policy := retry.DefaultPolicy(nil)
	policy.MaxRetries = cfg.Retry.MaxRetries
	if cfg.Retry.InitialDelay > 0 {
		policy.InitialDelay = cfg.Retry.InitialDelay
	}
	if cfg.Retry.Backoff >= 1 {
		policy.Backoff = cfg.Retry.Backoff
	}
	return policy
}

func buildServices(ctx context.Context, cfg *config.Config) (*services, error) {
	p, closeFn, err := buildProvider(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s provider: %w", cfg.Provider, err)
	}
	policy := retryPolicy(cfg)
	return &services{
		ocr:         ocr.NewService(p, cfg.Models.Vision, policy),
		translation: translation.NewService(p, cfg.Models.Text, policy),
		close:       closeFn,
	}, nil
}

// openPrefs opens the preference database, or an in-memory store when no
// path is configured.
func openPrefs(cfg *config.Config) (prefs.Storage, func(), error) {
	if cfg.Prefs.Path == "" {
		return prefs.NewMemory(), func() {}, nil
	}
	store, err := prefs.Open(cfg.Prefs.Path)
	if err != nil {
		return nil, nil, err
	}
	return store, func() {
		if err := store.Close(); err != nil {
			slog.Warn("Failed to close preferences", "err", err)
		}
	}, nil
}

func buildI18n(ctx context.Context, cfg *config.Config) (*i18n.Store, func(), error) {
	storage, closeFn, err := openPrefs(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open preferences: %w", err)
	}
	store, err := i18n.NewStore(ctx, storage, nil)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return store, closeFn, nil
}

// localize turns an operation error into the notification the user sees.
func localize(store *i18n.Store, err error) error {
	var appErr *apperr.Error
	if store == nil || !errors.As(err, &appErr) {
		return err
	}
	return fmt.Errorf("%s: %s", store.T(appErr.Key), store.T(appErr.DescriptionKey()))
}

// notify writes a localized success notification to w.
func notify(w io.Writer, store *i18n.Store, key string) {
	if store == nil {
		return
	}
	fmt.Fprintf(w, "%s. %s\n", store.T(key), store.T("success.description"))
}

// readText returns the joined args, or stdin when there are none or the
// only arg is "-".
func readText(args []string, stdin io.Reader) (string, error) {
	if len(args) == 0 || (len(args) == 1 && args[0] == "-") {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
	return strings.Join(args, " "), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
