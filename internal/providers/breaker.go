package providers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
)

// BreakerSettings configures WithBreaker.
type BreakerSettings struct {
	// Failures is the number of consecutive failures that opens the breaker.
	Failures uint32
	// Timeout is how long the breaker stays open before probing again.
	Timeout time.Duration
}

type breakerProvider struct {
	next Provider
	cb   *gobreaker.CircuitBreaker
}

// WithBreaker guards p with a circuit breaker. Rate-limit responses do not
// count as failures; the retry policy handles those.
func WithBreaker(p Provider, s BreakerSettings) Provider {
	if s.Failures == 0 {
		s.Failures = 5
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    p.Name(),
		Timeout: s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= s.Failures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || IsRateLimit(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("Provider circuit breaker state changed", "provider", name, "from", from.String(), "to", to.String())
		},
	})
	return &breakerProvider{next: p, cb: cb}
}

func (b *breakerProvider) Name() string {
	return b.next.Name()
}

func (b *breakerProvider) Generate(ctx context.Context, config Config) (string, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.Generate(ctx, config)
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return "", fmt.Errorf("%s unavailable: %w", b.next.Name(), err)
		}
		return "", err
	}
	return out.(string), nil
}
