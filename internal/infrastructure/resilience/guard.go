// Package resilience wraps blob-storage calls with bounded retries and a
// per-operation circuit breaker. Validation failures in the caller never reach
// this layer; only transport-level errors count against the breaker.
package resilience

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
)

type Config struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration

	BreakerEnabled      bool
	BreakerMinRequests  uint32
	BreakerFailureRatio float64
	BreakerOpenTimeout  time.Duration
}

func DefaultConfig() Config {
	return Config{
		MaxAttempts:         3,
		InitialBackoff:      100 * time.Millisecond,
		MaxBackoff:          800 * time.Millisecond,
		BreakerEnabled:      true,
		BreakerMinRequests:  10,
		BreakerFailureRatio: 0.5,
		BreakerOpenTimeout:  30 * time.Second,
	}
}

// Retryable marks operations worth retrying; non-retryable errors fail fast
// but still count as breaker failures.
type Retryable func(err error) bool

// Guard executes operations under the retry/breaker policy. One breaker per
// operation name, created lazily.
type Guard struct {
	cfg       Config
	retryable Retryable
	log       *slog.Logger

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker[any]
}

func NewGuard(cfg Config, retryable Retryable, log *slog.Logger) *Guard {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultConfig().MaxAttempts
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = DefaultConfig().InitialBackoff
	}
	if cfg.MaxBackoff < cfg.InitialBackoff {
		cfg.MaxBackoff = cfg.InitialBackoff
	}
	if retryable == nil {
		retryable = func(error) bool { return false }
	}
	return &Guard{
		cfg:       cfg,
		retryable: retryable,
		log:       log,
		breakers:  make(map[string]*gobreaker.CircuitBreaker[any]),
	}
}

func (g *Guard) Do(ctx context.Context, operation string, fn func(context.Context) error) error {
	if !g.cfg.BreakerEnabled {
		return g.retry(ctx, operation, fn)
	}
	_, err := g.breaker(operation).Execute(func() (any, error) {
		return nil, g.retry(ctx, operation, fn)
	})
	return err
}

// DoOnce runs fn under the breaker without retries, for operations whose
// inputs cannot be replayed (a consumed request body, for one).
func (g *Guard) DoOnce(ctx context.Context, operation string, fn func(context.Context) error) error {
	if !g.cfg.BreakerEnabled {
		return fn(ctx)
	}
	_, err := g.breaker(operation).Execute(func() (any, error) {
		return nil, fn(ctx)
	})
	return err
}

func (g *Guard) retry(ctx context.Context, operation string, fn func(context.Context) error) error {
	backoff := g.cfg.InitialBackoff
	var err error
	for attempt := 1; attempt <= g.cfg.MaxAttempts; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err = fn(ctx); err == nil {
			return nil
		}
		if !g.retryable(err) || attempt == g.cfg.MaxAttempts {
			return err
		}

		g.log.Warn("storage_retry",
			"operation", operation,
			"attempt", attempt,
			"backoff_ms", backoff.Milliseconds(),
			"error", err,
		)
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
		backoff *= 2
		if backoff > g.cfg.MaxBackoff {
			backoff = g.cfg.MaxBackoff
		}
	}
	return err
}

func (g *Guard) breaker(operation string) *gobreaker.CircuitBreaker[any] {
	g.mu.Lock()
	defer g.mu.Unlock()

	if b, ok := g.breakers[operation]; ok {
		return b
	}
	b := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:    operation,
		Timeout: g.cfg.BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < g.cfg.BreakerMinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= g.cfg.BreakerFailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			g.log.Warn("storage_breaker_state_change", "operation", name, "from", from.String(), "to", to.String())
		},
	})
	g.breakers[operation] = b
	return b
}

func IsCircuitOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
