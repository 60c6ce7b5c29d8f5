package registry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/meshscope/backend-go/internal/domain"
	"github.com/meshscope/backend-go/internal/observability"
)

// Result is a registry read that never fails outright. On error Value is
// the empty collection and Err records why the read degraded.
type Result[T any] struct {
	Value T
	Err   error
}

// OK reports whether the read reached the backend successfully
func (r Result[T]) OK() bool { return r.Err == nil }

// Reader wraps a Gateway with the catch-and-default policy: every call is
// logged and counted, and failures degrade to empty results.
type Reader struct {
	gw      Gateway
	logger  *zap.Logger
	metrics *observability.Metrics
	limiter *rate.Limiter
}

// ReaderOption configures a Reader
type ReaderOption func(*Reader)

// WithRateLimit caps gateway calls at perSecond with the given burst.
// A non-positive perSecond leaves calls unthrottled.
func WithRateLimit(perSecond float64, burst int) ReaderOption {
	return func(r *Reader) {
		if perSecond <= 0 {
			return
		}
		if burst < 1 {
			burst = 1
		}
		r.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// NewReader creates a Reader. metrics may be nil.
func NewReader(gw Gateway, logger *zap.Logger, metrics *observability.Metrics, opts ...ReaderOption) *Reader {
	r := &Reader{gw: gw, logger: logger.Named("registry"), metrics: metrics}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Services lists registered service instances
func (r *Reader) Services(ctx context.Context) Result[[]ServiceRecord] {
	return read(ctx, r, "list_services", r.gw.ListServices)
}

// ChecksFor lists the checks bound to one service instance
func (r *Reader) ChecksFor(ctx context.Context, serviceID string) Result[[]CheckRecord] {
	return read(ctx, r, "health_checks_for", func(ctx context.Context) ([]CheckRecord, error) {
		return r.gw.HealthChecksFor(ctx, serviceID)
	})
}

// AllChecks lists every check known to the registry
func (r *Reader) AllChecks(ctx context.Context) Result[[]CheckRecord] {
	return read(ctx, r, "all_health_checks", r.gw.AllHealthChecks)
}

// Intentions lists mesh authorization intentions
func (r *Reader) Intentions(ctx context.Context) Result[[]IntentionRecord] {
	return read(ctx, r, "list_intentions", r.gw.ListIntentions)
}

func read[T any](ctx context.Context, r *Reader, op string, fn func(context.Context) ([]T, error)) Result[[]T] {
	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			r.logger.Warn("registry read throttled", zap.String("operation", op), zap.Error(err))
			return Result[[]T]{Value: []T{}, Err: fmt.Errorf("%s: %w: %w", op, domain.ErrBackendUnavailable, err)}
		}
	}

	start := time.Now()
	v, err := fn(ctx)
	r.metrics.RecordGatewayCall(op, err, time.Since(start))

	if err != nil {
		if errors.Is(err, domain.ErrIntentionsUnsupported) {
			r.logger.Debug("registry read unsupported", zap.String("operation", op))
		} else {
			r.logger.Warn("registry read degraded", zap.String("operation", op), zap.Error(err))
		}
		return Result[[]T]{Value: []T{}, Err: fmt.Errorf("%s: %w: %w", op, domain.ErrBackendUnavailable, err)}
	}
	if v == nil {
		v = []T{}
	}
	return Result[[]T]{Value: v}
}
