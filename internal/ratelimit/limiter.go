package ratelimit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"newsdesk/internal/logging"
	"newsdesk/internal/services/gemini"
	"newsdesk/internal/store"
)

// admitTimeout bounds how long an RPM acquisition may wait before the call is
// denied. Admission must never meaningfully block the caller.
const admitTimeout = 100 * time.Millisecond

// Decision is the outcome of an admission check.
type Decision int

const (
	Admitted Decision = iota
	DeniedRPM
	DeniedRPD
)

func (d Decision) String() string {
	switch d {
	case Admitted:
		return "admitted"
	case DeniedRPM:
		return "denied_rpm"
	case DeniedRPD:
		return "denied_rpd"
	default:
		return "unknown"
	}
}

// CounterStore is the persistence surface required for RPD accounting.
type CounterStore interface {
	FindOrCreateRateLimit(ctx context.Context, model, day string, maxPerDay int) (*store.RateLimitCounter, error)
	ConditionalIncrement(ctx context.Context, model, day string) (bool, error)
}

// Limiter enforces per-model RPM and RPD admission control. The RPM token
// bucket is process-local; the RPD counter is persisted and atomic across
// processes via the store's conditional increment.
type Limiter struct {
	counters CounterStore
	logger   *slog.Logger
	now      func() time.Time

	mu      sync.Mutex
	buckets map[string]*rate.Limiter
}

// Option customizes the limiter.
type Option func(*Limiter)

// WithClock overrides the wall clock used for day keys (used in tests).
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		if now != nil {
			l.now = now
		}
	}
}

// NewLimiter constructs an admission controller backed by the given counter store.
func NewLimiter(counters CounterStore, logger *slog.Logger, opts ...Option) *Limiter {
	limiter := &Limiter{
		counters: counters,
		logger:   logging.NewComponentLogger(logger, "ratelimit"),
		now:      time.Now,
		buckets:  make(map[string]*rate.Limiter),
	}
	for _, opt := range opts {
		opt(limiter)
	}
	return limiter
}

// Admit runs both quota checks for the model: the cheap in-memory RPM bucket
// first, then the persisted RPD counter. A call is admitted only when both
// pass; the RPD increment happens as part of the check so an admitted call is
// already accounted for.
func (l *Limiter) Admit(ctx context.Context, model gemini.ModelDescriptor) (Decision, error) {
	if !l.admitRPM(ctx, model) {
		l.logger.Debug("rpm bucket exhausted",
			logging.String(logging.FieldModel, model.Name),
			logging.String(logging.FieldEventType, "rate_limit_rpm"),
		)
		return DeniedRPM, nil
	}

	day := store.DayKey(l.now())
	counter, err := l.counters.FindOrCreateRateLimit(ctx, model.Name, day, model.RPDLimit)
	if err != nil {
		return DeniedRPD, err
	}
	if counter.RequestCount >= counter.MaxPerDay {
		l.logDailyExhausted(model, counter)
		return DeniedRPD, nil
	}

	ok, err := l.counters.ConditionalIncrement(ctx, model.Name, day)
	if err != nil {
		return DeniedRPD, err
	}
	if !ok {
		// Lost the race to the last daily slot.
		l.logDailyExhausted(model, counter)
		return DeniedRPD, nil
	}
	return Admitted, nil
}

func (l *Limiter) admitRPM(ctx context.Context, model gemini.ModelDescriptor) bool {
	bucket := l.bucketFor(model)
	waitCtx, cancel := context.WithTimeout(ctx, admitTimeout)
	defer cancel()
	return bucket.Wait(waitCtx) == nil
}

func (l *Limiter) bucketFor(model gemini.ModelDescriptor) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	bucket, ok := l.buckets[model.Name]
	if !ok {
		rpm := model.RPMLimit
		if rpm <= 0 {
			rpm = 1
		}
		bucket = rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), rpm)
		l.buckets[model.Name] = bucket
	}
	return bucket
}

func (l *Limiter) logDailyExhausted(model gemini.ModelDescriptor, counter *store.RateLimitCounter) {
	l.logger.Warn("daily request budget exhausted",
		logging.String(logging.FieldModel, model.Name),
		logging.Int("request_count", counter.RequestCount),
		logging.Int("max_per_day", counter.MaxPerDay),
		logging.String(logging.FieldEventType, "rate_limit_rpd"),
		logging.String(logging.FieldErrorHint, "processing resumes after the daily quota resets"),
	)
}
