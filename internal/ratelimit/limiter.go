package ratelimit

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// DefaultStoreTimeout bounds each individual store call so that a slow store
// degrades tail latency instead of hanging the gate.
const DefaultStoreTimeout = 2 * time.Second

var (
	ErrInvalidLimit  = errors.New("ratelimit: limit must be positive")
	ErrInvalidWindow = errors.New("ratelimit: window must be positive")
)

// Config is the single (limit, window) pair a limiter enforces.
type Config struct {
	Limit  int
	Window time.Duration
}

// Validate reports malformed configuration. A validation failure is fatal at
// startup and is never surfaced per request.
func (c Config) Validate() error {
	if c.Limit <= 0 {
		return ErrInvalidLimit
	}

	if c.Window <= 0 {
		return ErrInvalidWindow
	}

	return nil
}

// Decision is the outcome of one evaluation. It is computed per request and
// never persisted.
type Decision struct {
	Allowed    bool
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration // zero unless denied
}

// Limiter decides whether a request from the given client may proceed.
type Limiter interface {
	Evaluate(ctx context.Context, clientID string) Decision
}

// SlidingWindowLimiter counts a client's requests over a window that is
// always relative to now, using a shared Store as its only state.
//
// The count-then-record sequence is not atomic: two concurrent evaluations
// for the same client can both observe limit-1 and both record, admitting
// limit+1 requests in that instant. This slack is bounded by concurrency and
// accepted; closing it requires a single atomic store-side operation.
//
// Store failures never deny a request: on any error during count or record
// the limiter fails open, logging the error.
type SlidingWindowLimiter struct {
	store        Store
	cfg          Config
	storeTimeout time.Duration
	logger       *zap.Logger
	now          func() time.Time
}

// Option configures a SlidingWindowLimiter.
type Option func(*SlidingWindowLimiter)

// WithStoreTimeout overrides the per-call store timeout.
func WithStoreTimeout(d time.Duration) Option {
	return func(l *SlidingWindowLimiter) {
		if d > 0 {
			l.storeTimeout = d
		}
	}
}

// WithClock overrides the time source. Used in tests.
func WithClock(now func() time.Time) Option {
	return func(l *SlidingWindowLimiter) {
		l.now = now
	}
}

// NewSlidingWindowLimiter creates a sliding window rate limiter backed by the
// given store. It returns an error if the configuration is malformed.
func NewSlidingWindowLimiter(store Store, cfg Config, logger *zap.Logger, opts ...Option) (*SlidingWindowLimiter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	l := &SlidingWindowLimiter{
		store:        store,
		cfg:          cfg,
		storeTimeout: DefaultStoreTimeout,
		logger:       logger,
		now:          time.Now,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l, nil
}

// Config returns the limiter's (limit, window) pair.
func (l *SlidingWindowLimiter) Config() Config {
	return l.cfg
}

// Evaluate runs one admission decision for the client.
func (l *SlidingWindowLimiter) Evaluate(ctx context.Context, clientID string) Decision {
	now := l.now()
	windowStart := now.Add(-l.cfg.Window)
	resetAt := now.Add(l.cfg.Window)

	// Lazy eviction: every evaluation trims expired records globally. A
	// failure here only affects storage footprint, never the decision.
	l.cleanup(ctx, windowStart)

	count, err := l.countSince(ctx, clientID, windowStart)
	if err != nil {
		l.logger.Error("rate limit count failed, admitting request",
			zap.String("client", clientID),
			zap.Error(err),
		)

		return l.failOpen(resetAt)
	}

	if count >= int64(l.cfg.Limit) {
		return Decision{
			Allowed:    false,
			Remaining:  0,
			ResetAt:    resetAt,
			RetryAfter: l.retryAfter(ctx, clientID, windowStart, now),
		}
	}

	if err := l.record(ctx, clientID, now); err != nil {
		l.logger.Error("rate limit record failed, admitting request",
			zap.String("client", clientID),
			zap.Error(err),
		)

		return l.failOpen(resetAt)
	}

	return Decision{
		Allowed:   true,
		Remaining: l.cfg.Limit - int(count) - 1,
		ResetAt:   resetAt,
	}
}

// failOpen admits a request whose count could not be established. Remaining
// is a best guess; the store could not be consulted.
func (l *SlidingWindowLimiter) failOpen(resetAt time.Time) Decision {
	return Decision{
		Allowed:   true,
		Remaining: l.cfg.Limit - 1,
		ResetAt:   resetAt,
	}
}

func (l *SlidingWindowLimiter) cleanup(ctx context.Context, windowStart time.Time) {
	ctx, cancel := context.WithTimeout(ctx, l.storeTimeout)
	defer cancel()

	removed, err := l.store.DeleteOlderThan(ctx, windowStart)
	if err != nil {
		l.logger.Warn("rate limit cleanup failed", zap.Error(err))

		return
	}

	if removed > 0 {
		l.logger.Debug("evicted expired request records", zap.Int64("removed", removed))
	}
}

func (l *SlidingWindowLimiter) countSince(ctx context.Context, clientID string, since time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, l.storeTimeout)
	defer cancel()

	return l.store.CountSince(ctx, clientID, since)
}

func (l *SlidingWindowLimiter) record(ctx context.Context, clientID string, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, l.storeTimeout)
	defer cancel()

	return l.store.Record(ctx, clientID, at)
}

// retryAfter estimates how long the client must wait for the oldest surviving
// record to leave the window. When the oldest record is not obtainable the
// full window is reported.
func (l *SlidingWindowLimiter) retryAfter(ctx context.Context, clientID string, windowStart, now time.Time) time.Duration {
	ctx, cancel := context.WithTimeout(ctx, l.storeTimeout)
	defer cancel()

	oldest, found, err := l.store.OldestSince(ctx, clientID, windowStart)
	if err != nil {
		l.logger.Warn("oldest record lookup failed", zap.String("client", clientID), zap.Error(err))

		return l.cfg.Window
	}

	if !found {
		return l.cfg.Window
	}

	retry := l.cfg.Window - now.Sub(oldest)
	if retry <= 0 || retry > l.cfg.Window {
		return l.cfg.Window
	}

	return retry
}
