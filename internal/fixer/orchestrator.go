package fixer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// DefaultMaxAttempts is the total number of calls made for one request.
	DefaultMaxAttempts = 3

	// DefaultBackoff is the fixed wait between rate-limited attempts.
	DefaultBackoff = 20 * time.Second
)

// RetryPolicy bounds retries on rate-limited failures.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
}

// DefaultRetryPolicy returns 3 attempts with a 20s fixed backoff.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: DefaultMaxAttempts, Backoff: DefaultBackoff}
}

// RetryState tracks one RequestFix call. It is discarded when the call returns.
type RetryState struct {
	Attempt     int
	MaxAttempts int
	LastError   error
	Backoff     time.Duration
}

// exhausted reports whether no further attempt is allowed.
func (s *RetryState) exhausted() bool {
	return s.Attempt >= s.MaxAttempts
}

// SleepFunc blocks for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Orchestrator sends fix requests to a reasoning service with bounded retry.
type Orchestrator struct {
	service Service
	policy  RetryPolicy
	limiter *rate.Limiter
	sleep   SleepFunc
	logger  *zap.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithSleep replaces the backoff sleep, mainly for tests.
func WithSleep(sleep SleepFunc) Option {
	return func(o *Orchestrator) {
		if sleep != nil {
			o.sleep = sleep
		}
	}
}

// WithRequestsPerMinute paces outgoing calls client-side. Zero disables pacing.
func WithRequestsPerMinute(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(n)), 1)
		}
	}
}

// NewOrchestrator creates an orchestrator around a constructed service.
// Zero policy fields fall back to the defaults.
func NewOrchestrator(service Service, policy RetryPolicy, opts ...Option) (*Orchestrator, error) {
	if service == nil {
		return nil, errors.New("reasoning service is required")
	}
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = DefaultMaxAttempts
	}
	if policy.Backoff < 0 {
		return nil, fmt.Errorf("backoff cannot be negative, got %s", policy.Backoff)
	}
	if policy.Backoff == 0 {
		policy.Backoff = DefaultBackoff
	}

	o := &Orchestrator{
		service: service,
		policy:  policy,
		sleep:   sleepContext,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// RequestFix sends req and returns the raw reply.
//
// Rate-limited failures are retried after a fixed backoff until
// MaxAttempts calls have been made. Every other failure is terminal on the
// first occurrence, and malformed requests are rejected before any call.
// Terminal failures are *RequestError values matching ErrFixRequestFailed.
func (o *Orchestrator) RequestFix(ctx context.Context, req *Request) (string, error) {
	prompt, err := BuildPrompt(req)
	if err != nil {
		return "", &RequestError{Attempts: 0, Kind: KindMalformedInput, Err: err}
	}

	state := &RetryState{MaxAttempts: o.policy.MaxAttempts, Backoff: o.policy.Backoff}
	log := o.logger.With(zap.String("request_id", req.ID), zap.String("service", o.service.Name()))

	for {
		state.Attempt++

		if o.limiter != nil {
			if err := o.limiter.Wait(ctx); err != nil {
				return "", &RequestError{Attempts: state.Attempt - 1, Kind: KindService, Err: err}
			}
		}

		log.Debug("sending fix request",
			zap.Int("attempt", state.Attempt),
			zap.String("mode", string(req.Mode)),
			zap.String("format", string(prompt.Format)))

		text, err := o.service.Generate(ctx, prompt)
		if err == nil {
			return text, nil
		}
		state.LastError = err

		kind := Classify(err)
		if !Retryable(kind) || state.exhausted() {
			return "", &RequestError{Attempts: state.Attempt, Kind: kind, Err: err}
		}

		log.Warn("rate limited, retrying",
			zap.Int("attempt", state.Attempt),
			zap.Int("max_attempts", state.MaxAttempts),
			zap.Duration("backoff", state.Backoff),
			zap.Error(err))

		if err := o.sleep(ctx, state.Backoff); err != nil {
			return "", &RequestError{Attempts: state.Attempt, Kind: kind, Err: errors.Join(state.LastError, err)}
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
