// Package poll waits on long-running remote jobs with a bounded number of
// fixed-interval attempts.
package poll

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"genstudio/internal/infra"
)

const (
	DefaultMaxAttempts = 24
	DefaultInterval    = 5 * time.Second
)

// ErrTimeout is matched by every TimeoutError.
var ErrTimeout = errors.New("polling timeout")

// TimeoutError reports that all attempts were used without reaching a
// terminal state.
type TimeoutError struct {
	Attempts int
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("Polling timeout: exceeded %d attempts", e.Attempts)
}

func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

// Options tunes a poll loop. Zero values fall back to the defaults.
type Options struct {
	MaxAttempts int
	Interval    time.Duration
	// OnAttempt observes the 1-based attempt number before each call.
	OnAttempt func(attempt int)
	Logger    *infra.Logger

	sleep func(ctx context.Context, d time.Duration) error
}

// Result is the outcome of UntilSafe.
type Result[T any] struct {
	Success  bool
	Data     T
	Error    string
	Attempts int
}

func (o Options) normalize() Options {
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = DefaultMaxAttempts
	}
	if o.Interval < 0 {
		o.Interval = 0
	}
	if o.Interval == 0 {
		o.Interval = DefaultInterval
	}
	if o.sleep == nil {
		o.sleep = sleepContext
	}
	if o.Logger == nil {
		l := zerolog.New(io.Discard)
		o.Logger = &l
	}
	return o
}

// Until calls fn until done reports true for its result, at most
// MaxAttempts times. The first error from fn aborts the loop.
func Until[T any](ctx context.Context, fn func(context.Context) (T, error), done func(T) bool, opts Options) (T, error) {
	opts = opts.normalize()
	var zero T
	for attempt := 1; attempt <= opts.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		if opts.OnAttempt != nil {
			opts.OnAttempt(attempt)
		}
		result, err := fn(ctx)
		if err != nil {
			return zero, err
		}
		if done(result) {
			return result, nil
		}
		// no sleep after the final attempt
		if attempt < opts.MaxAttempts {
			if err := opts.sleep(ctx, opts.Interval); err != nil {
				return zero, err
			}
		}
	}
	return zero, &TimeoutError{Attempts: opts.MaxAttempts}
}

// UntilSafe behaves like Until but absorbs errors from fn and keeps
// polling. It never returns an error; failures are reported in the Result.
func UntilSafe[T any](ctx context.Context, fn func(context.Context) (T, error), done func(T) bool, opts Options) Result[T] {
	opts = opts.normalize()
	var lastErr error
	for attempt := 1; attempt <= opts.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return Result[T]{Error: err.Error(), Attempts: attempt - 1}
		}
		if opts.OnAttempt != nil {
			opts.OnAttempt(attempt)
		}
		result, err := fn(ctx)
		switch {
		case err != nil:
			lastErr = err
			opts.Logger.Warn().Err(err).Int("attempt", attempt).Msg("poll: attempt failed")
		case done(result):
			return Result[T]{Success: true, Data: result, Attempts: attempt}
		}
		if attempt < opts.MaxAttempts {
			if err := opts.sleep(ctx, opts.Interval); err != nil {
				return Result[T]{Error: err.Error(), Attempts: attempt}
			}
		}
	}
	timeout := &TimeoutError{Attempts: opts.MaxAttempts}
	if lastErr != nil {
		opts.Logger.Debug().Err(lastErr).Msg("poll: last attempt error before timeout")
	}
	return Result[T]{Error: timeout.Error(), Attempts: opts.MaxAttempts}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
