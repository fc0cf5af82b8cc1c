// Package retryx runs an operation a bounded number of times with a fixed
// pause between attempts.
package retryx

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// ErrExhausted wraps the last error once every attempt has failed.
var ErrExhausted = errors.New("retryx: attempts exhausted")

// Policy bounds a retry loop.
type Policy struct {
	Attempts int
	Backoff  time.Duration
}

// Default is three attempts a quarter second apart.
var Default = Policy{Attempts: 3, Backoff: 250 * time.Millisecond}

// permanent marks an error that must not be retried.
type permanent struct{ err error }

func (p permanent) Error() string { return p.err.Error() }
func (p permanent) Unwrap() error { return p.err }

// Permanent wraps err so Do returns it immediately without further attempts.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return permanent{err: err}
}

// Do calls op until it succeeds, returns a Permanent error, the attempt
// budget runs out or ctx is done. The attempt number passed to op starts
// at 1. On exhaustion the returned error wraps both ErrExhausted and the
// last failure.
func Do(ctx context.Context, p Policy, op func(ctx context.Context, attempt int) error) error {
	attempts := max(p.Attempts, 1)

	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(max(p.Backoff, 0)), uint64(attempts-1)),
		ctx,
	)

	var (
		attempt int
		stopped bool
	)
	err := backoff.Retry(func() error {
		if err := ctx.Err(); err != nil {
			stopped = true
			return backoff.Permanent(err)
		}
		attempt++
		err := op(ctx, attempt)
		var perm permanent
		if errors.As(err, &perm) {
			stopped = true
			return backoff.Permanent(perm.err)
		}
		return err
	}, b)

	switch {
	case err == nil:
		return nil
	case stopped:
		return err
	case ctx.Err() != nil:
		return ctx.Err()
	}
	return fmt.Errorf("%w after %d attempts: %w", ErrExhausted, attempt, err)
}
