package retryx_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aussiebroadwan/campus/pkg/retryx"
	"github.com/stretchr/testify/require"
)

var errFlaky = errors.New("flaky")

func TestDoSucceedsFirstTime(t *testing.T) {
	calls := 0
	err := retryx.Do(context.Background(), retryx.Policy{Attempts: 3}, func(context.Context, int) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 1, calls)
}

func TestDoRetriesUntilSuccess(t *testing.T) {
	var seen []int
	err := retryx.Do(context.Background(), retryx.Policy{Attempts: 3}, func(_ context.Context, attempt int) error {
		seen = append(seen, attempt)
		if attempt < 3 {
			return errFlaky
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []int{1, 2, 3}, seen)
}

func TestDoExhausts(t *testing.T) {
	calls := 0
	err := retryx.Do(context.Background(), retryx.Policy{Attempts: 3, Backoff: time.Millisecond}, func(context.Context, int) error {
		calls++
		return errFlaky
	})
	require.ErrorIs(t, err, retryx.ErrExhausted)
	require.ErrorIs(t, err, errFlaky)
	require.Equal(t, 3, calls)
}

func TestDoStopsOnPermanent(t *testing.T) {
	calls := 0
	err := retryx.Do(context.Background(), retryx.Policy{Attempts: 5}, func(context.Context, int) error {
		calls++
		return retryx.Permanent(errFlaky)
	})
	require.ErrorIs(t, err, errFlaky)
	require.NotErrorIs(t, err, retryx.ErrExhausted)
	require.Equal(t, 1, calls)
}

func TestDoHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := retryx.Do(ctx, retryx.Policy{Attempts: 5, Backoff: time.Hour}, func(context.Context, int) error {
		calls++
		cancel()
		return errFlaky
	})
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, calls)
}

func TestDoZeroAttemptsRunsOnce(t *testing.T) {
	calls := 0
	_ = retryx.Do(context.Background(), retryx.Policy{}, func(context.Context, int) error {
		calls++
		return errFlaky
	})
	require.Equal(t, 1, calls)
}
