package retry

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errFlaky = errors.New("flaky")

func fastPolicy(attempts int) Policy {
	return Policy{MaxAttempts: attempts, BaseDelay: time.Millisecond}
}

func TestPolicy_DelayDoubles(t *testing.T) {
	p := Policy{BaseDelay: 100 * time.Millisecond}
	assert.Equal(t, 100*time.Millisecond, p.Delay(1))
	assert.Equal(t, 200*time.Millisecond, p.Delay(2))
	assert.Equal(t, 400*time.Millisecond, p.Delay(3))
	assert.Equal(t, 100*time.Millisecond, p.Delay(0))
}

func TestPolicy_DelayCapped(t *testing.T) {
	p := Policy{BaseDelay: time.Second, MaxDelay: 3 * time.Second}
	assert.Equal(t, 2*time.Second, p.Delay(2))
	assert.Equal(t, 3*time.Second, p.Delay(3))
	assert.Equal(t, 3*time.Second, p.Delay(30))
}

func TestPolicy_DelaySaturates(t *testing.T) {
	p := Policy{BaseDelay: time.Second}
	assert.Equal(t, time.Duration(math.MaxInt64), p.Delay(200))
	assert.Equal(t, time.Duration(math.MaxInt64), p.Delay(64))

	capped := Policy{BaseDelay: time.Second, MaxDelay: time.Minute}
	assert.Equal(t, time.Minute, capped.Delay(200))
}

func TestDo_SucceedsAfterFailures(t *testing.T) {
	calls := 0
	attempts, err := Do(context.Background(), fastPolicy(3), func(ctx context.Context, attempt int) error {
		calls++
		assert.Equal(t, calls, attempt)
		if attempt < 3 {
			return errFlaky
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, 3, calls)
}

func TestDo_GivesUp(t *testing.T) {
	var notified []int
	p := fastPolicy(3)
	p.Notify = func(attempt int, err error, wait time.Duration) {
		notified = append(notified, attempt)
		assert.ErrorIs(t, err, errFlaky)
	}

	attempts, err := Do(context.Background(), p, func(ctx context.Context, attempt int) error {
		return errFlaky
	})

	assert.ErrorIs(t, err, errFlaky)
	assert.Contains(t, err.Error(), "gave up after 3 attempts")
	assert.Equal(t, 3, attempts)
	assert.Equal(t, []int{1, 2}, notified)
}

func TestDo_PermanentStopsImmediately(t *testing.T) {
	attempts, err := Do(context.Background(), fastPolicy(5), func(ctx context.Context, attempt int) error {
		return Permanent(errFlaky)
	})

	assert.Equal(t, 1, attempts)
	assert.Same(t, errFlaky, err)
}

func TestDo_ZeroAttemptsRunsOnce(t *testing.T) {
	calls := 0
	attempts, err := Do(context.Background(), Policy{}, func(ctx context.Context, attempt int) error {
		calls++
		return errFlaky
	})

	assert.Error(t, err)
	assert.Equal(t, 1, attempts)
	assert.Equal(t, 1, calls)
}

func TestDo_ContextCancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := Policy{MaxAttempts: 3, BaseDelay: time.Hour}
	p.Notify = func(int, error, time.Duration) { cancel() }

	attempts, err := Do(ctx, p, func(ctx context.Context, attempt int) error {
		return errFlaky
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
}

func TestDoWithResult_ReturnsValue(t *testing.T) {
	got, attempts, err := DoWithResult(context.Background(), fastPolicy(2), func(ctx context.Context, attempt int) (string, error) {
		if attempt == 1 {
			return "", errFlaky
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 2, attempts)
}

func TestIsPermanent(t *testing.T) {
	assert.True(t, IsPermanent(Permanent(errFlaky)))
	assert.True(t, IsPermanent(context.Canceled))
	assert.False(t, IsPermanent(errFlaky))
	assert.Nil(t, Permanent(nil))
}
