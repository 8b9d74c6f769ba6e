package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietddude/autodash/internal/core/domain"
)

type recordingSleeper struct {
	delays []time.Duration
}

func (r *recordingSleeper) sleep(_ context.Context, d time.Duration) error {
	r.delays = append(r.delays, d)
	return nil
}

func TestDo_ExhaustsAndReturnsLastError(t *testing.T) {
	errs := []error{
		errors.New("first"),
		errors.New("second"),
		errors.New("third"),
	}
	var calls int
	rec := &recordingSleeper{}

	_, err := Do(context.Background(), Policy{MaxAttempts: 3, BaseDelay: time.Second},
		func(ctx context.Context) (float64, error) {
			e := errs[calls]
			calls++
			return 0, e
		}, WithSleeper(rec.sleep))

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Same(t, errs[2], err, "last error must be returned unchanged")
	assert.Equal(t, []time.Duration{1 * time.Second, 2 * time.Second}, rec.delays)
}

func TestDo_SucceedsOnAttemptK(t *testing.T) {
	tests := []struct {
		name      string
		succeedAt int
		wantSleep []time.Duration
	}{
		{"first attempt", 1, nil},
		{"second attempt", 2, []time.Duration{500 * time.Millisecond}},
		{"third attempt", 3, []time.Duration{500 * time.Millisecond, time.Second}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int
			rec := &recordingSleeper{}
			got, err := Do(context.Background(), Policy{MaxAttempts: 3, BaseDelay: 500 * time.Millisecond},
				func(ctx context.Context) (string, error) {
					calls++
					if calls < tt.succeedAt {
						return "", errors.New("transient")
					}
					return "ok", nil
				}, WithSleeper(rec.sleep))

			require.NoError(t, err)
			assert.Equal(t, "ok", got)
			assert.Equal(t, tt.succeedAt, calls)
			assert.Equal(t, tt.wantSleep, rec.delays)
		})
	}
}

func TestDo_PermanentErrorStopsImmediately(t *testing.T) {
	var calls int
	rec := &recordingSleeper{}
	cfgErr := domain.Errorf(domain.KindConfig, "weather", "missing key")

	err := Run(context.Background(), DefaultPolicy, func(ctx context.Context) error {
		calls++
		return cfgErr
	}, WithSleeper(rec.sleep))

	assert.Same(t, cfgErr, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, rec.delays)
}

func TestDo_ContextCancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls int

	_, err := Do(ctx, Policy{MaxAttempts: 5, BaseDelay: time.Hour},
		func(ctx context.Context) (int, error) {
			calls++
			cancel()
			return 0, errors.New("boom")
		})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestDo_OnRetryHook(t *testing.T) {
	var attempts []int
	rec := &recordingSleeper{}

	_ = Run(context.Background(), Policy{MaxAttempts: 3, BaseDelay: time.Millisecond},
		func(ctx context.Context) error { return errors.New("nope") },
		WithSleeper(rec.sleep),
		OnRetry(func(attempt int, delay time.Duration, err error) {
			attempts = append(attempts, attempt)
		}))

	assert.Equal(t, []int{1, 2}, attempts)
}

func TestPolicy_Normalize(t *testing.T) {
	p := Policy{}.Normalize()
	assert.Equal(t, DefaultPolicy, p)
	assert.Equal(t, 3*time.Second, DefaultPolicy.Backoff(3))
}
