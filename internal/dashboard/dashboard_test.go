package dashboard

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietddude/autodash/internal/actions"
	"github.com/vietddude/autodash/internal/core/domain"
	"github.com/vietddude/autodash/internal/core/session"
)

type stubRunner struct {
	mu       sync.Mutex
	calls    []actions.Request
	results  map[domain.ActionName]domain.Result
	inFlight atomic.Int32
	maxSeen  atomic.Int32
	delay    time.Duration
}

func (s *stubRunner) Execute(_ context.Context, req actions.Request) domain.Result {
	n := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		m := s.maxSeen.Load()
		if n <= m || s.maxSeen.CompareAndSwap(m, n) {
			break
		}
	}
	if s.delay > 0 {
		time.Sleep(s.delay)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, req)
	if res, ok := s.results[req.Action]; ok {
		return res
	}
	return domain.Success(req.Action, "done")
}

func TestRun_UpdatesOwnedSlots(t *testing.T) {
	runner := &stubRunner{results: map[domain.ActionName]domain.Result{
		domain.ActionBTCPrice: domain.SuccessValue(domain.ActionBTCPrice, 67012.5, "ignored"),
		domain.ActionETHPrice: domain.SuccessValue(domain.ActionETHPrice, 3120, "ignored"),
	}}
	store := session.NewMemoryStore()
	d := New(runner, store)

	out, err := d.Run(context.Background(),
		actions.Request{Action: domain.ActionBTCPrice},
		actions.Request{Action: domain.ActionETHPrice},
	)
	require.NoError(t, err)
	require.Len(t, out.Results, 2)
	assert.Equal(t, "$67,012.50", out.State.BTCPrice)
	assert.Equal(t, "$3,120.00", out.State.ETHPrice)
	assert.False(t, out.State.UpdatedAt.IsZero())

	saved, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, out.State, saved)
}

func TestRun_FailureKeepsPreviousValue(t *testing.T) {
	runner := &stubRunner{results: map[domain.ActionName]domain.Result{
		domain.ActionWeather: domain.Failure(domain.ActionWeather, domain.KindConfig, "set your key"),
	}}
	d := New(runner, session.NewMemoryStore())

	out, err := d.Run(context.Background(), actions.Request{Action: domain.ActionWeather})
	require.NoError(t, err)
	assert.Equal(t, "No weather fetched yet.", out.State.WeatherReport)
	assert.True(t, out.State.UpdatedAt.IsZero())
	assert.Equal(t, "set your key", out.Results[0].Message)
}

func TestRun_AppliesNestedTaskResults(t *testing.T) {
	task := domain.Success(domain.ActionTask, "Task 'ping' executed successfully.")
	task.Nested = []domain.Result{domain.Success(domain.ActionUptime, "🟢 https://x is UP (Status: 200)")}
	runner := &stubRunner{results: map[domain.ActionName]domain.Result{domain.ActionTask: task}}
	d := New(runner, session.NewMemoryStore())

	out, err := d.Run(context.Background(), actions.Request{Action: domain.ActionTask, Task: "ping"})
	require.NoError(t, err)
	assert.Equal(t, "🟢 https://x is UP (Status: 200)", out.State.WebsiteStatus)
}

func TestRun_ValidationSkipsActions(t *testing.T) {
	tests := []struct {
		name string
		req  actions.Request
		want string
	}{
		{"email", actions.Request{Action: domain.ActionEmail, Email: actions.EmailRequest{To: "a@b.c"}}, "Please fill in recipient and message for the email."},
		{"pdf", actions.Request{Action: domain.ActionPDFSummary}, "Please upload a PDF file first."},
		{"task", actions.Request{Action: domain.ActionTask, Task: " "}, "Please enter a task name to trigger."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &stubRunner{}
			d := New(runner, session.NewMemoryStore())

			out, err := d.Run(context.Background(), tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.Warning)
			assert.Empty(t, runner.calls)
			assert.Equal(t, session.NewState(), out.State)
		})
	}
}

func TestRun_Serialized(t *testing.T) {
	runner := &stubRunner{delay: 5 * time.Millisecond}
	d := New(runner, session.NewMemoryStore())

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = d.Run(context.Background(), actions.Request{Action: domain.ActionMachineReport})
		}()
	}
	wg.Wait()

	assert.Len(t, runner.calls, 8)
	assert.Equal(t, int32(1), runner.maxSeen.Load())
}

func TestFormatUSD(t *testing.T) {
	assert.Equal(t, "$0.50", FormatUSD(0.5))
	assert.Equal(t, "$1,234,567.89", FormatUSD(1234567.891))
}
