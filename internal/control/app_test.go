package control

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietddude/autodash/internal/core/config"
	"github.com/vietddude/autodash/internal/core/domain"
)

func testConfig(t *testing.T, target string) *config.AppConfig {
	t.Helper()
	cfg := config.Default()
	cfg.Server.Port = 0
	cfg.Scheduler.Tasks = []config.TaskConfig{
		{Name: "ping", Action: string(domain.ActionUptime), URL: target},
	}
	return cfg
}

func TestApp_TriggerTaskUpdatesSession(t *testing.T) {
	site := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer site.Close()

	app, err := New(context.Background(), testConfig(t, site.URL))
	require.NoError(t, err)
	defer app.Close()

	require.NoError(t, app.triggerTask(context.Background(), "ping"))

	state, err := app.Dashboard().State(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "🟢 "+site.URL+" is UP (Status: 200)", state.WebsiteStatus)

	runs, err := app.History().Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestApp_TriggerUnknownTask(t *testing.T) {
	app, err := New(context.Background(), testConfig(t, "http://127.0.0.1:1"))
	require.NoError(t, err)
	defer app.Close()

	err = app.triggerTask(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unknown task 'missing'.")
}

func TestApp_Lifecycle(t *testing.T) {
	app, err := New(context.Background(), testConfig(t, "http://127.0.0.1:1"))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	require.NoError(t, app.Start(ctx))
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, app.Stop(ctx))
}
