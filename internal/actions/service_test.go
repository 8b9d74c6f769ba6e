package actions

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietddude/autodash/internal/core/config"
	"github.com/vietddude/autodash/internal/core/domain"
	"github.com/vietddude/autodash/internal/infra/storage/memory"
)

func TestUptime(t *testing.T) {
	tests := []struct {
		name    string
		checker *fakeChecker
		ok      bool
		kind    domain.ErrorKind
		message string
		calls   int
	}{
		{"up", &fakeChecker{status: 200}, true, "", "🟢 https://example.com is UP (Status: 200)", 1},
		{"down", &fakeChecker{status: 503}, true, "", "🟠 https://example.com is DOWN (Status: 503)", 1},
		{
			"transport retried then recovers",
			&fakeChecker{status: 200, errs: []error{domain.NewError(domain.KindNetwork, "uptime", "request failed", errBoom)}},
			true, "", "🟢 https://example.com is UP (Status: 200)", 2,
		},
		{
			"transport fails",
			&fakeChecker{errs: []error{errBoom, errBoom, errBoom}},
			false, domain.KindNetwork, "🔴 https://example.com is DOWN (Error: boom)", 3,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(t, testConfig(), Deps{Uptime: tt.checker})

			res := svc.Uptime(context.Background(), "https://example.com")

			assert.Equal(t, tt.ok, res.OK)
			assert.Equal(t, tt.kind, res.Kind)
			assert.Equal(t, tt.message, res.Message)
			assert.Equal(t, tt.calls, tt.checker.calls)
		})
	}
}

func TestSendEmail(t *testing.T) {
	mailer := &fakeMailer{}
	svc, _ := newTestService(t, testConfig(), Deps{Mailer: mailer})

	res := svc.SendEmail(context.Background(), EmailRequest{To: " you@example.com ", Subject: "hi", Body: "hello"})

	require.True(t, res.OK, res.Message)
	assert.Equal(t, "Email sent successfully!", res.Message)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "you@example.com", mailer.sent[0].To)
	assert.NotEmpty(t, mailer.sent[0].MessageID)
}

func TestSendEmail_NeverRetried(t *testing.T) {
	mailer := &fakeMailer{err: errBoom}
	svc, sleeps := newTestService(t, testConfig(), Deps{Mailer: mailer})

	res := svc.SendEmail(context.Background(), EmailRequest{To: "you@example.com", Body: "hello"})

	assert.False(t, res.OK)
	assert.Equal(t, domain.KindNetwork, res.Kind)
	assert.Contains(t, res.Message, "Error sending email: boom.")
	assert.True(t, strings.HasSuffix(res.Message, "or ensure Less Secure App Access is enabled (for older setups)."))
	assert.Len(t, mailer.sent, 1)
	assert.Empty(t, sleeps.delays)
}

func TestSendEmail_Validation(t *testing.T) {
	cfg := testConfig()
	cfg.Mail.Password = ""
	mailer := &fakeMailer{}
	svc, _ := newTestService(t, cfg, Deps{Mailer: mailer})
	assert.Equal(t, MsgMailNotConfigured, svc.SendEmail(context.Background(), EmailRequest{To: "a@b.c", Body: "x"}).Message)

	svc, _ = newTestService(t, testConfig(), Deps{Mailer: mailer})
	res := svc.SendEmail(context.Background(), EmailRequest{To: "a@b.c"})
	assert.Equal(t, domain.KindInput, res.Kind)
	assert.Empty(t, mailer.sent)
}

func taskConfig() *config.AppConfig {
	cfg := testConfig()
	cfg.Scheduler.Tasks = []config.TaskConfig{
		{Name: "ping", Action: "uptime", URL: "https://status.example.com"},
		{Name: "daily-mail", Action: "email"},
	}
	return cfg
}

func TestRunTask(t *testing.T) {
	checker := &fakeChecker{status: 200}
	history := memory.NewRunRepo()
	svc, _ := newTestService(t, taskConfig(), Deps{Uptime: checker, History: history})

	res := svc.Execute(context.Background(), Request{Action: domain.ActionTask, Task: "ping", Trigger: TriggerUI})

	require.True(t, res.OK, res.Message)
	assert.Equal(t, "Task 'ping' executed successfully.", res.Message)
	require.Len(t, res.Nested, 1)
	assert.Equal(t, domain.ActionUptime, res.Nested[0].Action)
	assert.Equal(t, "🟢 https://status.example.com is UP (Status: 200)", res.Nested[0].Message)

	runs, err := history.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	triggers := map[domain.ActionName]string{}
	for _, r := range runs {
		triggers[r.Action] = r.Trigger
	}
	assert.Equal(t, TriggerTask, triggers[domain.ActionUptime])
	assert.Equal(t, TriggerUI, triggers[domain.ActionTask])
}

func TestRunTask_Failures(t *testing.T) {
	svc, _ := newTestService(t, taskConfig(), Deps{})

	res := svc.RunTask(context.Background(), "")
	assert.Equal(t, domain.KindInput, res.Kind)
	assert.Equal(t, "Please enter a task name to trigger.", res.Message)

	res = svc.RunTask(context.Background(), "nope")
	assert.Equal(t, domain.KindInput, res.Kind)
	assert.Equal(t, "Unknown task 'nope'.", res.Message)

	res = svc.RunTask(context.Background(), "daily-mail")
	assert.False(t, res.OK)
	assert.Equal(t, domain.KindConfig, res.Kind)
	assert.Contains(t, res.Message, "Task 'daily-mail' failed: ")
}

func TestTasksSorted(t *testing.T) {
	svc, _ := newTestService(t, taskConfig(), Deps{})
	tasks := svc.Tasks()
	require.Len(t, tasks, 2)
	assert.Equal(t, "daily-mail", tasks[0].Name)
	assert.Equal(t, "ping", tasks[1].Name)
}

func TestExecute_RecordsHistory(t *testing.T) {
	history := memory.NewRunRepo()
	svc, _ := newTestService(t, testConfig(), Deps{History: history})

	res := svc.Execute(context.Background(), Request{Action: domain.ActionBTCPrice, Trigger: TriggerCLI})

	assert.False(t, res.OK)
	assert.Equal(t, fixedNow, res.StartedAt)
	last, err := history.LastByAction(context.Background(), domain.ActionBTCPrice)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, "id-1", last.ID)
	assert.Equal(t, TriggerCLI, last.Trigger)
	assert.Equal(t, domain.KindConfig, last.Kind)
}

func TestExecute_UnknownAction(t *testing.T) {
	svc, _ := newTestService(t, testConfig(), Deps{})

	res := svc.Execute(context.Background(), Request{Action: "launch"})

	assert.False(t, res.OK)
	assert.Equal(t, domain.KindInput, res.Kind)
}

func TestKeyMessagesNameSampleConfigVariables(t *testing.T) {
	sample, err := os.ReadFile("../../config.example.yaml")
	require.NoError(t, err)

	for msg, env := range map[string]string{
		MsgWeatherKeyMissing: "OPENWEATHERMAP_API_KEY",
		MsgNewsKeyMissing:    "NEWSAPI_API_KEY",
		MsgLLMKeyMissing:     "GEMINI_API_KEY",
	} {
		assert.Contains(t, msg, env)
		assert.Contains(t, string(sample), "${"+env+"}")
	}
}
