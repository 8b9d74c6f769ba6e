package actions

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/vietddude/autodash/internal/core/config"
	"github.com/vietddude/autodash/internal/core/domain"
	"github.com/vietddude/autodash/internal/infra/drive"
	"github.com/vietddude/autodash/internal/infra/mail"
	"github.com/vietddude/autodash/internal/infra/storage/memory"
)

var fixedNow = time.Date(2024, 5, 17, 9, 30, 0, 0, time.UTC)

// fakeFetcher answers GetJSON by calling fn.
type fakeFetcher struct {
	mu    sync.Mutex
	calls int
	last  url.Values
	fn    func(call int, out any) error
}

func (f *fakeFetcher) GetJSON(_ context.Context, _ string, query url.Values, out any) error {
	f.mu.Lock()
	f.calls++
	call := f.calls
	f.last = query
	f.mu.Unlock()
	return f.fn(call, out)
}

func (f *fakeFetcher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeChecker struct {
	calls  int
	status int
	errs   []error
}

func (f *fakeChecker) Check(_ context.Context, _ string) (int, error) {
	f.calls++
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return 0, err
		}
	}
	return f.status, nil
}

type fakeSummarizer struct {
	inputs []string
	reply  string
	errs   []error
}

func (f *fakeSummarizer) Summarize(_ context.Context, _ string, text string) (string, error) {
	f.inputs = append(f.inputs, text)
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return "", err
		}
	}
	return f.reply, nil
}

func (f *fakeSummarizer) Name() string { return "fake" }

type fakeStorage struct {
	folders      map[string]string
	findCalls    int
	createCalls  int
	uploadErr    error
	uploadedPath string
	existedAtUp  bool
}

func (f *fakeStorage) FindFolder(_ context.Context, title string) (string, bool, error) {
	f.findCalls++
	id, ok := f.folders[title]
	return id, ok, nil
}

func (f *fakeStorage) CreateFolder(_ context.Context, title string) (string, error) {
	f.createCalls++
	if f.folders == nil {
		f.folders = map[string]string{}
	}
	f.folders[title] = "folder-" + title
	return f.folders[title], nil
}

func (f *fakeStorage) Upload(_ context.Context, _ string, localPath string) (drive.UploadedFile, error) {
	f.uploadedPath = localPath
	_, err := os.Stat(localPath)
	f.existedAtUp = err == nil
	if f.uploadErr != nil {
		return drive.UploadedFile{}, f.uploadErr
	}
	return drive.UploadedFile{ID: "file-1", Title: "uploaded.zip"}, nil
}

type fakeMailer struct {
	sent []mail.Message
	err  error
}

func (f *fakeMailer) Send(_ context.Context, msg mail.Message) error {
	f.sent = append(f.sent, msg)
	return f.err
}

type fakeTelemetry struct {
	ifaces []domain.NetInterface
	cpuErr error
}

func (f *fakeTelemetry) CPUPercent(context.Context, time.Duration) (float64, error) {
	return 12.34, f.cpuErr
}

func (f *fakeTelemetry) Memory(context.Context) (domain.MemoryStat, error) {
	return domain.MemoryStat{Total: 16 << 30, Used: 4 << 30, UsedPercent: 25}, nil
}

func (f *fakeTelemetry) Disk(_ context.Context, path string) (domain.DiskStat, error) {
	return domain.DiskStat{Path: path, Total: 100 << 30, Used: 50 << 30, UsedPercent: 50}, nil
}

func (f *fakeTelemetry) Interfaces(context.Context) ([]domain.NetInterface, error) {
	return f.ifaces, nil
}

func (f *fakeTelemetry) BootTime(context.Context) (time.Time, error) {
	return fixedNow.Add(-(26*time.Hour + 3*time.Minute + 4*time.Second)), nil
}

type fakeExtractor struct {
	pages []string
	err   error
}

func (f *fakeExtractor) ExtractPages([]byte) ([]string, error) {
	return f.pages, f.err
}

type recordedSleeps struct {
	delays []time.Duration
}

func (r *recordedSleeps) sleep(_ context.Context, d time.Duration) error {
	r.delays = append(r.delays, d)
	return nil
}

func testConfig() *config.AppConfig {
	cfg := config.Default()
	cfg.Weather.APIKey = "weather-key"
	cfg.News.APIKey = "news-key"
	cfg.LLM.APIKey = "llm-key"
	cfg.Mail.Username = "me@example.com"
	cfg.Mail.Password = "app-password"
	cfg.Telemetry.DiskPath = "/"
	return cfg
}

func newTestService(t *testing.T, cfg *config.AppConfig, deps Deps) (*Service, *recordedSleeps) {
	t.Helper()
	sleeps := &recordedSleeps{}
	deps.Now = func() time.Time { return fixedNow }
	deps.Sleep = sleeps.sleep
	if deps.History == nil {
		deps.History = memory.NewRunRepo()
	}
	ids := 0
	deps.NewID = func() string {
		ids++
		return fmt.Sprintf("id-%d", ids)
	}
	return NewService(cfg, deps), sleeps
}

var errBoom = errors.New("boom")
