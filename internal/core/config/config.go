package config

import (
	"time"

	"github.com/vietddude/autodash/internal/core/retry"
	redisclient "github.com/vietddude/autodash/internal/infra/redis"
	"github.com/vietddude/autodash/internal/infra/storage/postgres"
)

// Placeholder values shipped in sample configs. A key equal to one of these is treated as unset.
const (
	PlaceholderWeatherKey = "YOUR_OPENWEATHERMAP_API_KEY"
	PlaceholderNewsKey    = "YOUR_NEWSAPI_ORG_API_KEY"
	PlaceholderGeminiKey  = "YOUR_GOOGLE_GEMINI_API_KEY"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server    ServerConfig       `yaml:"server"`
	Logging   LoggingConfig      `yaml:"logging"`
	Retry     retry.Policy       `yaml:"retry"`
	Crypto    CryptoConfig       `yaml:"crypto"`
	Weather   WeatherConfig      `yaml:"weather"`
	News      NewsConfig         `yaml:"news"`
	LLM       LLMConfig          `yaml:"llm"`
	PDF       PDFConfig          `yaml:"pdf"`
	Uptime    UptimeConfig       `yaml:"uptime"`
	Backup    BackupConfig       `yaml:"backup"`
	Drive     DriveConfig        `yaml:"drive"`
	Mail      MailConfig         `yaml:"mail"`
	Telemetry TelemetryConfig    `yaml:"telemetry"`
	Session   SessionConfig      `yaml:"session"`
	Redis     redisclient.Config `yaml:"redis"`
	Database  postgres.Config    `yaml:"database"`
	History   HistoryConfig      `yaml:"history"`
	Scheduler SchedulerConfig    `yaml:"scheduler"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host  string `yaml:"host"` // defaults to loopback
	Port  int    `yaml:"port"`
	Title string `yaml:"title"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// CryptoConfig holds the two price feed endpoints.
type CryptoConfig struct {
	BTCURL  string        `yaml:"btc_url"`
	ETHURL  string        `yaml:"eth_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// WeatherConfig holds OpenWeatherMap settings.
type WeatherConfig struct {
	URL         string        `yaml:"url"`
	APIKey      string        `yaml:"api_key"`
	DefaultCity string        `yaml:"default_city"`
	Units       string        `yaml:"units"`
	Timeout     time.Duration `yaml:"timeout"`
}

// NewsConfig holds NewsAPI settings.
type NewsConfig struct {
	URL            string        `yaml:"url"`
	APIKey         string        `yaml:"api_key"`
	DefaultQuery   string        `yaml:"default_query"`
	Language       string        `yaml:"language"`
	NumArticles    int           `yaml:"num_articles"`
	MaxInputLength int           `yaml:"max_input_length"`
	Timeout        time.Duration `yaml:"timeout"`
}

// LLMConfig selects and configures the summarization model.
type LLMConfig struct {
	Provider string        `yaml:"provider"` // gemini, openai
	APIKey   string        `yaml:"api_key"`
	Model    string        `yaml:"model"`
	BaseURL  string        `yaml:"base_url"` // openai-compatible endpoints only
	Timeout  time.Duration `yaml:"timeout"`
}

// PDFConfig holds document summarization settings.
type PDFConfig struct {
	MaxTextLength int   `yaml:"max_text_length"`
	MaxUploadSize int64 `yaml:"max_upload_size"`
}

// UptimeConfig holds website monitor settings.
type UptimeConfig struct {
	DefaultURL string        `yaml:"default_url"`
	Timeout    time.Duration `yaml:"timeout"`
}

// BackupConfig holds defaults for the backup form.
type BackupConfig struct {
	SourceDir   string `yaml:"source_dir"`
	OutputDir   string `yaml:"output_dir"`
	DriveFolder string `yaml:"drive_folder"`
}

// DriveConfig holds Google Drive OAuth settings.
type DriveConfig struct {
	Enabled       bool   `yaml:"enabled"`
	ClientSecrets string `yaml:"client_secrets"`
	TokenFile     string `yaml:"token_file"`
	CallbackPort  int    `yaml:"callback_port"`
}

// MailConfig holds SMTP settings.
type MailConfig struct {
	Host     string        `yaml:"host"`
	Port     int           `yaml:"port"`
	Username string        `yaml:"username"`
	Password string        `yaml:"password"`
	Timeout  time.Duration `yaml:"timeout"`
}

// TelemetryConfig holds machine report settings.
type TelemetryConfig struct {
	CPUSampleInterval time.Duration `yaml:"cpu_sample_interval"`
	DiskPath          string        `yaml:"disk_path"` // empty = working directory
}

// SessionConfig selects where dashboard state lives.
type SessionConfig struct {
	Backend string `yaml:"backend"` // memory, redis
	Key     string `yaml:"key"`
}

// HistoryConfig controls run history retention.
type HistoryConfig struct {
	Retention time.Duration `yaml:"retention"` // 0 = keep forever
	PageSize  int           `yaml:"page_size"`
}

// SchedulerConfig lists named tasks.
type SchedulerConfig struct {
	Tasks []TaskConfig `yaml:"tasks"`
}

// TaskConfig is a named task bound to an action. Interval 0 means trigger-only.
type TaskConfig struct {
	Name     string        `yaml:"name"`
	Action   string        `yaml:"action"`
	Interval time.Duration `yaml:"interval"`
	City     string        `yaml:"city"`
	URL      string        `yaml:"url"`
	Query    string        `yaml:"query"`
}

// IsUnset reports whether a credential is empty or still a placeholder.
func IsUnset(value, placeholder string) bool {
	return value == "" || value == placeholder
}
