package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/vietddude/autodash/internal/core/domain"
)

// Load reads configuration from a YAML file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes YAML configuration after expanding environment variables.
func Parse(data []byte) (*AppConfig, error) {
	var cfg AppConfig
	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a configuration with only defaults applied.
func Default() *AppConfig {
	var cfg AppConfig
	cfg.applyDefaults()
	return &cfg
}

func (c *AppConfig) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "127.0.0.1"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8501
	}
	if c.Server.Title == "" {
		c.Server.Title = "Personal Automation Dashboard"
	}
	c.Retry = c.Retry.Normalize()

	if c.Crypto.BTCURL == "" {
		c.Crypto.BTCURL = "https://api.coindesk.com/v1/bpi/currentprice/BTC.json"
	}
	if c.Crypto.ETHURL == "" {
		c.Crypto.ETHURL = "https://api.coingecko.com/api/v3/simple/price"
	}
	if c.Crypto.Timeout == 0 {
		c.Crypto.Timeout = 10 * time.Second
	}

	if c.Weather.URL == "" {
		c.Weather.URL = "http://api.openweathermap.org/data/2.5/weather"
	}
	if c.Weather.DefaultCity == "" {
		c.Weather.DefaultCity = "Nairobi"
	}
	if c.Weather.Units == "" {
		c.Weather.Units = "metric"
	}
	if c.Weather.Timeout == 0 {
		c.Weather.Timeout = 10 * time.Second
	}

	if c.News.URL == "" {
		c.News.URL = "https://newsapi.org/v2/top-headlines"
	}
	if c.News.DefaultQuery == "" {
		c.News.DefaultQuery = "AI"
	}
	if c.News.Language == "" {
		c.News.Language = "en"
	}
	if c.News.NumArticles == 0 {
		c.News.NumArticles = 3
	}
	if c.News.MaxInputLength == 0 {
		c.News.MaxInputLength = 5000
	}
	if c.News.Timeout == 0 {
		c.News.Timeout = 10 * time.Second
	}

	if c.LLM.Provider == "" {
		c.LLM.Provider = "gemini"
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "gemini-1.5-flash"
	}
	if c.LLM.Timeout == 0 {
		c.LLM.Timeout = 60 * time.Second
	}

	if c.PDF.MaxTextLength == 0 {
		c.PDF.MaxTextLength = 15000
	}
	if c.PDF.MaxUploadSize == 0 {
		c.PDF.MaxUploadSize = 32 << 20
	}

	if c.Uptime.DefaultURL == "" {
		c.Uptime.DefaultURL = "https://www.google.com"
	}
	if c.Uptime.Timeout == 0 {
		c.Uptime.Timeout = 5 * time.Second
	}

	if c.Backup.SourceDir == "" {
		c.Backup.SourceDir = "."
	}
	if c.Backup.OutputDir == "" {
		c.Backup.OutputDir = "temp_backups"
	}
	if c.Backup.DriveFolder == "" {
		c.Backup.DriveFolder = "Automated_Backups"
	}

	if c.Drive.ClientSecrets == "" {
		c.Drive.ClientSecrets = "client_secrets.json"
	}
	if c.Drive.TokenFile == "" {
		c.Drive.TokenFile = "creds.json"
	}
	if c.Drive.CallbackPort == 0 {
		c.Drive.CallbackPort = 8090
	}

	if c.Mail.Host == "" {
		c.Mail.Host = "smtp.gmail.com"
	}
	if c.Mail.Port == 0 {
		c.Mail.Port = 465
	}
	if c.Mail.Timeout == 0 {
		c.Mail.Timeout = 30 * time.Second
	}

	if c.Telemetry.CPUSampleInterval == 0 {
		c.Telemetry.CPUSampleInterval = time.Second
	}

	if c.Session.Backend == "" {
		c.Session.Backend = "memory"
	}
	if c.Session.Key == "" {
		c.Session.Key = "autodash:session"
	}

	if c.History.PageSize == 0 {
		c.History.PageSize = 20
	}
}

func (c *AppConfig) validate() error {
	switch c.Session.Backend {
	case "memory":
	case "redis":
		if c.Redis.URL == "" {
			return fmt.Errorf("session backend redis requires redis.url")
		}
	default:
		return fmt.Errorf("unknown session backend %q", c.Session.Backend)
	}

	switch c.LLM.Provider {
	case "gemini", "openai":
	default:
		return fmt.Errorf("unknown llm provider %q", c.LLM.Provider)
	}

	seen := make(map[string]bool, len(c.Scheduler.Tasks))
	for _, t := range c.Scheduler.Tasks {
		if t.Name == "" {
			return fmt.Errorf("scheduler task missing name")
		}
		if seen[t.Name] {
			return fmt.Errorf("duplicate scheduler task %q", t.Name)
		}
		seen[t.Name] = true
		if t.Interval < 0 {
			return fmt.Errorf("scheduler task %q has negative interval", t.Name)
		}
		action := domain.ActionName(t.Action)
		if !action.Valid() || action == domain.ActionTask {
			return fmt.Errorf("scheduler task %q has invalid action %q", t.Name, t.Action)
		}
	}
	return nil
}
