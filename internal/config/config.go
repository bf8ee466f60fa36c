package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DateLayout is the layout used for start_date and end_date.
const DateLayout = "2006-01-02"

// Providers accepted in data_source.provider.
const (
	ProviderYahoo   = "yahoo"
	ProviderREST    = "rest"
	ProviderAlpaca  = "alpaca"
	ProviderPolygon = "polygon"
)

// Config holds all application configuration.
type Config struct {
	Symbol    string `yaml:"symbol"`
	StartDate string `yaml:"start_date"`
	EndDate   string `yaml:"end_date"` // empty means today
	Telegram  struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
		BaseURL  string `yaml:"base_url"`
		Polling  bool   `yaml:"polling"`
	} `yaml:"telegram"`
	DataSource struct {
		Provider  string `yaml:"provider"`
		BaseURL   string `yaml:"base_url"`
		APIKey    string `yaml:"api_key"`
		APISecret string `yaml:"api_secret"`
	} `yaml:"data_source"`
	Output struct {
		CSVPath string `yaml:"csv_path"`
	} `yaml:"output"`
	Server struct {
		Addr  string `yaml:"addr"`
		Debug bool   `yaml:"debug"`
	} `yaml:"server"`
	Schedule struct {
		RefreshCron string `yaml:"refresh_cron"`
		AlertCron   string `yaml:"alert_cron"`
	} `yaml:"schedule"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	overrides := []struct {
		env string
		dst *string
	}{
		{"SYMBOL", &cfg.Symbol},
		{"START_DATE", &cfg.StartDate},
		{"END_DATE", &cfg.EndDate},
		{"TELEGRAM_BOT_TOKEN", &cfg.Telegram.BotToken},
		{"TELEGRAM_CHAT_ID", &cfg.Telegram.ChatID},
		{"DATA_PROVIDER", &cfg.DataSource.Provider},
		{"DATA_BASE_URL", &cfg.DataSource.BaseURL},
		{"DATA_API_KEY", &cfg.DataSource.APIKey},
		{"DATA_API_SECRET", &cfg.DataSource.APISecret},
		{"CSV_PATH", &cfg.Output.CSVPath},
		{"SERVER_ADDR", &cfg.Server.Addr},
		{"CRON_REFRESH", &cfg.Schedule.RefreshCron},
		{"CRON_ALERT", &cfg.Schedule.AlertCron},
		{"HTTPS_PROXY", &cfg.Proxy},
	}
	for _, o := range overrides {
		if v := os.Getenv(o.env); v != "" {
			*o.dst = v
		}
	}
	if v := os.Getenv("TELEGRAM_POLLING"); v != "" {
		cfg.Telegram.Polling = v == "true" || v == "1"
	}

	// Defaults
	if cfg.Symbol == "" {
		cfg.Symbol = "TATAGOLD.NS"
	}
	if cfg.StartDate == "" {
		cfg.StartDate = "2020-01-01"
	}
	if cfg.Telegram.BaseURL == "" {
		cfg.Telegram.BaseURL = "https://api.telegram.org"
	}
	if cfg.DataSource.Provider == "" {
		cfg.DataSource.Provider = ProviderYahoo
	}
	cfg.DataSource.Provider = strings.ToLower(cfg.DataSource.Provider)
	if cfg.Output.CSVPath == "" {
		cfg.Output.CSVPath = "stock_data_with_indicators.csv"
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8501"
	}
	// An unset refresh_cron gets the default; "off" disables the task.
	if cfg.Schedule.RefreshCron == "" {
		cfg.Schedule.RefreshCron = "0 30 18 * * 1-5"
	}
	if strings.EqualFold(strings.TrimSpace(cfg.Schedule.RefreshCron), "off") {
		cfg.Schedule.RefreshCron = ""
	}

	return cfg, nil
}

// Validate checks that all required fields are set and consistent.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Symbol) == "" {
		return fmt.Errorf("symbol is required")
	}
	start, end, err := c.DateRange(time.Now())
	if err != nil {
		return err
	}
	if start.After(end) {
		return fmt.Errorf("start_date %s is after end_date %s", c.StartDate, end.Format(DateLayout))
	}
	switch c.DataSource.Provider {
	case ProviderYahoo:
	case ProviderREST:
		if c.DataSource.BaseURL == "" {
			return fmt.Errorf("data_source.base_url is required for provider %q", c.DataSource.Provider)
		}
	case ProviderAlpaca:
		if c.DataSource.APIKey == "" || c.DataSource.APISecret == "" {
			return fmt.Errorf("data_source.api_key and api_secret are required for provider %q", c.DataSource.Provider)
		}
	case ProviderPolygon:
		if c.DataSource.APIKey == "" {
			return fmt.Errorf("data_source.api_key is required for provider %q", c.DataSource.Provider)
		}
	default:
		return fmt.Errorf("unknown data_source.provider %q", c.DataSource.Provider)
	}
	return nil
}

// TelegramConfigured reports whether both Telegram credentials are present.
func (c *Config) TelegramConfigured() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// DateRange resolves the effective start and end dates. An empty end_date
// resolves to now's calendar day.
func (c *Config) DateRange(now time.Time) (start, end time.Time, err error) {
	start, err = time.Parse(DateLayout, c.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parse start_date: %w", err)
	}
	if c.EndDate == "" {
		y, m, d := now.Date()
		return start, time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	end, err = time.Parse(DateLayout, c.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parse end_date: %w", err)
	}
	return start, end, nil
}
