package common

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"
)

// Config represents the application configuration
type Config struct {
	Environment      string                 `toml:"environment"` // "development" or "production"
	EnvFile          string                 `toml:"env_file"`    // Optional .env file with secrets (API tokens, SMTP password)
	Server           ServerConfig           `toml:"server"`
	Storage          StorageConfig          `toml:"storage"`
	Logging          LoggingConfig          `toml:"logging"`
	Quotes           QuotesConfig           `toml:"quotes"`
	Fetcher          FetcherConfig          `toml:"fetcher"`
	Onvista          OnvistaConfig          `toml:"onvista"`
	RatingBot        RatingBotConfig        `toml:"rating_bot"`
	QuarterlyChecker QuarterlyCheckerConfig `toml:"quarterly_checker"`
	Mail             MailConfig             `toml:"mail"`
}

type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level      string   `toml:"level"`       // "debug", "info", "warn", "error"
	Output     []string `toml:"output"`      // "stdout", "file"
	TimeFormat string   `toml:"time_format"` // Time format for logs (default: "15:04:05")
}

// QuotesConfig selects and configures the historical quote source
type QuotesConfig struct {
	Provider string       `toml:"provider"` // "eodhd" or "quandl"
	EODHD    EODHDConfig  `toml:"eodhd"`
	Quandl   QuandlConfig `toml:"quandl"`
}

type EODHDConfig struct {
	Token     string `toml:"token"`
	BaseURL   string `toml:"base_url"`
	RateLimit int    `toml:"rate_limit"` // Requests per second
}

type QuandlConfig struct {
	Token     string `toml:"token"`
	BaseURL   string `toml:"base_url"`
	RateLimit int    `toml:"rate_limit"`
}

// FetcherConfig configures the HTML fetcher
type FetcherConfig struct {
	UserAgent string        `toml:"user_agent"`
	Timeout   time.Duration `toml:"timeout"`
}

type OnvistaConfig struct {
	AssetSearchURL string `toml:"asset_search_url"` // Search value is appended
}

type RatingBotConfig struct {
	Enabled    bool   `toml:"enabled"`
	Schedule   string `toml:"schedule"`     // Cron schedule (5 fields)
	MaxPerTick int    `toml:"max_per_tick"` // Max refreshes per run
}

type QuarterlyCheckerConfig struct {
	Enabled  bool   `toml:"enabled"`
	Schedule string `toml:"schedule"`
}

// MailConfig configures outbound notification mail. An empty host logs
// notifications instead of sending them.
type MailConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	From     string `toml:"from"`
	FromName string `toml:"from_name"`
	To       string `toml:"to"`
	UseTLS   bool   `toml:"use_tls"`
}

// NewDefaultConfig creates a configuration with default values
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		EnvFile:     ".env",
		Server: ServerConfig{
			Port: 8080,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data/stockanalyzer",
			},
		},
		Logging: LoggingConfig{
			Level:      "info",
			Output:     []string{"stdout"},
			TimeFormat: "15:04:05",
		},
		Quotes: QuotesConfig{
			Provider: "eodhd",
			EODHD: EODHDConfig{
				BaseURL:   "https://eodhistoricaldata.com/api",
				RateLimit: 10,
			},
			Quandl: QuandlConfig{
				BaseURL:   "https://www.quandl.com/api/v3",
				RateLimit: 5,
			},
		},
		Fetcher: FetcherConfig{
			UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			Timeout:   30 * time.Second,
		},
		Onvista: OnvistaConfig{
			AssetSearchURL: "http://www.onvista.de/onvista/boxes/assetSearch.json?doSubmit=Suchen&portfolioName=&searchValue=",
		},
		RatingBot: RatingBotConfig{
			Enabled:    true,
			Schedule:   "*/10 8-20 * * *",
			MaxPerTick: 5,
		},
		QuarterlyChecker: QuarterlyCheckerConfig{
			Enabled:  true,
			Schedule: "0 6 * * *",
		},
		Mail: MailConfig{
			Port:     587,
			FromName: "Stock Analyzer",
			UseTLS:   true,
		},
	}
}

// LoadFromFile loads configuration with priority: default -> file -> env -> CLI
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files with priority: default -> file1 -> file2 -> ... -> .env -> env -> CLI
// Later files override earlier files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		// Unmarshal merges into the existing values
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	// .env only fills variables that are not already set in the process environment
	if config.EnvFile != "" {
		if err := godotenv.Load(config.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file %s: %w", config.EnvFile, err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("STOCKANALYZER_ENV"); env != "" {
		config.Environment = env
	}

	// Server configuration
	if port := os.Getenv("STOCKANALYZER_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("STOCKANALYZER_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	// Storage configuration
	if badgerPath := os.Getenv("STOCKANALYZER_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}

	// Logging configuration
	if level := os.Getenv("STOCKANALYZER_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("STOCKANALYZER_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if o = strings.TrimSpace(o); o != "" {
				outputs = append(outputs, o)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	// Quote sources
	if provider := os.Getenv("STOCKANALYZER_QUOTES_PROVIDER"); provider != "" {
		config.Quotes.Provider = provider
	}
	if token := os.Getenv("STOCKANALYZER_EODHD_TOKEN"); token != "" {
		config.Quotes.EODHD.Token = token
	}
	if token := os.Getenv("STOCKANALYZER_QUANDL_TOKEN"); token != "" {
		config.Quotes.Quandl.Token = token
	}

	// Mail
	if host := os.Getenv("STOCKANALYZER_MAIL_HOST"); host != "" {
		config.Mail.Host = host
	}
	if username := os.Getenv("STOCKANALYZER_MAIL_USERNAME"); username != "" {
		config.Mail.Username = username
	}
	if password := os.Getenv("STOCKANALYZER_MAIL_PASSWORD"); password != "" {
		config.Mail.Password = password
	}
	if to := os.Getenv("STOCKANALYZER_MAIL_TO"); to != "" {
		config.Mail.To = to
	}

	// Jobs
	if enabled := os.Getenv("STOCKANALYZER_RATING_BOT_ENABLED"); enabled != "" {
		if b, err := strconv.ParseBool(enabled); err == nil {
			config.RatingBot.Enabled = b
		}
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config
func ApplyFlagOverrides(config *Config, port int, host string) {
	// Command-line flags have highest priority
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// Validate checks values that would otherwise fail late at runtime
func (c *Config) Validate() error {
	switch c.Quotes.Provider {
	case "eodhd", "quandl":
	default:
		return fmt.Errorf("unknown quotes provider %q (expected eodhd or quandl)", c.Quotes.Provider)
	}

	if c.RatingBot.Enabled {
		if err := ValidateJobSchedule(c.RatingBot.Schedule); err != nil {
			return fmt.Errorf("rating_bot.schedule: %w", err)
		}
		if c.RatingBot.MaxPerTick <= 0 {
			return fmt.Errorf("rating_bot.max_per_tick must be positive")
		}
	}
	if c.QuarterlyChecker.Enabled {
		if err := ValidateJobSchedule(c.QuarterlyChecker.Schedule); err != nil {
			return fmt.Errorf("quarterly_checker.schedule: %w", err)
		}
	}
	return nil
}

// ValidateJobSchedule validates a cron schedule expression and ensures minimum 5-minute interval
func ValidateJobSchedule(schedule string) error {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}

	parts := strings.Fields(schedule)
	if len(parts) < 5 {
		return fmt.Errorf("invalid cron format: expected 5 fields")
	}

	minuteField := parts[0]

	if minuteField == "*" {
		return fmt.Errorf("schedule must have minimum 5-minute interval (every minute is not allowed)")
	}

	if strings.HasPrefix(minuteField, "*/") {
		interval, err := strconv.Atoi(strings.TrimPrefix(minuteField, "*/"))
		if err == nil && interval < 5 {
			return fmt.Errorf("schedule interval must be at least 5 minutes, got %d", interval)
		}
	}

	return nil
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
