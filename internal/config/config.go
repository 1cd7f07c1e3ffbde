package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config holds process configuration. Durations are stored in natural
// integer units so they round-trip cleanly through files and env vars.
type Config struct {
	Environment string `koanf:"environment"`
	LogLevel    string `koanf:"log_level"`
	Addr        string `koanf:"addr"`

	// Willy Weather provider
	WillyBaseURL       string `koanf:"willy_base_url"`
	HTTPTimeoutSeconds int    `koanf:"http_timeout_seconds"`
	MaxRetries         int    `koanf:"max_retries"`

	// Forecast scope
	LocationID   int `koanf:"location_id"`
	ForecastDays int `koanf:"forecast_days"`

	// Safety windows
	BufferBeforeMinutes int `koanf:"buffer_before_minutes"`
	BufferAfterMinutes  int `koanf:"buffer_after_minutes"`
	SafeMarginMinutes   int `koanf:"safe_margin_minutes"`
	NestingStartMonth   int `koanf:"nesting_start_month"`
	NestingStartDay     int `koanf:"nesting_start_day"`
	NestingEndMonth     int `koanf:"nesting_end_month"`
	NestingEndDay       int `koanf:"nesting_end_day"`

	// Forecast cache
	CacheSize       int `koanf:"cache_size"`
	CacheTTLMinutes int `koanf:"cache_ttl_minutes"`

	// Secrets and assets
	SecretsFile    string `koanf:"secrets_file"`
	AssetsBucket   string `koanf:"assets_bucket"`
	AssetsEndpoint string `koanf:"assets_endpoint"`
}

type Option func(*Config)

// WithEnvironment allows setting the environment
func WithEnvironment(environment string) Option {
	return func(c *Config) {
		c.Environment = environment
	}
}

// WithLogLevel allows setting the log level
func WithLogLevel(level string) Option {
	return func(c *Config) {
		c.LogLevel = level
	}
}

// WithAddr allows setting the HTTP listen address
func WithAddr(addr string) Option {
	return func(c *Config) {
		c.Addr = addr
	}
}

// WithLocation allows setting the Willy Weather location ID
func WithLocation(id int) Option {
	return func(c *Config) {
		c.LocationID = id
	}
}

// New creates a configuration with default values. The default location is
// Bongaree on Bribie Island.
func New(opts ...Option) *Config {
	cfg := &Config{
		Environment:         "production",
		LogLevel:            "info",
		Addr:                ":8080",
		WillyBaseURL:        "https://api.willyweather.com.au",
		HTTPTimeoutSeconds:  10,
		MaxRetries:          3,
		LocationID:          17924,
		ForecastDays:        5,
		BufferBeforeMinutes: 180,
		BufferAfterMinutes:  180,
		SafeMarginMinutes:   180,
		NestingStartMonth:   11,
		NestingStartDay:     1,
		NestingEndMonth:     3,
		NestingEndDay:       31,
		CacheSize:           64,
		CacheTTLMinutes:     23 * 60,
		SecretsFile:         "secrets.yaml",
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return cfg
}

// Load builds a Config by layering defaults, an optional YAML file, and env
// vars. Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if TIDES_CONFIG is set
//  3. env (prefix TIDES_), e.g. TIDES_LOG_LEVEL, TIDES_LOCATION_ID
func Load() (*Config, error) {
	cfg := *New()

	k := koanf.New(".")

	if path := os.Getenv("TIDES_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	envProvider := env.Provider("TIDES_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "tides_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, err
	}

	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, err
	}

	if cfg.Addr == "" {
		return nil, errors.New("addr must not be empty")
	}
	if cfg.LocationID <= 0 {
		return nil, errors.New("location_id must be set")
	}
	if cfg.ForecastDays < 1 || cfg.ForecastDays > 14 {
		return nil, errors.New("forecast_days must be between 1 and 14")
	}

	return &cfg, nil
}

func (c *Config) GetHTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}

func (c *Config) GetBufferBefore() time.Duration {
	return time.Duration(c.BufferBeforeMinutes) * time.Minute
}

func (c *Config) GetBufferAfter() time.Duration {
	return time.Duration(c.BufferAfterMinutes) * time.Minute
}

func (c *Config) GetSafeMargin() time.Duration {
	return time.Duration(c.SafeMarginMinutes) * time.Minute
}

func (c *Config) GetCacheTTL() time.Duration {
	return time.Duration(c.CacheTTLMinutes) * time.Minute
}

// InitializeLogging sets up the global zerolog logger based on the
// configuration.
func (c *Config) InitializeLogging() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	// Console-friendly output in local/dev, structured JSON elsewhere.
	if c.Environment == "local" || c.Environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	} else {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}
}
