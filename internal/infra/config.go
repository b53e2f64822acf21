package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents application configuration loaded from an optional TOML
// file and environment variables. Environment values win over file values.
type Config struct {
	AppEnv      string `toml:"app_env"`
	Port        string `toml:"port"`
	DatabaseURL string `toml:"database_url"`
	JWTSecret   string `toml:"jwt_secret"`
	LogLevel    string `toml:"log_level"`

	MuxTokenID     string `toml:"mux_token_id"`
	MuxTokenSecret string `toml:"mux_token_secret"`
	MuxBaseURL     string `toml:"mux_base_url"`
	MuxCORSOrigin  string `toml:"mux_cors_origin"`

	PollAttempts     int   `toml:"ingest_poll_attempts"`
	PollIntervalMS   int   `toml:"ingest_poll_interval_ms"`
	MuxTimeoutSecs   int   `toml:"mux_request_timeout_seconds"`
	TransferTimeout  int   `toml:"transfer_timeout_seconds"`
	CleanupTimeout   int   `toml:"cleanup_timeout_seconds"`
	MaxUploadBytes   int64 `toml:"max_upload_bytes"`
	RateLimitPerMin  int   `toml:"rate_limit_per_minute"`
	HTTPReadSeconds  int   `toml:"http_read_timeout_seconds"`
	HTTPWriteSeconds int   `toml:"http_write_timeout_seconds"`
	HTTPIdleSeconds  int   `toml:"http_idle_timeout_seconds"`

	AllowedOrigins []string `toml:"cors_allowed_origins"`
	GeoIPDBPath    string   `toml:"geoip_db_path"`
	DefaultLocale  string   `toml:"default_locale"`
}

func defaultConfig() *Config {
	return &Config{
		AppEnv:           "development",
		Port:             "8080",
		LogLevel:         "",
		MuxBaseURL:       "https://api.mux.com",
		MuxCORSOrigin:    "*",
		PollAttempts:     30,
		PollIntervalMS:   1000,
		MuxTimeoutSecs:   30,
		TransferTimeout:  600,
		CleanupTimeout:   10,
		RateLimitPerMin:  30,
		HTTPReadSeconds:  15,
		HTTPWriteSeconds: 30,
		HTTPIdleSeconds:  60,
		AllowedOrigins:   []string{"*"},
		DefaultLocale:    "en",
	}
}

// LoadConfig loads configuration and applies defaults where needed. When
// CONFIG_FILE is set, the TOML file at that path provides the base values.
func LoadConfig() (*Config, error) {
	cfg := defaultConfig()

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := toml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.AppEnv = getEnv("APP_ENV", cfg.AppEnv)
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.MuxTokenID = getEnv("MUX_TOKEN_ID", cfg.MuxTokenID)
	cfg.MuxTokenSecret = getEnv("MUX_TOKEN_SECRET", cfg.MuxTokenSecret)
	cfg.MuxBaseURL = getEnv("MUX_BASE_URL", cfg.MuxBaseURL)
	cfg.MuxCORSOrigin = getEnv("MUX_CORS_ORIGIN", cfg.MuxCORSOrigin)
	cfg.PollAttempts = getEnvInt("INGEST_POLL_ATTEMPTS", cfg.PollAttempts)
	cfg.PollIntervalMS = getEnvInt("INGEST_POLL_INTERVAL_MS", cfg.PollIntervalMS)
	cfg.MuxTimeoutSecs = getEnvInt("MUX_REQUEST_TIMEOUT_SECONDS", cfg.MuxTimeoutSecs)
	cfg.TransferTimeout = getEnvInt("TRANSFER_TIMEOUT_SECONDS", cfg.TransferTimeout)
	cfg.CleanupTimeout = getEnvInt("CLEANUP_TIMEOUT_SECONDS", cfg.CleanupTimeout)
	cfg.MaxUploadBytes = int64(getEnvInt("MAX_UPLOAD_BYTES", int(cfg.MaxUploadBytes)))
	cfg.RateLimitPerMin = getEnvInt("RATE_LIMIT_PER_MINUTE", cfg.RateLimitPerMin)
	cfg.HTTPReadSeconds = getEnvInt("HTTP_READ_TIMEOUT_SECONDS", cfg.HTTPReadSeconds)
	cfg.HTTPWriteSeconds = getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", cfg.HTTPWriteSeconds)
	cfg.HTTPIdleSeconds = getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", cfg.HTTPIdleSeconds)
	cfg.GeoIPDBPath = getEnv("GEOIP_DB_PATH", cfg.GeoIPDBPath)
	cfg.DefaultLocale = getEnv("DEFAULT_LOCALE", cfg.DefaultLocale)
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); strings.TrimSpace(v) != "" {
		cfg.AllowedOrigins = splitList(v)
	}

	defaults := defaultConfig()
	if cfg.PollAttempts < 1 {
		cfg.PollAttempts = defaults.PollAttempts
	}
	if cfg.PollIntervalMS <= 0 {
		cfg.PollIntervalMS = defaults.PollIntervalMS
	}
	if cfg.CleanupTimeout <= 0 {
		cfg.CleanupTimeout = defaults.CleanupTimeout
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

// RequireAPISecrets validates the settings only the HTTP API needs.
func (c *Config) RequireAPISecrets() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	return nil
}

func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMS) * time.Millisecond
}

func (c *Config) MuxRequestTimeout() time.Duration {
	return time.Duration(c.MuxTimeoutSecs) * time.Second
}

func (c *Config) TransferTimeoutDuration() time.Duration {
	return time.Duration(c.TransferTimeout) * time.Second
}

func (c *Config) CleanupTimeoutDuration() time.Duration {
	return time.Duration(c.CleanupTimeout) * time.Second
}

func (c *Config) HTTPReadTimeout() time.Duration {
	return time.Duration(c.HTTPReadSeconds) * time.Second
}

func (c *Config) HTTPWriteTimeout() time.Duration {
	return time.Duration(c.HTTPWriteSeconds) * time.Second
}

func (c *Config) HTTPIdleTimeout() time.Duration {
	return time.Duration(c.HTTPIdleSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
