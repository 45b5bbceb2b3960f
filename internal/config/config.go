// Package config provides configuration loading and validation for the API server.
// It uses koanf to merge environment variables with optional file overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration values for the API server.
type Config struct {
	// Server settings
	Port int    `koanf:"port"`
	Env  string `koanf:"env"`

	// Database (candidate and social graph storage). Optional: when empty
	// the server runs on in-memory stores, which is only useful for
	// development.
	DatabaseURL string `koanf:"database_url"`

	// Redis (interest profile cache). Optional: when empty profiles are
	// cached in process memory.
	RedisURL string `koanf:"redis_url"`

	// JWT Authentication
	JWTSecret string `koanf:"jwt_secret"`
	// JWTPreviousSecret is accepted during key rotation. Optional.
	JWTPreviousSecret string `koanf:"jwt_previous_secret"`

	// Feed tuning
	ProfileCacheTTL time.Duration `koanf:"profile_cache_ttl"`
	SignalTimeout   time.Duration `koanf:"signal_timeout"`
	// CalibrationPath points to a JSON file overriding scoring weights.
	// Optional: defaults are compiled in.
	CalibrationPath string `koanf:"calibration_path"`

	// MutationStreamURL is the websocket endpoint publishing follow, mute
	// and block events for profile cache invalidation. Optional.
	MutationStreamURL string `koanf:"mutation_stream_url"`

	// CORS
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`

	// Rate limiting (requests per minute)
	GlobalRateLimit int `koanf:"global_rate_limit"`
	FeedRateLimit   int `koanf:"feed_rate_limit"`

	// Tracing
	TracingEnabled bool   `koanf:"tracing_enabled"`
	OTLPEndpoint   string `koanf:"otlp_endpoint"`
}

// Configuration validation errors.
var (
	ErrMissingJWTSecret     = errors.New("JWT_SECRET is required")
	ErrInvalidPort          = errors.New("PORT must be a valid integer")
	ErrInvalidCacheTTL      = errors.New("PROFILE_CACHE_TTL must be > 0")
	ErrInvalidSignalTimeout = errors.New("SIGNAL_TIMEOUT must be > 0")
	ErrInvalidRateLimit     = errors.New("rate limits must be > 0")
)

// Default values for non-secret configuration.
const (
	DefaultPort            = 8080
	DefaultEnv             = "development"
	DefaultProfileCacheTTL = 5 * time.Minute
	DefaultSignalTimeout   = 2 * time.Second
	DefaultGlobalRateLimit = 100
	DefaultFeedRateLimit   = 60
)

// Load reads configuration from environment variables and an optional config file.
// Environment variables take precedence over file values.
// Returns the loaded config and a slice of validation errors (empty if valid).
// If a config file path is provided and the file cannot be loaded, an error is returned.
func Load(configFilePath string) (*Config, []error) {
	k := koanf.New(".")
	var loadErrs []error

	// Load from YAML file first if provided (lower precedence)
	if configFilePath != "" {
		if err := k.Load(file.Provider(configFilePath), yaml.Parser()); err != nil {
			return nil, []error{fmt.Errorf("failed to load config file %s: %w", configFilePath, err)}
		}
	}

	// Parse port from env, collecting error if invalid
	// Try FEED_PORT first, then PORT for backward compatibility
	port, portErr := getEnvIntOrDefaultMulti([]string{"FEED_PORT", "PORT"}, k.Int("port"), DefaultPort)
	if portErr != nil {
		loadErrs = append(loadErrs, portErr)
	}

	cacheTTL, ttlErr := getEnvDurationOrDefault("PROFILE_CACHE_TTL", k.Duration("profile_cache_ttl"), DefaultProfileCacheTTL)
	if ttlErr != nil {
		loadErrs = append(loadErrs, ttlErr)
	}

	signalTimeout, stErr := getEnvDurationOrDefault("SIGNAL_TIMEOUT", k.Duration("signal_timeout"), DefaultSignalTimeout)
	if stErr != nil {
		loadErrs = append(loadErrs, stErr)
	}

	globalLimit, glErr := getEnvIntOrDefault("GLOBAL_RATE_LIMIT", k.Int("global_rate_limit"), DefaultGlobalRateLimit)
	if glErr != nil {
		loadErrs = append(loadErrs, glErr)
	}

	feedLimit, flErr := getEnvIntOrDefault("FEED_RATE_LIMIT", k.Int("feed_rate_limit"), DefaultFeedRateLimit)
	if flErr != nil {
		loadErrs = append(loadErrs, flErr)
	}

	tracingEnabled := k.Bool("tracing_enabled")
	if val := os.Getenv("TRACING_ENABLED"); val != "" {
		// Env var takes precedence over file config
		switch strings.ToLower(val) {
		case "true", "1", "yes", "on":
			tracingEnabled = true
		case "false", "0", "no", "off":
			tracingEnabled = false
		}
	}

	// Build config struct, with env vars taking precedence over file values
	cfg := &Config{
		Port:               port,
		Env:                getEnvOrDefaultMulti([]string{"FEED_ENV", "ENV", "GO_ENV"}, k.String("env"), DefaultEnv),
		DatabaseURL:        getEnvOrKoanf("DATABASE_URL", k, "database_url"),
		RedisURL:           getEnvOrKoanf("REDIS_URL", k, "redis_url"),
		JWTSecret:          getEnvOrKoanf("JWT_SECRET", k, "jwt_secret"),
		JWTPreviousSecret:  getEnvOrKoanf("JWT_PREVIOUS_SECRET", k, "jwt_previous_secret"),
		ProfileCacheTTL:    cacheTTL,
		SignalTimeout:      signalTimeout,
		CalibrationPath:    getEnvOrKoanf("CALIBRATION_PATH", k, "calibration_path"),
		MutationStreamURL:  getEnvOrKoanf("MUTATION_STREAM_URL", k, "mutation_stream_url"),
		CORSAllowedOrigins: getEnvListOrKoanf("CORS_ALLOWED_ORIGINS", k, "cors_allowed_origins"),
		GlobalRateLimit:    globalLimit,
		FeedRateLimit:      feedLimit,
		TracingEnabled:     tracingEnabled,
		OTLPEndpoint:       getEnvOrKoanf("OTLP_ENDPOINT", k, "otlp_endpoint"),
	}

	// Validate and collect errors
	errs := cfg.Validate()
	errs = append(loadErrs, errs...)

	return cfg, errs
}

// getEnvOrKoanf returns the environment variable value if set, otherwise the koanf value.
func getEnvOrKoanf(envKey string, k *koanf.Koanf, koanfKey string) string {
	if val := os.Getenv(envKey); val != "" {
		return val
	}
	return k.String(koanfKey)
}

// getEnvListOrKoanf returns a comma-separated environment variable as a list
// if set, otherwise the koanf list value.
func getEnvListOrKoanf(envKey string, k *koanf.Koanf, koanfKey string) []string {
	if val := os.Getenv(envKey); val != "" {
		parts := strings.Split(val, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return k.Strings(koanfKey)
}

// getEnvOrDefaultMulti tries multiple environment variable keys in order.
// Returns the first non-empty value found, otherwise the koanf value, or default.
func getEnvOrDefaultMulti(envKeys []string, koanfVal string, defaultVal string) string {
	for _, key := range envKeys {
		if val := os.Getenv(key); val != "" {
			return val
		}
	}
	if koanfVal != "" {
		return koanfVal
	}
	return defaultVal
}

// getEnvIntOrDefault returns the environment variable as int if set, otherwise the koanf value, or default.
// Returns an error if the environment variable is set but cannot be parsed as an integer.
func getEnvIntOrDefault(envKey string, koanfVal int, defaultVal int) (int, error) {
	if val := os.Getenv(envKey); val != "" {
		i, err := strconv.Atoi(val)
		if err != nil {
			return 0, fmt.Errorf("%s must be a valid integer: %w", envKey, err)
		}
		return i, nil
	}
	if koanfVal != 0 {
		return koanfVal, nil
	}
	return defaultVal, nil
}

// getEnvIntOrDefaultMulti tries multiple environment variable keys in order.
// Returns the first valid integer value found, otherwise the koanf value, or default.
// Returns an error if any environment variable is set but cannot be parsed as an integer.
func getEnvIntOrDefaultMulti(envKeys []string, koanfVal int, defaultVal int) (int, error) {
	for _, key := range envKeys {
		if val := os.Getenv(key); val != "" {
			i, err := strconv.Atoi(val)
			if err != nil {
				return 0, fmt.Errorf("%s must be a valid integer: %w", key, ErrInvalidPort)
			}
			return i, nil
		}
	}
	if koanfVal != 0 {
		return koanfVal, nil
	}
	return defaultVal, nil
}

// getEnvDurationOrDefault returns the environment variable parsed as a
// duration if set, otherwise the koanf value, or default.
func getEnvDurationOrDefault(envKey string, koanfVal time.Duration, defaultVal time.Duration) (time.Duration, error) {
	if val := os.Getenv(envKey); val != "" {
		d, err := time.ParseDuration(val)
		if err != nil {
			return 0, fmt.Errorf("%s must be a valid duration: %w", envKey, err)
		}
		return d, nil
	}
	if koanfVal != 0 {
		return koanfVal, nil
	}
	return defaultVal, nil
}

// Validate checks that all required configuration values are present.
// Returns a slice of validation errors (empty if valid).
func (c *Config) Validate() []error {
	var errs []error

	if c.JWTSecret == "" {
		errs = append(errs, ErrMissingJWTSecret)
	}
	if c.ProfileCacheTTL <= 0 {
		errs = append(errs, ErrInvalidCacheTTL)
	}
	if c.SignalTimeout <= 0 {
		errs = append(errs, ErrInvalidSignalTimeout)
	}
	if c.GlobalRateLimit <= 0 || c.FeedRateLimit <= 0 {
		errs = append(errs, ErrInvalidRateLimit)
	}

	return errs
}

// LogSummary returns a summary of the configuration suitable for logging.
// All secrets are masked to prevent accidental exposure.
func (c *Config) LogSummary() map[string]string {
	return map[string]string{
		"port":                 fmt.Sprintf("%d", c.Port),
		"env":                  c.Env,
		"database_url":         maskDatabaseURL(c.DatabaseURL),
		"redis_url":            maskDatabaseURL(c.RedisURL),
		"jwt_secret":           maskSecret(c.JWTSecret),
		"jwt_previous_secret":  maskSecret(c.JWTPreviousSecret),
		"profile_cache_ttl":    c.ProfileCacheTTL.String(),
		"signal_timeout":       c.SignalTimeout.String(),
		"calibration_path":     c.CalibrationPath,
		"mutation_stream_url":  c.MutationStreamURL,
		"cors_allowed_origins": strings.Join(c.CORSAllowedOrigins, ","),
		"global_rate_limit":    fmt.Sprintf("%d", c.GlobalRateLimit),
		"feed_rate_limit":      fmt.Sprintf("%d", c.FeedRateLimit),
		"tracing_enabled":      fmt.Sprintf("%t", c.TracingEnabled),
		"otlp_endpoint":        c.OTLPEndpoint,
	}
}

// maskSecret masks a secret value, showing only the first 4 characters followed by ****
// If the secret is shorter than 8 characters, it's fully masked.
func maskSecret(s string) string {
	if s == "" {
		return "<not set>"
	}
	if len(s) < 8 {
		return "****"
	}
	return s[:4] + "****"
}

// maskDatabaseURL masks the password in a connection URL.
// Supports postgres://, postgresql:// and redis:// schemes.
func maskDatabaseURL(s string) string {
	if s == "" {
		return "<not set>"
	}

	// Look for password pattern: user:password@host
	// Simple approach: find :// and then mask between : and @
	schemeEnd := strings.Index(s, "://")
	if schemeEnd == -1 {
		return maskSecret(s)
	}

	rest := s[schemeEnd+3:]
	atIndex := strings.Index(rest, "@")
	if atIndex == -1 {
		return s // No credentials in URL
	}

	colonIndex := strings.Index(rest[:atIndex], ":")
	if colonIndex == -1 {
		return s // No password (only username)
	}

	// Reconstruct URL with masked password
	scheme := s[:schemeEnd+3]
	user := rest[:colonIndex]
	hostAndPath := rest[atIndex:]

	return scheme + user + ":****" + hostAndPath
}
