// Package config loads runtime configuration from environment variables,
// optionally seeded from a .env file.
package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/fpang/gemini-video-analyzer/internal/chat"
)

// DefaultMaxRequestBytes caps edge request bodies at 10 MiB.
const DefaultMaxRequestBytes = 10 << 20

// Config holds all runtime configuration parsed from environment variables.
type Config struct {
	APIKey string
	Model  string

	SharedSecret    string
	AllowedOrigins  []string
	PingInterval    time.Duration
	MaxRequestBytes int64
	Port            string

	ActivationTimeout time.Duration
	PollInterval      time.Duration
	Retry             chat.RetryPolicy

	SSMAPIKeyParam       string
	SSMSharedSecretParam string
}

// LoadDotEnv loads variables from path without overriding ones already set.
// A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	log.Debug().Str("file", path).Msg("Loaded environment file")
	return nil
}

// Load reads .env from the working directory, then the environment.
func Load() *Config {
	if err := LoadDotEnv(".env"); err != nil {
		log.Warn().Err(err).Msg("Failed to load .env file")
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() *Config {
	defaults := chat.DefaultRetryPolicy()
	fallbacks := defaults.FallbackModels
	if v, ok := os.LookupEnv("REMOTE_RETRY_FALLBACK_MODELS"); ok {
		fallbacks = splitAndTrim(v)
	}

	return &Config{
		APIKey: firstEnv("GOOGLE_API_KEY", "GEMINI_API_KEY"),
		Model:  getEnv("GEMINI_MODEL", chat.DefaultModelName),

		SharedSecret:    strings.TrimSpace(os.Getenv("SHARED_SECRET")),
		AllowedOrigins:  splitAndTrim(os.Getenv("ALLOWED_ORIGINS")),
		PingInterval:    getEnvDuration("PING_INTERVAL", 25*time.Second),
		MaxRequestBytes: getEnvInt64("MAX_REQUEST_BYTES", DefaultMaxRequestBytes),
		Port:            getEnv("PORT", "8080"),

		ActivationTimeout: getEnvDuration("FILE_ACTIVATION_TIMEOUT", chat.DefaultActivationTimeout),
		PollInterval:      getEnvPositiveDuration("FILE_ACTIVATION_POLL_INTERVAL", chat.DefaultPollInterval),
		Retry: chat.RetryPolicy{
			MaxAttemptsPerModel: getEnvInt("REMOTE_RETRY_MAX_ATTEMPTS", defaults.MaxAttemptsPerModel),
			InitialDelay:        getEnvDuration("REMOTE_RETRY_INITIAL_DELAY", defaults.InitialDelay),
			BackoffMultiplier:   getEnvFloat("REMOTE_RETRY_BACKOFF_MULTIPLIER", defaults.BackoffMultiplier),
			FallbackModels:      fallbacks,
			MaxElapsed:          getEnvDuration("REMOTE_RETRY_MAX_ELAPSED", 0),
		},

		SSMAPIKeyParam:       os.Getenv("SSM_API_KEY_PARAM"),
		SSMSharedSecretParam: os.Getenv("SSM_SHARED_SECRET_PARAM"),
	}
}

// ClientOptions translates the analysis settings into VideoClient options.
func (c *Config) ClientOptions() []chat.Option {
	return []chat.Option{
		chat.WithDefaultModel(c.Model),
		chat.WithRetryPolicy(c.Retry),
		chat.WithActivationTimeout(c.ActivationTimeout),
		chat.WithPollInterval(c.PollInterval),
	}
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
	}
	return ""
}

func getEnvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("Invalid integer, using default")
		return def
	}
	return i
}

func getEnvInt64(key string, def int64) int64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil || i <= 0 {
		log.Warn().Str("key", key).Str("value", v).Msg("Invalid size, using default")
		return def
	}
	return i
}

func getEnvFloat(key string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("Invalid number, using default")
		return def
	}
	return f
}

// getEnvDuration accepts a Go duration ("25s") or a bare number of milliseconds ("25000").
func getEnvDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := ParseDuration(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("Invalid duration, using default")
		return def
	}
	return d
}

// getEnvPositiveDuration is getEnvDuration for intervals that must be above zero.
func getEnvPositiveDuration(key string, def time.Duration) time.Duration {
	d := getEnvDuration(key, def)
	if d <= 0 {
		log.Warn().Str("key", key).Dur("value", d).Msg("Duration must be positive, using default")
		return def
	}
	return d
}

// ParseDuration parses a Go duration string or an integer millisecond count.
func ParseDuration(v string) (time.Duration, error) {
	if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	return time.ParseDuration(v)
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		pt := strings.TrimSpace(p)
		if pt != "" {
			res = append(res, pt)
		}
	}
	return res
}
