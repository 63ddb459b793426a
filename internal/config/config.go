// Package config loads the server configuration from the environment.
//
// Values come from real environment variables first; a .env file (if
// present) only fills in variables that are not already set, so a
// deployment can always override the file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every runtime setting of the server.
type Config struct {
	Port int

	DBDriver    string // "sqlite" or "postgres"
	DBPath      string // sqlite file
	DatabaseURL string // postgres DSN

	JWTSecret          string
	SecureCookies      bool
	GitHubClientID     string
	GitHubClientSecret string
	GitHubCallbackURL  string

	AIBaseURL        string
	AIAPIKey         string
	AIChatModel      string
	AIVisionModel    string
	AIEmbeddingModel string
	AIEmbeddingDims  int
	AIRequestTimeout time.Duration
	AIRatePerSecond  float64
	AIRateBurst      int
	HandlerTimeout   time.Duration
	MaxImageBytes    int64
	LogLevel         string
	LogFormat        string
}

// GitHubEnabled reports whether the GitHub sign-in bridge is configured.
func (c *Config) GitHubEnabled() bool {
	return c.GitHubClientID != "" && c.GitHubClientSecret != ""
}

// Load reads the given .env files (default ".env"; missing files are
// ignored) and then builds the Config from the process environment.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: reading %s: %w", f, err)
		}
	}
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from lookup, typically os.LookupEnv. Unset
// variables take their defaults; malformed numbers and durations are errors.
func FromLookup(lookup func(string) (string, bool)) (*Config, error) {
	p := parser{lookup: lookup}

	cfg := &Config{
		Port: p.int("PORT", 8080),

		DBDriver:    p.str("DB_DRIVER", "sqlite"),
		DBPath:      p.str("DB_PATH", "data/savebox.db"),
		DatabaseURL: p.str("DATABASE_URL", ""),

		JWTSecret:          p.str("JWT_SECRET", ""),
		SecureCookies:      p.bool("SECURE_COOKIES", false),
		GitHubClientID:     p.str("GITHUB_CLIENT_ID", ""),
		GitHubClientSecret: p.str("GITHUB_CLIENT_SECRET", ""),
		GitHubCallbackURL:  p.str("GITHUB_CALLBACK_URL", ""),

		AIBaseURL:        p.str("AI_BASE_URL", "https://api.openai.com/v1"),
		AIAPIKey:         p.str("AI_API_KEY", ""),
		AIChatModel:      p.str("AI_CHAT_MODEL", "gpt-4o-mini"),
		AIVisionModel:    p.str("AI_VISION_MODEL", "gpt-4o-mini"),
		AIEmbeddingModel: p.str("AI_EMBEDDING_MODEL", "text-embedding-3-small"),
		AIEmbeddingDims:  p.int("AI_EMBEDDING_DIMENSIONS", 1536),
		AIRequestTimeout: p.duration("AI_REQUEST_TIMEOUT", 300*time.Second),
		AIRatePerSecond:  p.float("AI_RATE_PER_SECOND", 5),
		AIRateBurst:      p.int("AI_RATE_BURST", 10),
		HandlerTimeout:   p.duration("HANDLER_TIMEOUT", 300*time.Second),
		MaxImageBytes:    int64(p.int("MAX_IMAGE_BYTES", 10<<20)),
		LogLevel:         p.str("LOG_LEVEL", "info"),
		LogFormat:        p.str("LOG_FORMAT", "text"),
	}
	if p.err != nil {
		return nil, p.err
	}

	if cfg.GitHubCallbackURL == "" {
		cfg.GitHubCallbackURL = fmt.Sprintf("http://localhost:%d/auth/github/callback", cfg.Port)
	}
	return cfg, nil
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	var errs []error

	if len(c.JWTSecret) < 16 {
		errs = append(errs, errors.New("JWT_SECRET must be set and at least 16 characters"))
	}
	switch c.DBDriver {
	case "sqlite":
		if c.DBPath == "" {
			errs = append(errs, errors.New("DB_PATH must be set for the sqlite driver"))
		}
	case "postgres":
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL must be set for the postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER %q is not one of sqlite, postgres", c.DBDriver))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT %d is out of range", c.Port))
	}
	if c.AIEmbeddingDims <= 0 {
		errs = append(errs, errors.New("AI_EMBEDDING_DIMENSIONS must be positive"))
	}
	if c.MaxImageBytes <= 0 {
		errs = append(errs, errors.New("MAX_IMAGE_BYTES must be positive"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// parser remembers the first conversion error so FromLookup can read every
// field in one expression.
type parser struct {
	lookup func(string) (string, bool)
	err    error
}

func (p *parser) str(key, def string) string {
	if v, ok := p.lookup(key); ok && v != "" {
		return v
	}
	return def
}

func (p *parser) int(key string, def int) int {
	raw := p.str(key, "")
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		p.fail(key, raw, err)
		return def
	}
	return n
}

func (p *parser) float(key string, def float64) float64 {
	raw := p.str(key, "")
	if raw == "" {
		return def
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		p.fail(key, raw, err)
		return def
	}
	return f
}

func (p *parser) bool(key string, def bool) bool {
	raw := p.str(key, "")
	if raw == "" {
		return def
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		p.fail(key, raw, err)
		return def
	}
	return b
}

func (p *parser) duration(key string, def time.Duration) time.Duration {
	raw := p.str(key, "")
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		p.fail(key, raw, err)
		return def
	}
	return d
}

func (p *parser) fail(key, raw string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("config: invalid %s=%q: %w", key, raw, err)
	}
}
