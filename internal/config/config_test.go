package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestFromLookup_Defaults(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(nil))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "data/savebox.db", cfg.DBPath)
	assert.Equal(t, 1536, cfg.AIEmbeddingDims)
	assert.Equal(t, 300*time.Second, cfg.AIRequestTimeout)
	assert.Equal(t, 300*time.Second, cfg.HandlerTimeout)
	assert.Equal(t, int64(10<<20), cfg.MaxImageBytes)
	assert.Equal(t, "http://localhost:8080/auth/github/callback", cfg.GitHubCallbackURL)
	assert.False(t, cfg.GitHubEnabled())
}

func TestFromLookup_Overrides(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(map[string]string{
		"PORT":                    "9000",
		"DB_DRIVER":               "postgres",
		"DATABASE_URL":            "postgres://localhost/savebox",
		"AI_EMBEDDING_DIMENSIONS": "768",
		"AI_REQUEST_TIMEOUT":      "45s",
		"AI_RATE_PER_SECOND":      "0.5",
		"SECURE_COOKIES":          "true",
		"GITHUB_CLIENT_ID":        "id",
		"GITHUB_CLIENT_SECRET":    "secret",
	}))
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, 768, cfg.AIEmbeddingDims)
	assert.Equal(t, 45*time.Second, cfg.AIRequestTimeout)
	assert.InDelta(t, 0.5, cfg.AIRatePerSecond, 1e-9)
	assert.True(t, cfg.SecureCookies)
	assert.True(t, cfg.GitHubEnabled())
	assert.Equal(t, "http://localhost:9000/auth/github/callback", cfg.GitHubCallbackURL)
}

func TestFromLookup_MalformedValues(t *testing.T) {
	for key, raw := range map[string]string{
		"PORT":               "eighty",
		"AI_REQUEST_TIMEOUT": "5 minutes",
		"AI_RATE_PER_SECOND": "fast",
		"SECURE_COOKIES":     "maybe",
	} {
		t.Run(key, func(t *testing.T) {
			_, err := FromLookup(lookupFrom(map[string]string{key: raw}))
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg, err := FromLookup(lookupFrom(map[string]string{"JWT_SECRET": "0123456789abcdef"}))
		require.NoError(t, err)
		return cfg
	}

	assert.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"short secret", func(c *Config) { c.JWTSecret = "short" }, "JWT_SECRET"},
		{"postgres without url", func(c *Config) { c.DBDriver = "postgres" }, "DATABASE_URL"},
		{"unknown driver", func(c *Config) { c.DBDriver = "mysql" }, "DB_DRIVER"},
		{"bad port", func(c *Config) { c.Port = 70000 }, "PORT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_DotEnvDoesNotOverrideEnvironment(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("AI_CHAT_MODEL=from-file\nAI_VISION_MODEL=vision-from-file\n"), 0o600))

	t.Setenv("AI_CHAT_MODEL", "from-env")
	// Registers cleanup for the variable the file is about to set.
	t.Setenv("AI_VISION_MODEL", "")
	require.NoError(t, os.Unsetenv("AI_VISION_MODEL"))

	cfg, err := Load(envFile)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.AIChatModel)
	assert.Equal(t, "vision-from-file", cfg.AIVisionModel)
}

func TestLoad_MissingFileIsFine(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.env"))
	assert.NoError(t, err)
}
