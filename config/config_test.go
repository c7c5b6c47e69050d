package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SONAR_API", "test-key")
	t.Setenv("APP_ENV", "development")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "https://api.perplexity.ai", cfg.LLM.BaseURL)
	assert.Equal(t, "sonar", cfg.LLM.ChatModel)
	assert.Equal(t, "sonar-deep-research", cfg.LLM.GenerationModel)
	assert.Equal(t, 15*time.Minute, cfg.Generation.StaleAfter)
	assert.Equal(t, 20, cfg.RateLimit.RequestsPerWindow)
	assert.Empty(t, cfg.Redis.Addr)
	assert.True(t, cfg.Database.AutoMigrate)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SONAR_API", "test-key")
	t.Setenv("PORT", "9090")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("GENERATION_STALE_AFTER", "30m")
	t.Setenv("LLM_RATE_PER_SEC", "2.5")
	t.Setenv("DB_MAX_CONNS", "not-a-number")
	t.Setenv("DB_AUTO_MIGRATE", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 30*time.Minute, cfg.Generation.StaleAfter)
	assert.InDelta(t, 2.5, cfg.LLM.RatePerSecond, 1e-9)
	assert.Equal(t, 10, cfg.Database.MaxConns)
	assert.False(t, cfg.Database.AutoMigrate)
}

func TestValidate(t *testing.T) {
	t.Run("requires api key", func(t *testing.T) {
		t.Setenv("SONAR_API", "")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("requires firebase in production", func(t *testing.T) {
		cfg := &Config{
			Server:   ServerConfig{Port: "8080"},
			Database: DatabaseConfig{Host: "localhost"},
			LLM:      LLMConfig{APIKey: "k"},
			App:      AppConfig{Environment: "production"},
		}
		assert.Error(t, cfg.Validate())

		cfg.Firebase.CredentialsPath = "/etc/firebase.json"
		assert.NoError(t, cfg.Validate())
	})

	t.Run("rate limit needs a window", func(t *testing.T) {
		cfg := &Config{
			Server:    ServerConfig{Port: "8080"},
			Database:  DatabaseConfig{Host: "localhost"},
			LLM:       LLMConfig{APIKey: "k"},
			RateLimit: RateLimitConfig{RequestsPerWindow: 5},
		}
		assert.Error(t, cfg.Validate())

		cfg.RateLimit.Window = time.Minute
		assert.NoError(t, cfg.Validate())
	})
}

func TestConnString(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5433, User: "u", Password: "p", Name: "gapmap"}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=gapmap sslmode=disable", d.ConnString())

	d.DSN = "postgres://u:p@db/gapmap"
	assert.Equal(t, "postgres://u:p@db/gapmap", d.ConnString())
}
