package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Firebase   FirebaseConfig
	LLM        LLMConfig
	Generation GenerationConfig
	RateLimit  RateLimitConfig
	App        AppConfig
}

type ServerConfig struct {
	Port           string
	AllowedOrigins []string
}

type DatabaseConfig struct {
	DSN      string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	MaxConns int
	MinConns int

	// AutoMigrate applies embedded migrations at startup.
	AutoMigrate bool
}

// RedisConfig is optional. An empty Addr disables Redis and the rate limiter
// falls back to an in-process limiter.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// FirebaseConfig is optional outside production. Without credentials the
// API trusts the X-User-Id header.
type FirebaseConfig struct {
	CredentialsPath string
	ProjectID       string
}

type LLMConfig struct {
	BaseURL             string
	APIKey              string
	ChatModel           string
	RecommendationModel string
	GenerationModel     string
	RatePerSecond       float64
}

type GenerationConfig struct {
	StaleAfter    time.Duration
	SweepSchedule string
}

type RateLimitConfig struct {
	RequestsPerWindow int
	Window            time.Duration
}

type AppConfig struct {
	Environment string
	LogLevel    string
	LogFormat   string
	Version     string
}

func Load() (*Config, error) {
	loadDotEnv()

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		},
		Database: LoadDatabase(),
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Firebase: FirebaseConfig{
			CredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
			ProjectID:       getEnv("FIREBASE_PROJECT_ID", ""),
		},
		LLM: LLMConfig{
			BaseURL:             getEnv("LLM_BASE_URL", "https://api.perplexity.ai"),
			APIKey:              getEnv("SONAR_API", ""),
			ChatModel:           getEnv("LLM_CHAT_MODEL", "sonar"),
			RecommendationModel: getEnv("LLM_RECOMMENDATION_MODEL", "sonar-reasoning-pro"),
			GenerationModel:     getEnv("LLM_GENERATION_MODEL", "sonar-deep-research"),
			RatePerSecond:       getEnvAsFloat("LLM_RATE_PER_SEC", 0),
		},
		Generation: GenerationConfig{
			StaleAfter:    getEnvAsDuration("GENERATION_STALE_AFTER", 15*time.Minute),
			SweepSchedule: getEnv("GENERATION_SWEEP_SCHEDULE", "0 * * * * *"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerWindow: getEnvAsInt("LLM_REQUESTS_PER_WINDOW", 20),
			Window:            getEnvAsDuration("LLM_RATE_WINDOW", time.Minute),
		},
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			LogFormat:   getEnv("LOG_FORMAT", "json"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.Database.DSN == "" && c.Database.Host == "" {
		return fmt.Errorf("DB_DSN or DB_HOST is required")
	}

	if c.LLM.APIKey == "" {
		return fmt.Errorf("SONAR_API is required")
	}

	if c.App.Environment == "production" && c.Firebase.CredentialsPath == "" {
		return fmt.Errorf("FIREBASE_CREDENTIALS_PATH is required in production")
	}

	if c.RateLimit.RequestsPerWindow < 0 {
		return fmt.Errorf("LLM_REQUESTS_PER_WINDOW must not be negative")
	}
	if c.RateLimit.RequestsPerWindow > 0 && c.RateLimit.Window <= 0 {
		return fmt.Errorf("LLM_RATE_WINDOW must be positive")
	}

	return nil
}

// LoadDatabase reads only the DB_* settings. Tools that touch the schema use
// it without needing the rest of the API configuration.
func LoadDatabase() DatabaseConfig {
	loadDotEnv()
	return DatabaseConfig{
		DSN:      getEnv("DB_DSN", ""),
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnvAsInt("DB_PORT", 5432),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "gapmap"),
		MaxConns: getEnvAsInt("DB_MAX_CONNS", 10),
		MinConns: getEnvAsInt("DB_MIN_CONNS", 2),

		AutoMigrate: getEnvAsBool("DB_AUTO_MIGRATE", true),
	}
}

var dotEnvOnce sync.Once

func loadDotEnv() {
	dotEnvOnce.Do(func() {
		// Load .env file if it exists (ignore error in production)
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found, using environment variables")
		}
	})
}

// ConnString returns DB_DSN when set, otherwise a key/value DSN built from the
// individual DB_* settings.
func (d DatabaseConfig) ConnString() string {
	if d.DSN != "" {
		return d.DSN
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		d.Host, d.Port, d.User, d.Password, d.Name,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid number for %s, using default: %g", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid boolean for %s, using default: %t", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid duration for %s, using default: %s", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
