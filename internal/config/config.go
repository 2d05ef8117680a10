package config

import (
	"os"
	"time"
)

type Config struct {
	DatabasePath    string
	CachePath       string
	Port            string
	Environment     string
	AllowedOrigins  string
	SessionDuration time.Duration

	MailgunDomain      string
	MailgunAPIKey      string
	MailgunSenderEmail string
	MailgunSenderName  string
	ModerationEmail    string

	OpenRouterAPIKey  string
	OpenRouterBaseURL string
	OpenRouterModel   string
	InterpretTimeout  time.Duration
}

func Load() *Config {
	cfg := &Config{
		DatabasePath:    getEnv("DATABASE_PATH", "tarologist.db"),
		CachePath:       getEnv("CACHE_PATH", "tarologist_cache.db"),
		Port:            getEnv("PORT", "8080"),
		Environment:     getEnv("ENVIRONMENT", "production"),
		AllowedOrigins:  getEnv("ALLOWED_ORIGINS", "http://localhost:8080"),
		SessionDuration: getDuration("SESSION_DURATION", 30*24*time.Hour),

		MailgunDomain:      os.Getenv("MAILGUN_DOMAIN"),
		MailgunAPIKey:      os.Getenv("MAILGUN_API_KEY"),
		MailgunSenderEmail: getEnv("MAILGUN_SENDER_EMAIL", "noreply@tarologist.app"),
		MailgunSenderName:  getEnv("MAILGUN_SENDER_NAME", "Tarologist"),
		ModerationEmail:    getEnv("MODERATION_EMAIL", "funnyzv@gmail.com"),

		OpenRouterAPIKey:  os.Getenv("OPENROUTER_API_KEY"),
		OpenRouterBaseURL: getEnv("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
		OpenRouterModel:   getEnv("OPENROUTER_MODEL", "qwen/qwen3-4b:free"),
		InterpretTimeout:  getDuration("INTERPRET_TIMEOUT", 30*time.Second),
	}
	return cfg
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
