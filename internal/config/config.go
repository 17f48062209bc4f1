package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort      string        `env:"HTTP_PORT" envDefault:"8000"`
	DatabaseURL   string        `env:"DATABASE_URL,required"`
	DBAutoMigrate bool          `env:"DB_AUTO_MIGRATE" envDefault:"true"`
	LLMAPIKey     string        `env:"LLM_API_KEY,required"`
	LLMBaseURL    string        `env:"LLM_BASE_URL" envDefault:"https://api.openai.com/v1"`
	LLMModel      string        `env:"LLM_MODEL" envDefault:"gpt-4o-mini"`
	LLMTimeout    time.Duration `env:"LLM_TIMEOUT" envDefault:"30s"`
	SessionSecret string        `env:"SESSION_SECRET,required,notEmpty"`
	SessionCookie string        `env:"SESSION_COOKIE" envDefault:"mindful_sid"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	CookieSecure  bool          `env:"COOKIE_SECURE" envDefault:"false"`
	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	HistoryTTL    time.Duration `env:"HISTORY_TTL" envDefault:"0s"`
	LogFile       string        `env:"LOG_FILE"`
	CommunityPage int           `env:"COMMUNITY_PAGE_SIZE" envDefault:"10"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
