package config

import (
	"log"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

type Config struct {
	HTTPPort     string        `env:"HTTP_PORT" env-default:"8080"`
	DatabasePath string        `env:"DATABASE_PATH" env-default:"longevity_snap.db"`
	JWTSecret    string        `env:"JWT_SECRET"`
	TokenTTL     time.Duration `env:"TOKEN_TTL" env-default:"60m"`

	LLMProvider   string `env:"LLM_PROVIDER" env-default:"openai"`
	OpenAIAPIKey  string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL"`
	OpenAIModel   string `env:"OPENAI_MODEL" env-default:"gpt-4o-mini"`
	GeminiAPIKey  string `env:"GEMINI_API_KEY"`
	GeminiModel   string `env:"GEMINI_MODEL" env-default:"gemini-2.0-flash"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" env-default:"0"`
}

var AppConfig Config

func LoadConfig() {
	err := godotenv.Load() // Load .env file if it exists
	if err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	AppConfig = Config{}
	if err := cleanenv.ReadEnv(&AppConfig); err != nil {
		log.Fatalf("failed to read environment config: %v", err)
	}

	if AppConfig.JWTSecret == "" {
		log.Fatal("JWT_SECRET environment variable is required")
	}

	if AppConfig.LLMProvider != ProviderOpenAI && AppConfig.LLMProvider != ProviderGemini {
		log.Fatalf("unknown LLM_PROVIDER %q (expected %q or %q)", AppConfig.LLMProvider, ProviderOpenAI, ProviderGemini)
	}
}

// CoachEnabled reports whether the health coach can reach an LLM: the
// selected provider must have an API key configured. Without one the coach
// endpoints are disabled rather than failing per request.
func (c Config) CoachEnabled() bool {
	switch c.LLMProvider {
	case ProviderGemini:
		return c.GeminiAPIKey != ""
	default:
		return c.OpenAIAPIKey != ""
	}
}
