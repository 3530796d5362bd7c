package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DSN      string
	RedisURL string
	Port     string

	// Generation provider (OpenAI-compatible chat completions API).
	// An empty GroqAPIKey is not fatal at startup; generation requests
	// fail with a server error until it is configured.
	GroqAPIKey      string
	GroqBaseURL     string
	GroqModel       string
	ProviderTimeout time.Duration

	// Rate limiting and free-tier quotas.
	RateLimitWindow time.Duration
	StandardLimit   int
	PremiumLimit    int
	FreeQuestionCap int
	MaxSourceLength int
}

func Load() *Config {
	// Local development convenience; missing .env is fine.
	_ = godotenv.Load()

	return &Config{
		DSN:      getEnv("DSN", "quizgod:quizgodpassword@tcp(localhost:3306)/quizgod?parseTime=true"),
		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379"),
		Port:     getEnv("PORT", "8080"),

		GroqAPIKey:      getEnv("GROQ_API_KEY", ""),
		GroqBaseURL:     getEnv("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
		GroqModel:       getEnv("GROQ_MODEL", "llama-3.3-70b-versatile"),
		ProviderTimeout: time.Duration(getEnvInt("PROVIDER_TIMEOUT_SECONDS", 60)) * time.Second,

		RateLimitWindow: time.Duration(getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60)) * time.Second,
		StandardLimit:   getEnvInt("RATE_LIMIT_STANDARD", 3),
		PremiumLimit:    getEnvInt("RATE_LIMIT_PREMIUM", 30),
		FreeQuestionCap: getEnvInt("FREE_QUESTION_CAP", 10),
		MaxSourceLength: getEnvInt("MAX_SOURCE_LENGTH", 15000),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
