package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/vaartalab/newsroom-backend/internal/platform/logger"
)

// Config is assembled once in main and handed down; nothing below main
// reads the environment directly.
type Config struct {
	Port    string
	LogMode string

	JWTSecret string

	Postgres PostgresConfig
	Redis    RedisConfig
	AI       AIConfig

	Composition CompositionConfig
	Progress    ProgressConfig

	Otel    OtelConfig
	Metrics MetricsConfig

	// Optional TTF for share-card rendering; empty falls back to the
	// built-in bitmap face.
	ShareCardFont string

	CORSOrigins []string
}

type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Addr    string
	Channel string
}

type AIConfig struct {
	// Comma-separated provider preference, e.g. "openai,gemini".
	ProviderOrder string

	OpenAIKey     string
	OpenAIBaseURL string
	OpenAIModel   string

	GeminiKey     string
	GeminiBaseURL string
	GeminiModel   string

	FallbackModel string
	Timeout       time.Duration
}

type CompositionConfig struct {
	WordFloor         int
	WordCeil          int
	DailyNewspaperCap int
	MaxFieldLen       int
}

type ProgressConfig struct {
	CompletionTimeMs    int64
	CompletionScrollPct int
}

type OtelConfig struct {
	Enabled     bool
	ServiceName string
	Environment string
	Version     string
	// OTLP-HTTP collector endpoint; empty falls back to stdout spans.
	Endpoint string
	// Comma-separated key=value pairs sent with every export.
	Headers      string
	Insecure     bool
	SamplerRatio float64
}

type MetricsConfig struct {
	Enabled bool
	// Scrape listener, separate from the API port.
	Addr string
}

func Load(log *logger.Logger) Config {
	return Config{
		Port:      GetEnv("PORT", "8080", log),
		LogMode:   GetEnv("LOG_MODE", "development", log),
		JWTSecret: GetEnv("JWT_SECRET_KEY", "defaultsecret", log),
		Postgres: PostgresConfig{
			Host:     GetEnv("POSTGRES_HOST", "localhost", log),
			Port:     GetEnv("POSTGRES_PORT", "5432", log),
			User:     GetEnv("POSTGRES_USER", "postgres", log),
			Password: GetEnv("POSTGRES_PASSWORD", "postgres", log),
			DBName:   GetEnv("POSTGRES_DB", "newsroom", log),
			SSLMode:  GetEnv("POSTGRES_SSLMODE", "disable", log),
		},
		Redis: RedisConfig{
			Addr:    GetEnv("REDIS_ADDR", "", log),
			Channel: GetEnv("REDIS_CHANNEL", "newsroom-events", log),
		},
		AI: AIConfig{
			ProviderOrder: GetEnv("AI_PROVIDER_ORDER", "openai,gemini", log),
			OpenAIKey:     GetEnv("OPENAI_API_KEY", "", log),
			OpenAIBaseURL: GetEnv("OPENAI_BASE_URL", "https://api.openai.com/v1", log),
			OpenAIModel:   GetEnv("OPENAI_MODEL", "gpt-4o-mini", log),
			GeminiKey:     GetEnv("GEMINI_API_KEY", "", log),
			GeminiBaseURL: GetEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta/openai", log),
			GeminiModel:   GetEnv("GEMINI_MODEL", "gemini-2.0-flash", log),
			FallbackModel: GetEnv("AI_FALLBACK_MODEL", "gpt-4o-mini", log),
			Timeout:       time.Duration(GetEnvAsInt("AI_TIMEOUT_SECONDS", 90, log)) * time.Second,
		},
		Composition: CompositionConfig{
			WordFloor:         GetEnvAsInt("COMPOSE_WORD_FLOOR", 600, log),
			WordCeil:          GetEnvAsInt("COMPOSE_WORD_CEIL", 1200, log),
			DailyNewspaperCap: GetEnvAsInt("DAILY_NEWSPAPER_CAP", 2, log),
			MaxFieldLen:       GetEnvAsInt("COMPOSE_MAX_FIELD_LEN", 4000, log),
		},
		Progress: ProgressConfig{
			CompletionTimeMs:    int64(GetEnvAsInt("READ_COMPLETION_TIME_MS", 30000, log)),
			CompletionScrollPct: GetEnvAsInt("READ_COMPLETION_SCROLL_PCT", 80, log),
		},
		Otel: OtelConfig{
			Enabled:      GetEnvAsBool("OTEL_ENABLED", false, log),
			ServiceName:  GetEnv("OTEL_SERVICE_NAME", "newsroom-backend", log),
			Environment:  GetEnv("OTEL_ENVIRONMENT", "development", log),
			Version:      GetEnv("SERVICE_VERSION", "", log),
			Endpoint:     GetEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "", log),
			Headers:      GetEnv("OTEL_EXPORTER_OTLP_HEADERS", "", log),
			Insecure:     GetEnvAsBool("OTEL_EXPORTER_OTLP_INSECURE", false, log),
			SamplerRatio: GetEnvAsFloat("OTEL_SAMPLER_RATIO", 0.1, log),
		},
		Metrics: MetricsConfig{
			Enabled: GetEnvAsBool("METRICS_ENABLED", false, log),
			Addr:    GetEnv("METRICS_ADDR", ":9091", log),
		},
		ShareCardFont: GetEnv("SHARECARD_FONT", "", log),
		CORSOrigins:   splitList(GetEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173", log)),
	}
}

func GetEnv(key, defaultVal string, log *logger.Logger) string {
	if value, exists := os.LookupEnv(key); exists && strings.TrimSpace(value) != "" {
		return value
	}
	if log != nil {
		log.Debug("Env var not set, using default", "key", key, "default", defaultVal)
	}
	return defaultVal
}

func GetEnvAsInt(key string, defaultVal int, log *logger.Logger) int {
	raw, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(raw) == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		if log != nil {
			log.Warn("Env var not an int, using default", "key", key, "value", raw, "default", defaultVal)
		}
		return defaultVal
	}
	return n
}

func GetEnvAsBool(key string, defaultVal bool, log *logger.Logger) bool {
	raw, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(raw) == "" {
		return defaultVal
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	if log != nil {
		log.Warn("Env var not a bool, using default", "key", key, "value", raw, "default", defaultVal)
	}
	return defaultVal
}

func GetEnvAsFloat(key string, defaultVal float64, log *logger.Logger) float64 {
	raw, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(raw) == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		if log != nil {
			log.Warn("Env var not a float, using default", "key", key, "value", raw, "default", defaultVal)
		}
		return defaultVal
	}
	return f
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}
