package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Codec    CodecConfig
	Tracing  TracingConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	LiveLogFilePath    string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type CodecConfig struct {
	DocumentCacheTTL time.Duration
	RenderTopic      string // In-process topic for markdown rendering jobs
	MaxDocumentBytes int
	DefaultPageLimit int
	LiveEventDurable string
}

type TracingConfig struct {
	Enabled     bool
	Endpoint    string
	ServiceName string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			LiveLogFilePath:    getEnv("LIVE_LOG_FILE_PATH", "logs/live.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Codec: CodecConfig{
			DocumentCacheTTL: time.Duration(getEnvAsInt("DOCUMENT_CACHE_TTL_SECONDS", 600)) * time.Second,
			RenderTopic:      getEnv("RENDER_DOCUMENT_TOPIC_NAME", "RENDER_DOCUMENT"),
			MaxDocumentBytes: getEnvAsInt("MAX_DOCUMENT_BYTES", 10*1024*1024),
			DefaultPageLimit: getEnvAsInt("DEFAULT_PAGE_LIMIT", 20),
			LiveEventDurable: getEnv("LIVE_EVENT_DURABLE", "document-live-worker"),
		},
		Tracing: TracingConfig{
			Enabled:     getEnv("OTEL_ENABLED", "false") == "true",
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			ServiceName: getEnv("OTEL_SERVICE_NAME", "document-codec"),
		},
	}
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}
