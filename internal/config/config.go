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
	Ai       AIConfig
	Search   SearchConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	JwtSecret          string
	EmbedTopicName     string
}

type DatabaseConfig struct {
	Connection string
}

type AIConfig struct {
	EmbeddingProvider string // "gemini", "ollama" or "jina"
	GeminiAPIKey      string
	JinaAPIKey        string
	OllamaBaseURL     string
	OllamaModel       string
	EmbedTimeout      time.Duration
}

type SearchConfig struct {
	FtsWeight        float64
	SemanticWeight   float64
	ClassifyFloor    float64
	ClassifyTopK     int
	RecomputeEvery   time.Duration
	QueryCacheTTL    time.Duration
	RecomputeWorkers int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			JwtSecret:          getEnv("JWT_SECRET", ""),
			EmbedTopicName:     getEnv("EMBED_NOTE_CONTENT_TOPIC_NAME", "EMBED_NOTE_CONTENT"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "gemini"),
			GeminiAPIKey:      getEnv("GOOGLE_GEMINI_API_KEY", ""),
			JinaAPIKey:        getEnv("JINA_API_KEY", ""),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			EmbedTimeout:      getEnvAsDuration("EMBEDDING_TIMEOUT", 30*time.Second),
		},
		Search: SearchConfig{
			FtsWeight:        getEnvAsFloat("SEARCH_FTS_WEIGHT", 0.5),
			SemanticWeight:   getEnvAsFloat("SEARCH_SEMANTIC_WEIGHT", 0.5),
			ClassifyFloor:    getEnvAsFloat("CLASSIFY_MIN_SIMILARITY", 0.35),
			ClassifyTopK:     getEnvAsInt("CLASSIFY_TOP_K", 3),
			RecomputeEvery:   getEnvAsDuration("TOPIC_RECOMPUTE_INTERVAL", 15*time.Second),
			QueryCacheTTL:    getEnvAsDuration("QUERY_EMBEDDING_CACHE_TTL", 10*time.Minute),
			RecomputeWorkers: getEnvAsInt("TOPIC_RECOMPUTE_WORKERS", 4),
		},
	}
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

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
