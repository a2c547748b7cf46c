package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL  string
	AwsAccessKey string
	AwsSecretKey string
	AwsRegion    string
	BucketName   string
	AIAPIKey     string
	EmbedModel   string
	GenModel     string
	JWTSecret    string
	Port         string

	RateLimitRequests      int
	RateLimitWindowSeconds int

	ChunkSize    int
	ChunkOverlap int
	RAGTopK      int

	BatchWorkers   int
	BatchPageLimit int
}

// LoadConfig loads the environment variables and returns config.
// Process environment overrides .env, and .env overrides defaults.
func LoadConfig() *Config {

	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:  getEnv("DATABASE_URL", ""),
		AwsAccessKey: getEnv("AWS_ACCESS_KEY", ""),
		AwsSecretKey: getEnv("AWS_SECRET_KEY", ""),
		AwsRegion:    getEnv("AWS_REGION", "us-east-1"),
		BucketName:   getEnv("BUCKET_NAME", "docrag-documents"),
		AIAPIKey:     getEnv("GEMINI_API_KEY", ""),
		EmbedModel:   getEnv("EMBED_MODEL", "text-embedding-004"),
		GenModel:     getEnv("GEN_MODEL", "gemini-1.5-flash"),
		JWTSecret:    getEnv("JWT_SECRET", ""),
		Port:         getEnv("PORT", "8080"),

		RateLimitRequests:      getEnvInt("RATE_LIMIT_REQUESTS", 60),
		RateLimitWindowSeconds: getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60),

		ChunkSize:    getEnvInt("CHUNK_SIZE", 4000),
		ChunkOverlap: getEnvInt("CHUNK_OVERLAP", 200),
		RAGTopK:      getEnvInt("RAG_TOP_K", 10),

		BatchWorkers:   getEnvInt("BATCH_WORKERS", 4),
		BatchPageLimit: getEnvInt("BATCH_PAGE_LIMIT", 50),
	}

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL not set")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET not set")
	}

	return cfg
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("WARN: %s=%q not an int, using default %d", key, v, def)
		return def
	}
	return n
}
