package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Keys     APIKeys
	Ai       AIConfig
	Rag      RagConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type APIKeys struct {
	GoogleGemini string
	Jina         string
	Reranker     string
	IngestTopic  string
}

type AIConfig struct {
	EmbeddingProvider string // "gemini" or "ollama"
	OllamaBaseURL     string
	OllamaModel       string
	RerankerBaseURL   string
	RerankerModel     string
	MetadataBaseURL   string
}

// RagConfig holds the retrieval defaults. Callers can override most of
// these per request; these are the values used when they don't.
type RagConfig struct {
	VectorWeight     float64
	MinScore         float64
	QualityFloor     float64
	PreRerankLimit   int
	Limit            int
	MaxPerSource     int
	RerankCandidates int
	CitationBoost    float64
	TokenBudget      int
	CompressionRatio float64
	CacheTTLSeconds  int
	CacheMaxEntries  int
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
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log.csv"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			GoogleGemini: getEnv("GOOGLE_GEMINI_API_KEY", ""),
			Jina:         getEnv("JINA_API_KEY", ""),
			Reranker:     getEnv("RERANKER_API_KEY", ""),
			IngestTopic:  getEnv("INGEST_SOURCE_TOPIC_NAME", "INGEST_SOURCE_CONTENT"),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "gemini"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			RerankerBaseURL:   getEnv("RERANKER_BASE_URL", "https://api.jina.ai/v1/rerank"),
			RerankerModel:     getEnv("RERANKER_MODEL", "jina-reranker-v2-base-multilingual"),
			MetadataBaseURL:   getEnv("METADATA_BASE_URL", "https://api.crossref.org"),
		},
		Rag: RagConfig{
			VectorWeight:     getEnvAsFloat("RAG_VECTOR_WEIGHT", 0.7),
			MinScore:         getEnvAsFloat("RAG_MIN_SCORE", 0.35),
			QualityFloor:     getEnvAsFloat("RAG_QUALITY_FLOOR", 0.5),
			PreRerankLimit:   getEnvAsInt("RAG_PRE_RERANK_LIMIT", 30),
			Limit:            getEnvAsInt("RAG_LIMIT", 10),
			MaxPerSource:     getEnvAsInt("RAG_MAX_PER_SOURCE", 3),
			RerankCandidates: getEnvAsInt("RAG_RERANK_CANDIDATES", 20),
			CitationBoost:    getEnvAsFloat("RAG_CITATION_BOOST", 0.1),
			TokenBudget:      getEnvAsInt("RAG_TOKEN_BUDGET", 3000),
			CompressionRatio: getEnvAsFloat("RAG_COMPRESSION_RATIO", 0.6),
			CacheTTLSeconds:  getEnvAsInt("RAG_CACHE_TTL_SECONDS", 300),
			CacheMaxEntries:  getEnvAsInt("RAG_CACHE_MAX_ENTRIES", 500),
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
