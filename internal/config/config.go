package config

import (
	"log/slog"

	"github.com/caarlos0/env/v10"
)

// Config holds runtime configuration shared by the gateway, worker and CLI.
type Config struct {
	// Server
	Port     int    `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Input limits
	MaxUploadSize int64 `env:"MAX_UPLOAD_SIZE" envDefault:"10485760"` // 10MB in bytes
	MaxTextBytes  int   `env:"MAX_TEXT_BYTES" envDefault:"65536"`

	// Normalizer
	Language      string `env:"NLP_LANGUAGE" envDefault:"english"`
	StopWordsPath string `env:"STOPWORDS_PATH"`
	LemmasPath    string `env:"LEMMAS_PATH"`
	Stem          bool   `env:"NLP_STEM" envDefault:"false"`
	Lemmatize     bool   `env:"NLP_LEMMATIZE" envDefault:"false"`

	// Store
	StoreProvider string `env:"STORE_PROVIDER" envDefault:"postgres"` // "postgres" or "memory"
	DBURL         string `env:"DB_URL"`

	// Queue
	QueueProvider string `env:"QUEUE_PROVIDER" envDefault:"nats"` // "nats" or "none"
	QueueURL      string `env:"QUEUE_URL"`

	// Cache
	CacheProvider string `env:"CACHE_PROVIDER" envDefault:"redis"` // "redis" or "none"
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	CacheTTL      int    `env:"CACHE_TTL" envDefault:"3600"` // seconds

	// Remote models
	LLMProvider     string `env:"LLM_PROVIDER" envDefault:"openai"` // "openai" or "none"
	OpenAIKey       string `env:"OPENAI_API_KEY"`
	LLMModel        string `env:"LLM_MODEL" envDefault:"gpt-4o-mini"`
	EmbeddingModel  string `env:"EMBEDDING_MODEL" envDefault:"text-embedding-3-small"`
	VisionModel     string `env:"VISION_MODEL" envDefault:"gpt-4o"`
	ImageModel      string `env:"IMAGE_MODEL" envDefault:"dall-e-3"`
	TranscribeModel string `env:"TRANSCRIBE_MODEL" envDefault:"whisper-1"`
}

// Load reads configuration from environment variables with defaults.
func Load() Config {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		slog.Warn("failed to parse env; using defaults where set", "err", err)
	}
	return cfg
}
