package app

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/openai/openai-go/v3"

	"textprep/internal/cache"
	"textprep/internal/config"
	"textprep/internal/embeddings"
	"textprep/internal/llm"
	"textprep/internal/logger"
	"textprep/internal/media"
	"textprep/internal/normalizer"
	"textprep/internal/processor"
	"textprep/internal/queue"
	"textprep/internal/store"
)

// Deps bundles common runtime dependencies for services.
type Deps struct {
	Config    config.Config
	Log       *slog.Logger
	Processor *processor.Processor
	Store     store.Store
	Queue     queue.Queue
	Cache     cache.Cache
}

// Build loads env, config, and shared components.
func Build() (Deps, error) {
	if err := LoadEnv(); err != nil {
		return Deps{}, err
	}
	cfg := config.Load()
	log := logger.New(cfg.LogLevel)
	return BuildWith(cfg, log)
}

// LoadEnv reads a .env file from the working directory when one exists.
func LoadEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load environment variables: %w", err)
	}
	return nil
}

// BuildWith wires every component from an already loaded config.
func BuildWith(cfg config.Config, log *slog.Logger) (Deps, error) {
	norm, err := BuildNormalizer(cfg)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize normalizer: %w", err)
	}
	st, err := buildStore(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize store: %w", err)
	}
	q, err := buildQueue(cfg, log)
	if err != nil {
		return Deps{}, errors.Join(fmt.Errorf("failed to initialize queue: %w", err), closeAll(st))
	}
	c := buildCache(cfg, log)
	opts, err := buildRemote(cfg, log)
	if err != nil {
		return Deps{}, errors.Join(fmt.Errorf("failed to initialize remote models: %w", err), closeAll(st, q, c))
	}
	opts.Cache = c
	opts.CacheTTL = time.Duration(cfg.CacheTTL) * time.Second
	opts.Log = log

	return Deps{
		Config:    cfg,
		Log:       log,
		Processor: processor.New(norm, opts),
		Store:     st,
		Queue:     q,
		Cache:     c,
	}, nil
}

// Close releases the store, queue and cache connections.
func (d Deps) Close() error {
	return closeAll(d.Store, d.Queue, d.Cache)
}

func closeAll(closers ...io.Closer) error {
	var errs []error
	for _, c := range closers {
		if c == nil {
			continue
		}
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// BuildNormalizer loads the linguistic resources named by cfg.
func BuildNormalizer(cfg config.Config) (*normalizer.Normalizer, error) {
	return normalizer.New(normalizer.Config{
		Language:           cfg.Language,
		StopWordsPath:      cfg.StopWordsPath,
		LemmasPath:         cfg.LemmasPath,
		ApplyStemming:      cfg.Stem,
		ApplyLemmatization: cfg.Lemmatize,
	})
}

func buildStore(cfg config.Config, log *slog.Logger) (store.Store, error) {
	switch cfg.StoreProvider {
	case "postgres":
		if cfg.DBURL == "" {
			return nil, fmt.Errorf("DB_URL is required when STORE_PROVIDER=postgres")
		}
		db, err := store.NewPostgres(cfg.DBURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Postgres: %w", err)
		}
		log.Info("using Postgres store")
		return db, nil
	case "memory":
		log.Info("using in-memory store")
		return store.NewMemory(), nil
	default:
		return nil, fmt.Errorf("invalid STORE_PROVIDER: %s (valid options: postgres, memory)", cfg.StoreProvider)
	}
}

func buildQueue(cfg config.Config, log *slog.Logger) (queue.Queue, error) {
	switch cfg.QueueProvider {
	case "nats":
		if cfg.QueueURL == "" {
			return nil, fmt.Errorf("QUEUE_URL is required when QUEUE_PROVIDER=nats")
		}
		nc, err := nats.Connect(cfg.QueueURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to NATS: %w", err)
		}
		log.Info("using NATS queue")
		return queue.NewNATS(log, nc), nil
	case "none":
		log.Info("using in-process queue")
		return queue.NewLocal(log, 0), nil
	default:
		return nil, fmt.Errorf("invalid QUEUE_PROVIDER: %s (valid options: nats, none)", cfg.QueueProvider)
	}
}

// buildCache never fails: an unreachable Redis degrades to no caching.
func buildCache(cfg config.Config, log *slog.Logger) cache.Cache {
	switch cfg.CacheProvider {
	case "redis":
		c, err := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			log.Warn("redis unavailable; caching disabled", "addr", cfg.RedisAddr, "err", err)
			return cache.NewNoOpCache()
		}
		log.Info("using Redis cache", "addr", cfg.RedisAddr)
		return c
	case "none", "":
		return cache.NewNoOpCache()
	default:
		log.Warn("unknown CACHE_PROVIDER; caching disabled", "provider", cfg.CacheProvider)
		return cache.NewNoOpCache()
	}
}

func buildRemote(cfg config.Config, log *slog.Logger) (processor.Options, error) {
	switch cfg.LLMProvider {
	case "openai":
		if cfg.OpenAIKey == "" {
			return processor.Options{}, fmt.Errorf("OPENAI_API_KEY is required when LLM_PROVIDER=openai")
		}
		client, err := llm.NewOpenAIClient(cfg.OpenAIKey, openai.ChatModel(cfg.LLMModel))
		if err != nil {
			return processor.Options{}, fmt.Errorf("failed to initialize OpenAI client: %w", err)
		}
		embedder, err := embeddings.NewOpenAIEmbedder(cfg.OpenAIKey, openai.EmbeddingModel(cfg.EmbeddingModel))
		if err != nil {
			return processor.Options{}, fmt.Errorf("failed to initialize OpenAI embedder: %w", err)
		}
		studio, err := media.NewOpenAIStudio(cfg.OpenAIKey, media.Models{
			Vision:     cfg.VisionModel,
			Image:      cfg.ImageModel,
			Transcribe: cfg.TranscribeModel,
		})
		if err != nil {
			return processor.Options{}, fmt.Errorf("failed to initialize OpenAI media: %w", err)
		}
		log.Info("using OpenAI models", "chat", cfg.LLMModel, "embedding", cfg.EmbeddingModel)
		return processor.Options{LLM: client, Embedder: embedder, Studio: studio}, nil
	case "none":
		log.Info("remote models disabled")
		return processor.Options{}, nil
	default:
		return processor.Options{}, fmt.Errorf("invalid LLM_PROVIDER: %s (valid options: openai, none)", cfg.LLMProvider)
	}
}
