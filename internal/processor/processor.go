// Package processor composes the normalizer with the optional remote
// capabilities behind one facade used by the gateway, worker and CLI.
package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"textprep/internal/cache"
	"textprep/internal/embeddings"
	"textprep/internal/imageprep"
	"textprep/internal/llm"
	"textprep/internal/media"
	"textprep/internal/normalizer"
	"textprep/internal/prompt"
)

const defaultBatchLimit = 8

// Options wires the optional capabilities. Nil fields disable the matching
// operations, which then fail with llm.ErrNotConfigured.
type Options struct {
	LLM      llm.Client
	Embedder embeddings.Embedder
	Studio   media.Studio
	Cache    cache.Cache
	// CacheTTL applies to every cached remote result.
	CacheTTL   time.Duration
	BatchLimit int
	Log        *slog.Logger
}

type Processor struct {
	norm       *normalizer.Normalizer
	llm        llm.Client
	embedder   embeddings.Embedder
	studio     media.Studio
	cache      cache.Cache
	ttl        time.Duration
	batchLimit int
	log        *slog.Logger
}

func New(norm *normalizer.Normalizer, opts Options) *Processor {
	if opts.Cache == nil {
		opts.Cache = cache.NewNoOpCache()
	}
	if opts.BatchLimit <= 0 {
		opts.BatchLimit = defaultBatchLimit
	}
	if opts.Log == nil {
		opts.Log = slog.Default()
	}
	return &Processor{
		norm:       norm,
		llm:        opts.LLM,
		embedder:   opts.Embedder,
		studio:     opts.Studio,
		cache:      opts.Cache,
		ttl:        opts.CacheTTL,
		batchLimit: opts.BatchLimit,
		log:        opts.Log,
	}
}

func (p *Processor) Normalizer() *normalizer.Normalizer {
	return p.norm
}

// Tokenize normalizes text locally; it never touches the cache.
func (p *Processor) Tokenize(text string, stem, lemmatize bool) []string {
	return p.norm.Normalize(text, stem, lemmatize)
}

// TokenizeBatch normalizes texts concurrently. Result i belongs to texts[i].
func (p *Processor) TokenizeBatch(ctx context.Context, texts []string, stem, lemmatize bool) ([][]string, error) {
	out := make([][]string, len(texts))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.batchLimit)
	for i, text := range texts {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out[i] = p.norm.Normalize(text, stem, lemmatize)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *Processor) Translate(ctx context.Context, text, targetLang string) (string, error) {
	if p.llm == nil {
		return "", llm.ErrNotConfigured
	}
	key := cache.Key("translate", strings.ToLower(targetLang), text)
	return cached(ctx, p, key, func() (string, error) {
		return p.llm.Translate(ctx, text, targetLang)
	})
}

func (p *Processor) ExtractEntities(ctx context.Context, text string) ([]llm.Entity, error) {
	if p.llm == nil {
		return nil, llm.ErrNotConfigured
	}
	return cached(ctx, p, cache.Key("entities", text), func() ([]llm.Entity, error) {
		return p.llm.ExtractEntities(ctx, text)
	})
}

func (p *Processor) AnalyzeSentiment(ctx context.Context, text string) (llm.Sentiment, error) {
	if p.llm == nil {
		return llm.Sentiment{}, llm.ErrNotConfigured
	}
	return cached(ctx, p, cache.Key("sentiment", text), func() (llm.Sentiment, error) {
		return p.llm.AnalyzeSentiment(ctx, text)
	})
}

func (p *Processor) GenerateText(ctx context.Context, text string) (string, error) {
	if p.llm == nil {
		return "", llm.ErrNotConfigured
	}
	return cached(ctx, p, cache.Key("generate", text), func() (string, error) {
		return p.llm.Generate(ctx, text)
	})
}

func (p *Processor) Embed(ctx context.Context, text string) (embeddings.Vector, error) {
	if p.embedder == nil {
		return nil, llm.ErrNotConfigured
	}
	return cached(ctx, p, cache.Key("embed", text), func() (embeddings.Vector, error) {
		return p.embedder.Embed(ctx, text)
	})
}

// Chat continues a conversation. Replies are never cached.
func (p *Processor) Chat(ctx context.Context, history []llm.Message, input string) (string, error) {
	if p.llm == nil {
		return "", llm.ErrNotConfigured
	}
	return p.llm.Chat(ctx, history, input)
}

// GenerateImage sanitizes prompt before sending it to the image model.
func (p *Processor) GenerateImage(ctx context.Context, userPrompt, size string) ([]byte, error) {
	if p.studio == nil {
		return nil, llm.ErrNotConfigured
	}
	return p.studio.GenerateImage(ctx, prompt.Clean(userPrompt), size)
}

// DescribeImage squares and re-encodes data as PNG before analysis.
func (p *Processor) DescribeImage(ctx context.Context, data []byte, mode media.AnalysisMode) (string, error) {
	if p.studio == nil {
		return "", llm.ErrNotConfigured
	}
	png, err := imageprep.Prepare(data)
	if err != nil {
		return "", fmt.Errorf("prepare image: %w", err)
	}
	return p.studio.DescribeImage(ctx, png, mode)
}

func (p *Processor) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	if p.studio == nil {
		return "", llm.ErrNotConfigured
	}
	return p.studio.Transcribe(ctx, audio, filename)
}

// cached serves key from the cache or runs fn and stores its JSON result.
// Cache failures are logged and otherwise ignored.
func cached[T any](ctx context.Context, p *Processor, key string, fn func() (T, error)) (T, error) {
	if raw, ok, err := p.cache.Get(ctx, key); err != nil {
		p.log.Warn("cache get failed", "key", key, "err", err)
	} else if ok {
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			return v, nil
		}
		p.log.Warn("discarding undecodable cache entry", "key", key)
	}

	v, err := fn()
	if err != nil {
		return v, err
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return v, nil
	}
	if err := p.cache.Set(ctx, key, raw, p.ttl); err != nil {
		p.log.Warn("cache set failed", "key", key, "err", err)
	}
	return v, nil
}
