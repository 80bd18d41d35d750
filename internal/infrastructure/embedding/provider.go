// Package embedding produces vector embeddings for clause and question text.
// Embeddings are best-effort everywhere in the engine: a provider never
// returns an error, it returns absent vectors, and callers fall back to
// lexical matching.
package embedding

import (
	"context"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/clauselens/clauselens/internal/config"
	"github.com/clauselens/clauselens/internal/infrastructure/monitoring/logging"
	"github.com/clauselens/clauselens/pkg/errors"
)

// Provider computes embedding vectors.  EmbedBatch returns one entry per
// input text, in input order; an entry is nil when that text could not be
// embedded.  Implementations must be safe for concurrent use.
type Provider interface {
	EmbedBatch(ctx context.Context, texts []string) [][]float64
	EmbedOne(ctx context.Context, text string) []float64
	Model() string
}

// NewProvider builds the provider stack from configuration: disabled
// embedding yields the null provider, otherwise the OpenAI-compatible
// provider, wrapped in the cache layer when a vector store is supplied and
// caching is enabled.
func NewProvider(cfg config.EmbeddingConfig, store VectorStore, log logging.Logger) Provider {
	if !cfg.Enabled {
		return NewNullProvider()
	}
	p := NewOpenAIProvider(cfg, log)
	if cfg.CacheEnabled && store != nil {
		return NewCachedProvider(p, store, log)
	}
	return p
}

// ─────────────────────────────────────────────────────────────────────────────
// OpenAI-compatible provider
// ─────────────────────────────────────────────────────────────────────────────

type openaiProvider struct {
	client       *openai.Client
	model        string
	batchTimeout time.Duration
	logger       logging.Logger
}

// NewOpenAIProvider constructs a provider backed by the OpenAI embeddings
// API or any endpoint speaking the same protocol via BaseURL.
func NewOpenAIProvider(cfg config.EmbeddingConfig, log logging.Logger) Provider {
	if log == nil {
		log = logging.NewNopLogger()
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &openaiProvider{
		client:       openai.NewClientWithConfig(clientConfig),
		model:        cfg.Model,
		batchTimeout: cfg.BatchTimeout,
		logger:       log.Named("embedding"),
	}
}

func (p *openaiProvider) Model() string {
	return p.model
}

// EmbedBatch embeds all texts in one API call.  Any failure — transport,
// API, short response — degrades to all-nil vectors for the batch.
func (p *openaiProvider) EmbedBatch(ctx context.Context, texts []string) [][]float64 {
	vectors := make([][]float64, len(texts))
	if len(texts) == 0 {
		return vectors
	}

	if p.batchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.batchTimeout)
		defer cancel()
	}

	resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(p.model),
	})
	if err != nil {
		p.logger.Warn("embedding batch failed, continuing without vectors",
			logging.String("code", errors.ErrCodeEmbeddingUnavailable.String()),
			logging.Int("batch_size", len(texts)),
			logging.Err(err))
		return vectors
	}

	for _, item := range resp.Data {
		if item.Index < 0 || item.Index >= len(vectors) {
			continue
		}
		vec := make([]float64, len(item.Embedding))
		for i, v := range item.Embedding {
			vec[i] = float64(v)
		}
		vectors[item.Index] = vec
	}
	return vectors
}

func (p *openaiProvider) EmbedOne(ctx context.Context, text string) []float64 {
	return p.EmbedBatch(ctx, []string{text})[0]
}

// ─────────────────────────────────────────────────────────────────────────────
// Null provider
// ─────────────────────────────────────────────────────────────────────────────

type nullProvider struct{}

// NewNullProvider returns a provider that embeds nothing.  It backs the
// lexical-only operating mode.
func NewNullProvider() Provider {
	return nullProvider{}
}

func (nullProvider) Model() string { return "" }

func (nullProvider) EmbedBatch(_ context.Context, texts []string) [][]float64 {
	return make([][]float64, len(texts))
}

func (nullProvider) EmbedOne(context.Context, string) []float64 { return nil }
