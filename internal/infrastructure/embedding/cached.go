package embedding

import (
	"context"

	"github.com/clauselens/clauselens/internal/infrastructure/monitoring/logging"
)

// VectorStore is the cache the cached provider reads through.  It is
// satisfied by the Redis vector cache; failures surface only as misses.
type VectorStore interface {
	Get(ctx context.Context, model, text string) ([]float64, bool)
	Put(ctx context.Context, model, text string, vector []float64)
}

type cachedProvider struct {
	inner  Provider
	store  VectorStore
	logger logging.Logger
}

// NewCachedProvider wraps a provider with a read-through vector cache.
// Only the texts that miss the cache reach the inner provider, in one batch,
// and their fresh vectors are written back.
func NewCachedProvider(inner Provider, store VectorStore, log logging.Logger) Provider {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &cachedProvider{
		inner:  inner,
		store:  store,
		logger: log.Named("embedding.cache"),
	}
}

func (p *cachedProvider) Model() string {
	return p.inner.Model()
}

func (p *cachedProvider) EmbedBatch(ctx context.Context, texts []string) [][]float64 {
	vectors := make([][]float64, len(texts))
	model := p.inner.Model()

	var missTexts []string
	var missIdx []int
	for i, text := range texts {
		if vec, ok := p.store.Get(ctx, model, text); ok {
			vectors[i] = vec
			continue
		}
		missTexts = append(missTexts, text)
		missIdx = append(missIdx, i)
	}

	if len(missTexts) == 0 {
		return vectors
	}

	fresh := p.inner.EmbedBatch(ctx, missTexts)
	for j, vec := range fresh {
		i := missIdx[j]
		vectors[i] = vec
		if vec != nil {
			p.store.Put(ctx, model, texts[i], vec)
		}
	}

	p.logger.Debug("embedding batch served",
		logging.Int("total", len(texts)),
		logging.Int("cache_hits", len(texts)-len(missTexts)))
	return vectors
}

func (p *cachedProvider) EmbedOne(ctx context.Context, text string) []float64 {
	return p.EmbedBatch(ctx, []string{text})[0]
}
