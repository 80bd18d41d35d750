package embedding

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clauselens/clauselens/internal/config"
)

type fakeProvider struct {
	model string
	calls [][]string
	vecs  map[string][]float64
}

func (f *fakeProvider) Model() string { return f.model }

func (f *fakeProvider) EmbedBatch(_ context.Context, texts []string) [][]float64 {
	f.calls = append(f.calls, append([]string(nil), texts...))
	out := make([][]float64, len(texts))
	for i, t := range texts {
		out[i] = f.vecs[t]
	}
	return out
}

func (f *fakeProvider) EmbedOne(ctx context.Context, text string) []float64 {
	return f.EmbedBatch(ctx, []string{text})[0]
}

type fakeStore struct {
	data map[string][]float64
	puts int
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: map[string][]float64{}}
}

func (s *fakeStore) Get(_ context.Context, model, text string) ([]float64, bool) {
	vec, ok := s.data[model+":"+text]
	return vec, ok
}

func (s *fakeStore) Put(_ context.Context, model, text string, vector []float64) {
	s.data[model+":"+text] = vector
	s.puts++
}

func TestNullProvider(t *testing.T) {
	p := NewNullProvider()

	vecs := p.EmbedBatch(context.Background(), []string{"a", "b"})
	require.Len(t, vecs, 2)
	assert.Nil(t, vecs[0])
	assert.Nil(t, vecs[1])
	assert.Nil(t, p.EmbedOne(context.Background(), "a"))
	assert.Empty(t, p.Model())
}

func TestNewProviderDisabled(t *testing.T) {
	p := NewProvider(config.EmbeddingConfig{Enabled: false}, newFakeStore(), nil)
	assert.Nil(t, p.EmbedOne(context.Background(), "text"))
}

func TestCachedProviderReadThrough(t *testing.T) {
	inner := &fakeProvider{
		model: "test-model",
		vecs: map[string][]float64{
			"alpha": {1, 2},
			"beta":  {3, 4},
		},
	}
	store := newFakeStore()
	p := NewCachedProvider(inner, store, nil)

	vecs := p.EmbedBatch(context.Background(), []string{"alpha", "beta"})
	require.Len(t, vecs, 2)
	assert.Equal(t, []float64{1, 2}, vecs[0])
	assert.Equal(t, []float64{3, 4}, vecs[1])
	assert.Equal(t, 2, store.puts)
	require.Len(t, inner.calls, 1)

	// Second batch is served entirely from the cache.
	vecs = p.EmbedBatch(context.Background(), []string{"alpha", "beta"})
	assert.Equal(t, []float64{1, 2}, vecs[0])
	assert.Len(t, inner.calls, 1)
}

func TestCachedProviderPartialMiss(t *testing.T) {
	inner := &fakeProvider{
		model: "test-model",
		vecs:  map[string][]float64{"new": {9}},
	}
	store := newFakeStore()
	store.data["test-model:cached"] = []float64{5}
	p := NewCachedProvider(inner, store, nil)

	vecs := p.EmbedBatch(context.Background(), []string{"cached", "new"})
	require.Len(t, vecs, 2)
	assert.Equal(t, []float64{5}, vecs[0])
	assert.Equal(t, []float64{9}, vecs[1])

	// Only the miss reached the inner provider.
	require.Len(t, inner.calls, 1)
	assert.Equal(t, []string{"new"}, inner.calls[0])
}

func TestCachedProviderAbsentVectorNotCached(t *testing.T) {
	inner := &fakeProvider{model: "test-model", vecs: map[string][]float64{}}
	store := newFakeStore()
	p := NewCachedProvider(inner, store, nil)

	vecs := p.EmbedBatch(context.Background(), []string{"unembeddable"})
	require.Len(t, vecs, 1)
	assert.Nil(t, vecs[0])
	assert.Zero(t, store.puts)

	// The absent result is re-requested next time rather than pinned.
	p.EmbedBatch(context.Background(), []string{"unembeddable"})
	assert.Len(t, inner.calls, 2)
}

func TestCachedProviderEmptyBatch(t *testing.T) {
	inner := &fakeProvider{model: "m"}
	p := NewCachedProvider(inner, newFakeStore(), nil)

	assert.Empty(t, p.EmbedBatch(context.Background(), nil))
	assert.Empty(t, inner.calls)
}
