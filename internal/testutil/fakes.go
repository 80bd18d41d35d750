package testutil

import (
	"context"
	"sync"

	"github.com/clauselens/clauselens/internal/infrastructure/messaging/kafka"
)

// FakeEmbedder is a deterministic embedding provider.  Vectors maps input
// text to the vector to return; texts with no entry come back nil, which is
// the absent-vector degradation path.  When Vectors is nil every text gets a
// generated two-component vector.
type FakeEmbedder struct {
	mu      sync.Mutex
	Vectors map[string][]float64
	Batches [][]string
}

func (f *FakeEmbedder) EmbedBatch(_ context.Context, texts []string) [][]float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Batches = append(f.Batches, append([]string(nil), texts...))

	out := make([][]float64, len(texts))
	for i, text := range texts {
		if f.Vectors == nil {
			out[i] = []float64{float64(i + 1), 0.5}
			continue
		}
		out[i] = f.Vectors[text]
	}
	return out
}

func (f *FakeEmbedder) EmbedOne(ctx context.Context, text string) []float64 {
	return f.EmbedBatch(ctx, []string{text})[0]
}

func (f *FakeEmbedder) Model() string { return "fake-embedder" }

// FakePublisher records every published event.
type FakePublisher struct {
	mu        sync.Mutex
	Extracted []kafka.ContractExtractedPayload
	Conflicts []kafka.ConflictsDetectedPayload
	Answered  []kafka.QuestionAnsweredPayload
}

func (p *FakePublisher) ContractExtracted(_ context.Context, payload kafka.ContractExtractedPayload) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Extracted = append(p.Extracted, payload)
}

func (p *FakePublisher) ConflictsDetected(_ context.Context, payload kafka.ConflictsDetectedPayload) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Conflicts = append(p.Conflicts, payload)
}

func (p *FakePublisher) QuestionAnswered(_ context.Context, payload kafka.QuestionAnsweredPayload) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Answered = append(p.Answered, payload)
}

func (p *FakePublisher) Close() error { return nil }
