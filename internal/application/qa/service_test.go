package qa

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	retrieval "github.com/clauselens/clauselens/internal/analysis/qa"
	domain "github.com/clauselens/clauselens/internal/domain/contract"
	"github.com/clauselens/clauselens/internal/infrastructure/monitoring/logging"
	"github.com/clauselens/clauselens/internal/testutil"
	"github.com/clauselens/clauselens/pkg/errors"
	types "github.com/clauselens/clauselens/pkg/types/contract"
)

func newTestService(store *testutil.MemoryStore, embedder *testutil.FakeEmbedder, publisher *testutil.FakePublisher) *Service {
	return NewService(
		store.Contracts(),
		store.Clauses(),
		store.Conflicts(),
		store.QuestionAnswers(),
		embedder,
		5,
		publisher,
		nil,
		logging.NewNopLogger(),
	)
}

func seedContract(t *testing.T, store *testutil.MemoryStore, name string, clauses ...*domain.Clause) *domain.Contract {
	t.Helper()
	c := domain.NewContract(name, name+".txt", types.FormatTxt)
	require.NoError(t, store.Contracts().Create(context.Background(), c))
	for i, cl := range clauses {
		cl.ContractID = c.ID
		cl.PositionInDocument = i
	}
	require.NoError(t, store.Clauses().CreateBatch(context.Background(), clauses))
	return c
}

func clause(section, text string, clauseType types.ClauseType, embedding []float64) *domain.Clause {
	return &domain.Clause{
		ID:             types.NewID(),
		SectionNumber:  section,
		ClausePath:     section + ".1",
		Text:           text,
		NormalizedText: domain.NormalizeText(text),
		Type:           clauseType,
		Embedding:      embedding,
		CreatedAt:      time.Now().UTC(),
	}
}

func TestAnswerQuestionLexical(t *testing.T) {
	store := testutil.NewMemoryStore()
	publisher := &testutil.FakePublisher{}
	// Empty vector map: no embeddings, everything scores lexically.
	embedder := &testutil.FakeEmbedder{Vectors: map[string][]float64{}}
	svc := newTestService(store, embedder, publisher)

	payment := clause("4.1", "Payment is due within 30 days of invoice receipt.", types.ClausePayment, nil)
	confidentiality := clause("7.2", "Confidential information must be protected at all times.", types.ClauseConfidentiality, nil)
	seedContract(t, store, "MSA 2026", payment, confidentiality)

	answer, err := svc.AnswerQuestion(context.Background(), "When is payment due after invoice?", nil, 1)
	require.NoError(t, err)

	assert.Equal(t, "Based on MSA 2026, Section 4.1:\n\n\"Payment is due within 30 days of invoice receipt.\"", answer.Text)
	require.Len(t, answer.Evidence, 1)
	assert.Equal(t, payment.ID, answer.Evidence[0].Clause.ID)
	assert.Greater(t, answer.Confidence, 0.0)
	// Lexical overlap stays below the confidence bar, so review is required.
	assert.Less(t, answer.Confidence, 0.6)
	assert.True(t, answer.RequiresReview)

	// The answer is recorded in the history.
	history, err := svc.History(context.Background())
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, answer.Text, history[0].Answer)
	require.Len(t, history[0].Evidence, 1)
	assert.Equal(t, payment.ID, history[0].Evidence[0].ClauseID)
	assert.InDelta(t, answer.Confidence, history[0].Evidence[0].Relevance, 1e-9)

	require.Len(t, publisher.Answered, 1)
	assert.Equal(t, history[0].ID.String(), publisher.Answered[0].QuestionAnswerID)
	assert.Equal(t, 1, publisher.Answered[0].EvidenceCount)
	assert.True(t, publisher.Answered[0].RequiresReview)
}

func TestAnswerQuestionEmbeddingPath(t *testing.T) {
	store := testutil.NewMemoryStore()
	question := "What are the liability caps?"
	embedder := &testutil.FakeEmbedder{Vectors: map[string][]float64{
		question: {1, 0},
	}}
	svc := newTestService(store, embedder, &testutil.FakePublisher{})

	aligned := clause("9", "Liability is capped at fees paid in the preceding 12 months.", types.ClauseLiability, []float64{1, 0})
	orthogonal := clause("2", "Definitions apply throughout this agreement.", types.ClauseGeneral, []float64{0, 1})
	seedContract(t, store, "MSA 2026", aligned, orthogonal)

	answer, err := svc.AnswerQuestion(context.Background(), question, nil, 1)
	require.NoError(t, err)

	require.Len(t, answer.Evidence, 1)
	assert.Equal(t, aligned.ID, answer.Evidence[0].Clause.ID)
	assert.InDelta(t, 1.0, answer.Confidence, 1e-9)
}

func TestAnswerQuestionNoCandidates(t *testing.T) {
	store := testutil.NewMemoryStore()
	publisher := &testutil.FakePublisher{}
	svc := newTestService(store, &testutil.FakeEmbedder{Vectors: map[string][]float64{}}, publisher)

	answer, err := svc.AnswerQuestion(context.Background(), "Anything at all?", nil, 0)
	require.NoError(t, err)

	assert.Equal(t, retrieval.NoEvidenceAnswer, answer.Text)
	assert.Zero(t, answer.Confidence)
	assert.False(t, answer.RequiresReview)

	// No-evidence answers are not recorded or published.
	history, err := svc.History(context.Background())
	require.NoError(t, err)
	assert.Empty(t, history)
	assert.Empty(t, publisher.Answered)
}

func TestAnswerQuestionContractFilter(t *testing.T) {
	store := testutil.NewMemoryStore()
	embedder := &testutil.FakeEmbedder{Vectors: map[string][]float64{}}
	svc := newTestService(store, embedder, &testutil.FakePublisher{})

	inScope := clause("4", "Payment is due within 30 days of invoice receipt.", types.ClausePayment, nil)
	target := seedContract(t, store, "MSA 2026", inScope)

	outOfScope := clause("4", "Payment is due within 30 days of invoice receipt.", types.ClausePayment, nil)
	seedContract(t, store, "NDA Alpha", outOfScope)

	answer, err := svc.AnswerQuestion(context.Background(), "When is payment due after invoice?", &target.ID, 5)
	require.NoError(t, err)

	require.Len(t, answer.Evidence, 1)
	assert.Equal(t, inScope.ID, answer.Evidence[0].Clause.ID)
	assert.Equal(t, "MSA 2026", answer.Evidence[0].ContractName)
}

func TestAnswerQuestionUnknownContract(t *testing.T) {
	store := testutil.NewMemoryStore()
	svc := newTestService(store, &testutil.FakeEmbedder{Vectors: map[string][]float64{}}, &testutil.FakePublisher{})

	id := types.NewID()
	_, err := svc.AnswerQuestion(context.Background(), "When is payment due?", &id, 5)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeContractNotFound, errors.GetCode(err))
}

func TestAnswerQuestionSurfacesConflicts(t *testing.T) {
	store := testutil.NewMemoryStore()
	embedder := &testutil.FakeEmbedder{Vectors: map[string][]float64{}}
	svc := newTestService(store, embedder, &testutil.FakePublisher{})

	first := clause("4", "Payment is due within 30 days of invoice receipt.", types.ClauseGeneral, nil)
	second := clause("5", "Payment is due within 60 days of invoice receipt.", types.ClauseGeneral, nil)
	seedContract(t, store, "MSA 2026", first, second)

	conflict := &domain.Conflict{
		ID:                  types.NewID(),
		ClauseID:            first.ID,
		ConflictingClauseID: second.ID,
		Type:                types.ConflictContradiction,
		Severity:            types.RiskHigh,
		ConfidenceScore:     0.9,
		Status:              types.ReviewPending,
		CreatedAt:           time.Now().UTC(),
	}
	require.NoError(t, store.Conflicts().CreateBatch(context.Background(), []*domain.Conflict{conflict}))

	answer, err := svc.AnswerQuestion(context.Background(), "When is payment due after invoice?", nil, 5)
	require.NoError(t, err)

	// Both sides of the conflict are in the evidence set, so it surfaces and
	// forces review.
	require.Len(t, answer.Conflicts, 1)
	assert.Equal(t, conflict.ID, answer.Conflicts[0].ID)
	assert.True(t, answer.RequiresReview)
}

func TestSimilarQuestions(t *testing.T) {
	store := testutil.NewMemoryStore()
	embedder := &testutil.FakeEmbedder{Vectors: map[string][]float64{}}
	svc := newTestService(store, embedder, &testutil.FakePublisher{})

	payment := clause("4", "Payment is due within 30 days of invoice receipt.", types.ClausePayment, nil)
	seedContract(t, store, "MSA 2026", payment)

	_, err := svc.AnswerQuestion(context.Background(), "When is payment due after invoice?", nil, 5)
	require.NoError(t, err)
	_, err = svc.AnswerQuestion(context.Background(), "What law governs this agreement?", nil, 5)
	require.NoError(t, err)

	similar, err := svc.SimilarQuestions(context.Background(), "When is the payment due?", 0)
	require.NoError(t, err)
	require.NotEmpty(t, similar)
	assert.Equal(t, "When is payment due after invoice?", similar[0].Question)
	assert.Greater(t, similar[0].Similarity, 0.0)
}

func TestSimilarQuestionsEmptyHistory(t *testing.T) {
	store := testutil.NewMemoryStore()
	svc := newTestService(store, &testutil.FakeEmbedder{Vectors: map[string][]float64{}}, &testutil.FakePublisher{})

	similar, err := svc.SimilarQuestions(context.Background(), "Anything?", 3)
	require.NoError(t, err)
	assert.Empty(t, similar)
}
