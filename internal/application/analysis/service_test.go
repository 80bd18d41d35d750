package analysis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clauselens/clauselens/internal/config"
	domain "github.com/clauselens/clauselens/internal/domain/contract"
	"github.com/clauselens/clauselens/internal/infrastructure/monitoring/logging"
	"github.com/clauselens/clauselens/internal/testutil"
	"github.com/clauselens/clauselens/pkg/errors"
	types "github.com/clauselens/clauselens/pkg/types/contract"
)

func newTestService(store *testutil.MemoryStore, publisher *testutil.FakePublisher) *Service {
	return NewService(
		store.Contracts(),
		store.Clauses(),
		store.Conflicts(),
		store.Interpretations(),
		store.UoW(),
		config.AnalysisConfig{SimilarityThreshold: 0.85, ConflictThreshold: 0.3, TopK: 5},
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

func clause(text string, clauseType types.ClauseType, embedding []float64) *domain.Clause {
	return &domain.Clause{
		ID:             types.NewID(),
		SectionNumber:  "1",
		ClausePath:     "1.1",
		Text:           text,
		NormalizedText: domain.NormalizeText(text),
		Type:           clauseType,
		Embedding:      embedding,
		CreatedAt:      time.Now().UTC(),
	}
}

func TestAnalyzeAllClauses(t *testing.T) {
	store := testutil.NewMemoryStore()
	svc := newTestService(store, &testutil.FakePublisher{})

	vague := clause("The supplier shall use reasonable efforts to provide adequate reports in a timely manner.",
		types.ClauseObligation, nil)
	precise := clause("Customer pays 500 dollars by 01/15/2026.", types.ClausePayment, nil)
	c := seedContract(t, store, "MSA 2026", vague, precise)

	report, err := svc.AnalyzeAllClauses(context.Background(), c.ID)
	require.NoError(t, err)

	assert.Equal(t, c.ID, report.ContractID)
	assert.Equal(t, 2, report.ClausesAnalyzed)
	assert.Equal(t, 1, report.AmbiguousClauses)

	require.Len(t, report.Interpretations, 1)
	in := report.Interpretations[0]
	assert.Equal(t, vague.ID, in.ClauseID)
	assert.True(t, in.HasAmbiguity)
	require.NotEmpty(t, in.AmbiguityDetails)
	assert.Contains(t, in.AmbiguityDetails[0], "reasonable")

	// Risk levels and interpretations are persisted.
	stored, err := store.Clauses().GetByID(context.Background(), precise.ID)
	require.NoError(t, err)
	assert.Equal(t, types.RiskLow, stored.RiskLevel)

	storedVague, err := store.Clauses().GetByID(context.Background(), vague.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, storedVague.RiskLevel)

	persisted, err := store.Interpretations().ListByContract(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Len(t, persisted, 1)
}

func TestAnalyzeAllClausesUnknownContract(t *testing.T) {
	store := testutil.NewMemoryStore()
	svc := newTestService(store, &testutil.FakePublisher{})

	_, err := svc.AnalyzeAllClauses(context.Background(), types.NewID())
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeContractNotFound, errors.GetCode(err))
}

func TestDetectConflictsInternal(t *testing.T) {
	store := testutil.NewMemoryStore()
	publisher := &testutil.FakePublisher{}
	svc := newTestService(store, publisher)

	obliges := clause("Contractor shall provide monthly reports.",
		types.ClauseObligation, []float64{1, 0})
	forbids := clause("Contractor shall not provide reports without prior approval, and never during an audit.",
		types.ClauseObligation, []float64{1, 0})
	c := seedContract(t, store, "MSA 2026", obliges, forbids)

	found, err := svc.DetectConflicts(context.Background(), c.ID)
	require.NoError(t, err)
	require.Len(t, found, 1)

	cf := found[0]
	assert.Equal(t, types.ConflictContradiction, cf.Type)
	assert.Equal(t, obliges.ID, cf.ClauseID)
	assert.Equal(t, forbids.ID, cf.ConflictingClauseID)
	assert.Equal(t, types.RiskHigh, cf.Severity)
	assert.Equal(t, types.ReviewPending, cf.Status)

	// Persisted and published.
	stored, err := store.Conflicts().ListByContract(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Len(t, stored, 1)

	require.Len(t, publisher.Conflicts, 1)
	assert.Equal(t, c.ID.String(), publisher.Conflicts[0].ContractID)
	assert.Equal(t, 1, publisher.Conflicts[0].ConflictCount)
}

func TestDetectConflictsOverride(t *testing.T) {
	store := testutil.NewMemoryStore()
	svc := newTestService(store, &testutil.FakePublisher{})

	parentClause := clause("Supplier shall deliver all goods within 30 days.",
		types.ClauseObligation, []float64{0, 1})
	parent := seedContract(t, store, "Supply Agreement", parentClause)

	amendClause := clause("Supplier shall not deliver goods without inspection, and never except on weekdays.",
		types.ClauseObligation, []float64{0, 1})
	amendment := domain.NewContract("Supply Agreement Amendment 1", "amend.txt", types.FormatTxt)
	amendment.IsAmendment = true
	amendment.ParentContractID = &parent.ID
	require.NoError(t, store.Contracts().Create(context.Background(), amendment))
	amendClause.ContractID = amendment.ID
	require.NoError(t, store.Clauses().CreateBatch(context.Background(), []*domain.Clause{amendClause}))

	found, err := svc.DetectConflicts(context.Background(), amendment.ID)
	require.NoError(t, err)

	// The parent is also a sibling by name family, so the same pair appears
	// in both the override and version scopes.
	var overrides, versions int
	for _, cf := range found {
		switch cf.Type {
		case types.ConflictOverride:
			overrides++
			assert.Equal(t, amendClause.ID, cf.ClauseID)
			assert.Equal(t, parentClause.ID, cf.ConflictingClauseID)
		case types.ConflictVersion:
			versions++
		}
	}
	assert.Equal(t, 1, overrides)
	assert.Equal(t, 1, versions)
}

func TestDetectConflictsVersionScopeByFamily(t *testing.T) {
	store := testutil.NewMemoryStore()
	svc := newTestService(store, &testutil.FakePublisher{})

	current := clause("Vendor shall retain records.", types.ClauseObligation, []float64{1, 0})
	c := seedContract(t, store, "MSA 2026", current)

	// Same family token: scanned.
	sibling := clause("Vendor shall not retain records without consent, and never past expiry.",
		types.ClauseObligation, []float64{1, 0})
	seedContract(t, store, "MSA 2025", sibling)

	// Different family: ignored even though the pair would conflict.
	stranger := clause("Vendor shall not retain records without consent, and never past expiry.",
		types.ClauseObligation, []float64{1, 0})
	seedContract(t, store, "NDA Alpha", stranger)

	found, err := svc.DetectConflicts(context.Background(), c.ID)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, types.ConflictVersion, found[0].Type)
	assert.Equal(t, sibling.ID, found[0].ConflictingClauseID)
}

func TestDetectConflictsSkipsClausesWithoutEmbeddings(t *testing.T) {
	store := testutil.NewMemoryStore()
	svc := newTestService(store, &testutil.FakePublisher{})

	obliges := clause("Contractor shall provide reports.", types.ClauseObligation, nil)
	forbids := clause("Contractor shall not provide reports without approval, and never on holidays.",
		types.ClauseObligation, nil)
	c := seedContract(t, store, "MSA 2026", obliges, forbids)

	found, err := svc.DetectConflicts(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Empty(t, found)
}
