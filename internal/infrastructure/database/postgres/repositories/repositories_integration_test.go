//go:build integration

package repositories

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/clauselens/clauselens/internal/config"
	domain "github.com/clauselens/clauselens/internal/domain/contract"
	"github.com/clauselens/clauselens/internal/infrastructure/database/postgres"
	"github.com/clauselens/clauselens/internal/infrastructure/monitoring/logging"
	"github.com/clauselens/clauselens/pkg/errors"
	types "github.com/clauselens/clauselens/pkg/types/contract"
)

func setupDatabase(t *testing.T) config.DatabaseConfig {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "clauselens",
			"POSTGRES_PASSWORD": "clauselens",
			"POSTGRES_DB":       "clauselens_test",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	cfg := config.DatabaseConfig{
		Host:     host,
		Port:     port.Int(),
		User:     "clauselens",
		Password: "clauselens",
		DBName:   "clauselens_test",
		SSLMode:  "disable",
		MaxConns: 5,
	}
	require.NoError(t, postgres.Migrate(cfg.DSN(), logging.NewNopLogger()))
	return cfg
}

func TestRepositoriesRoundTrip(t *testing.T) {
	ctx := context.Background()
	cfg := setupDatabase(t)

	pool, err := postgres.NewPool(ctx, cfg, logging.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	log := logging.NewNopLogger()
	contracts := NewContractRepository(pool, log)
	clauses := NewClauseRepository(pool, log)
	conflicts := NewConflictRepository(pool, log)
	interpretations := NewInterpretationRepository(pool, log)
	qas := NewQuestionAnswerRepository(pool, log)
	uow := NewTxManager(pool, log)

	// Contract round trip.
	contract := domain.NewContract("MSA 2026", "msa.txt", types.FormatTxt)
	require.NoError(t, contracts.Create(ctx, contract))

	got, err := contracts.GetByID(ctx, contract.ID)
	require.NoError(t, err)
	assert.Equal(t, contract.Name, got.Name)
	assert.Nil(t, got.ParentContractID)

	_, err = contracts.GetByID(ctx, types.NewID())
	assert.True(t, errors.IsCode(err, errors.ErrCodeContractNotFound))

	// Amendment with parent link.
	amendment := domain.NewContract("MSA 2026 Amendment 1", "amend.txt", types.FormatTxt)
	amendment.IsAmendment = true
	amendment.ParentContractID = &contract.ID
	require.NoError(t, contracts.Create(ctx, amendment))

	listed, err := contracts.List(ctx)
	require.NoError(t, err)
	assert.Len(t, listed, 2)

	// Clauses, one with an embedding and one without.
	now := time.Now().UTC().Truncate(time.Microsecond)
	c1 := &domain.Clause{
		ID: types.NewID(), ContractID: contract.ID,
		SectionNumber: "1.", ClausePath: "1..1", Title: "Payment",
		Text: "Payment is due within 30 days.", NormalizedText: "payment is due within 30 days",
		Type: types.ClausePayment, PageNumber: 1, PositionInDocument: 0,
		Embedding: []float64{0.1, 0.2, 0.3}, CreatedAt: now,
	}
	c2 := &domain.Clause{
		ID: types.NewID(), ContractID: contract.ID,
		SectionNumber: "2.", ClausePath: "2..1", Title: "Termination",
		Text: "Either party may terminate.", NormalizedText: "either party may terminate",
		Type: types.ClauseTermination, PageNumber: 1, PositionInDocument: 1,
		CreatedAt: now,
	}
	require.NoError(t, clauses.CreateBatch(ctx, []*domain.Clause{c1, c2}))

	gotClause, err := clauses.GetByID(ctx, c1.ID)
	require.NoError(t, err)
	assert.Equal(t, c1.Embedding, gotClause.Embedding)
	assert.Equal(t, types.ClausePayment, gotClause.Type)

	byContract, err := clauses.ListByContract(ctx, contract.ID)
	require.NoError(t, err)
	require.Len(t, byContract, 2)
	assert.Equal(t, c1.ID, byContract[0].ID)
	assert.False(t, byContract[1].HasEmbedding())

	require.NoError(t, clauses.UpdateRiskLevel(ctx, c1.ID, types.RiskHigh))
	gotClause, err = clauses.GetByID(ctx, c1.ID)
	require.NoError(t, err)
	assert.Equal(t, types.RiskHigh, gotClause.RiskLevel)

	err = clauses.UpdateRiskLevel(ctx, types.NewID(), types.RiskLow)
	assert.True(t, errors.IsCode(err, errors.ErrCodeClauseNotFound))

	// Conflicts.
	conflict := &domain.Conflict{
		ID: types.NewID(), ClauseID: c1.ID, ConflictingClauseID: c2.ID,
		Type: types.ConflictContradiction, Severity: types.RiskHigh,
		ConfidenceScore: 0.7, Description: "CONTRADICTION: test", Status: types.ReviewPending,
		CreatedAt: now,
	}
	require.NoError(t, conflicts.CreateBatch(ctx, []*domain.Conflict{conflict}))

	byClause, err := conflicts.ListByClauseIDs(ctx, []types.ID{c1.ID, c2.ID})
	require.NoError(t, err)
	require.Len(t, byClause, 1)
	assert.Equal(t, conflict.Description, byClause[0].Description)

	// Both sides must be in the set.
	byClause, err = conflicts.ListByClauseIDs(ctx, []types.ID{c1.ID})
	require.NoError(t, err)
	assert.Empty(t, byClause)

	byContractConflicts, err := conflicts.ListByContract(ctx, contract.ID)
	require.NoError(t, err)
	assert.Len(t, byContractConflicts, 1)

	// Interpretations.
	interp := &domain.Interpretation{
		ID: types.NewID(), ClauseID: c1.ID,
		InterpretationText: "text", Reasoning: "Ambiguity score: 15.00%.",
		HasAmbiguity: true, AmbiguityDetails: []string{"Ambiguous terms: timely"},
		RequiresLegalReview: false, CreatedAt: now,
	}
	require.NoError(t, interpretations.CreateBatch(ctx, []*domain.Interpretation{interp}))

	gotInterps, err := interpretations.ListByContract(ctx, contract.ID)
	require.NoError(t, err)
	require.Len(t, gotInterps, 1)
	assert.Equal(t, interp.AmbiguityDetails, gotInterps[0].AmbiguityDetails)

	// Question answers.
	qa := &domain.QuestionAnswer{
		ID: types.NewID(), Question: "When is payment due?",
		QuestionEmbedding: []float64{0.5, 0.5},
		Answer:            "Based on MSA 2026, Section 1.: ...", Confidence: 0.8,
		Evidence:  []domain.EvidenceRef{{ClauseID: c1.ID, Relevance: 0.8}},
		CreatedAt: now,
	}
	require.NoError(t, qas.Create(ctx, qa))

	gotQAs, err := qas.List(ctx)
	require.NoError(t, err)
	require.Len(t, gotQAs, 1)
	assert.Equal(t, qa.Evidence, gotQAs[0].Evidence)
	assert.Equal(t, qa.QuestionEmbedding, gotQAs[0].QuestionEmbedding)

	// Unit of work rollback.
	rollbackClause := &domain.Clause{
		ID: types.NewID(), ContractID: contract.ID, ClausePath: "9",
		Text: "rolled back", NormalizedText: "rolled back",
		Type: types.ClauseGeneral, PageNumber: 1, CreatedAt: now,
	}
	err = uow.WithinTx(ctx, func(txCtx context.Context) error {
		if err := clauses.CreateBatch(txCtx, []*domain.Clause{rollbackClause}); err != nil {
			return err
		}
		return fmt.Errorf("force rollback")
	})
	require.Error(t, err)

	_, err = clauses.GetByID(ctx, rollbackClause.ID)
	assert.True(t, errors.IsCode(err, errors.ErrCodeClauseNotFound))

	// Unit of work commit.
	err = uow.WithinTx(ctx, func(txCtx context.Context) error {
		return clauses.CreateBatch(txCtx, []*domain.Clause{rollbackClause})
	})
	require.NoError(t, err)
	_, err = clauses.GetByID(ctx, rollbackClause.ID)
	assert.NoError(t, err)
}
