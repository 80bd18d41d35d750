package contract

import (
	"context"

	types "github.com/clauselens/clauselens/pkg/types/contract"
)

// ContractRepository persists and retrieves contracts.
type ContractRepository interface {
	Create(ctx context.Context, c *Contract) error
	GetByID(ctx context.Context, id types.ID) (*Contract, error)
	List(ctx context.Context) ([]*Contract, error)
}

// ClauseRepository persists and retrieves clauses.  Clauses are append-only
// per contract version; re-extraction creates a new disjoint set.
type ClauseRepository interface {
	CreateBatch(ctx context.Context, clauses []*Clause) error
	GetByID(ctx context.Context, id types.ID) (*Clause, error)
	ListByContract(ctx context.Context, contractID types.ID) ([]*Clause, error)
	ListAll(ctx context.Context) ([]*Clause, error)
	UpdateRiskLevel(ctx context.Context, id types.ID, level types.RiskLevel) error
}

// ConflictRepository persists and retrieves detected conflicts.
type ConflictRepository interface {
	CreateBatch(ctx context.Context, conflicts []*Conflict) error
	ListByContract(ctx context.Context, contractID types.ID) ([]*Conflict, error)
	ListByClauseIDs(ctx context.Context, clauseIDs []types.ID) ([]*Conflict, error)
}

// InterpretationRepository persists and retrieves clause interpretations.
type InterpretationRepository interface {
	CreateBatch(ctx context.Context, interpretations []*Interpretation) error
	ListByContract(ctx context.Context, contractID types.ID) ([]*Interpretation, error)
}

// QuestionAnswerRepository persists answered questions for later similarity
// lookup.
type QuestionAnswerRepository interface {
	Create(ctx context.Context, qa *QuestionAnswer) error
	List(ctx context.Context) ([]*QuestionAnswer, error)
}

// UnitOfWork executes fn inside one atomic transaction.  Repository calls
// made with the context passed to fn join that transaction; any error rolls
// the whole unit back.  Clause persistence uses this so that all clauses of
// an extraction commit together or not at all.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
