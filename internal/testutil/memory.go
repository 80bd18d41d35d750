// Package testutil provides in-memory repository implementations for
// application-service tests.  They honor the same contracts as the
// PostgreSQL repositories, including not-found error codes, and are safe for
// concurrent use.
package testutil

import (
	"context"
	"sort"
	"sync"

	domain "github.com/clauselens/clauselens/internal/domain/contract"
	"github.com/clauselens/clauselens/pkg/errors"
	types "github.com/clauselens/clauselens/pkg/types/contract"
)

// MemoryStore bundles all in-memory repositories over one shared state.
type MemoryStore struct {
	mu              sync.RWMutex
	contracts       map[types.ID]*domain.Contract
	contractOrder   []types.ID
	clauses         map[types.ID]*domain.Clause
	clauseOrder     []types.ID
	conflicts       []*domain.Conflict
	interpretations []*domain.Interpretation
	questionAnswers []*domain.QuestionAnswer
}

// NewMemoryStore constructs an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		contracts: make(map[types.ID]*domain.Contract),
		clauses:   make(map[types.ID]*domain.Clause),
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// ContractRepository
// ─────────────────────────────────────────────────────────────────────────────

func (s *MemoryStore) Contracts() domain.ContractRepository { return (*contractRepo)(s) }

type contractRepo MemoryStore

func (r *contractRepo) Create(_ context.Context, c *domain.Contract) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *c
	r.contracts[c.ID] = &cp
	r.contractOrder = append(r.contractOrder, c.ID)
	return nil
}

func (r *contractRepo) GetByID(_ context.Context, id types.ID) (*domain.Contract, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.contracts[id]
	if !ok {
		return nil, errors.Newf(errors.ErrCodeContractNotFound, "contract %s not found", id)
	}
	cp := *c
	return &cp, nil
}

func (r *contractRepo) List(_ context.Context) ([]*domain.Contract, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Contract, 0, len(r.contractOrder))
	for _, id := range r.contractOrder {
		cp := *r.contracts[id]
		out = append(out, &cp)
	}
	return out, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// ClauseRepository
// ─────────────────────────────────────────────────────────────────────────────

func (s *MemoryStore) Clauses() domain.ClauseRepository { return (*clauseRepo)(s) }

type clauseRepo MemoryStore

func (r *clauseRepo) CreateBatch(_ context.Context, clauses []*domain.Clause) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, cl := range clauses {
		cp := *cl
		r.clauses[cl.ID] = &cp
		r.clauseOrder = append(r.clauseOrder, cl.ID)
	}
	return nil
}

func (r *clauseRepo) GetByID(_ context.Context, id types.ID) (*domain.Clause, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cl, ok := r.clauses[id]
	if !ok {
		return nil, errors.Newf(errors.ErrCodeClauseNotFound, "clause %s not found", id)
	}
	cp := *cl
	return &cp, nil
}

func (r *clauseRepo) ListByContract(_ context.Context, contractID types.ID) ([]*domain.Clause, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domain.Clause
	for _, id := range r.clauseOrder {
		if cl := r.clauses[id]; cl.ContractID == contractID {
			cp := *cl
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PositionInDocument < out[j].PositionInDocument
	})
	return out, nil
}

func (r *clauseRepo) ListAll(_ context.Context) ([]*domain.Clause, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Clause, 0, len(r.clauseOrder))
	for _, id := range r.clauseOrder {
		cp := *r.clauses[id]
		out = append(out, &cp)
	}
	return out, nil
}

func (r *clauseRepo) UpdateRiskLevel(_ context.Context, id types.ID, level types.RiskLevel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cl, ok := r.clauses[id]
	if !ok {
		return errors.Newf(errors.ErrCodeClauseNotFound, "clause %s not found", id)
	}
	cl.RiskLevel = level
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// ConflictRepository
// ─────────────────────────────────────────────────────────────────────────────

func (s *MemoryStore) Conflicts() domain.ConflictRepository { return (*conflictRepo)(s) }

type conflictRepo MemoryStore

func (r *conflictRepo) CreateBatch(_ context.Context, conflicts []*domain.Conflict) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range conflicts {
		cp := *c
		r.conflicts = append(r.conflicts, &cp)
	}
	return nil
}

func (r *conflictRepo) ListByContract(_ context.Context, contractID types.ID) ([]*domain.Conflict, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domain.Conflict
	for _, c := range r.conflicts {
		cl, ok := r.clauses[c.ClauseID]
		if ok && cl.ContractID == contractID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *conflictRepo) ListByClauseIDs(_ context.Context, clauseIDs []types.ID) ([]*domain.Conflict, error) {
	set := make(map[types.ID]struct{}, len(clauseIDs))
	for _, id := range clauseIDs {
		set[id] = struct{}{}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domain.Conflict
	for _, c := range r.conflicts {
		_, ok1 := set[c.ClauseID]
		_, ok2 := set[c.ConflictingClauseID]
		if ok1 && ok2 {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// InterpretationRepository
// ─────────────────────────────────────────────────────────────────────────────

func (s *MemoryStore) Interpretations() domain.InterpretationRepository { return (*interpretationRepo)(s) }

type interpretationRepo MemoryStore

func (r *interpretationRepo) CreateBatch(_ context.Context, interpretations []*domain.Interpretation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, in := range interpretations {
		cp := *in
		r.interpretations = append(r.interpretations, &cp)
	}
	return nil
}

func (r *interpretationRepo) ListByContract(_ context.Context, contractID types.ID) ([]*domain.Interpretation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domain.Interpretation
	for _, in := range r.interpretations {
		cl, ok := r.clauses[in.ClauseID]
		if ok && cl.ContractID == contractID {
			cp := *in
			out = append(out, &cp)
		}
	}
	return out, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// QuestionAnswerRepository
// ─────────────────────────────────────────────────────────────────────────────

func (s *MemoryStore) QuestionAnswers() domain.QuestionAnswerRepository { return (*qaRepo)(s) }

type qaRepo MemoryStore

func (r *qaRepo) Create(_ context.Context, qa *domain.QuestionAnswer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *qa
	r.questionAnswers = append(r.questionAnswers, &cp)
	return nil
}

func (r *qaRepo) List(_ context.Context) ([]*domain.QuestionAnswer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.QuestionAnswer, 0, len(r.questionAnswers))
	for _, qa := range r.questionAnswers {
		cp := *qa
		out = append(out, &cp)
	}
	return out, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// UnitOfWork
// ─────────────────────────────────────────────────────────────────────────────

// UoW runs fn directly; the in-memory store has no transactions.
func (s *MemoryStore) UoW() domain.UnitOfWork { return passthroughUoW{} }

type passthroughUoW struct{}

func (passthroughUoW) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
