package repositories

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domain "github.com/clauselens/clauselens/internal/domain/contract"
	"github.com/clauselens/clauselens/internal/infrastructure/monitoring/logging"
	"github.com/clauselens/clauselens/pkg/errors"
	types "github.com/clauselens/clauselens/pkg/types/contract"
)

// ClauseRepository is the PostgreSQL implementation of
// domain.ClauseRepository.  Embedding vectors are stored as JSONB; a vector
// that fails to decode on read is dropped rather than failing the query, so
// the clause degrades to the lexical path.
type ClauseRepository struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewClauseRepository constructs a ClauseRepository.
func NewClauseRepository(pool *pgxpool.Pool, log logging.Logger) *ClauseRepository {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &ClauseRepository{pool: pool, logger: log.Named("clause_repo")}
}

const clauseColumns = `id, contract_id, section_number, clause_path, title, text,
	normalized_text, clause_type, risk_level, page_number, position_in_document,
	embedding, created_at`

// CreateBatch inserts all clauses.  Callers wrap the call in a unit of work
// when atomicity across the batch matters.
func (r *ClauseRepository) CreateBatch(ctx context.Context, clauses []*domain.Clause) error {
	if len(clauses) == 0 {
		return nil
	}
	q := pick(ctx, r.pool)

	for _, cl := range clauses {
		embedding, err := marshalVector(cl.Embedding)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode clause embedding")
		}
		_, err = q.Exec(ctx, `
			INSERT INTO clauses (`+clauseColumns+`)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
			cl.ID, cl.ContractID, cl.SectionNumber, cl.ClausePath, cl.Title, cl.Text,
			cl.NormalizedText, cl.Type, cl.RiskLevel, cl.PageNumber, cl.PositionInDocument,
			embedding, cl.CreatedAt,
		)
		if err != nil {
			r.logger.Error("insert clause failed", logging.String("clause_id", cl.ID.String()), logging.Err(err))
			return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to insert clause")
		}
	}
	return nil
}

// GetByID fetches one clause.  A missing row maps to CLS_002.
func (r *ClauseRepository) GetByID(ctx context.Context, id types.ID) (*domain.Clause, error) {
	row := pick(ctx, r.pool).QueryRow(ctx, `
		SELECT `+clauseColumns+` FROM clauses WHERE id = $1`, id)

	cl, err := r.scanClause(row)
	if err == pgx.ErrNoRows {
		return nil, errors.Newf(errors.ErrCodeClauseNotFound, "clause %s not found", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to fetch clause")
	}
	return cl, nil
}

// ListByContract returns the contract's clauses in document order.
func (r *ClauseRepository) ListByContract(ctx context.Context, contractID types.ID) ([]*domain.Clause, error) {
	rows, err := pick(ctx, r.pool).Query(ctx, `
		SELECT `+clauseColumns+` FROM clauses
		WHERE contract_id = $1
		ORDER BY position_in_document`, contractID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list clauses")
	}
	return r.collect(rows)
}

// ListAll returns every clause across all contracts, in stable order.
func (r *ClauseRepository) ListAll(ctx context.Context) ([]*domain.Clause, error) {
	rows, err := pick(ctx, r.pool).Query(ctx, `
		SELECT `+clauseColumns+` FROM clauses
		ORDER BY contract_id, position_in_document`)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list clauses")
	}
	return r.collect(rows)
}

// UpdateRiskLevel sets the clause's risk level.  Updating a missing clause
// maps to CLS_002.
func (r *ClauseRepository) UpdateRiskLevel(ctx context.Context, id types.ID, level types.RiskLevel) error {
	tag, err := pick(ctx, r.pool).Exec(ctx, `
		UPDATE clauses SET risk_level = $2 WHERE id = $1`, id, level)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to update clause risk level")
	}
	if tag.RowsAffected() == 0 {
		return errors.Newf(errors.ErrCodeClauseNotFound, "clause %s not found", id)
	}
	return nil
}

func (r *ClauseRepository) collect(rows pgx.Rows) ([]*domain.Clause, error) {
	defer rows.Close()

	var clauses []*domain.Clause
	for rows.Next() {
		cl, err := r.scanClause(rows)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan clause")
		}
		clauses = append(clauses, cl)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate clauses")
	}
	return clauses, nil
}

func (r *ClauseRepository) scanClause(row pgx.Row) (*domain.Clause, error) {
	var cl domain.Clause
	var embedding []byte
	err := row.Scan(&cl.ID, &cl.ContractID, &cl.SectionNumber, &cl.ClausePath, &cl.Title,
		&cl.Text, &cl.NormalizedText, &cl.Type, &cl.RiskLevel, &cl.PageNumber,
		&cl.PositionInDocument, &embedding, &cl.CreatedAt)
	if err != nil {
		return nil, err
	}
	cl.Embedding = r.unmarshalVector(cl.ID, embedding)
	return &cl, nil
}

// marshalVector encodes an embedding as JSONB, NULL when absent.
func marshalVector(vec []float64) ([]byte, error) {
	if len(vec) == 0 {
		return nil, nil
	}
	return json.Marshal(vec)
}

// unmarshalVector decodes a stored embedding.  Malformed data yields an
// absent vector, never an error.
func (r *ClauseRepository) unmarshalVector(id types.ID, data []byte) []float64 {
	if len(data) == 0 {
		return nil
	}
	var vec []float64
	if err := json.Unmarshal(data, &vec); err != nil {
		r.logger.Warn("dropping malformed stored embedding",
			logging.String("code", errors.ErrCodeMalformedVector.String()),
			logging.String("clause_id", id.String()),
			logging.Err(err))
		return nil
	}
	return vec
}
