package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domain "github.com/clauselens/clauselens/internal/domain/contract"
	"github.com/clauselens/clauselens/internal/infrastructure/monitoring/logging"
	"github.com/clauselens/clauselens/pkg/errors"
	types "github.com/clauselens/clauselens/pkg/types/contract"
)

// ConflictRepository is the PostgreSQL implementation of
// domain.ConflictRepository.
type ConflictRepository struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewConflictRepository constructs a ConflictRepository.
func NewConflictRepository(pool *pgxpool.Pool, log logging.Logger) *ConflictRepository {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &ConflictRepository{pool: pool, logger: log.Named("conflict_repo")}
}

const conflictColumns = `id, clause_id, conflicting_clause_id, conflict_type,
	severity, confidence_score, description, status, created_at`

// CreateBatch inserts all conflicts.
func (r *ConflictRepository) CreateBatch(ctx context.Context, conflicts []*domain.Conflict) error {
	if len(conflicts) == 0 {
		return nil
	}
	q := pick(ctx, r.pool)

	for _, c := range conflicts {
		_, err := q.Exec(ctx, `
			INSERT INTO conflicts (`+conflictColumns+`)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			c.ID, c.ClauseID, c.ConflictingClauseID, c.Type,
			c.Severity, c.ConfidenceScore, c.Description, c.Status, c.CreatedAt,
		)
		if err != nil {
			r.logger.Error("insert conflict failed", logging.String("conflict_id", c.ID.String()), logging.Err(err))
			return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to insert conflict")
		}
	}
	return nil
}

// ListByContract returns the conflicts whose first clause belongs to the
// contract.
func (r *ConflictRepository) ListByContract(ctx context.Context, contractID types.ID) ([]*domain.Conflict, error) {
	rows, err := pick(ctx, r.pool).Query(ctx, `
		SELECT `+prefixColumns("cf", conflictColumns)+`
		FROM conflicts cf
		JOIN clauses cl ON cl.id = cf.clause_id
		WHERE cl.contract_id = $1
		ORDER BY cf.created_at`, contractID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list conflicts")
	}
	return collectConflicts(rows)
}

// ListByClauseIDs returns the conflicts where both sides are in the given
// clause set.
func (r *ConflictRepository) ListByClauseIDs(ctx context.Context, clauseIDs []types.ID) ([]*domain.Conflict, error) {
	if len(clauseIDs) == 0 {
		return nil, nil
	}
	ids := make([]string, len(clauseIDs))
	for i, id := range clauseIDs {
		ids[i] = id.String()
	}

	rows, err := pick(ctx, r.pool).Query(ctx, `
		SELECT `+conflictColumns+` FROM conflicts
		WHERE clause_id = ANY($1) AND conflicting_clause_id = ANY($1)
		ORDER BY created_at`, ids)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list conflicts by clause ids")
	}
	return collectConflicts(rows)
}

func collectConflicts(rows pgx.Rows) ([]*domain.Conflict, error) {
	defer rows.Close()

	var conflicts []*domain.Conflict
	for rows.Next() {
		var c domain.Conflict
		err := rows.Scan(&c.ID, &c.ClauseID, &c.ConflictingClauseID, &c.Type,
			&c.Severity, &c.ConfidenceScore, &c.Description, &c.Status, &c.CreatedAt)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan conflict")
		}
		conflicts = append(conflicts, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate conflicts")
	}
	return conflicts, nil
}
