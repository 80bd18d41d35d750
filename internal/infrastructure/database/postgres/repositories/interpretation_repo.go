package repositories

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	domain "github.com/clauselens/clauselens/internal/domain/contract"
	"github.com/clauselens/clauselens/internal/infrastructure/monitoring/logging"
	"github.com/clauselens/clauselens/pkg/errors"
	types "github.com/clauselens/clauselens/pkg/types/contract"
)

// InterpretationRepository is the PostgreSQL implementation of
// domain.InterpretationRepository.  Ambiguity detail lists are stored as
// JSONB arrays.
type InterpretationRepository struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewInterpretationRepository constructs an InterpretationRepository.
func NewInterpretationRepository(pool *pgxpool.Pool, log logging.Logger) *InterpretationRepository {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &InterpretationRepository{pool: pool, logger: log.Named("interpretation_repo")}
}

// CreateBatch inserts all interpretations.
func (r *InterpretationRepository) CreateBatch(ctx context.Context, interpretations []*domain.Interpretation) error {
	if len(interpretations) == 0 {
		return nil
	}
	q := pick(ctx, r.pool)

	for _, in := range interpretations {
		details, err := json.Marshal(in.AmbiguityDetails)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode ambiguity details")
		}
		_, err = q.Exec(ctx, `
			INSERT INTO interpretations
				(id, clause_id, interpretation_text, reasoning, has_ambiguity,
				 ambiguity_details, requires_legal_review, created_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			in.ID, in.ClauseID, in.InterpretationText, in.Reasoning, in.HasAmbiguity,
			details, in.RequiresLegalReview, in.CreatedAt,
		)
		if err != nil {
			r.logger.Error("insert interpretation failed",
				logging.String("interpretation_id", in.ID.String()), logging.Err(err))
			return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to insert interpretation")
		}
	}
	return nil
}

// ListByContract returns the interpretations of the contract's clauses.
func (r *InterpretationRepository) ListByContract(ctx context.Context, contractID types.ID) ([]*domain.Interpretation, error) {
	rows, err := pick(ctx, r.pool).Query(ctx, `
		SELECT i.id, i.clause_id, i.interpretation_text, i.reasoning, i.has_ambiguity,
		       i.ambiguity_details, i.requires_legal_review, i.created_at
		FROM interpretations i
		JOIN clauses cl ON cl.id = i.clause_id
		WHERE cl.contract_id = $1
		ORDER BY i.created_at`, contractID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list interpretations")
	}
	defer rows.Close()

	var interpretations []*domain.Interpretation
	for rows.Next() {
		var in domain.Interpretation
		var details []byte
		err := rows.Scan(&in.ID, &in.ClauseID, &in.InterpretationText, &in.Reasoning,
			&in.HasAmbiguity, &details, &in.RequiresLegalReview, &in.CreatedAt)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan interpretation")
		}
		if len(details) > 0 {
			if err := json.Unmarshal(details, &in.AmbiguityDetails); err != nil {
				return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode ambiguity details")
			}
		}
		interpretations = append(interpretations, &in)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate interpretations")
	}
	return interpretations, nil
}
