package repositories

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	domain "github.com/clauselens/clauselens/internal/domain/contract"
	"github.com/clauselens/clauselens/internal/infrastructure/monitoring/logging"
	"github.com/clauselens/clauselens/pkg/errors"
)

// QuestionAnswerRepository is the PostgreSQL implementation of
// domain.QuestionAnswerRepository.  Evidence references and the optional
// question embedding are stored as JSONB.
type QuestionAnswerRepository struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewQuestionAnswerRepository constructs a QuestionAnswerRepository.
func NewQuestionAnswerRepository(pool *pgxpool.Pool, log logging.Logger) *QuestionAnswerRepository {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &QuestionAnswerRepository{pool: pool, logger: log.Named("qa_repo")}
}

// Create inserts an answered question.
func (r *QuestionAnswerRepository) Create(ctx context.Context, qa *domain.QuestionAnswer) error {
	embedding, err := marshalVector(qa.QuestionEmbedding)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode question embedding")
	}
	evidence, err := json.Marshal(qa.Evidence)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode evidence references")
	}

	_, err = pick(ctx, r.pool).Exec(ctx, `
		INSERT INTO question_answers
			(id, question, question_embedding, answer, confidence, evidence, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		qa.ID, qa.Question, embedding, qa.Answer, qa.Confidence, evidence, qa.CreatedAt,
	)
	if err != nil {
		r.logger.Error("insert question answer failed",
			logging.String("qa_id", qa.ID.String()), logging.Err(err))
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to insert question answer")
	}
	return nil
}

// List returns every answered question, oldest first.
func (r *QuestionAnswerRepository) List(ctx context.Context) ([]*domain.QuestionAnswer, error) {
	rows, err := pick(ctx, r.pool).Query(ctx, `
		SELECT id, question, question_embedding, answer, confidence, evidence, created_at
		FROM question_answers
		ORDER BY created_at`)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list question answers")
	}
	defer rows.Close()

	var qas []*domain.QuestionAnswer
	for rows.Next() {
		var qa domain.QuestionAnswer
		var embedding, evidence []byte
		err := rows.Scan(&qa.ID, &qa.Question, &embedding, &qa.Answer, &qa.Confidence,
			&evidence, &qa.CreatedAt)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan question answer")
		}
		if len(embedding) > 0 {
			if err := json.Unmarshal(embedding, &qa.QuestionEmbedding); err != nil {
				// Malformed question vectors degrade to lexical matching.
				r.logger.Warn("dropping malformed question embedding",
					logging.String("code", errors.ErrCodeMalformedVector.String()),
					logging.String("qa_id", qa.ID.String()))
				qa.QuestionEmbedding = nil
			}
		}
		if len(evidence) > 0 {
			if err := json.Unmarshal(evidence, &qa.Evidence); err != nil {
				return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode evidence references")
			}
		}
		qas = append(qas, &qa)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate question answers")
	}
	return qas, nil
}
