// Package qa answers natural-language questions against the stored clause
// corpus: embed the question, retrieve the most relevant clauses, compose an
// evidence-backed answer, and keep a history of answered questions.
package qa

import (
	"context"
	"time"

	retrieval "github.com/clauselens/clauselens/internal/analysis/qa"
	domain "github.com/clauselens/clauselens/internal/domain/contract"
	"github.com/clauselens/clauselens/internal/infrastructure/embedding"
	"github.com/clauselens/clauselens/internal/infrastructure/messaging/kafka"
	"github.com/clauselens/clauselens/internal/infrastructure/monitoring/logging"
	"github.com/clauselens/clauselens/internal/infrastructure/monitoring/prometheus"
	types "github.com/clauselens/clauselens/pkg/types/contract"
)

// defaultSimilarTopK is how many previous questions SimilarQuestions returns
// when the caller passes no depth.
const defaultSimilarTopK = 3

// Service answers questions and tracks the question history.
type Service struct {
	contracts       domain.ContractRepository
	clauses         domain.ClauseRepository
	conflicts       domain.ConflictRepository
	questionAnswers domain.QuestionAnswerRepository

	embedder  embedding.Provider
	retriever *retrieval.Retriever
	topK      int

	publisher kafka.EventPublisher
	metrics   *prometheus.Metrics
	logger    logging.Logger
}

// NewService constructs the question-answering Service.  topK is the default
// evidence depth; publisher and metrics may be nil.
func NewService(
	contracts domain.ContractRepository,
	clauses domain.ClauseRepository,
	conflicts domain.ConflictRepository,
	questionAnswers domain.QuestionAnswerRepository,
	embedder embedding.Provider,
	topK int,
	publisher kafka.EventPublisher,
	metrics *prometheus.Metrics,
	log logging.Logger,
) *Service {
	if log == nil {
		log = logging.NewNopLogger()
	}
	if publisher == nil {
		publisher = kafka.NopPublisher{}
	}
	return &Service{
		contracts:       contracts,
		clauses:         clauses,
		conflicts:       conflicts,
		questionAnswers: questionAnswers,
		embedder:        embedder,
		retriever:       retrieval.NewRetriever(),
		topK:            topK,
		publisher:       publisher,
		metrics:         metrics,
		logger:          log.Named("qa"),
	}
}

// AnswerQuestion answers one question.  contractID narrows the candidate set
// to a single contract; nil searches everything.  topK overrides the default
// evidence depth when positive.  Answers with no evidence are returned but
// not recorded in the history.
func (s *Service) AnswerQuestion(ctx context.Context, question string, contractID *types.ID, topK int) (*domain.Answer, error) {
	start := time.Now()
	if topK <= 0 {
		topK = s.topK
	}

	candidates, err := s.collectCandidates(ctx, contractID)
	if err != nil {
		return nil, err
	}

	questionEmbedding := s.embedder.EmbedOne(ctx, question)
	evidence := s.retriever.Retrieve(question, questionEmbedding, candidates, topK)

	if len(evidence) == 0 {
		answer := s.retriever.ComposeAnswer(nil, nil)
		s.record(answer, time.Since(start))
		s.logger.Info("question had no evidence", logging.String("question", question))
		return answer, nil
	}

	ids := make([]types.ID, len(evidence))
	for i, ev := range evidence {
		ids[i] = ev.Clause.ID
	}
	conflicts, err := s.conflicts.ListByClauseIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	answer := s.retriever.ComposeAnswer(evidence, conflicts)

	qa := &domain.QuestionAnswer{
		ID:                types.NewID(),
		Question:          question,
		QuestionEmbedding: questionEmbedding,
		Answer:            answer.Text,
		Confidence:        answer.Confidence,
		Evidence:          retrieval.EvidenceRefs(evidence),
		CreatedAt:         time.Now().UTC(),
	}
	if err := s.questionAnswers.Create(ctx, qa); err != nil {
		return nil, err
	}

	s.record(answer, time.Since(start))
	s.publisher.QuestionAnswered(ctx, kafka.QuestionAnsweredPayload{
		QuestionAnswerID: qa.ID.String(),
		Confidence:       answer.Confidence,
		EvidenceCount:    len(evidence),
		RequiresReview:   answer.RequiresReview,
		AnsweredAt:       time.Now().UTC(),
	})

	s.logger.Info("question answered",
		logging.String("qa_id", qa.ID.String()),
		logging.Float64("confidence", answer.Confidence),
		logging.Int("evidence", len(evidence)),
		logging.Bool("requires_review", answer.RequiresReview))
	return answer, nil
}

// SimilarQuestions ranks previously answered questions by similarity to the
// given question.  topK defaults to 3.
func (s *Service) SimilarQuestions(ctx context.Context, question string, topK int) ([]retrieval.SimilarQuestion, error) {
	if topK <= 0 {
		topK = defaultSimilarTopK
	}
	previous, err := s.questionAnswers.List(ctx)
	if err != nil {
		return nil, err
	}
	questionEmbedding := s.embedder.EmbedOne(ctx, question)
	return s.retriever.RankQuestions(question, questionEmbedding, previous, topK), nil
}

// History returns every recorded question answer.
func (s *Service) History(ctx context.Context) ([]*domain.QuestionAnswer, error) {
	return s.questionAnswers.List(ctx)
}

// collectCandidates loads the candidate clauses with their contract names.
// With a contract filter the contract must exist; without one, clauses whose
// contract is unknown fall back to an "Unknown" document name.
func (s *Service) collectCandidates(ctx context.Context, contractID *types.ID) ([]retrieval.Candidate, error) {
	names := make(map[types.ID]string)
	var clauses []*domain.Clause

	if contractID != nil {
		contract, err := s.contracts.GetByID(ctx, *contractID)
		if err != nil {
			return nil, err
		}
		names[contract.ID] = contract.Name
		clauses, err = s.clauses.ListByContract(ctx, contract.ID)
		if err != nil {
			return nil, err
		}
	} else {
		contracts, err := s.contracts.List(ctx)
		if err != nil {
			return nil, err
		}
		for _, c := range contracts {
			names[c.ID] = c.Name
		}
		clauses, err = s.clauses.ListAll(ctx)
		if err != nil {
			return nil, err
		}
	}

	candidates := make([]retrieval.Candidate, 0, len(clauses))
	for _, cl := range clauses {
		name, ok := names[cl.ContractID]
		if !ok {
			name = "Unknown"
		}
		candidates = append(candidates, retrieval.Candidate{Clause: cl, ContractName: name})
	}
	return candidates, nil
}

func (s *Service) record(answer *domain.Answer, elapsed time.Duration) {
	if s.metrics == nil {
		return
	}
	s.metrics.AnswerLatency.Observe(elapsed.Seconds())
	s.metrics.EvidenceRetrieved.Observe(float64(len(answer.Evidence)))
	label := "false"
	if answer.RequiresReview {
		label = "true"
	}
	s.metrics.QuestionsAnswered.WithLabelValues(label).Inc()
}
