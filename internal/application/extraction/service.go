// Package extraction implements the contract ingestion pipeline: decode the
// document, identify its section structure, segment sections into clauses,
// refine clause types, attach embeddings, and persist everything atomically.
package extraction

import (
	"context"
	"time"

	"github.com/clauselens/clauselens/internal/analysis/classify"
	"github.com/clauselens/clauselens/internal/analysis/docparse"
	"github.com/clauselens/clauselens/internal/analysis/segment"
	domain "github.com/clauselens/clauselens/internal/domain/contract"
	"github.com/clauselens/clauselens/internal/infrastructure/embedding"
	"github.com/clauselens/clauselens/internal/infrastructure/messaging/kafka"
	"github.com/clauselens/clauselens/internal/infrastructure/monitoring/logging"
	"github.com/clauselens/clauselens/internal/infrastructure/monitoring/prometheus"
	types "github.com/clauselens/clauselens/pkg/types/contract"
)

// Service runs the extraction pipeline.
type Service struct {
	contracts domain.ContractRepository
	clauses   domain.ClauseRepository
	uow       domain.UnitOfWork

	embedder  embedding.Provider
	publisher kafka.EventPublisher
	metrics   *prometheus.Metrics

	analyzer   *docparse.StructureAnalyzer
	segmenter  *segment.Segmenter
	classifier *classify.Classifier
	logger     logging.Logger
}

// NewService constructs the extraction Service.  publisher and metrics may be
// nil; they degrade to no-ops.
func NewService(
	contracts domain.ContractRepository,
	clauses domain.ClauseRepository,
	uow domain.UnitOfWork,
	embedder embedding.Provider,
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
		contracts:  contracts,
		clauses:    clauses,
		uow:        uow,
		embedder:   embedder,
		publisher:  publisher,
		metrics:    metrics,
		analyzer:   docparse.NewStructureAnalyzer(),
		segmenter:  segment.NewSegmenter(),
		classifier: classify.NewClassifier(),
		logger:     log.Named("extraction"),
	}
}

// Input describes one document to ingest.
type Input struct {
	Name             string
	FileName         string
	Format           types.DocumentFormat
	Data             []byte
	IsAmendment      bool
	ParentContractID *types.ID
}

// Result is the outcome of one extraction.
type Result struct {
	Contract *domain.Contract
	Clauses  []*domain.Clause
}

// ExtractFromContract runs the full pipeline for one document.  The contract
// and all its clauses commit in one transaction; a failure anywhere leaves no
// partial state behind.
func (s *Service) ExtractFromContract(ctx context.Context, in Input) (*Result, error) {
	start := time.Now()

	pages, err := docparse.Extract(in.Data, in.Format)
	if err != nil {
		return nil, err
	}

	contract := domain.NewContract(in.Name, in.FileName, in.Format)
	contract.IsAmendment = in.IsAmendment
	contract.ParentContractID = in.ParentContractID

	clauses := s.buildClauses(contract, pages)
	s.attachEmbeddings(ctx, clauses)

	err = s.uow.WithinTx(ctx, func(txCtx context.Context) error {
		if err := s.contracts.Create(txCtx, contract); err != nil {
			return err
		}
		return s.clauses.CreateBatch(txCtx, clauses)
	})
	if err != nil {
		return nil, err
	}

	s.recordMetrics(clauses, time.Since(start))
	s.publisher.ContractExtracted(ctx, kafka.ContractExtractedPayload{
		ContractID:  contract.ID.String(),
		Name:        contract.Name,
		ClauseCount: len(clauses),
		ExtractedAt: time.Now().UTC(),
	})

	s.logger.Info("contract extracted",
		logging.String("contract_id", contract.ID.String()),
		logging.String("name", contract.Name),
		logging.Int("pages", len(pages)),
		logging.Int("clauses", len(clauses)))

	return &Result{Contract: contract, Clauses: clauses}, nil
}

// buildClauses walks the pages: each page's identified sections — or the
// implicit whole-page section when none are found — are segmented into
// drafts, refined, normalized, and numbered by document position.
func (s *Service) buildClauses(contract *domain.Contract, pages []docparse.Page) []*domain.Clause {
	var clauses []*domain.Clause
	position := 0
	now := time.Now().UTC()

	for _, page := range pages {
		sections := s.analyzer.IdentifySections(page.Text)

		type sectionSpan struct {
			section docparse.Section
			text    string
		}
		var spans []sectionSpan
		if len(sections) == 0 {
			spans = append(spans, sectionSpan{docparse.ImplicitSection(), page.Text})
		} else {
			for _, sec := range sections {
				spans = append(spans, sectionSpan{sec, s.analyzer.SectionText(page.Text, sec.Position, sections)})
			}
		}

		for _, span := range spans {
			for _, draft := range s.segmenter.SplitIntoClauses(span.text, span.section.Number) {
				refined := s.classifier.Refine(draft.Text, draft.EstimatedType)
				clauses = append(clauses, &domain.Clause{
					ID:                 types.NewID(),
					ContractID:         contract.ID,
					SectionNumber:      span.section.Number,
					ClausePath:         domain.BuildClausePath(span.section.Number, draft.ClauseNumber),
					Title:              span.section.Title,
					Text:               draft.Text,
					NormalizedText:     domain.NormalizeText(draft.Text),
					Type:               refined,
					PageNumber:         page.Number,
					PositionInDocument: position,
					CreatedAt:          now,
				})
				position++
			}
		}
	}
	return clauses
}

// attachEmbeddings embeds all clause texts in one batch and assigns the
// vectors.  Absent vectors leave the clause on the lexical path.
func (s *Service) attachEmbeddings(ctx context.Context, clauses []*domain.Clause) {
	if len(clauses) == 0 {
		return
	}

	texts := make([]string, len(clauses))
	for i, cl := range clauses {
		texts[i] = cl.Text
	}

	vectors := s.embedder.EmbedBatch(ctx, texts)
	embedded := 0
	for i, vec := range vectors {
		if len(vec) > 0 {
			clauses[i].Embedding = vec
			embedded++
		}
	}

	if s.metrics != nil {
		outcome := "ok"
		if embedded == 0 {
			outcome = "absent"
		}
		s.metrics.EmbeddingBatches.WithLabelValues(outcome).Inc()
	}
	s.logger.Debug("embeddings attached",
		logging.Int("clauses", len(clauses)),
		logging.Int("embedded", embedded))
}

func (s *Service) recordMetrics(clauses []*domain.Clause, elapsed time.Duration) {
	if s.metrics == nil {
		return
	}
	for _, cl := range clauses {
		s.metrics.ClausesExtracted.WithLabelValues(string(cl.Type)).Inc()
	}
	s.metrics.ExtractionDuration.Observe(elapsed.Seconds())
}
