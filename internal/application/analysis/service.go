// Package analysis implements the post-extraction passes over a stored
// contract: per-clause ambiguity scoring with risk assignment, and conflict
// detection across the contract, its parent, and its sibling versions.
package analysis

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/clauselens/clauselens/internal/analysis/ambiguity"
	"github.com/clauselens/clauselens/internal/analysis/conflict"
	"github.com/clauselens/clauselens/internal/config"
	domain "github.com/clauselens/clauselens/internal/domain/contract"
	"github.com/clauselens/clauselens/internal/infrastructure/messaging/kafka"
	"github.com/clauselens/clauselens/internal/infrastructure/monitoring/logging"
	"github.com/clauselens/clauselens/internal/infrastructure/monitoring/prometheus"
	types "github.com/clauselens/clauselens/pkg/types/contract"
)

// ambiguityWorkers bounds the concurrent per-clause scoring goroutines.
const ambiguityWorkers = 8

// Service runs the analysis passes.
type Service struct {
	contracts       domain.ContractRepository
	clauses         domain.ClauseRepository
	conflicts       domain.ConflictRepository
	interpretations domain.InterpretationRepository
	uow             domain.UnitOfWork

	scorer    *ambiguity.Scorer
	detector  *conflict.Detector
	publisher kafka.EventPublisher
	metrics   *prometheus.Metrics
	logger    logging.Logger
}

// NewService constructs the analysis Service.  publisher and metrics may be
// nil; they degrade to no-ops.
func NewService(
	contracts domain.ContractRepository,
	clauses domain.ClauseRepository,
	conflicts domain.ConflictRepository,
	interpretations domain.InterpretationRepository,
	uow domain.UnitOfWork,
	cfg config.AnalysisConfig,
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
		interpretations: interpretations,
		uow:             uow,
		scorer:          ambiguity.NewScorer(),
		detector:        conflict.NewDetector(cfg, log),
		publisher:       publisher,
		metrics:         metrics,
		logger:          log.Named("analysis"),
	}
}

// Report summarizes one ambiguity pass over a contract.
type Report struct {
	ContractID       types.ID
	ClausesAnalyzed  int
	AmbiguousClauses int
	Interpretations  []*domain.Interpretation
}

// AnalyzeAllClauses scores every clause of the contract for ambiguity,
// assigns risk levels, and records one interpretation per ambiguous clause.
// Scoring runs concurrently; persistence happens once, in one transaction.
func (s *Service) AnalyzeAllClauses(ctx context.Context, contractID types.ID) (*Report, error) {
	start := time.Now()

	contract, err := s.contracts.GetByID(ctx, contractID)
	if err != nil {
		return nil, err
	}
	clauses, err := s.clauses.ListByContract(ctx, contract.ID)
	if err != nil {
		return nil, err
	}

	type scored struct {
		clause *domain.Clause
		risk   types.RiskLevel
		result ambiguity.Result
	}

	results := make([]scored, len(clauses))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ambiguityWorkers)
	for i, cl := range clauses {
		i, cl := i, cl
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res := s.scorer.Analyze(cl.Text, cl.Type)
			results[i] = scored{
				clause: cl,
				risk:   s.scorer.AssessRisk(cl.Type, res.Score),
				result: res,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var interpretations []*domain.Interpretation
	for _, r := range results {
		if r.result.HasAmbiguity {
			interpretations = append(interpretations,
				s.scorer.MakeInterpretation(r.clause, r.result.Issues, r.result.Score))
		}
	}

	err = s.uow.WithinTx(ctx, func(txCtx context.Context) error {
		for _, r := range results {
			if err := s.clauses.UpdateRiskLevel(txCtx, r.clause.ID, r.risk); err != nil {
				return err
			}
		}
		return s.interpretations.CreateBatch(txCtx, interpretations)
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.AnalysisDuration.WithLabelValues("ambiguity").Observe(time.Since(start).Seconds())
	}
	s.logger.Info("ambiguity analysis complete",
		logging.String("contract_id", contract.ID.String()),
		logging.Int("clauses", len(clauses)),
		logging.Int("ambiguous", len(interpretations)))

	return &Report{
		ContractID:       contract.ID,
		ClausesAnalyzed:  len(clauses),
		AmbiguousClauses: len(interpretations),
		Interpretations:  interpretations,
	}, nil
}

// DetectConflicts scans the contract against itself, against its parent when
// it is an amendment, and against sibling versions sharing its name family,
// then persists whatever it finds.
func (s *Service) DetectConflicts(ctx context.Context, contractID types.ID) ([]*domain.Conflict, error) {
	start := time.Now()

	contract, err := s.contracts.GetByID(ctx, contractID)
	if err != nil {
		return nil, err
	}
	clauses, err := s.clauses.ListByContract(ctx, contract.ID)
	if err != nil {
		return nil, err
	}

	in := conflict.ScanInput{Contract: contract, Clauses: clauses}

	if contract.IsAmendment && contract.ParentContractID != nil {
		parentClauses, err := s.clauses.ListByContract(ctx, *contract.ParentContractID)
		if err != nil {
			return nil, err
		}
		in.ParentClauses = parentClauses
	}

	in.OtherVersions, err = s.siblingVersions(ctx, contract)
	if err != nil {
		return nil, err
	}

	found, err := s.detector.Scan(ctx, in)
	if err != nil {
		return nil, err
	}

	if err := s.conflicts.CreateBatch(ctx, found); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		for _, c := range found {
			s.metrics.ConflictsDetected.WithLabelValues(string(c.Type), string(c.Severity)).Inc()
		}
		s.metrics.AnalysisDuration.WithLabelValues("conflict").Observe(time.Since(start).Seconds())
	}
	s.publisher.ConflictsDetected(ctx, kafka.ConflictsDetectedPayload{
		ContractID:    contract.ID.String(),
		ConflictCount: len(found),
		DetectedAt:    time.Now().UTC(),
	})

	s.logger.Info("conflict detection complete",
		logging.String("contract_id", contract.ID.String()),
		logging.Int("conflicts", len(found)))
	return found, nil
}

// siblingVersions collects the other contracts whose name contains this
// contract's family token, each with its clauses.  Clause loading is
// concurrent; order follows the contract listing.
func (s *Service) siblingVersions(ctx context.Context, contract *domain.Contract) ([]conflict.VersionClauses, error) {
	token := contract.FamilyToken()
	if token == "" {
		return nil, nil
	}

	all, err := s.contracts.List(ctx)
	if err != nil {
		return nil, err
	}

	var siblings []*domain.Contract
	for _, other := range all {
		if other.ID == contract.ID {
			continue
		}
		if strings.Contains(other.Name, token) {
			siblings = append(siblings, other)
		}
	}
	if len(siblings) == 0 {
		return nil, nil
	}

	versions := make([]conflict.VersionClauses, len(siblings))
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for i, sib := range siblings {
		i, sib := i, sib
		g.Go(func() error {
			clauses, err := s.clauses.ListByContract(gctx, sib.ID)
			if err != nil {
				return err
			}
			mu.Lock()
			versions[i] = conflict.VersionClauses{Contract: sib, Clauses: clauses}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return versions, nil
}
