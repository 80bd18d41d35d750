// Package conflict detects pairwise clause conflicts: internal
// contradictions within one contract, amendment overrides against the direct
// parent, and conflicts across sibling versions.  A pair is compared only
// when both clauses carry embeddings and their cosine similarity clears the
// configured threshold; the contradiction heuristic then decides whether a
// conflict is recorded.
package conflict

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/clauselens/clauselens/internal/analysis/similarity"
	"github.com/clauselens/clauselens/internal/config"
	domain "github.com/clauselens/clauselens/internal/domain/contract"
	"github.com/clauselens/clauselens/internal/infrastructure/monitoring/logging"
	types "github.com/clauselens/clauselens/pkg/types/contract"
)

// Contradiction heuristic term sets, matched by substring containment on
// lowercased text.
var (
	obligationMarkers  = []string{"shall", "must", "will", "required"}
	prohibitionMarkers = []string{"shall not", "must not", "prohibited", "forbidden"}
	negationMarkers    = []string{"not", "no", "never", "without", "except", "excluding"}
)

// Detector runs the conflict scans.  Thresholds are captured at construction
// and immutable thereafter.
type Detector struct {
	similarityThreshold float64
	conflictThreshold   float64
	logger              logging.Logger
}

// NewDetector constructs a Detector with the given analysis thresholds.
func NewDetector(cfg config.AnalysisConfig, logger logging.Logger) *Detector {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Detector{
		similarityThreshold: cfg.SimilarityThreshold,
		conflictThreshold:   cfg.ConflictThreshold,
		logger:              logger.Named("conflict"),
	}
}

// VersionClauses pairs a sibling contract version with its clause set.
type VersionClauses struct {
	Contract *domain.Contract
	Clauses  []*domain.Clause
}

// ScanInput is the read-only snapshot a full scan operates on.  Clause
// persistence must have completed before the scan starts; the detector
// assumes the clause sets are immutable for the duration of its run.
type ScanInput struct {
	Contract *domain.Contract
	Clauses  []*domain.Clause

	// ParentClauses is non-nil only when Contract is an amendment with a
	// resolved parent; it enables the override scope.
	ParentClauses []*domain.Clause

	// OtherVersions holds the sibling contracts whose name contains this
	// contract's family token, with their clauses.
	OtherVersions []VersionClauses
}

// Scan runs the three scopes — internal, override, version — in parallel and
// returns their conflicts concatenated in scope order.
func (d *Detector) Scan(ctx context.Context, in ScanInput) ([]*domain.Conflict, error) {
	var internal, override, version []*domain.Conflict

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		internal = d.InternalConflicts(in.Clauses)
		return nil
	})
	g.Go(func() error {
		if in.Contract != nil && in.Contract.IsAmendment && len(in.ParentClauses) > 0 {
			override = d.OverrideConflicts(in.Clauses, in.ParentClauses)
		}
		return nil
	})
	g.Go(func() error {
		for _, other := range in.OtherVersions {
			version = append(version, d.VersionConflicts(in.Clauses, other.Clauses)...)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]*domain.Conflict, 0, len(internal)+len(override)+len(version))
	out = append(out, internal...)
	out = append(out, override...)
	out = append(out, version...)

	d.logger.Info("conflict scan complete",
		logging.Int("internal", len(internal)),
		logging.Int("override", len(override)),
		logging.Int("version", len(version)))
	return out, nil
}

// InternalConflicts compares all clause pairs within one contract, grouped
// and compared only within identical type buckets.
func (d *Detector) InternalConflicts(clauses []*domain.Clause) []*domain.Conflict {
	buckets := make(map[types.ClauseType][]*domain.Clause)
	for _, cl := range clauses {
		buckets[cl.Type] = append(buckets[cl.Type], cl)
	}

	var conflicts []*domain.Conflict
	// Iterate in declared type order for deterministic output.
	for _, ct := range types.AllClauseTypes {
		bucket := buckets[ct]
		for i, c1 := range bucket {
			for _, c2 := range bucket[i+1:] {
				if c := d.CheckPair(c1, c2, types.ConflictContradiction); c != nil {
					conflicts = append(conflicts, c)
				}
			}
		}
	}
	return conflicts
}

// OverrideConflicts compares amendment clauses against direct-parent clauses
// that share a type or a related section number.
func (d *Detector) OverrideConflicts(amendment, parent []*domain.Clause) []*domain.Conflict {
	var conflicts []*domain.Conflict
	for _, ac := range amendment {
		for _, pc := range parent {
			if ac.Type != pc.Type && !domain.SectionsRelated(ac.SectionNumber, pc.SectionNumber) {
				continue
			}
			if c := d.CheckPair(ac, pc, types.ConflictOverride); c != nil {
				conflicts = append(conflicts, c)
			}
		}
	}
	return conflicts
}

// VersionConflicts compares clauses against another version's clauses,
// restricted to matching clause type.
func (d *Detector) VersionConflicts(clauses, otherClauses []*domain.Clause) []*domain.Conflict {
	var conflicts []*domain.Conflict
	for _, c1 := range clauses {
		for _, c2 := range otherClauses {
			if c1.Type != c2.Type {
				continue
			}
			if c := d.CheckPair(c1, c2, types.ConflictVersion); c != nil {
				conflicts = append(conflicts, c)
			}
		}
	}
	return conflicts
}

// CheckPair evaluates one clause pair.  A pair with either embedding absent
// is skipped entirely; there is no lexical fallback in conflict detection.
// Returns nil when no conflict is recorded.
func (d *Detector) CheckPair(c1, c2 *domain.Clause, conflictType types.ConflictType) *domain.Conflict {
	if !c1.HasEmbedding() || !c2.HasEmbedding() {
		return nil
	}

	sim := similarity.Cosine(c1.Embedding, c2.Embedding)
	if sim <= d.similarityThreshold {
		return nil
	}

	score := ContradictionScore(c1.Text, c2.Text)
	if score <= d.conflictThreshold {
		return nil
	}

	return &domain.Conflict{
		ID:                  types.NewID(),
		ClauseID:            c1.ID,
		ConflictingClauseID: c2.ID,
		Type:                conflictType,
		Severity:            assessSeverity(c1.Type, score),
		ConfidenceScore:     score,
		Description:         describeConflict(c1, c2, conflictType, score),
		Status:              types.ReviewPending,
		CreatedAt:           time.Now().UTC(),
	}
}

// ContradictionScore measures how contradictory two texts are: +0.7 when one
// side carries an obligation marker and the other a prohibition marker
// (checked in both directions), +0.3 when their distinct-negation counts
// differ by at least 2, clamped to 1.0.  The measure is symmetric.
func ContradictionScore(text1, text2 string) float64 {
	t1 := strings.ToLower(text1)
	t2 := strings.ToLower(text2)

	score := 0.0

	hasObl1 := containsAny(t1, obligationMarkers)
	hasProh1 := containsAny(t1, prohibitionMarkers)
	hasObl2 := containsAny(t2, obligationMarkers)
	hasProh2 := containsAny(t2, prohibitionMarkers)

	if (hasObl1 && hasProh2) || (hasProh1 && hasObl2) {
		score += 0.7
	}

	if diff := countMarkers(t1, negationMarkers) - countMarkers(t2, negationMarkers); diff >= 2 || diff <= -2 {
		score += 0.3
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}

func containsAny(text string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}

// countMarkers counts how many distinct markers appear in text.
func countMarkers(text string, markers []string) int {
	n := 0
	for _, m := range markers {
		if strings.Contains(text, m) {
			n++
		}
	}
	return n
}

// assessSeverity maps the first clause's type and the contradiction score to
// a severity level.
func assessSeverity(clauseType types.ClauseType, score float64) types.RiskLevel {
	if clauseType.IsHighRiskEvidence() {
		if score > 0.7 {
			return types.RiskCritical
		}
		return types.RiskHigh
	}
	switch {
	case score > 0.7:
		return types.RiskHigh
	case score > 0.5:
		return types.RiskMedium
	default:
		return types.RiskLow
	}
}

// describeConflict renders the human-readable description for a conflict.
func describeConflict(c1, c2 *domain.Clause, conflictType types.ConflictType, score float64) string {
	var b strings.Builder
	b.WriteString(string(conflictType))
	b.WriteString(": ")

	switch conflictType {
	case types.ConflictOverride:
		fmt.Fprintf(&b, "Amendment clause (Section %s) may override original clause (Section %s). ",
			c1.SectionNumber, c2.SectionNumber)
	case types.ConflictVersion:
		fmt.Fprintf(&b, "Different versions contain conflicting clauses in sections %s and %s. ",
			c1.SectionNumber, c2.SectionNumber)
	default:
		fmt.Fprintf(&b, "Contradictory clauses found in sections %s and %s. ",
			c1.SectionNumber, c2.SectionNumber)
	}

	fmt.Fprintf(&b, "Conflict confidence: %.2f%%", score*100)
	return b.String()
}
