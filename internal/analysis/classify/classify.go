// Package classify refines a clause's provisional type with a second, more
// specific fixed-priority keyword pass.
package classify

import (
	"strings"

	types "github.com/clauselens/clauselens/pkg/types/contract"
)

// Classifier refines provisional clause types.  It runs after embeddings are
// computed but has no data dependency on them.
type Classifier struct{}

// NewClassifier constructs a Classifier.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Refine overrides currentType on the first matching keyword group; no match
// leaves currentType unchanged.  A clause's type is refined at most once and
// never mutated thereafter.
func (c *Classifier) Refine(text string, currentType types.ClauseType) types.ClauseType {
	lower := strings.ToLower(text)

	switch {
	case strings.Contains(lower, "confidential") || strings.Contains(lower, "non-disclosure"):
		return types.ClauseConfidentiality
	case strings.Contains(lower, "payment") || strings.Contains(lower, "fee") || strings.Contains(lower, "invoice"):
		return types.ClausePayment
	case strings.Contains(lower, "intellectual property") || strings.Contains(lower, "copyright") || strings.Contains(lower, "patent"):
		return types.ClauseIntellectualProperty
	case strings.Contains(lower, "warranty") || strings.Contains(lower, "warrants") || strings.Contains(lower, "guarantee"):
		return types.ClauseWarranty
	case strings.Contains(lower, "indemnif") || strings.Contains(lower, "hold harmless"):
		return types.ClauseIndemnification
	case strings.Contains(lower, "force majeure") || strings.Contains(lower, "act of god"):
		return types.ClauseForceMajeure
	case strings.Contains(lower, "dispute") || strings.Contains(lower, "arbitration") || strings.Contains(lower, "litigation"):
		return types.ClauseDisputeResolution
	case strings.Contains(lower, "amend") || strings.Contains(lower, "modification") || strings.Contains(lower, "change"):
		return types.ClauseAmendment
	default:
		return currentType
	}
}
