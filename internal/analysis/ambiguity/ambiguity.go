// Package ambiguity scores a clause's wording for openness to multiple
// interpretations, derives the clause's risk level from its type tier, and
// produces interpretation records for ambiguous clauses.
package ambiguity

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	domain "github.com/clauselens/clauselens/internal/domain/contract"
	types "github.com/clauselens/clauselens/pkg/types/contract"
)

// Scoring weights.  Term-class hits contribute per distinct hit; structural
// signals contribute once.
const (
	weightAmbiguousTerm    = 0.15
	weightVagueQuantifier  = 0.10
	weightComplexCondition = 0.12
	weightMissingSpecifics = 0.25
	weightDoubleNegation   = 0.20
	weightLongSentences    = 0.15

	missingSpecificsMinLen = 100
	longSentenceWordCount  = 40
)

// Term lists scanned by substring containment against lowercased text.
var (
	ambiguousTerms = []string{
		"reasonable", "appropriate", "substantial", "material", "promptly",
		"timely", "as soon as possible", "best efforts", "good faith",
		"commercially reasonable", "may", "might", "approximately", "about",
		"around", "generally", "typically", "adequate", "sufficient",
		"necessary", "proper",
	}
	vagueQuantifiers = []string{
		"some", "several", "few", "many", "most", "numerous", "various",
		"certain", "multiple",
	}
	complexConditionals = []string{
		"unless", "except", "provided that", "subject to", "notwithstanding",
		"whereas", "whereby",
	}
	negationWords = []string{"not", "no", "never", "neither", "nor"}
)

var (
	digitRe        = regexp.MustCompile(`\d+`)
	dateRe         = regexp.MustCompile(`\d{1,2}/\d{1,2}/\d{2,4}|\d{4}-\d{2}-\d{2}`)
	sentenceCutRe  = regexp.MustCompile(`[.;]`)
)

// Result is the outcome of scoring one clause.
type Result struct {
	HasAmbiguity bool
	Issues       []string
	Score        float64
}

// Scorer performs rule-based ambiguity scoring.  It is stateless and safe
// for concurrent use.
type Scorer struct{}

// NewScorer constructs a Scorer.
func NewScorer() *Scorer {
	return &Scorer{}
}

// Analyze scores the clause text.  The score is the clamped sum of weighted
// contributions; HasAmbiguity is true exactly when at least one issue was
// found.
func (s *Scorer) Analyze(text string, clauseType types.ClauseType) Result {
	lower := strings.ToLower(text)
	var issues []string
	score := 0.0

	if found := matching(lower, ambiguousTerms); len(found) > 0 {
		issues = append(issues, "Ambiguous terms: "+strings.Join(found, ", "))
		score += float64(len(found)) * weightAmbiguousTerm
	}

	if found := matching(lower, vagueQuantifiers); len(found) > 0 {
		issues = append(issues, "Vague quantifiers: "+strings.Join(found, ", "))
		score += float64(len(found)) * weightVagueQuantifier
	}

	if found := matching(lower, complexConditionals); len(found) > 0 {
		issues = append(issues, "Complex conditionals: "+strings.Join(found, ", "))
		score += float64(len(found)) * weightComplexCondition
	}

	// Critical clause types are expected to carry concrete numbers or dates.
	hasNumbers := digitRe.MatchString(lower)
	hasDates := dateRe.MatchString(lower)
	if !hasNumbers && !hasDates && len(lower) > missingSpecificsMinLen {
		switch clauseType {
		case types.ClausePayment, types.ClauseTermination, types.ClauseLiability:
			issues = append(issues, "Lacks specific numbers or dates for critical clause type")
			score += weightMissingSpecifics
		}
	}

	if countNegations(lower) >= 2 {
		issues = append(issues, "Contains multiple negations (potentially confusing)")
		score += weightDoubleNegation
	}

	if avg := averageSentenceLength(text); avg > longSentenceWordCount {
		issues = append(issues, fmt.Sprintf("Long average sentence length (%.0f words)", avg))
		score += weightLongSentences
	}

	if score > 1.0 {
		score = 1.0
	}

	return Result{
		HasAmbiguity: len(issues) > 0,
		Issues:       issues,
		Score:        score,
	}
}

// matching returns the terms found in text as substrings, preserving the
// declaration order of the term list.
func matching(text string, terms []string) []string {
	var found []string
	for _, term := range terms {
		if strings.Contains(text, term) {
			found = append(found, term)
		}
	}
	return found
}

// countNegations counts how many distinct negation words occur as standalone
// words in the text.
func countNegations(lower string) int {
	padded := " " + lower + " "
	count := 0
	for _, neg := range negationWords {
		if strings.Contains(padded, " "+neg+" ") {
			count++
		}
	}
	return count
}

// averageSentenceLength returns the mean word count per sentence, splitting
// on '.' and ';'.  Empty fragments count toward the denominator; a guard
// keeps the division defined for empty input.
func averageSentenceLength(text string) float64 {
	sentences := sentenceCutRe.Split(text, -1)
	total := 0
	for _, s := range sentences {
		total += len(strings.Fields(s))
	}
	denom := len(sentences)
	if denom < 1 {
		denom = 1
	}
	return float64(total) / float64(denom)
}

// AssessRisk maps an ambiguity score to a risk level through the threshold
// ladder of the clause type's tier.
func (s *Scorer) AssessRisk(clauseType types.ClauseType, score float64) types.RiskLevel {
	switch clauseType.Tier() {
	case types.TierCritical:
		switch {
		case score > 0.6:
			return types.RiskCritical
		case score > 0.3:
			return types.RiskHigh
		case score > 0.15:
			return types.RiskMedium
		default:
			return types.RiskLow
		}
	case types.TierHigh:
		switch {
		case score > 0.7:
			return types.RiskHigh
		case score > 0.4:
			return types.RiskMedium
		default:
			return types.RiskLow
		}
	default:
		switch {
		case score > 0.8:
			return types.RiskHigh
		case score > 0.5:
			return types.RiskMedium
		default:
			return types.RiskLow
		}
	}
}

// MakeInterpretation builds the interpretation record for an ambiguous
// clause: templated guidance text keyed by clause type plus a reasoning
// string carrying the score and the issue list.
func (s *Scorer) MakeInterpretation(clause *domain.Clause, issues []string, score float64) *domain.Interpretation {
	risk := s.AssessRisk(clause.Type, score)

	reasoning := fmt.Sprintf("Ambiguity score: %.2f%%. ", score*100)
	reasoning += "Issues identified: " + strings.Join(issues, "; ")

	return &domain.Interpretation{
		ID:                  types.NewID(),
		ClauseID:            clause.ID,
		InterpretationText:  interpretationText(clause.Type, len(issues)),
		Reasoning:           reasoning,
		HasAmbiguity:        true,
		AmbiguityDetails:    issues,
		RequiresLegalReview: risk.RequiresLegalReview(),
		CreatedAt:           time.Now().UTC(),
	}
}

func interpretationText(clauseType types.ClauseType, issueCount int) string {
	var b strings.Builder
	b.WriteString("This ")
	b.WriteString(strings.ToLower(string(clauseType)))
	b.WriteString(" clause ")

	if issueCount == 1 {
		b.WriteString("contains ambiguous language that ")
	} else {
		b.WriteString("contains multiple ambiguities that ")
	}
	b.WriteString("may lead to different interpretations. ")

	switch clauseType {
	case types.ClausePayment:
		b.WriteString("Payment terms should specify exact amounts, dates, and conditions. ")
	case types.ClauseTermination:
		b.WriteString("Termination conditions should specify clear timelines and procedures. ")
	case types.ClauseLiability:
		b.WriteString("Liability limits should be explicitly stated with specific dollar amounts. ")
	case types.ClauseObligation, types.ClauseExclusion:
		b.WriteString("Obligations and exclusions should use clear, unambiguous language. ")
	}

	b.WriteString("Legal review is recommended to clarify interpretation.")
	return b.String()
}
