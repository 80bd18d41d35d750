// Package qa ranks clauses as evidence for a question and composes an
// extractive answer from the top-ranked clause.  Ranking uses embedding
// cosine similarity when both the question and the clause carry vectors and
// falls back to lexical token overlap otherwise, so answering degrades
// gracefully when no embedding provider is configured.
package qa

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/clauselens/clauselens/internal/analysis/similarity"
	domain "github.com/clauselens/clauselens/internal/domain/contract"
)

// NoEvidenceAnswer is returned verbatim when no candidate clause exists.
const NoEvidenceAnswer = "I couldn't find relevant clauses to answer this question."

// lowConfidenceThreshold marks answers whose top evidence is too weak to
// stand without review.
const lowConfidenceThreshold = 0.6

// evidenceAmbiguousTerms is the reduced term list scanned over evidence
// clauses when composing an answer.  It is narrower than the full scoring
// list on purpose: only terms worth flagging in an answer surface here.
var evidenceAmbiguousTerms = []string{
	"reasonable", "appropriate", "substantial", "material",
	"promptly", "timely", "best efforts", "good faith",
}

// Candidate pairs a clause with the name of the contract it belongs to.
type Candidate struct {
	Clause       *domain.Clause
	ContractName string
}

// Retriever ranks candidates and composes answers.  It is stateless and safe
// for concurrent use.
type Retriever struct{}

// NewRetriever constructs a Retriever.
func NewRetriever() *Retriever {
	return &Retriever{}
}

// Retrieve scores every candidate against the question and returns the topK
// highest-scoring ones as evidence, ordered by descending relevance.  A
// candidate is scored by embedding cosine similarity when questionEmbedding
// is present and the clause carries a vector, by lexical overlap between the
// question and the clause text otherwise.  Ties keep input order.
func (r *Retriever) Retrieve(question string, questionEmbedding []float64, candidates []Candidate, topK int) []domain.EvidenceClause {
	if len(candidates) == 0 || topK <= 0 {
		return nil
	}

	evidence := make([]domain.EvidenceClause, 0, len(candidates))
	for _, cand := range candidates {
		score := 0.0
		if len(questionEmbedding) > 0 && cand.Clause.HasEmbedding() {
			score = similarity.Cosine(questionEmbedding, cand.Clause.Embedding)
		} else {
			score = similarity.Lexical(question, cand.Clause.Text)
		}
		evidence = append(evidence, domain.EvidenceClause{
			Clause:       cand.Clause,
			ContractName: cand.ContractName,
			Relevance:    score,
		})
	}

	sort.SliceStable(evidence, func(i, j int) bool {
		return evidence[i].Relevance > evidence[j].Relevance
	})
	if topK < len(evidence) {
		evidence = evidence[:topK]
	}
	return evidence
}

// ComposeAnswer builds the full answer for the given evidence set and the
// conflicts already known to involve it.  Empty evidence yields the
// no-evidence sentinel with zero confidence and no review flag.
func (r *Retriever) ComposeAnswer(evidence []domain.EvidenceClause, conflicts []*domain.Conflict) *domain.Answer {
	if len(evidence) == 0 {
		return &domain.Answer{
			Text:           NoEvidenceAnswer,
			Confidence:     0,
			RequiresReview: false,
		}
	}

	text, confidence := GenerateAnswer(evidence)
	ambiguities := DetectAmbiguities(evidence)

	return &domain.Answer{
		Text:           text,
		Confidence:     confidence,
		Evidence:       evidence,
		Ambiguities:    ambiguities,
		Conflicts:      conflicts,
		RequiresReview: NeedsReview(evidence, conflicts, ambiguities),
	}
}

// GenerateAnswer renders the extractive answer from the most relevant
// evidence clause, citing its document and section, and appends a supporting
// note when further evidence exists.  Confidence is the top clause's
// relevance score.
func GenerateAnswer(evidence []domain.EvidenceClause) (string, float64) {
	if len(evidence) == 0 {
		return "No relevant information found.", 0
	}

	top := evidence[0]

	var b strings.Builder
	b.WriteString("Based on ")
	b.WriteString(top.ContractName)
	if top.Clause.SectionNumber != "" {
		b.WriteString(", Section ")
		b.WriteString(top.Clause.SectionNumber)
	}
	b.WriteString(":\n\n\"")
	b.WriteString(top.Clause.Text)
	b.WriteString("\"")

	if len(evidence) > 1 {
		fmt.Fprintf(&b, "\n\nThis is further supported by %d related clause(s) in ", len(evidence)-1)
		b.WriteString(strings.Join(uniqueDocuments(evidence[1:]), ", "))
		b.WriteString(".")
	}

	return b.String(), top.Relevance
}

// uniqueDocuments returns the distinct contract names in first-appearance
// order.
func uniqueDocuments(evidence []domain.EvidenceClause) []string {
	seen := make(map[string]struct{}, len(evidence))
	var docs []string
	for _, e := range evidence {
		if _, ok := seen[e.ContractName]; ok {
			continue
		}
		seen[e.ContractName] = struct{}{}
		docs = append(docs, e.ContractName)
	}
	return docs
}

// DetectAmbiguities scans each evidence clause for the reduced ambiguous-term
// list and returns one message per affected clause.
func DetectAmbiguities(evidence []domain.EvidenceClause) []string {
	var ambiguities []string
	for _, e := range evidence {
		lower := strings.ToLower(e.Clause.Text)
		var found []string
		for _, term := range evidenceAmbiguousTerms {
			if strings.Contains(lower, term) {
				found = append(found, term)
			}
		}
		if len(found) == 0 {
			continue
		}
		section := e.Clause.SectionNumber
		if section == "" {
			section = "Unknown"
		}
		ambiguities = append(ambiguities,
			fmt.Sprintf("Section %s contains ambiguous terms: %s", section, strings.Join(found, ", ")))
	}
	return ambiguities
}

// NeedsReview reports whether the answer requires legal review: two or more
// high-risk evidence clause types, any conflict among the evidence, two or
// more ambiguity flags, or a top relevance below the confidence threshold.
func NeedsReview(evidence []domain.EvidenceClause, conflicts []*domain.Conflict, ambiguities []string) bool {
	highRisk := 0
	for _, e := range evidence {
		if e.Clause.Type.IsHighRiskEvidence() {
			highRisk++
		}
	}
	if highRisk >= 2 {
		return true
	}
	if len(conflicts) > 0 {
		return true
	}
	if len(ambiguities) >= 2 {
		return true
	}
	if len(evidence) > 0 && evidence[0].Relevance < lowConfidenceThreshold {
		return true
	}
	return false
}

// SimilarQuestion is one previously answered question ranked against a new
// one.
type SimilarQuestion struct {
	Question   string    `json:"question"`
	Answer     string    `json:"answer"`
	Similarity float64   `json:"similarity"`
	AskedAt    time.Time `json:"asked_at"`
}

// RankQuestions scores previously answered questions against the new one and
// returns the topK most similar.  Scoring mirrors Retrieve: embedding cosine
// when both sides carry vectors, lexical overlap otherwise.
func (r *Retriever) RankQuestions(question string, questionEmbedding []float64, previous []*domain.QuestionAnswer, topK int) []SimilarQuestion {
	if len(previous) == 0 || topK <= 0 {
		return nil
	}

	ranked := make([]SimilarQuestion, 0, len(previous))
	for _, qa := range previous {
		score := 0.0
		if len(questionEmbedding) > 0 && len(qa.QuestionEmbedding) > 0 {
			score = similarity.Cosine(questionEmbedding, qa.QuestionEmbedding)
		} else {
			score = similarity.Lexical(question, qa.Question)
		}
		ranked = append(ranked, SimilarQuestion{
			Question:   qa.Question,
			Answer:     qa.Answer,
			Similarity: score,
			AskedAt:    qa.CreatedAt,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Similarity > ranked[j].Similarity
	})
	if topK < len(ranked) {
		ranked = ranked[:topK]
	}
	return ranked
}

// EvidenceRefs projects evidence into the persisted reference form.
func EvidenceRefs(evidence []domain.EvidenceClause) []domain.EvidenceRef {
	refs := make([]domain.EvidenceRef, 0, len(evidence))
	for _, e := range evidence {
		refs = append(refs, domain.EvidenceRef{
			ClauseID:  e.Clause.ID,
			Relevance: e.Relevance,
		})
	}
	return refs
}
