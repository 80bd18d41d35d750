// Package contract holds the domain entities of the clause-analysis engine —
// contracts, clauses, conflicts, interpretations, and answered questions —
// together with the normalization and lineage logic that operates on them.
// Entities carry no persistence or transport concerns.
package contract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	types "github.com/clauselens/clauselens/pkg/types/contract"
)

// Contract is the aggregate root: one ingested document, possibly an
// amendment of another contract or one version among siblings that share a
// name family.
type Contract struct {
	ID               types.ID             `json:"id"`
	Name             string               `json:"name"`
	FileName         string               `json:"file_name"`
	Format           types.DocumentFormat `json:"format"`
	IsAmendment      bool                 `json:"is_amendment"`
	ParentContractID *types.ID            `json:"parent_contract_id,omitempty"`
	CreatedAt        time.Time            `json:"created_at"`
	UpdatedAt        time.Time            `json:"updated_at"`
}

// NewContract constructs a Contract with a fresh ID and timestamps.
func NewContract(name, fileName string, format types.DocumentFormat) *Contract {
	now := time.Now().UTC()
	return &Contract{
		ID:        types.NewID(),
		Name:      name,
		FileName:  fileName,
		Format:    format,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// FamilyToken returns the first whitespace-separated token of the contract
// name, used to group sibling versions.  Empty names yield "".
func (c *Contract) FamilyToken() string {
	fields := strings.Fields(c.Name)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// Clause is an atomic, independently addressable unit of contract text.
// ClausePath is fixed at creation and never recomputed; Type is mutated at
// most once, by the classifier refinement pass; RiskLevel is assigned only by
// ambiguity scoring.
type Clause struct {
	ID                 types.ID        `json:"id"`
	ContractID         types.ID        `json:"contract_id"`
	SectionNumber      string          `json:"section_number"`
	ClausePath         string          `json:"clause_path"`
	Title              string          `json:"title"`
	Text               string          `json:"text"`
	NormalizedText     string          `json:"normalized_text"`
	Type               types.ClauseType `json:"type"`
	RiskLevel          types.RiskLevel `json:"risk_level"`
	PageNumber         int             `json:"page_number"`
	PositionInDocument int             `json:"position_in_document"`
	Embedding          []float64       `json:"embedding,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
}

// HasEmbedding reports whether the clause carries an embedding vector.
func (cl *Clause) HasEmbedding() bool {
	return len(cl.Embedding) > 0
}

// Conflict records a detected incompatibility between two clauses.
type Conflict struct {
	ID                  types.ID           `json:"id"`
	ClauseID            types.ID           `json:"clause_id"`
	ConflictingClauseID types.ID           `json:"conflicting_clause_id"`
	Type                types.ConflictType `json:"type"`
	Severity            types.RiskLevel    `json:"severity"`
	ConfidenceScore     float64            `json:"confidence_score"`
	Description         string             `json:"description"`
	Status              types.ReviewStatus `json:"status"`
	CreatedAt           time.Time          `json:"created_at"`
}

// Interpretation is produced once per ambiguous clause per analysis run.
type Interpretation struct {
	ID                  types.ID  `json:"id"`
	ClauseID            types.ID  `json:"clause_id"`
	InterpretationText  string    `json:"interpretation_text"`
	Reasoning           string    `json:"reasoning"`
	HasAmbiguity        bool      `json:"has_ambiguity"`
	AmbiguityDetails    []string  `json:"ambiguity_details"`
	RequiresLegalReview bool      `json:"requires_legal_review"`
	CreatedAt           time.Time `json:"created_at"`
}

// EvidenceRef is the persisted projection of one evidence item backing an
// answered question.
type EvidenceRef struct {
	ClauseID  types.ID `json:"clause_id"`
	Relevance float64  `json:"relevance"`
}

// QuestionAnswer is the persisted record of one answered question.
type QuestionAnswer struct {
	ID                types.ID      `json:"id"`
	Question          string        `json:"question"`
	QuestionEmbedding []float64     `json:"question_embedding,omitempty"`
	Answer            string        `json:"answer"`
	Confidence        float64       `json:"confidence"`
	Evidence          []EvidenceRef `json:"evidence"`
	CreatedAt         time.Time     `json:"created_at"`
}

// EvidenceClause is the transient QA projection: a clause plus its relevance
// to the question and the name of the contract it came from.
type EvidenceClause struct {
	Clause       *Clause
	ContractName string
	Relevance    float64
}

// Answer is the transient result of answering a question.
type Answer struct {
	Text           string           `json:"text"`
	Confidence     float64          `json:"confidence"`
	Evidence       []EvidenceClause `json:"evidence"`
	Ambiguities    []string         `json:"ambiguities"`
	Conflicts      []*Conflict      `json:"conflicts"`
	RequiresReview bool             `json:"requires_review"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Text normalization and clause paths
// ─────────────────────────────────────────────────────────────────────────────

var (
	nonAlnumSpaceRe = regexp.MustCompile(`[^a-z0-9 ]+`)
	multiSpaceRe    = regexp.MustCompile(` +`)
)

// NormalizeText projects text onto its canonical comparison form: lowercase,
// alphanumeric-and-space only, single-spaced, trimmed.  Special characters
// become word separators rather than vanishing, so "net-30" normalizes to
// "net 30".  The projection is idempotent:
// NormalizeText(NormalizeText(s)) == NormalizeText(s).
func NormalizeText(s string) string {
	s = strings.ToLower(s)
	s = nonAlnumSpaceRe.ReplaceAllString(s, " ")
	s = multiSpaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// BuildClausePath derives the immutable clause path from the section number
// and the 1-based clause index within the section.
func BuildClausePath(sectionNumber string, clauseIndex int) string {
	if sectionNumber == "" {
		return strconv.Itoa(clauseIndex)
	}
	return fmt.Sprintf("%s.%d", sectionNumber, clauseIndex)
}

// SectionsRelated reports whether two section numbering strings refer to
// related sections by comparing only their leading dot-segment.  Either side
// being empty is "no relation".
func SectionsRelated(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return leadingSegment(a) == leadingSegment(b)
}

func leadingSegment(s string) string {
	if i := strings.IndexByte(s, '.'); i >= 0 {
		return s[:i]
	}
	return s
}
