// Package contract defines the shared closed enumerations and identifier
// types used across the ClauseLens engine: clause categories, risk levels,
// conflict categories, and review states.  Keeping them here lets the domain,
// analysis, and infrastructure layers agree on a single vocabulary without
// import cycles.
package contract

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID is a string alias for UUID v4 entity identifiers.
type ID string

// NewID generates a new UUID v4.
func NewID() ID {
	return ID(uuid.New().String())
}

// Validate checks that the ID is a well-formed UUID.
func (id ID) Validate() error {
	if id == "" {
		return fmt.Errorf("ID cannot be empty")
	}
	if _, err := uuid.Parse(string(id)); err != nil {
		return fmt.Errorf("invalid ID format: %w", err)
	}
	return nil
}

func (id ID) String() string {
	return string(id)
}

// ClauseType is the closed set of clause categories.  Segmentation assigns a
// provisional type, the classifier may refine it exactly once, and no code
// mutates it afterwards.
type ClauseType string

const (
	ClauseObligation           ClauseType = "OBLIGATION"
	ClauseExclusion            ClauseType = "EXCLUSION"
	ClauseTermination          ClauseType = "TERMINATION"
	ClauseLiability            ClauseType = "LIABILITY"
	ClausePayment              ClauseType = "PAYMENT"
	ClauseConfidentiality      ClauseType = "CONFIDENTIALITY"
	ClauseIntellectualProperty ClauseType = "INTELLECTUAL_PROPERTY"
	ClauseWarranty             ClauseType = "WARRANTY"
	ClauseIndemnification      ClauseType = "INDEMNIFICATION"
	ClauseForceMajeure         ClauseType = "FORCE_MAJEURE"
	ClauseDisputeResolution    ClauseType = "DISPUTE_RESOLUTION"
	ClauseAmendment            ClauseType = "AMENDMENT"
	ClauseGeneral              ClauseType = "GENERAL"
)

// AllClauseTypes lists every valid ClauseType in declaration order.
var AllClauseTypes = []ClauseType{
	ClauseObligation,
	ClauseExclusion,
	ClauseTermination,
	ClauseLiability,
	ClausePayment,
	ClauseConfidentiality,
	ClauseIntellectualProperty,
	ClauseWarranty,
	ClauseIndemnification,
	ClauseForceMajeure,
	ClauseDisputeResolution,
	ClauseAmendment,
	ClauseGeneral,
}

func (t ClauseType) String() string {
	return string(t)
}

// IsValid reports whether t is one of the declared clause types.
func (t ClauseType) IsValid() bool {
	for _, v := range AllClauseTypes {
		if t == v {
			return true
		}
	}
	return false
}

// ParseClauseType converts a stored string into a ClauseType, case-insensitively.
func ParseClauseType(s string) (ClauseType, error) {
	t := ClauseType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", fmt.Errorf("unknown clause type %q", s)
	}
	return t, nil
}

// RiskTier groups clause types by how aggressively ambiguity escalates risk.
type RiskTier int

const (
	// TierCritical types use the steepest threshold ladder.
	TierCritical RiskTier = iota
	// TierHigh types escalate more slowly and never reach CRITICAL.
	TierHigh
	// TierStandard covers everything else.
	TierStandard
)

// Tier returns the risk tier for a clause type.  The assignment is exhaustive
// over AllClauseTypes; unknown types fall into the standard tier.
func (t ClauseType) Tier() RiskTier {
	switch t {
	case ClauseLiability, ClauseIndemnification, ClauseTermination, ClausePayment, ClauseIntellectualProperty:
		return TierCritical
	case ClauseObligation, ClauseExclusion, ClauseWarranty, ClauseConfidentiality, ClauseDisputeResolution:
		return TierHigh
	default:
		return TierStandard
	}
}

// IsHighRiskEvidence reports whether the type belongs to the fixed set that
// pushes an answer toward mandatory review when it appears in evidence.
func (t ClauseType) IsHighRiskEvidence() bool {
	switch t {
	case ClauseLiability, ClauseTermination, ClauseIndemnification, ClausePayment:
		return true
	default:
		return false
	}
}

// RiskLevel is the four-step risk classification assigned to a clause.
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

func (r RiskLevel) String() string {
	return string(r)
}

// IsValid reports whether r is one of the declared risk levels.
func (r RiskLevel) IsValid() bool {
	switch r {
	case RiskLow, RiskMedium, RiskHigh, RiskCritical:
		return true
	}
	return false
}

// Rank orders risk levels for monotonicity checks: LOW=0 .. CRITICAL=3.
func (r RiskLevel) Rank() int {
	switch r {
	case RiskLow:
		return 0
	case RiskMedium:
		return 1
	case RiskHigh:
		return 2
	case RiskCritical:
		return 3
	}
	return -1
}

// RequiresLegalReview reports whether the level mandates human legal review.
func (r RiskLevel) RequiresLegalReview() bool {
	return r == RiskHigh || r == RiskCritical
}

// ConflictType classifies how two clauses came to be in conflict.
type ConflictType string

const (
	// ConflictContradiction marks clauses within one contract whose language
	// is mutually incompatible.
	ConflictContradiction ConflictType = "CONTRADICTION"

	// ConflictOverride marks an amendment clause that supersedes a clause of
	// its direct parent contract.
	ConflictOverride ConflictType = "OVERRIDE"

	// ConflictVersion marks conflicting clauses across sibling versions of
	// the same contract family.
	ConflictVersion ConflictType = "VERSION_CONFLICT"
)

func (c ConflictType) String() string {
	return string(c)
}

// IsValid reports whether c is one of the declared conflict types.
func (c ConflictType) IsValid() bool {
	switch c {
	case ConflictContradiction, ConflictOverride, ConflictVersion:
		return true
	}
	return false
}

// ReviewStatus tracks the resolution state of a recorded conflict.
type ReviewStatus string

const (
	ReviewPending            ReviewStatus = "PENDING"
	ReviewInReview           ReviewStatus = "IN_REVIEW"
	ReviewApproved           ReviewStatus = "APPROVED"
	ReviewRejected           ReviewStatus = "REJECTED"
	ReviewNeedsClarification ReviewStatus = "NEEDS_CLARIFICATION"
)

func (s ReviewStatus) String() string {
	return string(s)
}

// IsValid reports whether s is one of the declared review states.
func (s ReviewStatus) IsValid() bool {
	switch s {
	case ReviewPending, ReviewInReview, ReviewApproved, ReviewRejected, ReviewNeedsClarification:
		return true
	}
	return false
}

// DocumentFormat identifies a declared source-document format.
type DocumentFormat string

const (
	FormatTxt  DocumentFormat = "txt"
	FormatPDF  DocumentFormat = "pdf"
	FormatDocx DocumentFormat = "docx"
)

// ParseDocumentFormat maps a file extension (with or without dot) to a
// declared format.  Unknown extensions are returned as-is so the extractor
// can emit its typed unsupported-format failure.
func ParseDocumentFormat(ext string) DocumentFormat {
	return DocumentFormat(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), ".")))
}
