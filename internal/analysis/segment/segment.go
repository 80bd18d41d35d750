// Package segment splits section text into atomic clause drafts.  Fragments
// accumulate into a clause buffer until a fragment opens with an enumerator
// marker, which flushes the buffer; each draft receives a provisional type
// from a fixed-priority keyword scan.
package segment

import (
	"regexp"
	"strings"

	types "github.com/clauselens/clauselens/pkg/types/contract"
)

// Draft is a provisional clause produced by segmentation, before the
// classifier refinement pass.
type Draft struct {
	Text          string
	ClauseNumber  int
	SectionNumber string
	EstimatedType types.ClauseType
}

// Segmenter splits section text into clause drafts.
type Segmenter struct{}

// NewSegmenter constructs a Segmenter.
func NewSegmenter() *Segmenter {
	return &Segmenter{}
}

// enumeratorRe matches a fragment that opens a new enumerated clause, such
// as "(a)", "[ii]", "1)", or "3.1)".
var enumeratorRe = regexp.MustCompile(`^[([]*[a-z0-9]+[)\]]`)

// Keyword sets for the provisional type scan, checked in fixed priority
// order.  Exclusions come first: "shall not" must outrank the "shall" hit it
// contains.
var (
	exclusionKeywords = []string{
		"shall not", "except", "excluding", "does not include", "not applicable",
	}
	obligationKeywords = []string{
		"shall", "must", "will", "agrees to", "obligated", "required to",
	}
	liabilityKeywords = []string{
		"liable", "liability", "damages", "indemnify", "responsible for",
	}
	terminationKeywords = []string{
		"terminate", "termination", "cancel", "cancellation", "end this agreement",
	}
)

// SplitIntoClauses splits section text into drafts.  A section with no
// enumerator markers yields exactly one clause spanning the whole section;
// empty input yields nil.
func (s *Segmenter) SplitIntoClauses(text, sectionNumber string) []Draft {
	var (
		drafts       []Draft
		current      []string
		clauseNumber = 1
	)

	flush := func() {
		if len(current) == 0 {
			return
		}
		clauseText := strings.Join(current, " ")
		drafts = append(drafts, Draft{
			Text:          clauseText,
			ClauseNumber:  clauseNumber,
			SectionNumber: sectionNumber,
			EstimatedType: EstimateClauseType(clauseText),
		})
		clauseNumber++
		current = nil
	}

	for _, sentence := range splitSentences(text) {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}
		if enumeratorRe.MatchString(sentence) {
			flush()
			current = []string{sentence}
		} else {
			current = append(current, sentence)
		}
	}
	flush()

	return drafts
}

// splitSentences cuts text into sentence-like fragments at whitespace runs
// that follow '.' or ';' and precede an ASCII uppercase letter or an opening
// parenthesis.
func splitSentences(text string) []string {
	var parts []string
	start := 0
	i := 0
	for i < len(text) {
		if isSpace(text[i]) && i > 0 && (text[i-1] == '.' || text[i-1] == ';') {
			j := i
			for j < len(text) && isSpace(text[j]) {
				j++
			}
			if j < len(text) && (text[j] >= 'A' && text[j] <= 'Z' || text[j] == '(') {
				parts = append(parts, text[start:i])
				start = j
			}
			i = j
			continue
		}
		i++
	}
	parts = append(parts, text[start:])
	return parts
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

// EstimateClauseType assigns the provisional type from the fixed-priority
// keyword scan.  The first category with any hit wins regardless of hit
// count; no match yields GENERAL.
func EstimateClauseType(text string) types.ClauseType {
	lower := strings.ToLower(text)

	if containsAny(lower, exclusionKeywords) {
		return types.ClauseExclusion
	}
	if containsAny(lower, obligationKeywords) {
		return types.ClauseObligation
	}
	if containsAny(lower, liabilityKeywords) {
		return types.ClauseLiability
	}
	if containsAny(lower, terminationKeywords) {
		return types.ClauseTermination
	}
	return types.ClauseGeneral
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
