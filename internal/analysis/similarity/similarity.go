// Package similarity implements the two similarity measures the engine is
// built on: cosine similarity over embedding vectors, and a lexical
// token-overlap measure used whenever embeddings are absent.
package similarity

import (
	"math"
	"regexp"
	"strings"
)

// Cosine returns the cosine similarity of two vectors.  It returns 0 when the
// vectors differ in length or either has zero norm, so callers never need a
// divide-by-zero guard of their own.
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

var tokenRe = regexp.MustCompile(`[a-z0-9]+`)

// Tokenize lowercases s and returns the set of its alphanumeric runs.
func Tokenize(s string) map[string]struct{} {
	tokens := tokenRe.FindAllString(strings.ToLower(s), -1)
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

// Lexical returns the token-overlap similarity of two texts:
// |A ∩ B| / sqrt(|A|·|B|) over the unique-token sets A and B.  An empty token
// set on either side yields 0.
func Lexical(a, b string) float64 {
	ta := Tokenize(a)
	tb := Tokenize(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	// Iterate the smaller set.
	if len(tb) < len(ta) {
		ta, tb = tb, ta
	}
	var common int
	for t := range ta {
		if _, ok := tb[t]; ok {
			common++
		}
	}
	return float64(common) / math.Sqrt(float64(len(ta))*float64(len(tb)))
}
