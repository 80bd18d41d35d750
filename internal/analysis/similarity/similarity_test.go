package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCosineSelfSimilarity(t *testing.T) {
	v := []float64{0.3, -1.2, 4.5, 0.01}
	assert.InDelta(t, 1.0, Cosine(v, v), 1e-9)
}

func TestCosineSymmetry(t *testing.T) {
	a := []float64{1, 2, 3}
	b := []float64{-2, 0.5, 7}
	assert.InDelta(t, Cosine(a, b), Cosine(b, a), 1e-12)
}

func TestCosineMismatchedLengths(t *testing.T) {
	assert.Zero(t, Cosine([]float64{1, 2}, []float64{1, 2, 3}))
	assert.Zero(t, Cosine(nil, nil))
}

func TestCosineZeroNorm(t *testing.T) {
	assert.Zero(t, Cosine([]float64{0, 0, 0}, []float64{1, 2, 3}))
	assert.Zero(t, Cosine([]float64{1, 2, 3}, []float64{0, 0, 0}))
}

func TestCosineOrthogonal(t *testing.T) {
	assert.InDelta(t, 0.0, Cosine([]float64{1, 0}, []float64{0, 1}), 1e-12)
}

func TestCosineOpposite(t *testing.T) {
	assert.InDelta(t, -1.0, Cosine([]float64{1, 2}, []float64{-1, -2}), 1e-9)
}

func TestTokenize(t *testing.T) {
	set := Tokenize("The party SHALL pay $1,000 within 30 days.")
	for _, want := range []string{"the", "party", "shall", "pay", "1", "000", "within", "30", "days"} {
		_, ok := set[want]
		assert.True(t, ok, want)
	}
	assert.Empty(t, Tokenize("!!! ???"))
}

func TestLexicalIdentical(t *testing.T) {
	s := "payment is due within thirty days"
	assert.InDelta(t, 1.0, Lexical(s, s), 1e-9)
}

func TestLexicalSymmetry(t *testing.T) {
	a := "the party shall terminate the agreement"
	b := "termination of the agreement by either party"
	assert.InDelta(t, Lexical(a, b), Lexical(b, a), 1e-12)
}

func TestLexicalDisjoint(t *testing.T) {
	assert.Zero(t, Lexical("alpha beta", "gamma delta"))
}

func TestLexicalEmpty(t *testing.T) {
	assert.Zero(t, Lexical("", "some text"))
	assert.Zero(t, Lexical("some text", ""))
	assert.Zero(t, Lexical("", ""))
}

func TestLexicalPartialOverlap(t *testing.T) {
	// A = {a, b}, B = {b, c}: 1 / sqrt(4) = 0.5
	got := Lexical("alpha beta", "beta gamma")
	assert.InDelta(t, 0.5, got, 1e-9)
}

func TestLexicalRange(t *testing.T) {
	a := "party shall indemnify and hold harmless"
	b := "the indemnifying party shall pay all damages"
	got := Lexical(a, b)
	assert.GreaterOrEqual(t, got, 0.0)
	assert.LessOrEqual(t, got, 1.0)
}
