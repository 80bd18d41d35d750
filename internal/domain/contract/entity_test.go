package contract

import (
	"testing"

	"github.com/stretchr/testify/assert"

	types "github.com/clauselens/clauselens/pkg/types/contract"
)

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercase", "The Party SHALL Pay", "the party shall pay"},
		{"punctuation becomes separators", "pay $1,000.00 (net-30)!", "pay 1 000 00 net 30"},
		{"collapses whitespace", "a   b\t\tc\n\nd", "a b c d"},
		{"trims", "  hello  ", "hello"},
		{"empty", "", ""},
		{"only punctuation", "!!! ??? ---", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeText(tt.in))
		})
	}
}

func TestNormalizeTextIdempotent(t *testing.T) {
	inputs := []string{
		"The Party SHALL Pay $1,000 within 30 days.\nSee Section 4.2(a).",
		"   MIXED   case\tAND\ttabs   ",
		"",
		"already normalized text",
	}
	for _, in := range inputs {
		once := NormalizeText(in)
		assert.Equal(t, once, NormalizeText(once), in)
	}
}

func TestBuildClausePath(t *testing.T) {
	assert.Equal(t, "1..2", BuildClausePath("1.", 2))
	assert.Equal(t, "4.2.1", BuildClausePath("4.2", 1))
	assert.Equal(t, "3", BuildClausePath("", 3))
}

func TestSectionsRelated(t *testing.T) {
	assert.True(t, SectionsRelated("1.2", "1.5"))
	assert.True(t, SectionsRelated("1.", "1.3"))
	assert.True(t, SectionsRelated("2", "2"))
	assert.False(t, SectionsRelated("1.2", "2.2"))
	assert.False(t, SectionsRelated("", "1"))
	assert.False(t, SectionsRelated("1", ""))
}

func TestFamilyToken(t *testing.T) {
	c := &Contract{Name: "MSA Amendment No. 2"}
	assert.Equal(t, "MSA", c.FamilyToken())

	c = &Contract{Name: ""}
	assert.Equal(t, "", c.FamilyToken())
}

func TestHasEmbedding(t *testing.T) {
	cl := &Clause{}
	assert.False(t, cl.HasEmbedding())
	cl.Embedding = []float64{0.1, 0.2}
	assert.True(t, cl.HasEmbedding())
}

func TestNewContract(t *testing.T) {
	c := NewContract("Service Agreement", "sa.docx", types.FormatDocx)
	assert.NoError(t, c.ID.Validate())
	assert.Equal(t, "Service Agreement", c.Name)
	assert.Equal(t, types.FormatDocx, c.Format)
	assert.False(t, c.IsAmendment)
	assert.False(t, c.CreatedAt.IsZero())
}
