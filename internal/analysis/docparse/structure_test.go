package docparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentifySectionsNumbered(t *testing.T) {
	a := NewStructureAnalyzer()
	sections := a.IdentifySections("1. Payment\nThe fee is due.")

	require.Len(t, sections, 1)
	assert.Equal(t, "1.", sections[0].Number)
	assert.Equal(t, "Payment", sections[0].Title)
	assert.Equal(t, 0, sections[0].Position)
}

func TestIdentifySectionsMultiple(t *testing.T) {
	a := NewStructureAnalyzer()
	text := "1. Payment\nFees are due monthly.\n2. Termination\nEither party may terminate.\nArticle 3\nGoverning law."
	sections := a.IdentifySections(text)

	require.Len(t, sections, 3)
	assert.Equal(t, "1.", sections[0].Number)
	assert.Equal(t, 0, sections[0].Position)
	assert.Equal(t, "2.", sections[1].Number)
	assert.Equal(t, 2, sections[1].Position)
	assert.Equal(t, 4, sections[2].Position)
}

func TestIdentifySectionsLettered(t *testing.T) {
	a := NewStructureAnalyzer()
	sections := a.IdentifySections("(a) Confidentiality\nKeep it secret.")

	require.Len(t, sections, 1)
	assert.Equal(t, "(a)", sections[0].Number)
	assert.Equal(t, "Confidentiality", sections[0].Title)
}

func TestIdentifySectionsNoStructure(t *testing.T) {
	a := NewStructureAnalyzer()
	assert.Empty(t, a.IdentifySections("just some flowing contract prose without headings"))
	assert.Empty(t, a.IdentifySections(""))
}

func TestImplicitSection(t *testing.T) {
	s := ImplicitSection()
	assert.Equal(t, "", s.Number)
	assert.Equal(t, "Document Text", s.Title)
	assert.Equal(t, 0, s.Position)
}

func TestSectionText(t *testing.T) {
	a := NewStructureAnalyzer()
	text := "1. Payment\nFees are due monthly.\n2. Termination\nEither party may terminate."
	sections := a.IdentifySections(text)
	require.Len(t, sections, 2)

	first := a.SectionText(text, sections[0].Position, sections)
	assert.Equal(t, "1. Payment\nFees are due monthly.", first)

	second := a.SectionText(text, sections[1].Position, sections)
	assert.Equal(t, "2. Termination\nEither party may terminate.", second)
}

func TestSectionTextUnknownPosition(t *testing.T) {
	a := NewStructureAnalyzer()
	text := "1. Payment\nFees."
	sections := a.IdentifySections(text)
	assert.Equal(t, "", a.SectionText(text, 99, sections))
}

func TestBuildHierarchy(t *testing.T) {
	a := NewStructureAnalyzer()
	sections := []Section{
		{Number: "1.", Title: "Payment", Position: 0},
		{Number: "1.1", Title: "Invoicing", Position: 3},
		{Number: "2.", Title: "Termination", Position: 7},
	}
	h := a.BuildHierarchy(sections)

	require.Contains(t, h, "1")
	require.Contains(t, h, "2")
	assert.Equal(t, "Payment", h["1"].Title)
	require.Contains(t, h["1"].Children, "1")
	assert.Equal(t, "Invoicing", h["1"].Children["1"].Title)
	assert.Equal(t, "1.1", h["1"].Children["1"].FullNumber)
	assert.Empty(t, h["2"].Children)
}

func TestBuildHierarchyEmpty(t *testing.T) {
	a := NewStructureAnalyzer()
	assert.Empty(t, a.BuildHierarchy(nil))
}
