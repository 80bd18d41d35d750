package docparse

import (
	"regexp"
	"strings"
)

// Section is one identified heading in a page of text.  Position is the
// 0-based line index of the heading within the page.
type Section struct {
	Number   string
	Title    string
	Position int
}

// SectionNode is one node of the informational section hierarchy.
type SectionNode struct {
	Title      string
	Position   int
	FullNumber string
	Children   map[string]*SectionNode
}

// StructureAnalyzer finds section headings in raw page text via ordered
// pattern matching and can build an optional numbering hierarchy from them.
type StructureAnalyzer struct{}

// NewStructureAnalyzer constructs a StructureAnalyzer.
func NewStructureAnalyzer() *StructureAnalyzer {
	return &StructureAnalyzer{}
}

// sectionPatterns is the ordered list of heading shapes; the first pattern
// that matches a line wins.
var sectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(\d+\.)+\s+[A-Z]`), // 1.2.3 TITLE or 1. TITLE
	regexp.MustCompile(`^[A-Z][A-Z\s]+:`),   // TITLE:
	regexp.MustCompile(`^Article\s+\d+`),    // Article 1
	regexp.MustCompile(`^Section\s+\d+`),    // Section 1
	regexp.MustCompile(`^\([a-z]\)`),        // (a), (b), (c)
	regexp.MustCompile(`^\([ivxIVX]+\)`),    // (i), (ii), (iii)
}

// numberTitleRe separates the numbering prefix from the title text once a
// line is known to be a heading.
var numberTitleRe = regexp.MustCompile(`^([\d.()a-z ivxIVX]+)\s*(.*)`)

// IdentifySections scans text line by line and returns the headings found,
// in document order.  Lines matching no pattern are ignored; an empty result
// is valid and means the caller should treat the whole page as one implicit
// section.
func (a *StructureAnalyzer) IdentifySections(text string) []Section {
	var sections []Section
	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		for _, pat := range sectionPatterns {
			if !pat.MatchString(line) {
				continue
			}
			if m := numberTitleRe.FindStringSubmatch(line); m != nil {
				sections = append(sections, Section{
					Number:   strings.TrimSpace(m[1]),
					Title:    strings.TrimSpace(m[2]),
					Position: i,
				})
			}
			break
		}
	}
	return sections
}

// ImplicitSection is the single section used when a page has no identifiable
// structure.
func ImplicitSection() Section {
	return Section{Number: "", Title: "Document Text", Position: 0}
}

// SectionText returns the lines of text belonging to the section starting at
// startPos: from its heading line up to (not including) the next section's
// heading line, or to the end of the page.
func (a *StructureAnalyzer) SectionText(pageText string, startPos int, sections []Section) string {
	lines := strings.Split(pageText, "\n")

	currentIdx := -1
	nextIdx := -1
	for i, s := range sections {
		if s.Position == startPos {
			currentIdx = i
		} else if currentIdx >= 0 && s.Position > startPos {
			nextIdx = i
			break
		}
	}
	if currentIdx < 0 {
		return ""
	}

	start := sections[currentIdx].Position
	end := len(lines)
	if nextIdx >= 0 {
		end = sections[nextIdx].Position
	}
	if start > len(lines) {
		start = len(lines)
	}
	return strings.Join(lines[start:end], "\n")
}

// BuildHierarchy nests the flat section list by numbering depth, keyed by
// dot-separated, paren-stripped numbering segments.  The result is
// informational only; no downstream component consumes it.
func (a *StructureAnalyzer) BuildHierarchy(sections []Section) map[string]*SectionNode {
	root := make(map[string]*SectionNode)

	for _, s := range sections {
		cleaned := strings.NewReplacer("(", "", ")", "").Replace(s.Number)
		var parts []string
		for _, p := range strings.Split(cleaned, ".") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}

		current := root
		for i, part := range parts {
			node, ok := current[part]
			if !ok {
				title := ""
				if i == len(parts)-1 {
					title = s.Title
				}
				node = &SectionNode{
					Title:      title,
					Position:   s.Position,
					FullNumber: s.Number,
					Children:   make(map[string]*SectionNode),
				}
				current[part] = node
			}
			current = node.Children
		}
	}
	return root
}
