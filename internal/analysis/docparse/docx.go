package docparse

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"io"
	"strings"

	apperrors "github.com/clauselens/clauselens/pkg/errors"
)

// docxExtractor reads the main document part of an OOXML word-processing
// archive and emits its paragraph text as a single page.  Empty paragraphs
// are skipped.  The backend deliberately ignores headers, footers, and
// embedded objects: contract bodies live in word/document.xml.
type docxExtractor struct{}

const docxDocumentPart = "word/document.xml"

func (docxExtractor) Extract(data []byte) ([]Page, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeParseFailure, "docx: not a valid zip archive")
	}

	var doc *zip.File
	for _, f := range zr.File {
		if f.Name == docxDocumentPart {
			doc = f
			break
		}
	}
	if doc == nil {
		return nil, apperrors.New(apperrors.ErrCodeParseFailure, "docx: missing word/document.xml")
	}

	rc, err := doc.Open()
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeParseFailure, "docx: cannot open document part")
	}
	defer rc.Close()

	paragraphs, err := readParagraphs(rc)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeParseFailure, "docx: malformed document XML")
	}

	return []Page{{Number: 1, Text: strings.Join(paragraphs, "\n")}}, nil
}

// readParagraphs streams the document XML collecting the character data of
// every <w:t> run, grouped per <w:p> paragraph.
func readParagraphs(r io.Reader) ([]string, error) {
	dec := xml.NewDecoder(r)

	var (
		paragraphs []string
		current    strings.Builder
		inPara     bool
		inText     bool
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				inPara = true
				current.Reset()
			case "t":
				inText = inPara
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "p":
				if inPara {
					if text := strings.TrimSpace(current.String()); text != "" {
						paragraphs = append(paragraphs, text)
					}
					inPara = false
				}
			case "t":
				inText = false
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}
	return paragraphs, nil
}
