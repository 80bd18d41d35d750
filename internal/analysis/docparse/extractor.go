// Package docparse turns raw document bytes into ordered per-page text and
// finds the section structure inside that text.  Extraction backends are
// registered per declared format; a format without a compiled-in backend
// yields a typed unsupported-format failure rather than a partial result.
package docparse

import (
	apperrors "github.com/clauselens/clauselens/pkg/errors"
	types "github.com/clauselens/clauselens/pkg/types/contract"
)

// Page is one decoded page of a document.  Page numbers are 1-based.
type Page struct {
	Number int
	Text   string
}

// Extractor decodes raw document bytes into ordered pages.  A page that
// fails to decode is never partially populated: the whole call fails with a
// parse-failure error instead.
type Extractor interface {
	Extract(data []byte) ([]Page, error)
}

// ExtractorFor returns the extraction backend for a declared format.
// PDF is a declared format whose backend is not compiled into this build;
// it and every unknown format return an unsupported-format error.
func ExtractorFor(format types.DocumentFormat) (Extractor, error) {
	switch format {
	case types.FormatTxt:
		return plainTextExtractor{}, nil
	case types.FormatDocx:
		return docxExtractor{}, nil
	default:
		return nil, apperrors.New(apperrors.ErrCodeUnsupportedFormat,
			"no extraction backend for format").WithDetail(string(format))
	}
}

// Extract is the package-level convenience wrapper: resolve the backend for
// the declared format and run it.
func Extract(data []byte, format types.DocumentFormat) ([]Page, error) {
	ex, err := ExtractorFor(format)
	if err != nil {
		return nil, err
	}
	return ex.Extract(data)
}
