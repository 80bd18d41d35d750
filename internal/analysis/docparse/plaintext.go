package docparse

import (
	"unicode/utf8"

	apperrors "github.com/clauselens/clauselens/pkg/errors"
)

// plainTextExtractor treats the whole byte stream as one page of UTF-8 text.
type plainTextExtractor struct{}

func (plainTextExtractor) Extract(data []byte) ([]Page, error) {
	if !utf8.Valid(data) {
		return nil, apperrors.New(apperrors.ErrCodeParseFailure, "plain text is not valid UTF-8")
	}
	return []Page{{Number: 1, Text: string(data)}}, nil
}
