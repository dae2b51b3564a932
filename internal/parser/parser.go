package parser

import (
	"errors"
	"fmt"
	"io"

	"github.com/dgallion1/docsum/internal/document"
)

// ErrExtraction marks a document whose text could not be extracted at all.
var ErrExtraction = errors.New("extraction failed")

// Extractor turns raw document bytes into an ordered page sequence.
// A malformed page yields an empty page rather than an error; an error
// means the document as a whole could not be read.
type Extractor interface {
	ExtractPages(r io.Reader) ([]document.Page, error)
}

// Options tunes extractor behavior.
type Options struct {
	PDFFallbackPdftotext bool
}

// ForFormat returns the extractor for a recognized format. Unknown formats
// are rejected before any input is read.
func ForFormat(f document.Format, opts Options) (Extractor, error) {
	switch f {
	case document.FormatPDF:
		return &PDFExtractor{FallbackPdftotext: opts.PDFFallbackPdftotext}, nil
	case document.FormatSlideDeck:
		return &SlideDeckExtractor{}, nil
	case document.FormatWordDoc:
		return &WordDocExtractor{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", document.ErrUnsupportedFormat, f)
	}
}

func extractionError(format string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrExtraction, format, err)
}

// numberPages assigns 1-based ordinals to page texts.
func numberPages(texts []string) []document.Page {
	pages := make([]document.Page, len(texts))
	for i, t := range texts {
		pages[i] = document.Page{Number: i + 1, Text: t}
	}
	return pages
}
