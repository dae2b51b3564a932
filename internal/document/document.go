package document

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Format identifies the container format of an uploaded document.
type Format string

const (
	FormatPDF       Format = "pdf"
	FormatSlideDeck Format = "slide-deck"
	FormatWordDoc   Format = "word-doc"
)

// ErrUnsupportedFormat is returned for format tags or file extensions
// outside the recognized set.
var ErrUnsupportedFormat = errors.New("unsupported format")

// Formats lists every recognized format.
var Formats = []Format{FormatPDF, FormatSlideDeck, FormatWordDoc}

var extensions = map[string]Format{
	".pdf":  FormatPDF,
	".pptx": FormatSlideDeck,
	".docx": FormatWordDoc,
}

// ParseFormat validates a format tag.
func ParseFormat(tag string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(tag)))
	switch f {
	case FormatPDF, FormatSlideDeck, FormatWordDoc:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, tag)
}

// FormatForFile maps a filename's extension to its format.
func FormatForFile(filename string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if f, ok := extensions[ext]; ok {
		return f, nil
	}
	return "", fmt.Errorf("%w: file extension %q", ErrUnsupportedFormat, ext)
}

// Resolve returns the format named by tag, or the one implied by the
// filename's extension when tag is blank.
func Resolve(tag, filename string) (Format, error) {
	if strings.TrimSpace(tag) != "" {
		return ParseFormat(tag)
	}
	return FormatForFile(filename)
}

// Page is one native unit of a document: a PDF page, a slide, or a
// group of word-processor paragraphs.
type Page struct {
	Number int    // 1-based position in the document
	Text   string // Raw extracted text, possibly empty
}
