package parser

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/dgallion1/docsum/internal/document"
	pdflib "github.com/ledongthuc/pdf"
)

// PDFExtractor yields one page per PDF page. It tries the Go library first,
// then falls back to pdftotext if enabled and available.
type PDFExtractor struct {
	FallbackPdftotext bool
}

func (p *PDFExtractor) ExtractPages(r io.Reader) ([]document.Page, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, extractionError("pdf", fmt.Errorf("read input: %w", err))
	}

	texts, err := extractPDFPages(data)
	if err != nil && p.FallbackPdftotext {
		texts, err = extractPdftotext(data)
	}
	if err != nil {
		return nil, extractionError("pdf", err)
	}
	return numberPages(texts), nil
}

func extractPDFPages(data []byte) (texts []string, err error) {
	// ledongthuc/pdf panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			texts, err = nil, fmt.Errorf("pdf reader panic: %v", r)
		}
	}()

	reader, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	numPages := reader.NumPage()
	texts = make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		texts = append(texts, pageText(reader.Page(i)))
	}
	return texts, nil
}

// pageText returns "" for pages that cannot be decoded.
func pageText(page pdflib.Page) (text string) {
	defer func() {
		if recover() != nil {
			text = ""
		}
	}()
	if page.V.IsNull() {
		return ""
	}
	t, err := page.GetPlainText(nil)
	if err != nil {
		return ""
	}
	return t
}

func extractPdftotext(data []byte) ([]string, error) {
	// pdftotext needs a real file.
	tmp, err := os.CreateTemp("", "docsum-pdf-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	cmd := exec.Command("pdftotext", "-layout", tmpPath, "-")
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("pdftotext: %w", err)
	}
	return splitFormFeeds(string(out)), nil
}

// splitFormFeeds splits pdftotext output into pages. pdftotext terminates
// every page with a form feed, so a trailing empty segment is dropped.
func splitFormFeeds(text string) []string {
	pages := strings.Split(text, "\f")
	if len(pages) > 0 && strings.TrimSpace(pages[len(pages)-1]) == "" {
		pages = pages[:len(pages)-1]
	}
	return pages
}
