package parser

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/docsum/internal/document"
	"github.com/fumiama/go-docx"
)

// paragraphsPerPage caps how many body paragraphs form one page group when
// a document has few or no headings.
const paragraphsPerPage = 20

// WordDocExtractor handles .docx files. Word documents have no stable page
// boundaries, so paragraphs are grouped: each heading starts a new group,
// and long runs of body text are cut every paragraphsPerPage paragraphs.
type WordDocExtractor struct{}

type paragraph struct {
	text    string
	heading bool
}

func (e *WordDocExtractor) ExtractPages(r io.Reader) ([]document.Page, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, extractionError("docx", fmt.Errorf("read input: %w", err))
	}

	paras, err := docxParagraphs(data)
	if err != nil {
		return nil, extractionError("docx", err)
	}
	return numberPages(groupParagraphs(paras, paragraphsPerPage)), nil
}

func docxParagraphs(data []byte) (paras []paragraph, err error) {
	defer func() {
		if r := recover(); r != nil {
			paras, err = nil, fmt.Errorf("docx reader panic: %v", r)
		}
	}()

	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		text := docxParagraphText(para)
		if text == "" {
			continue
		}
		paras = append(paras, paragraph{text: text, heading: docxIsHeading(para)})
	}
	return paras, nil
}

// groupParagraphs joins paragraphs into page groups separated by blank lines.
func groupParagraphs(paras []paragraph, limit int) []string {
	var groups []string
	var current []string

	flush := func() {
		if len(current) > 0 {
			groups = append(groups, strings.Join(current, "\n\n"))
			current = nil
		}
	}

	for _, p := range paras {
		if p.heading || len(current) >= limit {
			flush()
		}
		current = append(current, p.text)
	}
	flush()
	return groups
}

func docxIsHeading(para *docx.Paragraph) bool {
	if para.Properties == nil || para.Properties.Style == nil {
		return false
	}
	style := strings.ToLower(strings.ReplaceAll(para.Properties.Style.Val, " ", ""))
	return style == "title" || strings.HasPrefix(style, "heading")
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
