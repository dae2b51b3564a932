package parser

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/dgallion1/docsum/internal/document"
)

func TestForFormat_KnownFormats(t *testing.T) {
	for _, f := range document.Formats {
		ex, err := ForFormat(f, Options{})
		if err != nil {
			t.Errorf("format %q: unexpected error: %v", f, err)
		}
		if ex == nil {
			t.Errorf("format %q: expected extractor", f)
		}
	}
}

func TestForFormat_Unsupported(t *testing.T) {
	_, err := ForFormat(document.Format("epub"), Options{})
	if !errors.Is(err, document.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestPDFExtractor_GarbageInput(t *testing.T) {
	ex := &PDFExtractor{}
	pages, err := ex.ExtractPages(strings.NewReader("definitely not a pdf"))
	if !errors.Is(err, ErrExtraction) {
		t.Fatalf("expected ErrExtraction, got %v", err)
	}
	if len(pages) != 0 {
		t.Errorf("expected no pages, got %d", len(pages))
	}
}

func TestSplitFormFeeds(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", []string{}},
		{"two pages", "first\fsecond\f", []string{"first", "second"}},
		{"blank middle page", "a\f\fc\f", []string{"a", "", "c"}},
		{"no trailing feed", "only", []string{"only"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitFormFeeds(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d pages %q, got %d %q", len(tt.want), tt.want, len(got), got)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("page %d: expected %q, got %q", i, tt.want[i], got[i])
				}
			}
		})
	}
}

func TestGroupParagraphs_HeadingsStartGroups(t *testing.T) {
	paras := []paragraph{
		{text: "Intro"},
		{text: "Chapter 1", heading: true},
		{text: "Body one."},
		{text: "Body two."},
		{text: "Chapter 2", heading: true},
		{text: "Body three."},
	}
	got := groupParagraphs(paras, 20)
	want := []string{
		"Intro",
		"Chapter 1\n\nBody one.\n\nBody two.",
		"Chapter 2\n\nBody three.",
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d groups, got %d: %q", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("group %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestGroupParagraphs_LimitSplitsLongRuns(t *testing.T) {
	var paras []paragraph
	for i := range 7 {
		paras = append(paras, paragraph{text: fmt.Sprintf("p%d", i)})
	}
	got := groupParagraphs(paras, 3)
	if len(got) != 3 {
		t.Fatalf("expected 3 groups, got %d: %q", len(got), got)
	}
	if got[2] != "p6" {
		t.Errorf("expected last group %q, got %q", "p6", got[2])
	}
}

func TestGroupParagraphs_Empty(t *testing.T) {
	if got := groupParagraphs(nil, 20); len(got) != 0 {
		t.Errorf("expected no groups, got %q", got)
	}
}

func TestWordDocExtractor_GarbageInput(t *testing.T) {
	_, err := (&WordDocExtractor{}).ExtractPages(strings.NewReader("nope"))
	if !errors.Is(err, ErrExtraction) {
		t.Fatalf("expected ErrExtraction, got %v", err)
	}
}

const slideTemplate = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">
<p:cSld><p:spTree><p:sp><p:txBody>%s</p:txBody></p:sp></p:spTree></p:cSld>
</p:sld>`

func slideXML(paragraphs ...string) string {
	var body strings.Builder
	for _, p := range paragraphs {
		body.WriteString("<a:p>")
		for _, run := range strings.Split(p, "|") {
			fmt.Fprintf(&body, "<a:r><a:t>%s</a:t></a:r>", run)
		}
		body.WriteString("</a:p>")
	}
	return fmt.Sprintf(slideTemplate, body.String())
}

func buildPPTX(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestSlideDeckExtractor_OrdersSlidesNumerically(t *testing.T) {
	data := buildPPTX(t, map[string]string{
		"ppt/slides/slide10.xml":            slideXML("Ten"),
		"ppt/slides/slide2.xml":             slideXML("Two"),
		"ppt/slides/slide1.xml":             slideXML("Title|Slide", "Subtitle"),
		"ppt/slides/_rels/slide1.xml.rels":  "<Relationships/>",
		"ppt/slideLayouts/slideLayout1.xml": slideXML("Layout text"),
	})

	pages, err := (&SlideDeckExtractor{}).ExtractPages(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"TitleSlide\nSubtitle", "Two", "Ten"}
	if len(pages) != len(want) {
		t.Fatalf("expected %d pages, got %d: %+v", len(want), len(pages), pages)
	}
	for i, w := range want {
		if pages[i].Number != i+1 {
			t.Errorf("page %d: expected number %d, got %d", i, i+1, pages[i].Number)
		}
		if pages[i].Text != w {
			t.Errorf("page %d: expected %q, got %q", i, w, pages[i].Text)
		}
	}
}

func TestSlideDeckExtractor_FollowsPresentationOrder(t *testing.T) {
	const pres = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:presentation xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">
<p:sldIdLst><p:sldId id="256" r:id="rId4"/><p:sldId id="257" r:id="rId2"/><p:sldId id="258" r:id="rId3"/></p:sldIdLst>
</p:presentation>`
	const rels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideMaster" Target="slideMasters/slideMaster1.xml"/>
<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide" Target="slides/slide1.xml"/>
<Relationship Id="rId3" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide" Target="/ppt/slides/slide2.xml"/>
<Relationship Id="rId4" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide" Target="slides/slide3.xml"/>
</Relationships>`

	data := buildPPTX(t, map[string]string{
		"ppt/presentation.xml":            pres,
		"ppt/_rels/presentation.xml.rels": rels,
		"ppt/slides/slide1.xml":           slideXML("Agenda"),
		"ppt/slides/slide2.xml":           slideXML("Results"),
		"ppt/slides/slide3.xml":           slideXML("Moved to front"),
	})

	pages, err := (&SlideDeckExtractor{}).ExtractPages(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"Moved to front", "Agenda", "Results"}
	if len(pages) != len(want) {
		t.Fatalf("expected %d pages, got %d: %+v", len(want), len(pages), pages)
	}
	for i, w := range want {
		if pages[i].Text != w {
			t.Errorf("page %d: expected %q, got %q", i+1, w, pages[i].Text)
		}
	}
}

func TestSlideDeckExtractor_UnreadablePresentationFallsBack(t *testing.T) {
	data := buildPPTX(t, map[string]string{
		"ppt/presentation.xml":            "<p:presentation",
		"ppt/_rels/presentation.xml.rels": "<Relationships/>",
		"ppt/slides/slide2.xml":           slideXML("Second"),
		"ppt/slides/slide1.xml":           slideXML("First"),
	})

	pages, err := (&SlideDeckExtractor{}).ExtractPages(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pages) != 2 || pages[0].Text != "First" || pages[1].Text != "Second" {
		t.Errorf("expected numeric order, got %+v", pages)
	}
}

func TestSlideDeckExtractor_BrokenSlideIsEmptyPage(t *testing.T) {
	data := buildPPTX(t, map[string]string{
		"ppt/slides/slide1.xml": slideXML("Good"),
		"ppt/slides/slide2.xml": "<p:sld><unclosed>",
		"ppt/slides/slide3.xml": slideXML("Also good"),
	})

	pages, err := (&SlideDeckExtractor{}).ExtractPages(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pages) != 3 {
		t.Fatalf("expected 3 pages, got %d", len(pages))
	}
	if pages[1].Text != "" {
		t.Errorf("expected empty text for broken slide, got %q", pages[1].Text)
	}
	if pages[2].Text != "Also good" {
		t.Errorf("expected %q, got %q", "Also good", pages[2].Text)
	}
}

func TestSlideDeckExtractor_NotAnArchive(t *testing.T) {
	_, err := (&SlideDeckExtractor{}).ExtractPages(strings.NewReader("plain text"))
	if !errors.Is(err, ErrExtraction) {
		t.Fatalf("expected ErrExtraction, got %v", err)
	}
}

func TestSlideDeckExtractor_NoSlides(t *testing.T) {
	data := buildPPTX(t, map[string]string{"[Content_Types].xml": "<Types/>"})
	_, err := (&SlideDeckExtractor{}).ExtractPages(bytes.NewReader(data))
	if !errors.Is(err, ErrExtraction) {
		t.Fatalf("expected ErrExtraction, got %v", err)
	}
}
