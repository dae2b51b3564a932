package parser

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/dgallion1/docsum/internal/document"
)

// drawingML is the namespace of a:t text runs and a:p paragraphs.
const drawingML = "http://schemas.openxmlformats.org/drawingml/2006/main"

var slidePathRe = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

// SlideDeckExtractor handles .pptx files, one page per slide in presentation order.
type SlideDeckExtractor struct{}

func (e *SlideDeckExtractor) ExtractPages(r io.Reader) ([]document.Page, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, extractionError("pptx", fmt.Errorf("read input: %w", err))
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, extractionError("pptx", fmt.Errorf("open archive: %w", err))
	}

	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		files[f.Name] = f
	}
	slides := slideOrder(files)
	if len(slides) == 0 {
		return nil, extractionError("pptx", fmt.Errorf("no slides found"))
	}

	texts := make([]string, 0, len(slides))
	for _, f := range slides {
		// A broken slide contributes an empty page.
		text, err := slideText(f)
		if err != nil {
			text = ""
		}
		texts = append(texts, text)
	}
	return numberPages(texts), nil
}

// presentation lists the deck's slides in presentation order by relationship ID.
type presentation struct {
	SlideIDs []struct {
		RelID string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
	} `xml:"sldIdLst>sldId"`
}

type relationships struct {
	Rels []struct {
		ID     string `xml:"Id,attr"`
		Target string `xml:"Target,attr"`
	} `xml:"Relationship"`
}

// slideOrder returns the slide parts in presentation order. Decks without a
// readable slide list fall back to the slideN.xml numbering.
func slideOrder(files map[string]*zip.File) []*zip.File {
	if ordered := presentationSlides(files); len(ordered) > 0 {
		return ordered
	}

	type numbered struct {
		num  int
		file *zip.File
	}
	var slides []numbered
	for name, f := range files {
		m := slidePathRe.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		n, _ := strconv.Atoi(m[1])
		slides = append(slides, numbered{num: n, file: f})
	}
	slices.SortFunc(slides, func(a, b numbered) int { return a.num - b.num })

	out := make([]*zip.File, len(slides))
	for i, s := range slides {
		out[i] = s.file
	}
	return out
}

// presentationSlides resolves p:sldIdLst through the presentation part's
// relationships.
func presentationSlides(files map[string]*zip.File) []*zip.File {
	presFile, relsFile := files["ppt/presentation.xml"], files["ppt/_rels/presentation.xml.rels"]
	if presFile == nil || relsFile == nil {
		return nil
	}
	var pres presentation
	if err := decodePart(presFile, &pres); err != nil {
		return nil
	}
	var rels relationships
	if err := decodePart(relsFile, &rels); err != nil {
		return nil
	}

	targets := make(map[string]string, len(rels.Rels))
	for _, r := range rels.Rels {
		if strings.HasPrefix(r.Target, "/") {
			targets[r.ID] = strings.TrimPrefix(r.Target, "/")
		} else {
			targets[r.ID] = path.Join("ppt", r.Target)
		}
	}

	var out []*zip.File
	for _, id := range pres.SlideIDs {
		if f := files[targets[id.RelID]]; f != nil {
			out = append(out, f)
		}
	}
	return out
}

func decodePart(f *zip.File, v any) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	return xml.NewDecoder(rc).Decode(v)
}

func slideText(f *zip.File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()
	return drawingText(rc)
}

// drawingText collects a:t runs, one line per a:p paragraph.
func drawingText(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	var lines []string
	var line strings.Builder
	inText := false

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space == drawingML && t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			if t.Name.Space != drawingML {
				continue
			}
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if s := strings.TrimSpace(line.String()); s != "" {
					lines = append(lines, s)
				}
				line.Reset()
			}
		case xml.CharData:
			if inText {
				line.Write(t)
			}
		}
	}
	if s := strings.TrimSpace(line.String()); s != "" {
		lines = append(lines, s)
	}
	return strings.Join(lines, "\n"), nil
}
