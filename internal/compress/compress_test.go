package compress

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
)

// minimalPDF builds a one-page PDF with a correct xref table.
func minimalPDF() []byte {
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents 4 0 R /Resources << /Font << /F1 5 0 R >> >> >>",
		"<< /Length 42 >>\nstream\nBT /F1 24 Tf 72 720 Td (Hello world) Tj ET\nendstream",
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func TestPDF(t *testing.T) {
	in := minimalPDF()
	var out bytes.Buffer

	res, err := PDF(bytes.NewReader(in), &out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.InputBytes != int64(len(in)) {
		t.Errorf("expected input size %d, got %d", len(in), res.InputBytes)
	}
	if res.OutputBytes != int64(out.Len()) {
		t.Errorf("expected output size %d, got %d", out.Len(), res.OutputBytes)
	}
	if !strings.HasPrefix(out.String(), "%PDF-") {
		t.Errorf("output is not a pdf: %q", out.String()[:min(out.Len(), 16)])
	}
}

func TestPDF_Invalid(t *testing.T) {
	var out bytes.Buffer
	if _, err := PDF(strings.NewReader("definitely not a pdf"), &out); err == nil {
		t.Fatal("expected error for non-pdf input")
	}
	if out.Len() != 0 {
		t.Errorf("expected nothing written on failure, got %d bytes", out.Len())
	}
}

func TestResultRatio(t *testing.T) {
	if got := (Result{}).Ratio(); got != 0 {
		t.Errorf("expected 0 for empty input, got %f", got)
	}
	if got := (Result{InputBytes: 200, OutputBytes: 50}).Ratio(); got != 0.25 {
		t.Errorf("expected 0.25, got %f", got)
	}
}
