// Package compress shrinks PDF files by rewriting them without duplicate
// or unused objects.
package compress

import (
	"bytes"
	"fmt"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Result reports the sizes before and after optimization.
type Result struct {
	InputBytes  int64
	OutputBytes int64
}

// Ratio is OutputBytes / InputBytes, or 0 for empty input.
func (r Result) Ratio() float64 {
	if r.InputBytes == 0 {
		return 0
	}
	return float64(r.OutputBytes) / float64(r.InputBytes)
}

// PDF optimizes the document read from rs and writes it to w.
func PDF(rs io.ReadSeeker, w io.Writer) (Result, error) {
	size, err := rs.Seek(0, io.SeekEnd)
	if err != nil {
		return Result{}, fmt.Errorf("size input: %w", err)
	}
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return Result{}, fmt.Errorf("rewind input: %w", err)
	}

	cfg := model.NewDefaultConfiguration()
	cfg.ValidationMode = model.ValidationRelaxed

	var out bytes.Buffer
	if err := api.Optimize(rs, &out, cfg); err != nil {
		return Result{}, fmt.Errorf("optimize pdf: %w", err)
	}

	n, err := out.WriteTo(w)
	if err != nil {
		return Result{}, fmt.Errorf("write output: %w", err)
	}
	return Result{InputBytes: size, OutputBytes: n}, nil
}
