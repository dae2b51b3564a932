package api

import (
	"bytes"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dgallion1/docsum/internal/compress"
)

func (s *Server) handleCompress(w http.ResponseWriter, r *http.Request) {
	filename, data, err := s.readUpload(w, r)
	if err != nil {
		jsonError(w, err.Error(), uploadErrorStatus(err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	if !strings.EqualFold(filepath.Ext(filename), ".pdf") {
		jsonError(w, "unsupported file type", http.StatusBadRequest)
		return
	}

	var out bytes.Buffer
	res, err := compress.PDF(bytes.NewReader(data), &out)
	if err != nil {
		s.log.Error("compress failed", "filename", filename, "error", err)
		jsonError(w, "an error occurred while processing the file: "+err.Error(), http.StatusInternalServerError)
		return
	}
	annotate(r, "original_bytes", res.InputBytes, "compressed_bytes", res.OutputBytes)
	s.log.Info("compressed pdf",
		"filename", filename,
		"original_bytes", res.InputBytes,
		"compressed_bytes", res.OutputBytes,
		"ratio", res.Ratio(),
	)

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="compressed_file.pdf"`)
	w.Header().Set("Content-Length", strconv.Itoa(out.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = out.WriteTo(w)
}
