package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/docsum/internal/document"
	"github.com/dgallion1/docsum/internal/pipeline"
	"github.com/dgallion1/docsum/internal/render"
	"github.com/dgallion1/docsum/internal/summarize"
)

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	filename, data, err := s.readUpload(w, r)
	if err != nil {
		jsonError(w, err.Error(), uploadErrorStatus(err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	format, err := document.Resolve(r.FormValue("format"), filename)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	run := pipeline.NewRun(filename, format, data)
	annotate(r, "run_id", run.ID, "format", format, "upload_bytes", len(data))
	if err := s.orchestrator.Submit(run); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	if r.FormValue("async") == "true" {
		writeJSON(w, http.StatusAccepted, map[string]any{
			"run_id":   run.ID,
			"status":   pipeline.StatusQueued,
			"poll_url": fmt.Sprintf("/api/runs/%s", run.ID),
		})
		return
	}

	res, err := run.Wait(r.Context())
	if err != nil {
		s.log.Warn("upload failed", "run_id", run.ID, "error", err)
		jsonError(w, err.Error(), runErrorStatus(err))
		return
	}

	resp := map[string]any{
		"summary": res.Summary,
		"run_id":  run.ID,
		"stats":   res.Stats,
	}
	if wantHTML(r) {
		html, err := render.Markdown(res.Summary)
		if err != nil {
			jsonError(w, "render summary: "+err.Error(), http.StatusInternalServerError)
			return
		}
		resp["summary_html"] = html
	}
	writeJSON(w, http.StatusOK, resp)
}

type chatRequest struct {
	Context string `json:"context"`
	Prompt  string `json:"prompt"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid json body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		jsonError(w, "prompt is required", http.StatusBadRequest)
		return
	}

	out, err := summarize.Chat(r.Context(), s.gen, req.Context, req.Prompt)
	if err != nil {
		s.log.Error("chat failed", "error", err)
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp := map[string]any{"response": out}
	if wantHTML(r) {
		html, err := render.Markdown(out)
		if err != nil {
			jsonError(w, "render response: "+err.Error(), http.StatusInternalServerError)
			return
		}
		resp["response_html"] = html
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRunStatus(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")
	annotate(r, "run_id", runID)
	run := s.orchestrator.GetRun(runID)
	if run == nil {
		jsonError(w, "run not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, run.Snapshot())
}

// runErrorStatus maps a failed run to a status code.
func runErrorStatus(err error) int {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, pipeline.ErrShuttingDown), errors.Is(err, pipeline.ErrQueueFull):
		return http.StatusServiceUnavailable
	case errors.Is(err, document.ErrUnsupportedFormat):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
