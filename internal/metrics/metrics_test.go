package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveLLMCall(t *testing.T) {
	m := New()
	m.ObserveLLMCall("generate", "claude", 120*time.Millisecond, nil)
	m.ObserveLLMCall("generate", "claude", 80*time.Millisecond, errors.New("boom"))
	m.ObserveLLMCall("count_tokens", "claude", 5*time.Millisecond, nil)

	if got := testutil.ToFloat64(m.llmCallsTotal.WithLabelValues("generate", "claude", "success")); got != 1 {
		t.Errorf("expected 1 successful generate, got %f", got)
	}
	if got := testutil.ToFloat64(m.llmCallsTotal.WithLabelValues("generate", "claude", "error")); got != 1 {
		t.Errorf("expected 1 failed generate, got %f", got)
	}
	if got := testutil.CollectAndCount(m.llmCallDuration); got != 2 {
		t.Errorf("expected 2 histogram series, got %d", got)
	}
}

func TestRunLifecycle(t *testing.T) {
	m := New()
	m.RunStarted()
	m.RunStarted()
	if got := testutil.ToFloat64(m.runsActive); got != 2 {
		t.Errorf("expected 2 active runs, got %f", got)
	}

	m.RunFinished("pdf", "completed", 3*time.Second)
	if got := testutil.ToFloat64(m.runsActive); got != 1 {
		t.Errorf("expected 1 active run, got %f", got)
	}
	if got := testutil.ToFloat64(m.runsTotal.WithLabelValues("pdf", "completed")); got != 1 {
		t.Errorf("expected 1 completed pdf run, got %f", got)
	}
}

func TestPagesAndChunks(t *testing.T) {
	m := New()
	m.ObservePages(5, 2, 3)
	m.ObserveChunk(false)
	m.ObserveChunk(true)

	if got := testutil.ToFloat64(m.pagesTotal.WithLabelValues("skip_low_value")); got != 3 {
		t.Errorf("expected 3 low-value pages, got %f", got)
	}
	if got := testutil.ToFloat64(m.chunksTotal); got != 2 {
		t.Errorf("expected 2 chunks, got %f", got)
	}
	if got := testutil.ToFloat64(m.generationFailures); got != 1 {
		t.Errorf("expected 1 generation failure, got %f", got)
	}
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveChunk(false)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(string(body), "docsum_chunks_total 1") {
		t.Errorf("expected chunk counter in output, got:\n%s", body)
	}
}
