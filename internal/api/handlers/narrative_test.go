package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/Aukerul-Shuvo/financial-analyzer/internal/narrative"
	"github.com/Aukerul-Shuvo/financial-analyzer/internal/store/memory"
)

// fixedStreamer emits the same chunks for every prompt.
type fixedStreamer struct {
	chunks []string
}

func (f *fixedStreamer) StreamText(ctx context.Context, prompt string, onChunk func(text string) error) error {
	for _, c := range f.chunks {
		if err := onChunk(c); err != nil {
			return err
		}
	}
	return nil
}

func newNarrativeHandler(chunks ...string) *NarrativeHandler {
	gen := narrative.NewGenerator(&fixedStreamer{chunks: chunks}, memory.New(), zerolog.Nop())
	return NewNarrativeHandler(gen, zerolog.Nop())
}

func TestGenerateNarrative_SSEWireFormat(t *testing.T) {
	h := newNarrativeHandler("hello")

	payload := `{"transactions":[{"transaction_id":"t1","amount":-20}],"analysis":{}}`
	req := httptest.NewRequest(http.MethodPost, "/generate-narrative/", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	h.GenerateNarrative(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200\n%s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q, want text/event-stream", ct)
	}

	body := rec.Body.String()
	wantFragments := []string{
		"event:start_narrative_stream\ndata: stream started\n\n",
		"event:narrative_zero_shot\ndata: {\"narrative_zero_shot\":\"hello\"}\n\n",
		"event:end_narrative_zero_shot\ndata: stream ended\n\n",
		"event:narrative_few_shot\ndata: {\"narrative_few_shot\":\"hello\"}\n\n",
		"event:end_narrative_few_shot\ndata: stream ended\n\n",
		"event:narrative_cot\ndata: {\"narrative_cot\":\"hello\"}\n\n",
		"event:end_narrative_cot\ndata: stream ended\n\n",
		"event:end_narrative_stream\ndata: stream ended\n\n",
	}
	pos := 0
	for _, frag := range wantFragments {
		idx := strings.Index(body[pos:], frag)
		if idx < 0 {
			t.Fatalf("fragment missing or out of order: %q\nbody:\n%s", frag, body)
		}
		pos += idx + len(frag)
	}
}

func TestGenerateNarrative_BadBody(t *testing.T) {
	h := newNarrativeHandler("x")

	req := httptest.NewRequest(http.MethodPost, "/generate-narrative/", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	h.GenerateNarrative(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestGenerateNarrative_EmptyTransactions(t *testing.T) {
	h := newNarrativeHandler("x")

	req := httptest.NewRequest(http.MethodPost, "/generate-narrative/", strings.NewReader(`{"transactions":[],"analysis":{}}`))
	rec := httptest.NewRecorder()
	h.GenerateNarrative(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
