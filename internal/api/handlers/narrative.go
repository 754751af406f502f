package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/Aukerul-Shuvo/financial-analyzer/internal/api/middleware"
	"github.com/Aukerul-Shuvo/financial-analyzer/internal/narrative"
)

// NarrativeHandler streams LLM narratives over server-sent events.
type NarrativeHandler struct {
	gen *narrative.Generator
	log zerolog.Logger
}

func NewNarrativeHandler(gen *narrative.Generator, log zerolog.Logger) *NarrativeHandler {
	return &NarrativeHandler{gen: gen, log: log}
}

// GenerateNarrative handles POST /generate-narrative/. The request body
// is the transactions-plus-analysis payload; the response is an SSE
// stream with one sub-stream per prompting strategy.
func (h *NarrativeHandler) GenerateNarrative(w http.ResponseWriter, r *http.Request) {
	var payload narrative.Payload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(payload.Transactions) == 0 {
		middleware.WriteError(w, http.StatusBadRequest, "transactions must not be empty")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		middleware.WriteError(w, http.StatusInternalServerError, "Streaming is not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	err := h.gen.Stream(r.Context(), payload, func(ev narrative.Event) error {
		if _, werr := fmt.Fprintf(w, "event:%s\ndata: %s\n\n", ev.Name, ev.Data); werr != nil {
			return werr
		}
		flusher.Flush()
		return nil
	})
	if err != nil {
		// The client went away mid-stream; nothing useful can be
		// written at this point.
		h.log.Warn().Err(err).Msg("Narrative stream aborted")
	}
}
