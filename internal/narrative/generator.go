// Package narrative turns an analysis payload into streamed
// natural-language narratives, one per prompting strategy.
package narrative

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Aukerul-Shuvo/financial-analyzer/internal/store"
)

// Event is one item of the push-based narrative stream. Name becomes
// the SSE event name, Data its payload line.
type Event struct {
	Name string
	Data string
}

// TextStreamer produces an incrementally streamed text completion for a
// prompt, invoking onChunk for every partial piece as soon as it is
// available. Returning an error from onChunk stops the stream.
type TextStreamer interface {
	StreamText(ctx context.Context, prompt string, onChunk func(text string) error) error
}

// Generator runs the three prompting strategies sequentially and pushes
// events to a single consumer. A strategy failure is reported as an
// inline error event and does not abort the remaining strategies.
type Generator struct {
	llm   TextStreamer
	store store.NarrativeStore
	log   zerolog.Logger
}

// NewGenerator creates a generator backed by the given LLM client and
// narrative store.
func NewGenerator(llm TextStreamer, narrativeStore store.NarrativeStore, log zerolog.Logger) *Generator {
	return &Generator{llm: llm, store: narrativeStore, log: log}
}

// Stream generates the narratives for payload, pushing every event to
// emit in order. After all strategies the complete narratives are
// persisted keyed by the first transaction's ID. An error from emit
// (consumer gone) aborts the stream; strategy failures do not.
func (g *Generator) Stream(ctx context.Context, payload Payload, emit func(Event) error) error {
	if err := emit(Event{Name: "start_narrative_stream", Data: "stream started"}); err != nil {
		return err
	}

	narratives := make(map[string]string, len(Strategies))
	for _, strategy := range Strategies {
		if err := g.streamStrategy(ctx, strategy, payload, narratives, emit); err != nil {
			return err
		}
	}

	if len(payload.Transactions) > 0 {
		transactionID := payload.Transactions[0].ID
		if err := g.store.SaveNarratives(ctx, transactionID, narratives); err != nil {
			g.log.Error().Err(err).Str("transaction_id", transactionID).Msg("Failed to persist narratives")
			if err := emit(errorEvent(fmt.Sprintf("failed to save narratives: %v", err))); err != nil {
				return err
			}
		}
	}

	return emit(Event{Name: "end_narrative_stream", Data: "stream ended"})
}

// streamStrategy runs one strategy to completion. Upstream generation
// failures are converted into an inline error event; only consumer
// errors propagate.
func (g *Generator) streamStrategy(ctx context.Context, strategy string, payload Payload, narratives map[string]string, emit func(Event) error) error {
	prompt, err := BuildPrompt(strategy, payload)
	if err != nil {
		return g.reportFailure(strategy, err, emit)
	}

	eventName := "narrative_" + strategy
	var narrative strings.Builder
	var consumerErr error

	err = g.llm.StreamText(ctx, prompt, func(text string) error {
		narrative.WriteString(text)
		data, err := json.Marshal(map[string]string{eventName: text})
		if err != nil {
			return err
		}
		if err := emit(Event{Name: eventName, Data: string(data)}); err != nil {
			consumerErr = err
			return err
		}
		return nil
	})
	if consumerErr != nil {
		return consumerErr
	}
	if err != nil {
		return g.reportFailure(strategy, err, emit)
	}

	narratives[strategy] = narrative.String()
	return emit(Event{Name: "end_narrative_" + strategy, Data: "stream ended"})
}

func (g *Generator) reportFailure(strategy string, cause error, emit func(Event) error) error {
	g.log.Warn().Err(cause).Str("strategy", strategy).Msg("Narrative generation failed for strategy")
	return emit(errorEvent(fmt.Sprintf("an error occurred for strategy %s: %v", strategy, cause)))
}

func errorEvent(message string) Event {
	data, _ := json.Marshal(map[string]string{"error": message})
	return Event{Name: "error", Data: string(data)}
}
