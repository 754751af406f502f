package narrative

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/Aukerul-Shuvo/financial-analyzer/internal/domain"
	"github.com/Aukerul-Shuvo/financial-analyzer/internal/store/memory"
)

// mockStreamer fakes the LLM client, emitting fixed chunks for every
// prompt. Strategies listed in failOn return their error instead.
type mockStreamer struct {
	chunks []string
	failOn map[string]error
}

// strategyMarkers identify which strategy produced a prompt.
var strategyMarkers = map[string]string{
	StrategyZeroShot: "write a comprehensive narrative",
	StrategyFewShot:  "Below are examples",
	StrategyCoT:      "chain of thought",
}

func (m *mockStreamer) StreamText(ctx context.Context, prompt string, onChunk func(text string) error) error {
	for strategy, marker := range strategyMarkers {
		if strings.Contains(prompt, marker) {
			if err := m.failOn[strategy]; err != nil {
				return err
			}
		}
	}
	for _, c := range m.chunks {
		if err := onChunk(c); err != nil {
			return err
		}
	}
	return nil
}

func testPayload() Payload {
	return Payload{
		Transactions: []*domain.Transaction{{ID: "t1", Amount: -20}},
		Analysis:     domain.AggregateSnapshot{CurrentWeekSpending: -20},
	}
}

func collectEvents(t *testing.T, g *Generator, payload Payload) []Event {
	t.Helper()
	var events []Event
	err := g.Stream(context.Background(), payload, func(ev Event) error {
		events = append(events, ev)
		return nil
	})
	if err != nil {
		t.Fatalf("Stream returned error: %v", err)
	}
	return events
}

func eventNames(events []Event) []string {
	names := make([]string, len(events))
	for i, ev := range events {
		names[i] = ev.Name
	}
	return names
}

func TestStream_EventOrder(t *testing.T) {
	db := memory.New()
	g := NewGenerator(&mockStreamer{chunks: []string{"part one ", "part two"}}, db, zerolog.Nop())

	events := collectEvents(t, g, testPayload())

	want := []string{
		"start_narrative_stream",
		"narrative_zero_shot", "narrative_zero_shot", "end_narrative_zero_shot",
		"narrative_few_shot", "narrative_few_shot", "end_narrative_few_shot",
		"narrative_cot", "narrative_cot", "end_narrative_cot",
		"end_narrative_stream",
	}
	got := eventNames(events)
	if len(got) != len(want) {
		t.Fatalf("got %d events %v, want %d", len(got), got, len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestStream_ChunkDataIsJSON(t *testing.T) {
	db := memory.New()
	g := NewGenerator(&mockStreamer{chunks: []string{"hello"}}, db, zerolog.Nop())

	events := collectEvents(t, g, testPayload())

	if events[1].Name != "narrative_zero_shot" {
		t.Fatalf("second event = %q, want narrative_zero_shot", events[1].Name)
	}
	want := `{"narrative_zero_shot":"hello"}`
	if events[1].Data != want {
		t.Errorf("chunk data = %s, want %s", events[1].Data, want)
	}

	if events[2].Name != "end_narrative_zero_shot" || events[2].Data != "stream ended" {
		t.Errorf("end event = %q %q, want end_narrative_zero_shot \"stream ended\"", events[2].Name, events[2].Data)
	}
	if events[3].Name != "narrative_few_shot" {
		t.Errorf("fourth event = %q, want narrative_few_shot", events[3].Name)
	}
}

func TestStream_FailedStrategyContinues(t *testing.T) {
	db := memory.New()
	streamer := &mockStreamer{
		chunks: []string{"ok"},
		failOn: map[string]error{StrategyFewShot: errors.New("model overloaded")},
	}
	g := NewGenerator(streamer, db, zerolog.Nop())

	events := collectEvents(t, g, testPayload())
	names := eventNames(events)

	// The failed strategy yields an inline error event and no end
	// event; the remaining strategies still run.
	want := []string{
		"start_narrative_stream",
		"narrative_zero_shot", "end_narrative_zero_shot",
		"error",
		"narrative_cot", "end_narrative_cot",
		"end_narrative_stream",
	}
	if fmt.Sprint(names) != fmt.Sprint(want) {
		t.Errorf("events = %v, want %v", names, want)
	}

	for _, ev := range events {
		if ev.Name == "error" {
			if !strings.Contains(ev.Data, "an error occurred for strategy few_shot") {
				t.Errorf("error event data = %s", ev.Data)
			}
		}
		if ev.Name == "end_narrative_few_shot" {
			t.Error("failed strategy must not emit an end event")
		}
	}
}

func TestStream_PersistsNarrativesByFirstTransaction(t *testing.T) {
	db := memory.New()
	g := NewGenerator(&mockStreamer{chunks: []string{"a", "b"}}, db, zerolog.Nop())

	collectEvents(t, g, testPayload())

	saved := db.Narratives("t1")
	if len(saved) != 3 {
		t.Fatalf("saved %d narratives, want 3", len(saved))
	}
	for _, strategy := range Strategies {
		if saved[strategy] != "ab" {
			t.Errorf("narrative for %s = %q, want \"ab\"", strategy, saved[strategy])
		}
	}
}

func TestStream_FailedStrategyExcludedFromPersistence(t *testing.T) {
	db := memory.New()
	streamer := &mockStreamer{
		chunks: []string{"ok"},
		failOn: map[string]error{StrategyCoT: errors.New("quota exceeded")},
	}
	g := NewGenerator(streamer, db, zerolog.Nop())

	collectEvents(t, g, testPayload())

	saved := db.Narratives("t1")
	if len(saved) != 2 {
		t.Fatalf("saved %d narratives, want 2", len(saved))
	}
	if _, ok := saved[StrategyCoT]; ok {
		t.Error("failed strategy must not be persisted")
	}
}

func TestStream_ConsumerErrorAborts(t *testing.T) {
	db := memory.New()
	g := NewGenerator(&mockStreamer{chunks: []string{"a", "b", "c"}}, db, zerolog.Nop())

	calls := 0
	wantErr := errors.New("client disconnected")
	err := g.Stream(context.Background(), testPayload(), func(ev Event) error {
		calls++
		if calls == 3 {
			return wantErr
		}
		return nil
	})

	if !errors.Is(err, wantErr) {
		t.Errorf("Stream error = %v, want the consumer error", err)
	}
	if calls != 3 {
		t.Errorf("emit called %d times after abort, want 3", calls)
	}
}

func TestBuildPrompt_EmbedsPayload(t *testing.T) {
	payload := testPayload()

	for _, strategy := range Strategies {
		prompt, err := BuildPrompt(strategy, payload)
		if err != nil {
			t.Fatalf("BuildPrompt(%s) returned error: %v", strategy, err)
		}
		if !strings.Contains(prompt, `"transaction_id": "t1"`) {
			t.Errorf("prompt for %s does not embed the payload", strategy)
		}
		if !strings.Contains(prompt, `"analysis"`) {
			t.Errorf("prompt for %s does not embed the analysis", strategy)
		}
	}
}

func TestBuildPrompt_UnknownStrategy(t *testing.T) {
	if _, err := BuildPrompt("one_shot", testPayload()); err == nil {
		t.Error("expected an error for an unknown strategy")
	}
}
