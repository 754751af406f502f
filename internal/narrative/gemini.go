package narrative

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// DefaultModelName is the Gemini model used for narrative generation
// unless overridden via configuration.
const DefaultModelName = "gemini-2.5-flash"

// narrativeTemperature keeps generation close to deterministic so the
// narrative stays grounded in the supplied numbers.
const narrativeTemperature = float32(0.1)

// GeminiStreamer implements TextStreamer using the Gemini API. The
// client picks up credentials from the environment (GEMINI_API_KEY or
// application default credentials).
type GeminiStreamer struct {
	client *genai.Client
	model  string
}

// NewGeminiStreamer creates a streamer for the given model name; an
// empty name selects DefaultModelName.
func NewGeminiStreamer(ctx context.Context, model string) (*GeminiStreamer, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("NewGeminiStreamer: create genai client: %w", err)
	}
	if model == "" {
		model = DefaultModelName
	}
	return &GeminiStreamer{client: client, model: model}, nil
}

// StreamText implements TextStreamer by forwarding each partial
// response's text to onChunk as it arrives.
func (s *GeminiStreamer) StreamText(ctx context.Context, prompt string, onChunk func(text string) error) error {
	contents := genai.Text(prompt)
	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(narrativeTemperature),
	}

	for resp, err := range s.client.Models.GenerateContentStream(ctx, s.model, contents, config) {
		if err != nil {
			return fmt.Errorf("StreamText: generate content stream: %w", err)
		}
		if text := resp.Text(); text != "" {
			if err := onChunk(text); err != nil {
				return err
			}
		}
	}
	return nil
}

var _ TextStreamer = (*GeminiStreamer)(nil)
