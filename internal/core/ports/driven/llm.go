package driven

import (
	"context"
	"fmt"
)

// LLMService provides text generation for query answering and study tools.
// Every call site treats it as untrusted: failures are caught once and
// converted to user-readable fallbacks, never retried here.
//
// Implementations may include:
//   - Gemini
//   - OpenAI (GPT-4o family)
//   - Ollama (local models)
type LLMService interface {
	// Generate produces a completion from a prompt. When opts.Context is
	// non-empty it is prepended as grounding material for the question.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the service is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// Context is retrieved grounding text; when set, the prompt is framed
	// as a question about it.
	Context string

	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64
}

// Default generation parameters for RAG answers.
const (
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 1024
)

// GroundedPrompt frames a question against retrieved context. LLM
// adapters apply it when GenerateOptions.Context is non-empty so every
// backend sees the same grounding format.
func GroundedPrompt(prompt, contextText string) string {
	if contextText == "" {
		return prompt
	}
	return fmt.Sprintf("Context: %s\n\nQuestion: %s", contextText, prompt)
}
