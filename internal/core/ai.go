package core

import "context"

// EmbeddingProvider turns text into a vector. Implementations must
// reject blank input.
type EmbeddingProvider interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// LLMProvider generates a grounded answer. Implementations return the
// first usable text block of the model response, or "" when the
// response contains none.
type LLMProvider interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string, maxTokens int32) (string, error)
}
