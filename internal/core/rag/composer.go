// Package rag answers natural-language questions grounded strictly in
// the asking owner's processed documents.
package rag

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/emdili/docrag/internal/core"
)

// NoKnowledgeMessage is returned whenever no grounded answer exists.
// Absence of knowledge is a normal answer, never an error.
const NoKnowledgeMessage = "No relevant content in your documents. Upload and process documents to ask questions."

const (
	// DefaultTopK is the number of chunks retrieved for context.
	DefaultTopK = 10
	// MaxAnswerTokens caps the generated answer length.
	MaxAnswerTokens = 1024

	contextSeparator = "\n\n---\n\n"

	systemPrompt = "Answer the user's question using only the following context from their documents. " +
		"If the context does not contain relevant information, say so clearly. Do not fabricate or guess."
)

// Composer embeds a question, retrieves the owner's nearest chunks,
// and asks the generative model for a grounded answer.
type Composer struct {
	embedder core.EmbeddingProvider
	vectors  core.VectorIndex
	llm      core.LLMProvider
	topK     int
	logger   *slog.Logger
}

func NewComposer(embedder core.EmbeddingProvider, vectors core.VectorIndex, llm core.LLMProvider, topK int, logger *slog.Logger) *Composer {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Composer{embedder: embedder, vectors: vectors, llm: llm, topK: topK, logger: logger}
}

// Answer returns (answer, source filenames). Sources are the distinct
// document filenames whose chunks contributed context, sorted
// lexicographically. The retrieval is filtered to the asking owner;
// results from any other owner would be a correctness violation.
// The only error path is a failed generation call.
func (c *Composer) Answer(ctx context.Context, ownerID, question string) (string, []string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return NoKnowledgeMessage, []string{}, nil
	}

	queryEmbedding, err := c.embedder.EmbedText(ctx, question)
	if err != nil {
		c.logger.Warn("question embedding failed", "owner_id", ownerID, "error", err)
		return NoKnowledgeMessage, []string{}, nil
	}

	matches, err := c.vectors.Query(ctx, queryEmbedding, c.topK, ownerID)
	if err != nil {
		c.logger.Warn("vector query failed", "owner_id", ownerID, "error", err)
		return NoKnowledgeMessage, []string{}, nil
	}
	if len(matches) == 0 {
		return NoKnowledgeMessage, []string{}, nil
	}

	var parts []string
	seen := make(map[string]struct{})
	for _, m := range matches {
		if m.Text != "" {
			parts = append(parts, m.Text)
		}
		if m.Filename != "" {
			seen[m.Filename] = struct{}{}
		}
	}
	if len(parts) == 0 {
		return NoKnowledgeMessage, []string{}, nil
	}

	sources := make([]string, 0, len(seen))
	for f := range seen {
		sources = append(sources, f)
	}
	sort.Strings(sources)

	userPrompt := fmt.Sprintf("Context:\n%s\n\nQuestion: %s",
		strings.Join(parts, contextSeparator), question)

	answer, err := c.llm.Generate(ctx, systemPrompt, userPrompt, MaxAnswerTokens)
	if err != nil {
		return "", nil, &core.DependencyError{Op: "generate answer", Err: err}
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		// Model produced no usable text block.
		answer = NoKnowledgeMessage
	}
	return answer, sources, nil
}
