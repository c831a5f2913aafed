package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/docask/docask/internal/model"
)

const (
	// FallbackModel marks answers produced without any provider configured.
	FallbackModel = "fallback"

	maxContextHits    = 5
	maxHistoryTurns   = 3
	fallbackPreview   = 2
	fallbackCutoff    = 200
	systemInstruction = `You are a helpful AI assistant that answers questions based on provided document context.

Guidelines:
- Use the provided document context to answer questions accurately
- If the context doesn't contain enough information, clearly state this
- Cite specific documents when referencing information
- Be concise but comprehensive in your responses
- If asked about something not in the context, explain that you can only answer based on the provided documents
- Maintain a professional and helpful tone`
)

// Answerer turns a question plus retrieved passages into an answer. With a
// nil generator it degrades to a deterministic non-generative response; a
// configured generator's failure is returned as-is so real provider
// problems are never masked as the no-provider fallback.
type Answerer struct {
	gen Generator
}

func NewAnswerer(gen Generator) *Answerer {
	return &Answerer{gen: gen}
}

func (a *Answerer) ActiveModel() string {
	if a.gen == nil {
		return FallbackModel
	}
	return a.gen.ModelName()
}

func (a *Answerer) Generate(ctx context.Context, query string, hits []model.RetrievalHit, history []model.HistoryTurn) (*model.AnswerResult, error) {
	if a.gen == nil {
		return &model.AnswerResult{
			Answer:      a.fallbackAnswer(hits),
			Sources:     extractSources(hits),
			ContextUsed: len(hits),
			Model:       FallbackModel,
		}, nil
	}
	prompt := buildUserPrompt(query, buildContext(hits), history)
	answer, err := a.gen.Generate(ctx, systemInstruction, prompt)
	if err != nil {
		return nil, err
	}
	return &model.AnswerResult{
		Answer:      answer,
		Sources:     extractSources(hits),
		ContextUsed: len(hits),
		Model:       a.gen.ModelName(),
	}, nil
}

func buildContext(hits []model.RetrievalHit) string {
	if len(hits) == 0 {
		return "No relevant documents found."
	}
	limit := len(hits)
	if limit > maxContextHits {
		limit = maxContextHits
	}
	parts := make([]string, 0, limit)
	for i := 0; i < limit; i++ {
		hit := hits[i]
		parts = append(parts, fmt.Sprintf("Document %d (%s, relevance: %.2f):\n%s\n", i+1, hit.Filename, hit.Score, hit.Text))
	}
	return strings.Join(parts, "\n---\n")
}

func buildUserPrompt(query, context string, history []model.HistoryTurn) string {
	var parts []string
	if len(history) > 0 {
		start := len(history) - maxHistoryTurns
		if start < 0 {
			start = 0
		}
		parts = append(parts, "Previous conversation:")
		for _, turn := range history[start:] {
			role := turn.Role
			if role == "" {
				role = "user"
			}
			parts = append(parts, fmt.Sprintf("%s: %s", titleRole(role), turn.Content))
		}
		parts = append(parts, "")
	}
	parts = append(parts,
		"Relevant document context:",
		context,
		"",
		fmt.Sprintf("Question: %s", query),
		"",
		"Please provide a helpful answer based on the document context above.",
	)
	return strings.Join(parts, "\n")
}

func (a *Answerer) fallbackAnswer(hits []model.RetrievalHit) string {
	if len(hits) == 0 {
		return "I found no relevant documents to answer your question. Please try uploading documents related to your query."
	}
	var preview strings.Builder
	limit := len(hits)
	if limit > fallbackPreview {
		limit = fallbackPreview
	}
	for i := 0; i < limit; i++ {
		text := hits[i].Text
		if runes := []rune(text); len(runes) > fallbackCutoff {
			text = string(runes[:fallbackCutoff])
		}
		preview.WriteString(fmt.Sprintf("\n\nFrom %s: %s...", hits[i].Filename, text))
	}
	return fmt.Sprintf("I found %d relevant document(s) for your query. Here's what I found:%s\n\n(Note: Full AI responses require API key configuration)", len(hits), preview.String())
}

func titleRole(role string) string {
	if role == "" {
		return role
	}
	return strings.ToUpper(role[:1]) + role[1:]
}

// extractSources dedupes hits by document, preserving first-seen order.
// Each source carries the document's best (first-seen) score and how many
// of the passed-in hits belong to it.
func extractSources(hits []model.RetrievalHit) []model.Source {
	counts := make(map[string]int, len(hits))
	for _, hit := range hits {
		counts[hit.DocumentID]++
	}
	sources := make([]model.Source, 0, len(counts))
	seen := make(map[string]struct{}, len(counts))
	for _, hit := range hits {
		if _, ok := seen[hit.DocumentID]; ok {
			continue
		}
		seen[hit.DocumentID] = struct{}{}
		sources = append(sources, model.Source{
			DocumentID: hit.DocumentID,
			Filename:   hit.Filename,
			Score:      hit.Score,
			HitCount:   counts[hit.DocumentID],
		})
	}
	return sources
}
