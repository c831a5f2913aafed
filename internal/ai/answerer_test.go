package ai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/docask/docask/internal/model"
)

type stubGenerator struct {
	model      string
	answer     string
	err        error
	lastSystem string
	lastPrompt string
}

func (s *stubGenerator) ModelName() string {
	return s.model
}

func (s *stubGenerator) Generate(_ context.Context, system, prompt string) (string, error) {
	s.lastSystem = system
	s.lastPrompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.answer, nil
}

func makeHit(docID, filename, text string, score float32) model.RetrievalHit {
	return model.RetrievalHit{
		Passage: model.Passage{
			ID:         docID + "_0",
			DocumentID: docID,
			Filename:   filename,
			Text:       text,
		},
		Score: score,
	}
}

func TestAnswerer_NoProviderFallback(t *testing.T) {
	answerer := NewAnswerer(nil)
	require.Equal(t, FallbackModel, answerer.ActiveModel())

	hits := []model.RetrievalHit{
		makeHit("doc1", "notes.txt", "The capital of France is Paris.", 0.91),
		makeHit("doc2", "extra.txt", "Paris hosts the Louvre museum.", 0.85),
		makeHit("doc3", "third.txt", "Unused in the preview.", 0.42),
	}
	result, err := answerer.Generate(context.Background(), "what is the capital?", hits, nil)
	require.NoError(t, err)
	require.Equal(t, FallbackModel, result.Model)
	require.Equal(t, 3, result.ContextUsed)
	require.Contains(t, result.Answer, "3 relevant document(s)")
	require.Contains(t, result.Answer, "From notes.txt:")
	require.Contains(t, result.Answer, "From extra.txt:")
	require.NotContains(t, result.Answer, "From third.txt:")
	require.Contains(t, result.Answer, "API key configuration")
	require.Len(t, result.Sources, 3)
}

func TestAnswerer_NoProviderNoHits(t *testing.T) {
	answerer := NewAnswerer(nil)
	result, err := answerer.Generate(context.Background(), "anything", nil, nil)
	require.NoError(t, err)
	require.Equal(t, FallbackModel, result.Model)
	require.Equal(t, 0, result.ContextUsed)
	require.Contains(t, result.Answer, "no relevant documents")
	require.Empty(t, result.Sources)
}

func TestAnswerer_FallbackPreviewTruncatesRuneSafe(t *testing.T) {
	answerer := NewAnswerer(nil)
	long := strings.Repeat("é", 500)
	hits := []model.RetrievalHit{makeHit("doc1", "long.txt", long, 0.9)}
	result, err := answerer.Generate(context.Background(), "q", hits, nil)
	require.NoError(t, err)
	require.Contains(t, result.Answer, strings.Repeat("é", fallbackCutoff)+"...")
	require.NotContains(t, result.Answer, strings.Repeat("é", fallbackCutoff+1))
}

func TestAnswerer_GeneratorPromptAssembly(t *testing.T) {
	gen := &stubGenerator{model: "test-model", answer: "Paris."}
	answerer := NewAnswerer(gen)
	require.Equal(t, "test-model", answerer.ActiveModel())

	hits := []model.RetrievalHit{
		makeHit("doc1", "notes.txt", "The capital of France is Paris.", 0.91),
	}
	history := []model.HistoryTurn{
		{Role: "user", Content: "turn one"},
		{Role: "assistant", Content: "turn two"},
		{Role: "user", Content: "turn three"},
		{Role: "assistant", Content: "turn four"},
	}
	result, err := answerer.Generate(context.Background(), "what is the capital?", hits, history)
	require.NoError(t, err)
	require.Equal(t, "Paris.", result.Answer)
	require.Equal(t, "test-model", result.Model)
	require.Equal(t, 1, result.ContextUsed)

	require.Contains(t, gen.lastSystem, "answers questions based on provided document context")
	require.Contains(t, gen.lastPrompt, "Document 1 (notes.txt, relevance: 0.91):")
	require.Contains(t, gen.lastPrompt, "Question: what is the capital?")
	// Only the last three turns survive.
	require.NotContains(t, gen.lastPrompt, "turn one")
	require.Contains(t, gen.lastPrompt, "Assistant: turn two")
	require.Contains(t, gen.lastPrompt, "User: turn three")
}

func TestAnswerer_ContextCapsAtFiveHits(t *testing.T) {
	gen := &stubGenerator{model: "test-model", answer: "ok"}
	answerer := NewAnswerer(gen)
	var hits []model.RetrievalHit
	for i := 0; i < 7; i++ {
		hits = append(hits, makeHit("doc", "f.txt", "text", 0.5))
	}
	_, err := answerer.Generate(context.Background(), "q", hits, nil)
	require.NoError(t, err)
	require.Contains(t, gen.lastPrompt, "Document 5 (")
	require.NotContains(t, gen.lastPrompt, "Document 6 (")
}

func TestAnswerer_ProviderErrorPropagates(t *testing.T) {
	boom := errors.New("quota exceeded")
	gen := &stubGenerator{model: "test-model", err: boom}
	answerer := NewAnswerer(gen)
	hits := []model.RetrievalHit{makeHit("doc1", "notes.txt", "text", 0.9)}
	_, err := answerer.Generate(context.Background(), "q", hits, nil)
	require.ErrorIs(t, err, boom)
}

func TestExtractSources_DedupesByDocument(t *testing.T) {
	hits := []model.RetrievalHit{
		makeHit("doc1", "a.txt", "one", 0.9),
		makeHit("doc2", "b.txt", "two", 0.8),
		makeHit("doc1", "a.txt", "three", 0.7),
	}
	sources := extractSources(hits)
	require.Len(t, sources, 2)
	require.Equal(t, "doc1", sources[0].DocumentID)
	require.Equal(t, float32(0.9), sources[0].Score)
	require.Equal(t, 2, sources[0].HitCount)
	require.Equal(t, "doc2", sources[1].DocumentID)
	require.Equal(t, 1, sources[1].HitCount)
}
