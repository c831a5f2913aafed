package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/docask/docask/internal/ai"
	"github.com/docask/docask/internal/index"
	"github.com/docask/docask/internal/model"
	"github.com/docask/docask/internal/pkg/errs"
)

type countingGenerator struct {
	calls  int
	answer string
}

func (g *countingGenerator) ModelName() string {
	return "counting-model"
}

func (g *countingGenerator) Generate(_ context.Context, _, _ string) (string, error) {
	g.calls++
	return g.answer, nil
}

func newTestService(gen ai.Generator) *RAGService {
	idx := index.NewMemoryIndex(ai.NewLocalEmbedder(64))
	return NewRAGService(idx, ai.NewAnswerer(gen), nil, nil, RAGConfig{})
}

func docText() string {
	var sb strings.Builder
	for i := 0; i < 10; i++ {
		sb.WriteString("The migration plan moves the billing service onto the new cluster in stages. ")
	}
	return sb.String()
}

func TestIngest_ValidationErrors(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(nil)

	_, err := svc.Ingest(ctx, "alice", "", []byte("data"))
	require.True(t, errors.Is(err, errs.ErrInvalid))

	_, err = svc.Ingest(ctx, "alice", "malware.exe", []byte("data"))
	require.True(t, errors.Is(err, errs.ErrUnsupportedFormat))

	_, err = svc.Ingest(ctx, "alice", "short.txt", []byte("too short"))
	require.True(t, errors.Is(err, errs.ErrEmptyDocument))
}

func TestIngest_PayloadTooLarge(t *testing.T) {
	ctx := context.Background()
	idx := index.NewMemoryIndex(ai.NewLocalEmbedder(64))
	svc := NewRAGService(idx, ai.NewAnswerer(nil), nil, nil, RAGConfig{MaxUploadBytes: 16})
	_, err := svc.Ingest(ctx, "alice", "big.txt", []byte(strings.Repeat("x", 32)))
	require.True(t, errors.Is(err, errs.ErrPayloadTooLarge))
}

func TestIngestThenQuery(t *testing.T) {
	ctx := context.Background()
	gen := &countingGenerator{answer: "It moves in stages."}
	svc := newTestService(gen)

	ingested, err := svc.Ingest(ctx, "alice", "plan.txt", []byte(docText()))
	require.NoError(t, err)
	require.Equal(t, "alice", strings.SplitN(ingested.DocumentID, "_", 2)[0])
	require.Equal(t, "txt", ingested.FileType)
	require.Equal(t, "completed", ingested.Status)
	require.Greater(t, ingested.ChunksCreated, 0)
	require.Greater(t, ingested.TotalTokens, 0)

	result, err := svc.Query(ctx, "alice", model.QueryContext{Query: "how does the billing migration proceed?"})
	require.NoError(t, err)
	require.Equal(t, 1, gen.calls)
	require.Equal(t, "It moves in stages.", result.Answer)
	require.Equal(t, "counting-model", result.Model)
	require.Equal(t, 1, result.TotalDocuments)
	require.NotEmpty(t, result.Sources)
	require.Empty(t, result.Suggestions)
	require.NotEmpty(t, result.Timestamp)
}

func TestQuery_BlankRejected(t *testing.T) {
	svc := newTestService(nil)
	_, err := svc.Query(context.Background(), "alice", model.QueryContext{Query: "   "})
	require.True(t, errors.Is(err, errs.ErrInvalid))
}

func TestQuery_NoHitsReturnsSuggestionsWithoutGenerating(t *testing.T) {
	ctx := context.Background()
	gen := &countingGenerator{answer: "should never appear"}
	svc := newTestService(gen)

	result, err := svc.Query(ctx, "alice", model.QueryContext{Query: "anything at all"})
	require.NoError(t, err)
	require.Zero(t, gen.calls, "generator must not run with no retrieved passages")
	require.Equal(t, 0, result.ContextUsed)
	require.NotEmpty(t, result.Suggestions)
	require.Contains(t, result.Answer, "couldn't find any relevant information")
	require.Equal(t, 0, result.TotalDocuments)
}

func TestQuery_ScopedToDocumentIDs(t *testing.T) {
	ctx := context.Background()
	gen := &countingGenerator{answer: "scoped answer"}
	svc := newTestService(gen)

	first, err := svc.Ingest(ctx, "alice", "one.txt", []byte(docText()))
	require.NoError(t, err)
	_, err = svc.Ingest(ctx, "alice", "two.txt", []byte(docText()))
	require.NoError(t, err)

	result, err := svc.Query(ctx, "alice", model.QueryContext{
		Query:       "billing migration",
		DocumentIDs: []string{first.DocumentID},
	})
	require.NoError(t, err)
	require.Len(t, result.Sources, 1)
	require.Equal(t, first.DocumentID, result.Sources[0].DocumentID)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(nil)

	_, err := svc.Delete(ctx, "alice", "missing")
	require.True(t, errs.IsNotFound(err))

	ingested, err := svc.Ingest(ctx, "alice", "plan.txt", []byte(docText()))
	require.NoError(t, err)

	_, err = svc.Delete(ctx, "bob", ingested.DocumentID)
	require.True(t, errs.IsNotFound(err), "other owners cannot delete")

	deleted, err := svc.Delete(ctx, "alice", ingested.DocumentID)
	require.NoError(t, err)
	require.Equal(t, "deleted", deleted.Status)

	stats, err := svc.Stats(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, 0, stats.TotalDocuments)
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	gen := &countingGenerator{}
	svc := newTestService(gen)

	stats, err := svc.Stats(ctx, "alice")
	require.NoError(t, err)
	require.False(t, stats.RAGEnabled)
	require.Equal(t, "counting-model", stats.Model)

	_, err = svc.Ingest(ctx, "alice", "plan.txt", []byte(docText()))
	require.NoError(t, err)

	stats, err = svc.Stats(ctx, "alice")
	require.NoError(t, err)
	require.True(t, stats.RAGEnabled)
	require.Equal(t, 1, stats.TotalDocuments)
}
