package index

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/docask/docask/internal/ai"
	"github.com/docask/docask/internal/model"
)

// MemoryIndex keeps passages and vectors in process memory. It backs tests
// and single-node deployments that don't want a Postgres dependency; the
// pgvector index is the durable option.
type MemoryIndex struct {
	embedder ai.Embedder

	mu      sync.RWMutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	passage model.Passage
	vector  []float32
}

func NewMemoryIndex(embedder ai.Embedder) *MemoryIndex {
	return &MemoryIndex{
		embedder: embedder,
		entries:  make(map[string]memoryEntry),
	}
}

func (m *MemoryIndex) Add(ctx context.Context, passages []model.Passage) error {
	if len(passages) == 0 {
		return nil
	}
	texts := make([]string, 0, len(passages))
	for _, p := range passages {
		texts = append(texts, p.Text)
	}
	vectors, err := m.embedder.Embed(ctx, texts, ai.TaskDocument)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, p := range passages {
		m.entries[p.ID] = memoryEntry{passage: p, vector: vectors[i]}
	}
	return nil
}

func (m *MemoryIndex) Search(ctx context.Context, query, ownerID string, limit int, documentIDs []string) ([]model.RetrievalHit, error) {
	vectors, err := m.embedder.Embed(ctx, []string{query}, ai.TaskQuery)
	if err != nil {
		return nil, err
	}
	queryVec := vectors[0]
	var filter map[string]struct{}
	if len(documentIDs) > 0 {
		filter = make(map[string]struct{}, len(documentIDs))
		for _, id := range documentIDs {
			filter[id] = struct{}{}
		}
	}

	m.mu.RLock()
	hits := make([]model.RetrievalHit, 0, limit)
	for _, entry := range m.entries {
		if entry.passage.OwnerID != ownerID {
			continue
		}
		if filter != nil {
			if _, ok := filter[entry.passage.DocumentID]; !ok {
				continue
			}
		}
		hits = append(hits, model.RetrievalHit{
			Passage: entry.passage,
			Score:   cosineSimilarity(queryVec, entry.vector),
		})
	}
	m.mu.RUnlock()

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		// Deterministic order for equal scores.
		return hits[i].ID < hits[j].ID
	})
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

func (m *MemoryIndex) Remove(_ context.Context, documentID, ownerID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := false
	for id, entry := range m.entries {
		if entry.passage.DocumentID == documentID && entry.passage.OwnerID == ownerID {
			delete(m.entries, id)
			removed = true
		}
	}
	return removed, nil
}

func (m *MemoryIndex) CountDocuments(_ context.Context, ownerID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	docs := make(map[string]struct{})
	for _, entry := range m.entries {
		if entry.passage.OwnerID == ownerID {
			docs[entry.passage.DocumentID] = struct{}{}
		}
	}
	return len(docs), nil
}

func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
