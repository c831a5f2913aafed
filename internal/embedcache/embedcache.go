// Package embedcache layers caching over an ai.Embedder so repeated
// ingests and identical queries skip provider calls. The LRU layer absorbs
// hot queries in memory; the db layer survives restarts.
package embedcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/docask/docask/internal/ai"
	"github.com/docask/docask/internal/model"
	"github.com/docask/docask/internal/repo"
)

func WrapLruCacheToEmbedder(e ai.Embedder, size int, ttl time.Duration) ai.Embedder {
	if e == nil || size <= 0 || ttl <= 0 {
		return e
	}
	return &lruEmbedder{
		next:  e,
		cache: expirable.NewLRU[string, []float32](size, nil, ttl),
	}
}

type lruEmbedder struct {
	next  ai.Embedder
	cache *expirable.LRU[string, []float32]
}

func (l *lruEmbedder) ModelName() string {
	return l.next.ModelName()
}

func (l *lruEmbedder) Dimension() int {
	return l.next.Dimension()
}

func (l *lruEmbedder) Embed(ctx context.Context, texts []string, taskType string) ([][]float32, error) {
	return embedThrough(ctx, texts, taskType, l.next,
		func(_ context.Context, key cacheKey) ([]float32, bool) {
			cached, ok := l.cache.Get(key.lruKey)
			if ok {
				logutil.GetLogger(ctx).Debug("embedding cache hit (lru)", zap.String("task_type", taskType))
			}
			return cloneEmbedding(cached), ok
		},
		func(_ context.Context, key cacheKey, values []float32) {
			l.cache.Add(key.lruKey, cloneEmbedding(values))
		},
	)
}

func WrapDBCacheToEmbedder(e ai.Embedder, cacheRepo *repo.EmbeddingCacheRepo) ai.Embedder {
	if e == nil || cacheRepo == nil {
		return e
	}
	return &dbEmbedder{next: e, repo: cacheRepo}
}

type dbEmbedder struct {
	next ai.Embedder
	repo *repo.EmbeddingCacheRepo
}

func (d *dbEmbedder) ModelName() string {
	return d.next.ModelName()
}

func (d *dbEmbedder) Dimension() int {
	return d.next.Dimension()
}

func (d *dbEmbedder) Embed(ctx context.Context, texts []string, taskType string) ([][]float32, error) {
	return embedThrough(ctx, texts, taskType, d.next,
		func(ctx context.Context, key cacheKey) ([]float32, bool) {
			values, ok, err := d.repo.Get(ctx, key.modelName, taskType, key.contentHash)
			if err != nil || !ok {
				return nil, false
			}
			logutil.GetLogger(ctx).Debug("embedding cache hit (db)", zap.String("task_type", taskType))
			return values, true
		},
		func(ctx context.Context, key cacheKey, values []float32) {
			err := d.repo.Save(ctx, &model.EmbeddingCache{
				ModelName:   key.modelName,
				TaskType:    taskType,
				ContentHash: key.contentHash,
				Embedding:   values,
				Ctime:       time.Now().UnixMilli(),
			})
			if err != nil {
				logutil.GetLogger(ctx).Warn("failed to cache embedding", zap.Error(err))
			}
		},
	)
}

type cacheKey struct {
	lruKey      string
	contentHash string
	modelName   string
}

// embedThrough answers what it can from the cache and batches only the
// misses through the wrapped embedder, preserving input order.
func embedThrough(
	ctx context.Context,
	texts []string,
	taskType string,
	next ai.Embedder,
	lookup func(ctx context.Context, key cacheKey) ([]float32, bool),
	store func(ctx context.Context, key cacheKey, values []float32),
) ([][]float32, error) {
	out := make([][]float32, len(texts))
	keys := make([]cacheKey, len(texts))
	var missIdx []int
	var missTexts []string
	for i, text := range texts {
		keys[i] = buildCacheKey(next.ModelName(), taskType, text)
		if values, ok := lookup(ctx, keys[i]); ok {
			out[i] = values
			continue
		}
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, text)
	}
	if len(missTexts) == 0 {
		return out, nil
	}
	fresh, err := next.Embed(ctx, missTexts, taskType)
	if err != nil {
		return nil, err
	}
	for j, i := range missIdx {
		out[i] = fresh[j]
		store(ctx, keys[i], fresh[j])
	}
	return out, nil
}

func buildCacheKey(modelName, taskType, text string) cacheKey {
	modelName = strings.TrimSpace(modelName)
	if modelName == "" {
		modelName = "unknown"
	}
	hash := sha256.Sum256([]byte(text))
	contentHash := hex.EncodeToString(hash[:])
	return cacheKey{
		lruKey:      "embed:" + modelName + ":" + taskType + ":" + contentHash,
		contentHash: contentHash,
		modelName:   modelName,
	}
}

func cloneEmbedding(values []float32) []float32 {
	if len(values) == 0 {
		return nil
	}
	clone := make([]float32, len(values))
	copy(clone, values)
	return clone
}
