package ai

import (
	"context"
	"hash/fnv"
	"math"
	"regexp"
	"strings"
)

const defaultLocalDimension = 384

// localEmbedder is a feature-hashing vectorizer: each token hashes to a
// fixed slot with a deterministic sign, term frequencies accumulate there,
// and the vector is L2-normalized. It needs no vocabulary, no network and
// no API key, so ingest and search work with zero providers configured.
// Vectors are only comparable to other vectors from the same version.
type localEmbedder struct {
	dimension    int
	tokenPattern *regexp.Regexp
	stopwords    map[string]struct{}
}

func NewLocalEmbedder(dimension int) Embedder {
	if dimension <= 0 {
		dimension = defaultLocalDimension
	}
	return &localEmbedder{
		dimension:    dimension,
		tokenPattern: regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*|\p{N}+`),
		stopwords:    defaultStopwords(),
	}
}

func (e *localEmbedder) ModelName() string {
	return "local-hash-v1"
}

func (e *localEmbedder) Dimension() int {
	return e.dimension
}

func (e *localEmbedder) Embed(_ context.Context, texts []string, _ string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for _, text := range texts {
		out = append(out, e.embedOne(text))
	}
	return out, nil
}

func (e *localEmbedder) embedOne(text string) []float32 {
	vec := make([]float32, e.dimension)
	tokens := e.tokenize(text)
	for _, tok := range tokens {
		h := fnv.New64a()
		_, _ = h.Write([]byte(tok))
		sum := h.Sum64()
		idx := int(sum % uint64(e.dimension))
		// High bit decides the sign so colliding tokens tend to cancel
		// instead of compounding.
		if sum&(1<<63) != 0 {
			vec[idx] -= 1
		} else {
			vec[idx] += 1
		}
	}
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] = float32(float64(vec[i]) / norm)
		}
	}
	return vec
}

func (e *localEmbedder) tokenize(text string) []string {
	lower := strings.ToLower(text)
	raw := e.tokenPattern.FindAllString(lower, -1)
	out := make([]string, 0, len(raw))
	for _, t := range raw {
		if _, isStop := e.stopwords[t]; isStop {
			continue
		}
		out = append(out, t)
	}
	return out
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for",
		"to", "of", "in", "on", "at", "by", "with", "as", "is", "are",
		"was", "were", "be", "been", "being", "it", "this", "that",
		"these", "those", "from", "so", "such", "into", "about", "than",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

func init() {
	RegisterEmbedder("local", func(cfg ProviderConfig) (Embedder, error) {
		_ = cfg
		return NewLocalEmbedder(defaultLocalDimension), nil
	})
}
