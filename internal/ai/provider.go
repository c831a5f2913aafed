// Package ai holds the model-provider abstractions: text generation,
// embedding, the startup-time provider chain, and answer assembly.
package ai

import (
	"context"
	"fmt"
	"strings"
)

// Generator produces a completion for a system instruction plus user
// prompt. Implementations report the model name used so callers can attach
// provenance to answers.
type Generator interface {
	ModelName() string
	Generate(ctx context.Context, system string, prompt string) (string, error)
}

// Embedder maps texts into the fixed-dimension embedding space. Embed is
// batched: one vector per input, in input order. Index and query embedding
// must go through the same Embedder or the spaces will not match.
type Embedder interface {
	ModelName() string
	Dimension() int
	Embed(ctx context.Context, texts []string, taskType string) ([][]float32, error)
}

// Task types passed to embedding providers that distinguish them.
const (
	TaskDocument = "RETRIEVAL_DOCUMENT"
	TaskQuery    = "RETRIEVAL_QUERY"
)

// ProviderConfig configures one generation provider. Order in the config
// file is the selection priority.
type ProviderConfig struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
	APIKey   string `json:"api_key"`
	BaseURL  string `json:"base_url"`
}

type GeneratorFactory func(cfg ProviderConfig) (Generator, error)

var generatorRegistry = map[string]GeneratorFactory{}

func RegisterGenerator(name string, factory GeneratorFactory) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || factory == nil {
		return
	}
	generatorRegistry[key] = factory
}

func NewGenerator(cfg ProviderConfig) (Generator, error) {
	key := strings.ToLower(strings.TrimSpace(cfg.Provider))
	factory := generatorRegistry[key]
	if factory == nil {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}
	return factory(cfg)
}

type EmbedderFactory func(cfg ProviderConfig) (Embedder, error)

var embedderRegistry = map[string]EmbedderFactory{}

func RegisterEmbedder(name string, factory EmbedderFactory) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || factory == nil {
		return
	}
	embedderRegistry[key] = factory
}

func NewEmbedder(cfg ProviderConfig) (Embedder, error) {
	key := strings.ToLower(strings.TrimSpace(cfg.Provider))
	factory := embedderRegistry[key]
	if factory == nil {
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}
	return factory(cfg)
}
