package ai

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/docask/docask/internal/pkg/errs"
)

const geminiEmbedDimension = 768

type geminiGenerator struct {
	apiKey string
	model  string
}

func (p *geminiGenerator) ModelName() string {
	return p.model
}

func (p *geminiGenerator) Generate(ctx context.Context, system string, prompt string) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  p.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("%w: gemini client: %v", errs.ErrProvider, err)
	}
	var config *genai.GenerateContentConfig
	if system != "" {
		config = &genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: system}}},
		}
	}
	resp, err := client.Models.GenerateContent(
		ctx,
		p.model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: prompt}}}},
		config,
	)
	if err != nil {
		return "", fmt.Errorf("%w: gemini: %v", errs.ErrProvider, err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("%w: gemini returned empty response", errs.ErrProvider)
	}
	return text, nil
}

type geminiEmbedder struct {
	apiKey string
	model  string
}

func (p *geminiEmbedder) ModelName() string {
	return p.model
}

func (p *geminiEmbedder) Dimension() int {
	return geminiEmbedDimension
}

func (p *geminiEmbedder) Embed(ctx context.Context, texts []string, taskType string) ([][]float32, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  p.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: gemini client: %v", errs.ErrProvider, err)
	}
	var config *genai.EmbedContentConfig
	if taskType != "" {
		config = &genai.EmbedContentConfig{TaskType: taskType}
	}
	contents := make([]*genai.Content, 0, len(texts))
	for _, text := range texts {
		contents = append(contents, &genai.Content{Parts: []*genai.Part{{Text: text}}})
	}
	resp, err := client.Models.EmbedContent(ctx, p.model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("%w: gemini embed: %v", errs.ErrProvider, err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("%w: gemini embed returned %d vectors for %d inputs", errs.ErrProvider, len(resp.Embeddings), len(texts))
	}
	out := make([][]float32, 0, len(resp.Embeddings))
	for _, emb := range resp.Embeddings {
		out = append(out, emb.Values)
	}
	return out, nil
}

func init() {
	RegisterGenerator("gemini", func(cfg ProviderConfig) (Generator, error) {
		if strings.TrimSpace(cfg.APIKey) == "" {
			return nil, fmt.Errorf("gemini api_key is required")
		}
		model := cfg.Model
		if model == "" {
			model = "gemini-2.0-flash"
		}
		return &geminiGenerator{apiKey: strings.TrimSpace(cfg.APIKey), model: model}, nil
	})
	RegisterEmbedder("gemini", func(cfg ProviderConfig) (Embedder, error) {
		if strings.TrimSpace(cfg.APIKey) == "" {
			return nil, fmt.Errorf("gemini api_key is required")
		}
		model := cfg.Model
		if model == "" {
			model = "text-embedding-004"
		}
		return &geminiEmbedder{apiKey: strings.TrimSpace(cfg.APIKey), model: model}, nil
	})
}
