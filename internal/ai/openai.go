package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/docask/docask/internal/pkg/errs"
)

const (
	defaultOpenAIBaseURL        = "https://api.openai.com/v1"
	defaultOpenAIEmbedDimension = 1536
)

type openAIChatMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIChatRequest struct {
	Model    string          `json:"model"`
	Messages []openAIChatMsg `json:"messages"`
	Stream   bool            `json:"stream"`
}

type openAIChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type openAIEmbedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type openAIEmbedResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// openAIGenerator speaks the OpenAI-compatible chat API, which also covers
// compatible gateways via base_url.
type openAIGenerator struct {
	apiKey  string
	baseURL string
	model   string
}

func (p *openAIGenerator) ModelName() string {
	return p.model
}

func (p *openAIGenerator) Generate(ctx context.Context, system string, prompt string) (string, error) {
	messages := make([]openAIChatMsg, 0, 2)
	if system != "" {
		messages = append(messages, openAIChatMsg{Role: "system", Content: system})
	}
	messages = append(messages, openAIChatMsg{Role: "user", Content: prompt})
	reqBody := openAIChatRequest{
		Model:    p.model,
		Messages: messages,
		Stream:   false,
	}
	var out openAIChatResponse
	if err := postJSON(ctx, p.baseURL, "/chat/completions", p.apiKey, reqBody, &out); err != nil {
		return "", err
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("%w: openai response has no choices", errs.ErrProvider)
	}
	text := strings.TrimSpace(out.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("%w: openai returned empty response", errs.ErrProvider)
	}
	return text, nil
}

type openAIEmbedder struct {
	apiKey  string
	baseURL string
	model   string
}

func (p *openAIEmbedder) ModelName() string {
	return p.model
}

func (p *openAIEmbedder) Dimension() int {
	return defaultOpenAIEmbedDimension
}

func (p *openAIEmbedder) Embed(ctx context.Context, texts []string, taskType string) ([][]float32, error) {
	_ = taskType // the OpenAI embedding API has no task-type hint
	reqBody := openAIEmbedRequest{
		Model: p.model,
		Input: texts,
	}
	var out openAIEmbedResponse
	if err := postJSON(ctx, p.baseURL, "/embeddings", p.apiKey, reqBody, &out); err != nil {
		return nil, err
	}
	if len(out.Data) != len(texts) {
		return nil, fmt.Errorf("%w: openai embed returned %d vectors for %d inputs", errs.ErrProvider, len(out.Data), len(texts))
	}
	vectors := make([][]float32, 0, len(out.Data))
	for _, item := range out.Data {
		vectors = append(vectors, item.Embedding)
	}
	return vectors, nil
}

func postJSON(ctx context.Context, baseURL, path, apiKey string, body interface{}, dst interface{}) error {
	endpoint := strings.TrimRight(baseURL, "/") + path
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrProvider, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: openai request failed: %s: %s", errs.ErrProvider, resp.Status, strings.TrimSpace(string(raw)))
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: decode openai response: %v", errs.ErrProvider, err)
	}
	return nil
}

func init() {
	RegisterGenerator("openai", func(cfg ProviderConfig) (Generator, error) {
		if strings.TrimSpace(cfg.APIKey) == "" {
			return nil, fmt.Errorf("openai api_key is required")
		}
		baseURL := strings.TrimSpace(cfg.BaseURL)
		if baseURL == "" {
			baseURL = defaultOpenAIBaseURL
		}
		model := cfg.Model
		if model == "" {
			model = "gpt-4o-mini"
		}
		return &openAIGenerator{apiKey: strings.TrimSpace(cfg.APIKey), baseURL: baseURL, model: model}, nil
	})
	RegisterEmbedder("openai", func(cfg ProviderConfig) (Embedder, error) {
		if strings.TrimSpace(cfg.APIKey) == "" {
			return nil, fmt.Errorf("openai api_key is required")
		}
		baseURL := strings.TrimSpace(cfg.BaseURL)
		if baseURL == "" {
			baseURL = defaultOpenAIBaseURL
		}
		model := cfg.Model
		if model == "" {
			model = "text-embedding-3-small"
		}
		return &openAIEmbedder{apiKey: strings.TrimSpace(cfg.APIKey), baseURL: baseURL, model: model}, nil
	})
}
