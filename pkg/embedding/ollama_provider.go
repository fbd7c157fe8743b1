package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"knowledgebase-engine/pkg/vectormath"
)

// OllamaProvider generates embeddings via a local Ollama instance
// (e.g. nomic-embed-text).
type OllamaProvider struct {
	baseURL string
	model   string
	dims    int
	client  *http.Client
}

func NewOllamaProvider(baseURL string, model string) *OllamaProvider {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "nomic-embed-text"
	}
	return &OllamaProvider{
		baseURL: baseURL,
		model:   model,
		dims:    768, // nomic-embed-text
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

func (p *OllamaProvider) Model() string {
	return p.model
}

func (p *OllamaProvider) Dimensions() int {
	return p.dims
}

type ollamaEmbedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbedResponse struct {
	Embedding []float64 `json:"embedding"`
}

func (p *OllamaProvider) Generate(ctx context.Context, text string, _ string) ([]float32, error) {
	body, err := json.Marshal(ollamaEmbedRequest{
		Model:  p.model,
		Prompt: text,
	})
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/api/embeddings", p.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := p.client.Do(req)
	if err != nil {
		return nil, &ProviderError{Provider: p.model, Err: err}
	}
	defer res.Body.Close()

	resBytes, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &ProviderError{Provider: p.model, Err: err}
	}

	if res.StatusCode != http.StatusOK {
		return nil, &ProviderError{
			Provider: p.model,
			Err:      fmt.Errorf("status %d: %s", res.StatusCode, string(resBytes)),
		}
	}

	var parsed ollamaEmbedResponse
	if err := json.Unmarshal(resBytes, &parsed); err != nil {
		return nil, &ProviderError{Provider: p.model, Err: err}
	}

	values := make([]float32, len(parsed.Embedding))
	for i, v := range parsed.Embedding {
		values[i] = float32(v)
	}

	// Ollama vectors are not unit length; normalize so cosine distance in
	// pgvector behaves the same as for pre-normalized providers.
	return vectormath.NormalizeVector(values), nil
}
