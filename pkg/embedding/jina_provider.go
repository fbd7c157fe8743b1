package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	jinaEndpoint   = "https://api.jina.ai/v1/embeddings"
	jinaModel      = "jina-embeddings-v2-base-en"
	jinaDimensions = 768
)

// JinaProvider generates embeddings via the Jina AI API.
type JinaProvider struct {
	apiKey string
	client *http.Client
}

func NewJinaProvider(apiKey string) *JinaProvider {
	return &JinaProvider{
		apiKey: apiKey,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (p *JinaProvider) Model() string {
	return jinaModel
}

func (p *JinaProvider) Dimensions() int {
	return jinaDimensions
}

type jinaEmbedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type jinaEmbedResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (p *JinaProvider) Generate(ctx context.Context, text string, _ string) ([]float32, error) {
	body, err := json.Marshal(jinaEmbedRequest{
		Model: jinaModel,
		Input: []string{text},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, jinaEndpoint, bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	res, err := p.client.Do(req)
	if err != nil {
		return nil, &ProviderError{Provider: jinaModel, Err: err}
	}
	defer res.Body.Close()

	resBytes, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &ProviderError{Provider: jinaModel, Err: err}
	}

	if res.StatusCode != http.StatusOK {
		return nil, &ProviderError{
			Provider: jinaModel,
			Err:      fmt.Errorf("status %d: %s", res.StatusCode, string(resBytes)),
		}
	}

	var parsed jinaEmbedResponse
	if err := json.Unmarshal(resBytes, &parsed); err != nil {
		return nil, &ProviderError{Provider: jinaModel, Err: err}
	}
	if parsed.Error != nil {
		return nil, &ProviderError{Provider: jinaModel, Err: fmt.Errorf("%s", parsed.Error.Message)}
	}
	if len(parsed.Data) == 0 {
		return nil, &ProviderError{Provider: jinaModel, Err: fmt.Errorf("empty response")}
	}

	return parsed.Data[0].Embedding, nil
}
