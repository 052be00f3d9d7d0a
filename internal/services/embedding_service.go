package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"alumnihuddle/internal/vector"
)

// EmbeddingService calls an OpenAI-compatible /embeddings endpoint. Its
// Embed method is the vector.EmbedFunc injected into the retrieval service.
type EmbeddingService struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// NewEmbeddingService creates an embedding client
func NewEmbeddingService(baseURL, apiKey, model string) *EmbeddingService {
	return &EmbeddingService{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Embed returns the embedding vector for a text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	payload := map[string]interface{}{
		"model": s.model,
		"input": text,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode embedding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/embeddings", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read embedding response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embedding API returned status %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse embedding response: %w", err)
	}

	if len(result.Data) == 0 {
		return nil, fmt.Errorf("embedding API returned no data")
	}

	return result.Data[0].Embedding, nil
}

// EmbedFuncOrNil returns the Embed method as a vector.EmbedFunc, or nil for
// a nil service so callers degrade to ErrEmbeddingUnavailable.
func (s *EmbeddingService) EmbedFuncOrNil() vector.EmbedFunc {
	if s == nil {
		return nil
	}
	return s.Embed
}
