package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"alumnihuddle/internal/models"
)

// ChatService forwards chat completions to the upstream provider after
// swapping the huddle-owned model id for the real base model and injecting
// the huddle system prompt.
type ChatService struct {
	upstreamURL string
	apiKey      string
	baseModelID string
	prompts     *PromptService
	client      *http.Client
}

// ChatRequest is the subset of an OpenAI-style completion request we touch.
// Unknown fields from the client are not forwarded.
type ChatRequest struct {
	Model       string               `json:"model"`
	Messages    []models.ChatMessage `json:"messages"`
	Temperature *float64             `json:"temperature,omitempty"`
	MaxTokens   *int                 `json:"max_tokens,omitempty"`
}

// NewChatService creates a chat passthrough service
func NewChatService(upstreamURL, apiKey, baseModelID string, prompts *PromptService) *ChatService {
	return &ChatService{
		upstreamURL: upstreamURL,
		apiKey:      apiKey,
		baseModelID: baseModelID,
		prompts:     prompts,
		client:      &http.Client{Timeout: 120 * time.Second},
	}
}

// ResolveModel maps a huddle-owned model id back to the upstream base model.
// Other ids pass through untouched.
func (s *ChatService) ResolveModel(modelID string) string {
	if strings.HasPrefix(modelID, "alumnihuddle-") {
		return s.baseModelID
	}
	return modelID
}

// Complete sends a non-streaming completion to the upstream provider on
// behalf of a huddle member. The response body and status are returned as-is
// so handlers can relay them.
func (s *ChatService) Complete(ctx context.Context, huddle *models.Huddle, req ChatRequest) (int, []byte, error) {
	req.Messages = s.prompts.InjectHuddleContext(huddle, req.Messages)
	req.Model = s.ResolveModel(req.Model)

	data, err := json.Marshal(req)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to encode chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.upstreamURL+"/chat/completions", bytes.NewReader(data))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return 0, nil, fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read chat response: %w", err)
	}

	return resp.StatusCode, body, nil
}
