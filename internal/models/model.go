package models

import "time"

// Model is a row in the models table. Each huddle gets exactly one branded
// model ("alumnihuddle-<slug>") that wraps the configured base model.
type Model struct {
	ID          string    `json:"id"`
	BaseModelID string    `json:"base_model_id"`
	Name        string    `json:"name"`
	Meta        ModelMeta `json:"meta"`
	IsActive    bool      `json:"is_active"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ModelMeta carries the branding attached to a model. Stored as JSON in the
// meta column.
type ModelMeta struct {
	ProfileImageURL   string             `json:"profile_image_url,omitempty"`
	Description       string             `json:"description,omitempty"`
	SuggestionPrompts []SuggestionPrompt `json:"suggestion_prompts,omitempty"`
}

// SuggestionPrompt is a canned conversation starter shown in the chat UI.
type SuggestionPrompt struct {
	Title   []string `json:"title"`
	Content string   `json:"content"`
}

// ChatMessage is one message in an OpenAI-style conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
