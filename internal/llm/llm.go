package llm

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned when no remote model is wired in.
var ErrNotConfigured = errors.New("llm: provider not configured")

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a chat transcript.
type Message struct {
	Role    Role   `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"required"`
}

// Entity is a named entity found in text.
type Entity struct {
	Text string `json:"text"`
	Type string `json:"type"`
}

// Sentiment is a polarity label with a confidence in [0,1].
type Sentiment struct {
	Label string  `json:"label"`
	Score float32 `json:"score"`
}

// Client exposes the remote text capabilities.
type Client interface {
	Translate(ctx context.Context, text, targetLang string) (string, error)
	ExtractEntities(ctx context.Context, text string) ([]Entity, error)
	AnalyzeSentiment(ctx context.Context, text string) (Sentiment, error)
	Generate(ctx context.Context, prompt string) (string, error)
	Chat(ctx context.Context, history []Message, input string) (string, error)
}
