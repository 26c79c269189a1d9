package ports

import (
	"context"
	"time"

	"insights-backend/domain/core/entities"
	"insights-backend/domain/core/valueobjects"
	"insights-backend/domain/events"
)

// SearchQuery is a time-windowed query against the capture service
type SearchQuery struct {
	ContentType   valueobjects.ContentType
	StartTime     time.Time
	EndTime       time.Time
	AppName       string
	WindowName    string
	BrowserURL    string
	SpeakerIDs    []int
	MinLength     int
	MaxLength     int
	Offset        int
	Limit         int
	IncludeFrames bool
}

// SearchPage is one page of capture results
type SearchPage struct {
	Items  []entities.ActivityItem
	Total  int
	Offset int
	Limit  int
}

// ActivitySource is the capture service
type ActivitySource interface {
	Search(ctx context.Context, query SearchQuery) (*SearchPage, error)
}

// Notifier delivers a desktop notification through the capture service
type Notifier interface {
	Notify(ctx context.Context, title, body string) error
}

// ChatMessage is one message of a chat-style prompt
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest is a chat-style request to the completion endpoint
type CompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

// CompletionResponse is the generated text plus raw metadata
type CompletionResponse struct {
	Text     string                 `json:"text"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// CompletionClient sends a single completion request. Failures where no
// response was received are reported as pkg/errors network errors; a
// response with a non-2xx status is reported as an external error.
type CompletionClient interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}

// EventPublisher publishes domain events
type EventPublisher interface {
	Publish(ctx context.Context, events ...events.DomainEvent) error
}
