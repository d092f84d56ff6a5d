// Package llm implements the streaming Messages-API-style client the
// executor drives: text and usage deltas only. Tool calls never
// arrive as native content blocks here — the executor hands the
// assembled text to internal/assistant.Parse once a message completes.
package llm

import (
	"context"
	"encoding/json"
)

const (
	DefaultBaseURL    = "https://api.anthropic.com"
	DefaultAPIVersion = "2023-06-01"
	DefaultMaxTokens  = 16384
)

// TokenSource provides access tokens for API authentication. A concrete
// implementation (OAuth device flow, static API key, etc.) is a host
// concern; this package only depends on the interface.
type TokenSource interface {
	GetAccessToken(ctx context.Context) (string, error)
}

// RefreshableTokenSource extends TokenSource with the ability to
// invalidate a cached token, forcing a refresh on the next call — used
// for 401 auto-retry.
type RefreshableTokenSource interface {
	TokenSource
	InvalidateToken()
}

// Role constants for request messages.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// SystemBlock is one system-prompt block, optionally cache-annotated.
type SystemBlock struct {
	Type         string        `json:"type"`
	Text         string        `json:"text,omitempty"`
	CacheControl *CacheControl `json:"cache_control,omitempty"`
}

// CacheControl requests ephemeral prompt caching on the block it's
// attached to.
type CacheControl struct {
	Type string `json:"type"` // "ephemeral"
}

// RequestMessage is one entry in a CreateMessageRequest's Messages list.
// Content is always plain text in this runtime's wire format: tool calls
// and their results are rendered as text by internal/promptbuild, not as
// native content blocks, since the model never receives a tool schema —
// it receives the tool catalogue as prompt text (see spec's XML-tag wire
// format).
type RequestMessage struct {
	Role         string        `json:"role"`
	Content      string        `json:"content"`
	CacheControl *CacheControl `json:"-"`
}

// CreateMessageRequest is the request body for POST /v1/messages.
type CreateMessageRequest struct {
	Model     string           `json:"model"`
	MaxTokens int              `json:"max_tokens"`
	Messages  []RequestMessage `json:"-"`
	System    []SystemBlock    `json:"system,omitempty"`
	Stream    bool             `json:"stream,omitempty"`
	Temp      *float64         `json:"temperature,omitempty"`
}

// wireMessage is what actually gets marshaled for Messages, rendering
// CacheControl as a one-block content array when present and a bare
// string otherwise, matching the API's accepted shapes.
type wireMessage struct {
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"`
}

// wireRequest mirrors CreateMessageRequest with Messages rendered to the
// API's wire shape.
type wireRequest struct {
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens"`
	Messages  []wireMessage `json:"messages"`
	System    []SystemBlock `json:"system,omitempty"`
	Stream    bool          `json:"stream,omitempty"`
	Temp      *float64      `json:"temperature,omitempty"`
}

func (r *CreateMessageRequest) toWire() (*wireRequest, error) {
	wr := &wireRequest{
		Model: r.Model, MaxTokens: r.MaxTokens, System: r.System,
		Stream: r.Stream, Temp: r.Temp,
	}
	for _, m := range r.Messages {
		var content json.RawMessage
		var err error
		if m.CacheControl != nil {
			blocks := []map[string]interface{}{{
				"type": "text", "text": m.Content,
				"cache_control": m.CacheControl,
			}}
			content, err = json.Marshal(blocks)
		} else {
			content, err = json.Marshal(m.Content)
		}
		if err != nil {
			return nil, err
		}
		wr.Messages = append(wr.Messages, wireMessage{Role: m.Role, Content: content})
	}
	return wr, nil
}

// StopReason constants.
const (
	StopReasonEndTurn   = "end_turn"
	StopReasonMaxTokens = "max_tokens"
	StopReasonStopSeq   = "stop_sequence"
)

// MessageResponse is the fully assembled result of a streamed call.
type MessageResponse struct {
	ID           string
	Role         string
	Text         string
	StopReason   string
	StopSequence *string
	Usage        Usage
}

// Usage tracks token consumption, including prompt-cache accounting.
type Usage struct {
	InputTokens              int
	OutputTokens             int
	CacheCreationInputTokens int
	CacheReadInputTokens     int
}

// StreamHandler receives events as a streamed message is assembled. Every
// method is called synchronously from the goroutine parsing the SSE
// stream; implementations that need to do slow work should hand off.
type StreamHandler interface {
	OnMessageStart(id, role string)
	OnTextDelta(text string)
	OnMessageDelta(stopReason string, usage *Usage)
	OnMessageStop()
	OnError(err error)
}

// APIError represents a structured error response from the API.
type APIError struct {
	StatusCode int
	Type       string
	Message    string
	// RetryAfter holds the raw Retry-After header value, if present.
	RetryAfter string
}

func (e *APIError) Error() string {
	return e.Message
}
