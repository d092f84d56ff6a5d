package mock

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/kestrel-dev/agentcore/internal/llm"
)

// Backend is a mock Messages API server for testing. It captures
// requests, delegates to a Responder to produce the assistant's next
// turn, and streams it back as SSE exactly as the real API does, so
// internal/llm.Client's HTTP and SSE-parsing code path runs unmodified
// in a test.
//
// Usage:
//
//	b := mock.NewBackend(mock.NewScriptedResponder(turns))
//	defer b.Close()
//	client := b.Client()
type Backend struct {
	server    *httptest.Server
	responder Responder

	mu       sync.Mutex
	requests []*CapturedRequest
	seq      int
}

// wireRequestBody mirrors internal/llm's private wireRequest shape
// closely enough to decode a captured request for test assertions,
// without exporting that type from internal/llm.
type wireRequestBody struct {
	Model     string `json:"model"`
	MaxTokens int    `json:"max_tokens"`
	Messages  []struct {
		Role    string          `json:"role"`
		Content json.RawMessage `json:"content"`
	} `json:"messages"`
	System []llm.SystemBlock `json:"system"`
	Stream bool              `json:"stream"`
}

// CapturedRequest records one decoded request for test assertions.
type CapturedRequest struct {
	Headers http.Header
	Body    wireRequestBody
	RawBody []byte
}

// LastUserText returns the last user message's text content, decoding
// either the bare-string or single-text-block content shapes
// internal/llm's RequestMessage can produce.
func (c *CapturedRequest) LastUserText() string {
	for i := len(c.Body.Messages) - 1; i >= 0; i-- {
		m := c.Body.Messages[i]
		if m.Role != llm.RoleUser {
			continue
		}
		var s string
		if err := json.Unmarshal(m.Content, &s); err == nil {
			return s
		}
		var blocks []struct {
			Text string `json:"text"`
		}
		if err := json.Unmarshal(m.Content, &blocks); err == nil && len(blocks) > 0 {
			return blocks[0].Text
		}
		return ""
	}
	return "(no user message)"
}

// NewBackend starts a mock backend using responder to decide each
// turn's content.
func NewBackend(responder Responder) *Backend {
	b := &Backend{responder: responder}
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/messages", b.handleMessages)
	b.server = httptest.NewServer(mux)
	return b
}

// URL returns the mock server's base URL.
func (b *Backend) URL() string { return b.server.URL }

// Close shuts down the mock server.
func (b *Backend) Close() { b.server.Close() }

// Client returns an *llm.Client pointed at this backend with a static
// token, so no real authentication is needed.
func (b *Backend) Client(opts ...llm.ClientOption) *llm.Client {
	allOpts := append([]llm.ClientOption{llm.WithBaseURL(b.URL())}, opts...)
	return llm.NewClient(&StaticTokenSource{Token: "mock-token"}, allOpts...)
}

// Requests returns every request captured so far, in order.
func (b *Backend) Requests() []*CapturedRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	cp := make([]*CapturedRequest, len(b.requests))
	copy(cp, b.requests)
	return cp
}

// RequestCount returns how many requests have been captured.
func (b *Backend) RequestCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.requests)
}

// SetResponder swaps the responder mid-test, for scenarios that need
// to change behavior between phases.
func (b *Backend) SetResponder(r Responder) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.responder = r
}

func (b *Backend) handleMessages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	raw, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var body wireRequestBody
	if err := json.Unmarshal(raw, &body); err != nil {
		http.Error(w, fmt.Sprintf("invalid JSON: %v", err), http.StatusBadRequest)
		return
	}

	captured := &CapturedRequest{Headers: r.Header.Clone(), Body: body, RawBody: raw}

	b.mu.Lock()
	b.requests = append(b.requests, captured)
	b.seq++
	seq := b.seq
	responder := b.responder
	b.mu.Unlock()

	turn := responder.Respond(captured)
	if turn.StopReason == "" {
		turn.StopReason = llm.StopReasonEndTurn
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.WriteHeader(http.StatusOK)

	id := fmt.Sprintf("msg_mock_%d", seq)
	if err := WriteSSEResponse(w, id, turn.Text, turn.StopReason, turn.Usage); err != nil {
		fmt.Fprintf(w, "event: error\ndata: {\"type\":\"error\",\"error\":{\"type\":\"mock_error\",\"message\":\"%s\"}}\n\n", err.Error())
	}
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}
