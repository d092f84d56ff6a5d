package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// Client is the Messages API streaming client.
type Client struct {
	baseURL     string
	apiVersion  string
	httpClient  *http.Client
	tokenSource TokenSource
	model       string
	maxTokens   int
	userAgent   string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

func WithBaseURL(url string) ClientOption     { return func(c *Client) { c.baseURL = url } }
func WithModel(model string) ClientOption     { return func(c *Client) { c.model = model } }
func WithMaxTokens(n int) ClientOption        { return func(c *Client) { c.maxTokens = n } }
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}
func WithVersion(version string) ClientOption {
	return func(c *Client) { c.userAgent = "agentcore/" + version }
}

// NewClient returns a Client backed by tokenSource, defaulted to the
// default Sonnet alias model and applying opts on top.
func NewClient(tokenSource TokenSource, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:     DefaultBaseURL,
		apiVersion:  DefaultAPIVersion,
		httpClient:  http.DefaultClient,
		tokenSource: tokenSource,
		model:       ResolveModelAlias("sonnet"),
		maxTokens:   DefaultMaxTokens,
		userAgent:   "agentcore/dev",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Model returns the client's current default model.
func (c *Client) Model() string { return c.model }

// SetModel changes the model used for subsequent calls.
func (c *Client) SetModel(model string) { c.model = model }

// CreateMessageStream sends a streaming Messages API request and
// dispatches events to handler as they arrive, returning the fully
// assembled response once the stream ends.
func (c *Client) CreateMessageStream(ctx context.Context, req *CreateMessageRequest, handler StreamHandler) (*MessageResponse, error) {
	if req.Model == "" {
		req.Model = c.model
	}
	if req.MaxTokens == 0 {
		req.MaxTokens = c.maxTokens
	}
	req.Stream = true

	wire, err := req.toWire()
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}
	body, err := json.Marshal(wire)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	resp, err := c.doAPIRequest(ctx, body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, apiErrorFromResponse(resp)
	}

	assembler := newResponseAssembler(handler)
	if err := parseSSEStream(resp.Body, assembler); err != nil {
		return nil, err
	}
	return assembler.response, nil
}

// doAPIRequest sends the request with auth headers. On a 401 it
// invalidates the cached token (if the source supports it) and retries
// once.
func (c *Client) doAPIRequest(ctx context.Context, body []byte) (*http.Response, error) {
	for attempt := 0; attempt < 2; attempt++ {
		token, err := c.tokenSource.GetAccessToken(ctx)
		if err != nil {
			return nil, fmt.Errorf("getting access token: %w", err)
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		httpReq.Header.Set("Authorization", "Bearer "+token)
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("anthropic-version", c.apiVersion)
		httpReq.Header.Set("User-Agent", c.userAgent)
		httpReq.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			return nil, fmt.Errorf("sending request: %w", err)
		}

		if resp.StatusCode == http.StatusUnauthorized && attempt == 0 {
			resp.Body.Close()
			if rts, ok := c.tokenSource.(RefreshableTokenSource); ok {
				rts.InvalidateToken()
				continue
			}
		}
		return resp, nil
	}
	return nil, fmt.Errorf("API request failed after retry")
}

func apiErrorFromResponse(resp *http.Response) error {
	data, _ := io.ReadAll(resp.Body)
	var parsed errorEventData
	_ = json.Unmarshal(data, &parsed)
	return &APIError{
		StatusCode: resp.StatusCode,
		Type:       parsed.Error.Type,
		Message:    firstNonEmptyErr(parsed.Error.Message, string(data)),
		RetryAfter: resp.Header.Get("Retry-After"),
	}
}

func firstNonEmptyErr(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

// parseRetryAfter interprets a Retry-After header value as either a
// delta in seconds or an absolute Unix epoch timestamp. The source this
// runtime is modeled on branches on "value > now/1000" to distinguish
// the two forms; that branch is preserved here rather than assuming one
// format.
func parseRetryAfter(raw string, now time.Time) (time.Duration, bool) {
	if raw == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	nowSeconds := now.Unix()
	if n > nowSeconds {
		// Absolute epoch timestamp.
		d := time.Unix(n, 0).Sub(now)
		if d < 0 {
			d = 0
		}
		return d, true
	}
	// Relative delta in seconds.
	if n < 0 {
		n = 0
	}
	return time.Duration(n) * time.Second, true
}
