package tools

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/kestrel-dev/agentcore/internal/assistant"
	"github.com/kestrel-dev/agentcore/internal/toolsafety"
)

func init() {
	Default.Register(Tool{
		Name:        assistant.ToolWebFetch,
		Description: "Fetch a URL and return its text content.",
		Execute:     executeWebFetch,
	})
}

const webFetchTimeout = 20 * time.Second
const webFetchMaxBytes = 2 << 20 // 2 MiB

func executeWebFetch(tc *ToolContext, params map[string]string) (ToolResponse, error) {
	if err := toolsafety.AssertRequired("web_fetch", params, "url"); err != nil {
		return ErrorResponse(err.Error()), nil
	}
	url := params["url"]
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return ErrorResponse(fmt.Sprintf("unsupported URL scheme: %s", url)), nil
	}

	ctx, cancel := context.WithTimeout(tc.Context, webFetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return ErrorResponse(fmt.Sprintf("invalid URL: %v", err)), nil
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return ErrorResponse(fmt.Sprintf("fetch failed: %v", err)), nil
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return ErrorResponse(fmt.Sprintf("fetch returned HTTP %d", resp.StatusCode)), nil
	}

	body := io.LimitReader(resp.Body, webFetchMaxBytes)
	contentType := resp.Header.Get("Content-Type")
	if strings.Contains(contentType, "html") {
		text, err := extractText(body)
		if err != nil {
			return ErrorResponse(fmt.Sprintf("could not parse HTML: %v", err)), nil
		}
		return TextResponse(text), nil
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return ErrorResponse(fmt.Sprintf("could not read response: %v", err)), nil
	}
	return TextResponse(string(data)), nil
}

// extractText walks the parsed HTML tree and concatenates visible text
// nodes, skipping script and style content, using golang.org/x/net/html
// instead of a regex tag scrubber so malformed markup doesn't corrupt
// the extracted text.
func extractText(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				sb.WriteString(text)
				sb.WriteString(" ")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return strings.TrimSpace(sb.String()), nil
}
