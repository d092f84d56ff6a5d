package mock

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/kestrel-dev/agentcore/internal/llm"
)

// SSE event type names, matching the wire protocol internal/llm's
// client parses (internal/llm/streaming.go's unexported constants,
// duplicated here since they name a fixed external wire format rather
// than an internal implementation detail).
const (
	eventMessageStart      = "message_start"
	eventContentBlockDelta = "content_block_delta"
	eventMessageDelta      = "message_delta"
	eventMessageStop       = "message_stop"
)

// WriteSSEResponse writes text as a message_start / a run of
// content_block_delta text_delta chunks / message_delta / message_stop
// event sequence, the same shape the real API streams and the shape
// internal/llm.parseSSEStream consumes.
func WriteSSEResponse(w io.Writer, id, text, stopReason string, usage llm.Usage) error {
	if err := writeEvent(w, eventMessageStart, map[string]interface{}{
		"type": eventMessageStart,
		"message": map[string]interface{}{
			"id":   id,
			"role": llm.RoleAssistant,
		},
	}); err != nil {
		return err
	}

	const chunkSize = 40
	for len(text) > 0 {
		chunk := text
		if len(chunk) > chunkSize {
			chunk = text[:chunkSize]
		}
		text = text[len(chunk):]

		if err := writeEvent(w, eventContentBlockDelta, map[string]interface{}{
			"delta": map[string]interface{}{
				"type": "text_delta",
				"text": chunk,
			},
		}); err != nil {
			return err
		}
	}

	if err := writeEvent(w, eventMessageDelta, map[string]interface{}{
		"delta": map[string]interface{}{
			"stop_reason": stopReason,
		},
		"usage": usage,
	}); err != nil {
		return err
	}

	return writeEvent(w, eventMessageStop, map[string]interface{}{"type": eventMessageStop})
}

func writeEvent(w io.Writer, eventType string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshaling SSE data for %s: %w", eventType, err)
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", eventType, payload)
	return err
}
