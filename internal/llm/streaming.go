package llm

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// SSE event type constants. Only the subset that can carry text/usage
// content survives here — content_block_start/stop and input_json_delta
// existed in the teacher's client to assemble native tool_use blocks,
// which this runtime never receives (see package doc).
const (
	eventMessageStart      = "message_start"
	eventContentBlockDelta = "content_block_delta"
	eventMessageDelta      = "message_delta"
	eventMessageStop       = "message_stop"
	eventPing              = "ping"
	eventError             = "error"
)

type messageStartData struct {
	Message struct {
		ID   string `json:"id"`
		Role string `json:"role"`
	} `json:"message"`
}

type contentBlockDeltaData struct {
	Delta struct {
		Type string `json:"type"` // "text_delta"
		Text string `json:"text,omitempty"`
	} `json:"delta"`
}

type messageDeltaData struct {
	Delta struct {
		StopReason   string  `json:"stop_reason,omitempty"`
		StopSequence *string `json:"stop_sequence,omitempty"`
	} `json:"delta"`
	Usage *Usage `json:"usage,omitempty"`
}

type errorEventData struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// parseSSEStream reads an SSE stream from r and dispatches text/usage
// events to handler. It blocks until the stream ends or an error occurs.
func parseSSEStream(r io.Reader, handler StreamHandler) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)

	var eventType string
	var dataLines []string

	for scanner.Scan() {
		line := scanner.Text()

		if line == "" {
			if eventType != "" && len(dataLines) > 0 {
				data := strings.Join(dataLines, "\n")
				if err := dispatchEvent(eventType, []byte(data), handler); err != nil {
					handler.OnError(fmt.Errorf("dispatching event %s: %w", eventType, err))
				}
			}
			eventType = ""
			dataLines = nil
			continue
		}

		switch {
		case strings.HasPrefix(line, "event: "):
			eventType = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			dataLines = append(dataLines, strings.TrimPrefix(line, "data: "))
		case line == "data:":
			dataLines = append(dataLines, "")
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading SSE stream: %w", err)
	}
	return nil
}

func dispatchEvent(eventType string, data []byte, handler StreamHandler) error {
	switch eventType {
	case eventMessageStart:
		var d messageStartData
		if err := json.Unmarshal(data, &d); err != nil {
			return err
		}
		handler.OnMessageStart(d.Message.ID, d.Message.Role)

	case eventContentBlockDelta:
		var d contentBlockDeltaData
		if err := json.Unmarshal(data, &d); err != nil {
			return err
		}
		if d.Delta.Type == "text_delta" {
			handler.OnTextDelta(d.Delta.Text)
		}

	case eventMessageDelta:
		var d messageDeltaData
		if err := json.Unmarshal(data, &d); err != nil {
			return err
		}
		handler.OnMessageDelta(d.Delta.StopReason, d.Usage)

	case eventMessageStop:
		handler.OnMessageStop()

	case eventPing:
		// keepalive, ignored

	case eventError:
		var d errorEventData
		if err := json.Unmarshal(data, &d); err != nil {
			return fmt.Errorf("API error (unparseable): %s", string(data))
		}
		handler.OnError(fmt.Errorf("API error: %s: %s", d.Error.Type, d.Error.Message))

	default:
		// unknown event types are ignored per the SSE spec
	}
	return nil
}

// responseAssembler folds streamed events into a final MessageResponse
// while still forwarding every event to the caller's handler, the same
// tee pattern the teacher's client uses.
type responseAssembler struct {
	handler  StreamHandler
	response *MessageResponse
}

func newResponseAssembler(handler StreamHandler) *responseAssembler {
	return &responseAssembler{response: &MessageResponse{}, handler: handler}
}

func (a *responseAssembler) OnMessageStart(id, role string) {
	a.response.ID = id
	a.response.Role = role
	a.handler.OnMessageStart(id, role)
}

func (a *responseAssembler) OnTextDelta(text string) {
	a.response.Text += text
	a.handler.OnTextDelta(text)
}

func (a *responseAssembler) OnMessageDelta(stopReason string, usage *Usage) {
	a.response.StopReason = stopReason
	if usage != nil {
		a.response.Usage = *usage
	}
	a.handler.OnMessageDelta(stopReason, usage)
}

func (a *responseAssembler) OnMessageStop() {
	a.handler.OnMessageStop()
}

func (a *responseAssembler) OnError(err error) {
	a.handler.OnError(err)
}
