package mock

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/kestrel-dev/agentcore/internal/llm"
)

// Turn is one scripted assistant turn: Text is the full assistant
// message (a plain string, possibly with embedded tool-call XML tags,
// exactly as internal/assistant.Parse expects), StopReason defaults to
// llm.StopReasonEndTurn when empty.
type Turn struct {
	Text       string
	StopReason string
	Usage      llm.Usage
}

// Responder decides what the mock backend returns for a given request.
type Responder interface {
	Respond(req *CapturedRequest) Turn
}

// ResponderFunc adapts a plain function to the Responder interface.
type ResponderFunc func(req *CapturedRequest) Turn

func (f ResponderFunc) Respond(req *CapturedRequest) Turn { return f(req) }

// StaticResponder always returns the same turn.
type StaticResponder struct {
	Turn Turn
}

func (r *StaticResponder) Respond(*CapturedRequest) Turn { return r.Turn }

// ScriptedResponder plays back a fixed sequence of turns in order,
// repeating the last one once exhausted — useful for a multi-turn
// conversation test that dispatches more calls than it scripted.
type ScriptedResponder struct {
	mu    sync.Mutex
	turns []Turn
	index int
	calls int
}

// NewScriptedResponder returns a responder playing back turns in
// order. turns must have at least one entry.
func NewScriptedResponder(turns []Turn) *ScriptedResponder {
	if len(turns) == 0 {
		panic("mock: NewScriptedResponder requires at least one turn")
	}
	return &ScriptedResponder{turns: turns}
}

func (r *ScriptedResponder) Respond(*CapturedRequest) Turn {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	t := r.turns[r.index]
	if r.index < len(r.turns)-1 {
		r.index++
	}
	return t
}

// CallCount returns how many times Respond has been called.
func (r *ScriptedResponder) CallCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

// EchoResponder replies with a fixed attempt_completion tag echoing the
// last user message, ending the conversation on the first turn — a
// minimal connectivity smoke test.
type EchoResponder struct {
	callCount atomic.Int32
}

func (r *EchoResponder) Respond(req *CapturedRequest) Turn {
	n := r.callCount.Add(1)
	text := fmt.Sprintf(
		"<attempt_completion><result>Echo: %s</result></attempt_completion>",
		req.LastUserText(),
	)
	return Turn{Text: text, StopReason: llm.StopReasonEndTurn, Usage: llm.Usage{InputTokens: 10, OutputTokens: 10 * int(n)}}
}

func (r *EchoResponder) CallCount() int32 { return r.callCount.Load() }
