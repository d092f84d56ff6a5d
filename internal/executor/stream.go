package executor

import "github.com/kestrel-dev/agentcore/internal/llm"

// streamSink adapts the model client's llm.StreamHandler callbacks to
// Host.Say events: every text delta is mirrored to the user immediately,
// matching spec step 4 ("append text to the in-progress assistant
// buffer; mirror text to the caller's sink").
type streamSink struct {
	host Host
}

func newStreamSink(host Host) *streamSink {
	return &streamSink{host: host}
}

func (s *streamSink) OnMessageStart(id, role string) {}

func (s *streamSink) OnTextDelta(text string) {
	if text == "" {
		return
	}
	s.host.Say(KindText, text, true)
}

func (s *streamSink) OnMessageDelta(stopReason string, usage *llm.Usage) {}

func (s *streamSink) OnMessageStop() {}

func (s *streamSink) OnError(err error) {
	if err == nil {
		return
	}
	s.host.Say(KindError, err.Error(), false)
}
