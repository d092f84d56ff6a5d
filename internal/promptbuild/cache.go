package promptbuild

import (
	"os"
	"strings"

	"github.com/kestrel-dev/agentcore/internal/llm"
)

var ephemeralCache = &llm.CacheControl{Type: "ephemeral"}

// IsCachingEnabled reports whether prompt caching should be used for
// model, honoring the same global/per-tier environment overrides the
// teacher's CLI exposed.
func IsCachingEnabled(model string) bool {
	if envBool("DISABLE_PROMPT_CACHING") {
		return false
	}
	lower := strings.ToLower(model)
	if envBool("DISABLE_PROMPT_CACHING_HAIKU") && strings.Contains(lower, "haiku") {
		return false
	}
	if envBool("DISABLE_PROMPT_CACHING_SONNET") && strings.Contains(lower, "sonnet") {
		return false
	}
	if envBool("DISABLE_PROMPT_CACHING_OPUS") && strings.Contains(lower, "opus") {
		return false
	}
	return true
}

func envBool(key string) bool {
	v := os.Getenv(key)
	return v == "1" || strings.EqualFold(v, "true")
}

// WithSystemPromptCaching returns a copy of blocks with cache_control on
// the last block, caching the whole system prompt as a prefix.
func WithSystemPromptCaching(blocks []llm.SystemBlock) []llm.SystemBlock {
	if len(blocks) == 0 {
		return blocks
	}
	out := make([]llm.SystemBlock, len(blocks))
	copy(out, blocks)
	out[len(out)-1].CacheControl = ephemeralCache
	return out
}

// WithMessageCaching returns a copy of msgs with cache_control on the
// last two messages, so only the newest turn needs fresh processing on
// the next call.
func WithMessageCaching(msgs []llm.RequestMessage) []llm.RequestMessage {
	if len(msgs) == 0 {
		return msgs
	}
	out := make([]llm.RequestMessage, len(msgs))
	copy(out, msgs)

	start := len(out) - 2
	if start < 0 {
		start = 0
	}
	for i := start; i < len(out); i++ {
		out[i].CacheControl = ephemeralCache
	}
	return out
}
