package llm

// Model identifiers.
const (
	ModelOpus   = "claude-opus-4-20250514"
	ModelSonnet = "claude-sonnet-4-20250514"
	ModelHaiku  = "claude-3-5-haiku-20241022"
)

// ModelAliases maps short names to full model IDs.
var ModelAliases = map[string]string{
	"opus":   ModelOpus,
	"sonnet": ModelSonnet,
	"haiku":  ModelHaiku,
}

// ModelOption describes one selectable model.
type ModelOption struct {
	Alias       string
	ID          string
	DisplayName string
	Description string
	// ContextWindow is the model's raw token window, used by the context
	// manager's headroom table.
	ContextWindow int
}

// AvailableModels is the ordered list of models shown in a model picker.
var AvailableModels = []ModelOption{
	{Alias: "sonnet", ID: ModelSonnet, DisplayName: "Sonnet 4", Description: "Best for everyday tasks (default)", ContextWindow: 200_000},
	{Alias: "opus", ID: ModelOpus, DisplayName: "Opus 4", Description: "Most capable for complex work", ContextWindow: 200_000},
	{Alias: "haiku", ID: ModelHaiku, DisplayName: "Haiku 3.5", Description: "Fastest for quick answers", ContextWindow: 200_000},
}

// ResolveModelAlias resolves an alias to its full model ID. An input that
// is not a known alias is returned unchanged (assumed to already be a
// full model ID).
func ResolveModelAlias(input string) string {
	if resolved, ok := ModelAliases[input]; ok {
		return resolved
	}
	return input
}

// ContextWindowFor returns the raw context window for a model ID or
// alias, defaulting to 200k for unrecognized models.
func ContextWindowFor(model string) int {
	resolved := ResolveModelAlias(model)
	for _, opt := range AvailableModels {
		if opt.ID == resolved {
			return opt.ContextWindow
		}
	}
	return 200_000
}
