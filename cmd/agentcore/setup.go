package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kestrel-dev/agentcore/internal/apierrors"
	"github.com/kestrel-dev/agentcore/internal/config"
	"github.com/kestrel-dev/agentcore/internal/executor"
	"github.com/kestrel-dev/agentcore/internal/filetracker"
	"github.com/kestrel-dev/agentcore/internal/hooks"
	"github.com/kestrel-dev/agentcore/internal/llm"
	"github.com/kestrel-dev/agentcore/internal/logging"
	"github.com/kestrel-dev/agentcore/internal/session"
	"github.com/kestrel-dev/agentcore/internal/skills"
	"github.com/kestrel-dev/agentcore/internal/tools"
)

// runtime bundles every collaborator newChatCommand and the session
// subcommands need, built once from flags/settings/environment.
type runtime struct {
	cwd          string
	settings     *config.Settings
	client       *llm.Client
	registry     *tools.Registry
	host         *terminalHost
	tracker      *filetracker.Tracker
	watcher      *filetracker.Watcher
	hooksRunner  *hooks.Runner
	errLog       *apierrors.Recorder
	store        *session.Store
	window       int
	instructions string
}

// Close releases background resources started by newRuntime: the
// filesystem watcher and the error-log recorder.
func (r *runtime) Close() {
	if r.watcher != nil {
		_ = r.watcher.Close()
	}
	if r.errLog != nil {
		r.errLog.Close()
	}
}

// apiKeySource adapts a static API key string (from ANTHROPIC_API_KEY)
// to llm.TokenSource. Unlike the teacher's OAuth-backed CredentialStore
// (dropped per DESIGN.md — auth is the host's responsibility here), this
// runtime only needs a constant bearer value.
type apiKeySource struct{ key string }

func (s apiKeySource) GetAccessToken(_ context.Context) (string, error) { return s.key, nil }

func newRuntime(cmd *cobra.Command) (*runtime, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}

	settings, err := config.LoadSettings(cwd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: error loading settings: %v\n", err)
		settings = &config.Settings{}
	}

	modelFlag, _ := cmd.Flags().GetString("model")
	model := llm.ModelSonnet
	if settings.Model != "" {
		model = llm.ResolveModelAlias(settings.Model)
	}
	if modelFlag != "" {
		model = llm.ResolveModelAlias(modelFlag)
	}

	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		fmt.Fprintln(os.Stderr, "warning: ANTHROPIC_API_KEY is not set; model calls will fail")
	}
	client := llm.NewClient(apiKeySource{key: apiKey},
		llm.WithModel(model),
		llm.WithVersion(version),
	)

	var hookConfig hooks.HookConfig
	if settings.Hooks != nil {
		if err := json.Unmarshal(settings.Hooks, &hookConfig); err != nil {
			fmt.Fprintf(os.Stderr, "warning: invalid hooks config: %v\n", err)
		}
	}
	hookRunner := hooks.NewRunner(hookConfig)

	loadedSkills := skills.LoadSkills(cwd)
	skillContent := skills.ActiveSkillContent(loadedSkills)
	instructions := strings.TrimSpace(config.LoadInstructions(cwd) + "\n\n" + skillContent)

	initialMode := config.ModeDefault
	if modeFlag, _ := cmd.Flags().GetString("permission-mode"); modeFlag != "" {
		initialMode = config.ValidatePermissionMode(modeFlag)
	}

	permHandler := config.NewRuleBasedPermissionHandler(settings.Permissions, nil)
	permHandler.GetPermissionContext().SetMode(initialMode)

	autoApprove, _ := cmd.Flags().GetBool("auto-approve")
	host := newTerminalHost(permHandler, autoApprove)

	logDir := filepath.Join(homeDirOrTmp(), ".agentcore", "logs")
	_ = os.MkdirAll(logDir, 0700)
	errLog := apierrors.NewRecorder(logDir)

	logger, err := logging.New(logging.Config{Dir: logDir, Console: false})
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to start logger: %v\n", err)
	}

	tracker := filetracker.New()
	watcher, err := filetracker.NewWatcher(tracker, logger, cwd)
	if err != nil {
		// A missing or unwatchable cwd shouldn't block a chat turn; the
		// tracker still works for tool-driven edits, just not for
		// changes made outside the process.
		fmt.Fprintf(os.Stderr, "warning: file watcher unavailable: %v\n", err)
	}

	store, err := session.NewStore(cwd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: session store unavailable: %v\n", err)
	}

	return &runtime{
		cwd:          cwd,
		settings:     settings,
		client:       client,
		registry:     tools.Default,
		host:         host,
		tracker:      tracker,
		watcher:      watcher,
		hooksRunner:  hookRunner,
		errLog:       errLog,
		store:        store,
		window:       llm.ContextWindowFor(model),
		instructions: instructions,
	}, nil
}

func (r *runtime) executorConfig(parallelTools bool) executor.Config {
	return executor.Config{
		LLM:                  r.client,
		Registry:             r.registry,
		Host:                 r.host,
		Window:               r.window,
		Cwd:                  r.cwd,
		Tracker:              r.tracker,
		Instructions:         r.instructions,
		Hooks:                r.hooksRunner,
		Env:                  r.settings.Env,
		Retry:                llm.DefaultRetryPolicy(),
		ErrorLog:             r.errLog,
		ParallelToolsEnabled: parallelTools,
	}
}

func homeDirOrTmp() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return os.TempDir()
	}
	return home
}
