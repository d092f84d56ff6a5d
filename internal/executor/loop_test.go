package executor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kestrel-dev/agentcore/internal/apierrors"
	ctxmgr "github.com/kestrel-dev/agentcore/internal/context"
	"github.com/kestrel-dev/agentcore/internal/filetracker"
	"github.com/kestrel-dev/agentcore/internal/llm"
	"github.com/kestrel-dev/agentcore/internal/tools"
)

// fakeClient replays a fixed sequence of assistant texts, one per call,
// so a test can script an entire multi-turn run deterministically.
type fakeClient struct {
	responses []string
	next      int
}

func (f *fakeClient) Model() string { return "fake-model" }

func (f *fakeClient) CreateMessageStream(ctx context.Context, req *llm.CreateMessageRequest, handler llm.StreamHandler) (*llm.MessageResponse, error) {
	if f.next >= len(f.responses) {
		return nil, fmt.Errorf("fakeClient: no more scripted responses (call %d)", f.next+1)
	}
	text := f.responses[f.next]
	f.next++
	handler.OnTextDelta(text)
	handler.OnMessageDelta(llm.StopReasonEndTurn, &llm.Usage{InputTokens: 100, OutputTokens: 50})
	handler.OnMessageStop()
	return &llm.MessageResponse{Text: text, StopReason: llm.StopReasonEndTurn, Usage: llm.Usage{InputTokens: 100, OutputTokens: 50}}, nil
}

// fakeHost records Say events and answers Ask/ShouldAutoApprove from
// fixed fields, so tests can exercise both the auto-approve and the
// interactive-denial paths.
type fakeHost struct {
	said        []string
	autoApprove bool
	askResponse string
}

func (h *fakeHost) Say(kind Kind, text string, partial bool) {
	if !partial {
		h.said = append(h.said, text)
	}
}

func (h *fakeHost) Ask(ctx context.Context, kind Kind, text string) (AskResponse, error) {
	resp := h.askResponse
	if resp == "" {
		resp = AskYes
	}
	return AskResponse{Response: resp}, nil
}

func (h *fakeHost) ShouldAutoApprove(toolName string) bool { return h.autoApprove }

func newTestExecutor(client *fakeClient, host *fakeHost) *Executor {
	return New(Config{
		LLM:      client,
		Registry: tools.Default,
		Host:     host,
		Window:   200_000,
		Cwd:      "/tmp",
		Tracker:  filetracker.New(),
		Retry:    llm.DefaultRetryPolicy(),
		Now:      func() time.Time { return time.Date(2026, 7, 29, 0, 0, 0, 0, time.UTC) },
	})
}

func TestRunNoToolCallAwaitsNextUserMessage(t *testing.T) {
	client := &fakeClient{responses: []string{"Just some plain text, no tool call."}}
	host := &fakeHost{autoApprove: true}
	e := newTestExecutor(client, host)
	conv := NewConversation()

	res, err := e.Run(context.Background(), conv, "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Completed || res.Aborted {
		t.Fatalf("expected a plain pause-for-input result, got %+v", res)
	}
	if len(conv.History) != 2 {
		t.Fatalf("got %d history entries, want 2 (user + assistant)", len(conv.History))
	}
	if conv.History[0].Role != ctxmgr.RoleUser || conv.History[1].Role != ctxmgr.RoleAssistant {
		t.Fatalf("unexpected history roles: %+v", conv.History)
	}
}

func TestRunAttemptCompletionStopsTheLoop(t *testing.T) {
	client := &fakeClient{responses: []string{
		"<attempt_completion><result>all done</result><command>echo ok</command></attempt_completion>",
	}}
	host := &fakeHost{autoApprove: true}
	e := newTestExecutor(client, host)
	conv := NewConversation()

	res, err := e.Run(context.Background(), conv, "finish the task")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Completed {
		t.Fatalf("expected completion, got %+v", res)
	}
	if res.CompletionText != "all done" {
		t.Fatalf("got completion text %q", res.CompletionText)
	}
	if res.DemoCommand != "echo ok" {
		t.Fatalf("got demo command %q", res.DemoCommand)
	}
}

func TestRunDispatchesToolThenLoopsToCompletion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hello.txt")
	if err := os.WriteFile(path, []byte("hi there"), 0o644); err != nil {
		t.Fatal(err)
	}

	client := &fakeClient{responses: []string{
		fmt.Sprintf("<read_file><path>%s</path></read_file>", path),
		"<attempt_completion><result>read it</result></attempt_completion>",
	}}
	host := &fakeHost{autoApprove: true}
	e := newTestExecutor(client, host)
	conv := NewConversation()

	res, err := e.Run(context.Background(), conv, "read the file")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Completed {
		t.Fatalf("expected eventual completion, got %+v", res)
	}

	// history: user(start), assistant(read_file call), user(tool result),
	// assistant(attempt_completion).
	if len(conv.History) != 4 {
		t.Fatalf("got %d history entries, want 4: %+v", len(conv.History), conv.History)
	}
	foundResult := false
	for _, b := range conv.History[2].Content {
		if strings.Contains(b.Text, "hi there") {
			foundResult = true
		}
	}
	if !foundResult {
		t.Fatalf("expected read_file's content folded into the next user message: %+v", conv.History[2])
	}
}

func TestOnlyFirstToolPerMessageDispatches(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	os.WriteFile(path, []byte("A"), 0o644)

	client := &fakeClient{responses: []string{
		fmt.Sprintf(
			"<read_file><path>%s</path></read_file><read_file><path>%s</path></read_file>",
			path, path,
		),
		"<attempt_completion><result>done</result></attempt_completion>",
	}}
	host := &fakeHost{autoApprove: true}
	e := newTestExecutor(client, host)
	conv := NewConversation()

	_, err := e.Run(context.Background(), conv, "go")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	foundSkipNotice := false
	for _, b := range conv.History[2].Content {
		if strings.Contains(b.Text, "only one tool may be used per message") {
			foundSkipNotice = true
		}
	}
	if !foundSkipNotice {
		t.Fatalf("expected a skip notice for the second tool call: %+v", conv.History[2])
	}
}

func TestConsecutiveMistakesInjectsTooManyMistakesNotice(t *testing.T) {
	// read_file with no path param fails validation every time.
	client := &fakeClient{responses: []string{
		"<read_file></read_file>",
		"<read_file></read_file>",
		"<read_file></read_file>",
		"<attempt_completion><result>gave up</result></attempt_completion>",
	}}
	host := &fakeHost{autoApprove: true}
	e := newTestExecutor(client, host)
	conv := NewConversation()

	res, err := e.Run(context.Background(), conv, "try reading nothing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Completed {
		t.Fatalf("expected the run to eventually complete, got %+v", res)
	}

	found := false
	for _, m := range conv.History {
		for _, b := range m.Content {
			if strings.Contains(b.Text, tooManyMistakesNotice) {
				found = true
			}
		}
	}
	if !found {
		t.Fatalf("expected the too-many-mistakes notice to appear in history")
	}
}

func TestFailedToolCallsAreRecordedToTheErrorLog(t *testing.T) {
	client := &fakeClient{responses: []string{
		"<read_file></read_file>",
		"<attempt_completion><result>gave up</result></attempt_completion>",
	}}
	host := &fakeHost{autoApprove: true}
	logDir := t.TempDir()
	recorder := apierrors.NewRecorder(logDir)
	defer recorder.Close()

	e := New(Config{
		LLM:      client,
		Registry: tools.Default,
		Host:     host,
		Window:   200_000,
		Cwd:      "/tmp",
		Tracker:  filetracker.New(),
		Retry:    llm.DefaultRetryPolicy(),
		ErrorLog: recorder,
		Now:      func() time.Time { return time.Date(2026, 7, 29, 0, 0, 0, 0, time.UTC) },
	})
	conv := NewConversation()

	if _, err := e.Run(context.Background(), conv, "try reading nothing"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries, err := os.ReadDir(logDir)
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), "errors-") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a rotated error log file under %s, got %v", logDir, entries)
	}
}

func TestApprovalDenialSurfacesAsUserDenied(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "new.txt")

	client := &fakeClient{responses: []string{
		fmt.Sprintf("<write_to_file><path>%s</path><content>hi</content></write_to_file>", path),
		"<attempt_completion><result>stopped</result></attempt_completion>",
	}}
	host := &fakeHost{autoApprove: false, askResponse: AskNo}
	e := newTestExecutor(client, host)
	conv := NewConversation()

	_, err := e.Run(context.Background(), conv, "write the file")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, statErr := os.Stat(path); statErr == nil {
		t.Fatalf("file should not have been written after denial")
	}

	found := false
	for _, b := range conv.History[2].Content {
		if strings.Contains(b.Text, "user denied") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a user-denied notice in history: %+v", conv.History[2])
	}
}

func TestRunAbortsOnCanceledContext(t *testing.T) {
	client := &fakeClient{responses: []string{"irrelevant"}}
	host := &fakeHost{autoApprove: true}
	e := newTestExecutor(client, host)
	conv := NewConversation()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := e.Run(ctx, conv, "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Aborted {
		t.Fatalf("expected an aborted result, got %+v", res)
	}
}
