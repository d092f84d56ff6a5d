// Package checkpoint defines the extension point for a shadow-git
// checkpoint subsystem (a hidden repository snapshotting the workspace
// before and after each tool call, so a run can be rewound). The
// subsystem itself is out of scope: this package exists so the
// executor has a real collaborator to call instead of leaving the
// hook unwired, and a caller that wants checkpointing later only needs
// to supply a Checkpointer.
package checkpoint

import "context"

// Checkpointer snapshots and restores workspace state around tool
// calls. Save is expected to be cheap to call on every tool
// dispatch; an implementation that isn't should debounce internally.
type Checkpointer interface {
	// Save records the current workspace state under label (typically
	// the tool name and call index) and returns an opaque ID a later
	// Restore call can use.
	Save(ctx context.Context, label string) (id string, err error)

	// Restore reverts the workspace to the state captured under id.
	Restore(ctx context.Context, id string) error
}

// NopCheckpointer discards Save calls and treats Restore as a no-op that
// returns nil, so a host
// that hasn't wired a real checkpoint backend still gets a functioning
// Checkpointer rather than a nil one every caller has to special-case.
type NopCheckpointer struct{}

func (NopCheckpointer) Save(ctx context.Context, label string) (string, error) {
	return "", nil
}

func (NopCheckpointer) Restore(ctx context.Context, id string) error {
	return nil
}
