package executor

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/kestrel-dev/agentcore/internal/assistant"
)

// dependsOn reports whether the tool call at index j must wait for the
// one at index i (i < j), per spec §5's dependency rules: same-path file
// ops serialize in order, a write depends on any earlier read of the same
// path, every execute_command serializes against every other,
// ask_followup_question depends on, and gates, everything around it
// (anything after a followup question needs its answer), and
// attempt_completion depends on every earlier call since it needs the
// full prior state. Calls after attempt_completion do not wait for it.
func dependsOn(i, j assistant.Block) bool {
	if i.Tool == assistant.ToolAskFollowupQuestion || j.Tool == assistant.ToolAskFollowupQuestion {
		return true
	}
	if j.Tool == assistant.ToolAttemptCompletion {
		return true
	}
	if i.Tool == assistant.ToolExecuteCommand && j.Tool == assistant.ToolExecuteCommand {
		return true
	}
	pi, iHasPath := i.Params["path"]
	pj, jHasPath := j.Params["path"]
	if iHasPath && jHasPath && pi == pj {
		return true
	}
	return false
}

// stratify groups tool-use block indices into Kahn's-algorithm strata:
// within a stratum every pair is independent per dependsOn, so they may
// run concurrently; strata themselves run in index order.
func stratify(blocks []assistant.Block) [][]int {
	n := len(blocks)
	remaining := make(map[int]bool, n)
	for idx := range blocks {
		remaining[idx] = true
	}

	var strata [][]int
	for len(remaining) > 0 {
		var stratum []int
		for j := range remaining {
			blocked := false
			for i := range remaining {
				if i == j {
					continue
				}
				if i < j && dependsOn(blocks[i], blocks[j]) {
					blocked = true
					break
				}
			}
			if !blocked {
				stratum = append(stratum, j)
			}
		}
		if len(stratum) == 0 {
			// Cycle guard: shouldn't happen given dependsOn's rules, but
			// never spin forever — flush whatever remains as one stratum.
			for j := range remaining {
				stratum = append(stratum, j)
			}
		}
		sortInts(stratum)
		strata = append(strata, stratum)
		for _, j := range stratum {
			delete(remaining, j)
		}
	}
	return strata
}

func sortInts(s []int) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

// dispatchParallel runs every ToolUse block in blocks, stratified by
// dependsOn, running each stratum's members concurrently via errgroup.
// It is the opt-in alternative to the default "first tool only"
// behavior in dispatchTools.
func (e *Executor) dispatchParallel(ctx context.Context, blocks []assistant.Block, state *TaskState, conv *Conversation) (*Result, []string, error) {
	toolIdx := make([]int, 0, len(blocks))
	for i, b := range blocks {
		if b.Kind == assistant.KindToolUse {
			toolIdx = append(toolIdx, i)
		}
	}
	if len(toolIdx) == 0 {
		return nil, nil, nil
	}

	toolBlocks := make([]assistant.Block, len(toolIdx))
	for i, idx := range toolIdx {
		toolBlocks[i] = blocks[idx]
	}

	strata := stratify(toolBlocks)
	notices := make([]string, len(toolBlocks))
	var completion *Result

	for _, stratum := range strata {
		if ctx.Err() != nil {
			return &Result{Aborted: true}, nil, nil
		}

		g, gctx := errgroup.WithContext(ctx)
		for _, pos := range stratum {
			pos := pos
			g.Go(func() error {
				text, c := e.runOne(gctx, toolBlocks[pos], state, conv)
				notices[pos] = text
				if c != nil {
					completion = c
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, nil, err
		}
		if completion != nil {
			return completion, nil, nil
		}
	}

	state.DidAlreadyUseTool = true
	return nil, notices, nil
}
