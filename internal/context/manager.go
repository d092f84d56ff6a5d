package context

// ShrinkResult reports what a Shrink call did, for logging and tests.
type ShrinkResult struct {
	DeletedRange    DeletionRange
	Updates         *UpdateMap
	Dedup           DedupResult
	RanPhase2       bool
	TruncationMode  TruncationMode
}

const dedupSavingsThreshold = 0.30

// truncationNoticeText is inserted once, at message index 1 block 0 (the
// first assistant message), the first time any edit happens to a given
// history.
const truncationNoticeText = "(earlier conversation history was summarized or truncated to stay within the model's context window)"

// Shrink runs the two-phase algorithm described in the context manager's
// design: it is a no-op if totalTokens hasn't reached maxAllowed(window);
// otherwise it deduplicates repeated file reads and, if that alone
// doesn't free enough space, computes an ordered truncation range.
// existingUpdates and existingRange carry forward state from a prior
// Shrink call on the same history (nil/zero for a fresh session).
func Shrink(history []Message, window, totalTokens int, existingRange DeletionRange, existingUpdates *UpdateMap, now int64) ShrinkResult {
	maxAllowed := MaxAllowed(window)
	if !ShouldShrink(totalTokens, window) {
		return ShrinkResult{DeletedRange: existingRange, Updates: existingUpdates}
	}

	merged := existingUpdates
	if merged == nil {
		merged = NewUpdateMap()
	}

	scanFrom := existingRange.StartOfRest()
	dedup := Deduplicate(history, scanFrom, now)
	mergeInto(merged, dedup.Updates)

	result := ShrinkResult{
		DeletedRange: existingRange,
		Updates:      merged,
		Dedup:        dedup,
	}

	if dedup.SavingsRatio() >= dedupSavingsThreshold {
		noticeIfNeeded(merged, existingRange, now)
		return result
	}

	newRange := NextTruncationRange(history, existingRange, totalTokens, maxAllowed)
	result.DeletedRange = newRange
	result.RanPhase2 = true
	result.TruncationMode = chooseMode(totalTokens, maxAllowed)

	noticeIfNeeded(merged, newRange, now)
	return result
}

// mergeInto copies every update in src into dst. Used because
// Deduplicate always starts from a fresh UpdateMap; Shrink folds it into
// the session's running overlay.
func mergeInto(dst, src *UpdateMap) {
	for msgIdx, byBlock := range src.byMessage {
		for blockIdx, bu := range byBlock {
			for _, u := range bu.Updates {
				dst.Add(msgIdx, blockIdx, bu.EditType, u)
			}
		}
	}
}

// noticeIfNeeded inserts the one-time truncation notice at (1, 0) if it
// hasn't already been recorded, whenever any edit happened this pass.
func noticeIfNeeded(updates *UpdateMap, r DeletionRange, now int64) {
	if _, exists := updates.Latest(1, 0); exists {
		return
	}
	updates.Add(1, 0, EditNoFileRead, Update{
		Timestamp:       now,
		Kind:            UpdateTextSubstitution,
		ReplacementText: truncationNoticeText,
	})
}

// GetTruncatedMessages materializes the current view of history: the
// first two messages plus everything from the deletion range's end
// onward, each with its ContextUpdate overlay applied. history is never
// mutated.
func GetTruncatedMessages(history []Message, r DeletionRange, updates *UpdateMap) []Message {
	if len(history) == 0 {
		return nil
	}

	head := history[:min(2, len(history))]
	startOfRest := r.StartOfRest()
	if startOfRest > len(history) {
		startOfRest = len(history)
	}
	tail := history[startOfRest:]

	out := make([]Message, 0, len(head)+len(tail))
	for i, m := range head {
		out = append(out, applyIfPresent(updates, i, m))
	}
	for i, m := range tail {
		out = append(out, applyIfPresent(updates, startOfRest+i, m))
	}
	return out
}

func applyIfPresent(updates *UpdateMap, idx int, m Message) Message {
	if updates == nil {
		return m
	}
	return updates.ApplyOverlay(idx, m)
}

