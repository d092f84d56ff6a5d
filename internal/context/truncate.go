package context

// TruncationMode selects how much of the retained tail to drop.
type TruncationMode int

const (
	ModeNone TruncationMode = iota
	ModeLastTwo
	ModeHalf
	ModeQuarter
)

// chooseMode picks quarter when the overage is severe (at least double
// the safe budget), half otherwise, matching the source's two-bracket
// policy. ModeNone and ModeLastTwo exist as named modes a caller can
// force (e.g. an explicit "clear history except last exchange" command)
// but are never chosen by this selection rule on their own.
func chooseMode(totalTokens, maxAllowed int) TruncationMode {
	if totalTokens/2 >= maxAllowed {
		return ModeQuarter
	}
	return ModeHalf
}

// NextTruncationRange computes the new DeletionRange for phase 2,
// widening from the current range. End is walked back until
// history[End] has Role == RoleAssistant.
func NextTruncationRange(history []Message, current DeletionRange, totalTokens, maxAllowed int) DeletionRange {
	startOfRest := current.StartOfRest()
	remaining := len(history) - startOfRest
	if remaining <= 0 {
		return current
	}

	mode := chooseMode(totalTokens, maxAllowed)

	var drop int
	switch mode {
	case ModeNone:
		drop = remaining
	case ModeLastTwo:
		drop = remaining - 2
	case ModeHalf:
		drop = (remaining / 4) * 2
	case ModeQuarter:
		drop = ((remaining * 3 / 4) / 2) * 2
	}
	if drop < 0 {
		drop = 0
	}
	if drop > remaining {
		drop = remaining
	}

	end := startOfRest + drop - 1
	if end < startOfRest {
		return current
	}

	for end >= startOfRest && history[end].Role != RoleAssistant {
		end--
	}
	if end < startOfRest {
		return current
	}

	return newRange(startOfRest, end)
}
