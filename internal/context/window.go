package context

// MaxAllowed derives the safe token budget for a model with raw context
// window w, subtracting a headroom that depends on w's bracket. The
// brackets and constants are fixed by the model families this runtime
// targets, not computed from w in the general case.
func MaxAllowed(w int) int {
	switch w {
	case 64_000:
		return w - 27_000
	case 128_000:
		return w - 30_000
	case 200_000:
		return w - 40_000
	default:
		generic := w - 40_000
		eightyPercent := (w * 8) / 10
		if generic > eightyPercent {
			return generic
		}
		return eightyPercent
	}
}

// ShouldShrink reports whether the last-observed token total has reached
// or passed the safe budget for window w.
func ShouldShrink(totalTokens, w int) bool {
	return totalTokens >= MaxAllowed(w)
}
