package context

// DeletionRange identifies a contiguous, already-removed chunk of history
// as a closed interval [Start, End] of array indices. At most one exists
// at a time; further truncation only ever widens End.
type DeletionRange struct {
	Start int
	End   int
	// set is false for the zero value, meaning "no range yet" — distinct
	// from a range starting at index 0, which the Start>=2 invariant
	// forbids anyway.
	set bool
}

// NoDeletionRange is the empty range.
var NoDeletionRange = DeletionRange{}

// IsSet reports whether a deletion range has ever been computed.
func (d DeletionRange) IsSet() bool { return d.set }

// StartOfRest is where the retained "rest" of history begins: one past
// the current deletion range's end, or index 2 if nothing has been
// deleted yet (indices 0 and 1, the first user/assistant pair, are
// always preserved).
func (d DeletionRange) StartOfRest() int {
	if !d.set {
		return 2
	}
	return d.End + 1
}

// newRange constructs a DeletionRange, enforcing start >= 2.
func newRange(start, end int) DeletionRange {
	if start < 2 {
		start = 2
	}
	return DeletionRange{Start: start, End: end, set: true}
}

// NewDeletionRange builds a DeletionRange from persisted Start/End
// values, for callers (internal/session) restoring state from disk
// that has no way to set the unexported "set" discriminant directly.
func NewDeletionRange(start, end int) DeletionRange {
	return newRange(start, end)
}
