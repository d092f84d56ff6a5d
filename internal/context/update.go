package context

// EditType names why a ContextUpdate was produced, mirroring the three
// dedup patterns plus the "no file read" catch-all used for the
// truncation notice.
type EditType int

const (
	EditNoFileRead EditType = iota
	EditReadFileTool
	EditAlterFileTool
	EditFileMention
)

// UpdateKind is the overlay operation. Only text substitution exists
// today, but it's modeled as its own discriminant so a future kind (e.g.
// image redaction) doesn't need a shape change.
type UpdateKind int

const (
	UpdateTextSubstitution UpdateKind = iota
)

// Update is one overlay entry: replace a block's text, recording when and
// why. Updates for the same block accumulate in order; the last one wins
// when the view is materialized.
type Update struct {
	Timestamp       int64 // unix seconds; set by the caller, not this package
	Kind            UpdateKind
	ReplacementText string
	Metadata        map[string]string
}

// blockUpdates holds every Update recorded for a single block index, in
// application order.
type blockUpdates struct {
	EditType EditType
	Updates  []Update
}

// UpdateMap is the per-session overlay: message index -> (edit type,
// block index -> ordered updates). It is never mutated by anything other
// than the context manager; tool handlers and the executor only read
// through it via ApplyOverlay.
type UpdateMap struct {
	byMessage map[int]map[int]*blockUpdates
}

// NewUpdateMap returns an empty overlay.
func NewUpdateMap() *UpdateMap {
	return &UpdateMap{byMessage: map[int]map[int]*blockUpdates{}}
}

// Add records an overlay update for (msgIdx, blockIdx), attaching edit
// as that block's edit type. Add keeps the first edit type it sees for a
// block and ignores a later, different one for the same block; it does
// not check that the blocks of one message share an edit type (the dedup
// patterns never mix them, since each scans a message exactly once).
func (m *UpdateMap) Add(msgIdx, blockIdx int, edit EditType, u Update) {
	byBlock, ok := m.byMessage[msgIdx]
	if !ok {
		byBlock = map[int]*blockUpdates{}
		m.byMessage[msgIdx] = byBlock
	}
	bu, ok := byBlock[blockIdx]
	if !ok {
		bu = &blockUpdates{EditType: edit}
		byBlock[blockIdx] = bu
	}
	bu.Updates = append(bu.Updates, u)
}

// Latest returns the most recently applied replacement text for
// (msgIdx, blockIdx), and whether any update exists at all.
func (m *UpdateMap) Latest(msgIdx, blockIdx int) (string, bool) {
	byBlock, ok := m.byMessage[msgIdx]
	if !ok {
		return "", false
	}
	bu, ok := byBlock[blockIdx]
	if !ok || len(bu.Updates) == 0 {
		return "", false
	}
	return bu.Updates[len(bu.Updates)-1].ReplacementText, true
}

// Entry is one flattened (message, block) update chain, for callers
// (internal/session) that need to serialize the overlay without
// reaching into its unexported map.
type Entry struct {
	MessageIndex int
	BlockIndex   int
	EditType     EditType
	Updates      []Update
}

// Entries returns every update chain in the overlay, flattened and in
// no particular order. Reconstruct an UpdateMap from them with Add.
func (m *UpdateMap) Entries() []Entry {
	var out []Entry
	for msgIdx, byBlock := range m.byMessage {
		for blockIdx, bu := range byBlock {
			out = append(out, Entry{
				MessageIndex: msgIdx,
				BlockIndex:   blockIdx,
				EditType:     bu.EditType,
				Updates:      bu.Updates,
			})
		}
	}
	return out
}

// Len reports the total number of block-level update chains recorded;
// a nil map has none.
func (m *UpdateMap) Len() int {
	if m == nil {
		return 0
	}
	n := 0
	for _, byBlock := range m.byMessage {
		n += len(byBlock)
	}
	return n
}

// ApplyOverlay returns a copy of msg with every block that has a recorded
// update rewritten to its latest replacement text. msg itself is never
// mutated.
func (m *UpdateMap) ApplyOverlay(msgIdx int, msg Message) Message {
	byBlock, ok := m.byMessage[msgIdx]
	if !ok {
		return msg
	}

	out := Message{Role: msg.Role, Content: make([]Block, len(msg.Content))}
	copy(out.Content, msg.Content)
	for blockIdx, bu := range byBlock {
		if blockIdx < 0 || blockIdx >= len(out.Content) || len(bu.Updates) == 0 {
			continue
		}
		latest := bu.Updates[len(bu.Updates)-1]
		b := out.Content[blockIdx]
		b.Text = latest.ReplacementText
		out.Content[blockIdx] = b
	}
	return out
}
