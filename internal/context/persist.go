package context

import "encoding/json"

// wireUpdate is an Update's on-disk shape.
type wireUpdate struct {
	Timestamp       int64             `json:"timestamp"`
	Kind            int               `json:"kind"`
	ReplacementText string            `json:"replacementText"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}

// MarshalJSON encodes the overlay as the array-of-tuples shape:
// [[msgIdx, [editType, [[blockIdx, [updates...]]...]]]...]
func (m *UpdateMap) MarshalJSON() ([]byte, error) {
	type blockEntry = []interface{} // [blockIdx, []wireUpdate]
	type msgEntry = []interface{}   // [msgIdx, [editType, []blockEntry]]

	var out []msgEntry
	for msgIdx, byBlock := range m.byMessage {
		var blockEntries []blockEntry
		var edit EditType
		for blockIdx, bu := range byBlock {
			edit = bu.EditType
			wireUpdates := make([]wireUpdate, len(bu.Updates))
			for i, u := range bu.Updates {
				wireUpdates[i] = wireUpdate{
					Timestamp:       u.Timestamp,
					Kind:            int(u.Kind),
					ReplacementText: u.ReplacementText,
					Metadata:        u.Metadata,
				}
			}
			blockEntries = append(blockEntries, blockEntry{blockIdx, wireUpdates})
		}
		out = append(out, msgEntry{msgIdx, []interface{}{int(edit), blockEntries}})
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the array-of-tuples shape produced by MarshalJSON.
func (m *UpdateMap) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	m.byMessage = map[int]map[int]*blockUpdates{}
	for _, entry := range raw {
		var tuple [2]json.RawMessage
		if err := json.Unmarshal(entry, &tuple); err != nil {
			return err
		}
		var msgIdx int
		if err := json.Unmarshal(tuple[0], &msgIdx); err != nil {
			return err
		}

		var editTuple [2]json.RawMessage
		if err := json.Unmarshal(tuple[1], &editTuple); err != nil {
			return err
		}
		var edit int
		if err := json.Unmarshal(editTuple[0], &edit); err != nil {
			return err
		}

		var blockEntries []json.RawMessage
		if err := json.Unmarshal(editTuple[1], &blockEntries); err != nil {
			return err
		}

		byBlock := map[int]*blockUpdates{}
		for _, be := range blockEntries {
			var beTuple [2]json.RawMessage
			if err := json.Unmarshal(be, &beTuple); err != nil {
				return err
			}
			var blockIdx int
			if err := json.Unmarshal(beTuple[0], &blockIdx); err != nil {
				return err
			}
			var wireUpdates []wireUpdate
			if err := json.Unmarshal(beTuple[1], &wireUpdates); err != nil {
				return err
			}
			updates := make([]Update, len(wireUpdates))
			for i, wu := range wireUpdates {
				updates[i] = Update{
					Timestamp:       wu.Timestamp,
					Kind:            UpdateKind(wu.Kind),
					ReplacementText: wu.ReplacementText,
					Metadata:        wu.Metadata,
				}
			}
			byBlock[blockIdx] = &blockUpdates{EditType: EditType(edit), Updates: updates}
		}
		m.byMessage[msgIdx] = byBlock
	}
	return nil
}
