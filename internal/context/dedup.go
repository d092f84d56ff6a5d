package context

import (
	"regexp"
)

// readFileResultPattern matches a read_file tool result's header line,
// e.g. "[read_file for 'src/main.go'] Result:".
var readFileResultPattern = regexp.MustCompile(`^\[read_file for '([^']+)'\] Result:`)

// alterFileResultPattern matches a write_to_file/replace_in_file tool
// result header line.
var alterFileResultPattern = regexp.MustCompile(`^\[(?:write_to_file|replace_in_file) for '([^']+)'\]`)

// finalFileContentPattern pulls a single final_file_content payload (the
// file's full post-edit content) out of a message's second block.
var finalFileContentPattern = regexp.MustCompile(`(?s)<final_file_content path="([^"]+)">(.*?)</final_file_content>`)

// fileMentionPattern pulls one or more inline @file-mention payloads out
// of a message's second block.
var fileMentionPattern = regexp.MustCompile(`(?s)<file_content path="([^"]+)">(.*?)</file_content>`)

const duplicateNotice = "(duplicate file read, see a later message for current content)"

// fileRecord is one occurrence of a file's content appearing in history,
// located precisely enough to build a replacement ContextUpdate.
type fileRecord struct {
	msgIdx   int
	blockIdx int
	path     string
	edit     EditType
	// header, when non-empty, is prefixed back onto the replacement text
	// so the notice still reads naturally ("[read_file for 'x'] Result: ...").
	header string
	// original is the full original block text, needed to compute the
	// characters-saved accounting.
	original string
}

// DedupResult reports what phase 1 did.
type DedupResult struct {
	Updates        *UpdateMap
	CharsSaved     int
	RetainedChars  int
}

// SavingsRatio is CharsSaved / RetainedChars, or 0 if RetainedChars is 0.
func (r DedupResult) SavingsRatio() float64 {
	if r.RetainedChars == 0 {
		return 0
	}
	return float64(r.CharsSaved) / float64(r.RetainedChars)
}

// Deduplicate scans history[scanFrom:] for repeated file-read payloads
// and rewrites all but the latest occurrence of each path to a terse
// notice, recorded as ContextUpdates. now is a unix-seconds timestamp
// stamped onto every Update.
func Deduplicate(history []Message, scanFrom int, now int64) DedupResult {
	updates := NewUpdateMap()

	records := map[string][]fileRecord{}
	retainedChars := 0

	for i := scanFrom; i < len(history); i++ {
		msg := history[i]
		for _, b := range msg.Content {
			retainedChars += len(b.Text)
		}
		if msg.Role != RoleUser || len(msg.Content) == 0 {
			continue
		}

		first := msg.Content[0].Text
		if m := readFileResultPattern.FindStringSubmatch(first); m != nil {
			path := m[1]
			records[path] = append(records[path], fileRecord{
				msgIdx: i, blockIdx: 0, path: path, edit: EditReadFileTool,
				header: m[0], original: first,
			})
			continue
		}

		if m := alterFileResultPattern.FindStringSubmatch(first); m != nil && len(msg.Content) > 1 {
			path := m[1]
			second := msg.Content[1].Text
			if fm := finalFileContentPattern.FindStringSubmatch(second); fm != nil {
				records[path] = append(records[path], fileRecord{
					msgIdx: i, blockIdx: 1, path: path, edit: EditAlterFileTool,
					original: second,
				})
			}
			continue
		}

		if len(msg.Content) > 1 {
			second := msg.Content[1].Text
			for _, fm := range fileMentionPattern.FindAllStringSubmatch(second, -1) {
				path := fm[1]
				records[path] = append(records[path], fileRecord{
					msgIdx: i, blockIdx: 1, path: path, edit: EditFileMention,
					original: second,
				})
			}
		}
	}

	charsSaved := 0
	for path, occ := range records {
		if len(occ) < 2 {
			continue
		}
		for _, rec := range occ[:len(occ)-1] {
			notice := duplicateNotice
			if rec.header != "" {
				notice = rec.header + " " + duplicateNotice
			}
			updates.Add(rec.msgIdx, rec.blockIdx, rec.edit, Update{
				Timestamp:       now,
				Kind:            UpdateTextSubstitution,
				ReplacementText: notice,
				Metadata:        map[string]string{"path": path},
			})
			if len(rec.original) > len(notice) {
				charsSaved += len(rec.original) - len(notice)
			}
		}
	}

	return DedupResult{Updates: updates, CharsSaved: charsSaved, RetainedChars: retainedChars}
}
