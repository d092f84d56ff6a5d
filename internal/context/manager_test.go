package context

import (
	"encoding/json"
	"strings"
	"testing"
)

func buildAlternating(n int, contentFor func(i int, role Role) []Block) []Message {
	history := make([]Message, n)
	for i := 0; i < n; i++ {
		role := RoleUser
		if i%2 == 1 {
			role = RoleAssistant
		}
		history[i] = Message{Role: role, Content: contentFor(i, role)}
	}
	return history
}

func TestShrinkNoOpBelowThreshold(t *testing.T) {
	history := buildAlternating(10, func(i int, role Role) []Block {
		return []Block{{Kind: BlockText, Text: "hello"}}
	})
	result := Shrink(history, 200_000, 1000, NoDeletionRange, nil, 0)
	if result.DeletedRange.IsSet() {
		t.Fatalf("expected no-op, got range %+v", result.DeletedRange)
	}
	if result.Updates.Len() != 0 {
		t.Fatalf("expected no updates, got %d", result.Updates.Len())
	}
}

func TestDedupSkipsTruncationScenario(t *testing.T) {
	// Scenario 3: two occurrences of a large read_file result for the
	// same path; dedup alone should free >=30% and skip phase 2.
	bigContent := strings.Repeat("x", 40_000)
	history := buildAlternating(20, func(i int, role Role) []Block {
		if role == RoleUser && (i == 2 || i == 10) {
			return []Block{{Kind: BlockText, Text: "[read_file for 'big.ts'] Result:\n" + bigContent}}
		}
		return []Block{{Kind: BlockText, Text: strings.Repeat("y", 2000)}}
	})

	window := 200_000
	maxAllowed := MaxAllowed(window)
	totalTokens := maxAllowed + 27_000 // pushes us over threshold like the scenario's 125k vs 98k-ish gap

	result := Shrink(history, window, totalTokens, NoDeletionRange, nil, 0)
	if result.RanPhase2 {
		t.Fatalf("expected phase 2 to be skipped, savings ratio was %v", result.Dedup.SavingsRatio())
	}
	if result.DeletedRange.IsSet() {
		t.Fatalf("expected deletedRange to remain unset, got %+v", result.DeletedRange)
	}

	replacement, ok := result.Updates.Latest(2, 0)
	if !ok {
		t.Fatal("expected the earlier occurrence (message 2) to be rewritten")
	}
	if strings.Contains(replacement, bigContent) {
		t.Fatal("replacement should not still contain the full file content")
	}

	if _, ok := result.Updates.Latest(10, 0); ok {
		t.Fatal("the latest occurrence (message 10) should be kept verbatim, not overlaid")
	}
}

func TestOrderedTruncationScenario(t *testing.T) {
	// Scenario 4: 30 messages, totalTokens = 2*maxAllowed, no duplicates.
	history := buildAlternating(30, func(i int, role Role) []Block {
		return []Block{{Kind: BlockText, Text: "unique content " + string(rune('a'+i%26))}}
	})

	window := 200_000
	maxAllowed := MaxAllowed(window)
	totalTokens := 2 * maxAllowed

	result := Shrink(history, window, totalTokens, NoDeletionRange, nil, 0)
	if !result.RanPhase2 {
		t.Fatal("expected phase 2 to run")
	}
	if result.TruncationMode != ModeQuarter {
		t.Fatalf("got mode %v, want ModeQuarter", result.TruncationMode)
	}
	if result.DeletedRange.Start != 2 || result.DeletedRange.End != 21 {
		t.Fatalf("got range %+v, want [2,21]", result.DeletedRange)
	}

	truncated := GetTruncatedMessages(history, result.DeletedRange, result.Updates)
	if len(truncated) != 10 {
		t.Fatalf("got %d messages, want 10", len(truncated))
	}
}

func TestDeletedRangeEndAlwaysAssistant(t *testing.T) {
	history := buildAlternating(30, func(i int, role Role) []Block {
		return []Block{{Kind: BlockText, Text: "c"}}
	})
	window := 200_000
	maxAllowed := MaxAllowed(window)
	r := NextTruncationRange(history, NoDeletionRange, 2*maxAllowed, maxAllowed)
	if history[r.End].Role != RoleAssistant {
		t.Fatalf("deletedRange.End %d is not an assistant message", r.End)
	}
}

func TestGetTruncatedMessagesPreservesFirstTwo(t *testing.T) {
	history := buildAlternating(30, func(i int, role Role) []Block {
		return []Block{{Kind: BlockText, Text: "c"}}
	})
	r := newRange(2, 21)
	truncated := GetTruncatedMessages(history, r, NewUpdateMap())
	if len(truncated) < 2 {
		t.Fatal("expected at least the first two messages")
	}
	if truncated[0].Role != RoleUser || truncated[1].Role != RoleAssistant {
		t.Fatalf("first two messages changed role: %+v", truncated[:2])
	}
}

func TestDeduplicateIsIdempotent(t *testing.T) {
	bigContent := strings.Repeat("x", 1000)
	history := buildAlternating(10, func(i int, role Role) []Block {
		if role == RoleUser && (i == 2 || i == 6) {
			return []Block{{Kind: BlockText, Text: "[read_file for 'a.go'] Result:\n" + bigContent}}
		}
		return []Block{{Kind: BlockText, Text: "z"}}
	})

	first := Deduplicate(history, 2, 0)
	second := Deduplicate(history, 2, 0)

	if first.CharsSaved != second.CharsSaved {
		t.Fatalf("dedup not stable across runs: %d vs %d", first.CharsSaved, second.CharsSaved)
	}
	r1, _ := first.Updates.Latest(2, 0)
	r2, _ := second.Updates.Latest(2, 0)
	if r1 != r2 {
		t.Fatalf("dedup updates differ across runs: %q vs %q", r1, r2)
	}
}

func TestUpdateMapJSONRoundTrip(t *testing.T) {
	m := NewUpdateMap()
	m.Add(3, 1, EditReadFileTool, Update{Timestamp: 100, ReplacementText: "notice", Metadata: map[string]string{"path": "a.go"}})
	m.Add(5, 0, EditFileMention, Update{Timestamp: 200, ReplacementText: "other"})

	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	round := NewUpdateMap()
	if err := json.Unmarshal(data, round); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	got, ok := round.Latest(3, 1)
	if !ok || got != "notice" {
		t.Fatalf("got %q, ok=%v, want notice", got, ok)
	}
	got2, ok := round.Latest(5, 0)
	if !ok || got2 != "other" {
		t.Fatalf("got %q, ok=%v, want other", got2, ok)
	}
}

func TestMaxAllowedBrackets(t *testing.T) {
	cases := map[int]int{
		64_000:  37_000,
		128_000: 98_000,
		200_000: 160_000,
	}
	for w, want := range cases {
		if got := MaxAllowed(w); got != want {
			t.Errorf("MaxAllowed(%d) = %d, want %d", w, got, want)
		}
	}
}
