package filetracker

import "testing"

func TestMarkReadThenInContext(t *testing.T) {
	tr := New()
	tr.MarkRead("a.txt")
	if !tr.IsFileInContext("a.txt") {
		t.Fatal("expected a.txt to be in context after MarkRead")
	}
	if tr.IsFileInContext("b.txt") {
		t.Fatal("b.txt was never touched, should not be in context")
	}
}

func TestEditMarksPriorEntryStale(t *testing.T) {
	tr := New()
	tr.MarkRead("a.txt")
	tr.MarkEditedByCline("a.txt")

	entries := tr.Entries()
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].State != StateStale {
		t.Errorf("first entry should be stale after re-touch, got %v", entries[0].State)
	}
	if entries[1].State != StateActive {
		t.Errorf("second entry should be active, got %v", entries[1].State)
	}
}

func TestGetReadFilesExcludesEditedOnly(t *testing.T) {
	tr := New()
	tr.MarkRead("read.txt")
	tr.MarkEditedByCline("written.txt")
	tr.MarkMentioned("mentioned.txt")

	got := map[string]bool{}
	for _, p := range tr.GetReadFiles() {
		got[p] = true
	}
	if !got["read.txt"] || !got["mentioned.txt"] {
		t.Errorf("expected read.txt and mentioned.txt in read set, got %v", got)
	}
	if got["written.txt"] {
		t.Errorf("written.txt should not count as a read file, got %v", got)
	}
}

func TestTakeRecentlyModifiedClears(t *testing.T) {
	tr := New()
	tr.MarkUserEdited("a.txt")
	tr.MarkUserEdited("b.txt")

	first := tr.TakeRecentlyModified()
	if len(first) != 2 {
		t.Fatalf("got %d, want 2", len(first))
	}
	second := tr.TakeRecentlyModified()
	if len(second) != 0 {
		t.Fatalf("expected empty after drain, got %v", second)
	}
}
