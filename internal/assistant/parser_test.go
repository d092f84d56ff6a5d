package assistant

import (
	"reflect"
	"strings"
	"testing"
)

func TestParsePartialStream(t *testing.T) {
	blocks := Parse("Hello <read_file><path>a.txt</path>")
	want := []Block{
		NewText("Hello", false),
		{Kind: KindToolUse, Tool: ToolReadFile, Params: map[string]string{"path": "a.txt"}, Partial: true},
	}
	if !reflect.DeepEqual(blocks, want) {
		t.Fatalf("got %#v, want %#v", blocks, want)
	}
}

func TestParseWriteToFileNestedContentMarker(t *testing.T) {
	input := "<write_to_file><path>x</path><content>a</content>extra</content></write_to_file>"
	blocks := Parse(input)
	if len(blocks) != 1 {
		t.Fatalf("got %d blocks, want 1: %#v", len(blocks), blocks)
	}
	b := blocks[0]
	if b.Kind != KindToolUse || b.Tool != ToolWriteToFile || b.Partial {
		t.Fatalf("unexpected block: %#v", b)
	}
	if b.Params["path"] != "x" {
		t.Errorf("path = %q, want x", b.Params["path"])
	}
	if b.Params["content"] != "a</content>extra" {
		t.Errorf("content = %q, want %q", b.Params["content"], "a</content>extra")
	}
}

func TestParseFullyClosedToolIsNotPartial(t *testing.T) {
	blocks := Parse("<read_file><path>a.txt</path></read_file>")
	if len(blocks) != 1 || blocks[0].Partial {
		t.Fatalf("got %#v, want single non-partial block", blocks)
	}
}

func TestParseUnmatchedClosingTagIsText(t *testing.T) {
	// A closing tag that doesn't match the open tool is not an error; it's
	// just more tool content, invisible to params but not crashing the parse.
	blocks := Parse("<read_file></path><path>a.txt</path></read_file>")
	if len(blocks) != 1 {
		t.Fatalf("got %d blocks, want 1: %#v", len(blocks), blocks)
	}
	if blocks[0].Params["path"] != "a.txt" {
		t.Errorf("path = %q, want a.txt", blocks[0].Params["path"])
	}
}

func TestParseParamTagWinsOverText(t *testing.T) {
	blocks := Parse("<ask_followup_question><question>Continue?</question></ask_followup_question>")
	if len(blocks) != 1 || blocks[0].Tool != ToolAskFollowupQuestion {
		t.Fatalf("got %#v", blocks)
	}
	if blocks[0].Params["question"] != "Continue?" {
		t.Errorf("question = %q", blocks[0].Params["question"])
	}
}

func TestParseOnlyLastBlockIsPartial(t *testing.T) {
	blocks := Parse("first <read_file><path>a</path></read_file> second <write_to_file><path>b</path>")
	for i, b := range blocks {
		if b.Partial && i != len(blocks)-1 {
			t.Fatalf("block %d is partial but is not last: %#v", i, blocks)
		}
	}
	if !blocks[len(blocks)-1].Partial {
		t.Fatalf("last block should be partial: %#v", blocks)
	}
}

func TestParseEffectiveTextIsSubsetOfInput(t *testing.T) {
	inputs := []string{
		"plain text, no tags at all",
		"Hello <read_file><path>a.txt</path></read_file> world",
		"<execute_command><command>ls -la</command><requires_approval>false</requires_approval></execute_command>",
		"",
		"<<<not a real tag>>>",
	}
	for _, in := range inputs {
		for _, b := range Parse(in) {
			if b.Kind == KindText && !strings.Contains(in, b.Text) {
				t.Errorf("text block %q not found verbatim in input %q", b.Text, in)
			}
			for _, v := range b.Params {
				if !strings.Contains(in, v) {
					t.Errorf("param value %q not found verbatim in input %q", v, in)
				}
			}
		}
	}
}

func TestParseEmptyInput(t *testing.T) {
	if blocks := Parse(""); len(blocks) != 0 {
		t.Fatalf("got %#v, want empty", blocks)
	}
}

func TestParseMultipleToolsInSequence(t *testing.T) {
	input := "<read_file><path>a</path></read_file><read_file><path>b</path></read_file>"
	blocks := Parse(input)
	if len(blocks) != 2 {
		t.Fatalf("got %d blocks, want 2: %#v", len(blocks), blocks)
	}
	if blocks[0].Params["path"] != "a" || blocks[1].Params["path"] != "b" {
		t.Fatalf("unexpected params: %#v", blocks)
	}
}

func TestParseUnknownTagTreatedAsText(t *testing.T) {
	blocks := Parse("<not_a_tool>hello</not_a_tool>")
	if len(blocks) != 1 || blocks[0].Kind != KindText {
		t.Fatalf("got %#v, want a single text block", blocks)
	}
}

// TestParseMonotonicPrefix mirrors the streaming invariant: reparsing longer
// and longer prefixes of the same message yields a non-decreasing number of
// non-partial blocks.
func TestParseMonotonicPrefix(t *testing.T) {
	full := "intro <read_file><path>a.txt</path></read_file> middle <write_to_file><path>b</path><content>hi</content></write_to_file> tail"
	lastNonPartial := 0
	for k := 1; k <= len(full); k++ {
		blocks := Parse(full[:k])
		nonPartial := len(blocks)
		if len(blocks) > 0 && blocks[len(blocks)-1].Partial {
			nonPartial--
		}
		if nonPartial < lastNonPartial {
			t.Fatalf("non-partial block count decreased at prefix length %d: %d < %d", k, nonPartial, lastNonPartial)
		}
		lastNonPartial = nonPartial
	}
}
