package semantic

import "testing"

func textLine(row int, text string, segments ...Segment) Line {
	return Line{Row: row, Cells: []rune(text), Segments: segments}
}

func TestLastOutput(t *testing.T) {
	lines := []Line{
		textLine(0, "prompt$ ls",
			Segment{Start: 0, End: 8, Kind: SegmentPrompt, PromptID: 1},
			Segment{Start: 8, End: 10, Kind: SegmentCommandInput, PromptID: 1},
		),
		textLine(1, "file1"),
		textLine(2, "file2"),
		textLine(3, "",
			Segment{Start: 0, End: 0, Kind: SegmentCommandFinished, Metadata: "0", PromptID: 1},
		),
	}

	output, ok := LastOutput(lines)
	if !ok {
		t.Fatal("expected output, got none")
	}
	if output != "file1\nfile2" {
		t.Errorf("expected 'file1\\nfile2', got %q", output)
	}
}

func TestLastOutputNoFinishedMarker(t *testing.T) {
	lines := []Line{
		textLine(0, "prompt$ ls",
			Segment{Start: 8, End: 10, Kind: SegmentCommandInput, PromptID: 1},
		),
		textLine(1, "file1"),
	}

	if _, ok := LastOutput(lines); ok {
		t.Error("expected no output without a finished marker")
	}
}

func TestLastOutputNoMatchingInput(t *testing.T) {
	lines := []Line{
		textLine(0, "orphan output"),
		textLine(1, "",
			Segment{Start: 0, End: 0, Kind: SegmentCommandFinished, Metadata: "0", PromptID: 7},
		),
	}

	if _, ok := LastOutput(lines); ok {
		t.Error("expected no output without a matching input line")
	}
}

func TestLastOutputPromptIDMismatch(t *testing.T) {
	lines := []Line{
		textLine(0, "prompt$ ls",
			Segment{Start: 8, End: 10, Kind: SegmentCommandInput, PromptID: 1},
		),
		textLine(1, "file1"),
		textLine(2, "",
			Segment{Start: 0, End: 0, Kind: SegmentCommandFinished, Metadata: "0", PromptID: 2},
		),
	}

	if _, ok := LastOutput(lines); ok {
		t.Error("expected no output when prompt IDs do not correlate")
	}
}

func TestLastOutputEmptyOutput(t *testing.T) {
	// A command that printed nothing (e.g. cd) collapses to absent, not
	// an empty string.
	lines := []Line{
		textLine(0, "prompt$ cd /tmp",
			Segment{Start: 8, End: 15, Kind: SegmentCommandInput, PromptID: 1},
		),
		textLine(1, "   "),
		textLine(2, "",
			Segment{Start: 0, End: 0, Kind: SegmentCommandFinished, Metadata: "0", PromptID: 1},
		),
	}

	if output, ok := LastOutput(lines); ok {
		t.Errorf("expected absent for whitespace-only output, got %q", output)
	}
}

func TestLastOutputNoLinesBetween(t *testing.T) {
	lines := []Line{
		textLine(0, "prompt$ true",
			Segment{Start: 8, End: 12, Kind: SegmentCommandInput, PromptID: 1},
		),
		textLine(1, "",
			Segment{Start: 0, End: 0, Kind: SegmentCommandFinished, Metadata: "0", PromptID: 1},
		),
	}

	if _, ok := LastOutput(lines); ok {
		t.Error("expected absent when input and finished lines are adjacent")
	}
}

func TestLastOutputSecondCommandWins(t *testing.T) {
	lines := []Line{
		textLine(0, "prompt$ ls",
			Segment{Start: 8, End: 10, Kind: SegmentCommandInput, PromptID: 1},
		),
		textLine(1, "old output"),
		textLine(2, "",
			Segment{Start: 0, End: 0, Kind: SegmentCommandFinished, Metadata: "0", PromptID: 1},
		),
		textLine(3, "prompt$ pwd",
			Segment{Start: 8, End: 11, Kind: SegmentCommandInput, PromptID: 2},
		),
		textLine(4, "/home/user"),
		textLine(5, "",
			Segment{Start: 0, End: 0, Kind: SegmentCommandFinished, Metadata: "0", PromptID: 2},
		),
	}

	output, ok := LastOutput(lines)
	if !ok {
		t.Fatal("expected output, got none")
	}
	if output != "/home/user" {
		t.Errorf("expected '/home/user', got %q", output)
	}
}

func TestLastOutputTrimsTrailingWhitespace(t *testing.T) {
	lines := []Line{
		textLine(0, "prompt$ cat notes",
			Segment{Start: 8, End: 17, Kind: SegmentCommandInput, PromptID: 1},
		),
		textLine(1, "first line   "),
		textLine(2, "second line\t"),
		textLine(3, ""),
		textLine(4, ""),
		textLine(5, "",
			Segment{Start: 0, End: 0, Kind: SegmentCommandFinished, Metadata: "0", PromptID: 1},
		),
	}

	output, ok := LastOutput(lines)
	if !ok {
		t.Fatal("expected output, got none")
	}
	if output != "first line\nsecond line" {
		t.Errorf("expected trimmed output, got %q", output)
	}
}

func TestLastOutputPreservesInteriorBlankLines(t *testing.T) {
	lines := []Line{
		textLine(0, "prompt$ cat notes",
			Segment{Start: 8, End: 17, Kind: SegmentCommandInput, PromptID: 1},
		),
		textLine(1, "para one"),
		textLine(2, ""),
		textLine(3, "para two"),
		textLine(4, "",
			Segment{Start: 0, End: 0, Kind: SegmentCommandFinished, Metadata: "0", PromptID: 1},
		),
	}

	output, ok := LastOutput(lines)
	if !ok {
		t.Fatal("expected output, got none")
	}
	if output != "para one\n\npara two" {
		t.Errorf("expected interior blank preserved, got %q", output)
	}
}

func TestLastOutputScrollbackRows(t *testing.T) {
	// Row numbering is relative (negative = scrollback) but the scan only
	// depends on chronological slice order.
	lines := []Line{
		textLine(-3, "prompt$ ls",
			Segment{Start: 8, End: 10, Kind: SegmentCommandInput, PromptID: 4},
		),
		textLine(-2, "file1"),
		textLine(-1, "file2"),
		textLine(0, "",
			Segment{Start: 0, End: 0, Kind: SegmentCommandFinished, Metadata: "0", PromptID: 4},
		),
	}

	output, ok := LastOutput(lines)
	if !ok {
		t.Fatal("expected output, got none")
	}
	if output != "file1\nfile2" {
		t.Errorf("expected 'file1\\nfile2', got %q", output)
	}
}

func TestLastOutputEmptySnapshot(t *testing.T) {
	if _, ok := LastOutput(nil); ok {
		t.Error("expected absent for empty snapshot")
	}
}

func TestFindSegmentNewestWins(t *testing.T) {
	segments := []Segment{
		{Start: 0, End: 0, Kind: SegmentCommandFinished, Metadata: "1", PromptID: 3},
		{Start: 0, End: 0, Kind: SegmentCommandFinished, Metadata: "0", PromptID: 5},
	}

	seg, found := findSegment(segments, SegmentCommandFinished)
	if !found {
		t.Fatal("expected to find a segment")
	}
	if seg.PromptID != 5 {
		t.Errorf("expected newest marker (prompt 5), got prompt %d", seg.PromptID)
	}
}
