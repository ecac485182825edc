package semantic

import (
	"encoding/base64"
	"testing"
)

func TestDecoderUnknownCommand(t *testing.T) {
	var d Decoder

	for _, cmd := range []int{0, 1, 2, 7, 10, 51, 104, 777, 5000} {
		actions := d.Decode(cmd, "anything", 0, 0, 80)
		if len(actions) != 0 {
			t.Errorf("command %d: expected no actions, got %d", cmd, len(actions))
		}
	}
}

func TestDecoderClipboardCopy(t *testing.T) {
	var d Decoder

	encoded := base64.StdEncoding.EncodeToString([]byte("hello world"))
	actions := d.Decode(52, "c;"+encoded, 0, 0, 80)

	if len(actions) != 1 {
		t.Fatalf("expected 1 action, got %d", len(actions))
	}
	copyAction, ok := actions[0].(ClipboardCopy)
	if !ok {
		t.Fatalf("expected ClipboardCopy, got %T", actions[0])
	}
	if copyAction.Selection != "c" {
		t.Errorf("expected selection 'c', got %q", copyAction.Selection)
	}
	if copyAction.Data != "hello world" {
		t.Errorf("expected 'hello world', got %q", copyAction.Data)
	}
}

func TestDecoderClipboardRoundTrip(t *testing.T) {
	var d Decoder

	// Decoded data fed back through base64 must survive unchanged.
	for _, text := range []string{"ls -la", "semi;colons;too", "multi\nline", "ünïcödé"} {
		payload := "c;" + base64.StdEncoding.EncodeToString([]byte(text))
		actions := d.Decode(52, payload, 0, 0, 80)
		if len(actions) != 1 {
			t.Fatalf("%q: expected 1 action, got %d", text, len(actions))
		}
		if got := actions[0].(ClipboardCopy).Data; got != text {
			t.Errorf("expected %q, got %q", text, got)
		}
	}
}

func TestDecoderClipboardLiteralFallback(t *testing.T) {
	var d Decoder

	// Not valid base64: the payload is treated as already-decoded text.
	actions := d.Decode(52, "c;plain text, not base64!", 0, 0, 80)

	if len(actions) != 1 {
		t.Fatalf("expected 1 action, got %d", len(actions))
	}
	if got := actions[0].(ClipboardCopy).Data; got != "plain text, not base64!" {
		t.Errorf("expected literal passthrough, got %q", got)
	}
}

func TestDecoderClipboardReadRequest(t *testing.T) {
	var d Decoder

	// Clipboard reads are never honored.
	actions := d.Decode(52, "c;?", 0, 0, 80)
	if len(actions) != 0 {
		t.Errorf("expected no actions for read request, got %d", len(actions))
	}
}

func TestDecoderClipboardEmptyData(t *testing.T) {
	var d Decoder

	actions := d.Decode(52, "p;", 0, 0, 80)
	if len(actions) != 1 {
		t.Fatalf("expected 1 action, got %d", len(actions))
	}
	copyAction := actions[0].(ClipboardCopy)
	if copyAction.Selection != "p" || copyAction.Data != "" {
		t.Errorf("expected empty copy to 'p', got %+v", copyAction)
	}
}

func TestDecoderClipboardMissingSeparator(t *testing.T) {
	var d Decoder

	actions := d.Decode(52, "no separator here", 0, 0, 80)
	if len(actions) != 0 {
		t.Errorf("expected no actions, got %d", len(actions))
	}
}

func TestDecoderProgress(t *testing.T) {
	var d Decoder

	actions := d.Decode(9, "4;1;42", 0, 0, 80)
	if len(actions) != 1 {
		t.Fatalf("expected 1 action, got %d", len(actions))
	}
	progress, ok := actions[0].(SetProgress)
	if !ok {
		t.Fatalf("expected SetProgress, got %T", actions[0])
	}
	if progress.State != ProgressDefault {
		t.Errorf("expected default state, got %v", progress.State)
	}
	if progress.Percent != 42 {
		t.Errorf("expected 42, got %d", progress.Percent)
	}
}

func TestDecoderProgressStates(t *testing.T) {
	var d Decoder

	want := map[string]ProgressState{
		"4;0": ProgressHidden,
		"4;1": ProgressDefault,
		"4;2": ProgressError,
		"4;3": ProgressIndeterminate,
		"4;4": ProgressWarning,
	}
	for payload, state := range want {
		actions := d.Decode(9, payload, 0, 0, 80)
		if len(actions) != 1 {
			t.Fatalf("%q: expected 1 action, got %d", payload, len(actions))
		}
		if got := actions[0].(SetProgress).State; got != state {
			t.Errorf("%q: expected %v, got %v", payload, state, got)
		}
	}
}

func TestDecoderProgressClamping(t *testing.T) {
	var d Decoder

	tests := []struct {
		payload string
		percent int
	}{
		{"4;1;150", 100},
		{"4;1;-5", 0},
		{"4;1;100", 100},
		{"4;1;0", 0},
		{"4;1;not-a-number", 0},
		{"4;1", 0},
		{"4;1;", 0},
	}
	for _, tt := range tests {
		actions := d.Decode(9, tt.payload, 0, 0, 80)
		if len(actions) != 1 {
			t.Fatalf("%q: expected 1 action, got %d", tt.payload, len(actions))
		}
		got := actions[0].(SetProgress).Percent
		if got != tt.percent {
			t.Errorf("%q: expected percent %d, got %d", tt.payload, tt.percent, got)
		}
		if got < 0 || got > 100 {
			t.Errorf("%q: percent %d out of range", tt.payload, got)
		}
	}
}

func TestDecoderProgressMalformed(t *testing.T) {
	var d Decoder

	for _, payload := range []string{"", "4", "5;1;50", "4;9;50", "4;x;50", "4;;50", "1;ok"} {
		actions := d.Decode(9, payload, 0, 0, 80)
		if len(actions) != 0 {
			t.Errorf("%q: expected no actions, got %d", payload, len(actions))
		}
	}
}

func TestDecoderHyperlinkOpenClose(t *testing.T) {
	var d Decoder

	if actions := d.Decode(8, "id=x;https://example.com", 3, 10, 80); len(actions) != 0 {
		t.Fatalf("open: expected no actions, got %d", len(actions))
	}

	actions := d.Decode(8, ";", 3, 25, 80)
	if len(actions) != 1 {
		t.Fatalf("close: expected 1 action, got %d", len(actions))
	}
	seg, ok := actions[0].(AddSegment)
	if !ok {
		t.Fatalf("expected AddSegment, got %T", actions[0])
	}
	if seg.Kind != SegmentHyperlink {
		t.Errorf("expected hyperlink kind, got %v", seg.Kind)
	}
	if seg.Row != 3 || seg.Start != 10 || seg.End != 25 {
		t.Errorf("expected span [10,25) on row 3, got [%d,%d) on row %d", seg.Start, seg.End, seg.Row)
	}
	if seg.Metadata != "https://example.com" {
		t.Errorf("expected URL metadata, got %q", seg.Metadata)
	}
}

func TestDecoderHyperlinkCloseOnDifferentRow(t *testing.T) {
	var d Decoder

	d.Decode(8, ";https://example.com", 3, 10, 80)
	actions := d.Decode(8, ";", 4, 25, 80)
	if len(actions) != 0 {
		t.Errorf("multi-row link: expected no actions, got %d", len(actions))
	}

	// The link state must be cleared even when the close is dropped.
	actions = d.Decode(8, ";", 3, 30, 80)
	if len(actions) != 0 {
		t.Errorf("second close: expected no actions, got %d", len(actions))
	}
}

func TestDecoderHyperlinkZeroWidth(t *testing.T) {
	var d Decoder

	d.Decode(8, ";https://example.com", 0, 10, 80)
	actions := d.Decode(8, ";", 0, 10, 80)
	if len(actions) != 0 {
		t.Errorf("zero-width link: expected no actions, got %d", len(actions))
	}
}

func TestDecoderHyperlinkAutoClose(t *testing.T) {
	var d Decoder

	d.Decode(8, ";https://first.example", 0, 5, 80)

	// Opening a second link with the first still active salvages the
	// first as a segment.
	actions := d.Decode(8, ";https://second.example", 0, 12, 80)
	if len(actions) != 1 {
		t.Fatalf("expected auto-close segment, got %d actions", len(actions))
	}
	seg := actions[0].(AddSegment)
	if seg.Metadata != "https://first.example" || seg.Start != 5 || seg.End != 12 {
		t.Errorf("unexpected auto-closed segment %+v", seg)
	}

	actions = d.Decode(8, ";", 0, 20, 80)
	if len(actions) != 1 {
		t.Fatalf("expected second link segment, got %d actions", len(actions))
	}
	seg = actions[0].(AddSegment)
	if seg.Metadata != "https://second.example" || seg.Start != 12 || seg.End != 20 {
		t.Errorf("unexpected second segment %+v", seg)
	}
}

func TestDecoderHyperlinkMissingSeparator(t *testing.T) {
	var d Decoder

	actions := d.Decode(8, "https://no-params.example", 0, 0, 80)
	if len(actions) != 0 {
		t.Errorf("expected no actions, got %d", len(actions))
	}
}

func TestLinkID(t *testing.T) {
	tests := []struct {
		params string
		want   string
	}{
		{"id=x", "x"},
		{"", ""},
		{"foo=bar", ""},
		{"foo=bar:id=link-7", "link-7"},
		{"id=first:id=second", "first"},
	}
	for _, tt := range tests {
		if got := linkID(tt.params); got != tt.want {
			t.Errorf("linkID(%q): expected %q, got %q", tt.params, tt.want, got)
		}
	}
}

func TestDecoderShellMarksCycle(t *testing.T) {
	var d Decoder

	// A at col 0, B at col 8, C at col 10, D;0 at col 10, all on row 0.
	if actions := d.Decode(133, "A", 0, 0, 80); len(actions) != 0 {
		t.Fatalf("A: expected no actions, got %d", len(actions))
	}

	actions := d.Decode(133, "B", 0, 8, 80)
	if len(actions) != 1 {
		t.Fatalf("B: expected 1 action, got %d", len(actions))
	}
	prompt := actions[0].(AddSegment)
	if prompt.Kind != SegmentPrompt || prompt.Start != 0 || prompt.End != 8 {
		t.Errorf("expected prompt [0,8), got %+v", prompt)
	}

	actions = d.Decode(133, "C", 0, 10, 80)
	if len(actions) != 1 {
		t.Fatalf("C: expected 1 action, got %d", len(actions))
	}
	input := actions[0].(AddSegment)
	if input.Kind != SegmentCommandInput || input.Start != 8 || input.End != 10 {
		t.Errorf("expected input [8,10), got %+v", input)
	}

	actions = d.Decode(133, "D;0", 0, 10, 80)
	if len(actions) != 1 {
		t.Fatalf("D: expected 1 action, got %d", len(actions))
	}
	finished := actions[0].(AddSegment)
	if finished.Kind != SegmentCommandFinished {
		t.Errorf("expected command-finished, got %v", finished.Kind)
	}
	if finished.Start != 10 || finished.End != 10 {
		t.Errorf("expected zero-width marker at col 10, got [%d,%d)", finished.Start, finished.End)
	}
	if finished.Metadata != "0" {
		t.Errorf("expected exit code '0', got %q", finished.Metadata)
	}

	if prompt.PromptID != input.PromptID || input.PromptID != finished.PromptID {
		t.Errorf("prompt IDs differ: %d / %d / %d", prompt.PromptID, input.PromptID, finished.PromptID)
	}
}

func TestDecoderShellMarksPromptIDIncrements(t *testing.T) {
	var d Decoder

	d.Decode(133, "A", 0, 0, 80)
	first := d.PromptID()
	d.Decode(133, "A", 1, 0, 80)
	second := d.PromptID()
	d.Decode(133, "A", 2, 0, 80)
	third := d.PromptID()

	if second != first+1 || third != second+1 {
		t.Errorf("prompt IDs not monotonic: %d, %d, %d", first, second, third)
	}
}

func TestDecoderShellMarksEmptySpans(t *testing.T) {
	var d Decoder

	d.Decode(133, "A", 0, 5, 80)
	if actions := d.Decode(133, "B", 0, 5, 80); len(actions) != 0 {
		t.Errorf("empty prompt: expected no actions, got %d", len(actions))
	}
	if actions := d.Decode(133, "C", 0, 5, 80); len(actions) != 0 {
		t.Errorf("empty input: expected no actions, got %d", len(actions))
	}
}

func TestDecoderShellMarksExitCode(t *testing.T) {
	var d Decoder

	actions := d.Decode(133, "D;127", 0, 0, 80)
	if len(actions) != 1 {
		t.Fatalf("expected 1 action, got %d", len(actions))
	}
	if got := actions[0].(AddSegment).Metadata; got != "127" {
		t.Errorf("expected exit code '127', got %q", got)
	}

	actions = d.Decode(133, "D", 0, 0, 80)
	if got := actions[0].(AddSegment).Metadata; got != "0" {
		t.Errorf("bare D: expected exit code '0', got %q", got)
	}
}

func TestDecoderShellMarksUnknown(t *testing.T) {
	var d Decoder

	for _, payload := range []string{"", "E", "Z;1"} {
		if actions := d.Decode(133, payload, 0, 0, 80); len(actions) != 0 {
			t.Errorf("%q: expected no actions, got %d", payload, len(actions))
		}
	}
}

func TestDecoderAnnotation(t *testing.T) {
	var d Decoder

	actions := d.Decode(1337, "AddAnnotation=build finished", 5, 12, 120)
	if len(actions) != 1 {
		t.Fatalf("expected 1 action, got %d", len(actions))
	}
	seg := actions[0].(AddSegment)
	if seg.Kind != SegmentAnnotation {
		t.Errorf("expected annotation, got %v", seg.Kind)
	}
	if seg.Row != 5 || seg.Start != 0 || seg.End != 120 {
		t.Errorf("expected full row [0,120) on row 5, got [%d,%d) on row %d", seg.Start, seg.End, seg.Row)
	}
	if seg.Metadata != "build finished" {
		t.Errorf("expected message metadata, got %q", seg.Metadata)
	}
}

func TestDecoderCursorShape(t *testing.T) {
	var d Decoder

	tests := []struct {
		arg   string
		shape CursorShape
	}{
		{"0", CursorBlock},
		{"1", CursorBarLeft},
		{"2", CursorUnderline},
		{"3", CursorBlock},
		{"banana", CursorBlock},
	}
	for _, tt := range tests {
		actions := d.Decode(1337, "SetCursorShape="+tt.arg, 0, 0, 80)
		if len(actions) != 1 {
			t.Fatalf("%q: expected 1 action, got %d", tt.arg, len(actions))
		}
		if got := actions[0].(SetCursorShape).Shape; got != tt.shape {
			t.Errorf("%q: expected %v, got %v", tt.arg, tt.shape, got)
		}
	}
}

func TestDecoderRichTerminalUnknown(t *testing.T) {
	var d Decoder

	if actions := d.Decode(1337, "CopyToClipboard=c", 0, 0, 80); len(actions) != 0 {
		t.Errorf("expected unknown 1337 payload to be ignored, got %d actions", len(actions))
	}
}
