package semantic

import (
	"strings"
	"unicode"
)

// LastOutput reconstructs the text printed by the most recently completed
// command. lines must be in chronological order, oldest first, spanning
// scrollback plus the live screen.
//
// The scan walks backward for the newest line carrying a command-finished
// marker, then further backward for the command-input line with the same
// prompt ID. Everything strictly between those two lines is the output:
// each line's cells rendered in column order with trailing whitespace
// trimmed, joined by newlines, and the whole trimmed again.
//
// ok is false when no completed command is found, when its input line is
// missing, or when the command printed nothing visible. "No matching
// command" and "command printed nothing" deliberately collapse into the
// same answer; callers get a string worth copying or nothing at all.
func LastOutput(lines []Line) (output string, ok bool) {
	finished := -1
	promptID := 0
	for i := len(lines) - 1; i >= 0; i-- {
		if seg, found := findSegment(lines[i].Segments, SegmentCommandFinished); found {
			finished = i
			promptID = seg.PromptID
			break
		}
	}
	if finished < 0 {
		return "", false
	}

	input := -1
	for i := finished - 1; i >= 0; i-- {
		if seg, found := findSegment(lines[i].Segments, SegmentCommandInput); found && seg.PromptID == promptID {
			input = i
			break
		}
	}
	if input < 0 {
		return "", false
	}

	var b strings.Builder
	for i := input + 1; i < finished; i++ {
		if i > input+1 {
			b.WriteByte('\n')
		}
		b.WriteString(strings.TrimRightFunc(string(lines[i].Cells), unicode.IsSpace))
	}

	output = strings.TrimRightFunc(b.String(), unicode.IsSpace)
	if output == "" {
		return "", false
	}
	return output, true
}

// findSegment returns the segment of the given kind with the highest
// prompt ID on the line. Lines rewritten in place can carry markers from
// more than one command cycle; the newest wins.
func findSegment(segments []Segment, kind SegmentKind) (Segment, bool) {
	best := Segment{PromptID: -1}
	found := false
	for _, seg := range segments {
		if seg.Kind == kind && seg.PromptID > best.PromptID {
			best = seg
			found = true
		}
	}
	return best, found
}
