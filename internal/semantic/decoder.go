package semantic

import (
	"encoding/base64"
	"strconv"
	"strings"
)

// OSC command numbers understood by the decoder.
const (
	oscClipboard    = 52
	oscProgress     = 9
	oscHyperlink    = 8
	oscShellMarks   = 133
	oscRichTerminal = 1337
)

// openLink is the single in-progress OSC 8 hyperlink, pending its closing
// marker.
type openLink struct {
	url string
	id  string
	row int
	col int
}

// Decoder turns OSC sequences into Actions. One Decoder instance exists
// per terminal session and lives for the session's duration; its prompt
// counter and hyperlink state depend on calls arriving in byte-stream
// order.
//
// The zero value is ready to use.
type Decoder struct {
	promptID     int
	segmentStart int
	link         *openLink
}

// Decode processes one OSC sequence and returns the actions it implies.
// command is the OSC number, payload the text after the first ';' with the
// terminator stripped. row and col are the engine's current cursor
// position, width the terminal column count.
//
// Unrecognized commands and malformed payloads yield a nil slice, never an
// error.
func (d *Decoder) Decode(command int, payload string, row, col, width int) []Action {
	switch command {
	case oscClipboard:
		return d.decodeClipboard(payload)
	case oscProgress:
		return d.decodeProgress(payload)
	case oscHyperlink:
		return d.decodeHyperlink(payload, row, col)
	case oscShellMarks:
		return d.decodeShellMarks(payload, row, col)
	case oscRichTerminal:
		return d.decodeRichTerminal(payload, row, width)
	default:
		return nil
	}
}

// PromptID returns the identifier of the current prompt/command cycle.
func (d *Decoder) PromptID() int {
	return d.promptID
}

// decodeClipboard handles OSC 52 "selection;data". Data may itself contain
// ';', so only the first separator splits.
func (d *Decoder) decodeClipboard(payload string) []Action {
	selection, data, ok := strings.Cut(payload, ";")
	if !ok {
		return nil
	}

	// Read requests are never honored: answering one would leak the host
	// clipboard to whatever program is attached to the pty.
	if data == "?" {
		return nil
	}

	if data == "" {
		return []Action{ClipboardCopy{Selection: selection}}
	}

	// Some callers hand over text that is already decoded; fall back to
	// the literal payload when it is not valid base64.
	text := data
	if raw, err := base64.StdEncoding.DecodeString(data); err == nil {
		text = string(raw)
	}
	return []Action{ClipboardCopy{Selection: selection, Data: text}}
}

// decodeProgress handles OSC 9 "4;state;progress" (ConEmu-style progress
// reporting). Other OSC 9 subcommands are ignored.
func (d *Decoder) decodeProgress(payload string) []Action {
	rest, ok := strings.CutPrefix(payload, "4;")
	if !ok {
		return nil
	}

	stateField, progressField, _ := strings.Cut(rest, ";")
	n, err := strconv.Atoi(stateField)
	if err != nil {
		return nil
	}

	var state ProgressState
	switch n {
	case 0:
		state = ProgressHidden
	case 1:
		state = ProgressDefault
	case 2:
		state = ProgressError
	case 3:
		state = ProgressIndeterminate
	case 4:
		state = ProgressWarning
	default:
		return nil
	}

	// Progress is optional; anything non-numeric means 0. Out-of-range
	// values clamp rather than fail so a buggy reporter cannot wedge the
	// indicator.
	percent := 0
	if v, err := strconv.Atoi(progressField); err == nil {
		percent = v
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	return []Action{SetProgress{State: state, Percent: percent}}
}

// decodeHyperlink handles OSC 8 "params;URL". A non-empty URL opens a
// link, an empty URL closes the active one.
func (d *Decoder) decodeHyperlink(payload string, row, col int) []Action {
	params, url, ok := strings.Cut(payload, ";")
	if !ok {
		return nil
	}

	if url == "" {
		var actions []Action
		if seg, ok := d.closeLink(row, col); ok {
			actions = append(actions, seg)
		}
		d.link = nil
		return actions
	}

	var actions []Action
	// A second open without a close is malformed nesting; salvage the
	// first link before tracking the new one.
	if d.link != nil {
		if seg, ok := d.closeLink(row, col); ok {
			actions = append(actions, seg)
		}
	}

	d.link = &openLink{
		url: url,
		id:  linkID(params),
		row: row,
		col: col,
	}
	return actions
}

// closeLink emits the segment for the active hyperlink if it has nonzero
// width on the current row. Links spanning multiple rows or closed at
// their start column are dropped: hyperlinks are single-line spans here,
// a known limitation.
func (d *Decoder) closeLink(row, col int) (Action, bool) {
	l := d.link
	if l == nil || l.row != row || l.col >= col {
		return nil, false
	}
	return AddSegment{
		Row:      row,
		Start:    l.col,
		End:      col,
		Kind:     SegmentHyperlink,
		Metadata: l.url,
		PromptID: d.promptID,
	}, true
}

// linkID extracts the id parameter from colon-separated key=value tokens.
// The first id= match wins; absent means empty.
func linkID(params string) string {
	for _, tok := range strings.Split(params, ":") {
		if v, ok := strings.CutPrefix(tok, "id="); ok {
			return v
		}
	}
	return ""
}

// decodeShellMarks handles OSC 133 shell integration marks:
// A prompt start, B prompt end / input start, C input end / output start,
// D[;exitcode] command finished.
func (d *Decoder) decodeShellMarks(payload string, row, col int) []Action {
	if payload == "" {
		return nil
	}

	switch payload[0] {
	case 'A':
		d.promptID++
		d.segmentStart = col
		return nil

	case 'B':
		var actions []Action
		if col > d.segmentStart {
			actions = append(actions, AddSegment{
				Row:      row,
				Start:    d.segmentStart,
				End:      col,
				Kind:     SegmentPrompt,
				PromptID: d.promptID,
			})
		}
		d.segmentStart = col
		return actions

	case 'C':
		// Output itself is never tagged, so the pending start column is
		// left alone here.
		if col > d.segmentStart {
			return []Action{AddSegment{
				Row:      row,
				Start:    d.segmentStart,
				End:      col,
				Kind:     SegmentCommandInput,
				PromptID: d.promptID,
			}}
		}
		return nil

	case 'D':
		exitCode := "0"
		if rest, ok := strings.CutPrefix(payload, "D;"); ok {
			exitCode = rest
		}
		return []Action{AddSegment{
			Row:      row,
			Start:    col,
			End:      col,
			Kind:     SegmentCommandFinished,
			Metadata: exitCode,
			PromptID: d.promptID,
		}}

	default:
		return nil
	}
}

// decodeRichTerminal handles the OSC 1337 extensions Termmark understands:
// AddAnnotation and SetCursorShape. Other subcommands are ignored.
func (d *Decoder) decodeRichTerminal(payload string, row, width int) []Action {
	if msg, ok := strings.CutPrefix(payload, "AddAnnotation="); ok {
		return []Action{AddSegment{
			Row:      row,
			Start:    0,
			End:      width,
			Kind:     SegmentAnnotation,
			Metadata: msg,
			PromptID: d.promptID,
		}}
	}

	if arg, ok := strings.CutPrefix(payload, "SetCursorShape="); ok {
		shape := CursorBlock
		switch arg {
		case "1":
			shape = CursorBarLeft
		case "2":
			shape = CursorUnderline
		}
		return []Action{SetCursorShape{Shape: shape}}
	}

	return nil
}
