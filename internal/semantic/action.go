package semantic

// Action is one discrete effect decoded from an OSC sequence. The engine
// applying actions must switch exhaustively over the concrete types;
// silently dropping an unknown variant hides protocol features.
//
// Actions are pure output: the decoder never mutates line or screen state
// itself.
type Action interface {
	isAction()
}

// AddSegment attaches a semantic segment to the line at Row. Row uses the
// engine's line addressing, echoed back from the cursor row the engine
// supplied to Decode.
type AddSegment struct {
	Row      int
	Start    int
	End      int
	Kind     SegmentKind
	Metadata string
	PromptID int
}

// SetCursorShape changes the cursor appearance.
type SetCursorShape struct {
	Shape CursorShape
}

// ClipboardCopy requests that Data be placed on the clipboard named by
// Selection ("c" for clipboard, "p" for primary, and so on). Data is
// already decoded text.
type ClipboardCopy struct {
	Selection string
	Data      string
}

// SetProgress updates the terminal progress indicator. Percent is always
// in [0,100].
type SetProgress struct {
	State   ProgressState
	Percent int
}

func (AddSegment) isAction()     {}
func (SetCursorShape) isAction() {}
func (ClipboardCopy) isAction()  {}
func (SetProgress) isAction()    {}
