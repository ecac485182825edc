package semantic

// SegmentKind identifies what kind of content a segment annotates.
type SegmentKind int

const (
	// SegmentPrompt marks a shell prompt span.
	SegmentPrompt SegmentKind = iota
	// SegmentCommandInput marks the span of a typed command.
	SegmentCommandInput
	// SegmentCommandFinished is a zero-width marker recording that a
	// command completed; its metadata holds the exit code string.
	SegmentCommandFinished
	// SegmentHyperlink marks an OSC 8 hyperlink span; its metadata holds
	// the URL.
	SegmentHyperlink
	// SegmentAnnotation marks a full-row annotation; its metadata holds
	// the annotation text.
	SegmentAnnotation
)

// String returns the string representation of the segment kind.
func (k SegmentKind) String() string {
	switch k {
	case SegmentPrompt:
		return "prompt"
	case SegmentCommandInput:
		return "command-input"
	case SegmentCommandFinished:
		return "command-finished"
	case SegmentHyperlink:
		return "hyperlink"
	case SegmentAnnotation:
		return "annotation"
	default:
		return "unknown"
	}
}

// Segment is an annotated column span on one terminal line.
// End is exclusive. Zero-width segments (Start == End) are valid and used
// as point markers, such as SegmentCommandFinished.
//
// Command output is never explicitly tagged: it is the implicit gap
// between a SegmentCommandInput span and the following
// SegmentCommandFinished marker.
type Segment struct {
	Start    int
	End      int
	Kind     SegmentKind
	Metadata string
	PromptID int
}

// Width returns the number of columns the segment covers.
func (s Segment) Width() int {
	return s.End - s.Start
}

// Line is a read-only snapshot of one terminal row with its annotations,
// as consumed by LastOutput. Row is a relative coordinate: negative values
// denote scrollback (older), non-negative the live screen. Lines handed to
// LastOutput must be in chronological order (oldest first) regardless of
// this numbering.
type Line struct {
	Row      int
	Cells    []rune
	Segments []Segment
}

// ProgressState is the state of an OSC 9;4 progress indicator.
type ProgressState int

const (
	// ProgressHidden hides the indicator.
	ProgressHidden ProgressState = iota
	// ProgressDefault shows normal determinate progress.
	ProgressDefault
	// ProgressError shows progress in an error state.
	ProgressError
	// ProgressIndeterminate shows activity without a percentage.
	ProgressIndeterminate
	// ProgressWarning shows progress in a warning state.
	ProgressWarning
)

// String returns the string representation of the progress state.
func (p ProgressState) String() string {
	switch p {
	case ProgressHidden:
		return "hidden"
	case ProgressDefault:
		return "default"
	case ProgressError:
		return "error"
	case ProgressIndeterminate:
		return "indeterminate"
	case ProgressWarning:
		return "warning"
	default:
		return "unknown"
	}
}

// CursorShape is a cursor appearance requested via OSC 1337.
type CursorShape int

const (
	// CursorBlock is a filled block cursor.
	CursorBlock CursorShape = iota
	// CursorBarLeft is a vertical bar at the left of the cell.
	CursorBarLeft
	// CursorUnderline is an underline cursor.
	CursorUnderline
)
