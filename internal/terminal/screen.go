package terminal

import (
	"strings"
	"sync"
	"unicode"

	"github.com/dshills/termmark/internal/semantic"
)

// ColorKind discriminates the three color encodings a cell can carry.
type ColorKind int

const (
	// ColorDefault uses the terminal's default foreground or background.
	ColorDefault ColorKind = iota
	// ColorIndexed is a palette color (0-255).
	ColorIndexed
	// ColorRGB is a 24-bit color.
	ColorRGB
)

// Color is a terminal color. The zero value is the default color.
type Color struct {
	Kind    ColorKind
	Index   uint8
	R, G, B uint8
}

// IndexedColor returns a palette color.
func IndexedColor(index uint8) Color {
	return Color{Kind: ColorIndexed, Index: index}
}

// RGBColor returns a 24-bit color.
func RGBColor(r, g, b uint8) Color {
	return Color{Kind: ColorRGB, R: r, G: g, B: b}
}

// Attr is a bitmask of cell text attributes.
type Attr uint16

const (
	AttrNone      Attr = 0
	AttrBold      Attr = 1 << 0
	AttrDim       Attr = 1 << 1
	AttrItalic    Attr = 1 << 2
	AttrUnderline Attr = 1 << 3
	AttrBlink     Attr = 1 << 4
	AttrReverse   Attr = 1 << 5
	AttrHidden    Attr = 1 << 6
	AttrStrike    Attr = 1 << 7
)

// Has returns true if the attribute is set.
func (a Attr) Has(attr Attr) bool {
	return a&attr != 0
}

// Cell is a single character cell.
type Cell struct {
	Rune rune
	FG   Color
	BG   Color
	Attr Attr
}

// emptyCell is a blank cell with default colors.
var emptyCell = Cell{Rune: ' '}

// Line is one terminal row: its cells plus whatever semantic segments the
// shell-integration layer has attached to it.
type Line struct {
	Cells    []Cell
	Wrapped  bool
	Segments []semantic.Segment
}

func newLine(width int) *Line {
	cells := make([]Cell, width)
	for i := range cells {
		cells[i] = emptyCell
	}
	return &Line{Cells: cells}
}

func (l *Line) clear() {
	for i := range l.Cells {
		l.Cells[i] = emptyCell
	}
	l.Wrapped = false
	l.Segments = nil
}

func (l *Line) clearRange(start, end int) {
	if start < 0 {
		start = 0
	}
	if end > len(l.Cells) {
		end = len(l.Cells)
	}
	for i := start; i < end; i++ {
		l.Cells[i] = emptyCell
	}
}

// text renders the line's characters in column order with trailing
// whitespace removed.
func (l *Line) text() string {
	runes := make([]rune, len(l.Cells))
	for i, c := range l.Cells {
		runes[i] = c.Rune
	}
	return strings.TrimRightFunc(string(runes), unicode.IsSpace)
}

// Screen is the terminal screen buffer plus scrollback. Rows are
// addressed two ways: semantic actions target absolute row indexes
// (monotonic since session start, stable across scrolling), while
// Snapshot exposes the relative numbering the extractor consumes
// (negative = scrollback).
type Screen struct {
	mu sync.RWMutex

	width  int
	height int
	lines  []*Line

	history      []*Line
	historyLimit int

	// base is the absolute row index of screen line 0. It advances each
	// time a line is evicted into history.
	base int

	cursorX int
	cursorY int

	cursorVisible bool
	cursorShape   semantic.CursorShape

	scrollTop    int
	scrollBottom int

	fg    Color
	bg    Color
	attrs Attr

	savedX, savedY   int
	savedFg, savedBg Color
	savedAttrs       Attr

	originMode bool
	autoWrap   bool
}

// NewScreen creates a screen buffer with the given dimensions and
// scrollback limit.
func NewScreen(width, height, scrollback int) *Screen {
	if width < 1 {
		width = 80
	}
	if height < 1 {
		height = 24
	}
	if scrollback < 0 {
		scrollback = 0
	}

	s := &Screen{
		width:         width,
		height:        height,
		lines:         make([]*Line, height),
		historyLimit:  scrollback,
		cursorVisible: true,
		scrollBottom:  height - 1,
		autoWrap:      true,
	}
	for i := range s.lines {
		s.lines[i] = newLine(width)
	}
	return s
}

// Width returns the screen width in columns.
func (s *Screen) Width() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.width
}

// Height returns the screen height in rows.
func (s *Screen) Height() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.height
}

// CursorPos returns the cursor position in screen coordinates.
func (s *Screen) CursorPos() (x, y int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cursorX, s.cursorY
}

// CursorMark returns the cursor position with the row in absolute
// coordinates, the addressing semantic actions use.
func (s *Screen) CursorMark() (row, col int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.base + s.cursorY, s.cursorX
}

// CursorVisible reports whether the cursor is shown.
func (s *Screen) CursorVisible() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cursorVisible
}

// CursorShape returns the current cursor shape.
func (s *Screen) CursorShape() semantic.CursorShape {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cursorShape
}

// SetCursorShape sets the cursor shape.
func (s *Screen) SetCursorShape(shape semantic.CursorShape) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursorShape = shape
}

// SetCursorVisible sets cursor visibility.
func (s *Screen) SetCursorVisible(visible bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursorVisible = visible
}

// Cell returns the cell at the given screen position, or a blank cell
// when out of bounds.
func (s *Screen) Cell(x, y int) Cell {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if x < 0 || x >= s.width || y < 0 || y >= s.height {
		return emptyCell
	}
	return s.lines[y].Cells[x]
}

// HistoryLen returns the number of scrollback lines.
func (s *Screen) HistoryLen() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.history)
}

// AddSegment attaches a semantic segment to the line at the given
// absolute row. Rows that have scrolled out of both screen and history
// are dropped.
func (s *Screen) AddSegment(row int, seg semantic.Segment) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if line := s.lineAtAbs(row); line != nil {
		line.Segments = append(line.Segments, seg)
	}
}

// lineAtAbs resolves an absolute row index to a live line, or nil.
func (s *Screen) lineAtAbs(row int) *Line {
	if row >= s.base {
		y := row - s.base
		if y < s.height {
			return s.lines[y]
		}
		return nil
	}
	idx := len(s.history) - (s.base - row)
	if idx < 0 || idx >= len(s.history) {
		return nil
	}
	return s.history[idx]
}

// TextAt returns the text of the cell range [start, end) on the line at
// the given absolute row, trailing whitespace removed.
func (s *Screen) TextAt(row, start, end int) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	line := s.lineAtAbs(row)
	if line == nil {
		return ""
	}
	if start < 0 {
		start = 0
	}
	if end > len(line.Cells) {
		end = len(line.Cells)
	}
	if start >= end {
		return ""
	}
	runes := make([]rune, 0, end-start)
	for _, c := range line.Cells[start:end] {
		runes = append(runes, c.Rune)
	}
	return strings.TrimRightFunc(string(runes), unicode.IsSpace)
}

// Snapshot returns a chronological copy of scrollback plus screen as
// semantic lines. Scrollback rows are numbered -n..-1, screen rows
// 0..height-1.
func (s *Screen) Snapshot() []semantic.Line {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]semantic.Line, 0, len(s.history)+s.height)
	n := len(s.history)
	for i, line := range s.history {
		out = append(out, snapshotLine(i-n, line))
	}
	for y, line := range s.lines {
		out = append(out, snapshotLine(y, line))
	}
	return out
}

func snapshotLine(row int, line *Line) semantic.Line {
	runes := make([]rune, len(line.Cells))
	for i, c := range line.Cells {
		runes[i] = c.Rune
	}
	segs := make([]semantic.Segment, len(line.Segments))
	copy(segs, line.Segments)
	return semantic.Line{Row: row, Cells: runes, Segments: segs}
}

// WriteRune writes a rune at the cursor and advances it.
func (s *Screen) WriteRune(r rune) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeRune(r)
}

func (s *Screen) writeRune(r rune) {
	if s.cursorX >= s.width {
		if !s.autoWrap {
			s.cursorX = s.width - 1
		} else {
			s.lines[s.cursorY].Wrapped = true
			s.cursorX = 0
			s.lineFeed()
		}
	}

	s.lines[s.cursorY].Cells[s.cursorX] = Cell{
		Rune: r,
		FG:   s.fg,
		BG:   s.bg,
		Attr: s.attrs,
	}
	s.cursorX++
}

// MoveCursor moves the cursor to the given screen position, clamped to
// the screen (or the scroll region in origin mode).
func (s *Screen) MoveCursor(x, y int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.moveCursor(x, y)
}

func (s *Screen) moveCursor(x, y int) {
	if x < 0 {
		x = 0
	}
	if x >= s.width {
		x = s.width - 1
	}

	top, bottom := 0, s.height-1
	if s.originMode {
		top, bottom = s.scrollTop, s.scrollBottom
		y += top
	}
	if y < top {
		y = top
	}
	if y > bottom {
		y = bottom
	}

	s.cursorX = x
	s.cursorY = y
}

// MoveCursorRelative moves the cursor by the given delta.
func (s *Screen) MoveCursorRelative(dx, dy int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.moveCursor(s.cursorX+dx, s.cursorY+dy)
}

// CarriageReturn moves the cursor to column 0.
func (s *Screen) CarriageReturn() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursorX = 0
}

// LineFeed moves the cursor down one row, scrolling at the bottom of the
// scroll region.
func (s *Screen) LineFeed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lineFeed()
}

func (s *Screen) lineFeed() {
	if s.cursorY >= s.scrollBottom {
		s.scrollUp(1)
	} else {
		s.cursorY++
	}
}

// ReverseLineFeed moves the cursor up one row, scrolling at the top of
// the scroll region.
func (s *Screen) ReverseLineFeed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cursorY <= s.scrollTop {
		s.scrollDown(1)
	} else {
		s.cursorY--
	}
}

// ScrollUp scrolls the scroll region up by n lines.
func (s *Screen) ScrollUp(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scrollUp(n)
}

func (s *Screen) scrollUp(n int) {
	top, bottom, n := s.clampRegion(n)
	if n <= 0 {
		return
	}

	// Lines leaving a full-screen region go into scrollback, and the
	// absolute row base advances with them so segment rows stay stable.
	fullRegion := top == 0 && bottom == s.height-1
	if fullRegion {
		if s.historyLimit > 0 {
			s.history = append(s.history, s.lines[top:top+n]...)
			if len(s.history) > s.historyLimit {
				s.history = s.history[len(s.history)-s.historyLimit:]
			}
		}
		s.base += n
	}

	for y := top; y+n <= bottom; y++ {
		s.lines[y] = s.lines[y+n]
	}
	for y := bottom - n + 1; y <= bottom; y++ {
		s.lines[y] = newLine(s.width)
	}
}

// ScrollDown scrolls the scroll region down by n lines.
func (s *Screen) ScrollDown(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scrollDown(n)
}

func (s *Screen) scrollDown(n int) {
	top, bottom, n := s.clampRegion(n)
	if n <= 0 {
		return
	}

	for y := bottom; y-n >= top; y-- {
		s.lines[y] = s.lines[y-n]
	}
	for y := top; y < top+n; y++ {
		s.lines[y] = newLine(s.width)
	}
}

// clampRegion validates the scroll region and clamps n to its size.
func (s *Screen) clampRegion(n int) (top, bottom, clamped int) {
	top, bottom = s.scrollTop, s.scrollBottom
	if top < 0 {
		top = 0
	}
	if bottom >= s.height {
		bottom = s.height - 1
	}
	if n <= 0 || top > bottom {
		return top, bottom, 0
	}
	if size := bottom - top + 1; n > size {
		n = size
	}
	return top, bottom, n
}

// SetScrollRegion sets the scroll region (DECSTBM) and homes the cursor.
func (s *Screen) SetScrollRegion(top, bottom int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if top < 0 {
		top = 0
	}
	if bottom >= s.height {
		bottom = s.height - 1
	}
	if top >= bottom {
		return
	}

	s.scrollTop = top
	s.scrollBottom = bottom
	s.cursorX = 0
	if s.originMode {
		s.cursorY = top
	} else {
		s.cursorY = 0
	}
}

// ClearScreen clears the whole screen.
func (s *Screen) ClearScreen() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, line := range s.lines {
		line.clear()
	}
}

// ClearScreenAbove clears from the top of the screen through the cursor.
func (s *Screen) ClearScreenAbove() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for y := 0; y < s.cursorY; y++ {
		s.lines[y].clear()
	}
	s.lines[s.cursorY].clearRange(0, s.cursorX+1)
}

// ClearScreenBelow clears from the cursor through the bottom of the
// screen.
func (s *Screen) ClearScreenBelow() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines[s.cursorY].clearRange(s.cursorX, s.width)
	for y := s.cursorY + 1; y < s.height; y++ {
		s.lines[y].clear()
	}
}

// ClearLine clears the cursor's line.
func (s *Screen) ClearLine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines[s.cursorY].clear()
}

// ClearLineLeft clears from the start of the line through the cursor.
func (s *Screen) ClearLineLeft() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines[s.cursorY].clearRange(0, s.cursorX+1)
}

// ClearLineRight clears from the cursor to the end of the line.
func (s *Screen) ClearLineRight() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines[s.cursorY].clearRange(s.cursorX, s.width)
}

// InsertLines inserts n blank lines at the cursor, pushing lines below
// it down within the scroll region.
func (s *Screen) InsertLines(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cursorY < s.scrollTop || s.cursorY > s.scrollBottom {
		return
	}
	savedTop := s.scrollTop
	s.scrollTop = s.cursorY
	s.scrollDown(n)
	s.scrollTop = savedTop
}

// DeleteLines removes n lines at the cursor, pulling lines below it up
// within the scroll region.
func (s *Screen) DeleteLines(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cursorY < s.scrollTop || s.cursorY > s.scrollBottom {
		return
	}
	savedTop := s.scrollTop
	s.scrollTop = s.cursorY
	s.scrollUp(n)
	s.scrollTop = savedTop
}

// InsertChars inserts n blank cells at the cursor, shifting the rest of
// the line right.
func (s *Screen) InsertChars(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n <= 0 || s.cursorX >= s.width {
		return
	}
	if avail := s.width - s.cursorX; n > avail {
		n = avail
	}
	line := s.lines[s.cursorY]
	for x := s.width - 1; x >= s.cursorX+n; x-- {
		line.Cells[x] = line.Cells[x-n]
	}
	line.clearRange(s.cursorX, s.cursorX+n)
}

// DeleteChars removes n cells at the cursor, shifting the rest of the
// line left.
func (s *Screen) DeleteChars(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n <= 0 || s.cursorX >= s.width {
		return
	}
	if avail := s.width - s.cursorX; n > avail {
		n = avail
	}
	line := s.lines[s.cursorY]
	for x := s.cursorX; x < s.width-n; x++ {
		line.Cells[x] = line.Cells[x+n]
	}
	line.clearRange(s.width-n, s.width)
}

// EraseChars blanks n cells starting at the cursor without shifting.
func (s *Screen) EraseChars(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines[s.cursorY].clearRange(s.cursorX, s.cursorX+n)
}

// SetForeground sets the pen foreground color.
func (s *Screen) SetForeground(c Color) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fg = c
}

// SetBackground sets the pen background color.
func (s *Screen) SetBackground(c Color) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bg = c
}

// AddAttr adds attributes to the pen.
func (s *Screen) AddAttr(attr Attr) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attrs |= attr
}

// RemoveAttr removes attributes from the pen.
func (s *Screen) RemoveAttr(attr Attr) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attrs &^= attr
}

// ResetAttrs resets the pen to defaults.
func (s *Screen) ResetAttrs() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fg = Color{}
	s.bg = Color{}
	s.attrs = AttrNone
}

// SaveCursor saves the cursor position and pen state.
func (s *Screen) SaveCursor() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.savedX, s.savedY = s.cursorX, s.cursorY
	s.savedFg, s.savedBg = s.fg, s.bg
	s.savedAttrs = s.attrs
}

// RestoreCursor restores the saved cursor position and pen state.
func (s *Screen) RestoreCursor() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursorX, s.cursorY = s.savedX, s.savedY
	s.fg, s.bg = s.savedFg, s.savedBg
	s.attrs = s.savedAttrs
}

// SetOriginMode sets DECOM origin mode.
func (s *Screen) SetOriginMode(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.originMode = enabled
}

// SetAutoWrap sets DECAWM auto-wrap mode.
func (s *Screen) SetAutoWrap(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.autoWrap = enabled
}

// Resize changes the screen dimensions, preserving what fits.
func (s *Screen) Resize(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if width < 1 || height < 1 {
		return
	}

	resized := make([]*Line, height)
	for y := range resized {
		resized[y] = newLine(width)
		if y < len(s.lines) {
			old := s.lines[y]
			copy(resized[y].Cells, old.Cells)
			resized[y].Wrapped = old.Wrapped
			resized[y].Segments = old.Segments
		}
	}

	s.lines = resized
	s.width = width
	s.height = height
	s.scrollTop = 0
	s.scrollBottom = height - 1

	if s.cursorX >= width {
		s.cursorX = width - 1
	}
	if s.cursorY >= height {
		s.cursorY = height - 1
	}
	if s.savedX >= width {
		s.savedX = width - 1
	}
	if s.savedY >= height {
		s.savedY = height - 1
	}
}

// Reset restores the screen to its initial state. Scrollback and the
// absolute row base are preserved.
func (s *Screen) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, line := range s.lines {
		line.clear()
	}
	s.cursorX, s.cursorY = 0, 0
	s.cursorVisible = true
	s.cursorShape = semantic.CursorBlock
	s.scrollTop = 0
	s.scrollBottom = s.height - 1
	s.fg, s.bg = Color{}, Color{}
	s.attrs = AttrNone
	s.originMode = false
	s.autoWrap = true
}

// LineText returns the rendered text of the screen line at y, trailing
// whitespace removed.
func (s *Screen) LineText(y int) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if y < 0 || y >= s.height {
		return ""
	}
	return s.lines[y].text()
}

// Text returns the visible screen as newline-joined text. Intended for
// tests and diagnostics.
func (s *Screen) Text() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	parts := make([]string, s.height)
	for y, line := range s.lines {
		parts[y] = line.text()
	}
	return strings.Join(parts, "\n")
}
