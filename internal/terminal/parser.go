package terminal

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/dshills/termmark/internal/semantic"
)

type parserState int

const (
	stateGround parserState = iota
	stateEscape
	stateCSI
	stateOSC
	stateOSCEsc
	stateDCS
	stateDCSEsc
	stateCharset
)

const (
	ctrlBEL = 0x07
	ctrlBS  = 0x08
	ctrlHT  = 0x09
	ctrlLF  = 0x0A
	ctrlVT  = 0x0B
	ctrlFF  = 0x0C
	ctrlCR  = 0x0D
	ctrlESC = 0x1B
)

// maxOSCLen caps OSC payload accumulation so a stream that never
// terminates its sequence cannot grow the buffer without bound.
const maxOSCLen = 1 << 20

// Parser is a VT escape-sequence tokenizer. It mutates a Screen for
// display bytes and hands OSC sequences to a callback, already split
// into numeric command and payload.
type Parser struct {
	screen *Screen
	state  parserState

	params  []int
	private byte
	inter   []byte

	osc  []byte
	utf8 []byte

	// onOSC receives every well-formed OSC sequence. cmd is the numeric
	// selector, payload the text after the first semicolon.
	onOSC func(cmd int, payload string)
}

// NewParser creates a parser writing to the given screen.
func NewParser(screen *Screen) *Parser {
	return &Parser{
		screen: screen,
		params: make([]int, 0, 16),
	}
}

// SetOSCHandler registers the callback for OSC sequences.
func (p *Parser) SetOSCHandler(fn func(cmd int, payload string)) {
	p.onOSC = fn
}

// Parse processes a chunk of terminal output.
func (p *Parser) Parse(data []byte) {
	for _, b := range data {
		p.step(b)
	}
}

func (p *Parser) step(b byte) {
	switch p.state {
	case stateGround:
		p.ground(b)
	case stateEscape:
		p.escape(b)
	case stateCSI:
		p.csi(b)
	case stateOSC:
		p.oscByte(b)
	case stateOSCEsc:
		// ESC inside an OSC string: ESC \ is the terminator, anything
		// else aborts the sequence and is reprocessed.
		if b == '\\' {
			p.dispatchOSC()
			p.state = stateGround
			return
		}
		p.osc = p.osc[:0]
		p.state = stateEscape
		p.escape(b)
	case stateDCS:
		if b == ctrlESC {
			p.state = stateDCSEsc
		} else if b == ctrlBEL {
			p.state = stateGround
		}
	case stateDCSEsc:
		if b == '\\' {
			p.state = stateGround
		} else {
			p.state = stateEscape
			p.escape(b)
		}
	case stateCharset:
		p.state = stateGround
	}
}

func (p *Parser) ground(b byte) {
	switch {
	case b == ctrlESC:
		p.utf8 = p.utf8[:0]
		p.state = stateEscape
	case b < 0x20:
		p.utf8 = p.utf8[:0]
		p.control(b)
	case b < utf8.RuneSelf:
		p.utf8 = p.utf8[:0]
		p.screen.WriteRune(rune(b))
	default:
		p.utf8 = append(p.utf8, b)
		if utf8.FullRune(p.utf8) || len(p.utf8) >= utf8.UTFMax {
			r, _ := utf8.DecodeRune(p.utf8)
			p.screen.WriteRune(r)
			p.utf8 = p.utf8[:0]
		}
	}
}

func (p *Parser) control(b byte) {
	switch b {
	case ctrlBEL:
		// Bell is not rendered.
	case ctrlBS:
		p.screen.MoveCursorRelative(-1, 0)
	case ctrlHT:
		x, y := p.screen.CursorPos()
		next := (x/8 + 1) * 8
		if next >= p.screen.Width() {
			next = p.screen.Width() - 1
		}
		p.screen.MoveCursor(next, y)
	case ctrlLF, ctrlVT, ctrlFF:
		p.screen.LineFeed()
	case ctrlCR:
		p.screen.CarriageReturn()
	}
}

func (p *Parser) escape(b byte) {
	switch b {
	case '[':
		p.params = p.params[:0]
		p.private = 0
		p.inter = p.inter[:0]
		p.state = stateCSI
	case ']':
		p.osc = p.osc[:0]
		p.state = stateOSC
	case 'P':
		p.state = stateDCS
	case 'D':
		p.screen.LineFeed()
		p.state = stateGround
	case 'E':
		p.screen.CarriageReturn()
		p.screen.LineFeed()
		p.state = stateGround
	case 'M':
		p.screen.ReverseLineFeed()
		p.state = stateGround
	case '7':
		p.screen.SaveCursor()
		p.state = stateGround
	case '8':
		p.screen.RestoreCursor()
		p.state = stateGround
	case 'c':
		p.screen.Reset()
		p.state = stateGround
	case '(', ')', '*', '+':
		// Charset designation: the next byte names the charset.
		p.state = stateCharset
	default:
		p.state = stateGround
	}
}

func (p *Parser) csi(b byte) {
	switch {
	case b >= '0' && b <= '9':
		if len(p.params) == 0 {
			p.params = append(p.params, 0)
		}
		p.params[len(p.params)-1] = p.params[len(p.params)-1]*10 + int(b-'0')
	case b == ';':
		if len(p.params) == 0 {
			p.params = append(p.params, 0)
		}
		p.params = append(p.params, 0)
	case b == '?' || b == '>' || b == '<' || b == '=':
		p.private = b
	case b >= 0x20 && b <= 0x2F:
		p.inter = append(p.inter, b)
	case b >= 0x40 && b <= 0x7E:
		p.dispatchCSI(b)
		p.state = stateGround
	default:
		// Unexpected byte aborts the sequence.
		p.state = stateGround
	}
}

// param returns the i-th CSI parameter, or def when absent or zero.
func (p *Parser) param(i, def int) int {
	if i >= len(p.params) || p.params[i] == 0 {
		return def
	}
	return p.params[i]
}

func (p *Parser) dispatchCSI(final byte) {
	s := p.screen

	switch final {
	case 'A':
		s.MoveCursorRelative(0, -p.param(0, 1))
	case 'B', 'e':
		s.MoveCursorRelative(0, p.param(0, 1))
	case 'C', 'a':
		s.MoveCursorRelative(p.param(0, 1), 0)
	case 'D':
		s.MoveCursorRelative(-p.param(0, 1), 0)
	case 'E':
		s.MoveCursorRelative(0, p.param(0, 1))
		s.CarriageReturn()
	case 'F':
		s.MoveCursorRelative(0, -p.param(0, 1))
		s.CarriageReturn()
	case 'G', '`':
		_, y := s.CursorPos()
		s.MoveCursor(p.param(0, 1)-1, y)
	case 'd':
		x, _ := s.CursorPos()
		s.MoveCursor(x, p.param(0, 1)-1)
	case 'H', 'f':
		s.MoveCursor(p.param(1, 1)-1, p.param(0, 1)-1)
	case 'J':
		switch p.param(0, 0) {
		case 0:
			s.ClearScreenBelow()
		case 1:
			s.ClearScreenAbove()
		case 2, 3:
			s.ClearScreen()
		}
	case 'K':
		switch p.param(0, 0) {
		case 0:
			s.ClearLineRight()
		case 1:
			s.ClearLineLeft()
		case 2:
			s.ClearLine()
		}
	case 'L':
		s.InsertLines(p.param(0, 1))
	case 'M':
		s.DeleteLines(p.param(0, 1))
	case '@':
		s.InsertChars(p.param(0, 1))
	case 'P':
		s.DeleteChars(p.param(0, 1))
	case 'X':
		s.EraseChars(p.param(0, 1))
	case 'S':
		s.ScrollUp(p.param(0, 1))
	case 'T':
		s.ScrollDown(p.param(0, 1))
	case 'r':
		s.SetScrollRegion(p.param(0, 1)-1, p.param(1, s.Height())-1)
	case 's':
		s.SaveCursor()
	case 'u':
		s.RestoreCursor()
	case 'h':
		p.setMode(true)
	case 'l':
		p.setMode(false)
	case 'm':
		p.dispatchSGR()
	case 'q':
		if len(p.inter) == 1 && p.inter[0] == ' ' {
			p.setCursorStyle(p.param(0, 0))
		}
	}
}

func (p *Parser) setMode(enabled bool) {
	if p.private != '?' {
		return
	}
	for i := range p.params {
		switch p.params[i] {
		case 6:
			p.screen.SetOriginMode(enabled)
		case 7:
			p.screen.SetAutoWrap(enabled)
		case 25:
			p.screen.SetCursorVisible(enabled)
		}
	}
}

// setCursorStyle handles DECSCUSR; blinking and steady variants of the
// same shape are folded together.
func (p *Parser) setCursorStyle(style int) {
	switch style {
	case 0, 1, 2:
		p.screen.SetCursorShape(semantic.CursorBlock)
	case 3, 4:
		p.screen.SetCursorShape(semantic.CursorUnderline)
	case 5, 6:
		p.screen.SetCursorShape(semantic.CursorBarLeft)
	}
}

func (p *Parser) dispatchSGR() {
	s := p.screen
	params := p.params
	if len(params) == 0 {
		params = []int{0}
	}

	for i := 0; i < len(params); i++ {
		n := params[i]
		switch {
		case n == 0:
			s.ResetAttrs()
		case n == 1:
			s.AddAttr(AttrBold)
		case n == 2:
			s.AddAttr(AttrDim)
		case n == 3:
			s.AddAttr(AttrItalic)
		case n == 4:
			s.AddAttr(AttrUnderline)
		case n == 5:
			s.AddAttr(AttrBlink)
		case n == 7:
			s.AddAttr(AttrReverse)
		case n == 8:
			s.AddAttr(AttrHidden)
		case n == 9:
			s.AddAttr(AttrStrike)
		case n == 22:
			s.RemoveAttr(AttrBold | AttrDim)
		case n == 23:
			s.RemoveAttr(AttrItalic)
		case n == 24:
			s.RemoveAttr(AttrUnderline)
		case n == 25:
			s.RemoveAttr(AttrBlink)
		case n == 27:
			s.RemoveAttr(AttrReverse)
		case n == 28:
			s.RemoveAttr(AttrHidden)
		case n == 29:
			s.RemoveAttr(AttrStrike)
		case n >= 30 && n <= 37:
			s.SetForeground(IndexedColor(uint8(n - 30)))
		case n == 38:
			c, skip := extendedColor(params[i+1:])
			if skip == 0 {
				return
			}
			s.SetForeground(c)
			i += skip
		case n == 39:
			s.SetForeground(Color{})
		case n >= 40 && n <= 47:
			s.SetBackground(IndexedColor(uint8(n - 40)))
		case n == 48:
			c, skip := extendedColor(params[i+1:])
			if skip == 0 {
				return
			}
			s.SetBackground(c)
			i += skip
		case n == 49:
			s.SetBackground(Color{})
		case n >= 90 && n <= 97:
			s.SetForeground(IndexedColor(uint8(n - 90 + 8)))
		case n >= 100 && n <= 107:
			s.SetBackground(IndexedColor(uint8(n - 100 + 8)))
		}
	}
}

// extendedColor decodes the 38/48 color sub-parameters and returns the
// color plus the number of parameters consumed, 0 on malformed input.
func extendedColor(params []int) (Color, int) {
	if len(params) == 0 {
		return Color{}, 0
	}
	switch params[0] {
	case 5:
		if len(params) < 2 {
			return Color{}, 0
		}
		return IndexedColor(uint8(params[1])), 2
	case 2:
		if len(params) < 4 {
			return Color{}, 0
		}
		return RGBColor(uint8(params[1]), uint8(params[2]), uint8(params[3])), 4
	}
	return Color{}, 0
}

func (p *Parser) oscByte(b byte) {
	switch b {
	case ctrlBEL:
		p.dispatchOSC()
		p.state = stateGround
	case ctrlESC:
		p.state = stateOSCEsc
	default:
		if len(p.osc) < maxOSCLen {
			p.osc = append(p.osc, b)
		}
	}
}

// dispatchOSC splits the accumulated OSC string into "cmd;payload" and
// forwards it. Sequences without a numeric selector are dropped.
func (p *Parser) dispatchOSC() {
	raw := string(p.osc)
	p.osc = p.osc[:0]

	if p.onOSC == nil || raw == "" {
		return
	}

	sel, payload, _ := strings.Cut(raw, ";")
	cmd, err := strconv.Atoi(sel)
	if err != nil {
		return
	}
	p.onOSC(cmd, payload)
}
