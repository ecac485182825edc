package ui

import (
	"strconv"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/termmark/internal/event"
	"github.com/dshills/termmark/internal/semantic"
	"github.com/dshills/termmark/internal/terminal"
)

// Logger is the subset of the application logger the view needs.
type Logger interface {
	Info(msg string, fields ...any)
	Error(msg string, fields ...any)
}

// statusDuration is how long a transient status message stays visible.
const statusDuration = 2 * time.Second

// Options configures a View.
type Options struct {
	// CopyOnCommandFinish copies every finished command's output to the
	// clipboard without waiting for Ctrl+].
	CopyOnCommandFinish bool

	// Logger defaults to silent.
	Logger Logger
}

// View renders one terminal session and owns the tcell event loop.
type View struct {
	screen tcell.Screen
	term   *terminal.Terminal
	bus    *event.Bus
	log    Logger
	opts   Options

	mu          sync.Mutex
	status      string
	statusUntil time.Time

	unsubs   []func()
	quit     chan struct{}
	stopOnce sync.Once
}

// New creates a view for the given session.
func New(term *terminal.Terminal, bus *event.Bus, opts Options) (*View, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return NewWithScreen(screen, term, bus, opts), nil
}

// NewWithScreen creates a view on an existing tcell screen. Tests use
// it with tcell's simulation screen.
func NewWithScreen(screen tcell.Screen, term *terminal.Terminal, bus *event.Bus, opts Options) *View {
	return &View{
		screen: screen,
		term:   term,
		bus:    bus,
		log:    opts.Logger,
		opts:   opts,
		quit:   make(chan struct{}),
	}
}

// Run initializes the screen and blocks in the event loop until Stop.
func (v *View) Run() error {
	if err := v.screen.Init(); err != nil {
		return err
	}
	defer v.screen.Fini()

	v.subscribe()
	defer v.unsubscribe()

	if cols, rows := v.screen.Size(); rows > 1 {
		// Bottom row is the status line.
		v.term.Resize(cols, rows-1)
	}

	for {
		v.draw()

		select {
		case <-v.quit:
			return nil
		default:
		}

		switch ev := v.screen.PollEvent().(type) {
		case *tcell.EventKey:
			if v.handleKey(ev) {
				return nil
			}
		case *tcell.EventResize:
			cols, rows := ev.Size()
			if rows > 1 {
				v.term.Resize(cols, rows-1)
			}
			v.screen.Sync()
		case *tcell.EventPaste:
			// Bracketed paste markers pass through to the shell.
			if ev.Start() {
				v.term.Write([]byte("\x1b[200~"))
			} else {
				v.term.Write([]byte("\x1b[201~"))
			}
		case *tcell.EventInterrupt:
			// Posted by bus handlers to request a redraw.
		case nil:
			return nil
		}
	}
}

// Stop ends the event loop from another goroutine.
func (v *View) Stop() {
	v.stopOnce.Do(func() {
		close(v.quit)
		v.screen.PostEvent(tcell.NewEventInterrupt(nil))
	})
}

func (v *View) subscribe() {
	redraw := func(event.Event) {
		v.screen.PostEvent(tcell.NewEventInterrupt(nil))
	}
	v.unsubs = append(v.unsubs,
		v.bus.Subscribe(terminal.TopicOutput, redraw),
		v.bus.Subscribe(terminal.TopicProgress, redraw),
		v.bus.Subscribe(terminal.TopicClipboard, func(ev event.Event) {
			// OSC 52 from the shell lands on the system clipboard.
			v.screen.SetClipboard([]byte(ev.Get("data")))
		}),
	)

	if v.opts.CopyOnCommandFinish {
		v.unsubs = append(v.unsubs,
			v.bus.Subscribe(terminal.TopicCommandFinished, func(ev event.Event) {
				if ev.GetBool("has_output") {
					v.screen.SetClipboard([]byte(ev.Get("output")))
				}
			}),
		)
	}
}

func (v *View) unsubscribe() {
	for _, unsub := range v.unsubs {
		unsub()
	}
	v.unsubs = nil
}

// handleKey processes one key event, returning true to quit.
func (v *View) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyCtrlRightSq:
		v.copyLastOutput()
		return false
	case tcell.KeyCtrlQ:
		return true
	}

	if data := keyToBytes(ev); data != nil {
		if _, err := v.term.Write(data); err != nil {
			v.logError("input write failed", "error", err.Error())
			return true
		}
	}
	return false
}

// copyLastOutput puts the most recent command's output on the system
// clipboard.
func (v *View) copyLastOutput() {
	output, ok := v.term.LastOutput()
	if !ok {
		v.setStatus("no command output to copy")
		return
	}
	v.screen.SetClipboard([]byte(output))
	v.setStatus("copied last command output")
	v.logInfo("copied last command output", "bytes", len(output))
}

func (v *View) logInfo(msg string, fields ...any) {
	if v.log != nil {
		v.log.Info(msg, fields...)
	}
}

func (v *View) logError(msg string, fields ...any) {
	if v.log != nil {
		v.log.Error(msg, fields...)
	}
}

func (v *View) setStatus(msg string) {
	v.mu.Lock()
	v.status = msg
	v.statusUntil = time.Now().Add(statusDuration)
	v.mu.Unlock()
}

func (v *View) currentStatus() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	if time.Now().After(v.statusUntil) {
		return ""
	}
	return v.status
}

func (v *View) draw() {
	termScreen := v.term.Screen()
	cols, rows := v.screen.Size()

	// Visible rows come from the snapshot so segment overlays line up.
	snap := termScreen.Snapshot()
	segsByRow := make(map[int][]int)
	for i := range snap {
		if snap[i].Row >= 0 {
			segsByRow[snap[i].Row] = append(segsByRow[snap[i].Row], i)
		}
	}

	for y := 0; y < rows-1 && y < termScreen.Height(); y++ {
		for x := 0; x < cols && x < termScreen.Width(); x++ {
			cell := termScreen.Cell(x, y)
			style := convertStyle(cell)
			for _, i := range segsByRow[y] {
				style = overlaySegments(style, snap[i].Segments, x)
			}
			v.screen.SetContent(x, y, cell.Rune, nil, style)
		}
	}

	v.drawStatusLine(cols, rows-1)

	if termScreen.CursorVisible() {
		x, y := termScreen.CursorPos()
		v.screen.ShowCursor(x, y)
		v.screen.SetCursorStyle(cursorStyle(termScreen.CursorShape()))
	} else {
		v.screen.HideCursor()
	}

	v.screen.Show()
}

// drawStatusLine renders the bottom row: transient messages, progress,
// and the session title.
func (v *View) drawStatusLine(cols, y int) {
	if y < 0 {
		return
	}

	style := tcell.StyleDefault.Reverse(true)
	text := v.currentStatus()
	if text == "" {
		text = v.term.Title()
	}
	if state, percent := v.term.Progress(); state != semantic.ProgressHidden {
		text += progressSuffix(state.String(), percent)
	}

	runes := []rune(text)
	for x := 0; x < cols; x++ {
		r := ' '
		if x < len(runes) {
			r = runes[x]
		}
		v.screen.SetContent(x, y, r, nil, style)
	}
}

func progressSuffix(state string, percent int) string {
	if state == "indeterminate" {
		return "  [working...]"
	}
	return "  [" + state + " " + strconv.Itoa(percent) + "%]"
}
