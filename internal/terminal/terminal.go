package terminal

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/dshills/termmark/internal/event"
	"github.com/dshills/termmark/internal/semantic"
)

// Topics published by the terminal engine.
const (
	TopicOutput          event.Topic = "terminal.output"
	TopicTitle           event.Topic = "terminal.title"
	TopicCwd             event.Topic = "terminal.cwd"
	TopicCommandStarted  event.Topic = "terminal.command.started"
	TopicCommandFinished event.Topic = "terminal.command.finished"
	TopicClipboard       event.Topic = "terminal.clipboard"
	TopicProgress        event.Topic = "terminal.progress"
	TopicExited          event.Topic = "terminal.exited"
)

// OSC selectors handled by the terminal itself rather than the semantic
// decoder.
const (
	oscIconAndTitle = 0
	oscTitle        = 2
	oscWorkingDir   = 7
)

// Options configures a terminal session.
type Options struct {
	// Shell is the command to run. Defaults to $SHELL, then /bin/sh.
	Shell string

	// Args are extra arguments for the shell.
	Args []string

	// Dir is the initial working directory.
	Dir string

	// Env is the child environment. Defaults to os.Environ.
	Env []string

	// Cols and Rows are the initial dimensions.
	Cols int
	Rows int

	// Scrollback is the history line limit.
	Scrollback int
}

func (o *Options) fill() {
	if o.Shell == "" {
		o.Shell = os.Getenv("SHELL")
	}
	if o.Shell == "" {
		o.Shell = "/bin/sh"
	}
	if o.Cols < 1 {
		o.Cols = 80
	}
	if o.Rows < 1 {
		o.Rows = 24
	}
	if o.Scrollback == 0 {
		o.Scrollback = 10000
	}
}

// Terminal is a single shell session: a PTY-attached process whose
// output is parsed into a screen buffer and decoded into semantic
// state. Events are published on the bus as the session progresses.
type Terminal struct {
	id     string
	screen *Screen
	parser *Parser
	bus    *event.Bus

	mu       sync.Mutex
	decoder  *semantic.Decoder
	pty      PTY
	running  bool
	title    string
	cwd      string
	progress semantic.ProgressState
	percent  int

	done chan struct{}
}

// New creates a terminal session without starting a process.
func New(bus *event.Bus, opts Options) *Terminal {
	opts.fill()

	screen := NewScreen(opts.Cols, opts.Rows, opts.Scrollback)
	t := &Terminal{
		id:      uuid.NewString(),
		screen:  screen,
		parser:  NewParser(screen),
		bus:     bus,
		decoder: new(semantic.Decoder),
		done:    make(chan struct{}),
	}
	t.parser.SetOSCHandler(t.handleOSC)
	return t
}

// ID returns the session identifier.
func (t *Terminal) ID() string { return t.id }

// Screen returns the session's screen buffer.
func (t *Terminal) Screen() *Screen { return t.screen }

// Title returns the window title set via OSC 0/2.
func (t *Terminal) Title() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.title
}

// WorkingDir returns the directory reported via OSC 7, or "".
func (t *Terminal) WorkingDir() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cwd
}

// Progress returns the progress-bar state reported via OSC 9;4.
func (t *Terminal) Progress() (semantic.ProgressState, int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.progress, t.percent
}

// Start launches the shell process and begins consuming its output.
func (t *Terminal) Start(opts Options) error {
	opts.fill()

	t.mu.Lock()
	if t.running {
		t.mu.Unlock()
		return ErrAlreadyRunning
	}

	cmd := exec.Command(opts.Shell, opts.Args...)
	cmd.Dir = opts.Dir
	cmd.Env = opts.Env
	if cmd.Env == nil {
		cmd.Env = os.Environ()
	}
	cmd.Env = append(cmd.Env, "TERM=xterm-256color")

	pty, err := StartCommand(cmd, t.screen.Width(), t.screen.Height())
	if err != nil {
		t.mu.Unlock()
		return err
	}

	t.pty = pty
	t.running = true
	t.mu.Unlock()

	go t.readLoop(pty)
	return nil
}

func (t *Terminal) readLoop(pty PTY) {
	buf := make([]byte, 4096)
	for {
		n, err := pty.Read(buf)
		if n > 0 {
			t.Feed(buf[:n])
		}
		if err != nil {
			break
		}
	}

	t.mu.Lock()
	t.running = false
	t.mu.Unlock()
	close(t.done)
	t.publish(TopicExited, nil)
}

// Feed processes raw terminal output directly. Start's read loop calls
// it; tests and replay tooling may call it without a PTY.
func (t *Terminal) Feed(data []byte) {
	t.parser.Parse(data)
	t.publish(TopicOutput, nil)
}

// Write sends input bytes (keystrokes) to the shell.
func (t *Terminal) Write(data []byte) (int, error) {
	t.mu.Lock()
	pty := t.pty
	running := t.running
	t.mu.Unlock()

	if !running || pty == nil {
		return 0, ErrNotRunning
	}
	return pty.Write(data)
}

// Resize updates both the screen buffer and the PTY window size.
func (t *Terminal) Resize(cols, rows int) error {
	if cols < 1 || rows < 1 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, cols, rows)
	}

	t.screen.Resize(cols, rows)

	t.mu.Lock()
	pty := t.pty
	t.mu.Unlock()
	if pty != nil {
		return pty.Resize(cols, rows)
	}
	return nil
}

// Running reports whether the shell process is alive.
func (t *Terminal) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// Done returns a channel closed when the shell process exits.
func (t *Terminal) Done() <-chan struct{} { return t.done }

// Close terminates the shell process.
func (t *Terminal) Close() error {
	t.mu.Lock()
	pty := t.pty
	t.pty = nil
	t.mu.Unlock()

	if pty == nil {
		return nil
	}
	return pty.Close()
}

// LastOutput returns the output of the most recent completed command,
// as recorded by shell integration marks. ok is false when no completed
// command is on record or the command produced no output.
func (t *Terminal) LastOutput() (string, bool) {
	return semantic.LastOutput(t.screen.Snapshot())
}

// handleOSC routes OSC sequences: title and working-directory reports
// are terminal state, everything else goes through the semantic
// decoder.
func (t *Terminal) handleOSC(cmd int, payload string) {
	switch cmd {
	case oscIconAndTitle, oscTitle:
		t.mu.Lock()
		t.title = payload
		t.mu.Unlock()
		t.publish(TopicTitle, map[string]any{"title": payload})
	case oscWorkingDir:
		dir := parseFileURL(payload)
		if dir == "" {
			return
		}
		t.mu.Lock()
		t.cwd = dir
		t.mu.Unlock()
		t.publish(TopicCwd, map[string]any{"dir": dir})
	default:
		row, col := t.screen.CursorMark()

		t.mu.Lock()
		actions := t.decoder.Decode(cmd, payload, row, col, t.screen.Width())
		t.mu.Unlock()

		for _, a := range actions {
			t.apply(a)
		}
	}
}

// apply executes one semantic action. The switch is exhaustive over the
// action set.
func (t *Terminal) apply(action semantic.Action) {
	switch a := action.(type) {
	case semantic.AddSegment:
		t.screen.AddSegment(a.Row, semantic.Segment{
			Start:    a.Start,
			End:      a.End,
			Kind:     a.Kind,
			Metadata: a.Metadata,
			PromptID: a.PromptID,
		})
		t.publishSegment(a)

	case semantic.SetCursorShape:
		t.screen.SetCursorShape(a.Shape)

	case semantic.ClipboardCopy:
		t.publish(TopicClipboard, map[string]any{
			"selection": a.Selection,
			"data":      a.Data,
		})

	case semantic.SetProgress:
		t.mu.Lock()
		t.progress = a.State
		t.percent = a.Percent
		t.mu.Unlock()
		t.publish(TopicProgress, map[string]any{
			"state":   a.State.String(),
			"percent": a.Percent,
		})
	}
}

// publishSegment raises command lifecycle events for the segment kinds
// that mark them.
func (t *Terminal) publishSegment(a semantic.AddSegment) {
	switch a.Kind {
	case semantic.SegmentCommandInput:
		t.publish(TopicCommandStarted, map[string]any{
			"prompt_id": a.PromptID,
			"command":   t.screen.TextAt(a.Row, a.Start, a.End),
		})
	case semantic.SegmentCommandFinished:
		output, ok := t.LastOutput()
		t.publish(TopicCommandFinished, map[string]any{
			"prompt_id":  a.PromptID,
			"exit_code":  a.Metadata,
			"output":     output,
			"has_output": ok,
		})
	}
}

func (t *Terminal) publish(topic event.Topic, data map[string]any) {
	if t.bus == nil {
		return
	}
	t.bus.Publish(topic, t.id, data)
}

// parseFileURL extracts the path from an OSC 7 "file://host/path"
// report. Non-file URLs yield "".
func parseFileURL(raw string) string {
	rest, ok := strings.CutPrefix(raw, "file://")
	if !ok {
		return ""
	}
	// Strip the hostname component.
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		return rest[i:]
	}
	return ""
}
