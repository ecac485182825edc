package terminal

import (
	"testing"

	"github.com/dshills/termmark/internal/event"
	"github.com/dshills/termmark/internal/semantic"
)

func newTestTerminal() (*Terminal, *event.Bus) {
	bus := event.NewBus()
	t := New(bus, Options{Cols: 40, Rows: 5, Scrollback: 100})
	return t, bus
}

func TestTerminalTitle(t *testing.T) {
	term, _ := newTestTerminal()
	term.Feed([]byte("\x1b]2;vim README.md\x07"))

	if got := term.Title(); got != "vim README.md" {
		t.Errorf("title = %q, want vim README.md", got)
	}
}

func TestTerminalWorkingDir(t *testing.T) {
	term, _ := newTestTerminal()
	term.Feed([]byte("\x1b]7;file://host/home/user/src\x07"))

	if got := term.WorkingDir(); got != "/home/user/src" {
		t.Errorf("cwd = %q, want /home/user/src", got)
	}
}

func TestTerminalWorkingDirRejectsNonFileURL(t *testing.T) {
	term, _ := newTestTerminal()
	term.Feed([]byte("\x1b]7;https://example.com/x\x07"))

	if got := term.WorkingDir(); got != "" {
		t.Errorf("cwd = %q, want empty", got)
	}
}

// feedCommand drives a full prompt/command/output cycle through the
// terminal the way a shell with integration marks would.
func feedCommand(term *Terminal, command, output string) {
	term.Feed([]byte("\x1b]133;A\x07$ \x1b]133;B\x07"))
	term.Feed([]byte(command))
	term.Feed([]byte("\x1b]133;C\x07\r\n"))
	if output != "" {
		term.Feed([]byte(output))
		term.Feed([]byte("\r\n"))
	}
	term.Feed([]byte("\x1b]133;D;0\x07"))
}

func TestTerminalLastOutput(t *testing.T) {
	term, _ := newTestTerminal()
	feedCommand(term, "ls", "file1\r\nfile2")

	got, ok := term.LastOutput()
	if !ok {
		t.Fatal("expected command output")
	}
	if got != "file1\nfile2" {
		t.Errorf("output = %q, want file1\\nfile2", got)
	}
}

func TestTerminalLastOutputEmpty(t *testing.T) {
	term, _ := newTestTerminal()
	feedCommand(term, "true", "")

	if _, ok := term.LastOutput(); ok {
		t.Error("command with no output should report absent")
	}
}

func TestTerminalLastOutputSecondCommandWins(t *testing.T) {
	term, _ := newTestTerminal()
	feedCommand(term, "echo a", "a")
	term.Feed([]byte("\r\n"))
	feedCommand(term, "echo b", "b")

	got, ok := term.LastOutput()
	if !ok {
		t.Fatal("expected command output")
	}
	if got != "b" {
		t.Errorf("output = %q, want b", got)
	}
}

func TestTerminalLastOutputSurvivesScrollback(t *testing.T) {
	term, _ := newTestTerminal()
	// Output tall enough to push the whole command into history.
	feedCommand(term, "seq 8", "1\r\n2\r\n3\r\n4\r\n5\r\n6\r\n7\r\n8")

	got, ok := term.LastOutput()
	if !ok {
		t.Fatal("expected command output")
	}
	if got != "1\n2\n3\n4\n5\n6\n7\n8" {
		t.Errorf("output = %q", got)
	}
}

func TestTerminalCommandEvents(t *testing.T) {
	term, bus := newTestTerminal()

	var started, finished []event.Event
	bus.Subscribe(TopicCommandStarted, func(ev event.Event) { started = append(started, ev) })
	bus.Subscribe(TopicCommandFinished, func(ev event.Event) { finished = append(finished, ev) })

	feedCommand(term, "make test", "ok")

	if len(started) != 1 {
		t.Fatalf("started events = %d, want 1", len(started))
	}
	if got := started[0].Get("command"); got != "make test" {
		t.Errorf("command = %q, want make test", got)
	}

	if len(finished) != 1 {
		t.Fatalf("finished events = %d, want 1", len(finished))
	}
	if got := finished[0].Get("exit_code"); got != "0" {
		t.Errorf("exit code = %q, want 0", got)
	}
	if got := finished[0].Get("output"); got != "ok" {
		t.Errorf("output = %q, want ok", got)
	}
	if !finished[0].GetBool("has_output") {
		t.Error("has_output should be true")
	}
}

func TestTerminalClipboardEvent(t *testing.T) {
	term, bus := newTestTerminal()

	var got event.Event
	bus.Subscribe(TopicClipboard, func(ev event.Event) { got = ev })

	term.Feed([]byte("\x1b]52;c;aGVsbG8=\x07"))

	if got.Get("data") != "hello" {
		t.Errorf("clipboard data = %q, want hello", got.Get("data"))
	}
	if got.Get("selection") != "c" {
		t.Errorf("selection = %q, want c", got.Get("selection"))
	}
}

func TestTerminalProgress(t *testing.T) {
	term, bus := newTestTerminal()

	var events []event.Event
	bus.Subscribe(TopicProgress, func(ev event.Event) { events = append(events, ev) })

	term.Feed([]byte("\x1b]9;4;1;60\x07"))

	state, percent := term.Progress()
	if state != semantic.ProgressDefault {
		t.Errorf("state = %v, want default", state)
	}
	if percent != 60 {
		t.Errorf("percent = %d, want 60", percent)
	}
	if len(events) != 1 {
		t.Fatalf("progress events = %d, want 1", len(events))
	}
	if got := events[0].GetInt("percent"); got != 60 {
		t.Errorf("event percent = %d, want 60", got)
	}
}

func TestTerminalCursorShapeFromOSC(t *testing.T) {
	term, _ := newTestTerminal()
	term.Feed([]byte("\x1b]1337;SetCursorShape=2\x07"))

	if got := term.Screen().CursorShape(); got != semantic.CursorUnderline {
		t.Errorf("shape = %v, want underline", got)
	}
}

func TestTerminalWriteNotRunning(t *testing.T) {
	term, _ := newTestTerminal()
	if _, err := term.Write([]byte("x")); err != ErrNotRunning {
		t.Errorf("err = %v, want ErrNotRunning", err)
	}
}

func TestTerminalResizeInvalid(t *testing.T) {
	term, _ := newTestTerminal()
	if err := term.Resize(0, 10); err == nil {
		t.Error("expected error for zero width")
	}
}

func TestManagerGetMissing(t *testing.T) {
	m := NewManager(event.NewBus())
	if _, err := m.Get("nope"); err != ErrTerminalNotFound {
		t.Errorf("err = %v, want ErrTerminalNotFound", err)
	}
}
