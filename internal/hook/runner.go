package hook

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/termmark/internal/event"
	"github.com/dshills/termmark/internal/terminal"
)

// Logger is the subset of the application logger the runner needs.
type Logger interface {
	Info(msg string, fields ...any)
	Error(msg string, fields ...any)
}

// queueSize bounds pending hook invocations. Events past the bound are
// dropped rather than blocking the terminal's read loop.
const queueSize = 256

type luaCall func(L *lua.LState) error

// Runner loads Lua hook scripts and dispatches terminal events to the
// callbacks they register.
type Runner struct {
	L     *lua.LState
	queue chan luaCall
	done  chan struct{}

	closed    atomic.Bool
	closeOnce sync.Once

	log Logger

	// Callback registries, touched only on the runner goroutine (and
	// during script loading, before the goroutine starts).
	onCommand   []*lua.LFunction
	onProgress  []*lua.LFunction
	onClipboard []*lua.LFunction

	unsubs  []func()
	dropped atomic.Uint64
}

// NewRunner creates a runner, loads every *.lua script under dir in
// lexical order, and subscribes to terminal events on the bus. A
// missing directory yields a runner with no hooks.
func NewRunner(dir string, bus *event.Bus, log Logger) (*Runner, error) {
	r := &Runner{
		L:     lua.NewState(),
		queue: make(chan luaCall, queueSize),
		done:  make(chan struct{}),
		log:   log,
	}
	r.L.PreloadModule("termmark", r.moduleLoader)

	if err := r.loadScripts(dir); err != nil {
		r.L.Close()
		return nil, err
	}

	go r.loop()

	if bus != nil {
		r.unsubs = append(r.unsubs,
			bus.Subscribe(terminal.TopicCommandFinished, r.busHandler(&r.onCommand)),
			bus.Subscribe(terminal.TopicProgress, r.busHandler(&r.onProgress)),
			bus.Subscribe(terminal.TopicClipboard, r.busHandler(&r.onClipboard)),
		)
	}
	return r, nil
}

// loadScripts runs the hook scripts on the creating goroutine; the
// executor loop has not started yet so the state is ours.
func (r *Runner) loadScripts(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading hooks dir %s: %w", dir, err)
	}

	var scripts []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".lua" {
			continue
		}
		scripts = append(scripts, filepath.Join(dir, e.Name()))
	}
	sort.Strings(scripts)

	for _, script := range scripts {
		if err := r.L.DoFile(script); err != nil {
			r.errorf("hook script failed", "script", script, "error", err.Error())
			continue
		}
		r.infof("hook script loaded", "script", script)
	}
	return nil
}

// moduleLoader implements require("termmark").
func (r *Runner) moduleLoader(L *lua.LState) int {
	mod := L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"on_command":   r.register(&r.onCommand),
		"on_progress":  r.register(&r.onProgress),
		"on_clipboard": r.register(&r.onClipboard),
		"log":          r.luaLog,
	})
	L.Push(mod)
	return 1
}

func (r *Runner) register(into *[]*lua.LFunction) lua.LGFunction {
	return func(L *lua.LState) int {
		fn := L.CheckFunction(1)
		*into = append(*into, fn)
		return 0
	}
}

func (r *Runner) luaLog(L *lua.LState) int {
	msg := L.CheckString(1)
	r.infof("hook: " + msg)
	return 0
}

// busHandler enqueues an event for the callbacks in the given registry.
func (r *Runner) busHandler(registry *[]*lua.LFunction) event.Handler {
	return func(ev event.Event) {
		if r.closed.Load() {
			return
		}
		call := func(L *lua.LState) error {
			table := eventTable(L, ev)
			for _, fn := range *registry {
				L.Push(fn)
				L.Push(table)
				if err := L.PCall(1, 0, nil); err != nil {
					r.errorf("hook callback failed", "topic", string(ev.Topic), "error", err.Error())
				}
			}
			return nil
		}

		select {
		case r.queue <- call:
		default:
			r.dropped.Add(1)
		}
	}
}

// eventTable converts an event payload to a Lua table.
func eventTable(L *lua.LState, ev event.Event) *lua.LTable {
	table := L.NewTable()
	L.SetField(table, "topic", lua.LString(ev.Topic))
	L.SetField(table, "source", lua.LString(ev.Source))
	for k, v := range ev.Data {
		switch val := v.(type) {
		case string:
			L.SetField(table, k, lua.LString(val))
		case int:
			L.SetField(table, k, lua.LNumber(val))
		case bool:
			L.SetField(table, k, lua.LBool(val))
		case float64:
			L.SetField(table, k, lua.LNumber(val))
		}
	}
	return table
}

func (r *Runner) loop() {
	defer r.L.Close()
	for {
		select {
		case <-r.done:
			return
		case call := <-r.queue:
			if err := r.safeCall(call); err != nil {
				r.errorf("hook execution failed", "error", err.Error())
			}
		}
	}
}

func (r *Runner) safeCall(call luaCall) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("hook panic: %v", rec)
		}
	}()
	return call(r.L)
}

// Dropped returns how many events were discarded on a full queue.
func (r *Runner) Dropped() uint64 {
	return r.dropped.Load()
}

// Close stops the runner and releases the Lua state.
func (r *Runner) Close() error {
	if r.closed.Swap(true) {
		return ErrRunnerClosed
	}
	r.closeOnce.Do(func() {
		for _, unsub := range r.unsubs {
			unsub()
		}
		close(r.done)
	})
	return nil
}

func (r *Runner) infof(msg string, fields ...any) {
	if r.log != nil {
		r.log.Info(msg, fields...)
	}
}

func (r *Runner) errorf(msg string, fields ...any) {
	if r.log != nil {
		r.log.Error(msg, fields...)
	}
}
