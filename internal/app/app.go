// Package app wires the terminal engine, configuration, hooks, and UI
// into a running application.
package app

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dshills/termmark/internal/config"
	"github.com/dshills/termmark/internal/event"
	"github.com/dshills/termmark/internal/hook"
	"github.com/dshills/termmark/internal/terminal"
)

// UI is the front-end the app drives. Run blocks until the UI exits;
// Stop requests it to exit from another goroutine.
type UI interface {
	Run() error
	Stop()
}

// Options configures a new App.
type Options struct {
	// Config is the loaded configuration.
	Config config.Config

	// ConfigPath enables live reload when non-empty.
	ConfigPath string

	// Logger defaults to NullLogger.
	Logger *Logger

	// Shell overrides the configured shell.
	Shell string
}

// App owns the application's moving parts and their shutdown order.
type App struct {
	cfg  config.Config
	log  *Logger
	bus  *event.Bus
	mgr  *terminal.Manager
	term *terminal.Terminal

	hooks     *hook.Runner
	watcher   *config.Watcher
	ui        UI
	uiFactory func(*terminal.Terminal, *event.Bus) (UI, error)

	shutdownOnce sync.Once
	shell        string
	configPath   string
}

// New creates an app. Nothing is started until Run.
func New(opts Options) *App {
	log := opts.Logger
	if log == nil {
		log = NullLogger
	}

	bus := event.NewBus()
	bus.SetPanicHandler(func(ev event.Event, recovered any) {
		log.Error("event handler panicked", "topic", string(ev.Topic), "panic", recovered)
	})

	return &App{
		cfg:        opts.Config,
		log:        log,
		bus:        bus,
		mgr:        terminal.NewManager(bus),
		shell:      opts.Shell,
		configPath: opts.ConfigPath,
	}
}

// Bus returns the application event bus.
func (a *App) Bus() *event.Bus { return a.bus }

// Terminal returns the active session, or nil before Run.
func (a *App) Terminal() *terminal.Terminal { return a.term }

// SetUIFactory installs the front-end constructor. It runs inside Run,
// once the session exists. Without a factory the app runs headless.
func (a *App) SetUIFactory(fn func(*terminal.Terminal, *event.Bus) (UI, error)) {
	a.uiFactory = fn
}

// Run starts the shell session and blocks until the UI exits, the
// shell terminates, or the context is cancelled.
func (a *App) Run(ctx context.Context) error {
	shell := a.shell
	if shell == "" {
		shell = a.cfg.Terminal.Shell
	}

	term, err := a.mgr.Create(terminal.Options{
		Shell:      shell,
		Scrollback: a.cfg.Terminal.Scrollback,
	})
	if err != nil {
		return err
	}
	a.term = term
	a.log.Info("session started", "id", term.ID())

	if a.uiFactory != nil {
		ui, err := a.uiFactory(term, a.bus)
		if err != nil {
			a.log.Error("ui unavailable, running headless", "error", err.Error())
		} else {
			a.ui = ui
		}
	}

	if a.cfg.Hooks.Enabled {
		hooks, err := hook.NewRunner(a.cfg.Hooks.Dir, a.bus, a.log.With("component", "hooks"))
		if err != nil {
			a.log.Error("hook runner failed", "error", err.Error())
		} else {
			a.hooks = hooks
		}
	}

	if a.configPath != "" {
		watcher, err := config.NewWatcher(a.configPath, a.cfg, a.bus)
		if err != nil {
			a.log.Error("config watcher failed", "error", err.Error())
		} else {
			a.watcher = watcher
			watcher.SetErrorHandler(func(err error) {
				a.log.Error("config reload failed", "error", err.Error())
			})
			a.bus.Subscribe(config.TopicReloaded, func(ev event.Event) {
				a.log.SetLevel(ParseLogLevel(ev.Get("level")))
				a.log.Info("configuration reloaded")
			})
		}
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)

	stop := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
		case sig := <-signals:
			a.log.Info("signal received", "signal", sig.String())
		case <-term.Done():
			a.log.Info("shell exited")
		case <-stop:
			return
		}
		if a.ui != nil {
			a.ui.Stop()
		}
	}()

	var uiErr error
	if a.ui != nil {
		uiErr = a.ui.Run()
	} else {
		select {
		case <-ctx.Done():
		case <-term.Done():
		case <-signals:
		}
	}
	close(stop)

	a.Shutdown()
	return uiErr
}

// Shutdown releases everything in reverse start order. Safe to call
// more than once.
func (a *App) Shutdown() {
	a.shutdownOnce.Do(func() {
		if a.watcher != nil {
			a.watcher.Close()
		}
		if a.hooks != nil {
			a.hooks.Close()
		}
		if err := a.mgr.CloseAll(); err != nil {
			a.log.Error("session close failed", "error", err.Error())
		}
		a.log.Info("shutdown complete")
	})
}
