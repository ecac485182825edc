package terminal

import "errors"

// Sentinel errors for the terminal package. Wrapped errors carry the
// underlying cause; callers match with errors.Is.
var (
	// ErrPTYOpen indicates the pseudo-terminal pair could not be allocated.
	ErrPTYOpen = errors.New("failed to open pty")

	// ErrProcessStart indicates the shell process failed to launch.
	ErrProcessStart = errors.New("failed to start process")

	// ErrInvalidSize indicates a resize to non-positive dimensions.
	ErrInvalidSize = errors.New("invalid terminal size")

	// ErrResize indicates the kernel rejected a window size update.
	ErrResize = errors.New("failed to resize pty")

	// ErrNotRunning indicates an operation on a terminal whose process
	// has exited or was never started.
	ErrNotRunning = errors.New("terminal not running")

	// ErrAlreadyRunning indicates Start was called twice.
	ErrAlreadyRunning = errors.New("terminal already running")

	// ErrTerminalNotFound indicates a lookup for an unknown terminal ID.
	ErrTerminalNotFound = errors.New("terminal not found")
)
