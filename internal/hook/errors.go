package hook

import "errors"

var (
	// ErrRunnerClosed is returned when using a closed runner.
	ErrRunnerClosed = errors.New("hook runner closed")

	// ErrQueueFull indicates the hook queue was saturated and an event
	// was dropped.
	ErrQueueFull = errors.New("hook queue full")
)
