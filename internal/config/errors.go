package config

import "errors"

var (
	// ErrInvalidScrollback indicates a negative scrollback limit.
	ErrInvalidScrollback = errors.New("scrollback must be >= 0")

	// ErrInvalidLogLevel indicates an unrecognized log level name.
	ErrInvalidLogLevel = errors.New("invalid log level")

	// ErrWatcherClosed indicates use of a closed watcher.
	ErrWatcherClosed = errors.New("config watcher closed")
)
