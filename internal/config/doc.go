// Package config loads and watches the termmark configuration file.
//
// Configuration is a single TOML file, by default
// ~/.config/termmark/config.toml. A missing file is not an error; every
// field has a default. The Watcher reloads the file when it changes on
// disk and publishes config.reloaded on the event bus, debouncing the
// editor write bursts that save a file several times in quick
// succession.
package config
