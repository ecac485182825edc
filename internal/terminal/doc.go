// Package terminal implements the PTY-backed emulation engine.
//
// A Terminal ties together four pieces: a PTY running the shell, a
// Parser tokenizing the shell's output stream, a Screen holding the
// cell grid plus scrollback, and a semantic decoder turning OSC
// sequences into typed actions. Display sequences mutate the Screen
// directly; OSC sequences are routed through Terminal.handleOSC, which
// keeps title and working-directory reports for itself and hands
// everything else to the decoder.
//
// # Row addressing
//
// Semantic actions target absolute row indexes that never change once
// assigned: the Screen's base counter advances as lines scroll into
// history, so a segment attached to a row stays with that row's text.
// Snapshot converts back to the relative numbering consumers expect,
// with scrollback rows negative and visible rows starting at zero.
//
// # Concurrency
//
// The Screen is internally locked; the PTY read loop runs on its own
// goroutine. Terminal methods are safe for concurrent use.
package terminal
