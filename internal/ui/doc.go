// Package ui renders a terminal session with tcell and forwards
// keyboard input to the shell.
//
// The view draws the engine's screen buffer cell by cell, overlaying
// semantic segments: hyperlinks are underlined, prompt marks dimmed.
// Ctrl+] copies the last command's output to the system clipboard,
// which is the main user-facing payoff of shell integration. All other
// keys are encoded back to terminal input bytes and written to the PTY.
package ui
