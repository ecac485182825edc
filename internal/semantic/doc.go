// Package semantic implements the shell-integration semantic layer for
// Termmark terminals.
//
// Shells and terminal-aware programs emit out-of-band OSC escape sequences
// to annotate on-screen text with meaning: prompt boundaries, typed
// commands, command completion and exit status, hyperlinks, clipboard
// transfers and progress reports. This package decodes those sequences and
// reconstructs higher-level answers (such as "what did the last command
// print?") from the resulting annotations.
//
// # Architecture
//
// The package has two components:
//
//   - Decoder: a per-session state machine that turns one OSC sequence
//     (command number, payload, cursor position, terminal width) into an
//     ordered list of Actions. The decoder owns small mutable state: the
//     current prompt identifier, the pending segment start column, and at
//     most one open hyperlink.
//
//   - LastOutput: a pure function over an ordered snapshot of annotated
//     lines that finds and reconstructs the text output of the most
//     recently completed command.
//
// The decoder does not parse wire-level ESC ] ... ST framing and never
// mutates screen state. The VT tokenizer and the screen engine live in
// internal/terminal; they feed the decoder and apply the Actions it emits.
//
// # Failure policy
//
// Every malformed or unrecognized input degrades to "no action" rather
// than an error. The decoder processes untrusted text from arbitrary
// remote programs and must never abort the owning session on garbage
// input. There is no logging or error channel in this package; callers
// that need diagnostics log at the action-application layer.
//
// # Thread Safety
//
// Decoder is not safe for concurrent use: it must be driven by exactly one
// goroutine per terminal session, in strict byte-stream order. LastOutput
// is pure and safe to call from any number of goroutines, provided the
// snapshot it is given is not mutated during the scan.
package semantic
