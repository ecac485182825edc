// Package event provides a lightweight publish/subscribe bus connecting
// the terminal engine to the UI and hook layers.
//
// # Topics
//
// Topics use dot-notation to create hierarchical namespaces:
//
//	terminal.command.finished
//	terminal.progress
//	config.reloaded
//
// Subscription patterns may use wildcards: "*" matches exactly one
// segment, "**" matches zero or more segments. "terminal.*" matches
// terminal.progress but not terminal.command.finished; "terminal.**"
// matches both.
//
// # Delivery
//
// Delivery is synchronous: Publish invokes every matching handler on
// the publishing goroutine before returning. Handlers that panic are
// recovered and counted; they never take down the publisher.
package event
