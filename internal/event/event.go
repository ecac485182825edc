package event

import (
	"strings"
	"time"
)

// Topic is a hierarchical event type in dot-notation, such as
// "terminal.command.finished".
type Topic string

// Segments splits the topic on dots.
func (t Topic) Segments() []string {
	if t == "" {
		return nil
	}
	return strings.Split(string(t), ".")
}

// Match reports whether the pattern matches the (wildcard-free) topic.
// "*" in the pattern matches one segment, "**" matches zero or more.
func (t Topic) Match(pattern Topic) bool {
	return matchSegments(pattern.Segments(), t.Segments())
}

func matchSegments(pattern, topic []string) bool {
	if len(pattern) == 0 {
		return len(topic) == 0
	}

	if pattern[0] == "**" {
		// Try consuming zero or more topic segments.
		for i := 0; i <= len(topic); i++ {
			if matchSegments(pattern[1:], topic[i:]) {
				return true
			}
		}
		return false
	}

	if len(topic) == 0 {
		return false
	}
	if pattern[0] != "*" && pattern[0] != topic[0] {
		return false
	}
	return matchSegments(pattern[1:], topic[1:])
}

// Event is a published notification. Events are immutable once created.
type Event struct {
	// Topic is the hierarchical event type.
	Topic Topic

	// Source identifies the publisher, typically a terminal ID.
	Source string

	// Time is when the event was published.
	Time time.Time

	// Data carries the event payload.
	Data map[string]any
}

// Get returns a payload field as a string, or "" when absent or not a
// string.
func (e Event) Get(key string) string {
	s, _ := e.Data[key].(string)
	return s
}

// GetInt returns a payload field as an int, or 0 when absent or not an
// int.
func (e Event) GetInt(key string) int {
	n, _ := e.Data[key].(int)
	return n
}

// GetBool returns a payload field as a bool, or false when absent or
// not a bool.
func (e Event) GetBool(key string) bool {
	b, _ := e.Data[key].(bool)
	return b
}
