package terminal

import (
	"sync"

	"github.com/dshills/termmark/internal/event"
)

// Manager owns the set of live terminal sessions.
type Manager struct {
	mu        sync.RWMutex
	terminals map[string]*Terminal
	bus       *event.Bus
}

// NewManager creates a session manager publishing on the given bus.
func NewManager(bus *event.Bus) *Manager {
	return &Manager{
		terminals: make(map[string]*Terminal),
		bus:       bus,
	}
}

// Create starts a new shell session and registers it.
func (m *Manager) Create(opts Options) (*Terminal, error) {
	t := New(m.bus, opts)
	if err := t.Start(opts); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.terminals[t.ID()] = t
	m.mu.Unlock()
	return t, nil
}

// Get returns the session with the given ID.
func (m *Manager) Get(id string) (*Terminal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.terminals[id]
	if !ok {
		return nil, ErrTerminalNotFound
	}
	return t, nil
}

// List returns all registered sessions.
func (m *Manager) List() []*Terminal {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Terminal, 0, len(m.terminals))
	for _, t := range m.terminals {
		out = append(out, t)
	}
	return out
}

// Close terminates and removes one session.
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	t, ok := m.terminals[id]
	delete(m.terminals, id)
	m.mu.Unlock()

	if !ok {
		return ErrTerminalNotFound
	}
	return t.Close()
}

// CloseAll terminates every session. The first error is returned.
func (m *Manager) CloseAll() error {
	m.mu.Lock()
	terminals := make([]*Terminal, 0, len(m.terminals))
	for _, t := range m.terminals {
		terminals = append(terminals, t)
	}
	m.terminals = make(map[string]*Terminal)
	m.mu.Unlock()

	var first error
	for _, t := range terminals {
		if err := t.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
