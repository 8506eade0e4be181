package history

import "sync"

// Memory is an in-process History backed by a slice of entries. It is
// the reference implementation used in tests, CLI tooling and headless
// environments where no browser history exists.
type Memory struct {
	mu        sync.Mutex
	entries   []string
	index     int
	listeners map[int]Listener
	nextID    int
}

// NewMemory creates a memory history positioned at the given initial
// entry. An empty initial path defaults to root.
func NewMemory(initial string) *Memory {
	if initial == "" {
		initial = "/"
	}
	return &Memory{
		entries:   []string{initial},
		listeners: make(map[int]Listener),
	}
}

// Location returns the full path of the current entry.
func (m *Memory) Location() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries[m.index]
}

// Push appends a new entry, truncating any forward entries.
func (m *Memory) Push(fullPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries[:m.index+1], fullPath)
	m.index = len(m.entries) - 1
	return nil
}

// Replace swaps the current entry in place.
func (m *Memory) Replace(fullPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[m.index] = fullPath
	return nil
}

// Go moves delta entries and notifies listeners with the resulting
// entry. A delta that lands outside the stack is clamped.
func (m *Memory) Go(delta int) {
	m.mu.Lock()
	target := m.index + delta
	if target < 0 {
		target = 0
	}
	if target >= len(m.entries) {
		target = len(m.entries) - 1
	}
	moved := target != m.index
	m.index = target
	current := m.entries[m.index]
	var fns []Listener
	for _, fn := range m.listeners {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	if !moved {
		return
	}
	for _, fn := range fns {
		fn(current)
	}
}

// Listen registers a traversal listener.
func (m *Memory) Listen(fn Listener) (remove func()) {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}
}

// Len reports the number of entries in the stack.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
