package history

import "github.com/google/uuid"

type subscriber struct {
	id int
	fn Listener
}

type event struct {
	loc    Location
	action Action
}

// Memory is an in-memory history: a stack of entries and a cursor, the way a
// browser tab keeps back/forward state. It is not safe for concurrent use;
// the owner serializes calls.
type Memory struct {
	entries []Location
	index   int

	subs   []subscriber
	nextID int

	// queued events raised from inside a listener
	pending    []event
	delivering bool

	newKey func() string
}

// NewMemory returns a history positioned at initialPath.
func NewMemory(initialPath string) *Memory {
	m := &Memory{newKey: uuid.NewString}
	loc := ParsePath(initialPath)
	loc.Key = m.newKey()
	m.entries = []Location{loc}
	return m
}

// Current returns the location under the cursor.
func (m *Memory) Current() Location {
	return m.entries[m.index]
}

// Len reports how many entries the history holds.
func (m *Memory) Len() int {
	return len(m.entries)
}

// Index reports the cursor position.
func (m *Memory) Index() int {
	return m.index
}

// Subscribe registers l for navigation events.
func (m *Memory) Subscribe(l Listener) func() {
	if l == nil {
		return func() {}
	}
	m.nextID++
	id := m.nextID
	m.subs = append(m.subs, subscriber{id: id, fn: l})

	released := false
	return func() {
		if released {
			return
		}
		released = true
		m.unsubscribe(id)
	}
}

// Push adds path after the cursor, dropping any forward entries.
func (m *Memory) Push(path string) {
	loc := m.locationFor(path)
	m.entries = append(m.entries[:m.index+1], loc)
	m.index++
	m.notify(loc, ActionPush)
}

// Replace overwrites the entry under the cursor.
func (m *Memory) Replace(path string) {
	loc := m.locationFor(path)
	m.entries[m.index] = loc
	m.notify(loc, ActionReplace)
}

// Go moves the cursor by delta. Moves outside the stack are ignored and
// report false.
func (m *Memory) Go(delta int) bool {
	target := m.index + delta
	if delta == 0 || target < 0 || target >= len(m.entries) {
		return false
	}
	m.index = target
	m.notify(m.entries[target], ActionPop)
	return true
}

// Back is Go(-1).
func (m *Memory) Back() bool { return m.Go(-1) }

// Forward is Go(1).
func (m *Memory) Forward() bool { return m.Go(1) }

func (m *Memory) locationFor(path string) Location {
	loc := ParsePath(path)
	loc.Key = m.newKey()
	return loc
}

func (m *Memory) unsubscribe(id int) {
	for i, s := range m.subs {
		if s.id == id {
			m.subs = append(m.subs[:i:i], m.subs[i+1:]...)
			return
		}
	}
}

// notify delivers the event to a snapshot of the current subscribers. A
// navigation made by a listener is queued behind the event being delivered.
func (m *Memory) notify(loc Location, action Action) {
	m.pending = append(m.pending, event{loc: loc, action: action})
	if m.delivering {
		return
	}
	m.delivering = true
	defer func() {
		m.delivering = false
		m.pending = nil
	}()

	for len(m.pending) > 0 {
		ev := m.pending[0]
		m.pending = m.pending[1:]
		subs := append([]subscriber(nil), m.subs...)
		for _, s := range subs {
			s.fn(ev.loc, ev.action)
		}
	}
}
