package fqn

import "sync"

// Table interns FQNs process-wide, keyed by their normalized render,
// so that equal FQNs compare by pointer identity. Grounded on the
// mutex-guarded module->name memo map the teacher's link.Resolver uses
// for cross-module global lookups.
type Table struct {
	mu   sync.RWMutex
	byID map[string]*FQN
}

// NewTable creates an empty interning table.
func NewTable() *Table {
	return &Table{byID: make(map[string]*FQN)}
}

// Intern returns the canonical *FQN for f, registering it on first
// use. Two calls with FQNs that Render identically return the same
// pointer.
func (t *Table) Intern(f FQN) *FQN {
	key := f.Render()

	t.mu.RLock()
	if existing, ok := t.byID[key]; ok {
		t.mu.RUnlock()
		return existing
	}
	t.mu.RUnlock()

	t.mu.Lock()
	defer t.mu.Unlock()
	if existing, ok := t.byID[key]; ok {
		return existing
	}
	stored := f
	t.byID[key] = &stored
	return &stored
}

// Lookup returns the interned FQN for a wire-syntax render, if one has
// been interned.
func (t *Table) Lookup(render string) (*FQN, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	f, ok := t.byID[render]
	return f, ok
}

// Len reports how many distinct FQNs are currently interned.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.byID)
}
