package graph

import (
	"context"
	"maps"
	"sync"

	"github.com/c360studio/semspore/vocabulary/governance"
)

const rdfType = governance.RDFType

// MemoryStore is an in-memory Store indexed by subject.
type MemoryStore struct {
	mu         sync.RWMutex
	triples    map[Triple]struct{}
	bySubject  map[Term]map[Triple]struct{}
	namespaces map[string]string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		triples:    make(map[Triple]struct{}),
		bySubject:  make(map[Term]map[Triple]struct{}),
		namespaces: make(map[string]string),
	}
}

// Has implements Store.
func (m *MemoryStore) Has(_ context.Context, t Triple) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.triples[t]
	return ok, nil
}

// Add implements Store. Either every triple is added or none is.
func (m *MemoryStore) Add(_ context.Context, triples ...Triple) error {
	for _, t := range triples {
		if err := ValidateTriple(t); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range triples {
		m.triples[t] = struct{}{}
		idx, ok := m.bySubject[t.Subject]
		if !ok {
			idx = make(map[Triple]struct{})
			m.bySubject[t.Subject] = idx
		}
		idx[t] = struct{}{}
	}
	return nil
}

// Remove implements Store.
func (m *MemoryStore) Remove(_ context.Context, t Triple) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeLocked(t)
	return nil
}

func (m *MemoryStore) removeLocked(t Triple) {
	delete(m.triples, t)
	if idx, ok := m.bySubject[t.Subject]; ok {
		delete(idx, t)
		if len(idx) == 0 {
			delete(m.bySubject, t.Subject)
		}
	}
}

// RemoveSubject implements Store.
func (m *MemoryStore) RemoveSubject(_ context.Context, subject Term) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := m.bySubject[subject]
	n := len(idx)
	for t := range idx {
		delete(m.triples, t)
	}
	delete(m.bySubject, subject)
	return n, nil
}

// Match implements Store.
func (m *MemoryStore) Match(_ context.Context, s, p, o Term) ([]Triple, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	candidates := m.triples
	if !s.IsZero() {
		candidates = m.bySubject[s]
	}
	var out []Triple
	for t := range candidates {
		if t.Matches(s, p, o) {
			out = append(out, t)
		}
	}
	SortTriples(out)
	return out, nil
}

// Namespaces implements Store.
func (m *MemoryStore) Namespaces(_ context.Context) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return maps.Clone(m.namespaces), nil
}

// Bind implements Store.
func (m *MemoryStore) Bind(_ context.Context, prefix, iri string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.namespaces[prefix] = iri
	return nil
}

// Len implements Store.
func (m *MemoryStore) Len(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.triples), nil
}
