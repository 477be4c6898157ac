package graph

import (
	"context"
	"fmt"
	"maps"
)

// Snapshot is a point-in-time copy of a store's triples and bindings.
// The engine never takes snapshots itself; callers that need atomic
// multi-spore application take one before integrating and restore it on
// failure.
type Snapshot struct {
	Triples    []Triple
	Namespaces map[string]string
}

// TakeSnapshot copies the full contents of st.
func TakeSnapshot(ctx context.Context, st Store) (*Snapshot, error) {
	triples, err := st.Match(ctx, Term{}, Term{}, Term{})
	if err != nil {
		return nil, fmt.Errorf("snapshot triples: %w", err)
	}
	ns, err := st.Namespaces(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshot namespaces: %w", err)
	}
	return &Snapshot{Triples: triples, Namespaces: maps.Clone(ns)}, nil
}

// Restore makes st contain exactly the snapshot's triples. Bindings present
// in the snapshot are rebound; bindings added since are left in place.
func (s *Snapshot) Restore(ctx context.Context, st Store) error {
	current, err := st.Match(ctx, Term{}, Term{}, Term{})
	if err != nil {
		return fmt.Errorf("restore: list current triples: %w", err)
	}
	keep := make(map[Triple]struct{}, len(s.Triples))
	for _, t := range s.Triples {
		keep[t] = struct{}{}
	}
	for _, t := range current {
		if _, ok := keep[t]; ok {
			continue
		}
		if err := st.Remove(ctx, t); err != nil {
			return fmt.Errorf("restore: remove %s: %w", t, err)
		}
	}
	if err := st.Add(ctx, s.Triples...); err != nil {
		return fmt.Errorf("restore: add triples: %w", err)
	}
	for prefix, iri := range s.Namespaces {
		if err := st.Bind(ctx, prefix, iri); err != nil {
			return fmt.Errorf("restore: bind %s: %w", prefix, err)
		}
	}
	return nil
}
