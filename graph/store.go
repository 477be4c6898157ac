package graph

import (
	"context"
	"errors"
	"slices"
)

// Common store errors.
var (
	// ErrInvalidTriple is returned when a triple has a wildcard or misplaced term.
	ErrInvalidTriple = errors.New("invalid triple")

	// ErrClosed is returned by stores used after Close.
	ErrClosed = errors.New("store closed")
)

// Store is the repository interface over a triple set. Implementations are
// safe for concurrent use per call; there is no isolation across calls.
type Store interface {
	// Has reports whether the exact triple is present.
	Has(ctx context.Context, t Triple) (bool, error)

	// Add inserts triples. Adding a present triple is a no-op.
	Add(ctx context.Context, triples ...Triple) error

	// Remove deletes the exact triple if present.
	Remove(ctx context.Context, t Triple) error

	// RemoveSubject deletes every triple with the given subject and returns
	// how many were removed.
	RemoveSubject(ctx context.Context, subject Term) (int, error)

	// Match returns the triples matching the pattern in a deterministic
	// order. Zero terms are wildcards.
	Match(ctx context.Context, s, p, o Term) ([]Triple, error)

	// Namespaces returns the prefix to IRI bindings.
	Namespaces(ctx context.Context) (map[string]string, error)

	// Bind records a prefix binding, replacing any previous binding of prefix.
	Bind(ctx context.Context, prefix, iri string) error

	// Len returns the number of triples.
	Len(ctx context.Context) (int, error)
}

// ValidateTriple checks that t can be stored.
func ValidateTriple(t Triple) error {
	switch {
	case t.Subject.Kind != KindIRI && t.Subject.Kind != KindBlank:
		return errors.Join(ErrInvalidTriple, errors.New("subject must be an IRI or blank node"))
	case t.Predicate.Kind != KindIRI:
		return errors.Join(ErrInvalidTriple, errors.New("predicate must be an IRI"))
	case t.Object.IsZero():
		return errors.Join(ErrInvalidTriple, errors.New("object is required"))
	}
	return nil
}

// Objects returns the objects of every (s, p, ?) triple.
func Objects(ctx context.Context, st Store, s, p Term) ([]Term, error) {
	triples, err := st.Match(ctx, s, p, Term{})
	if err != nil {
		return nil, err
	}
	out := make([]Term, 0, len(triples))
	for _, t := range triples {
		out = append(out, t.Object)
	}
	return out, nil
}

// Object returns the first object of (s, p, ?) and whether one exists.
func Object(ctx context.Context, st Store, s, p Term) (Term, bool, error) {
	objs, err := Objects(ctx, st, s, p)
	if err != nil || len(objs) == 0 {
		return Term{}, false, err
	}
	return objs[0], true, nil
}

// Subjects returns the distinct subjects of every (?, p, o) triple.
func Subjects(ctx context.Context, st Store, p, o Term) ([]Term, error) {
	triples, err := st.Match(ctx, Term{}, p, o)
	if err != nil {
		return nil, err
	}
	out := make([]Term, 0, len(triples))
	for _, t := range triples {
		if !slices.Contains(out, t.Subject) {
			out = append(out, t.Subject)
		}
	}
	return out, nil
}

// HasAny reports whether (s, p, ?) has at least one value.
func HasAny(ctx context.Context, st Store, s, p Term) (bool, error) {
	_, ok, err := Object(ctx, st, s, p)
	return ok, err
}

// IsA reports whether (s, rdf:type, class) is present.
func IsA(ctx context.Context, st Store, s Term, class string) (bool, error) {
	return st.Has(ctx, NewTriple(s, IRI(rdfType), IRI(class)))
}
