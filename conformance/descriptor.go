package conformance

import (
	"context"
	"fmt"

	"github.com/c360studio/semspore/graph"
	"github.com/c360studio/semspore/vocabulary/governance"
)

// Descriptor is a model's gov:ModelConformance node.
type Descriptor struct {
	// IRI of the descriptor node (may be a blank node id).
	IRI string
	// Level is empty when the descriptor carries no gov:conformanceLevel.
	Level Level
	// RequirePrefixes and RequireNamespaces default to true.
	RequirePrefixes   bool
	RequireNamespaces bool
}

// LoadDescriptor reads the descriptor linked from model by gov:hasConformance.
// It returns nil when the model has none. A level literal outside the three
// named values is rejected here with a conformance error.
func LoadDescriptor(ctx context.Context, st graph.Store, model string) (*Descriptor, error) {
	node, ok, err := graph.Object(ctx, st, graph.IRI(model), graph.IRI(governance.HasConformance))
	if err != nil {
		return nil, fmt.Errorf("lookup conformance descriptor of %s: %w", model, err)
	}
	if !ok {
		return nil, nil
	}

	d := &Descriptor{IRI: node.Value, RequirePrefixes: true, RequireNamespaces: true}

	lvl, ok, err := graph.Object(ctx, st, node, graph.IRI(governance.ConformanceLevel))
	if err != nil {
		return nil, fmt.Errorf("lookup conformance level of %s: %w", model, err)
	}
	if ok {
		parsed, err := ParseLevel(lvl.Value)
		if err != nil {
			return nil, err
		}
		d.Level = parsed
	}

	if d.RequirePrefixes, err = flag(ctx, st, node, governance.RequiresPrefixValidation); err != nil {
		return nil, err
	}
	if d.RequireNamespaces, err = flag(ctx, st, node, governance.RequiresNamespaceValidation); err != nil {
		return nil, err
	}
	return d, nil
}

// flag reads a boolean property, defaulting to true when absent or unparsable.
func flag(ctx context.Context, st graph.Store, node graph.Term, predicate string) (bool, error) {
	v, ok, err := graph.Object(ctx, st, node, graph.IRI(predicate))
	if err != nil {
		return false, fmt.Errorf("lookup %s: %w", predicate, err)
	}
	if !ok {
		return true, nil
	}
	b, ok := v.Bool()
	if !ok {
		return true, nil
	}
	return b, nil
}
