package spore

import (
	"context"
	"fmt"

	"github.com/c360studio/semspore/graph"
	"github.com/c360studio/semspore/vocabulary/governance"
)

// declarationKinds are the declarations compared by FindConflicts.
var declarationKinds = []struct {
	class string
	name  string
}{
	{governance.OWLClass, "class"},
	{governance.OWLObjectProp, "object property"},
}

// FindConflicts reports every class or object-property declaration present
// in both graphs. The result is advisory and never blocks integration.
func FindConflicts(ctx context.Context, sporeGraph, modelGraph graph.Store) ([]string, error) {
	var conflicts []string
	for _, kind := range declarationKinds {
		decls, err := sporeGraph.Match(ctx, graph.Term{}, graph.IRI(governance.RDFType), graph.IRI(kind.class))
		if err != nil {
			return nil, fmt.Errorf("list %s declarations: %w", kind.name, err)
		}
		for _, t := range decls {
			ok, err := modelGraph.Has(ctx, t)
			if err != nil {
				return nil, fmt.Errorf("check %s declaration %s: %w", kind.name, t.Subject.Value, err)
			}
			if ok {
				conflicts = append(conflicts,
					fmt.Sprintf("%s %s is declared in both the spore and the target model", kind.name, t.Subject))
			}
		}
	}
	conflictsFound.Add(float64(len(conflicts)))
	return conflicts, nil
}
