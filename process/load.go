package process

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/c360studio/semspore/errs"
	"github.com/c360studio/semspore/graph"
	"github.com/c360studio/semspore/vocabulary/governance"
)

// rulePredicates link a step to its rules.
var rulePredicates = []string{
	governance.HasValidationRule,
	governance.HasTransformationRule,
	governance.HasMergeRule,
}

// Load reads the gov:IntegrationProcess iri and its steps from st. Step
// order and rule shape problems are left for Validate and Execute.
func Load(ctx context.Context, st graph.Store, iri string) (*Process, error) {
	const op = "load_process"
	if iri == "" {
		return nil, errs.InvalidInput(op, "process identifier is empty")
	}
	node := graph.IRI(iri)

	ok, err := graph.IsA(ctx, st, node, governance.IntegrationProcess)
	if err != nil {
		return nil, fmt.Errorf("check type of %s: %w", iri, err)
	}
	if !ok {
		return nil, errs.Validation(op, iri, "not a gov:IntegrationProcess")
	}

	stepNodes, err := graph.Objects(ctx, st, node, graph.IRI(governance.HasIntegrationStep))
	if err != nil {
		return nil, fmt.Errorf("list steps of %s: %w", iri, err)
	}

	p := New(iri)
	for _, sn := range stepNodes {
		s, err := loadStep(ctx, st, sn)
		if err != nil {
			return nil, err
		}
		p.Steps = append(p.Steps, s)
	}
	return p, nil
}

// Processes lists every gov:IntegrationProcess in st.
func Processes(ctx context.Context, st graph.Store) ([]string, error) {
	nodes, err := graph.Subjects(ctx, st, graph.IRI(governance.RDFType), graph.IRI(governance.IntegrationProcess))
	if err != nil {
		return nil, fmt.Errorf("list processes: %w", err)
	}
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if n.IsIRI() {
			out = append(out, n.Value)
		}
	}
	return out, nil
}

func loadStep(ctx context.Context, st graph.Store, node graph.Term) (Step, error) {
	s := Step{IRI: node.Value}

	types, err := graph.Objects(ctx, st, node, graph.IRI(governance.RDFType))
	if err != nil {
		return s, fmt.Errorf("list types of step %s: %w", node.Value, err)
	}
	for _, t := range types {
		if k := StepKindOf(t.Value); k != StepUnknown {
			s.Kind, s.TypeIRI = k, t.Value
			break
		}
	}
	if s.Kind == StepUnknown && len(types) > 0 {
		s.TypeIRI = types[0].Value
	}

	if v, ok, err := graph.Object(ctx, st, node, graph.IRI(governance.StepOrder)); err != nil {
		return s, fmt.Errorf("lookup order of step %s: %w", node.Value, err)
	} else if ok {
		s.Order, s.HasOrder = v.Int()
	}

	if v, ok, err := graph.Object(ctx, st, node, graph.IRI(governance.StepDescription)); err != nil {
		return s, fmt.Errorf("lookup description of step %s: %w", node.Value, err)
	} else if ok {
		s.Description = v.Value
	}

	target := governance.Validates
	switch s.Kind {
	case StepTransformation:
		target = governance.Transforms
	case StepMerge:
		target = governance.MergesTo
		if s.Source, err = iriValue(ctx, st, node, governance.MergesFrom); err != nil {
			return s, err
		}
	}
	if s.Target, err = iriValue(ctx, st, node, target); err != nil {
		return s, err
	}

	for _, pred := range rulePredicates {
		ruleNodes, err := graph.Objects(ctx, st, node, graph.IRI(pred))
		if err != nil {
			return s, fmt.Errorf("list rules of step %s: %w", node.Value, err)
		}
		for _, rn := range ruleNodes {
			r, err := loadRule(ctx, st, rn)
			if err != nil {
				return s, err
			}
			s.Rules = append(s.Rules, r)
		}
	}
	slices.SortFunc(s.Rules, func(a, b Rule) int { return cmp.Compare(a.IRI, b.IRI) })
	return s, nil
}

func loadRule(ctx context.Context, st graph.Store, node graph.Term) (Rule, error) {
	r := Rule{IRI: node.Value}
	props, err := st.Match(ctx, node, graph.Term{}, graph.Term{})
	if err != nil {
		return r, fmt.Errorf("read rule %s: %w", node.Value, err)
	}

	values := make(map[string]graph.Term, len(props))
	for _, t := range props {
		if _, seen := values[t.Predicate.Value]; !seen {
			values[t.Predicate.Value] = t.Object
		}
	}

	switch {
	case !values[governance.RequiresProperty].IsZero():
		r.Kind, r.Property = RuleRequiresProperty, values[governance.RequiresProperty]
	case !values[governance.RequiresType].IsZero():
		r.Kind, r.Class = RuleRequiresType, values[governance.RequiresType]
	case !values[governance.SetsProperty].IsZero():
		r.Kind, r.Property, r.Value = RuleSetsProperty, values[governance.SetsProperty], values[governance.SetsValue]
	case !values[governance.MergesType].IsZero():
		r.Kind, r.Class = RuleMergesType, values[governance.MergesType]
	}
	return r, nil
}

func iriValue(ctx context.Context, st graph.Store, node graph.Term, predicate string) (string, error) {
	v, ok, err := graph.Object(ctx, st, node, graph.IRI(predicate))
	if err != nil {
		return "", fmt.Errorf("lookup %s of %s: %w", predicate, node.Value, err)
	}
	if !ok || !v.IsIRI() {
		return "", nil
	}
	return v.Value, nil
}
