package spore

import (
	"context"
	"fmt"
	"strings"

	"github.com/c360studio/semspore/errs"
	"github.com/c360studio/semspore/graph"
	"github.com/c360studio/semspore/vocabulary/governance"
)

// Validator checks spore structure before any mutation.
type Validator struct {
	store graph.Store
}

// NewValidator creates a validator over st.
func NewValidator(st graph.Store) *Validator {
	return &Validator{store: st}
}

// Exists fails with a validation error unless spore is typed
// gov:TransformationPattern.
func (v *Validator) Exists(ctx context.Context, spore string) error {
	const op = "validate_spore"
	if spore == "" {
		return errs.InvalidInput(op, "spore identifier is empty")
	}
	ok, err := graph.IsA(ctx, v.store, graph.IRI(spore), governance.TransformationPattern)
	if err != nil {
		return fmt.Errorf("check type of %s: %w", spore, err)
	}
	if !ok {
		return errs.Validation(op, spore, "not a gov:TransformationPattern")
	}
	return nil
}

// ValidateSpore requires, in order: the spore is a TransformationPattern;
// it has a label, comment and version; every gov:hasPattern target is a
// TransformationPattern with label and comment; every distributed patch is
// a ConceptPatch with label and comment. The first unmet requirement is
// returned as a validation error naming the offending entity.
func (v *Validator) ValidateSpore(ctx context.Context, spore string) error {
	const op = "validate_spore"
	if err := v.Exists(ctx, spore); err != nil {
		return err
	}
	subject := graph.IRI(spore)

	if err := v.requireProperties(ctx, op, subject,
		governance.RDFSLabel, governance.RDFSComment, governance.Version); err != nil {
		return err
	}

	patterns, err := graph.Objects(ctx, v.store, subject, graph.IRI(governance.HasPattern))
	if err != nil {
		return fmt.Errorf("list patterns of %s: %w", spore, err)
	}
	for _, p := range patterns {
		if err := v.requireDescribed(ctx, op, p, governance.TransformationPattern, "pattern"); err != nil {
			return err
		}
	}

	patches, err := graph.Objects(ctx, v.store, subject, graph.IRI(governance.DistributesPatch))
	if err != nil {
		return fmt.Errorf("list patches of %s: %w", spore, err)
	}
	for _, p := range patches {
		if err := v.requireDescribed(ctx, op, p, governance.ConceptPatch, "patch"); err != nil {
			return err
		}
	}
	return nil
}

// requireDescribed checks that node has class and carries a label and comment.
func (v *Validator) requireDescribed(ctx context.Context, op string, node graph.Term, class, role string) error {
	ok, err := graph.IsA(ctx, v.store, node, class)
	if err != nil {
		return fmt.Errorf("check type of %s: %w", node.Value, err)
	}
	if !ok {
		return errs.Validationf(op, node.Value, "%s is not a %s", role, compactGov(class))
	}
	return v.requireProperties(ctx, op, node, governance.RDFSLabel, governance.RDFSComment)
}

func (v *Validator) requireProperties(ctx context.Context, op string, node graph.Term, predicates ...string) error {
	var missing []string
	for _, p := range predicates {
		ok, err := graph.HasAny(ctx, v.store, node, graph.IRI(p))
		if err != nil {
			return fmt.Errorf("lookup %s of %s: %w", p, node.Value, err)
		}
		if !ok {
			missing = append(missing, compactGov(p))
		}
	}
	if len(missing) > 0 {
		return errs.Validationf(op, node.Value, "missing %s", strings.Join(missing, ", "))
	}
	return nil
}

// ValidateSHACL checks the spore against every sh:NodeShape whose
// sh:targetClass is gov:TransformationPattern: each sh:property/sh:path
// must have at least one value on the spore.
func (v *Validator) ValidateSHACL(ctx context.Context, spore string) error {
	const op = "validate_shacl"
	if spore == "" {
		return errs.InvalidInput(op, "spore identifier is empty")
	}

	shapes, err := graph.Subjects(ctx, v.store, graph.IRI(governance.SHTargetClass), graph.IRI(governance.TransformationPattern))
	if err != nil {
		return fmt.Errorf("list shapes: %w", err)
	}
	for _, shape := range shapes {
		isShape, err := graph.IsA(ctx, v.store, shape, governance.SHNodeShape)
		if err != nil {
			return fmt.Errorf("check type of %s: %w", shape.Value, err)
		}
		if !isShape {
			continue
		}

		props, err := graph.Objects(ctx, v.store, shape, graph.IRI(governance.SHProperty))
		if err != nil {
			return fmt.Errorf("list properties of shape %s: %w", shape.Value, err)
		}
		for _, prop := range props {
			paths, err := graph.Objects(ctx, v.store, prop, graph.IRI(governance.SHPath))
			if err != nil {
				return fmt.Errorf("list paths of shape %s: %w", shape.Value, err)
			}
			for _, path := range paths {
				if !path.IsIRI() {
					continue
				}
				ok, err := graph.HasAny(ctx, v.store, graph.IRI(spore), path)
				if err != nil {
					return fmt.Errorf("lookup %s of %s: %w", path.Value, spore, err)
				}
				if !ok {
					return errs.Validationf(op, spore, "shape %s requires a value for %s",
						shape.Value, compactGov(path.Value))
				}
			}
		}
	}
	return nil
}

// compactGov shortens well-known IRIs for messages.
func compactGov(iri string) string {
	for prefix, ns := range map[string]string{
		"gov":  governance.Namespace,
		"rdfs": governance.RDFSNamespace,
		"owl":  governance.OWLNamespace,
	} {
		if local, ok := strings.CutPrefix(iri, ns); ok {
			return prefix + ":" + local
		}
	}
	return iri
}
