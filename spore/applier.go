package spore

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/c360studio/semspore/errs"
	"github.com/c360studio/semspore/graph"
	"github.com/c360studio/semspore/vocabulary/governance"
)

// Applier checks compatibility and applies patches to a target model.
type Applier struct {
	store     graph.Store
	publisher graph.Publisher
	logger    *slog.Logger
}

// ApplierOption configures an Applier.
type ApplierOption func(*Applier)

// WithApplierLogger sets the logger.
func WithApplierLogger(logger *slog.Logger) ApplierOption {
	return func(a *Applier) {
		a.logger = logger
	}
}

// WithPublisher announces the triples each patch adds.
func WithPublisher(p graph.Publisher) ApplierOption {
	return func(a *Applier) {
		a.publisher = p
	}
}

// NewApplier creates an applier over st.
func NewApplier(st graph.Store, opts ...ApplierOption) *Applier {
	a := &Applier{store: st, logger: slog.Default()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// CheckCompatibility reports whether spore declares model as its target.
// It never writes.
func (a *Applier) CheckCompatibility(ctx context.Context, spore, model string) (bool, error) {
	const op = "check_compatibility"
	if spore == "" {
		return false, errs.InvalidInput(op, "spore identifier is empty")
	}
	if model == "" {
		return false, errs.InvalidInput(op, "target model identifier is empty")
	}
	ok, err := a.store.Has(ctx, graph.NewTriple(graph.IRI(spore), graph.IRI(governance.TargetModel), graph.IRI(model)))
	if err != nil {
		return false, fmt.Errorf("check target of %s: %w", spore, err)
	}
	return ok, nil
}

// ApplyPatch applies the operations of patch to model in order. The patch
// must be distributed by spore. The first operation that cannot be applied
// aborts with a validation error naming it; triples added by earlier
// operations stay in the store.
func (a *Applier) ApplyPatch(ctx context.Context, spore, patch, model string) (err error) {
	const op = "apply_patch"
	if patch == "" {
		return errs.InvalidInput(op, "patch identifier is empty")
	}
	if spore == "" {
		return errs.InvalidInput(op, "spore identifier is empty")
	}
	if model == "" {
		return errs.InvalidInput(op, "target model identifier is empty")
	}

	defer func() {
		result := "success"
		if err != nil {
			result = "failed"
		}
		patchesApplied.WithLabelValues(result).Inc()
	}()

	owned, err := a.store.Has(ctx, graph.NewTriple(graph.IRI(spore), graph.IRI(governance.DistributesPatch), graph.IRI(patch)))
	if err != nil {
		return fmt.Errorf("check ownership of %s: %w", patch, err)
	}
	if !owned {
		return errs.Validationf(op, patch, "patch is not distributed by spore %s", spore)
	}

	ops, err := LoadOperations(ctx, a.store, patch)
	if err != nil {
		return err
	}

	var added []graph.Triple
	for i, o := range ops {
		ts, err := a.applyOperation(ctx, o, model)
		if err != nil {
			if errs.KindOf(err) == errs.KindUnknown {
				return fmt.Errorf("apply operation %s: %w", o.IRI, err)
			}
			return &errs.Error{
				Kind:    errs.KindValidation,
				Op:      op,
				Subject: o.IRI,
				Detail:  fmt.Sprintf("operation %d of patch %s could not be applied", i+1, patch),
				Err:     err,
			}
		}
		operationsApplied.WithLabelValues(o.Kind.String()).Inc()
		added = append(added, ts...)
	}

	a.logger.Debug("Applied patch", "spore", spore, "patch", patch, "model", model,
		"operations", len(ops), "added", len(added))

	if a.publisher != nil && len(added) > 0 {
		if err := a.publisher.PublishPatch(ctx, patch, model, added); err != nil {
			a.logger.Warn("Failed to publish applied patch", "patch", patch, "error", err)
		}
	}
	return nil
}

// applyOperation returns the triples it added. Unapplicable operations
// produce validation errors; store failures are returned as is.
func (a *Applier) applyOperation(ctx context.Context, o Operation, model string) ([]graph.Triple, error) {
	const op = "apply_operation"

	var declared string
	switch o.Kind {
	case OpAddClass, OpRemoveClass:
		declared = governance.OWLClass
	case OpAddObjectProperty, OpRemoveObjectProperty:
		declared = governance.OWLObjectProp
	case OpUnknown:
		if o.TypeIRI == "" {
			return nil, errs.Validation(op, o.IRI, "operation has no type")
		}
		return nil, errs.Validationf(op, o.IRI, "unsupported operation type %s", o.TypeIRI)
	}

	if !o.Target.IsIRI() {
		param := "gov:targetClass"
		if declared == governance.OWLObjectProp {
			param = "gov:targetProperty"
		}
		return nil, errs.Validationf(op, o.IRI, "%s operation requires an IRI %s", o.Kind, param)
	}

	switch o.Kind {
	case OpAddClass, OpAddObjectProperty:
		ts := []graph.Triple{
			graph.NewTriple(o.Target, graph.IRI(governance.RDFType), graph.IRI(declared)),
			graph.NewTriple(o.Target, graph.IRI(governance.RDFSIsDefinedBy), graph.IRI(model)),
		}
		if err := a.store.Add(ctx, ts...); err != nil {
			return nil, err
		}
		return ts, nil
	case OpRemoveClass, OpRemoveObjectProperty:
		n, err := a.store.RemoveSubject(ctx, o.Target)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			a.logger.Debug("Remove operation matched nothing", "operation", o.IRI, "target", o.Target.Value)
		}
		return nil, nil
	}
	return nil, errs.Validationf(op, o.IRI, "unsupported operation kind %s", o.Kind)
}
