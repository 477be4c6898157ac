package process

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/c360studio/semspore/conformance"
	"github.com/c360studio/semspore/errs"
	"github.com/c360studio/semspore/graph"
	"github.com/c360studio/semspore/vocabulary/governance"
)

// Engine validates and executes integration processes against a store.
type Engine struct {
	store  graph.Store
	gate   *conformance.Gate
	logger *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithGate takes the conformance level from g. Without a gate the engine
// behaves as Strict.
func WithGate(g *conformance.Gate) EngineOption {
	return func(e *Engine) {
		e.gate = g
	}
}

// NewEngine creates an engine over st.
func NewEngine(st graph.Store, opts ...EngineOption) *Engine {
	e := &Engine{store: st, logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) level() conformance.Level {
	if e.gate == nil {
		return conformance.Strict
	}
	return e.gate.Level()
}

// Validate checks that the step orders of p are exactly 1..N. Under Strict
// a process without steps is rejected. On success p moves to Validated,
// otherwise to Failed.
func (e *Engine) Validate(p *Process) error {
	if err := e.validate(p); err != nil {
		p.state = Failed
		return err
	}
	p.state = Validated
	return nil
}

func (e *Engine) validate(p *Process) error {
	const op = "validate_integration_steps"
	if p == nil {
		return errs.InvalidInput(op, "process is nil")
	}

	if len(p.Steps) == 0 {
		if e.level() == conformance.Strict {
			return errs.Conformance(op, p.IRI, "process has no integration steps")
		}
		return nil
	}

	orders := make([]int, 0, len(p.Steps))
	for _, s := range p.Steps {
		if !s.HasOrder {
			return errs.Conformancef(op, p.IRI, "step %s has no gov:stepOrder", s.IRI)
		}
		orders = append(orders, s.Order)
	}
	slices.Sort(orders)
	for i, o := range orders {
		if o != i+1 {
			return errs.Conformancef(op, p.IRI,
				"step orders %v are not the contiguous range 1..%d", orders, len(orders))
		}
	}
	return nil
}

// Execute re-validates p and runs its steps in ascending order. The first
// failing rule, a step missing its target or rules, or an unknown step
// type stops the run with a conformance error naming the step order and
// description, and leaves p Failed. There is no resume: a failed process
// runs again from step 1.
func (e *Engine) Execute(ctx context.Context, p *Process) error {
	const op = "execute_integration_steps"
	if err := e.Validate(p); err != nil {
		return err
	}

	p.state = Running
	log := e.logger.With("process", p.IRI)
	for _, s := range p.orderedSteps() {
		if err := ctx.Err(); err != nil {
			p.state = Failed
			return fmt.Errorf("step %d: %w", s.Order, err)
		}
		if err := e.runStep(ctx, s); err != nil {
			p.state = Failed
			log.Warn("Integration step failed", "step", s.Order, "kind", s.Kind, "error", err)
			if errs.KindOf(err) == errs.KindUnknown {
				return fmt.Errorf("step %d (%s): %w", s.Order, s.Description, err)
			}
			return &errs.Error{
				Kind:    errs.KindConformance,
				Op:      op,
				Subject: fmt.Sprintf("step %d", s.Order),
				Detail:  fmt.Sprintf("%q failed", s.Description),
				Err:     err,
			}
		}
		log.Debug("Integration step completed", "step", s.Order, "kind", s.Kind, "rules", len(s.Rules))
	}
	p.state = Completed
	log.Info("Integration process completed", "steps", len(p.Steps))
	return nil
}

func (e *Engine) runStep(ctx context.Context, s Step) error {
	const op = "run_step"
	switch s.Kind {
	case StepValidation, StepTransformation:
		if s.Target == "" {
			return errs.Conformancef(op, s.IRI, "%s step has no target", s.Kind)
		}
	case StepMerge:
		if s.Source == "" || s.Target == "" {
			return errs.Conformance(op, s.IRI, "merge step needs both gov:mergesFrom and gov:mergesTo")
		}
	default:
		if s.TypeIRI == "" {
			return errs.Conformance(op, s.IRI, "step has no type")
		}
		return errs.Conformancef(op, s.IRI, "unknown step type %s", s.TypeIRI)
	}
	if len(s.Rules) == 0 {
		return errs.Conformancef(op, s.IRI, "%s step has no rules", s.Kind)
	}

	for _, r := range s.Rules {
		if r.Kind.stepKind() != s.Kind {
			return errs.Conformancef(op, r.IRI, "unknown %s rule", s.Kind)
		}
		if !r.complete() {
			return errs.Conformancef(op, r.IRI, "incomplete %s rule", r.Kind)
		}
		if err := e.runRule(ctx, s, r); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) runRule(ctx context.Context, s Step, r Rule) error {
	const op = "run_rule"
	target := graph.IRI(s.Target)

	switch r.Kind {
	case RuleRequiresProperty:
		ok, err := graph.HasAny(ctx, e.store, target, r.Property)
		if err != nil {
			return err
		}
		if !ok {
			return errs.Conformancef(op, r.IRI, "%s has no value for %s", s.Target, r.Property.Value)
		}

	case RuleRequiresType:
		ok, err := graph.IsA(ctx, e.store, target, r.Class.Value)
		if err != nil {
			return err
		}
		if !ok {
			return errs.Conformancef(op, r.IRI, "%s is not a %s", s.Target, r.Class.Value)
		}

	case RuleSetsProperty:
		old, err := e.store.Match(ctx, target, r.Property, graph.Term{})
		if err != nil {
			return err
		}
		for _, t := range old {
			if err := e.store.Remove(ctx, t); err != nil {
				return err
			}
		}
		if err := e.store.Add(ctx, graph.NewTriple(target, r.Property, r.Value)); err != nil {
			return err
		}

	case RuleMergesType:
		members, err := graph.Subjects(ctx, e.store, graph.IRI(governance.RDFType), r.Class)
		if err != nil {
			return err
		}
		definedBy := graph.IRI(governance.RDFSIsDefinedBy)
		var merged []graph.Triple
		for _, m := range members {
			ok, err := e.store.Has(ctx, graph.NewTriple(m, definedBy, graph.IRI(s.Source)))
			if err != nil {
				return err
			}
			if ok {
				merged = append(merged, graph.NewTriple(m, definedBy, target))
			}
		}
		if err := e.store.Add(ctx, merged...); err != nil {
			return err
		}
		e.logger.Debug("Merged declarations", "rule", r.IRI, "class", r.Class.Value, "merged", len(merged))

	default:
		return errs.Conformancef(op, r.IRI, "unknown rule")
	}
	return nil
}
