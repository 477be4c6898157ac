// Package process executes multi-step integration processes: ordered
// validation, transformation and merge steps, each carrying rules that
// read or rewrite a target model in the graph store.
package process

import (
	"cmp"
	"slices"

	"github.com/c360studio/semspore/graph"
	"github.com/c360studio/semspore/vocabulary/governance"
)

// State is the lifecycle state of a Process.
type State int

const (
	// Pending means the steps are declared but not yet validated.
	Pending State = iota
	// Validated means the step order invariant holds.
	Validated
	// Running means steps are executing in ascending order.
	Running
	Completed
	Failed
)

func (s State) String() string {
	switch s {
	case Pending:
		return "PENDING"
	case Validated:
		return "VALIDATED"
	case Running:
		return "RUNNING"
	case Completed:
		return "COMPLETED"
	case Failed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// StepKind is the closed set of step types.
type StepKind int

const (
	StepUnknown StepKind = iota
	StepValidation
	StepTransformation
	StepMerge
)

var stepTypes = map[string]StepKind{
	governance.ValidationStep:     StepValidation,
	governance.TransformationStep: StepTransformation,
	governance.MergeStep:          StepMerge,
}

// StepKindOf maps a step type IRI to its kind.
func StepKindOf(typeIRI string) StepKind {
	return stepTypes[typeIRI]
}

func (k StepKind) String() string {
	switch k {
	case StepValidation:
		return "validation"
	case StepTransformation:
		return "transformation"
	case StepMerge:
		return "merge"
	default:
		return "unknown"
	}
}

// RuleKind is the closed set of rule shapes.
type RuleKind int

const (
	RuleUnknown RuleKind = iota
	// RuleRequiresProperty requires at least one value of Property on the target.
	RuleRequiresProperty
	// RuleRequiresType requires the target to be typed Class.
	RuleRequiresType
	// RuleSetsProperty replaces every value of Property on the target with Value.
	RuleSetsProperty
	// RuleMergesType re-homes every Class instance defined by the source
	// so it is also defined by the target.
	RuleMergesType
)

func (k RuleKind) String() string {
	switch k {
	case RuleRequiresProperty:
		return "requires_property"
	case RuleRequiresType:
		return "requires_type"
	case RuleSetsProperty:
		return "sets_property"
	case RuleMergesType:
		return "merges_type"
	default:
		return "unknown"
	}
}

// stepKind returns the step kind a rule kind belongs to.
func (k RuleKind) stepKind() StepKind {
	switch k {
	case RuleRequiresProperty, RuleRequiresType:
		return StepValidation
	case RuleSetsProperty:
		return StepTransformation
	case RuleMergesType:
		return StepMerge
	default:
		return StepUnknown
	}
}

// Rule is a single rule attached to a step.
type Rule struct {
	IRI      string
	Kind     RuleKind
	Property graph.Term
	Value    graph.Term
	Class    graph.Term
}

// complete reports whether r carries the terms its kind needs.
func (r Rule) complete() bool {
	switch r.Kind {
	case RuleRequiresProperty:
		return r.Property.IsIRI()
	case RuleRequiresType, RuleMergesType:
		return r.Class.IsIRI()
	case RuleSetsProperty:
		return r.Property.IsIRI() && !r.Value.IsZero()
	default:
		return false
	}
}

// Step is one ordered step of a process.
type Step struct {
	IRI         string
	Kind        StepKind
	TypeIRI     string
	Order       int
	HasOrder    bool
	Description string
	// Target is gov:validates, gov:transforms or gov:mergesTo.
	Target string
	// Source is gov:mergesFrom; merge steps only.
	Source string
	Rules  []Rule
}

// Process is an integration process and its execution state.
type Process struct {
	IRI   string
	Steps []Step
	state State
}

// New creates a pending process.
func New(iri string, steps ...Step) *Process {
	return &Process{IRI: iri, Steps: steps}
}

// State returns the current lifecycle state.
func (p *Process) State() State {
	return p.state
}

// orderedSteps returns the steps sorted by order, then IRI.
func (p *Process) orderedSteps() []Step {
	steps := slices.Clone(p.Steps)
	slices.SortStableFunc(steps, func(a, b Step) int {
		return cmp.Or(cmp.Compare(a.Order, b.Order), cmp.Compare(a.IRI, b.IRI))
	})
	return steps
}
