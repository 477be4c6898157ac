package spore

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"

	"github.com/c360studio/semspore/graph"
	"github.com/c360studio/semspore/vocabulary/governance"
)

// OperationKind is the closed set of patch operations.
type OperationKind int

const (
	// OpUnknown marks an operation whose type IRI is not recognised.
	OpUnknown OperationKind = iota
	OpAddClass
	OpRemoveClass
	OpAddObjectProperty
	OpRemoveObjectProperty
)

var operationTypes = map[string]OperationKind{
	governance.AddClassOperation:             OpAddClass,
	governance.RemoveClassOperation:          OpRemoveClass,
	governance.AddObjectPropertyOperation:    OpAddObjectProperty,
	governance.RemoveObjectPropertyOperation: OpRemoveObjectProperty,
}

// OperationKindOf maps an operation type IRI to its kind.
func OperationKindOf(typeIRI string) OperationKind {
	return operationTypes[typeIRI]
}

func (k OperationKind) String() string {
	switch k {
	case OpAddClass:
		return "add_class"
	case OpRemoveClass:
		return "remove_class"
	case OpAddObjectProperty:
		return "add_object_property"
	case OpRemoveObjectProperty:
		return "remove_object_property"
	default:
		return "unknown"
	}
}

// Operation is one step of a patch.
type Operation struct {
	IRI string
	// TypeIRI is the recognised type, or the first declared type when none is.
	TypeIRI string
	Kind    OperationKind
	// Order is gov:operationOrder; HasOrder is false when it is absent.
	Order    int
	HasOrder bool
	// Target is the gov:targetClass or gov:targetProperty value.
	Target graph.Term
}

// Patch is a patch distributed by a spore.
type Patch struct {
	IRI      string
	Order    int
	HasOrder bool
}

// LoadOperations returns the operations of patch ordered by
// gov:operationOrder, then IRI. Unordered operations sort last.
func LoadOperations(ctx context.Context, st graph.Store, patch string) ([]Operation, error) {
	nodes, err := graph.Objects(ctx, st, graph.IRI(patch), graph.IRI(governance.HasOperation))
	if err != nil {
		return nil, fmt.Errorf("list operations of %s: %w", patch, err)
	}

	ops := make([]Operation, 0, len(nodes))
	for _, node := range nodes {
		op, err := loadOperation(ctx, st, node)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	slices.SortFunc(ops, func(a, b Operation) int {
		return cmp.Or(cmp.Compare(orderKey(a.Order, a.HasOrder), orderKey(b.Order, b.HasOrder)), cmp.Compare(a.IRI, b.IRI))
	})
	return ops, nil
}

func loadOperation(ctx context.Context, st graph.Store, node graph.Term) (Operation, error) {
	op := Operation{IRI: node.Value}

	types, err := graph.Objects(ctx, st, node, graph.IRI(governance.RDFType))
	if err != nil {
		return op, fmt.Errorf("list types of operation %s: %w", node.Value, err)
	}
	for _, t := range types {
		if k := OperationKindOf(t.Value); k != OpUnknown {
			op.Kind, op.TypeIRI = k, t.Value
			break
		}
	}
	if op.Kind == OpUnknown && len(types) > 0 {
		op.TypeIRI = types[0].Value
	}

	if op.Order, op.HasOrder, err = intProperty(ctx, st, node, governance.OperationOrder); err != nil {
		return op, err
	}

	param := governance.TargetClass
	if op.Kind == OpAddObjectProperty || op.Kind == OpRemoveObjectProperty {
		param = governance.TargetProperty
	}
	if op.Target, _, err = graph.Object(ctx, st, node, graph.IRI(param)); err != nil {
		return op, fmt.Errorf("lookup target of operation %s: %w", node.Value, err)
	}
	return op, nil
}

// LoadPatches returns the patches distributed by spore ordered by
// gov:patchOrder, then IRI. Unordered patches sort last.
func LoadPatches(ctx context.Context, st graph.Store, spore string) ([]Patch, error) {
	nodes, err := graph.Objects(ctx, st, graph.IRI(spore), graph.IRI(governance.DistributesPatch))
	if err != nil {
		return nil, fmt.Errorf("list patches of %s: %w", spore, err)
	}

	patches := make([]Patch, 0, len(nodes))
	for _, node := range nodes {
		p := Patch{IRI: node.Value}
		if p.Order, p.HasOrder, err = intProperty(ctx, st, node, governance.PatchOrder); err != nil {
			return nil, err
		}
		patches = append(patches, p)
	}
	slices.SortFunc(patches, func(a, b Patch) int {
		return cmp.Or(cmp.Compare(orderKey(a.Order, a.HasOrder), orderKey(b.Order, b.HasOrder)), cmp.Compare(a.IRI, b.IRI))
	})
	return patches, nil
}

func intProperty(ctx context.Context, st graph.Store, node graph.Term, predicate string) (int, bool, error) {
	v, ok, err := graph.Object(ctx, st, node, graph.IRI(predicate))
	if err != nil {
		return 0, false, fmt.Errorf("lookup %s of %s: %w", predicate, node.Value, err)
	}
	if !ok {
		return 0, false, nil
	}
	n, ok := v.Int()
	return n, ok, nil
}

func orderKey(order int, ok bool) int {
	if !ok {
		return math.MaxInt
	}
	return order
}
