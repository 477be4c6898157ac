package spore

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/c360studio/semspore/errs"
	"github.com/c360studio/semspore/graph"
	"github.com/c360studio/semspore/vocabulary/governance"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu    sync.Mutex
	calls map[string][]graph.Triple
	err   error
}

func (r *recordingPublisher) PublishPatch(_ context.Context, patch, _ string, added []graph.Triple) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.calls == nil {
		r.calls = make(map[string][]graph.Triple)
	}
	r.calls[patch] = append(r.calls[patch], added...)
	return r.err
}

func TestCheckCompatibilityIsPure(t *testing.T) {
	ctx := context.Background()
	st := (&builder{}).spore("s", model).store(t)
	a := NewApplier(st)
	before := storeLen(t, st)

	first, err := a.CheckCompatibility(ctx, ex+"s", model)
	require.NoError(t, err)
	second, err := a.CheckCompatibility(ctx, ex+"s", model)
	require.NoError(t, err)

	assert.True(t, first)
	assert.Equal(t, first, second)
	assert.Equal(t, before, storeLen(t, st))

	other, err := a.CheckCompatibility(ctx, ex+"s", ex+"other")
	require.NoError(t, err)
	assert.False(t, other)

	_, err = a.CheckCompatibility(ctx, "", model)
	assert.True(t, errs.IsInvalidInput(err))
}

func TestApplyPatchRequiresOwnership(t *testing.T) {
	ctx := context.Background()
	st := (&builder{}).
		spore("s1", model).
		spore("s2", model).
		patch("s2", "p").
		op("p", "op1", governance.AddClassOperation, 1, iri("C")).
		store(t)

	err := NewApplier(st).ApplyPatch(ctx, ex+"s1", ex+"p", model)
	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))
	assert.Contains(t, err.Error(), "not distributed by spore "+ex+"s1")
	assert.False(t, has(t, st, tr(iri("C"), governance.RDFType, graph.IRI(governance.OWLClass))))
}

func TestApplyPatchEmptyIdentifier(t *testing.T) {
	err := NewApplier(graph.NewMemoryStore()).ApplyPatch(context.Background(), ex+"s", "", model)
	assert.True(t, errs.IsInvalidInput(err))
}

func TestApplyPatchOperations(t *testing.T) {
	ctx := context.Background()
	st := (&builder{}).
		spore("s", model).
		patch("s", "p").
		op("p", "op3", governance.RemoveClassOperation, 3, iri("Old")).
		op("p", "op1", governance.AddClassOperation, 1, iri("C")).
		op("p", "op2", governance.AddObjectPropertyOperation, 2, iri("knows")).
		op("p", "op4", governance.RemoveObjectPropertyOperation, 4, iri("oldProp")).
		add(
			tr(iri("Old"), governance.RDFType, graph.IRI(governance.OWLClass)),
			tr(iri("Old"), governance.RDFSLabel, graph.Literal("Old")),
			tr(iri("oldProp"), governance.RDFType, graph.IRI(governance.OWLObjectProp)),
		).
		store(t)

	pub := &recordingPublisher{}
	addClass := testutil.ToFloat64(operationsApplied.WithLabelValues("add_class"))

	require.NoError(t, NewApplier(st, WithPublisher(pub)).ApplyPatch(ctx, ex+"s", ex+"p", model))

	assert.True(t, has(t, st, tr(iri("C"), governance.RDFType, graph.IRI(governance.OWLClass))))
	assert.True(t, has(t, st, tr(iri("C"), governance.RDFSIsDefinedBy, graph.IRI(model))))
	assert.True(t, has(t, st, tr(iri("knows"), governance.RDFType, graph.IRI(governance.OWLObjectProp))))
	assert.True(t, has(t, st, tr(iri("knows"), governance.RDFSIsDefinedBy, graph.IRI(model))))

	remaining, err := st.Match(ctx, iri("Old"), graph.Term{}, graph.Term{})
	require.NoError(t, err)
	assert.Empty(t, remaining)
	remaining, err = st.Match(ctx, iri("oldProp"), graph.Term{}, graph.Term{})
	require.NoError(t, err)
	assert.Empty(t, remaining)

	assert.Len(t, pub.calls[ex+"p"], 4)
	assert.Equal(t, addClass+1, testutil.ToFloat64(operationsApplied.WithLabelValues("add_class")))
}

func TestApplyPatchOperationOrder(t *testing.T) {
	ctx := context.Background()
	// Removal ordered after the add wins; the class ends up absent.
	st := (&builder{}).
		spore("s", model).
		patch("s", "p").
		op("p", "z-add", governance.AddClassOperation, 1, iri("C")).
		op("p", "a-remove", governance.RemoveClassOperation, 2, iri("C")).
		store(t)

	require.NoError(t, NewApplier(st).ApplyPatch(ctx, ex+"s", ex+"p", model))
	assert.False(t, has(t, st, tr(iri("C"), governance.RDFType, graph.IRI(governance.OWLClass))))

	ops, err := LoadOperations(ctx, st, ex+"p")
	require.NoError(t, err)
	require.Len(t, ops, 2)
	assert.Equal(t, ex+"z-add", ops[0].IRI)
	assert.Equal(t, OpRemoveClass, ops[1].Kind)
}

func TestApplyPatchStopsAtFirstBadOperation(t *testing.T) {
	ctx := context.Background()
	st := (&builder{}).
		spore("s", model).
		patch("s", "p").
		op("p", "op1", governance.AddClassOperation, 1, iri("A")).
		op("p", "op2", governance.Namespace+"RenameClassOperation", 2, iri("B")).
		op("p", "op3", governance.AddClassOperation, 3, iri("C")).
		store(t)

	err := NewApplier(st).ApplyPatch(ctx, ex+"s", ex+"p", model)
	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))

	var e *errs.Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, ex+"op2", e.Subject)
	assert.Contains(t, err.Error(), "RenameClassOperation")

	assert.True(t, has(t, st, tr(iri("A"), governance.RDFType, graph.IRI(governance.OWLClass))), "earlier operations stay applied")
	assert.False(t, has(t, st, tr(iri("C"), governance.RDFType, graph.IRI(governance.OWLClass))))
}

func TestApplyPatchMissingTarget(t *testing.T) {
	st := (&builder{}).
		spore("s", model).
		patch("s", "p").
		op("p", "op1", governance.AddObjectPropertyOperation, 1, graph.Term{}).
		store(t)

	err := NewApplier(st).ApplyPatch(context.Background(), ex+"s", ex+"p", model)
	assert.True(t, errs.IsValidation(err))
	assert.Contains(t, err.Error(), "gov:targetProperty")
}

func TestApplyPatchPublishFailureDoesNotFail(t *testing.T) {
	st := (&builder{}).
		spore("s", model).
		patch("s", "p").
		op("p", "op1", governance.AddClassOperation, 1, iri("C")).
		store(t)

	pub := &recordingPublisher{err: errors.New("nats down")}
	require.NoError(t, NewApplier(st, WithPublisher(pub)).ApplyPatch(context.Background(), ex+"s", ex+"p", model))
	assert.Len(t, pub.calls[ex+"p"], 2)
}

func TestOperationKindOf(t *testing.T) {
	assert.Equal(t, OpAddClass, OperationKindOf(governance.AddClassOperation))
	assert.Equal(t, OpRemoveObjectProperty, OperationKindOf(governance.RemoveObjectPropertyOperation))
	assert.Equal(t, OpUnknown, OperationKindOf(governance.ConceptPatch))
	assert.Equal(t, "unknown", OpUnknown.String())
}
