package spore

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/c360studio/semspore/conformance"
	"github.com/c360studio/semspore/errs"
	"github.com/c360studio/semspore/graph"
	"github.com/c360studio/semspore/vocabulary/governance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntegrateSporeAddsClass(t *testing.T) {
	ctx := context.Background()
	st := (&builder{}).
		spore("S", model).
		patch("S", "P").
		op("P", "op1", governance.AddClassOperation, 1, iri("C")).
		store(t)

	require.NoError(t, NewIntegrator(st).IntegrateSpore(ctx, ex+"S", model))

	assert.True(t, has(t, st, tr(iri("C"), governance.RDFType, graph.IRI(governance.OWLClass))))
	assert.True(t, has(t, st, tr(iri("C"), governance.RDFSIsDefinedBy, graph.IRI(model))))
}

func TestIntegrateSporeFailures(t *testing.T) {
	tests := []struct {
		name    string
		build   func(*builder)
		model   string
		check   func(error) bool
		subject string
	}{
		{
			name:  "incomplete spore",
			build: func(b *builder) { b.add(tr(iri("S"), governance.RDFType, graph.IRI(governance.TransformationPattern))) },
			model: model,
			check: errs.IsValidation,
		},
		{
			name:    "incompatible target",
			build:   func(b *builder) { b.spore("S", ex+"elsewhere") },
			model:   model,
			check:   errs.IsValidation,
			subject: ex + "S",
		},
		{
			name: "failing patch named",
			build: func(b *builder) {
				b.spore("S", model).
					patch("S", "P1").
					patch("S", "P2").
					op("P1", "op1", governance.AddClassOperation, 1, iri("A")).
					op("P2", "op2", governance.AddClassOperation, 1, graph.Term{}).
					add(
						tr(iri("P1"), governance.PatchOrder, graph.Integer(1)),
						tr(iri("P2"), governance.PatchOrder, graph.Integer(2)),
					)
			},
			model:   model,
			check:   errs.IsValidation,
			subject: ex + "P2",
		},
		{
			name:  "empty model",
			build: func(b *builder) { b.spore("S", model) },
			model: "",
			check: errs.IsInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &builder{}
			tt.build(b)
			err := NewIntegrator(b.store(t)).IntegrateSpore(context.Background(), ex+"S", tt.model)
			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error kind: %v", err)
			if tt.subject != "" {
				var e *errs.Error
				require.True(t, errors.As(err, &e))
				assert.Equal(t, tt.subject, e.Subject)
			}
		})
	}
}

func TestIntegrateSporeAppliesPatchesInOrder(t *testing.T) {
	ctx := context.Background()
	// P2 is ordered first and adds C; P1 then removes it.
	st := (&builder{}).
		spore("S", model).
		patch("S", "P1").
		patch("S", "P2").
		op("P1", "rm", governance.RemoveClassOperation, 1, iri("C")).
		op("P2", "add", governance.AddClassOperation, 1, iri("C")).
		add(
			tr(iri("P1"), governance.PatchOrder, graph.Integer(2)),
			tr(iri("P2"), governance.PatchOrder, graph.Integer(1)),
		).
		store(t)

	require.NoError(t, NewIntegrator(st).IntegrateSpore(ctx, ex+"S", model))
	assert.False(t, has(t, st, tr(iri("C"), governance.RDFType, graph.IRI(governance.OWLClass))))

	patches, err := LoadPatches(ctx, st, ex+"S")
	require.NoError(t, err)
	require.Len(t, patches, 2)
	assert.Equal(t, ex+"P2", patches[0].IRI)
}

func TestIntegrateSporeWithGate(t *testing.T) {
	ctx := context.Background()
	st := (&builder{}).
		spore("S", model).
		patch("S", "P").
		op("P", "op1", governance.AddClassOperation, 1, iri("C")).
		store(t)

	gate := conformance.NewGate(st)
	integrator := NewIntegrator(st, WithGate(gate))

	err := integrator.IntegrateSpore(ctx, ex+"S", model)
	require.Error(t, err)
	assert.True(t, errs.IsConformance(err))
	assert.False(t, has(t, st, tr(iri("C"), governance.RDFType, graph.IRI(governance.OWLClass))))

	require.NoError(t, gate.SetLevel(conformance.Relaxed))
	require.NoError(t, integrator.IntegrateSpore(ctx, ex+"S", model))
	assert.True(t, has(t, st, tr(iri("C"), governance.RDFType, graph.IRI(governance.OWLClass))))
}

func TestIntegrateConcurrentPrecheckBlocksMutation(t *testing.T) {
	ctx := context.Background()
	st := (&builder{}).
		spore("S1", model).
		patch("S1", "P1").
		op("P1", "op1", governance.AddClassOperation, 1, iri("C1")).
		spore("S2", ex+"other").
		patch("S2", "P2").
		op("P2", "op2", governance.AddClassOperation, 1, iri("C2")).
		store(t)
	before := storeLen(t, st)

	err := NewIntegrator(st).IntegrateConcurrent(ctx, []string{ex + "S1", ex + "S2"}, model)
	require.Error(t, err)
	assert.True(t, errs.IsConcurrentModification(err))
	assert.Contains(t, err.Error(), ex+"S2")

	assert.Equal(t, before, storeLen(t, st))
	assert.False(t, has(t, st, tr(iri("C1"), governance.RDFType, graph.IRI(governance.OWLClass))))
}

func TestIntegrateConcurrentAppliesBatch(t *testing.T) {
	ctx := context.Background()
	b := &builder{}
	var spores []string
	for n := range 5 {
		name := fmt.Sprintf("S%d", n)
		patch := fmt.Sprintf("P%d", n)
		b.spore(name, model).patch(name, patch).
			op(patch, fmt.Sprintf("op%d", n), governance.AddClassOperation, 1, iri(fmt.Sprintf("C%d", n)))
		spores = append(spores, ex+name)
	}
	st := b.store(t)

	require.NoError(t, NewIntegrator(st, WithPrecheckWorkers(2)).IntegrateConcurrent(ctx, spores, model))
	for n := range 5 {
		assert.True(t, has(t, st, tr(iri(fmt.Sprintf("C%d", n)), governance.RDFType, graph.IRI(governance.OWLClass))))
	}
}

func TestIntegrateConcurrentApplyFailureLeavesEarlierSpores(t *testing.T) {
	ctx := context.Background()
	st := (&builder{}).
		spore("S1", model).
		patch("S1", "P1").
		op("P1", "op1", governance.AddClassOperation, 1, iri("C1")).
		spore("S2", model).
		patch("S2", "P2").
		op("P2", "op2", governance.Namespace+"UnknownOperation", 1, iri("C2")).
		store(t)

	err := NewIntegrator(st).IntegrateConcurrent(ctx, []string{ex + "S1", ex + "S2"}, model)
	require.Error(t, err)
	assert.True(t, errs.IsConcurrentModification(err))
	assert.True(t, errs.IsValidation(err), "apply failure stays reachable")
	assert.Contains(t, err.Error(), "after 1 of 2")
	assert.True(t, has(t, st, tr(iri("C1"), governance.RDFType, graph.IRI(governance.OWLClass))))
}

func TestIntegrateConcurrentInvalidInput(t *testing.T) {
	i := NewIntegrator(graph.NewMemoryStore())
	assert.True(t, errs.IsInvalidInput(i.IntegrateConcurrent(context.Background(), nil, model)))
	assert.True(t, errs.IsInvalidInput(i.IntegrateConcurrent(context.Background(), []string{ex + "S", ""}, model)))
}

func TestMigrateVersion(t *testing.T) {
	ctx := context.Background()
	st := (&builder{}).spore("S", model).store(t)
	i := NewIntegrator(st)

	require.NoError(t, i.MigrateVersion(ctx, ex+"S", "2.0.0"))

	versions, err := graph.Objects(ctx, st, iri("S"), graph.IRI(governance.Version))
	require.NoError(t, err)
	assert.Equal(t, []graph.Term{graph.Literal("2.0.0")}, versions)

	assert.True(t, errs.IsInvalidInput(i.MigrateVersion(ctx, "", "2.0.0")))
}

type failingStore struct {
	*graph.MemoryStore
}

func (failingStore) Add(context.Context, ...graph.Triple) error {
	return errors.New("disk full")
}

func TestMigrateVersionStoreFailure(t *testing.T) {
	st := failingStore{(&builder{}).spore("S", model).store(t)}

	ctx := context.Background()
	before, err := graph.Objects(ctx, st, iri("S"), graph.IRI(governance.Version))
	require.NoError(t, err)
	require.NotEmpty(t, before)

	i := NewIntegrator(st)
	err = i.MigrateVersion(ctx, ex+"S", "2.0.0")
	require.Error(t, err)
	assert.Equal(t, errs.KindUnknown, errs.KindOf(err))
	assert.Contains(t, err.Error(), "disk full")

	after, err := graph.Objects(ctx, st, iri("S"), graph.IRI(governance.Version))
	require.NoError(t, err)
	assert.Equal(t, before, after, "failed write keeps the old version")
	require.NoError(t, i.Validator().ValidateSpore(ctx, ex+"S"))
}

func TestMigrateVersionToSameVersion(t *testing.T) {
	ctx := context.Background()
	st := (&builder{}).spore("S", model).store(t)
	before, err := graph.Objects(ctx, st, iri("S"), graph.IRI(governance.Version))
	require.NoError(t, err)
	require.Len(t, before, 1)

	require.NoError(t, NewIntegrator(st).MigrateVersion(ctx, ex+"S", before[0].Value))

	after, err := graph.Objects(ctx, st, iri("S"), graph.IRI(governance.Version))
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestResolveDependencies(t *testing.T) {
	ctx := context.Background()
	st := (&builder{}).
		spore("S", model).
		spore("Base", model).
		add(tr(iri("S"), governance.OWLImports, iri("Base"))).
		store(t)
	i := NewIntegrator(st)

	require.NoError(t, i.ResolveDependencies(ctx, ex+"S"))
	require.NoError(t, i.ResolveDependencies(ctx, ex+"Base"), "no imports resolves trivially")

	require.NoError(t, st.Add(ctx, tr(iri("S"), governance.OWLImports, iri("Missing"))))
	err := i.ResolveDependencies(ctx, ex+"S")
	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))
	assert.Contains(t, err.Error(), ex+"Missing")
}

func TestFindConflicts(t *testing.T) {
	ctx := context.Background()
	sporeGraph := (&builder{}).add(
		tr(iri("Shared"), governance.RDFType, graph.IRI(governance.OWLClass)),
		tr(iri("New"), governance.RDFType, graph.IRI(governance.OWLClass)),
		tr(iri("knows"), governance.RDFType, graph.IRI(governance.OWLObjectProp)),
	).store(t)
	modelGraph := (&builder{}).add(
		tr(iri("Shared"), governance.RDFType, graph.IRI(governance.OWLClass)),
		tr(iri("knows"), governance.RDFType, graph.IRI(governance.OWLObjectProp)),
		tr(iri("Other"), governance.RDFType, graph.IRI(governance.OWLClass)),
	).store(t)

	conflicts, err := FindConflicts(ctx, sporeGraph, modelGraph)
	require.NoError(t, err)
	require.Len(t, conflicts, 2)
	assert.Contains(t, conflicts[0], "class <"+ex+"Shared>")
	assert.Contains(t, conflicts[1], "object property <"+ex+"knows>")

	none, err := FindConflicts(ctx, graph.NewMemoryStore(), modelGraph)
	require.NoError(t, err)
	assert.Empty(t, none)
}
