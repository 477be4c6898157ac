package spore

import (
	"context"
	"testing"

	"github.com/c360studio/semspore/graph"
	"github.com/c360studio/semspore/vocabulary/governance"
	"github.com/stretchr/testify/require"
)

const (
	ex    = "https://example.org/"
	model = ex + "model"
)

func iri(local string) graph.Term { return graph.IRI(ex + local) }

func tr(s graph.Term, p string, o graph.Term) graph.Triple {
	return graph.NewTriple(s, graph.IRI(p), o)
}

// builder assembles spore graphs for tests.
type builder struct {
	triples []graph.Triple
}

func (b *builder) add(ts ...graph.Triple) *builder {
	b.triples = append(b.triples, ts...)
	return b
}

// spore declares a complete spore targeting target.
func (b *builder) spore(name, target string) *builder {
	s := iri(name)
	return b.add(
		tr(s, governance.RDFType, graph.IRI(governance.TransformationPattern)),
		tr(s, governance.RDFSLabel, graph.Literal(name)),
		tr(s, governance.RDFSComment, graph.Literal("test spore "+name)),
		tr(s, governance.Version, graph.Literal("1.0.0")),
		tr(s, governance.TargetModel, graph.IRI(target)),
	)
}

// patch declares a described patch distributed by spore.
func (b *builder) patch(spore, name string) *builder {
	p := iri(name)
	return b.add(
		tr(iri(spore), governance.DistributesPatch, p),
		tr(p, governance.RDFType, graph.IRI(governance.ConceptPatch)),
		tr(p, governance.RDFSLabel, graph.Literal(name)),
		tr(p, governance.RDFSComment, graph.Literal("test patch "+name)),
	)
}

// op attaches an operation of typeIRI to patch.
func (b *builder) op(patch, name, typeIRI string, order int, target graph.Term) *builder {
	o := iri(name)
	param := governance.TargetClass
	if k := OperationKindOf(typeIRI); k == OpAddObjectProperty || k == OpRemoveObjectProperty {
		param = governance.TargetProperty
	}
	b.add(
		tr(iri(patch), governance.HasOperation, o),
		tr(o, governance.RDFType, graph.IRI(typeIRI)),
	)
	if order > 0 {
		b.add(tr(o, governance.OperationOrder, graph.Integer(order)))
	}
	if !target.IsZero() {
		b.add(tr(o, param, target))
	}
	return b
}

func (b *builder) store(t *testing.T) *graph.MemoryStore {
	t.Helper()
	st := graph.NewMemoryStore()
	require.NoError(t, st.Add(context.Background(), b.triples...))
	return st
}

func has(t *testing.T, st graph.Store, triple graph.Triple) bool {
	t.Helper()
	ok, err := st.Has(context.Background(), triple)
	require.NoError(t, err)
	return ok
}

func storeLen(t *testing.T, st graph.Store) int {
	t.Helper()
	n, err := st.Len(context.Background())
	require.NoError(t, err)
	return n
}
