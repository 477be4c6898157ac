package spore

import (
	"context"
	"testing"

	"github.com/c360studio/semspore/errs"
	"github.com/c360studio/semspore/graph"
	"github.com/c360studio/semspore/vocabulary/governance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSpore(t *testing.T) {
	pattern := iri("pattern")

	tests := []struct {
		name        string
		build       func(*builder)
		wantSubject string
		wantDetail  string
	}{
		{
			name: "complete spore",
			build: func(b *builder) {
				b.spore("s", model).patch("s", "p").add(
					tr(iri("s"), governance.HasPattern, pattern),
					tr(pattern, governance.RDFType, graph.IRI(governance.TransformationPattern)),
					tr(pattern, governance.RDFSLabel, graph.Literal("pattern")),
					tr(pattern, governance.RDFSComment, graph.Literal("a pattern")),
				)
			},
		},
		{
			name:        "not a transformation pattern",
			build:       func(b *builder) { b.add(tr(iri("s"), governance.RDFSLabel, graph.Literal("s"))) },
			wantSubject: ex + "s",
			wantDetail:  "not a gov:TransformationPattern",
		},
		{
			name: "missing version",
			build: func(b *builder) {
				b.add(
					tr(iri("s"), governance.RDFType, graph.IRI(governance.TransformationPattern)),
					tr(iri("s"), governance.RDFSLabel, graph.Literal("s")),
					tr(iri("s"), governance.RDFSComment, graph.Literal("s")),
				)
			},
			wantSubject: ex + "s",
			wantDetail:  "missing gov:version",
		},
		{
			name: "pattern without comment",
			build: func(b *builder) {
				b.spore("s", model).add(
					tr(iri("s"), governance.HasPattern, pattern),
					tr(pattern, governance.RDFType, graph.IRI(governance.TransformationPattern)),
					tr(pattern, governance.RDFSLabel, graph.Literal("pattern")),
				)
			},
			wantSubject: ex + "pattern",
			wantDetail:  "missing rdfs:comment",
		},
		{
			name: "patch not a concept patch",
			build: func(b *builder) {
				b.spore("s", model).add(tr(iri("s"), governance.DistributesPatch, iri("p")))
			},
			wantSubject: ex + "p",
			wantDetail:  "patch is not a gov:ConceptPatch",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &builder{}
			tt.build(b)
			v := NewValidator(b.store(t))

			err := v.ValidateSpore(context.Background(), ex+"s")
			if tt.wantDetail == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errs.IsValidation(err))
			var e *errs.Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, tt.wantSubject, e.Subject)
			assert.Contains(t, e.Detail, tt.wantDetail)
		})
	}
}

func TestValidateSporeEmptyIdentifier(t *testing.T) {
	v := NewValidator(graph.NewMemoryStore())
	assert.True(t, errs.IsInvalidInput(v.ValidateSpore(context.Background(), "")))
	assert.True(t, errs.IsInvalidInput(v.ValidateSHACL(context.Background(), "")))
}

func TestValidateSHACL(t *testing.T) {
	shape, prop := iri("SporeShape"), graph.Blank("p1")
	shapeTriples := []graph.Triple{
		tr(shape, governance.RDFType, graph.IRI(governance.SHNodeShape)),
		tr(shape, governance.SHTargetClass, graph.IRI(governance.TransformationPattern)),
		tr(shape, governance.SHProperty, prop),
		tr(prop, governance.SHPath, graph.IRI(governance.Version)),
	}

	t.Run("no shapes", func(t *testing.T) {
		b := (&builder{}).spore("s", model)
		assert.NoError(t, NewValidator(b.store(t)).ValidateSHACL(context.Background(), ex+"s"))
	})

	t.Run("path satisfied", func(t *testing.T) {
		b := (&builder{}).spore("s", model).add(shapeTriples...)
		assert.NoError(t, NewValidator(b.store(t)).ValidateSHACL(context.Background(), ex+"s"))
	})

	t.Run("path missing", func(t *testing.T) {
		b := (&builder{}).add(shapeTriples...).add(
			tr(iri("s"), governance.RDFType, graph.IRI(governance.TransformationPattern)),
		)
		err := NewValidator(b.store(t)).ValidateSHACL(context.Background(), ex+"s")
		require.Error(t, err)
		assert.True(t, errs.IsValidation(err))
		assert.Contains(t, err.Error(), "gov:version")
		assert.Contains(t, err.Error(), ex+"SporeShape")
	})

	t.Run("shape for another class ignored", func(t *testing.T) {
		other := iri("OtherShape")
		b := (&builder{}).spore("s", model).add(
			tr(other, governance.RDFType, graph.IRI(governance.SHNodeShape)),
			tr(other, governance.SHTargetClass, graph.IRI(governance.ConceptPatch)),
			tr(other, governance.SHProperty, graph.Blank("p2")),
			tr(graph.Blank("p2"), governance.SHPath, graph.IRI(governance.HasOperation)),
		)
		assert.NoError(t, NewValidator(b.store(t)).ValidateSHACL(context.Background(), ex+"s"))
	})
}

func TestExists(t *testing.T) {
	b := (&builder{}).spore("s", model)
	v := NewValidator(b.store(t))
	assert.NoError(t, v.Exists(context.Background(), ex+"s"))
	assert.True(t, errs.IsValidation(v.Exists(context.Background(), ex+"missing")))
}
