// Package governance provides the governance ontology vocabulary consumed by
// the spore integration engine.
//
// The engine works on RDF triples, so every term here is a full IRI. The
// dotted predicate names registered in init() follow the semstreams
// vocabulary conventions (domain.category.property) and map back to the
// IRIs with vocabulary.WithIRI, so graph triples can be exported or published
// either way.
//
// # Entities
//
//	Spore        → gov:TransformationPattern
//	Patch        → gov:ConceptPatch
//	Operation    → gov:AddClassOperation | gov:RemoveClassOperation | ...
//	Process      → gov:IntegrationProcess
//	Step         → gov:ValidationStep | gov:TransformationStep | gov:MergeStep
//	Rule         → gov:ValidationRule
//	Conformance  → gov:ModelConformance
//
// # Usage
//
//	import "github.com/c360studio/semspore/vocabulary/governance"
//
//	owned := graph.NewTriple(
//	    graph.IRI(sporeIRI),
//	    graph.IRI(governance.DistributesPatch),
//	    graph.IRI(patchIRI),
//	)
package governance
