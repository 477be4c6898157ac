// Package spore validates spores and integrates them into target models.
//
// A spore is a gov:TransformationPattern that distributes gov:ConceptPatch
// nodes to the model named by its gov:targetModel edge. Each patch holds
// operations that add or remove class and object-property declarations.
//
// The package has three layers over a single graph.Store:
//
//   - Validator checks the structure of a spore and its SHACL shapes.
//   - Applier checks compatibility and applies one patch at a time.
//   - Integrator composes both to integrate single spores and batches,
//     migrate versions and resolve owl:imports dependencies.
//
// Nothing is transactional. A failed patch leaves the triples added by its
// earlier operations in place, and a failed batch leaves earlier spores
// applied. Callers needing atomicity take a graph.Snapshot first.
package spore
