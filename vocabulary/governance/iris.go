package governance

import "github.com/c360studio/semstreams/vocabulary"

// Namespace is the base IRI for governance ontology terms.
const Namespace = "https://semspec.dev/governance#"

// Prefix is the conventional prefix bound to Namespace.
const Prefix = "gov"

// Standard namespaces used by spores and target models.
const (
	RDFNamespace  = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	RDFSNamespace = "http://www.w3.org/2000/01/rdf-schema#"
	OWLNamespace  = "http://www.w3.org/2002/07/owl#"
	XSDNamespace  = "http://www.w3.org/2001/XMLSchema#"
	SHNamespace   = "http://www.w3.org/ns/shacl#"
)

// Standard terms.
const (
	RDFType         = RDFNamespace + "type"
	RDFSLabel       = vocabulary.RdfsLabel
	RDFSComment     = vocabulary.RdfsComment
	RDFSIsDefinedBy = RDFSNamespace + "isDefinedBy"
	OWLClass        = OWLNamespace + "Class"
	OWLObjectProp   = OWLNamespace + "ObjectProperty"
	OWLImports      = OWLNamespace + "imports"
	OWLOntology     = OWLNamespace + "Ontology"
	XSDString       = XSDNamespace + "string"
	XSDInteger      = XSDNamespace + "integer"
	XSDBoolean      = XSDNamespace + "boolean"
	SHNodeShape     = SHNamespace + "NodeShape"
	SHTargetClass   = SHNamespace + "targetClass"
	SHProperty      = SHNamespace + "property"
	SHPath          = SHNamespace + "path"
)

// Class IRIs.
const (
	// TransformationPattern is the class of spores and of the patterns they declare.
	TransformationPattern = Namespace + "TransformationPattern"

	// ConceptPatch is the class of patches distributed by a spore.
	ConceptPatch = Namespace + "ConceptPatch"

	// ValidationRule is the class of rules attached to integration steps.
	ValidationRule = Namespace + "ValidationRule"

	// ModelConformance is the class of conformance descriptors on target models.
	ModelConformance = Namespace + "ModelConformance"

	// IntegrationProcess is the class of multi-step integration processes.
	IntegrationProcess = Namespace + "IntegrationProcess"

	// ValidationStep validates a target model.
	ValidationStep = Namespace + "ValidationStep"

	// TransformationStep transforms a target model.
	TransformationStep = Namespace + "TransformationStep"

	// MergeStep merges declarations from a source model into a target model.
	MergeStep = Namespace + "MergeStep"
)

// Operation type IRIs.
const (
	AddClassOperation             = Namespace + "AddClassOperation"
	RemoveClassOperation          = Namespace + "RemoveClassOperation"
	AddObjectPropertyOperation    = Namespace + "AddObjectPropertyOperation"
	RemoveObjectPropertyOperation = Namespace + "RemoveObjectPropertyOperation"
)

// Spore and patch properties.
const (
	// Version is the spore version literal rewritten by version migration.
	Version = Namespace + "version"

	// DistributesPatch is the ownership edge from a spore to a patch.
	DistributesPatch = Namespace + "distributesPatch"

	// TargetModel is the compatibility edge from a spore to a target model.
	TargetModel = Namespace + "targetModel"

	// HasPattern links a spore to the transformation patterns it declares.
	HasPattern = Namespace + "hasPattern"

	// PatchOrder optionally orders the patches of a spore.
	PatchOrder = Namespace + "patchOrder"

	// HasOperation links a patch to its operations.
	HasOperation = Namespace + "hasOperation"

	// OperationOrder optionally orders the operations of a patch.
	OperationOrder = Namespace + "operationOrder"

	// TargetClass is the class parameter of class operations.
	TargetClass = Namespace + "targetClass"

	// TargetProperty is the property parameter of property operations.
	TargetProperty = Namespace + "targetProperty"
)

// Conformance descriptor properties.
const (
	HasConformance              = Namespace + "hasConformance"
	ConformanceLevel            = Namespace + "conformanceLevel"
	RequiresPrefixValidation    = Namespace + "requiresPrefixValidation"
	RequiresNamespaceValidation = Namespace + "requiresNamespaceValidation"
)

// Integration process properties.
const (
	HasIntegrationStep    = Namespace + "hasIntegrationStep"
	StepOrder             = Namespace + "stepOrder"
	StepDescription       = Namespace + "stepDescription"
	Validates             = Namespace + "validates"
	Transforms            = Namespace + "transforms"
	MergesFrom            = Namespace + "mergesFrom"
	MergesTo              = Namespace + "mergesTo"
	HasValidationRule     = Namespace + "hasValidationRule"
	HasTransformationRule = Namespace + "hasTransformationRule"
	HasMergeRule          = Namespace + "hasMergeRule"
	RequiresProperty      = Namespace + "requiresProperty"
	RequiresType          = Namespace + "requiresType"
	SetsProperty          = Namespace + "setsProperty"
	SetsValue             = Namespace + "setsValue"
	MergesType            = Namespace + "mergesType"
)

// DefaultPrefixes returns the namespace bindings written by the encoders.
func DefaultPrefixes() map[string]string {
	return map[string]string{
		"rdf":  RDFNamespace,
		"rdfs": RDFSNamespace,
		"owl":  OWLNamespace,
		"xsd":  XSDNamespace,
		"sh":   SHNamespace,
		Prefix: Namespace,
	}
}
