package governance

import "github.com/c360studio/semstreams/vocabulary"

// Spore predicates use dotted notation for NATS wildcard queries.
const (
	// SporeVersion is the spore version string.
	SporeVersion = "governance.spore.version"

	// SporePatch links a spore to a patch it distributes.
	SporePatch = "governance.spore.patch"

	// SporeTarget links a spore to the target model it is compatible with.
	SporeTarget = "governance.spore.target"

	// SporePattern links a spore to a declared transformation pattern.
	SporePattern = "governance.spore.pattern"

	// SporeImport links a spore to another spore it depends on.
	SporeImport = "governance.spore.import"
)

// Patch predicates.
const (
	// PatchOperation links a patch to one of its operations.
	PatchOperation = "governance.patch.operation"

	// PatchOrderPredicate orders patches within a spore.
	PatchOrderPredicate = "governance.patch.order"

	// OperationOrderPredicate orders operations within a patch.
	OperationOrderPredicate = "governance.operation.order"

	// OperationClass is the class an operation adds or removes.
	OperationClass = "governance.operation.class"

	// OperationProperty is the property an operation adds or removes.
	OperationProperty = "governance.operation.property"
)

// Conformance predicates.
const (
	// ModelConformancePredicate links a model to its conformance descriptor.
	ModelConformancePredicate = "governance.model.conformance"

	// ConformanceLevelPredicate is the descriptor strictness level.
	// Values: STRICT, MODERATE, RELAXED
	ConformanceLevelPredicate = "governance.conformance.level"

	// ConformancePrefixes toggles namespace prefix validation.
	ConformancePrefixes = "governance.conformance.prefixes"

	// ConformanceNamespaces toggles namespace IRI validation.
	ConformanceNamespaces = "governance.conformance.namespaces"
)

// Process predicates.
const (
	// ProcessStep links a process to one of its steps.
	ProcessStep = "governance.process.step"

	// StepOrderPredicate is the 1-based position of a step.
	StepOrderPredicate = "governance.step.order"

	// StepDescriptionPredicate describes a step.
	StepDescriptionPredicate = "governance.step.description"

	// StepValidates is the target of a validation step.
	StepValidates = "governance.step.validates"

	// StepTransforms is the target of a transformation step.
	StepTransforms = "governance.step.transforms"

	// StepMergesFrom is the source of a merge step.
	StepMergesFrom = "governance.step.merges_from"

	// StepMergesTo is the target of a merge step.
	StepMergesTo = "governance.step.merges_to"
)

// PredicateIRIMap maps dotted predicates to the IRIs used inside the graph.
var PredicateIRIMap = map[string]string{
	SporeVersion:              Version,
	SporePatch:                DistributesPatch,
	SporeTarget:               TargetModel,
	SporePattern:              HasPattern,
	SporeImport:               OWLImports,
	PatchOperation:            HasOperation,
	PatchOrderPredicate:       PatchOrder,
	OperationOrderPredicate:   OperationOrder,
	OperationClass:            TargetClass,
	OperationProperty:         TargetProperty,
	ModelConformancePredicate: HasConformance,
	ConformanceLevelPredicate: ConformanceLevel,
	ConformancePrefixes:       RequiresPrefixValidation,
	ConformanceNamespaces:     RequiresNamespaceValidation,
	ProcessStep:               HasIntegrationStep,
	StepOrderPredicate:        StepOrder,
	StepDescriptionPredicate:  StepDescription,
	StepValidates:             Validates,
	StepTransforms:            Transforms,
	StepMergesFrom:            MergesFrom,
	StepMergesTo:              MergesTo,
}

// GetPredicateIRI returns the graph IRI for a dotted predicate.
// Unknown predicates fall back to the governance namespace.
func GetPredicateIRI(predicate string) string {
	if iri, ok := PredicateIRIMap[predicate]; ok {
		return iri
	}
	return Namespace + predicate
}

func init() {
	registerSporePredicates()
	registerPatchPredicates()
	registerConformancePredicates()
	registerProcessPredicates()
}

func registerSporePredicates() {
	vocabulary.Register(SporeVersion,
		vocabulary.WithDescription("Spore version string"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(Version))

	vocabulary.Register(SporePatch,
		vocabulary.WithDescription("Patch distributed by the spore"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(DistributesPatch))

	vocabulary.Register(SporeTarget,
		vocabulary.WithDescription("Target model the spore is compatible with"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(TargetModel))

	vocabulary.Register(SporePattern,
		vocabulary.WithDescription("Transformation pattern declared by the spore"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(HasPattern))

	vocabulary.Register(SporeImport,
		vocabulary.WithDescription("Spore this spore depends on"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(OWLImports))
}

func registerPatchPredicates() {
	vocabulary.Register(PatchOperation,
		vocabulary.WithDescription("Operation contained in the patch"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(HasOperation))

	vocabulary.Register(PatchOrderPredicate,
		vocabulary.WithDescription("Application order of a patch within its spore"),
		vocabulary.WithDataType("int"),
		vocabulary.WithIRI(PatchOrder))

	vocabulary.Register(OperationOrderPredicate,
		vocabulary.WithDescription("Application order of an operation within its patch"),
		vocabulary.WithDataType("int"),
		vocabulary.WithIRI(OperationOrder))

	vocabulary.Register(OperationClass,
		vocabulary.WithDescription("Class added or removed by the operation"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(TargetClass))

	vocabulary.Register(OperationProperty,
		vocabulary.WithDescription("Property added or removed by the operation"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(TargetProperty))
}

func registerConformancePredicates() {
	vocabulary.Register(ModelConformancePredicate,
		vocabulary.WithDescription("Conformance descriptor of a target model"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(HasConformance))

	vocabulary.Register(ConformanceLevelPredicate,
		vocabulary.WithDescription("Conformance level (STRICT, MODERATE, RELAXED)"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(ConformanceLevel))

	vocabulary.Register(ConformancePrefixes,
		vocabulary.WithDescription("Whether namespace prefixes are validated"),
		vocabulary.WithDataType("bool"),
		vocabulary.WithIRI(RequiresPrefixValidation))

	vocabulary.Register(ConformanceNamespaces,
		vocabulary.WithDescription("Whether namespace IRIs are validated"),
		vocabulary.WithDataType("bool"),
		vocabulary.WithIRI(RequiresNamespaceValidation))
}

func registerProcessPredicates() {
	vocabulary.Register(ProcessStep,
		vocabulary.WithDescription("Step of an integration process"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(HasIntegrationStep))

	vocabulary.Register(StepOrderPredicate,
		vocabulary.WithDescription("1-based execution order of the step"),
		vocabulary.WithDataType("int"),
		vocabulary.WithIRI(StepOrder))

	vocabulary.Register(StepDescriptionPredicate,
		vocabulary.WithDescription("Human readable step description"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(StepDescription))

	vocabulary.Register(StepValidates,
		vocabulary.WithDescription("Model validated by the step"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(Validates))

	vocabulary.Register(StepTransforms,
		vocabulary.WithDescription("Model transformed by the step"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(Transforms))

	vocabulary.Register(StepMergesFrom,
		vocabulary.WithDescription("Source model of a merge step"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(MergesFrom))

	vocabulary.Register(StepMergesTo,
		vocabulary.WithDescription("Target model of a merge step"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(MergesTo))
}
