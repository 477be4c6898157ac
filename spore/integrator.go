package spore

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/c360studio/semspore/conformance"
	"github.com/c360studio/semspore/errs"
	"github.com/c360studio/semspore/graph"
	"github.com/c360studio/semspore/vocabulary/governance"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// defaultPrecheckWorkers bounds parallel compatibility checks in a batch.
const defaultPrecheckWorkers = 8

// Integrator integrates spores into target models held in one store.
type Integrator struct {
	store     graph.Store
	validator *Validator
	applier   *Applier
	gate      *conformance.Gate
	logger    *slog.Logger
	workers   int
	newRunID  func() string

	applierOpts []ApplierOption
}

// IntegratorOption configures an Integrator.
type IntegratorOption func(*Integrator)

// WithLogger sets the logger for the integrator and its applier.
func WithLogger(logger *slog.Logger) IntegratorOption {
	return func(i *Integrator) {
		i.logger = logger
		i.applierOpts = append(i.applierOpts, WithApplierLogger(logger))
	}
}

// WithGate makes integration require the target model to pass the gate
// before any patch is applied.
func WithGate(g *conformance.Gate) IntegratorOption {
	return func(i *Integrator) {
		i.gate = g
	}
}

// WithPatchPublisher announces the triples each applied patch adds.
func WithPatchPublisher(p graph.Publisher) IntegratorOption {
	return func(i *Integrator) {
		i.applierOpts = append(i.applierOpts, WithPublisher(p))
	}
}

// WithPrecheckWorkers bounds the parallel batch pre-check. Values below 1
// are ignored.
func WithPrecheckWorkers(n int) IntegratorOption {
	return func(i *Integrator) {
		if n > 0 {
			i.workers = n
		}
	}
}

// NewIntegrator creates an integrator over st.
func NewIntegrator(st graph.Store, opts ...IntegratorOption) *Integrator {
	i := &Integrator{
		store:    st,
		logger:   slog.Default(),
		workers:  defaultPrecheckWorkers,
		newRunID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(i)
	}
	i.validator = NewValidator(st)
	i.applier = NewApplier(st, i.applierOpts...)
	return i
}

// Validator returns the validator used before integration.
func (i *Integrator) Validator() *Validator {
	return i.validator
}

// Applier returns the patch applier.
func (i *Integrator) Applier() *Applier {
	return i.applier
}

// IntegrateSpore validates spore, checks it targets model, then applies its
// patches in order. The first failing patch aborts with a validation error
// naming it.
func (i *Integrator) IntegrateSpore(ctx context.Context, spore, model string) error {
	return i.integrate(ctx, i.newRunID(), spore, model)
}

func (i *Integrator) integrate(ctx context.Context, runID, spore, model string) (err error) {
	const op = "integrate_spore"
	if spore == "" {
		return errs.InvalidInput(op, "spore identifier is empty")
	}
	if model == "" {
		return errs.InvalidInput(op, "target model identifier is empty")
	}

	log := i.logger.With("run_id", runID, "spore", spore, "model", model)
	start := time.Now()
	result := "failed"
	defer func() {
		integrationDuration.Observe(time.Since(start).Seconds())
		sporesIntegrated.WithLabelValues(result).Inc()
		if err != nil {
			log.Warn("Spore integration failed", "result", result, "error", err)
		}
	}()

	if err := i.validator.ValidateSpore(ctx, spore); err != nil {
		if errs.IsValidation(err) || errs.IsInvalidInput(err) {
			result = "invalid"
		}
		return err
	}

	ok, err := i.applier.CheckCompatibility(ctx, spore, model)
	if err != nil {
		return err
	}
	if !ok {
		result = "incompatible"
		return errs.Validationf(op, spore, "spore does not target model %s", model)
	}

	if i.gate != nil {
		if err := i.gate.ValidateConformance(ctx, model); err != nil {
			if errs.IsConformance(err) {
				result = "nonconformant"
			}
			return err
		}
	}

	patches, err := LoadPatches(ctx, i.store, spore)
	if err != nil {
		return err
	}
	for n, p := range patches {
		if err := i.applier.ApplyPatch(ctx, spore, p.IRI, model); err != nil {
			if errs.KindOf(err) == errs.KindUnknown {
				return err
			}
			return &errs.Error{
				Kind:    errs.KindValidation,
				Op:      op,
				Subject: p.IRI,
				Detail:  fmt.Sprintf("patch %d of %d failed", n+1, len(patches)),
				Err:     err,
			}
		}
	}

	result = "success"
	log.Info("Integrated spore", "patches", len(patches), "duration", time.Since(start))
	return nil
}

// IntegrateConcurrent integrates a batch of spores into model. Compatibility
// of every spore is checked first, in parallel and without writing; if any
// spore is incompatible nothing is applied. Spores are then integrated one
// after another in the given order. Either failure yields a
// concurrent-modification error. A failure during application leaves the
// spores before it applied.
func (i *Integrator) IntegrateConcurrent(ctx context.Context, spores []string, model string) (err error) {
	const op = "integrate_concurrent"
	if len(spores) == 0 {
		return errs.InvalidInput(op, "no spores given")
	}
	if model == "" {
		return errs.InvalidInput(op, "target model identifier is empty")
	}
	for _, s := range spores {
		if s == "" {
			return errs.InvalidInput(op, "spore identifier is empty")
		}
	}

	runID := i.newRunID()
	log := i.logger.With("run_id", runID, "model", model, "batch", len(spores))
	result := "apply_failed"
	defer func() {
		batchesIntegrated.WithLabelValues(result).Inc()
	}()

	compatible := make([]bool, len(spores))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(i.workers)
	for n, s := range spores {
		g.Go(func() error {
			ok, err := i.applier.CheckCompatibility(gctx, s, model)
			if err != nil {
				return err
			}
			compatible[n] = ok
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		result = "precheck_failed"
		return errs.ConcurrentModification(op, model, "batch pre-check failed", err)
	}

	var incompatible []string
	for n, ok := range compatible {
		if !ok {
			incompatible = append(incompatible, spores[n])
		}
	}
	if len(incompatible) > 0 {
		result = "precheck_failed"
		log.Warn("Batch rejected by pre-check", "incompatible", incompatible)
		return errs.ConcurrentModification(op, model,
			fmt.Sprintf("%d of %d spore(s) do not target the model: %s",
				len(incompatible), len(spores), strings.Join(incompatible, ", ")), nil)
	}

	for n, s := range spores {
		if err := i.integrate(ctx, runID, s, model); err != nil {
			return errs.ConcurrentModification(op, s,
				fmt.Sprintf("batch stopped after %d of %d spore(s) applied", n, len(spores)), err)
		}
	}

	result = "success"
	log.Info("Integrated spore batch")
	return nil
}

// MigrateVersion replaces the version literal of spore. Only a store
// failure produces an error, and a failed write keeps the previous version.
func (i *Integrator) MigrateVersion(ctx context.Context, spore, version string) error {
	const op = "migrate_version"
	if spore == "" {
		return errs.InvalidInput(op, "spore identifier is empty")
	}
	if version == "" {
		return errs.InvalidInput(op, "version is empty")
	}

	subject, predicate := graph.IRI(spore), graph.IRI(governance.Version)
	old, err := i.store.Match(ctx, subject, predicate, graph.Term{})
	if err != nil {
		return fmt.Errorf("read version of %s: %w", spore, err)
	}
	// Add before remove: a failed write must leave the old version.
	current := graph.NewTriple(subject, predicate, graph.Literal(version))
	if err := i.store.Add(ctx, current); err != nil {
		return fmt.Errorf("write version of %s: %w", spore, err)
	}
	for _, t := range old {
		if t == current {
			continue
		}
		if err := i.store.Remove(ctx, t); err != nil {
			return fmt.Errorf("remove version of %s: %w", spore, err)
		}
	}

	previous := make([]string, 0, len(old))
	for _, t := range old {
		previous = append(previous, t.Object.Value)
	}
	i.logger.Info("Migrated spore version", "spore", spore, "from", previous, "to", version)
	return nil
}

// ResolveDependencies requires every spore that spore imports with
// owl:imports to exist as a gov:TransformationPattern. Only direct imports
// are checked.
func (i *Integrator) ResolveDependencies(ctx context.Context, spore string) error {
	const op = "resolve_dependencies"
	if spore == "" {
		return errs.InvalidInput(op, "spore identifier is empty")
	}

	imports, err := graph.Objects(ctx, i.store, graph.IRI(spore), graph.IRI(governance.OWLImports))
	if err != nil {
		return fmt.Errorf("list imports of %s: %w", spore, err)
	}
	for _, imp := range imports {
		if !imp.IsIRI() {
			return errs.Validationf(op, spore, "import %s is not an IRI", imp)
		}
		if err := i.validator.Exists(ctx, imp.Value); err != nil {
			if errs.KindOf(err) == errs.KindUnknown {
				return err
			}
			return &errs.Error{
				Kind:    errs.KindValidation,
				Op:      op,
				Subject: spore,
				Detail:  "unresolved import " + imp.Value,
				Err:     err,
			}
		}
	}
	return nil
}
