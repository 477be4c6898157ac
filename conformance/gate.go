package conformance

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/c360studio/semspore/errs"
	"github.com/c360studio/semspore/graph"
)

// maxReported caps how many offending prefixes or IRIs an error lists.
const maxReported = 5

// Gate holds the current conformance level and evaluates target models
// against it.
type Gate struct {
	store  graph.Store
	logger *slog.Logger

	mu       sync.Mutex
	level    Level
	warnings []string
}

// GateOption configures a Gate.
type GateOption func(*Gate)

// WithLogger sets the logger used for warnings.
func WithLogger(logger *slog.Logger) GateOption {
	return func(g *Gate) {
		g.logger = logger
	}
}

// NewGate creates a gate over st. The level starts at Strict.
func NewGate(st graph.Store, opts ...GateOption) *Gate {
	g := &Gate{
		store:  st,
		logger: slog.Default(),
		level:  Strict,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Level returns the current level.
func (g *Gate) Level() Level {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.level
}

// SetLevel replaces the current level. Values outside the three named
// levels are rejected with a conformance error and leave the level unchanged.
func (g *Gate) SetLevel(level Level) error {
	if !level.IsValid() {
		return errs.Conformancef("set_conformance_level", string(level),
			"unknown conformance level, expected one of STRICT, MODERATE, RELAXED")
	}
	g.mu.Lock()
	g.level = level
	g.mu.Unlock()
	return nil
}

// Warnings returns the warnings recorded under Moderate, oldest first.
func (g *Gate) Warnings() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return slices.Clone(g.warnings)
}

// ResetWarnings discards recorded warnings.
func (g *Gate) ResetWarnings() {
	g.mu.Lock()
	g.warnings = nil
	g.mu.Unlock()
}

func (g *Gate) warn(model string, err error) {
	g.mu.Lock()
	g.warnings = append(g.warnings, err.Error())
	g.mu.Unlock()
	g.logger.Warn("Conformance check failed", "model", model, "error", err)
}

// ValidateConformance checks model against the current level.
//
// A missing descriptor or level fails under Strict and passes otherwise.
// Under Strict the prefix and namespace checks must pass; under Moderate
// their failures become warnings; under Relaxed they are skipped. A
// descriptor can switch either check off.
func (g *Gate) ValidateConformance(ctx context.Context, model string) error {
	const op = "validate_conformance"
	if model == "" {
		return errs.InvalidInput(op, "target model identifier is empty")
	}

	level := g.Level()
	desc, err := LoadDescriptor(ctx, g.store, model)
	if err != nil {
		return err
	}
	if desc == nil || desc.Level == "" {
		if level == Strict {
			if desc == nil {
				return errs.Conformance(op, model, "model has no conformance descriptor")
			}
			return errs.Conformance(op, model, "conformance descriptor has no level")
		}
		g.logger.Debug("Conformance descriptor incomplete, tolerated", "model", model, "level", level)
		return nil
	}

	if level == Relaxed {
		return nil
	}

	var checks []func(context.Context, string) error
	if desc.RequirePrefixes {
		checks = append(checks, g.ValidatePrefixes)
	}
	if desc.RequireNamespaces {
		checks = append(checks, g.ValidateNamespaces)
	}

	for _, check := range checks {
		err := check(ctx, model)
		if err == nil {
			continue
		}
		if errs.KindOf(err) != errs.KindValidation {
			return err
		}
		if level == Strict {
			return errs.Wrap(errs.KindConformance, op, model, err)
		}
		g.warn(model, err)
	}
	return nil
}

// ValidatePrefixes requires every namespace binding in the store to have
// a non-empty prefix and an http or https IRI.
func (g *Gate) ValidatePrefixes(ctx context.Context, model string) error {
	ns, err := g.store.Namespaces(ctx)
	if err != nil {
		return fmt.Errorf("list namespaces: %w", err)
	}

	prefixes := make([]string, 0, len(ns))
	for p := range ns {
		prefixes = append(prefixes, p)
	}
	sort.Strings(prefixes)

	var bad []string
	for _, p := range prefixes {
		switch {
		case p == "":
			bad = append(bad, fmt.Sprintf("empty prefix bound to <%s>", ns[p]))
		case !IsHTTPIRI(ns[p]):
			bad = append(bad, fmt.Sprintf("%s: bound to non-http IRI <%s>", p, ns[p]))
		}
	}
	if len(bad) > 0 {
		return errs.Validationf("validate_prefixes", model, "%d invalid namespace binding(s): %s",
			len(bad), summarize(bad))
	}
	return nil
}

// ValidateNamespaces requires every IRI subject and object in the store to
// use the http or https scheme. Blank nodes and literals are ignored.
func (g *Gate) ValidateNamespaces(ctx context.Context, model string) error {
	triples, err := g.store.Match(ctx, graph.Term{}, graph.Term{}, graph.Term{})
	if err != nil {
		return fmt.Errorf("list triples: %w", err)
	}

	seen := make(map[string]bool)
	var bad []string
	for _, t := range triples {
		for _, term := range []graph.Term{t.Subject, t.Object} {
			if !term.IsIRI() || IsHTTPIRI(term.Value) || seen[term.Value] {
				continue
			}
			seen[term.Value] = true
			bad = append(bad, "<"+term.Value+">")
		}
	}
	if len(bad) > 0 {
		return errs.Validationf("validate_namespaces", model, "%d non-http IRI(s): %s",
			len(bad), summarize(bad))
	}
	return nil
}

// IsHTTPIRI reports whether iri uses the http or https scheme.
func IsHTTPIRI(iri string) bool {
	lower := strings.ToLower(iri)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func summarize(items []string) string {
	if len(items) <= maxReported {
		return strings.Join(items, ", ")
	}
	return strings.Join(items[:maxReported], ", ") + fmt.Sprintf(" and %d more", len(items)-maxReported)
}
