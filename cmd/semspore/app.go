package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/c360studio/semspore/config"
	"github.com/c360studio/semspore/conformance"
	"github.com/c360studio/semspore/graph"
	"github.com/c360studio/semspore/graph/sqlite"
	"github.com/c360studio/semspore/process"
	"github.com/c360studio/semspore/rdfio"
	"github.com/c360studio/semspore/spore"
	"github.com/c360studio/semspore/vocabulary/governance"
	"github.com/nats-io/nats.go"
)

// app wires one store to the engine components for a single command.
type app struct {
	cfg    *config.Config
	logger *slog.Logger

	store      graph.Store
	gate       *conformance.Gate
	integrator *spore.Integrator
	engine     *process.Engine

	closers []func() error
}

// newApp opens the configured store and builds the components over it.
func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	switch cfg.Store.Backend {
	case "sqlite":
		st, err := sqlite.Open(ctx, cfg.Store.Path)
		if err != nil {
			return nil, err
		}
		a.store = st
		a.closers = append(a.closers, st.Close)
		logger.Debug("Opened SQLite store", "path", st.Path())
	default:
		a.store = graph.NewMemoryStore()
	}

	a.gate = conformance.NewGate(a.store, conformance.WithLogger(logger))
	level, err := conformance.ParseLevel(cfg.Conformance.Level)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	if err := a.gate.SetLevel(level); err != nil {
		_ = a.Close()
		return nil, err
	}

	opts := []spore.IntegratorOption{
		spore.WithLogger(logger),
		spore.WithPrecheckWorkers(cfg.Integration.PrecheckWorkers),
	}
	if cfg.Integration.EnforceConformance {
		opts = append(opts, spore.WithGate(a.gate))
	}
	if cfg.NATS.URL != "" {
		nc, err := nats.Connect(cfg.NATS.URL, nats.Name(appName))
		if err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("connect to NATS at %s: %w", cfg.NATS.URL, err)
		}
		a.closers = append(a.closers, func() error { return nc.Drain() })
		opts = append(opts, spore.WithPatchPublisher(graph.NewNATSPublisher(nc, cfg.NATS.Subject)))
		logger.Debug("Publishing applied patches", "url", cfg.NATS.URL, "subject", cfg.NATS.Subject)
	}

	a.integrator = spore.NewIntegrator(a.store, opts...)
	a.engine = process.NewEngine(a.store, process.WithGate(a.gate), process.WithLogger(logger))
	return a, nil
}

// Close releases the store and NATS connection in reverse order.
func (a *app) Close() error {
	var firstErr error
	for _, c := range slices.Backward(a.closers) {
		if err := c(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	a.closers = nil
	return firstErr
}

// load expands patterns and loads every matching document into the store.
func (a *app) load(ctx context.Context, patterns []string) ([]string, error) {
	files, err := expandPatterns(patterns)
	if err != nil {
		return nil, err
	}
	for _, f := range files {
		stats, err := rdfio.LoadFile(ctx, a.store, f)
		if err != nil {
			return nil, err
		}
		a.logger.Debug("Loaded document", "path", f, "triples", stats.Triples, "prefixes", stats.Prefixes)
	}
	return files, nil
}

// spores lists every gov:TransformationPattern subject in the store.
func (a *app) spores(ctx context.Context) ([]string, error) {
	nodes, err := graph.Subjects(ctx, a.store, graph.IRI(governance.RDFType), graph.IRI(governance.TransformationPattern))
	if err != nil {
		return nil, err
	}
	var out []string
	for _, n := range nodes {
		if n.IsIRI() {
			out = append(out, n.Value)
		}
	}
	return out, nil
}

// write serializes the store to path, or to stdout when path is "-".
func (a *app) write(ctx context.Context, path, format string, stdout io.Writer) error {
	f, err := outputFormat(path, format)
	if err != nil {
		return err
	}
	if path == "-" {
		return rdfio.Write(ctx, a.store, stdout, f)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := rdfio.Write(ctx, a.store, out, f); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// outputFormat takes an explicit format, else the one implied by path.
func outputFormat(path, format string) (rdfio.Format, error) {
	if format != "" {
		return rdfio.ParseFormat(format)
	}
	if path == "" || path == "-" {
		return rdfio.FormatTurtle, nil
	}
	return rdfio.FormatForPath(path)
}

// expandPatterns resolves doublestar patterns and plain paths to a sorted,
// de-duplicated file list. Directories expand to the documents below them.
func expandPatterns(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			files = append(files, p)
		}
	}

	for _, pattern := range patterns {
		if !containsGlob(pattern) {
			info, err := os.Stat(pattern)
			if err != nil {
				return nil, fmt.Errorf("stat %s: %w", pattern, err)
			}
			if !info.IsDir() {
				add(pattern)
				continue
			}
			pattern = filepath.Join(pattern, "**", "*.{ttl,nt}")
		}

		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("glob error: %w", err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no documents match pattern: %s", pattern)
		}
		for _, m := range matches {
			add(m)
		}
	}
	slices.Sort(files)
	return files, nil
}

// containsGlob checks if a pattern contains glob characters.
func containsGlob(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}
