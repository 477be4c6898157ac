package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/c360studio/semspore/config"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

const defaultDebounce = 500 * time.Millisecond

// documentExtensions are the files whose changes trigger a re-check.
var documentExtensions = map[string]bool{".ttl": true, ".nt": true}

// docWatcher re-runs spore checks when watched documents change.
type docWatcher struct {
	patterns []string
	cfg      *config.Config
	logger   *slog.Logger
	out      io.Writer
	debounce time.Duration
	watcher  *fsnotify.Watcher

	pendingMu sync.Mutex
	pending   map[string]fsnotify.Op
}

func newDocWatcher(patterns []string, cfg *config.Config, out io.Writer, logger *slog.Logger) (*docWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	// Each check starts from an empty graph.
	local := *cfg
	local.Store.Backend = "memory"

	return &docWatcher{
		patterns: patterns,
		cfg:      &local,
		logger:   logger,
		out:      out,
		debounce: defaultDebounce,
		watcher:  fsw,
		pending:  make(map[string]fsnotify.Op),
	}, nil
}

// watchDirs returns the directories holding the documents the patterns match.
func (w *docWatcher) watchDirs() ([]string, error) {
	files, err := expandPatterns(w.patterns)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var dirs []string
	for _, f := range files {
		dir := filepath.Dir(f)
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}
	return dirs, nil
}

// Run checks once, then again after every debounced batch of changes until
// ctx is done.
func (w *docWatcher) Run(ctx context.Context) error {
	defer func() { _ = w.watcher.Close() }()

	dirs, err := w.watchDirs()
	if err != nil {
		return err
	}
	for _, d := range dirs {
		if err := w.watcher.Add(d); err != nil {
			w.logger.Warn("Failed to watch directory", "path", d, "error", err)
			continue
		}
		w.logger.Debug("Watching directory", "path", d)
	}
	w.logger.Info("Document watcher started", "dirs", len(dirs), "debounce", w.debounce)

	w.check(ctx)

	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleFSEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("Watcher error", "error", err)

		case <-ticker.C:
			if w.flushPending() {
				w.check(ctx)
			}
		}
	}
}

// handleFSEvent records a change to a document file.
func (w *docWatcher) handleFSEvent(event fsnotify.Event) {
	if !documentExtensions[strings.ToLower(filepath.Ext(event.Name))] {
		return
	}
	w.pendingMu.Lock()
	w.pending[event.Name] |= event.Op
	w.pendingMu.Unlock()
	w.logger.Debug("Document change detected", "path", event.Name, "op", event.Op.String())
}

// flushPending clears pending changes and reports whether there were any.
func (w *docWatcher) flushPending() bool {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()
	if len(w.pending) == 0 {
		return false
	}
	w.pending = make(map[string]fsnotify.Op)
	return true
}

// check loads the documents into a fresh store and validates every spore.
func (w *docWatcher) check(ctx context.Context) {
	fmt.Fprintf(w.out, "--- %s\n", time.Now().Format(time.TimeOnly))
	a, err := newApp(ctx, w.cfg, w.logger)
	if err != nil {
		fmt.Fprintf(w.out, "FAIL setup: %v\n", err)
		return
	}
	defer func() { _ = a.Close() }()

	if _, err := a.load(ctx, w.patterns); err != nil {
		fmt.Fprintf(w.out, "FAIL load: %v\n", err)
		return
	}
	spores, err := a.spores(ctx)
	if err != nil {
		fmt.Fprintf(w.out, "FAIL list spores: %v\n", err)
		return
	}

	v := a.integrator.Validator()
	for _, s := range spores {
		err := v.ValidateSpore(ctx, s)
		if err == nil {
			err = v.ValidateSHACL(ctx, s)
		}
		if err == nil {
			err = a.integrator.ResolveDependencies(ctx, s)
		}
		if err != nil {
			fmt.Fprintf(w.out, "FAIL %s: %s\n", s, joinErrors(err))
			continue
		}
		fmt.Fprintf(w.out, "ok   %s\n", s)
	}
}

func watchCmd() *cobra.Command {
	var debounce time.Duration
	cmd := &cobra.Command{
		Use:   "watch <documents...>",
		Short: "Re-validate spores whenever their documents change",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			w, err := newDocWatcher(args, configFrom(ctx), cmd.OutOrStdout(), slog.Default())
			if err != nil {
				return fmt.Errorf("create watcher: %w", err)
			}
			if debounce > 0 {
				w.debounce = debounce
			}
			return w.Run(ctx)
		},
	}
	cmd.Flags().DurationVar(&debounce, "debounce", defaultDebounce, "Delay before re-checking after a change")
	return cmd
}
