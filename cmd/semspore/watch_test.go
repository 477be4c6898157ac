package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/c360studio/semspore/config"
	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWatcher(t *testing.T, patterns ...string) (*docWatcher, *bytes.Buffer) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Store.Backend = "sqlite"

	var out bytes.Buffer
	w, err := newDocWatcher(patterns, cfg, &out, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.watcher.Close() })
	return w, &out
}

func TestDocWatcherUsesMemoryStore(t *testing.T) {
	w, _ := newTestWatcher(t, "testdata")
	assert.Equal(t, "memory", w.cfg.Store.Backend)
}

func TestDocWatcherPendingEvents(t *testing.T) {
	w, _ := newTestWatcher(t, "testdata")

	w.handleFSEvent(fsnotify.Event{Name: "testdata/notes.md", Op: fsnotify.Write})
	assert.False(t, w.flushPending(), "non-document changes are ignored")

	w.handleFSEvent(fsnotify.Event{Name: "testdata/widgets.ttl", Op: fsnotify.Write})
	w.handleFSEvent(fsnotify.Event{Name: "testdata/widgets.ttl", Op: fsnotify.Chmod})
	w.handleFSEvent(fsnotify.Event{Name: "testdata/extra.NT", Op: fsnotify.Create})
	assert.Len(t, w.pending, 2)
	assert.True(t, w.flushPending())
	assert.False(t, w.flushPending())
}

func TestDocWatcherWatchDirs(t *testing.T) {
	w, _ := newTestWatcher(t, "testdata/widgets.ttl", "testdata/model.ttl")
	dirs, err := w.watchDirs()
	require.NoError(t, err)
	assert.Equal(t, []string{"testdata"}, dirs)
}

func TestDocWatcherCheck(t *testing.T) {
	w, out := newTestWatcher(t, "testdata/widgets.ttl", "testdata/broken.ttl")
	w.check(context.Background())

	report := out.String()
	assert.Contains(t, report, "ok   "+ex+"widgetSpore")
	assert.Contains(t, report, "ok   "+ex+"halfSpore")
	assert.Contains(t, report, "ok   "+ex+"strandedSpore")
}

func TestDocWatcherCheckReportsLoadFailure(t *testing.T) {
	w, out := newTestWatcher(t, "testdata/*.owl")
	w.check(context.Background())
	assert.Contains(t, out.String(), "FAIL load:")
}
