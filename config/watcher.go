package config

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceDelay coalesces the event bursts editors emit on save.
const debounceDelay = 50 * time.Millisecond

// Watcher re-parses a configuration file whenever its content changes
// and holds the latest good document until the owner drains it. A parse
// failure is logged and the previously drained document stays live.
type Watcher struct {
	path   string
	logger *slog.Logger
	fsw    *fsnotify.Watcher

	mu      sync.Mutex
	pending *Document

	done chan struct{}
	wg   sync.WaitGroup
}

// NewWatcher watches path for content modification. A nil logger falls
// back to slog.Default. The parent directory is watched rather than the
// file itself so replace-on-save editors keep triggering events.
func NewWatcher(path string, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch config: %w", err)
	}
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch config %s: %w", path, err)
	}
	w := &Watcher{
		path:   path,
		logger: logger,
		fsw:    fsw,
		done:   make(chan struct{}),
	}
	w.wg.Add(1)
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	defer w.wg.Done()
	timer := time.NewTimer(debounceDelay)
	if !timer.Stop() {
		<-timer.C
	}
	armed := false
	for {
		select {
		case <-w.done:
			timer.Stop()
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if armed && !timer.Stop() {
				<-timer.C
			}
			timer.Reset(debounceDelay)
			armed = true
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watcher error", "path", w.path, "error", err)
		case <-timer.C:
			armed = false
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	doc, err := Load(w.path)
	if err != nil {
		w.logger.Warn("config reload rejected", "error", err)
		return
	}
	w.mu.Lock()
	w.pending = doc
	w.mu.Unlock()
	w.logger.Info("config reloaded", "path", w.path, "controls", len(doc.Controls))
}

// Drain hands over the most recent successfully parsed document, once.
// It returns false until the next successful re-parse.
func (w *Watcher) Drain() (*Document, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	doc := w.pending
	w.pending = nil
	return doc, doc != nil
}

// Close stops watching and waits for the watch goroutine to exit.
func (w *Watcher) Close() error {
	close(w.done)
	err := w.fsw.Close()
	w.wg.Wait()
	return err
}
