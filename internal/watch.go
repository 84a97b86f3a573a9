package internal

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	tt "github.com/gnoswap-labs/litmus/internal/types"
	"github.com/gnoswap-labs/litmus/scanner"
)

// TestExtension is the suffix of litmus test files.
const TestExtension = ".litmus"

const watchDebounce = 100 * time.Millisecond

// WatchHandler receives the result of re-checking a changed file.
type WatchHandler func(filename string, outcomes []tt.Outcome, err error)

type watchState struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	active   bool
	handler  WatchHandler
	done     chan struct{}
	stopLoop context.CancelFunc
}

// StartWatching re-runs every test file written under dirs and passes
// the result to handler until StopWatching is called.
func (e *Engine) StartWatching(ctx context.Context, dirs []string, handler WatchHandler) error {
	w := &e.watch
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.active {
		return fmt.Errorf("already watching")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("error creating watcher: %w", err)
	}
	for _, dir := range dirs {
		if err := addTree(watcher, dir); err != nil {
			watcher.Close()
			return fmt.Errorf("error adding directory to watcher: %w", err)
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	w.watcher = watcher
	w.handler = handler
	w.active = true
	w.done = make(chan struct{})
	w.stopLoop = cancel
	go e.watchLoop(ctx, watcher, w.done)
	return nil
}

// StopWatching ends a watch started by StartWatching.
func (e *Engine) StopWatching() error {
	w := &e.watch
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.active {
		e.logger.Warn("not watching")
		return nil
	}

	w.active = false
	w.stopLoop()
	err := w.watcher.Close()
	<-w.done
	return err
}

func (e *Engine) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, done chan struct{}) {
	defer close(done)

	// a write burst on one file triggers a single run
	pending := make(map[string]*time.Timer)
	defer func() {
		for _, t := range pending {
			t.Stop()
		}
	}()
	fire := make(chan string)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !isTestWrite(event) {
				continue
			}
			if t, ok := pending[event.Name]; ok {
				t.Reset(watchDebounce)
				continue
			}
			name := event.Name
			pending[name] = time.AfterFunc(watchDebounce, func() {
				select {
				case fire <- name:
				case <-ctx.Done():
				}
			})
		case name := <-fire:
			delete(pending, name)
			e.handleFileEvent(ctx, name)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			e.logger.Error("watch error", zap.Error(err))
		}
	}
}

func addTree(watcher *fsnotify.Watcher, root string) error {
	dirs, err := scanner.New(root, TestExtension).Dirs()
	if err != nil {
		return err
	}
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return err
		}
	}
	return nil
}

func isTestWrite(event fsnotify.Event) bool {
	if !strings.HasSuffix(event.Name, TestExtension) {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create)
}

func (e *Engine) handleFileEvent(ctx context.Context, filename string) {
	e.logger.Info("re-checking", zap.String("file", filename))
	outcomes, err := e.Run(ctx, filename)
	if err != nil {
		e.logger.Error("error checking file", zap.String("file", filename), zap.Error(err))
	}
	if h := e.watch.handler; h != nil {
		h(filename, outcomes, err)
	}
}
