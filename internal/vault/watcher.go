package vault

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/Paintersrp/vaultlens/internal/pathutil"
)

// Watcher reports vault-relative paths of markdown notes that changed on disk.
type Watcher struct {
	watcher *fsnotify.Watcher
	vault   string
	events  chan string
	errs    chan error
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once
	start   sync.Once
	onClose func()
}

// NewWatcher watches vault and all of its non-hidden subdirectories.
func NewWatcher(vault string) (*Watcher, error) {
	normalizedVault := pathutil.NormalizePath(vault)
	if normalizedVault == "" {
		return nil, errors.New("vault: directory cannot be empty")
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	watcher := &Watcher{
		watcher: w,
		vault:   normalizedVault,
		events:  make(chan string, 64),
		errs:    make(chan error, 1),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}

	if err := watcher.addRecursive(normalizedVault); err != nil {
		_ = watcher.Close()
		return nil, err
	}

	return watcher, nil
}

// Events delivers changed note paths once Start has been called. The channel
// is closed after Close.
func (w *Watcher) Events() <-chan string {
	return w.events
}

// Errors delivers watcher failures. Only the latest undelivered error is kept.
func (w *Watcher) Errors() <-chan error {
	return w.errs
}

// Start begins forwarding filesystem events. It is safe to call more than once.
func (w *Watcher) Start() {
	if w == nil {
		return
	}
	w.start.Do(func() {
		go w.run()
	})
}

func (w *Watcher) run() {
	defer close(w.stopped)
	defer close(w.events)

	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = w.addRecursive(event.Name)
					continue
				}
			}

			if !w.isRelevant(event) {
				continue
			}

			rel, ok := pathutil.InVault(w.vault, event.Name)
			if !ok {
				continue
			}

			select {
			case w.events <- rel:
			case <-w.done:
				return
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			if err == nil {
				continue
			}
			select {
			case w.errs <- err:
			default:
			}
		}
	}
}

// Close stops the watcher and waits for the forwarding goroutine to exit.
func (w *Watcher) Close() error {
	if w == nil {
		return nil
	}

	var closeErr error
	w.once.Do(func() {
		close(w.done)
		closeErr = w.watcher.Close()
		started := true
		w.start.Do(func() {
			started = false
			close(w.events)
		})
		if started {
			<-w.stopped
		}
		if w.onClose != nil {
			w.onClose()
		}
	})

	return closeErr
}

// OnClose registers a callback invoked exactly once when the watcher shuts down.
func (w *Watcher) OnClose(fn func()) {
	if w == nil {
		return
	}
	w.onClose = fn
}

func (w *Watcher) addRecursive(root string) error {
	normalized := pathutil.NormalizePath(root)
	return filepath.WalkDir(normalized, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrPermission) {
				return filepath.SkipDir
			}
			return err
		}

		if !d.IsDir() {
			return nil
		}
		if path != normalized && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}

		return w.watcher.Add(path)
	})
}

func (w *Watcher) isRelevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}

	rel, ok := pathutil.InVault(w.vault, event.Name)
	if !ok {
		return false
	}

	return strings.EqualFold(filepath.Ext(rel), ".md")
}
