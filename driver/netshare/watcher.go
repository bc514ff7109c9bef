package netshare

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/gobeaver/transferkit"
)

// Watch implements transferkit.CanWatch using fsnotify for native file
// system events. The returned token is spent after the first matching
// change.
func (a *Adapter) Watch(ctx context.Context, filter string) (transferkit.ChangeToken, error) {
	token := transferkit.NewCallbackChangeToken()

	selector, err := transferkit.Glob(filter)
	if err != nil {
		return nil, &transferkit.PathError{Op: "watch", Path: filter, Err: err}
	}

	// Determine the directory to watch based on the filter. A filter with a
	// static directory prefix only needs that subtree.
	watchPath := a.root
	if idx := strings.IndexAny(filter, "*?[{"); idx != 0 {
		dirPart := filter
		if idx > 0 {
			dirPart = filter[:idx]
		}
		if lastSlash := strings.LastIndex(dirPart, "/"); lastSlash >= 0 {
			watchPath = filepath.Join(a.root, dirPart[:lastSlash])
		} else if idx < 0 {
			// No glob: watch the specific file's directory
			watchPath = filepath.Join(a.root, filepath.Dir(filter))
		}
	}

	watcher, err := newFSWatcher()
	if err != nil {
		return nil, &transferkit.PathError{Op: "watch", Path: filter, Err: err}
	}

	if err := watcher.Add(watchPath); err != nil {
		watcher.Close()
		return nil, &transferkit.PathError{Op: "watch", Path: filter, Err: err}
	}

	// Recursive patterns need every subdirectory registered, fsnotify does
	// not watch trees.
	if strings.Contains(filter, "**") {
		filepath.Walk(watchPath, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return nil
			}
			if info.IsDir() {
				watcher.Add(path)
			}
			return nil
		})
	}

	go func() {
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events():
				if !ok {
					return
				}

				relPath, err := filepath.Rel(a.root, event.Name)
				if err != nil {
					continue
				}
				relPath = filepath.ToSlash(relPath)

				base := filepath.Base(relPath)
				if selector.Match(&transferkit.FileInfo{Name: base, Path: relPath}) ||
					selector.Match(&transferkit.FileInfo{Name: base, Path: base}) {
					token.SignalChange()
					return // Token is spent after first change
				}
			case _, ok := <-watcher.Errors():
				if !ok {
					return
				}
				// Keep watching on transient errors
			}
		}
	}()

	return token, nil
}

// fsWatcher wraps fsnotify.Watcher with a simpler interface
type fsWatcher interface {
	Add(path string) error
	Close() error
	Events() <-chan fsEvent
	Errors() <-chan error
}

type fsEvent struct {
	Name string
	Op   uint32
}

// fsnotifyWatcher adapts fsnotify.Watcher to fsWatcher
type fsnotifyWatcher struct {
	watcher *fsnotify.Watcher
	events  chan fsEvent
	errors  chan error
}

func newFSWatcher() (fsWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	fw := &fsnotifyWatcher{
		watcher: w,
		events:  make(chan fsEvent),
		errors:  make(chan error),
	}

	// Forward events
	go func() {
		for {
			select {
			case event, ok := <-w.Events:
				if !ok {
					close(fw.events)
					return
				}
				fw.events <- fsEvent{
					Name: event.Name,
					Op:   uint32(event.Op),
				}
			case err, ok := <-w.Errors:
				if !ok {
					close(fw.errors)
					return
				}
				fw.errors <- err
			}
		}
	}()

	return fw, nil
}

func (w *fsnotifyWatcher) Add(path string) error {
	return w.watcher.Add(path)
}

func (w *fsnotifyWatcher) Close() error {
	return w.watcher.Close()
}

func (w *fsnotifyWatcher) Events() <-chan fsEvent {
	return w.events
}

func (w *fsnotifyWatcher) Errors() <-chan error {
	return w.errors
}
