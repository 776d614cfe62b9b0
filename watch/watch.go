// Package watch is the SPEC_FULL.md hot-reload supplement: a recursive
// fsnotify watcher over a preset's directory tree, coalesced into a single
// debounced reload signal a caller can feed back into shader.Load/
// Chain.SetShader.
package watch

import (
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/retrofx/slangchain/core"
)

// DefaultDebounce matches a preset editor's typical multi-file save burst
// (a .slangp plus several .slang/.inc files written back to back).
const DefaultDebounce = 150 * time.Millisecond

// Watcher watches a preset directory tree and signals Reload() once per
// burst of filesystem activity, generalized from the teacher's
// engine/assets/assets.go AssetManager: same fsnotify.Watcher,
// watchRecursive-over-a-directory-tree, and dedicated event-handling
// goroutine, collapsed here into one reload pulse instead of per-file
// asset-table bookkeeping.
type Watcher struct {
	fsw      *fsnotify.Watcher
	debounce time.Duration

	reload chan struct{}
	done   chan struct{}
}

// New starts watching root (a preset's base directory) and everything
// under it. The preset, its includes and any LUT images it references all
// live somewhere under root in every shipped preset pack, so watching the
// whole tree catches edits to any of them without needing an exact
// resolved-file-set from the preprocessor.
func New(root string) (*Watcher, error) {
	return NewWithDebounce(root, DefaultDebounce)
}

// NewWithDebounce is New with an explicit coalescing window.
func NewWithDebounce(root string, debounce time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		fsw:      fsw,
		debounce: debounce,
		reload:   make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	if err := w.watchRecursive(root); err != nil {
		fsw.Close()
		return nil, err
	}
	go w.run()
	return w, nil
}

func (w *Watcher) watchRecursive(root string) error {
	return filepath.Walk(root, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			return w.fsw.Add(path)
		}
		return nil
	})
}

// Reload delivers one value each time a debounced burst of relevant
// filesystem events settles. Buffered by one: a pending signal a caller
// hasn't drained yet absorbs further bursts instead of blocking the
// watcher goroutine.
func (w *Watcher) Reload() <-chan struct{} {
	return w.reload
}

// Close stops the watcher and releases its fsnotify handle.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fsw.Close()
}

func (w *Watcher) run() {
	var timer *time.Timer
	for {
		select {
		case e, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if e.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if fi, err := os.Stat(e.Name); err == nil && fi.IsDir() && e.Op&fsnotify.Create != 0 {
				w.fsw.Add(e.Name)
			}
			if timer == nil {
				timer = time.AfterFunc(w.debounce, w.signal)
			} else {
				timer.Reset(w.debounce)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			core.LogWarn("preset watcher error: %v", err)

		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

func (w *Watcher) signal() {
	select {
	case w.reload <- struct{}{}:
	default:
	}
}
