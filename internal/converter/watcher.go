package converter

import (
	"errors"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Faultbox/ketsji/internal/logger"
	"github.com/Faultbox/ketsji/pkg/encoding"
)

var errWatcherClosed = errors.New("library watcher already closed")

// Watcher reports changes to library files on disk. Directories are
// watched so editors that replace files on save are still seen.
type Watcher struct {
	fs      *fsnotify.Watcher
	changes chan string
	done    chan struct{}
	log     *zap.Logger

	mu     sync.Mutex
	files  map[string]struct{}
	dirs   map[string]int
	closed bool
	wg     sync.WaitGroup
}

// NewWatcher starts a watcher. Changes are buffered up to buffer paths;
// further changes are dropped until Changes is drained.
func NewWatcher(buffer int) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		fs:      fs,
		changes: make(chan string, max(buffer, 1)),
		done:    make(chan struct{}),
		log:     logger.Named("watcher"),
		files:   make(map[string]struct{}),
		dirs:    make(map[string]int),
	}
	w.wg.Add(1)
	go w.run()
	return w, nil
}

// Add starts watching the library at path.
func (w *Watcher) Add(path string) error {
	path = encoding.NormalizePath(path)
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return errWatcherClosed
	}
	if _, ok := w.files[path]; ok {
		return nil
	}
	dir := filepath.Dir(path)
	if w.dirs[dir] == 0 {
		if err := w.fs.Add(dir); err != nil {
			return err
		}
	}
	w.dirs[dir]++
	w.files[path] = struct{}{}
	return nil
}

// Remove stops watching the library at path.
func (w *Watcher) Remove(path string) error {
	path = encoding.NormalizePath(path)
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.files[path]; !ok {
		return nil
	}
	delete(w.files, path)
	dir := filepath.Dir(path)
	w.dirs[dir]--
	if w.dirs[dir] > 0 {
		return nil
	}
	delete(w.dirs, dir)
	if w.closed {
		return nil
	}
	return w.fs.Remove(dir)
}

// Changes delivers the normalised paths of watched libraries that were
// written or recreated.
func (w *Watcher) Changes() <-chan string { return w.changes }

func (w *Watcher) run() {
	defer w.wg.Done()
	for {
		select {
		case e, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
				continue
			}
			path := encoding.NormalizePath(e.Name)
			w.mu.Lock()
			_, watched := w.files[path]
			w.mu.Unlock()
			if !watched {
				continue
			}
			select {
			case w.changes <- path:
			default:
				w.log.Debug("change dropped", zap.String("library", path))
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", zap.Error(err))
		case <-w.done:
			return
		}
	}
}

// Close stops watching. Changes is not closed.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	close(w.done)
	err := w.fs.Close()
	w.wg.Wait()
	return err
}
