package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/platinummonkey/langmgr/pkg/g2p"
	"github.com/sirupsen/logrus"
)

// Watcher keeps a manager in sync with the engine directories of a loader.
// Creating or editing an engine directory reloads that engine; deleting its
// manifest or directory removes it from the manager.
type Watcher struct {
	loader  *Loader
	manager *g2p.Manager
	watcher *fsnotify.Watcher
	log     *logrus.Logger
}

// NewWatcher starts watching the loader's existing engine directories
func NewWatcher(loader *Loader, manager *g2p.Manager) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	w := &Watcher{
		loader:  loader,
		manager: manager,
		watcher: fw,
		log:     loader.log,
	}

	for _, dir := range loader.Dirs() {
		if err := w.watchTree(dir); err != nil {
			if os.IsNotExist(err) {
				w.log.Debugf("Engine directory does not exist, not watching: %s", dir)
				continue
			}
			fw.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	return w, nil
}

// watchTree adds root and its immediate engine subdirectories
func (w *Watcher) watchTree(root string) error {
	if err := w.watcher.Add(root); err != nil {
		return err
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			if err := w.watcher.Add(filepath.Join(root, entry.Name())); err != nil {
				w.log.Warnf("Failed to watch engine directory %s: %v", entry.Name(), err)
			}
		}
	}
	return nil
}

// Run processes filesystem events until ctx is done
func (w *Watcher) Run(ctx context.Context) error {
	w.log.Infof("Watching %d engine directories for changes", len(w.loader.Dirs()))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handle(ctx, event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warnf("Watcher error: %v", err)
		}
	}
}

// Close stops the underlying watcher
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func (w *Watcher) handle(ctx context.Context, event fsnotify.Event) {
	name := filepath.Clean(event.Name)

	switch {
	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		if filepath.Base(name) == ManifestFile {
			w.unregister(filepath.Dir(name))
		} else if _, ok := w.loader.SourceID(name); ok {
			w.unregister(name)
		}

	case event.Op&(fsnotify.Create|fsnotify.Write) != 0:
		fi, err := os.Stat(name)
		if err != nil {
			return
		}
		if fi.IsDir() {
			if err := w.watcher.Add(name); err != nil {
				w.log.Warnf("Failed to watch new engine directory %s: %v", name, err)
				return
			}
			if hasManifest(name) {
				w.reload(ctx, name)
			}
			return
		}

		dir := filepath.Dir(name)
		if hasManifest(dir) {
			w.reload(ctx, dir)
		}
	}
}

// reload rebuilds the engine in dir and swaps it into the manager
func (w *Watcher) reload(ctx context.Context, dir string) {
	previous, hadPrevious := w.loader.SourceID(dir)

	factory, err := w.loader.LoadEngine(ctx, dir)
	if err != nil {
		w.log.Warnf("Failed to reload engine from %s: %v", dir, err)
		return
	}
	id := factory.ID()

	if w.manager.Has(id) && (!hadPrevious || previous != id) {
		w.log.Warnf("Engine %s from %s collides with an engine registered elsewhere, ignoring", id, dir)
		w.restoreSource(dir, previous, hadPrevious)
		unload(factory, w.log)
		return
	}

	if hadPrevious {
		if err := w.manager.RemoveFactoryByID(previous); err != nil {
			w.log.Debugf("Previous engine %s was not registered: %v", previous, err)
		}
	}

	if err := w.manager.AddFactory(factory); err != nil {
		w.log.Warnf("Failed to register reloaded engine %s: %v", id, err)
		w.loader.forget(dir)
		unload(factory, w.log)
		return
	}

	w.log.Infof("Reloaded G2P engine %s from %s", id, dir)
}

func (w *Watcher) restoreSource(dir, previous string, hadPrevious bool) {
	if !hadPrevious {
		w.loader.forget(dir)
		return
	}
	w.loader.mu.Lock()
	w.loader.sources[filepath.Clean(dir)] = previous
	w.loader.mu.Unlock()
}

func (w *Watcher) unregister(dir string) {
	id, ok := w.loader.SourceID(dir)
	if !ok {
		return
	}
	w.loader.forget(dir)

	if err := w.manager.RemoveFactoryByID(id); err != nil {
		w.log.Debugf("Engine %s already removed: %v", id, err)
		return
	}
	w.log.Infof("Removed G2P engine %s after %s disappeared", id, dir)
}

func hasManifest(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ManifestFile))
	return err == nil
}
