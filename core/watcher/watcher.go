package watcher

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/tristendillon/amdbutler/core/logger"
	"github.com/tristendillon/amdbutler/core/models"
	"github.com/tristendillon/amdbutler/core/walker"
)

const (
	// A Rename followed by a Create within this window is reported as one rename.
	defaultRenameWindow = 100 * time.Millisecond
	eventQueueSize      = 64
)

type Options struct {
	// RootDir is the tree being watched; Filter paths are relative to FilterRoot.
	RootDir      string
	FilterRoot   string
	Filter       *walker.Filter
	RenameWindow time.Duration
}

type FileWatcher struct {
	watcher      *fsnotify.Watcher
	rootDir      string
	filterRoot   string
	filter       *walker.Filter
	renameWindow time.Duration
	events       chan models.ModuleEvent
	done         chan struct{}
	closeOnce    sync.Once
	closeErr     error

	// Owned by the watch goroutine once Start was called.
	dirs map[string]struct{}
	// Directories whose rename was already handled. The directory's own
	// watch reports the same rename a second time.
	movedDirs map[string]struct{}
}

// NewFileWatcher registers every non-excluded directory under RootDir. It does
// not deliver events until Start is called.
func NewFileWatcher(opts Options) (*FileWatcher, error) {
	if opts.Filter == nil {
		return nil, fmt.Errorf("file watcher needs a filter")
	}
	if opts.FilterRoot == "" {
		opts.FilterRoot = opts.RootDir
	}
	if opts.RenameWindow <= 0 {
		opts.RenameWindow = defaultRenameWindow
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	fw := &FileWatcher{
		watcher:      watcher,
		rootDir:      opts.RootDir,
		filterRoot:   opts.FilterRoot,
		filter:       opts.Filter,
		renameWindow: opts.RenameWindow,
		events:       make(chan models.ModuleEvent, eventQueueSize),
		done:         make(chan struct{}),
		dirs:         make(map[string]struct{}),
		movedDirs:    make(map[string]struct{}),
	}

	if err := fw.addWatchersRecursively(opts.RootDir, nil); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to add watchers: %w", err)
	}
	return fw, nil
}

func (fw *FileWatcher) RootDir() string {
	return fw.rootDir
}

// Events is closed once the watcher has shut down.
func (fw *FileWatcher) Events() <-chan models.ModuleEvent {
	return fw.events
}

func (fw *FileWatcher) Start() {
	go fw.watch()
}

func (fw *FileWatcher) Close() error {
	fw.closeOnce.Do(func() {
		close(fw.done)
		fw.closeErr = fw.watcher.Close()
	})
	return fw.closeErr
}

func (fw *FileWatcher) watch() {
	defer close(fw.events)

	errs := fw.watcher.Errors
	var (
		pendingRename string
		renameTimer   *time.Timer
		renameExpired <-chan time.Time
	)

	clearPending := func() {
		if renameTimer != nil {
			renameTimer.Stop()
		}
		pendingRename = ""
		renameExpired = nil
	}
	flushPending := func() bool {
		if pendingRename == "" {
			return true
		}
		old := pendingRename
		clearPending()
		return fw.emit(fw.removalEvent(old))
	}

	for {
		select {
		case <-fw.done:
			return

		case <-renameExpired:
			if !flushPending() {
				return
			}

		case event, ok := <-fw.watcher.Events:
			if !ok {
				flushPending()
				select {
				case <-fw.done:
				default:
					logger.Error("Watcher events channel closed, module index will no longer update")
				}
				return
			}

			if fw.shouldExcludePath(event.Name) {
				continue
			}
			logger.Debug("File event: %s %s", event.Op, event.Name)

			if !fw.handle(event, &pendingRename, flushPending, clearPending) {
				return
			}
			if pendingRename != "" && renameExpired == nil {
				renameTimer = time.NewTimer(fw.renameWindow)
				renameExpired = renameTimer.C
			}

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			logger.Error("Watcher error, module index may be stale: %v", err)
		}
	}
}

// handle translates one fsnotify event. It returns false once the watcher is closing.
func (fw *FileWatcher) handle(event fsnotify.Event, pendingRename *string, flushPending func() bool, clearPending func()) bool {
	switch {
	case event.Has(fsnotify.Create):
		delete(fw.movedDirs, event.Name)
		if stat, err := os.Stat(event.Name); err == nil && stat.IsDir() {
			if !flushPending() {
				return false
			}
			logger.Debug("Adding watcher for new directory: %s", event.Name)
			if err := fw.addWatchersRecursively(event.Name, fw.emit); err != nil {
				logger.Error("Failed to watch new directory %s: %v", event.Name, err)
			}
			return true
		}
		if !fw.isModule(event.Name) {
			return flushPending()
		}
		if *pendingRename != "" {
			old := *pendingRename
			clearPending()
			if fw.isModule(old) {
				return fw.emit(models.ModuleEvent{Op: models.ModuleRenamed, Path: event.Name, OldPath: old})
			}
			if !fw.emit(fw.removalEvent(old)) {
				return false
			}
		}
		return fw.emit(models.ModuleEvent{Op: models.ModuleAdded, Path: event.Name})

	case event.Has(fsnotify.Rename):
		if _, seen := fw.movedDirs[event.Name]; seen {
			delete(fw.movedDirs, event.Name)
			logger.Debug("Ignoring repeated rename of directory %s", event.Name)
			return true
		}
		if !flushPending() {
			return false
		}
		// The old watches still point at the moved inode and must go before
		// the new location is watched.
		if fw.unwatchTree(event.Name, true) {
			fw.movedDirs[event.Name] = struct{}{}
		}
		*pendingRename = event.Name
		return true

	case event.Has(fsnotify.Remove):
		if !flushPending() {
			return false
		}
		fw.unwatchTree(event.Name, false)
		return fw.emit(fw.removalEvent(event.Name))
	}
	return true
}

// unwatchTree forgets dir and every watched directory below it, removing the
// watches when remove is set. It reports whether dir itself was watched.
func (fw *FileWatcher) unwatchTree(dir string, remove bool) bool {
	_, watched := fw.dirs[dir]
	prefix := dir + string(filepath.Separator)
	for path := range fw.dirs {
		if path != dir && !strings.HasPrefix(path, prefix) {
			continue
		}
		delete(fw.dirs, path)
		if !remove {
			continue
		}
		logger.Debug("Removing watcher for: %s", path)
		if err := fw.watcher.Remove(path); err != nil {
			logger.Debug("Watcher for %s already gone: %v", path, err)
		}
	}
	return watched
}

// removalEvent reports a vanished path. Anything that is not a module file may
// have been a directory.
func (fw *FileWatcher) removalEvent(path string) models.ModuleEvent {
	if fw.isModule(path) {
		return models.ModuleEvent{Op: models.ModuleDeleted, Path: path}
	}
	return models.ModuleEvent{Op: models.TreeDeleted, Path: path}
}

func (fw *FileWatcher) emit(event models.ModuleEvent) bool {
	select {
	case fw.events <- event:
		return true
	case <-fw.done:
		return false
	}
}

func (fw *FileWatcher) relative(path string) (string, bool) {
	rel, err := filepath.Rel(fw.filterRoot, path)
	if err != nil {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

func (fw *FileWatcher) isModule(path string) bool {
	rel, ok := fw.relative(path)
	return ok && fw.filter.IsModule(rel)
}

func (fw *FileWatcher) shouldExcludePath(path string) bool {
	rel, ok := fw.relative(path)
	return ok && fw.filter.IsExcluded(rel)
}

// addWatchersRecursively watches root and every directory below it. When
// onFile is set, module files already present are reported as added.
func (fw *FileWatcher) addWatchersRecursively(root string, onFile func(models.ModuleEvent) bool) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if fw.shouldExcludePath(path) {
			logger.Debug("Excluding directory: %s", path)
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.IsDir() {
			if onFile != nil && fw.isModule(path) {
				if !onFile(models.ModuleEvent{Op: models.ModuleAdded, Path: path}) {
					return filepath.SkipAll
				}
			}
			return nil
		}

		logger.Debug("Adding watcher for: %s", path)
		if err := fw.watcher.Add(path); err != nil {
			return fmt.Errorf("failed to add watcher for %s: %w", path, err)
		}
		fw.dirs[path] = struct{}{}
		return nil
	})
}
