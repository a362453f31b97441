// Package crawler discovers the modules of a project and keeps the session's
// module index current while files in the edited package change.
package crawler

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tristendillon/amdbutler/core/index"
	"github.com/tristendillon/amdbutler/core/logger"
	"github.com/tristendillon/amdbutler/core/models"
	"github.com/tristendillon/amdbutler/core/naming"
	"github.com/tristendillon/amdbutler/core/rewriter"
	"github.com/tristendillon/amdbutler/core/walker"
	"github.com/tristendillon/amdbutler/core/watcher"
)

// BaseFolderNotFoundError means the edited file does not live under any of the
// configured base folders, so there is no module root to crawl.
type BaseFolderNotFoundError struct {
	FilePath    string
	BaseFolders []string
}

func (e *BaseFolderNotFoundError) Error() string {
	return fmt.Sprintf("none of the base folders (%s) were found in the path to the current file (%s)",
		strings.Join(e.BaseFolders, ","), e.FilePath)
}

// GetBaseFolderPath returns filePath up to and including the first configured
// folder name that appears as a whole segment. Both / and \ separate segments.
func GetBaseFolderPath(filePath string, baseFolders []string) (string, error) {
	isSep := func(c byte) bool { return c == '/' || c == '\\' }

	for _, name := range baseFolders {
		if name == "" {
			continue
		}
		for from := 0; from < len(filePath); {
			i := strings.Index(filePath[from:], name)
			if i < 0 {
				break
			}
			start := from + i
			end := start + len(name)
			if start > 0 && isSep(filePath[start-1]) && end < len(filePath) && isSep(filePath[end]) {
				return filePath[:end], nil
			}
			from = start + 1
		}
	}
	return "", &BaseFolderNotFoundError{FilePath: filePath, BaseFolders: baseFolders}
}

// CurrentPackage is the first folder of filePath below basePath.
func CurrentPackage(basePath, filePath string) (string, error) {
	rel, err := filepath.Rel(basePath, filePath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s against %s: %w", filePath, basePath, err)
	}
	rel = filepath.ToSlash(rel)
	if rel == "." || strings.HasPrefix(rel, "../") || !strings.Contains(rel, "/") {
		return "", fmt.Errorf("%s is not inside a package of %s", filePath, basePath)
	}
	return models.FirstSegment(rel), nil
}

// ModuleFromPath builds the module for a file. entry is either relative to the
// module root or, when basePath is set, a path inside basePath.
func ModuleFromPath(entry, basePath string, rm rewriter.ReplaceMap, deriver *naming.Deriver) models.Module {
	rawPath := entry
	if basePath != "" {
		if rel, err := filepath.Rel(basePath, entry); err == nil && !strings.HasPrefix(rel, "..") {
			rawPath = rel
		}
	}
	rawPath = filepath.ToSlash(rawPath)
	rawPath = strings.TrimSuffix(rawPath, filepath.Ext(rawPath))

	if deriver == nil {
		deriver = naming.NewDeriver(nil)
	}
	path := rewriter.Rewrite(rawPath, rm)
	return models.Module{
		Path:    path,
		RawPath: rawPath,
		Name:    deriver.Derive(path),
	}
}

type Options struct {
	BasePath       string
	CurrentPackage string
	ReplaceMap     rewriter.ReplaceMap
	Deriver        *naming.Deriver
	Filter         *walker.Filter
}

// Crawler owns the module index of one session. It must not be reused after
// Destroy.
type Crawler struct {
	opts    Options
	index   *index.ModuleIndex
	walker  *walker.ModuleWalker
	watcher *watcher.FileWatcher
	loop    sync.WaitGroup
	destroy sync.Once
}

func New(opts Options) *Crawler {
	if opts.Deriver == nil {
		opts.Deriver = naming.NewDeriver(nil)
	}
	if opts.Filter == nil {
		opts.Filter = &walker.Filter{Glob: walker.DefaultGlob, Exclude: walker.DefaultExcludes}
	}
	return &Crawler{
		opts:   opts,
		index:  index.NewModuleIndex(),
		walker: walker.NewModuleWalker(opts.Filter),
	}
}

func (c *Crawler) Index() *index.ModuleIndex {
	return c.index
}

// Crawled reports whether Crawl already populated the index. Crawl always
// rebuilds from scratch, so callers check this first.
func (c *Crawler) Crawled() bool {
	return c.index.Crawled()
}

// Crawl walks the module root, resets the index and starts watching the
// current package. Walk and watch setup failures are returned.
func (c *Crawler) Crawl() error {
	files, err := c.walker.Walk(c.opts.BasePath)
	if err != nil {
		return fmt.Errorf("failed to crawl modules: %w", err)
	}

	modules := make([]models.Module, 0, len(files))
	for _, f := range files {
		modules = append(modules, c.moduleFor(f, ""))
	}
	c.index.Reset(modules)
	logger.Debug("Crawled %d modules under %s", len(modules), c.opts.BasePath)

	if c.opts.CurrentPackage == "" {
		return nil
	}
	return c.watch()
}

func (c *Crawler) watch() error {
	if c.watcher != nil {
		if err := c.watcher.Close(); err != nil {
			logger.Debug("Closing previous watcher: %v", err)
		}
		c.loop.Wait()
	}

	fw, err := watcher.NewFileWatcher(watcher.Options{
		RootDir:    filepath.Join(c.opts.BasePath, c.opts.CurrentPackage),
		FilterRoot: c.opts.BasePath,
		Filter:     c.opts.Filter,
	})
	if err != nil {
		return fmt.Errorf("failed to watch package %s: %w", c.opts.CurrentPackage, err)
	}
	c.watcher = fw

	c.loop.Add(1)
	go func() {
		defer c.loop.Done()
		for event := range fw.Events() {
			c.Apply(event)
		}
		logger.Debug("Module index update loop stopped")
	}()
	fw.Start()

	logger.Debug("Watching %s for module changes", fw.RootDir())
	return nil
}

// Apply updates the index for one file system event. Paths in the event are
// absolute.
func (c *Crawler) Apply(event models.ModuleEvent) {
	logger.Debug("Module event %s", event)

	switch event.Op {
	case models.ModuleAdded:
		c.index.Add(c.moduleFor(event.Path, c.opts.BasePath))
	case models.ModuleDeleted:
		c.index.Remove(c.moduleFor(event.Path, c.opts.BasePath).Path)
	case models.ModuleRenamed:
		c.index.Remove(c.moduleFor(event.OldPath, c.opts.BasePath).Path)
		c.index.Add(c.moduleFor(event.Path, c.opts.BasePath))
	case models.TreeDeleted:
		rel, err := filepath.Rel(c.opts.BasePath, event.Path)
		if err != nil {
			logger.Warn("Ignoring removal outside %s: %s", c.opts.BasePath, event.Path)
			return
		}
		c.index.RemoveUnder(filepath.ToSlash(rel))
	}
}

// RemoveModule drops the module a file would produce.
func (c *Crawler) RemoveModule(entry string) bool {
	return c.index.Remove(c.moduleFor(entry, "").Path)
}

func (c *Crawler) moduleFor(entry, basePath string) models.Module {
	return ModuleFromPath(entry, basePath, c.opts.ReplaceMap, c.opts.Deriver)
}

// Destroy stops the watcher and waits for pending index updates. Only the
// first call has an effect.
func (c *Crawler) Destroy() error {
	var err error
	c.destroy.Do(func() {
		if c.watcher == nil {
			return
		}
		err = c.watcher.Close()
		c.loop.Wait()
		c.index.LogStats()
	})
	return err
}
