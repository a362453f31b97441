package index

import (
	"slices"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/tristendillon/amdbutler/core/logger"
	"github.com/tristendillon/amdbutler/core/models"
)

type IndexStats struct {
	Added        int64 `json:"added"`
	Removed      int64 `json:"removed"`
	Replaced     int64 `json:"replaced"`
	TotalEntries int   `json:"total_entries"`
}

// ModuleIndex holds the modules of one editing session. Entries are matched
// by Path; adding a module whose Path is already indexed replaces it.
type ModuleIndex struct {
	modules []models.Module
	crawled bool
	stats   IndexStats
	mutex   sync.RWMutex
}

func NewModuleIndex() *ModuleIndex {
	return &ModuleIndex{}
}

// Reset replaces the whole content, as after a fresh crawl.
func (mi *ModuleIndex) Reset(modules []models.Module) {
	mi.mutex.Lock()
	defer mi.mutex.Unlock()

	seen := make(map[string]int, len(modules))
	mi.modules = make([]models.Module, 0, len(modules))
	mi.crawled = true
	for _, m := range modules {
		if i, ok := seen[m.Path]; ok {
			mi.modules[i] = m
			mi.stats.Replaced++
			continue
		}
		seen[m.Path] = len(mi.modules)
		mi.modules = append(mi.modules, m)
		mi.stats.Added++
	}
	logger.Debug("Module index reset with %d modules", len(mi.modules))
}

func (mi *ModuleIndex) Crawled() bool {
	mi.mutex.RLock()
	defer mi.mutex.RUnlock()
	return mi.crawled
}

func (mi *ModuleIndex) Add(m models.Module) {
	mi.mutex.Lock()
	defer mi.mutex.Unlock()
	mi.addLocked(m)
	logger.Debug("Indexed module %s as %s", m.Path, m.Name)
}

func (mi *ModuleIndex) addLocked(m models.Module) {
	if i := mi.findLocked(m.Path); i >= 0 {
		mi.modules[i] = m
		mi.stats.Replaced++
		return
	}
	mi.modules = append(mi.modules, m)
	mi.stats.Added++
}

// Remove drops the module with the given path and reports whether it existed.
func (mi *ModuleIndex) Remove(path string) bool {
	mi.mutex.Lock()
	defer mi.mutex.Unlock()

	i := mi.findLocked(path)
	if i < 0 {
		logger.Debug("No indexed module for %s", path)
		return false
	}
	mi.modules = slices.Delete(mi.modules, i, i+1)
	mi.stats.Removed++
	logger.Debug("Removed module %s", path)
	return true
}

// RemoveUnder drops every module whose raw path lies inside dir.
func (mi *ModuleIndex) RemoveUnder(dir string) int {
	mi.mutex.Lock()
	defer mi.mutex.Unlock()

	prefix := strings.TrimSuffix(dir, "/") + "/"
	before := len(mi.modules)
	mi.modules = slices.DeleteFunc(mi.modules, func(m models.Module) bool {
		return strings.HasPrefix(m.RawPath, prefix)
	})
	removed := before - len(mi.modules)
	mi.stats.Removed += int64(removed)
	if removed > 0 {
		logger.Debug("Removed %d modules under %s", removed, dir)
	}
	return removed
}

func (mi *ModuleIndex) Get(path string) (models.Module, bool) {
	mi.mutex.RLock()
	defer mi.mutex.RUnlock()

	if i := mi.findLocked(path); i >= 0 {
		return mi.modules[i], true
	}
	return models.Module{}, false
}

func (mi *ModuleIndex) Len() int {
	mi.mutex.RLock()
	defer mi.mutex.RUnlock()
	return len(mi.modules)
}

// All returns a copy in insertion order.
func (mi *ModuleIndex) All() []models.Module {
	mi.mutex.RLock()
	defer mi.mutex.RUnlock()
	return slices.Clone(mi.modules)
}

// Candidates lists the modules not excluded, sorted by path.
func (mi *ModuleIndex) Candidates(exclude *ExcludeSet) []models.Module {
	mi.mutex.RLock()
	out := make([]models.Module, 0, len(mi.modules))
	for _, m := range mi.modules {
		if exclude == nil || !exclude.Contains(m.Path) {
			out = append(out, m)
		}
	}
	mi.mutex.RUnlock()

	slices.SortStableFunc(out, func(a, b models.Module) int {
		return strings.Compare(a.Path, b.Path)
	})
	return out
}

func (mi *ModuleIndex) GetStats() *IndexStats {
	mi.mutex.RLock()
	defer mi.mutex.RUnlock()

	stats := mi.stats
	stats.TotalEntries = len(mi.modules)
	return &stats
}

func (mi *ModuleIndex) LogStats() {
	stats := mi.GetStats()
	logger.Debug("Index stats: Added=%d, Removed=%d, Replaced=%d, Total Entries=%d",
		stats.Added, stats.Removed, stats.Replaced, stats.TotalEntries)
}

func (mi *ModuleIndex) findLocked(path string) int {
	return slices.IndexFunc(mi.modules, func(m models.Module) bool {
		return m.Path == path
	})
}

// ExcludeSet filters candidates: exact paths already declared in a document
// plus doublestar patterns from the configuration.
type ExcludeSet struct {
	paths    map[string]struct{}
	patterns []string
}

func NewExcludeSet(paths []string, patterns []string) *ExcludeSet {
	set := &ExcludeSet{
		paths:    make(map[string]struct{}, len(paths)),
		patterns: patterns,
	}
	for _, p := range paths {
		set.paths[p] = struct{}{}
	}
	return set
}

func (es *ExcludeSet) Contains(path string) bool {
	if _, ok := es.paths[path]; ok {
		return true
	}
	for _, pattern := range es.patterns {
		if matched, err := doublestar.Match(pattern, path); err == nil && matched {
			return true
		}
	}
	return false
}
