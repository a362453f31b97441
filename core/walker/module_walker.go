package walker

import (
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/tristendillon/amdbutler/core/logger"
)

var DefaultExcludes = []string{"**/nls/**", "**/tests/**"}

const DefaultGlob = "**/*.js"

// Filter decides which paths, relative to a walk root and slash separated,
// are module files.
type Filter struct {
	Glob    string
	Exclude []string
}

func NewFilter(glob string, exclude []string) (*Filter, error) {
	if glob == "" {
		glob = DefaultGlob
	}
	if !doublestar.ValidatePattern(glob) {
		return nil, fmt.Errorf("invalid module glob %q", glob)
	}
	for _, pattern := range exclude {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid exclude pattern %q", pattern)
		}
	}
	return &Filter{Glob: glob, Exclude: exclude}, nil
}

func (f *Filter) IsExcluded(rel string) bool {
	rel = filepath.ToSlash(rel)
	for _, pattern := range f.Exclude {
		if doublestar.MatchUnvalidated(pattern, rel) || doublestar.MatchUnvalidated(pattern, rel+"/") {
			return true
		}
	}
	return false
}

func (f *Filter) IsModule(rel string) bool {
	rel = filepath.ToSlash(rel)
	return doublestar.MatchUnvalidated(f.Glob, rel) && !f.IsExcluded(rel)
}

type ModuleWalker struct {
	Filter *Filter
}

func NewModuleWalker(filter *Filter) *ModuleWalker {
	return &ModuleWalker{Filter: filter}
}

// Walk returns the module files under root as slash separated paths relative
// to root, in lexical order.
func (w *ModuleWalker) Walk(root string) ([]string, error) {
	var discovered []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if relPath == "." {
			return nil
		}

		if d.IsDir() {
			if w.Filter.IsExcluded(relPath) {
				logger.Debug("Excluding directory: %s", relPath)
				return filepath.SkipDir
			}
			return nil
		}

		if w.Filter.IsModule(relPath) {
			discovered = append(discovered, filepath.ToSlash(relPath))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}

	logger.Debug("Discovered %d module files under %s", len(discovered), root)
	return discovered, nil
}
