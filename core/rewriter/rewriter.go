// Package rewriter maps on-disk module paths to the logical paths a RequireJS
// loader resolves, using the packages and paths of the loader config.
package rewriter

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/tristendillon/amdbutler/core/logger"
	"gopkg.in/yaml.v3"
)

type Replacement struct {
	Prefix string
	With   string
}

// ReplaceMap is ordered by descending prefix length so the most specific
// prefix is tried first.
type ReplaceMap []Replacement

type Package struct {
	Name     string `yaml:"name"`
	Location string `yaml:"location"`
}

type PathAlias struct {
	Alias string
	Path  string
}

type RequireConfig struct {
	Packages []Package
	Paths    []PathAlias
}

// Rewrite replaces the longest matching prefix of path, if any.
func Rewrite(path string, m ReplaceMap) string {
	for _, r := range m {
		if strings.HasPrefix(path, r.Prefix) {
			return r.With + path[len(r.Prefix):]
		}
	}
	return path
}

// BuildReplaceMap maps package locations to package names and path targets
// to their aliases. Path entries win over packages with the same key.
func BuildReplaceMap(cfg RequireConfig) ReplaceMap {
	var m ReplaceMap
	index := make(map[string]int)

	set := func(prefix, with string) {
		if prefix == "" {
			return
		}
		if i, ok := index[prefix]; ok {
			m[i].With = with
			return
		}
		index[prefix] = len(m)
		m = append(m, Replacement{Prefix: prefix, With: with})
	}

	for _, pkg := range cfg.Packages {
		location := pkg.Location
		if location == "" {
			location = pkg.Name
		}
		set(location, pkg.Name)
	}
	for _, p := range cfg.Paths {
		set(p.Path, p.Alias)
	}

	slices.SortStableFunc(m, func(a, b Replacement) int {
		return len(b.Prefix) - len(a.Prefix)
	})
	return m
}

// ParseRequireConfig decodes a RequireJS config. JSON is read through the
// YAML decoder, which also accepts unquoted keys and keeps mapping order.
func ParseRequireConfig(data []byte) (RequireConfig, error) {
	var raw struct {
		Packages []yaml.Node `yaml:"packages"`
		Paths    yaml.Node   `yaml:"paths"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return RequireConfig{}, fmt.Errorf("failed to parse require config: %w", err)
	}

	var cfg RequireConfig
	for _, node := range raw.Packages {
		var pkg Package
		switch node.Kind {
		case yaml.ScalarNode:
			pkg = Package{Name: node.Value, Location: node.Value}
		case yaml.MappingNode:
			if err := node.Decode(&pkg); err != nil {
				return RequireConfig{}, fmt.Errorf("invalid package entry at line %d: %w", node.Line, err)
			}
		default:
			return RequireConfig{}, fmt.Errorf("invalid package entry at line %d", node.Line)
		}
		cfg.Packages = append(cfg.Packages, pkg)
	}

	switch {
	case raw.Paths.Kind == 0, raw.Paths.ShortTag() == "!!null":
	case raw.Paths.Kind == yaml.MappingNode:
		content := raw.Paths.Content
		for i := 0; i+1 < len(content); i += 2 {
			target, err := pathTarget(content[i+1])
			if err != nil {
				return RequireConfig{}, err
			}
			cfg.Paths = append(cfg.Paths, PathAlias{Alias: content[i].Value, Path: target})
		}
	default:
		return RequireConfig{}, fmt.Errorf("paths must be a mapping (line %d)", raw.Paths.Line)
	}

	return cfg, nil
}

// pathTarget reads a paths value; fallback arrays resolve to their first entry.
func pathTarget(node *yaml.Node) (string, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		return node.Value, nil
	case yaml.SequenceNode:
		if len(node.Content) > 0 && node.Content[0].Kind == yaml.ScalarNode {
			return node.Content[0].Value, nil
		}
	}
	return "", fmt.Errorf("invalid paths entry at line %d", node.Line)
}

// LoadReplaceMap never fails: an unreadable or malformed file yields an empty map.
func LoadReplaceMap(file string) ReplaceMap {
	data, err := os.ReadFile(file)
	if err != nil {
		logger.Debug("Require config %s not readable, no path rewriting: %v", file, err)
		return ReplaceMap{}
	}

	cfg, err := ParseRequireConfig(data)
	if err != nil {
		logger.Warn("Require config %s ignored: %v", file, err)
		return ReplaceMap{}
	}

	m := BuildReplaceMap(cfg)
	logger.Debug("Loaded %d path replacements from %s", len(m), file)
	return m
}
