package models

import "strings"

// Module is a dependency candidate found under the module root.
type Module struct {
	Path    string `json:"path"`
	RawPath string `json:"raw_path"`
	Name    string `json:"name"`
}

// Pair is one entry of a define call: an import path and the parameter
// bound to it at the same position.
type Pair struct {
	Path string `json:"path"`
	Name string `json:"name"`
}

// Package is the first segment of the pair's path.
func (p Pair) Package() string {
	return FirstSegment(p.Path)
}

func (m Module) Pair() Pair {
	return Pair{Path: m.Path, Name: m.Name}
}

func FirstSegment(path string) string {
	if i := strings.IndexByte(path, '/'); i >= 0 {
		return path[:i]
	}
	return path
}
