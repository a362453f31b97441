package models

import "fmt"

type ModuleEventOp int

const (
	ModuleAdded ModuleEventOp = iota
	ModuleDeleted
	ModuleRenamed
	// TreeDeleted drops every module below a removed or renamed directory.
	TreeDeleted
)

func (op ModuleEventOp) String() string {
	switch op {
	case ModuleAdded:
		return "added"
	case ModuleDeleted:
		return "deleted"
	case ModuleRenamed:
		return "renamed"
	case TreeDeleted:
		return "tree deleted"
	default:
		return "unknown"
	}
}

// ModuleEvent is what the watcher reports to the index update loop. Paths are
// absolute file system paths.
type ModuleEvent struct {
	Op      ModuleEventOp
	Path    string
	OldPath string
}

func (e ModuleEvent) String() string {
	if e.Op == ModuleRenamed {
		return fmt.Sprintf("%s: %s -> %s", e.Op, e.OldPath, e.Path)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Path)
}
