// Package ast finds the dependency lists of an AMD define or require call
// using tree-sitter.
package ast

import (
	"errors"
	"fmt"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
	"github.com/tristendillon/amdbutler/core/document"
	"github.com/tristendillon/amdbutler/core/logger"
)

var (
	ErrNoDeclaration   = errors.New("no define or require call with a dependency array found")
	ErrNoParameterList = errors.New("define callback has no parenthesized parameter list")
)

// The TypeScript grammar is a superset of the JavaScript these files are written in.
var typeScriptLanguage = sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript())

var amdFunctions = map[string]bool{"define": true, "require": true}

// DefineFinder implements document.BoundaryFinder.
type DefineFinder struct {
	cache *ParseCache
}

func NewDefineFinder() *DefineFinder {
	return &DefineFinder{cache: NewParseCache()}
}

func (f *DefineFinder) Cache() *ParseCache {
	return f.cache
}

// Invalidate drops the cached ranges of a buffer that was just edited.
func (f *DefineFinder) Invalidate(path string) {
	f.cache.Invalidate(path)
}

func (f *DefineFinder) LogStats() {
	f.cache.LogStats()
}

func (f *DefineFinder) ImportsRange(buf document.Buffer) (document.Range, error) {
	entry := f.lookup(buf)
	return entry.imports, entry.err
}

func (f *DefineFinder) ParamsRange(buf document.Buffer) (document.Range, error) {
	entry := f.lookup(buf)
	return entry.params, entry.err
}

func (f *DefineFinder) lookup(buf document.Buffer) *parseEntry {
	content := []byte(buf.Text())
	hash := hashContent(content)
	if entry, ok := f.cache.get(buf.Path(), hash); ok {
		return entry
	}

	imports, params, err := f.Ranges(content)
	entry := &parseEntry{contentHash: hash, imports: imports, params: params, err: err}
	f.cache.set(buf.Path(), entry)
	return entry
}

// Ranges returns the inside of the dependency array and of the callback's
// parameter parentheses of the first define or require call.
func (f *DefineFinder) Ranges(content []byte) (document.Range, document.Range, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(typeScriptLanguage); err != nil {
		return document.Range{}, document.Range{}, fmt.Errorf("failed to load grammar: %w", err)
	}

	tree := parser.Parse(content, nil)
	if tree == nil {
		return document.Range{}, document.Range{}, fmt.Errorf("failed to parse source")
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		logger.Debug("Source has syntax errors, searching the partial tree")
	}

	var (
		deps     *sitter.Node
		callback *sitter.Node
	)
	walkTreePreOrder(root, func(node *sitter.Node) bool {
		if node.Kind() != "call_expression" {
			return true
		}
		fn := node.ChildByFieldName("function")
		if fn == nil || fn.Kind() != "identifier" || !amdFunctions[fn.Utf8Text(content)] {
			return true
		}
		args := node.ChildByFieldName("arguments")
		if args == nil {
			return true
		}

		var array, function *sitter.Node
		for i := uint(0); i < args.NamedChildCount(); i++ {
			arg := args.NamedChild(i)
			switch arg.Kind() {
			case "array":
				if array == nil {
					array = arg
				}
			case "function_expression", "function", "arrow_function":
				if function == nil {
					function = arg
				}
			}
		}
		if array == nil {
			return true
		}
		deps, callback = array, function
		return false
	})

	if deps == nil {
		return document.Range{}, document.Range{}, ErrNoDeclaration
	}
	imports := inside(deps)

	if callback == nil {
		return imports, document.Range{}, ErrNoParameterList
	}
	params := callback.ChildByFieldName("parameters")
	if params == nil || params.Kind() != "formal_parameters" {
		return imports, document.Range{}, ErrNoParameterList
	}
	return imports, inside(params), nil
}

// inside strips the delimiters of a bracketed node.
func inside(node *sitter.Node) document.Range {
	return document.Range{Start: int(node.StartByte()) + 1, End: int(node.EndByte()) - 1}
}

// walkTreePreOrder visits nodes depth first until visit returns false.
func walkTreePreOrder(root *sitter.Node, visit func(*sitter.Node) bool) {
	if root == nil {
		return
	}

	stack := []*sitter.Node{root}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !visit(node) {
			return
		}

		for i := int(node.NamedChildCount()) - 1; i >= 0; i-- {
			if child := node.NamedChild(uint(i)); child != nil {
				stack = append(stack, child)
			}
		}
	}
}
