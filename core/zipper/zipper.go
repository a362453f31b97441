// Package zipper keeps the import list and the parameter list of a define call
// aligned: it pairs them up, sorts the pairs and renders both lists again.
package zipper

import (
	"fmt"
	"slices"
	"strings"

	"github.com/tristendillon/amdbutler/core/models"
)

// MalformedDeclarationError means the two lists have different lengths, which
// no automatic repair can fix without guessing.
type MalformedDeclarationError struct {
	Imports int
	Params  int
}

func (e *MalformedDeclarationError) Error() string {
	return fmt.Sprintf("define call has %d imports but %d parameters", e.Imports, e.Params)
}

type Options struct {
	Indent           string
	SeparatePackages bool
	// Quote wraps import paths; defaults to a single quote.
	Quote string
}

type Blocks struct {
	Imports string
	Params  string
}

// Zip pairs the entries of the two lists by position.
func Zip(importsText, paramsText string) ([]models.Pair, error) {
	imports := splitList(importsText)
	params := splitList(paramsText)
	if len(imports) != len(params) {
		return nil, &MalformedDeclarationError{Imports: len(imports), Params: len(params)}
	}

	pairs := make([]models.Pair, len(imports))
	for i := range imports {
		pairs[i] = models.Pair{Path: unquote(imports[i]), Name: params[i]}
	}
	return pairs, nil
}

func splitList(text string) []string {
	var out []string
	for _, token := range strings.Split(text, ",") {
		if token = strings.TrimSpace(token); token != "" {
			out = append(out, token)
		}
	}
	return out
}

func unquote(token string) string {
	if len(token) >= 2 {
		first, last := token[0], token[len(token)-1]
		if first == last && (first == '\'' || first == '"' || first == '`') {
			return token[1 : len(token)-1]
		}
	}
	return token
}

// Sort orders pairs by path. Names play no part, so sorting is idempotent and
// pairs with equal paths keep their order.
func Sort(pairs []models.Pair) []models.Pair {
	sorted := slices.Clone(pairs)
	slices.SortStableFunc(sorted, func(a, b models.Pair) int {
		return strings.Compare(a.Path, b.Path)
	})
	return sorted
}

func Add(pairs []models.Pair, pair models.Pair) []models.Pair {
	return Sort(append(slices.Clone(pairs), pair))
}

// Remove drops every pair with the given path and keeps the others in order.
func Remove(pairs []models.Pair, path string) []models.Pair {
	return slices.DeleteFunc(slices.Clone(pairs), func(p models.Pair) bool {
		return p.Path == path
	})
}

// Render writes one line per pair into each list, at matching positions.
func Render(pairs []models.Pair, opts Options) Blocks {
	quote := opts.Quote
	if quote == "" {
		quote = "'"
	}

	imports := renderList(pairs, opts, func(p models.Pair) string { return quote + p.Path + quote })
	params := renderList(pairs, opts, func(p models.Pair) string { return p.Name })
	return Blocks{Imports: imports, Params: params}
}

func renderList(pairs []models.Pair, opts Options, entry func(models.Pair) string) string {
	if len(pairs) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("\n")
	for i, p := range pairs {
		if opts.SeparatePackages && i > 0 && p.Package() != pairs[i-1].Package() {
			sb.WriteString("\n")
		}
		sb.WriteString(opts.Indent)
		sb.WriteString(entry(p))
		if i < len(pairs)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
