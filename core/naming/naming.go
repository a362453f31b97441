// Package naming derives the parameter name a module is bound to inside an
// AMD define callback.
package naming

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/tristendillon/amdbutler/core/shared"
)

type Deriver struct {
	Aliases map[string]string
}

// NewDeriver returns a Deriver whose alias table is the built-in one with
// extra entries layered on top.
func NewDeriver(extra map[string]string) *Deriver {
	aliases := make(map[string]string, len(preferredAliases)+len(extra))
	for path, alias := range preferredAliases {
		aliases[path] = alias
	}
	for path, alias := range extra {
		aliases[path] = alias
	}
	return &Deriver{Aliases: aliases}
}

var defaultDeriver = NewDeriver(nil)

// Derive names a module using the built-in alias table.
func Derive(path string) string {
	return defaultDeriver.Derive(path)
}

func (d *Deriver) Derive(path string) string {
	if alias, ok := d.Aliases[path]; ok {
		return alias
	}

	parts := strings.Split(strings.TrimRight(path, "/"), "/")
	first := parts[0]
	base := parts[len(parts)-1]

	var name string
	if strings.Contains(base, "-") {
		// Only the first two words are joined: "foo-bar-baz" becomes "fooBar".
		words := strings.Split(base, "-")
		name = words[0] + shared.ToTitle(words[1])
	} else {
		name = base
	}

	if IsReserved(name) || startsWithDigit(name) {
		name = qualify(first, base, name)
	}
	return name
}

// qualify prefixes name with the package so it no longer clashes or starts
// with a digit. Without a usable package "_" is used.
func qualify(first, base, name string) string {
	if first != base && isIdentifier(first) {
		return first + shared.ToTitle(name)
	}
	return "_" + name
}

func startsWithDigit(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsDigit(r)
}

func isIdentifier(s string) bool {
	if s == "" || startsWithDigit(s) {
		return false
	}
	for _, r := range s {
		if r != '_' && r != '$' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
