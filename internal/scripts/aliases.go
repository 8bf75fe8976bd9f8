// SPDX-License-Identifier: MPL-2.0

package scripts

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// PathAliases is the compilerOptions.paths table of a tsconfig, anchored at
// the script staging root.
type PathAliases struct {
	base     string
	patterns []aliasPattern
}

type aliasPattern struct {
	prefix   string
	suffix   string
	wildcard bool
	targets  []string
}

// NewPathAliases builds a table from tsconfig-style patterns ("@lib/*") and
// their targets ("src/lib/*"), resolved against base.
func NewPathAliases(base string, paths map[string][]string) *PathAliases {
	a := &PathAliases{base: base}
	for pattern, targets := range paths {
		p := aliasPattern{prefix: pattern, targets: targets}
		if i := strings.IndexByte(pattern, '*'); i >= 0 {
			p.prefix, p.suffix, p.wildcard = pattern[:i], pattern[i+1:], true
		}
		a.patterns = append(a.patterns, p)
	}
	// Longest prefix wins, exact patterns before wildcards of the same length.
	slices.SortFunc(a.patterns, func(x, y aliasPattern) int {
		if len(x.prefix) != len(y.prefix) {
			return len(y.prefix) - len(x.prefix)
		}
		if x.wildcard != y.wildcard {
			if x.wildcard {
				return 1
			}
			return -1
		}
		return strings.Compare(x.prefix, y.prefix)
	})
	return a
}

// Len returns the number of patterns.
func (a *PathAliases) Len() int {
	if a == nil {
		return 0
	}
	return len(a.patterns)
}

// Candidates returns the absolute, extensionless targets specifier maps to,
// in tsconfig order, or nil when no pattern matches.
func (a *PathAliases) Candidates(specifier string) []string {
	if a == nil {
		return nil
	}
	for _, p := range a.patterns {
		var star string
		switch {
		case !p.wildcard && specifier == p.prefix:
		case p.wildcard && strings.HasPrefix(specifier, p.prefix) && strings.HasSuffix(specifier, p.suffix) &&
			len(specifier) >= len(p.prefix)+len(p.suffix):
			star = specifier[len(p.prefix) : len(specifier)-len(p.suffix)]
		default:
			continue
		}
		out := make([]string, 0, len(p.targets))
		for _, t := range p.targets {
			out = append(out, filepath.Join(a.base, filepath.FromSlash(strings.Replace(t, "*", star, 1))))
		}
		return out
	}
	return nil
}

// Rewrite returns the fully resolved relative specifier for an import of
// specifier from importer, and false for bare module imports that must stay
// untouched. Resolved specifiers always carry a .js extension.
func (a *PathAliases) Rewrite(importer, specifier string) (string, bool) {
	dir := filepath.Dir(importer)

	if candidates := a.Candidates(specifier); len(candidates) > 0 {
		for _, c := range candidates {
			if file, ok := resolveFile(c); ok {
				return relativeSpecifier(dir, file), true
			}
		}
		return relativeSpecifier(dir, candidates[0]), true
	}

	if !isRelative(specifier) {
		return "", false
	}
	target := filepath.Join(dir, filepath.FromSlash(specifier))
	if file, ok := resolveFile(target); ok {
		return relativeSpecifier(dir, file), true
	}
	return relativeSpecifier(dir, target), true
}

func isRelative(specifier string) bool {
	return specifier == "." || specifier == ".." ||
		strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../")
}

// resolveFile finds the source file an extensionless import refers to.
func resolveFile(base string) (string, bool) {
	candidates := []string{base}
	switch filepath.Ext(base) {
	case ".ts", ".js":
	default:
		candidates = []string{
			base + ".ts",
			base + ".js",
			filepath.Join(base, "index.ts"),
			filepath.Join(base, "index.js"),
		}
	}
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c, true
		}
	}
	return "", false
}

// relativeSpecifier renders file as an ES module specifier relative to dir,
// with the extension rewritten to .js.
func relativeSpecifier(dir, file string) string {
	rel, err := filepath.Rel(dir, file)
	if err != nil {
		rel = file
	}
	rel = filepath.ToSlash(jsName(rel))
	if !strings.HasPrefix(rel, "../") {
		rel = "./" + rel
	}
	return rel
}

// jsName swaps a .ts or .js extension for .js and appends .js otherwise.
func jsName(name string) string {
	switch filepath.Ext(name) {
	case ".ts", ".js":
		return strings.TrimSuffix(name, filepath.Ext(name)) + ".js"
	default:
		return name + ".js"
	}
}
