package project

import (
	"path/filepath"
	"sort"
	"strings"
)

// ResolverConfig is the path-mapping slice of the compiler-options snapshot
// the specifier resolver consults: an explicit specifier table, tsconfig-style
// wildcard path patterns, and a base directory for bare specifiers. The
// session maps checkopts.Options onto this so project stays free of the
// options package.
type ResolverConfig struct {
	// BaseURL is the directory bare specifiers resolve against when no path
	// pattern matches, normalized module-path form ("src").
	BaseURL string
	// Paths maps wildcard patterns ("@app/*") to candidate substitutions
	// ("src/app/*"), tried in order.
	Paths map[string][]string
	// ResolvedModules short-circuits everything: specifier -> module path.
	ResolvedModules map[string]string
}

// PathResolver implements the "resolve specifier -> file" contract. The
// Exists probe is injectable so sessions can resolve against an in-memory
// registry instead of the filesystem.
type PathResolver struct {
	Config ResolverConfig
	// Exists reports whether a normalized module path denotes a known
	// module. Required; a nil probe resolves nothing.
	Exists func(modulePath string) bool
}

// Resolve maps one import specifier, seen in the module at importerPath, to
// a normalized module path.
func (r *PathResolver) Resolve(importerPath, specifier string) (string, bool) {
	if r.Exists == nil {
		return "", false
	}
	if mapped, ok := r.Config.ResolvedModules[specifier]; ok {
		if norm, err := NormalizeModulePath(mapped); err == nil && r.Exists(norm) {
			return norm, true
		}
		return "", false
	}

	target, err := ResolveImportPath(importerPath, specifier)
	switch {
	case err == nil:
		return r.probe(target)
	case err != ErrBareSpecifier:
		return "", false
	}

	// Bare specifier: wildcard path patterns, most specific (longest
	// prefix) first, then baseURL.
	for _, pattern := range r.sortedPatterns() {
		prefix, matched := matchPattern(pattern, specifier)
		if !matched {
			continue
		}
		for _, subst := range r.Config.Paths[pattern] {
			candidate := strings.Replace(subst, "*", prefix, 1)
			if norm, err := NormalizeModulePath(candidate); err == nil {
				if resolved, ok := r.probe(norm); ok {
					return resolved, true
				}
			}
		}
	}
	if r.Config.BaseURL != "" {
		if norm, err := NormalizeModulePath(r.Config.BaseURL + "/" + specifier); err == nil {
			return r.probe(norm)
		}
	}
	if norm, err := NormalizeModulePath(specifier); err == nil {
		return r.probe(norm)
	}
	return "", false
}

// probe tries a module path as-is and as a directory with an index module.
func (r *PathResolver) probe(modulePath string) (string, bool) {
	if r.Exists(modulePath) {
		return modulePath, true
	}
	index := modulePath + "/index"
	if r.Exists(index) {
		return index, true
	}
	return "", false
}

// sortedPatterns orders the wildcard patterns longest-first so "@app/deep/*"
// beats "@app/*", with a lexicographic tiebreak for determinism.
func (r *PathResolver) sortedPatterns() []string {
	patterns := make([]string, 0, len(r.Config.Paths))
	for p := range r.Config.Paths {
		patterns = append(patterns, p)
	}
	sort.Slice(patterns, func(i, j int) bool {
		if len(patterns[i]) != len(patterns[j]) {
			return len(patterns[i]) > len(patterns[j])
		}
		return patterns[i] < patterns[j]
	})
	return patterns
}

// matchPattern matches a specifier against a single-'*' wildcard pattern,
// returning the text the wildcard captured. A pattern without '*' must match
// exactly.
func matchPattern(pattern, specifier string) (string, bool) {
	star := strings.IndexByte(pattern, '*')
	if star < 0 {
		return "", pattern == specifier
	}
	prefix, suffix := pattern[:star], pattern[star+1:]
	if !strings.HasPrefix(specifier, prefix) || !strings.HasSuffix(specifier, suffix) {
		return "", false
	}
	if len(specifier) < len(prefix)+len(suffix) {
		return "", false
	}
	return specifier[len(prefix) : len(specifier)-len(suffix)], true
}

// LogicalPath maps a filesystem path under root to its normalized module
// path, used when registering files discovered by a directory walk.
func LogicalPath(root, path string) (string, bool) {
	rel, err := filepath.Rel(root, filepath.Clean(path))
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", false
	}
	norm, err := NormalizeModulePath(filepath.ToSlash(rel))
	if err != nil {
		return "", false
	}
	return norm, true
}
