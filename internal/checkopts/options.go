// Package checkopts loads the immutable per-session compiler-options
// snapshot a CheckSession consults when resolving modules, widening
// literals, and deciding whether an implicit-any is an error. Modeled on the
// [package]/[run] TOML manifest the project package loads, generalized to
// compiler flags instead of build targets.
package checkopts

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

// Options is the immutable snapshot consulted throughout one CheckSession.
// Once loaded it is never mutated; a session that needs different options
// starts a new session.
type Options struct {
	Strict                       bool                `toml:"strict"`
	NoImplicitAny                bool                `toml:"no_implicit_any"`
	StrictNullChecks             bool                `toml:"strict_null_checks"`
	AllowSyntheticDefaultImports bool                `toml:"allow_synthetic_default_imports"`
	NoLib                        bool                `toml:"no_lib"`
	ResolvedModules              map[string]string   `toml:"resolved_modules"`
	Paths                        map[string][]string `toml:"paths"`
	BaseURL                      string              `toml:"base_url"`
	Lib                          []string            `toml:"lib"`
}

// manifest is the on-disk shape, mirroring the project package's
// `[package]`/`[run]` table convention with a `[compiler]` table instead.
type manifest struct {
	Compiler Options `toml:"compiler"`
}

// Default returns the options a session uses when no manifest is supplied:
// strict mode on, matching the checker's testable-properties baseline.
func Default() Options {
	return Options{
		Strict:           true,
		NoImplicitAny:    true,
		StrictNullChecks: true,
		ResolvedModules:  map[string]string{},
		Paths:            map[string][]string{},
	}
}

// Load decodes a compiler-options manifest from path. A missing `[compiler]`
// table is not an error: Default() is returned, since a project without a
// manifest still type-checks under the strict baseline.
func Load(path string) (Options, error) {
	var m manifest
	meta, err := toml.DecodeFile(path, &m)
	if err != nil {
		return Options{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("compiler") {
		return Default(), nil
	}
	opts := m.Compiler
	if opts.ResolvedModules == nil {
		opts.ResolvedModules = map[string]string{}
	}
	if opts.Paths == nil {
		opts.Paths = map[string][]string{}
	}
	return opts, nil
}

// ResolveModule looks up an explicit module-path remapping from
// `[compiler].resolved_modules`, used to short-circuit node_modules-style
// resolution for a fixed test fixture or a path-mapped monorepo package.
func (o Options) ResolveModule(specifier string) (string, bool) {
	p, ok := o.ResolvedModules[specifier]
	return p, ok
}

// LibNames returns the configured lib context names (e.g. "es2020",
// "dom"), trimmed and with empties dropped.
func (o Options) LibNames() []string {
	out := make([]string, 0, len(o.Lib))
	for _, l := range o.Lib {
		l = strings.TrimSpace(l)
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}
