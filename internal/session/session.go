// Package session wires the checker core together: one interner, one
// Definition Store, one symbol registry, and one export router per checking
// session, with per-file TypeEnvironments and resolvers built on demand and
// dropped on invalidation. The session is a bounded single-writer
// workspace: file loading fans out concurrently, but all type resolution
// runs on the single session goroutine.
package session

import (
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"surgetype/internal/ast"
	"surgetype/internal/checkopts"
	"surgetype/internal/defs"
	"surgetype/internal/diag"
	"surgetype/internal/exports"
	"surgetype/internal/narrow"
	"surgetype/internal/project"
	"surgetype/internal/project/dag"
	"surgetype/internal/resolver"
	"surgetype/internal/source"
	"surgetype/internal/subtype"
	"surgetype/internal/symbols"
	"surgetype/internal/typeenv"
	"surgetype/internal/types"
)

// CheckSession owns every session-scoped store. One interner per session,
// shared by all resolvers; the session is dropped wholesale to abandon work.
type CheckSession struct {
	Strings  *source.Interner
	FileSet  *source.FileSet
	Interner *types.Interner
	Defs     *defs.Store
	Registry *symbols.Registry
	Decls    *ast.Decls
	Exprs    *ast.TypeExprs
	Opts     checkopts.Options

	Bag      *diag.Bag
	Reporter diag.Reporter

	Router  *exports.Router
	Narrow  *narrow.Engine
	Subtype *subtype.Checker

	libs      []*symbols.File
	envs      map[symbols.ModuleID]*typeenv.Environment
	resolvers map[symbols.ModuleID]*resolver.Resolver
	paths     *project.PathResolver

	// active is the resolver whose ResolveType backs the narrowing engine
	// and subtype checker for the module currently being checked.
	active *resolver.Resolver
}

// New constructs a session around an immutable options snapshot.
func New(opts checkopts.Options) *CheckSession {
	strings := source.NewInterner()
	bag := diag.NewBag(512)
	reporter := diag.NewDedupReporter(diag.BagReporter{Bag: bag})

	s := &CheckSession{
		Strings:   strings,
		FileSet:   source.NewFileSet(),
		Interner:  types.NewInterner(strings),
		Defs:      defs.NewStore(),
		Registry:  symbols.NewRegistry(),
		Decls:     ast.NewDecls(),
		Exprs:     ast.NewTypeExprs(64),
		Opts:      opts,
		Bag:       bag,
		Reporter:  reporter,
		envs:      make(map[symbols.ModuleID]*typeenv.Environment),
		resolvers: make(map[symbols.ModuleID]*resolver.Resolver),
	}
	s.Router = exports.New(s.Registry, strings, opts, reporter)
	s.paths = &project.PathResolver{
		Config: project.ResolverConfig{
			BaseURL:         opts.BaseURL,
			Paths:           opts.Paths,
			ResolvedModules: opts.ResolvedModules,
		},
		Exists: func(modulePath string) bool {
			_, ok := s.Registry.ModuleByPath(modulePath)
			return ok
		},
	}
	s.Router.ResolveSpecifier = func(from symbols.ModuleID, specifier string) (symbols.ModuleID, bool) {
		importer := ""
		if file, ok := s.Registry.File(from); ok {
			importer = s.modulePathOf(file.ID)
		}
		resolved, ok := s.paths.Resolve(importer, specifier)
		if !ok {
			return symbols.NoModuleID, false
		}
		id, ok := s.Registry.ModuleByPath(resolved)
		return id, ok
	}

	s.Narrow = narrow.New(s.Interner)
	s.Subtype = subtype.New(s.Interner)
	resolveHook := func(id types.TypeID) types.TypeID {
		if s.active == nil {
			return id
		}
		return s.active.ResolveType(id)
	}
	s.Narrow.SetResolve(resolveHook)
	s.Subtype.SetResolve(resolveHook)
	return s
}

// modulePathOf inverts the registry's path map for one module.
func (s *CheckSession) modulePathOf(id symbols.ModuleID) string {
	path, _ := s.Registry.PathOf(id)
	return path
}

// AddModule registers a checked file under its normalized module path.
func (s *CheckSession) AddModule(path string) (symbols.ModuleID, *symbols.File) {
	if id, ok := s.Registry.ModuleByPath(path); ok {
		file, _ := s.Registry.File(id)
		return id, file
	}
	return s.Registry.NewModule(path)
}

// AddLib registers a read-only library context; its declarations are visible
// to every module's name lookup (unless noLib).
func (s *CheckSession) AddLib(path string) (symbols.ModuleID, *symbols.File) {
	id, file := s.AddModule(path)
	for _, existing := range s.libs {
		if existing.ID == id {
			return id, file
		}
	}
	s.libs = append(s.libs, file)
	return id, file
}

// EnvironmentFor returns (building on first request) the per-file
// TypeEnvironment for a module.
func (s *CheckSession) EnvironmentFor(module symbols.ModuleID) *typeenv.Environment {
	if env, ok := s.envs[module]; ok {
		return env
	}
	env := typeenv.New(s.Interner, s.Defs, module)
	s.envs[module] = env
	return env
}

// ResolverFor returns (building on first request) the per-file resolver,
// fully wired: environment, lib contexts, alias router, diagnostics.
func (s *CheckSession) ResolverFor(module symbols.ModuleID) *resolver.Resolver {
	if res, ok := s.resolvers[module]; ok {
		return res
	}
	file, _ := s.Registry.File(module)
	env := s.EnvironmentFor(module)
	res := resolver.New(s.Interner, s.Defs, s.Registry, s.Decls, s.Exprs, env, file, s.Opts, s.Reporter)
	res.Libs = s.libs
	res.Aliases = s.Router
	s.resolvers[module] = res
	return res
}

// CheckModule resolves every top-level symbol of a module in deterministic
// order (type-defining symbols before value symbols) and returns the
// populated environment.
func (s *CheckSession) CheckModule(module symbols.ModuleID) *typeenv.Environment {
	res := s.ResolverFor(module)
	prev := s.active
	s.active = res
	defer func() { s.active = prev }()

	file, ok := s.Registry.File(module)
	if !ok {
		return s.EnvironmentFor(module)
	}
	var syms []*symbols.Symbol
	for _, name := range file.Locals.Names() {
		if sym, ok := file.Locals.Lookup(name); ok {
			syms = append(syms, sym)
		}
	}
	for _, sym := range typeenv.OrderSymbols(syms) {
		res.GetTypeOfSymbol(sym.ID)
	}
	return s.EnvironmentFor(module)
}

// LoadFiles reads a set of file paths concurrently, then registers them in
// the FileSet on the session goroutine (FileSet.Add is single-writer),
// returning the FileIDs in input order. This is the only fan-out in the
// session: everything after file IO is single-writer.
func (s *CheckSession) LoadFiles(paths []string) ([]source.FileID, error) {
	contents := make([][]byte, len(paths))
	flags := make([]source.FileFlags, len(paths))

	var g errgroup.Group
	g.SetLimit(8)
	for i, path := range paths {
		g.Go(func() error {
			raw, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("load %s: %w", path, err)
			}
			contents[i], flags[i] = source.Normalize(raw)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	loaded := make([]source.FileID, len(paths))
	for i, path := range paths {
		loaded[i] = s.FileSet.Add(path, contents[i], flags[i])
	}
	return loaded, nil
}

// CheckProject checks a whole set of modules in dependency order: the
// import graph is indexed and toposorted, cycles and missing imports are
// reported, per-module hashes (content combined with dependency hashes) are
// computed for edit-time invalidation, and each present module is checked
// dependencies-first. Returns the checked modules in check order.
func (s *CheckSession) CheckProject(metas []project.ModuleMeta) []symbols.ModuleID {
	idx := dag.BuildIndex(metas)
	nodes := make([]dag.ModuleNode, len(metas))
	for i, meta := range metas {
		nodes[i] = dag.ModuleNode{Meta: meta, Reporter: s.Reporter}
	}
	graph, slots := dag.BuildGraph(idx, nodes)
	topo := dag.ToposortKahn(graph)
	dag.ReportCycles(idx, slots, *topo)
	dag.ComputeModuleHashes(idx, graph, slots, topo)

	// A module's dependencies appear after it in topo.Order (edges point
	// from importer to imported), so checking runs in reverse.
	checked := make([]symbols.ModuleID, 0, len(topo.Order))
	for i := len(topo.Order) - 1; i >= 0; i-- {
		slot := slots[int(topo.Order[i])]
		if !slot.Present {
			continue
		}
		id, ok := s.Registry.ModuleByPath(slot.Meta.Path)
		if !ok {
			continue
		}
		s.CheckModule(id)
		checked = append(checked, id)
	}
	return checked
}

// NarrowType applies a guard to a source type under the given module's
// resolver, the session-level entry point for flow analyses.
func (s *CheckSession) NarrowType(module symbols.ModuleID, src types.TypeID, guard narrow.TypeGuard, sense bool) types.TypeID {
	res := s.ResolverFor(module)
	prev := s.active
	s.active = res
	defer func() { s.active = prev }()
	return s.Narrow.NarrowType(src, guard, sense)
}

// InvalidateModule drops a module's environment, resolver, and the shared
// narrowing caches; the next CheckModule rebuilds them against the shared
// interner and Definition Store. This is the "invalidate caches for these
// TypeIds/DefIds" contract the incremental binder depends on.
func (s *CheckSession) InvalidateModule(module symbols.ModuleID, defIDs []defs.DefID, typeIDs []types.TypeID) {
	if env, ok := s.envs[module]; ok {
		env.Invalidate(defIDs, typeIDs)
	}
	delete(s.resolvers, module)
	delete(s.envs, module)
	s.Narrow.Cache().Reset()
}
