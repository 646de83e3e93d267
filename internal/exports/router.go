// Package exports implements the cross-file export router: following
// re-export chains (`export { x } from '...'`, `export * from
// '...'`, `export * as ns from '...'`, `export = x`), resolving import
// aliases, and producing the canonical target symbol for a foreign
// reference, together with a type-only tag the checker uses for the "cannot
// use type as value" diagnostic.
package exports

import (
	"fmt"

	"surgetype/internal/checkopts"
	"surgetype/internal/diag"
	"surgetype/internal/source"
	"surgetype/internal/symbols"
)

// MaxAliasDepth bounds alias-chain traversal; a chain deeper than this is
// treated as unresolvable rather than followed further.
const MaxAliasDepth = 128

// Resolution is the router's answer for one foreign reference.
type Resolution struct {
	Symbol symbols.SymbolID
	// TypeOnly is set when any hop in the chain was `import type` /
	// `export type`; using such a resolution in value position is the
	// TcCannotUseTypeAsValue diagnostic.
	TypeOnly bool
	// Namespace is set (and Symbol zero) when the resolution is a whole
	// module namespace: `export * as ns`, or a synthetic default under
	// allowSyntheticDefaultImports.
	Namespace symbols.ModuleID
}

// IsNamespace reports whether the resolution denotes a module namespace
// rather than a single symbol.
func (r Resolution) IsNamespace() bool { return r.Namespace.IsValid() }

// Router resolves foreign references across files. ResolveSpecifier is the
// module-resolution contract (resolve a specifier to a file index), wired
// by the session from internal/project plus the options snapshot's
// resolved_modules table.
type Router struct {
	Registry *symbols.Registry
	Strings  *source.Interner
	Opts     checkopts.Options
	Reporter diag.Reporter

	ResolveSpecifier func(from symbols.ModuleID, specifier string) (symbols.ModuleID, bool)

	// missingModules makes "cannot find module" fire once per specifier per
	// session; later references resolve to nothing silently.
	missingModules map[string]bool
}

// New constructs a Router over the session's registry and atom table.
func New(reg *symbols.Registry, strings *source.Interner, opts checkopts.Options, rep diag.Reporter) *Router {
	return &Router{
		Registry:       reg,
		Strings:        strings,
		Opts:           opts,
		Reporter:       rep,
		missingModules: make(map[string]bool),
	}
}

// moduleFor resolves a specifier to a module, emitting the once-per-session
// "cannot find module" diagnostic on the first failure.
func (r *Router) moduleFor(from symbols.ModuleID, specifier string, span source.Span) (symbols.ModuleID, bool) {
	if r.ResolveSpecifier != nil {
		if id, ok := r.ResolveSpecifier(from, specifier); ok {
			return id, true
		}
	}
	if !r.missingModules[specifier] {
		r.missingModules[specifier] = true
		if r.Reporter != nil {
			diag.ReportError(r.Reporter, diag.TcCannotFindModule, span,
				fmt.Sprintf("cannot find module '%s'", specifier)).Emit()
		}
	}
	return symbols.NoModuleID, false
}

// ResolveMember resolves `import { member } from specifier` seen in module
// `from` to its canonical symbol.
func (r *Router) ResolveMember(from symbols.ModuleID, specifier string, member source.StringID, span source.Span) (Resolution, bool) {
	target, ok := r.moduleFor(from, specifier, span)
	if !ok {
		return Resolution{}, false
	}
	res, found := r.lookupExport(target, member, &walkState{})
	if !found {
		if r.Reporter != nil {
			memberName, _ := r.Strings.Lookup(member)
			diag.ReportError(r.Reporter, diag.TcNoExportedMember, span,
				fmt.Sprintf("module '%s' has no exported member '%s'", specifier, memberName)).Emit()
		}
		return Resolution{}, false
	}
	return res, true
}

// ResolveDefault resolves `import d from specifier`. A missing `default`
// export is silently replaced by the module namespace when
// allowSyntheticDefaultImports is set; otherwise it is the TcNoDefaultExport
// diagnostic.
func (r *Router) ResolveDefault(from symbols.ModuleID, specifier string, span source.Span) (Resolution, bool) {
	target, ok := r.moduleFor(from, specifier, span)
	if !ok {
		return Resolution{}, false
	}
	defaultName := r.Strings.Intern("default")
	if res, found := r.lookupExport(target, defaultName, &walkState{}); found {
		return res, true
	}
	if file, ok := r.Registry.File(target); ok && file.HasExportEquals {
		if res, found := r.resolveSymbolAlias(file.ExportEqualsSym, &walkState{}); found {
			return res, true
		}
	}
	if r.Opts.AllowSyntheticDefaultImports {
		return Resolution{Namespace: target}, true
	}
	if r.Reporter != nil {
		diag.ReportError(r.Reporter, diag.TcNoDefaultExport, span,
			fmt.Sprintf("module '%s' has no default export", specifier)).Emit()
	}
	return Resolution{}, false
}

// ResolveNamespace resolves `import * as ns from specifier` to the target
// module.
func (r *Router) ResolveNamespace(from symbols.ModuleID, specifier string, span source.Span) (Resolution, bool) {
	target, ok := r.moduleFor(from, specifier, span)
	if !ok {
		return Resolution{}, false
	}
	return Resolution{Namespace: target}, true
}

// ResolveAlias follows an ALIAS symbol's chain to the canonical target; this
// is the hook internal/resolver calls when a referenced symbol turns out to
// be an import binding. It satisfies resolver.AliasRouter.
func (r *Router) ResolveAlias(sym symbols.SymbolID) (symbols.SymbolID, bool, bool) {
	res, ok := r.resolveSymbolAlias(sym, &walkState{})
	if !ok || res.IsNamespace() {
		return symbols.NoSymbolID, false, false
	}
	return res.Symbol, res.TypeOnly, true
}

// walkState carries the bounded visited sets one resolution walk threads
// through alias hops and star-export fan-out.
type walkState struct {
	depth        int
	visitedSyms  map[symbols.SymbolID]bool
	visitedFiles map[symbols.ModuleID]bool
	typeOnly     bool
}

func (w *walkState) enterSym(id symbols.SymbolID) bool {
	if w.depth >= MaxAliasDepth {
		return false
	}
	if w.visitedSyms == nil {
		w.visitedSyms = make(map[symbols.SymbolID]bool, 4)
	}
	if w.visitedSyms[id] {
		return false
	}
	w.visitedSyms[id] = true
	w.depth++
	return true
}

func (w *walkState) enterFile(id symbols.ModuleID) bool {
	if w.depth >= MaxAliasDepth {
		return false
	}
	if w.visitedFiles == nil {
		w.visitedFiles = make(map[symbols.ModuleID]bool, 4)
	}
	if w.visitedFiles[id] {
		return false
	}
	w.visitedFiles[id] = true
	w.depth++
	return true
}

// lookupExport finds `name` in module's exports: the export table first,
// then wildcard re-export chains, then file locals, then an export-equals
// target's own exports.
func (r *Router) lookupExport(module symbols.ModuleID, name source.StringID, w *walkState) (Resolution, bool) {
	if !w.enterFile(module) {
		return Resolution{}, false
	}
	file, ok := r.Registry.File(module)
	if !ok {
		return Resolution{}, false
	}

	if sym, found := file.ModuleExports.Lookup(name); found {
		return r.resolveSymbolAlias(sym.ID, w)
	}

	// `export * as ns from '...'` binds the alias name itself.
	for _, star := range file.ExportStars {
		if star.Alias == name && star.Alias != source.NoStringID {
			specifier, _ := r.Strings.Lookup(star.Specifier)
			target, ok := r.moduleFor(module, specifier, source.Span{})
			if !ok {
				return Resolution{}, false
			}
			return Resolution{Namespace: target, TypeOnly: w.typeOnly}, true
		}
	}

	// Plain `export * from '...'` chains re-export every named export.
	for _, star := range file.ExportStars {
		if star.Alias != source.NoStringID {
			continue
		}
		specifier, _ := r.Strings.Lookup(star.Specifier)
		target, ok := r.moduleFor(module, specifier, source.Span{})
		if !ok {
			continue
		}
		if res, found := r.lookupExport(target, name, w); found {
			return res, true
		}
	}

	if sym, found := file.Locals.Lookup(name); found {
		return r.resolveSymbolAlias(sym.ID, w)
	}

	if file.HasExportEquals {
		if res, found := r.resolveSymbolAlias(file.ExportEqualsSym, w); found && !res.IsNamespace() {
			if target, ok := r.Registry.Symbol(res.Symbol); ok && target.Exports != nil {
				if member, found := target.Exports.Lookup(name); found {
					return r.resolveSymbolAlias(member.ID, w)
				}
			}
		}
	}

	return Resolution{}, false
}

// resolveSymbolAlias unwraps ALIAS flags hop by hop until a concrete symbol
// (or a namespace) is reached.
func (r *Router) resolveSymbolAlias(id symbols.SymbolID, w *walkState) (Resolution, bool) {
	sym, ok := r.Registry.Symbol(id)
	if !ok {
		return Resolution{}, false
	}
	if sym.IsTypeOnly {
		w.typeOnly = true
	}
	if !sym.Flags.Any(symbols.FlagAlias) {
		return Resolution{Symbol: sym.ID, TypeOnly: w.typeOnly}, true
	}
	if !w.enterSym(sym.ID) {
		return Resolution{}, false
	}

	if sym.HasFrom {
		// `import { name } from module` / `export { name } from module`.
		specifier, _ := r.Strings.Lookup(sym.ImportModule)
		target, ok := r.moduleFor(sym.Origin, specifier, source.Span{})
		if !ok {
			return Resolution{}, false
		}
		if sym.ImportName == source.NoStringID {
			return Resolution{Namespace: target, TypeOnly: w.typeOnly}, true
		}
		return r.lookupExport(target, sym.ImportName, w)
	}

	// Local re-binding: `export { X as Y }` with no `from` resolves X in the
	// declaring file's locals.
	if file, ok := r.Registry.File(sym.Origin); ok {
		if local, found := file.Locals.Lookup(sym.ImportName); found && local.ID != sym.ID {
			return r.resolveSymbolAlias(local.ID, w)
		}
	}
	return Resolution{}, false
}
