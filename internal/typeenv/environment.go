// Package typeenv implements the per-file type environment: the resolver
// map from a symbol or definition to its resolved TypeID
// and cached type-parameter list, used as the lookup table the Application
// Evaluator and Meta-type Reducer consult while reducing a generic or meta
// type. It is rebuilt per file on cache invalidation but always shares the
// session-wide interner and Definition Store (internal/defs).
package typeenv

import (
	"sort"

	"surgetype/internal/defs"
	"surgetype/internal/symbols"
	"surgetype/internal/types"
)

// Queries lets internal/resolver plug its AST-dependent lowering logic into
// the Environment without the Environment importing the resolver package
// (which would create an import cycle: resolver already depends on
// typeenv). A nil field is "not wired yet" and GetTypeOfSymbol degenerates
// to a plain cache lookup.
type Queries struct {
	// GetTypeOfSymbol computes the concrete structural type of sym the first
	// time it is requested (C4's get_type_of_symbol).
	GetTypeOfSymbol func(symbols.SymbolID) types.TypeID
	// GetDeclaredType computes the representational (possibly Lazy) type of
	// sym (C4's type_reference_symbol_type).
	GetDeclaredType func(symbols.SymbolID) types.TypeID
	// GetWidenedType drops the fresh-literal flag from an inferred literal
	// type when it escapes its initializer.
	GetWidenedType func(types.TypeID) types.TypeID
}

// Environment is the per-file Type Environment.
type Environment struct {
	Interner *types.Interner
	Defs     *defs.Store
	File     symbols.ModuleID

	queries Queries

	bySymbol   map[symbols.SymbolID]types.TypeID
	declBySym  map[symbols.SymbolID]types.TypeID
	typeParams map[symbols.SymbolID][]types.TypeID
}

// New constructs an empty Environment for one file, sharing the session's
// interner and Definition Store.
func New(interner *types.Interner, store *defs.Store, file symbols.ModuleID) *Environment {
	return &Environment{
		Interner:   interner,
		Defs:       store,
		File:       file,
		bySymbol:   make(map[symbols.SymbolID]types.TypeID),
		declBySym:  make(map[symbols.SymbolID]types.TypeID),
		typeParams: make(map[symbols.SymbolID][]types.TypeID),
	}
}

// SetQueries wires the resolver-backed computation functions. Called once by
// internal/session after both the Environment and the Resolver exist.
func (e *Environment) SetQueries(q Queries) { e.queries = q }

// isPoisoned reports whether id must never be cached as a symbol's resolved
// type: a cached ANY/ERROR would poison downstream callers that assume a
// cached type is meaningful, so those resolutions stay uncached.
func (e *Environment) isPoisoned(id types.TypeID) bool {
	return id == types.NoTypeID || e.Interner.IsAny(id) || e.Interner.IsError(id)
}

// SetSymbolType caches sym's concrete structural type.
func (e *Environment) SetSymbolType(sym symbols.SymbolID, id types.TypeID) {
	if e.isPoisoned(id) {
		return
	}
	e.bySymbol[sym] = id
}

// SymbolType returns the cached concrete type for sym, if any.
func (e *Environment) SymbolType(sym symbols.SymbolID) (types.TypeID, bool) {
	id, ok := e.bySymbol[sym]
	return id, ok
}

// GetTypeOfSymbol returns sym's concrete structural type, computing and
// caching it via the wired Queries on first request.
func (e *Environment) GetTypeOfSymbol(sym symbols.SymbolID) types.TypeID {
	if id, ok := e.bySymbol[sym]; ok {
		return id
	}
	if e.queries.GetTypeOfSymbol == nil {
		return types.NoTypeID
	}
	id := e.queries.GetTypeOfSymbol(sym)
	e.SetSymbolType(sym, id)
	return id
}

// SetDeclaredType caches sym's representational (possibly Lazy) type.
func (e *Environment) SetDeclaredType(sym symbols.SymbolID, id types.TypeID) {
	if id == types.NoTypeID {
		return
	}
	e.declBySym[sym] = id
}

// DeclaredType returns sym's cached representational type, if any.
func (e *Environment) DeclaredType(sym symbols.SymbolID) (types.TypeID, bool) {
	id, ok := e.declBySym[sym]
	return id, ok
}

// GetDeclaredType returns sym's representational type, computing it via the
// wired Queries on first request.
func (e *Environment) GetDeclaredType(sym symbols.SymbolID) types.TypeID {
	if id, ok := e.declBySym[sym]; ok {
		return id
	}
	if e.queries.GetDeclaredType == nil {
		return types.NoTypeID
	}
	id := e.queries.GetDeclaredType(sym)
	e.SetDeclaredType(sym, id)
	return id
}

// GetWidenedType widens a fresh-literal type via the wired Queries, or
// returns id unchanged if widening isn't wired (or id needs no widening).
func (e *Environment) GetWidenedType(id types.TypeID) types.TypeID {
	if e.queries.GetWidenedType == nil {
		return id
	}
	return e.queries.GetWidenedType(id)
}

// SetTypeParams caches the declared type-parameter TypeIDs for sym, shared
// with the TypeParameter leaves referenced inside its body.
func (e *Environment) SetTypeParams(sym symbols.SymbolID, params []types.TypeID) {
	e.typeParams[sym] = params
}

// TypeParams returns the cached type-parameter TypeIDs for sym.
func (e *Environment) TypeParams(sym symbols.SymbolID) ([]types.TypeID, bool) {
	p, ok := e.typeParams[sym]
	return p, ok
}

// Invalidate drops every cached entry whose resolved type or definition
// appears in typeIDs/defIDs; the incremental binder calls this after an
// edit so the next resolution pass recomputes the affected entries.
func (e *Environment) Invalidate(defIDs []defs.DefID, typeIDs []types.TypeID) {
	typeSet := make(map[types.TypeID]bool, len(typeIDs))
	for _, t := range typeIDs {
		typeSet[t] = true
	}
	for sym, id := range e.bySymbol {
		if typeSet[id] {
			delete(e.bySymbol, sym)
		}
	}
	for sym, id := range e.declBySym {
		if typeSet[id] {
			delete(e.declBySym, sym)
		}
	}
	// DefIDs have no per-Environment cache of their own today (the
	// Definition Store they name is session-wide and append-only), but a
	// future per-file declared-type cache keyed by DefID
	// would invalidate here too; accept the parameter now so that interface
	// doesn't need to change when one is added.
	_ = defIDs
}

// OrderSymbols sorts syms so type-defining symbols (classes, interfaces,
// type aliases, enums, namespaces) come before value symbols: a type
// parameter referenced by a later variable's declared type must already be
// registered. Ties break by SymbolID for a deterministic, reproducible
// order.
func OrderSymbols(syms []*symbols.Symbol) []*symbols.Symbol {
	out := make([]*symbols.Symbol, len(syms))
	copy(out, syms)
	sort.SliceStable(out, func(i, j int) bool {
		ti, tj := isTypeDefining(out[i]), isTypeDefining(out[j])
		if ti != tj {
			return ti
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func isTypeDefining(s *symbols.Symbol) bool {
	const typeDefiningMask = symbols.FlagClass | symbols.FlagInterface | symbols.FlagTypeAlias |
		symbols.FlagEnum | symbols.FlagEnumConst | symbols.FlagNamespaceModule
	return s.Flags.Any(typeDefiningMask)
}
