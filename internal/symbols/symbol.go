package symbols

import (
	"surgetype/internal/ast"
	"surgetype/internal/source"
)

// Declaration records one syntactic contribution to a (possibly merged)
// symbol: a class, interface, type alias, enum, namespace, variable, or
// function declaration site.
type Declaration struct {
	Decl ast.DeclID
	Span source.Span
	// File distinguishes declarations contributed from different files when
	// a symbol is merged across a multi-file namespace/interface.
	File source.FileID
}

// Symbol is the binder's record of one named entity in the
// ECMAScript/TypeScript binder model: flags, the set of
// syntactic declarations that contributed to it (merged when more than
// one), which declaration is authoritative for value typing, and (for
// modules/namespaces/classes) the nested member and export tables.
type Symbol struct {
	ID   SymbolID
	Name source.StringID
	Flags

	Declarations []Declaration
	// ValueDeclaration is the single declaration whose type determines the
	// symbol's value type: the last non-ambient declaration among
	// Declarations, per the same rule a binder uses when a `function`/`class`
	// is later reopened.
	ValueDeclaration ast.DeclID

	// Members holds nested members for CLASS/INTERFACE/ENUM symbols (its own
	// instance-side properties and methods) and for VALUE_MODULE/
	// NAMESPACE_MODULE symbols (bindings declared directly inside the
	// namespace body).
	Members *Table

	// Exports holds the module_exports equivalent for a symbol that denotes
	// a file-level module or namespace: the externally-visible names, as
	// opposed to Members which includes non-exported locals too.
	Exports *Table

	// ImportModule and ImportName are populated for FlagAlias symbols
	// created by `import { ImportName as Name } from ImportModule` or
	// `export { ImportName as Name } from ImportModule`; ImportModule is
	// empty for a local re-export (`export { X as Y }` with no `from`).
	ImportModule source.StringID
	ImportName   source.StringID
	HasFrom      bool

	// IsTypeOnly marks a FlagAlias symbol introduced by `import type` /
	// `export type`, which the checker must never resolve to a value.
	IsTypeOnly bool

	// Origin is the module the symbol was declared in, recorded so the
	// export router can resolve local re-exports (`export { X as Y }` with
	// no `from`) against the right file's locals.
	Origin ModuleID
}

// NewSymbol constructs a fresh, unmerged symbol.
func NewSymbol(id SymbolID, name source.StringID, flags Flags) *Symbol {
	return &Symbol{ID: id, Name: name, Flags: flags}
}

// Merge folds another declaration of the same name into s, OR-ing flags and
// appending the declaration. Callers (internal/resolver's binder-facing
// helpers) are responsible for rejecting merges Flags.ExcludesValue /
// ExcludesType flags that.
func (s *Symbol) Merge(flags Flags, decl Declaration) {
	s.Flags |= flags
	s.Declarations = append(s.Declarations, decl)
}
