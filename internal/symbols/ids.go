// Package symbols implements the binder's symbol tables: the tables a
// file's declarations bind into, independent of the type-checking core
// (internal/resolver) that consumes them.
package symbols

// SymbolID identifies a symbol inside one file's binder table. Symbols
// merged across files (declaration merging of a class/interface/namespace,
// or a re-exported name) share one SymbolID per file but resolve to the
// same DefID (internal/defs) through the Symbol Resolver.
type SymbolID uint32

// NoSymbolID marks the absence of a symbol reference.
const NoSymbolID SymbolID = 0

// IsValid reports whether the SymbolID refers to an allocated symbol.
func (id SymbolID) IsValid() bool { return id != NoSymbolID }

// ModuleID identifies one checked source file / module within a session.
type ModuleID uint32

// NoModuleID marks the absence of a module reference.
const NoModuleID ModuleID = 0

// IsValid reports whether the ModuleID refers to a registered module.
func (id ModuleID) IsValid() bool { return id != NoModuleID }
