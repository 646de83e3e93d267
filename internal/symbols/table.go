package symbols

import "surgetype/internal/source"

// Table is a name -> Symbol map scoped to one binding region: a file's
// locals, a module's exports, a namespace's members, or a class's instance
// members. Declaration merging happens by looking a name up before
// inserting: a second `interface Foo` for an already-bound `Foo` merges into
// the existing Symbol rather than replacing it.
type Table struct {
	byName map[source.StringID]*Symbol
	order  []source.StringID // insertion order, for deterministic iteration/diagnostics
}

// NewTable constructs an empty symbol table.
func NewTable() *Table {
	return &Table{byName: make(map[source.StringID]*Symbol)}
}

// Lookup returns the symbol bound to name, if any.
func (t *Table) Lookup(name source.StringID) (*Symbol, bool) {
	sym, ok := t.byName[name]
	return sym, ok
}

// Declare inserts sym under name, or merges into the existing binding.
// Returns the resident symbol (sym itself on first declare, the prior
// binding on merge) and whether a merge occurred.
func (t *Table) Declare(name source.StringID, sym *Symbol, declFlags Flags, decl Declaration) (*Symbol, bool) {
	if existing, ok := t.byName[name]; ok {
		existing.Merge(declFlags, decl)
		return existing, true
	}
	t.byName[name] = sym
	t.order = append(t.order, name)
	return sym, false
}

// Names returns the bound names in declaration order.
func (t *Table) Names() []source.StringID {
	out := make([]source.StringID, len(t.order))
	copy(out, t.order)
	return out
}

// Len reports the number of distinct bound names.
func (t *Table) Len() int { return len(t.byName) }

// File is one checked source file's binder output: its own top-level
// locals, the subset of those locals its module exports, and (rare) global
// augmentations it contributes to the ambient global scope via
// `declare global { ... }`.
type File struct {
	ID ModuleID

	// Locals is every top-level binding visible within the file, exported
	// or not.
	Locals *Table

	// ModuleExports is the subset of Locals (plus re-exported names pulled
	// in from other files by internal/exports) this file exposes to
	// importers.
	ModuleExports *Table

	// GlobalAugmentations holds bindings a `declare global { ... }` block in
	// this file contributes to the single, file-independent global scope.
	GlobalAugmentations *Table

	// NodeSymbols maps an individual declaration site back to the symbol it
	// bound, so the checker can answer "what symbol does this identifier
	// node refer to" without a second name-resolution pass.
	NodeSymbols map[uint32]SymbolID

	// HasExportEquals records whether the file used `export = expr`, which
	// replaces the entire ModuleExports table with a single value/type
	// rather than contributing named exports.
	HasExportEquals bool
	ExportEqualsSym SymbolID

	// ExportStars records this file's `export * from '...'` (Alias zero)
	// and `export * as ns from '...'` (Alias set) clauses, in source order.
	ExportStars []StarExport
}

// StarExport is one wildcard re-export clause.
type StarExport struct {
	Specifier source.StringID
	Alias     source.StringID
}

// NewFile constructs an empty per-file binder record.
func NewFile(id ModuleID) *File {
	return &File{
		ID:                  id,
		Locals:              NewTable(),
		ModuleExports:       NewTable(),
		GlobalAugmentations: NewTable(),
		NodeSymbols:         make(map[uint32]SymbolID),
	}
}

// BindNode records that a declaration/reference node resolved to sym, so
// later lookups (e.g. "what is the type of this identifier") are O(1).
func (f *File) BindNode(node uint32, sym SymbolID) {
	f.NodeSymbols[node] = sym
}

// SymbolForNode returns the symbol a node was bound to, if any.
func (f *File) SymbolForNode(node uint32) (SymbolID, bool) {
	sym, ok := f.NodeSymbols[node]
	return sym, ok
}
