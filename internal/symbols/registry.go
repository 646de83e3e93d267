package symbols

import "surgetype/internal/source"

// Registry owns every Symbol and File binder record across a checking
// session. The resolver and export router both consult it, but neither
// owns its storage.
type Registry struct {
	symbols []*Symbol // 1-based; index 0 unused so SymbolID zero value is invalid
	files   map[ModuleID]*File
	byPath  map[string]ModuleID
}

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		symbols: make([]*Symbol, 1),
		files:   make(map[ModuleID]*File),
		byPath:  make(map[string]ModuleID),
	}
}

// NewModule registers a module/file under path and returns its ModuleID and
// fresh binder record. Calling NewModule twice for the same path is a
// caller error; sessions re-check by reusing the existing ModuleID.
func (r *Registry) NewModule(path string) (ModuleID, *File) {
	id := ModuleID(len(r.files) + 1)
	f := NewFile(id)
	r.files[id] = f
	r.byPath[path] = id
	return id, f
}

// ModuleByPath returns the ModuleID registered for path, if any.
func (r *Registry) ModuleByPath(path string) (ModuleID, bool) {
	id, ok := r.byPath[path]
	return id, ok
}

// PathOf inverts ModuleByPath.
func (r *Registry) PathOf(id ModuleID) (string, bool) {
	for path, got := range r.byPath {
		if got == id {
			return path, true
		}
	}
	return "", false
}

// Paths returns every registered module path, unordered.
func (r *Registry) Paths() []string {
	out := make([]string, 0, len(r.byPath))
	for path := range r.byPath {
		out = append(out, path)
	}
	return out
}

// File returns the binder record for id.
func (r *Registry) File(id ModuleID) (*File, bool) {
	f, ok := r.files[id]
	return f, ok
}

// NewSymbol allocates a fresh symbol and returns its SymbolID.
func (r *Registry) NewSymbol(name source.StringID, flags Flags) *Symbol {
	id := SymbolID(len(r.symbols))
	sym := NewSymbol(id, name, flags)
	r.symbols = append(r.symbols, sym)
	return sym
}

// Symbol resolves a SymbolID to its record.
func (r *Registry) Symbol(id SymbolID) (*Symbol, bool) {
	if !id.IsValid() || int(id) >= len(r.symbols) {
		return nil, false
	}
	return r.symbols[id], true
}

// ConflictKind classifies why DeclareLocal refused to merge two
// declarations of the same name.
type ConflictKind uint8

const (
	ConflictNone ConflictKind = iota
	ConflictValue
	ConflictType
)

// DeclareLocal binds name in file's Locals table with declFlags, merging
// into an existing symbol of the same name when compatible. It returns the
// resident symbol and a ConflictKind describing any namespace collision the
// caller (internal/resolver's binding pass) should report as a
// redeclaration diagnostic; on conflict the new declaration is still
// recorded (its Decl is appended) so later error recovery can still see it.
func (r *Registry) DeclareLocal(file *File, name source.StringID, declFlags Flags, decl Declaration) (*Symbol, ConflictKind) {
	existing, merged := file.Locals.Lookup(name)
	if !merged {
		sym := r.NewSymbol(name, declFlags)
		sym.Declarations = append(sym.Declarations, decl)
		sym.ValueDeclaration = decl.Decl
		sym.Origin = file.ID
		file.Locals.Declare(name, sym, declFlags, decl)
		return sym, ConflictNone
	}

	conflict := ConflictNone
	switch {
	case declFlags.IsBlockScopedValue() && existing.Flags.ExcludesValue():
		conflict = ConflictValue
	case declFlags.Any(typeNamespace) && existing.Flags.ExcludesType():
		conflict = ConflictType
	}
	existing.Merge(declFlags, decl)
	if decl.Decl.IsValid() {
		existing.ValueDeclaration = decl.Decl
	}
	return existing, conflict
}
