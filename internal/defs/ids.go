package defs

// DefID identifies a declaration's resolved body/type-parameter record in
// the Store, independent of which SymbolID named it. Two merged declarations
// (e.g. an interface re-opened across files) share one DefID.
type DefID uint32

// NoDefID marks the absence of a definition reference.
const NoDefID DefID = 0

// IsValid reports whether the DefID refers to an allocated definition.
func (id DefID) IsValid() bool { return id != NoDefID }
