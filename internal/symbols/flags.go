package symbols

// Flags encode what kind of declaration(s) a symbol merges, one bit per
// declaration kind: a single symbol can
// carry more than one bit when declaration merging combines, e.g., a CLASS
// and a NAMESPACE_MODULE of the same name.
type Flags uint32

const (
	FlagNone Flags = 0

	FlagClass Flags = 1 << iota
	FlagInterface
	FlagTypeAlias
	FlagEnum
	FlagEnumConst
	FlagFunction
	FlagMethod
	FlagAccessor
	FlagProperty
	FlagValueModule     // a `namespace N { export const x = ... }` that also produces a runtime value
	FlagNamespaceModule // a `namespace N { ... }` that contributes only types/namespaces
	FlagAlias           // an `import { X }` / `export { X as Y }` re-binding
	FlagValue           // symbol denotes a value (variable, function, enum member, class-as-constructor)
	FlagType            // symbol denotes a type (interface, type alias, class-as-type, enum-as-type)
	FlagStatic
	FlagOptional
	FlagReadonly
	FlagTypeOnly // `import type` / `export type` — erased at the value level
	FlagConstructor
)

// valueNamespace/typeNamespace mirror the duplicate-declaration exclusion
// table a binder uses to decide whether merging two flag sets for the same
// name is legal or a redeclaration error: declaring a class named `X` and
// then a `let X` both claim the value namespace, so they conflict, but a
// class and an interface named `X` both claim the type namespace yet merge
// cleanly because classes contribute an instance type an interface can
// extend.
const (
	valueNamespace = FlagFunction | FlagValueModule | FlagValue | FlagEnum | FlagEnumConst
	typeNamespace  = FlagInterface | FlagTypeAlias | FlagEnum | FlagEnumConst | FlagType
)

// ExcludesValue reports whether a symbol already carrying f would conflict
// with a new declaration that claims the value namespace.
func (f Flags) ExcludesValue() bool { return f&valueNamespace != 0 && f&FlagClass == 0 }

// ExcludesType reports whether a symbol already carrying f would conflict
// with a new declaration that claims the type namespace, other than the
// class/interface/namespace merge cases, which never conflict.
func (f Flags) ExcludesType() bool {
	return f&typeNamespace != 0 && f&(FlagClass|FlagInterface|FlagNamespaceModule) == 0
}

// IsBlockScopedValue reports whether the symbol occupies the value
// namespace at all (as opposed to pure type-space symbols like interfaces
// and type aliases).
func (f Flags) IsBlockScopedValue() bool { return f&valueNamespace != 0 }

// Has reports whether all bits in mask are set.
func (f Flags) Has(mask Flags) bool { return f&mask == mask }

// Any reports whether any bit in mask is set.
func (f Flags) Any(mask Flags) bool { return f&mask != 0 }
