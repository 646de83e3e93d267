package ast

import (
	"surgetype/internal/source"
	"surgetype/internal/types"
)

// DeclID identifies a top-level (or nested) type-relevant declaration: a
// class, interface, type alias, enum, or namespace. Binder symbols
// (internal/symbols) carry a slice of DeclIDs so the resolver can walk every
// merged declaration of one symbol.
type DeclID uint32

// NoDeclID marks the absence of a declaration reference.
const NoDeclID DeclID = 0

// IsValid reports whether the DeclID refers to an allocated declaration.
func (id DeclID) IsValid() bool { return id != NoDeclID }

// DeclKind classifies the shape of a Decl.
type DeclKind uint8

const (
	DeclInvalid DeclKind = iota
	DeclClass
	DeclInterface
	DeclTypeAlias
	DeclEnum
	DeclNamespace
	// DeclVariable covers `let`/`const`/`var` declarations, whose type is
	// the declared/inferred type of the value rather than a lowered type
	// node.
	DeclVariable
	DeclFunction
)

// HeritageKind distinguishes `extends` from `implements` on a class, or the
// (possibly multiple) `extends` clauses on an interface.
type HeritageKind uint8

const (
	HeritageExtends HeritageKind = iota
	HeritageImplements
)

// HeritageClause is one `extends Base(args)` / `implements I` clause.
type HeritageClause struct {
	Kind HeritageKind
	// Expr names the base/interface; for classes `extends Base<Args>` this
	// is a reference type expression (possibly generic), not a call —
	// construct-signature argument types come from the resolved
	// constructor, not from the heritage clause itself.
	Expr TypeExprID
	Span source.Span
}

// MemberKind classifies one member of a class or interface body.
type MemberKind uint8

const (
	MemberInvalid MemberKind = iota
	MemberProperty
	MemberMethod
	MemberAccessorGet
	MemberAccessorSet
	MemberIndexSignature
	MemberCallSignature
	MemberConstructSignature
	MemberConstructor
)

// MemberSyntax describes one member of a class or interface declaration.
type MemberSyntax struct {
	Kind     MemberKind
	Name     source.StringID
	Type     TypeExprID // property type / method signature (as a function type node)
	Optional bool
	Readonly bool
	Static   bool
	// NumberIndex distinguishes `[key: number]` from `[key: string]` when
	// Kind is MemberIndexSignature.
	NumberIndex bool
	Visibility  types.Visibility
	Span        source.Span
}

// ClassDecl is one `class C<T...> extends Base implements I { ... }`
// declaration.
type ClassDecl struct {
	Name          source.StringID
	TypeParams    []TypeExprID // KindTypeParameter-producing param declarations, as reference nodes naming constraint/default
	TypeParamSpan source.Span
	Heritage      []HeritageClause
	Members       []MemberSyntax
	Span          source.Span
}

// InterfaceDecl is one `interface I<T...> extends B1, B2 { ... }`
// declaration. Multiple InterfaceDecls may share one binder symbol
// (declaration merging); the resolver's interface-merge algorithm
// (internal/resolver) walks all of them.
type InterfaceDecl struct {
	Name          source.StringID
	TypeParams    []TypeExprID
	TypeParamSpan source.Span
	Heritage      []HeritageClause
	Members       []MemberSyntax
	Span          source.Span
}

// TypeAliasDecl is `type Name<T...> = Aliased`.
type TypeAliasDecl struct {
	Name       source.StringID
	TypeParams []TypeExprID
	Aliased    TypeExprID
	Span       source.Span
}

// EnumMemberSyntax is one `Name = Value` (or bare `Name`) inside an enum.
type EnumMemberSyntax struct {
	Name source.StringID
	// Value is the syntactic initializer, if any; absent for auto-numbered
	// numeric members.
	Value    TypeExprID
	HasValue bool
	Span     source.Span
}

// EnumDecl is one `enum Name { ... }` declaration.
type EnumDecl struct {
	Name    source.StringID
	Members []EnumMemberSyntax
	IsConst bool
	Span    source.Span
}

// NamespaceDecl is one `namespace N { ... }` declaration, whose body exports
// are modeled as ordinary child declarations reachable through the binder's
// file_locals-equivalent scoping rather than inline here.
type NamespaceDecl struct {
	Name source.StringID
	Span source.Span
}

// VariableDecl is one `let`/`const`/`var` declaration with an explicit type
// annotation (inference from initializers happens outside the core).
type VariableDecl struct {
	Name source.StringID
	Type TypeExprID
	Span source.Span
}

// FunctionDecl is one `function f(...): R` declaration; Sig is a
// TypeExprFunction node carrying the full signature.
type FunctionDecl struct {
	Name source.StringID
	Sig  TypeExprID
	Span source.Span
}

// Decls is the per-file arena of type-relevant declarations.
type Decls struct {
	classes     *Arena[ClassDecl]
	interfaces  *Arena[InterfaceDecl]
	typeAliases *Arena[TypeAliasDecl]
	enums       *Arena[EnumDecl]
	namespaces  *Arena[NamespaceDecl]
	variables   *Arena[VariableDecl]
	functions   *Arena[FunctionDecl]
}

// NewDecls constructs an empty declaration arena set.
func NewDecls() *Decls {
	return &Decls{
		classes:     NewArena[ClassDecl](8),
		interfaces:  NewArena[InterfaceDecl](8),
		typeAliases: NewArena[TypeAliasDecl](8),
		enums:       NewArena[EnumDecl](4),
		namespaces:  NewArena[NamespaceDecl](4),
		variables:   NewArena[VariableDecl](16),
		functions:   NewArena[FunctionDecl](16),
	}
}

// declRef packs a DeclKind and an arena-local index into one DeclID so a
// symbol's Declarations slice can hold heterogeneous declaration kinds.
func declRef(kind DeclKind, localIndex uint32) DeclID {
	return DeclID(uint32(kind)<<28 | localIndex)
}

// DeclKindOf and localIndexOf invert declRef.
func DeclKindOf(id DeclID) DeclKind { return DeclKind(uint32(id) >> 28) }
func localIndexOf(id DeclID) uint32 { return uint32(id) & 0x0FFFFFFF }

// AddClass allocates a class declaration and returns its DeclID.
func (d *Decls) AddClass(decl ClassDecl) DeclID {
	return declRef(DeclClass, d.classes.Allocate(decl))
}

// Class returns the class declaration behind id, or nil.
func (d *Decls) Class(id DeclID) *ClassDecl {
	if DeclKindOf(id) != DeclClass {
		return nil
	}
	return d.classes.Get(localIndexOf(id))
}

// AddInterface allocates an interface declaration and returns its DeclID.
func (d *Decls) AddInterface(decl InterfaceDecl) DeclID {
	return declRef(DeclInterface, d.interfaces.Allocate(decl))
}

// Interface returns the interface declaration behind id, or nil.
func (d *Decls) Interface(id DeclID) *InterfaceDecl {
	if DeclKindOf(id) != DeclInterface {
		return nil
	}
	return d.interfaces.Get(localIndexOf(id))
}

// AddTypeAlias allocates a type-alias declaration and returns its DeclID.
func (d *Decls) AddTypeAlias(decl TypeAliasDecl) DeclID {
	return declRef(DeclTypeAlias, d.typeAliases.Allocate(decl))
}

// TypeAlias returns the type-alias declaration behind id, or nil.
func (d *Decls) TypeAlias(id DeclID) *TypeAliasDecl {
	if DeclKindOf(id) != DeclTypeAlias {
		return nil
	}
	return d.typeAliases.Get(localIndexOf(id))
}

// AddEnum allocates an enum declaration and returns its DeclID.
func (d *Decls) AddEnum(decl EnumDecl) DeclID {
	return declRef(DeclEnum, d.enums.Allocate(decl))
}

// Enum returns the enum declaration behind id, or nil.
func (d *Decls) Enum(id DeclID) *EnumDecl {
	if DeclKindOf(id) != DeclEnum {
		return nil
	}
	return d.enums.Get(localIndexOf(id))
}

// AddVariable allocates a variable declaration and returns its DeclID.
func (d *Decls) AddVariable(decl VariableDecl) DeclID {
	return declRef(DeclVariable, d.variables.Allocate(decl))
}

// Variable returns the variable declaration behind id, or nil.
func (d *Decls) Variable(id DeclID) *VariableDecl {
	if DeclKindOf(id) != DeclVariable {
		return nil
	}
	return d.variables.Get(localIndexOf(id))
}

// AddFunction allocates a function declaration and returns its DeclID.
func (d *Decls) AddFunction(decl FunctionDecl) DeclID {
	return declRef(DeclFunction, d.functions.Allocate(decl))
}

// Function returns the function declaration behind id, or nil.
func (d *Decls) Function(id DeclID) *FunctionDecl {
	if DeclKindOf(id) != DeclFunction {
		return nil
	}
	return d.functions.Get(localIndexOf(id))
}

// AddNamespace allocates a namespace declaration and returns its DeclID.
func (d *Decls) AddNamespace(decl NamespaceDecl) DeclID {
	return declRef(DeclNamespace, d.namespaces.Allocate(decl))
}

// Namespace returns the namespace declaration behind id, or nil.
func (d *Decls) Namespace(id DeclID) *NamespaceDecl {
	if DeclKindOf(id) != DeclNamespace {
		return nil
	}
	return d.namespaces.Get(localIndexOf(id))
}
