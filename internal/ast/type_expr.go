package ast

import "surgetype/internal/source"

// TypeExprID identifies a type-expression node in the TypeExprs arena. The
// core (internal/resolver's lowering helper) walks these nodes to produce
// TypeIDs; it never mutates them.
type TypeExprID uint32

// NoTypeExprID marks the absence of a type-expression reference.
const NoTypeExprID TypeExprID = 0

// IsValid reports whether the TypeExprID refers to an allocated node.
func (id TypeExprID) IsValid() bool { return id != NoTypeExprID }

// TypeExprKind enumerates the syntactic forms of a type expression: one
// per structural type form the checker models, plus the syntax-only forms
// (parenthesized, infer) that disappear during lowering.
type TypeExprKind uint8

const (
	TypeExprInvalid TypeExprKind = iota
	// TypeExprReference is a bare or generic name reference: `Name` or
	// `Name<Args>`.
	TypeExprReference
	TypeExprUnion
	TypeExprIntersection
	TypeExprArray
	TypeExprTuple
	// TypeExprObjectLiteral is an inline `{ ... }` shape (the same surface
	// an `interface` body uses).
	TypeExprObjectLiteral
	// TypeExprFunction is `(params) => Ret`.
	TypeExprFunction
	// TypeExprConstructor is `new (params) => Ret`.
	TypeExprConstructor
	TypeExprKeyOf
	// TypeExprIndexedAccess is `T[K]`.
	TypeExprIndexedAccess
	// TypeExprMapped is `{ [K in C]: Tpl }`.
	TypeExprMapped
	// TypeExprConditional is `T extends U ? X : Y`.
	TypeExprConditional
	// TypeExprInfer is `infer X` inside a conditional's extends-clause.
	TypeExprInfer
	TypeExprTemplateLiteral
	TypeExprLiteral
	// TypeExprTypeQuery is `typeof x`.
	TypeExprTypeQuery
	TypeExprReadonly
	// TypeExprParenthesized wraps another node purely for precedence; the
	// lowering helper unwraps it without allocating a TypeID.
	TypeExprParenthesized
	// TypeExprTypeParam is a type-parameter declaration site `T extends C = D`
	// in a class/interface/alias TypeParams list. Name is the parameter name,
	// Object its constraint, Index its default (both NoTypeExprID if absent).
	TypeExprTypeParam
)

// ParamSyntax describes one parameter of a function/constructor type node.
type ParamSyntax struct {
	Name     source.StringID
	Type     TypeExprID
	Optional bool
	Rest     bool
}

// PredicateSyntax is the `x is T` / `asserts x is T` return annotation on a
// function type node.
type PredicateSyntax struct {
	ParamName source.StringID
	Type      TypeExprID
	Asserts   bool
}

// PropertySyntax describes one member of an object-literal type node.
type PropertySyntax struct {
	Name        source.StringID
	Type        TypeExprID
	Optional    bool
	Readonly    bool
	IsMethod    bool
	StringIndex bool // StringIndex/NumberIndex mark `[key: string]`/`[key: number]` signatures
	NumberIndex bool
}

// ModifierSyntax captures a parsed `+`/`-`/absent on a mapped type's `?`/
// `readonly` modifier tokens.
type ModifierSyntax uint8

const (
	ModifierSyntaxNone ModifierSyntax = iota
	ModifierSyntaxAdd
	ModifierSyntaxRemove
)

// MappedSyntax is the payload for TypeExprMapped.
type MappedSyntax struct {
	ParamName        source.StringID
	Constraint       TypeExprID
	Template         TypeExprID
	NameType         TypeExprID // `as` clause remapping, NoTypeExprID if absent
	OptionalModifier ModifierSyntax
	ReadonlyModifier ModifierSyntax
}

// ConditionalSyntax is the payload for TypeExprConditional.
type ConditionalSyntax struct {
	CheckType   TypeExprID
	ExtendsType TypeExprID
	TrueType    TypeExprID
	FalseType   TypeExprID
}

// TemplateSpanSyntax is one piece of a template literal type node: either a
// static string segment or an interpolated type expression.
type TemplateSpanSyntax struct {
	Static source.StringID // valid when Type == NoTypeExprID
	Type   TypeExprID
}

// LiteralSyntaxKind classifies the literal payload of a TypeExprLiteral node.
type LiteralSyntaxKind uint8

const (
	LiteralSyntaxInvalid LiteralSyntaxKind = iota
	LiteralSyntaxString
	LiteralSyntaxNumber
	LiteralSyntaxBoolean
	LiteralSyntaxBigInt
)

// LiteralSyntax is the payload for TypeExprLiteral.
type LiteralSyntax struct {
	Kind      LiteralSyntaxKind
	Str       source.StringID
	NumBits   uint64
	Bool      bool
	BigIntNeg bool
	BigIntStr source.StringID
}

// TypeExpr is the syntax node the lowering helper walks. Exactly which
// fields are meaningful depends on Kind, in the same Kind-tagged
// flat-struct style as the declaration nodes.
type TypeExpr struct {
	span source.Span

	NodeKind TypeExprKind

	// TypeExprReference / TypeExprTypeQuery
	Name source.StringID
	Args []TypeExprID // generic type arguments

	// TypeExprUnion / TypeExprIntersection / TypeExprTuple
	Members []TypeExprID

	// TypeExprArray / TypeExprKeyOf / TypeExprReadonly / TypeExprParenthesized / TypeExprInfer
	Elem TypeExprID

	// TypeExprIndexedAccess
	Object TypeExprID
	Index  TypeExprID

	// TypeExprFunction / TypeExprConstructor
	TypeParams []source.StringID
	Params     []ParamSyntax
	Return     TypeExprID
	Predicate  *PredicateSyntax

	// TypeExprObjectLiteral
	Properties []PropertySyntax

	// TypeExprMapped
	Mapped *MappedSyntax

	// TypeExprConditional
	Conditional *ConditionalSyntax

	// TypeExprTemplateLiteral
	Spans []TemplateSpanSyntax

	// TypeExprLiteral
	Literal LiteralSyntax
}

// SourceSpan returns the source range of the node, for diagnostics.
func (t *TypeExpr) SourceSpan() source.Span { return t.span }

// TypeExprs is the arena of type-expression nodes for one file, indexed by
// TypeExprID, backed by the generic Arena[T].
type TypeExprs struct {
	arena *Arena[TypeExpr]
}

// NewTypeExprs constructs an empty type-expression arena.
func NewTypeExprs(capHint uint) *TypeExprs {
	return &TypeExprs{arena: NewArena[TypeExpr](capHint)}
}

// Allocate appends a type-expression node and returns its ID.
func (t *TypeExprs) Allocate(node TypeExpr, span source.Span) TypeExprID {
	node.span = span
	return TypeExprID(t.arena.Allocate(node))
}

// Get returns the node for id, or nil if id is invalid.
func (t *TypeExprs) Get(id TypeExprID) *TypeExpr {
	if !id.IsValid() {
		return nil
	}
	return t.arena.Get(uint32(id))
}
