// Package types implements the type interner: hash-consing of structural
// type descriptors to stable TypeIDs, plus the side tables that back the
// larger structural shapes (objects, callables, unions, ...).
package types

import (
	"fmt"

	"fortio.org/safecast"

	"surgetype/internal/source"
)

// TypeID is an opaque handle into the interner; it is the canonical identity
// of a type. Two TypeIDs are equal iff the shapes they denote are
// structurally equal after normalization.
type TypeID uint32

// NoTypeID marks the absence of a type.
const NoTypeID TypeID = 0

// Atom is an interned identifier string; equality is integer equality.
type Atom = source.StringID

// NoAtom marks the absence of an atom.
const NoAtom = source.NoStringID

// Kind enumerates the structural variants a Type can take.
type Kind uint8

const (
	KindInvalid Kind = iota

	// Sentinels, reserved at interner construction.
	KindAny
	KindUnknown
	KindNever
	KindError
	KindVoid
	KindNull
	KindUndefined
	KindString
	KindNumber
	KindBoolean
	KindBigInt
	KindSymbolPrim
	KindObjectKeyword // the bare `object` keyword type, distinct from KindObject shapes

	KindLiteral
	KindUnion
	KindIntersection
	KindArray
	KindTuple
	KindObject          // ObjectShape without index signatures
	KindObjectWithIndex // ObjectShape that carries string/number/symbol index signatures
	KindCallable
	KindFunction
	KindApplication
	KindLazy
	KindTypeParameter
	KindEnum
	KindIndexAccess
	KindKeyOf
	KindReadonly
	KindMapped
	KindConditional
	KindTemplateLiteral
	KindTypeQuery
)

func (k Kind) String() string {
	switch k {
	case KindAny:
		return "any"
	case KindUnknown:
		return "unknown"
	case KindNever:
		return "never"
	case KindError:
		return "error"
	case KindVoid:
		return "void"
	case KindNull:
		return "null"
	case KindUndefined:
		return "undefined"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBoolean:
		return "boolean"
	case KindBigInt:
		return "bigint"
	case KindSymbolPrim:
		return "symbol"
	case KindObjectKeyword:
		return "object"
	case KindLiteral:
		return "literal"
	case KindUnion:
		return "union"
	case KindIntersection:
		return "intersection"
	case KindArray:
		return "array"
	case KindTuple:
		return "tuple"
	case KindObject:
		return "object-shape"
	case KindObjectWithIndex:
		return "object-shape-indexed"
	case KindCallable:
		return "callable"
	case KindFunction:
		return "function"
	case KindApplication:
		return "application"
	case KindLazy:
		return "lazy"
	case KindTypeParameter:
		return "type-parameter"
	case KindEnum:
		return "enum"
	case KindIndexAccess:
		return "index-access"
	case KindKeyOf:
		return "keyof"
	case KindReadonly:
		return "readonly"
	case KindMapped:
		return "mapped"
	case KindConditional:
		return "conditional"
	case KindTemplateLiteral:
		return "template-literal"
	case KindTypeQuery:
		return "typeof"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Type is the compact descriptor stored per TypeID. Elem/Idx hold the
// operands that fit directly (array element, keyof/readonly inner type,
// indexed-access object/index, application base); Payload indexes into a
// kind-specific side table for shapes whose content doesn't fit two TypeIDs
// (unions, objects, callables, ...), or carries a raw scalar (the DefId for
// KindLazy, the symbol-reference id for KindTypeQuery).
type Type struct {
	Kind    Kind
	Elem    TypeID
	Idx     TypeID
	Payload uint32
}

// Sentinels holds the TypeIDs reserved at interner construction time.
type Sentinels struct {
	Any          TypeID
	Unknown      TypeID
	Never        TypeID
	Error        TypeID
	Void         TypeID
	Null         TypeID
	Undefined    TypeID
	String       TypeID
	Number       TypeID
	Boolean      TypeID
	BigInt       TypeID
	Symbol       TypeID
	Object       TypeID
	BooleanTrue  TypeID
	BooleanFalse TypeID
	PromiseBase  TypeID
}

// Interner hash-conses type descriptors into stable TypeIDs and owns every
// side table referenced by a Payload field. It lives for the whole checking
// session (see internal/session); all buffers are append-only and shared
// once interned.
type Interner struct {
	Strings *source.Interner

	types []Type
	index map[Type]TypeID

	sentinels Sentinels

	literals  []LiteralValue
	literalIx map[literalKey]TypeID

	typeLists []typeListInfo
	unionIx   map[string]TypeID
	interIx   map[string]TypeID

	tuples  []TupleInfo
	tupleIx map[string]TypeID

	objects  []ObjectShape
	objectIx map[string]TypeID

	callables []CallableShape
	functions []FunctionShape

	applications  []ApplicationInfo
	applicationIx map[string]TypeID

	params []TypeParamInfo

	enumMembers []EnumMemberInfo
	enumIx      map[[2]uint32]TypeID

	mapped       []MappedType
	conditionals []ConditionalType
	templates    []TemplateLiteralInfo
	templateIx   map[string]TypeID
}

// NewInterner constructs an interner with its atom table and reserved
// sentinel TypeIDs already populated.
func NewInterner(strings *source.Interner) *Interner {
	if strings == nil {
		strings = source.NewInterner()
	}
	in := &Interner{
		Strings:       strings,
		index:         make(map[Type]TypeID, 64),
		literalIx:     make(map[literalKey]TypeID, 64),
		unionIx:       make(map[string]TypeID, 64),
		interIx:       make(map[string]TypeID, 32),
		tupleIx:       make(map[string]TypeID, 32),
		objectIx:      make(map[string]TypeID, 64),
		applicationIx: make(map[string]TypeID, 64),
		enumIx:        make(map[[2]uint32]TypeID, 16),
		templateIx:    make(map[string]TypeID, 16),
	}
	// Reserve slot 0 for every side table so a zero Payload is never a valid index.
	in.literals = append(in.literals, LiteralValue{})
	in.typeLists = append(in.typeLists, typeListInfo{})
	in.tuples = append(in.tuples, TupleInfo{})
	in.objects = append(in.objects, ObjectShape{})
	in.callables = append(in.callables, CallableShape{})
	in.functions = append(in.functions, FunctionShape{})
	in.applications = append(in.applications, ApplicationInfo{})
	in.params = append(in.params, TypeParamInfo{})
	in.enumMembers = append(in.enumMembers, EnumMemberInfo{})
	in.mapped = append(in.mapped, MappedType{})
	in.conditionals = append(in.conditionals, ConditionalType{})
	in.templates = append(in.templates, TemplateLiteralInfo{})

	s := &in.sentinels
	s.Any = in.intern(Type{Kind: KindAny})
	s.Unknown = in.intern(Type{Kind: KindUnknown})
	s.Never = in.intern(Type{Kind: KindNever})
	s.Error = in.intern(Type{Kind: KindError})
	s.Void = in.intern(Type{Kind: KindVoid})
	s.Null = in.intern(Type{Kind: KindNull})
	s.Undefined = in.intern(Type{Kind: KindUndefined})
	s.String = in.intern(Type{Kind: KindString})
	s.Number = in.intern(Type{Kind: KindNumber})
	s.Boolean = in.intern(Type{Kind: KindBoolean})
	s.BigInt = in.intern(Type{Kind: KindBigInt})
	s.Symbol = in.intern(Type{Kind: KindSymbolPrim})
	s.Object = in.intern(Type{Kind: KindObjectKeyword})
	s.BooleanTrue = in.Literal(LiteralValue{Kind: LiteralBoolean, Bool: true})
	s.BooleanFalse = in.Literal(LiteralValue{Kind: LiteralBoolean, Bool: false})
	s.PromiseBase = in.RegisterOpaqueNominal()
	return in
}

// Sentinels returns the reserved TypeIDs for this session.
func (in *Interner) Sentinels() Sentinels { return in.sentinels }

// intern is the scalar fast path: Type values with no side-table content
// compare structurally as plain Go values, so a single map handles
// canonicalization.
func (in *Interner) intern(t Type) TypeID {
	if id, ok := in.index[t]; ok {
		return id
	}
	return in.internRaw(t)
}

func (in *Interner) internRaw(t Type) TypeID {
	slot, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("type table overflow: %w", err))
	}
	id := TypeID(slot)
	in.types = append(in.types, t)
	in.index[t] = id
	return id
}

// Lookup returns the descriptor for a TypeID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// MustLookup panics when id is invalid. Reserved for call sites that have
// already validated id came from this interner.
func (in *Interner) MustLookup(id TypeID) Type {
	t, ok := in.Lookup(id)
	if !ok {
		panic("types: invalid TypeID")
	}
	return t
}

// Array interns Array(elem).
func (in *Interner) Array(elem TypeID) TypeID {
	return in.intern(Type{Kind: KindArray, Elem: elem})
}

// ArrayElem returns the element type of an array TypeID.
func (in *Interner) ArrayElem(id TypeID) (TypeID, bool) {
	t, ok := in.Lookup(id)
	if !ok || t.Kind != KindArray {
		return NoTypeID, false
	}
	return t.Elem, true
}

// KeyOfRaw interns an unreduced KeyOf(inner) node; internal/metatypes reduces
// it to structural form when inner is known.
func (in *Interner) KeyOfRaw(inner TypeID) TypeID {
	return in.intern(Type{Kind: KindKeyOf, Elem: inner})
}

// Readonly interns Readonly(inner).
func (in *Interner) Readonly(inner TypeID) TypeID {
	return in.intern(Type{Kind: KindReadonly, Elem: inner})
}

// ReadonlyInner returns the wrapped type of a Readonly TypeID.
func (in *Interner) ReadonlyInner(id TypeID) (TypeID, bool) {
	t, ok := in.Lookup(id)
	if !ok || t.Kind != KindReadonly {
		return NoTypeID, false
	}
	return t.Elem, true
}

// IndexAccessRaw interns an unreduced T[K] node.
func (in *Interner) IndexAccessRaw(obj, idx TypeID) TypeID {
	return in.intern(Type{Kind: KindIndexAccess, Elem: obj, Idx: idx})
}

// IndexAccessParts returns (obj, idx) for an IndexAccess TypeID.
func (in *Interner) IndexAccessParts(id TypeID) (obj, idx TypeID, ok bool) {
	t, lookupOK := in.Lookup(id)
	if !lookupOK || t.Kind != KindIndexAccess {
		return NoTypeID, NoTypeID, false
	}
	return t.Elem, t.Idx, true
}

// TypeQuery interns `typeof x` given a binder-supplied symbol reference id.
func (in *Interner) TypeQuery(symbolRef uint32) TypeID {
	return in.intern(Type{Kind: KindTypeQuery, Payload: symbolRef})
}

// TypeQuerySymbol returns the symbol reference id for a TypeQuery TypeID.
func (in *Interner) TypeQuerySymbol(id TypeID) (uint32, bool) {
	t, ok := in.Lookup(id)
	if !ok || t.Kind != KindTypeQuery {
		return 0, false
	}
	return t.Payload, true
}

// RegisterOpaqueNominal allocates a fresh, uninterpreted nominal TypeID used
// for built-ins the core treats opaquely (e.g. the Promise<T> base symbol
// substituted into Application(PROMISE_BASE, [T])).
func (in *Interner) RegisterOpaqueNominal() TypeID {
	return in.internRaw(Type{Kind: KindObjectKeyword, Payload: ^uint32(0)})
}

// IsError reports whether id is the ERROR sentinel.
func (in *Interner) IsError(id TypeID) bool { return id == in.sentinels.Error }

// IsAny reports whether id is the ANY sentinel.
func (in *Interner) IsAny(id TypeID) bool { return id == in.sentinels.Any }
