package types

import (
	"strconv"
	"strings"
)

// ModifierOp captures `+`/`-`/absent on a mapped type's `?`/`readonly`
// modifiers.
type ModifierOp uint8

const (
	ModifierNone ModifierOp = iota
	ModifierAdd
	ModifierRemove
)

// MappedType is the structural payload for KindMapped: `{ [K in C]: Tpl }`.
type MappedType struct {
	TypeParam        TypeID // the KindTypeParameter bound by `in`
	Constraint       TypeID // C
	Template         TypeID // Tpl, referencing TypeParam
	NameType         TypeID // `as` clause remapping, NoTypeID if absent
	OptionalModifier ModifierOp
	ReadonlyModifier ModifierOp
}

// Mapped interns a mapped-type node. Mapped types are allocated per
// declaration site (their identity is the declaration, not pure structural
// content), the same way TypeParameter and other declaration-bound shapes
// are allocated.
func (in *Interner) Mapped(m MappedType) TypeID {
	slot := uint32(len(in.mapped))
	in.mapped = append(in.mapped, m)
	return in.internRaw(Type{Kind: KindMapped, Payload: slot})
}

// MappedTypeOf returns the structural payload of a Mapped TypeID.
func (in *Interner) MappedTypeOf(id TypeID) (*MappedType, bool) {
	t, ok := in.Lookup(id)
	if !ok || t.Kind != KindMapped {
		return nil, false
	}
	if int(t.Payload) >= len(in.mapped) {
		return nil, false
	}
	return &in.mapped[t.Payload], true
}

// InferSlot names an `infer X` binding site inside a conditional's
// extends-clause; a conditional records how many such slots it declared so
// the reducer can build a substitution map after a successful match.
type InferSlot struct {
	Name Atom
	Var  TypeID // the KindTypeParameter standing in for the inferred variable
}

// ConditionalType is the structural payload for KindConditional:
// `T extends U ? X : Y`.
type ConditionalType struct {
	CheckType   TypeID
	ExtendsType TypeID
	TrueType    TypeID
	FalseType   TypeID
	Infers      []InferSlot
}

// Conditional interns a conditional-type node (declaration-bound, like
// Mapped).
func (in *Interner) Conditional(c ConditionalType) TypeID {
	slot := uint32(len(in.conditionals))
	in.conditionals = append(in.conditionals, c)
	return in.internRaw(Type{Kind: KindConditional, Payload: slot})
}

// ConditionalTypeOf returns the structural payload of a Conditional TypeID.
func (in *Interner) ConditionalTypeOf(id TypeID) (*ConditionalType, bool) {
	t, ok := in.Lookup(id)
	if !ok || t.Kind != KindConditional {
		return nil, false
	}
	if int(t.Payload) >= len(in.conditionals) {
		return nil, false
	}
	return &in.conditionals[t.Payload], true
}

// TemplateSpan is either a static string piece or an interpolated TypeID.
type TemplateSpan struct {
	Static Atom   // valid when Type == NoTypeID
	Type   TypeID // valid when non-zero; Static is ignored
}

// TemplateLiteralInfo stores the spans of a template literal type.
type TemplateLiteralInfo struct {
	Spans []TemplateSpan
}

// TemplateLiteral interns `${...}`-style template literal types, folding to
// a plain string literal when every span is static.
func (in *Interner) TemplateLiteral(spans []TemplateSpan) TypeID {
	allStatic := true
	var joined strings.Builder
	for _, s := range spans {
		if s.Type != NoTypeID {
			allStatic = false
			break
		}
		joined.WriteString(in.Strings.MustLookup(s.Static))
	}
	if allStatic {
		return in.LiteralString(in.Strings.Intern(joined.String()))
	}
	var b strings.Builder
	for i, s := range spans {
		if i > 0 {
			b.WriteByte('|')
		}
		if s.Type != NoTypeID {
			b.WriteByte('$')
			b.WriteString(strconv.FormatUint(uint64(s.Type), 10))
		} else {
			b.WriteByte('"')
			b.WriteString(strconv.FormatUint(uint64(s.Static), 10))
		}
	}
	key := b.String()
	if id, ok := in.templateIx[key]; ok {
		return id
	}
	slot := uint32(len(in.templates))
	in.templates = append(in.templates, TemplateLiteralInfo{Spans: append([]TemplateSpan(nil), spans...)})
	id := in.internRaw(Type{Kind: KindTemplateLiteral, Payload: slot})
	in.templateIx[key] = id
	return id
}

// TemplateLiteralInfoOf returns the spans backing a template-literal TypeID.
func (in *Interner) TemplateLiteralInfoOf(id TypeID) (*TemplateLiteralInfo, bool) {
	t, ok := in.Lookup(id)
	if !ok || t.Kind != KindTemplateLiteral {
		return nil, false
	}
	if int(t.Payload) >= len(in.templates) {
		return nil, false
	}
	return &in.templates[t.Payload], true
}
