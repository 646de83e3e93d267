package types

import (
	"strconv"
	"strings"
)

// ParamInfo describes a single function parameter.
type ParamInfo struct {
	Name     Atom
	Type     TypeID
	Optional bool
	Rest     bool
}

// TypePredicateInfo describes a `x is T` / `asserts x is T` return
// annotation on a signature.
type TypePredicateInfo struct {
	ParamName Atom
	Type      TypeID
	Asserts   bool
}

// Signature is a single call or construct signature.
type Signature struct {
	TypeParams    []TypeID
	Params        []ParamInfo
	ThisType      TypeID
	ReturnType    TypeID
	TypePredicate *TypePredicateInfo
	IsMethod      bool
}

// CallableShape is the structural payload for KindCallable: an overload set
// of call and construct signatures, plus properties/index signatures hung
// off the callable (e.g. a class's static side).
type CallableShape struct {
	CallSignatures      []Signature
	ConstructSignatures []Signature
	Properties          []PropertyInfo
	StringIndex         TypeID
	NumberIndex         TypeID
}

// FunctionShape is the structural payload for KindFunction: exactly one
// signature, used for plain function values (not overloaded, not a class).
type FunctionShape struct {
	Signature     Signature
	IsConstructor bool
	IsMethod      bool
}

func encodeSignature(b *strings.Builder, s Signature) {
	for _, tp := range s.TypeParams {
		b.WriteString(strconv.FormatUint(uint64(tp), 10))
		b.WriteByte(',')
	}
	b.WriteByte('(')
	for i, p := range s.Params {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatUint(uint64(p.Type), 10))
		if p.Optional {
			b.WriteByte('?')
		}
		if p.Rest {
			b.WriteByte('*')
		}
	}
	b.WriteByte(')')
	b.WriteString(strconv.FormatUint(uint64(s.ThisType), 10))
	b.WriteByte('>')
	b.WriteString(strconv.FormatUint(uint64(s.ReturnType), 10))
	if s.TypePredicate != nil {
		b.WriteByte('#')
		b.WriteString(strconv.FormatUint(uint64(s.TypePredicate.Type), 10))
		if s.TypePredicate.Asserts {
			b.WriteByte('!')
		}
	}
	if s.IsMethod {
		b.WriteByte('M')
	}
}

// Callable interns an overload-set callable shape. Distinct call sites for
// the same overload set naturally collide because the shape is a pure
// function of its signatures; the shape is not re-sorted (overload order is
// semantically significant, unlike object-property order).
func (in *Interner) Callable(shape CallableShape) TypeID {
	var b strings.Builder
	for _, s := range shape.CallSignatures {
		b.WriteByte('c')
		encodeSignature(&b, s)
	}
	for _, s := range shape.ConstructSignatures {
		b.WriteByte('n')
		encodeSignature(&b, s)
	}
	for _, p := range sortProperties(shape.Properties) {
		b.WriteByte('p')
		b.WriteString(strconv.FormatUint(uint64(p.Name), 10))
		b.WriteByte(':')
		b.WriteString(strconv.FormatUint(uint64(p.Type), 10))
	}
	key := b.String()
	// Callables are allocated per declaration site (classes, interface call
	// signatures); dedup only when the overload set is byte-identical.
	for id := TypeID(1); int(id) < len(in.types); id++ {
		if in.types[id].Kind != KindCallable {
			continue
		}
		if existing, ok := in.CallableShapeOf(id); ok {
			var eb strings.Builder
			for _, s := range existing.CallSignatures {
				eb.WriteByte('c')
				encodeSignature(&eb, s)
			}
			for _, s := range existing.ConstructSignatures {
				eb.WriteByte('n')
				encodeSignature(&eb, s)
			}
			for _, p := range sortProperties(existing.Properties) {
				eb.WriteByte('p')
				eb.WriteString(strconv.FormatUint(uint64(p.Name), 10))
				eb.WriteByte(':')
				eb.WriteString(strconv.FormatUint(uint64(p.Type), 10))
			}
			if eb.String() == key {
				return id
			}
		}
	}
	shape.Properties = sortProperties(shape.Properties)
	slot := uint32(len(in.callables))
	in.callables = append(in.callables, shape)
	return in.internRaw(Type{Kind: KindCallable, Payload: slot})
}

// CallableShapeOf returns the shape backing a callable TypeID.
func (in *Interner) CallableShapeOf(id TypeID) (*CallableShape, bool) {
	t, ok := in.Lookup(id)
	if !ok || t.Kind != KindCallable {
		return nil, false
	}
	if int(t.Payload) >= len(in.callables) {
		return nil, false
	}
	return &in.callables[t.Payload], true
}

// Function interns a single-signature function type.
func (in *Interner) Function(shape FunctionShape) TypeID {
	var b strings.Builder
	encodeSignature(&b, shape.Signature)
	if shape.IsConstructor {
		b.WriteByte('C')
	}
	if shape.IsMethod {
		b.WriteByte('M')
	}
	key := b.String()
	for id := TypeID(1); int(id) < len(in.types); id++ {
		if in.types[id].Kind != KindFunction {
			continue
		}
		if int(in.types[id].Payload) >= len(in.functions) {
			continue
		}
		existing := in.functions[in.types[id].Payload]
		var eb strings.Builder
		encodeSignature(&eb, existing.Signature)
		if existing.IsConstructor {
			eb.WriteByte('C')
		}
		if existing.IsMethod {
			eb.WriteByte('M')
		}
		if eb.String() == key {
			return id
		}
	}
	slot := uint32(len(in.functions))
	in.functions = append(in.functions, shape)
	return in.internRaw(Type{Kind: KindFunction, Payload: slot})
}

// FunctionShapeOf returns the shape backing a function TypeID.
func (in *Interner) FunctionShapeOf(id TypeID) (*FunctionShape, bool) {
	t, ok := in.Lookup(id)
	if !ok || t.Kind != KindFunction {
		return nil, false
	}
	if int(t.Payload) >= len(in.functions) {
		return nil, false
	}
	return &in.functions[t.Payload], true
}
