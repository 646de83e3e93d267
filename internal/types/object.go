package types

import (
	"sort"
	"strconv"
	"strings"
)

// Visibility classifies member accessibility (public/private/protected), as
// carried by class members.
type Visibility uint8

const (
	VisibilityPublic Visibility = iota
	VisibilityPrivate
	VisibilityProtected
)

// PropertyInfo describes one member of an object or callable shape.
type PropertyInfo struct {
	Name       Atom
	Type       TypeID
	WriteType  TypeID // distinct setter type; equals Type when read/write agree
	Optional   bool
	Readonly   bool
	IsMethod   bool
	Visibility Visibility
	ParentID   uint32 // DefId of the declaring class/interface, 0 if none
}

// ObjectShapeFlags are bit flags on ObjectShape.
type ObjectShapeFlags uint8

const (
	// ObjectFlagFreshLiteral marks an object literal for excess-property
	// checks; the flag is dropped when the type widens.
	ObjectFlagFreshLiteral ObjectShapeFlags = 1 << iota
)

// ObjectShape is the structural payload for KindObject/KindObjectWithIndex.
type ObjectShape struct {
	Flags       ObjectShapeFlags
	Properties  []PropertyInfo // sorted by Name for deterministic interning
	StringIndex TypeID
	NumberIndex TypeID
	SymbolIndex TypeID
}

func sortProperties(props []PropertyInfo) []PropertyInfo {
	out := append([]PropertyInfo(nil), props...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func encodeObjectShape(b *strings.Builder, shape ObjectShape) {
	b.WriteString(strconv.Itoa(int(shape.Flags)))
	for _, p := range shape.Properties {
		b.WriteByte(';')
		b.WriteString(strconv.FormatUint(uint64(p.Name), 10))
		b.WriteByte(':')
		b.WriteString(strconv.FormatUint(uint64(p.Type), 10))
		b.WriteByte(':')
		b.WriteString(strconv.FormatUint(uint64(p.WriteType), 10))
		if p.Optional {
			b.WriteByte('o')
		}
		if p.Readonly {
			b.WriteByte('r')
		}
		if p.IsMethod {
			b.WriteByte('m')
		}
		b.WriteByte(byte('0' + p.Visibility))
	}
	b.WriteByte('|')
	b.WriteString(strconv.FormatUint(uint64(shape.StringIndex), 10))
	b.WriteByte(',')
	b.WriteString(strconv.FormatUint(uint64(shape.NumberIndex), 10))
	b.WriteByte(',')
	b.WriteString(strconv.FormatUint(uint64(shape.SymbolIndex), 10))
}

// Object interns an object shape. Properties are sorted by name before
// hashing so structurally identical shapes with differently-ordered
// declarations still intern to one TypeID.
func (in *Interner) Object(shape ObjectShape) TypeID {
	return in.internObject(shape, false)
}

// ObjectFresh interns an object shape with ObjectFlagFreshLiteral set, used
// for freshly-written object literals subject to excess-property checks.
func (in *Interner) ObjectFresh(shape ObjectShape) TypeID {
	shape.Flags |= ObjectFlagFreshLiteral
	return in.internObject(shape, false)
}

func (in *Interner) internObject(shape ObjectShape, _ bool) TypeID {
	shape.Properties = sortProperties(shape.Properties)
	kind := KindObject
	if shape.StringIndex != NoTypeID || shape.NumberIndex != NoTypeID || shape.SymbolIndex != NoTypeID {
		kind = KindObjectWithIndex
	}
	var b strings.Builder
	encodeObjectShape(&b, shape)
	key := b.String()
	if id, ok := in.objectIx[key]; ok {
		return id
	}
	slot := uint32(len(in.objects))
	in.objects = append(in.objects, shape)
	id := in.internRaw(Type{Kind: kind, Payload: slot})
	in.objectIx[key] = id
	return id
}

// ObjectShapeOf returns the shape backing an object TypeID.
func (in *Interner) ObjectShapeOf(id TypeID) (*ObjectShape, bool) {
	t, ok := in.Lookup(id)
	if !ok || (t.Kind != KindObject && t.Kind != KindObjectWithIndex) {
		return nil, false
	}
	if int(t.Payload) >= len(in.objects) {
		return nil, false
	}
	return &in.objects[t.Payload], true
}

// IsFreshLiteral reports whether id is an object shape still eligible for
// excess-property checking.
func (in *Interner) IsFreshLiteral(id TypeID) bool {
	shape, ok := in.ObjectShapeOf(id)
	return ok && shape.Flags&ObjectFlagFreshLiteral != 0
}

// WidenObject returns the shape with ObjectFlagFreshLiteral cleared,
// re-interning if needed. Used when a literal's inferred type escapes its
// initializer.
func (in *Interner) WidenObject(id TypeID) TypeID {
	shape, ok := in.ObjectShapeOf(id)
	if !ok || shape.Flags&ObjectFlagFreshLiteral == 0 {
		return id
	}
	widened := *shape
	widened.Flags &^= ObjectFlagFreshLiteral
	return in.internObject(widened, false)
}

// FindProperty looks up a property by name on an object shape.
func (shape *ObjectShape) FindProperty(name Atom) (PropertyInfo, bool) {
	// Properties are sorted by name; binary search keeps this fast for wide
	// shapes without pulling in another dependency.
	lo, hi := 0, len(shape.Properties)
	for lo < hi {
		mid := (lo + hi) / 2
		if shape.Properties[mid].Name < name {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo < len(shape.Properties) && shape.Properties[lo].Name == name {
		return shape.Properties[lo], true
	}
	return PropertyInfo{}, false
}
