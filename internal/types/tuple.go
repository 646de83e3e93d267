package types

import (
	"strconv"
	"strings"
)

// TupleElem describes one slot of a tuple type.
type TupleElem struct {
	Type     TypeID
	Optional bool
	Rest     bool
}

// TupleInfo stores the element descriptors for a tuple type.
type TupleInfo struct {
	Elems []TupleElem
}

// Tuple interns a tuple type from its element descriptors.
func (in *Interner) Tuple(elems []TupleElem) TypeID {
	var b strings.Builder
	for i, e := range elems {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatUint(uint64(e.Type), 10))
		if e.Optional {
			b.WriteByte('?')
		}
		if e.Rest {
			b.WriteByte('*')
		}
	}
	key := b.String()
	if id, ok := in.tupleIx[key]; ok {
		return id
	}
	slot := uint32(len(in.tuples))
	in.tuples = append(in.tuples, TupleInfo{Elems: append([]TupleElem(nil), elems...)})
	id := in.internRaw(Type{Kind: KindTuple, Payload: slot})
	in.tupleIx[key] = id
	return id
}

// TupleInfoOf returns the element descriptors for a tuple TypeID.
func (in *Interner) TupleInfoOf(id TypeID) (*TupleInfo, bool) {
	t, ok := in.Lookup(id)
	if !ok || t.Kind != KindTuple {
		return nil, false
	}
	if int(t.Payload) >= len(in.tuples) {
		return nil, false
	}
	return &in.tuples[t.Payload], true
}
