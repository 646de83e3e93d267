package types

import (
	"sort"
	"strconv"
	"strings"
)

// typeListInfo stores the member TypeIDs for a union or intersection.
type typeListInfo struct {
	Members []TypeID
}

func encodeIDs(b *strings.Builder, ids []TypeID) {
	for i, id := range ids {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatUint(uint64(id), 10))
	}
}

// normalizeUnion flattens nested unions one level, drops NEVER, dedups, and
// sorts by TypeID for a canonical, order-independent encoding.
func (in *Interner) normalizeUnion(members []TypeID) []TypeID {
	out := make([]TypeID, 0, len(members))
	for _, m := range members {
		if m == in.sentinels.Never {
			continue
		}
		if t, ok := in.Lookup(m); ok && t.Kind == KindUnion {
			if info := in.typeListOf(m); info != nil {
				out = append(out, info.Members...)
				continue
			}
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	out = dedupSorted(out)
	return out
}

func dedupSorted(ids []TypeID) []TypeID {
	if len(ids) == 0 {
		return ids
	}
	out := ids[:1]
	for _, id := range ids[1:] {
		if id != out[len(out)-1] {
			out = append(out, id)
		}
	}
	return out
}

// Union interns a normalized union, collapsing singletons and returning
// NEVER for the empty union.
func (in *Interner) Union(members []TypeID) TypeID {
	norm := in.normalizeUnion(members)
	if len(norm) == 0 {
		return in.sentinels.Never
	}
	if len(norm) == 1 {
		return norm[0]
	}
	for _, m := range norm {
		if in.IsAny(m) || m == in.sentinels.Unknown {
			return m
		}
	}
	var b strings.Builder
	encodeIDs(&b, norm)
	key := b.String()
	if id, ok := in.unionIx[key]; ok {
		return id
	}
	slot := uint32(len(in.typeLists))
	in.typeLists = append(in.typeLists, typeListInfo{Members: append([]TypeID(nil), norm...)})
	id := in.internRaw(Type{Kind: KindUnion, Payload: slot})
	in.unionIx[key] = id
	return id
}

// UnionPreserveMembers interns a union without deduplication or sorting, so
// discriminated narrowing can keep each variant's original TypeID distinct
// even when two variants happen to be structurally identical.
func (in *Interner) UnionPreserveMembers(members []TypeID) TypeID {
	filtered := make([]TypeID, 0, len(members))
	for _, m := range members {
		if m != in.sentinels.Never {
			filtered = append(filtered, m)
		}
	}
	if len(filtered) == 0 {
		return in.sentinels.Never
	}
	if len(filtered) == 1 {
		return filtered[0]
	}
	slot := uint32(len(in.typeLists))
	in.typeLists = append(in.typeLists, typeListInfo{Members: append([]TypeID(nil), filtered...)})
	return in.internRaw(Type{Kind: KindUnion, Payload: slot})
}

// Intersection2 interns the intersection of exactly two types.
func (in *Interner) Intersection2(a, b TypeID) TypeID {
	return in.Intersection([]TypeID{a, b})
}

// Intersection interns a normalized intersection: NEVER dominates, empty
// intersection is UNKNOWN, flattens nested intersections one level, dedups
// and sorts, the intersection dual of Union's normalization.
func (in *Interner) Intersection(members []TypeID) TypeID {
	out := make([]TypeID, 0, len(members))
	for _, m := range members {
		if m == in.sentinels.Never {
			return in.sentinels.Never
		}
		if in.IsAny(m) || m == in.sentinels.Unknown {
			continue
		}
		if t, ok := in.Lookup(m); ok && t.Kind == KindIntersection {
			if info := in.typeListOf(m); info != nil {
				out = append(out, info.Members...)
				continue
			}
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	out = dedupSorted(out)
	if len(out) == 0 {
		return in.sentinels.Unknown
	}
	if len(out) == 1 {
		return out[0]
	}
	var b strings.Builder
	encodeIDs(&b, out)
	key := b.String()
	if id, ok := in.interIx[key]; ok {
		return id
	}
	slot := uint32(len(in.typeLists))
	in.typeLists = append(in.typeLists, typeListInfo{Members: append([]TypeID(nil), out...)})
	id := in.internRaw(Type{Kind: KindIntersection, Payload: slot})
	in.interIx[key] = id
	return id
}

func (in *Interner) typeListOf(id TypeID) *typeListInfo {
	t, ok := in.Lookup(id)
	if !ok || (t.Kind != KindUnion && t.Kind != KindIntersection) {
		return nil
	}
	if int(t.Payload) >= len(in.typeLists) {
		return nil
	}
	return &in.typeLists[t.Payload]
}

// UnionMembers returns the member list of a union TypeID.
func (in *Interner) UnionMembers(id TypeID) ([]TypeID, bool) {
	t, ok := in.Lookup(id)
	if !ok || t.Kind != KindUnion {
		return nil, false
	}
	info := in.typeListOf(id)
	if info == nil {
		return nil, false
	}
	return info.Members, true
}

// IntersectionMembers returns the member list of an intersection TypeID.
func (in *Interner) IntersectionMembers(id TypeID) ([]TypeID, bool) {
	t, ok := in.Lookup(id)
	if !ok || t.Kind != KindIntersection {
		return nil, false
	}
	info := in.typeListOf(id)
	if info == nil {
		return nil, false
	}
	return info.Members, true
}
