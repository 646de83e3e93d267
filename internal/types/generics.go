package types

import (
	"strconv"
	"strings"
)

// ApplicationInfo stores the base and type arguments of an uninstantiated
// generic invocation Base<Args>.
type ApplicationInfo struct {
	Base TypeID
	Args []TypeID
}

// Application interns Application(base, args). Two applications with the
// same base and argument list (in order) collide to one TypeID; argument
// order is semantically significant so no sorting happens here.
func (in *Interner) Application(base TypeID, args []TypeID) TypeID {
	var b strings.Builder
	b.WriteString(strconv.FormatUint(uint64(base), 10))
	for _, a := range args {
		b.WriteByte(',')
		b.WriteString(strconv.FormatUint(uint64(a), 10))
	}
	key := b.String()
	if id, ok := in.applicationIx[key]; ok {
		return id
	}
	slot := uint32(len(in.applications))
	in.applications = append(in.applications, ApplicationInfo{Base: base, Args: append([]TypeID(nil), args...)})
	id := in.internRaw(Type{Kind: KindApplication, Elem: base, Payload: slot})
	in.applicationIx[key] = id
	return id
}

// ApplicationInfoOf returns the base/args of an Application TypeID.
func (in *Interner) ApplicationInfoOf(id TypeID) (*ApplicationInfo, bool) {
	t, ok := in.Lookup(id)
	if !ok || t.Kind != KindApplication {
		return nil, false
	}
	if int(t.Payload) >= len(in.applications) {
		return nil, false
	}
	return &in.applications[t.Payload], true
}

// TypeParamInfo describes a generic type parameter declaration site.
type TypeParamInfo struct {
	Name       Atom
	Constraint TypeID // NoTypeID if unconstrained
	Default    TypeID // NoTypeID if no default
}

// TypeParameter allocates a fresh generic-parameter TypeID. Unlike the
// other constructors this never dedups by content: two distinct `<T>`
// declarations with the same name and constraint must remain distinct
// TypeIDs, because their identity is the declaration site, not their
// shape.
func (in *Interner) TypeParameter(info TypeParamInfo) TypeID {
	slot := uint32(len(in.params))
	in.params = append(in.params, info)
	return in.internRaw(Type{Kind: KindTypeParameter, Payload: slot})
}

// TypeParamInfoOf returns the declaration metadata for a type-parameter
// TypeID.
func (in *Interner) TypeParamInfoOf(id TypeID) (*TypeParamInfo, bool) {
	t, ok := in.Lookup(id)
	if !ok || t.Kind != KindTypeParameter {
		return nil, false
	}
	if int(t.Payload) >= len(in.params) {
		return nil, false
	}
	return &in.params[t.Payload], true
}

// Lazy interns Lazy(defID): a symbolic reference to a declaration whose body
// is resolved lazily. Because DefId already carries stable identity,
// Lazy(d) dedups to one TypeID per session; cycle detection compares DefIds
// rather than TypeIds, so this just means the common case avoids TypeID
// churn without weakening cycle detection.
func (in *Interner) Lazy(defID uint32) TypeID {
	return in.intern(Type{Kind: KindLazy, Payload: defID})
}

// LazyDefID returns the DefId behind a Lazy TypeID.
func (in *Interner) LazyDefID(id TypeID) (uint32, bool) {
	t, ok := in.Lookup(id)
	if !ok || t.Kind != KindLazy {
		return 0, false
	}
	return t.Payload, true
}

// IsGeneric reports whether id is an unresolved Application, the
// application evaluator's fast-path identity check: a non-generic type
// evaluates to itself.
func (in *Interner) IsGeneric(id TypeID) bool {
	t, ok := in.Lookup(id)
	return ok && t.Kind == KindApplication
}
