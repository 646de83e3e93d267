// Package metatypes implements the meta-type reducer: reduction of keyof,
// indexed access, mapped types, and conditional types to structural form.
package metatypes

import (
	"math"

	"surgetype/internal/subtype"
	"surgetype/internal/types"
)

// Reducer holds the injectable hooks the resolver (internal/resolver) wires
// after construction, so this package never imports it.
type Reducer struct {
	In *types.Interner

	// Resolve unwraps Lazy/Application/aliases to a concrete structural
	// form before reduction inspects it.
	Resolve func(types.TypeID) types.TypeID
	// ResolveSymbolProperty looks up a property on the type of a foreign
	// Lazy(DefId) symbol directly, a separate path from the outer resolver
	// used when reducing T[K] where T is Lazy.
	ResolveSymbolProperty func(defID uint32, propName types.Atom) (types.TypeID, bool)

	subtyper *subtype.Checker
}

// New constructs a Reducer. The subtype checker it carries internally
// shares the same interner and Resolve hook once SetResolve is called.
func New(in *types.Interner) *Reducer {
	return &Reducer{In: in, subtyper: subtype.New(in)}
}

// SetResolve wires the Lazy/Application unwrapping hook, propagating it to
// the internal subtype checker as well.
func (r *Reducer) SetResolve(fn func(types.TypeID) types.TypeID) {
	r.Resolve = fn
	r.subtyper.SetResolve(fn)
}

func (r *Reducer) resolve(id types.TypeID) types.TypeID {
	if r.Resolve == nil {
		return id
	}
	return r.Resolve(id)
}

// KeyOf reduces `keyof T` to the sorted union of T's property-name literals
// (plus string/number for index signatures), intersecting across unions of
// objects and unioning across intersections.
func (r *Reducer) KeyOf(t types.TypeID) types.TypeID {
	t = r.resolve(t)
	tt, ok := r.In.Lookup(t)
	if !ok {
		return r.In.KeyOfRaw(t)
	}

	switch tt.Kind {
	case types.KindObject, types.KindObjectWithIndex:
		shape, ok := r.In.ObjectShapeOf(t)
		if !ok {
			return r.In.KeyOfRaw(t)
		}
		keys := make([]types.TypeID, 0, len(shape.Properties)+2)
		for _, p := range shape.Properties {
			keys = append(keys, r.In.LiteralString(p.Name))
		}
		if shape.StringIndex != types.NoTypeID {
			keys = append(keys, r.In.Sentinels().String)
		}
		if shape.NumberIndex != types.NoTypeID {
			keys = append(keys, r.In.Sentinels().Number)
		}
		return r.In.Union(keys)

	case types.KindUnion:
		members, _ := r.In.UnionMembers(t)
		if len(members) == 0 {
			return r.In.Sentinels().Never
		}
		var acc []types.TypeID
		for i, m := range members {
			keys, _ := r.In.UnionMembers(r.KeyOf(m))
			if keys == nil {
				keys = []types.TypeID{r.KeyOf(m)}
			}
			if i == 0 {
				acc = keys
				continue
			}
			acc = intersectIDs(acc, keys)
		}
		return r.In.Union(acc)

	case types.KindIntersection:
		members, _ := r.In.IntersectionMembers(t)
		var acc []types.TypeID
		for _, m := range members {
			keys, ok := r.In.UnionMembers(r.KeyOf(m))
			if !ok {
				keys = []types.TypeID{r.KeyOf(m)}
			}
			acc = append(acc, keys...)
		}
		return r.In.Union(acc)

	default:
		return r.In.KeyOfRaw(t)
	}
}

func intersectIDs(a, b []types.TypeID) []types.TypeID {
	set := make(map[types.TypeID]bool, len(b))
	for _, id := range b {
		set[id] = true
	}
	var out []types.TypeID
	for _, id := range a {
		if set[id] {
			out = append(out, id)
		}
	}
	return out
}

// IndexAccess reduces `T[K]`. If nothing can be resolved, IndexAccess
// preserves an IndexAccess node for later reduction once more is known.
func (r *Reducer) IndexAccess(obj, idx types.TypeID) types.TypeID {
	obj = r.resolve(obj)
	idx = r.resolve(idx)

	if lazyDef, ok := r.In.LazyDefID(obj); ok && r.ResolveSymbolProperty != nil {
		if lit, ok := r.In.LiteralValueOf(idx); ok && lit.Kind == types.LiteralString {
			if propType, found := r.ResolveSymbolProperty(lazyDef, lit.Str); found {
				return propType
			}
		}
	}

	if idxT, ok := r.In.Lookup(idx); ok && idxT.Kind == types.KindUnion {
		members, _ := r.In.UnionMembers(idx)
		out := make([]types.TypeID, 0, len(members))
		for _, m := range members {
			out = append(out, r.IndexAccess(obj, m))
		}
		return r.In.Union(out)
	}

	if idxT, ok := r.In.Lookup(idx); ok && idxT.Kind == types.KindKeyOf {
		keys := r.KeyOf(idxT.Elem)
		if keyMembers, ok := r.In.UnionMembers(keys); ok {
			out := make([]types.TypeID, 0, len(keyMembers))
			for _, k := range keyMembers {
				out = append(out, r.IndexAccess(obj, k))
			}
			return r.In.Union(out)
		}
		return r.IndexAccess(obj, keys)
	}

	if lit, ok := r.In.LiteralValueOf(idx); ok {
		if prop, ok := r.lookupLiteralProperty(obj, lit); ok {
			return prop
		}
	}

	return r.In.IndexAccessRaw(obj, idx)
}

func (r *Reducer) lookupLiteralProperty(obj types.TypeID, lit types.LiteralValue) (types.TypeID, bool) {
	objT, ok := r.In.Lookup(obj)
	if !ok {
		return types.NoTypeID, false
	}
	switch objT.Kind {
	case types.KindObject, types.KindObjectWithIndex:
		shape, ok := r.In.ObjectShapeOf(obj)
		if !ok {
			return types.NoTypeID, false
		}
		if lit.Kind == types.LiteralString {
			if p, ok := shape.FindProperty(lit.Str); ok {
				return p.Type, true
			}
			if shape.StringIndex != types.NoTypeID {
				return shape.StringIndex, true
			}
		}
		if lit.Kind == types.LiteralNumber && shape.NumberIndex != types.NoTypeID {
			return shape.NumberIndex, true
		}
		return types.NoTypeID, false

	case types.KindTuple:
		if lit.Kind != types.LiteralNumber {
			return types.NoTypeID, false
		}
		info, ok := r.In.TupleInfoOf(obj)
		if !ok {
			return types.NoTypeID, false
		}
		idx := int(bitsToIndex(lit.NumBits))
		if idx < 0 || idx >= len(info.Elems) {
			return types.NoTypeID, false
		}
		return info.Elems[idx].Type, true

	case types.KindUnion:
		members, _ := r.In.UnionMembers(obj)
		var out []types.TypeID
		for _, m := range members {
			if p, ok := r.lookupLiteralProperty(m, lit); ok {
				out = append(out, p)
			}
		}
		if len(out) == 0 {
			return types.NoTypeID, false
		}
		return r.In.Union(out), true

	default:
		return types.NoTypeID, false
	}
}

func bitsToIndex(bits uint64) int64 {
	return int64(math.Float64frombits(bits))
}

// Mapped reduces `{ [K in C]: Tpl }` with its optional/readonly modifiers.
// Returns the Mapped type unchanged when C does not resolve to a concrete
// set of literal keys.
func (r *Reducer) Mapped(id types.TypeID) types.TypeID {
	m, ok := r.In.MappedTypeOf(id)
	if !ok {
		return id
	}

	constraint := r.resolve(m.Constraint)
	var keys []types.TypeID
	if ct, ok := r.In.Lookup(constraint); ok && ct.Kind == types.KindKeyOf {
		keySet := r.KeyOf(ct.Elem)
		if members, ok := r.In.UnionMembers(keySet); ok {
			keys = members
		} else {
			keys = []types.TypeID{keySet}
		}
	} else if ct, ok := r.In.Lookup(constraint); ok && ct.Kind == types.KindUnion {
		members, _ := r.In.UnionMembers(constraint)
		allLiteral := true
		for _, mem := range members {
			if _, ok := r.In.LiteralValueOf(mem); !ok {
				allLiteral = false
				break
			}
		}
		if allLiteral {
			keys = members
		}
	} else if _, ok := r.In.LiteralValueOf(constraint); ok {
		keys = []types.TypeID{constraint}
	}

	if keys == nil {
		return id
	}

	props := make([]types.PropertyInfo, 0, len(keys))
	for _, k := range keys {
		lit, ok := r.In.LiteralValueOf(k)
		if !ok || lit.Kind != types.LiteralString {
			return id
		}
		substituted := r.In.Substitute(m.Template, map[types.TypeID]types.TypeID{m.TypeParam: k})
		propType := r.reducePropertyTemplate(substituted)

		p := types.PropertyInfo{Name: lit.Str, Type: propType, WriteType: propType}
		switch m.OptionalModifier {
		case types.ModifierAdd:
			p.Optional = true
		case types.ModifierRemove:
			p.Optional = false
		}
		switch m.ReadonlyModifier {
		case types.ModifierAdd:
			p.Readonly = true
		case types.ModifierRemove:
			p.Readonly = false
		}
		props = append(props, p)
	}

	return r.In.Object(types.ObjectShape{Properties: props})
}

// reducePropertyTemplate evaluates a mapped type's per-key template. If
// the substituted template is T[K] with T already Lazy, the lookup goes
// straight to the resolved object rather than re-running the whole
// reduction pipeline.
func (r *Reducer) reducePropertyTemplate(substituted types.TypeID) types.TypeID {
	if t, ok := r.In.Lookup(substituted); ok && t.Kind == types.KindIndexAccess {
		obj, idx, _ := r.In.IndexAccessParts(substituted)
		return r.IndexAccess(obj, idx)
	}
	return substituted
}

// Conditional reduces `T extends U ? X : Y`. Distributes over a union when
// the check type is a bare type parameter; otherwise resolves definitely or
// preserves the Conditional for later.
func (r *Reducer) Conditional(id types.TypeID) types.TypeID {
	c, ok := r.In.ConditionalTypeOf(id)
	if !ok {
		return id
	}

	checkT, checkIsParam := r.In.Lookup(c.CheckType)
	if checkIsParam && checkT.Kind == types.KindTypeParameter {
		resolvedCheck := r.resolve(c.CheckType)
		if rt, ok := r.In.Lookup(resolvedCheck); ok && rt.Kind == types.KindUnion {
			members, _ := r.In.UnionMembers(resolvedCheck)
			out := make([]types.TypeID, 0, len(members))
			for _, m := range members {
				branch := types.ConditionalType{
					CheckType:   m,
					ExtendsType: c.ExtendsType,
					TrueType:    c.TrueType,
					FalseType:   c.FalseType,
					Infers:      c.Infers,
				}
				out = append(out, r.Conditional(r.In.Conditional(branch)))
			}
			return r.In.Union(out)
		}
	}

	checkResolved := r.resolve(c.CheckType)
	extendsResolved := r.resolve(c.ExtendsType)

	// Indeterminate while the check type is still an unresolved type
	// parameter, or the extends type mentions a type parameter that is NOT
	// one of this conditional's own infer slots (an enclosing inference
	// context owns it): keep the Conditional for a later pass.
	if isIndeterminate(r.In, checkResolved) || containsForeignTypeParam(r.In, extendsResolved, c.Infers) {
		return id
	}

	// Bind infer slots structurally against the check type first, so the
	// subtype test runs against the extends type with its holes filled.
	// Slots nothing matched bind to unknown.
	bindings := inferBindings(r.In, checkResolved, extendsResolved, c.Infers)
	if len(c.Infers) > 0 {
		if bindings == nil {
			bindings = make(map[types.TypeID]types.TypeID, len(c.Infers))
		}
		for _, inf := range c.Infers {
			if _, bound := bindings[inf.Var]; !bound {
				bindings[inf.Var] = r.In.Sentinels().Unknown
			}
		}
	}
	extendsBound := extendsResolved
	if len(bindings) > 0 {
		extendsBound = r.In.Substitute(extendsResolved, bindings)
	}

	r.subtyper.Reset()
	if r.subtyper.IsSubtypeOf(checkResolved, extendsBound) {
		if len(bindings) == 0 {
			return c.TrueType
		}
		return r.In.Substitute(c.TrueType, bindings)
	}
	return c.FalseType
}

func isIndeterminate(in *types.Interner, id types.TypeID) bool {
	t, ok := in.Lookup(id)
	return ok && t.Kind == types.KindTypeParameter
}

// containsForeignTypeParam reports whether id mentions a type parameter that
// is not one of this conditional's own infer variables.
func containsForeignTypeParam(in *types.Interner, id types.TypeID, infers []types.InferSlot) bool {
	own := make(map[types.TypeID]bool, len(infers))
	for _, inf := range infers {
		own[inf.Var] = true
	}
	return foreignParamWalk(in, id, own, make(map[types.TypeID]bool))
}

func foreignParamWalk(in *types.Interner, id types.TypeID, own, seen map[types.TypeID]bool) bool {
	if seen[id] {
		return false
	}
	seen[id] = true
	t, ok := in.Lookup(id)
	if !ok {
		return false
	}
	switch t.Kind {
	case types.KindTypeParameter:
		return !own[id]
	case types.KindArray, types.KindReadonly, types.KindKeyOf:
		return foreignParamWalk(in, t.Elem, own, seen)
	case types.KindIndexAccess:
		return foreignParamWalk(in, t.Elem, own, seen) || foreignParamWalk(in, t.Idx, own, seen)
	case types.KindUnion:
		members, _ := in.UnionMembers(id)
		for _, m := range members {
			if foreignParamWalk(in, m, own, seen) {
				return true
			}
		}
	case types.KindIntersection:
		members, _ := in.IntersectionMembers(id)
		for _, m := range members {
			if foreignParamWalk(in, m, own, seen) {
				return true
			}
		}
	case types.KindTuple:
		info, _ := in.TupleInfoOf(id)
		for _, e := range info.Elems {
			if foreignParamWalk(in, e.Type, own, seen) {
				return true
			}
		}
	}
	return false
}

// inferBindings walks checkType and extendsType in lockstep, binding each
// infer variable in extendsType to the corresponding structural position in
// checkType. Handles the common shapes (array element, tuple element); a
// miss simply leaves that infer slot unbound.
func inferBindings(in *types.Interner, checkType, extendsType types.TypeID, infers []types.InferSlot) map[types.TypeID]types.TypeID {
	if len(infers) == 0 {
		return nil
	}
	inferVars := make(map[types.TypeID]bool, len(infers))
	for _, inf := range infers {
		inferVars[inf.Var] = true
	}
	out := make(map[types.TypeID]types.TypeID)
	var walk func(check, extends types.TypeID)
	walk = func(check, extends types.TypeID) {
		if inferVars[extends] {
			if _, bound := out[extends]; !bound {
				out[extends] = check
			}
			return
		}
		et, ok := in.Lookup(extends)
		if !ok {
			return
		}
		ct, ok := in.Lookup(check)
		if !ok {
			return
		}
		switch et.Kind {
		case types.KindArray:
			if ct.Kind == types.KindArray {
				walk(ct.Elem, et.Elem)
			}
		case types.KindReadonly:
			if ct.Kind == types.KindReadonly {
				walk(ct.Elem, et.Elem)
			} else {
				walk(check, et.Elem)
			}
		case types.KindTuple:
			if ct.Kind == types.KindTuple {
				ci, _ := in.TupleInfoOf(check)
				ei, _ := in.TupleInfoOf(extends)
				for i, elem := range ei.Elems {
					if i < len(ci.Elems) {
						walk(ci.Elems[i].Type, elem.Type)
					}
				}
			}
		}
	}
	walk(checkType, extendsType)
	if len(out) == 0 {
		return nil
	}
	return out
}
