// Package narrow implements the narrowing engine: reducing a source type
// under a control-flow guard (typeof, instanceof, equality, truthiness,
// discriminant property, in, user predicate, Array.isArray) to its
// true/false-branch refinements.
package narrow

import (
	"surgetype/internal/subtype"
	"surgetype/internal/types"
)

// TypeofKind restricts a typeof result to the 8 standard JavaScript values,
// avoiding string comparisons on the hot narrowing path.
type TypeofKind uint8

const (
	TypeofInvalid TypeofKind = iota
	TypeofString
	TypeofNumber
	TypeofBoolean
	TypeofBigInt
	TypeofSymbol
	TypeofUndefined
	TypeofObject
	TypeofFunction
)

// ParseTypeofKind parses a `typeof` result string into a TypeofKind. Returns
// (TypeofInvalid, false) for non-standard strings, which never narrow.
func ParseTypeofKind(s string) (TypeofKind, bool) {
	switch s {
	case "string":
		return TypeofString, true
	case "number":
		return TypeofNumber, true
	case "boolean":
		return TypeofBoolean, true
	case "bigint":
		return TypeofBigInt, true
	case "symbol":
		return TypeofSymbol, true
	case "undefined":
		return TypeofUndefined, true
	case "object":
		return TypeofObject, true
	case "function":
		return TypeofFunction, true
	default:
		return TypeofInvalid, false
	}
}

// GuardKind tags which case of the TypeGuard sum type a value carries.
type GuardKind uint8

const (
	GuardTypeof GuardKind = iota
	GuardInstanceof
	GuardLiteralEquality
	GuardNullishEquality
	GuardTruthy
	GuardDiscriminant
	GuardInProperty
	GuardPredicate
	GuardArray
	GuardArrayElementPredicate
)

// TypeGuard is an AST-free refinement instruction: a sum type over the
// ways a control-flow condition can narrow a type. Only the fields
// relevant to Kind are meaningful.
type TypeGuard struct {
	Kind GuardKind

	Typeof          TypeofKind
	ConstructorType types.TypeID // Instanceof
	Literal         types.TypeID // LiteralEquality
	PropertyPath    []types.Atom // Discriminant
	ValueType       types.TypeID // Discriminant
	PropertyName    types.Atom   // InProperty
	PredicateType   types.TypeID // Predicate; NoTypeID means `asserts x` truthiness-only
	Asserts         bool         // Predicate
	ElementType     types.TypeID // ArrayElementPredicate
}

// Engine narrows a source type under a TypeGuard. Resolve is wired by
// internal/resolver after construction so this package never imports it.
type Engine struct {
	In      *types.Interner
	Resolve func(types.TypeID) types.TypeID

	subtyper *subtype.Checker
	cache    *NarrowingCache
}

// New constructs an Engine with a fresh bounded cache.
func New(in *types.Interner) *Engine {
	return &Engine{In: in, subtyper: subtype.New(in), cache: NewNarrowingCache(0)}
}

// SetResolve wires the Lazy/Application unwrapping hook.
func (e *Engine) SetResolve(fn func(types.TypeID) types.TypeID) {
	e.Resolve = fn
	e.subtyper.SetResolve(fn)
}

// Cache exposes the bounded per-session cache for snapshot/restore and
// edit-time invalidation.
func (e *Engine) Cache() *NarrowingCache { return e.cache }

// resolveType unwraps Lazy/Application/Template types to structural form,
// memoized per session. Errors never cascade: a failed resolution of a
// non-ERROR input returns the original id.
func (e *Engine) resolveType(id types.TypeID) types.TypeID {
	if cached, ok := e.cache.getResolve(id); ok {
		return cached
	}
	result := id
	if e.Resolve != nil {
		result = e.Resolve(id)
	}
	if result == e.In.Sentinels().Error && id != e.In.Sentinels().Error {
		result = id
	}
	e.cache.setResolve(id, result)
	return result
}

// NarrowType narrows source under guard in the given sense (true/false
// branch).
func (e *Engine) NarrowType(source types.TypeID, guard TypeGuard, sense bool) types.TypeID {
	switch guard.Kind {
	case GuardTypeof:
		return e.narrowTypeof(source, guard.Typeof, sense)
	case GuardInstanceof:
		return e.narrowInstanceof(source, guard.ConstructorType, sense)
	case GuardLiteralEquality:
		return e.narrowLiteralEquality(source, guard.Literal, sense)
	case GuardNullishEquality:
		return e.narrowNullishEquality(source, sense)
	case GuardTruthy:
		return e.narrowTruthy(source, sense)
	case GuardDiscriminant:
		return e.narrowDiscriminant(source, guard.PropertyPath, guard.ValueType, sense)
	case GuardInProperty:
		return e.narrowInProperty(source, guard.PropertyName, sense)
	case GuardPredicate:
		return e.narrowPredicate(source, guard.PredicateType, guard.Asserts, sense)
	case GuardArray:
		return e.narrowArray(source, sense)
	case GuardArrayElementPredicate:
		return e.narrowArrayElementPredicate(source, guard.ElementType, sense)
	default:
		return source
	}
}

func (e *Engine) sentinels() types.Sentinels { return e.In.Sentinels() }

func (e *Engine) unionMembersOrSelf(id types.TypeID) []types.TypeID {
	if members, ok := e.In.UnionMembers(id); ok {
		return members
	}
	return []types.TypeID{id}
}

// narrowToType filters source to the members compatible with target.
func (e *Engine) narrowToType(source, target types.TypeID) types.TypeID {
	s := e.sentinels()
	resolvedSource := e.resolveType(source)
	resolvedTarget := e.resolveType(target)

	if resolvedSource == resolvedTarget {
		return source
	}
	if resolvedSource == s.Unknown || resolvedSource == s.Any {
		return target
	}

	if members, ok := e.In.UnionMembers(resolvedSource); ok {
		var matching []types.TypeID
		for _, m := range members {
			e.subtyper.Reset()
			if e.subtyper.IsSubtypeOf(m, target) {
				matching = append(matching, m)
				continue
			}
			e.subtyper.Reset()
			if e.subtyper.IsSubtypeOf(target, m) {
				matching = append(matching, target)
			}
		}
		if len(matching) == 0 {
			return s.Never
		}
		return e.In.Union(matching)
	}

	if resolvedSource == s.Boolean {
		if target == s.BooleanTrue || resolvedTarget == s.BooleanTrue {
			return s.BooleanTrue
		}
		if target == s.BooleanFalse || resolvedTarget == s.BooleanFalse {
			return s.BooleanFalse
		}
	}

	e.subtyper.Reset()
	if e.subtyper.IsSubtypeOf(resolvedSource, resolvedTarget) {
		return source
	}
	e.subtyper.Reset()
	if e.subtyper.IsSubtypeOf(resolvedTarget, resolvedSource) {
		return target
	}
	return s.Never
}

// narrowExcludingType removes target (and its subtypes) from source.
func (e *Engine) narrowExcludingType(source, target types.TypeID) types.TypeID {
	return e.narrowExcludingTypes(source, []types.TypeID{target})
}

// NarrowExcludingTypes removes every type in excluded (and their subtypes)
// from source in one pass, so a single guard can exclude several classes
// of member at once (e.g. the negative branch of a multi-arm
// discriminant).
func (e *Engine) NarrowExcludingTypes(source types.TypeID, excluded []types.TypeID) types.TypeID {
	return e.narrowExcludingTypes(source, excluded)
}

func (e *Engine) narrowExcludingTypes(source types.TypeID, excluded []types.TypeID) types.TypeID {
	resolvedSource := e.resolveType(source)
	if members, ok := e.In.UnionMembers(resolvedSource); ok {
		var kept []types.TypeID
		for _, m := range members {
			excludedByAny := false
			for _, ex := range excluded {
				e.subtyper.Reset()
				if e.subtyper.IsSubtypeOf(m, ex) {
					excludedByAny = true
					break
				}
			}
			if !excludedByAny {
				kept = append(kept, m)
			}
		}
		if len(kept) == 0 {
			return e.sentinels().Never
		}
		return e.In.Union(kept)
	}
	for _, ex := range excluded {
		e.subtyper.Reset()
		if e.subtyper.IsSubtypeOf(resolvedSource, ex) {
			return e.sentinels().Never
		}
	}
	return source
}

func (e *Engine) narrowTypeof(source types.TypeID, kind TypeofKind, sense bool) types.TypeID {
	s := e.sentinels()
	target := e.typeofTarget(kind)
	if target == types.NoTypeID {
		return source
	}

	resolvedSource := e.resolveType(source)
	if sense && (resolvedSource == s.Any || resolvedSource == s.Unknown) {
		return target
	}

	if sense {
		return e.narrowToType(source, target)
	}
	return e.narrowExcludingType(source, target)
}

func (e *Engine) typeofTarget(kind TypeofKind) types.TypeID {
	s := e.sentinels()
	switch kind {
	case TypeofString:
		return s.String
	case TypeofNumber:
		return s.Number
	case TypeofBoolean:
		return s.Boolean
	case TypeofBigInt:
		return s.BigInt
	case TypeofSymbol:
		return s.Symbol
	case TypeofUndefined:
		return s.Undefined
	case TypeofObject:
		return e.In.Union([]types.TypeID{s.Object, s.Null})
	case TypeofFunction:
		return e.canonicalFunctionType()
	default:
		return types.NoTypeID
	}
}

// canonicalFunctionType is the generic "any function" shape used when
// typeof narrows to "function" without a more specific callable in scope.
func (e *Engine) canonicalFunctionType() types.TypeID {
	return e.In.Function(types.FunctionShape{Signature: types.Signature{
		ReturnType: e.sentinels().Any,
	}})
}

// instanceType extracts the instance type a constructor produces: a
// construct signature's return type, or a constructor function's return
// type, distributing over unions/intersections and following type
// parameter constraints.
func (e *Engine) instanceType(ctor types.TypeID) (types.TypeID, bool) {
	t, ok := e.In.Lookup(ctor)
	if !ok {
		return types.NoTypeID, false
	}
	switch t.Kind {
	case types.KindCallable:
		shape, ok := e.In.CallableShapeOf(ctor)
		if !ok || len(shape.ConstructSignatures) == 0 {
			return types.NoTypeID, false
		}
		return shape.ConstructSignatures[0].ReturnType, true
	case types.KindFunction:
		shape, ok := e.In.FunctionShapeOf(ctor)
		if !ok || !shape.IsConstructor {
			return types.NoTypeID, false
		}
		return shape.Signature.ReturnType, true
	case types.KindReadonly:
		return e.instanceType(t.Elem)
	case types.KindUnion, types.KindIntersection:
		members, isUnion := e.In.UnionMembers(ctor)
		if !isUnion {
			members, _ = e.In.IntersectionMembers(ctor)
		}
		var instances []types.TypeID
		for _, m := range members {
			if inst, ok := e.instanceType(m); ok {
				instances = append(instances, inst)
			}
		}
		if len(instances) > 0 && isUnion {
			return e.In.Union(instances), true
		}
		return e.In.Intersection(instances), len(instances) > 0
	case types.KindTypeParameter:
		info, ok := e.In.TypeParamInfoOf(ctor)
		if !ok || info.Constraint == types.NoTypeID {
			return types.NoTypeID, false
		}
		return e.instanceType(info.Constraint)
	default:
		return types.NoTypeID, false
	}
}

func (e *Engine) isObjectLike(id types.TypeID) bool {
	t, ok := e.In.Lookup(id)
	return ok && (t.Kind == types.KindObject || t.Kind == types.KindObjectWithIndex)
}

// isPrimitiveLike reports whether id can never hold a class instance:
// primitives, their literals, and nominal enum members.
func (e *Engine) isPrimitiveLike(id types.TypeID) bool {
	t, ok := e.In.Lookup(id)
	if !ok {
		return false
	}
	switch t.Kind {
	case types.KindString, types.KindNumber, types.KindBoolean, types.KindBigInt,
		types.KindSymbolPrim, types.KindNull, types.KindUndefined, types.KindVoid,
		types.KindLiteral, types.KindEnum, types.KindTemplateLiteral:
		return true
	default:
		return false
	}
}

// typeParamInstanceIntersection returns `m & instance` when m is a type
// parameter whose constraint could overlap the instance (a non-primitive
// constraint, or no constraint at all).
func (e *Engine) typeParamInstanceIntersection(m, instance types.TypeID) (types.TypeID, bool) {
	t, ok := e.In.Lookup(m)
	if !ok || t.Kind != types.KindTypeParameter {
		return types.NoTypeID, false
	}
	info, ok := e.In.TypeParamInfoOf(m)
	if ok && info.Constraint != types.NoTypeID && e.isPrimitiveLike(e.resolveType(info.Constraint)) {
		return types.NoTypeID, false
	}
	return e.In.Intersection([]types.TypeID{m, instance}), true
}

func (e *Engine) narrowInstanceof(source, ctorType types.TypeID, sense bool) types.TypeID {
	s := e.sentinels()
	resolvedSource := e.resolveType(source)
	resolvedCtor := e.resolveType(ctorType)

	instance, ok := e.instanceType(resolvedCtor)
	if !ok {
		return source
	}

	if sense {
		if resolvedSource == s.Any || resolvedSource == s.Unknown {
			return instance
		}
		if members, ok := e.In.UnionMembers(resolvedSource); ok {
			var kept []types.TypeID
			for _, m := range members {
				e.subtyper.Reset()
				if e.subtyper.IsSubtypeOf(m, instance) {
					kept = append(kept, m)
					continue
				}
				e.subtyper.Reset()
				if e.subtyper.IsSubtypeOf(instance, m) {
					kept = append(kept, instance)
					continue
				}
				if narrowed, ok := e.typeParamInstanceIntersection(m, instance); ok {
					kept = append(kept, narrowed)
					continue
				}
				if e.isObjectLike(m) && e.isObjectLike(instance) {
					kept = append(kept, e.In.Intersection([]types.TypeID{m, instance}))
				}
			}
			if len(kept) == 0 {
				return s.Never
			}
			return e.In.Union(kept)
		}

		narrowed := e.narrowToType(resolvedSource, instance)
		if narrowed == s.Never && resolvedSource != s.Never && e.isObjectLike(resolvedSource) && e.isObjectLike(instance) {
			return e.In.Intersection([]types.TypeID{resolvedSource, instance})
		}
		return narrowed
	}

	if members, ok := e.In.UnionMembers(resolvedSource); ok {
		var kept []types.TypeID
		for _, m := range members {
			e.subtyper.Reset()
			if !e.subtyper.IsSubtypeOf(m, instance) {
				kept = append(kept, m)
			}
		}
		if len(kept) == 0 {
			return s.Never
		}
		return e.In.Union(kept)
	}
	return e.narrowExcludingType(resolvedSource, instance)
}

func (e *Engine) narrowLiteralEquality(source, literal types.TypeID, sense bool) types.TypeID {
	s := e.sentinels()
	if sense {
		return e.narrowToType(source, literal)
	}
	// Boolean has an explicit complement: `boolean` minus one literal is the
	// other literal, not `boolean` unchanged.
	resolvedSource := e.resolveType(source)
	if resolvedSource == s.Boolean {
		if literal == s.BooleanTrue {
			return s.BooleanFalse
		}
		if literal == s.BooleanFalse {
			return s.BooleanTrue
		}
	}
	return e.narrowExcludingType(source, literal)
}

func (e *Engine) nullishUnion() types.TypeID {
	s := e.sentinels()
	return e.In.Union([]types.TypeID{s.Null, s.Undefined})
}

func (e *Engine) narrowNullishEquality(source types.TypeID, sense bool) types.TypeID {
	if sense {
		return e.nullishUnion()
	}
	return e.narrowExcludingTypes(source, []types.TypeID{e.sentinels().Null, e.sentinels().Undefined})
}

// isDefinitelyFalsy reports whether a leaf type is always falsy at runtime:
// null, undefined, the false/0/"" literals, or a NaN literal.
func (e *Engine) isDefinitelyFalsy(id types.TypeID) bool {
	s := e.sentinels()
	if id == s.Null || id == s.Undefined || id == s.BooleanFalse {
		return true
	}
	lit, ok := e.In.LiteralValueOf(id)
	if !ok {
		return false
	}
	switch lit.Kind {
	case types.LiteralBoolean:
		return !lit.Bool
	case types.LiteralNumber:
		return lit.NumBits == 0 || isNaNBits(lit.NumBits)
	case types.LiteralString:
		str, _ := e.In.Strings.Lookup(lit.Str)
		return str == ""
	default:
		return false
	}
}

func isNaNBits(bits uint64) bool {
	const expMask = 0x7FF0000000000000
	const mantissaMask = 0x000FFFFFFFFFFFFF
	return bits&expMask == expMask && bits&mantissaMask != 0
}

func (e *Engine) narrowTruthy(source types.TypeID, sense bool) types.TypeID {
	s := e.sentinels()
	resolvedSource := e.resolveType(source)
	members := e.unionMembersOrSelf(resolvedSource)

	var kept []types.TypeID
	for _, m := range members {
		falsy := e.isDefinitelyFalsy(m)
		if sense && !falsy {
			kept = append(kept, m)
		}
		if !sense && falsy {
			kept = append(kept, m)
		}
	}
	if len(kept) == 0 {
		return s.Never
	}
	return e.In.Union(kept)
}

func (e *Engine) lookupProperty(obj types.TypeID, path []types.Atom) (types.TypeID, bool) {
	if len(path) == 0 {
		return obj, true
	}
	if cached, found, known := e.cache.getProperty(obj, path[0]); known {
		if !found {
			return types.NoTypeID, false
		}
		return e.lookupProperty(cached, path[1:])
	}
	shape, ok := e.In.ObjectShapeOf(obj)
	if !ok {
		e.cache.setProperty(obj, path[0], types.NoTypeID, false)
		return types.NoTypeID, false
	}
	p, ok := shape.FindProperty(path[0])
	if !ok {
		e.cache.setProperty(obj, path[0], types.NoTypeID, false)
		return types.NoTypeID, false
	}
	e.cache.setProperty(obj, path[0], p.Type, true)
	return e.lookupProperty(p.Type, path[1:])
}

func (e *Engine) narrowDiscriminant(source types.TypeID, path []types.Atom, valueType types.TypeID, sense bool) types.TypeID {
	resolvedSource := e.resolveType(source)

	if t, ok := e.In.Lookup(resolvedSource); ok && t.Kind == types.KindTypeParameter {
		info, ok := e.In.TypeParamInfoOf(resolvedSource)
		if !ok || info.Constraint == types.NoTypeID {
			return source
		}
		narrowedConstraint := e.narrowDiscriminant(info.Constraint, path, valueType, sense)
		return e.In.Intersection([]types.TypeID{resolvedSource, narrowedConstraint})
	}

	members, isUnion := e.In.UnionMembers(resolvedSource)
	if !isUnion {
		members = []types.TypeID{resolvedSource}
	}

	var kept []types.TypeID
	for _, m := range members {
		leaf, ok := e.lookupProperty(m, path)
		matches := ok && subtype.LiteralAssignableTo(e.In, leaf, valueType)
		if matches == sense {
			kept = append(kept, m)
		}
	}
	if len(kept) == 0 {
		return e.sentinels().Never
	}
	return e.In.Union(kept)
}

func (e *Engine) narrowInProperty(source types.TypeID, name types.Atom, sense bool) types.TypeID {
	resolvedSource := e.resolveType(source)
	members := e.unionMembersOrSelf(resolvedSource)

	var kept []types.TypeID
	for _, m := range members {
		has := e.hasProperty(m, name)
		if has == sense {
			kept = append(kept, m)
		}
	}
	if len(kept) == 0 {
		return e.sentinels().Never
	}
	return e.In.Union(kept)
}

func (e *Engine) hasProperty(obj types.TypeID, name types.Atom) bool {
	shape, ok := e.In.ObjectShapeOf(obj)
	if !ok {
		return false
	}
	if _, ok := shape.FindProperty(name); ok {
		return true
	}
	return shape.StringIndex != types.NoTypeID
}

func (e *Engine) narrowPredicate(source, predType types.TypeID, asserts, sense bool) types.TypeID {
	if predType == types.NoTypeID {
		// `asserts x` with no type: truthiness only.
		return e.narrowTruthy(source, sense)
	}
	if sense {
		e.subtyper.Reset()
		if e.subtyper.IsSubtypeOf(source, predType) {
			return source
		}
		e.subtyper.Reset()
		if e.subtyper.IsSubtypeOf(predType, source) {
			return predType
		}
		if _, ok := e.In.UnionMembers(source); ok {
			return e.narrowToType(source, predType)
		}
		return e.In.Intersection([]types.TypeID{source, predType})
	}
	if asserts {
		// Control doesn't continue past a failed assertion.
		return source
	}
	return e.narrowExcludingType(source, predType)
}

func (e *Engine) isArrayLike(id types.TypeID) bool {
	t, ok := e.In.Lookup(id)
	if !ok {
		return false
	}
	switch t.Kind {
	case types.KindArray, types.KindTuple:
		return true
	case types.KindReadonly:
		return e.isArrayLike(t.Elem)
	default:
		return false
	}
}

func (e *Engine) narrowArray(source types.TypeID, sense bool) types.TypeID {
	s := e.sentinels()
	resolvedSource := e.resolveType(source)
	if sense && (resolvedSource == s.Any || resolvedSource == s.Unknown) {
		return e.In.Array(s.Any)
	}

	members := e.unionMembersOrSelf(resolvedSource)
	var kept []types.TypeID
	for _, m := range members {
		if e.isArrayLike(m) == sense {
			kept = append(kept, m)
		}
	}
	if len(kept) == 0 {
		return s.Never
	}
	return e.In.Union(kept)
}

func (e *Engine) narrowArrayElementPredicate(source, elementType types.TypeID, sense bool) types.TypeID {
	if !sense {
		return source
	}
	resolvedSource := e.resolveType(source)
	t, ok := e.In.Lookup(resolvedSource)
	if !ok {
		return source
	}
	switch t.Kind {
	case types.KindArray:
		return e.In.Array(elementType)
	case types.KindTuple:
		info, ok := e.In.TupleInfoOf(resolvedSource)
		if !ok {
			return source
		}
		elems := make([]types.TupleElem, len(info.Elems))
		for i, el := range info.Elems {
			el.Type = e.In.Intersection([]types.TypeID{el.Type, elementType})
			elems[i] = el
		}
		return e.In.Tuple(elems)
	default:
		return source
	}
}
