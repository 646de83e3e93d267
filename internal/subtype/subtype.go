// Package subtype implements the fast structural subtyping check used by
// narrowing and contextual typing. It is not the full assignability
// engine, which lives outside this core.
package subtype

import "surgetype/internal/types"

// Checker carries a bounded seen-set to break mutual recursion cycles
// between two structurally recursive types, and a Resolve hook the caller
// (internal/resolver) wires at session construction time so the checker can
// unwrap Lazy/Application types without importing the resolver package.
type Checker struct {
	In      *types.Interner
	Resolve func(types.TypeID) types.TypeID

	seen map[[2]types.TypeID]bool
}

// New constructs a Checker bound to an interner. Resolve defaults to the
// identity function until SetResolve is called.
func New(in *types.Interner) *Checker {
	return &Checker{In: in, seen: make(map[[2]types.TypeID]bool, 16)}
}

// SetResolve wires the Lazy/Application unwrapping hook.
func (c *Checker) SetResolve(fn func(types.TypeID) types.TypeID) { c.Resolve = fn }

// Reset clears the seen-set so the instance can be reused in hot loops
// (e.g. narrowing a whole union member-by-member) without carrying state
// from an unrelated prior check.
func (c *Checker) Reset() {
	for k := range c.seen {
		delete(c.seen, k)
	}
}

func (c *Checker) resolve(id types.TypeID) types.TypeID {
	if c.Resolve == nil {
		return id
	}
	return c.Resolve(id)
}

// IsSubtypeOf reports whether source is structurally assignable to target.
func (c *Checker) IsSubtypeOf(source, target types.TypeID) bool {
	source = c.resolve(source)
	target = c.resolve(target)
	return c.isSubtype(source, target)
}

func (c *Checker) isSubtype(source, target types.TypeID) bool {
	s := c.In.Sentinels()

	if source == target {
		return true
	}
	// ANY/UNKNOWN/NEVER/ERROR act as top/bottom.
	if source == s.Any || target == s.Any {
		return true
	}
	if source == s.Error || target == s.Error {
		return true
	}
	if source == s.Never {
		return true
	}
	if target == s.Unknown {
		return true
	}
	if source == s.Unknown {
		// unknown is only a subtype of any/unknown/error, already handled above.
		return false
	}

	key := [2]types.TypeID{source, target}
	if c.seen[key] {
		// Assume true on rediscovery of a cycle: a mutually recursive pair
		// that got this far without a structural mismatch is compatible.
		return true
	}
	c.seen[key] = true
	defer delete(c.seen, key)

	sourceT, sourceOK := c.In.Lookup(source)
	targetT, targetOK := c.In.Lookup(target)
	if !sourceOK || !targetOK {
		return false
	}

	// Union/intersection distribute before anything else, on either side.
	if sourceT.Kind == types.KindUnion {
		members, _ := c.In.UnionMembers(source)
		for _, m := range members {
			if !c.isSubtype(m, target) {
				return false
			}
		}
		return true
	}
	if targetT.Kind == types.KindUnion {
		members, _ := c.In.UnionMembers(target)
		for _, m := range members {
			if c.isSubtype(source, m) {
				return true
			}
		}
		return false
	}
	if sourceT.Kind == types.KindIntersection {
		members, _ := c.In.IntersectionMembers(source)
		for _, m := range members {
			if c.isSubtype(m, target) {
				return true
			}
		}
		return false
	}
	if targetT.Kind == types.KindIntersection {
		members, _ := c.In.IntersectionMembers(target)
		for _, m := range members {
			if !c.isSubtype(source, m) {
				return false
			}
		}
		return true
	}

	// Literal -> its base primitive (and literal -> literal already handled
	// by the source==target fast path above).
	if sourceT.Kind == types.KindLiteral {
		base := c.In.LiteralBaseType(source)
		if base != types.NoTypeID && c.isSubtype(base, target) {
			return true
		}
		return false
	}

	// Template literal -> string.
	if sourceT.Kind == types.KindTemplateLiteral {
		return target == s.String
	}

	switch {
	case sourceT.Kind == types.KindArray && targetT.Kind == types.KindArray:
		return c.isSubtype(sourceT.Elem, targetT.Elem)

	case sourceT.Kind == types.KindTuple && targetT.Kind == types.KindArray:
		info, _ := c.In.TupleInfoOf(source)
		for _, e := range info.Elems {
			if !c.isSubtype(e.Type, targetT.Elem) {
				return false
			}
		}
		return true

	case sourceT.Kind == types.KindTuple && targetT.Kind == types.KindTuple:
		return c.tupleSubtype(source, target)

	case (sourceT.Kind == types.KindObject || sourceT.Kind == types.KindObjectWithIndex) &&
		(targetT.Kind == types.KindObject || targetT.Kind == types.KindObjectWithIndex):
		return c.objectSubtype(source, target)

	case sourceT.Kind == types.KindCallable && targetT.Kind == types.KindCallable:
		return c.callableSubtype(source, target)

	case sourceT.Kind == types.KindFunction && targetT.Kind == types.KindFunction:
		sourceShape, _ := c.In.FunctionShapeOf(source)
		targetShape, _ := c.In.FunctionShapeOf(target)
		return c.signatureSubtype(sourceShape.Signature, targetShape.Signature)

	case sourceT.Kind == types.KindEnum && targetT.Kind == types.KindEnum:
		sm, _ := c.In.EnumMemberInfoOf(source)
		tm, _ := c.In.EnumMemberInfoOf(target)
		return sm.DefID == tm.DefID && sm.Literal == tm.Literal

	case sourceT.Kind == types.KindReadonly:
		return c.isSubtype(sourceT.Elem, c.unwrapReadonly(target))

	default:
		return false
	}
}

func (c *Checker) unwrapReadonly(id types.TypeID) types.TypeID {
	if t, ok := c.In.Lookup(id); ok && t.Kind == types.KindReadonly {
		return t.Elem
	}
	return id
}

func (c *Checker) tupleSubtype(source, target types.TypeID) bool {
	si, _ := c.In.TupleInfoOf(source)
	ti, _ := c.In.TupleInfoOf(target)
	if len(si.Elems) < len(ti.Elems) {
		return false
	}
	for i, te := range ti.Elems {
		if i >= len(si.Elems) {
			if te.Optional || te.Rest {
				continue
			}
			return false
		}
		if !c.isSubtype(si.Elems[i].Type, te.Type) {
			return false
		}
	}
	return true
}

// objectSubtype is width subtyping: every property target declares must
// exist on source and be a subtype. Required-vs-optional variance is not
// modeled on this fast path.
func (c *Checker) objectSubtype(source, target types.TypeID) bool {
	sourceShape, _ := c.In.ObjectShapeOf(source)
	targetShape, _ := c.In.ObjectShapeOf(target)
	for _, tp := range targetShape.Properties {
		sp, ok := sourceShape.FindProperty(tp.Name)
		if !ok {
			if tp.Optional {
				continue
			}
			return false
		}
		if !c.isSubtype(sp.Type, tp.Type) {
			return false
		}
	}
	if targetShape.StringIndex != types.NoTypeID {
		if sourceShape.StringIndex == types.NoTypeID || !c.isSubtype(sourceShape.StringIndex, targetShape.StringIndex) {
			return false
		}
	}
	if targetShape.NumberIndex != types.NoTypeID {
		if sourceShape.NumberIndex == types.NoTypeID || !c.isSubtype(sourceShape.NumberIndex, targetShape.NumberIndex) {
			return false
		}
	}
	return true
}

func (c *Checker) callableSubtype(source, target types.TypeID) bool {
	sourceShape, _ := c.In.CallableShapeOf(source)
	targetShape, _ := c.In.CallableShapeOf(target)
	for _, tsig := range targetShape.CallSignatures {
		if !c.anySignatureSatisfies(sourceShape.CallSignatures, tsig) {
			return false
		}
	}
	for _, tsig := range targetShape.ConstructSignatures {
		if !c.anySignatureSatisfies(sourceShape.ConstructSignatures, tsig) {
			return false
		}
	}
	for _, tp := range targetShape.Properties {
		sp, ok := findProperty(sourceShape.Properties, tp.Name)
		if !ok || !c.isSubtype(sp.Type, tp.Type) {
			return false
		}
	}
	return true
}

func findProperty(props []types.PropertyInfo, name types.Atom) (types.PropertyInfo, bool) {
	for _, p := range props {
		if p.Name == name {
			return p, true
		}
	}
	return types.PropertyInfo{}, false
}

func (c *Checker) anySignatureSatisfies(candidates []types.Signature, target types.Signature) bool {
	for _, s := range candidates {
		if c.signatureSubtype(s, target) {
			return true
		}
	}
	return false
}

// signatureSubtype checks `source` is usable wherever `target` is expected:
// contravariant parameters, covariant return.
func (c *Checker) signatureSubtype(source, target types.Signature) bool {
	for i, tp := range target.Params {
		if i >= len(source.Params) {
			if tp.Optional || tp.Rest {
				continue
			}
			return false
		}
		sp := source.Params[i]
		// Contravariant: target's param must be assignable to source's param.
		if !c.isSubtype(tp.Type, sp.Type) {
			return false
		}
	}
	return c.isSubtype(source.ReturnType, target.ReturnType)
}

// LiteralAssignableTo reports whether a literal leaf lit is compatible
// with a possibly-widened declared type, used by discriminant narrowing to
// compare a literal against a union-aware declared type.
func LiteralAssignableTo(in *types.Interner, lit, declared types.TypeID) bool {
	if lit == declared {
		return true
	}
	if declared == in.Sentinels().Any {
		return true
	}
	if t, ok := in.Lookup(declared); ok && t.Kind == types.KindUnion {
		members, _ := in.UnionMembers(declared)
		for _, m := range members {
			if LiteralAssignableTo(in, lit, m) {
				return true
			}
		}
		return false
	}
	base := in.LiteralBaseType(lit)
	return base != types.NoTypeID && base == declared
}
