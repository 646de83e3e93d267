package types

// Substitute walks id's structure, replacing every TypeParameter leaf found
// in subst by its mapped TypeID, and re-interning every shape it descends
// into so the result shares structure (and TypeIDs) with any other
// instantiation that produced the same substituted shape. This is the
// substitution primitive the application evaluator uses to build
// `Base<Args>`'s instantiated body, and the conditional reducer uses to
// bind `infer` variables into a conditional's true branch.
//
// Lazy, Enum, and primitive/literal leaves pass through unchanged: they
// carry no TypeParameter references of their own (a Lazy body is
// substituted only once it is unwrapped by the caller).
func (in *Interner) Substitute(id TypeID, subst map[TypeID]TypeID) TypeID {
	if len(subst) == 0 {
		return id
	}
	memo := make(map[TypeID]TypeID, 16)
	return in.substitute(id, subst, memo)
}

func (in *Interner) substitute(id TypeID, subst map[TypeID]TypeID, memo map[TypeID]TypeID) TypeID {
	if repl, ok := subst[id]; ok {
		return repl
	}
	if done, ok := memo[id]; ok {
		return done
	}
	t, ok := in.Lookup(id)
	if !ok {
		return id
	}

	switch t.Kind {
	case KindTypeParameter:
		// Not in subst: an outer-scope or unrelated type parameter, left as is.
		memo[id] = id
		return id

	case KindArray:
		out := in.Array(in.substitute(t.Elem, subst, memo))
		memo[id] = out
		return out

	case KindReadonly:
		out := in.Readonly(in.substitute(t.Elem, subst, memo))
		memo[id] = out
		return out

	case KindKeyOf:
		out := in.KeyOfRaw(in.substitute(t.Elem, subst, memo))
		memo[id] = out
		return out

	case KindIndexAccess:
		obj, idx, _ := in.IndexAccessParts(id)
		out := in.IndexAccessRaw(in.substitute(obj, subst, memo), in.substitute(idx, subst, memo))
		memo[id] = out
		return out

	case KindUnion:
		members, _ := in.UnionMembers(id)
		out := in.Union(in.substituteAll(members, subst, memo))
		memo[id] = out
		return out

	case KindIntersection:
		members, _ := in.IntersectionMembers(id)
		out := in.Intersection(in.substituteAll(members, subst, memo))
		memo[id] = out
		return out

	case KindTuple:
		info, ok := in.TupleInfoOf(id)
		if !ok {
			return id
		}
		elems := make([]TupleElem, len(info.Elems))
		for i, e := range info.Elems {
			e.Type = in.substitute(e.Type, subst, memo)
			elems[i] = e
		}
		out := in.Tuple(elems)
		memo[id] = out
		return out

	case KindObject, KindObjectWithIndex:
		shape, ok := in.ObjectShapeOf(id)
		if !ok {
			return id
		}
		newShape := ObjectShape{
			Flags:       shape.Flags,
			StringIndex: in.substituteOptional(shape.StringIndex, subst, memo),
			NumberIndex: in.substituteOptional(shape.NumberIndex, subst, memo),
			SymbolIndex: in.substituteOptional(shape.SymbolIndex, subst, memo),
		}
		newShape.Properties = make([]PropertyInfo, len(shape.Properties))
		for i, p := range shape.Properties {
			p.Type = in.substitute(p.Type, subst, memo)
			p.WriteType = in.substitute(p.WriteType, subst, memo)
			newShape.Properties[i] = p
		}
		out := in.internObject(newShape, false)
		memo[id] = out
		return out

	case KindCallable:
		shape, ok := in.CallableShapeOf(id)
		if !ok {
			return id
		}
		newShape := CallableShape{
			StringIndex: in.substituteOptional(shape.StringIndex, subst, memo),
			NumberIndex: in.substituteOptional(shape.NumberIndex, subst, memo),
		}
		newShape.CallSignatures = in.substituteSignatures(shape.CallSignatures, subst, memo)
		newShape.ConstructSignatures = in.substituteSignatures(shape.ConstructSignatures, subst, memo)
		newShape.Properties = make([]PropertyInfo, len(shape.Properties))
		for i, p := range shape.Properties {
			p.Type = in.substitute(p.Type, subst, memo)
			newShape.Properties[i] = p
		}
		out := in.Callable(newShape)
		memo[id] = out
		return out

	case KindFunction:
		shape, ok := in.FunctionShapeOf(id)
		if !ok {
			return id
		}
		sigs := in.substituteSignatures([]Signature{shape.Signature}, subst, memo)
		out := in.Function(FunctionShape{Signature: sigs[0], IsConstructor: shape.IsConstructor, IsMethod: shape.IsMethod})
		memo[id] = out
		return out

	case KindApplication:
		info, ok := in.ApplicationInfoOf(id)
		if !ok {
			return id
		}
		args := in.substituteAll(info.Args, subst, memo)
		out := in.Application(in.substitute(info.Base, subst, memo), args)
		memo[id] = out
		return out

	case KindMapped:
		m, ok := in.MappedTypeOf(id)
		if !ok {
			return id
		}
		newM := MappedType{
			TypeParam:        m.TypeParam, // own binder, not substituted
			Constraint:       in.substitute(m.Constraint, subst, memo),
			Template:         in.substitute(m.Template, subst, memo),
			NameType:         in.substituteOptional(m.NameType, subst, memo),
			OptionalModifier: m.OptionalModifier,
			ReadonlyModifier: m.ReadonlyModifier,
		}
		out := in.Mapped(newM)
		memo[id] = out
		return out

	case KindConditional:
		c, ok := in.ConditionalTypeOf(id)
		if !ok {
			return id
		}
		newC := ConditionalType{
			CheckType:   in.substitute(c.CheckType, subst, memo),
			ExtendsType: in.substitute(c.ExtendsType, subst, memo),
			TrueType:    in.substitute(c.TrueType, subst, memo),
			FalseType:   in.substitute(c.FalseType, subst, memo),
			Infers:      c.Infers,
		}
		out := in.Conditional(newC)
		memo[id] = out
		return out

	case KindTemplateLiteral:
		info, ok := in.TemplateLiteralInfoOf(id)
		if !ok {
			return id
		}
		spans := make([]TemplateSpan, len(info.Spans))
		changed := false
		for i, s := range info.Spans {
			if s.Type != NoTypeID {
				s.Type = in.substitute(s.Type, subst, memo)
				changed = true
			}
			spans[i] = s
		}
		if !changed {
			memo[id] = id
			return id
		}
		out := in.TemplateLiteral(spans)
		memo[id] = out
		return out

	default:
		// Primitives, literals, Lazy, Enum, TypeQuery: no TypeParameter leaves.
		memo[id] = id
		return id
	}
}

func (in *Interner) substituteOptional(id TypeID, subst map[TypeID]TypeID, memo map[TypeID]TypeID) TypeID {
	if id == NoTypeID {
		return NoTypeID
	}
	return in.substitute(id, subst, memo)
}

func (in *Interner) substituteAll(ids []TypeID, subst map[TypeID]TypeID, memo map[TypeID]TypeID) []TypeID {
	out := make([]TypeID, len(ids))
	for i, id := range ids {
		out[i] = in.substitute(id, subst, memo)
	}
	return out
}

func (in *Interner) substituteSignatures(sigs []Signature, subst map[TypeID]TypeID, memo map[TypeID]TypeID) []Signature {
	out := make([]Signature, len(sigs))
	for i, s := range sigs {
		newSig := Signature{
			TypeParams: s.TypeParams,
			ThisType:   in.substituteOptional(s.ThisType, subst, memo),
			ReturnType: in.substitute(s.ReturnType, subst, memo),
			IsMethod:   s.IsMethod,
		}
		newSig.Params = make([]ParamInfo, len(s.Params))
		for j, p := range s.Params {
			p.Type = in.substitute(p.Type, subst, memo)
			newSig.Params[j] = p
		}
		if s.TypePredicate != nil {
			pred := *s.TypePredicate
			pred.Type = in.substitute(pred.Type, subst, memo)
			newSig.TypePredicate = &pred
		}
		out[i] = newSig
	}
	return out
}
