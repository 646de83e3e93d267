package resolver

import (
	"surgetype/internal/ast"
	"surgetype/internal/defs"
	"surgetype/internal/symbols"
	"surgetype/internal/types"
)

// ClassInstanceTypeWithParamsFromSymbol builds the instance type of a class
// symbol, pushing its type parameters for the duration of member lowering.
// On mid-resolution re-entry it returns Lazy(DefId) as the cycle breaker; the
// original call publishes the body when it completes.
func (r *Resolver) ClassInstanceTypeWithParamsFromSymbol(symID symbols.SymbolID) (types.TypeID, []types.TypeID) {
	sym, ok := r.symbol(symID)
	if !ok {
		return r.sentinels().Error, nil
	}
	defID := r.Defs.GetOrCreateDefID(uint32(sym.ID))
	if r.resolvingDefs[defID] {
		params, _ := r.Defs.GetTypeParams(defID)
		return r.In.Lazy(uint32(defID)), params
	}
	r.resolvingDefs[defID] = true
	defer delete(r.resolvingDefs, defID)
	return r.classInstanceType(sym, defID)
}

// classInstanceType implements the instance-construction algorithm: register
// the DefId, push type parameters, resolve the extends clause to a base
// instance, merge own members over the base, pop, publish.
func (r *Resolver) classInstanceType(sym *symbols.Symbol, defID defs.DefID) (types.TypeID, []types.TypeID) {
	params, frame := r.ensureTypeParams(sym, defID)
	if len(params) > 0 {
		r.scope.push(frame)
		defer r.scope.pop()
	}

	var baseInstance types.TypeID
	for _, d := range sym.Declarations {
		c := r.Decls.Class(d.Decl)
		if c == nil {
			continue
		}
		for _, h := range c.Heritage {
			if h.Kind == ast.HeritageExtends {
				baseInstance = r.heritageInstanceType(r.LowerTypeExpr(h.Expr))
				break
			}
		}
		if baseInstance != types.NoTypeID {
			break
		}
	}

	own := types.ObjectShape{}
	for _, d := range sym.Declarations {
		switch ast.DeclKindOf(d.Decl) {
		case ast.DeclClass:
			if c := r.Decls.Class(d.Decl); c != nil {
				r.lowerMembersInto(&own, c.Members, false, uint32(defID))
			}
		case ast.DeclInterface:
			// Class/interface declaration merging: the interface contributes
			// instance members alongside the class's own.
			if i := r.Decls.Interface(d.Decl); i != nil {
				r.lowerMembersInto(&own, i.Members, false, uint32(defID))
			}
		}
	}

	instance := r.mergeOverBase(own, baseInstance)
	if !r.In.IsError(instance) {
		r.Defs.SetBody(defID, instance)
	}
	if r.Env != nil {
		r.Env.SetTypeParams(sym.ID, params)
	}
	return instance, params
}

// heritageInstanceType derives the instance type an `extends` clause
// contributes: a class reference resolves straight to its instance shape; a
// constructor-typed expression contributes its construct signature's return.
func (r *Resolver) heritageInstanceType(base types.TypeID) types.TypeID {
	resolved := r.ResolveType(base)
	t, ok := r.In.Lookup(resolved)
	if !ok {
		return base
	}
	switch t.Kind {
	case types.KindCallable:
		shape, ok := r.In.CallableShapeOf(resolved)
		if !ok || len(shape.ConstructSignatures) == 0 {
			return resolved
		}
		return r.ResolveType(shape.ConstructSignatures[0].ReturnType)
	case types.KindFunction:
		shape, ok := r.In.FunctionShapeOf(resolved)
		if ok && shape.IsConstructor {
			return r.ResolveType(shape.Signature.ReturnType)
		}
		return resolved
	default:
		return resolved
	}
}

// mergeOverBase merges own instance members over the resolved base instance
// shape (own overrides base). If the base is not structurally an object yet
// (an in-flight Lazy), the merge degrades to an intersection that a later
// resolution pass can flatten.
func (r *Resolver) mergeOverBase(own types.ObjectShape, baseInstance types.TypeID) types.TypeID {
	if baseInstance == types.NoTypeID {
		return r.In.Object(own)
	}
	baseShape, ok := r.In.ObjectShapeOf(r.ResolveType(baseInstance))
	if !ok {
		return r.In.Intersection([]types.TypeID{baseInstance, r.In.Object(own)})
	}

	merged := types.ObjectShape{
		StringIndex: baseShape.StringIndex,
		NumberIndex: baseShape.NumberIndex,
		SymbolIndex: baseShape.SymbolIndex,
	}
	merged.Properties = append(merged.Properties, baseShape.Properties...)
	for _, p := range own.Properties {
		upsertProperty(&merged, p, false)
	}
	if own.StringIndex != types.NoTypeID {
		merged.StringIndex = own.StringIndex
	}
	if own.NumberIndex != types.NoTypeID {
		merged.NumberIndex = own.NumberIndex
	}
	if own.SymbolIndex != types.NoTypeID {
		merged.SymbolIndex = own.SymbolIndex
	}
	return r.In.Object(merged)
}

// lowerMembersInto lowers one declaration body's members into shape,
// selecting the static or instance side. Getter/setter pairs fold into one
// property with distinct read/write types.
func (r *Resolver) lowerMembersInto(shape *types.ObjectShape, members []ast.MemberSyntax, wantStatic bool, parentID uint32) {
	for _, m := range members {
		if m.Static != wantStatic {
			continue
		}
		switch m.Kind {
		case ast.MemberProperty:
			t := r.LowerTypeExpr(m.Type)
			upsertProperty(shape, types.PropertyInfo{
				Name:       m.Name,
				Type:       t,
				WriteType:  t,
				Optional:   m.Optional,
				Readonly:   m.Readonly,
				Visibility: m.Visibility,
				ParentID:   parentID,
			}, false)

		case ast.MemberMethod:
			t := r.LowerTypeExpr(m.Type)
			upsertProperty(shape, types.PropertyInfo{
				Name:       m.Name,
				Type:       t,
				WriteType:  t,
				Optional:   m.Optional,
				IsMethod:   true,
				Visibility: m.Visibility,
				ParentID:   parentID,
			}, false)

		case ast.MemberAccessorGet:
			t := r.LowerTypeExpr(m.Type)
			if i, ok := findPropertyIndex(shape, m.Name); ok {
				shape.Properties[i].Type = t
			} else {
				upsertProperty(shape, types.PropertyInfo{
					Name:       m.Name,
					Type:       t,
					WriteType:  t,
					Readonly:   true, // getter-only until a setter shows up
					Visibility: m.Visibility,
					ParentID:   parentID,
				}, false)
			}

		case ast.MemberAccessorSet:
			t := r.LowerTypeExpr(m.Type)
			if i, ok := findPropertyIndex(shape, m.Name); ok {
				shape.Properties[i].WriteType = t
				shape.Properties[i].Readonly = false
			} else {
				upsertProperty(shape, types.PropertyInfo{
					Name:       m.Name,
					Type:       t,
					WriteType:  t,
					Visibility: m.Visibility,
					ParentID:   parentID,
				}, false)
			}

		case ast.MemberIndexSignature:
			t := r.LowerTypeExpr(m.Type)
			if m.NumberIndex {
				shape.NumberIndex = t
			} else {
				shape.StringIndex = t
			}
		}
	}
}

func findPropertyIndex(shape *types.ObjectShape, name types.Atom) (int, bool) {
	for i := range shape.Properties {
		if shape.Properties[i].Name == name {
			return i, true
		}
	}
	return 0, false
}

// upsertProperty inserts or overwrites by name. When merging (mergeFlags),
// later declarations win on type while optionality ORs and readonly ANDs
// across the merge set.
func upsertProperty(shape *types.ObjectShape, p types.PropertyInfo, mergeFlags bool) {
	if i, ok := findPropertyIndex(shape, p.Name); ok {
		if mergeFlags {
			p.Optional = p.Optional || shape.Properties[i].Optional
			p.Readonly = p.Readonly && shape.Properties[i].Readonly
		}
		shape.Properties[i] = p
		return
	}
	shape.Properties = append(shape.Properties, p)
}

// ConstructorTypeOfSymbol builds the static side of a class: a Callable with
// the construct signatures, static properties, and (when a namespace merged
// into the class) the namespace's exports.
func (r *Resolver) ConstructorTypeOfSymbol(symID symbols.SymbolID) types.TypeID {
	sym, ok := r.symbol(symID)
	if !ok || !sym.Flags.Any(symbols.FlagClass) {
		return r.sentinels().Error
	}
	defID := r.Defs.GetOrCreateDefID(uint32(sym.ID))
	instance := r.In.Lazy(uint32(defID))
	r.ensureResolved(sym, defID)

	params, frame := r.ensureTypeParams(sym, defID)
	if len(params) > 0 {
		r.scope.push(frame)
		defer r.scope.pop()
	}

	shape := types.CallableShape{}
	statics := types.ObjectShape{}
	for _, d := range sym.Declarations {
		c := r.Decls.Class(d.Decl)
		if c == nil {
			continue
		}
		r.lowerMembersInto(&statics, c.Members, true, uint32(defID))
		for _, m := range c.Members {
			if m.Kind != ast.MemberConstructor {
				continue
			}
			ctorType := r.LowerTypeExpr(m.Type)
			if fn, ok := r.In.FunctionShapeOf(ctorType); ok {
				sig := fn.Signature
				sig.ReturnType = instance
				shape.ConstructSignatures = append(shape.ConstructSignatures, sig)
			}
		}
	}
	if len(shape.ConstructSignatures) == 0 {
		shape.ConstructSignatures = []types.Signature{{TypeParams: params, ReturnType: instance}}
	}
	shape.Properties = statics.Properties
	shape.StringIndex = statics.StringIndex
	shape.NumberIndex = statics.NumberIndex

	// Class/namespace merging: the namespace's exports hang off the
	// constructor object.
	if sym.Exports != nil {
		merged := types.ObjectShape{Properties: shape.Properties}
		for _, name := range sym.Exports.Names() {
			member, ok := sym.Exports.Lookup(name)
			if !ok {
				continue
			}
			t := r.GetTypeOfSymbol(member.ID)
			upsertProperty(&merged, types.PropertyInfo{Name: name, Type: t, WriteType: t}, false)
		}
		shape.Properties = merged.Properties
	}

	return r.In.Callable(shape)
}
