package resolver

import (
	"surgetype/internal/ast"
	"surgetype/internal/defs"
	"surgetype/internal/symbols"
	"surgetype/internal/types"
)

// mergedInterfaceType resolves every declaration of an interface symbol —
// including same-name interface declarations contributed by lib contexts and
// global augmentations — under one shared scope, so heritage references and
// type parameters agree across declaration sites.
//
// Merge rules: properties with the same name across declarations take the
// later declaration's type; optionality ORs and readonly ANDs across the
// set. Multiple index signatures unify their value types by union. Heritage
// clauses, collected in declaration order, intersect with the merged own
// members.
func (r *Resolver) mergedInterfaceType(sym *symbols.Symbol, defID defs.DefID) types.TypeID {
	params, frame := r.ensureTypeParams(sym, defID)
	if len(params) > 0 {
		r.scope.push(frame)
		defer r.scope.pop()
	}

	declSets := r.interfaceDeclSets(sym)

	own := types.ObjectShape{}
	var heritage []types.TypeID
	for _, set := range declSets {
		for _, decl := range set.decls {
			// An augmenting declaration's own parameter names map
			// positionally onto the canonical parameter TypeIDs (the first
			// declaration's), so every declaration shares one identity.
			var popAfter bool
			if set.remapParams && len(decl.TypeParams) > 0 && len(params) > 0 {
				remap := make(map[types.Atom]types.TypeID, len(decl.TypeParams))
				for i, tp := range decl.TypeParams {
					if i >= len(params) {
						break
					}
					if node := r.Exprs.Get(tp); node != nil {
						remap[node.Name] = params[i]
					}
				}
				r.scope.push(remap)
				popAfter = true
			}

			declShape := types.ObjectShape{}
			r.lowerMembersInto(&declShape, decl.Members, false, uint32(defID))
			mergeInterfaceShapes(r.In, &own, declShape)

			for _, h := range decl.Heritage {
				heritage = append(heritage, r.LowerTypeExpr(h.Expr))
			}

			if popAfter {
				r.scope.pop()
			}
		}
	}

	var result types.TypeID
	ownShape := r.In.Object(own)
	if len(heritage) == 0 {
		result = ownShape
	} else {
		members := append([]types.TypeID{ownShape}, heritage...)
		result = r.flattenHeritage(members)
	}

	if !r.In.IsError(result) {
		r.Defs.SetBody(defID, result)
	}
	if r.Env != nil {
		r.Env.SetTypeParams(sym.ID, params)
	}
	return result
}

// interfaceDeclSet groups declarations from one symbol: the primary symbol's
// own, or one augmenting symbol's (which needs positional parameter
// remapping onto the canonical list).
type interfaceDeclSet struct {
	decls       []*ast.InterfaceDecl
	remapParams bool
}

// interfaceDeclSets collects the primary symbol's interface declarations
// plus same-name interface symbols from lib contexts and global
// augmentations, in a deterministic order: the symbol's own declarations
// first, then libs in registration order, then augmentations.
func (r *Resolver) interfaceDeclSets(sym *symbols.Symbol) []interfaceDeclSet {
	var sets []interfaceDeclSet

	var primary []*ast.InterfaceDecl
	for _, d := range sym.Declarations {
		if decl := r.Decls.Interface(d.Decl); decl != nil {
			primary = append(primary, decl)
		}
	}
	sets = append(sets, interfaceDeclSet{decls: primary})

	appendForeign := func(other *symbols.Symbol) {
		if other == nil || other.ID == sym.ID || !other.Flags.Any(symbols.FlagInterface) {
			return
		}
		var decls []*ast.InterfaceDecl
		for _, d := range other.Declarations {
			if decl := r.Decls.Interface(d.Decl); decl != nil {
				decls = append(decls, decl)
			}
		}
		if len(decls) > 0 {
			sets = append(sets, interfaceDeclSet{decls: decls, remapParams: true})
		}
	}

	if !r.Opts.NoLib {
		for _, lib := range r.Libs {
			if other, ok := lib.Locals.Lookup(sym.Name); ok {
				appendForeign(other)
			}
			if other, ok := lib.GlobalAugmentations.Lookup(sym.Name); ok {
				appendForeign(other)
			}
		}
	}
	if r.File != nil {
		if other, ok := r.File.GlobalAugmentations.Lookup(sym.Name); ok {
			appendForeign(other)
		}
	}
	return sets
}

// mergeInterfaceShapes folds a later declaration's shape into the
// accumulated one. Index signatures present in both unify by union.
func mergeInterfaceShapes(in *types.Interner, acc *types.ObjectShape, next types.ObjectShape) {
	for _, p := range next.Properties {
		upsertProperty(acc, p, true)
	}
	acc.StringIndex = unionIndex(in, acc.StringIndex, next.StringIndex)
	acc.NumberIndex = unionIndex(in, acc.NumberIndex, next.NumberIndex)
	acc.SymbolIndex = unionIndex(in, acc.SymbolIndex, next.SymbolIndex)
}

func unionIndex(in *types.Interner, a, b types.TypeID) types.TypeID {
	if a == types.NoTypeID || b == types.NoTypeID || a == b {
		return unifyIndex(a, b)
	}
	return in.Union([]types.TypeID{a, b})
}

func unifyIndex(a, b types.TypeID) types.TypeID {
	switch {
	case a == types.NoTypeID:
		return b
	case b == types.NoTypeID || a == b:
		return a
	default:
		return a // first index signature wins; unification happens at intern time for heritage merges
	}
}

// flattenHeritage intersects the merged own members with resolved heritage
// types, flattening to a single object shape when every contribution is
// already structurally an object (the common interface-extends-interface
// case). Anything unresolvable stays an intersection for a later pass.
func (r *Resolver) flattenHeritage(members []types.TypeID) types.TypeID {
	merged := types.ObjectShape{}
	// Heritage members merge lowest-precedence-first so own members (the
	// first entry) override inherited ones.
	for i := len(members) - 1; i >= 0; i-- {
		shape, ok := r.In.ObjectShapeOf(r.ResolveType(members[i]))
		if !ok {
			return r.In.Intersection(members)
		}
		for _, p := range shape.Properties {
			upsertProperty(&merged, p, false)
		}
		merged.StringIndex = unifyIndex(shape.StringIndex, merged.StringIndex)
		merged.NumberIndex = unifyIndex(shape.NumberIndex, merged.NumberIndex)
		merged.SymbolIndex = unifyIndex(shape.SymbolIndex, merged.SymbolIndex)
	}
	return r.In.Object(merged)
}
