package resolver

import (
	"fmt"
	"math"

	"surgetype/internal/ast"
	"surgetype/internal/defs"
	"surgetype/internal/diag"
	"surgetype/internal/symbols"
	"surgetype/internal/types"
)

// enumObjectType builds the enum-object shape of an enum symbol: one
// readonly property per member, typed with the member's nominal Enum type,
// plus the numeric-enum reverse index signature. The symbol's Defs body is
// published as the union of member types — the meaning of the enum name in
// type position — while the returned object shape is its value-position
// meaning.
//
// Merged enum declarations contribute members in declaration order within
// the merge set; auto-numbering restarts per declaration block, matching the
// source language.
func (r *Resolver) enumObjectType(sym *symbols.Symbol, defID defs.DefID) types.TypeID {
	shape := types.ObjectShape{}
	var memberTypes []types.TypeID
	hasNumeric := false

	for _, d := range sym.Declarations {
		decl := r.Decls.Enum(d.Decl)
		if decl == nil {
			continue
		}
		next := float64(0)
		autoOK := true
		for _, m := range decl.Members {
			literal, numeric, ok := r.enumMemberLiteral(m, next, autoOK)
			if !ok {
				memberName, _ := r.In.Strings.Lookup(m.Name)
				r.reportError(diag.TcEnumMemberNotConstant, m.Span,
					fmt.Sprintf("enum member '%s' must have a constant initializer", memberName))
				literal = r.sentinels().Error
			}
			if numeric {
				hasNumeric = true
				if v, vok := r.In.LiteralValueOf(literal); vok {
					next = math.Float64frombits(v.NumBits) + 1
				}
				autoOK = true
			} else {
				// A string member breaks the auto-numbering chain.
				autoOK = false
			}

			memberDef := r.enumMemberDefID(sym, m.Name)
			memberType := r.In.Enum(uint32(memberDef), literal)
			memberTypes = append(memberTypes, memberType)
			upsertProperty(&shape, types.PropertyInfo{
				Name:      m.Name,
				Type:      memberType,
				WriteType: memberType,
				Readonly:  true,
				ParentID:  uint32(defID),
			}, false)
		}
	}

	if hasNumeric {
		// Numeric enums carry the reverse mapping `Enum[0] -> "Name"`.
		shape.NumberIndex = r.sentinels().String
	}

	if len(memberTypes) > 0 {
		r.Defs.SetBody(defID, r.In.UnionPreserveMembers(memberTypes))
	}
	return r.In.Object(shape)
}

// enumMemberLiteral computes one member's literal type: an explicit constant
// initializer, or the running auto-number.
func (r *Resolver) enumMemberLiteral(m ast.EnumMemberSyntax, next float64, autoOK bool) (literal types.TypeID, numeric, ok bool) {
	if m.HasValue {
		lowered := r.LowerTypeExpr(m.Value)
		v, isLit := r.In.LiteralValueOf(lowered)
		if !isLit {
			return types.NoTypeID, false, false
		}
		return lowered, v.Kind == types.LiteralNumber, true
	}
	if !autoOK {
		// `enum E { A = "a", B }` — B has no computable value.
		return types.NoTypeID, false, false
	}
	return r.In.LiteralNumberBits(math.Float64bits(next)), true, true
}

// enumMemberDefID returns the stable DefID for one enum member, preferring a
// binder-provided member symbol and falling back to an anonymous allocation
// cached per (enum, name).
func (r *Resolver) enumMemberDefID(sym *symbols.Symbol, name types.Atom) defs.DefID {
	if sym.Members != nil {
		if member, ok := sym.Members.Lookup(name); ok {
			return r.Defs.GetOrCreateDefID(uint32(member.ID))
		}
	}
	key := enumMemberKey{sym: sym.ID, name: name}
	if id, ok := r.enumMemberDefs[key]; ok {
		return id
	}
	id := r.Defs.CreateAnonymousDefID()
	r.enumMemberDefs[key] = id
	return id
}

// EnumMemberType returns the nominal member type for `Enum.Member` access,
// resolving the enum's object shape on demand.
func (r *Resolver) EnumMemberType(symID symbols.SymbolID, member types.Atom) (types.TypeID, bool) {
	obj := r.GetTypeOfSymbol(symID)
	shape, ok := r.In.ObjectShapeOf(obj)
	if !ok {
		return types.NoTypeID, false
	}
	p, ok := shape.FindProperty(member)
	if !ok {
		return types.NoTypeID, false
	}
	return p.Type, true
}
