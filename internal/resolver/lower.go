package resolver

import (
	"fmt"

	"surgetype/internal/ast"
	"surgetype/internal/diag"
	"surgetype/internal/symbols"
	"surgetype/internal/types"
)

// LowerTypeExpr converts an AST type-expression node into a TypeID,
// resolving names through the current type-parameter scope, the file's
// locals, the lib contexts, and global augmentations, in that order.
// Invalid input never panics; it lowers to ERROR with a diagnostic where
// the failure is user-visible.
func (r *Resolver) LowerTypeExpr(id ast.TypeExprID) types.TypeID {
	node := r.Exprs.Get(id)
	if node == nil {
		return r.sentinels().Error
	}

	switch node.NodeKind {
	case ast.TypeExprReference:
		return r.lowerReference(node)

	case ast.TypeExprUnion:
		return r.In.Union(r.lowerAll(node.Members))

	case ast.TypeExprIntersection:
		return r.In.Intersection(r.lowerAll(node.Members))

	case ast.TypeExprArray:
		return r.In.Array(r.LowerTypeExpr(node.Elem))

	case ast.TypeExprTuple:
		elems := make([]types.TupleElem, 0, len(node.Members))
		for _, m := range node.Members {
			member := r.Exprs.Get(m)
			elem := types.TupleElem{Type: r.LowerTypeExpr(m)}
			if member != nil && member.NodeKind == ast.TypeExprParenthesized {
				// Optional/rest markers ride on the member node itself; the
				// parser lowers `T?` and `...T` to flagged references.
				elem.Type = r.LowerTypeExpr(member.Elem)
			}
			elems = append(elems, elem)
		}
		return r.In.Tuple(elems)

	case ast.TypeExprObjectLiteral:
		return r.lowerObjectLiteral(node)

	case ast.TypeExprFunction, ast.TypeExprConstructor:
		return r.lowerFunction(node, node.NodeKind == ast.TypeExprConstructor)

	case ast.TypeExprKeyOf:
		inner := r.LowerTypeExpr(node.Elem)
		return r.Reducer.KeyOf(inner)

	case ast.TypeExprIndexedAccess:
		obj := r.LowerTypeExpr(node.Object)
		idx := r.LowerTypeExpr(node.Index)
		return r.Reducer.IndexAccess(obj, idx)

	case ast.TypeExprMapped:
		return r.lowerMapped(node)

	case ast.TypeExprConditional:
		return r.lowerConditional(node)

	case ast.TypeExprTemplateLiteral:
		spans := make([]types.TemplateSpan, 0, len(node.Spans))
		for _, s := range node.Spans {
			if s.Type.IsValid() {
				spans = append(spans, types.TemplateSpan{Type: r.LowerTypeExpr(s.Type)})
			} else {
				spans = append(spans, types.TemplateSpan{Static: s.Static})
			}
		}
		return r.In.TemplateLiteral(spans)

	case ast.TypeExprLiteral:
		return r.lowerLiteral(node.Literal)

	case ast.TypeExprTypeQuery:
		return r.lowerTypeQuery(node)

	case ast.TypeExprReadonly:
		return r.In.Readonly(r.LowerTypeExpr(node.Elem))

	case ast.TypeExprParenthesized:
		return r.LowerTypeExpr(node.Elem)

	case ast.TypeExprInfer:
		// `infer X` outside a conditional's extends-clause has no meaning;
		// lowerConditional intercepts the in-clause occurrences.
		return r.sentinels().Error

	default:
		return r.sentinels().Error
	}
}

func (r *Resolver) lowerAll(ids []ast.TypeExprID) []types.TypeID {
	out := make([]types.TypeID, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.LowerTypeExpr(id))
	}
	return out
}

// primitiveByName maps the built-in type keywords that arrive as plain
// references.
func (r *Resolver) primitiveByName(name string) (types.TypeID, bool) {
	s := r.sentinels()
	switch name {
	case "any":
		return s.Any, true
	case "unknown":
		return s.Unknown, true
	case "never":
		return s.Never, true
	case "void":
		return s.Void, true
	case "null":
		return s.Null, true
	case "undefined":
		return s.Undefined, true
	case "string":
		return s.String, true
	case "number":
		return s.Number, true
	case "boolean":
		return s.Boolean, true
	case "bigint":
		return s.BigInt, true
	case "symbol":
		return s.Symbol, true
	case "object":
		return s.Object, true
	case "true":
		return s.BooleanTrue, true
	case "false":
		return s.BooleanFalse, true
	default:
		return types.NoTypeID, false
	}
}

// lookupTypeName resolves a name in type position: file locals first, then
// lib contexts (unless noLib), then global augmentations.
func (r *Resolver) lookupTypeName(name types.Atom) (*symbols.Symbol, bool) {
	if r.File != nil {
		if sym, ok := r.File.Locals.Lookup(name); ok {
			return sym, true
		}
	}
	if !r.Opts.NoLib {
		for _, lib := range r.Libs {
			if sym, ok := lib.Locals.Lookup(name); ok {
				return sym, true
			}
		}
	}
	if r.File != nil {
		if sym, ok := r.File.GlobalAugmentations.Lookup(name); ok {
			return sym, true
		}
	}
	for _, lib := range r.Libs {
		if sym, ok := lib.GlobalAugmentations.Lookup(name); ok {
			return sym, true
		}
	}
	return nil, false
}

// lookupValueName resolves a name in value position (typeof queries).
func (r *Resolver) lookupValueName(name types.Atom) (*symbols.Symbol, bool) {
	sym, ok := r.lookupTypeName(name)
	if !ok {
		return nil, false
	}
	if !sym.Flags.Any(symbols.FlagValue | symbols.FlagFunction | symbols.FlagClass | symbols.FlagEnum | symbols.FlagEnumConst | symbols.FlagValueModule) {
		return nil, false
	}
	return sym, true
}

func (r *Resolver) lowerReference(node *ast.TypeExpr) types.TypeID {
	// Type parameters shadow everything.
	if id, ok := r.scope.lookup(node.Name); ok {
		return id
	}
	name, _ := r.In.Strings.Lookup(node.Name)
	if prim, ok := r.primitiveByName(name); ok {
		return prim
	}

	sym, ok := r.lookupTypeName(node.Name)
	if !ok {
		r.reportError(diag.TcMissingName, node.SourceSpan(), fmt.Sprintf("cannot find name '%s'", name))
		return r.sentinels().Error
	}
	if sym.Flags.Any(symbols.FlagValue|symbols.FlagFunction) && !sym.Flags.Any(symbols.FlagClass|symbols.FlagInterface|symbols.FlagTypeAlias|symbols.FlagEnum|symbols.FlagEnumConst|symbols.FlagNamespaceModule|symbols.FlagAlias) {
		r.reportError(diag.TcCannotUseValueAsType, node.SourceSpan(), fmt.Sprintf("'%s' refers to a value, but is being used as a type", name))
		return r.sentinels().Error
	}

	base := r.TypeReferenceSymbolType(sym.ID)
	params := r.GetTypeParamsForSymbol(sym.ID)

	if len(node.Args) > 0 {
		if len(params) == 0 {
			r.reportError(diag.TcWrongTypeArgumentArity, node.SourceSpan(), fmt.Sprintf("type '%s' is not generic", name))
			return base
		}
		args := r.lowerAll(node.Args)
		return r.In.Application(base, args)
	}

	if len(params) > 0 && !r.allParamsDefaulted(params) {
		r.reportError(diag.TcGenericRequiresTypeArguments, node.SourceSpan(), fmt.Sprintf("generic type '%s' requires type arguments", name))
		return r.sentinels().Error
	}
	if len(params) > 0 {
		// All parameters defaulted: an argument-free reference instantiates
		// with defaults.
		return r.In.Application(base, nil)
	}
	return base
}

func (r *Resolver) allParamsDefaulted(params []types.TypeID) bool {
	for _, p := range params {
		info, ok := r.In.TypeParamInfoOf(p)
		if !ok || info.Default == types.NoTypeID {
			return false
		}
	}
	return true
}

func (r *Resolver) lowerObjectLiteral(node *ast.TypeExpr) types.TypeID {
	shape := types.ObjectShape{}
	for _, p := range node.Properties {
		propType := r.LowerTypeExpr(p.Type)
		switch {
		case p.StringIndex:
			shape.StringIndex = propType
		case p.NumberIndex:
			shape.NumberIndex = propType
		default:
			shape.Properties = append(shape.Properties, types.PropertyInfo{
				Name:      p.Name,
				Type:      propType,
				WriteType: propType,
				Optional:  p.Optional,
				Readonly:  p.Readonly,
				IsMethod:  p.IsMethod,
			})
		}
	}
	return r.In.Object(shape)
}

func (r *Resolver) lowerFunction(node *ast.TypeExpr, isConstructor bool) types.TypeID {
	sig := types.Signature{}

	// A function type's own type parameters scope over its params and return.
	if len(node.TypeParams) > 0 {
		frame := make(map[types.Atom]types.TypeID, len(node.TypeParams))
		for _, name := range node.TypeParams {
			id := r.In.TypeParameter(types.TypeParamInfo{Name: name})
			sig.TypeParams = append(sig.TypeParams, id)
			frame[name] = id
		}
		r.scope.push(frame)
		defer r.scope.pop()
	}

	for _, p := range node.Params {
		sig.Params = append(sig.Params, types.ParamInfo{
			Name:     p.Name,
			Type:     r.LowerTypeExpr(p.Type),
			Optional: p.Optional,
			Rest:     p.Rest,
		})
	}
	sig.ReturnType = r.LowerTypeExpr(node.Return)
	if node.Predicate != nil {
		pred := &types.TypePredicateInfo{
			ParamName: node.Predicate.ParamName,
			Asserts:   node.Predicate.Asserts,
		}
		if node.Predicate.Type.IsValid() {
			pred.Type = r.LowerTypeExpr(node.Predicate.Type)
		}
		sig.TypePredicate = pred
	}

	return r.In.Function(types.FunctionShape{Signature: sig, IsConstructor: isConstructor})
}

func (r *Resolver) lowerMapped(node *ast.TypeExpr) types.TypeID {
	m := node.Mapped
	if m == nil {
		return r.sentinels().Error
	}
	param := r.In.TypeParameter(types.TypeParamInfo{Name: m.ParamName})
	constraint := r.LowerTypeExpr(m.Constraint)

	r.scope.push(map[types.Atom]types.TypeID{m.ParamName: param})
	template := r.LowerTypeExpr(m.Template)
	var nameType types.TypeID
	if m.NameType.IsValid() {
		nameType = r.LowerTypeExpr(m.NameType)
	}
	r.scope.pop()

	mapped := r.In.Mapped(types.MappedType{
		TypeParam:        param,
		Constraint:       constraint,
		Template:         template,
		NameType:         nameType,
		OptionalModifier: modifierOp(m.OptionalModifier),
		ReadonlyModifier: modifierOp(m.ReadonlyModifier),
	})
	return r.Reducer.Mapped(mapped)
}

func modifierOp(m ast.ModifierSyntax) types.ModifierOp {
	switch m {
	case ast.ModifierSyntaxAdd:
		return types.ModifierAdd
	case ast.ModifierSyntaxRemove:
		return types.ModifierRemove
	default:
		return types.ModifierNone
	}
}

func (r *Resolver) lowerConditional(node *ast.TypeExpr) types.TypeID {
	c := node.Conditional
	if c == nil {
		return r.sentinels().Error
	}

	checkType := r.LowerTypeExpr(c.CheckType)

	// Collect `infer X` sites while lowering the extends-clause; the
	// resulting inference variables scope over the extends and true types.
	var infers []types.InferSlot
	inferFrame := make(map[types.Atom]types.TypeID)
	extendsType := r.lowerExtendsWithInfers(c.ExtendsType, &infers, inferFrame)

	if len(inferFrame) > 0 {
		r.scope.push(inferFrame)
	}
	trueType := r.LowerTypeExpr(c.TrueType)
	if len(inferFrame) > 0 {
		r.scope.pop()
	}
	falseType := r.LowerTypeExpr(c.FalseType)

	cond := r.In.Conditional(types.ConditionalType{
		CheckType:   checkType,
		ExtendsType: extendsType,
		TrueType:    trueType,
		FalseType:   falseType,
		Infers:      infers,
	})
	return r.Reducer.Conditional(cond)
}

// lowerExtendsWithInfers lowers a conditional's extends-clause, replacing
// each `infer X` node with a fresh inference variable and recording the slot.
func (r *Resolver) lowerExtendsWithInfers(id ast.TypeExprID, infers *[]types.InferSlot, frame map[types.Atom]types.TypeID) types.TypeID {
	node := r.Exprs.Get(id)
	if node == nil {
		return r.sentinels().Error
	}
	switch node.NodeKind {
	case ast.TypeExprInfer:
		inner := r.Exprs.Get(node.Elem)
		if inner == nil {
			return r.sentinels().Error
		}
		if existing, ok := frame[inner.Name]; ok {
			return existing
		}
		v := r.In.TypeParameter(types.TypeParamInfo{Name: inner.Name})
		frame[inner.Name] = v
		*infers = append(*infers, types.InferSlot{Name: inner.Name, Var: v})
		return v

	case ast.TypeExprArray:
		return r.In.Array(r.lowerExtendsWithInfers(node.Elem, infers, frame))

	case ast.TypeExprReadonly:
		return r.In.Readonly(r.lowerExtendsWithInfers(node.Elem, infers, frame))

	case ast.TypeExprTuple:
		elems := make([]types.TupleElem, 0, len(node.Members))
		for _, m := range node.Members {
			elems = append(elems, types.TupleElem{Type: r.lowerExtendsWithInfers(m, infers, frame)})
		}
		return r.In.Tuple(elems)

	case ast.TypeExprParenthesized:
		return r.lowerExtendsWithInfers(node.Elem, infers, frame)

	default:
		return r.LowerTypeExpr(id)
	}
}

func (r *Resolver) lowerLiteral(lit ast.LiteralSyntax) types.TypeID {
	switch lit.Kind {
	case ast.LiteralSyntaxString:
		return r.In.LiteralString(lit.Str)
	case ast.LiteralSyntaxNumber:
		return r.In.LiteralNumberBits(lit.NumBits)
	case ast.LiteralSyntaxBoolean:
		return r.In.LiteralBool(lit.Bool)
	case ast.LiteralSyntaxBigInt:
		return r.In.Literal(types.LiteralValue{
			Kind:         types.LiteralBigInt,
			BigIntNeg:    lit.BigIntNeg,
			BigIntDigits: lit.BigIntStr,
		})
	default:
		return r.sentinels().Error
	}
}

func (r *Resolver) lowerTypeQuery(node *ast.TypeExpr) types.TypeID {
	sym, ok := r.lookupValueName(node.Name)
	if !ok {
		name, _ := r.In.Strings.Lookup(node.Name)
		r.reportError(diag.TcMissingName, node.SourceSpan(), fmt.Sprintf("cannot find name '%s'", name))
		return r.sentinels().Error
	}
	return r.In.TypeQuery(uint32(sym.ID))
}
