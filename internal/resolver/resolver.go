// Package resolver turns a declaration symbol into its type. Class instance
// construction, interface declaration merging (including lib-context
// augmentations), type-alias lowering, enum object types, and typeof
// queries all live here, together with the lowering helper that walks AST
// type expressions, and the shared ResolveType entry point the evaluator,
// reducer, and narrowing engine use to unwrap Lazy references.
package resolver

import (
	"surgetype/internal/ast"
	"surgetype/internal/checkopts"
	"surgetype/internal/defs"
	"surgetype/internal/diag"
	"surgetype/internal/generics"
	"surgetype/internal/metatypes"
	"surgetype/internal/source"
	"surgetype/internal/symbols"
	"surgetype/internal/typeenv"
	"surgetype/internal/types"
)

// MaxResolveRecursion bounds the per-session recursion counter wrapping
// symbol resolution and type-parameter fetch. Exceeding it returns a safe
// fallback, never a crash.
const MaxResolveRecursion = 200

// AliasRouter is the slice of the Cross-file Export Router (internal/exports)
// the resolver needs: following an import/re-export alias symbol to its
// canonical target. Defined here so resolver does not import exports (the
// session wires the concrete router in).
type AliasRouter interface {
	// ResolveAlias follows sym's alias chain to the canonical symbol.
	// typeOnly reports whether any hop was `import type`/`export type`.
	ResolveAlias(sym symbols.SymbolID) (target symbols.SymbolID, typeOnly bool, ok bool)
}

// Resolver is the per-file symbol resolver. It shares the session-wide
// interner and Definition Store, and owns the current file's type-parameter
// scope and in-flight resolution guards.
type Resolver struct {
	In       *types.Interner
	Defs     *defs.Store
	Registry *symbols.Registry
	Decls    *ast.Decls
	Exprs    *ast.TypeExprs
	Env      *typeenv.Environment
	File     *symbols.File
	Libs     []*symbols.File
	Reporter diag.Reporter
	Opts     checkopts.Options
	Aliases  AliasRouter

	Evaluator *generics.Evaluator
	Reducer   *metatypes.Reducer

	scope paramScope

	// resolvingDefs guards mid-resolution re-entry: a call for a DefID
	// already on the stack returns Lazy(d) as a cycle breaker.
	resolvingDefs map[defs.DefID]bool
	recursion     int

	// crossFile remembers which foreign target an alias SymbolID resolved
	// to, so future lookups skip the router.
	crossFile map[symbols.SymbolID]symbols.SymbolID

	// enumMemberDefs allocates one stable DefID per enum member that has no
	// binder symbol of its own.
	enumMemberDefs map[enumMemberKey]defs.DefID
}

type enumMemberKey struct {
	sym  symbols.SymbolID
	name types.Atom
}

// New constructs a Resolver for one file and wires its ResolveType hook into
// the reducer, the evaluator's reducer, and the environment's queries.
func New(in *types.Interner, store *defs.Store, reg *symbols.Registry, decls *ast.Decls, exprs *ast.TypeExprs, env *typeenv.Environment, file *symbols.File, opts checkopts.Options, rep diag.Reporter) *Resolver {
	r := &Resolver{
		In:             in,
		Defs:           store,
		Registry:       reg,
		Decls:          decls,
		Exprs:          exprs,
		Env:            env,
		File:           file,
		Opts:           opts,
		Reporter:       rep,
		resolvingDefs:  make(map[defs.DefID]bool),
		crossFile:      make(map[symbols.SymbolID]symbols.SymbolID),
		enumMemberDefs: make(map[enumMemberKey]defs.DefID),
	}
	r.Reducer = metatypes.New(in)
	r.Reducer.SetResolve(r.ResolveType)
	r.Reducer.ResolveSymbolProperty = r.ResolveSymbolProperty
	r.Evaluator = generics.New(in, store, r.Reducer)
	if env != nil {
		env.SetQueries(typeenv.Queries{
			GetTypeOfSymbol: r.GetTypeOfSymbol,
			GetDeclaredType: r.TypeReferenceSymbolType,
			GetWidenedType:  r.WidenType,
		})
	}
	return r
}

func (r *Resolver) sentinels() types.Sentinels { return r.In.Sentinels() }

func (r *Resolver) enterRecursion() bool {
	if r.recursion >= MaxResolveRecursion {
		return false
	}
	r.recursion++
	return true
}

func (r *Resolver) leaveRecursion() { r.recursion-- }

func (r *Resolver) reportError(code diag.Code, span source.Span, msg string) {
	if r.Reporter == nil {
		return
	}
	diag.ReportError(r.Reporter, code, span, msg).Emit()
}

// symbol fetches a symbol record, following any already-routed cross-file
// target first.
func (r *Resolver) symbol(id symbols.SymbolID) (*symbols.Symbol, bool) {
	if target, ok := r.crossFile[id]; ok {
		id = target
	}
	return r.Registry.Symbol(id)
}

// followAlias resolves an ALIAS symbol to its canonical cross-file target via
// the router, recording the route. Type-only aliases keep resolving in type
// position; value-position misuse is the router's caller's diagnostic.
func (r *Resolver) followAlias(sym *symbols.Symbol) (*symbols.Symbol, bool) {
	if !sym.Flags.Any(symbols.FlagAlias) {
		return sym, true
	}
	if target, ok := r.crossFile[sym.ID]; ok {
		return r.Registry.Symbol(target)
	}
	if r.Aliases == nil {
		return sym, false
	}
	targetID, _, ok := r.Aliases.ResolveAlias(sym.ID)
	if !ok {
		return sym, false
	}
	r.crossFile[sym.ID] = targetID
	return r.Registry.Symbol(targetID)
}

// TypeReferenceSymbolType returns the representational type for a name in
// type position. Type-defining declarations yield Lazy(DefId) so nominal
// identity survives into error messages and recursion detection; everything
// else falls through to the concrete type.
func (r *Resolver) TypeReferenceSymbolType(symID symbols.SymbolID) types.TypeID {
	sym, ok := r.symbol(symID)
	if !ok {
		return r.sentinels().Error
	}
	sym, ok = r.followAlias(sym)
	if !ok {
		return r.sentinels().Error
	}
	if sym.Flags.Any(symbols.FlagClass | symbols.FlagInterface | symbols.FlagTypeAlias | symbols.FlagEnum | symbols.FlagEnumConst) {
		defID := r.Defs.GetOrCreateDefID(uint32(sym.ID))
		r.ensureResolved(sym, defID)
		return r.In.Lazy(uint32(defID))
	}
	return r.GetTypeOfSymbol(sym.ID)
}

// TypeReferenceSymbolTypeWithParams atomically fetches a symbol's
// representational type and its type-parameter TypeIDs, guaranteeing the
// parameter TypeIDs are the ones referenced inside the published body.
func (r *Resolver) TypeReferenceSymbolTypeWithParams(symID symbols.SymbolID) (types.TypeID, []types.TypeID) {
	body := r.TypeReferenceSymbolType(symID)
	return body, r.GetTypeParamsForSymbol(symID)
}

// ensureResolved kicks off body resolution for a type-defining symbol unless
// it is already published or already on the resolution stack.
func (r *Resolver) ensureResolved(sym *symbols.Symbol, defID defs.DefID) {
	if _, ok := r.Defs.GetBody(defID); ok {
		return
	}
	if r.resolvingDefs[defID] {
		return
	}
	r.GetTypeOfSymbol(sym.ID)
}

// GetTypeOfSymbol returns the concrete structural type of a symbol, caching
// through the TypeEnvironment. For classes this is the instance shape; for
// interfaces the merged declaration shape; for type aliases the lowered
// aliased type; for enums the enum-object shape with the numeric reverse
// index; for variables and functions the lowered declared type.
func (r *Resolver) GetTypeOfSymbol(symID symbols.SymbolID) types.TypeID {
	if r.Env != nil {
		if cached, ok := r.Env.SymbolType(symID); ok {
			return cached
		}
	}
	if !r.enterRecursion() {
		return r.sentinels().Error
	}
	defer r.leaveRecursion()

	sym, ok := r.symbol(symID)
	if !ok {
		return r.sentinels().Error
	}
	sym, ok = r.followAlias(sym)
	if !ok {
		return r.sentinels().Error
	}
	if sym.ID != symID {
		// Route future lookups for the original SymbolID via the target.
		resolved := r.GetTypeOfSymbol(sym.ID)
		if r.Env != nil {
			r.Env.SetSymbolType(symID, resolved)
		}
		return resolved
	}

	defID := r.Defs.GetOrCreateDefID(uint32(sym.ID))
	if r.resolvingDefs[defID] {
		return r.In.Lazy(uint32(defID))
	}
	r.resolvingDefs[defID] = true
	defer delete(r.resolvingDefs, defID)

	var resolved types.TypeID
	switch {
	case sym.Flags.Any(symbols.FlagClass):
		resolved, _ = r.classInstanceType(sym, defID)
	case sym.Flags.Any(symbols.FlagInterface):
		resolved = r.mergedInterfaceType(sym, defID)
	case sym.Flags.Any(symbols.FlagTypeAlias):
		resolved = r.typeAliasType(sym, defID)
	case sym.Flags.Any(symbols.FlagEnum | symbols.FlagEnumConst):
		resolved = r.enumObjectType(sym, defID)
	case sym.Flags.Any(symbols.FlagValueModule | symbols.FlagNamespaceModule):
		resolved = r.namespaceObjectType(sym, defID)
	case sym.Flags.Any(symbols.FlagFunction):
		resolved = r.functionSymbolType(sym)
	default:
		resolved = r.variableSymbolType(sym)
	}

	if resolved == types.NoTypeID {
		resolved = r.sentinels().Error
	}
	if r.Env != nil {
		r.Env.SetSymbolType(symID, resolved)
	}
	return resolved
}

// GetTypeParamsForSymbol returns the declared type-parameter TypeIDs for a
// symbol, shared with the TypeParameter leaves inside its published body.
func (r *Resolver) GetTypeParamsForSymbol(symID symbols.SymbolID) []types.TypeID {
	sym, ok := r.symbol(symID)
	if !ok {
		return nil
	}
	sym, ok = r.followAlias(sym)
	if !ok {
		return nil
	}
	defID := r.Defs.GetOrCreateDefID(uint32(sym.ID))
	params, _ := r.ensureTypeParams(sym, defID)
	return params
}

// ensureTypeParams computes and caches the type-parameter TypeIDs for a
// declaration, returning them together with the scope frame that maps their
// names. The negative cache makes the non-generic fast path a single lookup.
func (r *Resolver) ensureTypeParams(sym *symbols.Symbol, defID defs.DefID) ([]types.TypeID, map[types.Atom]types.TypeID) {
	if params, ok := r.Defs.GetTypeParams(defID); ok {
		return params, frameFor(r.In, params)
	}
	if !r.enterRecursion() {
		return nil, nil
	}
	defer r.leaveRecursion()

	syntax := r.typeParamSyntax(sym)
	if len(syntax) == 0 {
		r.Defs.SetTypeParams(defID, nil)
		return nil, nil
	}

	// Allocate all parameter TypeIDs first so a constraint/default can
	// reference a sibling parameter (`<K, V extends K>`).
	params := make([]types.TypeID, 0, len(syntax))
	frame := make(map[types.Atom]types.TypeID, len(syntax))
	nodes := make([]*ast.TypeExpr, 0, len(syntax))
	for _, exprID := range syntax {
		node := r.Exprs.Get(exprID)
		if node == nil {
			continue
		}
		id := r.In.TypeParameter(types.TypeParamInfo{Name: node.Name})
		params = append(params, id)
		frame[node.Name] = id
		nodes = append(nodes, node)
	}
	r.scope.push(frame)
	for i, node := range nodes {
		var constraint, deflt types.TypeID
		if node.Object.IsValid() {
			constraint = r.LowerTypeExpr(node.Object)
		}
		if node.Index.IsValid() {
			deflt = r.LowerTypeExpr(node.Index)
		}
		// Re-fetch after lowering: lowering may have grown the interner's
		// parameter table and moved the backing array.
		if info, ok := r.In.TypeParamInfoOf(params[i]); ok {
			info.Constraint = constraint
			info.Default = deflt
		}
	}
	r.scope.pop()

	r.Defs.SetTypeParams(defID, params)
	return params, frame
}

// typeParamSyntax extracts the TypeParams list from the first declaration
// that carries one. All merged declarations of an interface share
// canonical parameter identity with this first list.
func (r *Resolver) typeParamSyntax(sym *symbols.Symbol) []ast.TypeExprID {
	for _, decl := range sym.Declarations {
		switch ast.DeclKindOf(decl.Decl) {
		case ast.DeclClass:
			if c := r.Decls.Class(decl.Decl); c != nil && len(c.TypeParams) > 0 {
				return c.TypeParams
			}
		case ast.DeclInterface:
			if i := r.Decls.Interface(decl.Decl); i != nil && len(i.TypeParams) > 0 {
				return i.TypeParams
			}
		case ast.DeclTypeAlias:
			if a := r.Decls.TypeAlias(decl.Decl); a != nil && len(a.TypeParams) > 0 {
				return a.TypeParams
			}
		}
	}
	return nil
}

// typeAliasType lowers `type Name<T...> = Aliased` under the alias's own
// parameter scope and publishes the body.
func (r *Resolver) typeAliasType(sym *symbols.Symbol, defID defs.DefID) types.TypeID {
	var decl *ast.TypeAliasDecl
	for _, d := range sym.Declarations {
		if a := r.Decls.TypeAlias(d.Decl); a != nil {
			decl = a
			break
		}
	}
	if decl == nil {
		return r.sentinels().Error
	}
	params, frame := r.ensureTypeParams(sym, defID)
	if len(params) > 0 {
		r.scope.push(frame)
		defer r.scope.pop()
	}
	body := r.LowerTypeExpr(decl.Aliased)
	if !r.In.IsError(body) {
		r.Defs.SetBody(defID, body)
	}
	return body
}

// functionSymbolType lowers a function declaration's signature node.
func (r *Resolver) functionSymbolType(sym *symbols.Symbol) types.TypeID {
	for _, d := range sym.Declarations {
		if f := r.Decls.Function(d.Decl); f != nil {
			return r.LowerTypeExpr(f.Sig)
		}
	}
	return r.sentinels().Error
}

// variableSymbolType lowers a variable declaration's annotation.
func (r *Resolver) variableSymbolType(sym *symbols.Symbol) types.TypeID {
	for _, d := range sym.Declarations {
		if v := r.Decls.Variable(d.Decl); v != nil {
			return r.LowerTypeExpr(v.Type)
		}
	}
	return r.sentinels().Error
}

// namespaceObjectType builds the object shape of a namespace's exports.
func (r *Resolver) namespaceObjectType(sym *symbols.Symbol, defID defs.DefID) types.TypeID {
	if sym.Exports == nil {
		return r.In.Object(types.ObjectShape{})
	}
	var props []types.PropertyInfo
	for _, name := range sym.Exports.Names() {
		member, ok := sym.Exports.Lookup(name)
		if !ok {
			continue
		}
		props = append(props, types.PropertyInfo{
			Name:      name,
			Type:      r.GetTypeOfSymbol(member.ID),
			WriteType: r.GetTypeOfSymbol(member.ID),
		})
	}
	shape := r.In.Object(types.ObjectShape{Properties: props})
	r.Defs.SetBody(defID, shape)
	return shape
}

// ResolveType unwraps one top-level layer of indirection: Lazy bodies,
// generic applications, typeof queries, and template literals whose spans
// have become concrete. Failures never cascade; an unresolvable input
// returns unchanged.
func (r *Resolver) ResolveType(id types.TypeID) types.TypeID {
	t, ok := r.In.Lookup(id)
	if !ok {
		return id
	}
	switch t.Kind {
	case types.KindLazy:
		defID := defs.DefID(t.Payload)
		if body, ok := r.Defs.GetBody(defID); ok {
			if body == id {
				return id
			}
			return r.ResolveType(body)
		}
		if r.resolvingDefs[defID] {
			return id
		}
		symRaw, ok := r.Defs.SymbolOf(defID)
		if !ok {
			return id
		}
		resolved := r.GetTypeOfSymbol(symbols.SymbolID(symRaw))
		if r.In.IsError(resolved) {
			return id
		}
		return resolved

	case types.KindApplication:
		evaluated := r.Evaluator.Evaluate(id)
		if evaluated != id {
			return r.ResolveType(evaluated)
		}
		return id

	case types.KindTypeQuery:
		symRef, _ := r.In.TypeQuerySymbol(id)
		resolved := r.GetTypeOfSymbol(symbols.SymbolID(symRef))
		if r.In.IsError(resolved) {
			return id
		}
		return resolved

	case types.KindTemplateLiteral:
		return r.resolveTemplate(id)

	default:
		return id
	}
}

// resolveTemplate re-interns a template literal after resolving its
// interpolated spans; the interner folds it to a plain string literal when
// every span has become a static string.
func (r *Resolver) resolveTemplate(id types.TypeID) types.TypeID {
	info, ok := r.In.TemplateLiteralInfoOf(id)
	if !ok {
		return id
	}
	spans := make([]types.TemplateSpan, 0, len(info.Spans))
	changed := false
	for _, span := range info.Spans {
		if span.Type == types.NoTypeID {
			spans = append(spans, span)
			continue
		}
		resolved := r.ResolveType(span.Type)
		if lit, ok := r.In.LiteralValueOf(resolved); ok && lit.Kind == types.LiteralString {
			spans = append(spans, types.TemplateSpan{Static: lit.Str})
			changed = true
			continue
		}
		if resolved != span.Type {
			changed = true
		}
		spans = append(spans, types.TemplateSpan{Type: resolved})
	}
	if !changed {
		return id
	}
	return r.In.TemplateLiteral(spans)
}

// ResolveSymbolProperty looks up a property directly on the resolved type of
// a DefID, the distinct reduction path the meta-type reducer uses for
// `T[K]` where T is Lazy.
func (r *Resolver) ResolveSymbolProperty(defID uint32, propName types.Atom) (types.TypeID, bool) {
	body, ok := r.Defs.GetBody(defs.DefID(defID))
	if !ok {
		symRaw, symOK := r.Defs.SymbolOf(defs.DefID(defID))
		if !symOK {
			return types.NoTypeID, false
		}
		body = r.GetTypeOfSymbol(symbols.SymbolID(symRaw))
	}
	body = r.ResolveType(body)
	shape, ok := r.In.ObjectShapeOf(body)
	if !ok {
		return types.NoTypeID, false
	}
	p, ok := shape.FindProperty(propName)
	if !ok {
		return types.NoTypeID, false
	}
	return p.Type, true
}

// WidenType drops literal freshness from an inferred type when it escapes
// its initializer: fresh object shapes lose FRESH_LITERAL and their literal
// property types widen to base primitives; literals widen directly; arrays,
// tuples, and unions widen element-wise.
func (r *Resolver) WidenType(id types.TypeID) types.TypeID {
	t, ok := r.In.Lookup(id)
	if !ok {
		return id
	}
	switch t.Kind {
	case types.KindLiteral:
		if base := r.In.LiteralBaseType(id); base != types.NoTypeID {
			return base
		}
		return id

	case types.KindObject, types.KindObjectWithIndex:
		if !r.In.IsFreshLiteral(id) {
			return id
		}
		shape, _ := r.In.ObjectShapeOf(id)
		widened := *shape
		widened.Flags &^= types.ObjectFlagFreshLiteral
		widened.Properties = append([]types.PropertyInfo(nil), shape.Properties...)
		for i, p := range widened.Properties {
			p.Type = r.WidenType(p.Type)
			p.WriteType = r.WidenType(p.WriteType)
			widened.Properties[i] = p
		}
		return r.In.Object(widened)

	case types.KindArray:
		return r.In.Array(r.WidenType(t.Elem))

	case types.KindTuple:
		info, _ := r.In.TupleInfoOf(id)
		elems := make([]types.TupleElem, len(info.Elems))
		for i, e := range info.Elems {
			e.Type = r.WidenType(e.Type)
			elems[i] = e
		}
		return r.In.Tuple(elems)

	case types.KindUnion:
		members, _ := r.In.UnionMembers(id)
		out := make([]types.TypeID, len(members))
		for i, m := range members {
			out[i] = r.WidenType(m)
		}
		return r.In.Union(out)

	case types.KindReadonly:
		return r.In.Readonly(r.WidenType(t.Elem))

	default:
		return id
	}
}
