package session

import (
	"testing"

	"surgetype/internal/ast"
	"surgetype/internal/checkopts"
	"surgetype/internal/narrow"
	"surgetype/internal/project"
	"surgetype/internal/source"
	"surgetype/internal/symbols"
	"surgetype/internal/types"
)

// builder assembles an in-memory program the way the external parser+binder
// would, against one session and one module.
type builder struct {
	s      *CheckSession
	module symbols.ModuleID
	file   *symbols.File
}

func newBuilder(t *testing.T) *builder {
	t.Helper()
	s := New(checkopts.Default())
	module, file := s.AddModule("src/main")
	return &builder{s: s, module: module, file: file}
}

func (b *builder) atom(s string) source.StringID { return b.s.Strings.Intern(s) }

func (b *builder) expr(node ast.TypeExpr) ast.TypeExprID {
	return b.s.Exprs.Allocate(node, source.Span{})
}

func (b *builder) ref(name string, args ...ast.TypeExprID) ast.TypeExprID {
	return b.expr(ast.TypeExpr{NodeKind: ast.TypeExprReference, Name: b.atom(name), Args: args})
}

func (b *builder) strLit(s string) ast.TypeExprID {
	return b.expr(ast.TypeExpr{NodeKind: ast.TypeExprLiteral, Literal: ast.LiteralSyntax{
		Kind: ast.LiteralSyntaxString, Str: b.atom(s),
	}})
}

func (b *builder) object(props ...ast.PropertySyntax) ast.TypeExprID {
	return b.expr(ast.TypeExpr{NodeKind: ast.TypeExprObjectLiteral, Properties: props})
}

func (b *builder) prop(name string, t ast.TypeExprID) ast.PropertySyntax {
	return ast.PropertySyntax{Name: b.atom(name), Type: t}
}

func (b *builder) typeParam(name string) ast.TypeExprID {
	return b.expr(ast.TypeExpr{NodeKind: ast.TypeExprTypeParam, Name: b.atom(name)})
}

func (b *builder) declare(name string, flags symbols.Flags, decl ast.DeclID) *symbols.Symbol {
	sym, _ := b.s.Registry.DeclareLocal(b.file, b.atom(name), flags, symbols.Declaration{Decl: decl})
	return sym
}

func (b *builder) declareAlias(name string, params []ast.TypeExprID, body ast.TypeExprID) *symbols.Symbol {
	decl := b.s.Decls.AddTypeAlias(ast.TypeAliasDecl{Name: b.atom(name), TypeParams: params, Aliased: body})
	return b.declare(name, symbols.FlagTypeAlias|symbols.FlagType, decl)
}

// resolved is GetTypeOfSymbol followed by a full unwrap.
func (b *builder) resolved(sym *symbols.Symbol) types.TypeID {
	res := b.s.ResolverFor(b.module)
	return res.ResolveType(res.GetTypeOfSymbol(sym.ID))
}

func (b *builder) objectOf(props map[string]types.TypeID) types.TypeID {
	shape := types.ObjectShape{}
	for name, t := range props {
		shape.Properties = append(shape.Properties, types.PropertyInfo{
			Name: b.atom(name), Type: t, WriteType: t,
		})
	}
	return b.s.Interner.Object(shape)
}

func TestGenericAliasInstantiation(t *testing.T) {
	b := newBuilder(t)
	s := b.s.Interner.Sentinels()

	// type Box<T> = { value: T }
	b.declareAlias("Box", []ast.TypeExprID{b.typeParam("T")}, b.object(b.prop("value", b.ref("T"))))
	// let boxed: Box<number>
	decl := b.s.Decls.AddVariable(ast.VariableDecl{Name: b.atom("boxed"), Type: b.ref("Box", b.ref("number"))})
	boxed := b.declare("boxed", symbols.FlagValue, decl)

	got := b.resolved(boxed)
	want := b.objectOf(map[string]types.TypeID{"value": s.Number})
	if got != want {
		t.Fatalf("Box<number> = %s, want %s", b.s.Interner.Label(got), b.s.Interner.Label(want))
	}
}

func TestInterfaceMerging(t *testing.T) {
	b := newBuilder(t)
	s := b.s.Interner.Sentinels()

	first := b.s.Decls.AddInterface(ast.InterfaceDecl{
		Name: b.atom("I"),
		Members: []ast.MemberSyntax{
			{Kind: ast.MemberProperty, Name: b.atom("a"), Type: b.ref("number")},
		},
	})
	second := b.s.Decls.AddInterface(ast.InterfaceDecl{
		Name: b.atom("I"),
		Members: []ast.MemberSyntax{
			{Kind: ast.MemberProperty, Name: b.atom("b"), Type: b.ref("string")},
		},
	})
	b.declare("I", symbols.FlagInterface|symbols.FlagType, first)
	sym := b.declare("I", symbols.FlagInterface|symbols.FlagType, second)

	got := b.resolved(sym)
	want := b.objectOf(map[string]types.TypeID{"a": s.Number, "b": s.String})
	if got != want {
		t.Fatalf("merged interface = %s, want %s", b.s.Interner.Label(got), b.s.Interner.Label(want))
	}
}

func TestKeyofAndIndexAccess(t *testing.T) {
	b := newBuilder(t)
	s := b.s.Interner.Sentinels()

	// interface P { name: string; age: number }
	decl := b.s.Decls.AddInterface(ast.InterfaceDecl{
		Name: b.atom("P"),
		Members: []ast.MemberSyntax{
			{Kind: ast.MemberProperty, Name: b.atom("name"), Type: b.ref("string")},
			{Kind: ast.MemberProperty, Name: b.atom("age"), Type: b.ref("number")},
		},
	})
	b.declare("P", symbols.FlagInterface|symbols.FlagType, decl)

	keys := b.declareAlias("Keys", nil,
		b.expr(ast.TypeExpr{NodeKind: ast.TypeExprKeyOf, Elem: b.ref("P")}))
	values := b.declareAlias("Values", nil,
		b.expr(ast.TypeExpr{
			NodeKind: ast.TypeExprIndexedAccess,
			Object:   b.ref("P"),
			Index:    b.expr(ast.TypeExpr{NodeKind: ast.TypeExprKeyOf, Elem: b.ref("P")}),
		}))

	wantKeys := b.s.Interner.Union([]types.TypeID{
		b.s.Interner.LiteralString(b.atom("name")),
		b.s.Interner.LiteralString(b.atom("age")),
	})
	if got := b.resolved(keys); got != wantKeys {
		t.Fatalf("keyof P = %s, want %s", b.s.Interner.Label(got), b.s.Interner.Label(wantKeys))
	}

	wantValues := b.s.Interner.Union([]types.TypeID{s.String, s.Number})
	if got := b.resolved(values); got != wantValues {
		t.Fatalf("P[keyof P] = %s, want %s", b.s.Interner.Label(got), b.s.Interner.Label(wantValues))
	}
}

func TestConditionalDistributivity(t *testing.T) {
	b := newBuilder(t)
	s := b.s.Interner.Sentinels()

	// type ToArray<T> = T extends any ? T[] : never
	param := b.typeParam("T")
	cond := b.expr(ast.TypeExpr{NodeKind: ast.TypeExprConditional, Conditional: &ast.ConditionalSyntax{
		CheckType:   b.ref("T"),
		ExtendsType: b.ref("any"),
		TrueType:    b.expr(ast.TypeExpr{NodeKind: ast.TypeExprArray, Elem: b.ref("T")}),
		FalseType:   b.ref("never"),
	}})
	b.declareAlias("ToArray", []ast.TypeExprID{param}, cond)

	union := b.expr(ast.TypeExpr{NodeKind: ast.TypeExprUnion, Members: []ast.TypeExprID{b.ref("string"), b.ref("number")}})
	decl := b.s.Decls.AddVariable(ast.VariableDecl{Name: b.atom("v"), Type: b.ref("ToArray", union)})
	v := b.declare("v", symbols.FlagValue, decl)

	got := b.resolved(v)
	want := b.s.Interner.Union([]types.TypeID{b.s.Interner.Array(s.String), b.s.Interner.Array(s.Number)})
	if got != want {
		t.Fatalf("ToArray<string|number> = %s, want %s", b.s.Interner.Label(got), b.s.Interner.Label(want))
	}
}

func TestExcludeConditional(t *testing.T) {
	b := newBuilder(t)

	// type Exclude<T, U> = T extends U ? never : T
	tParam, uParam := b.typeParam("T"), b.typeParam("U")
	cond := b.expr(ast.TypeExpr{NodeKind: ast.TypeExprConditional, Conditional: &ast.ConditionalSyntax{
		CheckType:   b.ref("T"),
		ExtendsType: b.ref("U"),
		TrueType:    b.ref("never"),
		FalseType:   b.ref("T"),
	}})
	b.declareAlias("Exclude", []ast.TypeExprID{tParam, uParam}, cond)

	abc := b.expr(ast.TypeExpr{NodeKind: ast.TypeExprUnion, Members: []ast.TypeExprID{
		b.strLit("a"), b.strLit("b"), b.strLit("c"),
	}})
	decl := b.s.Decls.AddVariable(ast.VariableDecl{Name: b.atom("v"), Type: b.ref("Exclude", abc, b.strLit("b"))})
	v := b.declare("v", symbols.FlagValue, decl)

	got := b.resolved(v)
	want := b.s.Interner.Union([]types.TypeID{
		b.s.Interner.LiteralString(b.atom("a")),
		b.s.Interner.LiteralString(b.atom("c")),
	})
	if got != want {
		t.Fatalf("Exclude<\"a\"|\"b\"|\"c\",\"b\"> = %s, want %s", b.s.Interner.Label(got), b.s.Interner.Label(want))
	}
}

func TestMappedReadonly(t *testing.T) {
	b := newBuilder(t)
	s := b.s.Interner.Sentinels()

	// interface A { a: number }
	decl := b.s.Decls.AddInterface(ast.InterfaceDecl{
		Name: b.atom("A"),
		Members: []ast.MemberSyntax{
			{Kind: ast.MemberProperty, Name: b.atom("a"), Type: b.ref("number")},
		},
	})
	b.declare("A", symbols.FlagInterface|symbols.FlagType, decl)

	// type RO = { readonly [K in keyof A]: A[K] }
	mapped := b.expr(ast.TypeExpr{NodeKind: ast.TypeExprMapped, Mapped: &ast.MappedSyntax{
		ParamName:  b.atom("K"),
		Constraint: b.expr(ast.TypeExpr{NodeKind: ast.TypeExprKeyOf, Elem: b.ref("A")}),
		Template: b.expr(ast.TypeExpr{
			NodeKind: ast.TypeExprIndexedAccess,
			Object:   b.ref("A"),
			Index:    b.ref("K"),
		}),
		ReadonlyModifier: ast.ModifierSyntaxAdd,
	}})
	ro := b.declareAlias("RO", nil, mapped)

	got := b.resolved(ro)
	shape, ok := b.s.Interner.ObjectShapeOf(got)
	if !ok {
		t.Fatalf("RO did not reduce to an object shape: %s", b.s.Interner.Label(got))
	}
	p, ok := shape.FindProperty(b.atom("a"))
	if !ok || !p.Readonly || p.Type != s.Number {
		t.Fatalf("RO.a = %+v, want readonly number", p)
	}
}

func TestEnumNominalIdentity(t *testing.T) {
	b := newBuilder(t)
	in := b.s.Interner

	decl := b.s.Decls.AddEnum(ast.EnumDecl{
		Name: b.atom("Color"),
		Members: []ast.EnumMemberSyntax{
			{Name: b.atom("Red")},
			{Name: b.atom("Green")},
		},
	})
	sym := b.declare("Color", symbols.FlagEnum|symbols.FlagType|symbols.FlagValue, decl)

	res := b.s.ResolverFor(b.module)
	red, ok := res.EnumMemberType(sym.ID, b.atom("Red"))
	if !ok {
		t.Fatal("Color.Red not found")
	}
	green, ok := res.EnumMemberType(sym.ID, b.atom("Green"))
	if !ok {
		t.Fatal("Color.Green not found")
	}
	if red == green {
		t.Fatal("distinct enum members interned to one TypeID")
	}

	redInfo, _ := in.EnumMemberInfoOf(red)
	greenInfo, _ := in.EnumMemberInfoOf(green)
	if redInfo.DefID == greenInfo.DefID {
		t.Fatal("enum members share a DefID")
	}

	// Nominal: not mutually assignable even though both carry number literals.
	b.s.Subtype.Reset()
	if b.s.Subtype.IsSubtypeOf(red, green) {
		t.Fatal("Color.Red should not be assignable to Color.Green")
	}

	// Numeric enums carry the reverse index signature.
	obj := res.GetTypeOfSymbol(sym.ID)
	shape, ok := in.ObjectShapeOf(obj)
	if !ok || shape.NumberIndex != in.Sentinels().String {
		t.Fatalf("enum object missing numeric reverse index: %+v", shape)
	}
}

func TestClassInstanceWithBase(t *testing.T) {
	b := newBuilder(t)
	s := b.s.Interner.Sentinels()

	baseDecl := b.s.Decls.AddClass(ast.ClassDecl{
		Name: b.atom("Base"),
		Members: []ast.MemberSyntax{
			{Kind: ast.MemberProperty, Name: b.atom("id"), Type: b.ref("number")},
		},
	})
	b.declare("Base", symbols.FlagClass|symbols.FlagType|symbols.FlagValue, baseDecl)

	derivedDecl := b.s.Decls.AddClass(ast.ClassDecl{
		Name:     b.atom("Derived"),
		Heritage: []ast.HeritageClause{{Kind: ast.HeritageExtends, Expr: b.ref("Base")}},
		Members: []ast.MemberSyntax{
			{Kind: ast.MemberProperty, Name: b.atom("name"), Type: b.ref("string")},
		},
	})
	derived := b.declare("Derived", symbols.FlagClass|symbols.FlagType|symbols.FlagValue, derivedDecl)

	got := b.resolved(derived)
	want := b.objectOf(map[string]types.TypeID{"id": s.Number, "name": s.String})
	if got != want {
		t.Fatalf("Derived instance = %s, want %s", b.s.Interner.Label(got), b.s.Interner.Label(want))
	}
}

func TestClassConstructorType(t *testing.T) {
	b := newBuilder(t)
	s := b.s.Interner.Sentinels()

	decl := b.s.Decls.AddClass(ast.ClassDecl{
		Name: b.atom("Widget"),
		Members: []ast.MemberSyntax{
			{Kind: ast.MemberProperty, Name: b.atom("id"), Type: b.ref("number")},
			{Kind: ast.MemberProperty, Name: b.atom("count"), Type: b.ref("number"), Static: true},
		},
	})
	widget := b.declare("Widget", symbols.FlagClass|symbols.FlagType|symbols.FlagValue, decl)

	res := b.s.ResolverFor(b.module)
	instance, params := res.ClassInstanceTypeWithParamsFromSymbol(widget.ID)
	if len(params) != 0 {
		t.Fatalf("non-generic class reported %d type params", len(params))
	}
	shape, ok := b.s.Interner.ObjectShapeOf(res.ResolveType(instance))
	if !ok {
		t.Fatalf("instance not structural: %s", b.s.Interner.Label(instance))
	}
	if _, ok := shape.FindProperty(b.atom("id")); !ok {
		t.Fatal("instance missing id")
	}
	if _, ok := shape.FindProperty(b.atom("count")); ok {
		t.Fatal("static member leaked onto the instance side")
	}

	ctor := res.ConstructorTypeOfSymbol(widget.ID)
	callable, ok := b.s.Interner.CallableShapeOf(ctor)
	if !ok {
		t.Fatalf("constructor not callable: %s", b.s.Interner.Label(ctor))
	}
	if len(callable.ConstructSignatures) != 1 {
		t.Fatalf("construct signatures = %d", len(callable.ConstructSignatures))
	}
	if got := res.ResolveType(callable.ConstructSignatures[0].ReturnType); got != instance && got != res.ResolveType(instance) {
		t.Fatalf("construct return = %s", b.s.Interner.Label(got))
	}
	foundStatic := false
	for _, p := range callable.Properties {
		if p.Name == b.atom("count") && p.Type == s.Number {
			foundStatic = true
		}
	}
	if !foundStatic {
		t.Fatal("static member missing from constructor type")
	}
}

func TestSelfReferentialClass(t *testing.T) {
	b := newBuilder(t)

	// class Node { next: Node } — the self reference resolves through
	// Lazy(DefId) without recursing forever.
	decl := b.s.Decls.AddClass(ast.ClassDecl{
		Name: b.atom("Node"),
		Members: []ast.MemberSyntax{
			{Kind: ast.MemberProperty, Name: b.atom("next"), Type: b.ref("Node")},
		},
	})
	node := b.declare("Node", symbols.FlagClass|symbols.FlagType|symbols.FlagValue, decl)

	got := b.resolved(node)
	shape, ok := b.s.Interner.ObjectShapeOf(got)
	if !ok {
		t.Fatalf("Node did not resolve to an object: %s", b.s.Interner.Label(got))
	}
	p, ok := shape.FindProperty(b.atom("next"))
	if !ok {
		t.Fatal("Node.next missing")
	}
	// The self reference stays symbolic; unwrapping it lands back on the
	// published instance shape.
	res := b.s.ResolverFor(b.module)
	if res.ResolveType(p.Type) != got {
		t.Fatalf("Node.next does not resolve back to Node: %s", b.s.Interner.Label(res.ResolveType(p.Type)))
	}
}

func TestSelfRecursiveAliasTerminates(t *testing.T) {
	b := newBuilder(t)

	// type X<T> = X<T> — evaluation must return in finite time.
	param := b.typeParam("T")
	b.declareAlias("X", []ast.TypeExprID{param}, b.ref("X", b.ref("T")))

	decl := b.s.Decls.AddVariable(ast.VariableDecl{Name: b.atom("v"), Type: b.ref("X", b.ref("number"))})
	v := b.declare("v", symbols.FlagValue, decl)

	got := b.resolved(v)
	// Stability: a second resolution produces the identical TypeID.
	if again := b.resolved(v); again != got {
		t.Fatalf("self-recursive alias unstable: %v then %v", got, again)
	}
}

func TestMissingNameDiagnostic(t *testing.T) {
	b := newBuilder(t)

	decl := b.s.Decls.AddVariable(ast.VariableDecl{Name: b.atom("v"), Type: b.ref("Nope")})
	v := b.declare("v", symbols.FlagValue, decl)

	got := b.resolved(v)
	if got != b.s.Interner.Sentinels().Error {
		t.Fatalf("unknown name resolved to %s, want ERROR", b.s.Interner.Label(got))
	}
	if !b.s.Bag.HasErrors() {
		t.Fatal("missing-name diagnostic not emitted")
	}
}

func TestGenericRequiresTypeArguments(t *testing.T) {
	b := newBuilder(t)

	b.declareAlias("Box", []ast.TypeExprID{b.typeParam("T")}, b.object(b.prop("value", b.ref("T"))))
	decl := b.s.Decls.AddVariable(ast.VariableDecl{Name: b.atom("v"), Type: b.ref("Box")})
	v := b.declare("v", symbols.FlagValue, decl)

	if got := b.resolved(v); got != b.s.Interner.Sentinels().Error {
		t.Fatalf("bare generic reference resolved to %s, want ERROR", b.s.Interner.Label(got))
	}
}

func TestDefaultedTypeParameter(t *testing.T) {
	b := newBuilder(t)
	s := b.s.Interner.Sentinels()

	// type Box<T = string> = { value: T }; Box and Box<string> agree.
	param := b.expr(ast.TypeExpr{NodeKind: ast.TypeExprTypeParam, Name: b.atom("T"), Index: b.ref("string")})
	b.declareAlias("Box", []ast.TypeExprID{param}, b.object(b.prop("value", b.ref("T"))))

	bare := b.s.Decls.AddVariable(ast.VariableDecl{Name: b.atom("a"), Type: b.ref("Box")})
	explicit := b.s.Decls.AddVariable(ast.VariableDecl{Name: b.atom("c"), Type: b.ref("Box", b.ref("string"))})
	a := b.declare("a", symbols.FlagValue, bare)
	c := b.declare("c", symbols.FlagValue, explicit)

	want := b.objectOf(map[string]types.TypeID{"value": s.String})
	if got := b.resolved(a); got != want {
		t.Fatalf("Box (defaulted) = %s, want %s", b.s.Interner.Label(got), b.s.Interner.Label(want))
	}
	if got := b.resolved(c); got != want {
		t.Fatalf("Box<string> = %s, want %s", b.s.Interner.Label(got), b.s.Interner.Label(want))
	}
}

func TestDiscriminatedNarrowingEndToEnd(t *testing.T) {
	b := newBuilder(t)

	circle := b.object(b.prop("kind", b.strLit("circle")), b.prop("r", b.ref("number")))
	square := b.object(b.prop("kind", b.strLit("square")), b.prop("w", b.ref("number")))
	body := b.expr(ast.TypeExpr{NodeKind: ast.TypeExprUnion, Members: []ast.TypeExprID{circle, square}})
	shape := b.declareAlias("Shape", nil, body)

	resolved := b.resolved(shape)
	guard := narrow.TypeGuard{
		Kind:         narrow.GuardDiscriminant,
		PropertyPath: []types.Atom{b.atom("kind")},
		ValueType:    b.s.Interner.LiteralString(b.atom("circle")),
	}
	got := b.s.NarrowType(b.module, resolved, guard, true)

	members, _ := b.s.Interner.UnionMembers(resolved)
	if len(members) != 2 {
		t.Fatalf("Shape should be a 2-union, got %s", b.s.Interner.Label(resolved))
	}
	wantCircle := b.objectOf(map[string]types.TypeID{
		"kind": b.s.Interner.LiteralString(b.atom("circle")),
		"r":    b.s.Interner.Sentinels().Number,
	})
	if got != wantCircle {
		t.Fatalf("narrowed Shape = %s, want %s", b.s.Interner.Label(got), b.s.Interner.Label(wantCircle))
	}
}

func TestCrossModuleImportResolution(t *testing.T) {
	s := New(checkopts.Default())
	_, libFile := s.AddModule("src/lib")
	_, mainFile := s.AddModule("src/main")

	atom := func(str string) source.StringID { return s.Strings.Intern(str) }
	expr := func(node ast.TypeExpr) ast.TypeExprID { return s.Exprs.Allocate(node, source.Span{}) }

	// src/lib: export interface Point { x: number }
	decl := s.Decls.AddInterface(ast.InterfaceDecl{
		Name: atom("Point"),
		Members: []ast.MemberSyntax{
			{Kind: ast.MemberProperty, Name: atom("x"), Type: expr(ast.TypeExpr{NodeKind: ast.TypeExprReference, Name: atom("number")})},
		},
	})
	point, _ := s.Registry.DeclareLocal(libFile, atom("Point"), symbols.FlagInterface|symbols.FlagType, symbols.Declaration{Decl: decl})
	libFile.ModuleExports.Declare(atom("Point"), point, symbols.FlagInterface, symbols.Declaration{})

	// src/main: import { Point } from "./lib"; let p: Point
	alias := s.Registry.NewSymbol(atom("Point"), symbols.FlagAlias)
	alias.Origin = mainFile.ID
	alias.ImportModule = atom("./lib")
	alias.ImportName = atom("Point")
	alias.HasFrom = true
	mainFile.Locals.Declare(atom("Point"), alias, symbols.FlagAlias, symbols.Declaration{})

	varDecl := s.Decls.AddVariable(ast.VariableDecl{
		Name: atom("p"),
		Type: expr(ast.TypeExpr{NodeKind: ast.TypeExprReference, Name: atom("Point")}),
	})
	p, _ := s.Registry.DeclareLocal(mainFile, atom("p"), symbols.FlagValue, symbols.Declaration{Decl: varDecl})

	metas := []project.ModuleMeta{
		{Path: "src/main", Imports: []project.ImportMeta{{Path: "src/lib"}}},
		{Path: "src/lib"},
	}
	checked := s.CheckProject(metas)
	if len(checked) != 2 {
		t.Fatalf("CheckProject checked %d modules, want 2", len(checked))
	}
	// Dependencies check before dependents.
	if libPath, _ := s.Registry.PathOf(checked[0]); libPath != "src/lib" {
		t.Fatalf("first checked module = %s, want src/lib", libPath)
	}

	mainModule, _ := s.Registry.ModuleByPath("src/main")
	res := s.ResolverFor(mainModule)
	got := res.ResolveType(res.GetTypeOfSymbol(p.ID))
	shape, ok := s.Interner.ObjectShapeOf(got)
	if !ok {
		t.Fatalf("imported interface did not resolve structurally: %s", s.Interner.Label(got))
	}
	if prop, ok := shape.FindProperty(atom("x")); !ok || prop.Type != s.Interner.Sentinels().Number {
		t.Fatalf("Point.x = %+v", prop)
	}
	if s.Bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", s.Bag.Items())
	}
}

func TestInvalidateModuleRebuilds(t *testing.T) {
	b := newBuilder(t)
	s := b.s.Interner.Sentinels()

	b.declareAlias("Box", []ast.TypeExprID{b.typeParam("T")}, b.object(b.prop("value", b.ref("T"))))
	decl := b.s.Decls.AddVariable(ast.VariableDecl{Name: b.atom("v"), Type: b.ref("Box", b.ref("number"))})
	v := b.declare("v", symbols.FlagValue, decl)

	first := b.resolved(v)
	b.s.InvalidateModule(b.module, nil, nil)
	second := b.resolved(v)
	if first != second {
		t.Fatalf("resolution not reproducible across invalidation: %v vs %v", first, second)
	}
	want := b.objectOf(map[string]types.TypeID{"value": s.Number})
	if second != want {
		t.Fatalf("post-invalidation type = %s", b.s.Interner.Label(second))
	}
}
