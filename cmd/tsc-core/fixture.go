package main

import (
	"math"

	"surgetype/internal/ast"
	"surgetype/internal/checkopts"
	"surgetype/internal/session"
	"surgetype/internal/source"
	"surgetype/internal/symbols"
)

// fixture constructs the in-memory program the harness checks:
//
//	type Box<T> = { value: T }
//	interface Person { name: string; age: number }
//	interface Merged { a: number }
//	interface Merged { b: string }
//	type Shape = { kind: "circle"; r: number } | { kind: "square"; w: number }
//	type Keys = keyof Person
//	type PersonValue = Person[keyof Person]
//	enum Color { Red, Green }
//	let boxed: Box<number>
//	let shape: Shape
//
// The parser and binder are external collaborators; this builder stands in
// for them, producing the same arena and symbol-table shapes they would.
type fixture struct {
	Session *session.CheckSession
	Module  symbols.ModuleID
	File    *symbols.File
}

func buildFixture(opts checkopts.Options) *fixture {
	s := session.New(opts)
	module, file := s.AddModule("src/main")

	f := &fixture{Session: s, Module: module, File: file}

	f.declareBoxAlias()
	f.declarePersonInterface()
	f.declareMergedInterface()
	f.declareShapeAlias()
	f.declareKeysAlias()
	f.declarePersonValueAlias()
	f.declareColorEnum()
	f.declareVariable("boxed", f.refWithArgs("Box", f.ref("number")))
	f.declareVariable("shape", f.ref("Shape"))

	return f
}

func (f *fixture) atom(s string) source.StringID {
	return f.Session.Strings.Intern(s)
}

func (f *fixture) expr(node ast.TypeExpr) ast.TypeExprID {
	return f.Session.Exprs.Allocate(node, source.Span{})
}

func (f *fixture) ref(name string) ast.TypeExprID {
	return f.expr(ast.TypeExpr{NodeKind: ast.TypeExprReference, Name: f.atom(name)})
}

func (f *fixture) refWithArgs(name string, args ...ast.TypeExprID) ast.TypeExprID {
	return f.expr(ast.TypeExpr{NodeKind: ast.TypeExprReference, Name: f.atom(name), Args: args})
}

func (f *fixture) stringLit(s string) ast.TypeExprID {
	return f.expr(ast.TypeExpr{NodeKind: ast.TypeExprLiteral, Literal: ast.LiteralSyntax{
		Kind: ast.LiteralSyntaxString,
		Str:  f.atom(s),
	}})
}

func (f *fixture) object(props ...ast.PropertySyntax) ast.TypeExprID {
	return f.expr(ast.TypeExpr{NodeKind: ast.TypeExprObjectLiteral, Properties: props})
}

func (f *fixture) prop(name string, t ast.TypeExprID) ast.PropertySyntax {
	return ast.PropertySyntax{Name: f.atom(name), Type: t}
}

func (f *fixture) declare(name string, flags symbols.Flags, decl ast.DeclID) *symbols.Symbol {
	sym, _ := f.Session.Registry.DeclareLocal(f.File, f.atom(name), flags, symbols.Declaration{Decl: decl})
	return sym
}

func (f *fixture) declareBoxAlias() {
	param := f.expr(ast.TypeExpr{NodeKind: ast.TypeExprTypeParam, Name: f.atom("T")})
	body := f.object(f.prop("value", f.ref("T")))
	decl := f.Session.Decls.AddTypeAlias(ast.TypeAliasDecl{
		Name:       f.atom("Box"),
		TypeParams: []ast.TypeExprID{param},
		Aliased:    body,
	})
	f.declare("Box", symbols.FlagTypeAlias|symbols.FlagType, decl)
}

func (f *fixture) declarePersonInterface() {
	decl := f.Session.Decls.AddInterface(ast.InterfaceDecl{
		Name: f.atom("Person"),
		Members: []ast.MemberSyntax{
			{Kind: ast.MemberProperty, Name: f.atom("name"), Type: f.ref("string")},
			{Kind: ast.MemberProperty, Name: f.atom("age"), Type: f.ref("number")},
		},
	})
	f.declare("Person", symbols.FlagInterface|symbols.FlagType, decl)
}

func (f *fixture) declareMergedInterface() {
	first := f.Session.Decls.AddInterface(ast.InterfaceDecl{
		Name: f.atom("Merged"),
		Members: []ast.MemberSyntax{
			{Kind: ast.MemberProperty, Name: f.atom("a"), Type: f.ref("number")},
		},
	})
	second := f.Session.Decls.AddInterface(ast.InterfaceDecl{
		Name: f.atom("Merged"),
		Members: []ast.MemberSyntax{
			{Kind: ast.MemberProperty, Name: f.atom("b"), Type: f.ref("string")},
		},
	})
	f.declare("Merged", symbols.FlagInterface|symbols.FlagType, first)
	f.declare("Merged", symbols.FlagInterface|symbols.FlagType, second)
}

func (f *fixture) declareShapeAlias() {
	circle := f.object(
		f.prop("kind", f.stringLit("circle")),
		f.prop("r", f.ref("number")),
	)
	square := f.object(
		f.prop("kind", f.stringLit("square")),
		f.prop("w", f.ref("number")),
	)
	body := f.expr(ast.TypeExpr{NodeKind: ast.TypeExprUnion, Members: []ast.TypeExprID{circle, square}})
	decl := f.Session.Decls.AddTypeAlias(ast.TypeAliasDecl{Name: f.atom("Shape"), Aliased: body})
	f.declare("Shape", symbols.FlagTypeAlias|symbols.FlagType, decl)
}

func (f *fixture) declareKeysAlias() {
	body := f.expr(ast.TypeExpr{NodeKind: ast.TypeExprKeyOf, Elem: f.ref("Person")})
	decl := f.Session.Decls.AddTypeAlias(ast.TypeAliasDecl{Name: f.atom("Keys"), Aliased: body})
	f.declare("Keys", symbols.FlagTypeAlias|symbols.FlagType, decl)
}

func (f *fixture) declarePersonValueAlias() {
	keys := f.expr(ast.TypeExpr{NodeKind: ast.TypeExprKeyOf, Elem: f.ref("Person")})
	body := f.expr(ast.TypeExpr{
		NodeKind: ast.TypeExprIndexedAccess,
		Object:   f.ref("Person"),
		Index:    keys,
	})
	decl := f.Session.Decls.AddTypeAlias(ast.TypeAliasDecl{Name: f.atom("PersonValue"), Aliased: body})
	f.declare("PersonValue", symbols.FlagTypeAlias|symbols.FlagType, decl)
}

func (f *fixture) declareColorEnum() {
	decl := f.Session.Decls.AddEnum(ast.EnumDecl{
		Name: f.atom("Color"),
		Members: []ast.EnumMemberSyntax{
			{Name: f.atom("Red")},
			{Name: f.atom("Green")},
		},
	})
	f.declare("Color", symbols.FlagEnum|symbols.FlagType|symbols.FlagValue, decl)
}

func (f *fixture) declareVariable(name string, typeExpr ast.TypeExprID) {
	decl := f.Session.Decls.AddVariable(ast.VariableDecl{Name: f.atom(name), Type: typeExpr})
	f.declare(name, symbols.FlagValue, decl)
}

// numberLit is unused by the default fixture but kept for ad-hoc harness
// experiments with numeric literal types.
func (f *fixture) numberLit(v float64) ast.TypeExprID {
	return f.expr(ast.TypeExpr{NodeKind: ast.TypeExprLiteral, Literal: ast.LiteralSyntax{
		Kind:    ast.LiteralSyntaxNumber,
		NumBits: math.Float64bits(v),
	}})
}
