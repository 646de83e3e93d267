package exports

import (
	"testing"

	"surgetype/internal/checkopts"
	"surgetype/internal/source"
	"surgetype/internal/symbols"
)

type harness struct {
	reg     *symbols.Registry
	strings *source.Interner
	router  *Router
	modules map[string]symbols.ModuleID
	files   map[string]*symbols.File
}

func newHarness(opts checkopts.Options) *harness {
	reg := symbols.NewRegistry()
	strings := source.NewInterner()
	h := &harness{
		reg:     reg,
		strings: strings,
		modules: make(map[string]symbols.ModuleID),
		files:   make(map[string]*symbols.File),
	}
	h.router = New(reg, strings, opts, nil)
	h.router.ResolveSpecifier = func(_ symbols.ModuleID, specifier string) (symbols.ModuleID, bool) {
		id, ok := h.modules[specifier]
		return id, ok
	}
	return h
}

func (h *harness) addModule(name string) *symbols.File {
	id, file := h.reg.NewModule(name)
	h.modules[name] = id
	h.files[name] = file
	return file
}

// export declares a concrete symbol in file's locals and export table.
func (h *harness) export(file *symbols.File, name string, flags symbols.Flags) *symbols.Symbol {
	atom := h.strings.Intern(name)
	sym, _ := h.reg.DeclareLocal(file, atom, flags, symbols.Declaration{})
	file.ModuleExports.Declare(atom, sym, flags, symbols.Declaration{})
	return sym
}

// reExport declares `export { importName as name } from specifier` in file.
func (h *harness) reExport(file *symbols.File, name, importName, specifier string, typeOnly bool) *symbols.Symbol {
	atom := h.strings.Intern(name)
	sym := h.reg.NewSymbol(atom, symbols.FlagAlias)
	sym.Origin = file.ID
	sym.ImportModule = h.strings.Intern(specifier)
	sym.ImportName = h.strings.Intern(importName)
	sym.HasFrom = true
	sym.IsTypeOnly = typeOnly
	file.ModuleExports.Declare(atom, sym, symbols.FlagAlias, symbols.Declaration{})
	return sym
}

func TestResolveDirectExport(t *testing.T) {
	h := newHarness(checkopts.Default())
	a := h.addModule("src/a")
	x := h.export(a, "x", symbols.FlagValue)

	res, ok := h.router.ResolveMember(symbols.NoModuleID, "src/a", h.strings.Intern("x"), source.Span{})
	if !ok || res.Symbol != x.ID {
		t.Fatalf("direct export resolution = %+v, %v", res, ok)
	}
}

func TestResolveReExportChain(t *testing.T) {
	h := newHarness(checkopts.Default())
	a := h.addModule("src/a")
	b := h.addModule("src/b")
	x := h.export(a, "x", symbols.FlagValue)
	h.reExport(b, "y", "x", "src/a", false)

	res, ok := h.router.ResolveMember(symbols.NoModuleID, "src/b", h.strings.Intern("y"), source.Span{})
	if !ok || res.Symbol != x.ID {
		t.Fatalf("re-export chain resolution = %+v, %v", res, ok)
	}
	if res.TypeOnly {
		t.Fatal("plain re-export tagged type-only")
	}
}

func TestTypeOnlyTagPropagates(t *testing.T) {
	h := newHarness(checkopts.Default())
	a := h.addModule("src/a")
	b := h.addModule("src/b")
	x := h.export(a, "x", symbols.FlagInterface|symbols.FlagType)
	h.reExport(b, "y", "x", "src/a", true)

	res, ok := h.router.ResolveMember(symbols.NoModuleID, "src/b", h.strings.Intern("y"), source.Span{})
	if !ok || res.Symbol != x.ID {
		t.Fatalf("type-only re-export resolution = %+v, %v", res, ok)
	}
	if !res.TypeOnly {
		t.Fatal("export type hop lost its type-only tag")
	}
}

func TestExportStarTraversal(t *testing.T) {
	h := newHarness(checkopts.Default())
	a := h.addModule("src/a")
	b := h.addModule("src/b")
	c := h.addModule("src/c")
	x := h.export(a, "x", symbols.FlagValue)
	b.ExportStars = append(b.ExportStars, symbols.StarExport{Specifier: h.strings.Intern("src/a")})
	c.ExportStars = append(c.ExportStars, symbols.StarExport{Specifier: h.strings.Intern("src/b")})

	res, ok := h.router.ResolveMember(symbols.NoModuleID, "src/c", h.strings.Intern("x"), source.Span{})
	if !ok || res.Symbol != x.ID {
		t.Fatalf("export * chain resolution = %+v, %v", res, ok)
	}
}

func TestExportStarAsNamespace(t *testing.T) {
	h := newHarness(checkopts.Default())
	h.addModule("src/a")
	b := h.addModule("src/b")
	b.ExportStars = append(b.ExportStars, symbols.StarExport{
		Specifier: h.strings.Intern("src/a"),
		Alias:     h.strings.Intern("ns"),
	})

	res, ok := h.router.ResolveMember(symbols.NoModuleID, "src/b", h.strings.Intern("ns"), source.Span{})
	if !ok || !res.IsNamespace() || res.Namespace != h.modules["src/a"] {
		t.Fatalf("export * as ns resolution = %+v, %v", res, ok)
	}
}

func TestExportStarCycleTerminates(t *testing.T) {
	h := newHarness(checkopts.Default())
	a := h.addModule("src/a")
	b := h.addModule("src/b")
	a.ExportStars = append(a.ExportStars, symbols.StarExport{Specifier: h.strings.Intern("src/b")})
	b.ExportStars = append(b.ExportStars, symbols.StarExport{Specifier: h.strings.Intern("src/a")})

	if _, ok := h.router.ResolveMember(symbols.NoModuleID, "src/a", h.strings.Intern("missing"), source.Span{}); ok {
		t.Fatal("cyclic star exports resolved a nonexistent name")
	}
}

func TestAliasCycleTerminates(t *testing.T) {
	h := newHarness(checkopts.Default())
	a := h.addModule("src/a")
	b := h.addModule("src/b")
	// a re-exports y from b; b re-exports y from a.
	h.reExport(a, "y", "y", "src/b", false)
	h.reExport(b, "y", "y", "src/a", false)

	if _, ok := h.router.ResolveMember(symbols.NoModuleID, "src/a", h.strings.Intern("y"), source.Span{}); ok {
		t.Fatal("mutually recursive aliases resolved")
	}
}

func TestSyntheticDefaultImport(t *testing.T) {
	opts := checkopts.Default()
	opts.AllowSyntheticDefaultImports = true
	h := newHarness(opts)
	h.addModule("src/a")

	res, ok := h.router.ResolveDefault(symbols.NoModuleID, "src/a", source.Span{})
	if !ok || !res.IsNamespace() || res.Namespace != h.modules["src/a"] {
		t.Fatalf("synthetic default = %+v, %v", res, ok)
	}
}

func TestMissingDefaultWithoutSynthetic(t *testing.T) {
	h := newHarness(checkopts.Default())
	h.addModule("src/a")

	if _, ok := h.router.ResolveDefault(symbols.NoModuleID, "src/a", source.Span{}); ok {
		t.Fatal("missing default resolved without allowSyntheticDefaultImports")
	}
}

func TestExportEquals(t *testing.T) {
	h := newHarness(checkopts.Default())
	a := h.addModule("src/a")

	ns := h.reg.NewSymbol(h.strings.Intern("legacy"), symbols.FlagValueModule|symbols.FlagValue)
	ns.Origin = a.ID
	ns.Exports = symbols.NewTable()
	member := h.reg.NewSymbol(h.strings.Intern("helper"), symbols.FlagFunction|symbols.FlagValue)
	member.Origin = a.ID
	ns.Exports.Declare(h.strings.Intern("helper"), member, symbols.FlagFunction, symbols.Declaration{})
	a.HasExportEquals = true
	a.ExportEqualsSym = ns.ID

	res, ok := h.router.ResolveMember(symbols.NoModuleID, "src/a", h.strings.Intern("helper"), source.Span{})
	if !ok || res.Symbol != member.ID {
		t.Fatalf("export-equals member resolution = %+v, %v", res, ok)
	}

	// `import d from` an export-equals module lands on the target itself.
	def, ok := h.router.ResolveDefault(symbols.NoModuleID, "src/a", source.Span{})
	if !ok || def.Symbol != ns.ID {
		t.Fatalf("export-equals default resolution = %+v, %v", def, ok)
	}
}

func TestLocalReExport(t *testing.T) {
	h := newHarness(checkopts.Default())
	a := h.addModule("src/a")
	atom := h.strings.Intern("x")
	local, _ := h.reg.DeclareLocal(a, atom, symbols.FlagValue, symbols.Declaration{})

	// export { x as y } with no `from`.
	yAtom := h.strings.Intern("y")
	alias := h.reg.NewSymbol(yAtom, symbols.FlagAlias)
	alias.Origin = a.ID
	alias.ImportName = atom
	a.ModuleExports.Declare(yAtom, alias, symbols.FlagAlias, symbols.Declaration{})

	res, ok := h.router.ResolveMember(symbols.NoModuleID, "src/a", yAtom, source.Span{})
	if !ok || res.Symbol != local.ID {
		t.Fatalf("local re-export resolution = %+v, %v", res, ok)
	}
}

func TestFallbackToFileLocals(t *testing.T) {
	h := newHarness(checkopts.Default())
	a := h.addModule("src/a")
	atom := h.strings.Intern("hidden")
	local, _ := h.reg.DeclareLocal(a, atom, symbols.FlagValue, symbols.Declaration{})

	res, ok := h.router.ResolveMember(symbols.NoModuleID, "src/a", atom, source.Span{})
	if !ok || res.Symbol != local.ID {
		t.Fatalf("file-locals fallback = %+v, %v", res, ok)
	}
}
