package typeenv

import (
	"testing"

	"surgetype/internal/defs"
	"surgetype/internal/symbols"
	"surgetype/internal/types"
)

func newEnv() (*Environment, *types.Interner) {
	in := types.NewInterner(nil)
	return New(in, defs.NewStore(), 1), in
}

func TestPoisonedTypesNotCached(t *testing.T) {
	env, in := newEnv()
	s := in.Sentinels()

	env.SetSymbolType(1, s.Error)
	env.SetSymbolType(2, s.Any)
	env.SetSymbolType(3, s.String)

	if _, ok := env.SymbolType(1); ok {
		t.Fatal("ERROR was cached as a symbol type")
	}
	if _, ok := env.SymbolType(2); ok {
		t.Fatal("ANY was cached as a symbol type")
	}
	if got, ok := env.SymbolType(3); !ok || got != s.String {
		t.Fatalf("string not cached: %v, %v", got, ok)
	}
}

func TestQueriesComputeOnce(t *testing.T) {
	env, in := newEnv()
	s := in.Sentinels()

	calls := 0
	env.SetQueries(Queries{
		GetTypeOfSymbol: func(symbols.SymbolID) types.TypeID {
			calls++
			return s.Number
		},
	})

	if got := env.GetTypeOfSymbol(9); got != s.Number {
		t.Fatalf("GetTypeOfSymbol = %v", got)
	}
	if got := env.GetTypeOfSymbol(9); got != s.Number {
		t.Fatalf("GetTypeOfSymbol (cached) = %v", got)
	}
	if calls != 1 {
		t.Fatalf("query ran %d times, want 1", calls)
	}
}

func TestInvalidateByTypeID(t *testing.T) {
	env, in := newEnv()
	s := in.Sentinels()

	env.SetSymbolType(1, s.String)
	env.SetSymbolType(2, s.Number)
	env.SetDeclaredType(3, s.String)

	env.Invalidate(nil, []types.TypeID{s.String})

	if _, ok := env.SymbolType(1); ok {
		t.Fatal("invalidated symbol type survived")
	}
	if _, ok := env.SymbolType(2); !ok {
		t.Fatal("unrelated symbol type dropped")
	}
	if _, ok := env.DeclaredType(3); ok {
		t.Fatal("invalidated declared type survived")
	}
}

func TestOrderSymbolsTypeDefiningFirst(t *testing.T) {
	variable := symbols.NewSymbol(1, 0, symbols.FlagValue)
	iface := symbols.NewSymbol(2, 0, symbols.FlagInterface)
	alias := symbols.NewSymbol(3, 0, symbols.FlagTypeAlias)
	fn := symbols.NewSymbol(4, 0, symbols.FlagFunction)

	ordered := OrderSymbols([]*symbols.Symbol{variable, fn, alias, iface})
	if len(ordered) != 4 {
		t.Fatalf("len = %d", len(ordered))
	}
	if ordered[0].ID != 2 || ordered[1].ID != 3 {
		t.Fatalf("type-defining symbols not first: %v, %v", ordered[0].ID, ordered[1].ID)
	}
	if ordered[2].ID != 1 || ordered[3].ID != 4 {
		t.Fatalf("value symbols not tiebroken by SymbolID: %v, %v", ordered[2].ID, ordered[3].ID)
	}
}

func TestWideningFallsBackToIdentity(t *testing.T) {
	env, in := newEnv()
	s := in.Sentinels()
	if got := env.GetWidenedType(s.String); got != s.String {
		t.Fatalf("unwired widening changed the type: %v", got)
	}
}
