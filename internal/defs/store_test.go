package defs

import (
	"testing"

	"surgetype/internal/types"
)

func TestGetOrCreateIdempotent(t *testing.T) {
	s := NewStore()
	a := s.GetOrCreateDefID(7)
	b := s.GetOrCreateDefID(7)
	if a != b {
		t.Fatalf("same symbol produced two DefIDs: %v, %v", a, b)
	}
	c := s.GetOrCreateDefID(8)
	if c == a {
		t.Fatal("distinct symbols share a DefID")
	}
	if sym, ok := s.SymbolOf(a); !ok || sym != 7 {
		t.Fatalf("SymbolOf = %v, %v", sym, ok)
	}
	if id, ok := s.DefIDOf(7); !ok || id != a {
		t.Fatalf("DefIDOf = %v, %v", id, ok)
	}
}

func TestAnonymousDefIDs(t *testing.T) {
	s := NewStore()
	a := s.CreateAnonymousDefID()
	b := s.CreateAnonymousDefID()
	if a == b {
		t.Fatal("anonymous DefIDs collide")
	}
	if _, ok := s.SymbolOf(a); ok {
		t.Fatal("anonymous DefID claims a symbol")
	}
}

func TestBodyPublication(t *testing.T) {
	s := NewStore()
	id := s.GetOrCreateDefID(1)

	if _, ok := s.GetBody(id); ok {
		t.Fatal("body reported before publication")
	}
	s.SetBody(id, types.TypeID(42))
	if body, ok := s.GetBody(id); !ok || body != 42 {
		t.Fatalf("GetBody = %v, %v", body, ok)
	}
}

func TestTypeParamsNegativeCache(t *testing.T) {
	s := NewStore()
	id := s.GetOrCreateDefID(1)

	if _, ok := s.GetTypeParams(id); ok {
		t.Fatal("params reported before publication")
	}
	if s.HasNoTypeParams(id) {
		t.Fatal("negative cache set before publication")
	}

	s.SetTypeParams(id, nil)
	if params, ok := s.GetTypeParams(id); !ok || len(params) != 0 {
		t.Fatalf("published empty params = %v, %v", params, ok)
	}
	if !s.HasNoTypeParams(id) {
		t.Fatal("negative cache not set for empty params")
	}

	generic := s.GetOrCreateDefID(2)
	s.SetTypeParams(generic, []types.TypeID{5, 6})
	if s.HasNoTypeParams(generic) {
		t.Fatal("negative cache set for a generic declaration")
	}
	if params, _ := s.GetTypeParams(generic); len(params) != 2 {
		t.Fatalf("params = %v", params)
	}
}

func TestInvalidDefIDLookups(t *testing.T) {
	s := NewStore()
	if _, ok := s.GetBody(NoDefID); ok {
		t.Fatal("zero DefID resolved a body")
	}
	if _, ok := s.GetBody(DefID(99)); ok {
		t.Fatal("out-of-range DefID resolved a body")
	}
	// Writes to invalid ids are dropped, not panics.
	s.SetBody(DefID(99), types.TypeID(1))
	s.SetTypeParams(DefID(99), nil)
}
