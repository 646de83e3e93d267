// Package defs implements the definition store: the bidirectional
// SymbolID<->DefID map plus the per-DefID resolved body and
// type-parameter cache that the resolver and application evaluator share.
package defs

import "surgetype/internal/types"

// entry holds everything the store tracks for one DefID.
type entry struct {
	symbol    uint32
	hasSymbol bool
	body      types.TypeID
	hasBody   bool
	// typeParams holds the declared type-parameter TypeIDs in order, the
	// same TypeIDs referenced as TypeParameter leaves inside body. Storing
	// the TypeIDs themselves (rather than a copy of their Name/Constraint/
	// Default) is what lets C5's substitution map match leaves inside body
	// by identity; a param's metadata is always one TypeParamInfoOf(id)
	// call away via the interner.
	typeParams    []types.TypeID
	hasTypeParams bool
	// noTypeParams is the negative cache: true once we've determined this
	// DefID has no type parameters, distinguishing "not yet computed" from
	// "computed, and there are none".
	noTypeParams bool
}

// Store is the session-wide Definition Store. Safe for concurrent reads;
// writes are expected to be serialized by the single-threaded checking
// contract (see internal/session).
type Store struct {
	entries  []entry // 1-based; index 0 unused so DefID zero value is invalid
	bySymbol map[uint32]DefID
}

// NewStore constructs an empty Definition Store.
func NewStore() *Store {
	return &Store{
		entries:  make([]entry, 1),
		bySymbol: make(map[uint32]DefID),
	}
}

// GetOrCreateDefID returns the DefID for symbol, allocating one on first
// touch. Idempotent: repeated calls for the same symbol return the same
// DefID.
func (s *Store) GetOrCreateDefID(symbol uint32) DefID {
	if id, ok := s.bySymbol[symbol]; ok {
		return id
	}
	id := DefID(len(s.entries))
	s.entries = append(s.entries, entry{symbol: symbol, hasSymbol: true})
	s.bySymbol[symbol] = id
	return id
}

// CreateAnonymousDefID allocates a DefID with no backing SymbolID, used for
// synthetic declarations (e.g. a mapped type's inference scope) that need
// DefId-based cycle detection but were never named by the binder.
func (s *Store) CreateAnonymousDefID() DefID {
	id := DefID(len(s.entries))
	s.entries = append(s.entries, entry{})
	return id
}

// SymbolOf returns the SymbolID a DefID was created for, if any.
func (s *Store) SymbolOf(id DefID) (uint32, bool) {
	e, ok := s.lookup(id)
	if !ok || !e.hasSymbol {
		return 0, false
	}
	return e.symbol, true
}

// DefIDOf returns the DefID already allocated for symbol, without creating
// one.
func (s *Store) DefIDOf(symbol uint32) (DefID, bool) {
	id, ok := s.bySymbol[symbol]
	return id, ok
}

func (s *Store) lookup(id DefID) (*entry, bool) {
	if !id.IsValid() || int(id) >= len(s.entries) {
		return nil, false
	}
	return &s.entries[id], true
}

// SetBody publishes the resolved body TypeID for a DefID. Called once
// resolution of the declaration completes; see the Symbol Resolver's cycle
// handling, which returns Lazy(id) to in-flight callers until this is
// called.
func (s *Store) SetBody(id DefID, body types.TypeID) {
	e, ok := s.lookup(id)
	if !ok {
		return
	}
	e.body = body
	e.hasBody = true
}

// GetBody returns the published body TypeID for a DefID, if resolution has
// completed.
func (s *Store) GetBody(id DefID) (types.TypeID, bool) {
	e, ok := s.lookup(id)
	if !ok || !e.hasBody {
		return types.NoTypeID, false
	}
	return e.body, true
}

// SetTypeParams publishes the declared type-parameter TypeIDs for a DefID,
// in declaration order. An empty slice is a meaningful value distinct from
// "not yet computed": it populates the negative cache so repeated
// GetTypeParams calls skip recomputation.
func (s *Store) SetTypeParams(id DefID, params []types.TypeID) {
	e, ok := s.lookup(id)
	if !ok {
		return
	}
	e.typeParams = params
	e.hasTypeParams = true
	e.noTypeParams = len(params) == 0
}

// GetTypeParams returns the cached type-parameter TypeIDs for a DefID, in
// declaration order. The second result is false only when no list has been
// published yet; a published empty list returns (nil, true).
func (s *Store) GetTypeParams(id DefID) ([]types.TypeID, bool) {
	e, ok := s.lookup(id)
	if !ok || !e.hasTypeParams {
		return nil, false
	}
	return e.typeParams, true
}

// HasNoTypeParams reports whether id is known, via the negative cache, to
// carry zero type parameters. Callers use this to skip the params fetch
// entirely on the hot path for non-generic declarations.
func (s *Store) HasNoTypeParams(id DefID) bool {
	e, ok := s.lookup(id)
	return ok && e.hasTypeParams && e.noTypeParams
}
