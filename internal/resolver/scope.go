package resolver

import "surgetype/internal/types"

// paramScope is the stack of type-parameter frames the lowering helper's
// type-name resolver closes over. Class instance construction pushes a frame
// before lowering members and pops it after; nested generics (a method's own
// type parameters inside a generic class) stack naturally.
type paramScope struct {
	frames []map[types.Atom]types.TypeID
}

func (s *paramScope) push(frame map[types.Atom]types.TypeID) {
	s.frames = append(s.frames, frame)
}

func (s *paramScope) pop() {
	if len(s.frames) > 0 {
		s.frames = s.frames[:len(s.frames)-1]
	}
}

// lookup walks innermost-first so a method's `T` shadows its class's `T`.
func (s *paramScope) lookup(name types.Atom) (types.TypeID, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if id, ok := s.frames[i][name]; ok {
			return id, true
		}
	}
	return types.NoTypeID, false
}

// frameFor rebuilds a name->TypeID frame from a cached parameter list, so a
// re-entrant resolution of the same declaration reuses the TypeIDs already
// shared with its published body.
func frameFor(in *types.Interner, params []types.TypeID) map[types.Atom]types.TypeID {
	frame := make(map[types.Atom]types.TypeID, len(params))
	for _, p := range params {
		if info, ok := in.TypeParamInfoOf(p); ok {
			frame[info.Name] = p
		}
	}
	return frame
}
