// Package generics implements the application evaluator: instantiating
// `Application(base, args)` into its substituted, further reduced
// structural form.
package generics

import (
	"surgetype/internal/defs"
	"surgetype/internal/metatypes"
	"surgetype/internal/types"
)

// MaxInstantiationDepth bounds recursive application evaluation so a
// pathological (or mutually recursive) generic cannot overflow the stack.
const MaxInstantiationDepth = 64

// Evaluator instantiates generic applications. It delegates meta-type
// reduction (mapped/conditional/keyof/indexed-access) to a Reducer so this
// package never duplicates that logic.
type Evaluator struct {
	In      *types.Interner
	Defs    *defs.Store
	Reducer *metatypes.Reducer

	cache      map[types.TypeID]types.TypeID
	evaluating map[types.TypeID]bool
	depth      int
}

// New constructs an Evaluator sharing the session's interner, definition
// store, and meta-type reducer.
func New(in *types.Interner, store *defs.Store, reducer *metatypes.Reducer) *Evaluator {
	return &Evaluator{
		In:         in,
		Defs:       store,
		Reducer:    reducer,
		cache:      make(map[types.TypeID]types.TypeID),
		evaluating: make(map[types.TypeID]bool),
	}
}

// Evaluate reduces id to its fully instantiated and meta-reduced
// structural form: resolve the base declaration's body and parameters,
// substitute the (default-filled) arguments, then re-evaluate and
// meta-reduce whatever the substitution surfaced.
func (e *Evaluator) Evaluate(id types.TypeID) types.TypeID {
	if !e.In.IsGeneric(id) {
		return id
	}
	if cached, ok := e.cache[id]; ok {
		return cached
	}
	if e.evaluating[id] {
		return id
	}
	if e.depth >= MaxInstantiationDepth {
		return id
	}

	e.evaluating[id] = true
	e.depth++
	defer func() {
		e.depth--
		delete(e.evaluating, id)
	}()

	info, ok := e.In.ApplicationInfoOf(id)
	if !ok {
		return id
	}

	defID, ok := e.baseDefID(info.Base)
	if !ok {
		return id
	}
	body, hasBody := e.Defs.GetBody(defID)
	if !hasBody {
		return id
	}
	params, _ := e.Defs.GetTypeParams(defID)
	if len(params) == 0 {
		return body
	}

	args := e.evaluateArgs(info.Args)
	args = e.fillDefaults(params, args)

	subst := make(map[types.TypeID]types.TypeID, len(params))
	for i, p := range params {
		if i < len(args) {
			subst[p] = args[i]
		}
	}

	if distributed, ok := e.distributeConditional(body, subst); ok {
		cacheable := !containsTypeParameter(e.In, distributed, make(map[types.TypeID]bool))
		if cacheable {
			e.cache[id] = distributed
		}
		return distributed
	}

	instantiated := e.In.Substitute(body, subst)
	instantiated = e.Evaluate(instantiated)
	instantiated = e.reduceMeta(instantiated)

	cacheable := !containsTypeParameter(e.In, instantiated, make(map[types.TypeID]bool))
	if cacheable {
		e.cache[id] = instantiated
	}
	return instantiated
}

// baseDefID resolves an Application's base to the DefId it names. The base
// is ordinarily a Lazy(DefId) (an as-yet-unresolved reference to a generic
// declaration); other shapes are not presently instantiable.
func (e *Evaluator) baseDefID(base types.TypeID) (defs.DefID, bool) {
	symbol, ok := e.In.LazyDefID(base)
	if !ok {
		return defs.NoDefID, false
	}
	return defs.DefID(symbol), true
}

func (e *Evaluator) evaluateArgs(args []types.TypeID) []types.TypeID {
	out := make([]types.TypeID, len(args))
	for i, a := range args {
		out[i] = e.Evaluate(a)
	}
	return out
}

// fillDefaults pads a short argument list with each trailing parameter's
// default, then truncates an overlong one: arity is assumed validated (and
// diagnosed) by an earlier checking phase.
func (e *Evaluator) fillDefaults(params, args []types.TypeID) []types.TypeID {
	if len(args) > len(params) {
		return args[:len(params)]
	}
	if len(args) == len(params) {
		return args
	}
	out := make([]types.TypeID, len(params))
	copy(out, args)
	for i := len(args); i < len(params); i++ {
		info, ok := e.In.TypeParamInfoOf(params[i])
		if ok && info.Default != types.NoTypeID {
			out[i] = info.Default
		} else {
			out[i] = e.In.Sentinels().Unknown
		}
	}
	return out
}

// distributeConditional implements conditional distributivity over unions:
// when the application's body is a conditional whose check type is a bare
// type parameter being substituted with a union, each member instantiates
// separately and the results union. Distribution must happen before
// substitution — afterwards the body no longer knows its check type was a
// bare parameter.
func (e *Evaluator) distributeConditional(body types.TypeID, subst map[types.TypeID]types.TypeID) (types.TypeID, bool) {
	cond, ok := e.In.ConditionalTypeOf(body)
	if !ok {
		return types.NoTypeID, false
	}
	repl, isSubst := subst[cond.CheckType]
	if !isSubst {
		return types.NoTypeID, false
	}
	members, isUnion := e.In.UnionMembers(repl)
	if !isUnion {
		return types.NoTypeID, false
	}

	out := make([]types.TypeID, 0, len(members))
	for _, m := range members {
		memberSubst := make(map[types.TypeID]types.TypeID, len(subst))
		for k, v := range subst {
			memberSubst[k] = v
		}
		memberSubst[cond.CheckType] = m
		inst := e.In.Substitute(body, memberSubst)
		inst = e.Evaluate(inst)
		inst = e.reduceMeta(inst)
		out = append(out, inst)
	}
	return e.In.Union(out), true
}

// reduceMeta runs the meta-type reducer over whatever the substitution
// surfaced: a Mapped/Conditional/KeyOf/IndexAccess node that only became
// concrete once the application's type arguments were substituted in.
func (e *Evaluator) reduceMeta(id types.TypeID) types.TypeID {
	if e.Reducer == nil {
		return id
	}
	t, ok := e.In.Lookup(id)
	if !ok {
		return id
	}
	switch t.Kind {
	case types.KindMapped:
		return e.Reducer.Mapped(id)
	case types.KindConditional:
		return e.Reducer.Conditional(id)
	case types.KindKeyOf:
		return e.Reducer.KeyOf(t.Elem)
	case types.KindIndexAccess:
		obj, idx, _ := e.In.IndexAccessParts(id)
		return e.Reducer.IndexAccess(obj, idx)
	default:
		return id
	}
}

func containsTypeParameter(in *types.Interner, id types.TypeID, seen map[types.TypeID]bool) bool {
	if seen[id] {
		return false
	}
	seen[id] = true
	t, ok := in.Lookup(id)
	if !ok {
		return false
	}
	switch t.Kind {
	case types.KindTypeParameter:
		return true
	case types.KindArray, types.KindReadonly, types.KindKeyOf:
		return containsTypeParameter(in, t.Elem, seen)
	case types.KindIndexAccess:
		return containsTypeParameter(in, t.Elem, seen) || containsTypeParameter(in, t.Idx, seen)
	case types.KindUnion:
		members, _ := in.UnionMembers(id)
		for _, m := range members {
			if containsTypeParameter(in, m, seen) {
				return true
			}
		}
	case types.KindIntersection:
		members, _ := in.IntersectionMembers(id)
		for _, m := range members {
			if containsTypeParameter(in, m, seen) {
				return true
			}
		}
	case types.KindTuple:
		info, _ := in.TupleInfoOf(id)
		for _, elem := range info.Elems {
			if containsTypeParameter(in, elem.Type, seen) {
				return true
			}
		}
	case types.KindApplication:
		appInfo, _ := in.ApplicationInfoOf(id)
		if containsTypeParameter(in, appInfo.Base, seen) {
			return true
		}
		for _, a := range appInfo.Args {
			if containsTypeParameter(in, a, seen) {
				return true
			}
		}
	}
	return false
}
