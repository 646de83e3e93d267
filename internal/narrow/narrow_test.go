package narrow

import (
	"math"
	"testing"

	"surgetype/internal/types"
)

func newEngine() (*Engine, *types.Interner) {
	in := types.NewInterner(nil)
	return New(in), in
}

func objectWith(in *types.Interner, props map[string]types.TypeID) types.TypeID {
	shape := types.ObjectShape{}
	for name, t := range props {
		shape.Properties = append(shape.Properties, types.PropertyInfo{
			Name: in.Strings.Intern(name), Type: t, WriteType: t,
		})
	}
	return in.Object(shape)
}

func TestNarrowTypeofUnion(t *testing.T) {
	e, in := newEngine()
	s := in.Sentinels()
	src := in.Union([]types.TypeID{s.String, s.Number})

	got := e.NarrowType(src, TypeGuard{Kind: GuardTypeof, Typeof: TypeofString}, true)
	if got != s.String {
		t.Fatalf("typeof string true branch = %v, want %v", got, s.String)
	}
	got = e.NarrowType(src, TypeGuard{Kind: GuardTypeof, Typeof: TypeofString}, false)
	if got != s.Number {
		t.Fatalf("typeof string false branch = %v, want %v", got, s.Number)
	}
}

func TestNarrowTypeofUnknownToObject(t *testing.T) {
	e, in := newEngine()
	s := in.Sentinels()

	got := e.NarrowType(s.Unknown, TypeGuard{Kind: GuardTypeof, Typeof: TypeofObject}, true)
	want := in.Union([]types.TypeID{s.Object, s.Null})
	if got != want {
		t.Fatalf("typeof object on unknown = %v, want %v", got, want)
	}
}

func TestNarrowTypeofAnyNarrowsToTarget(t *testing.T) {
	e, in := newEngine()
	s := in.Sentinels()

	if got := e.NarrowType(s.Any, TypeGuard{Kind: GuardTypeof, Typeof: TypeofString}, true); got != s.String {
		t.Fatalf("typeof string on any = %v, want %v", got, s.String)
	}
}

func TestNarrowDiscriminant(t *testing.T) {
	e, in := newEngine()
	s := in.Sentinels()

	kind := in.Strings.Intern("kind")
	circleKind := in.LiteralString(in.Strings.Intern("circle"))
	squareKind := in.LiteralString(in.Strings.Intern("square"))
	circle := objectWith(in, map[string]types.TypeID{"kind": circleKind, "r": s.Number})
	square := objectWith(in, map[string]types.TypeID{"kind": squareKind, "w": s.Number})
	shape := in.Union([]types.TypeID{circle, square})

	guard := TypeGuard{Kind: GuardDiscriminant, PropertyPath: []types.Atom{kind}, ValueType: circleKind}

	if got := e.NarrowType(shape, guard, true); got != circle {
		t.Fatalf("discriminant true branch = %v, want circle %v", got, circle)
	}
	if got := e.NarrowType(shape, guard, false); got != square {
		t.Fatalf("discriminant false branch = %v, want square %v", got, square)
	}
}

func TestNarrowDiscriminantNestedPath(t *testing.T) {
	e, in := newEngine()
	s := in.Sentinels()

	tag := in.LiteralString(in.Strings.Intern("a"))
	inner := objectWith(in, map[string]types.TypeID{"tag": tag})
	outerA := objectWith(in, map[string]types.TypeID{"meta": inner, "x": s.Number})
	otherTag := in.LiteralString(in.Strings.Intern("b"))
	outerB := objectWith(in, map[string]types.TypeID{"meta": objectWith(in, map[string]types.TypeID{"tag": otherTag}), "y": s.String})
	src := in.Union([]types.TypeID{outerA, outerB})

	guard := TypeGuard{
		Kind:         GuardDiscriminant,
		PropertyPath: []types.Atom{in.Strings.Intern("meta"), in.Strings.Intern("tag")},
		ValueType:    tag,
	}
	if got := e.NarrowType(src, guard, true); got != outerA {
		t.Fatalf("nested discriminant = %v, want %v", got, outerA)
	}
}

func TestNarrowNullish(t *testing.T) {
	e, in := newEngine()
	s := in.Sentinels()
	src := in.Union([]types.TypeID{s.String, s.Null, s.Undefined})

	if got := e.NarrowType(src, TypeGuard{Kind: GuardNullishEquality}, false); got != s.String {
		t.Fatalf("nullish false branch = %v, want %v", got, s.String)
	}
	want := in.Union([]types.TypeID{s.Null, s.Undefined})
	if got := e.NarrowType(src, TypeGuard{Kind: GuardNullishEquality}, true); got != want {
		t.Fatalf("nullish true branch = %v, want %v", got, want)
	}
}

func TestNarrowTruthy(t *testing.T) {
	e, in := newEngine()
	s := in.Sentinels()
	empty := in.LiteralString(in.Strings.Intern(""))
	zero := in.LiteralNumberBits(math.Float64bits(0))
	src := in.Union([]types.TypeID{s.String, s.Null, s.Undefined, empty, zero, s.BooleanFalse})

	got := e.NarrowType(src, TypeGuard{Kind: GuardTruthy}, true)
	if got != s.String {
		t.Fatalf("truthy true branch = %v, want %v", got, s.String)
	}
	falsy := e.NarrowType(src, TypeGuard{Kind: GuardTruthy}, false)
	want := in.Union([]types.TypeID{s.Null, s.Undefined, empty, zero, s.BooleanFalse})
	if falsy != want {
		t.Fatalf("truthy false branch = %v, want %v", falsy, want)
	}
}

func TestNarrowLiteralEqualityBoolean(t *testing.T) {
	e, in := newEngine()
	s := in.Sentinels()

	if got := e.NarrowType(s.Boolean, TypeGuard{Kind: GuardLiteralEquality, Literal: s.BooleanTrue}, true); got != s.BooleanTrue {
		t.Fatalf("boolean === true = %v, want %v", got, s.BooleanTrue)
	}
	if got := e.NarrowType(s.Boolean, TypeGuard{Kind: GuardLiteralEquality, Literal: s.BooleanTrue}, false); got != s.BooleanFalse {
		t.Fatalf("boolean !== true = %v, want %v", got, s.BooleanFalse)
	}
	if got := e.NarrowType(s.Boolean, TypeGuard{Kind: GuardLiteralEquality, Literal: s.BooleanFalse}, false); got != s.BooleanTrue {
		t.Fatalf("boolean !== false = %v, want %v", got, s.BooleanTrue)
	}
}

func TestNarrowLiteralEqualityUnion(t *testing.T) {
	e, in := newEngine()
	litA := in.LiteralString(in.Strings.Intern("a"))
	litB := in.LiteralString(in.Strings.Intern("b"))
	src := in.Union([]types.TypeID{litA, litB})

	if got := e.NarrowType(src, TypeGuard{Kind: GuardLiteralEquality, Literal: litA}, true); got != litA {
		t.Fatalf("literal equality true = %v, want %v", got, litA)
	}
	if got := e.NarrowType(src, TypeGuard{Kind: GuardLiteralEquality, Literal: litA}, false); got != litB {
		t.Fatalf("literal equality false = %v, want %v", got, litB)
	}
}

func TestNarrowInstanceof(t *testing.T) {
	e, in := newEngine()
	s := in.Sentinels()

	instance := objectWith(in, map[string]types.TypeID{"x": s.Number})
	ctor := in.Function(types.FunctionShape{
		Signature:     types.Signature{ReturnType: instance},
		IsConstructor: true,
	})

	src := in.Union([]types.TypeID{instance, s.String})
	got := e.NarrowType(src, TypeGuard{Kind: GuardInstanceof, ConstructorType: ctor}, true)
	if got != instance {
		t.Fatalf("instanceof true branch = %v, want %v", got, instance)
	}
	got = e.NarrowType(src, TypeGuard{Kind: GuardInstanceof, ConstructorType: ctor}, false)
	if got != s.String {
		t.Fatalf("instanceof false branch = %v, want %v", got, s.String)
	}
}

func TestNarrowInstanceofTypeParameter(t *testing.T) {
	e, in := newEngine()
	s := in.Sentinels()

	instance := objectWith(in, map[string]types.TypeID{"x": s.Number})
	ctor := in.Function(types.FunctionShape{
		Signature:     types.Signature{ReturnType: instance},
		IsConstructor: true,
	})
	tParam := in.TypeParameter(types.TypeParamInfo{Name: in.Strings.Intern("T"), Constraint: s.Object})
	src := in.Union([]types.TypeID{tParam, s.Number})

	got := e.NarrowType(src, TypeGuard{Kind: GuardInstanceof, ConstructorType: ctor}, true)
	want := in.Intersection([]types.TypeID{tParam, instance})
	if got != want {
		t.Fatalf("instanceof on type param = %v, want %v", got, want)
	}
}

func TestNarrowInstanceofAny(t *testing.T) {
	e, in := newEngine()
	s := in.Sentinels()
	instance := objectWith(in, map[string]types.TypeID{"x": s.Number})
	ctor := in.Function(types.FunctionShape{
		Signature:     types.Signature{ReturnType: instance},
		IsConstructor: true,
	})
	if got := e.NarrowType(s.Any, TypeGuard{Kind: GuardInstanceof, ConstructorType: ctor}, true); got != instance {
		t.Fatalf("instanceof on any = %v, want %v", got, instance)
	}
}

func TestNarrowInProperty(t *testing.T) {
	e, in := newEngine()
	s := in.Sentinels()
	withA := objectWith(in, map[string]types.TypeID{"a": s.Number})
	withB := objectWith(in, map[string]types.TypeID{"b": s.String})
	src := in.Union([]types.TypeID{withA, withB})

	guard := TypeGuard{Kind: GuardInProperty, PropertyName: in.Strings.Intern("a")}
	if got := e.NarrowType(src, guard, true); got != withA {
		t.Fatalf("in-property true branch = %v, want %v", got, withA)
	}
	if got := e.NarrowType(src, guard, false); got != withB {
		t.Fatalf("in-property false branch = %v, want %v", got, withB)
	}
}

func TestNarrowPredicate(t *testing.T) {
	e, in := newEngine()
	s := in.Sentinels()
	target := objectWith(in, map[string]types.TypeID{"x": s.Number})
	other := objectWith(in, map[string]types.TypeID{"y": s.String})
	src := in.Union([]types.TypeID{target, other})

	guard := TypeGuard{Kind: GuardPredicate, PredicateType: target}
	if got := e.NarrowType(src, guard, true); got != target {
		t.Fatalf("predicate true branch = %v, want %v", got, target)
	}

	// An asserts predicate's false branch never continues: source unchanged.
	assertsGuard := TypeGuard{Kind: GuardPredicate, PredicateType: target, Asserts: true}
	if got := e.NarrowType(src, assertsGuard, false); got != src {
		t.Fatalf("asserts false branch = %v, want source %v", got, src)
	}
}

func TestNarrowArray(t *testing.T) {
	e, in := newEngine()
	s := in.Sentinels()
	arr := in.Array(s.String)
	src := in.Union([]types.TypeID{arr, s.Number})

	if got := e.NarrowType(src, TypeGuard{Kind: GuardArray}, true); got != arr {
		t.Fatalf("Array.isArray true branch = %v, want %v", got, arr)
	}
	if got := e.NarrowType(src, TypeGuard{Kind: GuardArray}, false); got != s.Number {
		t.Fatalf("Array.isArray false branch = %v, want %v", got, s.Number)
	}
	if got := e.NarrowType(s.Unknown, TypeGuard{Kind: GuardArray}, true); got != in.Array(s.Any) {
		t.Fatalf("Array.isArray on unknown = %v, want any[]", got)
	}
}

func TestNarrowArrayElementPredicate(t *testing.T) {
	e, in := newEngine()
	s := in.Sentinels()

	guard := TypeGuard{Kind: GuardArrayElementPredicate, ElementType: s.String}
	if got := e.NarrowType(in.Array(s.Unknown), guard, true); got != in.Array(s.String) {
		t.Fatalf("every() on unknown[] = %v, want string[]", got)
	}

	tup := in.Tuple([]types.TupleElem{{Type: s.Unknown}, {Type: s.Unknown}})
	want := in.Tuple([]types.TupleElem{{Type: s.String}, {Type: s.String}})
	if got := e.NarrowType(tup, guard, true); got != want {
		t.Fatalf("every() on tuple = %v, want %v", got, want)
	}

	// False branch is a no-op.
	if got := e.NarrowType(in.Array(s.Unknown), guard, false); got != in.Array(s.Unknown) {
		t.Fatalf("every() false branch changed the type: %v", got)
	}
}

func TestNarrowIdempotence(t *testing.T) {
	e, in := newEngine()
	s := in.Sentinels()
	src := in.Union([]types.TypeID{s.String, s.Number, s.Null})

	guards := []TypeGuard{
		{Kind: GuardTypeof, Typeof: TypeofString},
		{Kind: GuardNullishEquality},
		{Kind: GuardTruthy},
	}
	for _, g := range guards {
		once := e.NarrowType(src, g, true)
		twice := e.NarrowType(once, g, true)
		if once != twice {
			t.Fatalf("guard %v not idempotent: %v then %v", g.Kind, once, twice)
		}
	}
}

func TestNarrowExcludingTypesPlural(t *testing.T) {
	e, in := newEngine()
	s := in.Sentinels()
	src := in.Union([]types.TypeID{s.String, s.Number, s.Boolean})

	got := e.NarrowExcludingTypes(src, []types.TypeID{s.String, s.Boolean})
	if got != s.Number {
		t.Fatalf("NarrowExcludingTypes = %v, want %v", got, s.Number)
	}
}

func TestParseTypeofKind(t *testing.T) {
	for _, valid := range []string{"string", "number", "boolean", "bigint", "symbol", "undefined", "object", "function"} {
		if _, ok := ParseTypeofKind(valid); !ok {
			t.Fatalf("ParseTypeofKind(%q) not recognized", valid)
		}
	}
	if _, ok := ParseTypeofKind("null"); ok {
		t.Fatal("typeof never yields \"null\"")
	}
}

func TestNarrowErrorNeverCascades(t *testing.T) {
	e, in := newEngine()
	s := in.Sentinels()

	// A resolve hook that fails must leave the original source intact.
	e.SetResolve(func(types.TypeID) types.TypeID { return s.Error })
	src := in.Union([]types.TypeID{s.String, s.Number})
	if got := e.resolveType(src); got != src {
		t.Fatalf("resolveType cascaded ERROR: %v", got)
	}
}

func TestNarrowingCacheBound(t *testing.T) {
	c := NewNarrowingCache(2)
	c.setResolve(1, 10)
	c.setResolve(2, 20)
	c.setResolve(3, 30) // evicts 1
	if _, ok := c.getResolve(1); ok {
		t.Fatal("oldest entry not evicted at capacity")
	}
	if v, ok := c.getResolve(3); !ok || v != 30 {
		t.Fatalf("newest entry missing: %v %v", v, ok)
	}
}

func TestNarrowingCacheSnapshotRoundTrip(t *testing.T) {
	c := NewNarrowingCache(0)
	c.setResolve(1, 10)
	c.setProperty(5, 7, 42, true)
	c.setProperty(5, 8, 0, false)

	snap := c.Snapshot()
	restored := NewNarrowingCache(0)
	restored.Restore(snap)

	if v, ok := restored.getResolve(1); !ok || v != 10 {
		t.Fatalf("resolve entry lost in round trip: %v %v", v, ok)
	}
	if v, found, known := restored.getProperty(5, 7); !known || !found || v != 42 {
		t.Fatalf("property entry lost: %v %v %v", v, found, known)
	}
	if _, found, known := restored.getProperty(5, 8); !known || found {
		t.Fatal("negative property entry lost")
	}
}
