package subtype

import (
	"testing"

	"surgetype/internal/source"
	"surgetype/internal/types"
)

func newTestChecker(t *testing.T) (*types.Interner, *Checker) {
	t.Helper()
	in := types.NewInterner(source.NewInterner())
	return in, New(in)
}

func TestReflexivity(t *testing.T) {
	in, c := newTestChecker(t)
	str := in.Sentinels().String
	if !c.IsSubtypeOf(str, str) {
		t.Fatalf("a type must be a subtype of itself")
	}
}

func TestNeverIsBottom(t *testing.T) {
	in, c := newTestChecker(t)
	if !c.IsSubtypeOf(in.Sentinels().Never, in.Sentinels().String) {
		t.Fatalf("never must be a subtype of everything")
	}
}

func TestUnknownIsTop(t *testing.T) {
	in, c := newTestChecker(t)
	if !c.IsSubtypeOf(in.Sentinels().String, in.Sentinels().Unknown) {
		t.Fatalf("everything must be a subtype of unknown")
	}
	if c.IsSubtypeOf(in.Sentinels().Unknown, in.Sentinels().String) {
		t.Fatalf("unknown must not be a subtype of string")
	}
}

func TestAnyAbsorbsBothDirections(t *testing.T) {
	in, c := newTestChecker(t)
	str := in.Sentinels().String
	any := in.Sentinels().Any
	if !c.IsSubtypeOf(any, str) || !c.IsSubtypeOf(str, any) {
		t.Fatalf("any must be bidirectionally assignable to/from anything")
	}
}

func TestLiteralAssignableToBasePrimitive(t *testing.T) {
	in, c := newTestChecker(t)
	lit := in.LiteralString(in.Strings.Intern("hi"))
	if !c.IsSubtypeOf(lit, in.Sentinels().String) {
		t.Fatalf("string literal must be a subtype of string")
	}
	if c.IsSubtypeOf(in.Sentinels().String, lit) {
		t.Fatalf("string must not be a subtype of a specific literal")
	}
}

func TestUnionSourceRequiresAllMembers(t *testing.T) {
	in, c := newTestChecker(t)
	u := in.Union([]types.TypeID{in.Sentinels().String, in.Sentinels().Number})
	if c.IsSubtypeOf(u, in.Sentinels().String) {
		t.Fatalf("string|number must not be a subtype of string alone")
	}
	target := in.Union([]types.TypeID{in.Sentinels().String, in.Sentinels().Number, in.Sentinels().Boolean})
	if !c.IsSubtypeOf(u, target) {
		t.Fatalf("string|number must be a subtype of string|number|boolean")
	}
}

func TestUnionTargetRequiresAnyMember(t *testing.T) {
	in, c := newTestChecker(t)
	u := in.Union([]types.TypeID{in.Sentinels().String, in.Sentinels().Number})
	if !c.IsSubtypeOf(in.Sentinels().String, u) {
		t.Fatalf("string must be a subtype of string|number")
	}
	if c.IsSubtypeOf(in.Sentinels().Boolean, u) {
		t.Fatalf("boolean must not be a subtype of string|number")
	}
}

func TestObjectWidthSubtyping(t *testing.T) {
	in, c := newTestChecker(t)
	name := in.Strings.Intern("name")
	age := in.Strings.Intern("age")

	wide := in.Object(types.ObjectShape{Properties: []types.PropertyInfo{
		{Name: name, Type: in.Sentinels().String},
		{Name: age, Type: in.Sentinels().Number},
	}})
	narrow := in.Object(types.ObjectShape{Properties: []types.PropertyInfo{
		{Name: name, Type: in.Sentinels().String},
	}})

	if !c.IsSubtypeOf(wide, narrow) {
		t.Fatalf("an object with extra properties must be assignable to a narrower shape")
	}
	if c.IsSubtypeOf(narrow, wide) {
		t.Fatalf("a narrower shape must not satisfy a wider one missing a required property")
	}
}

func TestObjectMissingOptionalPropertyStillSatisfies(t *testing.T) {
	in, c := newTestChecker(t)
	name := in.Strings.Intern("name")
	nick := in.Strings.Intern("nickname")

	target := in.Object(types.ObjectShape{Properties: []types.PropertyInfo{
		{Name: name, Type: in.Sentinels().String},
		{Name: nick, Type: in.Sentinels().String, Optional: true},
	}})
	source := in.Object(types.ObjectShape{Properties: []types.PropertyInfo{
		{Name: name, Type: in.Sentinels().String},
	}})
	if !c.IsSubtypeOf(source, target) {
		t.Fatalf("missing an optional property must not break assignability")
	}
}

func TestArraySubtypingIsCovariantInElement(t *testing.T) {
	in, c := newTestChecker(t)
	lit := in.LiteralString(in.Strings.Intern("x"))
	litArr := in.Array(lit)
	strArr := in.Array(in.Sentinels().String)
	if !c.IsSubtypeOf(litArr, strArr) {
		t.Fatalf("literal[] must be a subtype of string[]")
	}
	if c.IsSubtypeOf(strArr, litArr) {
		t.Fatalf("string[] must not be a subtype of literal[]")
	}
}

func TestFunctionSignatureVariance(t *testing.T) {
	in, c := newTestChecker(t)
	argName := in.Strings.Intern("x")

	// (x: unknown) => string  should be assignable to  (x: string) => unknown
	// contravariant params (unknown accepts anything a string-expecting caller passes),
	// covariant return (string satisfies an unknown-expecting caller).
	wide := in.Function(types.FunctionShape{Signature: types.Signature{
		Params:     []types.ParamInfo{{Name: argName, Type: in.Sentinels().Unknown}},
		ReturnType: in.Sentinels().String,
	}})
	narrow := in.Function(types.FunctionShape{Signature: types.Signature{
		Params:     []types.ParamInfo{{Name: argName, Type: in.Sentinels().String}},
		ReturnType: in.Sentinels().Unknown,
	}})
	if !c.IsSubtypeOf(wide, narrow) {
		t.Fatalf("(unknown)=>string must be a subtype of (string)=>unknown")
	}
}

func TestReset(t *testing.T) {
	_, c := newTestChecker(t)
	c.IsSubtypeOf(1, 2)
	c.Reset()
	if len(c.seen) != 0 {
		t.Fatalf("Reset must clear the seen-set")
	}
}

func TestLiteralAssignableToUnion(t *testing.T) {
	in, _ := newTestChecker(t)
	lit := in.LiteralString(in.Strings.Intern("ok"))
	u := in.Union([]types.TypeID{in.Sentinels().String, in.Sentinels().Number})
	if !LiteralAssignableTo(in, lit, u) {
		t.Fatalf("a string literal must be assignable to string|number")
	}
	if LiteralAssignableTo(in, lit, in.Sentinels().Number) {
		t.Fatalf("a string literal must not be assignable to number")
	}
}
