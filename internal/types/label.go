package types

import (
	"fmt"
	"math"
	"strings"
)

func numFromBits(bits uint64) float64 {
	return math.Float64frombits(bits)
}

// Label renders a short, human-readable form of id for diagnostics and test
// failure messages. It is best-effort: object/callable shapes are summarized
// rather than fully expanded.
func (in *Interner) Label(id TypeID) string {
	t, ok := in.Lookup(id)
	if !ok {
		return "<invalid>"
	}
	switch t.Kind {
	case KindAny:
		return "any"
	case KindUnknown:
		return "unknown"
	case KindNever:
		return "never"
	case KindError:
		return "error"
	case KindVoid:
		return "void"
	case KindNull:
		return "null"
	case KindUndefined:
		return "undefined"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBoolean:
		return "boolean"
	case KindBigInt:
		return "bigint"
	case KindSymbolPrim:
		return "symbol"
	case KindObjectKeyword:
		return "object"
	case KindLiteral:
		return in.labelLiteral(id)
	case KindUnion:
		return in.labelList(id, " | ", in.unionMembersRaw)
	case KindIntersection:
		return in.labelList(id, " & ", in.interMembersRaw)
	case KindArray:
		return in.Label(t.Elem) + "[]"
	case KindTuple:
		return in.labelTuple(id)
	case KindObject, KindObjectWithIndex:
		return in.labelObject(id)
	case KindCallable:
		return "callable"
	case KindFunction:
		return "function"
	case KindApplication:
		return in.labelApplication(id)
	case KindLazy:
		return fmt.Sprintf("Lazy(def#%d)", t.Payload)
	case KindTypeParameter:
		if info, ok := in.TypeParamInfoOf(id); ok {
			return in.Strings.MustLookup(info.Name)
		}
		return "T?"
	case KindEnum:
		return fmt.Sprintf("enum-member#%d", t.Payload)
	case KindIndexAccess:
		return in.Label(t.Elem) + "[" + in.Label(t.Idx) + "]"
	case KindKeyOf:
		return "keyof " + in.Label(t.Elem)
	case KindReadonly:
		return "readonly " + in.Label(t.Elem)
	case KindMapped:
		return "mapped"
	case KindConditional:
		return "conditional"
	case KindTemplateLiteral:
		return in.labelTemplate(id)
	case KindTypeQuery:
		return fmt.Sprintf("typeof sym#%d", t.Payload)
	default:
		return fmt.Sprintf("Kind(%d)", t.Kind)
	}
}

func (in *Interner) labelLiteral(id TypeID) string {
	v, ok := in.LiteralValueOf(id)
	if !ok {
		return "literal?"
	}
	switch v.Kind {
	case LiteralString:
		return fmt.Sprintf("%q", in.Strings.MustLookup(v.Str))
	case LiteralNumber:
		return fmt.Sprintf("%v", numFromBits(v.NumBits))
	case LiteralBoolean:
		if v.Bool {
			return "true"
		}
		return "false"
	case LiteralBigInt:
		sign := ""
		if v.BigIntNeg {
			sign = "-"
		}
		return sign + in.Strings.MustLookup(v.BigIntDigits) + "n"
	default:
		return "literal?"
	}
}

func (in *Interner) unionMembersRaw(id TypeID) []TypeID {
	members, _ := in.UnionMembers(id)
	return members
}

func (in *Interner) interMembersRaw(id TypeID) []TypeID {
	members, _ := in.IntersectionMembers(id)
	return members
}

func (in *Interner) labelList(id TypeID, sep string, members func(TypeID) []TypeID) string {
	ids := members(id)
	parts := make([]string, len(ids))
	for i, m := range ids {
		parts[i] = in.Label(m)
	}
	return strings.Join(parts, sep)
}

func (in *Interner) labelTuple(id TypeID) string {
	info, ok := in.TupleInfoOf(id)
	if !ok {
		return "[]"
	}
	parts := make([]string, len(info.Elems))
	for i, e := range info.Elems {
		s := in.Label(e.Type)
		if e.Optional {
			s += "?"
		}
		if e.Rest {
			s = "..." + s
		}
		parts[i] = s
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (in *Interner) labelObject(id TypeID) string {
	shape, ok := in.ObjectShapeOf(id)
	if !ok {
		return "{}"
	}
	return fmt.Sprintf("{%d props}", len(shape.Properties))
}

func (in *Interner) labelApplication(id TypeID) string {
	info, ok := in.ApplicationInfoOf(id)
	if !ok {
		return "Application?"
	}
	parts := make([]string, len(info.Args))
	for i, a := range info.Args {
		parts[i] = in.Label(a)
	}
	return in.Label(info.Base) + "<" + strings.Join(parts, ", ") + ">"
}

func (in *Interner) labelTemplate(id TypeID) string {
	info, ok := in.TemplateLiteralInfoOf(id)
	if !ok {
		return "`...`"
	}
	var b strings.Builder
	b.WriteByte('`')
	for _, s := range info.Spans {
		if s.Type != NoTypeID {
			b.WriteString("${")
			b.WriteString(in.Label(s.Type))
			b.WriteByte('}')
		} else {
			b.WriteString(in.Strings.MustLookup(s.Static))
		}
	}
	b.WriteByte('`')
	return b.String()
}
