package types

// LiteralKind classifies the payload carried by a literal type.
type LiteralKind uint8

const (
	LiteralInvalid LiteralKind = iota
	LiteralString
	LiteralNumber
	LiteralBoolean
	LiteralBigInt
)

// LiteralValue is the structural payload for KindLiteral. Number is stored as
// its raw bit pattern so NaN literals compare by bit pattern, not value
// equality: distinct NaN encodings intentionally intern distinct TypeIds.
type LiteralValue struct {
	Kind         LiteralKind
	Str          Atom
	NumBits      uint64
	Bool         bool
	BigIntNeg    bool
	BigIntDigits Atom
}

// literalKey is the comparable cache key for literal deduplication.
type literalKey struct {
	Kind         LiteralKind
	Str          Atom
	NumBits      uint64
	Bool         bool
	BigIntNeg    bool
	BigIntDigits Atom
}

func keyOf(v LiteralValue) literalKey {
	return literalKey{
		Kind:         v.Kind,
		Str:          v.Str,
		NumBits:      v.NumBits,
		Bool:         v.Bool,
		BigIntNeg:    v.BigIntNeg,
		BigIntDigits: v.BigIntDigits,
	}
}

// Literal interns a literal type, folding BigInt sign into the payload.
func (in *Interner) Literal(v LiteralValue) TypeID {
	k := keyOf(v)
	if id, ok := in.literalIx[k]; ok {
		return id
	}
	slot := uint32(len(in.literals))
	in.literals = append(in.literals, v)
	id := in.internRaw(Type{Kind: KindLiteral, Payload: slot})
	in.literalIx[k] = id
	return id
}

// LiteralString interns a string-literal type.
func (in *Interner) LiteralString(s Atom) TypeID {
	return in.Literal(LiteralValue{Kind: LiteralString, Str: s})
}

// LiteralNumberBits interns a number-literal type from its IEEE-754 bit
// pattern.
func (in *Interner) LiteralNumberBits(bits uint64) TypeID {
	return in.Literal(LiteralValue{Kind: LiteralNumber, NumBits: bits})
}

// LiteralBool interns `true` or `false` as a literal type. Use Sentinels()
// for the canonical BooleanTrue/BooleanFalse handles.
func (in *Interner) LiteralBool(b bool) TypeID {
	return in.Literal(LiteralValue{Kind: LiteralBoolean, Bool: b})
}

// LiteralValueOf returns the literal payload for a KindLiteral TypeID.
func (in *Interner) LiteralValueOf(id TypeID) (LiteralValue, bool) {
	t, ok := in.Lookup(id)
	if !ok || t.Kind != KindLiteral {
		return LiteralValue{}, false
	}
	if int(t.Payload) >= len(in.literals) {
		return LiteralValue{}, false
	}
	return in.literals[t.Payload], true
}

// LiteralBaseType returns the primitive sentinel that a literal type widens
// to (string literal -> String, etc). Used by narrowing's typeof
// classification and by WidenType.
func (in *Interner) LiteralBaseType(id TypeID) TypeID {
	v, ok := in.LiteralValueOf(id)
	if !ok {
		return NoTypeID
	}
	switch v.Kind {
	case LiteralString:
		return in.sentinels.String
	case LiteralNumber:
		return in.sentinels.Number
	case LiteralBoolean:
		return in.sentinels.Boolean
	case LiteralBigInt:
		return in.sentinels.BigInt
	default:
		return NoTypeID
	}
}
