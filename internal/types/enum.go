package types

// EnumMemberInfo ties a specific enum member to its declaration DefId and
// literal representation, preserving nominal identity per member: Color.R
// and Color.G must not collide even though both may carry a literal
// component that happens to coincide with some other member elsewhere.
type EnumMemberInfo struct {
	DefID   uint32
	Literal TypeID
}

// Enum interns Enum(defID, literal). Identity is (defID, literal): the same
// member resolved twice collides to one TypeID, but two different members
// never do, even if their literal components happen to be equal.
func (in *Interner) Enum(defID uint32, literal TypeID) TypeID {
	key := [2]uint32{defID, uint32(literal)}
	if id, ok := in.enumIx[key]; ok {
		return id
	}
	slot := uint32(len(in.enumMembers))
	in.enumMembers = append(in.enumMembers, EnumMemberInfo{DefID: defID, Literal: literal})
	id := in.internRaw(Type{Kind: KindEnum, Payload: slot})
	in.enumIx[key] = id
	return id
}

// EnumMemberInfoOf returns the (DefId, literal) pair for an Enum TypeID.
func (in *Interner) EnumMemberInfoOf(id TypeID) (EnumMemberInfo, bool) {
	t, ok := in.Lookup(id)
	if !ok || t.Kind != KindEnum {
		return EnumMemberInfo{}, false
	}
	if int(t.Payload) >= len(in.enumMembers) {
		return EnumMemberInfo{}, false
	}
	return in.enumMembers[t.Payload], true
}
