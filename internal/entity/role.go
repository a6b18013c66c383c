package entity

type Alignment string

const (
	AlignmentGood Alignment = "good"
	AlignmentEvil Alignment = "evil"
)

// Role is one of the closed set of Avalon roles. Every role has a fixed
// alignment; visibility rules live in the rules package.
type Role string

const (
	RoleMerlin       Role = "merlin"
	RolePercival     Role = "percival"
	RoleLoyalServant Role = "loyal_servant"
	RoleMorgana      Role = "morgana"
	RoleAssassin     Role = "assassin"
	RoleMordred      Role = "mordred"
	RoleOberon       Role = "oberon"
	RoleMinion       Role = "minion"
)

func (that Role) Alignment() Alignment {
	switch that {
	case RoleMorgana, RoleAssassin, RoleMordred, RoleOberon, RoleMinion:
		return AlignmentEvil
	case RoleMerlin, RolePercival, RoleLoyalServant:
		return AlignmentGood
	default:
		return AlignmentGood
	}
}

func (that Role) IsGood() bool {
	return that.Alignment() == AlignmentGood
}

func (that Role) IsEvil() bool {
	return that.Alignment() == AlignmentEvil
}
