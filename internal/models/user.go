package models

const (
	RoleAdmin     = "admin"
	RoleModerator = "moderator"
	RoleInvestor  = "investor"
	RoleFounder   = "founder"
)

// roleRank orders roles so a higher role satisfies a lower requirement.
var roleRank = map[string]int{
	RoleFounder:   1,
	RoleInvestor:  1,
	RoleModerator: 2,
	RoleAdmin:     3,
}

type UserRole struct {
	UserID   string `json:"userId"`
	Role     string `json:"role"`
	IsActive bool   `json:"isActive"`
}

// Satisfies reports whether the role meets required. Founder and investor only satisfy themselves.
func (u UserRole) Satisfies(required string) bool {
	if !u.IsActive {
		return false
	}
	if u.Role == required {
		return true
	}
	have, ok := roleRank[u.Role]
	need, ok2 := roleRank[required]
	return ok && ok2 && need >= 2 && have >= need
}
