package auth

// Role is the access level a token carries. Viewers read period data
// and device lists, operators additionally run imports, admins manage
// the device directory.
type Role string

const (
	RoleViewer   Role = "viewer"
	RoleOperator Role = "operator"
	RoleAdmin    Role = "admin"
)

var roleRanks = map[Role]int{
	RoleViewer:   1,
	RoleOperator: 2,
	RoleAdmin:    3,
}

// NormalizeRole maps a raw claim string to a known role.
func NormalizeRole(value string) (Role, bool) {
	role := Role(value)
	if _, ok := roleRanks[role]; !ok {
		return "", false
	}
	return role, true
}

// AtLeast reports whether the role grants the required access level.
// Unknown roles rank below every known one.
func (r Role) AtLeast(required Role) bool {
	return roleRanks[r] >= roleRanks[required]
}
