package models

// Role is the closed set of privilege levels carried on users and members.
type Role string

const (
	RoleSuperAdmin     Role = "super_admin"
	RolePastor         Role = "pastor"
	RoleDeptHead       Role = "dept_head"
	RoleFinanceOfficer Role = "finance_officer"
	RoleMember         Role = "member"
)

// ParseRole maps a raw metadata value onto the role enum. Anything absent or
// unrecognized falls back to the lowest-privilege role, never an elevated one.
func ParseRole(raw string) Role {
	switch Role(raw) {
	case RoleSuperAdmin, RolePastor, RoleDeptHead, RoleFinanceOfficer, RoleMember:
		return Role(raw)
	default:
		return RoleMember
	}
}

// CanManageMembers reports whether the role may create, edit, or delete
// member records.
func (r Role) CanManageMembers() bool {
	switch r {
	case RoleSuperAdmin, RolePastor, RoleDeptHead:
		return true
	}
	return false
}

// CanManageFinances reports whether the role may record or delete income
// transactions.
func (r Role) CanManageFinances() bool {
	switch r {
	case RoleSuperAdmin, RolePastor, RoleFinanceOfficer:
		return true
	}
	return false
}
