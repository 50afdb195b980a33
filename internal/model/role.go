package model

import "strings"

// Role is the coarse permission label stored on a user record.
type Role string

const (
	// RoleUnknown covers missing, empty or unrecognised stored values. It grants nothing.
	RoleUnknown Role = "unknown"
	// RoleMember is assigned on registration.
	RoleMember Role = "member"
	// RoleAdmin may perform administrative actions.
	RoleAdmin Role = "admin"
)

// ParseRole maps a stored role value onto the closed set of roles.
// Comparison ignores case and surrounding space; "user" is an older spelling of member.
func ParseRole(v any) Role {
	s, ok := v.(string)
	if !ok {
		return RoleUnknown
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(RoleAdmin):
		return RoleAdmin
	case string(RoleMember), "user":
		return RoleMember
	default:
		return RoleUnknown
	}
}

func (r Role) String() string {
	return string(r)
}
