package models

// Role определяет роль пользователя в системе
type Role string

const (
	RoleUser       Role = "User"
	RoleModerator  Role = "Moderator"
	RoleAdmin      Role = "Admin"
	RoleSuperAdmin Role = "SuperAdmin"
)

// HasModerationCapability reports whether the role may warn and mute users.
// Only moderators carry this capability; admins do not.
func HasModerationCapability(r Role) bool {
	return r == RoleModerator
}

// HasAdminCapability reports whether the role may reset credentials and
// soft-delete users. SuperAdmin is a superset of Admin; moderators are not.
func HasAdminCapability(r Role) bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// ParseRole maps a stored role tag to a Role. Unknown or empty tags fall
// back to RoleUser, matching the lenient deserialization policy.
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleModerator:
		return RoleModerator
	case RoleAdmin:
		return RoleAdmin
	case RoleSuperAdmin:
		return RoleSuperAdmin
	default:
		return RoleUser
	}
}
