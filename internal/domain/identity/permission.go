package identity

// HasAnyRole reports whether actorRoles contains at least one of required.
// An empty required set never matches.
func HasAnyRole(actorRoles []string, required ...string) bool {
	for _, want := range required {
		for _, have := range actorRoles {
			if have == want {
				return true
			}
		}
	}
	return false
}

func IsValidRole(name string) bool {
	switch name {
	case RoleAdmin, RoleLeader, RoleCoach, RoleMember:
		return true
	default:
		return false
	}
}
