package authroles

import (
	domainauth "github.com/atelierweb/atelier-api/internal/domain/auth"
)

// GroupRoleMapper grants the admin role on membership in a single configured
// group; everything else is a guest. The admin area has no intermediate roles.
type GroupRoleMapper struct {
	AdminGroup string
}

func (m GroupRoleMapper) Map(groups []string) domainauth.Role {
	if m.AdminGroup == "" {
		return domainauth.RoleGuest
	}
	for _, g := range groups {
		if g == m.AdminGroup {
			return domainauth.RoleAdmin
		}
	}
	return domainauth.RoleGuest
}
