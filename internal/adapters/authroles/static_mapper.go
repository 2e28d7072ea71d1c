package authroles

import (
	domainauth "github.com/Shiki0138/fleeksonline/internal/domain/auth"
)

// StaticRoleMapper maps IdP groups to application roles by simple string
// membership rules. The most privileged matching group wins.
type StaticRoleMapper struct {
	AdminGroup     string
	ModeratorGroup string
	UserGroup      string
}

func (m StaticRoleMapper) Map(groups []string) domainauth.Role {
	for _, g := range groups {
		if m.AdminGroup != "" && g == m.AdminGroup {
			return domainauth.RoleAdmin
		}
	}
	for _, g := range groups {
		if m.ModeratorGroup != "" && g == m.ModeratorGroup {
			return domainauth.RoleModerator
		}
	}
	for _, g := range groups {
		if m.UserGroup != "" && g == m.UserGroup {
			return domainauth.RoleUser
		}
	}
	return domainauth.RoleGuest
}
