package authroles

import (
	"testing"

	domainauth "github.com/Shiki0138/fleeksonline/internal/domain/auth"
)

func TestStaticRoleMapper_Map(t *testing.T) {
	m := StaticRoleMapper{
		AdminGroup:     "fleeks-admins",
		ModeratorGroup: "fleeks-mods",
		UserGroup:      "fleeks-members",
	}

	tests := []struct {
		name   string
		groups []string
		want   domainauth.Role
	}{
		{"admin group", []string{"fleeks-admins"}, domainauth.RoleAdmin},
		{"admin wins over others", []string{"fleeks-members", "fleeks-admins"}, domainauth.RoleAdmin},
		{"moderator group", []string{"fleeks-mods", "fleeks-members"}, domainauth.RoleModerator},
		{"member group", []string{"fleeks-members"}, domainauth.RoleUser},
		{"no match", []string{"unrelated"}, domainauth.RoleGuest},
		{"empty groups", nil, domainauth.RoleGuest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.Map(tt.groups); got != tt.want {
				t.Errorf("Map(%v) = %v, want %v", tt.groups, got, tt.want)
			}
		})
	}
}

func TestStaticRoleMapper_EmptyConfigNeverMatches(t *testing.T) {
	m := StaticRoleMapper{}
	if got := m.Map([]string{""}); got != domainauth.RoleGuest {
		t.Errorf("empty group config should never grant a role, got %v", got)
	}
}
