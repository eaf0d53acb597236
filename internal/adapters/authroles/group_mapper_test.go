package authroles

import (
	"testing"

	domainauth "github.com/atelierweb/atelier-api/internal/domain/auth"
)

func TestGroupRoleMapper(t *testing.T) {
	m := GroupRoleMapper{AdminGroup: "atelier-admin"}

	if got := m.Map([]string{"x", "atelier-admin"}); got != domainauth.RoleAdmin {
		t.Errorf("Map = %v, want admin", got)
	}
	if got := m.Map([]string{"x", "y"}); got != domainauth.RoleGuest {
		t.Errorf("Map = %v, want guest", got)
	}
	if got := m.Map(nil); got != domainauth.RoleGuest {
		t.Errorf("Map(nil) = %v, want guest", got)
	}

	unset := GroupRoleMapper{}
	if got := unset.Map([]string{"atelier-admin"}); got != domainauth.RoleGuest {
		t.Errorf("unset mapper = %v, want guest", got)
	}
}
