package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanAccess_DenyByDefault(t *testing.T) {
	tests := []struct {
		name   string
		role   string
		module string
	}{
		{name: "unknown role known module", role: "stagiaire", module: ModuleDashboard},
		{name: "empty role", role: "", module: ModuleDashboard},
		{name: "known role unknown module", role: RoleAdmin, module: "comptabilite"},
		{name: "case sensitive role", role: "Admin", module: ModuleDashboard},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, CanAccess(tt.role, nil, tt.module))
		})
	}
}

func TestCanAccess_RoleTable(t *testing.T) {
	tests := []struct {
		role   string
		module string
		want   bool
	}{
		{RoleSalarie, ModuleDashboard, true},
		{RoleSalarie, ModuleProduction, true},
		{RoleSalarie, ModuleOrders, false},
		{RoleSalarie, ModuleStocks, false},
		{RoleContremaitre, ModuleOrders, true},
		{RoleContremaitre, ModulePersonnel, false},
		{RoleGerante, ModuleStocks, true},
		{RoleGerante, ModuleSettings, true},
		{RoleGerante, ModuleAdmin, false},
		{RoleAdmin, ModuleAdmin, true},
	}
	for _, tt := range tests {
		t.Run(tt.role+"/"+tt.module, func(t *testing.T) {
			assert.Equal(t, tt.want, CanAccess(tt.role, nil, tt.module))
		})
	}
}

func TestCanAccess_CapabilityGrants(t *testing.T) {
	// A salarie with the magasinier capability gains stocks and nothing else.
	caps := []string{CapMagasinier}
	assert.True(t, CanAccess(RoleSalarie, caps, ModuleStocks))
	assert.False(t, CanAccess(RoleSalarie, caps, ModuleOrders))
	assert.False(t, CanAccess(RoleSalarie, caps, ModulePersonnel))

	// Unknown capabilities grant nothing, even for known roles.
	assert.False(t, CanAccess(RoleSalarie, []string{"chauffeur"}, ModuleStocks))
	// Capabilities never rescue an unknown role: the deny is absolute.
	assert.False(t, CanAccess("inconnu", caps, ModuleStocks))
	assert.False(t, CanAccess("inconnu", caps, ModuleDashboard))
	assert.Empty(t, PermissionsFor("inconnu", caps))
}

func TestIsAtLeast_RankMonotonicity(t *testing.T) {
	ordered := []string{RoleSalarie, RoleContremaitre, RoleGerante, RoleAdmin}
	for i, lower := range ordered {
		for j, higher := range ordered {
			got := IsAtLeast(higher, lower)
			assert.Equal(t, j >= i, got, "IsAtLeast(%s, %s)", higher, lower)
		}
	}
}

func TestIsAtLeast_Reflexive(t *testing.T) {
	for _, r := range []string{RoleSalarie, RoleContremaitre, RoleGerante, RoleAdmin} {
		assert.True(t, IsAtLeast(r, r), "IsAtLeast(%s, %s)", r, r)
	}
}

func TestIsAtLeast_UnknownRoles(t *testing.T) {
	assert.False(t, IsAtLeast("stagiaire", RoleSalarie))
	assert.False(t, IsAtLeast("stagiaire", "stagiaire"))
	assert.False(t, IsAtLeast(RoleAdmin, "superadmin"))
	assert.False(t, IsAtLeast("", ""))
}

func TestPermissionsFor(t *testing.T) {
	assert.Empty(t, PermissionsFor("inconnu", nil))

	got := PermissionsFor(RoleSalarie, []string{CapMagasinier})
	assert.ElementsMatch(t, []string{ModuleDashboard, ModuleProduction, ModuleStocks}, got)

	// A capability that duplicates a role grant must not double the entry.
	got = PermissionsFor(RoleGerante, []string{CapMagasinier})
	assert.ElementsMatch(t,
		[]string{ModuleDashboard, ModuleProduction, ModuleOrders, ModuleStocks, ModulePersonnel, ModuleSettings},
		got)
}

func TestDocument(t *testing.T) {
	doc := Document(RoleSalarie, nil)
	assert.Equal(t, Version, doc.Version)
	assert.Equal(t, RoleSalarie, doc.Role)
	assert.NotNil(t, doc.Capabilities, "capabilities must serialize as [], not null")
	assert.Equal(t, []string{ModuleDashboard, ModuleProduction}, doc.Modules)

	empty := Document("inconnu", nil)
	assert.NotNil(t, empty.Modules, "modules must serialize as [], not null")
	assert.Empty(t, empty.Modules)
}
