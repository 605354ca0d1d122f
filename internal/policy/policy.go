// Package policy is the single source of truth for role-based access in the
// application.  It answers two questions and nothing else: which modules a
// role may open, and whether one role outranks another.  Everything here is
// a pure function over static data so both the API middleware and the
// policy endpoint consumed by the SPA evaluate the exact same table.
//
// Unknown roles are never an error: they rank below every known role and
// hold no permissions.  Deny by default.
package policy

// Role names.  The ordering salarie < contremaitre < gerante < admin is
// total and encoded in roleRanks below.
const (
    RoleSalarie      = "salarie"
    RoleContremaitre = "contremaitre"
    RoleGerante      = "gerante"
    RoleAdmin        = "admin"
)

// Module names gated by permission.
const (
    ModuleDashboard  = "dashboard"
    ModuleProduction = "production"
    ModuleOrders     = "orders"
    ModuleStocks     = "stocks"
    ModulePersonnel  = "personnel"
    ModuleSettings   = "settings"
    ModuleAdmin      = "admin"
)

// Capabilities are an axis independent of the role: they grant extra
// modules on top of whatever the role permits.  The warehouse keeper
// (magasinier) is a salarie with stock access, not a fifth role.
const (
    CapMagasinier = "magasinier"
)

// roleRanks gives each known role its ordinal for "at least" checks.
// Unknown roles get the zero value, which is below every known rank.
var roleRanks = map[string]int{
    RoleSalarie:      1,
    RoleContremaitre: 2,
    RoleGerante:      3,
    RoleAdmin:        4,
}

// rolePermissions maps each role to the set of modules it may open.
var rolePermissions = map[string][]string{
    RoleSalarie:      {ModuleDashboard, ModuleProduction},
    RoleContremaitre: {ModuleDashboard, ModuleProduction, ModuleOrders},
    RoleGerante:      {ModuleDashboard, ModuleProduction, ModuleOrders, ModuleStocks, ModulePersonnel, ModuleSettings},
    RoleAdmin:        {ModuleDashboard, ModuleProduction, ModuleOrders, ModuleStocks, ModulePersonnel, ModuleSettings, ModuleAdmin},
}

// capabilityGrants maps each capability to the extra modules it unlocks.
var capabilityGrants = map[string][]string{
    CapMagasinier: {ModuleStocks},
}

// KnownRole reports whether the role is part of the closed enumeration.
func KnownRole(role string) bool {
    _, ok := roleRanks[role]
    return ok
}

// PermissionsFor returns the set of modules the role plus its capabilities
// may access.  An unknown role holds nothing at all: capabilities only ever
// extend a role from the closed enumeration, they never substitute for one.
// The result is a fresh slice in stable table order, safe for callers to
// hold on to.
func PermissionsFor(role string, caps []string) []string {
    if !KnownRole(role) {
        return nil
    }
    seen := make(map[string]bool)
    var out []string
    for _, m := range rolePermissions[role] {
        if !seen[m] {
            seen[m] = true
            out = append(out, m)
        }
    }
    for _, c := range caps {
        for _, m := range capabilityGrants[c] {
            if !seen[m] {
                seen[m] = true
                out = append(out, m)
            }
        }
    }
    return out
}

// CanAccess reports whether the role (with its capabilities) may open the
// named module.  Unknown roles and unknown modules are denied absolutely;
// capabilities are not consulted for a role outside the enumeration.
func CanAccess(role string, caps []string, module string) bool {
    if !KnownRole(role) {
        return false
    }
    for _, m := range rolePermissions[role] {
        if m == module {
            return true
        }
    }
    for _, c := range caps {
        for _, m := range capabilityGrants[c] {
            if m == module {
                return true
            }
        }
    }
    return false
}

// IsAtLeast reports whether role ranks at or above minimum.  An unknown
// role ranks 0 and is therefore never "at least" any known role; an
// unknown minimum can never be satisfied either, so comparisons involving
// unrecognized names always come out as insufficient rather than an error.
func IsAtLeast(role, minimum string) bool {
    r, ok := roleRanks[role]
    if !ok {
        return false
    }
    m, ok := roleRanks[minimum]
    if !ok {
        return false
    }
    return r >= m
}
