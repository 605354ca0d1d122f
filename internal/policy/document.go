package policy

// Version identifies the permission table above.  Bump it whenever the
// table changes so clients can detect that a cached policy document is
// stale and refetch it.
const Version = "2025-08-1"

// Doc is the policy document served to the SPA.  The frontend renders its
// navigation from Modules instead of keeping its own copy of the table, so
// client and server can no longer drift apart.  The document is advisory
// only: every data route re-checks CanAccess server side.
type Doc struct {
    Version      string   `json:"version"`
    Role         string   `json:"role"`
    Capabilities []string `json:"capabilities"`
    Modules      []string `json:"modules"`
}

// Document builds the policy document for one principal.
func Document(role string, caps []string) Doc {
    if caps == nil {
        caps = []string{}
    }
    mods := PermissionsFor(role, caps)
    if mods == nil {
        mods = []string{}
    }
    return Doc{
        Version:      Version,
        Role:         role,
        Capabilities: caps,
        Modules:      mods,
    }
}
