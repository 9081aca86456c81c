package osm

import "sync"

// RoleCode is a small integer identifying a relation-member role. The
// mapping to strings lives in a process-wide intern table so members
// can be compared by integer instead of string equality.
type RoleCode int32

// commonRoles pre-populates the intern table with the roles that show
// up in almost every OSM relation. Index 0 is reserved for "" (no
// role).
var commonRoles = []string{
	"", "outer", "inner", "from", "to", "via",
	"stop", "platform", "label", "main_stream", "side_stream", "admin_centre",
}

// RoleTable interns role strings to RoleCode values. The zero value is
// not usable; use NewRoleTable. Additions extend the table monotonically
// and are never removed, so a RoleCode obtained earlier stays valid for
// the lifetime of the table.
type RoleTable struct {
	mu      sync.RWMutex
	strings []string
	index   map[string]RoleCode
}

// NewRoleTable returns a table pre-seeded with the common OSM roles.
func NewRoleTable() *RoleTable {
	rt := &RoleTable{
		strings: append([]string(nil), commonRoles...),
		index:   make(map[string]RoleCode, len(commonRoles)),
	}
	for i, s := range rt.strings {
		rt.index[s] = RoleCode(i)
	}
	return rt
}

// Intern returns the RoleCode for role, allocating a new one if it has
// not been seen before.
func (rt *RoleTable) Intern(role string) RoleCode {
	rt.mu.RLock()
	if code, ok := rt.index[role]; ok {
		rt.mu.RUnlock()
		return code
	}
	rt.mu.RUnlock()

	rt.mu.Lock()
	defer rt.mu.Unlock()
	if code, ok := rt.index[role]; ok {
		return code
	}
	code := RoleCode(len(rt.strings))
	rt.strings = append(rt.strings, role)
	rt.index[role] = code
	return code
}

// String returns the role string for a code, or "" if the code is out
// of range.
func (rt *RoleTable) String(code RoleCode) string {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	if int(code) < 0 || int(code) >= len(rt.strings) {
		return ""
	}
	return rt.strings[code]
}
