package authroles

import (
	"strings"

	"github.com/pcagrade/planning-client/internal/ports"
)

// TableRoleMapper maps provider groups to application roles through a static
// lookup table. Groups absent from the table synthesize a role from the
// configured prefix and the uppercased group name. The mapper is a total
// function: no side effects, no failure modes.
type TableRoleMapper struct {
	prefix      string
	defaultRole string
	table       map[string]string
}

var _ ports.RoleMapper = TableRoleMapper{}

// NewTableRoleMapper builds a mapper from a group-to-role table. The table is
// copied with lower-cased keys so lookups are case-insensitive; the mapper is
// immutable after construction.
func NewTableRoleMapper(prefix, defaultRole string, table map[string]string) TableRoleMapper {
	normalized := make(map[string]string, len(table))
	for group, role := range table {
		normalized[strings.ToLower(group)] = role
	}
	return TableRoleMapper{
		prefix:      prefix,
		defaultRole: defaultRole,
		table:       normalized,
	}
}

// MapGroupsToRoles derives roles in first-seen group order, deduplicated.
// An empty group list yields exactly the default role.
func (m TableRoleMapper) MapGroupsToRoles(groups []string) []string {
	if len(groups) == 0 {
		return []string{m.defaultRole}
	}

	roles := make([]string, 0, len(groups))
	seen := make(map[string]struct{}, len(groups))
	for _, group := range groups {
		role, ok := m.table[strings.ToLower(group)]
		if !ok {
			role = m.synthesize(group)
		}
		if _, dup := seen[role]; dup {
			continue
		}
		seen[role] = struct{}{}
		roles = append(roles, role)
	}
	return roles
}

// synthesize builds a role name for an unmapped group: whitespace collapses
// to underscores, then the result is uppercased and prefixed.
func (m TableRoleMapper) synthesize(group string) string {
	return m.prefix + strings.ToUpper(strings.Join(strings.Fields(group), "_"))
}
