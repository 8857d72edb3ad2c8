package gateway

import (
	"sort"
)

// RoleMapper translates gateway role ids into local role names. It is a pure
// lookup over the configured mapping.
type RoleMapper struct {
	mapping map[string]string
}

func NewRoleMapper(mapping map[string]string) *RoleMapper {
	return &RoleMapper{mapping: mapping}
}

// Resolve maps gateway role ids to local names, preserving input order.
// Unknown ids are dropped, not an error.
func (m *RoleMapper) Resolve(ids []string) []string {
	roles := []string{}
	for _, id := range ids {
		if name, ok := m.mapping[id]; ok {
			roles = append(roles, name)
		}
	}
	return roles
}

// IDs returns every mapped gateway role id in stable order.
func (m *RoleMapper) IDs() []string {
	ids := make([]string, 0, len(m.mapping))
	for id := range m.mapping {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Name returns the local role name for a gateway id.
func (m *RoleMapper) Name(id string) (string, bool) {
	name, ok := m.mapping[id]
	return name, ok
}
