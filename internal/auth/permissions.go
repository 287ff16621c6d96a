package auth

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type permissionsFile struct {
	Roles map[string][]string `yaml:"roles"`
}

// LoadPermissions loads a permissions.yml file and returns a role->views map.
// An empty path yields the built-in table.
func LoadPermissions(path string) (Permissions, error) {
	if path == "" {
		return DefaultPermissions(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParsePermissions(b)
}

// ParsePermissions decodes a YAML permissions document and rejects unknown
// roles or views.
func ParsePermissions(b []byte) (Permissions, error) {
	var pf permissionsFile
	if err := yaml.Unmarshal(b, &pf); err != nil {
		return nil, err
	}
	if len(pf.Roles) == 0 {
		return nil, fmt.Errorf("permissions file defines no roles")
	}
	for role, views := range pf.Roles {
		if !Role(role).Valid() {
			return nil, fmt.Errorf("unknown role %q", role)
		}
		for _, v := range views {
			if v != Wildcard && !View(v).Valid() {
				return nil, fmt.Errorf("role %q: unknown view %q", role, v)
			}
		}
	}
	return Permissions(pf.Roles), nil
}
