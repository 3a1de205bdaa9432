// Package catalog holds the declared role/permission catalog and the static
// role hierarchy that ships with the service.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"slices"
	"sort"

	"gopkg.in/yaml.v3"

	"backoffice-api/internal/domain"
)

//go:embed catalog.yaml
var defaultCatalog []byte

type PermissionDef struct {
	Key         string `yaml:"key"`
	Description string `yaml:"description"`
}

type RoleDef struct {
	Key         string   `yaml:"key"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Permissions []string `yaml:"permissions"`
	Implies     []string `yaml:"implies"`
}

type Catalog struct {
	Permissions []PermissionDef `yaml:"permissions"`
	Roles       []RoleDef       `yaml:"roles"`
}

// Default parses the embedded catalog. It panics on a malformed file since the
// file is compiled into the binary.
func Default() Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded catalog invalid: %v", err))
	}
	return c
}

func Parse(raw []byte) (Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return Catalog{}, err
	}
	if err := c.Validate(); err != nil {
		return Catalog{}, err
	}
	return c, nil
}

// Validate checks that keys are unique and that every role only references
// declared permissions and roles.
func (c Catalog) Validate() error {
	perms := make(map[string]struct{}, len(c.Permissions))
	for _, p := range c.Permissions {
		if p.Key == "" {
			return errors.New("catalog: permission without key")
		}
		if _, dup := perms[p.Key]; dup {
			return fmt.Errorf("catalog: duplicate permission %q", p.Key)
		}
		perms[p.Key] = struct{}{}
	}
	roles := make(map[string]struct{}, len(c.Roles))
	for _, r := range c.Roles {
		if r.Key == "" || r.Name == "" {
			return fmt.Errorf("catalog: role %q needs key and name", r.Key)
		}
		if _, dup := roles[r.Key]; dup {
			return fmt.Errorf("catalog: duplicate role %q", r.Key)
		}
		roles[r.Key] = struct{}{}
	}
	for _, r := range c.Roles {
		for _, p := range r.Permissions {
			if _, ok := perms[p]; !ok {
				return fmt.Errorf("catalog: role %q references unknown permission %q", r.Key, p)
			}
		}
		for _, implied := range r.Implies {
			if _, ok := roles[implied]; !ok {
				return fmt.Errorf("catalog: role %q implies unknown role %q", r.Key, implied)
			}
		}
	}
	return nil
}

func (c Catalog) DomainRoles() []domain.Role {
	out := make([]domain.Role, 0, len(c.Roles))
	for _, r := range c.Roles {
		out = append(out, domain.Role{
			Key:         r.Key,
			Name:        r.Name,
			Description: r.Description,
			Permissions: slices.Clone(r.Permissions),
		})
	}
	return out
}

func (c Catalog) DomainPermissions() []domain.Permission {
	out := make([]domain.Permission, 0, len(c.Permissions))
	for _, p := range c.Permissions {
		out = append(out, domain.Permission{Key: p.Key, Description: p.Description})
	}
	return out
}

// Hierarchy returns the declared implication table.
func (c Catalog) Hierarchy() Hierarchy {
	h := Hierarchy{implies: make(map[string][]string, len(c.Roles))}
	for _, r := range c.Roles {
		implied := slices.Clone(r.Implies)
		if !slices.Contains(implied, r.Key) {
			implied = append(implied, r.Key)
		}
		sort.Strings(implied)
		h.implies[r.Key] = implied
	}
	return h
}
