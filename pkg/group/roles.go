package group

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/dhis2-sre/eventos/pkg/model"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"
)

//go:embed roles.yaml
var defaultRoles []byte

// Roles are the capabilities known to the application and the groups granting them.
type Roles struct {
	Permissions []model.Permission `yaml:"permissions"`
	Groups      []Role             `yaml:"groups"`
}

type Role struct {
	Name        string   `yaml:"name"`
	Permissions []string `yaml:"permissions"`
}

// DefaultRoles returns the roles every installation starts with.
func DefaultRoles() (*Roles, error) {
	return ParseRoles(defaultRoles)
}

// ParseRoles parses roles from YAML. Groups may only grant declared permissions.
func ParseRoles(data []byte) (*Roles, error) {
	var roles Roles
	if err := yaml.Unmarshal(data, &roles); err != nil {
		return nil, fmt.Errorf("failed to parse roles: %v", err)
	}

	declared := make(map[string]struct{}, len(roles.Permissions))
	for _, p := range roles.Permissions {
		if p.Codename == "" {
			return nil, fmt.Errorf("permission %q is missing a codename", p.Name)
		}
		declared[p.Codename] = struct{}{}
	}

	for _, group := range roles.Groups {
		if group.Name == "" {
			return nil, fmt.Errorf("group is missing a name")
		}

		undeclared := make(map[string]struct{})
		for _, codename := range group.Permissions {
			if _, ok := declared[codename]; !ok {
				undeclared[codename] = struct{}{}
			}
		}
		if len(undeclared) > 0 {
			codenames := maps.Keys(undeclared)
			slices.Sort(codenames)
			return nil, fmt.Errorf("group %q grants undeclared permissions: %s", group.Name, strings.Join(codenames, ", "))
		}
	}

	return &roles, nil
}

type roleService interface {
	SavePermissions(ctx context.Context, permissions []model.Permission) error
	FindOrCreate(ctx context.Context, name string) (*model.Group, error)
	SetPermissions(ctx context.Context, name string, codenames []string) error
}

// LoadRoles creates the permissions and groups of roles. Groups which exist already get their
// permissions reset to the ones of roles.
func LoadRoles(ctx context.Context, roles *Roles, service roleService) error {
	if err := service.SavePermissions(ctx, roles.Permissions); err != nil {
		return err
	}

	for _, role := range roles.Groups {
		if _, err := service.FindOrCreate(ctx, role.Name); err != nil {
			return err
		}

		if err := service.SetPermissions(ctx, role.Name, role.Permissions); err != nil {
			return err
		}
	}

	return nil
}
