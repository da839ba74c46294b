package group

import (
	"context"
	"testing"

	"github.com/dhis2-sre/eventos/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestDefaultRoles(t *testing.T) {
	roles, err := DefaultRoles()
	require.NoError(t, err)

	codenames := make([]string, len(roles.Permissions))
	for i, p := range roles.Permissions {
		codenames[i] = p.Codename
	}
	assert.ElementsMatch(t, []string{
		model.PermissionAddEvent,
		model.PermissionChangeEvent,
		model.PermissionDeleteEvent,
		model.PermissionViewEvent,
	}, codenames)

	require.Len(t, roles.Groups, 2)
	assert.Equal(t, model.OrganizerGroupName, roles.Groups[0].Name)
	assert.Equal(t, []string{model.PermissionAddEvent, model.PermissionChangeEvent}, roles.Groups[0].Permissions)
	assert.Equal(t, model.AdministratorGroupName, roles.Groups[1].Name)
	assert.Contains(t, roles.Groups[1].Permissions, model.PermissionDeleteEvent)
}

func TestParseRoles_UndeclaredPermission(t *testing.T) {
	_, err := ParseRoles([]byte(`
permissions:
  - codename: add_event
groups:
  - name: organizadores
    permissions: [add_event, publish_event, archive_event]
`))

	assert.ErrorContains(t, err, `group "organizadores" grants undeclared permissions: archive_event, publish_event`)
}

func TestParseRoles_Invalid(t *testing.T) {
	_, err := ParseRoles([]byte("permissions: {"))

	assert.ErrorContains(t, err, "failed to parse roles")
}

func TestLoadRoles(t *testing.T) {
	roles := &Roles{
		Permissions: []model.Permission{{Codename: "add_event", Name: "Puede crear eventos"}},
		Groups:      []Role{{Name: "organizadores", Permissions: []string{"add_event"}}},
	}
	service := &mockRoleService{}
	service.
		On("SavePermissions", roles.Permissions).
		Return(nil)
	service.
		On("FindOrCreate", "organizadores").
		Return(&model.Group{Name: "organizadores"}, nil)
	service.
		On("SetPermissions", "organizadores", []string{"add_event"}).
		Return(nil)

	err := LoadRoles(context.Background(), roles, service)

	require.NoError(t, err)
	service.AssertExpectations(t)
}

type mockRoleService struct{ mock.Mock }

func (m *mockRoleService) SavePermissions(_ context.Context, permissions []model.Permission) error {
	called := m.Called(permissions)
	return called.Error(0)
}

func (m *mockRoleService) FindOrCreate(_ context.Context, name string) (*model.Group, error) {
	called := m.Called(name)
	return called.Get(0).(*model.Group), called.Error(1)
}

func (m *mockRoleService) SetPermissions(_ context.Context, name string, codenames []string) error {
	called := m.Called(name, codenames)
	return called.Error(0)
}
