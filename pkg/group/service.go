package group

import (
	"context"
	"fmt"
	"strings"

	"github.com/dhis2-sre/eventos/internal/errdef"
	"github.com/dhis2-sre/eventos/pkg/model"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

func NewService(groupRepository groupRepository, userService userService) *Service {
	return &Service{
		groupRepository,
		userService,
	}
}

type groupRepository interface {
	find(ctx context.Context, name string) (*model.Group, error)
	findAll(ctx context.Context) ([]model.Group, error)
	create(ctx context.Context, group *model.Group) error
	findOrCreate(ctx context.Context, group *model.Group) (*model.Group, error)
	addUser(ctx context.Context, group *model.Group, user *model.User) error
	removeUser(ctx context.Context, group *model.Group, user *model.User) error
	replacePermissions(ctx context.Context, group *model.Group, permissions []model.Permission) error
	savePermissions(ctx context.Context, permissions []model.Permission) error
	findPermissions(ctx context.Context, codenames []string) ([]model.Permission, error)
}

type userService interface {
	FindById(ctx context.Context, id uint) (*model.User, error)
}

type Service struct {
	groupRepository groupRepository
	userService     userService
}

func (s *Service) Find(ctx context.Context, name string) (*model.Group, error) {
	return s.groupRepository.find(ctx, name)
}

func (s *Service) FindAll(ctx context.Context) ([]model.Group, error) {
	return s.groupRepository.findAll(ctx)
}

// Create creates a group granting the given capabilities to its members.
func (s *Service) Create(ctx context.Context, name string, codenames []string) (*model.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errdef.NewValidation(map[string]string{"name": "Este campo es obligatorio."})
	}

	permissions, err := s.permissions(ctx, codenames)
	if err != nil {
		return nil, err
	}

	group := &model.Group{
		Name:        name,
		Permissions: permissions,
	}

	err = s.groupRepository.create(ctx, group)
	if err != nil {
		return nil, err
	}

	return group, nil
}

func (s *Service) FindOrCreate(ctx context.Context, name string) (*model.Group, error) {
	return s.groupRepository.findOrCreate(ctx, &model.Group{Name: name})
}

// SetPermissions replaces the capabilities granted through the group.
func (s *Service) SetPermissions(ctx context.Context, name string, codenames []string) error {
	group, err := s.Find(ctx, name)
	if err != nil {
		return err
	}

	permissions, err := s.permissions(ctx, codenames)
	if err != nil {
		return err
	}

	return s.groupRepository.replacePermissions(ctx, group, permissions)
}

// SavePermissions makes sure the given capabilities exist.
func (s *Service) SavePermissions(ctx context.Context, permissions []model.Permission) error {
	return s.groupRepository.savePermissions(ctx, permissions)
}

// permissions looks up the capabilities named by codenames. Unknown codenames are rejected.
func (s *Service) permissions(ctx context.Context, codenames []string) ([]model.Permission, error) {
	if len(codenames) == 0 {
		return nil, nil
	}

	permissions, err := s.groupRepository.findPermissions(ctx, codenames)
	if err != nil {
		return nil, err
	}

	missing := make(map[string]struct{}, len(codenames))
	for _, codename := range codenames {
		missing[codename] = struct{}{}
	}
	for _, p := range permissions {
		delete(missing, p.Codename)
	}

	if len(missing) > 0 {
		unknown := maps.Keys(missing)
		slices.Sort(unknown)
		return nil, errdef.NewBadRequest("unknown permissions: %s", strings.Join(unknown, ", "))
	}

	return permissions, nil
}

func (s *Service) AddUser(ctx context.Context, groupName string, userId uint) error {
	group, err := s.Find(ctx, groupName)
	if err != nil {
		return err
	}

	u, err := s.userService.FindById(ctx, userId)
	if err != nil {
		return err
	}

	if u.IsMemberOf(group.Name) {
		return nil
	}

	if err := s.groupRepository.addUser(ctx, group, u); err != nil {
		return fmt.Errorf("failed to add user %d to group %q: %v", userId, groupName, err)
	}
	return nil
}

func (s *Service) RemoveUser(ctx context.Context, groupName string, userId uint) error {
	group, err := s.Find(ctx, groupName)
	if err != nil {
		return err
	}

	u, err := s.userService.FindById(ctx, userId)
	if err != nil {
		return err
	}

	if err := s.groupRepository.removeUser(ctx, group, u); err != nil {
		return fmt.Errorf("failed to remove user %d from group %q: %v", userId, groupName, err)
	}
	return nil
}
