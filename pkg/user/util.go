package user

import (
	"context"
	"fmt"

	"github.com/dhis2-sre/eventos/pkg/model"
)

type groupService interface {
	FindOrCreate(ctx context.Context, name string) (*model.Group, error)
	AddUser(ctx context.Context, groupName string, userId uint) error
}

type userServiceUtil interface {
	FindOrCreate(ctx context.Context, username, password string) (*model.User, error)
	Save(ctx context.Context, user *model.User) error
}

// CreateAdminUser makes sure a superuser with the given credentials exists and is a member of
// the administrator group.
func CreateAdminUser(ctx context.Context, username, password string, userService userServiceUtil, groupService groupService) error {
	u, err := userService.FindOrCreate(ctx, username, password)
	if err != nil {
		return fmt.Errorf("error creating admin user: %v", err)
	}

	u.IsStaff = true
	u.IsSuperuser = true

	err = userService.Save(ctx, u)
	if err != nil {
		return fmt.Errorf("error saving admin user: %v", err)
	}

	g, err := groupService.FindOrCreate(ctx, model.AdministratorGroupName)
	if err != nil {
		return fmt.Errorf("error creating admin group: %v", err)
	}

	err = groupService.AddUser(ctx, g.Name, u.ID)
	if err != nil {
		return fmt.Errorf("error adding admin user to admin group: %v", err)
	}

	return nil
}
