package group

import (
	"context"
	"errors"
	"fmt"

	"github.com/dhis2-sre/eventos/internal/errdef"
	"github.com/dhis2-sre/eventos/pkg/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repository struct {
	db *gorm.DB
}

//goland:noinspection GoExportedFuncWithUnexportedType
func NewRepository(db *gorm.DB) *repository {
	return &repository{
		db: db,
	}
}

func (r repository) find(ctx context.Context, name string) (*model.Group, error) {
	var group *model.Group
	err := r.db.
		WithContext(ctx).
		Preload("Permissions").
		Where("groups.name = ?", name).
		First(&group).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errdef.NewNotFound("group %q doesn't exist", name)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to find group: %v", err)
	}

	return group, nil
}

func (r repository) findAll(ctx context.Context) ([]model.Group, error) {
	var groups []model.Group
	err := r.db.
		WithContext(ctx).
		Preload("Permissions").
		Order("name").
		Find(&groups).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find groups: %v", err)
	}
	return groups, nil
}

func (r repository) create(ctx context.Context, group *model.Group) error {
	// only use ctx for values (logging) and not cancellation signals on cud operations for now. ctx
	// cancellation can lead to rollbacks which we should decide individually.
	ctx = context.WithoutCancel(ctx)

	err := r.db.WithContext(ctx).Omit("Users", "Permissions.*").Create(group).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errdef.NewDuplicated("group %q already exists", group.Name)
	}
	if err != nil {
		return fmt.Errorf("failed to create group %q: %v", group.Name, err)
	}

	return nil
}

func (r repository) findOrCreate(ctx context.Context, group *model.Group) (*model.Group, error) {
	ctx = context.WithoutCancel(ctx)

	var g *model.Group
	err := r.db.
		WithContext(ctx).
		Where(model.Group{Name: group.Name}).
		FirstOrCreate(&g).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find or create group %q: %v", group.Name, err)
	}
	return g, nil
}

func (r repository) addUser(ctx context.Context, group *model.Group, user *model.User) error {
	ctx = context.WithoutCancel(ctx)

	return r.db.WithContext(ctx).Model(group).Omit("Users.*").Association("Users").Append([]*model.User{user})
}

func (r repository) removeUser(ctx context.Context, group *model.Group, user *model.User) error {
	ctx = context.WithoutCancel(ctx)

	return r.db.WithContext(ctx).Model(group).Association("Users").Delete([]*model.User{user})
}

func (r repository) replacePermissions(ctx context.Context, group *model.Group, permissions []model.Permission) error {
	ctx = context.WithoutCancel(ctx)

	err := r.db.WithContext(ctx).Model(group).Omit("Permissions.*").Association("Permissions").Replace(permissions)
	if err != nil {
		return fmt.Errorf("failed to set permissions of group %q: %v", group.Name, err)
	}
	return nil
}

// savePermissions creates the given permissions and updates the name of existing ones.
func (r repository) savePermissions(ctx context.Context, permissions []model.Permission) error {
	if len(permissions) == 0 {
		return nil
	}

	ctx = context.WithoutCancel(ctx)

	err := r.db.
		WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "codename"}},
			DoUpdates: clause.AssignmentColumns([]string{"name"}),
		}).
		Create(&permissions).Error
	if err != nil {
		return fmt.Errorf("failed to save permissions: %v", err)
	}
	return nil
}

func (r repository) findPermissions(ctx context.Context, codenames []string) ([]model.Permission, error) {
	var permissions []model.Permission
	err := r.db.
		WithContext(ctx).
		Where("codename IN ?", codenames).
		Order("codename").
		Find(&permissions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find permissions: %v", err)
	}
	return permissions, nil
}
