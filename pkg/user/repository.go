package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/dhis2-sre/eventos/internal/errdef"
	"github.com/dhis2-sre/eventos/pkg/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//goland:noinspection GoExportedFuncWithUnexportedType
func NewRepository(db *gorm.DB) *repository {
	return &repository{db}
}

type repository struct {
	db *gorm.DB
}

func (r repository) save(ctx context.Context, user *model.User) error {
	// only use ctx for values (logging) and not cancellation signals on cud operations for now. ctx
	// cancellation can lead to rollbacks which we should decide individually.
	ctx = context.WithoutCancel(ctx)

	err := r.db.WithContext(ctx).Omit(clause.Associations).Save(user).Error
	if err != nil {
		return fmt.Errorf("failed to save user %q: %v", user.Username, err)
	}
	return nil
}

func (r repository) create(ctx context.Context, user *model.User) error {
	ctx = context.WithoutCancel(ctx)

	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errdef.NewDuplicated("user %q already exists", user.Username)
	}
	if err != nil {
		return fmt.Errorf("failed to create user %q: %v", user.Username, err)
	}
	return nil
}

func (r repository) findAll(ctx context.Context) ([]*model.User, error) {
	var users []*model.User

	err := r.db.
		WithContext(ctx).
		Preload("Groups").
		Order("username").
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find all users: %v", err)
	}

	return users, nil
}

// withGrants preloads everything needed to decide on the capabilities of a user.
func (r repository) withGrants(ctx context.Context) *gorm.DB {
	return r.db.
		WithContext(ctx).
		Preload("Groups.Permissions").
		Preload("Permissions")
}

func (r repository) findByUsername(ctx context.Context, username string) (*model.User, error) {
	var u *model.User
	err := r.withGrants(ctx).
		Where("username = ?", username).
		First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errdef.NewNotFound("failed to find user with username %q", username)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user with username %q: %v", username, err)
	}
	return u, nil
}

func (r repository) findById(ctx context.Context, id uint) (*model.User, error) {
	var u *model.User
	err := r.withGrants(ctx).First(&u, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errdef.NewNotFound("failed to find user with id %d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user with id %d: %v", id, err)
	}
	return u, nil
}

func (r repository) findOrCreate(ctx context.Context, user *model.User) (*model.User, error) {
	ctx = context.WithoutCancel(ctx)

	var u *model.User
	err := r.db.
		WithContext(ctx).
		Where(model.User{Username: user.Username}).
		Attrs(model.User{Email: user.Email, Password: user.Password}).
		FirstOrCreate(&u).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find or create user %q: %v", user.Username, err)
	}
	return u, nil
}
