package model

import (
	"context"
	"time"
)

// User domain object defining a user
// swagger:model
type User struct {
	ID          uint         `gorm:"primarykey" json:"id"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
	Username    string       `gorm:"index;unique;not null" json:"username"`
	Email       string       `json:"email,omitempty"`
	Password    string       `json:"-"`
	IsStaff     bool         `json:"isStaff"`
	IsSuperuser bool         `json:"isSuperuser"`
	Groups      []Group      `gorm:"many2many:user_groups;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"groups,omitempty"`
	Permissions []Permission `gorm:"many2many:user_permissions;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"permissions,omitempty"`
}

func (u *User) IsMemberOf(group string) bool {
	for _, g := range u.Groups {
		if group == g.Name {
			return true
		}
	}
	return false
}

// HasPermission reports whether the user holds the capability identified by codename. Superusers
// hold every capability, everybody else needs a direct grant or a grant through one of their
// groups. Groups and permissions have to be preloaded.
func (u *User) HasPermission(codename string) bool {
	if u.IsSuperuser {
		return true
	}

	if containsPermission(u.Permissions, codename) {
		return true
	}

	for _, g := range u.Groups {
		if containsPermission(g.Permissions, codename) {
			return true
		}
	}

	return false
}

type userCtxKey struct{}

// NewContextWithUser returns a new [context.Context] that carries value user.
func NewContextWithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, userCtxKey{}, user)
}

// GetUserFromContext returns the user stored in ctx, if any.
func GetUserFromContext(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(userCtxKey{}).(*User)
	return u, ok
}
