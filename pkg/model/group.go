package model

import "time"

const (
	AdministratorGroupName = "administradores"
	OrganizerGroupName     = "organizadores"
)

// Group domain object defining a group
// swagger:model
type Group struct {
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
	Name        string       `gorm:"primarykey; unique;" json:"name"`
	Users       []User       `gorm:"many2many:user_groups;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"users,omitempty"`
	Permissions []Permission `gorm:"many2many:group_permissions;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"permissions,omitempty"`
}
