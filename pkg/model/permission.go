package model

// Capabilities on events. Codenames follow the add/change/delete/view convention.
const (
	PermissionAddEvent    = "add_event"
	PermissionChangeEvent = "change_event"
	PermissionDeleteEvent = "delete_event"
	PermissionViewEvent   = "view_event"
)

// Permission domain object defining a named capability which can be granted to users directly
// or through groups
// swagger:model
type Permission struct {
	Codename string `gorm:"primarykey" json:"codename"`
	Name     string `json:"name"`
}

func containsPermission(permissions []Permission, codename string) bool {
	for _, p := range permissions {
		if p.Codename == codename {
			return true
		}
	}
	return false
}
