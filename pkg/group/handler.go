package group

import (
	"net/http"

	"github.com/dhis2-sre/eventos/internal/handler"
	"github.com/gin-gonic/gin"
)

func NewHandler(groupService *Service) Handler {
	return Handler{
		groupService: groupService,
	}
}

type Handler struct {
	groupService *Service
}

type CreateGroupRequest struct {
	Name        string   `json:"name" binding:"notblank,max=150"`
	Permissions []string `json:"permissions"`
}

// Create group
func (h Handler) Create(c *gin.Context) {
	// swagger:route POST /admin/grupos groupCreate
	//
	// Create group
	//
	// Create a group granting the given capabilities to its members. Restricted to superusers.
	//
	// responses:
	//   201: Group
	//   303:
	//   400: Error
	//   409: Error
	//   415: Error
	//   422: Error
	var request CreateGroupRequest

	if err := handler.DataBinder(c, &request); err != nil {
		_ = c.Error(err)
		return
	}

	group, err := h.groupService.Create(c.Request.Context(), request.Name, request.Permissions)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, group)
}

// FindAll groups
func (h Handler) FindAll(c *gin.Context) {
	// swagger:route GET /admin/grupos findAllGroups
	//
	// Find all groups
	//
	// Find all groups and the capabilities they grant. Restricted to superusers.
	//
	// responses:
	//   200: []Group
	//   303:
	groups, err := h.groupService.FindAll(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, groups)
}

// AddUserToGroup group
func (h Handler) AddUserToGroup(c *gin.Context) {
	// swagger:route POST /admin/grupos/{name}/usuarios/{userId} addUserToGroup
	//
	// Add user to group
	//
	// Add a user to a group. Restricted to superusers.
	//
	// responses:
	//   201:
	//   303:
	groupName := c.Param("name")

	userId, ok := handler.GetPathParameter(c, "userId")
	if !ok {
		return
	}

	err := h.groupService.AddUser(c.Request.Context(), groupName, userId)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusCreated)
}

// RemoveUserFromGroup group
func (h Handler) RemoveUserFromGroup(c *gin.Context) {
	// swagger:route DELETE /admin/grupos/{name}/usuarios/{userId} removeUserFromGroup
	//
	// Remove user from group
	//
	// Remove a user from a group. Restricted to superusers.
	//
	// responses:
	//   204:
	//   303:
	groupName := c.Param("name")

	userId, ok := handler.GetPathParameter(c, "userId")
	if !ok {
		return
	}

	err := h.groupService.RemoveUser(c.Request.Context(), groupName, userId)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}
