package handler

import (
	"errors"

	"github.com/dhis2-sre/eventos/pkg/model"
	"github.com/gin-gonic/gin"
)

// UserKey is the gin context key of the authenticated user.
const UserKey = "user"

func GetUserFromContext(c *gin.Context) (*model.User, error) {
	userData, exists := c.Get(UserKey)
	if !exists {
		return nil, errors.New("user not found on context")
	}

	user, ok := userData.(*model.User)
	if !ok {
		return nil, errors.New("failed to parse user data")
	}
	return user, nil
}

// GetActor returns the user acting in this request or nil for anonymous requests.
func GetActor(c *gin.Context) *model.User {
	user, err := GetUserFromContext(c)
	if err != nil {
		return nil
	}
	return user
}
