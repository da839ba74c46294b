package handler

import (
	"strconv"

	"github.com/dhis2-sre/eventos/internal/errdef"
	"github.com/gin-gonic/gin"
)

// GetPathParameter parses the named path parameter as an id. Anything but a positive integer
// can't match a resource so the request is aborted as not found.
func GetPathParameter(c *gin.Context, parameter string) (uint, bool) {
	idParam := c.Param(parameter)
	id, err := strconv.ParseUint(idParam, 10, 32)
	if err != nil || id == 0 {
		_ = c.Error(errdef.NewNotFound("invalid %s %q", parameter, idParam))
		c.Abort()
		return 0, false
	}
	return uint(id), true
}
