package middleware

import (
	"fmt"
	"net/http"

	"github.com/dhis2-sre/eventos/internal/errdef"
	"github.com/dhis2-sre/eventos/internal/handler"
	"github.com/gin-gonic/gin"
)

const (
	loginPath = "/login"
	homePath  = "/"
)

const messageNotFound = "El recurso solicitado no existe."

// ErrorHandler turns the last error recorded on the request into a response. Denials redirect to
// the login page or the event list with the reason flashed, everything else maps to a status
// code.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		err := c.Errors.Last()
		if err == nil {
			return
		}
		if c.Writer.Status() != http.StatusOK {
			_, _ = c.Writer.WriteString(err.Error())
			return
		}

		// nolint:gocritic
		if errdef.IsUnauthorized(err) {
			handler.Redirect(c, loginPath, handler.LevelError, err.Error())
		} else if errdef.IsForbidden(err) {
			handler.Redirect(c, homePath, handler.LevelError, err.Error())
		} else if errdef.IsNotFound(err) {
			handler.Redirect(c, homePath, handler.LevelError, messageNotFound)
		} else if errdef.IsValidation(err) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": errdef.ValidationFields(err)})
		} else if errdef.IsBadRequest(err) {
			c.String(http.StatusBadRequest, err.Error())
		} else if errdef.IsDuplicated(err) {
			c.String(http.StatusConflict, err.Error())
		} else if errdef.IsConflict(err) {
			c.String(http.StatusConflict, err.Error())
		} else {
			id, _ := GetCorrelationID(c.Request.Context())
			err := fmt.Errorf("something went wrong. We'll look into it if you send us the id %q :)", id)
			c.String(http.StatusInternalServerError, err.Error())
		}
	}
}
