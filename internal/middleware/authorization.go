package middleware

import (
	"log/slog"

	"github.com/dhis2-sre/eventos/internal/errdef"
	"github.com/dhis2-sre/eventos/internal/handler"
	"github.com/dhis2-sre/eventos/pkg/model"
	"github.com/gin-gonic/gin"
)

const messageAccessDenied = "No tienes permiso para acceder a esta página."

func NewAuthorization(logger *slog.Logger) AuthorizationMiddleware {
	return AuthorizationMiddleware{
		logger: logger,
	}
}

type AuthorizationMiddleware struct {
	logger *slog.Logger
}

// RequireStaff only lets staff members and superusers pass.
func (m AuthorizationMiddleware) RequireStaff(c *gin.Context) {
	m.require(c, "staff", func(u *model.User) bool {
		return u.IsStaff || u.IsSuperuser
	})
}

// RequireAdministrator only lets superusers pass.
func (m AuthorizationMiddleware) RequireAdministrator(c *gin.Context) {
	m.require(c, "administrator", func(u *model.User) bool {
		return u.IsSuperuser
	})
}

func (m AuthorizationMiddleware) require(c *gin.Context, role string, allowed func(*model.User) bool) {
	u := handler.GetActor(c)
	if u == nil {
		_ = c.Error(errdef.NewUnauthorized(messageLoginRequired))
		c.Abort()
		return
	}

	if !allowed(u) {
		m.logger.WarnContext(c.Request.Context(), "User tried to access restricted endpoint", "role", role)
		_ = c.Error(errdef.NewForbidden(messageAccessDenied))
		c.Abort()
		return
	}

	c.Next()
}
