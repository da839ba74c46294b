package group

import (
	"github.com/gin-gonic/gin"
)

type AuthenticationMiddleware interface {
	SessionAuthentication(c *gin.Context)
}

type AuthorizationMiddleware interface {
	RequireAdministrator(c *gin.Context)
}

func Routes(r *gin.Engine, authenticationMiddleware AuthenticationMiddleware, authorizationMiddleware AuthorizationMiddleware, handler Handler) {
	administratorRestrictedRouter := r.Group("/admin/grupos")
	administratorRestrictedRouter.Use(authenticationMiddleware.SessionAuthentication, authorizationMiddleware.RequireAdministrator)

	administratorRestrictedRouter.GET("", handler.FindAll)
	administratorRestrictedRouter.POST("", handler.Create)
	administratorRestrictedRouter.POST("/:name/usuarios/:userId", handler.AddUserToGroup)
	administratorRestrictedRouter.DELETE("/:name/usuarios/:userId", handler.RemoveUserFromGroup)
}
