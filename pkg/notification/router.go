package notification

import (
	"github.com/gin-gonic/gin"
)

type AuthenticationMiddleware interface {
	SessionAuthentication(c *gin.Context)
	RequireAuthentication(c *gin.Context)
}

func Routes(r *gin.Engine, authenticationMiddleware AuthenticationMiddleware, handler Handler) {
	router := r.Group("")
	router.Use(authenticationMiddleware.SessionAuthentication, authenticationMiddleware.RequireAuthentication)
	router.GET("/notificaciones", handler.Stream)
}
