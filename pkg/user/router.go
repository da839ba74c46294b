package user

import (
	"github.com/gin-gonic/gin"
)

type AuthenticationMiddleware interface {
	SessionAuthentication(c *gin.Context)
	RequireAuthentication(c *gin.Context)
}

type AuthorizationMiddleware interface {
	RequireStaff(c *gin.Context)
}

func Routes(r *gin.Engine, authenticationMiddleware AuthenticationMiddleware, authorizationMiddleware AuthorizationMiddleware, handler Handler) {
	router := r.Group("")
	router.Use(authenticationMiddleware.SessionAuthentication)

	router.GET("/registro", handler.RegisterForm)
	router.POST("/registro", handler.Register)
	router.GET("/login", handler.LoginForm)
	router.POST("/login", handler.Login)
	router.GET("/logout", handler.Logout)

	authenticatedRouter := router.Group("")
	authenticatedRouter.Use(authenticationMiddleware.RequireAuthentication)
	authenticatedRouter.GET("/me", handler.Me)

	staffRouter := router.Group("")
	staffRouter.Use(authorizationMiddleware.RequireStaff)
	staffRouter.GET("/admin/usuarios", handler.AdminList)
}
