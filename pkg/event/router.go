package event

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

// Routes registers the event pages. Viewing single events is decided by the service so anonymous
// users are sent to the login page and everybody else gets the reason of the denial. Changing
// events requires a signed in user before anything else is looked at.
func Routes(r *gin.Engine, authenticationMiddleware AuthenticationMiddleware, authorizationMiddleware AuthorizationMiddleware, handler Handler) {
	router := r.Group("")
	router.Use(authenticationMiddleware.SessionAuthentication)

	router.GET("/", handler.List)
	router.GET("/evento/:id", handler.Find)
	router.GET("/evento/:id/ical", handler.ICal)

	authenticatedRouter := router.Group("")
	authenticatedRouter.Use(authenticationMiddleware.RequireAuthentication)
	authenticatedRouter.GET("/crear", handler.CreateForm)
	authenticatedRouter.POST("/crear", handler.Create)
	authenticatedRouter.GET("/evento/:id/editar", handler.EditForm)
	authenticatedRouter.POST("/evento/:id/editar", handler.Update)
	authenticatedRouter.GET("/evento/:id/eliminar", handler.DeleteForm)
	authenticatedRouter.POST("/evento/:id/eliminar", handler.Delete)
	authenticatedRouter.POST("/evento/:id/registrarse", handler.Attend)

	staffRouter := router.Group("/admin/eventos")
	staffRouter.Use(authorizationMiddleware.RequireStaff)
	staffRouter.GET("", handler.AdminList)
}
