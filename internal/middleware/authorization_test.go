package middleware

import (
	"net/http"
	"testing"

	"github.com/dhis2-sre/eventos/internal/handler"
	"github.com/dhis2-sre/eventos/pkg/model"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestAuthorization(t *testing.T) {
	authorization := NewAuthorization(discardLogger())

	tests := map[string]struct {
		guard        gin.HandlerFunc
		user         *model.User
		wantStatus   int
		wantLocation string
	}{
		"StaffAnonymous": {
			guard:        authorization.RequireStaff,
			wantStatus:   http.StatusSeeOther,
			wantLocation: "/login",
		},
		"StaffDenied": {
			guard:        authorization.RequireStaff,
			user:         &model.User{ID: 1},
			wantStatus:   http.StatusSeeOther,
			wantLocation: "/",
		},
		"Staff": {
			guard:      authorization.RequireStaff,
			user:       &model.User{ID: 1, IsStaff: true},
			wantStatus: http.StatusOK,
		},
		"StaffSuperuser": {
			guard:      authorization.RequireStaff,
			user:       &model.User{ID: 1, IsSuperuser: true},
			wantStatus: http.StatusOK,
		},
		"AdministratorDeniedToStaff": {
			guard:        authorization.RequireAdministrator,
			user:         &model.User{ID: 1, IsStaff: true},
			wantStatus:   http.StatusSeeOther,
			wantLocation: "/",
		},
		"Administrator": {
			guard:      authorization.RequireAdministrator,
			user:       &model.User{ID: 1, IsSuperuser: true},
			wantStatus: http.StatusOK,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			setUser := func(c *gin.Context) {
				if test.user != nil {
					c.Set(handler.UserKey, test.user)
				}
				c.Next()
			}
			gin.SetMode(gin.TestMode)
			r := gin.New()
			r.Use(ErrorHandler())
			r.GET("/guarded", setUser, test.guard, func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			w := serveRequest(t, r, "/guarded")

			assert.Equal(t, test.wantStatus, w.Code)
			assert.Equal(t, test.wantLocation, w.Header().Get("Location"))
		})
	}
}
