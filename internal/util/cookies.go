package util

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SessionCookieName is the name of the cookie carrying the signed session token.
const SessionCookieName = "sessionid"

// CookieSettings are applied to every cookie the application sets.
type CookieSettings struct {
	SameSite http.SameSite
	Domain   string
	Secure   bool
}

const cookieSettingsKey = "cookieSettings"

var defaultCookieSettings = CookieSettings{SameSite: http.SameSiteLaxMode}

// WithCookieSettings makes settings available to SetCookie for the rest of the request.
func WithCookieSettings(settings CookieSettings) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(cookieSettingsKey, settings)
		c.Next()
	}
}

func cookieSettings(c *gin.Context) CookieSettings {
	if v, ok := c.Get(cookieSettingsKey); ok {
		if settings, ok := v.(CookieSettings); ok {
			return settings
		}
	}
	return defaultCookieSettings
}

// SetCookie sets an HTTP only cookie on the root path. A negative maxAge deletes the cookie.
func SetCookie(c *gin.Context, name, value string, maxAge int) {
	settings := cookieSettings(c)
	c.SetSameSite(settings.SameSite)
	c.SetCookie(name, value, maxAge, "/", settings.Domain, settings.Secure, true)
}

func SetSessionCookie(c *gin.Context, token string, maxAge int) {
	SetCookie(c, SessionCookieName, token, maxAge)
}

func ClearSessionCookie(c *gin.Context) {
	SetCookie(c, SessionCookieName, "", -1)
}
