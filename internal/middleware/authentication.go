package middleware

import (
	"context"
	"log/slog"

	"github.com/dhis2-sre/eventos/internal/errdef"
	"github.com/dhis2-sre/eventos/internal/handler"
	"github.com/dhis2-sre/eventos/internal/util"
	"github.com/dhis2-sre/eventos/pkg/model"
	"github.com/dhis2-sre/eventos/pkg/session"
	"github.com/gin-gonic/gin"
)

const messageLoginRequired = "Debes iniciar sesión para continuar."

func NewAuthentication(logger *slog.Logger, sessionService sessionService, userService userService) AuthenticationMiddleware {
	return AuthenticationMiddleware{
		logger:         logger,
		sessionService: sessionService,
		userService:    userService,
	}
}

type sessionService interface {
	Resolve(ctx context.Context, token string) (*session.Session, error)
}

type userService interface {
	FindById(ctx context.Context, id uint) (*model.User, error)
}

type AuthenticationMiddleware struct {
	logger         *slog.Logger
	sessionService sessionService
	userService    userService
}

// SessionAuthentication resolves the user of the session cookie and puts it on the request.
// Requests without a valid session continue anonymously and a stale cookie is removed.
func (m AuthenticationMiddleware) SessionAuthentication(c *gin.Context) {
	token, err := c.Cookie(util.SessionCookieName)
	if err != nil || token == "" {
		c.Next()
		return
	}

	ctx := c.Request.Context()
	s, err := m.sessionService.Resolve(ctx, token)
	if err != nil {
		if !errdef.IsUnauthorized(err) {
			_ = c.Error(err)
			c.Abort()
			return
		}
		util.ClearSessionCookie(c)
		c.Next()
		return
	}

	user, err := m.userService.FindById(ctx, s.UserId)
	if err != nil {
		if !errdef.IsNotFound(err) {
			_ = c.Error(err)
			c.Abort()
			return
		}
		m.logger.WarnContext(ctx, "Session of unknown user", "userId", s.UserId)
		util.ClearSessionCookie(c)
		c.Next()
		return
	}

	c.Set(handler.UserKey, user)
	c.Request = c.Request.WithContext(model.NewContextWithUser(ctx, user))
	c.Next()
}

// RequireAuthentication aborts anonymous requests. They're redirected to the login page.
func (m AuthenticationMiddleware) RequireAuthentication(c *gin.Context) {
	if handler.GetActor(c) == nil {
		_ = c.Error(errdef.NewUnauthorized(messageLoginRequired))
		c.Abort()
		return
	}

	c.Next()
}
