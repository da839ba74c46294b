package user

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/dhis2-sre/eventos/internal/errdef"
	"github.com/dhis2-sre/eventos/internal/handler"
	"github.com/dhis2-sre/eventos/internal/util"
	"github.com/dhis2-sre/eventos/pkg/model"
	"github.com/dhis2-sre/eventos/pkg/session"
	"github.com/gin-gonic/gin"
)

const (
	templateRegister   = "registro.tmpl"
	templateLogin      = "login.tmpl"
	templateAdminUsers = "admin_usuarios.tmpl"
)

func NewHandler(userService userService, sessionService sessionService) Handler {
	return Handler{
		userService:    userService,
		sessionService: sessionService,
	}
}

type Handler struct {
	userService    userService
	sessionService sessionService
}

type userService interface {
	SignUp(ctx context.Context, username, email, password string) (*model.User, error)
	SignIn(ctx context.Context, username, password string) (*model.User, error)
	FindById(ctx context.Context, id uint) (*model.User, error)
	FindAll(ctx context.Context) ([]*model.User, error)
}

type sessionService interface {
	Start(ctx context.Context, userId uint) (*session.Session, error)
	End(ctx context.Context, token string) error
}

type SignUpRequest struct {
	Username        string `form:"username" json:"username" binding:"notblank,max=150"`
	Email           string `form:"email" json:"email" binding:"omitempty,email"`
	Password        string `form:"password" json:"password" binding:"required,min=8,max=128"`
	PasswordConfirm string `form:"password_confirm" json:"password_confirm" binding:"required"`
}

// RegisterForm shows the registration form
func (h Handler) RegisterForm(c *gin.Context) {
	handler.RenderForm(c, http.StatusOK, templateRegister, SignUpRequest{}, nil, nil)
}

// Register user
func (h Handler) Register(c *gin.Context) {
	// swagger:route POST /registro signUp
	//
	// Sign up
	//
	// Register a user. Registered users can attend events but need to be granted capabilities to create, edit or delete events.
	//
	// responses:
	//   303:
	//   409: Error
	//   415: Error
	//   422: Error
	var request SignUpRequest

	if err := handler.DataBinder(c, &request); err != nil {
		h.renderFormError(c, templateRegister, request, err)
		return
	}

	if request.Password != request.PasswordConfirm {
		handler.RenderForm(c, http.StatusUnprocessableEntity, templateRegister, request, map[string]string{
			"password_confirm": "Las contraseñas no coinciden.",
		}, nil)
		return
	}

	_, err := h.userService.SignUp(c.Request.Context(), request.Username, request.Email, request.Password)
	if err != nil {
		if errdef.IsDuplicated(err) {
			handler.RenderForm(c, http.StatusConflict, templateRegister, request, map[string]string{
				"username": "Ya existe un usuario con este nombre.",
			}, nil)
			return
		}
		_ = c.Error(err)
		return
	}

	handler.Redirect(c, "/login", handler.LevelSuccess, "¡Registro exitoso! Inicia sesión con tus credenciales.")
}

type SignInRequest struct {
	Username string `form:"username" json:"username" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
}

// LoginForm shows the login form. Signed in users are sent to the event list.
func (h Handler) LoginForm(c *gin.Context) {
	if handler.GetActor(c) != nil {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	handler.RenderForm(c, http.StatusOK, templateLogin, SignInRequest{}, nil, nil)
}

// Login user
func (h Handler) Login(c *gin.Context) {
	// swagger:route POST /login signIn
	//
	// Sign in
	//
	// Sign in and start a session. The session is kept in the HTTP only cookie "sessionid".
	//
	// responses:
	//   303:
	//   401: Error
	//   415: Error
	//   422: Error
	var request SignInRequest

	if err := handler.DataBinder(c, &request); err != nil {
		h.renderFormError(c, templateLogin, request, err)
		return
	}

	ctx := c.Request.Context()
	user, err := h.userService.SignIn(ctx, request.Username, request.Password)
	if err != nil {
		if errdef.IsUnauthorized(err) {
			request.Password = ""
			handler.RenderForm(c, http.StatusUnauthorized, templateLogin, request, map[string]string{
				"form": err.Error(),
			}, nil)
			return
		}
		_ = c.Error(err)
		return
	}

	s, err := h.sessionService.Start(ctx, user.ID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	util.SetSessionCookie(c, s.Token, s.MaxAge())

	handler.Redirect(c, "/", handler.LevelSuccess, fmt.Sprintf("¡Bienvenido %s!", user.Username))
}

// Logout ends the session of the user
func (h Handler) Logout(c *gin.Context) {
	// swagger:route GET /logout signOut
	//
	// Sign out
	//
	// End the current session. Signing out without a session is a no-op.
	//
	// responses:
	//   303:
	if token, err := c.Cookie(util.SessionCookieName); err == nil && token != "" {
		if err := h.sessionService.End(c.Request.Context(), token); err != nil {
			_ = c.Error(err)
			return
		}
	}
	util.ClearSessionCookie(c)

	handler.Redirect(c, "/login", handler.LevelSuccess, "Has cerrado sesión exitosamente.")
}

// Me user
func (h Handler) Me(c *gin.Context) {
	// swagger:route GET /me me
	//
	// User details
	//
	// Current user details including groups and capabilities
	//
	// responses:
	//   200: User
	//   303:
	user, err := handler.GetUserFromContext(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// AdminUser is a row of the staff user listing.
type AdminUser struct {
	ID          uint   `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	IsStaff     bool   `json:"isStaff"`
	IsSuperuser bool   `json:"isSuperuser"`
	Groups      string `json:"groups"`
}

const noGroup = "Sin grupo asignado"

func groupNames(user *model.User) string {
	if len(user.Groups) == 0 {
		return noGroup
	}

	names := make([]string, len(user.Groups))
	for i, g := range user.Groups {
		names[i] = g.Name
	}
	return strings.Join(names, ", ")
}

// AdminList lists all users with their groups
func (h Handler) AdminList(c *gin.Context) {
	// swagger:route GET /admin/usuarios adminListUsers
	//
	// List users
	//
	// List all users and the groups they belong to. Restricted to staff.
	//
	// responses:
	//   200: []AdminUser
	//   303:
	users, err := h.userService.FindAll(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	rows := make([]AdminUser, len(users))
	for i, u := range users {
		rows[i] = AdminUser{
			ID:          u.ID,
			Username:    u.Username,
			Email:       u.Email,
			IsStaff:     u.IsStaff,
			IsSuperuser: u.IsSuperuser,
			Groups:      groupNames(u),
		}
	}

	handler.Render(c, http.StatusOK, templateAdminUsers, rows)
}

func (h Handler) renderFormError(c *gin.Context, template string, form any, err error) {
	if errdef.IsValidation(err) {
		handler.RenderForm(c, http.StatusUnprocessableEntity, template, form, errdef.ValidationFields(err), nil)
		return
	}
	_ = c.Error(err)
}
