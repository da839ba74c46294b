package handler

import (
	"net/http"

	"github.com/dhis2-sre/eventos/pkg/model"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// View is the data every HTML template is rendered with.
type View struct {
	User     *model.User
	Messages []Message
	Data     any
	Form     any
	Errors   map[string]string
}

// WantsJSON reports whether the client prefers JSON over HTML.
func WantsJSON(c *gin.Context) bool {
	return c.NegotiateFormat(binding.MIMEHTML, binding.MIMEJSON) == binding.MIMEJSON
}

// Render responds with data as JSON if the client asks for it and otherwise renders the HTML
// template name.
func Render(c *gin.Context, status int, name string, data any) {
	if WantsJSON(c) {
		c.JSON(status, data)
		return
	}

	c.HTML(status, name, View{
		User:     GetActor(c),
		Messages: Flashes(c),
		Data:     data,
	})
}

// RenderForm renders the form template name with the submitted values of form and the error
// messages per field. JSON clients only get the errors.
func RenderForm(c *gin.Context, status int, name string, form any, errors map[string]string, data any) {
	if WantsJSON(c) {
		if len(errors) > 0 {
			c.JSON(status, gin.H{"errors": errors})
			return
		}
		c.JSON(status, data)
		return
	}

	c.HTML(status, name, View{
		User:     GetActor(c),
		Messages: Flashes(c),
		Data:     data,
		Form:     form,
		Errors:   errors,
	})
}

// Redirect sends the client to location with 303 See Other so the browser follows up with a GET.
// A non-empty text is flashed.
func Redirect(c *gin.Context, location, level, text string) {
	if text != "" {
		AddFlash(c, level, text)
	}
	c.Redirect(http.StatusSeeOther, location)
}
