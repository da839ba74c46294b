package event

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dhis2-sre/eventos/internal/errdef"
	"github.com/dhis2-sre/eventos/internal/handler"
	"github.com/dhis2-sre/eventos/pkg/model"
	"github.com/gin-gonic/gin"
)

const (
	templateList        = "eventos.tmpl"
	templateDetail      = "evento.tmpl"
	templateForm        = "evento_form.tmpl"
	templateDelete      = "evento_eliminar.tmpl"
	templateAdminEvents = "admin_eventos.tmpl"
)

// whenLayout is the format of an <input type="datetime-local">.
const whenLayout = "2006-01-02T15:04"

func NewHandler(service eventService) Handler {
	return Handler{service}
}

type Handler struct {
	service eventService
}

type eventService interface {
	Create(ctx context.Context, actor *model.User, in Input) (*model.Event, error)
	Find(ctx context.Context, actor *model.User, id uint) (*model.Event, error)
	FindEditable(ctx context.Context, actor *model.User, id uint) (*model.Event, error)
	Update(ctx context.Context, actor *model.User, id uint, in Input) (*model.Event, error)
	FindDeletable(ctx context.Context, actor *model.User, id uint) (*model.Event, error)
	Delete(ctx context.Context, actor *model.User, id uint) error
	ToggleAttendance(ctx context.Context, actor *model.User, id uint) (Toggle, *model.Event, error)
	List(ctx context.Context, actor *model.User, number int) (*Page, error)
	Search(ctx context.Context, query string) ([]model.Event, error)
	WriteICal(w io.Writer, event *model.Event) error
}

// swagger:model EventRequest
type Request struct {
	Title       string `form:"title" json:"title"`
	Description string `form:"description" json:"description"`
	When        string `form:"when" json:"when"`
	Location    string `form:"location" json:"location"`
	Kind        string `form:"kind" json:"kind"`
	IsPrivate   bool   `form:"is_private" json:"isPrivate"`
}

func (r Request) input() Input {
	return Input{
		Title:       r.Title,
		Description: r.Description,
		When:        parseWhen(r.When),
		Location:    r.Location,
		Kind:        model.Kind(r.Kind),
		IsPrivate:   r.IsPrivate,
	}
}

func requestFrom(event *model.Event) Request {
	return Request{
		Title:       event.Title,
		Description: event.Description,
		When:        event.When.UTC().Format(whenLayout),
		Location:    event.Location,
		Kind:        string(event.Kind),
		IsPrivate:   event.IsPrivate,
	}
}

// parseWhen accepts the value of a datetime-local input or RFC3339. Anything else results in the
// zero time which fails validation.
func parseWhen(value string) time.Time {
	value = strings.TrimSpace(value)
	if when, err := time.ParseInLocation(whenLayout, value, time.UTC); err == nil {
		return when
	}
	if when, err := time.Parse(time.RFC3339, value); err == nil {
		return when
	}
	return time.Time{}
}

// List events
func (h Handler) List(c *gin.Context) {
	// swagger:route GET / listEvents
	//
	// List events
	//
	// List the events visible to the current user, most recently created first. Anonymous users only see public events.
	//
	// responses:
	//   200: Page
	number, err := strconv.Atoi(c.Query("page"))
	if err != nil {
		number = 1
	}

	page, err := h.service.List(c.Request.Context(), handler.GetActor(c), number)
	if err != nil {
		_ = c.Error(err)
		return
	}

	handler.Render(c, http.StatusOK, templateList, page)
}

// Detail of an event as shown to the current user.
type Detail struct {
	Event       *model.Event `json:"event"`
	IsOrganizer bool         `json:"isOrganizer"`
	IsAttending bool         `json:"isAttending"`
	CanEdit     bool         `json:"canEdit"`
	CanDelete   bool         `json:"canDelete"`
	CanAttend   bool         `json:"canAttend"`
}

func detailOf(actor *model.User, event *model.Event) Detail {
	return Detail{
		Event:       event,
		IsOrganizer: event.IsOrganizedBy(actor),
		IsAttending: event.HasAttendee(actor),
		CanEdit:     Authorize(actor, event, ActionEdit).Allowed,
		CanDelete:   Authorize(actor, event, ActionDelete).Allowed,
		CanAttend:   Authorize(actor, event, ActionAttend).Allowed,
	}
}

// Find event
func (h Handler) Find(c *gin.Context) {
	// swagger:route GET /evento/{id} findEvent
	//
	// Find event
	//
	// Find an event by id. Private events are only shown to their organizer and attendees.
	//
	// responses:
	//   200: Detail
	//   303:
	id, ok := handler.GetPathParameter(c, "id")
	if !ok {
		return
	}

	actor := handler.GetActor(c)
	event, err := h.service.Find(c.Request.Context(), actor, id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	handler.Render(c, http.StatusOK, templateDetail, detailOf(actor, event))
}

// ICal exports an event
func (h Handler) ICal(c *gin.Context) {
	// swagger:route GET /evento/{id}/ical exportEvent
	//
	// Export event
	//
	// Download an event in iCalendar format. The same visibility rules as for viewing the event apply.
	//
	// responses:
	//   200:
	//   303:
	id, ok := handler.GetPathParameter(c, "id")
	if !ok {
		return
	}

	event, err := h.service.Find(c.Request.Context(), handler.GetActor(c), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	var buf bytes.Buffer
	if err := h.service.WriteICal(&buf, event); err != nil {
		_ = c.Error(err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", ICalFilename(event)))
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", buf.Bytes())
}

// CreateForm shows the form for a new event
func (h Handler) CreateForm(c *gin.Context) {
	if err := Authorize(handler.GetActor(c), nil, ActionCreate).Err(ActionCreate); err != nil {
		_ = c.Error(err)
		return
	}

	handler.RenderForm(c, http.StatusOK, templateForm, Request{Kind: string(model.KindConference)}, nil, nil)
}

// Create event
func (h Handler) Create(c *gin.Context) {
	// swagger:route POST /crear createEvent
	//
	// Create event
	//
	// Create an event organized by the current user. Requires the add_event capability.
	//
	// responses:
	//   303:
	//   415: Error
	//   422: Error
	actor := handler.GetActor(c)
	if err := Authorize(actor, nil, ActionCreate).Err(ActionCreate); err != nil {
		_ = c.Error(err)
		return
	}

	var request Request
	if err := handler.DataBinder(c, &request); err != nil {
		_ = c.Error(err)
		return
	}

	event, err := h.service.Create(c.Request.Context(), actor, request.input())
	if err != nil {
		h.renderFormError(c, request, nil, err)
		return
	}

	handler.Redirect(c, eventPath(event.ID), handler.LevelSuccess, "Evento creado exitosamente.")
}

// EditForm shows the form for changing an event
func (h Handler) EditForm(c *gin.Context) {
	id, ok := handler.GetPathParameter(c, "id")
	if !ok {
		return
	}

	event, err := h.service.FindEditable(c.Request.Context(), handler.GetActor(c), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	handler.RenderForm(c, http.StatusOK, templateForm, requestFrom(event), nil, event)
}

// Update event
func (h Handler) Update(c *gin.Context) {
	// swagger:route POST /evento/{id}/editar updateEvent
	//
	// Update event
	//
	// Update an event. Only the organizer of the event or a superuser may update it.
	//
	// responses:
	//   303:
	//   415: Error
	//   422: Error
	id, ok := handler.GetPathParameter(c, "id")
	if !ok {
		return
	}

	actor := handler.GetActor(c)
	if _, err := h.service.FindEditable(c.Request.Context(), actor, id); err != nil {
		_ = c.Error(err)
		return
	}

	var request Request
	if err := handler.DataBinder(c, &request); err != nil {
		_ = c.Error(err)
		return
	}

	event, err := h.service.Update(c.Request.Context(), actor, id, request.input())
	if err != nil {
		h.renderFormError(c, request, &model.Event{ID: id}, err)
		return
	}

	handler.Redirect(c, eventPath(event.ID), handler.LevelSuccess, "Evento actualizado exitosamente.")
}

// DeleteForm asks for confirmation before deleting an event
func (h Handler) DeleteForm(c *gin.Context) {
	id, ok := handler.GetPathParameter(c, "id")
	if !ok {
		return
	}

	event, err := h.service.FindDeletable(c.Request.Context(), handler.GetActor(c), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	handler.Render(c, http.StatusOK, templateDelete, event)
}

// Delete event
func (h Handler) Delete(c *gin.Context) {
	// swagger:route POST /evento/{id}/eliminar deleteEvent
	//
	// Delete event
	//
	// Delete an event. Requires the delete_event capability.
	//
	// responses:
	//   303:
	id, ok := handler.GetPathParameter(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), handler.GetActor(c), id); err != nil {
		_ = c.Error(err)
		return
	}

	handler.Redirect(c, "/", handler.LevelSuccess, "Evento eliminado exitosamente.")
}

// Attend toggles the attendance of the current user
func (h Handler) Attend(c *gin.Context) {
	// swagger:route POST /evento/{id}/registrarse toggleAttendance
	//
	// Toggle attendance
	//
	// Register the current user for an event or unregister them if they're already registered.
	//
	// responses:
	//   303:
	id, ok := handler.GetPathParameter(c, "id")
	if !ok {
		return
	}

	toggle, event, err := h.service.ToggleAttendance(c.Request.Context(), handler.GetActor(c), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	handler.Redirect(c, eventPath(event.ID), handler.LevelSuccess, toggle.Message())
}

// AdminEvents is the staff event listing.
type AdminEvents struct {
	Query  string        `json:"query"`
	Events []model.Event `json:"events"`
}

// AdminList lists all events
func (h Handler) AdminList(c *gin.Context) {
	// swagger:route GET /admin/eventos adminListEvents
	//
	// List all events
	//
	// List every event regardless of its visibility. The optional query q filters on title and description. Restricted to staff.
	//
	// responses:
	//   200: AdminEvents
	//   303:
	query := c.Query("q")
	events, err := h.service.Search(c.Request.Context(), query)
	if err != nil {
		_ = c.Error(err)
		return
	}

	handler.Render(c, http.StatusOK, templateAdminEvents, AdminEvents{Query: query, Events: events})
}

func (h Handler) renderFormError(c *gin.Context, form Request, event *model.Event, err error) {
	if errdef.IsValidation(err) {
		handler.RenderForm(c, http.StatusUnprocessableEntity, templateForm, form, errdef.ValidationFields(err), event)
		return
	}
	_ = c.Error(err)
}

func eventPath(id uint) string {
	return fmt.Sprintf("/evento/%d", id)
}
