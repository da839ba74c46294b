package event

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dhis2-sre/eventos/internal/errdef"
	"github.com/dhis2-sre/eventos/pkg/model"
)

// PageSize is the number of events on one page of the listing.
const PageSize = 10

const maxLength = 200

//goland:noinspection GoExportedFuncWithUnexportedType
func NewService(logger *slog.Logger, repository eventRepository, notifier notifier) *Service {
	return &Service{
		logger:     logger,
		repository: repository,
		notifier:   notifier,
		now:        time.Now,
	}
}

type eventRepository interface {
	Create(ctx context.Context, event *model.Event) error
	Find(ctx context.Context, id uint) (*model.Event, error)
	FindInScope(ctx context.Context, id uint, scope EditScope) (*model.Event, error)
	List(ctx context.Context, actor *model.User, offset, limit int) ([]model.Event, int64, error)
	Search(ctx context.Context, query string) ([]model.Event, error)
	Update(ctx context.Context, event *model.Event) error
	Delete(ctx context.Context, id uint) error
	AddAttendee(ctx context.Context, event *model.Event, user *model.User) error
	RemoveAttendee(ctx context.Context, event *model.Event, user *model.User) error
}

type notifier interface {
	AttendanceChanged(ctx context.Context, event *model.Event, attendee *model.User, joined bool) error
}

type Service struct {
	logger     *slog.Logger
	repository eventRepository
	notifier   notifier
	now        func() time.Time
}

// Input holds the user editable fields of an event.
type Input struct {
	Title       string
	Description string
	When        time.Time
	Location    string
	Kind        model.Kind
	IsPrivate   bool
}

func (in Input) validate() error {
	fields := make(map[string]string)
	requireText(fields, "title", in.Title)
	requireText(fields, "description", in.Description)
	requireText(fields, "location", in.Location)
	if utf8.RuneCountInString(in.Title) > maxLength {
		fields["title"] = fmt.Sprintf("Asegúrese de que este valor tenga como máximo %d caracteres.", maxLength)
	}
	if utf8.RuneCountInString(in.Location) > maxLength {
		fields["location"] = fmt.Sprintf("Asegúrese de que este valor tenga como máximo %d caracteres.", maxLength)
	}
	if in.When.IsZero() {
		fields["when"] = "Introduzca una fecha/hora válida."
	}
	if _, ok := model.ParseKind(string(in.Kind)); !ok {
		fields["kind"] = fmt.Sprintf("Escoja una opción válida. %q no es una de las opciones disponibles.", in.Kind)
	}

	if len(fields) > 0 {
		return errdef.NewValidation(fields)
	}
	return nil
}

func requireText(fields map[string]string, name, value string) {
	if strings.TrimSpace(value) == "" {
		fields[name] = "Este campo es obligatorio."
	}
}

func (in Input) apply(event *model.Event) {
	kind, _ := model.ParseKind(string(in.Kind))
	event.Title = strings.TrimSpace(in.Title)
	event.Description = strings.TrimSpace(in.Description)
	event.When = in.When
	event.Location = strings.TrimSpace(in.Location)
	event.Kind = kind
	event.IsPrivate = in.IsPrivate
}

// Create persists a new event organized by actor.
func (s Service) Create(ctx context.Context, actor *model.User, in Input) (*model.Event, error) {
	if err := Authorize(actor, nil, ActionCreate).Err(ActionCreate); err != nil {
		return nil, err
	}

	if err := in.validate(); err != nil {
		return nil, err
	}

	event := &model.Event{
		CreatedAt:   s.now(),
		OrganizerID: actor.ID,
	}
	in.apply(event)

	if err := s.repository.Create(ctx, event); err != nil {
		return nil, err
	}
	event.Organizer = *actor

	s.logger.InfoContext(ctx, "Event created", "eventId", event.ID)
	return event, nil
}

// Find returns the event with given id if actor may view it.
func (s Service) Find(ctx context.Context, actor *model.User, id uint) (*model.Event, error) {
	event, err := s.repository.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := Authorize(actor, event, ActionView).Err(ActionView); err != nil {
		return nil, err
	}

	return event, nil
}

// FindEditable returns the event with given id if it's within the edit scope of actor. An event
// outside the scope results in the same denial as an event the actor isn't allowed to edit.
func (s Service) FindEditable(ctx context.Context, actor *model.User, id uint) (*model.Event, error) {
	if actor == nil {
		return nil, Authorize(nil, nil, ActionEdit).Err(ActionEdit)
	}

	event, err := s.repository.FindInScope(ctx, id, EditScopeOf(actor))
	if err != nil {
		if errdef.IsNotFound(err) {
			return nil, denied(ReasonForbidden).Err(ActionEdit)
		}
		return nil, err
	}

	if err := Authorize(actor, event, ActionEdit).Err(ActionEdit); err != nil {
		return nil, err
	}

	return event, nil
}

// Update changes the editable fields of an event within the edit scope of actor. Organizer and
// creation time are kept.
func (s Service) Update(ctx context.Context, actor *model.User, id uint, in Input) (*model.Event, error) {
	event, err := s.FindEditable(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if err := in.validate(); err != nil {
		return nil, err
	}

	in.apply(event)
	if err := s.repository.Update(ctx, event); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Event updated", "eventId", event.ID)
	return event, nil
}

// FindDeletable returns the event with given id if actor holds the delete capability. The
// capability is checked before the event is looked up.
func (s Service) FindDeletable(ctx context.Context, actor *model.User, id uint) (*model.Event, error) {
	if err := Authorize(actor, nil, ActionDelete).Err(ActionDelete); err != nil {
		return nil, err
	}

	return s.repository.Find(ctx, id)
}

// Delete removes the event with given id. The delete capability is checked before the event is
// looked up.
func (s Service) Delete(ctx context.Context, actor *model.User, id uint) error {
	event, err := s.FindDeletable(ctx, actor, id)
	if err != nil {
		return err
	}

	if err := s.repository.Delete(ctx, event.ID); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Event deleted", "eventId", event.ID)
	return nil
}

// Toggle is the direction an attendance toggle went.
type Toggle int

const (
	Joined Toggle = iota + 1
	Left
)

func (t Toggle) String() string {
	switch t {
	case Joined:
		return "joined"
	case Left:
		return "left"
	}
	return "unknown"
}

// Message is shown to the actor after toggling their attendance.
func (t Toggle) Message() string {
	if t == Left {
		return "Te has desregistrado del evento."
	}
	return "¡Te has registrado en el evento!"
}

// ToggleAttendance adds actor to the attendees of the event or removes them if they already
// attend it.
func (s Service) ToggleAttendance(ctx context.Context, actor *model.User, id uint) (Toggle, *model.Event, error) {
	if actor == nil {
		return 0, nil, Authorize(nil, nil, ActionAttend).Err(ActionAttend)
	}

	event, err := s.repository.Find(ctx, id)
	if err != nil {
		return 0, nil, err
	}

	if err := Authorize(actor, event, ActionAttend).Err(ActionAttend); err != nil {
		return 0, nil, err
	}

	toggle := Joined
	if event.HasAttendee(actor) {
		toggle = Left
		err = s.repository.RemoveAttendee(ctx, event, actor)
	} else {
		err = s.repository.AddAttendee(ctx, event, actor)
	}
	if err != nil {
		return 0, nil, fmt.Errorf("failed to toggle attendance: %v", err)
	}

	s.logger.InfoContext(ctx, "Attendance toggled", "eventId", event.ID, "toggle", toggle.String())

	if s.notifier != nil && !event.IsOrganizedBy(actor) {
		if err := s.notifier.AttendanceChanged(ctx, event, actor, toggle == Joined); err != nil {
			s.logger.ErrorContext(ctx, "Failed to notify organizer", "error", err, "eventId", event.ID)
		}
	}

	return toggle, event, nil
}

// Page of the event listing.
type Page struct {
	Events   []model.Event `json:"events"`
	Number   int           `json:"number"`
	Size     int           `json:"size"`
	Total    int64         `json:"total"`
	NumPages int           `json:"numPages"`
}

func (p Page) HasPrevious() bool {
	return p.Number > 1
}

func (p Page) HasNext() bool {
	return p.Number < p.NumPages
}

func (p Page) Previous() int {
	return p.Number - 1
}

func (p Page) Next() int {
	return p.Number + 1
}

// List returns the given 1-based page of events visible to actor. Pages past the end are
// clamped to the last page.
func (s Service) List(ctx context.Context, actor *model.User, number int) (*Page, error) {
	if number < 1 {
		number = 1
	}

	events, total, err := s.repository.List(ctx, actor, (number-1)*PageSize, PageSize)
	if err != nil {
		return nil, err
	}

	numPages := numberOfPages(total)
	if number > numPages {
		number = numPages
		events, total, err = s.repository.List(ctx, actor, (number-1)*PageSize, PageSize)
		if err != nil {
			return nil, err
		}
	}

	return &Page{
		Events:   events,
		Number:   number,
		Size:     PageSize,
		Total:    total,
		NumPages: numPages,
	}, nil
}

func numberOfPages(total int64) int {
	if total <= 0 {
		return 1
	}
	return int((total + PageSize - 1) / PageSize)
}

// Search returns every event matching query in its title or description.
func (s Service) Search(ctx context.Context, query string) ([]model.Event, error) {
	return s.repository.Search(ctx, strings.TrimSpace(query))
}
