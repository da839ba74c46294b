package event

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/dhis2-sre/eventos/internal/errdef"
	"github.com/dhis2-sre/eventos/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var when = time.Date(2024, 4, 2, 18, 30, 0, 0, time.UTC)

func validInput() Input {
	return Input{
		Title:       "Go meetup",
		Description: "Charlas sobre Go",
		When:        when,
		Location:    "Madrid",
		Kind:        model.KindConference,
	}
}

func newTestService(repository eventRepository, notifier notifier) *Service {
	s := NewService(discardLogger(), repository, notifier)
	s.now = func() time.Time { return time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC) }
	return s
}

func TestService_Create(t *testing.T) {
	repository := &mockRepository{}
	repository.On("Create", mock.AnythingOfType("*model.Event")).Return(nil)
	service := newTestService(repository, nil)

	event, err := service.Create(context.Background(), creator, validInput())

	require.NoError(t, err)
	assert.Equal(t, creator.ID, event.OrganizerID)
	assert.Equal(t, creator.ID, event.Organizer.ID)
	assert.Equal(t, time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC), event.CreatedAt)
	assert.Equal(t, "Go meetup", event.Title)
	assert.Equal(t, model.KindConference, event.Kind)
	repository.AssertExpectations(t)
}

func TestService_Create_KindAlias(t *testing.T) {
	repository := &mockRepository{}
	repository.On("Create", mock.AnythingOfType("*model.Event")).Return(nil)
	service := newTestService(repository, nil)
	in := validInput()
	in.Kind = "Concert"

	event, err := service.Create(context.Background(), creator, in)

	require.NoError(t, err)
	assert.Equal(t, model.KindConcert, event.Kind)
}

func TestService_Create_Denied(t *testing.T) {
	repository := &mockRepository{}
	service := newTestService(repository, nil)

	_, err := service.Create(context.Background(), nil, validInput())
	require.True(t, errdef.IsUnauthorized(err))

	_, err = service.Create(context.Background(), stranger, validInput())
	require.True(t, errdef.IsForbidden(err))
	assert.EqualError(t, err, "No tienes permiso para crear eventos.")

	repository.AssertNotCalled(t, "Create", mock.Anything)
}

func TestService_Create_Invalid(t *testing.T) {
	repository := &mockRepository{}
	service := newTestService(repository, nil)

	_, err := service.Create(context.Background(), creator, Input{Title: "  ", Kind: "taller"})

	require.True(t, errdef.IsValidation(err))
	fields := errdef.ValidationFields(err)
	assert.Equal(t, "Este campo es obligatorio.", fields["title"])
	assert.Equal(t, "Este campo es obligatorio.", fields["description"])
	assert.Equal(t, "Este campo es obligatorio.", fields["location"])
	assert.Equal(t, "Introduzca una fecha/hora válida.", fields["when"])
	assert.Contains(t, fields["kind"], "taller")
	repository.AssertNotCalled(t, "Create", mock.Anything)
}

func TestService_Find(t *testing.T) {
	repository := &mockRepository{}
	repository.On("Find", uint(10)).Return(privateEvent(), nil)
	service := newTestService(repository, nil)

	event, err := service.Find(context.Background(), attendee, 10)
	require.NoError(t, err)
	assert.Equal(t, uint(10), event.ID)

	_, err = service.Find(context.Background(), stranger, 10)
	require.True(t, errdef.IsForbidden(err))

	_, err = service.Find(context.Background(), nil, 10)
	require.True(t, errdef.IsUnauthorized(err))
}

func TestService_Find_NotFound(t *testing.T) {
	repository := &mockRepository{}
	repository.On("Find", uint(99)).Return(nil, errdef.NewNotFound("failed to find event with id %d", 99))
	service := newTestService(repository, nil)

	_, err := service.Find(context.Background(), nil, 99)

	require.True(t, errdef.IsNotFound(err))
}

func TestService_Update(t *testing.T) {
	repository := &mockRepository{}
	repository.On("FindInScope", uint(10), EditScope{OrganizerID: organizer.ID}).Return(publicEvent(), nil)
	repository.On("Update", mock.AnythingOfType("*model.Event")).Return(nil)
	service := newTestService(repository, nil)
	in := validInput()
	in.Title = "Go meetup 2"
	in.IsPrivate = true

	event, err := service.Update(context.Background(), organizer, 10, in)

	require.NoError(t, err)
	assert.Equal(t, "Go meetup 2", event.Title)
	assert.True(t, event.IsPrivate)
	assert.Equal(t, organizer.ID, event.OrganizerID)
	repository.AssertExpectations(t)
}

func TestService_Update_OutOfScope(t *testing.T) {
	repository := &mockRepository{}
	repository.On("FindInScope", uint(10), EditScope{OrganizerID: creator.ID}).Return(nil, errdef.NewNotFound("failed to find event with id %d", 10))
	service := newTestService(repository, nil)

	_, err := service.Update(context.Background(), creator, 10, validInput())

	require.True(t, errdef.IsForbidden(err))
	assert.EqualError(t, err, "No tienes permiso para editar este evento.")
	repository.AssertNotCalled(t, "Update", mock.Anything)
}

func TestService_Update_Superuser(t *testing.T) {
	repository := &mockRepository{}
	repository.On("FindInScope", uint(10), EditScope{All: true}).Return(publicEvent(), nil)
	repository.On("Update", mock.AnythingOfType("*model.Event")).Return(nil)
	service := newTestService(repository, nil)

	event, err := service.Update(context.Background(), superuser, 10, validInput())

	require.NoError(t, err)
	assert.Equal(t, organizer.ID, event.OrganizerID)
}

func TestService_Update_Anonymous(t *testing.T) {
	repository := &mockRepository{}
	service := newTestService(repository, nil)

	_, err := service.Update(context.Background(), nil, 10, validInput())

	require.True(t, errdef.IsUnauthorized(err))
	repository.AssertNotCalled(t, "FindInScope", mock.Anything, mock.Anything)
}

func TestService_Update_Invalid(t *testing.T) {
	repository := &mockRepository{}
	repository.On("FindInScope", uint(10), EditScope{OrganizerID: organizer.ID}).Return(publicEvent(), nil)
	service := newTestService(repository, nil)
	in := validInput()
	in.Title = ""

	_, err := service.Update(context.Background(), organizer, 10, in)

	require.True(t, errdef.IsValidation(err))
	repository.AssertNotCalled(t, "Update", mock.Anything)
}

func TestService_Delete(t *testing.T) {
	repository := &mockRepository{}
	repository.On("Find", uint(10)).Return(publicEvent(), nil)
	repository.On("Delete", uint(10)).Return(nil)
	service := newTestService(repository, nil)

	err := service.Delete(context.Background(), deleter, 10)

	require.NoError(t, err)
	repository.AssertExpectations(t)
}

func TestService_Delete_OrganizerWithoutCapability(t *testing.T) {
	repository := &mockRepository{}
	service := newTestService(repository, nil)

	err := service.Delete(context.Background(), organizer, 10)

	require.True(t, errdef.IsForbidden(err))
	assert.EqualError(t, err, "Solo administradores pueden eliminar eventos.")
	repository.AssertNotCalled(t, "Find", mock.Anything)
	repository.AssertNotCalled(t, "Delete", mock.Anything)
}

func TestService_ToggleAttendance(t *testing.T) {
	event := publicEvent()
	repository := &mockRepository{}
	repository.On("Find", uint(10)).Return(event, nil)
	repository.On("AddAttendee", event, stranger).Return(nil)
	notifier := &mockNotifier{}
	notifier.On("AttendanceChanged", event, stranger, true).Return(nil)
	service := newTestService(repository, notifier)

	toggle, toggled, err := service.ToggleAttendance(context.Background(), stranger, 10)

	require.NoError(t, err)
	assert.Equal(t, Joined, toggle)
	assert.Equal(t, "¡Te has registrado en el evento!", toggle.Message())
	assert.Same(t, event, toggled)
	repository.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestService_ToggleAttendance_Leave(t *testing.T) {
	event := publicEvent()
	repository := &mockRepository{}
	repository.On("Find", uint(10)).Return(event, nil)
	repository.On("RemoveAttendee", event, attendee).Return(nil)
	notifier := &mockNotifier{}
	notifier.On("AttendanceChanged", event, attendee, false).Return(nil)
	service := newTestService(repository, notifier)

	toggle, _, err := service.ToggleAttendance(context.Background(), attendee, 10)

	require.NoError(t, err)
	assert.Equal(t, Left, toggle)
	assert.Equal(t, "Te has desregistrado del evento.", toggle.Message())
	notifier.AssertExpectations(t)
}

func TestService_ToggleAttendance_Organizer(t *testing.T) {
	event := privateEvent()
	repository := &mockRepository{}
	repository.On("Find", uint(10)).Return(event, nil)
	repository.On("AddAttendee", event, organizer).Return(nil)
	notifier := &mockNotifier{}
	service := newTestService(repository, notifier)

	toggle, _, err := service.ToggleAttendance(context.Background(), organizer, 10)

	require.NoError(t, err)
	assert.Equal(t, Joined, toggle)
	notifier.AssertNotCalled(t, "AttendanceChanged", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_ToggleAttendance_Denied(t *testing.T) {
	repository := &mockRepository{}
	repository.On("Find", uint(10)).Return(privateEvent(), nil)
	service := newTestService(repository, nil)

	_, _, err := service.ToggleAttendance(context.Background(), nil, 10)
	require.True(t, errdef.IsUnauthorized(err))

	_, _, err = service.ToggleAttendance(context.Background(), stranger, 10)
	require.True(t, errdef.IsForbidden(err))
	assert.EqualError(t, err, "No puedes registrarte en eventos privados.")

	repository.AssertNotCalled(t, "AddAttendee", mock.Anything, mock.Anything)
}

func TestService_ToggleAttendance_NotifierError(t *testing.T) {
	event := publicEvent()
	repository := &mockRepository{}
	repository.On("Find", uint(10)).Return(event, nil)
	repository.On("AddAttendee", event, stranger).Return(nil)
	notifier := &mockNotifier{}
	notifier.On("AttendanceChanged", event, stranger, true).Return(errors.New("smtp down"))
	service := newTestService(repository, notifier)

	toggle, _, err := service.ToggleAttendance(context.Background(), stranger, 10)

	require.NoError(t, err)
	assert.Equal(t, Joined, toggle)
}

func TestService_List(t *testing.T) {
	events := []model.Event{{ID: 3}, {ID: 2}}
	repository := &mockRepository{}
	repository.On("List", stranger, 10, PageSize).Return(events, int64(12), nil)
	service := newTestService(repository, nil)

	page, err := service.List(context.Background(), stranger, 2)

	require.NoError(t, err)
	assert.Equal(t, events, page.Events)
	assert.Equal(t, 2, page.Number)
	assert.Equal(t, 2, page.NumPages)
	assert.True(t, page.HasPrevious())
	assert.False(t, page.HasNext())
}

func TestService_List_ClampsToLastPage(t *testing.T) {
	var anonymous *model.User
	repository := &mockRepository{}
	repository.On("List", anonymous, 40, PageSize).Return([]model.Event{}, int64(25), nil)
	repository.On("List", anonymous, 20, PageSize).Return([]model.Event{{ID: 1}}, int64(25), nil)
	service := newTestService(repository, nil)

	page, err := service.List(context.Background(), nil, 5)

	require.NoError(t, err)
	assert.Equal(t, 3, page.Number)
	assert.Equal(t, 3, page.NumPages)
	assert.Len(t, page.Events, 1)
}

func TestService_List_InvalidPage(t *testing.T) {
	var anonymous *model.User
	repository := &mockRepository{}
	repository.On("List", anonymous, 0, PageSize).Return([]model.Event{}, int64(0), nil)
	service := newTestService(repository, nil)

	page, err := service.List(context.Background(), nil, -3)

	require.NoError(t, err)
	assert.Equal(t, 1, page.Number)
	assert.Equal(t, 1, page.NumPages)
}

func TestNumberOfPages(t *testing.T) {
	for total, expected := range map[int64]int{0: 1, 1: 1, 10: 1, 11: 2, 20: 2, 21: 3} {
		assert.Equal(t, expected, numberOfPages(total), "total %d", total)
	}
}

func TestService_Search(t *testing.T) {
	repository := &mockRepository{}
	repository.On("Search", "go").Return([]model.Event{{ID: 1}}, nil)
	service := newTestService(repository, nil)

	events, err := service.Search(context.Background(), "  go ")

	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockRepository struct{ mock.Mock }

func (m *mockRepository) Create(_ context.Context, event *model.Event) error {
	called := m.Called(event)
	if called.Error(0) == nil {
		event.ID = 10
	}
	return called.Error(0)
}

func (m *mockRepository) Find(_ context.Context, id uint) (*model.Event, error) {
	called := m.Called(id)
	return eventOrError(called)
}

func (m *mockRepository) FindInScope(_ context.Context, id uint, scope EditScope) (*model.Event, error) {
	called := m.Called(id, scope)
	return eventOrError(called)
}

func (m *mockRepository) List(_ context.Context, actor *model.User, offset, limit int) ([]model.Event, int64, error) {
	called := m.Called(actor, offset, limit)
	return called.Get(0).([]model.Event), called.Get(1).(int64), called.Error(2)
}

func (m *mockRepository) Search(_ context.Context, query string) ([]model.Event, error) {
	called := m.Called(query)
	return called.Get(0).([]model.Event), called.Error(1)
}

func (m *mockRepository) Update(_ context.Context, event *model.Event) error {
	return m.Called(event).Error(0)
}

func (m *mockRepository) Delete(_ context.Context, id uint) error {
	return m.Called(id).Error(0)
}

func (m *mockRepository) AddAttendee(_ context.Context, event *model.Event, user *model.User) error {
	return m.Called(event, user).Error(0)
}

func (m *mockRepository) RemoveAttendee(_ context.Context, event *model.Event, user *model.User) error {
	return m.Called(event, user).Error(0)
}

func eventOrError(called mock.Arguments) (*model.Event, error) {
	if e, ok := called.Get(0).(*model.Event); ok {
		return e, nil
	}
	return nil, called.Error(1)
}

type mockNotifier struct{ mock.Mock }

func (m *mockNotifier) AttendanceChanged(_ context.Context, event *model.Event, attendee *model.User, joined bool) error {
	return m.Called(event, attendee, joined).Error(0)
}
