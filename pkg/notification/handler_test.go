package notification

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dhis2-sre/eventos/internal/handler"
	"github.com/dhis2-sre/eventos/pkg/model"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_Stream(t *testing.T) {
	broker := NewBroker()
	service := &stubService{
		broker:  broker,
		backlog: []model.Notification{{ID: 1, Kind: model.NotificationAttendeeJoined, Message: "bruno se ha registrado"}},
		live:    model.Notification{ID: 2, Kind: model.NotificationAttendeeLeft, Message: "bruno ya no asistirá"},
	}
	h := NewHandler(discardLogger(), service)

	recorder := newCloseNotifyingRecorder()
	c, _ := gin.CreateTestContext(recorder)
	request, err := http.NewRequest(http.MethodGet, "/notificaciones", nil)
	require.NoError(t, err)
	request.Header.Set("Last-Event-ID", "0")
	c.Request = request
	c.Set(handler.UserKey, &model.User{ID: 1})

	h.Stream(c)

	require.Empty(t, c.Errors)
	assert.Equal(t, "text/event-stream;charset=utf-8", recorder.Header().Get("Content-Type"))
	body := recorder.Body.String()
	assert.Contains(t, body, "id:1\nevent:attendee-joined\n")
	assert.Contains(t, body, "id:2\nevent:attendee-left\n")
	assert.Less(t, strings.Index(body, "id:1\n"), strings.Index(body, "id:2\n"))
	assert.Empty(t, broker.Subscribers())
}

func TestHandler_Stream_Anonymous(t *testing.T) {
	h := NewHandler(discardLogger(), &stubService{broker: NewBroker()})

	recorder := newCloseNotifyingRecorder()
	c, _ := gin.CreateTestContext(recorder)
	request, err := http.NewRequest(http.MethodGet, "/notificaciones", nil)
	require.NoError(t, err)
	c.Request = request

	h.Stream(c)

	require.Len(t, c.Errors, 1)
	assert.ErrorContains(t, c.Errors[0], "user not found on context")
}

func TestLastEventID(t *testing.T) {
	for header, expected := range map[string]uint{"": 0, "abc": 0, "-1": 0, "42": 42} {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		request, err := http.NewRequest(http.MethodGet, "/notificaciones", nil)
		require.NoError(t, err)
		request.Header.Set("Last-Event-ID", header)
		c.Request = request

		assert.Equal(t, expected, lastEventID(c), "header %q", header)
	}
}

// stubService queues one live notification and closes the subscription so the stream ends once
// it has been sent.
type stubService struct {
	broker  *Broker
	backlog []model.Notification
	live    model.Notification
}

func (s *stubService) Subscribe(_ context.Context, user model.User, _ uint) (*Subscription, []model.Notification, error) {
	subscription := s.broker.Subscribe(user)
	if s.live.ID != 0 {
		s.broker.Send(user.ID, s.live)
	}
	s.broker.Unsubscribe(subscription)
	return subscription, s.backlog, nil
}

func (s *stubService) Unsubscribe(subscription *Subscription) {
	s.broker.Unsubscribe(subscription)
}

type closeNotifyingRecorder struct {
	*httptest.ResponseRecorder
	closed chan bool
}

func newCloseNotifyingRecorder() *closeNotifyingRecorder {
	return &closeNotifyingRecorder{
		httptest.NewRecorder(),
		make(chan bool, 1),
	}
}

func (c *closeNotifyingRecorder) CloseNotify() <-chan bool {
	return c.closed
}
