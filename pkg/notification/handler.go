package notification

import (
	"context"
	"io"
	"log/slog"
	"strconv"

	"github.com/dhis2-sre/eventos/internal/handler"
	"github.com/dhis2-sre/eventos/pkg/model"
	"github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"
)

func NewHandler(logger *slog.Logger, service notificationService) Handler {
	return Handler{logger, service}
}

type Handler struct {
	logger  *slog.Logger
	service notificationService
}

type notificationService interface {
	Subscribe(ctx context.Context, user model.User, afterID uint) (*Subscription, []model.Notification, error)
	Unsubscribe(subscription *Subscription)
}

// Stream notifications
func (h Handler) Stream(c *gin.Context) {
	// swagger:route GET /notificaciones streamNotifications
	//
	// Stream notifications
	//
	// Stream the notifications of the signed in user as server-sent events. Notifications newer than the Last-Event-ID header are replayed first.
	//
	// responses:
	//   200: Stream
	//   303:
	user, err := handler.GetUserFromContext(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	subscription, backlog, err := h.service.Subscribe(c.Request.Context(), *user, lastEventID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	defer func() {
		h.service.Unsubscribe(subscription)
		h.logger.InfoContext(c.Request.Context(), "Closing notification stream", "subscriptionId", subscription.ID)
	}()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	for _, notification := range backlog {
		render(c, notification)
	}
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case notification, ok := <-subscription.Messages():
			if !ok {
				return false
			}
			render(c, notification)
			return true
		}
	})
}

func render(c *gin.Context, notification model.Notification) {
	c.Render(-1, sse.Event{
		Id:    strconv.FormatUint(uint64(notification.ID), 10),
		Event: notification.Kind,
		Data:  notification,
	})
}

// lastEventID is sent by the browser when it reconnects a stream.
func lastEventID(c *gin.Context) uint {
	id, err := strconv.ParseUint(c.GetHeader("Last-Event-ID"), 10, 64)
	if err != nil {
		return 0
	}
	return uint(id)
}
