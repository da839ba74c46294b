package notification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dhis2-sre/eventos/pkg/model"
	"github.com/go-mail/mail"
)

// backlogSize is the number of stored notifications replayed to a newly opened stream.
const backlogSize = 10

// Mailer sends mail. *mail.Dialer is a Mailer.
type Mailer interface {
	DialAndSend(m ...*mail.Message) error
}

//goland:noinspection GoExportedFuncWithUnexportedType
func NewService(logger *slog.Logger, repository notificationRepository, broker *Broker, mailer Mailer, from string) *Service {
	return &Service{
		logger:     logger,
		repository: repository,
		broker:     broker,
		mailer:     mailer,
		from:       from,
	}
}

type notificationRepository interface {
	Create(ctx context.Context, notification *model.Notification) error
	FindByUser(ctx context.Context, userID uint, afterID uint, limit int) ([]model.Notification, error)
}

type Service struct {
	logger     *slog.Logger
	repository notificationRepository
	broker     *Broker
	mailer     Mailer
	from       string
}

// AttendanceChanged notifies the organizer of event that attendee joined or left it. The
// notification is stored, pushed to the open streams of the organizer and mailed if a mailer is
// configured and the organizer has an email address.
func (s Service) AttendanceChanged(ctx context.Context, event *model.Event, attendee *model.User, joined bool) error {
	notification := &model.Notification{
		Kind:    model.NotificationAttendeeLeft,
		UserID:  event.OrganizerID,
		EventID: event.ID,
		Message: fmt.Sprintf("%s ya no asistirá al evento %q.", attendee.Username, event.Title),
	}
	if joined {
		notification.Kind = model.NotificationAttendeeJoined
		notification.Message = fmt.Sprintf("%s se ha registrado en el evento %q.", attendee.Username, event.Title)
	}

	if err := s.repository.Create(ctx, notification); err != nil {
		return err
	}

	delivered := s.broker.Send(notification.UserID, *notification)
	s.logger.DebugContext(ctx, "Notification sent", "notificationId", notification.ID, "streams", delivered)

	if s.mailer == nil || event.Organizer.Email == "" {
		return nil
	}

	m := mail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", event.Organizer.Email)
	m.SetHeader("Subject", fmt.Sprintf("Eventos: %s", event.Title))
	m.SetBody("text/plain", notification.Message)
	if err := s.mailer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to mail notification %d: %v", notification.ID, err)
	}

	return nil
}

// Subscribe opens a stream of notifications for user. The latest stored notifications with an id
// greater than afterID are returned to be sent before anything received on the subscription.
func (s Service) Subscribe(ctx context.Context, user model.User, afterID uint) (*Subscription, []model.Notification, error) {
	subscription := s.broker.Subscribe(user)

	backlog, err := s.repository.FindByUser(ctx, user.ID, afterID, backlogSize)
	if err != nil {
		s.broker.Unsubscribe(subscription)
		return nil, nil, err
	}

	return subscription, backlog, nil
}

func (s Service) Unsubscribe(subscription *Subscription) {
	s.broker.Unsubscribe(subscription)
}
