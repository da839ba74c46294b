package notification

import (
	"sync"

	"github.com/dhis2-sre/eventos/pkg/model"
	"github.com/google/uuid"
	"golang.org/x/exp/maps"
)

// subscriptionBuffer is the number of notifications kept for a slow subscriber. Notifications
// sent to a full subscription are dropped, they're persisted anyway.
const subscriptionBuffer = 16

func NewBroker() *Broker {
	return &Broker{
		subscribers: make(map[uint]*subscriber),
	}
}

type subscriber struct {
	user          model.User
	subscriptions map[string]*Subscription
}

// Subscription delivers the notifications of one user to one open stream.
type Subscription struct {
	ID       string
	UserID   uint
	messages chan model.Notification
}

// Messages is closed once the subscription is cancelled.
func (s *Subscription) Messages() <-chan model.Notification {
	return s.messages
}

// Broker fans notifications out to the open streams of their recipient. A user may have several
// streams open, one per browser tab.
type Broker struct {
	subscribers map[uint]*subscriber
	lock        sync.Mutex
}

func (b *Broker) Subscribe(user model.User) *Subscription {
	b.lock.Lock()
	defer b.lock.Unlock()

	s, ok := b.subscribers[user.ID]
	if !ok {
		s = &subscriber{
			user:          user,
			subscriptions: make(map[string]*Subscription),
		}
		b.subscribers[user.ID] = s
	}

	subscription := &Subscription{
		ID:       uuid.NewString(),
		UserID:   user.ID,
		messages: make(chan model.Notification, subscriptionBuffer),
	}
	s.subscriptions[subscription.ID] = subscription
	return subscription
}

// Unsubscribe cancels the subscription. Cancelling it more than once is a no-op.
func (b *Broker) Unsubscribe(subscription *Subscription) {
	b.lock.Lock()
	defer b.lock.Unlock()

	s, ok := b.subscribers[subscription.UserID]
	if !ok {
		return
	}

	if _, ok := s.subscriptions[subscription.ID]; !ok {
		return
	}

	close(subscription.messages)
	delete(s.subscriptions, subscription.ID)
	if len(s.subscriptions) == 0 {
		delete(b.subscribers, subscription.UserID)
	}
}

// Subscribers returns the users with at least one open stream.
func (b *Broker) Subscribers() []model.User {
	b.lock.Lock()
	defer b.lock.Unlock()

	keys := maps.Keys(b.subscribers)
	subscribers := make([]model.User, len(keys))
	for i, key := range keys {
		subscribers[i] = b.subscribers[key].user
	}
	return subscribers
}

// Send delivers notification to every open stream of the user without blocking. It returns the
// number of streams it was delivered to.
func (b *Broker) Send(userID uint, notification model.Notification) int {
	b.lock.Lock()
	defer b.lock.Unlock()

	s, ok := b.subscribers[userID]
	if !ok {
		return 0
	}

	delivered := 0
	for _, subscription := range s.subscriptions {
		select {
		case subscription.messages <- notification:
			delivered++
		default:
		}
	}
	return delivered
}

// Close cancels every subscription which ends all open streams.
func (b *Broker) Close() {
	b.lock.Lock()
	defer b.lock.Unlock()

	for userID, s := range b.subscribers {
		for _, subscription := range s.subscriptions {
			close(subscription.messages)
		}
		delete(b.subscribers, userID)
	}
}
