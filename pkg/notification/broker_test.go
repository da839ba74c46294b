package notification

import (
	"testing"

	"github.com/dhis2-sre/eventos/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroker_Subscribe(t *testing.T) {
	broker := NewBroker()

	subscription := broker.Subscribe(model.User{ID: 123})

	assert.Len(t, broker.subscribers, 1)
	assert.Equal(t, uint(123), broker.subscribers[123].user.ID)
	assert.Equal(t, uint(123), subscription.UserID)
	assert.NotEmpty(t, subscription.ID)
}

func TestBroker_Subscribe_MultipleSubscribers(t *testing.T) {
	broker := NewBroker()

	broker.Subscribe(model.User{ID: 123})
	broker.Subscribe(model.User{ID: 321})
	broker.Subscribe(model.User{ID: 321})

	assert.Len(t, broker.subscribers, 2)
	assert.Len(t, broker.subscribers[321].subscriptions, 2)
	assert.ElementsMatch(t, []uint{123, 321}, userIDs(broker.Subscribers()))
}

func TestBroker_Unsubscribe(t *testing.T) {
	broker := NewBroker()
	subscription := broker.Subscribe(model.User{ID: 123})

	broker.Unsubscribe(subscription)

	assert.Len(t, broker.subscribers, 0)
	_, open := <-subscription.Messages()
	assert.False(t, open)
}

func TestBroker_Unsubscribe_Twice(t *testing.T) {
	broker := NewBroker()
	subscription := broker.Subscribe(model.User{ID: 123})
	other := broker.Subscribe(model.User{ID: 123})

	broker.Unsubscribe(subscription)
	assert.NotPanics(t, func() { broker.Unsubscribe(subscription) })

	assert.Len(t, broker.subscribers[123].subscriptions, 1)
	assert.Contains(t, broker.subscribers[123].subscriptions, other.ID)
}

func TestBroker_Send(t *testing.T) {
	broker := NewBroker()
	first := broker.Subscribe(model.User{ID: 123})
	second := broker.Subscribe(model.User{ID: 123})
	other := broker.Subscribe(model.User{ID: 321})

	delivered := broker.Send(123, model.Notification{ID: 1, Kind: model.NotificationAttendeeJoined, Message: "message"})

	assert.Equal(t, 2, delivered)
	for _, subscription := range []*Subscription{first, second} {
		notification := <-subscription.Messages()
		assert.Equal(t, uint(1), notification.ID)
		assert.Equal(t, "message", notification.Message)
	}
	assert.Len(t, other.Messages(), 0)
}

func TestBroker_Send_NoSubscriber(t *testing.T) {
	broker := NewBroker()

	assert.Equal(t, 0, broker.Send(123, model.Notification{ID: 1}))
}

func TestBroker_Send_DoesNotBlock(t *testing.T) {
	broker := NewBroker()
	subscription := broker.Subscribe(model.User{ID: 123})

	for i := 0; i < subscriptionBuffer; i++ {
		require.Equal(t, 1, broker.Send(123, model.Notification{ID: uint(i + 1)}))
	}

	assert.Equal(t, 0, broker.Send(123, model.Notification{ID: 100}))
	assert.Len(t, subscription.Messages(), subscriptionBuffer)
}

func userIDs(users []model.User) []uint {
	ids := make([]uint, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	return ids
}

func TestBroker_Close(t *testing.T) {
	broker := NewBroker()
	first := broker.Subscribe(model.User{ID: 123})
	second := broker.Subscribe(model.User{ID: 321})

	broker.Close()

	assert.Empty(t, broker.Subscribers())
	for _, subscription := range []*Subscription{first, second} {
		_, open := <-subscription.Messages()
		assert.False(t, open)
	}
	assert.NotPanics(t, func() { broker.Unsubscribe(first) })
}
