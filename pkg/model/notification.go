package model

import "time"

const (
	NotificationAttendeeJoined = "attendee-joined"
	NotificationAttendeeLeft   = "attendee-left"
)

// Notification is a message for a user about something that happened to one of their events.
// swagger:model
type Notification struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"createdAt"`
	Kind      string    `json:"kind"`
	UserID    uint      `json:"userId" gorm:"index;not null"`
	User      *User     `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	EventID   uint      `json:"eventId" gorm:"not null"`
	Event     *Event    `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Message   string    `json:"message"`
}
