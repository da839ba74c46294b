package model

import (
	"strings"
	"time"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// Kind of event. Closed enumeration, see Kinds.
type Kind string

const (
	KindConference Kind = "conferencia"
	KindConcert    Kind = "concierto"
	KindSeminar    Kind = "seminario"
)

// Kinds lists every valid kind in display order.
var Kinds = []Kind{KindConference, KindConcert, KindSeminar}

var kindAliases = map[string]Kind{
	"conference": KindConference,
	"concert":    KindConcert,
	"seminar":    KindSeminar,
}

// ParseKind returns the kind named by s. The English names are accepted as aliases.
func ParseKind(s string) (Kind, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, k := range Kinds {
		if string(k) == s {
			return k, true
		}
	}
	k, ok := kindAliases[s]
	return k, ok
}

// Label is the human readable name of the kind.
func (k Kind) Label() string {
	switch k {
	case KindConference:
		return "Conferencia"
	case KindConcert:
		return "Concierto"
	case KindSeminar:
		return "Seminario"
	}
	return string(k)
}

// Event domain object defining an event
// swagger:model
type Event struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	CreatedAt   time.Time `gorm:"index;<-:create" json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	Slug        string    `json:"slug"`
	Description string    `gorm:"not null" json:"description"`
	When        time.Time `gorm:"not null" json:"when"`
	Location    string    `gorm:"size:200;not null" json:"location"`
	Kind        Kind      `gorm:"size:20;not null" json:"kind"`
	IsPrivate   bool      `gorm:"not null;default:false" json:"isPrivate"`
	OrganizerID uint      `gorm:"not null;index;<-:create" json:"organizerId"`
	Organizer   User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"organizer"`
	Attendees   []User    `gorm:"many2many:event_attendees;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"attendees"`
}

func (e *Event) BeforeSave(*gorm.DB) error {
	e.Slug = slug.Make(e.Title)
	return nil
}

// IsOrganizedBy reports whether user is the organizer of the event. A nil user is anonymous.
func (e *Event) IsOrganizedBy(user *User) bool {
	return user != nil && user.ID != 0 && e.OrganizerID == user.ID
}

// HasAttendee reports whether user is in the attendee set. Attendees have to be preloaded.
func (e *Event) HasAttendee(user *User) bool {
	if user == nil {
		return false
	}
	for _, a := range e.Attendees {
		if a.ID == user.ID {
			return true
		}
	}
	return false
}
