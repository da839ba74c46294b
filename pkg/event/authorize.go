package event

import (
	"github.com/dhis2-sre/eventos/internal/errdef"
	"github.com/dhis2-sre/eventos/pkg/model"
)

// Action an actor wants to take on an event.
type Action int

const (
	ActionView Action = iota
	ActionCreate
	ActionEdit
	ActionDelete
	ActionAttend
)

// Reason of a denial. It decides whether the actor is sent to the login page or back to the
// event list.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonUnauthenticated
	ReasonForbidden
)

// Decision of the authorization engine.
type Decision struct {
	Allowed bool
	Reason  Reason
}

var allowed = Decision{Allowed: true}

func denied(reason Reason) Decision {
	return Decision{Reason: reason}
}

// Authorize decides whether actor may take action on event. A nil actor is anonymous. The event
// is ignored for ActionCreate and has to have its attendees loaded for ActionView.
func Authorize(actor *model.User, event *model.Event, action Action) Decision {
	switch action {
	case ActionView:
		return authorizeView(actor, event)
	case ActionCreate:
		return requirePermission(actor, model.PermissionAddEvent)
	case ActionEdit:
		return authorizeEdit(actor, event)
	case ActionDelete:
		return requirePermission(actor, model.PermissionDeleteEvent)
	case ActionAttend:
		return authorizeAttend(actor, event)
	}
	return denied(ReasonForbidden)
}

// authorizeView allows exactly the events of the actor's listing.
func authorizeView(actor *model.User, event *model.Event) Decision {
	if Visible(actor, event) {
		return allowed
	}

	if actor == nil {
		return denied(ReasonUnauthenticated)
	}

	return denied(ReasonForbidden)
}

func requirePermission(actor *model.User, codename string) Decision {
	if actor == nil {
		return denied(ReasonUnauthenticated)
	}

	if !actor.HasPermission(codename) {
		return denied(ReasonForbidden)
	}

	return allowed
}

// authorizeEdit ignores capability grants on purpose, only the organizer or a superuser may edit.
func authorizeEdit(actor *model.User, event *model.Event) Decision {
	if actor == nil {
		return denied(ReasonUnauthenticated)
	}

	if !EditScopeOf(actor).Contains(event) {
		return denied(ReasonForbidden)
	}

	return allowed
}

func authorizeAttend(actor *model.User, event *model.Event) Decision {
	if actor == nil {
		return denied(ReasonUnauthenticated)
	}

	if event.IsPrivate && !event.IsOrganizedBy(actor) {
		return denied(ReasonForbidden)
	}

	return allowed
}

// Visible reports whether event is part of the listing shown to actor. Anonymous actors see
// public events, everybody else also sees the events they organize or attend.
func Visible(actor *model.User, event *model.Event) bool {
	if !event.IsPrivate {
		return true
	}
	return event.IsOrganizedBy(actor) || event.HasAttendee(actor)
}

// EditScope is the set of events an actor may open for editing.
type EditScope struct {
	All         bool
	OrganizerID uint
}

// EditScopeOf returns the edit scope of a non nil actor. Superusers may edit every event,
// everybody else only the events they organize.
func EditScopeOf(actor *model.User) EditScope {
	if actor.IsSuperuser {
		return EditScope{All: true}
	}
	return EditScope{OrganizerID: actor.ID}
}

func (s EditScope) Contains(event *model.Event) bool {
	return s.All || (s.OrganizerID != 0 && event.OrganizerID == s.OrganizerID)
}

var (
	messageLoginRequired = "Debes iniciar sesión para continuar."

	deniedMessages = map[Action]map[Reason]string{
		ActionView: {
			ReasonUnauthenticated: "Debes iniciar sesión para ver este evento.",
			ReasonForbidden:       "No tienes permiso para ver este evento.",
		},
		ActionCreate: {
			ReasonForbidden: "No tienes permiso para crear eventos.",
		},
		ActionEdit: {
			ReasonForbidden: "No tienes permiso para editar este evento.",
		},
		ActionDelete: {
			ReasonForbidden: "Solo administradores pueden eliminar eventos.",
		},
		ActionAttend: {
			ReasonForbidden: "No puedes registrarte en eventos privados.",
		},
	}
)

// Err returns the error reported to the actor for a denied decision on action and nil if the
// decision allows it.
func (d Decision) Err(action Action) error {
	if d.Allowed {
		return nil
	}

	message, ok := deniedMessages[action][d.Reason]
	switch d.Reason {
	case ReasonUnauthenticated:
		if !ok {
			message = messageLoginRequired
		}
		return errdef.NewUnauthorized("%s", message)
	default:
		if !ok {
			message = "No tienes permiso para realizar esta acción."
		}
		return errdef.NewForbidden("%s", message)
	}
}
