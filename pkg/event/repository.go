package event

import (
	"context"
	"errors"
	"fmt"

	"github.com/dhis2-sre/eventos/internal/errdef"
	"github.com/dhis2-sre/eventos/pkg/model"
	"gorm.io/gorm"
)

//goland:noinspection GoExportedFuncWithUnexportedType
func NewRepository(db *gorm.DB) *repository {
	return &repository{db}
}

type repository struct {
	db *gorm.DB
}

const listOrder = "events.created_at DESC, events.id DESC"

func (r repository) Create(ctx context.Context, event *model.Event) error {
	// only use ctx for values (logging) and not cancellation signals on cud operations for now. ctx
	// cancellation can lead to rollbacks which we should decide individually.
	ctx = context.WithoutCancel(ctx)

	err := r.db.WithContext(ctx).Omit("Organizer", "Attendees").Create(event).Error
	if err != nil {
		return fmt.Errorf("failed to create event: %v", err)
	}
	return nil
}

// Find looks up an event by id without any visibility restriction.
func (r repository) Find(ctx context.Context, id uint) (*model.Event, error) {
	var event *model.Event
	err := r.db.
		WithContext(ctx).
		Preload("Organizer").
		Preload("Attendees").
		First(&event, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errdef.NewNotFound("failed to find event with id %d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find event with id %d: %v", id, err)
	}
	return event, nil
}

// FindInScope looks up an event by id among the events matching scope. Events outside the scope
// are reported as not found.
func (r repository) FindInScope(ctx context.Context, id uint, scope EditScope) (*model.Event, error) {
	query := r.db.
		WithContext(ctx).
		Preload("Organizer").
		Preload("Attendees")
	if !scope.All {
		query = query.Where("organizer_id = ?", scope.OrganizerID)
	}

	var event *model.Event
	err := query.First(&event, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errdef.NewNotFound("failed to find event with id %d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find event with id %d: %v", id, err)
	}
	return event, nil
}

// visibleTo restricts the events to the ones listed for actor. A nil actor is anonymous. The
// attendee clause is a sub query so an event matching several clauses is returned once.
func (r repository) visibleTo(ctx context.Context, actor *model.User) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&model.Event{})
	if actor == nil {
		return query.Where("events.is_private = ?", false)
	}

	attending := r.db.Table("event_attendees").Select("event_id").Where("user_id = ?", actor.ID)
	return query.Where(
		"events.is_private = ? OR events.organizer_id = ? OR events.id IN (?)",
		false, actor.ID, attending,
	)
}

// List returns the events visible to actor, most recently created first, together with the total
// number of visible events.
func (r repository) List(ctx context.Context, actor *model.User, offset, limit int) ([]model.Event, int64, error) {
	var total int64
	err := r.visibleTo(ctx, actor).Count(&total).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count events: %v", err)
	}

	var events []model.Event
	err = r.visibleTo(ctx, actor).
		Preload("Organizer").
		Order(listOrder).
		Offset(offset).
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list events: %v", err)
	}

	return events, total, nil
}

// Search returns every event whose title or description contains query, case-insensitively.
func (r repository) Search(ctx context.Context, query string) ([]model.Event, error) {
	db := r.db.WithContext(ctx).Preload("Organizer").Order(listOrder)
	if query != "" {
		pattern := "%" + query + "%"
		db = db.Where("events.title ILIKE ? OR events.description ILIKE ?", pattern, pattern)
	}

	var events []model.Event
	if err := db.Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to search events: %v", err)
	}
	return events, nil
}

// Update persists the editable fields of event. Organizer and creation time are never written.
func (r repository) Update(ctx context.Context, event *model.Event) error {
	// only use ctx for values (logging) and not cancellation signals on cud operations for now. ctx
	// cancellation can lead to rollbacks which we should decide individually.
	ctx = context.WithoutCancel(ctx)

	err := r.db.
		WithContext(ctx).
		Model(event).
		Select("Title", "Slug", "Description", "When", "Location", "Kind", "IsPrivate", "UpdatedAt").
		Updates(event).Error
	if err != nil {
		return fmt.Errorf("failed to update event: %v", err)
	}
	return nil
}

func (r repository) Delete(ctx context.Context, id uint) error {
	// only use ctx for values (logging) and not cancellation signals on cud operations for now. ctx
	// cancellation can lead to rollbacks which we should decide individually.
	ctx = context.WithoutCancel(ctx)

	db := r.db.WithContext(ctx).Select("Attendees").Delete(&model.Event{ID: id})
	if db.Error != nil {
		return fmt.Errorf("failed to delete event with id %d: %v", id, db.Error)
	} else if db.RowsAffected < 1 {
		return errdef.NewNotFound("failed to find event with id %d", id)
	}

	return nil
}

func (r repository) AddAttendee(ctx context.Context, event *model.Event, user *model.User) error {
	// only use ctx for values (logging) and not cancellation signals on cud operations for now. ctx
	// cancellation can lead to rollbacks which we should decide individually.
	ctx = context.WithoutCancel(ctx)

	return r.db.WithContext(ctx).Model(event).Omit("Attendees.*").Association("Attendees").Append([]*model.User{{ID: user.ID}})
}

func (r repository) RemoveAttendee(ctx context.Context, event *model.Event, user *model.User) error {
	// only use ctx for values (logging) and not cancellation signals on cud operations for now. ctx
	// cancellation can lead to rollbacks which we should decide individually.
	ctx = context.WithoutCancel(ctx)

	return r.db.WithContext(ctx).Model(event).Association("Attendees").Delete([]*model.User{{ID: user.ID}})
}
