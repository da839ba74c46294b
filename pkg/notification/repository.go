package notification

import (
	"context"
	"fmt"

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

func (r repository) Create(ctx context.Context, notification *model.Notification) error {
	// only use ctx for values (logging) and not cancellation signals on cud operations for now. ctx
	// cancellation can lead to rollbacks which we should decide individually.
	ctx = context.WithoutCancel(ctx)

	err := r.db.WithContext(ctx).Omit("User", "Event").Create(notification).Error
	if err != nil {
		return fmt.Errorf("failed to create notification: %v", err)
	}
	return nil
}

// FindByUser returns the latest notifications of a user with an id greater than afterID, oldest
// first.
func (r repository) FindByUser(ctx context.Context, userID uint, afterID uint, limit int) ([]model.Notification, error) {
	var notifications []model.Notification
	err := r.db.
		WithContext(ctx).
		Where("user_id = ? AND id > ?", userID, afterID).
		Order("id DESC").
		Limit(limit).
		Find(&notifications).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find notifications of user %d: %v", userID, err)
	}

	for i, j := 0, len(notifications)-1; i < j; i, j = i+1, j-1 {
		notifications[i], notifications[j] = notifications[j], notifications[i]
	}
	return notifications, nil
}
