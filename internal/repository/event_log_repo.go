package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/tgo/embedhub/internal/model"
)

type EventLogRepository struct {
	BaseRepository[model.EventLog]
}

func NewEventLogRepository(db *gorm.DB) *EventLogRepository {
	return &EventLogRepository{BaseRepository: BaseRepository[model.EventLog]{DB: db}}
}

// FindByEvent returns the newest entries for event first.
func (r *EventLogRepository) FindByEvent(ctx context.Context, event string, limit int) ([]model.EventLog, error) {
	logs := []model.EventLog{}
	query := r.DB.WithContext(ctx).Where("event = ?", event).Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&logs).Error
	return logs, err
}
