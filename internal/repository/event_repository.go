package repository

import (
	"context"

	"github.com/farellandr/admitpay/internal/models"
	"gorm.io/gorm/clause"
)

// AppendEvent inserts a history entry keyed by its gateway event id. It
// reports false when an entry with the same key already exists.
func (s *Store) AppendEvent(ctx context.Context, event *models.PaymentEvent) (bool, error) {
	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "gateway_event_id"}}, DoNothing: true}).
		Create(event)
	if result.Error != nil {
		return false, translate(result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (s *Store) ListEvents(ctx context.Context, applicationID uint) ([]models.PaymentEvent, error) {
	var events []models.PaymentEvent
	err := s.db.WithContext(ctx).
		Where("application_id = ?", applicationID).
		Order("received_at ASC, id ASC").
		Find(&events).Error
	return events, err
}

func (s *Store) RecordUnmatched(ctx context.Context, w *models.UnmatchedWebhook) error {
	return s.db.WithContext(ctx).Create(w).Error
}

func (s *Store) ListUnmatched(ctx context.Context, limit int) ([]models.UnmatchedWebhook, error) {
	var out []models.UnmatchedWebhook
	err := s.db.WithContext(ctx).Order("received_at DESC").Limit(limit).Find(&out).Error
	return out, err
}
