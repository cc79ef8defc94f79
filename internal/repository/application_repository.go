package repository

import (
	"context"
	"strings"
	"time"

	"github.com/farellandr/admitpay/internal/models"
	"github.com/farellandr/admitpay/internal/payment"
	"gorm.io/gorm"
)

type ApplicationFilter struct {
	ApprovalStatus string
	PaymentStatus  string
	Search         string
	Page           int
	Limit          int
}

func (s *Store) CreateApplication(ctx context.Context, app *models.Application) error {
	return translate(s.db.WithContext(ctx).Create(app).Error)
}

func (s *Store) GetApplication(ctx context.Context, id uint) (*models.Application, error) {
	var app models.Application
	if err := s.db.WithContext(ctx).First(&app, id).Error; err != nil {
		return nil, translate(err)
	}
	return &app, nil
}

func (s *Store) ListApplications(ctx context.Context, f ApplicationFilter) ([]models.Application, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Application{})
	if f.ApprovalStatus != "" {
		query = query.Where("approval_status = ?", f.ApprovalStatus)
	}
	if f.PaymentStatus != "" {
		query = query.Where("payment_status = ?", f.PaymentStatus)
	}
	if q := strings.TrimSpace(f.Search); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where("LOWER(email) LIKE ? OR LOWER(full_name) LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var apps []models.Application
	offset := (f.Page - 1) * f.Limit
	err := query.Offset(offset).Limit(f.Limit).Order("created_at DESC").Find(&apps).Error
	if err != nil {
		return nil, 0, err
	}
	return apps, total, nil
}

// UpdateApproval writes the approval sub-fields unconditionally.
func (s *Store) UpdateApproval(ctx context.Context, id uint, status, approvedBy string, at time.Time) error {
	result := s.db.WithContext(ctx).Model(&models.Application{}).Where("id = ?", id).Updates(map[string]interface{}{
		"approval_status": status,
		"approved_by":     approvedBy,
		"approved_at":     at,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) UpdateAdminFilled(ctx context.Context, id uint, adminFilled models.JSONMap) error {
	result := s.db.WithContext(ctx).Model(&models.Application{ID: id}).Select("admin_filled").Updates(&models.Application{AdminFilled: adminFilled})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetPaymentStatus is a compare-and-set on the version column. It returns
// ErrVersionConflict when another writer got there first.
func (s *Store) SetPaymentStatus(ctx context.Context, id uint, expectedVersion int, status payment.Status) error {
	result := s.db.WithContext(ctx).Model(&models.Application{}).
		Where("id = ? AND version = ?", id, expectedVersion).
		Updates(map[string]interface{}{
			"payment_status": status,
			"version":        gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrVersionConflict
	}
	return nil
}
