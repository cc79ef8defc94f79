// Package testutil holds shared fixtures for package tests.
package testutil

import (
	"fmt"
	"testing"

	"github.com/farellandr/admitpay/internal/models"
	"github.com/farellandr/admitpay/internal/repository"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewStore opens a private in-memory sqlite database with the schema migrated.
func NewStore(t *testing.T) *repository.Store {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := repository.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return repository.NewStore(db)
}

// SeedApplication stores an application with fee figures in admin_filled.
func SeedApplication(t *testing.T, store *repository.Store, id uint, total, discount interface{}) *models.Application {
	t.Helper()

	app := &models.Application{
		ID:       id,
		Email:    fmt.Sprintf("applicant%d@example.com", id),
		FullName: fmt.Sprintf("Applicant %d", id),
		Phone:    "9999999999",
		AdminFilled: models.JSONMap{
			"total_course_fees": total,
			"discount":          discount,
		},
		ApplicationDetails: models.JSONMap{"program": "B.Sc Data Science"},
		ApprovalStatus:     models.ApprovalPending,
	}
	if err := store.DB().Create(app).Error; err != nil {
		t.Fatalf("seed application: %v", err)
	}
	return app
}
