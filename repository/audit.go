package repository

import (
	"context"

	"publishing-ops-api/models"

	"gorm.io/gorm"
)

type GormAuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *GormAuditRepository {
	return &GormAuditRepository{db: db}
}

func (r *GormAuditRepository) Create(ctx context.Context, event *models.AuditEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *GormAuditRepository) List(ctx context.Context, page Page) ([]models.AuditEvent, int64, error) {
	page = page.Normalize()
	query := r.db.WithContext(ctx).Model(&models.AuditEvent{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var events []models.AuditEvent
	if err := query.Order("id DESC").Offset(page.Offset).Limit(page.Limit).Find(&events).Error; err != nil {
		return nil, 0, err
	}
	return events, total, nil
}
