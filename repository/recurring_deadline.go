package repository

import (
	"context"

	"publishing-ops-api/apperrors"
	"publishing-ops-api/models"

	"gorm.io/gorm"
)

type GormRecurringDeadlineRepository struct {
	db *gorm.DB
}

func NewRecurringDeadlineRepository(db *gorm.DB) *GormRecurringDeadlineRepository {
	return &GormRecurringDeadlineRepository{db: db}
}

func (r *GormRecurringDeadlineRepository) List(ctx context.Context) ([]models.RecurringDeadline, error) {
	var deadlines []models.RecurringDeadline
	if err := r.db.WithContext(ctx).Order("title ASC").Find(&deadlines).Error; err != nil {
		return nil, err
	}
	return deadlines, nil
}

func (r *GormRecurringDeadlineRepository) ListActive(ctx context.Context) ([]models.RecurringDeadline, error) {
	var deadlines []models.RecurringDeadline
	if err := r.db.WithContext(ctx).Where("active = ?", true).Order("id ASC").Find(&deadlines).Error; err != nil {
		return nil, err
	}
	return deadlines, nil
}

func (r *GormRecurringDeadlineRepository) Get(ctx context.Context, id uint) (*models.RecurringDeadline, error) {
	var deadline models.RecurringDeadline
	if err := r.db.WithContext(ctx).First(&deadline, id).Error; err != nil {
		return nil, apperrors.FromDB(err, "recurring deadline")
	}
	return &deadline, nil
}

func (r *GormRecurringDeadlineRepository) Create(ctx context.Context, deadline *models.RecurringDeadline) error {
	return apperrors.FromDB(r.db.WithContext(ctx).Create(deadline).Error, "recurring deadline")
}

func (r *GormRecurringDeadlineRepository) Update(ctx context.Context, id uint, updates map[string]any) (*models.RecurringDeadline, error) {
	var deadline models.RecurringDeadline
	if err := updateAndReload(ctx, r.db, &deadline, id, updates, "recurring deadline"); err != nil {
		return nil, err
	}
	return &deadline, nil
}

func (r *GormRecurringDeadlineRepository) Delete(ctx context.Context, id uint) error {
	return deleteByID(ctx, r.db, &models.RecurringDeadline{}, id, "recurring deadline")
}
