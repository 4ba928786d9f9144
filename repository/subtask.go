package repository

import (
	"context"

	"publishing-ops-api/apperrors"
	"publishing-ops-api/models"

	"gorm.io/gorm"
)

type GormSubtaskRepository struct {
	db *gorm.DB
}

func NewSubtaskRepository(db *gorm.DB) *GormSubtaskRepository {
	return &GormSubtaskRepository{db: db}
}

func (r *GormSubtaskRepository) ListByWorkItem(ctx context.Context, workItemID uint) ([]models.Subtask, error) {
	var subtasks []models.Subtask
	err := r.db.WithContext(ctx).
		Where("work_item_id = ?", workItemID).
		Order("sort_order ASC").Order("id ASC").
		Find(&subtasks).Error
	if err != nil {
		return nil, err
	}
	return subtasks, nil
}

func (r *GormSubtaskRepository) Get(ctx context.Context, id uint) (*models.Subtask, error) {
	var subtask models.Subtask
	if err := r.db.WithContext(ctx).First(&subtask, id).Error; err != nil {
		return nil, apperrors.FromDB(err, "subtask")
	}
	return &subtask, nil
}

func (r *GormSubtaskRepository) Create(ctx context.Context, subtask *models.Subtask) error {
	return apperrors.FromDB(r.db.WithContext(ctx).Create(subtask).Error, "subtask")
}

func (r *GormSubtaskRepository) Update(ctx context.Context, id uint, updates map[string]any) (*models.Subtask, error) {
	var subtask models.Subtask
	if err := updateAndReload(ctx, r.db, &subtask, id, updates, "subtask"); err != nil {
		return nil, err
	}
	return &subtask, nil
}

func (r *GormSubtaskRepository) Delete(ctx context.Context, id uint) error {
	return deleteByID(ctx, r.db, &models.Subtask{}, id, "subtask")
}
