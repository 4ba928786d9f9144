package repository

import (
	"context"
	"errors"

	"publishing-ops-api/apperrors"
	"publishing-ops-api/models"

	"gorm.io/gorm"
)

type GormSyncRunRepository struct {
	db *gorm.DB
}

func NewSyncRunRepository(db *gorm.DB) *GormSyncRunRepository {
	return &GormSyncRunRepository{db: db}
}

func (r *GormSyncRunRepository) Latest(ctx context.Context, kind string) (*models.SyncRun, error) {
	var run models.SyncRun
	err := r.db.WithContext(ctx).
		Where("kind = ?", kind).
		Order("created_at DESC").
		Order("id DESC").
		First(&run).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &run, nil
}

func (r *GormSyncRunRepository) Create(ctx context.Context, run *models.SyncRun) error {
	return apperrors.FromDB(r.db.WithContext(ctx).Create(run).Error, "sync run")
}

func (r *GormSyncRunRepository) List(ctx context.Context, kind string, page Page) ([]models.SyncRun, int64, error) {
	page = page.Normalize()
	query := r.db.WithContext(ctx).Model(&models.SyncRun{})
	if kind != "" {
		query = query.Where("kind = ?", kind)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var runs []models.SyncRun
	if err := query.Order("id DESC").Offset(page.Offset).Limit(page.Limit).Find(&runs).Error; err != nil {
		return nil, 0, err
	}
	return runs, total, nil
}
