package repository

import (
	"context"
	"strings"

	"publishing-ops-api/apperrors"
	"publishing-ops-api/models"

	"gorm.io/gorm"
)

type GormRunLogStore struct {
	db *gorm.DB
}

func NewRunLogStore(db *gorm.DB) *GormRunLogStore {
	return &GormRunLogStore{db: db}
}

func (s *GormRunLogStore) Create(ctx context.Context, entry *models.JobRunLog) error {
	return apperrors.FromDB(s.db.WithContext(ctx).Create(entry).Error, "job run log")
}

// LatestPerJob returns the newest row for each job name, ordered by name.
func (s *GormRunLogStore) LatestPerJob(ctx context.Context) ([]models.JobRunLog, error) {
	db := s.db.WithContext(ctx)
	latestIDs := db.Model(&models.JobRunLog{}).Select("MAX(id)").Group("job_name")

	var logs []models.JobRunLog
	if err := db.Where("id IN (?)", latestIDs).Order("job_name ASC").Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

func (s *GormRunLogStore) List(ctx context.Context, jobName string, page Page) ([]models.JobRunLog, int64, error) {
	page = page.Normalize()
	query := s.db.WithContext(ctx).Model(&models.JobRunLog{})
	if name := strings.TrimSpace(jobName); name != "" {
		query = query.Where("job_name = ?", name)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var logs []models.JobRunLog
	err := query.Order("id DESC").Offset(page.Offset).Limit(page.Limit).Find(&logs).Error
	if err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}
