package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"publishing-ops-api/apperrors"
	"publishing-ops-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// authorSyncColumns are overwritten when a synced row already exists.
var authorSyncColumns = []string{
	"external_id", "first_name", "last_name", "full_name", "email", "phone",
	"city", "website", "genres", "notes", "extra", "last_synced_at", "updated_at",
}

type GormTexasAuthorRepository struct {
	db *gorm.DB
}

func NewTexasAuthorRepository(db *gorm.DB) *GormTexasAuthorRepository {
	return &GormTexasAuthorRepository{db: db}
}

func (r *GormTexasAuthorRepository) FindBySyncKeys(ctx context.Context, keys []string) (map[string]models.TexasAuthor, error) {
	existing := make(map[string]models.TexasAuthor, len(keys))
	if len(keys) == 0 {
		return existing, nil
	}

	var rows []models.TexasAuthor
	if err := r.db.WithContext(ctx).Where("sync_key IN ?", keys).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		existing[row.SyncKey] = row
	}
	return existing, nil
}

func (r *GormTexasAuthorRepository) Upsert(ctx context.Context, author *models.TexasAuthor) error {
	if author == nil {
		return errors.New("author is nil")
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "sync_key"}},
		DoUpdates: clause.AssignmentColumns(authorSyncColumns),
	}).Create(author).Error
}

func (r *GormTexasAuthorRepository) TouchSynced(ctx context.Context, keys []string, at time.Time) error {
	if len(keys) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&models.TexasAuthor{}).
		Where("sync_key IN ?", keys).
		UpdateColumn("last_synced_at", at.UTC()).Error
}

func (r *GormTexasAuthorRepository) Search(ctx context.Context, query string, page Page) ([]models.TexasAuthor, int64, error) {
	page = page.Normalize()
	db := r.db.WithContext(ctx).Model(&models.TexasAuthor{})
	if q := strings.ToLower(strings.TrimSpace(query)); q != "" {
		like := "%" + q + "%"
		db = db.Where("LOWER(full_name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(city) LIKE ? OR LOWER(genres) LIKE ?",
			like, like, like, like)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var authors []models.TexasAuthor
	err := db.Order("last_name ASC").Order("full_name ASC").Offset(page.Offset).Limit(page.Limit).Find(&authors).Error
	if err != nil {
		return nil, 0, err
	}
	return authors, total, nil
}

func (r *GormTexasAuthorRepository) Get(ctx context.Context, id uint) (*models.TexasAuthor, error) {
	var author models.TexasAuthor
	if err := r.db.WithContext(ctx).First(&author, id).Error; err != nil {
		return nil, apperrors.FromDB(err, "author")
	}
	return &author, nil
}
