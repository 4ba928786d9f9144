package repository

import (
	"context"

	"publishing-ops-api/apperrors"
	"publishing-ops-api/models"

	"gorm.io/gorm"
)

type GormMagazineRepository struct {
	db *gorm.DB
}

func NewMagazineRepository(db *gorm.DB) *GormMagazineRepository {
	return &GormMagazineRepository{db: db}
}

func (r *GormMagazineRepository) ListIssues(ctx context.Context) ([]models.MagazineIssue, error) {
	var issues []models.MagazineIssue
	err := r.db.WithContext(ctx).
		Order("publish_date IS NULL").
		Order("publish_date DESC").
		Order("id DESC").
		Find(&issues).Error
	if err != nil {
		return nil, err
	}
	return issues, nil
}

func (r *GormMagazineRepository) GetIssue(ctx context.Context, id uint) (*models.MagazineIssue, error) {
	var issue models.MagazineIssue
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC").Order("id ASC")
		}).
		First(&issue, id).Error
	if err != nil {
		return nil, apperrors.FromDB(err, "magazine issue")
	}
	return &issue, nil
}

func (r *GormMagazineRepository) CreateIssue(ctx context.Context, issue *models.MagazineIssue) error {
	return apperrors.FromDB(r.db.WithContext(ctx).Create(issue).Error, "magazine issue")
}

func (r *GormMagazineRepository) UpdateIssue(ctx context.Context, id uint, updates map[string]any) (*models.MagazineIssue, error) {
	var issue models.MagazineIssue
	if err := updateAndReload(ctx, r.db, &issue, id, updates, "magazine issue"); err != nil {
		return nil, err
	}
	return &issue, nil
}

func (r *GormMagazineRepository) DeleteIssue(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("issue_id = ?", id).Delete(&models.MagazineItem{}).Error; err != nil {
			return err
		}
		return deleteByID(ctx, tx, &models.MagazineIssue{}, id, "magazine issue")
	})
}

func (r *GormMagazineRepository) ListItems(ctx context.Context, issueID uint) ([]models.MagazineItem, error) {
	var items []models.MagazineItem
	err := r.db.WithContext(ctx).
		Where("issue_id = ?", issueID).
		Order("sort_order ASC").Order("id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormMagazineRepository) GetItem(ctx context.Context, id uint) (*models.MagazineItem, error) {
	var item models.MagazineItem
	if err := r.db.WithContext(ctx).First(&item, id).Error; err != nil {
		return nil, apperrors.FromDB(err, "magazine item")
	}
	return &item, nil
}

func (r *GormMagazineRepository) CreateItem(ctx context.Context, item *models.MagazineItem) error {
	return apperrors.FromDB(r.db.WithContext(ctx).Create(item).Error, "magazine item")
}

func (r *GormMagazineRepository) UpdateItem(ctx context.Context, id uint, updates map[string]any) (*models.MagazineItem, error) {
	var item models.MagazineItem
	if err := updateAndReload(ctx, r.db, &item, id, updates, "magazine item"); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *GormMagazineRepository) DeleteItem(ctx context.Context, id uint) error {
	return deleteByID(ctx, r.db, &models.MagazineItem{}, id, "magazine item")
}

// ReorderItems assigns sort_order by position in ids. Every id must belong to
// issueID.
func (r *GormMagazineRepository) ReorderItems(ctx context.Context, issueID uint, ids []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		missing, err := firstMissingID(tx.Model(&models.MagazineItem{}).Where("issue_id = ?", issueID), ids)
		if err != nil {
			return err
		}
		if missing != 0 {
			return apperrors.NotFoundf("magazine item %d not found in issue %d", missing, issueID)
		}
		for i, id := range ids {
			err := tx.Model(&models.MagazineItem{}).
				Where("id = ? AND issue_id = ?", id, issueID).
				Update("sort_order", i).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *GormMagazineRepository) ListOpenItemsByOwner(ctx context.Context, ownerID uint) ([]models.MagazineItem, error) {
	var items []models.MagazineItem
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND status <> ?", ownerID, models.MagazineItemStatusFinal).
		Order("issue_id ASC").Order("sort_order ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
