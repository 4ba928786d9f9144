package repository

import (
	"context"
	"fmt"
	"time"

	"publishing-ops-api/apperrors"
	"publishing-ops-api/models"

	"gorm.io/gorm"
)

type GormWorkItemRepository struct {
	db *gorm.DB
}

func NewWorkItemRepository(db *gorm.DB) *GormWorkItemRepository {
	return &GormWorkItemRepository{db: db}
}

func (r *GormWorkItemRepository) List(ctx context.Context, filter WorkItemFilter) ([]models.WorkItem, error) {
	query := r.db.WithContext(ctx).Model(&models.WorkItem{})
	if filter.OwnerID != nil {
		query = query.Where("owner_id = ?", *filter.OwnerID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if !filter.IncludeClosed {
		query = query.Where("completed_at IS NULL")
	}

	var items []models.WorkItem
	err := query.Preload("Subtasks", func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order ASC").Order("id ASC")
	}).Order("sort_order ASC").Order("id ASC").Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormWorkItemRepository) Get(ctx context.Context, id uint) (*models.WorkItem, error) {
	var item models.WorkItem
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Preload("Subtasks", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC").Order("id ASC")
		}).
		First(&item, id).Error
	if err != nil {
		return nil, apperrors.FromDB(err, "work item")
	}
	return &item, nil
}

func (r *GormWorkItemRepository) Create(ctx context.Context, item *models.WorkItem) error {
	return apperrors.FromDB(r.db.WithContext(ctx).Create(item).Error, "work item")
}

func (r *GormWorkItemRepository) Update(ctx context.Context, id uint, updates map[string]any) (*models.WorkItem, error) {
	if err := updateAndReload(ctx, r.db, &models.WorkItem{}, id, updates, "work item"); err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

func (r *GormWorkItemRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("work_item_id = ?", id).Delete(&models.Subtask{}).Error; err != nil {
			return err
		}
		return deleteByID(ctx, tx, &models.WorkItem{}, id, "work item")
	})
}

// Reorder assigns sort_order by position in ids.
func (r *GormWorkItemRepository) Reorder(ctx context.Context, ids []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		missing, err := firstMissingID(tx.Model(&models.WorkItem{}), ids)
		if err != nil {
			return err
		}
		if missing != 0 {
			return apperrors.NotFoundf("work item %d not found", missing)
		}
		for i, id := range ids {
			if err := tx.Model(&models.WorkItem{}).Where("id = ?", id).Update("sort_order", i).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *GormWorkItemRepository) ExistsForOccurrence(ctx context.Context, recurringID uint, dueAt time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.WorkItem{}).
		Where("recurring_deadline_id = ? AND due_at = ?", recurringID, dueAt.UTC()).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check occurrence: %w", err)
	}
	return count > 0, nil
}

func (r *GormWorkItemRepository) ListSLADue(ctx context.Context, dueBefore, remindedBefore time.Time) ([]models.WorkItem, error) {
	var items []models.WorkItem
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Where("completed_at IS NULL").
		Where("owner_id IS NOT NULL").
		Where("sla_due_at IS NOT NULL AND sla_due_at <= ?", dueBefore.UTC()).
		Where("last_sla_reminder_at IS NULL OR last_sla_reminder_at <= ?", remindedBefore.UTC()).
		Order("sla_due_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormWorkItemRepository) MarkSLAReminded(ctx context.Context, ids []uint, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&models.WorkItem{}).
		Where("id IN ?", ids).
		Update("last_sla_reminder_at", at.UTC()).Error
}

func (r *GormWorkItemRepository) ListOpenByOwner(ctx context.Context, ownerID uint) ([]models.WorkItem, error) {
	var items []models.WorkItem
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND completed_at IS NULL", ownerID).
		Order("due_at IS NULL").
		Order("due_at ASC").
		Order("sort_order ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormWorkItemRepository) ListCompletedSince(ctx context.Context, ownerID uint, since time.Time) ([]models.WorkItem, error) {
	var items []models.WorkItem
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND completed_at IS NOT NULL AND completed_at >= ?", ownerID, since.UTC()).
		Order("completed_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
