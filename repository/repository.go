// Package repository provides typed persistence interfaces over gorm, one per
// entity. Errors are mapped onto apperrors so callers can switch on codes.
package repository

import (
	"context"
	"time"

	"publishing-ops-api/models"
)

// Page bounds a list query.
type Page struct {
	Limit  int
	Offset int
}

// Normalize clamps limit to [1, 100] (default 20) and offset to >= 0.
func (p Page) Normalize() Page {
	if p.Limit <= 0 {
		p.Limit = 20
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// RunLogStore persists job run-log rows. Rows are append-only.
type RunLogStore interface {
	Create(ctx context.Context, entry *models.JobRunLog) error
	LatestPerJob(ctx context.Context) ([]models.JobRunLog, error)
	List(ctx context.Context, jobName string, page Page) ([]models.JobRunLog, int64, error)
}

type SyncRunRepository interface {
	// Latest returns the most recent run of kind, or nil when none exists.
	Latest(ctx context.Context, kind string) (*models.SyncRun, error)
	Create(ctx context.Context, run *models.SyncRun) error
	List(ctx context.Context, kind string, page Page) ([]models.SyncRun, int64, error)
}

type TexasAuthorRepository interface {
	FindBySyncKeys(ctx context.Context, keys []string) (map[string]models.TexasAuthor, error)
	Upsert(ctx context.Context, author *models.TexasAuthor) error
	// TouchSynced advances last_synced_at for rows whose content is unchanged.
	TouchSynced(ctx context.Context, keys []string, at time.Time) error
	Search(ctx context.Context, query string, page Page) ([]models.TexasAuthor, int64, error)
	Get(ctx context.Context, id uint) (*models.TexasAuthor, error)
}

type UserRepository interface {
	Get(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	ListActive(ctx context.Context) ([]models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, id uint, updates map[string]any) (*models.User, error)
}

// WorkItemFilter narrows WorkItemRepository.List.
type WorkItemFilter struct {
	OwnerID       *uint
	Status        string
	IncludeClosed bool
}

type WorkItemRepository interface {
	List(ctx context.Context, filter WorkItemFilter) ([]models.WorkItem, error)
	Get(ctx context.Context, id uint) (*models.WorkItem, error)
	Create(ctx context.Context, item *models.WorkItem) error
	Update(ctx context.Context, id uint, updates map[string]any) (*models.WorkItem, error)
	Delete(ctx context.Context, id uint) error
	Reorder(ctx context.Context, ids []uint) error

	ExistsForOccurrence(ctx context.Context, recurringID uint, dueAt time.Time) (bool, error)
	// ListSLADue returns incomplete items whose SLA falls before dueBefore and
	// that were not reminded after remindedBefore.
	ListSLADue(ctx context.Context, dueBefore, remindedBefore time.Time) ([]models.WorkItem, error)
	MarkSLAReminded(ctx context.Context, ids []uint, at time.Time) error
	ListOpenByOwner(ctx context.Context, ownerID uint) ([]models.WorkItem, error)
	ListCompletedSince(ctx context.Context, ownerID uint, since time.Time) ([]models.WorkItem, error)
}

type SubtaskRepository interface {
	ListByWorkItem(ctx context.Context, workItemID uint) ([]models.Subtask, error)
	Get(ctx context.Context, id uint) (*models.Subtask, error)
	Create(ctx context.Context, subtask *models.Subtask) error
	Update(ctx context.Context, id uint, updates map[string]any) (*models.Subtask, error)
	Delete(ctx context.Context, id uint) error
}

type MagazineRepository interface {
	ListIssues(ctx context.Context) ([]models.MagazineIssue, error)
	GetIssue(ctx context.Context, id uint) (*models.MagazineIssue, error)
	CreateIssue(ctx context.Context, issue *models.MagazineIssue) error
	UpdateIssue(ctx context.Context, id uint, updates map[string]any) (*models.MagazineIssue, error)
	DeleteIssue(ctx context.Context, id uint) error

	ListItems(ctx context.Context, issueID uint) ([]models.MagazineItem, error)
	GetItem(ctx context.Context, id uint) (*models.MagazineItem, error)
	CreateItem(ctx context.Context, item *models.MagazineItem) error
	UpdateItem(ctx context.Context, id uint, updates map[string]any) (*models.MagazineItem, error)
	DeleteItem(ctx context.Context, id uint) error
	ReorderItems(ctx context.Context, issueID uint, ids []uint) error
	ListOpenItemsByOwner(ctx context.Context, ownerID uint) ([]models.MagazineItem, error)
}

type RecurringDeadlineRepository interface {
	List(ctx context.Context) ([]models.RecurringDeadline, error)
	ListActive(ctx context.Context) ([]models.RecurringDeadline, error)
	Get(ctx context.Context, id uint) (*models.RecurringDeadline, error)
	Create(ctx context.Context, deadline *models.RecurringDeadline) error
	Update(ctx context.Context, id uint, updates map[string]any) (*models.RecurringDeadline, error)
	Delete(ctx context.Context, id uint) error
}

type AuditRepository interface {
	Create(ctx context.Context, event *models.AuditEvent) error
	List(ctx context.Context, page Page) ([]models.AuditEvent, int64, error)
}
