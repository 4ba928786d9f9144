package models

import "time"

const (
	SyncKindDirectory = "DIRECTORY_SYNC"

	SyncRunStatusSuccess = "SUCCESS"
	SyncRunStatusFailed  = "FAILED"
)

// SyncRun records one completed sync attempt. The latest row of a kind
// drives the sync cooldown.
type SyncRun struct {
	ID             uint64    `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	Kind           string    `json:"kind" gorm:"column:kind;type:varchar(32);not null;index:idx_sync_runs_kind_created,priority:1"`
	Status         string    `json:"status" gorm:"column:status;type:varchar(16);not null"`
	FetchedCount   int       `json:"fetched_count" gorm:"column:fetched_count;not null;default:0"`
	CreatedCount   int       `json:"created_count" gorm:"column:created_count;not null;default:0"`
	UpdatedCount   int       `json:"updated_count" gorm:"column:updated_count;not null;default:0"`
	UnchangedCount int       `json:"unchanged_count" gorm:"column:unchanged_count;not null;default:0"`
	SkippedCount   int       `json:"skipped_count" gorm:"column:skipped_count;not null;default:0"`
	ErrorMessage   *string   `json:"error_message,omitempty" gorm:"column:error_message;type:text"`
	SheetRange     string    `json:"sheet_range" gorm:"column:sheet_range;type:varchar(255)"`
	CreatedAt      time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime;index:idx_sync_runs_kind_created,priority:2"`
}

func (SyncRun) TableName() string { return "sync_runs" }
