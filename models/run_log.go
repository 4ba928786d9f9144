package models

import "time"

const (
	RunLogStatusSuccess = "success"
	RunLogStatusError   = "error"
)

// JobRunLog is the append-only audit row written once per scheduled job
// execution. Rows are never updated.
type JobRunLog struct {
	ID         uint64         `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	JobName    string         `json:"job_name" gorm:"column:job_name;type:varchar(100);not null;index:idx_job_run_logs_job_created,priority:1"`
	Status     string         `json:"status" gorm:"column:status;type:varchar(16);not null"`
	Trigger    string         `json:"trigger" gorm:"column:trigger_source;type:varchar(32);not null;default:'cron'"`
	Result     map[string]any `json:"result,omitempty" gorm:"column:result;serializer:json;type:text"`
	Error      *string        `json:"error,omitempty" gorm:"column:error_message;type:text"`
	DurationMs *int64         `json:"duration_ms,omitempty" gorm:"column:duration_ms"`
	CreatedAt  time.Time      `json:"created_at" gorm:"column:created_at;autoCreateTime;index:idx_job_run_logs_job_created,priority:2"`
}

func (JobRunLog) TableName() string { return "job_run_logs" }
