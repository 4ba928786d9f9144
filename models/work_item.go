package models

import "time"

const (
	WorkItemStatusTodo       = "todo"
	WorkItemStatusInProgress = "in_progress"
	WorkItemStatusBlocked    = "blocked"
	WorkItemStatusDone       = "done"
)

var WorkItemStatuses = []string{WorkItemStatusTodo, WorkItemStatusInProgress, WorkItemStatusBlocked, WorkItemStatusDone}

var WorkItemPriorities = []string{"low", "normal", "high", "urgent"}

// WorkItem is a tracked task. CompletedAt doubles as the done flag: nil is
// incomplete, a timestamp records when it was completed.
type WorkItem struct {
	ID                  uint       `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	Title               string     `json:"title" gorm:"column:title;type:varchar(255);not null"`
	Description         string     `json:"description" gorm:"column:description;type:text"`
	Status              string     `json:"status" gorm:"column:status;type:varchar(16);not null;default:'todo'"`
	Priority            string     `json:"priority" gorm:"column:priority;type:varchar(16);not null;default:'normal'"`
	OwnerID             *uint      `json:"owner_id,omitempty" gorm:"column:owner_id;index"`
	DueAt               *time.Time `json:"due_at,omitempty" gorm:"column:due_at;uniqueIndex:idx_work_items_recurring_due,priority:2"`
	SLADueAt            *time.Time `json:"sla_due_at,omitempty" gorm:"column:sla_due_at;index"`
	LastSLAReminderAt   *time.Time `json:"last_sla_reminder_at,omitempty" gorm:"column:last_sla_reminder_at"`
	RecurringDeadlineID *uint      `json:"recurring_deadline_id,omitempty" gorm:"column:recurring_deadline_id;uniqueIndex:idx_work_items_recurring_due,priority:1"`
	SortOrder           int        `json:"sort_order" gorm:"column:sort_order;not null;default:0"`
	CompletedAt         *time.Time `json:"completed_at,omitempty" gorm:"column:completed_at"`
	CreatedAt           time.Time  `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time  `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`

	Owner    *User     `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
	Subtasks []Subtask `json:"subtasks,omitempty" gorm:"foreignKey:WorkItemID"`
}

func (WorkItem) TableName() string { return "work_items" }

func (w *WorkItem) IsComplete() bool { return w.CompletedAt != nil }

type Subtask struct {
	ID          uint       `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	WorkItemID  uint       `json:"work_item_id" gorm:"column:work_item_id;not null;index"`
	Title       string     `json:"title" gorm:"column:title;type:varchar(255);not null"`
	SortOrder   int        `json:"sort_order" gorm:"column:sort_order;not null;default:0"`
	CompletedAt *time.Time `json:"completed_at,omitempty" gorm:"column:completed_at"`
	CreatedAt   time.Time  `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

func (Subtask) TableName() string { return "subtasks" }
