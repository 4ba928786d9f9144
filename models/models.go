// Package models holds the gorm models persisted by the ops API.
package models

// All lists every model for AutoMigrate, parents before children.
func All() []any {
	return []any{
		&User{},
		&RecurringDeadline{},
		&WorkItem{},
		&Subtask{},
		&MagazineIssue{},
		&MagazineItem{},
		&TexasAuthor{},
		&SyncRun{},
		&JobRunLog{},
		&AuditEvent{},
	}
}
