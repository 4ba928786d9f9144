package models

import "time"

const (
	AuditActionCreate = "create"
	AuditActionUpdate = "update"
	AuditActionDelete = "delete"
)

type AuditEvent struct {
	ID         uint64         `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	ActorID    uint           `json:"actor_id" gorm:"column:actor_id;index"`
	ActorEmail string         `json:"actor_email" gorm:"column:actor_email;type:varchar(255)"`
	Action     string         `json:"action" gorm:"column:action;type:varchar(16);not null"`
	Entity     string         `json:"entity" gorm:"column:entity;type:varchar(64);not null"`
	EntityID   uint           `json:"entity_id" gorm:"column:entity_id"`
	Changes    map[string]any `json:"changes,omitempty" gorm:"column:changes;serializer:json;type:text"`
	CreatedAt  time.Time      `json:"created_at" gorm:"column:created_at;autoCreateTime;index"`
}

func (AuditEvent) TableName() string { return "audit_events" }
