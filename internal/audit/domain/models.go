package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// AuditLog is one immutable trail entry. Before/after snapshots live in the
// metadata payload so the table stays append-only and schema-stable.
type AuditLog struct {
	ID         snowflake.ID      `gorm:"primaryKey" json:"id"`
	ActorID    string            `gorm:"type:text;not null" json:"actor_id"`
	Action     Action            `gorm:"type:text;not null;index" json:"action"`
	EntityType string            `gorm:"type:text;not null;index" json:"entity_type"`
	EntityID   string            `gorm:"type:text;not null;index" json:"entity_id"`
	Metadata   datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata"`
	CreatedAt  time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (AuditLog) TableName() string { return "audit_logs" }
