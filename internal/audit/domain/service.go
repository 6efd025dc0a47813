package domain

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// Entry is the call contract for recording one audit event. Before and
// After are entity snapshots serialized into the metadata payload.
type Entry struct {
	Action     Action
	EntityType string
	EntityID   string
	ActorID    string
	Before     any
	After      any
}

type ListAuditLogRequest struct {
	Action     string
	EntityType string
	EntityID   string
	StartAt    *time.Time
	EndAt      *time.Time
	PageSize   int
}

type Service interface {
	// Record writes the entry using tx so the trail commits or aborts with
	// the mutation it describes.
	Record(ctx context.Context, tx *gorm.DB, entry Entry) error
	List(ctx context.Context, req ListAuditLogRequest) ([]AuditLog, error)
}

var (
	ErrInvalidAction    = errors.New("invalid_action")
	ErrInvalidTimeRange = errors.New("invalid_time_range")
)
