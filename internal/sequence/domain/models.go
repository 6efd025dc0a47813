package domain

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// Counter is the single per-namespace row holding the last issued value.
type Counter struct {
	Name  string `gorm:"primaryKey;type:text" json:"name"`
	Value int64  `gorm:"not null;default:0" json:"value"`
}

func (Counter) TableName() string { return "sequence_counters" }

var (
	ErrInvalidNamespace = errors.New("invalid_namespace")
	// ErrAllocatorUnavailable wraps storage failures during the atomic
	// increment; the enclosing transaction must abort.
	ErrAllocatorUnavailable = errors.New("allocator_unavailable")
)

// Allocator issues gap-tolerant, duplicate-free monotonically increasing
// codes per namespace, starting at 1.
type Allocator interface {
	// Next increments and returns the counter inside tx. Because the
	// increment participates in the caller's transaction, an abort rolls the
	// issued code back together with the rest of the writes.
	Next(ctx context.Context, tx *gorm.DB, namespace string) (int64, error)
	// Reset deletes the namespace counter. Administrative only: resetting
	// while ingestions are in flight can reissue an already-used code, so
	// callers must serialize resets against all in-flight ingestions.
	Reset(ctx context.Context, db *gorm.DB, namespace string) error
}
