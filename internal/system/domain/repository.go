package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("system_not_found")
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, system *System) error
	// FindByID returns the system with its schedule validated; a stored
	// schedule that fails validation surfaces tariff.ErrMalformedSchedule.
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*System, error)
	List(ctx context.Context, db *gorm.DB) ([]*System, error)
}
