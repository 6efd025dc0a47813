package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, tx *gorm.DB, reading *Reading) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Reading, error)
	// FindLatestByConnection returns the most recent reading for the
	// connection, ordered by date then insertion, or nil when none exists.
	FindLatestByConnection(ctx context.Context, db *gorm.DB, connectionID snowflake.ID) (*Reading, error)
	ListByConnection(ctx context.Context, db *gorm.DB, connectionID snowflake.ID, limit int) ([]*Reading, error)
}
