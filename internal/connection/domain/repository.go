package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, connection *Connection) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Connection, error)
	ListByCustomer(ctx context.Context, db *gorm.DB, customerID snowflake.ID) ([]*Connection, error)
}
