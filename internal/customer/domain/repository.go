package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, customer *Customer) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Customer, error)
	// FindByIDForUpdate loads the customer with a row lock so the prepaid
	// balance cannot be mutated by a concurrent committed transaction until
	// the caller's transaction finishes.
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id snowflake.ID) (*Customer, error)
	UpdateAvailableCredit(ctx context.Context, tx *gorm.DB, id snowflake.ID, newBalance float64) error
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]*Customer, error)
}

type ListFilter struct {
	Name  string
	Email string
	// AfterID narrows results to IDs strictly before this one in the
	// descending listing; zero means start from the newest.
	AfterID snowflake.ID
	Limit   int
}
