package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	InsertConsumption(ctx context.Context, tx *gorm.DB, invoice *ConsumptionInvoice) error
	InsertInfraction(ctx context.Context, tx *gorm.DB, invoice *InfractionInvoice) error
	FindConsumptionByReading(ctx context.Context, db *gorm.DB, readingID snowflake.ID) (*ConsumptionInvoice, error)
	ListConsumptionByCustomer(ctx context.Context, db *gorm.DB, customerID snowflake.ID, filter ListFilter) ([]*ConsumptionInvoice, error)
}

type ListFilter struct {
	Status Status
	Limit  int
}
