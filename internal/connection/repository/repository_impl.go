package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/openwater/aquabill/internal/connection/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, connection *domain.Connection) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO connections (id, customer_id, system_id, category, initial_reading, address, active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		connection.ID,
		connection.CustomerID,
		connection.SystemID,
		connection.Category,
		connection.InitialReading,
		connection.Address,
		connection.Active,
		connection.CreatedAt,
		connection.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Connection, error) {
	var connection domain.Connection
	err := db.WithContext(ctx).
		Where("id = ?", id).
		First(&connection).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &connection, nil
}

func (r *repo) ListByCustomer(ctx context.Context, db *gorm.DB, customerID snowflake.ID) ([]*domain.Connection, error) {
	var connections []*domain.Connection
	err := db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at asc, id asc").
		Find(&connections).Error
	if err != nil {
		return nil, err
	}
	return connections, nil
}
