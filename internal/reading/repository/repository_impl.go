package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/openwater/aquabill/internal/reading/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, tx *gorm.DB, reading *domain.Reading) error {
	return tx.WithContext(ctx).Exec(
		`INSERT INTO readings
		   (id, code, customer_id, connection_id, date, previous_reading,
		    current_reading, consumption, image_path, notes, created_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		reading.ID,
		reading.Code,
		reading.CustomerID,
		reading.ConnectionID,
		reading.Date,
		reading.PreviousReading,
		reading.CurrentReading,
		reading.Consumption,
		reading.ImagePath,
		reading.Notes,
		reading.CreatedBy,
		reading.CreatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Reading, error) {
	var reading domain.Reading
	err := db.WithContext(ctx).Where("id = ?", id).First(&reading).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &reading, nil
}

func (r *repo) FindLatestByConnection(ctx context.Context, db *gorm.DB, connectionID snowflake.ID) (*domain.Reading, error) {
	var reading domain.Reading
	err := db.WithContext(ctx).
		Where("connection_id = ?", connectionID).
		Order("date desc, id desc").
		First(&reading).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &reading, nil
}

func (r *repo) ListByConnection(ctx context.Context, db *gorm.DB, connectionID snowflake.ID, limit int) ([]*domain.Reading, error) {
	var readings []*domain.Reading
	stmt := db.WithContext(ctx).
		Where("connection_id = ?", connectionID).
		Order("date desc, id desc")
	if limit > 0 {
		stmt = stmt.Limit(limit)
	}
	if err := stmt.Find(&readings).Error; err != nil {
		return nil, err
	}
	return readings, nil
}
