package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/openwater/aquabill/internal/system/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, system *domain.System) error {
	if err := system.Validate(); err != nil {
		return err
	}
	return db.WithContext(ctx).Create(system).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.System, error) {
	var system domain.System
	err := db.WithContext(ctx).
		Where("id = ?", id).
		First(&system).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	if err := system.Validate(); err != nil {
		return nil, err
	}
	return &system, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]*domain.System, error) {
	var systems []*domain.System
	err := db.WithContext(ctx).
		Order("created_at asc, id asc").
		Find(&systems).Error
	if err != nil {
		return nil, err
	}
	return systems, nil
}
