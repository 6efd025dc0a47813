package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/openwater/aquabill/internal/invoice/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertConsumption(ctx context.Context, tx *gorm.DB, invoice *domain.ConsumptionInvoice) error {
	return tx.WithContext(ctx).Exec(
		`INSERT INTO consumption_invoices (
			id, customer_id, connection_id, reading_id, base_amount, tax_amount,
			total_amount, credit_applied, remaining_debt, status, due_date, created_by, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		invoice.ID,
		invoice.CustomerID,
		invoice.ConnectionID,
		invoice.ReadingID,
		invoice.BaseAmount,
		invoice.TaxAmount,
		invoice.TotalAmount,
		invoice.CreditApplied,
		invoice.RemainingDebt,
		string(invoice.Status),
		invoice.DueDate,
		invoice.CreatedBy,
		invoice.CreatedAt,
	).Error
}

func (r *repo) InsertInfraction(ctx context.Context, tx *gorm.DB, invoice *domain.InfractionInvoice) error {
	return tx.WithContext(ctx).Exec(
		`INSERT INTO infraction_invoices (
			id, customer_id, connection_id, description, base_amount, tax_amount,
			total_amount, status, due_date, created_by, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		invoice.ID,
		invoice.CustomerID,
		invoice.ConnectionID,
		invoice.Description,
		invoice.BaseAmount,
		invoice.TaxAmount,
		invoice.TotalAmount,
		string(invoice.Status),
		invoice.DueDate,
		invoice.CreatedBy,
		invoice.CreatedAt,
	).Error
}

func (r *repo) FindConsumptionByReading(ctx context.Context, db *gorm.DB, readingID snowflake.ID) (*domain.ConsumptionInvoice, error) {
	var invoice domain.ConsumptionInvoice
	err := db.WithContext(ctx).
		Where("reading_id = ?", readingID).
		First(&invoice).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &invoice, nil
}

func (r *repo) ListConsumptionByCustomer(ctx context.Context, db *gorm.DB, customerID snowflake.ID, filter domain.ListFilter) ([]*domain.ConsumptionInvoice, error) {
	var invoices []*domain.ConsumptionInvoice
	stmt := db.WithContext(ctx).
		Model(&domain.ConsumptionInvoice{}).
		Where("customer_id = ?", customerID)
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", string(filter.Status))
	}
	if filter.Limit > 0 {
		stmt = stmt.Limit(filter.Limit)
	}
	err := stmt.
		Order("created_at desc, id desc").
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}
