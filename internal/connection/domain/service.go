package domain

import (
	"context"
	"errors"
)

type CreateConnectionRequest struct {
	CustomerID     string
	SystemID       string
	Category       string
	InitialReading float64
	Address        string
}

type Service interface {
	Create(context.Context, CreateConnectionRequest) (Connection, error)
	GetByID(ctx context.Context, id string) (Connection, error)
	ListByCustomer(ctx context.Context, customerID string) ([]Connection, error)
}

var (
	ErrInvalidID       = errors.New("invalid_id")
	ErrInvalidCategory = errors.New("invalid_category")
	ErrInvalidBaseline = errors.New("invalid_initial_reading")
	ErrNotFound        = errors.New("not_found")
	ErrCustomerMissing = errors.New("customer_not_found")
	ErrSystemMissing   = errors.New("system_not_found")
)
