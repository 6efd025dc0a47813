package domain

import (
	"context"
	"errors"
)

type CreateInfractionRequest struct {
	CustomerID   string
	ConnectionID string
	Description  string
	Amount       float64
}

type ListInvoicesRequest struct {
	CustomerID string
	Status     string
	PageSize   int
}

type Service interface {
	CreateInfraction(context.Context, CreateInfractionRequest) (InfractionInvoice, error)
	ListByCustomer(context.Context, ListInvoicesRequest) ([]ConsumptionInvoice, error)
}

var (
	ErrInvalidID          = errors.New("invalid_id")
	ErrInvalidAmount      = errors.New("invalid_amount")
	ErrInvalidDescription = errors.New("invalid_description")
	ErrInvalidStatus      = errors.New("invalid_status")
	ErrOwnershipMismatch  = errors.New("ownership_mismatch")
	ErrNotFound           = errors.New("not_found")
	ErrMissingActor       = errors.New("missing_actor")
)
