package domain

import (
	"context"
	"errors"
)

type ListPaymentsRequest struct {
	CustomerID string
	PageSize   int
}

// Service exposes the read side of payments. Payments are only ever written
// by the reading ingestion transaction.
type Service interface {
	ListByCustomer(context.Context, ListPaymentsRequest) ([]Payment, error)
}

var (
	ErrInvalidID = errors.New("invalid_id")
)
