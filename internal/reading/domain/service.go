package domain

import (
	"context"
	"errors"

	invoicedomain "github.com/openwater/aquabill/internal/invoice/domain"
	paymentdomain "github.com/openwater/aquabill/internal/payment/domain"
)

var (
	ErrInvalidID          = errors.New("invalid_id")
	ErrInvalidReading     = errors.New("invalid_reading")
	ErrNotFound           = errors.New("reading_not_found")
	ErrCustomerNotFound   = errors.New("customer_not_found")
	ErrConnectionNotFound = errors.New("connection_not_found")
	ErrSystemNotFound     = errors.New("system_not_found")
	ErrOwnershipMismatch  = errors.New("ownership_mismatch")
	ErrInactiveConnection = errors.New("inactive_connection")
	// ErrReadingRegression rejects a meter value below the billing baseline.
	// Meter rollover and replacement are handled operationally, not here.
	ErrReadingRegression = errors.New("reading_regression")
	ErrMissingActor      = errors.New("missing_actor")
)

type SubmitReadingRequest struct {
	CustomerID     string  `json:"customer_id" binding:"required"`
	ConnectionID   string  `json:"connection_id" binding:"required"`
	CurrentReading float64 `json:"current_reading"`
	ImagePath      string  `json:"image_path,omitempty"`
	Notes          string  `json:"notes,omitempty"`
}

// SubmitReadingResult returns everything the ingestion transaction produced.
// Payment is nil when no prepaid credit was applied.
type SubmitReadingResult struct {
	Reading Reading                          `json:"reading"`
	Invoice invoicedomain.ConsumptionInvoice `json:"invoice"`
	Payment *paymentdomain.Payment           `json:"payment,omitempty"`
}

type ListReadingsRequest struct {
	ConnectionID string
	PageSize     int
}

type Service interface {
	// Submit runs the full ingestion pipeline: baseline resolution, tariff
	// calculation, tax, prepaid settlement and persistence, all inside one
	// storage transaction.
	Submit(ctx context.Context, req SubmitReadingRequest) (SubmitReadingResult, error)
	GetByID(ctx context.Context, id string) (Reading, error)
	ListByConnection(ctx context.Context, req ListReadingsRequest) ([]Reading, error)
}
