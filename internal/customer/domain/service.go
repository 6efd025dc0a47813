package domain

import (
	"context"
	"errors"

	"github.com/openwater/aquabill/pkg/db/pagination"
)

type CreateCustomerRequest struct {
	Name  string
	Email string
	Phone string
}

type ListCustomerRequest struct {
	Name      string
	Email     string
	PageToken string
	PageSize  int
}

type ListCustomersResponse struct {
	Customers []Customer           `json:"customers"`
	PageInfo  *pagination.PageInfo `json:"page_info"`
}

type Service interface {
	Create(context.Context, CreateCustomerRequest) (Customer, error)
	GetByID(ctx context.Context, id string) (Customer, error)
	List(context.Context, ListCustomerRequest) (ListCustomersResponse, error)
}

var (
	ErrInvalidName      = errors.New("invalid_name")
	ErrInvalidEmail     = errors.New("invalid_email")
	ErrInvalidID        = errors.New("invalid_id")
	ErrInvalidPageToken = errors.New("invalid_page_token")
	ErrNotFound         = errors.New("not_found")
)
