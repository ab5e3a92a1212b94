package domain

import (
	"context"
	"errors"

	"github.com/whizlyai/whizly/pkg/db/pagination"
)

type ListCustomerRequest struct {
	pagination.Pagination
	Name  string `form:"name"`
	Email string `form:"email"`
}

type ListCustomerFilter struct {
	Name   string
	Email  string
	Cursor *CustomerCursor
	Limit  int
}

type ListCustomerResponse struct {
	pagination.PageInfo
	Customers []Customer `json:"customers"`
}

type CreateCustomerRequest struct {
	Name     string         `json:"name"`
	Email    string         `json:"email"`
	Phone    string         `json:"phone"`
	Address  string         `json:"address"`
	TaxID    string         `json:"tax_id"`
	Metadata map[string]any `json:"metadata"`
}

type Service interface {
	Create(ctx context.Context, req CreateCustomerRequest) (Customer, error)
	List(ctx context.Context, req ListCustomerRequest) (ListCustomerResponse, error)
	GetByID(ctx context.Context, id string) (Customer, error)
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidName         = errors.New("invalid_name")
	ErrInvalidEmail        = errors.New("invalid_email")
	ErrInvalidTaxID        = errors.New("invalid_tax_id")
	ErrInvalidID           = errors.New("invalid_id")
	ErrInvalidPageToken    = errors.New("invalid_page_token")
	ErrNotFound            = errors.New("not_found")
)
