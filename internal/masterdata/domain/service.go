package domain

import (
	"context"
	"time"
)

type Service interface {
	CreateSalesPerson(ctx context.Context, req CreateSalesPersonRequest) (*SalesPersonResponse, error)
	ListSalesPersons(ctx context.Context) ([]SalesPersonResponse, error)
	GetSalesPerson(ctx context.Context, id string) (*SalesPersonResponse, error)
	UpdateSalesPerson(ctx context.Context, req UpdateSalesPersonRequest) (*SalesPersonResponse, error)
	DeleteSalesPerson(ctx context.Context, id string) error

	CreateContractor(ctx context.Context, req CreateContractorRequest) (*ContractorResponse, error)
	ListContractors(ctx context.Context) ([]ContractorResponse, error)
	UpdateContractor(ctx context.Context, req UpdateContractorRequest) (*ContractorResponse, error)
	DeleteContractor(ctx context.Context, id string) error

	CreateProduct(ctx context.Context, req CreateProductRequest) (*ProductResponse, error)
	ListProducts(ctx context.Context) ([]ProductResponse, error)
	GetProduct(ctx context.Context, id string) (*ProductResponse, error)
	UpdateProduct(ctx context.Context, req UpdateProductRequest) (*ProductResponse, error)
	DeleteProduct(ctx context.Context, id string) error
}

type CreateSalesPersonRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

type UpdateSalesPersonRequest struct {
	ID   string  `json:"-"`
	Name *string `json:"name,omitempty" binding:"omitempty,max=100"`
}

type SalesPersonResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateContractorRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

type UpdateContractorRequest struct {
	ID   string  `json:"-"`
	Name *string `json:"name,omitempty" binding:"omitempty,max=100"`
}

type ContractorResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateProductRequest struct {
	Name              string `json:"name" binding:"required,max=200"`
	Price             int64  `json:"price" binding:"gte=0"`
	DiscountExclusion bool   `json:"discount_exclusion"`
	QuotaExclusion    bool   `json:"quota_exclusion"`
	QuotaTarget       bool   `json:"quota_target"`
	DisplayOrder      int    `json:"display_order" binding:"gte=0"`
}

type UpdateProductRequest struct {
	ID                string  `json:"-"`
	Name              *string `json:"name,omitempty" binding:"omitempty,max=200"`
	Price             *int64  `json:"price,omitempty" binding:"omitempty,gte=0"`
	DiscountExclusion *bool   `json:"discount_exclusion,omitempty"`
	QuotaExclusion    *bool   `json:"quota_exclusion,omitempty"`
	QuotaTarget       *bool   `json:"quota_target,omitempty"`
	DisplayOrder      *int    `json:"display_order,omitempty" binding:"omitempty,gte=0"`
}

type ProductResponse struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Price             int64     `json:"price"`
	DiscountExclusion bool      `json:"discount_exclusion"`
	QuotaExclusion    bool      `json:"quota_exclusion"`
	QuotaTarget       bool      `json:"quota_target"`
	DisplayOrder      int       `json:"display_order"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
