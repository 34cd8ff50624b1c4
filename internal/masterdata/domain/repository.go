package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Repository reads master data through the active predicate unless a method
// name says otherwise.
type Repository interface {
	InsertSalesPerson(ctx context.Context, db *gorm.DB, sp *SalesPerson) error
	UpdateSalesPerson(ctx context.Context, db *gorm.DB, sp *SalesPerson) error
	FindSalesPerson(ctx context.Context, db *gorm.DB, id snowflake.ID) (*SalesPerson, error)
	// LockSalesPerson takes a row lock held until the surrounding transaction ends.
	LockSalesPerson(ctx context.Context, db *gorm.DB, id snowflake.ID) (*SalesPerson, error)
	ListSalesPersons(ctx context.Context, db *gorm.DB, ids []snowflake.ID) ([]SalesPerson, error)
	// SalesPersonNames resolves display names for already issued documents,
	// including persons deactivated since.
	SalesPersonNames(ctx context.Context, db *gorm.DB, ids []snowflake.ID) (map[snowflake.ID]string, error)

	InsertContractor(ctx context.Context, db *gorm.DB, c *Contractor) error
	UpdateContractor(ctx context.Context, db *gorm.DB, c *Contractor) error
	FindContractor(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Contractor, error)
	ListContractors(ctx context.Context, db *gorm.DB) ([]Contractor, error)

	InsertProduct(ctx context.Context, db *gorm.DB, p *Product) error
	UpdateProduct(ctx context.Context, db *gorm.DB, p *Product) error
	FindProduct(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Product, error)
	ListProducts(ctx context.Context, db *gorm.DB) ([]Product, error)
	FindProductsByIDs(ctx context.Context, db *gorm.DB, ids []snowflake.ID) (map[snowflake.ID]Product, error)
	// ProductNames includes deactivated products, for issued documents.
	ProductNames(ctx context.Context, db *gorm.DB, ids []snowflake.ID) (map[snowflake.ID]string, error)
}
