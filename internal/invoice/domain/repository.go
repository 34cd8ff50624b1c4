package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/salesinvoice/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListFilter struct {
	SalesPersonID snowflake.ID
	Cursor        *pagination.Cursor
	Limit         int
}

type Repository interface {
	FindByKey(ctx context.Context, db *gorm.DB, salesPersonID snowflake.ID, start, end time.Time) (*Invoice, error)
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Invoice, error)
	// LockByID takes a row lock held until the surrounding transaction ends.
	LockByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Invoice, error)
	Insert(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	Update(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	// List orders by created_at DESC, id DESC and returns up to Limit+1 rows.
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]Invoice, error)

	InsertDetails(ctx context.Context, db *gorm.DB, details []InvoiceDetail) error
	DeleteDetails(ctx context.Context, db *gorm.DB, invoiceID snowflake.ID) error
	ListDetails(ctx context.Context, db *gorm.DB, invoiceIDs []snowflake.ID) ([]InvoiceDetail, error)
}
