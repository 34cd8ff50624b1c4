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
	From          *time.Time
	To            *time.Time
	Cursor        *pagination.Cursor
	Limit         int
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, note *Note) error
	Update(ctx context.Context, db *gorm.DB, note *Note) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Note, error)
	NumberTaken(ctx context.Context, db *gorm.DB, number string, excludeID snowflake.ID) (bool, error)
	// List orders by delivery_date DESC, id DESC and returns up to Limit+1 rows.
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]Note, error)

	InsertLines(ctx context.Context, db *gorm.DB, lines []Line) error
	DeleteLines(ctx context.Context, db *gorm.DB, noteID snowflake.ID) error
	ListLines(ctx context.Context, db *gorm.DB, noteIDs []snowflake.ID) ([]Line, error)

	// ListForPeriod returns the notes of a sales person with delivery_date in [start, end].
	ListForPeriod(ctx context.Context, db *gorm.DB, salesPersonID snowflake.ID, start, end time.Time) ([]Note, error)
	// ListLineItems joins lines to product flags. Deactivated products are
	// included so that notes already delivered keep all their lines.
	ListLineItems(ctx context.Context, db *gorm.DB, noteIDs []snowflake.ID) ([]LineItem, error)
}
