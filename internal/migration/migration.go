package migration

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	notedomain "github.com/smallbiznis/salesinvoice/internal/deliverynote/domain"
	discountdomain "github.com/smallbiznis/salesinvoice/internal/discount/domain"
	invoicedomain "github.com/smallbiznis/salesinvoice/internal/invoice/domain"
	masterdomain "github.com/smallbiznis/salesinvoice/internal/masterdata/domain"
	"github.com/smallbiznis/salesinvoice/internal/scheduler"
	taxdomain "github.com/smallbiznis/salesinvoice/internal/tax/domain"
	"gorm.io/gorm"
)

const migrationsDir = "migrations"

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// Models lists every table owned by the service, parents first.
func Models() []any {
	return []any{
		&masterdomain.SalesPerson{},
		&masterdomain.Contractor{},
		&masterdomain.Product{},
		&discountdomain.Tier{},
		&taxdomain.TaxRate{},
		&notedomain.Note{},
		&notedomain.Line{},
		&invoicedomain.Invoice{},
		&invoicedomain.InvoiceDetail{},
		&scheduler.ClosingRun{},
	}
}

// Apply brings the schema up to date. Postgres runs the embedded versioned
// migrations; the other dialects are for local use and are auto-migrated.
func Apply(conn *gorm.DB) error {
	if conn == nil {
		return errors.New("migration database handle is required")
	}
	if conn.Dialector.Name() != "postgres" {
		return conn.AutoMigrate(Models()...)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	return RunMigrations(sqlDB)
}

func RunMigrations(db *sql.DB) error {
	if db == nil {
		return errors.New("migration database handle is required")
	}

	sub, err := fs.Sub(embeddedMigrations, migrationsDir)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}

	source, err := iofs.New(sub, ".")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	upErr := migrator.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", upErr)
	}
	// Do not call migrator.Close here because it would close the shared *sql.DB.

	return nil
}
