package migration

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/smallbiznis/salesinvoice/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	entries, err := fs.ReadDir(embeddedMigrations, migrationsDir)
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	ups, downs := map[string]bool{}, map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		}
	}
	assert.Equal(t, ups, downs)
}

func TestApplyAutoMigratesSQLite(t *testing.T) {
	db := testutil.OpenDB(t)
	require.NoError(t, Apply(db))
	require.NoError(t, Apply(db))

	for _, table := range []string{"sales_persons", "products", "discount_tiers", "tax_rates", "delivery_notes", "sales_invoices", "sales_invoice_details", "invoice_closing_runs"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}
