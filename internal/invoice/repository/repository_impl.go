package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	invoicedomain "github.com/smallbiznis/salesinvoice/internal/invoice/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const invoiceColumns = `id, sales_person_id, start_date, end_date, audience, invoice_number, discount_tier_id,
	invoice_date, receipt_date, non_discountable_amount, note,
	quota_subtotal, quota_discount_amount, quota_total,
	non_quota_subtotal, non_quota_discount_amount, non_quota_total,
	total_amount_ex_tax, tax_amount, total_amount_inc_tax, created_at, updated_at`

type repo struct{}

func Provide() invoicedomain.Repository {
	return &repo{}
}

func (r *repo) FindByKey(ctx context.Context, db *gorm.DB, salesPersonID snowflake.ID, start, end time.Time) (*invoicedomain.Invoice, error) {
	var invoice invoicedomain.Invoice
	err := db.WithContext(ctx).Raw(
		`SELECT `+invoiceColumns+`
		 FROM sales_invoices
		 WHERE sales_person_id = ? AND start_date = ? AND end_date = ?`,
		salesPersonID, start, end,
	).Scan(&invoice).Error
	if err != nil {
		return nil, err
	}
	if invoice.ID == 0 {
		return nil, nil
	}
	return &invoice, nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*invoicedomain.Invoice, error) {
	var invoice invoicedomain.Invoice
	err := db.WithContext(ctx).Raw(
		`SELECT `+invoiceColumns+` FROM sales_invoices WHERE id = ?`,
		id,
	).Scan(&invoice).Error
	if err != nil {
		return nil, err
	}
	if invoice.ID == 0 {
		return nil, nil
	}
	return &invoice, nil
}

func (r *repo) LockByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*invoicedomain.Invoice, error) {
	var invoice invoicedomain.Invoice
	err := db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		Limit(1).
		Find(&invoice).Error
	if err != nil {
		return nil, err
	}
	if invoice.ID == 0 {
		return nil, nil
	}
	return &invoice, nil
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, invoice *invoicedomain.Invoice) error {
	return db.WithContext(ctx).Create(invoice).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, invoice *invoicedomain.Invoice) error {
	return db.WithContext(ctx).Exec(
		`UPDATE sales_invoices
		 SET audience = ?, invoice_number = ?, discount_tier_id = ?, invoice_date = ?, receipt_date = ?,
		     non_discountable_amount = ?, note = ?,
		     quota_subtotal = ?, quota_discount_amount = ?, quota_total = ?,
		     non_quota_subtotal = ?, non_quota_discount_amount = ?, non_quota_total = ?,
		     total_amount_ex_tax = ?, tax_amount = ?, total_amount_inc_tax = ?, updated_at = ?
		 WHERE id = ?`,
		invoice.Audience, invoice.InvoiceNumber, invoice.DiscountTierID, invoice.InvoiceDate, invoice.ReceiptDate,
		invoice.NonDiscountableAmount, invoice.Note,
		invoice.QuotaSubtotal, invoice.QuotaDiscountAmount, invoice.QuotaTotal,
		invoice.NonQuotaSubtotal, invoice.NonQuotaDiscountAmount, invoice.NonQuotaTotal,
		invoice.TotalAmountExTax, invoice.TaxAmount, invoice.TotalAmountIncTax, invoice.UpdatedAt,
		invoice.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM sales_invoices WHERE id = ?`, id).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter invoicedomain.ListFilter) ([]invoicedomain.Invoice, error) {
	stmt := db.WithContext(ctx).Model(&invoicedomain.Invoice{})
	if filter.SalesPersonID != 0 {
		stmt = stmt.Where("sales_person_id = ?", filter.SalesPersonID)
	}
	if filter.Cursor != nil {
		cursorID, err := snowflake.ParseString(filter.Cursor.ID)
		if err != nil {
			return nil, err
		}
		stmt = stmt.Where("(created_at < ?) OR (created_at = ? AND id < ?)",
			filter.Cursor.SortAt, filter.Cursor.SortAt, cursorID)
	}

	var items []invoicedomain.Invoice
	err := stmt.
		Order("created_at DESC").
		Order("id DESC").
		Limit(filter.Limit + 1).
		Find(&items).Error
	return items, err
}

func (r *repo) InsertDetails(ctx context.Context, db *gorm.DB, details []invoicedomain.InvoiceDetail) error {
	if len(details) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&details).Error
}

func (r *repo) DeleteDetails(ctx context.Context, db *gorm.DB, invoiceID snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM sales_invoice_details WHERE invoice_id = ?`, invoiceID).Error
}

func (r *repo) ListDetails(ctx context.Context, db *gorm.DB, invoiceIDs []snowflake.ID) ([]invoicedomain.InvoiceDetail, error) {
	var items []invoicedomain.InvoiceDetail
	if len(invoiceIDs) == 0 {
		return items, nil
	}
	err := db.WithContext(ctx).Raw(
		`SELECT id, invoice_id, product_id, total_quantity, unit_price, amount,
		        quota_target, discount_exclusion, created_at
		 FROM sales_invoice_details
		 WHERE invoice_id IN ?
		 ORDER BY invoice_id ASC, product_id ASC`,
		invoiceIDs,
	).Scan(&items).Error
	return items, err
}
