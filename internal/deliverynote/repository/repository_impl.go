package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	notedomain "github.com/smallbiznis/salesinvoice/internal/deliverynote/domain"
	"gorm.io/gorm"
)

const noteColumns = `id, sales_person_id, tax_rate_id, delivery_note_number, delivery_date, billing_date,
	quota_amount, non_quota_amount, total_amount_ex_tax, tax_amount, total_amount_inc_tax,
	remarks, file_path, image_recognition_data, created_at, updated_at`

type repo struct{}

func Provide() notedomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, note *notedomain.Note) error {
	return db.WithContext(ctx).Create(note).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, note *notedomain.Note) error {
	return db.WithContext(ctx).Exec(
		`UPDATE delivery_notes
		 SET sales_person_id = ?, tax_rate_id = ?, delivery_note_number = ?, delivery_date = ?, billing_date = ?,
		     quota_amount = ?, non_quota_amount = ?, total_amount_ex_tax = ?, tax_amount = ?, total_amount_inc_tax = ?,
		     remarks = ?, file_path = ?, image_recognition_data = ?, updated_at = ?
		 WHERE id = ?`,
		note.SalesPersonID, note.TaxRateID, note.DeliveryNoteNumber, note.DeliveryDate, note.BillingDate,
		note.QuotaAmount, note.NonQuotaAmount, note.TotalAmountExTax, note.TaxAmount, note.TotalAmountIncTax,
		note.Remarks, note.FilePath, note.ImageRecognitionData, note.UpdatedAt,
		note.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM delivery_notes WHERE id = ?`, id).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*notedomain.Note, error) {
	var note notedomain.Note
	err := db.WithContext(ctx).Raw(
		`SELECT `+noteColumns+` FROM delivery_notes WHERE id = ?`,
		id,
	).Scan(&note).Error
	if err != nil {
		return nil, err
	}
	if note.ID == 0 {
		return nil, nil
	}
	return &note, nil
}

func (r *repo) NumberTaken(ctx context.Context, db *gorm.DB, number string, excludeID snowflake.ID) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(1) FROM delivery_notes WHERE delivery_note_number = ? AND id <> ?`,
		number, excludeID,
	).Scan(&count).Error
	return count > 0, err
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter notedomain.ListFilter) ([]notedomain.Note, error) {
	stmt := db.WithContext(ctx).Model(&notedomain.Note{})
	if filter.SalesPersonID != 0 {
		stmt = stmt.Where("sales_person_id = ?", filter.SalesPersonID)
	}
	if filter.From != nil {
		stmt = stmt.Where("delivery_date >= ?", *filter.From)
	}
	if filter.To != nil {
		stmt = stmt.Where("delivery_date <= ?", *filter.To)
	}
	if filter.Cursor != nil {
		cursorID, err := snowflake.ParseString(filter.Cursor.ID)
		if err != nil {
			return nil, err
		}
		stmt = stmt.Where("(delivery_date < ?) OR (delivery_date = ? AND id < ?)",
			filter.Cursor.SortAt, filter.Cursor.SortAt, cursorID)
	}

	var items []notedomain.Note
	err := stmt.
		Order("delivery_date DESC").
		Order("id DESC").
		Limit(filter.Limit + 1).
		Find(&items).Error
	return items, err
}

func (r *repo) InsertLines(ctx context.Context, db *gorm.DB, lines []notedomain.Line) error {
	if len(lines) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&lines).Error
}

func (r *repo) DeleteLines(ctx context.Context, db *gorm.DB, noteID snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM delivery_note_lines WHERE delivery_note_id = ?`, noteID).Error
}

func (r *repo) ListLines(ctx context.Context, db *gorm.DB, noteIDs []snowflake.ID) ([]notedomain.Line, error) {
	var items []notedomain.Line
	if len(noteIDs) == 0 {
		return items, nil
	}
	err := db.WithContext(ctx).Raw(
		`SELECT id, delivery_note_id, product_id, quantity, unit_price, amount, remarks, created_at, updated_at
		 FROM delivery_note_lines
		 WHERE delivery_note_id IN ?
		 ORDER BY delivery_note_id ASC, id ASC`,
		noteIDs,
	).Scan(&items).Error
	return items, err
}

func (r *repo) ListForPeriod(ctx context.Context, db *gorm.DB, salesPersonID snowflake.ID, start, end time.Time) ([]notedomain.Note, error) {
	var items []notedomain.Note
	err := db.WithContext(ctx).Raw(
		`SELECT `+noteColumns+`
		 FROM delivery_notes
		 WHERE sales_person_id = ? AND delivery_date >= ? AND delivery_date <= ?
		 ORDER BY delivery_date ASC, id ASC`,
		salesPersonID, start, end,
	).Scan(&items).Error
	return items, err
}

func (r *repo) ListLineItems(ctx context.Context, db *gorm.DB, noteIDs []snowflake.ID) ([]notedomain.LineItem, error) {
	var items []notedomain.LineItem
	if len(noteIDs) == 0 {
		return items, nil
	}
	err := db.WithContext(ctx).Raw(
		`SELECT l.delivery_note_id, l.product_id, l.quantity, l.unit_price, l.amount,
		        p.quota_target, p.discount_exclusion
		 FROM delivery_note_lines l
		 JOIN products p ON p.id = l.product_id
		 WHERE l.delivery_note_id IN ?
		 ORDER BY l.product_id ASC, l.id ASC`,
		noteIDs,
	).Scan(&items).Error
	return items, err
}
