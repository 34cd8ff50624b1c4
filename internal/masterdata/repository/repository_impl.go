package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	masterdomain "github.com/smallbiznis/salesinvoice/internal/masterdata/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() masterdomain.Repository {
	return &repo{}
}

func (r *repo) InsertSalesPerson(ctx context.Context, db *gorm.DB, sp *masterdomain.SalesPerson) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO sales_persons (id, name, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		sp.ID, sp.Name, sp.IsActive, sp.CreatedAt, sp.UpdatedAt,
	).Error
}

func (r *repo) UpdateSalesPerson(ctx context.Context, db *gorm.DB, sp *masterdomain.SalesPerson) error {
	return db.WithContext(ctx).Exec(
		`UPDATE sales_persons SET name = ?, is_active = ?, updated_at = ? WHERE id = ?`,
		sp.Name, sp.IsActive, sp.UpdatedAt, sp.ID,
	).Error
}

func (r *repo) FindSalesPerson(ctx context.Context, db *gorm.DB, id snowflake.ID) (*masterdomain.SalesPerson, error) {
	var sp masterdomain.SalesPerson
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, is_active, created_at, updated_at
		 FROM sales_persons WHERE id = ? AND is_active = ?`,
		id, true,
	).Scan(&sp).Error
	if err != nil {
		return nil, err
	}
	if sp.ID == 0 {
		return nil, nil
	}
	return &sp, nil
}

func (r *repo) LockSalesPerson(ctx context.Context, db *gorm.DB, id snowflake.ID) (*masterdomain.SalesPerson, error) {
	var sp masterdomain.SalesPerson
	err := db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND is_active = ?", id, true).
		Limit(1).
		Find(&sp).Error
	if err != nil {
		return nil, err
	}
	if sp.ID == 0 {
		return nil, nil
	}
	return &sp, nil
}

func (r *repo) ListSalesPersons(ctx context.Context, db *gorm.DB, ids []snowflake.ID) ([]masterdomain.SalesPerson, error) {
	var items []masterdomain.SalesPerson
	stmt := db.WithContext(ctx).
		Model(&masterdomain.SalesPerson{}).
		Where("is_active = ?", true)
	if len(ids) > 0 {
		stmt = stmt.Where("id IN ?", ids)
	}
	if err := stmt.Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) SalesPersonNames(ctx context.Context, db *gorm.DB, ids []snowflake.ID) (map[snowflake.ID]string, error) {
	return names(ctx, db, "sales_persons", ids)
}

func (r *repo) InsertContractor(ctx context.Context, db *gorm.DB, c *masterdomain.Contractor) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO contractors (id, name, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.IsActive, c.CreatedAt, c.UpdatedAt,
	).Error
}

func (r *repo) UpdateContractor(ctx context.Context, db *gorm.DB, c *masterdomain.Contractor) error {
	return db.WithContext(ctx).Exec(
		`UPDATE contractors SET name = ?, is_active = ?, updated_at = ? WHERE id = ?`,
		c.Name, c.IsActive, c.UpdatedAt, c.ID,
	).Error
}

func (r *repo) FindContractor(ctx context.Context, db *gorm.DB, id snowflake.ID) (*masterdomain.Contractor, error) {
	var c masterdomain.Contractor
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, is_active, created_at, updated_at
		 FROM contractors WHERE id = ? AND is_active = ?`,
		id, true,
	).Scan(&c).Error
	if err != nil {
		return nil, err
	}
	if c.ID == 0 {
		return nil, nil
	}
	return &c, nil
}

func (r *repo) ListContractors(ctx context.Context, db *gorm.DB) ([]masterdomain.Contractor, error) {
	var items []masterdomain.Contractor
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, is_active, created_at, updated_at
		 FROM contractors WHERE is_active = ? ORDER BY id ASC`,
		true,
	).Scan(&items).Error
	return items, err
}

func (r *repo) InsertProduct(ctx context.Context, db *gorm.DB, p *masterdomain.Product) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO products (
			id, name, price, discount_exclusion, quota_exclusion, quota_target,
			display_order, is_active, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Price, p.DiscountExclusion, p.QuotaExclusion, p.QuotaTarget,
		p.DisplayOrder, p.IsActive, p.CreatedAt, p.UpdatedAt,
	).Error
}

func (r *repo) UpdateProduct(ctx context.Context, db *gorm.DB, p *masterdomain.Product) error {
	return db.WithContext(ctx).Exec(
		`UPDATE products SET
			name = ?, price = ?, discount_exclusion = ?, quota_exclusion = ?, quota_target = ?,
			display_order = ?, is_active = ?, updated_at = ?
		 WHERE id = ?`,
		p.Name, p.Price, p.DiscountExclusion, p.QuotaExclusion, p.QuotaTarget,
		p.DisplayOrder, p.IsActive, p.UpdatedAt, p.ID,
	).Error
}

func (r *repo) FindProduct(ctx context.Context, db *gorm.DB, id snowflake.ID) (*masterdomain.Product, error) {
	var p masterdomain.Product
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, price, discount_exclusion, quota_exclusion, quota_target,
		 display_order, is_active, created_at, updated_at
		 FROM products WHERE id = ? AND is_active = ?`,
		id, true,
	).Scan(&p).Error
	if err != nil {
		return nil, err
	}
	if p.ID == 0 {
		return nil, nil
	}
	return &p, nil
}

func (r *repo) ListProducts(ctx context.Context, db *gorm.DB) ([]masterdomain.Product, error) {
	var items []masterdomain.Product
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, price, discount_exclusion, quota_exclusion, quota_target,
		 display_order, is_active, created_at, updated_at
		 FROM products WHERE is_active = ?
		 ORDER BY display_order ASC, id ASC`,
		true,
	).Scan(&items).Error
	return items, err
}

func (r *repo) FindProductsByIDs(ctx context.Context, db *gorm.DB, ids []snowflake.ID) (map[snowflake.ID]masterdomain.Product, error) {
	out := make(map[snowflake.ID]masterdomain.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var items []masterdomain.Product
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, price, discount_exclusion, quota_exclusion, quota_target,
		 display_order, is_active, created_at, updated_at
		 FROM products WHERE id IN ? AND is_active = ?`,
		ids, true,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		out[item.ID] = item
	}
	return out, nil
}

func (r *repo) ProductNames(ctx context.Context, db *gorm.DB, ids []snowflake.ID) (map[snowflake.ID]string, error) {
	return names(ctx, db, "products", ids)
}

type nameRow struct {
	ID   snowflake.ID
	Name string
}

func names(ctx context.Context, db *gorm.DB, table string, ids []snowflake.ID) (map[snowflake.ID]string, error) {
	out := make(map[snowflake.ID]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []nameRow
	if err := db.WithContext(ctx).Table(table).Select("id, name").Where("id IN ?", ids).Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ID] = row.Name
	}
	return out, nil
}
