package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	discountdomain "github.com/smallbiznis/salesinvoice/internal/discount/domain"
	invoicedomain "github.com/smallbiznis/salesinvoice/internal/invoice/domain"
	"github.com/smallbiznis/salesinvoice/pkg/db/pagination"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func (s *Service) List(ctx context.Context, req invoicedomain.ListRequest) (*invoicedomain.ListResponse, error) {
	filter := invoicedomain.ListFilter{Limit: req.Limit()}
	if v := strings.TrimSpace(req.SalesPersonID); v != "" {
		id, err := parseID(v)
		if err != nil {
			return nil, err
		}
		filter.SalesPersonID = id
	}
	cursor, err := pagination.DecodeCursor(req.PageToken)
	if err != nil {
		return nil, err
	}
	filter.Cursor = cursor

	invoices, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}
	invoices, pageInfo, err := pagination.BuildPageInfo(invoices, filter.Limit, func(i invoicedomain.Invoice) pagination.Cursor {
		return pagination.Cursor{ID: i.ID.String(), SortAt: i.CreatedAt}
	})
	if err != nil {
		return nil, err
	}

	views, err := s.buildViews(ctx, s.db, invoices)
	if err != nil {
		return nil, err
	}
	return &invoicedomain.ListResponse{Items: views, PageInfo: pageInfo}, nil
}

func (s *Service) Get(ctx context.Context, id string) (*invoicedomain.InvoiceView, error) {
	invoice, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, s.db, invoice)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	invoiceID, err := parseID(id)
	if err != nil {
		return err
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.lockInvoice(ctx, tx, invoiceID); err != nil {
			return err
		}
		if err := s.repo.DeleteDetails(ctx, tx, invoiceID); err != nil {
			return err
		}
		return s.repo.Delete(ctx, tx, invoiceID)
	})
	if err != nil {
		return err
	}
	s.log.Info("invoice deleted", zap.String("invoice_id", invoiceID.String()))
	return nil
}

func (s *Service) find(ctx context.Context, id string) (*invoicedomain.Invoice, error) {
	invoiceID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	invoice, err := s.repo.FindByID(ctx, s.db, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, invoicedomain.ErrInvoiceNotFound
	}
	return invoice, nil
}

func (s *Service) view(ctx context.Context, db *gorm.DB, invoice *invoicedomain.Invoice) (*invoicedomain.InvoiceView, error) {
	views, err := s.buildViews(ctx, db, []invoicedomain.Invoice{*invoice})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// buildViews resolves names and tiers in bulk. Deactivated sales persons,
// products and tiers still resolve so issued invoices keep their labels.
func (s *Service) buildViews(ctx context.Context, db *gorm.DB, invoices []invoicedomain.Invoice) ([]invoicedomain.InvoiceView, error) {
	if len(invoices) == 0 {
		return []invoicedomain.InvoiceView{}, nil
	}

	invoiceIDs := make([]snowflake.ID, 0, len(invoices))
	personIDs := make([]snowflake.ID, 0, len(invoices))
	for _, inv := range invoices {
		invoiceIDs = append(invoiceIDs, inv.ID)
		personIDs = append(personIDs, inv.SalesPersonID)
	}

	personNames, err := s.master.SalesPersonNames(ctx, db, personIDs)
	if err != nil {
		return nil, err
	}
	details, err := s.repo.ListDetails(ctx, db, invoiceIDs)
	if err != nil {
		return nil, err
	}
	productIDs := make([]snowflake.ID, 0, len(details))
	for _, d := range details {
		productIDs = append(productIDs, d.ProductID)
	}
	productNames, err := s.master.ProductNames(ctx, db, productIDs)
	if err != nil {
		return nil, err
	}

	detailsByInvoice := make(map[snowflake.ID][]invoicedomain.DetailView, len(invoices))
	for _, d := range details {
		detailsByInvoice[d.InvoiceID] = append(detailsByInvoice[d.InvoiceID], invoicedomain.DetailView{
			ID:                d.ID.String(),
			ProductID:         d.ProductID.String(),
			ProductName:       productNames[d.ProductID],
			TotalQuantity:     d.TotalQuantity,
			UnitPrice:         d.UnitPrice,
			Amount:            d.Amount,
			QuotaTarget:       d.QuotaTarget,
			DiscountExclusion: d.DiscountExclusion,
		})
	}

	tiers := make(map[snowflake.ID]*discountdomain.Tier)
	out := make([]invoicedomain.InvoiceView, 0, len(invoices))
	for _, inv := range invoices {
		tier, ok := tiers[inv.DiscountTierID]
		if !ok {
			tier, err = s.discounts.Tier(ctx, db, inv.DiscountTierID)
			if err != nil {
				return nil, err
			}
			tiers[inv.DiscountTierID] = tier
		}
		out = append(out, toView(inv, personNames[inv.SalesPersonID], tier, detailsByInvoice[inv.ID]))
	}
	return out, nil
}

func toView(inv invoicedomain.Invoice, personName string, tier *discountdomain.Tier, details []invoicedomain.DetailView) invoicedomain.InvoiceView {
	if details == nil {
		details = []invoicedomain.DetailView{}
	}
	rate := decimal.Zero
	var threshold int64
	if tier != nil {
		rate = tier.Rate
		threshold = tier.Threshold
	}
	return invoicedomain.InvoiceView{
		ID:                inv.ID.String(),
		SalesPersonID:     inv.SalesPersonID.String(),
		SalesPersonName:   personName,
		Audience:          inv.Audience,
		InvoiceNumber:     inv.InvoiceNumber,
		StartDate:         inv.StartDate.Format(invoicedomain.DateLayout),
		EndDate:           inv.EndDate.Format(invoicedomain.DateLayout),
		InvoiceDate:       inv.InvoiceDate.Format(invoicedomain.DateLayout),
		ReceiptDate:       inv.ReceiptDate.Format(invoicedomain.DateLayout),
		DiscountRateID:    inv.DiscountTierID.String(),
		DiscountRate:      rate,
		DiscountThreshold: threshold,
		Note:              inv.Note,
		Totals: invoicedomain.Totals{
			QuotaSubtotal:    inv.QuotaSubtotal,
			QuotaDiscount:    inv.QuotaDiscountAmount,
			QuotaTotal:       inv.QuotaTotal,
			NonQuotaSubtotal: inv.NonQuotaSubtotal,
			NonQuotaDiscount: inv.NonQuotaDiscountAmount,
			NonQuotaTotal:    inv.NonQuotaTotal,
			NonDiscountable:  inv.NonDiscountableAmount,
			TotalExTax:       inv.TotalAmountExTax,
			Tax:              inv.TaxAmount,
			TotalIncTax:      inv.TotalAmountIncTax,
		},
		Details:   details,
		CreatedAt: inv.CreatedAt,
		UpdatedAt: inv.UpdatedAt,
	}
}
