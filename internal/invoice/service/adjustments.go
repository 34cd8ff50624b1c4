package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bwmarrin/snowflake"
	discountdomain "github.com/smallbiznis/salesinvoice/internal/discount/domain"
	invoicedomain "github.com/smallbiznis/salesinvoice/internal/invoice/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	adjustmentOverride = "override_discount"
	adjustmentPatch    = "patch"
)

// OverrideDiscount replaces the applied tier and recomputes from the stored
// subtotals. Details are not touched.
func (s *Service) OverrideDiscount(ctx context.Context, req invoicedomain.OverrideDiscountRequest) (*invoicedomain.InvoiceView, error) {
	invoiceID, err := parseID(req.InvoiceID)
	if err != nil {
		return nil, err
	}
	tierID, err := parseTierID(req.DiscountRateID)
	if err != nil {
		return nil, err
	}

	var invoice *invoicedomain.Invoice
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoice, err = s.lockInvoice(ctx, tx, invoiceID)
		if err != nil {
			return err
		}
		tier, err := s.discounts.ActiveTier(ctx, tx, invoice.Audience, tierID)
		if err != nil {
			return err
		}
		if err := s.recompute(ctx, tx, invoice, tier); err != nil {
			return err
		}
		return s.repo.Update(ctx, tx, invoice)
	})
	if err != nil {
		return nil, err
	}

	s.genMetrics.IncAdjustment(adjustmentOverride)
	s.log.Info("invoice discount overridden",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("discount_tier_id", invoice.DiscountTierID.String()),
	)
	return s.view(ctx, s.db.WithContext(ctx), invoice)
}

// Patch applies the fields that are set. A note-only change leaves every
// amount as stored.
func (s *Service) Patch(ctx context.Context, req invoicedomain.PatchRequest) (*invoicedomain.InvoiceView, error) {
	if req.DiscountRateID == nil && req.Note == nil && req.NonDiscountableAmount == nil {
		return nil, invoicedomain.ErrEmptyPatch
	}
	invoiceID, err := parseID(req.ID)
	if err != nil {
		return nil, err
	}

	var tierID snowflake.ID
	if req.DiscountRateID != nil {
		if tierID, err = parseTierID(*req.DiscountRateID); err != nil {
			return nil, err
		}
	}
	var note *string
	if req.Note != nil {
		if note, err = normalizeNote(*req.Note); err != nil {
			return nil, err
		}
	}
	if req.NonDiscountableAmount != nil && *req.NonDiscountableAmount < 0 {
		return nil, invoicedomain.ErrNegativeAmount
	}

	var invoice *invoicedomain.Invoice
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoice, err = s.lockInvoice(ctx, tx, invoiceID)
		if err != nil {
			return err
		}

		if req.Note != nil {
			invoice.Note = note
		}

		if req.DiscountRateID != nil || req.NonDiscountableAmount != nil {
			var tier *discountdomain.Tier
			if req.DiscountRateID != nil {
				tier, err = s.discounts.ActiveTier(ctx, tx, invoice.Audience, tierID)
			} else {
				tier, err = s.discounts.Tier(ctx, tx, invoice.DiscountTierID)
			}
			if err != nil {
				return err
			}
			if req.NonDiscountableAmount != nil {
				invoice.NonDiscountableAmount = *req.NonDiscountableAmount
			}
			if err := s.recompute(ctx, tx, invoice, tier); err != nil {
				return err
			}
		}

		invoice.UpdatedAt = time.Now().UTC()
		return s.repo.Update(ctx, tx, invoice)
	})
	if err != nil {
		return nil, err
	}

	s.genMetrics.IncAdjustment(adjustmentPatch)
	s.log.Info("invoice patched",
		zap.String("invoice_id", invoice.ID.String()),
		zap.Bool("discount_changed", req.DiscountRateID != nil),
		zap.Bool("note_changed", req.Note != nil),
		zap.Bool("non_discountable_changed", req.NonDiscountableAmount != nil),
	)
	return s.view(ctx, s.db.WithContext(ctx), invoice)
}

func (s *Service) lockInvoice(ctx context.Context, tx *gorm.DB, id snowflake.ID) (*invoicedomain.Invoice, error) {
	invoice, err := s.repo.LockByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, invoicedomain.ErrInvoiceNotFound
	}
	return invoice, nil
}

// recompute reapplies tier to the stored subtotals with the current tax rate.
func (s *Service) recompute(ctx context.Context, tx *gorm.DB, invoice *invoicedomain.Invoice, tier *discountdomain.Tier) error {
	if tier == nil {
		return discountdomain.ErrInvalidTierReference
	}
	rate, err := s.tax.ActiveRate(ctx, tx)
	if err != nil {
		return err
	}
	totals, err := Calculate(invoicedomain.CalculationInput{
		QuotaSubtotal:         invoice.QuotaSubtotal,
		NonQuotaSubtotal:      invoice.NonQuotaSubtotal,
		NonDiscountableAmount: invoice.NonDiscountableAmount,
		DiscountRate:          tier.Rate,
		TaxRate:               rate.Fraction(),
		TaxBasis:              s.taxBasis,
	})
	if err != nil {
		return err
	}
	invoice.DiscountTierID = tier.ID
	invoice.ApplyTotals(totals)
	invoice.UpdatedAt = time.Now().UTC()
	return nil
}

func parseTierID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, discountdomain.ErrInvalidTierReference
	}
	return id, nil
}

// normalizeNote maps a blank note to NULL.
func normalizeNote(value string) (*string, error) {
	if utf8.RuneCountInString(value) > invoicedomain.NoteMaxLength {
		return nil, invoicedomain.ErrInvalidNote
	}
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	return &value, nil
}
