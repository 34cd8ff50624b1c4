package service

import (
	"context"

	invoicedomain "github.com/smallbiznis/salesinvoice/internal/invoice/domain"
	"github.com/smallbiznis/salesinvoice/internal/invoice/format"
	"golang.org/x/text/language"
)

// Document assembles the renderer input for one invoice.
func (s *Service) Document(ctx context.Context, id string) (*invoicedomain.Document, error) {
	view, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	f := format.New(language.Und)
	labels := invoicedomain.Labels{
		DiscountRate:     f.Rate(view.DiscountRate),
		QuotaSubtotal:    f.Amount(view.QuotaSubtotal),
		QuotaDiscount:    f.Amount(view.QuotaDiscount),
		QuotaTotal:       f.Amount(view.QuotaTotal),
		NonQuotaSubtotal: f.Amount(view.NonQuotaSubtotal),
		NonQuotaDiscount: f.Amount(view.NonQuotaDiscount),
		NonQuotaTotal:    f.Amount(view.NonQuotaTotal),
		NonDiscountable:  f.Amount(view.NonDiscountable),
		TotalExTax:       f.Amount(view.TotalExTax),
		Tax:              f.Amount(view.Tax),
		TotalIncTax:      f.Amount(view.TotalIncTax),
		DetailAmounts:    make(map[string]string, len(view.Details)),
		DetailUnitPrices: make(map[string]string, len(view.Details)),
	}
	for _, d := range view.Details {
		labels.DetailAmounts[d.ID] = f.Amount(d.Amount)
		labels.DetailUnitPrices[d.ID] = f.Amount(d.UnitPrice)
	}

	s.metrics.RecordDocument(ctx)
	return &invoicedomain.Document{
		FileName: format.FileName(view.SalesPersonName, view.StartDate, view.EndDate),
		Issuer:   view.InvoiceNumber,
		Invoice:  *view,
		Labels:   labels,
	}, nil
}

func (s *Service) RenderHTML(ctx context.Context, id string) (string, error) {
	doc, err := s.Document(ctx, id)
	if err != nil {
		return "", err
	}
	return s.renderer.RenderHTML(doc)
}
