package service

import (
	"github.com/shopspring/decimal"
	invoicedomain "github.com/smallbiznis/salesinvoice/internal/invoice/domain"
	taxservice "github.com/smallbiznis/salesinvoice/internal/tax/service"
)

var one = decimal.NewFromInt(1)

// Calculate applies one discount rate to both buckets and levies tax on the
// configured basis. Every multiply step truncates toward zero.
func Calculate(in invoicedomain.CalculationInput) (invoicedomain.Totals, error) {
	if in.QuotaSubtotal < 0 || in.NonQuotaSubtotal < 0 || in.NonDiscountableAmount < 0 {
		return invoicedomain.Totals{}, invoicedomain.ErrNegativeAmount
	}
	if in.DiscountRate.IsNegative() || in.DiscountRate.GreaterThan(one) {
		return invoicedomain.Totals{}, invoicedomain.ErrInvalidDiscountRate
	}
	if in.TaxRate.IsNegative() || in.TaxRate.GreaterThan(one) {
		return invoicedomain.Totals{}, invoicedomain.ErrInvalidTaxRate
	}

	t := invoicedomain.Totals{
		QuotaSubtotal:    in.QuotaSubtotal,
		NonQuotaSubtotal: in.NonQuotaSubtotal,
		NonDiscountable:  in.NonDiscountableAmount,
	}
	t.QuotaDiscount = floorMul(in.QuotaSubtotal, in.DiscountRate)
	t.NonQuotaDiscount = floorMul(in.NonQuotaSubtotal, in.DiscountRate)
	t.QuotaTotal = t.QuotaSubtotal - t.QuotaDiscount
	t.NonQuotaTotal = t.NonQuotaSubtotal - t.NonQuotaDiscount
	t.TotalExTax = t.QuotaTotal + t.NonQuotaTotal + t.NonDiscountable

	var basis int64
	switch in.TaxBasis {
	case invoicedomain.TaxBasisTotalExTax, "":
		basis = t.TotalExTax
	case invoicedomain.TaxBasisQuotaTotal:
		basis = t.QuotaTotal
	default:
		return invoicedomain.Totals{}, invoicedomain.ErrUnknownTaxBasis
	}
	t.Tax = taxservice.ComputeTaxExclusive(basis, in.TaxRate)
	t.TotalIncTax = t.TotalExTax + t.Tax
	return t, nil
}

func floorMul(amount int64, rate decimal.Decimal) int64 {
	return decimal.NewFromInt(amount).Mul(rate).Floor().IntPart()
}
