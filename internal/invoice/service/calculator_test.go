package service

import (
	"testing"

	"github.com/shopspring/decimal"
	invoicedomain "github.com/smallbiznis/salesinvoice/internal/invoice/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func TestCalculate(t *testing.T) {
	cases := []struct {
		name string
		in   invoicedomain.CalculationInput
		want invoicedomain.Totals
	}{
		{
			name: "no discount",
			in: invoicedomain.CalculationInput{
				QuotaSubtotal: 3000, NonQuotaSubtotal: 1000,
				DiscountRate: decimal.Zero, TaxRate: dec("0.10"),
			},
			want: invoicedomain.Totals{
				QuotaSubtotal: 3000, QuotaTotal: 3000,
				NonQuotaSubtotal: 1000, NonQuotaTotal: 1000,
				TotalExTax: 4000, Tax: 400, TotalIncTax: 4400,
			},
		},
		{
			name: "discount floors each bucket",
			in: invoicedomain.CalculationInput{
				QuotaSubtotal: 42999, NonQuotaSubtotal: 1999,
				DiscountRate: dec("0.20"), TaxRate: dec("0.10"),
				TaxBasis: invoicedomain.TaxBasisTotalExTax,
			},
			want: invoicedomain.Totals{
				QuotaSubtotal: 42999, QuotaDiscount: 8599, QuotaTotal: 34400,
				NonQuotaSubtotal: 1999, NonQuotaDiscount: 399, NonQuotaTotal: 1600,
				TotalExTax: 36000, Tax: 3600, TotalIncTax: 39600,
			},
		},
		{
			name: "non-discountable joins the tax basis",
			in: invoicedomain.CalculationInput{
				QuotaSubtotal: 10000, NonQuotaSubtotal: 0, NonDiscountableAmount: 555,
				DiscountRate: dec("0.10"), TaxRate: dec("0.10"),
			},
			want: invoicedomain.Totals{
				QuotaSubtotal: 10000, QuotaDiscount: 1000, QuotaTotal: 9000,
				NonDiscountable: 555,
				TotalExTax:      9555, Tax: 955, TotalIncTax: 10510,
			},
		},
		{
			name: "legacy quota-only tax basis",
			in: invoicedomain.CalculationInput{
				QuotaSubtotal: 3000, NonQuotaSubtotal: 1000,
				DiscountRate: decimal.Zero, TaxRate: dec("0.10"),
				TaxBasis: invoicedomain.TaxBasisQuotaTotal,
			},
			want: invoicedomain.Totals{
				QuotaSubtotal: 3000, QuotaTotal: 3000,
				NonQuotaSubtotal: 1000, NonQuotaTotal: 1000,
				TotalExTax: 4000, Tax: 300, TotalIncTax: 4300,
			},
		},
		{
			name: "full discount",
			in: invoicedomain.CalculationInput{
				QuotaSubtotal: 777, NonQuotaSubtotal: 333,
				DiscountRate: dec("1"), TaxRate: dec("0.10"),
			},
			want: invoicedomain.Totals{
				QuotaSubtotal: 777, QuotaDiscount: 777,
				NonQuotaSubtotal: 333, NonQuotaDiscount: 333,
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Calculate(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCalculate_Rejects(t *testing.T) {
	base := invoicedomain.CalculationInput{QuotaSubtotal: 100, DiscountRate: dec("0.10"), TaxRate: dec("0.10")}

	in := base
	in.QuotaSubtotal = -1
	_, err := Calculate(in)
	assert.ErrorIs(t, err, invoicedomain.ErrNegativeAmount)

	in = base
	in.NonDiscountableAmount = -1
	_, err = Calculate(in)
	assert.ErrorIs(t, err, invoicedomain.ErrNegativeAmount)

	in = base
	in.DiscountRate = dec("1.01")
	_, err = Calculate(in)
	assert.ErrorIs(t, err, invoicedomain.ErrInvalidDiscountRate)

	in = base
	in.DiscountRate = dec("-0.01")
	_, err = Calculate(in)
	assert.ErrorIs(t, err, invoicedomain.ErrInvalidDiscountRate)

	in = base
	in.TaxRate = dec("-0.10")
	_, err = Calculate(in)
	assert.ErrorIs(t, err, invoicedomain.ErrInvalidTaxRate)

	in = base
	in.TaxBasis = "gross"
	_, err = Calculate(in)
	assert.ErrorIs(t, err, invoicedomain.ErrUnknownTaxBasis)
}

func TestCalculate_DiscountBounds(t *testing.T) {
	amounts := []int64{0, 1, 9, 99, 101, 20999, 41999, 123457, 9999999}
	for rate := 0; rate <= 100; rate++ {
		r := decimal.New(int64(rate), -2)
		for _, s := range amounts {
			got, err := Calculate(invoicedomain.CalculationInput{QuotaSubtotal: s, NonQuotaSubtotal: s, DiscountRate: r})
			require.NoError(t, err)
			assert.GreaterOrEqual(t, got.QuotaDiscount, int64(0))
			assert.LessOrEqual(t, got.QuotaDiscount, s)
			assert.GreaterOrEqual(t, got.QuotaTotal, int64(0))
			assert.Equal(t, got.QuotaDiscount, got.NonQuotaDiscount)
		}
	}
}
