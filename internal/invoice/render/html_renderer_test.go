package render

import (
	"testing"

	invoicedomain "github.com/smallbiznis/salesinvoice/internal/invoice/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderHTML(t *testing.T) {
	note := "<script>alert(1)</script>"
	doc := &invoicedomain.Document{
		FileName: "invoice-yamada-2025-12-21-2026-01-20.pdf",
		Issuer:   "T5810180900550",
		Invoice: invoicedomain.InvoiceView{
			SalesPersonName: "Yamada",
			StartDate:       "2025-12-21",
			EndDate:         "2026-01-20",
			Note:            &note,
			Details: []invoicedomain.DetailView{
				{ID: "10", ProductName: "Green tea", TotalQuantity: 3, QuotaTarget: true},
			},
		},
		Labels: invoicedomain.Labels{
			TotalIncTax:      "4,400",
			DetailAmounts:    map[string]string{"10": "3,000"},
			DetailUnitPrices: map[string]string{"10": "1,000"},
		},
	}

	out, err := NewRenderer().RenderHTML(doc)
	require.NoError(t, err)
	assert.Contains(t, out, "T5810180900550")
	assert.Contains(t, out, "Green tea *")
	assert.Contains(t, out, "3,000")
	assert.Contains(t, out, "4,400")
	assert.NotContains(t, out, "<script>")
}
