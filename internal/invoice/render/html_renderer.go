// Package render lays out an invoice document as a printable HTML preview.
package render

import (
	"bytes"
	"html/template"

	invoicedomain "github.com/smallbiznis/salesinvoice/internal/invoice/domain"
)

const invoiceHTMLTemplate = `<!doctype html>
<html lang="ja">
<head>
  <meta charset="utf-8" />
  <title>{{.FileName}}</title>
  <style>
    * { box-sizing: border-box; }
    body {
      margin: 0;
      padding: 40px;
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif;
      color: #1a1f36;
      background: #f7f9fc;
    }
    .invoice-card {
      background: #ffffff;
      max-width: 760px;
      margin: 0 auto;
      padding: 60px;
      border-radius: 4px;
    }
    .header { display: flex; justify-content: space-between; margin-bottom: 40px; }
    .header h1 { margin: 0; font-size: 24px; }
    .label {
      font-size: 11px;
      text-transform: uppercase;
      color: #8792a2;
      margin-bottom: 6px;
      font-weight: 600;
    }
    .value { font-size: 14px; line-height: 1.5; }
    table { width: 100%; border-collapse: collapse; margin-bottom: 30px; }
    th {
      text-align: left;
      font-size: 11px;
      color: #8792a2;
      border-bottom: 1px solid #e3e8ee;
      padding: 10px 0;
    }
    td { padding: 12px 0; border-bottom: 1px solid #e3e8ee; font-size: 14px; }
    .td-right { text-align: right; }
    .totals { display: flex; flex-direction: column; align-items: flex-end; }
    .total-row { display: flex; justify-content: space-between; width: 300px; padding: 6px 0; font-size: 14px; }
    .total-final { border-top: 1px solid #e3e8ee; margin-top: 10px; padding-top: 10px; font-weight: 700; }
    .note { margin-top: 40px; font-size: 12px; color: #697386; white-space: pre-wrap; }
  </style>
</head>
<body>
  <div class="invoice-card">
    <div class="header">
      <div>
        <h1>Invoice</h1>
        <div class="label" style="margin-top: 12px;">Registration number</div>
        <div class="value">{{.Issuer}}</div>
      </div>
      <div>
        <div class="label">Invoice date</div>
        <div class="value">{{.Invoice.InvoiceDate}}</div>
        <div class="label" style="margin-top: 12px;">Receipt date</div>
        <div class="value">{{.Invoice.ReceiptDate}}</div>
      </div>
    </div>

    <div class="label">Bill to</div>
    <div class="value"><strong>{{.Invoice.SalesPersonName}}</strong></div>
    <div class="value">{{.Invoice.StartDate}} - {{.Invoice.EndDate}}</div>

    <table style="margin-top: 30px;">
      <thead>
        <tr>
          <th style="width: 50%;">Product</th>
          <th class="td-right">Qty</th>
          <th class="td-right">Unit price</th>
          <th class="td-right">Amount</th>
        </tr>
      </thead>
      <tbody>
        {{range .Invoice.Details}}
        <tr>
          <td>{{.ProductName}}{{if .QuotaTarget}} *{{end}}</td>
          <td class="td-right">{{.TotalQuantity}}</td>
          <td class="td-right">{{index $.Labels.DetailUnitPrices .ID}}</td>
          <td class="td-right">{{index $.Labels.DetailAmounts .ID}}</td>
        </tr>
        {{end}}
      </tbody>
    </table>

    <div class="totals">
      <div class="total-row"><span>Quota subtotal</span><span>{{.Labels.QuotaSubtotal}}</span></div>
      <div class="total-row"><span>Discount ({{.Labels.DiscountRate}})</span><span>-{{.Labels.QuotaDiscount}}</span></div>
      <div class="total-row"><span>Other subtotal</span><span>{{.Labels.NonQuotaSubtotal}}</span></div>
      <div class="total-row"><span>Discount ({{.Labels.DiscountRate}})</span><span>-{{.Labels.NonQuotaDiscount}}</span></div>
      {{if .Invoice.NonDiscountable}}
      <div class="total-row"><span>Non-discountable</span><span>{{.Labels.NonDiscountable}}</span></div>
      {{end}}
      <div class="total-row"><span>Total excluding tax</span><span>{{.Labels.TotalExTax}}</span></div>
      <div class="total-row"><span>Tax</span><span>{{.Labels.Tax}}</span></div>
      <div class="total-row total-final"><span>Total</span><span>{{.Labels.TotalIncTax}}</span></div>
    </div>

    {{if .Invoice.Note}}<div class="note">{{.Invoice.Note}}</div>{{end}}
  </div>
</body>
</html>
`

type Renderer interface {
	RenderHTML(doc *invoicedomain.Document) (string, error)
}

type HTMLRenderer struct {
	tpl *template.Template
}

func NewRenderer() Renderer {
	return &HTMLRenderer{
		tpl: template.Must(template.New("invoice").Parse(invoiceHTMLTemplate)),
	}
}

func (r *HTMLRenderer) RenderHTML(doc *invoicedomain.Document) (string, error) {
	var buf bytes.Buffer
	if err := r.tpl.Execute(&buf, doc); err != nil {
		return "", err
	}
	return buf.String(), nil
}
