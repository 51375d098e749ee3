package render

import (
	"bytes"
	"html/template"
)

const invoiceHTMLTemplate = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <title>Invoice {{.InvoiceNumber}}</title>
  <style>
    * { box-sizing: border-box; }
    body { margin: 0; padding: 32px; font-family: "Helvetica Neue", Arial, sans-serif; color: #111827; }
    .invoice { max-width: 820px; margin: 0 auto; }
    .header { display: flex; justify-content: space-between; border-bottom: 2px solid #111827; padding-bottom: 16px; margin-bottom: 24px; }
    .meta { text-align: right; font-size: 14px; }
    .label { color: #6b7280; text-transform: uppercase; letter-spacing: 0.04em; font-size: 11px; }
    .status { font-weight: 700; }
    .status.PAID { color: #15803d; }
    .section { margin-bottom: 24px; }
    table { width: 100%; border-collapse: collapse; font-size: 14px; }
    th, td { padding: 10px; border-bottom: 1px solid #e5e7eb; text-align: left; }
    th { text-transform: uppercase; font-size: 11px; letter-spacing: 0.04em; color: #6b7280; }
    .num { text-align: right; }
    .totals { margin-left: auto; min-width: 260px; font-size: 14px; }
    .totals div { display: flex; justify-content: space-between; padding: 4px 0; }
    .totals .grand { font-weight: 700; border-top: 1px solid #e5e7eb; }
  </style>
</head>
<body>
  <div class="invoice">
    <div class="header">
      <div>
        <div class="label">Bill to</div>
        <div><strong>{{.CustomerName}}</strong></div>
      </div>
      <div class="meta">
        <div class="label">Invoice</div>
        <div><strong>{{.InvoiceNumber}}</strong></div>
        <div class="status {{.Status}}">{{.Status}}{{if .Archived}} (archived){{end}}</div>
        <div>Issued: {{.IssueDate}}</div>
        <div>Due: {{.DueDate}}</div>
        {{if .PaidAt}}<div>Paid: {{.PaidAt}}</div>{{end}}
      </div>
    </div>

    <div class="section">
      <table>
        <thead>
          <tr>
            <th>Description</th>
            <th class="num">Quantity</th>
            <th class="num">Unit Price</th>
            <th class="num">Amount</th>
          </tr>
        </thead>
        <tbody>
          {{range .Items}}
          <tr>
            <td>{{.Description}}</td>
            <td class="num">{{.Quantity}}</td>
            <td class="num">{{.UnitPrice}}</td>
            <td class="num">{{.Amount}}</td>
          </tr>
          {{end}}
        </tbody>
      </table>
    </div>

    <div class="section totals">
      <div><span>Subtotal</span><span>{{.Subtotal}}</span></div>
      <div><span>Tax ({{.TaxPercent}})</span><span>{{.TaxAmount}}</span></div>
      <div class="grand"><span>Total ({{.Currency}})</span><span>{{.Total}}</span></div>
      <div><span>Paid</span><span>{{.AmountPaid}}</span></div>
      <div class="grand"><span>Balance due</span><span>{{.BalanceDue}}</span></div>
    </div>

    {{if .Payments}}
    <div class="section">
      <div class="label">Payments</div>
      <table>
        <thead>
          <tr><th>Date</th><th>Method</th><th>Reference</th><th class="num">Amount</th></tr>
        </thead>
        <tbody>
          {{range .Payments}}
          <tr>
            <td>{{.Date}}</td>
            <td>{{if .Method}}{{.Method}}{{else}}-{{end}}</td>
            <td>{{if .Reference}}{{.Reference}}{{else}}-{{end}}</td>
            <td class="num">{{.Amount}}</td>
          </tr>
          {{end}}
        </tbody>
      </table>
    </div>
    {{end}}
  </div>
</body>
</html>
`

type HTMLRenderer struct {
	tpl *template.Template
}

func NewHTMLRenderer() *HTMLRenderer {
	return &HTMLRenderer{
		tpl: template.Must(template.New("invoice").Parse(invoiceHTMLTemplate)),
	}
}

func (r *HTMLRenderer) Render(view DocumentView) (string, error) {
	var buf bytes.Buffer
	if err := r.tpl.Execute(&buf, view); err != nil {
		return "", err
	}
	return buf.String(), nil
}
