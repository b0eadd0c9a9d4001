package email

import (
	"bytes"
	"html/template"
)

// InvoiceLine is one row of the invoice table, pre-formatted for display
type InvoiceLine struct {
	Code          string
	Name          string
	Quantity      int
	UnitPrice     string
	TaxPercentage string
	PurchasePrice string
	TaxAmount     string
	TotalPrice    string
}

// InvoiceChange is one row of the change breakdown
type InvoiceChange struct {
	Value int64
	Count int
}

// InvoiceData is everything the invoice template renders
type InvoiceData struct {
	ShopName        string
	ReceiptNo       string
	CustomerEmail   string
	Date            string
	Items           []InvoiceLine
	TotalWithoutTax string
	TotalTax        string
	NetTotal        string
	RoundedTotal    string
	AmountPaid      string
	BalanceReturned string
	Change          []InvoiceChange
}

var invoiceTmpl = template.Must(template.New("invoice").Parse(invoiceTemplate))

// InvoiceSubject returns the subject line for an invoice email
func InvoiceSubject(data InvoiceData) string {
	return "Your invoice " + data.ReceiptNo + " from " + data.ShopName
}

// RenderInvoice renders the invoice HTML body
func RenderInvoice(data InvoiceData) (string, error) {
	var buf bytes.Buffer
	if err := invoiceTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const invoiceTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>Invoice {{.ReceiptNo}}</title>
</head>
<body style="margin: 0; padding: 0; font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; background-color: #f4f7fa;">
    <table role="presentation" style="max-width: 640px; margin: 24px auto; background-color: #ffffff; border-radius: 8px; border-collapse: collapse;">
        <tr>
            <td style="padding: 24px 30px; background-color: #1a1a2e; color: #ffffff;">
                <h1 style="margin: 0; font-size: 22px;">{{.ShopName}}</h1>
                <p style="margin: 4px 0 0 0; font-size: 13px;">Invoice {{.ReceiptNo}} &middot; {{.Date}}</p>
            </td>
        </tr>
        <tr>
            <td style="padding: 24px 30px; color: #4a5568; font-size: 14px;">
                <p style="margin: 0 0 16px 0;">Billed to <strong>{{.CustomerEmail}}</strong></p>
                <table role="presentation" style="width: 100%; border-collapse: collapse; font-size: 13px;">
                    <thead>
                        <tr style="border-bottom: 1px solid #e2e8f0; text-align: left;">
                            <th style="padding: 6px 4px;">Product</th>
                            <th style="padding: 6px 4px; text-align: right;">Unit price</th>
                            <th style="padding: 6px 4px; text-align: right;">Qty</th>
                            <th style="padding: 6px 4px; text-align: right;">Price</th>
                            <th style="padding: 6px 4px; text-align: right;">Tax %</th>
                            <th style="padding: 6px 4px; text-align: right;">Tax</th>
                            <th style="padding: 6px 4px; text-align: right;">Total</th>
                        </tr>
                    </thead>
                    <tbody>
                        {{range .Items}}
                        <tr style="border-bottom: 1px solid #f0f0f0;">
                            <td style="padding: 6px 4px;">{{.Name}} <span style="color: #a0aec0;">({{.Code}})</span></td>
                            <td style="padding: 6px 4px; text-align: right;">{{.UnitPrice}}</td>
                            <td style="padding: 6px 4px; text-align: right;">{{.Quantity}}</td>
                            <td style="padding: 6px 4px; text-align: right;">{{.PurchasePrice}}</td>
                            <td style="padding: 6px 4px; text-align: right;">{{.TaxPercentage}}</td>
                            <td style="padding: 6px 4px; text-align: right;">{{.TaxAmount}}</td>
                            <td style="padding: 6px 4px; text-align: right;">{{.TotalPrice}}</td>
                        </tr>
                        {{end}}
                    </tbody>
                </table>
                <table role="presentation" style="width: 100%; margin-top: 16px; font-size: 14px;">
                    <tr><td>Total without tax</td><td style="text-align: right;">{{.TotalWithoutTax}}</td></tr>
                    <tr><td>Total tax</td><td style="text-align: right;">{{.TotalTax}}</td></tr>
                    <tr><td>Net total</td><td style="text-align: right;">{{.NetTotal}}</td></tr>
                    <tr><td><strong>Amount due</strong></td><td style="text-align: right;"><strong>{{.RoundedTotal}}</strong></td></tr>
                    <tr><td>Paid</td><td style="text-align: right;">{{.AmountPaid}}</td></tr>
                    <tr><td>Balance returned</td><td style="text-align: right;">{{.BalanceReturned}}</td></tr>
                </table>
                {{if .Change}}
                <p style="margin: 16px 0 4px 0;">Change given</p>
                <ul style="margin: 0; padding-left: 18px;">
                    {{range .Change}}<li>{{.Value}} &times; {{.Count}}</li>{{end}}
                </ul>
                {{end}}
            </td>
        </tr>
        <tr>
            <td style="padding: 16px 30px; background-color: #f8fafc; color: #a0aec0; font-size: 12px; text-align: center;">
                Thank you for shopping with {{.ShopName}}.
            </td>
        </tr>
    </table>
</body>
</html>
`
