// internal/pkg/invoice/service.go
package invoice

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/your-org/ambika-backend/internal/config"
)

// Invoice carries everything the PDF needs. Amounts are in paise.
type Invoice struct {
	OrderNumber string
	Date        time.Time
	ShipTo      Address
	Lines       []Line
	Subtotal    int64
	Discount    int64
	Tax         int64
	Shipping    int64
	Total       int64
}

// Address is the shipping address printed on the invoice
type Address struct {
	Name         string
	Phone        string
	AddressLine1 string
	AddressLine2 string
	City         string
	State        string
	Pincode      string
}

// Line is a single invoice line
type Line struct {
	Name     string
	SKU      string
	Size     string
	Color    string
	Quantity int
	Price    int64
	Total    int64
}

// Service renders PDF invoices for delivered orders
type Service struct {
	config *config.Config
}

// NewService creates a new invoice service
func NewService(cfg *config.Config) *Service {
	return &Service{
		config: cfg,
	}
}

// Number derives the invoice number from the order number.
func Number(orderNumber string) string {
	return fmt.Sprintf("INV-%s", orderNumber)
}

// Generate renders the invoice as a PDF.
func (s *Service) Generate(inv *Invoice) (*bytes.Buffer, error) {
	data := invoiceData{
		InvoiceNumber: Number(inv.OrderNumber),
		InvoiceDate:   inv.Date.Format("January 2, 2006"),
		StoreName:     s.config.App.Name,
		OrderNumber:   inv.OrderNumber,
		ShipTo:        inv.ShipTo,
		Items:         make([]invoiceItem, 0, len(inv.Lines)),
		Subtotal:      rupees(inv.Subtotal),
		Discount:      rupees(inv.Discount),
		Tax:           rupees(inv.Tax),
		Shipping:      rupees(inv.Shipping),
		Total:         rupees(inv.Total),
	}
	for _, line := range inv.Lines {
		data.Items = append(data.Items, invoiceItem{
			Name:     line.Name,
			SKU:      line.SKU,
			Variant:  variantLabel(line),
			Quantity: line.Quantity,
			Price:    rupees(line.Price),
			Total:    rupees(line.Total),
		})
	}

	htmlContent, err := renderHTML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to generate HTML: %w", err)
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF generator: %w", err)
	}

	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader([]byte(htmlContent)))
	page.FooterRight.Set("[page]")
	page.FooterFontSize.Set(9)
	page.Zoom.Set(0.95)
	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create PDF: %w", err)
	}

	return bytes.NewBuffer(pdfg.Bytes()), nil
}

type invoiceData struct {
	InvoiceNumber string
	InvoiceDate   string
	StoreName     string
	OrderNumber   string
	ShipTo        Address
	Items         []invoiceItem
	Subtotal      string
	Discount      string
	Tax           string
	Shipping      string
	Total         string
}

type invoiceItem struct {
	Name     string
	SKU      string
	Variant  string
	Quantity int
	Price    string
	Total    string
}

func renderHTML(data invoiceData) (string, error) {
	tmpl := template.Must(template.New("invoice").Parse(invoiceTemplate))
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

func variantLabel(line Line) string {
	switch {
	case line.Size != "" && line.Color != "":
		return fmt.Sprintf("%s / %s", line.Size, line.Color)
	case line.Size != "":
		return line.Size
	default:
		return line.Color
	}
}

func rupees(paise int64) string {
	return fmt.Sprintf("₹%d.%02d", paise/100, paise%100)
}

const invoiceTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Invoice {{.InvoiceNumber}}</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 0; padding: 20px; color: #333; }
        .header { margin-bottom: 30px; border-bottom: 2px solid #eee; padding-bottom: 20px; }
        .invoice-title { font-size: 28px; font-weight: bold; color: #b45309; margin-bottom: 10px; }
        .meta td { padding: 4px 12px 4px 0; }
        .meta .label { font-weight: bold; }
        .address { margin-bottom: 30px; }
        .section-title { font-size: 16px; font-weight: bold; margin-bottom: 10px; color: #374151; }
        .items-table { width: 100%; border-collapse: collapse; margin-bottom: 30px; }
        .items-table th, .items-table td { border: 1px solid #ddd; padding: 10px 8px; text-align: left; }
        .items-table th { background-color: #f8f9fa; }
        .num { text-align: right; }
        .totals { float: right; width: 300px; }
        .totals td { padding: 6px 8px; border-bottom: 1px solid #eee; }
        .totals .label { text-align: right; font-weight: bold; }
        .totals .amount { text-align: right; }
        .total-row td { font-size: 18px; font-weight: bold; border-top: 2px solid #333; }
    </style>
</head>
<body>
    <div class="header">
        <div class="invoice-title">{{.StoreName}}</div>
        <table class="meta">
            <tr><td class="label">Invoice</td><td>{{.InvoiceNumber}}</td></tr>
            <tr><td class="label">Date</td><td>{{.InvoiceDate}}</td></tr>
            <tr><td class="label">Order</td><td>{{.OrderNumber}}</td></tr>
        </table>
    </div>

    <div class="address">
        <div class="section-title">Ship To</div>
        <div>{{.ShipTo.Name}}</div>
        <div>{{.ShipTo.AddressLine1}}</div>
        {{if .ShipTo.AddressLine2}}<div>{{.ShipTo.AddressLine2}}</div>{{end}}
        <div>{{.ShipTo.City}}, {{.ShipTo.State}} {{.ShipTo.Pincode}}</div>
        <div>{{.ShipTo.Phone}}</div>
    </div>

    <table class="items-table">
        <thead>
            <tr>
                <th>Item</th><th>SKU</th><th>Variant</th>
                <th class="num">Qty</th><th class="num">Price</th><th class="num">Total</th>
            </tr>
        </thead>
        <tbody>
            {{range .Items}}
            <tr>
                <td>{{.Name}}</td><td>{{.SKU}}</td><td>{{.Variant}}</td>
                <td class="num">{{.Quantity}}</td><td class="num">{{.Price}}</td><td class="num">{{.Total}}</td>
            </tr>
            {{end}}
        </tbody>
    </table>

    <div class="totals">
        <table>
            <tr><td class="label">Subtotal</td><td class="amount">{{.Subtotal}}</td></tr>
            <tr><td class="label">Discount</td><td class="amount">-{{.Discount}}</td></tr>
            <tr><td class="label">Tax (GST)</td><td class="amount">{{.Tax}}</td></tr>
            <tr><td class="label">Shipping</td><td class="amount">{{.Shipping}}</td></tr>
            <tr class="total-row"><td class="label">Total</td><td class="amount">{{.Total}}</td></tr>
        </table>
    </div>
</body>
</html>`
