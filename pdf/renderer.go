package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/invomaker/invomaker/models"
	"github.com/jung-kurt/gofpdf"
)

// Renderer produces the printable A4 invoice document.
type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render lays out the invoice with its stored item snapshots. The
// amounts are taken from the invoice row as persisted; nothing is
// recomputed here.
func (r *Renderer) Render(invoice *models.Invoice, business *models.Business) ([]byte, error) {
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetAutoPageBreak(true, 20)
	doc.AddPage()

	currency := invoice.Currency
	if currency == "" {
		currency = "USD"
	}
	money := func(v float64) string {
		return fmt.Sprintf("%s %.2f", currency, v)
	}

	// Header: business identity on the left, invoice number on the right.
	doc.SetFont("Arial", "B", 18)
	doc.Cell(120, 10, business.Name)
	doc.SetFont("Arial", "B", 14)
	doc.CellFormat(0, 10, "INVOICE "+invoice.InvoiceNumber, "", 1, "R", false, 0, "")

	doc.SetFont("Arial", "", 9)
	doc.SetTextColor(90, 90, 90)
	for _, line := range businessAddressLines(business) {
		doc.CellFormat(0, 4.5, line, "", 1, "L", false, 0, "")
	}
	doc.SetTextColor(0, 0, 0)
	doc.Ln(6)

	// Dates and status.
	doc.SetFont("Arial", "", 10)
	doc.CellFormat(60, 6, "Issue date: "+formatDate(invoice.IssueDate), "", 0, "L", false, 0, "")
	doc.CellFormat(60, 6, "Due date: "+formatDate(invoice.DueDate), "", 0, "L", false, 0, "")
	doc.CellFormat(0, 6, "Status: "+strings.ToUpper(string(invoice.Status)), "", 1, "R", false, 0, "")
	doc.Ln(4)

	// Bill-to block.
	if invoice.Customer != nil {
		doc.SetFont("Arial", "B", 10)
		doc.CellFormat(0, 6, "Bill To", "", 1, "L", false, 0, "")
		doc.SetFont("Arial", "", 10)
		doc.CellFormat(0, 5, invoice.Customer.Name, "", 1, "L", false, 0, "")
		for _, line := range customerAddressLines(invoice.Customer) {
			doc.CellFormat(0, 5, line, "", 1, "L", false, 0, "")
		}
		doc.Ln(4)
	}

	// Item table.
	doc.SetFont("Arial", "B", 9)
	doc.SetFillColor(235, 235, 235)
	doc.CellFormat(80, 7, "Item", "1", 0, "L", true, 0, "")
	doc.CellFormat(20, 7, "Qty", "1", 0, "R", true, 0, "")
	doc.CellFormat(30, 7, "Unit Price", "1", 0, "R", true, 0, "")
	doc.CellFormat(25, 7, "Tax %", "1", 0, "R", true, 0, "")
	doc.CellFormat(35, 7, "Amount", "1", 1, "R", true, 0, "")

	doc.SetFont("Arial", "", 9)
	for _, item := range invoice.Items {
		name := item.Name
		if item.Description != "" {
			name += " - " + item.Description
		}
		doc.CellFormat(80, 7, truncate(name, 52), "1", 0, "L", false, 0, "")
		doc.CellFormat(20, 7, trimFloat(item.Quantity), "1", 0, "R", false, 0, "")
		doc.CellFormat(30, 7, fmt.Sprintf("%.2f", item.UnitPrice), "1", 0, "R", false, 0, "")
		doc.CellFormat(25, 7, trimFloat(item.TaxRate), "1", 0, "R", false, 0, "")
		doc.CellFormat(35, 7, fmt.Sprintf("%.2f", item.LineTotal), "1", 1, "R", false, 0, "")
	}
	doc.Ln(4)

	// Totals block, right-aligned.
	totalRow := func(label, value string, bold bool) {
		if bold {
			doc.SetFont("Arial", "B", 10)
		} else {
			doc.SetFont("Arial", "", 10)
		}
		doc.CellFormat(125, 6, "", "", 0, "L", false, 0, "")
		doc.CellFormat(30, 6, label, "", 0, "R", false, 0, "")
		doc.CellFormat(35, 6, value, "", 1, "R", false, 0, "")
	}

	totalRow("Subtotal", money(invoice.Subtotal), false)
	if invoice.DiscountTotal != 0 {
		totalRow("Discount", "-"+money(invoice.DiscountTotal), false)
	}
	if invoice.TaxTotal != 0 {
		totalRow("Tax", money(invoice.TaxTotal), false)
	}
	if invoice.ShippingFee != 0 {
		totalRow("Shipping", money(invoice.ShippingFee), false)
	}
	if invoice.ExtraFees != 0 {
		totalRow("Other fees", money(invoice.ExtraFees), false)
	}
	totalRow("Total", money(invoice.Total), true)
	if invoice.PaidAmount > 0 {
		totalRow("Paid", money(invoice.PaidAmount), false)
		totalRow("Balance Due", money(invoice.Balance), true)
	}
	doc.Ln(6)

	if invoice.Notes != "" {
		doc.SetFont("Arial", "B", 9)
		doc.CellFormat(0, 5, "Notes", "", 1, "L", false, 0, "")
		doc.SetFont("Arial", "", 9)
		doc.MultiCell(0, 4.5, invoice.Notes, "", "L", false)
		doc.Ln(3)
	}
	if invoice.Terms != "" {
		doc.SetFont("Arial", "B", 9)
		doc.CellFormat(0, 5, "Terms", "", 1, "L", false, 0, "")
		doc.SetFont("Arial", "", 9)
		doc.MultiCell(0, 4.5, invoice.Terms, "", "L", false)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FileName returns the download name for an invoice document.
func FileName(invoice *models.Invoice) string {
	number := strings.ReplaceAll(invoice.InvoiceNumber, "/", "-")
	if number == "" {
		number = invoice.ID
	}
	return fmt.Sprintf("invoice-%s.pdf", number)
}

func businessAddressLines(business *models.Business) []string {
	var lines []string
	if business.Address != "" {
		lines = append(lines, business.Address)
	}
	if city := joinNonEmpty(", ", business.City, business.State, business.ZipCode); city != "" {
		lines = append(lines, city)
	}
	if contact := joinNonEmpty(" | ", business.Email, business.Phone); contact != "" {
		lines = append(lines, contact)
	}
	return lines
}

func customerAddressLines(customer *models.Customer) []string {
	var lines []string
	if customer.Company != "" {
		lines = append(lines, customer.Company)
	}
	if customer.Address != "" {
		lines = append(lines, customer.Address)
	}
	if city := joinNonEmpty(", ", customer.City, customer.State, customer.ZipCode); city != "" {
		lines = append(lines, city)
	}
	if customer.Email != "" {
		lines = append(lines, customer.Email)
	}
	return lines
}

func joinNonEmpty(sep string, parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("Jan 2, 2006")
}

// trimFloat drops a trailing ".00" so whole quantities read naturally.
func trimFloat(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	s = strings.TrimSuffix(s, "0")
	s = strings.TrimSuffix(s, "0")
	return strings.TrimSuffix(s, ".")
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
