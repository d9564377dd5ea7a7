package pdf

import (
	"bytes"
	"testing"
	"time"

	"github.com/invomaker/invomaker/models"
)

func TestRenderProducesPDF(t *testing.T) {
	renderer := NewRenderer()

	invoice := &models.Invoice{
		ID:            "inv-1",
		InvoiceNumber: "INV-0042",
		Status:        models.InvoiceStatusPartial,
		IssueDate:     time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		DueDate:       time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC),
		Currency:      "USD",
		Subtotal:      300,
		DiscountTotal: 30,
		TaxTotal:      27,
		Total:         297,
		PaidAmount:    100,
		Balance:       197,
		Notes:         "Thank you for your business.",
		Customer: &models.Customer{
			Name:  "Acme Corp",
			Email: "billing@acme.test",
		},
		Items: []*models.InvoiceItem{
			{Name: "Consulting", Quantity: 3, UnitPrice: 100, Discount: 30, TaxRate: 10, LineTotal: 297},
		},
	}
	business := &models.Business{
		Name:  "Studio North",
		Email: "hello@studionorth.test",
	}

	out, err := renderer.Render(invoice, business)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(out) == 0 {
		t.Fatal("empty document")
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Errorf("output does not start with PDF magic: %q", out[:8])
	}
}

func TestFileName(t *testing.T) {
	tests := []struct {
		name    string
		invoice *models.Invoice
		want    string
	}{
		{"plain", &models.Invoice{InvoiceNumber: "INV-0042"}, "invoice-INV-0042.pdf"},
		{"slash replaced", &models.Invoice{InvoiceNumber: "2026/08"}, "invoice-2026-08.pdf"},
		{"falls back to id", &models.Invoice{ID: "abc"}, "invoice-abc.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FileName(tt.invoice); got != tt.want {
				t.Errorf("FileName = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTrimFloat(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{3, "3"},
		{2.5, "2.5"},
		{2.25, "2.25"},
		{0, "0"},
	}
	for _, tt := range tests {
		if got := trimFloat(tt.in); got != tt.want {
			t.Errorf("trimFloat(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
