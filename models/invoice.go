package models

import (
	"time"
)

type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusSent      InvoiceStatus = "sent"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusPartial   InvoiceStatus = "partial"
	InvoiceStatusOverdue   InvoiceStatus = "overdue"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

type Invoice struct {
	ID            string        `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	BusinessID    string        `json:"business_id" gorm:"not null;index"`
	CustomerID    *string       `json:"customer_id" gorm:"index"`
	InvoiceNumber string        `json:"invoice_number" gorm:"not null;index"`
	Status        InvoiceStatus `json:"status" gorm:"not null;default:'draft'"`
	IssueDate     time.Time     `json:"issue_date" gorm:"type:date;not null"`
	DueDate       time.Time     `json:"due_date" gorm:"type:date;not null"`
	Currency      string        `json:"currency" gorm:"not null;default:'USD'"`
	Subtotal      float64       `json:"subtotal" gorm:"not null;default:0"`
	TaxTotal      float64       `json:"tax_total" gorm:"not null;default:0"`
	DiscountTotal float64       `json:"discount_total" gorm:"not null;default:0"`
	ShippingFee   float64       `json:"shipping_fee" gorm:"not null;default:0"`
	ExtraFees     float64       `json:"extra_fees" gorm:"not null;default:0"`
	Total         float64       `json:"total" gorm:"not null;default:0"`
	PaidAmount    float64       `json:"paid_amount" gorm:"not null;default:0"`
	Balance       float64       `json:"balance" gorm:"not null;default:0"`
	Notes         string        `json:"notes"`
	Terms         string        `json:"terms"`
	Metadata      JSON          `json:"metadata" gorm:"type:jsonb"`
	CreatedAt     time.Time     `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time     `json:"updated_at" gorm:"autoUpdateTime"`

	Customer *Customer      `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	Items    []*InvoiceItem `json:"items,omitempty" gorm:"foreignKey:InvoiceID"`
	Payments []*Payment     `json:"payments,omitempty" gorm:"foreignKey:InvoiceID"`
}

// InvoiceItem is a snapshot of catalog data taken when the item was added.
// Catalog price or tax changes never alter historical invoices; ProductID
// is kept for provenance only.
type InvoiceItem struct {
	ID          string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	InvoiceID   string    `json:"invoice_id" gorm:"not null;index"`
	ProductID   *string   `json:"product_id"`
	Name        string    `json:"name" gorm:"not null"`
	Description string    `json:"description"`
	Quantity    float64   `json:"quantity" gorm:"not null;default:1"`
	UnitPrice   float64   `json:"unit_price" gorm:"not null;default:0"`
	TaxRate     float64   `json:"tax_rate" gorm:"not null;default:0"`
	Discount    float64   `json:"discount" gorm:"not null;default:0"`
	LineTotal   float64   `json:"line_total" gorm:"not null;default:0"`
	SortOrder   int       `json:"sort_order" gorm:"not null;default:0"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// InvoiceItemInput carries item fields from the API. Quantity defaults to 1
// and the remaining numeric fields default to 0 when omitted; data entry is
// forgiving by policy.
type InvoiceItemInput struct {
	ProductID   *string  `json:"product_id,omitempty"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Quantity    *float64 `json:"quantity,omitempty"`
	UnitPrice   *float64 `json:"unit_price,omitempty"`
	TaxRate     *float64 `json:"tax_rate,omitempty"`
	Discount    *float64 `json:"discount,omitempty"`
}

type CreateInvoiceRequest struct {
	CustomerID  *string            `json:"customer_id,omitempty"`
	IssueDate   time.Time          `json:"issue_date"`
	DueDate     time.Time          `json:"due_date"`
	Status      InvoiceStatus      `json:"status,omitempty"`
	Currency    string             `json:"currency,omitempty"`
	Notes       string             `json:"notes,omitempty"`
	Terms       string             `json:"terms,omitempty"`
	ShippingFee float64            `json:"shipping_fee,omitempty"`
	ExtraFees   float64            `json:"extra_fees,omitempty"`
	Items       []InvoiceItemInput `json:"items"`
}

type UpdateInvoiceRequest struct {
	CustomerID  *string            `json:"customer_id,omitempty"`
	IssueDate   *time.Time         `json:"issue_date,omitempty"`
	DueDate     *time.Time         `json:"due_date,omitempty"`
	Currency    *string            `json:"currency,omitempty"`
	Notes       *string            `json:"notes,omitempty"`
	Terms       *string            `json:"terms,omitempty"`
	ShippingFee *float64           `json:"shipping_fee,omitempty"`
	ExtraFees   *float64           `json:"extra_fees,omitempty"`
	Items       []InvoiceItemInput `json:"items,omitempty"`
}

type ListInvoicesRequest struct {
	Status     string `json:"status,omitempty"`
	CustomerID string `json:"customer_id,omitempty"`
	FromDate   string `json:"from_date,omitempty"`
	ToDate     string `json:"to_date,omitempty"`
	Limit      int    `json:"limit,omitempty"`
	Offset     int    `json:"offset,omitempty"`
}

type InvoiceListResponse struct {
	Invoices []*Invoice `json:"invoices"`
	Total    int        `json:"total"`
}
