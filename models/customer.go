package models

import (
	"time"
)

type Customer struct {
	ID         string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	BusinessID string    `json:"business_id" gorm:"not null;index"`
	Name       string    `json:"name" gorm:"not null;index"`
	Email      string    `json:"email" gorm:"index"`
	Phone      string    `json:"phone"`
	Company    string    `json:"company"`
	Address    string    `json:"address"`
	City       string    `json:"city"`
	State      string    `json:"state"`
	ZipCode    string    `json:"zip_code"`
	Country    string    `json:"country"`
	TaxID      string    `json:"tax_id"`
	Notes      string    `json:"notes"`
	Metadata   JSON      `json:"metadata" gorm:"type:jsonb"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt  time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

type CreateCustomerRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Company string `json:"company,omitempty"`
	Address string `json:"address,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	ZipCode string `json:"zip_code,omitempty"`
	Country string `json:"country,omitempty"`
	TaxID   string `json:"tax_id,omitempty"`
	Notes   string `json:"notes,omitempty"`
}

type UpdateCustomerRequest struct {
	Name    *string `json:"name,omitempty"`
	Email   *string `json:"email,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Company *string `json:"company,omitempty"`
	Address *string `json:"address,omitempty"`
	City    *string `json:"city,omitempty"`
	State   *string `json:"state,omitempty"`
	ZipCode *string `json:"zip_code,omitempty"`
	Country *string `json:"country,omitempty"`
	TaxID   *string `json:"tax_id,omitempty"`
	Notes   *string `json:"notes,omitempty"`
}

// CustomerSummary is the customer detail view with invoice aggregates.
type CustomerSummary struct {
	Customer         *Customer  `json:"customer"`
	Invoices         []*Invoice `json:"invoices"`
	TotalInvoiced    float64    `json:"total_invoiced"`
	TotalPaid        float64    `json:"total_paid"`
	TotalOutstanding float64    `json:"total_outstanding"`
}

type CustomerListResponse struct {
	Customers []*Customer `json:"customers"`
	Total     int         `json:"total"`
}
