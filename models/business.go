package models

import (
	"time"
)

type Business struct {
	ID                  string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	UserID              string    `json:"user_id" gorm:"uniqueIndex;not null"`
	Name                string    `json:"name" gorm:"not null"`
	LogoURL             string    `json:"logo_url"`
	Address             string    `json:"address"`
	City                string    `json:"city"`
	State               string    `json:"state"`
	ZipCode             string    `json:"zip_code"`
	Country             string    `json:"country" gorm:"default:'US'"`
	Phone               string    `json:"phone"`
	Email               string    `json:"email"`
	Website             string    `json:"website"`
	Currency            string    `json:"currency" gorm:"not null;default:'USD'"`
	DefaultTaxRate      float64   `json:"default_tax_rate" gorm:"default:0"`
	InvoicePrefix       string    `json:"invoice_prefix" gorm:"default:'INV'"`
	AutoNumbering       bool      `json:"auto_numbering" gorm:"default:true"`
	NextInvoiceNumber   int       `json:"next_invoice_number" gorm:"default:1"`
	DefaultPaymentTerms int       `json:"default_payment_terms" gorm:"default:30"`
	Metadata            JSON      `json:"metadata" gorm:"type:jsonb"`
	CreatedAt           time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt           time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

type UpsertBusinessRequest struct {
	Name                string   `json:"name"`
	LogoURL             string   `json:"logo_url,omitempty"`
	Address             string   `json:"address,omitempty"`
	City                string   `json:"city,omitempty"`
	State               string   `json:"state,omitempty"`
	ZipCode             string   `json:"zip_code,omitempty"`
	Country             string   `json:"country,omitempty"`
	Phone               string   `json:"phone,omitempty"`
	Email               string   `json:"email,omitempty"`
	Website             string   `json:"website,omitempty"`
	Currency            string   `json:"currency,omitempty"`
	DefaultTaxRate      *float64 `json:"default_tax_rate,omitempty"`
	InvoicePrefix       string   `json:"invoice_prefix,omitempty"`
	AutoNumbering       *bool    `json:"auto_numbering,omitempty"`
	DefaultPaymentTerms *int     `json:"default_payment_terms,omitempty"`
}
