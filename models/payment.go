package models

import (
	"time"
)

type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodCard         PaymentMethod = "card"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodCheck        PaymentMethod = "check"
	PaymentMethodOther        PaymentMethod = "other"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodBankTransfer,
		PaymentMethodCheck, PaymentMethodOther:
		return true
	}
	return false
}

type Payment struct {
	ID            string        `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	InvoiceID     string        `json:"invoice_id" gorm:"not null;index"`
	Amount        float64       `json:"amount" gorm:"not null"`
	PaymentDate   time.Time     `json:"payment_date" gorm:"type:date;not null"`
	PaymentMethod PaymentMethod `json:"payment_method" gorm:"not null;default:'other'"`
	Reference     string        `json:"reference"`
	Notes         string        `json:"notes"`
	CreatedAt     time.Time     `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time     `json:"updated_at" gorm:"autoUpdateTime"`
}

type CreatePaymentRequest struct {
	Amount        float64       `json:"amount"`
	PaymentDate   time.Time     `json:"payment_date"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	Reference     string        `json:"reference,omitempty"`
	Notes         string        `json:"notes,omitempty"`
}

type UpdatePaymentRequest struct {
	Amount        *float64       `json:"amount,omitempty"`
	PaymentDate   *time.Time     `json:"payment_date,omitempty"`
	PaymentMethod *PaymentMethod `json:"payment_method,omitempty"`
	Reference     *string        `json:"reference,omitempty"`
	Notes         *string        `json:"notes,omitempty"`
}

type PaymentListResponse struct {
	Payments []*Payment `json:"payments"`
	Total    int        `json:"total"`
}
