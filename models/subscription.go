package models

import (
	"time"
)

type SubscriptionTier string

const (
	TierFree SubscriptionTier = "free"
	TierPro  SubscriptionTier = "pro"
	TierGold SubscriptionTier = "gold"
)

// Subscription is the stored entitlement for a user, kept in sync by the
// billing webhook.
type Subscription struct {
	ID               string           `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	UserID           string           `json:"user_id" gorm:"uniqueIndex;not null"`
	Tier             SubscriptionTier `json:"tier" gorm:"not null;default:'free'"`
	StripeCustomerID string           `json:"stripe_customer_id" gorm:"index"`
	PeriodStart      *time.Time       `json:"period_start"`
	PeriodEnd        *time.Time       `json:"period_end"`
	CreatedAt        time.Time        `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt        time.Time        `json:"updated_at" gorm:"autoUpdateTime"`
}

// SubscriptionLimits uses -1 for unlimited.
type SubscriptionLimits struct {
	Invoices          int `json:"invoices"`
	Products          int `json:"products"`
	AISummaries       int `json:"ai_summaries"`
	AIInvoiceCreation int `json:"ai_invoice_creation"`
}

type SubscriptionPlan struct {
	ID       string             `json:"id"`
	Name     string             `json:"name"`
	Price    float64            `json:"price"`
	PriceID  string             `json:"price_id"`
	Tier     SubscriptionTier   `json:"tier"`
	Limits   SubscriptionLimits `json:"limits"`
	Features []string           `json:"features"`
}

// AIUsage is the per-user, per-period usage ledger row. Period is the
// calendar month in YYYY-MM form; counters are incremented transactionally
// alongside the action they meter.
type AIUsage struct {
	ID          string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	UserID      string    `json:"user_id" gorm:"not null;uniqueIndex:idx_user_period"`
	Period      string    `json:"period" gorm:"not null;uniqueIndex:idx_user_period"`
	Summaries   int       `json:"summaries" gorm:"not null;default:0"`
	AIInvoices  int       `json:"ai_invoices" gorm:"not null;default:0"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

type UsageStats struct {
	Invoices          int       `json:"invoices"`
	AISummaries       int       `json:"ai_summaries"`
	AIInvoiceCreation int       `json:"ai_invoice_creation"`
	PeriodStart       time.Time `json:"period_start"`
	PeriodEnd         time.Time `json:"period_end"`
}

type EntitlementCheck struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}
