package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/invomaker/invomaker/config"
	"github.com/invomaker/invomaker/models"
	"github.com/invomaker/invomaker/utils"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"gorm.io/gorm"
)

const (
	usageCounterSummaries  = "summaries"
	usageCounterAIInvoices = "ai_invoices"
)

// plans is the static catalog. PriceID is the Stripe price used at
// checkout; the free tier has none.
var plans = []*models.SubscriptionPlan{
	{
		ID:    "free",
		Name:  "Free",
		Price: 0,
		Tier:  models.TierFree,
		Limits: models.SubscriptionLimits{
			Invoices:          10,
			Products:          10,
			AISummaries:       10,
			AIInvoiceCreation: 10,
		},
		Features: []string{
			"10 invoices per month",
			"10 products",
			"Basic AI assistance",
		},
	},
	{
		ID:      "pro",
		Name:    "Pro",
		Price:   4.99,
		PriceID: "price_invomaker_pro_monthly",
		Tier:    models.TierPro,
		Limits: models.SubscriptionLimits{
			Invoices:          -1,
			Products:          -1,
			AISummaries:       50,
			AIInvoiceCreation: 50,
		},
		Features: []string{
			"Unlimited invoices",
			"Unlimited products",
			"50 AI summaries per month",
			"50 AI invoice drafts per month",
		},
	},
	{
		ID:      "gold",
		Name:    "Gold",
		Price:   9.99,
		PriceID: "price_invomaker_gold_monthly",
		Tier:    models.TierGold,
		Limits: models.SubscriptionLimits{
			Invoices:          -1,
			Products:          -1,
			AISummaries:       -1,
			AIInvoiceCreation: -1,
		},
		Features: []string{
			"Everything in Pro",
			"Unlimited AI assistance",
			"Priority support",
		},
	},
}

type subscriptionStore interface {
	GetByUserID(ctx context.Context, userID string) (*models.Subscription, error)
	GetByStripeCustomerID(ctx context.Context, customerID string) (*models.Subscription, error)
	Upsert(ctx context.Context, sub *models.Subscription) error
	GetUsage(ctx context.Context, userID, period string) (*models.AIUsage, error)
	IncrementUsage(ctx context.Context, userID, period, counter string) error
}

type subscriptionInvoiceCounter interface {
	CountCreatedBetween(ctx context.Context, businessID string, from, to time.Time) (int64, error)
}

// SubscriptionService enforces plan entitlements and keeps the stored
// tier in sync with Stripe billing events.
type SubscriptionService struct {
	subs     subscriptionStore
	invoices subscriptionInvoiceCounter
	stripe   config.StripeConfig
	logger   *utils.Logger
	now      func() time.Time
}

func NewSubscriptionService(subs subscriptionStore, invoices subscriptionInvoiceCounter, stripeCfg config.StripeConfig) *SubscriptionService {
	stripe.Key = stripeCfg.Secret
	return &SubscriptionService{
		subs:     subs,
		invoices: invoices,
		stripe:   stripeCfg,
		logger:   utils.NewLogger("subscription-service"),
		now:      time.Now,
	}
}

func (s *SubscriptionService) Plans() []*models.SubscriptionPlan {
	return plans
}

func (s *SubscriptionService) GetSubscription(ctx context.Context, userID string) (*models.Subscription, error) {
	return s.subs.GetByUserID(ctx, userID)
}

func planForTier(tier models.SubscriptionTier) *models.SubscriptionPlan {
	for _, plan := range plans {
		if plan.Tier == tier {
			return plan
		}
	}
	return plans[0]
}

func planByID(id string) *models.SubscriptionPlan {
	for _, plan := range plans {
		if plan.ID == id {
			return plan
		}
	}
	return nil
}

func (s *SubscriptionService) currentPeriod() (string, time.Time, time.Time) {
	now := s.now().UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	return start.Format("2006-01"), start, end
}

// GetUsage reports the current calendar month's consumption: invoices
// created plus the AI usage counters.
func (s *SubscriptionService) GetUsage(ctx context.Context, userID, businessID string) (*models.UsageStats, error) {
	period, start, end := s.currentPeriod()

	usage, err := s.subs.GetUsage(ctx, userID, period)
	if err != nil {
		return nil, err
	}

	invoiceCount, err := s.invoices.CountCreatedBetween(ctx, businessID, start, end)
	if err != nil {
		return nil, err
	}

	return &models.UsageStats{
		Invoices:          int(invoiceCount),
		AISummaries:       usage.Summaries,
		AIInvoiceCreation: usage.AIInvoices,
		PeriodStart:       start,
		PeriodEnd:         end,
	}, nil
}

// CheckInvoiceAllowance reports whether the user may create another
// invoice this month under their plan's limit.
func (s *SubscriptionService) CheckInvoiceAllowance(ctx context.Context, userID, businessID string) (*models.EntitlementCheck, error) {
	sub, err := s.subs.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	limit := planForTier(sub.Tier).Limits.Invoices
	if limit < 0 {
		return &models.EntitlementCheck{Allowed: true}, nil
	}

	_, start, end := s.currentPeriod()
	count, err := s.invoices.CountCreatedBetween(ctx, businessID, start, end)
	if err != nil {
		return nil, err
	}
	if int(count) >= limit {
		return &models.EntitlementCheck{
			Allowed: false,
			Reason:  fmt.Sprintf("monthly invoice limit of %d reached", limit),
		}, nil
	}
	return &models.EntitlementCheck{Allowed: true}, nil
}

// CheckAIAllowance reports whether the user has AI quota remaining for
// the given counter ("summaries" or "ai_invoices").
func (s *SubscriptionService) CheckAIAllowance(ctx context.Context, userID, counter string) (*models.EntitlementCheck, error) {
	sub, err := s.subs.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	limits := planForTier(sub.Tier).Limits

	var limit, used int
	period, _, _ := s.currentPeriod()
	usage, err := s.subs.GetUsage(ctx, userID, period)
	if err != nil {
		return nil, err
	}

	switch counter {
	case usageCounterSummaries:
		limit, used = limits.AISummaries, usage.Summaries
	case usageCounterAIInvoices:
		limit, used = limits.AIInvoiceCreation, usage.AIInvoices
	default:
		return nil, utils.ErrInvalidRequest
	}

	if limit >= 0 && used >= limit {
		return &models.EntitlementCheck{
			Allowed: false,
			Reason:  fmt.Sprintf("monthly limit of %d reached", limit),
		}, nil
	}
	return &models.EntitlementCheck{Allowed: true}, nil
}

// RequireAIAllowance is the gate the AI endpoints call before doing any
// work; it returns ErrUsageLimitReached when quota is exhausted.
func (s *SubscriptionService) RequireAIAllowance(ctx context.Context, userID, counter string) error {
	check, err := s.CheckAIAllowance(ctx, userID, counter)
	if err != nil {
		return err
	}
	if !check.Allowed {
		return utils.ErrUsageLimitReached
	}
	return nil
}

// RecordAIUsage increments the metered counter for the current period.
func (s *SubscriptionService) RecordAIUsage(ctx context.Context, userID, counter string) error {
	period, _, _ := s.currentPeriod()
	return s.subs.IncrementUsage(ctx, userID, period, counter)
}

// CreateCheckoutSession starts a Stripe subscription checkout for a paid
// plan and returns the hosted payment URL.
func (s *SubscriptionService) CreateCheckoutSession(ctx context.Context, userID, planID string) (string, error) {
	plan := planByID(planID)
	if plan == nil || plan.PriceID == "" {
		return "", utils.ErrInvalidRequest
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(plan.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL:        stripe.String(s.stripe.SuccessURL),
		CancelURL:         stripe.String(s.stripe.CancelURL),
		ClientReferenceID: stripe.String(userID),
	}
	params.AddMetadata("user_id", userID)
	params.AddMetadata("plan", plan.ID)

	sess, err := session.New(params)
	if err != nil {
		return "", err
	}
	return sess.URL, nil
}

// HandleBillingEvent applies a verified Stripe event to the stored
// entitlements. Unknown event types are acknowledged and ignored.
func (s *SubscriptionService) HandleBillingEvent(ctx context.Context, event stripe.Event) error {
	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return utils.WrapError(err, "decode checkout session")
		}
		return s.applyCheckout(ctx, &sess)
	case "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return utils.WrapError(err, "decode subscription")
		}
		return s.revoke(ctx, &sub)
	default:
		s.logger.Debug(ctx, "Ignoring billing event", map[string]interface{}{"type": string(event.Type)})
		return nil
	}
}

func (s *SubscriptionService) applyCheckout(ctx context.Context, sess *stripe.CheckoutSession) error {
	userID := sess.ClientReferenceID
	if userID == "" {
		userID = sess.Metadata["user_id"]
	}
	if userID == "" {
		return utils.ErrInvalidRequest
	}

	plan := planByID(sess.Metadata["plan"])
	if plan == nil || plan.Tier == models.TierFree {
		return utils.ErrInvalidRequest
	}

	customerID := ""
	if sess.Customer != nil {
		customerID = sess.Customer.ID
	}

	_, start, end := s.currentPeriod()
	sub := &models.Subscription{
		UserID:           userID,
		Tier:             plan.Tier,
		StripeCustomerID: customerID,
		PeriodStart:      &start,
		PeriodEnd:        &end,
	}
	if err := s.subs.Upsert(ctx, sub); err != nil {
		return err
	}

	s.logger.Info(ctx, "Subscription granted", map[string]interface{}{
		"user_id": userID,
		"tier":    string(plan.Tier),
	})
	return nil
}

func (s *SubscriptionService) revoke(ctx context.Context, stripeSub *stripe.Subscription) error {
	if stripeSub.Customer == nil {
		return nil
	}

	sub, err := s.subs.GetByStripeCustomerID(ctx, stripeSub.Customer.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	sub.Tier = models.TierFree
	sub.PeriodStart = nil
	sub.PeriodEnd = nil
	if err := s.subs.Upsert(ctx, sub); err != nil {
		return err
	}

	s.logger.Info(ctx, "Subscription revoked", map[string]interface{}{"user_id": sub.UserID})
	return nil
}
