package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/invomaker/invomaker/config"
	"github.com/invomaker/invomaker/models"
	"github.com/invomaker/invomaker/utils"
	"github.com/stripe/stripe-go/v82"
	"gorm.io/gorm"
)

type fakeSubscriptionStore struct {
	subs  map[string]*models.Subscription
	usage map[string]*models.AIUsage
}

func newFakeSubscriptionStore() *fakeSubscriptionStore {
	return &fakeSubscriptionStore{
		subs:  make(map[string]*models.Subscription),
		usage: make(map[string]*models.AIUsage),
	}
}

func (f *fakeSubscriptionStore) GetByUserID(ctx context.Context, userID string) (*models.Subscription, error) {
	if sub, ok := f.subs[userID]; ok {
		return sub, nil
	}
	return &models.Subscription{UserID: userID, Tier: models.TierFree}, nil
}

func (f *fakeSubscriptionStore) GetByStripeCustomerID(ctx context.Context, customerID string) (*models.Subscription, error) {
	for _, sub := range f.subs {
		if sub.StripeCustomerID == customerID {
			return sub, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeSubscriptionStore) Upsert(ctx context.Context, sub *models.Subscription) error {
	f.subs[sub.UserID] = sub
	return nil
}

func (f *fakeSubscriptionStore) GetUsage(ctx context.Context, userID, period string) (*models.AIUsage, error) {
	if u, ok := f.usage[userID+"|"+period]; ok {
		return u, nil
	}
	return &models.AIUsage{UserID: userID, Period: period}, nil
}

func (f *fakeSubscriptionStore) IncrementUsage(ctx context.Context, userID, period, counter string) error {
	key := userID + "|" + period
	u, ok := f.usage[key]
	if !ok {
		u = &models.AIUsage{UserID: userID, Period: period}
		f.usage[key] = u
	}
	switch counter {
	case usageCounterSummaries:
		u.Summaries++
	case usageCounterAIInvoices:
		u.AIInvoices++
	default:
		return errors.New("unknown counter")
	}
	return nil
}

type fakeInvoiceCounter struct {
	count int64
}

func (f *fakeInvoiceCounter) CountCreatedBetween(ctx context.Context, businessID string, from, to time.Time) (int64, error) {
	return f.count, nil
}

func newSubscriptionFixture() (*SubscriptionService, *fakeSubscriptionStore, *fakeInvoiceCounter) {
	store := newFakeSubscriptionStore()
	counter := &fakeInvoiceCounter{}
	svc := NewSubscriptionService(store, counter, config.StripeConfig{})
	return svc, store, counter
}

func TestPlansCatalog(t *testing.T) {
	svc, _, _ := newSubscriptionFixture()

	catalog := svc.Plans()
	if len(catalog) != 3 {
		t.Fatalf("got %d plans, want 3", len(catalog))
	}

	free := catalog[0]
	if free.Tier != models.TierFree || free.Limits.Invoices != 10 {
		t.Errorf("free plan = %+v", free)
	}
	pro := catalog[1]
	if pro.Tier != models.TierPro || pro.Limits.Invoices != -1 || pro.Limits.AISummaries != 50 {
		t.Errorf("pro plan = %+v", pro)
	}
	gold := catalog[2]
	if gold.Tier != models.TierGold || gold.Limits.AISummaries != -1 {
		t.Errorf("gold plan = %+v", gold)
	}
}

func TestCheckInvoiceAllowanceFreeTier(t *testing.T) {
	svc, _, counter := newSubscriptionFixture()

	counter.count = 9
	check, err := svc.CheckInvoiceAllowance(context.Background(), "user-1", "biz-1")
	if err != nil {
		t.Fatal(err)
	}
	if !check.Allowed {
		t.Errorf("9 of 10 used should be allowed: %+v", check)
	}

	counter.count = 10
	check, err = svc.CheckInvoiceAllowance(context.Background(), "user-1", "biz-1")
	if err != nil {
		t.Fatal(err)
	}
	if check.Allowed {
		t.Error("10 of 10 used should be blocked")
	}
	if check.Reason == "" {
		t.Error("blocked check should carry a reason")
	}
}

func TestCheckInvoiceAllowanceUnlimitedTier(t *testing.T) {
	svc, store, counter := newSubscriptionFixture()
	store.subs["user-1"] = &models.Subscription{UserID: "user-1", Tier: models.TierPro}

	counter.count = 5000
	check, err := svc.CheckInvoiceAllowance(context.Background(), "user-1", "biz-1")
	if err != nil {
		t.Fatal(err)
	}
	if !check.Allowed {
		t.Error("pro tier invoices are unlimited")
	}
}

func TestRequireAIAllowance(t *testing.T) {
	svc, store, _ := newSubscriptionFixture()

	// Free tier allows 10 summaries; consume them all.
	for i := 0; i < 10; i++ {
		if err := svc.RecordAIUsage(context.Background(), "user-1", usageCounterSummaries); err != nil {
			t.Fatal(err)
		}
	}

	err := svc.RequireAIAllowance(context.Background(), "user-1", usageCounterSummaries)
	if !errors.Is(err, utils.ErrUsageLimitReached) {
		t.Fatalf("err = %v, want ErrUsageLimitReached", err)
	}

	// The other counter is unaffected.
	if err := svc.RequireAIAllowance(context.Background(), "user-1", usageCounterAIInvoices); err != nil {
		t.Fatalf("ai_invoices err = %v, want nil", err)
	}

	// Gold removes the cap entirely.
	store.subs["user-1"] = &models.Subscription{UserID: "user-1", Tier: models.TierGold}
	if err := svc.RequireAIAllowance(context.Background(), "user-1", usageCounterSummaries); err != nil {
		t.Fatalf("gold err = %v, want nil", err)
	}
}

func TestCheckAIAllowanceUnknownCounter(t *testing.T) {
	svc, _, _ := newSubscriptionFixture()

	_, err := svc.CheckAIAllowance(context.Background(), "user-1", "teleportation")
	if !errors.Is(err, utils.ErrInvalidRequest) {
		t.Fatalf("err = %v, want ErrInvalidRequest", err)
	}
}

func TestGetUsageAggregates(t *testing.T) {
	svc, _, counter := newSubscriptionFixture()
	counter.count = 4

	svc.RecordAIUsage(context.Background(), "user-1", usageCounterSummaries)
	svc.RecordAIUsage(context.Background(), "user-1", usageCounterSummaries)
	svc.RecordAIUsage(context.Background(), "user-1", usageCounterAIInvoices)

	stats, err := svc.GetUsage(context.Background(), "user-1", "biz-1")
	if err != nil {
		t.Fatal(err)
	}
	if stats.Invoices != 4 {
		t.Errorf("Invoices = %d, want 4", stats.Invoices)
	}
	if stats.AISummaries != 2 {
		t.Errorf("AISummaries = %d, want 2", stats.AISummaries)
	}
	if stats.AIInvoiceCreation != 1 {
		t.Errorf("AIInvoiceCreation = %d, want 1", stats.AIInvoiceCreation)
	}
	if !stats.PeriodEnd.After(stats.PeriodStart) {
		t.Error("period window inverted")
	}
}

func TestHandleBillingEventCheckoutCompleted(t *testing.T) {
	svc, store, _ := newSubscriptionFixture()

	raw, _ := json.Marshal(map[string]interface{}{
		"client_reference_id": "user-1",
		"customer":            map[string]interface{}{"id": "cus_123"},
		"metadata":            map[string]string{"plan": "pro"},
	})
	event := stripe.Event{
		Type: "checkout.session.completed",
		Data: &stripe.EventData{Raw: raw},
	}

	if err := svc.HandleBillingEvent(context.Background(), event); err != nil {
		t.Fatalf("HandleBillingEvent: %v", err)
	}

	sub := store.subs["user-1"]
	if sub == nil || sub.Tier != models.TierPro {
		t.Fatalf("subscription = %+v, want pro tier", sub)
	}
	if sub.StripeCustomerID != "cus_123" {
		t.Errorf("StripeCustomerID = %q", sub.StripeCustomerID)
	}
}

func TestHandleBillingEventSubscriptionDeleted(t *testing.T) {
	svc, store, _ := newSubscriptionFixture()
	store.subs["user-1"] = &models.Subscription{
		UserID:           "user-1",
		Tier:             models.TierGold,
		StripeCustomerID: "cus_123",
	}

	raw, _ := json.Marshal(map[string]interface{}{
		"customer": map[string]interface{}{"id": "cus_123"},
	})
	event := stripe.Event{
		Type: "customer.subscription.deleted",
		Data: &stripe.EventData{Raw: raw},
	}

	if err := svc.HandleBillingEvent(context.Background(), event); err != nil {
		t.Fatalf("HandleBillingEvent: %v", err)
	}

	if got := store.subs["user-1"].Tier; got != models.TierFree {
		t.Errorf("Tier = %v, want free after deletion", got)
	}
}

func TestHandleBillingEventIgnoresUnknownTypes(t *testing.T) {
	svc, _, _ := newSubscriptionFixture()

	event := stripe.Event{Type: "invoice.finalized", Data: &stripe.EventData{Raw: []byte(`{}`)}}
	if err := svc.HandleBillingEvent(context.Background(), event); err != nil {
		t.Fatalf("unknown event should be acknowledged, got %v", err)
	}
}

func TestCreateCheckoutSessionRejectsFreePlan(t *testing.T) {
	svc, _, _ := newSubscriptionFixture()

	_, err := svc.CreateCheckoutSession(context.Background(), "user-1", "free")
	if !errors.Is(err, utils.ErrInvalidRequest) {
		t.Fatalf("err = %v, want ErrInvalidRequest", err)
	}

	_, err = svc.CreateCheckoutSession(context.Background(), "user-1", "nonexistent")
	if !errors.Is(err, utils.ErrInvalidRequest) {
		t.Fatalf("err = %v, want ErrInvalidRequest", err)
	}
}
