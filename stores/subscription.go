package stores

import (
	"context"
	"errors"

	"github.com/invomaker/invomaker/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SubscriptionStore struct {
	BaseStore
}

func NewSubscriptionStore(db *gorm.DB) *SubscriptionStore {
	return &SubscriptionStore{BaseStore{db: db}}
}

// GetByUserID returns the stored subscription, defaulting to the free
// tier when the user has none.
func (s *SubscriptionStore) GetByUserID(ctx context.Context, userID string) (*models.Subscription, error) {
	var sub models.Subscription
	err := s.getDB(ctx).First(&sub, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.Subscription{UserID: userID, Tier: models.TierFree}, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// GetByStripeCustomerID resolves the subscription that billing webhook
// events reference by Stripe customer.
func (s *SubscriptionStore) GetByStripeCustomerID(ctx context.Context, customerID string) (*models.Subscription, error) {
	var sub models.Subscription
	if err := s.getDB(ctx).First(&sub, "stripe_customer_id = ?", customerID).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

// Upsert writes the subscription keyed by user, used by the billing
// webhook to grant and revoke tiers.
func (s *SubscriptionStore) Upsert(ctx context.Context, sub *models.Subscription) error {
	return s.getDB(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"tier", "stripe_customer_id", "period_start", "period_end", "updated_at",
		}),
	}).Create(sub).Error
}

// GetUsage loads the usage ledger row for (user, period), zero-valued
// when absent.
func (s *SubscriptionStore) GetUsage(ctx context.Context, userID, period string) (*models.AIUsage, error) {
	var usage models.AIUsage
	err := s.getDB(ctx).First(&usage, "user_id = ? AND period = ?", userID, period).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.AIUsage{UserID: userID, Period: period}, nil
	}
	if err != nil {
		return nil, err
	}
	return &usage, nil
}

// IncrementUsage bumps one counter for (user, period) transactionally.
// The row is created on first use of the period.
func (s *SubscriptionStore) IncrementUsage(ctx context.Context, userID, period, counter string) error {
	if counter != "summaries" && counter != "ai_invoices" {
		return errors.New("unknown usage counter: " + counter)
	}

	return s.getDB(ctx).Transaction(func(tx *gorm.DB) error {
		usage := &models.AIUsage{UserID: userID, Period: period}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "period"}},
			DoNothing: true,
		}).Create(usage).Error; err != nil {
			return err
		}

		return tx.Model(&models.AIUsage{}).
			Where("user_id = ? AND period = ?", userID, period).
			UpdateColumn(counter, gorm.Expr(counter+" + 1")).Error
	})
}
