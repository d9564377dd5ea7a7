package stores

import (
	"context"

	"github.com/invomaker/invomaker/models"
	"gorm.io/gorm"
)

type BusinessStore struct {
	BaseStore
}

func NewBusinessStore(db *gorm.DB) *BusinessStore {
	return &BusinessStore{BaseStore{db: db}}
}

func (s *BusinessStore) Create(ctx context.Context, business *models.Business) error {
	return s.getDB(ctx).Create(business).Error
}

func (s *BusinessStore) Update(ctx context.Context, business *models.Business) error {
	return s.getDB(ctx).Save(business).Error
}

func (s *BusinessStore) GetByID(ctx context.Context, id string) (*models.Business, error) {
	var business models.Business
	if err := s.getDB(ctx).First(&business, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &business, nil
}

func (s *BusinessStore) GetByUserID(ctx context.Context, userID string) (*models.Business, error) {
	var business models.Business
	if err := s.getDB(ctx).First(&business, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &business, nil
}

// NextInvoiceNumber atomically claims the next sequence number for the
// business, so two invoices created at the same moment cannot share one.
func (s *BusinessStore) NextInvoiceNumber(ctx context.Context, businessID string) (int, error) {
	var business models.Business

	err := s.getDB(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(forUpdate()).First(&business, "id = ?", businessID).Error; err != nil {
			return err
		}
		return tx.Model(&models.Business{}).
			Where("id = ?", businessID).
			Update("next_invoice_number", business.NextInvoiceNumber+1).Error
	})
	if err != nil {
		return 0, err
	}

	return business.NextInvoiceNumber, nil
}
