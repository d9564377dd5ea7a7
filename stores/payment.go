package stores

import (
	"context"

	"github.com/invomaker/invomaker/models"
	"gorm.io/gorm"
)

type PaymentStore struct {
	BaseStore
}

func NewPaymentStore(db *gorm.DB) *PaymentStore {
	return &PaymentStore{BaseStore{db: db}}
}

func (s *PaymentStore) Create(ctx context.Context, payment *models.Payment) error {
	return s.getDB(ctx).Create(payment).Error
}

func (s *PaymentStore) Update(ctx context.Context, payment *models.Payment) error {
	return s.getDB(ctx).Save(payment).Error
}

func (s *PaymentStore) GetByID(ctx context.Context, id string) (*models.Payment, error) {
	var payment models.Payment
	if err := s.getDB(ctx).First(&payment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func (s *PaymentStore) Delete(ctx context.Context, id string) error {
	return s.getDB(ctx).Delete(&models.Payment{}, "id = ?", id).Error
}

func (s *PaymentStore) ListByInvoice(ctx context.Context, invoiceID string) ([]*models.Payment, error) {
	var payments []*models.Payment
	err := s.getDB(ctx).
		Where("invoice_id = ?", invoiceID).
		Order("payment_date DESC").
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}

// SumByInvoice re-sums the full payment set for the invoice. The
// reconciliation never keeps a running counter.
func (s *PaymentStore) SumByInvoice(ctx context.Context, invoiceID string) (float64, error) {
	var sum float64
	err := s.getDB(ctx).Model(&models.Payment{}).
		Where("invoice_id = ?", invoiceID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&sum).Error
	return sum, err
}
