package stores

import (
	"context"

	"github.com/invomaker/invomaker/models"
	"gorm.io/gorm"
)

type CustomerStore struct {
	BaseStore
}

func NewCustomerStore(db *gorm.DB) *CustomerStore {
	return &CustomerStore{BaseStore{db: db}}
}

func (s *CustomerStore) Create(ctx context.Context, customer *models.Customer) error {
	return s.getDB(ctx).Create(customer).Error
}

func (s *CustomerStore) Update(ctx context.Context, customer *models.Customer) error {
	return s.getDB(ctx).Save(customer).Error
}

func (s *CustomerStore) GetByID(ctx context.Context, id string) (*models.Customer, error) {
	var customer models.Customer
	if err := s.getDB(ctx).First(&customer, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func (s *CustomerStore) Delete(ctx context.Context, id string) error {
	return s.getDB(ctx).Delete(&models.Customer{}, "id = ?", id).Error
}

func (s *CustomerStore) List(ctx context.Context, businessID string, limit, offset int) ([]*models.Customer, error) {
	var customers []*models.Customer
	query := s.getDB(ctx).Where("business_id = ?", businessID).Order("name ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	if err := query.Find(&customers).Error; err != nil {
		return nil, err
	}
	return customers, nil
}

func (s *CustomerStore) Search(ctx context.Context, businessID, term string) ([]*models.Customer, error) {
	var customers []*models.Customer
	pattern := "%" + term + "%"
	err := s.getDB(ctx).
		Where("business_id = ?", businessID).
		Where("name ILIKE ? OR email ILIKE ? OR company ILIKE ?", pattern, pattern, pattern).
		Order("name ASC").
		Find(&customers).Error
	if err != nil {
		return nil, err
	}
	return customers, nil
}
