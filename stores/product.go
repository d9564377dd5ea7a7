package stores

import (
	"context"
	"errors"

	"github.com/invomaker/invomaker/models"
	"gorm.io/gorm"
)

// ErrInsufficientStock is returned when a stock decrement would drive a
// tracked quantity below zero.
var ErrInsufficientStock = errors.New("insufficient stock")

type ProductStore struct {
	BaseStore
}

func NewProductStore(db *gorm.DB) *ProductStore {
	return &ProductStore{BaseStore{db: db}}
}

func (s *ProductStore) Create(ctx context.Context, product *models.Product) error {
	return s.getDB(ctx).Create(product).Error
}

func (s *ProductStore) Update(ctx context.Context, product *models.Product) error {
	return s.getDB(ctx).Save(product).Error
}

func (s *ProductStore) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := s.getDB(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *ProductStore) GetByBarcode(ctx context.Context, businessID, barcode string) (*models.Product, error) {
	var product models.Product
	err := s.getDB(ctx).
		First(&product, "business_id = ? AND barcode = ? AND active = true", businessID, barcode).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *ProductStore) Delete(ctx context.Context, id string) error {
	return s.getDB(ctx).Delete(&models.Product{}, "id = ?", id).Error
}

func (s *ProductStore) List(ctx context.Context, businessID string, includeInactive bool, limit, offset int) ([]*models.Product, error) {
	var products []*models.Product
	query := s.getDB(ctx).Where("business_id = ?", businessID).Order("name ASC")
	if !includeInactive {
		query = query.Where("active = true")
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	if err := query.Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (s *ProductStore) Search(ctx context.Context, businessID, term string) ([]*models.Product, error) {
	var products []*models.Product
	pattern := "%" + term + "%"
	err := s.getDB(ctx).
		Where("business_id = ? AND active = true", businessID).
		Where("name ILIKE ? OR sku ILIKE ? OR category ILIKE ?", pattern, pattern, pattern).
		Order("name ASC").
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

// DecreaseStock subtracts quantity from a product's stock under a row
// lock. Products with no tracked stock (NULL stock_qty) are ignored.
func (s *ProductStore) DecreaseStock(ctx context.Context, productID string, quantity float64) error {
	return s.getDB(ctx).Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.Clauses(forUpdate()).First(&product, "id = ?", productID).Error; err != nil {
			return err
		}
		if product.StockQty == nil {
			return nil
		}
		remaining := *product.StockQty - quantity
		if remaining < 0 {
			return ErrInsufficientStock
		}
		return tx.Model(&models.Product{}).
			Where("id = ?", productID).
			Update("stock_qty", remaining).Error
	})
}

func (s *ProductStore) ListLowStock(ctx context.Context, businessID string, threshold float64) ([]*models.Product, error) {
	var products []*models.Product
	err := s.getDB(ctx).
		Where("business_id = ? AND active = true", businessID).
		Where("stock_qty IS NOT NULL AND stock_qty <= ?", threshold).
		Order("stock_qty ASC").
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}
