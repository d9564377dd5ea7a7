package services

import (
	"context"
	"errors"
	"strings"

	"github.com/invomaker/invomaker/models"
	"github.com/invomaker/invomaker/utils"
	"gorm.io/gorm"
)

type productStore interface {
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id string) (*models.Product, error)
	GetByBarcode(ctx context.Context, businessID, barcode string) (*models.Product, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, businessID string, includeInactive bool, limit, offset int) ([]*models.Product, error)
	Search(ctx context.Context, businessID, term string) ([]*models.Product, error)
	ListLowStock(ctx context.Context, businessID string, threshold float64) ([]*models.Product, error)
}

type ProductService struct {
	products productStore
	logger   *utils.Logger
}

func NewProductService(products productStore) *ProductService {
	return &ProductService{
		products: products,
		logger:   utils.NewLogger("product-service"),
	}
}

func (s *ProductService) CreateProduct(ctx context.Context, businessID string, req *models.CreateProductRequest) (*models.Product, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, utils.ErrInvalidRequest
	}
	productType := req.Type
	if productType == "" {
		productType = models.ProductTypeProduct
	}
	if productType != models.ProductTypeProduct && productType != models.ProductTypeService {
		return nil, utils.ErrInvalidRequest
	}

	unit := req.Unit
	if unit == "" {
		unit = "unit"
	}

	product := &models.Product{
		BusinessID:  businessID,
		Name:        strings.TrimSpace(req.Name),
		SKU:         req.SKU,
		Barcode:     req.Barcode,
		Category:    req.Category,
		Type:        productType,
		Description: req.Description,
		Price:       req.Price,
		CostPrice:   req.CostPrice,
		Taxable:     req.Taxable,
		TaxRate:     req.TaxRate,
		Unit:        unit,
		StockQty:    req.StockQty,
		ImageURL:    req.ImageURL,
		Active:      true,
	}

	if err := s.products.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// GetProduct loads a product scoped to the owning business; records
// belonging to another business read as not found.
func (s *ProductService) GetProduct(ctx context.Context, businessID, id string) (*models.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrProductNotFound
		}
		return nil, err
	}
	if product.BusinessID != businessID {
		return nil, utils.ErrProductNotFound
	}
	return product, nil
}

// LookupByBarcode resolves an active product by its barcode, for
// point-of-entry scanning flows.
func (s *ProductService) LookupByBarcode(ctx context.Context, businessID, barcode string) (*models.Product, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return nil, utils.ErrInvalidRequest
	}
	product, err := s.products.GetByBarcode(ctx, businessID, barcode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

func (s *ProductService) UpdateProduct(ctx context.Context, businessID, id string, req *models.UpdateProductRequest) (*models.Product, error) {
	product, err := s.GetProduct(ctx, businessID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, utils.ErrInvalidRequest
		}
		product.Name = strings.TrimSpace(*req.Name)
	}
	if req.SKU != nil {
		product.SKU = *req.SKU
	}
	if req.Barcode != nil {
		product.Barcode = *req.Barcode
	}
	if req.Category != nil {
		product.Category = *req.Category
	}
	if req.Type != nil {
		if *req.Type != models.ProductTypeProduct && *req.Type != models.ProductTypeService {
			return nil, utils.ErrInvalidRequest
		}
		product.Type = *req.Type
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.CostPrice != nil {
		product.CostPrice = *req.CostPrice
	}
	if req.Taxable != nil {
		product.Taxable = *req.Taxable
	}
	if req.TaxRate != nil {
		product.TaxRate = *req.TaxRate
	}
	if req.Unit != nil {
		product.Unit = *req.Unit
	}
	if req.StockQty != nil {
		product.StockQty = req.StockQty
	}
	if req.ImageURL != nil {
		product.ImageURL = *req.ImageURL
	}
	if req.Active != nil {
		product.Active = *req.Active
	}

	if err := s.products.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *ProductService) DeleteProduct(ctx context.Context, businessID, id string) error {
	if _, err := s.GetProduct(ctx, businessID, id); err != nil {
		return err
	}
	return s.products.Delete(ctx, id)
}

func (s *ProductService) ListProducts(ctx context.Context, businessID string, includeInactive bool, limit, offset int) (*models.ProductListResponse, error) {
	products, err := s.products.List(ctx, businessID, includeInactive, limit, offset)
	if err != nil {
		return nil, err
	}
	return &models.ProductListResponse{Products: products, Total: len(products)}, nil
}

func (s *ProductService) SearchProducts(ctx context.Context, businessID, term string) (*models.ProductListResponse, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return s.ListProducts(ctx, businessID, false, 0, 0)
	}
	products, err := s.products.Search(ctx, businessID, term)
	if err != nil {
		return nil, err
	}
	return &models.ProductListResponse{Products: products, Total: len(products)}, nil
}

func (s *ProductService) ListLowStock(ctx context.Context, businessID string, threshold float64) (*models.ProductListResponse, error) {
	if threshold <= 0 {
		threshold = 5
	}
	products, err := s.products.ListLowStock(ctx, businessID, threshold)
	if err != nil {
		return nil, err
	}
	return &models.ProductListResponse{Products: products, Total: len(products)}, nil
}
