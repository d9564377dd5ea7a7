package services

import (
	"context"
	"errors"
	"strings"

	"github.com/invomaker/invomaker/models"
	"github.com/invomaker/invomaker/utils"
	"gorm.io/gorm"
)

type businessStore interface {
	Create(ctx context.Context, business *models.Business) error
	Update(ctx context.Context, business *models.Business) error
	GetByID(ctx context.Context, id string) (*models.Business, error)
	GetByUserID(ctx context.Context, userID string) (*models.Business, error)
}

// BusinessService manages the per-user business profile. Each user owns
// exactly one profile, so writes go through an upsert.
type BusinessService struct {
	businesses businessStore
	logger     *utils.Logger
}

func NewBusinessService(businesses businessStore) *BusinessService {
	return &BusinessService{
		businesses: businesses,
		logger:     utils.NewLogger("business-service"),
	}
}

func (s *BusinessService) GetBusiness(ctx context.Context, userID string) (*models.Business, error) {
	business, err := s.businesses.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrBusinessNotFound
		}
		return nil, err
	}
	return business, nil
}

// UpsertBusiness creates the profile on first save and updates it on
// every save after that. Blank request fields never clear stored values;
// numbering defaults only apply at creation.
func (s *BusinessService) UpsertBusiness(ctx context.Context, userID string, req *models.UpsertBusinessRequest) (*models.Business, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, utils.ErrInvalidRequest
	}

	business, err := s.businesses.GetByUserID(ctx, userID)
	creating := false
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		creating = true
		business = &models.Business{
			UserID:              userID,
			Country:             "US",
			Currency:            "USD",
			InvoicePrefix:       "INV",
			AutoNumbering:       true,
			NextInvoiceNumber:   1,
			DefaultPaymentTerms: 30,
		}
	}

	business.Name = strings.TrimSpace(req.Name)
	if req.LogoURL != "" {
		business.LogoURL = req.LogoURL
	}
	if req.Address != "" {
		business.Address = req.Address
	}
	if req.City != "" {
		business.City = req.City
	}
	if req.State != "" {
		business.State = req.State
	}
	if req.ZipCode != "" {
		business.ZipCode = req.ZipCode
	}
	if req.Country != "" {
		business.Country = req.Country
	}
	if req.Phone != "" {
		business.Phone = req.Phone
	}
	if req.Email != "" {
		business.Email = req.Email
	}
	if req.Website != "" {
		business.Website = req.Website
	}
	if req.Currency != "" {
		business.Currency = strings.ToUpper(req.Currency)
	}
	if req.DefaultTaxRate != nil {
		business.DefaultTaxRate = *req.DefaultTaxRate
	}
	if req.InvoicePrefix != "" {
		business.InvoicePrefix = req.InvoicePrefix
	}
	if req.AutoNumbering != nil {
		business.AutoNumbering = *req.AutoNumbering
	}
	if req.DefaultPaymentTerms != nil {
		business.DefaultPaymentTerms = *req.DefaultPaymentTerms
	}

	if creating {
		err = s.businesses.Create(ctx, business)
	} else {
		err = s.businesses.Update(ctx, business)
	}
	if err != nil {
		return nil, err
	}
	return business, nil
}
