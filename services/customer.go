package services

import (
	"context"
	"errors"
	"strings"

	"github.com/invomaker/invomaker/models"
	"github.com/invomaker/invomaker/utils"
	"gorm.io/gorm"
)

type customerStore interface {
	Create(ctx context.Context, customer *models.Customer) error
	Update(ctx context.Context, customer *models.Customer) error
	GetByID(ctx context.Context, id string) (*models.Customer, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, businessID string, limit, offset int) ([]*models.Customer, error)
	Search(ctx context.Context, businessID, term string) ([]*models.Customer, error)
}

type customerInvoiceStore interface {
	ListByCustomer(ctx context.Context, customerID string) ([]*models.Invoice, error)
}

type CustomerService struct {
	customers customerStore
	invoices  customerInvoiceStore
	logger    *utils.Logger
}

func NewCustomerService(customers customerStore, invoices customerInvoiceStore) *CustomerService {
	return &CustomerService{
		customers: customers,
		invoices:  invoices,
		logger:    utils.NewLogger("customer-service"),
	}
}

func (s *CustomerService) CreateCustomer(ctx context.Context, businessID string, req *models.CreateCustomerRequest) (*models.Customer, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, utils.ErrInvalidRequest
	}

	customer := &models.Customer{
		BusinessID: businessID,
		Name:       strings.TrimSpace(req.Name),
		Email:      req.Email,
		Phone:      req.Phone,
		Company:    req.Company,
		Address:    req.Address,
		City:       req.City,
		State:      req.State,
		ZipCode:    req.ZipCode,
		Country:    req.Country,
		TaxID:      req.TaxID,
		Notes:      req.Notes,
	}

	if err := s.customers.Create(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

// GetCustomer loads a customer scoped to the owning business; records
// belonging to another business read as not found.
func (s *CustomerService) GetCustomer(ctx context.Context, businessID, id string) (*models.Customer, error) {
	customer, err := s.customers.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrCustomerNotFound
		}
		return nil, err
	}
	if customer.BusinessID != businessID {
		return nil, utils.ErrCustomerNotFound
	}
	return customer, nil
}

// GetCustomerSummary returns the customer with their invoices and the
// invoiced/paid/outstanding aggregates. Cancelled invoices count toward
// none of the aggregates.
func (s *CustomerService) GetCustomerSummary(ctx context.Context, businessID, id string) (*models.CustomerSummary, error) {
	customer, err := s.GetCustomer(ctx, businessID, id)
	if err != nil {
		return nil, err
	}

	invoices, err := s.invoices.ListByCustomer(ctx, id)
	if err != nil {
		return nil, err
	}

	summary := &models.CustomerSummary{
		Customer: customer,
		Invoices: invoices,
	}
	for _, invoice := range invoices {
		if invoice.Status == models.InvoiceStatusCancelled {
			continue
		}
		summary.TotalInvoiced += invoice.Total
		summary.TotalPaid += invoice.PaidAmount
		summary.TotalOutstanding += invoice.Balance
	}
	return summary, nil
}

func (s *CustomerService) UpdateCustomer(ctx context.Context, businessID, id string, req *models.UpdateCustomerRequest) (*models.Customer, error) {
	customer, err := s.GetCustomer(ctx, businessID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, utils.ErrInvalidRequest
		}
		customer.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		customer.Email = *req.Email
	}
	if req.Phone != nil {
		customer.Phone = *req.Phone
	}
	if req.Company != nil {
		customer.Company = *req.Company
	}
	if req.Address != nil {
		customer.Address = *req.Address
	}
	if req.City != nil {
		customer.City = *req.City
	}
	if req.State != nil {
		customer.State = *req.State
	}
	if req.ZipCode != nil {
		customer.ZipCode = *req.ZipCode
	}
	if req.Country != nil {
		customer.Country = *req.Country
	}
	if req.TaxID != nil {
		customer.TaxID = *req.TaxID
	}
	if req.Notes != nil {
		customer.Notes = *req.Notes
	}

	if err := s.customers.Update(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *CustomerService) DeleteCustomer(ctx context.Context, businessID, id string) error {
	if _, err := s.GetCustomer(ctx, businessID, id); err != nil {
		return err
	}
	return s.customers.Delete(ctx, id)
}

func (s *CustomerService) ListCustomers(ctx context.Context, businessID string, limit, offset int) (*models.CustomerListResponse, error) {
	customers, err := s.customers.List(ctx, businessID, limit, offset)
	if err != nil {
		return nil, err
	}
	return &models.CustomerListResponse{Customers: customers, Total: len(customers)}, nil
}

func (s *CustomerService) SearchCustomers(ctx context.Context, businessID, term string) (*models.CustomerListResponse, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return s.ListCustomers(ctx, businessID, 0, 0)
	}
	customers, err := s.customers.Search(ctx, businessID, term)
	if err != nil {
		return nil, err
	}
	return &models.CustomerListResponse{Customers: customers, Total: len(customers)}, nil
}
