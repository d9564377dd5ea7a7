package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/invomaker/invomaker/ledger"
	"github.com/invomaker/invomaker/models"
	"github.com/invomaker/invomaker/utils"
	"gorm.io/gorm"
)

// invoiceStore is the persistence surface the invoice service needs.
// Implemented by stores.InvoiceStore.
type invoiceStore interface {
	Create(ctx context.Context, invoice *models.Invoice, items []*models.InvoiceItem) error
	GetByID(ctx context.Context, id string) (*models.Invoice, error)
	List(ctx context.Context, businessID string, req *models.ListInvoicesRequest) ([]*models.Invoice, error)
	ReplaceItems(ctx context.Context, invoiceID string, items []*models.InvoiceItem) error
	UpdateTotals(ctx context.Context, invoiceID string, totals ledger.Totals, balance float64) error
	UpdateReconciliation(ctx context.Context, invoiceID string, paidAmount, balance float64, status models.InvoiceStatus) error
	UpdateStatus(ctx context.Context, invoiceID string, status models.InvoiceStatus) error
	UpdateFields(ctx context.Context, invoiceID string, fields map[string]interface{}) error
	Delete(ctx context.Context, id string) error
	CountByBusiness(ctx context.Context, businessID string) (int64, error)
	WithTransaction(ctx context.Context, fn func(context.Context) error) error
}

type invoiceBusinessStore interface {
	GetByUserID(ctx context.Context, userID string) (*models.Business, error)
	NextInvoiceNumber(ctx context.Context, businessID string) (int, error)
}

type invoiceProductStore interface {
	GetByID(ctx context.Context, id string) (*models.Product, error)
	DecreaseStock(ctx context.Context, productID string, quantity float64) error
}

type invoicePaymentSummer interface {
	SumByInvoice(ctx context.Context, invoiceID string) (float64, error)
}

type InvoiceService struct {
	invoices   invoiceStore
	payments   invoicePaymentSummer
	businesses invoiceBusinessStore
	products   invoiceProductStore
	locks      *ledger.KeyedLock
	logger     *utils.Logger
	now        func() time.Time
}

func NewInvoiceService(invoices invoiceStore, payments invoicePaymentSummer, businesses invoiceBusinessStore, products invoiceProductStore, locks *ledger.KeyedLock) *InvoiceService {
	return &InvoiceService{
		invoices:   invoices,
		payments:   payments,
		businesses: businesses,
		products:   products,
		locks:      locks,
		logger:     utils.NewLogger("invoice-service"),
		now:        time.Now,
	}
}

func (s *InvoiceService) CreateInvoice(ctx context.Context, userID string, req *models.CreateInvoiceRequest) (*models.Invoice, error) {
	business, err := s.businesses.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrBusinessNotFound
		}
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = models.InvoiceStatusDraft
	}
	if status != models.InvoiceStatusDraft && status != models.InvoiceStatusSent {
		return nil, utils.ErrInvalidStatus
	}

	currency := req.Currency
	if currency == "" {
		currency = business.Currency
	}

	items, err := s.buildItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	totals := ledger.Compute(lineInputs(items), req.ShippingFee, req.ExtraFees)

	number, err := s.nextInvoiceNumber(ctx, business)
	if err != nil {
		return nil, err
	}

	invoice := &models.Invoice{
		BusinessID:    business.ID,
		CustomerID:    req.CustomerID,
		InvoiceNumber: number,
		Status:        status,
		IssueDate:     req.IssueDate,
		DueDate:       req.DueDate,
		Currency:      currency,
		Subtotal:      totals.Subtotal,
		TaxTotal:      totals.TaxTotal,
		DiscountTotal: totals.DiscountTotal,
		ShippingFee:   totals.ShippingFee,
		ExtraFees:     totals.ExtraFees,
		Total:         totals.Total,
		PaidAmount:    0,
		Balance:       totals.Total,
		Notes:         req.Notes,
		Terms:         req.Terms,
	}

	if err := s.invoices.Create(ctx, invoice, items); err != nil {
		return nil, err
	}

	// Stock is only committed once an invoice leaves draft. A failed
	// decrement is logged and does not block the invoice.
	if status != models.InvoiceStatusDraft {
		s.decreaseStockForItems(ctx, items)
	}

	return s.invoices.GetByID(ctx, invoice.ID)
}

// GetInvoice loads an invoice scoped to the owning business; invoices
// belonging to another business read as not found.
func (s *InvoiceService) GetInvoice(ctx context.Context, businessID, id string) (*models.Invoice, error) {
	invoice, err := s.invoices.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrInvoiceNotFound
		}
		return nil, err
	}
	if invoice.BusinessID != businessID {
		return nil, utils.ErrInvoiceNotFound
	}
	return invoice, nil
}

func (s *InvoiceService) ListInvoices(ctx context.Context, userID string, req *models.ListInvoicesRequest) ([]*models.Invoice, error) {
	business, err := s.businesses.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrBusinessNotFound
		}
		return nil, err
	}
	return s.invoices.List(ctx, business.ID, req)
}

// UpdateInvoice edits header fields, fees and items. Any change to items
// or fees recomputes the aggregates and the balance atomically;
// paid_amount is preserved across edits.
func (s *InvoiceService) UpdateInvoice(ctx context.Context, businessID, id string, req *models.UpdateInvoiceRequest) (*models.Invoice, error) {
	if !s.locks.TryAcquire(id) {
		return nil, utils.ErrRecalcInFlight
	}
	defer s.locks.Release(id)

	invoice, err := s.GetInvoice(ctx, businessID, id)
	if err != nil {
		return nil, err
	}

	fields := invoiceHeaderFields(req)

	shippingFee := invoice.ShippingFee
	if req.ShippingFee != nil {
		shippingFee = *req.ShippingFee
	}
	extraFees := invoice.ExtraFees
	if req.ExtraFees != nil {
		extraFees = *req.ExtraFees
	}

	dueDate := invoice.DueDate
	if req.DueDate != nil {
		dueDate = *req.DueDate
	}

	err = s.invoices.WithTransaction(ctx, func(txCtx context.Context) error {
		if len(fields) > 0 {
			if err := s.invoices.UpdateFields(txCtx, id, fields); err != nil {
				return err
			}
		}

		var totals ledger.Totals
		switch {
		case req.Items != nil:
			items, err := s.buildItems(txCtx, req.Items)
			if err != nil {
				return err
			}
			if err := s.invoices.ReplaceItems(txCtx, id, items); err != nil {
				return err
			}
			totals = ledger.Compute(lineInputs(items), shippingFee, extraFees)
		case req.ShippingFee != nil || req.ExtraFees != nil:
			totals = ledger.Totals{
				Subtotal:      invoice.Subtotal,
				DiscountTotal: invoice.DiscountTotal,
				TaxTotal:      invoice.TaxTotal,
				ShippingFee:   shippingFee,
				ExtraFees:     extraFees,
				Total: ledger.TotalFromAggregates(invoice.Subtotal, invoice.DiscountTotal,
					invoice.TaxTotal, shippingFee, extraFees),
			}
		default:
			return nil
		}

		balance := ledger.Balance(totals.Total, invoice.PaidAmount)
		if err := s.invoices.UpdateTotals(txCtx, id, totals, balance); err != nil {
			return err
		}

		status := ledger.DeriveStatus(invoice.Status, invoice.PaidAmount, balance, dueDate, s.now())
		if status != invoice.Status {
			return s.invoices.UpdateStatus(txCtx, id, status)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.invoices.GetByID(ctx, id)
}

// Recalculate is the payment reconciliation entry point: re-sum every
// payment on the invoice, refresh paid_amount and balance, and re-derive
// status. The three fields commit together or not at all.
func (s *InvoiceService) Recalculate(ctx context.Context, businessID, invoiceID string) error {
	if !s.locks.TryAcquire(invoiceID) {
		return utils.ErrRecalcInFlight
	}
	defer s.locks.Release(invoiceID)

	if _, err := s.GetInvoice(ctx, businessID, invoiceID); err != nil {
		return err
	}

	return s.recalculateLocked(ctx, invoiceID)
}

// recalculateLocked runs the reconciliation for callers that already
// hold the invoice lock.
func (s *InvoiceService) recalculateLocked(ctx context.Context, invoiceID string) error {
	return s.invoices.WithTransaction(ctx, func(txCtx context.Context) error {
		invoice, err := s.invoices.GetByID(txCtx, invoiceID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.ErrInvoiceNotFound
			}
			return err
		}

		paidAmount, err := s.payments.SumByInvoice(txCtx, invoiceID)
		if err != nil {
			return err
		}

		balance := ledger.Balance(invoice.Total, paidAmount)
		status := ledger.DeriveStatus(invoice.Status, paidAmount, balance, invoice.DueDate, s.now())

		return s.invoices.UpdateReconciliation(txCtx, invoiceID, paidAmount, balance, status)
	})
}

// MarkSent performs the explicit draft to sent transition.
func (s *InvoiceService) MarkSent(ctx context.Context, businessID, id string) (*models.Invoice, error) {
	invoice, err := s.GetInvoice(ctx, businessID, id)
	if err != nil {
		return nil, err
	}
	if invoice.Status != models.InvoiceStatusDraft {
		return nil, utils.ErrInvalidStatus
	}

	if err := s.invoices.UpdateStatus(ctx, id, models.InvoiceStatusSent); err != nil {
		return nil, err
	}

	s.decreaseStockForItems(ctx, invoice.Items)

	return s.invoices.GetByID(ctx, id)
}

// Cancel is the only way an invoice becomes cancelled, and from there the
// derivation never moves it again.
func (s *InvoiceService) Cancel(ctx context.Context, businessID, id string) (*models.Invoice, error) {
	invoice, err := s.GetInvoice(ctx, businessID, id)
	if err != nil {
		return nil, err
	}
	if invoice.Status == models.InvoiceStatusCancelled {
		return invoice, nil
	}

	if err := s.invoices.UpdateStatus(ctx, id, models.InvoiceStatusCancelled); err != nil {
		return nil, err
	}
	return s.invoices.GetByID(ctx, id)
}

func (s *InvoiceService) DeleteInvoice(ctx context.Context, businessID, id string) error {
	if _, err := s.GetInvoice(ctx, businessID, id); err != nil {
		return err
	}
	return s.invoices.Delete(ctx, id)
}

// DuplicateInvoice creates a fresh draft from an existing invoice's item
// snapshots, issued today.
func (s *InvoiceService) DuplicateInvoice(ctx context.Context, userID, id string) (*models.Invoice, error) {
	business, err := s.businesses.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrBusinessNotFound
		}
		return nil, err
	}

	source, err := s.GetInvoice(ctx, business.ID, id)
	if err != nil {
		return nil, err
	}

	req := &models.CreateInvoiceRequest{
		CustomerID:  source.CustomerID,
		IssueDate:   s.now(),
		DueDate:     source.DueDate,
		Status:      models.InvoiceStatusDraft,
		Currency:    source.Currency,
		Notes:       source.Notes,
		Terms:       source.Terms,
		ShippingFee: source.ShippingFee,
		ExtraFees:   source.ExtraFees,
	}
	for _, item := range source.Items {
		qty := item.Quantity
		price := item.UnitPrice
		rate := item.TaxRate
		discount := item.Discount
		req.Items = append(req.Items, models.InvoiceItemInput{
			ProductID:   item.ProductID,
			Name:        item.Name,
			Description: item.Description,
			Quantity:    &qty,
			UnitPrice:   &price,
			TaxRate:     &rate,
			Discount:    &discount,
		})
	}

	return s.CreateInvoice(ctx, userID, req)
}

// buildItems turns API inputs into stored snapshots. Missing quantity
// defaults to 1 and other numeric fields to 0; when an input references a
// catalog product without overriding name, price or tax rate, the current
// catalog values are copied in. After that the item is frozen: later
// catalog changes never touch it.
func (s *InvoiceService) buildItems(ctx context.Context, inputs []models.InvoiceItemInput) ([]*models.InvoiceItem, error) {
	items := make([]*models.InvoiceItem, 0, len(inputs))

	for i, in := range inputs {
		item := &models.InvoiceItem{
			ProductID:   in.ProductID,
			Name:        in.Name,
			Description: in.Description,
			Quantity:    1,
			SortOrder:   i,
		}
		if in.Quantity != nil {
			item.Quantity = *in.Quantity
		}
		if in.UnitPrice != nil {
			item.UnitPrice = *in.UnitPrice
		}
		if in.TaxRate != nil {
			item.TaxRate = *in.TaxRate
		}
		if in.Discount != nil {
			item.Discount = *in.Discount
		}

		if in.ProductID != nil {
			product, err := s.products.GetByID(ctx, *in.ProductID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, utils.ErrProductNotFound
				}
				return nil, err
			}
			if item.Name == "" {
				item.Name = product.Name
			}
			if in.UnitPrice == nil {
				item.UnitPrice = product.Price
			}
			if in.TaxRate == nil && product.Taxable {
				item.TaxRate = product.TaxRate
			}
		}

		item.LineTotal = ledger.LineTotal(item.Quantity, item.UnitPrice, item.Discount, item.TaxRate)
		items = append(items, item)
	}

	return items, nil
}

func (s *InvoiceService) nextInvoiceNumber(ctx context.Context, business *models.Business) (string, error) {
	prefix := business.InvoicePrefix
	if prefix == "" {
		prefix = "INV"
	}

	if business.AutoNumbering {
		n, err := s.businesses.NextInvoiceNumber(ctx, business.ID)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s-%04d", prefix, n), nil
	}

	count, err := s.invoices.CountByBusiness(ctx, business.ID)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%04d", prefix, count+1), nil
}

func (s *InvoiceService) decreaseStockForItems(ctx context.Context, items []*models.InvoiceItem) {
	for _, item := range items {
		if item.ProductID == nil {
			continue
		}
		if err := s.products.DecreaseStock(ctx, *item.ProductID, item.Quantity); err != nil {
			s.logger.Warn(ctx, "stock decrease failed", map[string]interface{}{
				"product_id": *item.ProductID,
				"quantity":   item.Quantity,
				"error":      err.Error(),
			})
		}
	}
}

func lineInputs(items []*models.InvoiceItem) []ledger.LineInput {
	inputs := make([]ledger.LineInput, len(items))
	for i, item := range items {
		inputs[i] = ledger.LineInput{
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Discount:  item.Discount,
			TaxRate:   item.TaxRate,
		}
	}
	return inputs
}

func invoiceHeaderFields(req *models.UpdateInvoiceRequest) map[string]interface{} {
	fields := make(map[string]interface{})
	if req.CustomerID != nil {
		fields["customer_id"] = *req.CustomerID
	}
	if req.IssueDate != nil {
		fields["issue_date"] = *req.IssueDate
	}
	if req.DueDate != nil {
		fields["due_date"] = *req.DueDate
	}
	if req.Currency != nil {
		fields["currency"] = *req.Currency
	}
	if req.Notes != nil {
		fields["notes"] = *req.Notes
	}
	if req.Terms != nil {
		fields["terms"] = *req.Terms
	}
	return fields
}
