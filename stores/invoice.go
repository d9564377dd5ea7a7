package stores

import (
	"context"
	"time"

	"github.com/invomaker/invomaker/ledger"
	"github.com/invomaker/invomaker/models"
	"gorm.io/gorm"
)

type InvoiceStore struct {
	BaseStore
}

func NewInvoiceStore(db *gorm.DB) *InvoiceStore {
	return &InvoiceStore{BaseStore{db: db}}
}

func (s *InvoiceStore) Create(ctx context.Context, invoice *models.Invoice, items []*models.InvoiceItem) error {
	return s.getDB(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(invoice).Error; err != nil {
			return err
		}
		for _, item := range items {
			item.InvoiceID = invoice.ID
		}
		if len(items) > 0 {
			if err := tx.Create(items).Error; err != nil {
				return err
			}
		}
		invoice.Items = items
		return nil
	})
}

func (s *InvoiceStore) GetByID(ctx context.Context, id string) (*models.Invoice, error) {
	var invoice models.Invoice
	err := s.getDB(ctx).
		Preload("Customer").
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("invoice_items.sort_order ASC")
		}).
		Preload("Payments", func(db *gorm.DB) *gorm.DB {
			return db.Order("payments.payment_date DESC")
		}).
		First(&invoice, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// Exists reports whether the invoice row is present without loading
// relations. Payment writes use it to refuse orphaned payments.
func (s *InvoiceStore) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := s.getDB(ctx).Model(&models.Invoice{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *InvoiceStore) List(ctx context.Context, businessID string, req *models.ListInvoicesRequest) ([]*models.Invoice, error) {
	var invoices []*models.Invoice

	query := s.getDB(ctx).
		Preload("Customer").
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("invoice_items.sort_order ASC")
		}).
		Where("business_id = ?", businessID)

	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}
	if req.CustomerID != "" {
		query = query.Where("customer_id = ?", req.CustomerID)
	}
	if req.FromDate != "" {
		query = query.Where("issue_date >= ?", req.FromDate)
	}
	if req.ToDate != "" {
		query = query.Where("issue_date <= ?", req.ToDate)
	}
	if req.Limit > 0 {
		query = query.Limit(req.Limit)
	}
	if req.Offset > 0 {
		query = query.Offset(req.Offset)
	}

	if err := query.Order("created_at DESC").Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

func (s *InvoiceStore) ListByCustomer(ctx context.Context, customerID string) ([]*models.Invoice, error) {
	var invoices []*models.Invoice
	err := s.getDB(ctx).
		Where("customer_id = ?", customerID).
		Order("issue_date DESC").
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

// ReplaceItems swaps the full item set of an invoice. Items are snapshots
// owned by the invoice, so edits replace rather than patch.
func (s *InvoiceStore) ReplaceItems(ctx context.Context, invoiceID string, items []*models.InvoiceItem) error {
	db := s.getDB(ctx)
	if err := db.Delete(&models.InvoiceItem{}, "invoice_id = ?", invoiceID).Error; err != nil {
		return err
	}
	for _, item := range items {
		item.InvoiceID = invoiceID
	}
	if len(items) == 0 {
		return nil
	}
	return db.Create(items).Error
}

// UpdateTotals persists the aggregate money fields in one UPDATE so no
// reader can observe a half-written set.
func (s *InvoiceStore) UpdateTotals(ctx context.Context, invoiceID string, totals ledger.Totals, balance float64) error {
	return s.getDB(ctx).Model(&models.Invoice{}).
		Where("id = ?", invoiceID).
		Updates(map[string]interface{}{
			"subtotal":       totals.Subtotal,
			"discount_total": totals.DiscountTotal,
			"tax_total":      totals.TaxTotal,
			"shipping_fee":   totals.ShippingFee,
			"extra_fees":     totals.ExtraFees,
			"total":          totals.Total,
			"balance":        balance,
		}).Error
}

// UpdateReconciliation writes paid_amount, balance and status together.
// A payment mutation is not complete until all three are committed.
func (s *InvoiceStore) UpdateReconciliation(ctx context.Context, invoiceID string, paidAmount, balance float64, status models.InvoiceStatus) error {
	return s.getDB(ctx).Model(&models.Invoice{}).
		Where("id = ?", invoiceID).
		Updates(map[string]interface{}{
			"paid_amount": paidAmount,
			"balance":     balance,
			"status":      status,
		}).Error
}

func (s *InvoiceStore) UpdateStatus(ctx context.Context, invoiceID string, status models.InvoiceStatus) error {
	return s.getDB(ctx).Model(&models.Invoice{}).
		Where("id = ?", invoiceID).
		Update("status", status).Error
}

func (s *InvoiceStore) UpdateFields(ctx context.Context, invoiceID string, fields map[string]interface{}) error {
	return s.getDB(ctx).Model(&models.Invoice{}).
		Where("id = ?", invoiceID).
		Updates(fields).Error
}

// Delete removes the invoice with its items and payments in one
// transaction; dependent payments never outlive their invoice.
func (s *InvoiceStore) Delete(ctx context.Context, id string) error {
	return s.getDB(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.Payment{}, "invoice_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.InvoiceItem{}, "invoice_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Invoice{}, "id = ?", id).Error
	})
}

func (s *InvoiceStore) CountByBusiness(ctx context.Context, businessID string) (int64, error) {
	var count int64
	err := s.getDB(ctx).Model(&models.Invoice{}).
		Where("business_id = ?", businessID).
		Count(&count).Error
	return count, err
}

func (s *InvoiceStore) CountCreatedBetween(ctx context.Context, businessID string, from, to time.Time) (int64, error) {
	var count int64
	err := s.getDB(ctx).Model(&models.Invoice{}).
		Where("business_id = ? AND created_at >= ? AND created_at <= ?", businessID, from, to).
		Count(&count).Error
	return count, err
}

// ListForReport loads the slim money columns used by report aggregation.
func (s *InvoiceStore) ListForReport(ctx context.Context, businessID string, filters *models.ReportFilters) ([]*models.Invoice, error) {
	var invoices []*models.Invoice

	query := s.getDB(ctx).
		Select("id", "status", "due_date", "issue_date", "total", "paid_amount", "balance").
		Where("business_id = ?", businessID)

	if filters != nil {
		if filters.Status != "" {
			query = query.Where("status = ?", filters.Status)
		}
		if filters.CustomerID != "" {
			query = query.Where("customer_id = ?", filters.CustomerID)
		}
		if filters.FromDate != "" {
			query = query.Where("issue_date >= ?", filters.FromDate)
		}
		if filters.ToDate != "" {
			query = query.Where("issue_date <= ?", filters.ToDate)
		}
	}

	if err := query.Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}
