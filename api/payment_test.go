package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/invomaker/invomaker/ledger"
	"github.com/invomaker/invomaker/models"
	"github.com/invomaker/invomaker/services"
	"github.com/invomaker/invomaker/utils"
	"gorm.io/gorm"
)

type memBusinessStore struct {
	business *models.Business
}

func (s *memBusinessStore) Create(ctx context.Context, business *models.Business) error { return nil }
func (s *memBusinessStore) Update(ctx context.Context, business *models.Business) error { return nil }

func (s *memBusinessStore) GetByID(ctx context.Context, id string) (*models.Business, error) {
	if s.business != nil && s.business.ID == id {
		return s.business, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *memBusinessStore) GetByUserID(ctx context.Context, userID string) (*models.Business, error) {
	if s.business != nil && s.business.UserID == userID {
		return s.business, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type memPaymentStore struct {
	mu       sync.Mutex
	payments map[string]*models.Payment
}

func (s *memPaymentStore) Create(ctx context.Context, payment *models.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payments[payment.ID] = payment
	return nil
}

func (s *memPaymentStore) Update(ctx context.Context, payment *models.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payments[payment.ID] = payment
	return nil
}

func (s *memPaymentStore) GetByID(ctx context.Context, id string) (*models.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.payments[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *memPaymentStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.payments, id)
	return nil
}

func (s *memPaymentStore) ListByInvoice(ctx context.Context, invoiceID string) ([]*models.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Payment
	for _, p := range s.payments {
		if p.InvoiceID == invoiceID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *memPaymentStore) SumByInvoice(ctx context.Context, invoiceID string) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total float64
	for _, p := range s.payments {
		if p.InvoiceID == invoiceID {
			total += p.Amount
		}
	}
	return total, nil
}

type memInvoiceStore struct {
	mu      sync.Mutex
	invoice *models.Invoice
}

func (s *memInvoiceStore) GetByID(ctx context.Context, id string) (*models.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.invoice != nil && s.invoice.ID == id {
		copied := *s.invoice
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *memInvoiceStore) UpdateReconciliation(ctx context.Context, invoiceID string, paidAmount, balance float64, status models.InvoiceStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invoice.PaidAmount = paidAmount
	s.invoice.Balance = balance
	s.invoice.Status = status
	return nil
}

func (s *memInvoiceStore) WithTransaction(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

func (s *memInvoiceStore) ListForReport(ctx context.Context, businessID string, filters *models.ReportFilters) ([]*models.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.invoice != nil && s.invoice.BusinessID == businessID {
		copied := *s.invoice
		return []*models.Invoice{&copied}, nil
	}
	return nil, nil
}

type memCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string][]byte)}
}

func (c *memCache) GetJSON(ctx context.Context, key string, out interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, out)
}

func (c *memCache) SetJSON(ctx context.Context, key string, value interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[key] = raw
	return nil
}

func (c *memCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

func (c *memCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Deleting a payment moves money back onto the invoice, so the cached
// dashboard totals must be evicted the same way adds and updates do.
func TestPaymentDeleteEvictsReportCache(t *testing.T) {
	invoices := &memInvoiceStore{invoice: &models.Invoice{
		ID:         "inv-1",
		BusinessID: "biz-1",
		Status:     models.InvoiceStatusPaid,
		Total:      297,
		PaidAmount: 297,
		DueDate:    time.Now().AddDate(0, 0, 30),
	}}
	payments := &memPaymentStore{payments: map[string]*models.Payment{
		"pay-1": {ID: "pay-1", InvoiceID: "inv-1", Amount: 297, PaymentDate: time.Now()},
	}}
	businesses := &memBusinessStore{business: &models.Business{ID: "biz-1", UserID: "user-1"}}
	cache := newMemCache()

	paymentService := services.NewPaymentService(payments, invoices, ledger.NewKeyedLock())
	businessService := services.NewBusinessService(businesses)
	reportService := services.NewReportService(invoices, cache)
	handler := CreatePaymentHandler(paymentService, businessService, reportService)

	// Warm the dashboard cache.
	totals, err := reportService.GetTotals(context.Background(), "biz-1", nil)
	if err != nil {
		t.Fatalf("GetTotals: %v", err)
	}
	if totals.TotalPaid != 297 {
		t.Fatalf("TotalPaid = %v, want 297", totals.TotalPaid)
	}
	if cache.len() != 1 {
		t.Fatalf("cache entries = %d, want 1", cache.len())
	}

	req := httptest.NewRequest("DELETE", "/api/payments/pay-1", nil)
	req = req.WithContext(utils.WithUserID(req.Context(), "user-1"))
	req = mux.SetURLVars(req, map[string]string{"id": "pay-1"})
	w := httptest.NewRecorder()

	handler.HandleDelete(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNoContent)
	}
	if cache.len() != 0 {
		t.Errorf("cache entries after delete = %d, want 0", cache.len())
	}

	// A fresh read reflects the reversed payment, not the stale total.
	totals, err = reportService.GetTotals(context.Background(), "biz-1", nil)
	if err != nil {
		t.Fatalf("GetTotals: %v", err)
	}
	if totals.TotalPaid != 0 {
		t.Errorf("TotalPaid after delete = %v, want 0", totals.TotalPaid)
	}
}
