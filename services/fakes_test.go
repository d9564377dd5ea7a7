package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/invomaker/invomaker/ledger"
	"github.com/invomaker/invomaker/models"
	"gorm.io/gorm"
)

type fakeInvoiceStore struct {
	mu       sync.Mutex
	seq      int
	invoices map[string]*models.Invoice
	items    map[string][]*models.InvoiceItem
}

func newFakeInvoiceStore() *fakeInvoiceStore {
	return &fakeInvoiceStore{
		invoices: make(map[string]*models.Invoice),
		items:    make(map[string][]*models.InvoiceItem),
	}
}

func (f *fakeInvoiceStore) Create(ctx context.Context, invoice *models.Invoice, items []*models.InvoiceItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	invoice.ID = fmt.Sprintf("inv-%d", f.seq)
	for _, item := range items {
		item.InvoiceID = invoice.ID
	}
	f.invoices[invoice.ID] = invoice
	f.items[invoice.ID] = items
	return nil
}

func (f *fakeInvoiceStore) GetByID(ctx context.Context, id string) (*models.Invoice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	invoice, ok := f.invoices[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *invoice
	copied.Items = f.items[id]
	return &copied, nil
}

func (f *fakeInvoiceStore) List(ctx context.Context, businessID string, req *models.ListInvoicesRequest) ([]*models.Invoice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Invoice
	for _, invoice := range f.invoices {
		if invoice.BusinessID == businessID {
			out = append(out, invoice)
		}
	}
	return out, nil
}

func (f *fakeInvoiceStore) ListByCustomer(ctx context.Context, customerID string) ([]*models.Invoice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Invoice
	for _, invoice := range f.invoices {
		if invoice.CustomerID != nil && *invoice.CustomerID == customerID {
			out = append(out, invoice)
		}
	}
	return out, nil
}

func (f *fakeInvoiceStore) ReplaceItems(ctx context.Context, invoiceID string, items []*models.InvoiceItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, item := range items {
		item.InvoiceID = invoiceID
	}
	f.items[invoiceID] = items
	return nil
}

func (f *fakeInvoiceStore) UpdateTotals(ctx context.Context, invoiceID string, totals ledger.Totals, balance float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	invoice, ok := f.invoices[invoiceID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	invoice.Subtotal = totals.Subtotal
	invoice.DiscountTotal = totals.DiscountTotal
	invoice.TaxTotal = totals.TaxTotal
	invoice.ShippingFee = totals.ShippingFee
	invoice.ExtraFees = totals.ExtraFees
	invoice.Total = totals.Total
	invoice.Balance = balance
	return nil
}

func (f *fakeInvoiceStore) UpdateReconciliation(ctx context.Context, invoiceID string, paidAmount, balance float64, status models.InvoiceStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	invoice, ok := f.invoices[invoiceID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	invoice.PaidAmount = paidAmount
	invoice.Balance = balance
	invoice.Status = status
	return nil
}

func (f *fakeInvoiceStore) UpdateStatus(ctx context.Context, invoiceID string, status models.InvoiceStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	invoice, ok := f.invoices[invoiceID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	invoice.Status = status
	return nil
}

func (f *fakeInvoiceStore) UpdateFields(ctx context.Context, invoiceID string, fields map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	invoice, ok := f.invoices[invoiceID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if v, ok := fields["notes"]; ok {
		invoice.Notes = v.(string)
	}
	if v, ok := fields["terms"]; ok {
		invoice.Terms = v.(string)
	}
	if v, ok := fields["currency"]; ok {
		invoice.Currency = v.(string)
	}
	if v, ok := fields["due_date"]; ok {
		invoice.DueDate = v.(time.Time)
	}
	if v, ok := fields["issue_date"]; ok {
		invoice.IssueDate = v.(time.Time)
	}
	if v, ok := fields["customer_id"]; ok {
		id := v.(string)
		invoice.CustomerID = &id
	}
	return nil
}

func (f *fakeInvoiceStore) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.invoices, id)
	delete(f.items, id)
	return nil
}

func (f *fakeInvoiceStore) CountByBusiness(ctx context.Context, businessID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, invoice := range f.invoices {
		if invoice.BusinessID == businessID {
			n++
		}
	}
	return n, nil
}

func (f *fakeInvoiceStore) WithTransaction(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

type fakePaymentStore struct {
	mu       sync.Mutex
	seq      int
	payments map[string]*models.Payment
}

func newFakePaymentStore() *fakePaymentStore {
	return &fakePaymentStore{payments: make(map[string]*models.Payment)}
}

func (f *fakePaymentStore) Create(ctx context.Context, payment *models.Payment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	payment.ID = fmt.Sprintf("pay-%d", f.seq)
	copied := *payment
	f.payments[payment.ID] = &copied
	return nil
}

func (f *fakePaymentStore) Update(ctx context.Context, payment *models.Payment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.payments[payment.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	copied := *payment
	f.payments[payment.ID] = &copied
	return nil
}

func (f *fakePaymentStore) GetByID(ctx context.Context, id string) (*models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	payment, ok := f.payments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *payment
	return &copied, nil
}

func (f *fakePaymentStore) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.payments, id)
	return nil
}

func (f *fakePaymentStore) ListByInvoice(ctx context.Context, invoiceID string) ([]*models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Payment
	for _, payment := range f.payments {
		if payment.InvoiceID == invoiceID {
			out = append(out, payment)
		}
	}
	return out, nil
}

func (f *fakePaymentStore) SumByInvoice(ctx context.Context, invoiceID string) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var sum float64
	for _, payment := range f.payments {
		if payment.InvoiceID == invoiceID {
			sum += payment.Amount
		}
	}
	return sum, nil
}

type fakeBusinessStore struct {
	mu         sync.Mutex
	businesses map[string]*models.Business
}

func newFakeBusinessStore(businesses ...*models.Business) *fakeBusinessStore {
	f := &fakeBusinessStore{businesses: make(map[string]*models.Business)}
	for _, b := range businesses {
		f.businesses[b.UserID] = b
	}
	return f
}

func (f *fakeBusinessStore) Create(ctx context.Context, business *models.Business) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if business.ID == "" {
		business.ID = "biz-" + business.UserID
	}
	f.businesses[business.UserID] = business
	return nil
}

func (f *fakeBusinessStore) Update(ctx context.Context, business *models.Business) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.businesses[business.UserID] = business
	return nil
}

func (f *fakeBusinessStore) GetByID(ctx context.Context, id string) (*models.Business, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.businesses {
		if b.ID == id {
			return b, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeBusinessStore) GetByUserID(ctx context.Context, userID string) (*models.Business, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	business, ok := f.businesses[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return business, nil
}

func (f *fakeBusinessStore) NextInvoiceNumber(ctx context.Context, businessID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.businesses {
		if b.ID == businessID {
			n := b.NextInvoiceNumber
			b.NextInvoiceNumber++
			return n, nil
		}
	}
	return 0, gorm.ErrRecordNotFound
}

type fakeProductStore struct {
	mu        sync.Mutex
	seq       int
	products  map[string]*models.Product
	decreased map[string]float64
}

func newFakeProductStore(products ...*models.Product) *fakeProductStore {
	f := &fakeProductStore{
		products:  make(map[string]*models.Product),
		decreased: make(map[string]float64),
	}
	for _, p := range products {
		f.products[p.ID] = p
	}
	return f
}

func (f *fakeProductStore) Create(ctx context.Context, product *models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	product.ID = fmt.Sprintf("prod-%d", f.seq)
	f.products[product.ID] = product
	return nil
}

func (f *fakeProductStore) Update(ctx context.Context, product *models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.products[product.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	f.products[product.ID] = product
	return nil
}

func (f *fakeProductStore) GetByBarcode(ctx context.Context, businessID, barcode string) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.products {
		if p.BusinessID == businessID && p.Barcode == barcode && p.Active {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeProductStore) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.products[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.products, id)
	return nil
}

func (f *fakeProductStore) List(ctx context.Context, businessID string, includeInactive bool, limit, offset int) ([]*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Product
	for _, p := range f.products {
		if p.BusinessID != businessID {
			continue
		}
		if !includeInactive && !p.Active {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeProductStore) Search(ctx context.Context, businessID, term string) ([]*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Product
	for _, p := range f.products {
		if p.BusinessID == businessID && strings.Contains(strings.ToLower(p.Name), strings.ToLower(term)) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProductStore) ListLowStock(ctx context.Context, businessID string, threshold float64) ([]*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Product
	for _, p := range f.products {
		if p.BusinessID == businessID && p.StockQty != nil && *p.StockQty <= threshold {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProductStore) GetByID(ctx context.Context, id string) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	product, ok := f.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return product, nil
}

func (f *fakeProductStore) DecreaseStock(ctx context.Context, productID string, quantity float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.decreased[productID] += quantity
	return nil
}
