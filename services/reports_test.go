package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/invomaker/invomaker/models"
)

type fakeReportCache struct {
	data map[string][]byte
	hits int
}

func newFakeReportCache() *fakeReportCache {
	return &fakeReportCache{data: make(map[string][]byte)}
}

func (f *fakeReportCache) GetJSON(ctx context.Context, key string, out interface{}) (bool, error) {
	raw, ok := f.data[key]
	if !ok {
		return false, nil
	}
	f.hits++
	return true, json.Unmarshal(raw, out)
}

func (f *fakeReportCache) SetJSON(ctx context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.data[key] = raw
	return nil
}

func (f *fakeReportCache) Delete(ctx context.Context, key string) error {
	delete(f.data, key)
	return nil
}

type staticReportStore struct {
	invoices []*models.Invoice
	calls    int
}

func (s *staticReportStore) ListForReport(ctx context.Context, businessID string, filters *models.ReportFilters) ([]*models.Invoice, error) {
	s.calls++
	return s.invoices, nil
}

func reportInvoices() []*models.Invoice {
	yesterday := time.Now().AddDate(0, 0, -1)
	nextMonth := time.Now().AddDate(0, 1, 0)
	return []*models.Invoice{
		{Status: models.InvoiceStatusPaid, Total: 100, PaidAmount: 100, Balance: 0, DueDate: yesterday},
		{Status: models.InvoiceStatusPartial, Total: 200, PaidAmount: 50, Balance: 150, DueDate: nextMonth},
		{Status: models.InvoiceStatusSent, Total: 300, PaidAmount: 0, Balance: 300, DueDate: yesterday},
		{Status: models.InvoiceStatusCancelled, Total: 999, PaidAmount: 0, Balance: 999, DueDate: yesterday},
	}
}

func TestGetTotalsAggregates(t *testing.T) {
	store := &staticReportStore{invoices: reportInvoices()}
	svc := NewReportService(store, newFakeReportCache())

	totals, err := svc.GetTotals(context.Background(), "biz-1", nil)
	if err != nil {
		t.Fatalf("GetTotals: %v", err)
	}

	if got, want := totals.InvoiceCount, 3; got != want {
		t.Errorf("InvoiceCount = %d, want %d; cancelled excluded", got, want)
	}
	if got, want := totals.TotalInvoiced, 600.0; got != want {
		t.Errorf("TotalInvoiced = %v, want %v", got, want)
	}
	if got, want := totals.TotalPaid, 150.0; got != want {
		t.Errorf("TotalPaid = %v, want %v", got, want)
	}
	if got, want := totals.TotalOutstanding, 450.0; got != want {
		t.Errorf("TotalOutstanding = %v, want %v", got, want)
	}
	if got, want := totals.PaidCount, 1; got != want {
		t.Errorf("PaidCount = %d, want %d", got, want)
	}
	// The sent invoice is past due; the paid one is not counted overdue.
	if got, want := totals.OverdueCount, 1; got != want {
		t.Errorf("OverdueCount = %d, want %d", got, want)
	}
}

func TestGetTotalsUsesCache(t *testing.T) {
	store := &staticReportStore{invoices: reportInvoices()}
	cache := newFakeReportCache()
	svc := NewReportService(store, cache)

	if _, err := svc.GetTotals(context.Background(), "biz-1", nil); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.GetTotals(context.Background(), "biz-1", nil); err != nil {
		t.Fatal(err)
	}

	if store.calls != 1 {
		t.Errorf("store queried %d times, want 1 (second read from cache)", store.calls)
	}
	if cache.hits != 1 {
		t.Errorf("cache hits = %d, want 1", cache.hits)
	}
}

func TestInvalidateReportsEvicts(t *testing.T) {
	store := &staticReportStore{invoices: reportInvoices()}
	cache := newFakeReportCache()
	svc := NewReportService(store, cache)

	if _, err := svc.GetTotals(context.Background(), "biz-1", nil); err != nil {
		t.Fatal(err)
	}
	svc.InvalidateReports(context.Background(), "biz-1")
	if _, err := svc.GetTotals(context.Background(), "biz-1", nil); err != nil {
		t.Fatal(err)
	}

	if store.calls != 2 {
		t.Errorf("store queried %d times, want 2 after invalidation", store.calls)
	}
}

func TestCacheKeyVariesByFilters(t *testing.T) {
	svc := NewReportService(&staticReportStore{}, nil)

	base := svc.cacheKey("biz-1", &models.ReportFilters{})
	filtered := svc.cacheKey("biz-1", &models.ReportFilters{Status: "paid"})
	other := svc.cacheKey("biz-2", &models.ReportFilters{})

	if base == filtered {
		t.Error("filters must change the cache key")
	}
	if base == other {
		t.Error("business must change the cache key")
	}
}
