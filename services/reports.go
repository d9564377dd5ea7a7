package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/invomaker/invomaker/models"
	"github.com/invomaker/invomaker/utils"
)

type reportInvoiceStore interface {
	ListForReport(ctx context.Context, businessID string, filters *models.ReportFilters) ([]*models.Invoice, error)
}

type reportCache interface {
	GetJSON(ctx context.Context, key string, out interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}) error
	Delete(ctx context.Context, key string) error
}

// ReportService aggregates invoice totals for dashboards. Results are
// cached per business and filter set; any invoice or payment write
// should invalidate through InvalidateReports.
type ReportService struct {
	invoices reportInvoiceStore
	cache    reportCache
	logger   *utils.Logger
	now      func() time.Time
}

func NewReportService(invoices reportInvoiceStore, cache reportCache) *ReportService {
	return &ReportService{
		invoices: invoices,
		cache:    cache,
		logger:   utils.NewLogger("report-service"),
		now:      time.Now,
	}
}

func (s *ReportService) GetTotals(ctx context.Context, businessID string, filters *models.ReportFilters) (*models.ReportTotals, error) {
	if filters == nil {
		filters = &models.ReportFilters{}
	}

	key := s.cacheKey(businessID, filters)
	if s.cache != nil {
		var cached models.ReportTotals
		hit, err := s.cache.GetJSON(ctx, key, &cached)
		if err != nil {
			s.logger.Warn(ctx, "Report cache read failed", map[string]interface{}{"error": err.Error()})
		} else if hit {
			return &cached, nil
		}
	}

	invoices, err := s.invoices.ListForReport(ctx, businessID, filters)
	if err != nil {
		return nil, err
	}

	totals := s.aggregate(invoices)

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, totals); err != nil {
			s.logger.Warn(ctx, "Report cache write failed", map[string]interface{}{"error": err.Error()})
		}
	}

	return totals, nil
}

func (s *ReportService) InvalidateReports(ctx context.Context, businessID string) {
	if s.cache == nil {
		return
	}
	// Only the unfiltered dashboard key is evicted eagerly; filtered
	// variants age out through the cache TTL.
	key := s.cacheKey(businessID, &models.ReportFilters{})
	if err := s.cache.Delete(ctx, key); err != nil {
		s.logger.Warn(ctx, "Report cache invalidation failed", map[string]interface{}{"error": err.Error()})
	}
}

func (s *ReportService) aggregate(invoices []*models.Invoice) *models.ReportTotals {
	totals := &models.ReportTotals{}
	today := s.now().Truncate(24 * time.Hour)

	for _, invoice := range invoices {
		if invoice.Status == models.InvoiceStatusCancelled {
			continue
		}
		totals.InvoiceCount++
		totals.TotalInvoiced += invoice.Total
		totals.TotalPaid += invoice.PaidAmount
		totals.TotalOutstanding += invoice.Balance

		if invoice.Status == models.InvoiceStatusPaid {
			totals.PaidCount++
			continue
		}
		if !invoice.DueDate.IsZero() && invoice.DueDate.Before(today) {
			totals.OverdueCount++
		}
	}
	return totals
}

func (s *ReportService) cacheKey(businessID string, filters *models.ReportFilters) string {
	raw := fmt.Sprintf("%s|%s|%s|%s|%s",
		businessID, filters.Status, filters.CustomerID, filters.FromDate, filters.ToDate)
	sum := sha256.Sum256([]byte(raw))
	return "reports:totals:" + hex.EncodeToString(sum[:8])
}
