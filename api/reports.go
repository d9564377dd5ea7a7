package api

import (
	"net/http"

	"github.com/invomaker/invomaker/models"
	"github.com/invomaker/invomaker/services"
)

type ReportHandler struct {
	reportService       *services.ReportService
	businessService     *services.BusinessService
	aiService           *services.AIService
	subscriptionService *services.SubscriptionService
}

func CreateReportHandler(
	reportService *services.ReportService,
	businessService *services.BusinessService,
	aiService *services.AIService,
	subscriptionService *services.SubscriptionService,
) *ReportHandler {
	return &ReportHandler{
		reportService:       reportService,
		businessService:     businessService,
		aiService:           aiService,
		subscriptionService: subscriptionService,
	}
}

func (h *ReportHandler) HandleTotals(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	business, err := h.businessService.GetBusiness(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	query := r.URL.Query()
	filters := &models.ReportFilters{
		Status:     query.Get("status"),
		CustomerID: query.Get("customer_id"),
		FromDate:   query.Get("from_date"),
		ToDate:     query.Get("to_date"),
	}

	totals, err := h.reportService.GetTotals(r.Context(), business.ID, filters)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, totals)
}

// HandleSummary narrates the dashboard totals. It meters against the
// AI summary quota.
func (h *ReportHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.subscriptionService.RequireAIAllowance(r.Context(), userID, "summaries"); err != nil {
		writeError(w, err)
		return
	}

	business, err := h.businessService.GetBusiness(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	totals, err := h.reportService.GetTotals(r.Context(), business.ID, nil)
	if err != nil {
		writeError(w, err)
		return
	}

	summary, err := h.aiService.SummarizeDashboard(r.Context(), totals)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.subscriptionService.RecordAIUsage(r.Context(), userID, "summaries"); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}
