package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/invomaker/invomaker/models"
	"github.com/invomaker/invomaker/services"
)

type AIHandler struct {
	aiService           *services.AIService
	customerService     *services.CustomerService
	productService      *services.ProductService
	businessService     *services.BusinessService
	subscriptionService *services.SubscriptionService
}

func CreateAIHandler(
	aiService *services.AIService,
	customerService *services.CustomerService,
	productService *services.ProductService,
	businessService *services.BusinessService,
	subscriptionService *services.SubscriptionService,
) *AIHandler {
	return &AIHandler{
		aiService:           aiService,
		customerService:     customerService,
		productService:      productService,
		businessService:     businessService,
		subscriptionService: subscriptionService,
	}
}

// HandleDraftInvoice builds an invoice draft from free text, matched
// against the caller's customers and catalog. Metered as an AI invoice.
func (h *AIHandler) HandleDraftInvoice(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.subscriptionService.RequireAIAllowance(r.Context(), userID, "ai_invoices"); err != nil {
		writeError(w, err)
		return
	}

	var req models.DraftInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}

	business, err := h.businessService.GetBusiness(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	customers, err := h.customerService.ListCustomers(r.Context(), business.ID, 0, 0)
	if err != nil {
		writeError(w, err)
		return
	}
	products, err := h.productService.ListProducts(r.Context(), business.ID, false, 0, 0)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := h.aiService.DraftInvoice(r.Context(), &req, customers.Customers, products.Products)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.subscriptionService.RecordAIUsage(r.Context(), userID, "ai_invoices"); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *AIHandler) HandleGenerateText(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateTextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}

	text, err := h.aiService.GenerateText(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, text)
}

func (h *AIHandler) HandleEmailDraft(w http.ResponseWriter, r *http.Request) {
	var req models.EmailDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}

	kind := r.URL.Query().Get("kind")
	if kind == "" {
		kind = "new"
	}

	draft, err := h.aiService.DraftEmail(r.Context(), &req, kind)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, draft)
}

func (h *AIHandler) HandleTranslate(w http.ResponseWriter, r *http.Request) {
	var req models.TranslateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}

	text, err := h.aiService.Translate(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, text)
}

// HandleParseReceipt extracts structured purchase data from OCR text.
// Metered as an AI invoice since the result typically seeds one.
func (h *AIHandler) HandleParseReceipt(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.subscriptionService.RequireAIAllowance(r.Context(), userID, "ai_invoices"); err != nil {
		writeError(w, err)
		return
	}

	var req models.ParseReceiptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}

	result, err := h.aiService.ParseReceipt(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.subscriptionService.RecordAIUsage(r.Context(), userID, "ai_invoices"); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// HandleCustomerSummary narrates one customer's billing relationship.
// Metered as an AI summary.
func (h *AIHandler) HandleCustomerSummary(w http.ResponseWriter, r *http.Request) {
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

	summary, err := h.customerService.GetCustomerSummary(r.Context(), business.ID, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	text, err := h.aiService.SummarizeCustomer(r.Context(), summary)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.subscriptionService.RecordAIUsage(r.Context(), userID, "summaries"); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, text)
}

// HandlePaymentRisk scores late payment risk deterministically; no
// model call and no metering.
func (h *AIHandler) HandlePaymentRisk(w http.ResponseWriter, r *http.Request) {
	var input models.PaymentRiskInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}

	writeJSON(w, http.StatusOK, services.PaymentRisk(input))
}
