package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/invomaker/invomaker/models"
	"github.com/invomaker/invomaker/services"
)

type PaymentHandler struct {
	paymentService  *services.PaymentService
	businessService *services.BusinessService
	reportService   *services.ReportService
}

func CreatePaymentHandler(paymentService *services.PaymentService, businessService *services.BusinessService, reportService *services.ReportService) *PaymentHandler {
	return &PaymentHandler{
		paymentService:  paymentService,
		businessService: businessService,
		reportService:   reportService,
	}
}

// businessID resolves the caller's business; every payment operation is
// scoped to it.
func (h *PaymentHandler) businessID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := requireUser(w, r)
	if !ok {
		return "", false
	}
	business, err := h.businessService.GetBusiness(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return "", false
	}
	return business.ID, true
}

func (h *PaymentHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	businessID, ok := h.businessID(w, r)
	if !ok {
		return
	}
	invoiceID := mux.Vars(r)["id"]

	var req models.CreatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}

	payment, err := h.paymentService.AddPayment(r.Context(), businessID, invoiceID, &req)
	if err != nil {
		writeError(w, err)
		return
	}

	h.reportService.InvalidateReports(r.Context(), businessID)
	writeJSON(w, http.StatusCreated, payment)
}

func (h *PaymentHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	businessID, ok := h.businessID(w, r)
	if !ok {
		return
	}
	invoiceID := mux.Vars(r)["id"]

	payments, err := h.paymentService.ListPayments(r.Context(), businessID, invoiceID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, models.PaymentListResponse{Payments: payments, Total: len(payments)})
}

func (h *PaymentHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	businessID, ok := h.businessID(w, r)
	if !ok {
		return
	}
	paymentID := mux.Vars(r)["id"]

	var req models.UpdatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}

	payment, err := h.paymentService.UpdatePayment(r.Context(), businessID, paymentID, &req)
	if err != nil {
		writeError(w, err)
		return
	}

	h.reportService.InvalidateReports(r.Context(), businessID)
	writeJSON(w, http.StatusOK, payment)
}

func (h *PaymentHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	businessID, ok := h.businessID(w, r)
	if !ok {
		return
	}
	paymentID := mux.Vars(r)["id"]

	if err := h.paymentService.DeletePayment(r.Context(), businessID, paymentID); err != nil {
		writeError(w, err)
		return
	}

	h.reportService.InvalidateReports(r.Context(), businessID)
	w.WriteHeader(http.StatusNoContent)
}
