package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/invomaker/invomaker/models"
	"github.com/invomaker/invomaker/pdf"
	"github.com/invomaker/invomaker/services"
	"github.com/invomaker/invomaker/utils"
)

type InvoiceHandler struct {
	invoiceService      *services.InvoiceService
	businessService     *services.BusinessService
	subscriptionService *services.SubscriptionService
	reportService       *services.ReportService
	emailService        *services.EmailService
	renderer            *pdf.Renderer
}

func CreateInvoiceHandler(
	invoiceService *services.InvoiceService,
	businessService *services.BusinessService,
	subscriptionService *services.SubscriptionService,
	reportService *services.ReportService,
	emailService *services.EmailService,
	renderer *pdf.Renderer,
) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService:      invoiceService,
		businessService:     businessService,
		subscriptionService: subscriptionService,
		reportService:       reportService,
		emailService:        emailService,
		renderer:            renderer,
	}
}

func (h *InvoiceHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	business, err := h.businessService.GetBusiness(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	check, err := h.subscriptionService.CheckInvoiceAllowance(r.Context(), userID, business.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	if !check.Allowed {
		writeJSON(w, http.StatusPaymentRequired, ErrorResponse{Error: check.Reason})
		return
	}

	var req models.CreateInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}

	invoice, err := h.invoiceService.CreateInvoice(r.Context(), userID, &req)
	if err != nil {
		writeError(w, err)
		return
	}

	h.reportService.InvalidateReports(r.Context(), invoice.BusinessID)
	writeJSON(w, http.StatusCreated, invoice)
}

// business resolves the caller's business profile; every by-id invoice
// operation is scoped to it.
func (h *InvoiceHandler) business(w http.ResponseWriter, r *http.Request) (*models.Business, bool) {
	userID, ok := requireUser(w, r)
	if !ok {
		return nil, false
	}
	business, err := h.businessService.GetBusiness(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	return business, true
}

func (h *InvoiceHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	business, ok := h.business(w, r)
	if !ok {
		return
	}

	invoice, err := h.invoiceService.GetInvoice(r.Context(), business.ID, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, invoice)
}

func (h *InvoiceHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	limit, _ := strconv.Atoi(query.Get("limit"))
	offset, _ := strconv.Atoi(query.Get("offset"))

	req := &models.ListInvoicesRequest{
		Status:     query.Get("status"),
		CustomerID: query.Get("customer_id"),
		FromDate:   query.Get("from_date"),
		ToDate:     query.Get("to_date"),
		Limit:      clampLimit(limit),
		Offset:     offset,
	}

	invoices, err := h.invoiceService.ListInvoices(r.Context(), userID, req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, models.InvoiceListResponse{Invoices: invoices, Total: len(invoices)})
}

func (h *InvoiceHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	business, ok := h.business(w, r)
	if !ok {
		return
	}

	var req models.UpdateInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}

	invoice, err := h.invoiceService.UpdateInvoice(r.Context(), business.ID, mux.Vars(r)["id"], &req)
	if err != nil {
		writeError(w, err)
		return
	}

	h.reportService.InvalidateReports(r.Context(), invoice.BusinessID)
	writeJSON(w, http.StatusOK, invoice)
}

func (h *InvoiceHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	business, ok := h.business(w, r)
	if !ok {
		return
	}
	id := mux.Vars(r)["id"]

	if err := h.invoiceService.DeleteInvoice(r.Context(), business.ID, id); err != nil {
		writeError(w, err)
		return
	}

	h.reportService.InvalidateReports(r.Context(), business.ID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *InvoiceHandler) HandleDuplicate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	invoice, err := h.invoiceService.DuplicateInvoice(r.Context(), userID, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	h.reportService.InvalidateReports(r.Context(), invoice.BusinessID)
	writeJSON(w, http.StatusCreated, invoice)
}

func (h *InvoiceHandler) HandleMarkSent(w http.ResponseWriter, r *http.Request) {
	business, ok := h.business(w, r)
	if !ok {
		return
	}

	invoice, err := h.invoiceService.MarkSent(r.Context(), business.ID, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	h.reportService.InvalidateReports(r.Context(), invoice.BusinessID)
	writeJSON(w, http.StatusOK, invoice)
}

func (h *InvoiceHandler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	business, ok := h.business(w, r)
	if !ok {
		return
	}

	invoice, err := h.invoiceService.Cancel(r.Context(), business.ID, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	h.reportService.InvalidateReports(r.Context(), invoice.BusinessID)
	writeJSON(w, http.StatusOK, invoice)
}

func (h *InvoiceHandler) HandleRecalculate(w http.ResponseWriter, r *http.Request) {
	business, ok := h.business(w, r)
	if !ok {
		return
	}
	id := mux.Vars(r)["id"]

	if err := h.invoiceService.Recalculate(r.Context(), business.ID, id); err != nil {
		writeError(w, err)
		return
	}

	invoice, err := h.invoiceService.GetInvoice(r.Context(), business.ID, id)
	if err != nil {
		writeError(w, err)
		return
	}

	h.reportService.InvalidateReports(r.Context(), invoice.BusinessID)
	writeJSON(w, http.StatusOK, invoice)
}

// HandleDownloadPDF streams the rendered invoice document.
func (h *InvoiceHandler) HandleDownloadPDF(w http.ResponseWriter, r *http.Request) {
	business, ok := h.business(w, r)
	if !ok {
		return
	}

	invoice, err := h.invoiceService.GetInvoice(r.Context(), business.ID, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	document, err := h.renderer.Render(invoice, business)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename="+pdf.FileName(invoice))
	w.Header().Set("Content-Length", strconv.Itoa(len(document)))
	w.Write(document)
}

type sendInvoiceRequest struct {
	To      string `json:"to,omitempty"`
	Subject string `json:"subject,omitempty"`
	Message string `json:"message,omitempty"`
}

// HandleSend renders the invoice and emails it, defaulting the recipient
// to the customer's stored address.
func (h *InvoiceHandler) HandleSend(w http.ResponseWriter, r *http.Request) {
	business, ok := h.business(w, r)
	if !ok {
		return
	}

	var req sendInvoiceRequest
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}

	invoice, err := h.invoiceService.GetInvoice(r.Context(), business.ID, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	to := req.To
	if to == "" && invoice.Customer != nil {
		to = invoice.Customer.Email
	}
	if to == "" {
		writeError(w, utils.ErrInvalidRequest)
		return
	}

	subject := req.Subject
	if subject == "" {
		subject = "Invoice " + invoice.InvoiceNumber + " from " + business.Name
	}
	message := req.Message
	if message == "" {
		message = "Please find your invoice attached. Thank you for your business."
	}

	document, err := h.renderer.Render(invoice, business)
	if err != nil {
		writeError(w, err)
		return
	}

	messageID, err := h.emailService.Send(r.Context(), &services.SendEmailRequest{
		To:      to,
		Subject: subject,
		Message: message,
		PDF:     document,
		PDFName: pdf.FileName(invoice),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message_id": messageID})
}
