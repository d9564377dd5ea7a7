package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/invomaker/invomaker/models"
	"github.com/invomaker/invomaker/services"
)

type CustomerHandler struct {
	customerService *services.CustomerService
	businessService *services.BusinessService
}

func CreateCustomerHandler(customerService *services.CustomerService, businessService *services.BusinessService) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
		businessService: businessService,
	}
}

func (h *CustomerHandler) businessID(w http.ResponseWriter, r *http.Request) (string, bool) {
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

func (h *CustomerHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	businessID, ok := h.businessID(w, r)
	if !ok {
		return
	}

	var req models.CreateCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}

	customer, err := h.customerService.CreateCustomer(r.Context(), businessID, &req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, customer)
}

func (h *CustomerHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	businessID, ok := h.businessID(w, r)
	if !ok {
		return
	}
	customerID := mux.Vars(r)["id"]

	customer, err := h.customerService.GetCustomer(r.Context(), businessID, customerID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, customer)
}

func (h *CustomerHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	businessID, ok := h.businessID(w, r)
	if !ok {
		return
	}
	customerID := mux.Vars(r)["id"]

	summary, err := h.customerService.GetCustomerSummary(r.Context(), businessID, customerID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

func (h *CustomerHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	businessID, ok := h.businessID(w, r)
	if !ok {
		return
	}
	customerID := mux.Vars(r)["id"]

	var req models.UpdateCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}

	customer, err := h.customerService.UpdateCustomer(r.Context(), businessID, customerID, &req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, customer)
}

func (h *CustomerHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	businessID, ok := h.businessID(w, r)
	if !ok {
		return
	}
	customerID := mux.Vars(r)["id"]

	if err := h.customerService.DeleteCustomer(r.Context(), businessID, customerID); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *CustomerHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	businessID, ok := h.businessID(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	if term := query.Get("q"); term != "" {
		resp, err := h.customerService.SearchCustomers(r.Context(), businessID, term)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
		return
	}

	limit, _ := strconv.Atoi(query.Get("limit"))
	offset, _ := strconv.Atoi(query.Get("offset"))

	resp, err := h.customerService.ListCustomers(r.Context(), businessID, clampLimit(limit), offset)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
