package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/invomaker/invomaker/services"
	"github.com/stripe/stripe-go/v82/webhook"
)

const maxWebhookBodyBytes = 1 << 16

type SubscriptionHandler struct {
	subscriptionService *services.SubscriptionService
	businessService     *services.BusinessService
	webhookSecret       string
}

func CreateSubscriptionHandler(subscriptionService *services.SubscriptionService, businessService *services.BusinessService, webhookSecret string) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptionService: subscriptionService,
		businessService:     businessService,
		webhookSecret:       webhookSecret,
	}
}

func (h *SubscriptionHandler) HandlePlans(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.subscriptionService.Plans())
}

func (h *SubscriptionHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	sub, err := h.subscriptionService.GetSubscription(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sub)
}

func (h *SubscriptionHandler) HandleUsage(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	business, err := h.businessService.GetBusiness(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	usage, err := h.subscriptionService.GetUsage(r.Context(), userID, business.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, usage)
}

type checkoutRequest struct {
	PlanID string `json:"plan_id"`
}

func (h *SubscriptionHandler) HandleCheckout(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}

	url, err := h.subscriptionService.CreateCheckoutSession(r.Context(), userID, req.PlanID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

// HandleStripeWebhook verifies the event signature and applies billing
// changes to stored entitlements.
func (h *SubscriptionHandler) HandleStripeWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Failed to read webhook payload"})
		return
	}

	signature := r.Header.Get("Stripe-Signature")
	if signature == "" {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "Missing Stripe signature"})
		return
	}

	event, err := webhook.ConstructEvent(payload, signature, h.webhookSecret)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "Invalid webhook signature"})
		return
	}

	if err := h.subscriptionService.HandleBillingEvent(r.Context(), event); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"received":   true,
		"event_type": string(event.Type),
	})
}
