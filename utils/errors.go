package utils

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

func NewAPIError(code int, message string) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
	}
}

func NewAPIErrorWithDetails(code int, message, details string) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

var (
	ErrInvalidRequest     = NewAPIError(http.StatusBadRequest, "Invalid request")
	ErrUnauthorized       = NewAPIError(http.StatusUnauthorized, "Unauthorized")
	ErrForbidden          = NewAPIError(http.StatusForbidden, "Forbidden")
	ErrNotFound           = NewAPIError(http.StatusNotFound, "Resource not found")
	ErrConflict           = NewAPIError(http.StatusConflict, "Resource conflict")
	ErrTooManyRequests    = NewAPIError(http.StatusTooManyRequests, "Too many requests")
	ErrInternalServer     = NewAPIError(http.StatusInternalServerError, "Internal server error")
	ErrServiceUnavailable = NewAPIError(http.StatusServiceUnavailable, "Service unavailable")
)

var (
	ErrInvalidAmount        = NewAPIError(http.StatusBadRequest, "Payment amount must be positive")
	ErrInvalidPaymentMethod = NewAPIError(http.StatusBadRequest, "Invalid payment method")
	ErrInvalidStatus        = NewAPIError(http.StatusBadRequest, "Invalid invoice status")
	ErrBusinessNotFound     = NewAPIError(http.StatusNotFound, "Business profile not found")
	ErrCustomerNotFound     = NewAPIError(http.StatusNotFound, "Customer not found")
	ErrProductNotFound      = NewAPIError(http.StatusNotFound, "Product not found")
	ErrInvoiceNotFound      = NewAPIError(http.StatusNotFound, "Invoice not found")
	ErrPaymentNotFound      = NewAPIError(http.StatusNotFound, "Payment not found")
)

// ErrRecalcInFlight is returned when a monetary recomputation is
// requested for an invoice that already has one running. The caller
// should retry; totals are never computed concurrently for one invoice.
var ErrRecalcInFlight = NewAPIError(http.StatusConflict, "Invoice recalculation already in progress")

var (
	ErrUsageLimitReached = NewAPIError(http.StatusPaymentRequired, "Plan usage limit reached")
	ErrAIUnavailable     = NewAPIError(http.StatusServiceUnavailable, "AI assistant unavailable")
	ErrAIBadResponse     = NewAPIError(http.StatusBadGateway, "AI assistant returned an unparseable response")
	ErrEmailSendFailed   = NewAPIError(http.StatusBadGateway, "Email delivery failed")
)

var (
	ErrDatabaseQuery       = NewAPIError(http.StatusInternalServerError, "Database query failed")
	ErrDatabaseTransaction = NewAPIError(http.StatusInternalServerError, "Database transaction failed")
	ErrInvalidSignature    = NewAPIError(http.StatusUnauthorized, "Invalid signature")
	ErrTokenExpired        = NewAPIError(http.StatusUnauthorized, "Token expired")
	ErrInvalidToken        = NewAPIError(http.StatusUnauthorized, "Invalid token")
	ErrRateLimitExceeded   = NewAPIError(http.StatusTooManyRequests, "Rate limit exceeded")
)

func WrapError(err error, message string) error {
	return fmt.Errorf("%s: %w", message, err)
}

func GetHTTPStatusFromError(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}

	errorStr := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errorStr, "not found"):
		return http.StatusNotFound
	case strings.Contains(errorStr, "unauthorized"):
		return http.StatusUnauthorized
	case strings.Contains(errorStr, "forbidden"):
		return http.StatusForbidden
	case strings.Contains(errorStr, "timeout"):
		return http.StatusGatewayTimeout
	case strings.Contains(errorStr, "rate limit"):
		return http.StatusTooManyRequests
	}

	return http.StatusInternalServerError
}

func LogError(ctx context.Context, err error, message string, fields map[string]interface{}) {
	if fields == nil {
		fields = make(map[string]interface{})
	}

	fields["error"] = err.Error()
	Error(ctx, message, fields)
}
