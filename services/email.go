package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/invomaker/invomaker/config"
	"github.com/invomaker/invomaker/utils"
)

const resendEndpoint = "https://api.resend.com/emails"

type resendAttachment struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

type resendRequest struct {
	From        string             `json:"from"`
	To          []string           `json:"to"`
	Subject     string             `json:"subject"`
	HTML        string             `json:"html"`
	Attachments []resendAttachment `json:"attachments,omitempty"`
}

type resendResponse struct {
	ID string `json:"id"`
}

// SendEmailRequest carries one outbound message, with an optional PDF
// attachment for invoice delivery.
type SendEmailRequest struct {
	To       string
	Subject  string
	Message  string
	PDF      []byte
	PDFName  string
	HTMLBody string
}

// EmailService delivers mail through the Resend HTTP API. Transient
// failures (5xx, rate limits, network errors) are retried with backoff;
// client errors are not.
type EmailService struct {
	apiKey string
	from   string
	client *http.Client
	retry  *utils.RetryConfig
	logger *utils.Logger
}

func NewEmailService(cfg config.ResendConfig) *EmailService {
	return &EmailService{
		apiKey: cfg.APIKey,
		from:   cfg.FromEmail,
		client: &http.Client{Timeout: 15 * time.Second},
		retry:  utils.DefaultRetryConfig(),
		logger: utils.NewLogger("email-service"),
	}
}

func (s *EmailService) Send(ctx context.Context, req *SendEmailRequest) (string, error) {
	if s.apiKey == "" {
		return "", utils.ErrServiceUnavailable
	}
	if strings.TrimSpace(req.To) == "" || !strings.Contains(req.To, "@") {
		return "", utils.ErrInvalidRequest
	}

	body := resendRequest{
		From:    s.from,
		To:      []string{req.To},
		Subject: req.Subject,
		HTML:    req.HTMLBody,
	}
	if body.HTML == "" {
		body.HTML = fmt.Sprintf(
			`<pre style="font-family: Arial, sans-serif; white-space: pre-wrap;">%s</pre>`,
			req.Message,
		)
	}
	if len(req.PDF) > 0 {
		name := req.PDFName
		if name == "" {
			name = "invoice.pdf"
		}
		body.Attachments = append(body.Attachments, resendAttachment{
			Filename: name,
			Content:  base64.StdEncoding.EncodeToString(req.PDF),
		})
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	var messageID string
	err = utils.Retry(ctx, s.retry, isTransientSendError, func() error {
		id, sendErr := s.post(ctx, payload)
		if sendErr != nil {
			return sendErr
		}
		messageID = id
		return nil
	})
	if err != nil {
		utils.LogError(ctx, err, "Email delivery failed", map[string]interface{}{"to": req.To})
		return "", utils.ErrEmailSendFailed
	}

	s.logger.Info(ctx, "Email sent", map[string]interface{}{
		"to":         req.To,
		"message_id": messageID,
	})
	return messageID, nil
}

type sendError struct {
	status int
	body   string
}

func (e *sendError) Error() string {
	return fmt.Sprintf("resend api status %d: %s", e.status, e.body)
}

func isTransientSendError(err error) bool {
	if se, ok := err.(*sendError); ok {
		return se.status >= 500 || se.status == http.StatusTooManyRequests
	}
	// Network errors are worth a retry.
	return true
}

func (s *EmailService) post(ctx context.Context, payload []byte) (string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, resendEndpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Authorization", "Bearer "+s.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return "", err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &sendError{status: resp.StatusCode, body: string(respBody)}
	}

	var out resendResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}
