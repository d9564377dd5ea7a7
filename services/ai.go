package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/invomaker/invomaker/config"
	"github.com/invomaker/invomaker/models"
	"github.com/invomaker/invomaker/utils"
	openai "github.com/sashabaranov/go-openai"
)

// chatCompleter is the slice of the OpenAI client the service needs.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// AIService wraps the invoice drafting, text generation and analysis
// conveniences backed by a chat completion model. It holds no state
// beyond the client; quota enforcement happens in the callers.
type AIService struct {
	client chatCompleter
	model  string
	logger *utils.Logger
}

func NewAIService(cfg config.OpenAIConfig) *AIService {
	return &AIService{
		client: openai.NewClient(cfg.APIKey),
		model:  cfg.Model,
		logger: utils.NewLogger("ai-service"),
	}
}

func (s *AIService) complete(ctx context.Context, system, prompt string, temperature float32, jsonMode bool) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       s.model,
		Temperature: temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}
	if jsonMode {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := s.client.CreateChatCompletion(ctx, req)
	if err != nil {
		utils.LogError(ctx, err, "Chat completion failed", nil)
		return "", utils.ErrAIUnavailable
	}
	if len(resp.Choices) == 0 {
		return "", utils.ErrAIBadResponse
	}
	return resp.Choices[0].Message.Content, nil
}

// extractJSON strips markdown code fences that models sometimes wrap
// around JSON payloads.
func extractJSON(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	}
	return strings.TrimSpace(content)
}

// DraftInvoice turns a free-text description into an invoice draft,
// matching the result against the caller's customers and catalog. A
// matched product pins the unit price to the catalog price.
func (s *AIService) DraftInvoice(ctx context.Context, req *models.DraftInvoiceRequest, customers []*models.Customer, products []*models.Product) (*models.DraftInvoiceResult, error) {
	if strings.TrimSpace(req.Description) == "" {
		return nil, utils.ErrInvalidRequest
	}

	system := `You are an assistant that builds invoices from natural language descriptions.
Extract the customer name, the line items with quantities and unit prices, the due date in days from today (default 30), and optional notes.
Return a JSON object: {"customerName": string, "items": [{"name": string, "quantity": number, "unitPrice": number}], "dueDays": number, "notes": string}.
Match customer and product names to the provided lists when possible.`

	var customerNames []string
	for _, c := range customers {
		customerNames = append(customerNames, c.Name)
	}
	var productNames []string
	for _, p := range products {
		productNames = append(productNames, fmt.Sprintf("%s ($%.2f)", p.Name, p.Price))
	}

	prompt := fmt.Sprintf(`Create an invoice from this description: %q

Existing customers: %s
Existing products: %s

Extract the invoice details and return JSON only.`,
		req.Description,
		orNone(strings.Join(customerNames, ", ")),
		orNone(strings.Join(productNames, ", ")))

	content, err := s.complete(ctx, system, prompt, 0.3, true)
	if err != nil {
		return nil, err
	}

	var result models.DraftInvoiceResult
	if err := json.Unmarshal([]byte(extractJSON(content)), &result); err != nil {
		s.logger.Warn(ctx, "Unparseable invoice draft", map[string]interface{}{"content": content})
		return nil, utils.ErrAIBadResponse
	}
	if result.DueDays <= 0 {
		result.DueDays = 30
	}

	for _, c := range customers {
		if strings.EqualFold(c.Name, result.CustomerName) {
			id := c.ID
			result.CustomerID = &id
			break
		}
	}
	for i := range result.Items {
		for _, p := range products {
			if strings.EqualFold(p.Name, result.Items[i].Name) {
				id := p.ID
				result.Items[i].ProductID = &id
				result.Items[i].UnitPrice = p.Price
				break
			}
		}
		if result.Items[i].Quantity <= 0 {
			result.Items[i].Quantity = 1
		}
	}

	return &result, nil
}

// GenerateText produces short notes or terms text for an invoice.
func (s *AIService) GenerateText(ctx context.Context, req *models.GenerateTextRequest) (*models.GeneratedText, error) {
	if req.Type != "notes" && req.Type != "terms" {
		return nil, utils.ErrInvalidRequest
	}

	system := fmt.Sprintf(`You are an assistant that generates professional invoice %s text.
Generate clear, professional, and appropriate text based on the context provided.`, req.Type)

	prompt := fmt.Sprintf("Generate %s text for an invoice", req.Type)
	if req.InvoiceAmount > 0 {
		prompt += fmt.Sprintf(" with amount $%.2f", req.InvoiceAmount)
	}
	if req.DueDate != "" {
		prompt += ", due date: " + req.DueDate
	}
	if req.CustomerName != "" {
		prompt += ", for customer: " + req.CustomerName
	}
	if req.Tone != "" {
		prompt += ". Tone should be " + req.Tone
	}
	prompt += ". Keep it concise (2-3 sentences)."

	content, err := s.complete(ctx, system, prompt, 0.7, false)
	if err != nil {
		return nil, err
	}
	return &models.GeneratedText{Text: strings.TrimSpace(content)}, nil
}

// DraftEmail writes a delivery or reminder email for an invoice. The
// kind is "new", "reminder" or "overdue". A malformed model response
// falls back to a plain template instead of failing.
func (s *AIService) DraftEmail(ctx context.Context, req *models.EmailDraftRequest, kind string) (*models.EmailDraft, error) {
	system := `You are an assistant that generates professional email drafts for invoices.
Create polite, clear, and professional emails.`

	prompt := fmt.Sprintf(`Generate an email to send invoice #%s to %s.
Invoice amount: $%.2f, Due date: %s`, req.InvoiceNumber, req.CustomerName, req.Amount, req.DueDate)

	switch kind {
	case "overdue":
		prompt += ". This invoice is overdue. Use a firm but professional tone."
	case "reminder":
		prompt += ". This is a payment reminder. Be polite but clear."
	default:
		prompt += ". This is a new invoice. Be friendly and professional."
	}
	prompt += ` Return JSON with "subject" and "body" fields.`

	content, err := s.complete(ctx, system, prompt, 0.7, true)
	if err != nil {
		return nil, err
	}

	var draft models.EmailDraft
	if jsonErr := json.Unmarshal([]byte(extractJSON(content)), &draft); jsonErr != nil || draft.Subject == "" {
		return &models.EmailDraft{
			Subject: fmt.Sprintf("Invoice %s", req.InvoiceNumber),
			Body: fmt.Sprintf(
				"Dear %s,\n\nPlease find attached invoice #%s.\n\nAmount: $%.2f\nDue Date: %s\n\nThank you for your business!",
				req.CustomerName, req.InvoiceNumber, req.Amount, req.DueDate),
		}, nil
	}
	return &draft, nil
}

// SummarizeDashboard produces a short narrative over the report totals.
func (s *AIService) SummarizeDashboard(ctx context.Context, totals *models.ReportTotals) (*models.GeneratedText, error) {
	system := `You are an assistant that generates concise, insightful summaries of business financial data.
Create a friendly, professional summary (2-3 sentences) highlighting key insights.`

	prompt := fmt.Sprintf(`Generate a summary of this month's business performance:

Total Invoiced: $%.2f
Total Paid: $%.2f
Outstanding: $%.2f
Invoices: %d (%d paid, %d overdue)

Generate a concise, insightful summary.`,
		totals.TotalInvoiced, totals.TotalPaid, totals.TotalOutstanding,
		totals.InvoiceCount, totals.PaidCount, totals.OverdueCount)

	content, err := s.complete(ctx, system, prompt, 0.7, false)
	if err != nil {
		return nil, err
	}
	return &models.GeneratedText{Text: strings.TrimSpace(content)}, nil
}

// SummarizeCustomer narrates a customer's billing relationship.
func (s *AIService) SummarizeCustomer(ctx context.Context, summary *models.CustomerSummary) (*models.GeneratedText, error) {
	system := `You are an assistant that generates concise summaries of a customer's billing history.
Create a friendly, professional summary (2-3 sentences).`

	prompt := fmt.Sprintf(`Summarize this customer's account:

Customer: %s
Invoices: %d
Total Invoiced: $%.2f
Total Paid: $%.2f
Outstanding: $%.2f

Generate a concise summary.`,
		summary.Customer.Name, len(summary.Invoices),
		summary.TotalInvoiced, summary.TotalPaid, summary.TotalOutstanding)

	content, err := s.complete(ctx, system, prompt, 0.7, false)
	if err != nil {
		return nil, err
	}
	return &models.GeneratedText{Text: strings.TrimSpace(content)}, nil
}

// Translate renders invoice-facing text in another language, preserving
// numbers, dates and currency amounts.
func (s *AIService) Translate(ctx context.Context, req *models.TranslateRequest) (*models.GeneratedText, error) {
	if strings.TrimSpace(req.Text) == "" || strings.TrimSpace(req.TargetLanguage) == "" {
		return nil, utils.ErrInvalidRequest
	}

	system := `You are a translator for business and invoicing text.
Translate accurately, keep numbers, dates and currency amounts unchanged, and return only the translated text.`

	prompt := fmt.Sprintf("Translate the following text to %s:\n\n%s", req.TargetLanguage, req.Text)

	content, err := s.complete(ctx, system, prompt, 0.3, false)
	if err != nil {
		return nil, err
	}
	return &models.GeneratedText{Text: strings.TrimSpace(content)}, nil
}

// ParseReceipt extracts structured purchase data from OCR text.
func (s *AIService) ParseReceipt(ctx context.Context, req *models.ParseReceiptRequest) (*models.ReceiptParseResult, error) {
	if strings.TrimSpace(req.OCRText) == "" {
		return nil, utils.ErrInvalidRequest
	}

	system := `You are an assistant that extracts structured data from receipt text.
Return a JSON object: {"vendorName": string, "date": "YYYY-MM-DD", "items": [{"name": string, "quantity": number, "price": number}], "total": number, "tax": number}.
Use null or omit fields you cannot determine.`

	prompt := fmt.Sprintf("Extract the receipt data from this OCR text and return JSON only:\n\n%s", req.OCRText)

	content, err := s.complete(ctx, system, prompt, 0.1, true)
	if err != nil {
		return nil, err
	}

	var result models.ReceiptParseResult
	if err := json.Unmarshal([]byte(extractJSON(content)), &result); err != nil {
		s.logger.Warn(ctx, "Unparseable receipt extraction", map[string]interface{}{"content": content})
		return nil, utils.ErrAIBadResponse
	}
	return &result, nil
}

// PaymentRisk scores a customer's late payment risk from their history.
// The score is deterministic: up to 40 points for the late payment rate,
// 30 for average days late (saturating at 10 days), and 30 for the
// current overdue amount (saturating at $1000).
func PaymentRisk(input models.PaymentRiskInput) *models.PaymentRiskResult {
	lateRate := 0.0
	if input.TotalInvoices > 0 {
		lateRate = float64(input.LatePayments) / float64(input.TotalInvoices)
	}

	score := lateRate * 40
	score += math.Min(input.AverageDaysLate/10, 1) * 30
	score += math.Min(input.CurrentOverdue/1000, 1) * 30

	level := "low"
	explanation := "Low risk: Generally pays on time."
	if score > 60 {
		level = "high"
		explanation = "High risk: Frequent late payments and significant overdue amounts."
	} else if score > 30 {
		level = "medium"
		explanation = "Medium risk: Some payment delays observed."
	}

	return &models.PaymentRiskResult{
		RiskLevel:   level,
		RiskScore:   int(math.Round(score)),
		Explanation: explanation,
	}
}

func orNone(s string) string {
	if s == "" {
		return "None"
	}
	return s
}
