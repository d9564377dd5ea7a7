package models

// DraftInvoiceRequest asks the assistant to build an invoice draft from a
// free-text description, matching against the caller's catalog.
type DraftInvoiceRequest struct {
	Description string `json:"description"`
}

type DraftInvoiceItem struct {
	Name      string  `json:"name"`
	Quantity  float64 `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
	ProductID *string `json:"product_id,omitempty"`
}

type DraftInvoiceResult struct {
	CustomerName string             `json:"customerName"`
	CustomerID   *string            `json:"customer_id,omitempty"`
	Items        []DraftInvoiceItem `json:"items"`
	DueDays      int                `json:"dueDays"`
	Notes        string             `json:"notes,omitempty"`
}

type GenerateTextRequest struct {
	Type          string  `json:"type"` // notes or terms
	InvoiceAmount float64 `json:"invoice_amount,omitempty"`
	DueDate       string  `json:"due_date,omitempty"`
	CustomerName  string  `json:"customer_name,omitempty"`
	Tone          string  `json:"tone,omitempty"` // polite, professional, firm, friendly
}

type EmailDraftRequest struct {
	CustomerName  string  `json:"customer_name"`
	InvoiceNumber string  `json:"invoice_number"`
	Amount        float64 `json:"amount"`
	DueDate       string  `json:"due_date"`
	Tone          string  `json:"tone,omitempty"`
}

type EmailDraft struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type TranslateRequest struct {
	Text           string `json:"text"`
	TargetLanguage string `json:"target_language"`
}

type GeneratedText struct {
	Text string `json:"text"`
}

// ParseReceiptRequest carries raw OCR text extracted from a receipt image.
type ParseReceiptRequest struct {
	OCRText string `json:"ocr_text"`
}

type ReceiptItem struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Price    float64 `json:"price"`
}

type ReceiptParseResult struct {
	VendorName string        `json:"vendorName,omitempty"`
	Date       string        `json:"date,omitempty"`
	Items      []ReceiptItem `json:"items"`
	Total      float64       `json:"total,omitempty"`
	Tax        float64       `json:"tax,omitempty"`
}

type PaymentRiskInput struct {
	TotalInvoices   int     `json:"total_invoices"`
	LatePayments    int     `json:"late_payments"`
	AverageDaysLate float64 `json:"average_days_late"`
	CurrentOverdue  float64 `json:"current_overdue"`
}

type PaymentRiskResult struct {
	RiskLevel   string `json:"risk_level"` // low, medium, high
	RiskScore   int    `json:"risk_score"`
	Explanation string `json:"explanation"`
}
