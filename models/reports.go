package models

type ReportTotals struct {
	TotalInvoiced    float64 `json:"total_invoiced"`
	TotalPaid        float64 `json:"total_paid"`
	TotalOutstanding float64 `json:"total_outstanding"`
	InvoiceCount     int     `json:"invoice_count"`
	PaidCount        int     `json:"paid_count"`
	OverdueCount     int     `json:"overdue_count"`
}

type ReportFilters struct {
	Status     string `json:"status,omitempty"`
	CustomerID string `json:"customer_id,omitempty"`
	FromDate   string `json:"from_date,omitempty"`
	ToDate     string `json:"to_date,omitempty"`
}
