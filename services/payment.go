package services

import (
	"context"
	"errors"
	"time"

	"github.com/invomaker/invomaker/ledger"
	"github.com/invomaker/invomaker/models"
	"github.com/invomaker/invomaker/utils"
	"gorm.io/gorm"
)

type paymentStore interface {
	Create(ctx context.Context, payment *models.Payment) error
	Update(ctx context.Context, payment *models.Payment) error
	GetByID(ctx context.Context, id string) (*models.Payment, error)
	Delete(ctx context.Context, id string) error
	ListByInvoice(ctx context.Context, invoiceID string) ([]*models.Payment, error)
	SumByInvoice(ctx context.Context, invoiceID string) (float64, error)
}

type paymentInvoiceStore interface {
	GetByID(ctx context.Context, id string) (*models.Invoice, error)
	UpdateReconciliation(ctx context.Context, invoiceID string, paidAmount, balance float64, status models.InvoiceStatus) error
	WithTransaction(ctx context.Context, fn func(context.Context) error) error
}

// PaymentService owns payment mutations. Every create, update and delete
// reconciles the owning invoice before returning: the payment write and
// the refreshed paid_amount/balance/status commit in one transaction, so
// callers never observe totals that lag the payment records.
type PaymentService struct {
	payments paymentStore
	invoices paymentInvoiceStore
	locks    *ledger.KeyedLock
	logger   *utils.Logger
	now      func() time.Time
}

func NewPaymentService(payments paymentStore, invoices paymentInvoiceStore, locks *ledger.KeyedLock) *PaymentService {
	return &PaymentService{
		payments: payments,
		invoices: invoices,
		locks:    locks,
		logger:   utils.NewLogger("payment-service"),
		now:      time.Now,
	}
}

// AddPayment records a payment against an invoice owned by businessID.
// Invoices belonging to another business read as not found.
func (s *PaymentService) AddPayment(ctx context.Context, businessID, invoiceID string, req *models.CreatePaymentRequest) (*models.Payment, error) {
	if req.Amount <= 0 {
		return nil, utils.ErrInvalidAmount
	}
	method := req.PaymentMethod
	if method == "" {
		method = models.PaymentMethodOther
	}
	if !method.Valid() {
		return nil, utils.ErrInvalidPaymentMethod
	}

	if !s.locks.TryAcquire(invoiceID) {
		return nil, utils.ErrRecalcInFlight
	}
	defer s.locks.Release(invoiceID)

	paymentDate := req.PaymentDate
	if paymentDate.IsZero() {
		paymentDate = s.now()
	}

	payment := &models.Payment{
		InvoiceID:     invoiceID,
		Amount:        req.Amount,
		PaymentDate:   paymentDate,
		PaymentMethod: method,
		Reference:     req.Reference,
		Notes:         req.Notes,
	}

	err := s.invoices.WithTransaction(ctx, func(txCtx context.Context) error {
		// The invoice row must exist before the payment is written;
		// orphaned payments are refused outright.
		invoice, err := s.invoices.GetByID(txCtx, invoiceID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.ErrInvoiceNotFound
			}
			return err
		}
		if invoice.BusinessID != businessID {
			return utils.ErrInvoiceNotFound
		}

		if err := s.payments.Create(txCtx, payment); err != nil {
			return err
		}

		return s.reconcile(txCtx, invoice)
	})
	if err != nil {
		return nil, err
	}

	return payment, nil
}

func (s *PaymentService) UpdatePayment(ctx context.Context, businessID, id string, req *models.UpdatePaymentRequest) (*models.Payment, error) {
	payment, err := s.payments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrPaymentNotFound
		}
		return nil, err
	}

	if req.Amount != nil {
		if *req.Amount <= 0 {
			return nil, utils.ErrInvalidAmount
		}
		payment.Amount = *req.Amount
	}
	if req.PaymentDate != nil {
		payment.PaymentDate = *req.PaymentDate
	}
	if req.PaymentMethod != nil {
		if !req.PaymentMethod.Valid() {
			return nil, utils.ErrInvalidPaymentMethod
		}
		payment.PaymentMethod = *req.PaymentMethod
	}
	if req.Reference != nil {
		payment.Reference = *req.Reference
	}
	if req.Notes != nil {
		payment.Notes = *req.Notes
	}

	if !s.locks.TryAcquire(payment.InvoiceID) {
		return nil, utils.ErrRecalcInFlight
	}
	defer s.locks.Release(payment.InvoiceID)

	err = s.invoices.WithTransaction(ctx, func(txCtx context.Context) error {
		invoice, err := s.invoices.GetByID(txCtx, payment.InvoiceID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.ErrInvoiceNotFound
			}
			return err
		}
		if invoice.BusinessID != businessID {
			return utils.ErrPaymentNotFound
		}

		if err := s.payments.Update(txCtx, payment); err != nil {
			return err
		}

		return s.reconcile(txCtx, invoice)
	})
	if err != nil {
		return nil, err
	}

	return payment, nil
}

func (s *PaymentService) DeletePayment(ctx context.Context, businessID, id string) error {
	payment, err := s.payments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrPaymentNotFound
		}
		return err
	}

	if !s.locks.TryAcquire(payment.InvoiceID) {
		return utils.ErrRecalcInFlight
	}
	defer s.locks.Release(payment.InvoiceID)

	return s.invoices.WithTransaction(ctx, func(txCtx context.Context) error {
		invoice, err := s.invoices.GetByID(txCtx, payment.InvoiceID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.ErrInvoiceNotFound
			}
			return err
		}
		if invoice.BusinessID != businessID {
			return utils.ErrPaymentNotFound
		}

		if err := s.payments.Delete(txCtx, id); err != nil {
			return err
		}

		return s.reconcile(txCtx, invoice)
	})
}

func (s *PaymentService) ListPayments(ctx context.Context, businessID, invoiceID string) ([]*models.Payment, error) {
	invoice, err := s.invoices.GetByID(ctx, invoiceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrInvoiceNotFound
		}
		return nil, err
	}
	if invoice.BusinessID != businessID {
		return nil, utils.ErrInvoiceNotFound
	}
	return s.payments.ListByInvoice(ctx, invoiceID)
}

// reconcile re-sums the invoice's payments and writes
// paid_amount/balance/status in one statement. It always re-sums from
// the full payment set rather than adjusting a counter.
func (s *PaymentService) reconcile(ctx context.Context, invoice *models.Invoice) error {
	paidAmount, err := s.payments.SumByInvoice(ctx, invoice.ID)
	if err != nil {
		return err
	}

	balance := ledger.Balance(invoice.Total, paidAmount)
	status := ledger.DeriveStatus(invoice.Status, paidAmount, balance, invoice.DueDate, s.now())

	return s.invoices.UpdateReconciliation(ctx, invoice.ID, paidAmount, balance, status)
}
