package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/invomaker/invomaker/models"
	"github.com/invomaker/invomaker/utils"
)

func newPaymentFixture(t *testing.T) (*fixture, *PaymentService, *models.Invoice) {
	t.Helper()
	f := newFixture()
	paySvc := NewPaymentService(f.payments, f.invoices, f.locks)

	invoice := f.createInvoice(t, &models.CreateInvoiceRequest{
		Status:  models.InvoiceStatusSent,
		DueDate: time.Now().AddDate(0, 0, 30),
		Items: []models.InvoiceItemInput{
			{Name: "Consulting", Quantity: floatPtr(3), UnitPrice: floatPtr(100), Discount: floatPtr(30), TaxRate: floatPtr(10)},
		},
	})
	if invoice.Total != 297 {
		t.Fatalf("fixture total = %v, want 297", invoice.Total)
	}
	return f, paySvc, invoice
}

func TestAddPaymentPartial(t *testing.T) {
	f, paySvc, invoice := newPaymentFixture(t)

	_, err := paySvc.AddPayment(context.Background(), "biz-1", invoice.ID, &models.CreatePaymentRequest{
		Amount:        100,
		PaymentMethod: models.PaymentMethodCash,
	})
	if err != nil {
		t.Fatalf("AddPayment: %v", err)
	}

	got, _ := f.svc.GetInvoice(context.Background(), "biz-1", invoice.ID)
	if got.PaidAmount != 100 {
		t.Errorf("PaidAmount = %v, want 100", got.PaidAmount)
	}
	if got.Balance != 197 {
		t.Errorf("Balance = %v, want 197", got.Balance)
	}
	if got.Status != models.InvoiceStatusPartial {
		t.Errorf("Status = %v, want partial", got.Status)
	}
}

func TestAddPaymentSettles(t *testing.T) {
	f, paySvc, invoice := newPaymentFixture(t)

	for _, amount := range []float64{100, 197} {
		if _, err := paySvc.AddPayment(context.Background(), "biz-1", invoice.ID, &models.CreatePaymentRequest{Amount: amount}); err != nil {
			t.Fatalf("AddPayment(%v): %v", amount, err)
		}
	}

	got, _ := f.svc.GetInvoice(context.Background(), "biz-1", invoice.ID)
	if got.PaidAmount != 297 {
		t.Errorf("PaidAmount = %v, want 297", got.PaidAmount)
	}
	if got.Balance != 0 {
		t.Errorf("Balance = %v, want 0", got.Balance)
	}
	if got.Status != models.InvoiceStatusPaid {
		t.Errorf("Status = %v, want paid", got.Status)
	}
}

func TestDeletePaymentReopensInvoice(t *testing.T) {
	f, paySvc, invoice := newPaymentFixture(t)

	first, err := paySvc.AddPayment(context.Background(), "biz-1", invoice.ID, &models.CreatePaymentRequest{Amount: 100})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := paySvc.AddPayment(context.Background(), "biz-1", invoice.ID, &models.CreatePaymentRequest{Amount: 197}); err != nil {
		t.Fatal(err)
	}

	if err := paySvc.DeletePayment(context.Background(), "biz-1", first.ID); err != nil {
		t.Fatalf("DeletePayment: %v", err)
	}

	got, _ := f.svc.GetInvoice(context.Background(), "biz-1", invoice.ID)
	if got.PaidAmount != 197 {
		t.Errorf("PaidAmount = %v, want 197", got.PaidAmount)
	}
	if got.Balance != 100 {
		t.Errorf("Balance = %v, want 100", got.Balance)
	}
	if got.Status != models.InvoiceStatusPartial {
		t.Errorf("Status = %v, want partial", got.Status)
	}
}

func TestUpdatePaymentReconciles(t *testing.T) {
	f, paySvc, invoice := newPaymentFixture(t)

	payment, err := paySvc.AddPayment(context.Background(), "biz-1", invoice.ID, &models.CreatePaymentRequest{Amount: 100})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := paySvc.UpdatePayment(context.Background(), "biz-1", payment.ID, &models.UpdatePaymentRequest{
		Amount: floatPtr(297),
	}); err != nil {
		t.Fatalf("UpdatePayment: %v", err)
	}

	got, _ := f.svc.GetInvoice(context.Background(), "biz-1", invoice.ID)
	if got.Status != models.InvoiceStatusPaid {
		t.Errorf("Status = %v, want paid", got.Status)
	}
	if got.Balance != 0 {
		t.Errorf("Balance = %v, want 0", got.Balance)
	}
}

func TestAddPaymentRejectsOrphan(t *testing.T) {
	_, paySvc, _ := newPaymentFixture(t)

	_, err := paySvc.AddPayment(context.Background(), "biz-1", "missing", &models.CreatePaymentRequest{Amount: 50})
	if !errors.Is(err, utils.ErrInvoiceNotFound) {
		t.Fatalf("err = %v, want ErrInvoiceNotFound", err)
	}
}

func TestAddPaymentValidation(t *testing.T) {
	_, paySvc, invoice := newPaymentFixture(t)

	_, err := paySvc.AddPayment(context.Background(), "biz-1", invoice.ID, &models.CreatePaymentRequest{Amount: 0})
	if !errors.Is(err, utils.ErrInvalidAmount) {
		t.Fatalf("zero amount err = %v, want ErrInvalidAmount", err)
	}

	_, err = paySvc.AddPayment(context.Background(), "biz-1", invoice.ID, &models.CreatePaymentRequest{Amount: -5})
	if !errors.Is(err, utils.ErrInvalidAmount) {
		t.Fatalf("negative amount err = %v, want ErrInvalidAmount", err)
	}

	_, err = paySvc.AddPayment(context.Background(), "biz-1", invoice.ID, &models.CreatePaymentRequest{
		Amount:        50,
		PaymentMethod: models.PaymentMethod("crypto"),
	})
	if !errors.Is(err, utils.ErrInvalidPaymentMethod) {
		t.Fatalf("bad method err = %v, want ErrInvalidPaymentMethod", err)
	}
}

func TestAddPaymentConflictWhileLocked(t *testing.T) {
	f, paySvc, invoice := newPaymentFixture(t)

	if !f.locks.TryAcquire(invoice.ID) {
		t.Fatal("could not take lock for setup")
	}
	defer f.locks.Release(invoice.ID)

	_, err := paySvc.AddPayment(context.Background(), "biz-1", invoice.ID, &models.CreatePaymentRequest{Amount: 50})
	if !errors.Is(err, utils.ErrRecalcInFlight) {
		t.Fatalf("err = %v, want ErrRecalcInFlight", err)
	}
}

func TestAddPaymentDefaultsMethodAndDate(t *testing.T) {
	_, paySvc, invoice := newPaymentFixture(t)

	payment, err := paySvc.AddPayment(context.Background(), "biz-1", invoice.ID, &models.CreatePaymentRequest{Amount: 10})
	if err != nil {
		t.Fatal(err)
	}
	if payment.PaymentMethod != models.PaymentMethodOther {
		t.Errorf("PaymentMethod = %v, want other", payment.PaymentMethod)
	}
	if payment.PaymentDate.IsZero() {
		t.Error("PaymentDate not defaulted")
	}
}

func TestDeletePaymentNotFound(t *testing.T) {
	_, paySvc, _ := newPaymentFixture(t)

	err := paySvc.DeletePayment(context.Background(), "biz-1", "missing")
	if !errors.Is(err, utils.ErrPaymentNotFound) {
		t.Fatalf("err = %v, want ErrPaymentNotFound", err)
	}
}

func TestPaymentBusinessScoping(t *testing.T) {
	f, paySvc, invoice := newPaymentFixture(t)

	// Recording against another business's invoice reads as not found.
	if _, err := paySvc.AddPayment(context.Background(), "biz-2", invoice.ID, &models.CreatePaymentRequest{Amount: 100}); !errors.Is(err, utils.ErrInvoiceNotFound) {
		t.Errorf("AddPayment from other business err = %v, want ErrInvoiceNotFound", err)
	}

	payment, err := paySvc.AddPayment(context.Background(), "biz-1", invoice.ID, &models.CreatePaymentRequest{Amount: 100})
	if err != nil {
		t.Fatalf("AddPayment: %v", err)
	}

	if _, err := paySvc.UpdatePayment(context.Background(), "biz-2", payment.ID, &models.UpdatePaymentRequest{Amount: floatPtr(297)}); !errors.Is(err, utils.ErrPaymentNotFound) {
		t.Errorf("UpdatePayment from other business err = %v, want ErrPaymentNotFound", err)
	}
	if err := paySvc.DeletePayment(context.Background(), "biz-2", payment.ID); !errors.Is(err, utils.ErrPaymentNotFound) {
		t.Errorf("DeletePayment from other business err = %v, want ErrPaymentNotFound", err)
	}
	if _, err := paySvc.ListPayments(context.Background(), "biz-2", invoice.ID); !errors.Is(err, utils.ErrInvoiceNotFound) {
		t.Errorf("ListPayments from other business err = %v, want ErrInvoiceNotFound", err)
	}

	// The payment and the reconciled balance are untouched.
	got, err := f.svc.GetInvoice(context.Background(), "biz-1", invoice.ID)
	if err != nil {
		t.Fatalf("GetInvoice: %v", err)
	}
	if got.PaidAmount != 100 {
		t.Errorf("PaidAmount = %v, want 100", got.PaidAmount)
	}
	payments, err := paySvc.ListPayments(context.Background(), "biz-1", invoice.ID)
	if err != nil {
		t.Fatalf("ListPayments: %v", err)
	}
	if len(payments) != 1 {
		t.Errorf("len(payments) = %d, want 1", len(payments))
	}
}
