package ledger

import (
	"time"

	"github.com/invomaker/invomaker/models"
)

// DeriveStatus is the single place invoice status is computed from money
// state. It runs after every reconciliation and aggregate edit.
//
// Rules, in order:
//  1. cancelled is sticky: only an explicit user action sets it, and
//     derivation never overwrites it.
//  2. balance <= 0 with payments recorded means paid. Paid is not sticky;
//     deleting a payment re-derives partial.
//  3. any payment with a remaining balance means partial.
//  4. a sent invoice past its due date becomes overdue.
//  5. otherwise the stored status stands; derivation never regresses an
//     invoice back to draft.
func DeriveStatus(current models.InvoiceStatus, paidAmount, balance float64, dueDate, now time.Time) models.InvoiceStatus {
	if current == models.InvoiceStatusCancelled {
		return current
	}

	switch {
	case balance <= 0 && paidAmount > 0:
		return models.InvoiceStatusPaid
	case paidAmount > 0 && balance > 0:
		return models.InvoiceStatusPartial
	case current == models.InvoiceStatusSent && dueDate.Before(now):
		return models.InvoiceStatusOverdue
	}

	return current
}
