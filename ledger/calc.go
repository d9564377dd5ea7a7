// Package ledger holds the financial core of the invoicing service: line
// and invoice total computation, payment reconciliation arithmetic, and
// status derivation. Everything here is pure; persistence and transport
// live in stores/ and api/.
package ledger

// LineInput is one priced entry on an invoice. Callers are expected to
// hand in non-negative quantity and unit price; the calculator does not
// validate or clamp.
type LineInput struct {
	Quantity  float64
	UnitPrice float64
	Discount  float64
	TaxRate   float64
}

// Totals are the invoice-level aggregates. Values carry full float
// precision; rounding to two decimals is left to presentation so that
// long item lists do not accumulate rounding drift.
type Totals struct {
	Subtotal      float64
	DiscountTotal float64
	TaxTotal      float64
	ShippingFee   float64
	ExtraFees     float64
	Total         float64
}

// LineTotal computes the total for a single line item. The order of
// operations is fixed and must not change: historical invoices were
// computed exactly this way.
//
//	gross = quantity * unitPrice
//	net   = gross - discount
//	tax   = net * taxRate / 100
//	total = net + tax
//
// A discount larger than the gross amount produces a negative net and a
// negative tax contribution. That is intentional; see Compute.
func LineTotal(quantity, unitPrice, discount, taxRate float64) float64 {
	gross := quantity * unitPrice
	net := gross - discount
	tax := net * taxRate / 100
	return net + tax
}

// LineTax returns only the tax portion of a line item, computed on the
// discounted net.
func LineTax(quantity, unitPrice, discount, taxRate float64) float64 {
	net := quantity*unitPrice - discount
	return net * taxRate / 100
}

// Compute derives the invoice aggregates from its items and fees.
//
// Subtotal is the pre-discount, pre-tax sum of quantity*price. Tax is
// computed per item on that item's discounted net and then summed, which
// differs from taxing the aggregate when rates vary across items. The
// function is pure and idempotent: identical inputs give bit-identical
// outputs.
func Compute(items []LineInput, shippingFee, extraFees float64) Totals {
	t := Totals{
		ShippingFee: shippingFee,
		ExtraFees:   extraFees,
	}

	for _, item := range items {
		t.Subtotal += item.Quantity * item.UnitPrice
		t.DiscountTotal += item.Discount
		t.TaxTotal += LineTax(item.Quantity, item.UnitPrice, item.Discount, item.TaxRate)
	}

	t.Total = t.Subtotal - t.DiscountTotal + t.TaxTotal + shippingFee + extraFees
	return t
}

// TotalFromAggregates recomputes the invoice total from already-stored
// aggregates, used when only shipping or extra fees change and items are
// untouched.
func TotalFromAggregates(subtotal, discountTotal, taxTotal, shippingFee, extraFees float64) float64 {
	return subtotal - discountTotal + taxTotal + shippingFee + extraFees
}

// Balance is the amount still owed.
func Balance(total, paidAmount float64) float64 {
	return total - paidAmount
}

// SumPayments re-sums the authoritative payment amounts. Reconciliation
// never trusts a running counter; it always starts from the full set so
// that out-of-band edits cannot leave paid_amount stale.
func SumPayments(amounts []float64) float64 {
	var sum float64
	for _, a := range amounts {
		sum += a
	}
	return sum
}
