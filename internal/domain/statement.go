package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryKind tags a statement line as originating from a charge or a payment.
type EntryKind string

const (
	EntryCharge  EntryKind = "charge"
	EntryPayment EntryKind = "payment"
)

// StatementLine is one entry of the merged chronological view, carrying the
// running balance after the entry is applied.
type StatementLine struct {
	Kind    EntryKind
	RefID   string
	Date    time.Time
	Amount  decimal.Decimal
	Status  string
	Balance decimal.Decimal
}

// MergeChronological merges date-ordered charges and payments into a single
// timeline with a running balance. Both inputs must already be sorted
// ascending by their date field.
//
// The running balance here adds payments and subtracts charges, which is the
// inverse of the sign convention used by balance reports. Callers depend on
// both polarities; do not unify them.
//
// A charge wins a date tie against a payment. Cancelled and error entries are
// listed for display but apply no delta to the running balance.
func MergeChronological(charges []*Charge, payments []*Payment) []StatementLine {
	lines := make([]StatementLine, 0, len(charges)+len(payments))
	balance := decimal.Zero

	ci, pi := 0, 0
	for ci < len(charges) && pi < len(payments) {
		if !charges[ci].MovementDate.After(payments[pi].PaymentDate) {
			balance = appendCharge(&lines, charges[ci], balance)
			ci++
		} else {
			balance = appendPayment(&lines, payments[pi], balance)
			pi++
		}
	}
	for ; ci < len(charges); ci++ {
		balance = appendCharge(&lines, charges[ci], balance)
	}
	for ; pi < len(payments); pi++ {
		balance = appendPayment(&lines, payments[pi], balance)
	}

	return lines
}

func appendCharge(lines *[]StatementLine, c *Charge, balance decimal.Decimal) decimal.Decimal {
	if c.CountsTowardBalance() {
		balance = Round2(balance.Sub(c.Total))
	}
	*lines = append(*lines, StatementLine{
		Kind:    EntryCharge,
		RefID:   c.ID,
		Date:    c.MovementDate,
		Amount:  c.Total,
		Status:  string(c.Status),
		Balance: balance,
	})
	return balance
}

func appendPayment(lines *[]StatementLine, p *Payment, balance decimal.Decimal) decimal.Decimal {
	if p.CountsTowardBalance() {
		balance = Round2(balance.Add(p.AmountPaid))
	}
	*lines = append(*lines, StatementLine{
		Kind:    EntryPayment,
		RefID:   p.ID,
		Date:    p.PaymentDate,
		Amount:  p.AmountPaid,
		Status:  string(p.Status),
		Balance: balance,
	})
	return balance
}
