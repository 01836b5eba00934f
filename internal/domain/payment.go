package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus is the assignment status of a payment.
type PaymentStatus string

const (
	PaymentPaid       PaymentStatus = "paid"
	PaymentAdvanced   PaymentStatus = "advanced"
	PaymentAssigned   PaymentStatus = "assigned"
	PaymentUnassigned PaymentStatus = "unassigned"
	PaymentCredit     PaymentStatus = "credit"
	PaymentCancelled  PaymentStatus = "cancelled"
	PaymentError      PaymentStatus = "error"
	PaymentBatch      PaymentStatus = "batch"
	PaymentOnline     PaymentStatus = "online"
)

// PaymentDetail is the portion of a payment allocated to a specific charge.
type PaymentDetail struct {
	ChargeID string          `json:"charge_id"`
	Amount   decimal.Decimal `json:"amount"`
}

// Payment is money received against an account or client, with an ordered
// list of per-charge allocations.
type Payment struct {
	ID          string
	ParentID    string
	ParentType  ParentType
	PaymentDate time.Time
	AmountPaid  decimal.Decimal
	Status      PaymentStatus
	Details     []PaymentDetail
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// AllocatedTotal returns the rounded sum of all allocation amounts.
func (p *Payment) AllocatedTotal() decimal.Decimal {
	total := decimal.Zero
	for _, d := range p.Details {
		total = total.Add(d.Amount)
	}
	return Round2(total)
}

// Unallocated returns the portion of the payment not yet assigned to any
// charge.
func (p *Payment) Unallocated() decimal.Decimal {
	return ClampNonNegative(Round2(p.AmountPaid.Sub(p.AllocatedTotal())))
}

// IsCredit reports whether the payment is a credit. Credit payments offset
// charges without counting toward paid amounts, and their status is never
// reclassified by allocation.
func (p *Payment) IsCredit() bool {
	return p.Status == PaymentCredit
}

// CountsTowardBalance reports whether the payment contributes to balance
// computations.
func (p *Payment) CountsTowardBalance() bool {
	return p.Status != PaymentCancelled && p.Status != PaymentError
}

// Validate checks payment invariants: non-negative amounts and allocations
// that never exceed the amount paid.
func (p *Payment) Validate() error {
	if p.AmountPaid.IsNegative() {
		return ErrInvalidAmount
	}
	if err := ValidateParentType(p.ParentType); err != nil {
		return err
	}
	if err := ValidatePaymentStatus(p.Status); err != nil {
		return err
	}
	for _, d := range p.Details {
		if d.Amount.IsNegative() {
			return ErrInvalidAmount
		}
	}
	if p.AllocatedTotal().GreaterThan(Round2(p.AmountPaid)) {
		return ErrOverAllocated
	}
	return nil
}
