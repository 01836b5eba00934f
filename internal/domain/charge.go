package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ParentType identifies the owner of a charge or payment.
type ParentType string

const (
	ParentAccount ParentType = "account"
	ParentClient  ParentType = "client"
)

// ChargeStatus is the settlement status of a charge.
type ChargeStatus string

const (
	ChargePending   ChargeStatus = "pending"
	ChargePaid      ChargeStatus = "paid"
	ChargeCancelled ChargeStatus = "cancelled"
	ChargeError     ChargeStatus = "error"
)

// Charge is a billable amount (a "receipt") owed by an account or client.
//
// PreviousBalance records the parent's running balance immediately before
// this charge was applied. It is only meaningful after creation-time
// computation or a rebuild; earlier history changing does not update it.
type Charge struct {
	ID              string
	ParentID        string
	ParentType      ParentType
	MovementDate    time.Time
	Total           decimal.Decimal
	Status          ChargeStatus
	PreviousBalance decimal.Decimal
	ExchangeRate    decimal.Decimal
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CountsTowardBalance reports whether the charge contributes to balance
// computations. Cancelled and error charges are displayed but never counted.
func (c *Charge) CountsTowardBalance() bool {
	return c.Status != ChargeCancelled && c.Status != ChargeError
}

// Outstanding returns the amount still owed on the charge once already-paid
// and credited amounts are subtracted, rounded and clamped at zero.
func (c *Charge) Outstanding(paid, credited decimal.Decimal) decimal.Decimal {
	return ClampNonNegative(Round2(c.Total.Sub(paid).Sub(credited)))
}

// Validate checks charge invariants.
func (c *Charge) Validate() error {
	if c.Total.IsNegative() {
		return ErrInvalidAmount
	}
	if err := ValidateParentType(c.ParentType); err != nil {
		return err
	}
	return ValidateChargeStatus(c.Status)
}
