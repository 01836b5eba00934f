package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var validChargeStatuses = map[ChargeStatus]bool{
	ChargePending:   true,
	ChargePaid:      true,
	ChargeCancelled: true,
	ChargeError:     true,
}

var validPaymentStatuses = map[PaymentStatus]bool{
	PaymentPaid:       true,
	PaymentAdvanced:   true,
	PaymentAssigned:   true,
	PaymentUnassigned: true,
	PaymentCredit:     true,
	PaymentCancelled:  true,
	PaymentError:      true,
	PaymentBatch:      true,
	PaymentOnline:     true,
}

// ValidateParentType validates the owner kind of a charge or payment.
func ValidateParentType(pt ParentType) error {
	if pt != ParentAccount && pt != ParentClient {
		return fmt.Errorf("%w: %q", ErrInvalidParentType, pt)
	}
	return nil
}

// ValidateChargeStatus validates a charge status value.
func ValidateChargeStatus(s ChargeStatus) error {
	if !validChargeStatuses[s] {
		return fmt.Errorf("%w: %q", ErrInvalidChargeStatus, s)
	}
	return nil
}

// ValidatePaymentStatus validates a payment status value.
func ValidatePaymentStatus(s PaymentStatus) error {
	if !validPaymentStatuses[s] {
		return fmt.Errorf("%w: %q", ErrInvalidPaymentStatus, s)
	}
	return nil
}

// ValidateAmount validates a monetary amount. Zero is allowed; charges and
// payments are non-negative by contract.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}

// ValidatePagination validates and limits pagination parameters.
func ValidatePagination(limit, offset int) (int, int, error) {
	const MaxPageSize = 1000
	const DefaultPageSize = 50

	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset, nil
}
