package domain

import "errors"

var (
	// Lookup errors
	ErrAccountNotFound = errors.New("account not found")
	ErrClientNotFound  = errors.New("client not found")
	ErrChargeNotFound  = errors.New("charge not found")
	ErrPaymentNotFound = errors.New("payment not found")

	// Validation errors
	ErrInvalidAmount        = errors.New("amount must not be negative")
	ErrInvalidParentType    = errors.New("parent type must be account or client")
	ErrInvalidChargeStatus  = errors.New("invalid charge status")
	ErrInvalidPaymentStatus = errors.New("invalid payment status")
	ErrOverAllocated        = errors.New("allocated amounts exceed amount paid")
)
