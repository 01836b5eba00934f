package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/osolis/billingcore/internal/domain"
	"github.com/osolis/billingcore/internal/usecase"
)

// CreateChargeRequest represents a request to create a charge.
type CreateChargeRequest struct {
	ParentID     string          `json:"parent_id"`
	ParentType   string          `json:"parent_type"`
	MovementDate time.Time       `json:"movement_date"`
	Total        decimal.Decimal `json:"total"`
	ExchangeRate decimal.Decimal `json:"exchange_rate"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateChargeRequest) ToUseCaseInput() usecase.CreateChargeInput {
	return usecase.CreateChargeInput{
		ParentID:     r.ParentID,
		ParentType:   domain.ParentType(r.ParentType),
		MovementDate: r.MovementDate,
		Total:        r.Total,
		ExchangeRate: r.ExchangeRate,
	}
}

// CreatePaymentRequest represents a request to register a payment. Status is
// optional; credit payments must declare it explicitly.
type CreatePaymentRequest struct {
	ParentID    string          `json:"parent_id"`
	ParentType  string          `json:"parent_type"`
	PaymentDate time.Time       `json:"payment_date"`
	AmountPaid  decimal.Decimal `json:"amount_paid"`
	Status      string          `json:"status,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreatePaymentRequest) ToUseCaseInput() usecase.CreatePaymentInput {
	return usecase.CreatePaymentInput{
		ParentID:    r.ParentID,
		ParentType:  domain.ParentType(r.ParentType),
		PaymentDate: r.PaymentDate,
		AmountPaid:  r.AmountPaid,
		Status:      domain.PaymentStatus(r.Status),
	}
}
