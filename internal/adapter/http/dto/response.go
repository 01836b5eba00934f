package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/osolis/billingcore/internal/domain"
	"github.com/osolis/billingcore/internal/usecase"
)

// ChargeResponse represents a charge in API responses.
type ChargeResponse struct {
	ID              string          `json:"id"`
	ParentID        string          `json:"parent_id"`
	ParentType      string          `json:"parent_type"`
	MovementDate    time.Time       `json:"movement_date"`
	Total           decimal.Decimal `json:"total"`
	Status          string          `json:"status"`
	PreviousBalance decimal.Decimal `json:"previous_balance"`
	ExchangeRate    decimal.Decimal `json:"exchange_rate"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ChargeFromDomain converts a domain charge to a response.
func ChargeFromDomain(c *domain.Charge) *ChargeResponse {
	return &ChargeResponse{
		ID:              c.ID,
		ParentID:        c.ParentID,
		ParentType:      string(c.ParentType),
		MovementDate:    c.MovementDate,
		Total:           c.Total,
		Status:          string(c.Status),
		PreviousBalance: c.PreviousBalance,
		ExchangeRate:    c.ExchangeRate,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

// PaymentDetailResponse represents one allocation of a payment.
type PaymentDetailResponse struct {
	ChargeID string          `json:"charge_id"`
	Amount   decimal.Decimal `json:"amount"`
}

// PaymentResponse represents a payment in API responses.
type PaymentResponse struct {
	ID          string                  `json:"id"`
	ParentID    string                  `json:"parent_id"`
	ParentType  string                  `json:"parent_type"`
	PaymentDate time.Time               `json:"payment_date"`
	AmountPaid  decimal.Decimal         `json:"amount_paid"`
	Status      string                  `json:"status"`
	Details     []PaymentDetailResponse `json:"details"`
	CreatedAt   time.Time               `json:"created_at"`
	UpdatedAt   time.Time               `json:"updated_at"`
}

// PaymentFromDomain converts a domain payment to a response.
func PaymentFromDomain(p *domain.Payment) *PaymentResponse {
	details := make([]PaymentDetailResponse, len(p.Details))
	for i, d := range p.Details {
		details[i] = PaymentDetailResponse{ChargeID: d.ChargeID, Amount: d.Amount}
	}

	return &PaymentResponse{
		ID:          p.ID,
		ParentID:    p.ParentID,
		ParentType:  string(p.ParentType),
		PaymentDate: p.PaymentDate,
		AmountPaid:  p.AmountPaid,
		Status:      string(p.Status),
		Details:     details,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// AllocationResponse is returned by payment creation and re-allocation.
type AllocationResponse struct {
	Payment *PaymentResponse `json:"payment"`
	Advance decimal.Decimal  `json:"advance"`
	Paid    []string         `json:"paid_charge_ids"`
}

// AllocationFromDomain converts a payment plus its allocation outcome.
func AllocationFromDomain(p *domain.Payment, result *domain.AllocationResult) *AllocationResponse {
	return &AllocationResponse{
		Payment: PaymentFromDomain(p),
		Advance: result.Advance,
		Paid:    result.PaidChargeIDs,
	}
}

// PartialPaymentResponse represents one payment applied to a pending charge.
type PartialPaymentResponse struct {
	PaymentID string          `json:"payment_id"`
	Amount    decimal.Decimal `json:"amount"`
	Credit    bool            `json:"credit"`
}

// PendingChargeResponse represents a pending charge with its coverage.
type PendingChargeResponse struct {
	Charge          *ChargeResponse          `json:"charge"`
	PartialPayments []PartialPaymentResponse `json:"partial_payments"`
	PaidAmount      decimal.Decimal          `json:"paid_amount"`
	CreditedAmount  decimal.Decimal          `json:"credited_amount"`
	Outstanding     decimal.Decimal          `json:"outstanding"`
}

// BalanceResponse represents a balance report in API responses.
type BalanceResponse struct {
	ParentID       string                   `json:"parent_id"`
	ParentType     string                   `json:"parent_type"`
	ClientName     string                   `json:"client_name,omitempty"`
	Total          decimal.Decimal          `json:"total"`
	PendingCharges []*PendingChargeResponse `json:"pending_charges"`
	Errors         []string                 `json:"errors"`
}

// BalanceFromReport converts a balance report to a response.
func BalanceFromReport(report *usecase.BalanceReport) *BalanceResponse {
	pending := make([]*PendingChargeResponse, len(report.PendingCharges))
	for i, pc := range report.PendingCharges {
		partials := make([]PartialPaymentResponse, len(pc.PartialPayments))
		for j, pp := range pc.PartialPayments {
			partials[j] = PartialPaymentResponse{
				PaymentID: pp.PaymentID,
				Amount:    pp.Amount,
				Credit:    pp.Credit,
			}
		}
		pending[i] = &PendingChargeResponse{
			Charge:          ChargeFromDomain(pc.Charge),
			PartialPayments: partials,
			PaidAmount:      pc.PaidAmount,
			CreditedAmount:  pc.CreditedAmount,
			Outstanding:     pc.Outstanding,
		}
	}

	return &BalanceResponse{
		ParentID:       report.ParentID,
		ParentType:     string(report.ParentType),
		ClientName:     report.ClientName,
		Total:          report.Total,
		PendingCharges: pending,
		Errors:         report.Errors,
	}
}

// StatementLineResponse represents one line of the merged statement.
type StatementLineResponse struct {
	Kind    string          `json:"kind"`
	RefID   string          `json:"ref_id"`
	Date    time.Time       `json:"date"`
	Amount  decimal.Decimal `json:"amount"`
	Status  string          `json:"status"`
	Balance decimal.Decimal `json:"balance"`
}

// StatementResponse represents a full account statement.
type StatementResponse struct {
	AccountNumber string                  `json:"account_number"`
	Lines         []StatementLineResponse `json:"lines"`
}

// StatementFromDomain converts merged statement lines to a response.
func StatementFromDomain(accountNumber string, lines []domain.StatementLine) *StatementResponse {
	out := make([]StatementLineResponse, len(lines))
	for i, l := range lines {
		out[i] = StatementLineResponse{
			Kind:    string(l.Kind),
			RefID:   l.RefID,
			Date:    l.Date,
			Amount:  l.Amount,
			Status:  l.Status,
			Balance: l.Balance,
		}
	}

	return &StatementResponse{AccountNumber: accountNumber, Lines: out}
}

// RebuildResponse represents a single-account rebuild outcome.
type RebuildResponse struct {
	AccountNumber   string   `json:"account_number"`
	ChargesUpdated  int      `json:"charges_updated"`
	PaymentsUpdated int      `json:"payments_updated"`
	Errors          []string `json:"errors"`
}

// RebuildFromResult converts a rebuild result to a response.
func RebuildFromResult(result *usecase.RebuildResult) *RebuildResponse {
	return &RebuildResponse{
		AccountNumber:   result.AccountNumber,
		ChargesUpdated:  result.ChargesUpdated,
		PaymentsUpdated: result.PaymentsUpdated,
		Errors:          result.Errors,
	}
}

// BatchRebuildResponse represents a fleet-wide rebuild outcome.
type BatchRebuildResponse struct {
	Total     int      `json:"total"`
	Succeeded int      `json:"succeeded"`
	Failed    int      `json:"failed"`
	Errors    []string `json:"errors"`
}

// BatchRebuildFromResult converts a batch result to a response.
func BatchRebuildFromResult(result *usecase.BatchResult) *BatchRebuildResponse {
	return &BatchRebuildResponse{
		Total:     result.Total,
		Succeeded: result.Succeeded,
		Failed:    result.Failed,
		Errors:    result.Errors,
	}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
