package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/osolis/billingcore/internal/adapter/http/dto"
	"github.com/osolis/billingcore/internal/domain"
	"github.com/osolis/billingcore/internal/usecase"
)

// PaymentService defines the behavior needed by PaymentHandler.
type PaymentService interface {
	CreatePayment(ctx context.Context, input usecase.CreatePaymentInput) (*domain.Payment, *domain.AllocationResult, error)
	AllocatePayment(ctx context.Context, paymentID string) (*domain.AllocationResult, error)
	GetPayment(ctx context.Context, id string) (*domain.Payment, error)
	ListPayments(ctx context.Context, filter usecase.PaymentFilter) ([]*domain.Payment, error)
}

// PaymentHandler handles payment-related HTTP requests.
type PaymentHandler struct {
	paymentUC PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentUC PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentUC: paymentUC}
}

// Create registers a payment and allocates it against pending charges.
func (h *PaymentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	payment, result, err := h.paymentUC.CreatePayment(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create payment", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.AllocationFromDomain(payment, result))
}

// Allocate re-runs allocation for an existing payment.
func (h *PaymentHandler) Allocate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing payment ID", "")
		return
	}

	result, err := h.paymentUC.AllocatePayment(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to allocate payment", err.Error())
		return
	}

	payment, err := h.paymentUC.GetPayment(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get payment", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.AllocationFromDomain(payment, result))
}

// Get retrieves a payment by ID.
func (h *PaymentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing payment ID", "")
		return
	}

	payment, err := h.paymentUC.GetPayment(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get payment", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.PaymentFromDomain(payment))
}

// List returns a parent's payments in payment date order.
func (h *PaymentHandler) List(w http.ResponseWriter, r *http.Request) {
	parentID := r.URL.Query().Get("parent_id")
	if parentID == "" {
		writeError(w, http.StatusBadRequest, "missing parent_id", "")
		return
	}
	parentType := domain.ParentType(r.URL.Query().Get("parent_type"))
	if err := domain.ValidateParentType(parentType); err != nil {
		writeError(w, http.StatusBadRequest, "invalid parent_type", err.Error())
		return
	}

	payments, err := h.paymentUC.ListPayments(r.Context(), usecase.PaymentFilter{
		ParentID:   parentID,
		ParentType: parentType,
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list payments", err.Error())
		return
	}

	if limit := parseIntQuery(r, "limit", 0); limit > 0 {
		limit, _, _ = domain.ValidatePagination(limit, 0)
		if limit < len(payments) {
			payments = payments[:limit]
		}
	}

	out := make([]*dto.PaymentResponse, len(payments))
	for i, p := range payments {
		out[i] = dto.PaymentFromDomain(p)
	}
	writeJSON(w, http.StatusOK, out)
}
