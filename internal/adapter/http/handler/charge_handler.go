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

// ChargeService defines the behavior needed by ChargeHandler.
type ChargeService interface {
	CreateCharge(ctx context.Context, input usecase.CreateChargeInput) (*domain.Charge, error)
	GetCharge(ctx context.Context, id string) (*domain.Charge, error)
	ListCharges(ctx context.Context, filter usecase.ChargeFilter) ([]*domain.Charge, error)
}

// ChargeHandler handles charge-related HTTP requests.
type ChargeHandler struct {
	chargeUC ChargeService
}

// NewChargeHandler creates a new ChargeHandler.
func NewChargeHandler(chargeUC ChargeService) *ChargeHandler {
	return &ChargeHandler{chargeUC: chargeUC}
}

// Create registers a new charge.
func (h *ChargeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateChargeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	charge, err := h.chargeUC.CreateCharge(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create charge", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.ChargeFromDomain(charge))
}

// Get retrieves a charge by ID.
func (h *ChargeHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing charge ID", "")
		return
	}

	charge, err := h.chargeUC.GetCharge(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get charge", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ChargeFromDomain(charge))
}

// List returns a parent's charges in movement date order.
func (h *ChargeHandler) List(w http.ResponseWriter, r *http.Request) {
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

	charges, err := h.chargeUC.ListCharges(r.Context(), usecase.ChargeFilter{
		ParentID:   parentID,
		ParentType: parentType,
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list charges", err.Error())
		return
	}

	if limit := parseIntQuery(r, "limit", 0); limit > 0 {
		limit, _, _ = domain.ValidatePagination(limit, 0)
		if limit < len(charges) {
			charges = charges[:limit]
		}
	}

	out := make([]*dto.ChargeResponse, len(charges))
	for i, c := range charges {
		out[i] = dto.ChargeFromDomain(c)
	}
	writeJSON(w, http.StatusOK, out)
}
