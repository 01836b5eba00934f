package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/osolis/billingcore/internal/adapter/http/dto"
	"github.com/osolis/billingcore/internal/usecase"
)

// RebuildService defines the behavior needed by RebuildHandler.
type RebuildService interface {
	RebuildAccount(ctx context.Context, accountNumber string) (*usecase.RebuildResult, error)
	RebuildAllAccounts(ctx context.Context) (*usecase.BatchResult, error)
}

// RebuildHandler handles ledger rebuild requests.
type RebuildHandler struct {
	rebuildUC RebuildService
}

// NewRebuildHandler creates a new RebuildHandler.
func NewRebuildHandler(rebuildUC RebuildService) *RebuildHandler {
	return &RebuildHandler{rebuildUC: rebuildUC}
}

// RebuildAccount recomputes one account's derived state from raw history.
func (h *RebuildHandler) RebuildAccount(w http.ResponseWriter, r *http.Request) {
	accountNumber := chi.URLParam(r, "accountNumber")
	if accountNumber == "" {
		writeError(w, http.StatusBadRequest, "missing account number", "")
		return
	}

	result, err := h.rebuildUC.RebuildAccount(r.Context(), accountNumber)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to rebuild account", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.RebuildFromResult(result))
}

// RebuildAll recomputes every active non-slave account.
func (h *RebuildHandler) RebuildAll(w http.ResponseWriter, r *http.Request) {
	result, err := h.rebuildUC.RebuildAllAccounts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to rebuild accounts", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BatchRebuildFromResult(result))
}
