package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/osolis/billingcore/internal/adapter/http/dto"
	"github.com/osolis/billingcore/internal/usecase"
)

// BalanceService defines the behavior needed by BalanceHandler.
type BalanceService interface {
	AccountBalance(ctx context.Context, accountNumber string) (*usecase.BalanceReport, error)
	ClientBalance(ctx context.Context, clientID string) (*usecase.BalanceReport, error)
}

// BalanceHandler handles balance report requests.
type BalanceHandler struct {
	balanceUC BalanceService
}

// NewBalanceHandler creates a new BalanceHandler.
func NewBalanceHandler(balanceUC BalanceService) *BalanceHandler {
	return &BalanceHandler{balanceUC: balanceUC}
}

// AccountBalance returns the outstanding balance report for an account.
func (h *BalanceHandler) AccountBalance(w http.ResponseWriter, r *http.Request) {
	accountNumber := chi.URLParam(r, "accountNumber")
	if accountNumber == "" {
		writeError(w, http.StatusBadRequest, "missing account number", "")
		return
	}

	report, err := h.balanceUC.AccountBalance(r.Context(), accountNumber)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to compute balance", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceFromReport(report))
}

// ClientBalance returns the aggregated balance report for a client.
func (h *BalanceHandler) ClientBalance(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "clientID")
	if clientID == "" {
		writeError(w, http.StatusBadRequest, "missing client ID", "")
		return
	}

	report, err := h.balanceUC.ClientBalance(r.Context(), clientID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to compute balance", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceFromReport(report))
}
