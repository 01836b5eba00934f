package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/osolis/billingcore/internal/adapter/http/dto"
	"github.com/osolis/billingcore/internal/domain"
)

// StatementService defines the behavior needed by StatementHandler.
type StatementService interface {
	AccountStatement(ctx context.Context, accountNumber string) ([]domain.StatementLine, error)
}

// StatementHandler handles chronological statement requests.
type StatementHandler struct {
	statementUC StatementService
}

// NewStatementHandler creates a new StatementHandler.
func NewStatementHandler(statementUC StatementService) *StatementHandler {
	return &StatementHandler{statementUC: statementUC}
}

// AccountStatement returns the merged charge/payment timeline for an account.
func (h *StatementHandler) AccountStatement(w http.ResponseWriter, r *http.Request) {
	accountNumber := chi.URLParam(r, "accountNumber")
	if accountNumber == "" {
		writeError(w, http.StatusBadRequest, "missing account number", "")
		return
	}

	lines, err := h.statementUC.AccountStatement(r.Context(), accountNumber)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to build statement", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.StatementFromDomain(accountNumber, lines))
}
