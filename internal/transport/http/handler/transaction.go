package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/empower-api/internal/application/transaction"
	"github.com/empower-api/internal/domain"
	"github.com/empower-api/internal/pkg/validate"
	"github.com/go-chi/chi/v5"
)

// TransactionHandler handles ledger deposits, withdrawals and history.
type TransactionHandler struct {
	svc transaction.Service
}

func NewTransactionHandler(svc transaction.Service) *TransactionHandler {
	return &TransactionHandler{svc: svc}
}

func (h *TransactionHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	h.post(w, r, h.svc.Deposit)
}

func (h *TransactionHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.post(w, r, h.svc.Withdraw)
}

func (h *TransactionHandler) post(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, userID string, amount float64) (*transaction.Result, error)) {
	var req domain.TransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	res, err := op(r.Context(), req.UserID, req.Amount)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Success bool `json:"success"`
		*transaction.Result
	}{true, res})
}

func (h *TransactionHandler) History(w http.ResponseWriter, r *http.Request) {
	history, err := h.svc.History(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Success bool                 `json:"success"`
		History []domain.Transaction `json:"history"`
	}{true, history})
}
