package handler

import (
	"encoding/json"
	"net/http"

	"github.com/empower-api/internal/application/bank"
	"github.com/empower-api/internal/domain"
	"github.com/empower-api/internal/pkg/validate"
	"github.com/go-chi/chi/v5"
)

// BankHandler handles settlement detail endpoints.
type BankHandler struct {
	svc bank.Service
}

func NewBankHandler(svc bank.Service) *BankHandler { return &BankHandler{svc: svc} }

func (h *BankHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req domain.BankDetailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	d, err := h.svc.Save(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Message string             `json:"message"`
		Details *domain.BankDetail `json:"details"`
	}{"Bank details saved successfully", d})
}

func (h *BankHandler) Get(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.Get(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}
