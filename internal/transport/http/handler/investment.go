package handler

import (
	"encoding/json"
	"net/http"

	"github.com/empower-api/internal/application/investment"
	"github.com/empower-api/internal/domain"
	"github.com/empower-api/internal/pkg/validate"
	"github.com/go-chi/chi/v5"
)

// InvestmentHandler handles plan creation, payment submission and status.
type InvestmentHandler struct {
	svc investment.Service
}

func NewInvestmentHandler(svc investment.Service) *InvestmentHandler {
	return &InvestmentHandler{svc: svc}
}

func (h *InvestmentHandler) CreatePlan(w http.ResponseWriter, r *http.Request) {
	var req domain.CreatePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	inv, err := h.svc.CreatePlan(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Message    string             `json:"message"`
		Investment *domain.Investment `json:"investment"`
	}{"Plan created successfully", inv})
}

func (h *InvestmentHandler) SubmitPayment(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	sub := investment.PaymentSubmission{
		UserID:        r.FormValue("userId"),
		PaymentMethod: r.FormValue("paymentMethod"),
		UTRNumber:     r.FormValue("utrNumber"),
	}
	if sub.UserID == "" {
		writeError(w, http.StatusBadRequest, "User ID is required")
		return
	}
	if f, header, err := r.FormFile("receipt"); err == nil {
		defer f.Close()
		sub.Receipt = f
		sub.Filename = header.Filename
		sub.ContentType = header.Header.Get("Content-Type")
	}
	inv, err := h.svc.SubmitPayment(r.Context(), sub)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Message    string             `json:"message"`
		Investment *domain.Investment `json:"investment"`
	}{"Receipt submitted for verification", inv})
}

func (h *InvestmentHandler) Status(w http.ResponseWriter, r *http.Request) {
	inv, err := h.svc.StatusOf(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Investment *domain.Investment `json:"investment"`
	}{inv})
}
