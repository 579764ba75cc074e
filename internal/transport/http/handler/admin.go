package handler

import (
	"encoding/json"
	"net/http"

	"github.com/empower-api/internal/application/admin"
	"github.com/empower-api/internal/domain"
)

// AdminHandler handles the verification dashboard endpoints.
type AdminHandler struct {
	svc admin.Service
}

func NewAdminHandler(svc admin.Service) *AdminHandler { return &AdminHandler{svc: svc} }

func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AccessKey string `json:"accessKey"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.AccessKey == "" {
		writeError(w, http.StatusBadRequest, "access key required")
		return
	}
	bearer, err := h.svc.Login(r.Context(), req.AccessKey)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Bearer string `json:"bearer"`
	}{bearer})
}

func (h *AdminHandler) ListInvestments(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.ListInvestments(r.Context())
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Investments []domain.AdminInvestment `json:"investments"`
	}{rows})
}

func (h *AdminHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		InvestmentID string `json:"investmentId"`
		Status       string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.InvestmentID == "" || req.Status == "" {
		writeError(w, http.StatusBadRequest, "Investment ID and status required")
		return
	}
	if err := h.svc.Decide(r.Context(), req.InvestmentID, req.Status); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Success bool `json:"success"`
	}{true})
}

func (h *AdminHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.svc.GetSettings(r.Context())
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (h *AdminHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	var qr *admin.QRUpload
	if f, header, err := r.FormFile("qrCode"); err == nil {
		defer f.Close()
		qr = &admin.QRUpload{
			Reader:      f,
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
		}
	}
	if err := h.svc.UpdateSettings(r.Context(), r.FormValue("upiId"), qr); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Success bool `json:"success"`
	}{true})
}
