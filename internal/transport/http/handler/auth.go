package handler

import (
	"encoding/json"
	"net/http"

	"github.com/empower-api/internal/application/auth"
	"github.com/empower-api/internal/domain"
	"github.com/empower-api/internal/pkg/validate"
)

// AuthHandler handles registration, OTP verification and MPIN endpoints.
type AuthHandler struct {
	svc auth.Service
}

func NewAuthHandler(svc auth.Service) *AuthHandler { return &AuthHandler{svc: svc} }

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	res, err := h.svc.Register(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Message string `json:"message"`
		*auth.RegisterResult
	}{"OTP sent successfully", res})
}

func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req domain.VerifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	res, err := h.svc.VerifyChallenge(r.Context(), req.Mobile, req.OTP)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Message string `json:"message"`
		HasMPIN bool   `json:"hasMpin"`
		Bearer  string `json:"bearer,omitempty"`
	}{"Verification successful", res.HasMPIN, res.Bearer})
}

func (h *AuthHandler) SetupMPIN(w http.ResponseWriter, r *http.Request) {
	var req domain.SetupMPINRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := h.svc.SetPin(r.Context(), req.Mobile, req.MPIN); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}{true, "MPIN secured"})
}

func (h *AuthHandler) LoginMPIN(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginMPINRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	res, err := h.svc.LoginWithPin(r.Context(), req.Mobile, req.MPIN)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Message string       `json:"message"`
		Mobile  string       `json:"mobile"`
		User    *domain.User `json:"user"`
		Bearer  string       `json:"bearer,omitempty"`
	}{"Login successful", res.Mobile, res.User, res.Bearer})
}

func (h *AuthHandler) CheckStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Mobile string `json:"mobile"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Mobile == "" {
		writeError(w, http.StatusBadRequest, "mobile number required")
		return
	}
	res, err := h.svc.CheckStatus(r.Context(), req.Mobile)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *AuthHandler) PhoneEmailVerify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserJSONURL string `json:"user_json_url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserJSONURL == "" {
		writeError(w, http.StatusBadRequest, "user_json_url is required")
		return
	}
	res, err := h.svc.VerifyPhoneEmail(r.Context(), req.UserJSONURL)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Message string `json:"message"`
		*auth.RegisterResult
	}{"Verification successful", res})
}
