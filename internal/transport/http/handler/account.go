package handler

import (
	"encoding/json"
	"net/http"

	"github.com/bowling-bff/internal/application/account"
	"github.com/bowling-bff/internal/domain"
	"github.com/bowling-bff/internal/transport/http/middleware"
)

// AccountHandler completes signup and password reset for ticket holders.
type AccountHandler struct {
	svc account.Service
}

func NewAccountHandler(svc account.Service) *AccountHandler {
	return &AccountHandler{svc: svc}
}

func (h *AccountHandler) Signup(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req domain.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	res, err := h.svc.Signup(r.Context(), claims.Email, req)
	if err != nil {
		httpError(w, err)
		return
	}
	relay(w, res)
}

func (h *AccountHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req domain.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	res, err := h.svc.ResetPassword(r.Context(), claims.Email, req)
	if err != nil {
		httpError(w, err)
		return
	}
	relay(w, res)
}
