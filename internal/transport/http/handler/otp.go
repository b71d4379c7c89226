package handler

import (
	"encoding/json"
	"net/http"

	"github.com/bowling-bff/internal/application/verification"
	"github.com/go-chi/chi/v5"
)

// OTPHandler handles the one-time code endpoints.
type OTPHandler struct {
	svc verification.Service
}

func NewOTPHandler(svc verification.Service) *OTPHandler {
	return &OTPHandler{svc: svc}
}

func (h *OTPHandler) Action(w http.ResponseWriter, r *http.Request) {
	switch chi.URLParam(r, "action") {
	case "request":
		var req verification.RequestCodeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		out, err := h.svc.Request(r.Context(), req)
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, CodeIssuedEnvelope{Message: "code issued", ExpiresIn: out.ExpiresIn, Code: out.Code})
	case "verify":
		var req verification.VerifyCodeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		ticket, err := h.svc.Verify(r.Context(), req)
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, TicketEnvelope{
			Ticket:    ticket.Token,
			Email:     ticket.Email,
			Purpose:   ticket.Purpose,
			ExpiresAt: ticket.ExpiresAt,
		})
	case "check":
		var req verification.CheckCodeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		valid, err := h.svc.Check(r.Context(), req)
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, CheckEnvelope{Valid: valid})
	default:
		writeError(w, http.StatusBadRequest, "unknown action")
	}
}
