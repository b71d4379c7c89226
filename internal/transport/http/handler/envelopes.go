package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/bowling-bff/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// CodeIssuedEnvelope wraps /otp/request responses. Code is only set in dev mode.
type CodeIssuedEnvelope struct {
	Message   string `json:"message"`
	ExpiresIn int    `json:"expires_in"`
	Code      string `json:"code,omitempty"`
}

// TicketEnvelope wraps /otp/verify responses.
type TicketEnvelope struct {
	Ticket    string         `json:"ticket"`
	Email     string         `json:"email"`
	Purpose   domain.Purpose `json:"purpose"`
	ExpiresAt time.Time      `json:"expires_at"`
}

// CheckEnvelope wraps /otp/check responses.
type CheckEnvelope struct {
	Valid bool `json:"valid"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}

// httpError maps domain sentinels to status codes. Unknown errors become 500 without leaking details.
func httpError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, domain.ErrBadRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrUpstream):
		slog.Error("upstream call failed", "err", err)
		writeError(w, http.StatusBadGateway, "upstream unavailable")
	default:
		slog.Error("unhandled error", "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// relay writes an upstream response back unchanged.
func relay(w http.ResponseWriter, res *domain.UpstreamResult) {
	if res.ContentType != "" {
		w.Header().Set("Content-Type", res.ContentType)
	}
	w.WriteHeader(res.StatusCode)
	if len(res.Body) > 0 {
		_, _ = w.Write(res.Body)
	}
}
