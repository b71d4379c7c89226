package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/bowling-bff/internal/domain"
	"github.com/bowling-bff/internal/infrastructure/upstream"
	"github.com/go-chi/chi/v5"
)

const maxProxyBody = 10 << 20

// Forwarder sends a request to the upstream API.
type Forwarder interface {
	Do(ctx context.Context, req upstream.Request) (*domain.UpstreamResult, error)
}

// ProxyHandler relays /v1/api/* to the upstream API: the caller's
// Authorization header and body go through, the upstream status and body come back.
type ProxyHandler struct {
	upstream Forwarder
}

func NewProxyHandler(f Forwarder) *ProxyHandler {
	return &ProxyHandler{upstream: f}
}

func (h *ProxyHandler) Forward(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxProxyBody+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(body) > maxProxyBody {
		writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}
	res, err := h.upstream.Do(r.Context(), upstream.Request{
		Method:        r.Method,
		Path:          chi.URLParam(r, "*"),
		RawQuery:      r.URL.RawQuery,
		Authorization: r.Header.Get("Authorization"),
		ContentType:   r.Header.Get("Content-Type"),
		Body:          body,
	})
	if err != nil {
		httpError(w, err)
		return
	}
	relay(w, res)
}
