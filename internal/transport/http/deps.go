package http

import (
	"context"
	"time"

	"github.com/bowling-bff/internal/domain"
	jwtinfra "github.com/bowling-bff/internal/infrastructure/jwt"
	"github.com/bowling-bff/internal/infrastructure/upstream"
)

// OTPStore is the minimal interface the router requires from the one-time code store.
type OTPStore interface {
	Generate() (string, error)
	Set(identifier, code string)
	IsValid(identifier, code string) bool
	Consume(identifier, code string) (domain.OTPRecord, bool)
	Restore(identifier string, rec domain.OTPRecord)
	ExpiryDuration() time.Duration
}

// TicketProvider signs and verifies verification tickets.
type TicketProvider interface {
	Sign(email string, purpose domain.Purpose) (*domain.Ticket, error)
	Verify(token string) (*jwtinfra.Claims, error)
}

// UpstreamClient is the minimal interface the router requires from the upstream API client.
type UpstreamClient interface {
	Do(ctx context.Context, req upstream.Request) (*domain.UpstreamResult, error)
	PostJSON(ctx context.Context, path string, payload interface{}) (*domain.UpstreamResult, error)
}

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	OTPStore OTPStore
	Tickets  TicketProvider
	Upstream UpstreamClient
}
